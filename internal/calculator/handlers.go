package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/govalues/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"tip-calculator/internal/handlers"
	"tip-calculator/internal/observability"
	"tip-calculator/internal/session"
	"tip-calculator/internal/tipcalc"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

var errNoPreset = errors.New("either percent or index is required")

// Handler serves the calculator API on top of a session store.
type Handler struct {
	store *session.Store
	opts  tipcalc.Options
}

func NewHandler(store *session.Store, opts tipcalc.Options) *Handler {
	return &Handler{store: store, opts: opts}
}

// ---------------------------------------------------------------------------
// Handlers: session lifecycle
// ---------------------------------------------------------------------------

// CreateSession handles POST /calculator/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "calculator.create_session")
	defer span.End()

	id, res, st := h.store.Create()
	ctx = observability.ContextWithSessionID(ctx, id)
	logger := observability.LoggerWithTrace(ctx)
	sessionsOpen.Add(ctx, 1)
	opsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "create_session")))

	span.SetAttributes(attribute.String("tipcalc.session_id", id))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session created")

	handlers.WriteJSON(w, http.StatusCreated, SessionResponse{
		SessionID: id,
		Result:    res,
		State:     st,
		Presets:   h.presetStrings(),
	})
}

// GetSession handles GET /calculator/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.handleSessionOp(w, r, "get", nil, func(c *tipcalc.Calculator) (tipcalc.Result, error) {
		return c.Result(), nil
	})
}

// DeleteSession handles DELETE /calculator/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx := observability.ContextWithSessionID(r.Context(), id)
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.delete_session",
		trace.WithAttributes(attribute.String("tipcalc.session_id", id)),
	)
	defer span.End()

	if err := h.store.Delete(id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "delete_session", "session not found", err, http.StatusNotFound, w)
		return
	}
	sessionsOpen.Add(ctx, -1)
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session ended")
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Handlers: inbound edits
// ---------------------------------------------------------------------------

// ApplyInputs handles POST /calculator/sessions/{id}/inputs
func (h *Handler) ApplyInputs(w http.ResponseWriter, r *http.Request) {
	var req InputsRequest
	h.handleSessionOp(w, r, "apply_inputs", &req, func(c *tipcalc.Calculator) (tipcalc.Result, error) {
		return c.Apply(req), nil
	})
}

// SetBill handles POST /calculator/sessions/{id}/bill
func (h *Handler) SetBill(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	h.handleSessionOp(w, r, "set_bill", &req, func(c *tipcalc.Calculator) (tipcalc.Result, error) {
		return c.SetBill(req.Value), nil
	})
}

// SetCustomTip handles POST /calculator/sessions/{id}/custom-tip
func (h *Handler) SetCustomTip(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	h.handleSessionOp(w, r, "set_custom_tip", &req, func(c *tipcalc.Calculator) (tipcalc.Result, error) {
		return c.SetCustomTip(req.Value), nil
	})
}

// SetPeople handles POST /calculator/sessions/{id}/people
func (h *Handler) SetPeople(w http.ResponseWriter, r *http.Request) {
	var req ValueRequest
	h.handleSessionOp(w, r, "set_people", &req, func(c *tipcalc.Calculator) (tipcalc.Result, error) {
		return c.SetPeople(req.Value), nil
	})
}

// SelectPreset handles POST /calculator/sessions/{id}/preset
func (h *Handler) SelectPreset(w http.ResponseWriter, r *http.Request) {
	var req PresetRequest
	h.handleSessionOp(w, r, "select_preset", &req, func(c *tipcalc.Calculator) (tipcalc.Result, error) {
		switch {
		case req.Index != nil:
			return c.SelectPresetIndex(*req.Index)
		case req.Percent != nil:
			pct, err := decimal.Parse(*req.Percent)
			if err != nil {
				return c.Result(), fmt.Errorf("preset percent %q: %w", *req.Percent, err)
			}
			return c.SelectPreset(pct)
		default:
			return c.Result(), errNoPreset
		}
	})
}

// AdjustPeople handles POST /calculator/sessions/{id}/people/adjust
func (h *Handler) AdjustPeople(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	h.handleSessionOp(w, r, "adjust_people", &req, func(c *tipcalc.Calculator) (tipcalc.Result, error) {
		return c.AdjustPeople(req.Delta), nil
	})
}

// Reset handles POST /calculator/sessions/{id}/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.handleSessionOp(w, r, "reset", nil, func(c *tipcalc.Calculator) (tipcalc.Result, error) {
		return c.Reset(), nil
	})
}

// handleSessionOp is the shared implementation for all session operations:
// child span, optional body decode, the calculator call under the session
// lock, metrics, a trace-correlated log line and the JSON response.
func (h *Handler) handleSessionOp(w http.ResponseWriter, r *http.Request, opName string, req any, apply func(*tipcalc.Calculator) (tipcalc.Result, error)) {
	id := chi.URLParam(r, "id")
	ctx := observability.ContextWithSessionID(r.Context(), id)
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
		trace.WithAttributes(
			attribute.String("tipcalc.operation", opName),
			attribute.String("tipcalc.session_id", id),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	if req != nil {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
			observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
			return
		}
	}

	var (
		res tipcalc.Result
		st  tipcalc.State
	)
	start := time.Now()
	err := h.store.With(id, func(c *tipcalc.Calculator) error {
		var err error
		res, err = apply(c)
		st = c.Snapshot()
		return err
	})
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	switch {
	case errors.Is(err, session.ErrNotFound):
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found", err, http.StatusNotFound, w)
		return
	case err != nil:
		observability.RecordError(ctx, span, logger, errorCounter, opName, err.Error(), err, http.StatusBadRequest, w)
		return
	}

	attrs := metric.WithAttributes(attribute.String("operation", opName))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	recordValidation(ctx, res)
	if opName != "get" {
		h.settle(ctx, id, opName)
	}

	span.AddEvent("calculation.complete", trace.WithAttributes(
		attribute.Bool("calculated", res.Calculated),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(
		attribute.String("tipcalc.phase", res.Phase.String()),
		attribute.String("tipcalc.total_per_person", res.TotalPerPerson),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator operation completed",
		zap.String("operation", opName),
		zap.Bool("calculated", res.Calculated),
		zap.String("tip_per_person", res.TipPerPerson),
		zap.String("total_per_person", res.TotalPerPerson),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, SessionResponse{
		SessionID: id,
		Result:    res,
		State:     st,
	})
}

// ---------------------------------------------------------------------------
// Handlers: stateless
// ---------------------------------------------------------------------------

// Quote handles POST /calculator/quote: one validate-and-compute pass over a
// fresh calculator, without creating a session.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.quote",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "quote", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	start := time.Now()
	c := tipcalc.New(h.opts)
	if req.People != "" {
		c.SetPeople(req.People)
	}
	if req.TipPercent != "" {
		c.SetCustomTip(req.TipPercent)
	}
	res := c.SetBill(req.Bill)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	recordValidation(ctx, res)
	if !res.Calculated {
		msg := res.BillError
		if msg == "" {
			msg = tipcalc.MsgNotCalculated
		}
		observability.RecordError(ctx, span, logger, errorCounter, "quote", msg,
			fmt.Errorf("quote %q at %q%% not calculated", req.Bill, req.TipPercent), http.StatusUnprocessableEntity, w)
		return
	}

	attrs := metric.WithAttributes(attribute.String("operation", "quote"))
	opsCounter.Add(ctx, 1, attrs)
	opsHistogram.Record(ctx, elapsed, attrs)
	recordTotal(ctx, c.Breakdown(), attrs)

	span.SetAttributes(attribute.String("tipcalc.total_per_person", res.TotalPerPerson))
	span.SetStatus(codes.Ok, "")

	logger.Info("quote computed",
		zap.String("bill", req.Bill),
		zap.String("tip_percent", req.TipPercent),
		zap.String("people", req.People),
		zap.String("total_per_person", res.TotalPerPerson),
	)

	handlers.WriteJSON(w, http.StatusOK, QuoteResponse{Result: res})
}

// Presets handles GET /calculator/presets
func (h *Handler) Presets(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, PresetsResponse{
		Presets:  h.presetStrings(),
		Currency: h.opts.Money.Symbol,
	})
}

func (h *Handler) presetStrings() []string {
	out := make([]string, len(h.opts.Presets))
	for i, p := range h.opts.Presets {
		out[i] = p.String()
	}
	return out
}

// settle records the session's total once edits pause, so a burst of
// keystrokes yields one gauge sample and one log line.
func (h *Handler) settle(ctx context.Context, id, opName string) {
	ctx = context.WithoutCancel(ctx)
	err := h.store.Settled(id, func(res tipcalc.Result, b tipcalc.Breakdown) {
		if !res.Calculated {
			return
		}
		recordTotal(ctx, b, metric.WithAttributes(attribute.String("operation", opName)))
		observability.LoggerWithTrace(ctx).Info("calculation settled",
			zap.String("operation", opName),
			zap.String("tip_per_person", res.TipPerPerson),
			zap.String("total_per_person", res.TotalPerPerson),
		)
	})
	if err != nil {
		// The session ended between the operation and now.
		observability.LoggerWithTrace(ctx).Debug("settle skipped", zap.Error(err))
	}
}

func recordTotal(ctx context.Context, b tipcalc.Breakdown, attrs metric.MeasurementOption) {
	if f, ok := tipcalc.Round2(b.TotalPerPerson).Float64(); ok {
		totalGauge.Record(ctx, f, attrs)
	}
}
