package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tip-calculator/internal/calculator"
	"tip-calculator/internal/observability"
	"tip-calculator/internal/session"
	"tip-calculator/internal/testutil"
	"tip-calculator/internal/tipcalc"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	observability.Logger = zap.NewNop()
	if err := calculator.InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	opts := tipcalc.DefaultOptions()
	store := session.NewStore(opts, time.Minute)
	reg := observability.NewRegistry(store.Collector())
	return NewRouter(calculator.NewHandler(store, opts), reg)
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterMetricsCountsSessions(t *testing.T) {
	router := newTestRouter(t)
	createSession(t, router)
	createSession(t, router)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/metrics", nil), router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if !strings.Contains(w.Body.String(), "tipcalc_sessions_active 2") {
		t.Fatalf("expected two active sessions in metrics output, got:\n%s", w.Body.String())
	}
}

func TestNewRouterServesIndexPage(t *testing.T) {
	router := newTestRouter(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/", nil), router)

	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	if !strings.Contains(w.Body.String(), "Tip Calculator") {
		t.Fatal("expected the calculator page")
	}
}

func TestNewRouterCreateSessionSetsHeaderAndOmitsRequestIDInBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	requestID := w.Result().Header.Get(observability.RequestIDHeader)
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var payload map[string]any
	if err := json.NewDecoder(w.Result().Body).Decode(&payload); err != nil {
		t.Fatalf("decoding JSON response: %v", err)
	}

	if _, ok := payload["request_id"]; ok {
		t.Fatal("did not expect request_id field in success JSON body")
	}

	if presets, ok := payload["presets"].([]any); !ok || len(presets) != 5 {
		t.Fatalf("expected 5 presets, got %#v", payload["presets"])
	}
}

func TestNewRouterSessionScenario(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router)

	post(t, router, "/calculator/sessions/"+id+"/bill", `{"value":"100"}`, http.StatusOK)
	post(t, router, "/calculator/sessions/"+id+"/people", `{"value":"2"}`, http.StatusOK)
	resp := post(t, router, "/calculator/sessions/"+id+"/preset", `{"percent":"15"}`, http.StatusOK)

	if resp.Result.TipPerPerson != "$7.50" || resp.Result.TotalPerPerson != "$57.50" {
		t.Fatalf("expected $7.50 / $57.50, got %s / %s", resp.Result.TipPerPerson, resp.Result.TotalPerPerson)
	}
	if resp.State.ActivePreset != 2 {
		t.Fatalf("expected active preset 2, got %d", resp.State.ActivePreset)
	}

	resp = post(t, router, "/calculator/sessions/"+id+"/bill", `{"value":"-5"}`, http.StatusOK)
	if resp.Result.BillError != tipcalc.MsgBillInvalid || resp.Result.TotalPerPerson != "$57.50" {
		t.Fatalf("expected bill error with unchanged display, got %+v", resp.Result)
	}

	resp = post(t, router, "/calculator/sessions/"+id+"/custom-tip", `{"value":"120"}`, http.StatusOK)
	if !resp.Result.TipWarning || resp.State.ActivePreset != -1 {
		t.Fatalf("expected custom tip warning clearing preset, got %+v / %+v", resp.Result, resp.State)
	}

	resp = post(t, router, "/calculator/sessions/"+id+"/people/adjust", `{"delta":-5}`, http.StatusOK)
	if resp.State.PeopleCount != 1 {
		t.Fatalf("expected people clamped to 1, got %d", resp.State.PeopleCount)
	}

	resp = post(t, router, "/calculator/sessions/"+id+"/reset", "", http.StatusOK)
	if resp.Result.TotalPerPerson != "$0.00" || resp.Result.ResetEnabled || resp.Result.Phase != tipcalc.PhaseEmpty {
		t.Fatalf("expected default result after reset, got %+v", resp.Result)
	}

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/sessions/"+id, nil), router)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/calculator/sessions/"+id, nil), router)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)

	post(t, router, "/calculator/sessions/"+id+"/bill", `{"value":"1"}`, http.StatusNotFound)
}

func TestNewRouterInputsAppliesEveryField(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router)

	resp := post(t, router, "/calculator/sessions/"+id+"/inputs",
		`{"bill":"100","custom_tip":"20","people":"4"}`, http.StatusOK)

	if resp.State.Bill != "100" || resp.State.CustomTip != "20" || resp.State.PeopleCount != 4 {
		t.Fatalf("expected all three fields applied, got %+v", resp.State)
	}
	if resp.Result.TotalPerPerson != "$30.00" {
		t.Fatalf("expected $30.00, got %s", resp.Result.TotalPerPerson)
	}

	// A later batch that only names the bill keeps the tip and people.
	resp = post(t, router, "/calculator/sessions/"+id+"/inputs", `{"bill":"200"}`, http.StatusOK)
	if resp.State.CustomTip != "20" || resp.Result.TotalPerPerson != "$60.00" {
		t.Fatalf("expected tip kept and $60.00, got %+v / %+v", resp.State, resp.Result)
	}

	// Selecting a preset after a custom edit leaves the preset active.
	post(t, router, "/calculator/sessions/"+id+"/preset", `{"index":2}`, http.StatusOK)
	resp = post(t, router, "/calculator/sessions/"+id+"/inputs", `{"bill":"100"}`, http.StatusOK)
	if resp.State.ActivePreset != 2 || resp.State.Mode.Kind() != tipcalc.ModePreset {
		t.Fatalf("expected preset to survive a bill-only batch, got %+v", resp.State)
	}
}

func TestNewRouterRejectsBadRequests(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{name: "malformed json", path: "/bill", body: `{"value":`, status: http.StatusBadRequest},
		{name: "preset out of range", path: "/preset", body: `{"index":9}`, status: http.StatusBadRequest},
		{name: "negative preset", path: "/preset", body: `{"percent":"-5"}`, status: http.StatusBadRequest},
		{name: "empty preset", path: "/preset", body: `{}`, status: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := testutil.PostJSON(router, "/calculator/sessions/"+id+tc.path, tc.body)

			testutil.CheckResponseCode(t, tc.status, w.Code)
			if testutil.ErrorMessage(t, w.Body) == "" {
				t.Fatal("expected error message in body")
			}
		})
	}
}

func TestNewRouterQuote(t *testing.T) {
	router := newTestRouter(t)

	w := testutil.PostJSON(router, "/calculator/quote", `{"bill":"100","tip_percent":"15","people":"2"}`)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp calculator.QuoteResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	if resp.Result.TipAmount != "$15.00" || resp.Result.TotalPerPerson != "$57.50" {
		t.Fatalf("expected $15.00 tip and $57.50 each, got %+v", resp.Result)
	}

	w = testutil.PostJSON(router, "/calculator/quote", `{"bill":"-5"}`)
	testutil.CheckResponseCode(t, http.StatusUnprocessableEntity, w.Code)

	if got := testutil.ErrorMessage(t, w.Body); got != tipcalc.MsgBillInvalid {
		t.Fatalf("expected error %q, got %q", tipcalc.MsgBillInvalid, got)
	}
}

func TestNewRouterQuoteNotCalculable(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "tip overflows the split", body: `{"bill":"999999","tip_percent":"9999999999999999999"}`},
		{name: "tip has too many digits", body: `{"bill":"100","tip_percent":"12345678901234567890"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := testutil.PostJSON(router, "/calculator/quote", tc.body)
			testutil.CheckResponseCode(t, http.StatusUnprocessableEntity, w.Code)

			if got := testutil.ErrorMessage(t, w.Body); got != tipcalc.MsgNotCalculated {
				t.Fatalf("expected error %q, got %q", tipcalc.MsgNotCalculated, got)
			}
		})
	}
}

func createSession(t *testing.T, router http.Handler) string {
	t.Helper()
	w := testutil.PostJSON(router, "/calculator/sessions", "")
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	var resp calculator.SessionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	return resp.SessionID
}

func post(t *testing.T, router http.Handler, path, body string, status int) calculator.SessionResponse {
	t.Helper()
	w := testutil.PostJSON(router, path, body)
	testutil.CheckResponseCode(t, status, w.Code)

	var resp calculator.SessionResponse
	if status == http.StatusOK {
		testutil.DecodeJSONBody(t, w.Body, &resp)
	}
	return resp
}
