package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"tip-calculator/internal/calculator"
	"tip-calculator/internal/handlers"
	"tip-calculator/internal/observability"
	"tip-calculator/internal/web"
)

// NewRouter mounts the calculator API, the browser UI, /health and a
// /metrics endpoint serving metrics.
func NewRouter(calc *calculator.Handler, metrics prometheus.Gatherer) http.Handler {

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler(metrics))

	calculator.RegisterRoutes(r, calc)

	r.Handle("/*", web.Handler())

	return r
}
