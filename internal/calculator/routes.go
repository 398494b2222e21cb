package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Get("/presets", h.Presets)
		r.Post("/quote", h.Quote)

		r.Post("/sessions", h.CreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Post("/inputs", h.ApplyInputs)
			r.Post("/bill", h.SetBill)
			r.Post("/custom-tip", h.SetCustomTip)
			r.Post("/people", h.SetPeople)
			r.Post("/people/adjust", h.AdjustPeople)
			r.Post("/preset", h.SelectPreset)
			r.Post("/reset", h.Reset)
		})
	})
}
