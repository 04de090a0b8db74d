package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Mount attaches the API routes to the router.
func (s *Server) Mount(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/types", s.CreateType)
		r.Post("/search", s.Search)
		r.Post("/autocomplete", s.Autocomplete)
		r.Post("/indexes/refresh", s.RefreshIndexes)

		r.Route("/types/{type}", func(r chi.Router) {
			r.Put("/records/{id}", func(w http.ResponseWriter, req *http.Request) {
				s.UpsertRecord(w, req, chi.URLParam(req, "type"), chi.URLParam(req, "id"))
			})
			r.Delete("/records/{id}", func(w http.ResponseWriter, req *http.Request) {
				s.DeleteRecord(w, req, chi.URLParam(req, "type"), chi.URLParam(req, "id"))
			})
			r.Post("/records/bulk", func(w http.ResponseWriter, req *http.Request) {
				s.BulkUpsertRecords(w, req, chi.URLParam(req, "type"))
			})
			r.Post("/index/rebuild", func(w http.ResponseWriter, req *http.Request) {
				s.RebuildIndex(w, req, chi.URLParam(req, "type"))
			})
		})
	})
}
