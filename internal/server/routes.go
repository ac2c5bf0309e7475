package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"giftfolio/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/portfolio/{peer}", handler(s.getV1Portfolio))
		r.Get("/snapshots/{user_id}", handler(s.getV1Snapshots))
		r.Post("/quotes", handler(s.postV1Quotes))
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}
