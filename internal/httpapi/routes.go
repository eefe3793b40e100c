// Package httpapi exposes the admin surface: health, a read-only state
// dump, and the websocket gateway for browser clients.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gridfall/gridfall-server/internal/server"
)

func SetupRoutes(s *server.Server) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/state", State(s))
	r.Handle("/ws", s.GatewayHandler())
	return r
}
