package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gridfall/gridfall-server/internal/server"
)

// State reports the authority's current view: session count, turn
// number and the full world snapshot.
func State(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := s.ViewState(r.Context())
		if err != nil {
			http.Error(w, "state unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(view)
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
