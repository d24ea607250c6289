package server

import (
	"net/http"

	"github.com/mindleap/mindleap/internal/catalog"
)

// handleListGames returns the game catalog filtered by category and age
// band. Catalog metadata is global (not tenant data), but the route still
// runs behind the pipeline so only authenticated users can enumerate it.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	games := s.catalog.List(q.Get("category"), q.Get("ageBand"))
	if games == nil {
		games = []catalog.Game{}
	}

	writeJSON(w, http.StatusOK, games)
}
