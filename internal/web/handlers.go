package web

import (
	"net/http"
	"regexp"

	"github.com/dexapi/pokedex/internal/pokedex"
	"github.com/go-chi/chi/v5"
)

// slugPattern is the shape every stored slug has: lower-case ASCII words
// joined by single hyphens. Anything else is rejected before the store
// is touched.
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// pokemonResponse is the JSON shape for one row. The identifier renders
// as its canonical base62 text and the effectiveness block as a keyed
// object.
type pokemonResponse struct {
	*pokedex.Row
	AttackEffectiveness map[string]float32 `json:"attackEffectiveness"`
}

// handleGetPokemon serves GET /api/pokemon/{slug}.
func (s *Server) handleGetPokemon(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" || !slugPattern.MatchString(slug) {
		respondError(w, r, http.StatusBadRequest, "invalid_slug", "slug must be lower-case words joined by hyphens")
		return
	}

	row, err := s.finder.FindBySlug(r.Context(), slug)
	if err != nil {
		respondPersistError(w, r, err)
		return
	}
	if row == nil {
		respondError(w, r, http.StatusNotFound, "not_found", "no pokemon with slug "+slug)
		return
	}

	writeJSON(w, r, pokemonResponse{
		Row:                 row,
		AttackEffectiveness: row.EffectivenessByType(),
	})
}

// handleHealth serves GET /healthz with a database ping.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, "db_unreachable", "database unreachable")
		return
	}
	writeJSON(w, r, map[string]string{"status": "ok"})
}
