package leaderboard

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// API serves the leaderboard REST endpoints under /api.
type API struct {
	store *Store
	mux   *http.ServeMux
}

func NewAPI(store *Store) *API {
	a := &API{store: store, mux: http.NewServeMux()}

	a.mux.HandleFunc("POST /api/score/addscore", a.addScore)
	a.mux.HandleFunc("GET /api/score/allscores", a.allScores)
	a.mux.HandleFunc("GET /api/score/top/{game}", a.topScores)
	a.mux.HandleFunc("GET /api/games", a.games)

	return a
}

// Handler wraps the API with CORS allowing any origin.
func (a *API) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept"},
	})
	return c.Handler(a.mux)
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *API) addScore(w http.ResponseWriter, r *http.Request) {
	sub, err := DecodeSubmission(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := a.store.AddScore(r.Context(), sub.Pseudo, sub.Score, sub.Game)
	if errors.Is(err, ErrUnknownGame) {
		writeError(w, http.StatusBadRequest, "game \""+sub.Game+"\" not found")
		return
	}
	if err != nil {
		log.Printf("api: addscore: %v\n", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (a *API) allScores(w http.ResponseWriter, r *http.Request) {
	scores, err := a.store.AllScores(r.Context())
	if err != nil {
		log.Printf("api: allscores: %v\n", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (a *API) topScores(w http.ResponseWriter, r *http.Request) {
	game := strings.TrimSpace(r.PathValue("game"))

	scores, err := a.store.TopScores(r.Context(), game, DefaultTopLimit)
	if err != nil {
		log.Printf("api: top %q: %v\n", game, err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	if len(scores) == 0 {
		writeError(w, http.StatusNotFound, "no scores for game \""+game+"\"")
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (a *API) games(w http.ResponseWriter, r *http.Request) {
	names, err := a.store.Games(r.Context())
	if err != nil {
		log.Printf("api: games: %v\n", err)
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
