package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/livedeck/reactions-backend/api/validator"
)

// ErrPresentationNotFound is returned by a Registry when no presentation is
// registered under the requested slug.
var ErrPresentationNotFound = errors.New("presentation not found")

// An Issuer mints scoped access tokens for a device.
type Issuer interface {
	Issue(userID string) (Token, error)
}

// A TokenCache caches vended tokens per user so successive page loads within
// the cache TTL reuse the same token instead of minting a fresh one. The
// cache's TTL must be configured at or below the token validity window; a
// hit is returned verbatim without re-checking freshness.
type TokenCache interface {
	GetToken(ctx context.Context, userID string) (Token, bool, error)
	PutToken(ctx context.Context, userID string, tok Token) error
}

// A Registry provides durable storage for presentation metadata.
type Registry interface {
	ListPresentations(ctx context.Context) ([]Presentation, error)
	GetPresentation(ctx context.Context, slug string) (Presentation, error)
	InsertPresentation(ctx context.Context, p Presentation) (Presentation, error)
}

// A Leaderboard serves ranked reaction tallies for a presentation.
type Leaderboard interface {
	TopDescending(ctx context.Context, board string, startRank int) ([]LeaderboardEntry, error)
}

// A Verifier checks a vended access token. Registration is the API's only
// write surface, so it is the only guarded route.
type Verifier interface {
	Verify(token string) error
}

// API provides the REST endpoints for the application.
type API struct {
	Logger      *slog.Logger
	Issuer      Issuer
	Tokens      TokenCache
	Registry    Registry
	Leaderboard Leaderboard
	Verifier    Verifier
	Val         *validator.Validator

	once sync.Once
	mux  *http.ServeMux
}

func (a *API) setupRoutes() {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/tokens", a.getToken)
	mux.HandleFunc("GET /api/presentations", a.listPresentations)
	mux.HandleFunc("POST /api/presentations", a.createPresentation)
	mux.HandleFunc("GET /api/presentations/{slug}", a.getPresentation)
	mux.HandleFunc("GET /api/presentations/{slug}/leaderboards", a.getLeaderboards)

	a.mux = mux
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.once.Do(a.setupRoutes)
	a.Logger.Info("Request received", "method", r.Method, "path", r.URL.Path)
	a.mux.ServeHTTP(w, r)
}

func (a *API) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.Logger.Error("Could not encode JSON body", "error", err.Error())
	}
}

func (a *API) respondError(w http.ResponseWriter, status int, err error, msg string) {
	type response struct {
		Message string `json:"message"`
	}
	a.Logger.Error("Error", "error", err.Error())
	a.respond(w, status, response{Message: msg})
}

func (a *API) validateBody(w http.ResponseWriter, s interface{}) bool {
	errs := a.Val.ValidateStruct(s)
	type response struct {
		Errors []validator.ValidationError `json:"errors"`
	}

	if len(errs) > 0 {
		a.respond(w, http.StatusBadRequest, &response{
			Errors: errs,
		})
		return false
	}
	return true
}

// getToken vends a scoped access token for the device in the user query
// parameter. The per-user cache is consulted first; within its TTL the same
// token is returned on every call.
func (a *API) getToken(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user")
	if userID == "" {
		a.respondError(w, http.StatusBadRequest, errors.New("missing user query parameter"), "A user id is required")
		return
	}

	tok, ok, err := a.Tokens.GetToken(r.Context(), userID)
	if err != nil {
		a.Logger.Error("Could not read token cache", "error", err.Error(), "user", userID)
	}
	if ok {
		a.Logger.Info("Token cache hit", "user", userID)
		a.respond(w, http.StatusOK, tok)
		return
	}

	tok, err = a.Issuer.Issue(userID)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Something went wrong")
		return
	}

	if err := a.Tokens.PutToken(r.Context(), userID, tok); err != nil {
		a.Logger.Error("Could not cache token", "error", err.Error(), "user", userID)
	}

	a.respond(w, http.StatusOK, tok)
}

func (a *API) listPresentations(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Presentations []Presentation `json:"presentations"`
	}

	ps, err := a.Registry.ListPresentations(r.Context())
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not list presentations")
		return
	}
	if ps == nil {
		ps = []Presentation{}
	}

	a.respond(w, http.StatusOK, response{Presentations: ps})
}

// authorize admits the request when it carries a currently valid access
// token as a bearer credential. With no verifier configured the guard is off.
func (a *API) authorize(w http.ResponseWriter, r *http.Request) bool {
	if a.Verifier == nil {
		return true
	}
	tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || tok == "" {
		a.respondError(w, http.StatusUnauthorized, errors.New("missing bearer token"), "A valid access token is required")
		return false
	}
	if err := a.Verifier.Verify(tok); err != nil {
		a.respondError(w, http.StatusUnauthorized, err, "A valid access token is required")
		return false
	}
	return true
}

func (a *API) createPresentation(w http.ResponseWriter, r *http.Request) {
	type request struct {
		Slug   string `json:"slug" validate:"required,slug"`
		Title  string `json:"title" validate:"required"`
		DeckID string `json:"deck_id" validate:"required"`
	}

	if !a.authorize(w, r) {
		return
	}

	var body request
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		a.respondError(w, http.StatusBadRequest, err, "Could not decode request body")
		return
	}

	if valid := a.validateBody(w, &body); !valid {
		return
	}

	err = r.Body.Close()
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not close request body")
		return
	}

	p, err := a.Registry.InsertPresentation(r.Context(), Presentation{
		Slug:      body.Slug,
		Title:     body.Title,
		DeckID:    body.DeckID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not create presentation")
		return
	}

	a.respond(w, http.StatusCreated, p)
}

func (a *API) getPresentation(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	p, err := a.Registry.GetPresentation(r.Context(), slug)
	if errors.Is(err, ErrPresentationNotFound) {
		a.respondError(w, http.StatusNotFound, err, fmt.Sprintf("We couldn't find a presentation named %s", slug))
		return
	}
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Something went wrong")
		return
	}

	a.respond(w, http.StatusOK, p)
}

// getLeaderboards serves the results view: both boards of a presentation,
// ranked by score descending. A presentation with no reactions yet simply
// yields empty boards.
func (a *API) getLeaderboards(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Reactions []LeaderboardEntry `json:"reactions"`
		Reacters  []LeaderboardEntry `json:"reacters"`
	}

	slug := r.PathValue("slug")
	if _, err := a.Registry.GetPresentation(r.Context(), slug); errors.Is(err, ErrPresentationNotFound) {
		a.respondError(w, http.StatusNotFound, err, fmt.Sprintf("We couldn't find a presentation named %s", slug))
		return
	} else if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Something went wrong")
		return
	}

	reactions, err := a.Leaderboard.TopDescending(r.Context(), slug, 0)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not load leaderboard")
		return
	}

	reacters, err := a.Leaderboard.TopDescending(r.Context(), slug+"-reacters", 0)
	if err != nil {
		a.respondError(w, http.StatusInternalServerError, err, "Could not load leaderboard")
		return
	}

	if reactions == nil {
		reactions = []LeaderboardEntry{}
	}
	if reacters == nil {
		reacters = []LeaderboardEntry{}
	}

	a.respond(w, http.StatusOK, response{
		Reactions: reactions,
		Reacters:  reacters,
	})
}
