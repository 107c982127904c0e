// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"

	"github-history-sync/internal/database"
	custom_errors "github-history-sync/internal/errors"
	"github-history-sync/internal/syncer"
)

// Initializer registers a repository and runs its first pass.
type Initializer interface {
	InitializeRepository(ctx context.Context, owner, name string) (syncer.Result, error)
}

// Handler is the container for API dependencies.
type Handler struct {
	db          database.Querier
	initializer Initializer
	logger      *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
// metrics may be nil when the exposition endpoint is disabled.
func NewRouter(db database.Querier, initializer Initializer, metrics http.Handler, logger *slog.Logger) http.Handler {
	h := &Handler{
		db:          db,
		initializer: initializer,
		logger:      logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	// Initialization walks upstream history and can take a while.
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/health", h.healthCheck)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	// API Routes
	r.Route("/v1", func(r chi.Router) {
		r.Get("/repos", h.listRepositories)
		r.Post("/repos", h.initRepository)
		r.Route("/repos/{owner}/{name}", func(r chi.Router) {
			r.Delete("/", h.deleteRepository)
			r.Get("/commits", h.getCommits)
			r.Get("/issues", h.getIssues)
			r.Get("/frontier", h.getFrontier)
			r.Get("/stats/top-committers", h.getTopCommitters)
		})
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type repositoryView struct {
	FullName      string     `json:"full_name"`
	Initialized   bool       `json:"initialized"`
	StarsCount    int32      `json:"stars_count"`
	DefaultBranch string     `json:"default_branch"`
	LastSyncedAt  *time.Time `json:"last_synced_at"`
}

// listRepositories returns every tracked repository with its initialization state.
// GET /v1/repos
func (h *Handler) listRepositories(w http.ResponseWriter, r *http.Request) {
	repos, err := h.db.ListRepositories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list repositories", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	views := make([]repositoryView, 0, len(repos))
	for _, repo := range repos {
		v := repositoryView{
			FullName:      repo.Owner + "/" + repo.Name,
			Initialized:   repo.IsInitialized,
			StarsCount:    repo.StarsCount,
			DefaultBranch: repo.DefaultBranch,
		}
		if repo.LastSyncedAt.Valid {
			t := repo.LastSyncedAt.Time
			v.LastSyncedAt = &t
		}
		views = append(views, v)
	}
	respondWithJSON(w, http.StatusOK, views)
}

type initRequest struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

type initResponse struct {
	FullName         string `json:"full_name"`
	CommitsProcessed int    `json:"commits_processed"`
	IssuesProcessed  int    `json:"issues_processed"`
	Message          string `json:"message"`
}

// initRepository registers a repository and synchronizes it right away.
// POST /v1/repos
func (h *Handler) initRepository(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Owner, req.Repo = strings.TrimSpace(req.Owner), strings.TrimSpace(req.Repo)
	if req.Owner == "" || req.Repo == "" {
		respondWithError(w, http.StatusBadRequest, "Both 'owner' and 'repo' are required")
		return
	}

	res, err := h.initializer.InitializeRepository(r.Context(), req.Owner, req.Repo)
	switch {
	case errors.Is(err, custom_errors.ErrRepositoryBusy):
		respondWithError(w, http.StatusConflict, "Repository is currently being synchronized")
		return
	case errors.Is(err, custom_errors.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Repository not found upstream")
		return
	case err != nil:
		h.logger.Error("Failed to initialize repository", "owner", req.Owner, "repo", req.Repo, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	message := "Repository synchronized"
	if res.Initialized {
		message = "Repository initialized"
	}
	respondWithJSON(w, http.StatusOK, initResponse{
		FullName:         res.FullName,
		CommitsProcessed: res.CommitsProcessed,
		IssuesProcessed:  res.IssuesProcessed,
		Message:          message,
	})
}

// deleteRepository removes a repository and everything stored for it.
// DELETE /v1/repos/{owner}/{name}
func (h *Handler) deleteRepository(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.lookupRepository(w, r)
	if !ok {
		return
	}
	if err := h.db.DeleteRepository(r.Context(), repo.ID); err != nil {
		h.logger.Error("Failed to delete repository", "repo_id", repo.ID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getCommits handles the request to retrieve commits for a repository.
// GET /v1/repos/{owner}/{name}/commits?limit&offset
func (h *Handler) getCommits(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pagination(w, r)
	if !ok {
		return
	}
	repo, ok := h.lookupRepository(w, r)
	if !ok {
		return
	}

	commits, err := h.db.GetCommitsByRepoID(r.Context(), database.GetCommitsByRepoIDParams{
		RepositoryID: repo.ID,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		h.logger.Error("Failed to get commits", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, nonNil(commits))
}

// getIssues lists stored issues, newest number first.
// GET /v1/repos/{owner}/{name}/issues?limit&offset
func (h *Handler) getIssues(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pagination(w, r)
	if !ok {
		return
	}
	repo, ok := h.lookupRepository(w, r)
	if !ok {
		return
	}

	issues, err := h.db.ListIssues(r.Context(), database.ListIssuesParams{
		RepositoryID: repo.ID,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		h.logger.Error("Failed to get issues", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, nonNil(issues))
}

type commitFrontierView struct {
	Sha         string    `json:"sha"`
	CommittedAt time.Time `json:"committed_at"`
	// Gap is set when the frontier commit names a parent that is not stored yet.
	Gap bool `json:"gap"`
}

type frontierResponse struct {
	Commit        *commitFrontierView `json:"commit"`
	Issue         *int32              `json:"issue"`
	DeletedIssues int64               `json:"deleted_issues"`
}

// getFrontier reports where the next backward passes resume.
// GET /v1/repos/{owner}/{name}/frontier
func (h *Handler) getFrontier(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.lookupRepository(w, r)
	if !ok {
		return
	}

	var resp frontierResponse
	c, err := h.db.GetCommitFrontier(r.Context(), repo.ID)
	switch {
	case err == nil:
		resp.Commit = &commitFrontierView{Sha: c.Sha, CommittedAt: c.CommittedAt, Gap: c.ParentSha.Valid}
	case !errors.Is(err, pgx.ErrNoRows):
		h.logger.Error("Failed to get commit frontier", "repo_id", repo.ID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	n, err := h.db.GetIssueFrontier(r.Context(), repo.ID)
	switch {
	case err == nil:
		resp.Issue = &n
	case !errors.Is(err, pgx.ErrNoRows):
		h.logger.Error("Failed to get issue frontier", "repo_id", repo.ID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resp.DeletedIssues, err = h.db.CountDeletedIssues(r.Context(), repo.ID)
	if err != nil {
		h.logger.Error("Failed to count deleted issues", "repo_id", repo.ID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// getTopCommitters handles the request for top commit authors.
// GET /v1/repos/{owner}/{name}/stats/top-committers?limit=N
func (h *Handler) getTopCommitters(w http.ResponseWriter, r *http.Request) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		limitStr = "10" // Default limit
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter. Must be an integer between 1 and 100.")
		return
	}

	repo, ok := h.lookupRepository(w, r)
	if !ok {
		return
	}

	authors, err := h.db.GetTopNCommitAuthors(r.Context(), database.GetTopNCommitAuthorsParams{
		RepositoryID: repo.ID,
		Limit:        int32(limit),
	})
	if err != nil {
		h.logger.Error("Failed to get top commit authors", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, nonNil(authors))
}

// lookupRepository resolves the {owner}/{name} path and writes the error response itself.
func (h *Handler) lookupRepository(w http.ResponseWriter, r *http.Request) (database.Repository, bool) {
	repo, err := h.db.GetRepositoryByOwnerAndName(r.Context(), database.GetRepositoryByOwnerAndNameParams{
		Owner: chi.URLParam(r, "owner"),
		Name:  chi.URLParam(r, "name"),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Repository not found")
			return database.Repository{}, false
		}
		h.logger.Error("Failed to get repository", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return database.Repository{}, false
	}
	return repo, true
}

func pagination(w http.ResponseWriter, r *http.Request) (limit, offset int32, ok bool) {
	q := r.URL.Query()
	l, o := 50, 0
	var err error
	if s := q.Get("limit"); s != "" {
		if l, err = strconv.Atoi(s); err != nil || l <= 0 || l > 500 {
			respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter. Must be an integer between 1 and 500.")
			return 0, 0, false
		}
	}
	if s := q.Get("offset"); s != "" {
		if o, err = strconv.Atoi(s); err != nil || o < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid 'offset' parameter. Must be a non-negative integer.")
			return 0, 0, false
		}
	}
	return int32(l), int32(o), true
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
