// internal/syncer/syncer.go
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github-history-sync/internal/database"
	custom_errors "github-history-sync/internal/errors"
	"github-history-sync/internal/lock"
	"github-history-sync/internal/model"
	"github-history-sync/internal/telemetry"
)

// Source is the upstream history provider. github.Client implements it.
type Source interface {
	GetRepository(ctx context.Context, owner, name string) (*model.Repository, error)
	GetCommits(ctx context.Context, owner, name string, page, perPage int) ([]model.Commit, error)
	GetCommitsBefore(ctx context.Context, owner, name, sha string, page, perPage int) ([]model.Commit, error)
	GetCommitDetail(ctx context.Context, owner, name, sha string) ([]model.CommitDiff, error)
	GetIssues(ctx context.Context, owner, name string, page, perPage int) ([]model.Issue, error)
	GetIssueByNumber(ctx context.Context, owner, name string, number int) (*model.Issue, error)
	GetIssueComments(ctx context.Context, owner, name string, number, limit int) ([]model.IssueComment, error)
	GetPullRequest(ctx context.Context, owner, name string, number int) (*model.PullRequest, error)
	GetPullRequestReviewComments(ctx context.Context, owner, name string, number, limit int) ([]model.ReviewComment, error)
}

// RepoIdentifier holds the owner and name of a repository.
type RepoIdentifier struct {
	Owner string
	Name  string
}

func (r RepoIdentifier) String() string {
	return r.Owner + "/" + r.Name
}

// Options are the per-cycle bounds of a Syncer.
type Options struct {
	CommitBatchSize int
	IssueBatchSize  int
	ForwardPerPage  int
	MaxComments     int
	LockTTL         time.Duration
}

// Result is the outcome of one repository pass.
type Result struct {
	RepositoryID     int64
	FullName         string
	Initialized      bool
	CommitsProcessed int
	IssuesProcessed  int
	Skipped          bool
	Err              error
}

// Syncer orchestrates the fetching and storing of data.
type Syncer struct {
	store   database.Store
	source  Source
	locker  lock.Locker
	metrics *telemetry.SyncMetrics
	logger  *slog.Logger
	opts    Options

	commits *commitTracker
	issues  *issueTracker
}

// NewSyncer creates a new Syncer instance.
func NewSyncer(store database.Store, source Source, locker lock.Locker, metrics *telemetry.SyncMetrics, logger *slog.Logger, opts Options) (*Syncer, error) {
	if opts.CommitBatchSize < 2 {
		return nil, fmt.Errorf("commit batch size must be at least 2, got %d", opts.CommitBatchSize)
	}
	if opts.IssueBatchSize < 1 || opts.ForwardPerPage < 1 {
		return nil, fmt.Errorf("issue batch size and forward page size must be positive")
	}
	if opts.LockTTL <= 0 {
		return nil, fmt.Errorf("lock TTL must be positive")
	}

	return &Syncer{
		store:   store,
		source:  source,
		locker:  locker,
		metrics: metrics,
		logger:  logger,
		opts:    opts,
		commits: &commitTracker{source: source, logger: logger},
		issues:  &issueTracker{source: source, logger: logger, maxComments: opts.MaxComments},
	}, nil
}

// Register fetches upstream metadata and creates (or refreshes) the repository row.
func (s *Syncer) Register(ctx context.Context, owner, name string) (database.Repository, error) {
	ghRepo, err := s.source.GetRepository(ctx, owner, name)
	if err != nil {
		return database.Repository{}, fmt.Errorf("fetching repository %s/%s: %w", owner, name, err)
	}
	if ghRepo.Owner == "" || ghRepo.Name == "" {
		ghRepo.Owner, ghRepo.Name = owner, name
	}

	var repo database.Repository
	err = s.store.ExecTx(ctx, func(q database.Querier) error {
		var err error
		repo, err = s.upsertRepository(ctx, q, ghRepo)
		return err
	})
	if err != nil {
		return database.Repository{}, fmt.Errorf("registering repository %s/%s: %w", owner, name, err)
	}
	return repo, nil
}

// InitializeRepository registers a repository and runs its next pass right away.
// It returns errors.ErrRepositoryBusy when another pass holds the repository.
func (s *Syncer) InitializeRepository(ctx context.Context, owner, name string) (Result, error) {
	repo, err := s.Register(ctx, owner, name)
	if err != nil {
		return Result{}, err
	}

	lease, err := s.locker.TryAcquire(ctx, lock.RepositoryKey(repo.ID), s.opts.LockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		return Result{RepositoryID: repo.ID, FullName: fullName(repo), Skipped: true}, custom_errors.ErrRepositoryBusy
	}
	if err != nil {
		return Result{}, err
	}
	defer s.release(lease)

	res := s.SyncRepository(ctx, repo)
	return res, res.Err
}

// RunCycle performs a synchronization pass for every stored repository, in
// insertion order. A failing repository is logged and the cycle moves on.
func (s *Syncer) RunCycle(ctx context.Context) ([]Result, error) {
	s.logger.Info("Starting new sync cycle")
	start := time.Now()

	repos, err := s.store.ListRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}

	results := make([]Result, 0, len(repos))
	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			s.logger.Info("Sync cycle interrupted", "reason", err)
			return results, err
		}
		results = append(results, s.syncLocked(ctx, repo))
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.Info("Sync cycle finished", "repositories", len(results), "failed", failed, "duration", time.Since(start).String())
	return results, nil
}

func (s *Syncer) syncLocked(ctx context.Context, repo database.Repository) Result {
	logger := s.logger.With("owner", repo.Owner, "repo", repo.Name, "repo_id", repo.ID)

	lease, err := s.locker.TryAcquire(ctx, lock.RepositoryKey(repo.ID), s.opts.LockTTL)
	if errors.Is(err, lock.ErrNotAcquired) {
		logger.Info("Repository is being synchronized elsewhere, skipping")
		return Result{RepositoryID: repo.ID, FullName: fullName(repo), Skipped: true}
	}
	if err != nil {
		logger.Error("Failed to acquire repository lock", "error", err)
		return Result{RepositoryID: repo.ID, FullName: fullName(repo), Err: err}
	}
	defer s.release(lease)

	return s.SyncRepository(ctx, repo)
}

// SyncRepository runs one pass for a stored repository inside a single
// transaction. The row is re-read under a row lock, so the initialized flag
// reflects any pass that committed after repo was loaded. Uninitialized
// repositories get the bounded initial fetch, initialized ones the steady
// incremental pass.
func (s *Syncer) SyncRepository(ctx context.Context, repo database.Repository) Result {
	logger := s.logger.With("owner", repo.Owner, "repo", repo.Name, "repo_id", repo.ID)
	res := Result{RepositoryID: repo.ID, FullName: fullName(repo)}
	start := time.Now()

	err := s.store.ExecTx(ctx, func(q database.Querier) error {
		res.CommitsProcessed, res.IssuesProcessed = 0, 0
		// The caller's row may predate a pass that finished after it was read.
		current, err := q.GetRepositoryForUpdate(ctx, repo.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("repository %s was removed: %w", res.FullName, err)
		}
		if err != nil {
			return fmt.Errorf("reading repository state: %w", err)
		}
		if !current.IsInitialized {
			logger.Info("Initializing repository")
			return s.initialize(ctx, q, current, &res)
		}
		logger.Info("Syncing repository")
		return s.steady(ctx, q, current, &res)
	})
	s.metrics.RecordRepositorySync(ctx, res.FullName, time.Since(start), err == nil)

	if err != nil {
		res.Err = err
		res.CommitsProcessed, res.IssuesProcessed = 0, 0
		if errors.Is(err, context.Canceled) {
			logger.Info("Repository sync cancelled, changes rolled back")
			return res
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			logger.Error("Failed to sync repository", "error", err, "pg_code", pgErr.Code)
		} else {
			logger.Error("Failed to sync repository", "error", err)
		}
		return res
	}

	s.metrics.AddItemsProcessed(ctx, res.FullName, telemetry.KindCommit, res.CommitsProcessed)
	s.metrics.AddItemsProcessed(ctx, res.FullName, telemetry.KindIssue, res.IssuesProcessed)
	logger.Info("Repository synced", "commits_processed", res.CommitsProcessed, "issues_processed", res.IssuesProcessed, "initialized", res.Initialized)
	return res
}

// initialize performs the bounded first fetch and flips the repository to initialized.
func (s *Syncer) initialize(ctx context.Context, q database.Querier, repo database.Repository, res *Result) error {
	n, err := s.commits.ExtendBackward(ctx, q, repo, nil, s.opts.ForwardPerPage)
	if err != nil {
		return err
	}
	res.CommitsProcessed += n

	if err := ctx.Err(); err != nil {
		return err
	}

	n, err = s.issues.RefreshForward(ctx, q, repo, s.opts.ForwardPerPage)
	if err != nil {
		return err
	}
	res.IssuesProcessed += n

	if err := q.MarkRepositoryInitialized(ctx, repo.ID); err != nil {
		return fmt.Errorf("marking repository initialized: %w", err)
	}
	res.Initialized = true
	return nil
}

// steady refreshes metadata, then extends commits and issues in both directions.
func (s *Syncer) steady(ctx context.Context, q database.Querier, repo database.Repository, res *Result) error {
	ghRepo, err := s.source.GetRepository(ctx, repo.Owner, repo.Name)
	if err != nil {
		return fmt.Errorf("fetching repository metadata: %w", err)
	}
	if _, err := q.UpdateRepositorySyncData(ctx, updateParams(repo.ID, ghRepo)); err != nil {
		return fmt.Errorf("updating repository metadata: %w", err)
	}

	n, err := s.commits.ExtendForward(ctx, q, repo, s.opts.ForwardPerPage)
	if err != nil {
		return err
	}
	res.CommitsProcessed += n

	frontier, err := s.commits.frontier(ctx, q, repo)
	if err != nil {
		return err
	}
	if frontier != nil {
		n, err := s.commits.ExtendBackward(ctx, q, repo, frontier, s.opts.CommitBatchSize)
		if err != nil {
			return err
		}
		res.CommitsProcessed += n
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	n, err = s.issues.RefreshForward(ctx, q, repo, s.opts.ForwardPerPage)
	if err != nil {
		return err
	}
	res.IssuesProcessed += n

	from, ok, err := s.issues.frontier(ctx, q, repo)
	if err != nil {
		return err
	}
	if ok {
		n, err := s.issues.FillBackward(ctx, q, repo, from, s.opts.IssueBatchSize)
		if err != nil {
			return err
		}
		res.IssuesProcessed += n
	}
	return nil
}

// upsertRepository creates or updates a repository.
func (s *Syncer) upsertRepository(ctx context.Context, q database.Querier, repo *model.Repository) (database.Repository, error) {
	existingRepo, err := q.GetRepositoryByOwnerAndName(ctx, database.GetRepositoryByOwnerAndNameParams{
		Owner: repo.Owner,
		Name:  repo.Name,
	})

	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Info("Repository not found in DB, creating new entry", "owner", repo.Owner, "repo", repo.Name)
		return q.CreateRepository(ctx, database.CreateRepositoryParams{
			GithubRepoID:    repo.GithubRepoID,
			Owner:           repo.Owner,
			Name:            repo.Name,
			Description:     toText(repo.Description),
			Url:             repo.URL,
			DefaultBranch:   repo.DefaultBranch,
			Language:        toText(repo.Language),
			ForksCount:      int32(repo.ForksCount),
			StarsCount:      int32(repo.StarsCount),
			OpenIssuesCount: int32(repo.OpenIssuesCount),
			RepoCreatedAt:   repo.RepoCreatedAt,
			RepoUpdatedAt:   repo.RepoUpdatedAt,
		})
	} else if err != nil {
		return database.Repository{}, err
	}

	s.logger.Info("Repository found in DB, updating metadata", "owner", repo.Owner, "repo", repo.Name, "repo_id", existingRepo.ID)
	return q.UpdateRepositorySyncData(ctx, updateParams(existingRepo.ID, repo))
}

func (s *Syncer) release(lease lock.Lease) {
	// The caller's context may already be cancelled; the lease must still be returned.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := lease.Release(ctx); err != nil {
		s.logger.Warn("Failed to release lock", "key", lease.Key(), "error", err)
	}
}

// ParseRepoIdentifiers parses "owner/name" strings.
func ParseRepoIdentifiers(repos []string) ([]RepoIdentifier, error) {
	var identifiers []RepoIdentifier
	for _, r := range repos {
		parts := strings.Split(strings.TrimSpace(r), "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, &custom_errors.ErrInvalidRepoFormat{Repo: r}
		}
		identifiers = append(identifiers, RepoIdentifier{Owner: parts[0], Name: parts[1]})
	}
	return identifiers, nil
}

func updateParams(id int64, repo *model.Repository) database.UpdateRepositorySyncDataParams {
	return database.UpdateRepositorySyncDataParams{
		ID:              id,
		Description:     toText(repo.Description),
		Language:        toText(repo.Language),
		DefaultBranch:   repo.DefaultBranch,
		ForksCount:      int32(repo.ForksCount),
		StarsCount:      int32(repo.StarsCount),
		OpenIssuesCount: int32(repo.OpenIssuesCount),
		RepoUpdatedAt:   repo.RepoUpdatedAt,
	}
}

func fullName(repo database.Repository) string {
	return repo.Owner + "/" + repo.Name
}

func toText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: *s != ""}
}
