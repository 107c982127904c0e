package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github-history-sync/internal/database"
	"github-history-sync/internal/model"
)

// maxScanPages bounds how far one backward pass pages through history that is
// already stored before giving up on finding new commits.
const maxScanPages = 10

// commitTracker grows the stored commit history as a first-parent chain.
//
// A commit with parent_sha NULL that is not a root is the sentinel: the oldest
// commit of the contiguous known prefix. A commit whose parent_sha names an
// unstored commit is a forward gap. The resume point is the most recently
// committed of either.
type commitTracker struct {
	source Source
	logger *slog.Logger
}

// frontier returns the current resume point, or nil when nothing needs extending.
func (t *commitTracker) frontier(ctx context.Context, q database.Querier, repo database.Repository) (*database.Commit, error) {
	c, err := q.GetCommitFrontier(ctx, repo.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading commit frontier: %w", err)
	}
	return &c, nil
}

// ExtendBackward walks history from the frontier (or from the default branch
// head when frontier is nil) and stores up to batchSize commits, the anchor
// included. It returns the number of newly stored commits.
func (t *commitTracker) ExtendBackward(ctx context.Context, q database.Querier, repo database.Repository, frontier *database.Commit, batchSize int) (int, error) {
	logger := t.logger.With("owner", repo.Owner, "repo", repo.Name, "repo_id", repo.ID)

	limit := batchSize
	startSha := ""
	gapMode := false
	if frontier != nil {
		limit = batchSize - 1
		startSha = frontier.Sha
		gapMode = frontier.ParentSha.Valid
	}
	if limit < 1 {
		return 0, fmt.Errorf("commit batch size %d is too small", batchSize)
	}

	items, exhausted, known, err := t.walk(ctx, q, repo, startSha, limit, gapMode)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		if frontier != nil {
			logger.Warn("Upstream returned no history for frontier commit", "sha", frontier.Sha)
		}
		return 0, nil
	}

	if frontier != nil {
		if items[0].SHA != frontier.Sha {
			return 0, fmt.Errorf("history walk from %s started at %s", frontier.Sha, items[0].SHA)
		}
		if !gapMode {
			if err := t.closeSentinel(ctx, q, *frontier, items[0]); err != nil {
				return 0, err
			}
		}
	}

	lastNew := -1
	for i := range items {
		if !known[items[i].SHA] {
			lastNew = i
		}
	}

	stored := 0
	for i, c := range items {
		if known[c.SHA] {
			continue
		}
		parent, hasParent := c.FirstParent()
		params := commitParams(repo.ID, c)
		// The sentinel moves to the oldest commit of this batch unless the walk reached the end of history.
		if i == lastNew && hasParent && !gapMode && !exhausted {
			params.ParentSha = pgtype.Text{}
			logger.Debug("Moving commit sentinel", "sha", c.SHA, "true_parent", parent)
		}
		inserted, err := t.storeCommit(ctx, q, repo, params)
		if err != nil {
			return stored, err
		}
		if inserted {
			stored++
		}
	}

	logger.Info("Extended commit history backward", "from", startSha, "stored", stored, "gap_mode", gapMode, "exhausted", exhausted)
	return stored, nil
}

// ExtendForward stores the perPage most recent commits of the default branch
// that are not known yet, each with its true parent.
func (t *commitTracker) ExtendForward(ctx context.Context, q database.Querier, repo database.Repository, perPage int) (int, error) {
	commits, err := t.source.GetCommits(ctx, repo.Owner, repo.Name, 1, perPage)
	if err != nil {
		return 0, fmt.Errorf("fetching recent commits: %w", err)
	}
	known, err := knownShas(ctx, q, repo.ID, commits)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, c := range commits {
		if known[c.SHA] {
			continue
		}
		inserted, err := t.storeCommit(ctx, q, repo, commitParams(repo.ID, c))
		if err != nil {
			return stored, err
		}
		known[c.SHA] = true
		if inserted {
			stored++
		}
	}
	if stored > 0 {
		t.logger.Info("Stored new commits from head", "owner", repo.Owner, "repo", repo.Name, "repo_id", repo.ID, "count", stored)
	}
	return stored, nil
}

// walk pages through history starting at startSha until limit unknown commits
// were seen, history ends, or maxScanPages pages were read. With stopAtKnown
// the walk also ends at the first stored commit past startSha, where a gap
// closes. exhausted reports that the walk saw the oldest reachable commit.
// Items are unique by sha.
func (t *commitTracker) walk(ctx context.Context, q database.Querier, repo database.Repository, startSha string, limit int, stopAtKnown bool) (items []model.Commit, exhausted bool, known map[string]bool, err error) {
	perPage := min(limit+1, 100)
	known = map[string]bool{}
	seen := map[string]bool{}
	fresh := 0

	for page := 1; page <= maxScanPages; page++ {
		var batch []model.Commit
		if startSha == "" {
			batch, err = t.source.GetCommits(ctx, repo.Owner, repo.Name, page, perPage)
		} else {
			batch, err = t.source.GetCommitsBefore(ctx, repo.Owner, repo.Name, startSha, page, perPage)
		}
		if err != nil {
			return nil, false, nil, fmt.Errorf("fetching commits page %d: %w", page, err)
		}

		pageKnown, err := knownShas(ctx, q, repo.ID, batch)
		if err != nil {
			return nil, false, nil, err
		}
		for _, c := range batch {
			if seen[c.SHA] {
				continue
			}
			seen[c.SHA] = true
			if pageKnown[c.SHA] && stopAtKnown && c.SHA != startSha {
				return items, false, known, nil
			}
			items = append(items, c)
			if pageKnown[c.SHA] {
				known[c.SHA] = true
				continue
			}
			fresh++
			if fresh == limit {
				return items, false, known, nil
			}
		}
		if len(batch) < perPage {
			return items, true, known, nil
		}
	}
	return items, false, known, nil
}

// closeSentinel links the old sentinel to its true parent, or marks it as the root.
func (t *commitTracker) closeSentinel(ctx context.Context, q database.Querier, sentinel database.Commit, upstream model.Commit) error {
	parent, ok := upstream.FirstParent()
	err := q.SetCommitParent(ctx, database.SetCommitParentParams{
		ID:        sentinel.ID,
		ParentSha: pgtype.Text{String: parent, Valid: ok},
		IsRoot:    !ok,
	})
	if err != nil {
		return fmt.Errorf("linking sentinel %s: %w", sentinel.Sha, err)
	}
	if !ok {
		t.logger.Info("Reached root commit", "sha", sentinel.Sha, "repo_id", sentinel.RepositoryID)
	}
	return nil
}

// storeCommit inserts a commit with its diff and reports whether the row is new.
func (t *commitTracker) storeCommit(ctx context.Context, q database.Querier, repo database.Repository, params database.CreateCommitParams) (bool, error) {
	row, err := q.CreateCommit(ctx, params)
	if errors.Is(err, pgx.ErrNoRows) {
		// Already stored under the same sha.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storing commit %s: %w", params.Sha, err)
	}

	diffs, err := t.source.GetCommitDetail(ctx, repo.Owner, repo.Name, params.Sha)
	if err != nil {
		return true, fmt.Errorf("fetching diff of %s: %w", params.Sha, err)
	}
	if len(diffs) == 0 {
		return true, nil
	}
	if _, err := q.CreateCommitDiffs(ctx, diffParams(row.ID, diffs)); err != nil {
		return true, fmt.Errorf("storing diff of %s: %w", params.Sha, err)
	}
	return true, nil
}

func knownShas(ctx context.Context, q database.Querier, repoID int64, commits []model.Commit) (map[string]bool, error) {
	known := map[string]bool{}
	if len(commits) == 0 {
		return known, nil
	}
	shas := make([]string, len(commits))
	for i, c := range commits {
		shas[i] = c.SHA
	}
	existing, err := q.ListExistingCommitShas(ctx, database.ListExistingCommitShasParams{
		RepositoryID: repoID,
		Shas:         shas,
	})
	if err != nil {
		return nil, fmt.Errorf("checking known commits: %w", err)
	}
	for _, sha := range existing {
		known[sha] = true
	}
	return known, nil
}

func commitParams(repoID int64, c model.Commit) database.CreateCommitParams {
	parent, ok := c.FirstParent()
	return database.CreateCommitParams{
		RepositoryID:   repoID,
		Sha:            c.SHA,
		ParentSha:      pgtype.Text{String: parent, Valid: ok},
		IsRoot:         !ok,
		Message:        c.Message,
		AuthorName:     c.AuthorName,
		AuthorEmail:    c.AuthorEmail,
		AuthoredAt:     c.AuthoredAt,
		CommitterName:  c.CommitterName,
		CommitterEmail: c.CommitterEmail,
		CommittedAt:    c.CommittedAt,
		Url:            c.URL,
	}
}

func diffParams(commitID int64, diffs []model.CommitDiff) []database.CreateCommitDiffsParams {
	params := make([]database.CreateCommitDiffsParams, len(diffs))
	for i, d := range diffs {
		params[i] = database.CreateCommitDiffsParams{
			CommitID:  commitID,
			FilePath:  d.FilePath,
			Status:    d.Status,
			Additions: int32(d.Additions),
			Deletions: int32(d.Deletions),
			Patch:     d.Patch,
		}
	}
	return params
}
