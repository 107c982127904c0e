package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github-history-sync/internal/database"
	custom_errors "github-history-sync/internal/errors"
	"github-history-sync/internal/model"
)

// issueTracker keeps the stored issue numbers contiguous from the newest known
// number down to 1. Every number is resolved either as an Issue or as a
// DeletedIssue tombstone, and a resolved number is never fetched again.
type issueTracker struct {
	source      Source
	logger      *slog.Logger
	maxComments int
}

// frontier returns the largest resolved number whose predecessor is unresolved.
// ok is false when the range is complete down to 1 or nothing is stored.
func (t *issueTracker) frontier(ctx context.Context, q database.Querier, repo database.Repository) (n int32, ok bool, err error) {
	n, err = q.GetIssueFrontier(ctx, repo.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("loading issue frontier: %w", err)
	}
	return n, true, nil
}

// FillBackward resolves the numbers from, from-1, ... for at most steps numbers.
// It returns how many numbers were newly resolved.
func (t *issueTracker) FillBackward(ctx context.Context, q database.Querier, repo database.Repository, from int32, steps int) (int, error) {
	logger := t.logger.With("owner", repo.Owner, "repo", repo.Name, "repo_id", repo.ID)

	resolved := 0
	for i := 0; i < steps; i++ {
		n := from - int32(i)
		if n <= 0 {
			break
		}

		done, err := q.IsIssueNumberResolved(ctx, database.IsIssueNumberResolvedParams{RepositoryID: repo.ID, Number: n})
		if err != nil {
			return resolved, fmt.Errorf("checking issue #%d: %w", n, err)
		}
		if done {
			continue
		}

		issue, err := t.source.GetIssueByNumber(ctx, repo.Owner, repo.Name, int(n))
		if errors.Is(err, custom_errors.ErrNotFound) {
			if err := q.CreateDeletedIssue(ctx, database.CreateDeletedIssueParams{RepositoryID: repo.ID, Number: n}); err != nil {
				return resolved, fmt.Errorf("recording deleted issue #%d: %w", n, err)
			}
			logger.Info("Issue confirmed absent upstream", "number", n)
			resolved++
			continue
		}
		if err != nil {
			return resolved, fmt.Errorf("fetching issue #%d: %w", n, err)
		}

		if err := t.storeNewIssue(ctx, q, repo, issue); err != nil {
			return resolved, err
		}
		resolved++
	}

	logger.Info("Filled issue range backward", "from", from, "resolved", resolved)
	return resolved, nil
}

// RefreshForward stores the perPage most recently created issues. Unknown numbers
// are stored with their comments and counted; known ones only get their metadata
// refreshed.
func (t *issueTracker) RefreshForward(ctx context.Context, q database.Querier, repo database.Repository, perPage int) (int, error) {
	issues, err := t.source.GetIssues(ctx, repo.Owner, repo.Name, 1, perPage)
	if err != nil {
		return 0, fmt.Errorf("fetching recent issues: %w", err)
	}
	if len(issues) == 0 {
		return 0, nil
	}

	numbers := make([]int32, len(issues))
	for i, is := range issues {
		numbers[i] = int32(is.Number)
	}
	knownNumbers, err := q.ListKnownIssueNumbers(ctx, database.ListKnownIssueNumbersParams{RepositoryID: repo.ID, Numbers: numbers})
	if err != nil {
		return 0, fmt.Errorf("checking known issues: %w", err)
	}
	known := make(map[int32]bool, len(knownNumbers))
	for _, n := range knownNumbers {
		known[n] = true
	}

	stored := 0
	for i := range issues {
		issue := &issues[i]
		n := int32(issue.Number)
		if known[n] {
			if err := t.refreshKnownIssue(ctx, q, repo, issue); err != nil {
				return stored, err
			}
			continue
		}

		tombstoned, err := q.IsIssueNumberResolved(ctx, database.IsIssueNumberResolvedParams{RepositoryID: repo.ID, Number: n})
		if err != nil {
			return stored, fmt.Errorf("checking issue #%d: %w", n, err)
		}
		if tombstoned {
			continue
		}

		if err := t.storeNewIssue(ctx, q, repo, issue); err != nil {
			return stored, err
		}
		known[n] = true
		stored++
	}
	if stored > 0 {
		t.logger.Info("Stored new issues", "owner", repo.Owner, "repo", repo.Name, "repo_id", repo.ID, "count", stored)
	}
	return stored, nil
}

// refreshKnownIssue updates a stored issue. Pull request details are fetched
// again only when the issue changed upstream since it was stored.
func (t *issueTracker) refreshKnownIssue(ctx context.Context, q database.Querier, repo database.Repository, issue *model.Issue) error {
	if issue.IsPullRequest {
		stored, err := q.GetIssueByNumber(ctx, database.GetIssueByNumberParams{RepositoryID: repo.ID, Number: int32(issue.Number)})
		if err != nil {
			return fmt.Errorf("loading issue #%d: %w", issue.Number, err)
		}
		if stored.IsPullRequest && stored.IssueUpdated.Equal(issue.IssueUpdated) {
			issue.PullRequest = storedPullRequest(stored)
		} else if err := t.loadPullRequest(ctx, repo, issue); err != nil {
			return err
		}
	}
	if _, err := q.UpsertIssue(ctx, issueParams(repo.ID, issue)); err != nil {
		return fmt.Errorf("refreshing issue #%d: %w", issue.Number, err)
	}
	return nil
}

func (t *issueTracker) loadPullRequest(ctx context.Context, repo database.Repository, issue *model.Issue) error {
	pr, err := t.source.GetPullRequest(ctx, repo.Owner, repo.Name, issue.Number)
	if err != nil {
		return fmt.Errorf("fetching pull request #%d: %w", issue.Number, err)
	}
	issue.PullRequest = pr
	return nil
}

func (t *issueTracker) storeNewIssue(ctx context.Context, q database.Querier, repo database.Repository, issue *model.Issue) error {
	if issue.IsPullRequest {
		if err := t.loadPullRequest(ctx, repo, issue); err != nil {
			return err
		}
	}
	row, err := q.UpsertIssue(ctx, issueParams(repo.ID, issue))
	if err != nil {
		return fmt.Errorf("storing issue #%d: %w", issue.Number, err)
	}
	if t.maxComments <= 0 {
		return nil
	}
	if err := t.storeReviewComments(ctx, q, repo, row.ID, issue); err != nil {
		return err
	}
	if issue.CommentsCount == 0 {
		return nil
	}

	comments, err := t.source.GetIssueComments(ctx, repo.Owner, repo.Name, issue.Number, t.maxComments)
	if err != nil {
		return fmt.Errorf("fetching comments of issue #%d: %w", issue.Number, err)
	}
	if len(comments) == 0 {
		return nil
	}
	if _, err := q.CreateIssueComments(ctx, commentParams(row.ID, comments)); err != nil {
		return fmt.Errorf("storing comments of issue #%d: %w", issue.Number, err)
	}
	return nil
}

func (t *issueTracker) storeReviewComments(ctx context.Context, q database.Querier, repo database.Repository, issueID int64, issue *model.Issue) error {
	if issue.PullRequest == nil || issue.PullRequest.ReviewCommentsCount == 0 {
		return nil
	}
	comments, err := t.source.GetPullRequestReviewComments(ctx, repo.Owner, repo.Name, issue.Number, t.maxComments)
	if err != nil {
		return fmt.Errorf("fetching review comments of pull request #%d: %w", issue.Number, err)
	}
	if len(comments) == 0 {
		return nil
	}
	if _, err := q.CreateReviewComments(ctx, reviewCommentParams(issueID, comments)); err != nil {
		return fmt.Errorf("storing review comments of pull request #%d: %w", issue.Number, err)
	}
	return nil
}

func storedPullRequest(row database.Issue) *model.PullRequest {
	pr := &model.PullRequest{
		Merged:     row.IsMerged,
		BaseBranch: row.BaseBranch,
		HeadBranch: row.HeadBranch,
	}
	if row.MergedAt.Valid {
		merged := row.MergedAt.Time
		pr.MergedAt = &merged
	}
	return pr
}

func issueParams(repoID int64, is *model.Issue) database.UpsertIssueParams {
	labels := is.Labels
	if labels == nil {
		labels = []string{}
	}
	var closedAt pgtype.Timestamptz
	if is.ClosedAt != nil {
		closedAt = pgtype.Timestamptz{Time: *is.ClosedAt, Valid: true}
	}
	params := database.UpsertIssueParams{
		RepositoryID:  repoID,
		Number:        int32(is.Number),
		Title:         is.Title,
		Body:          is.Body,
		State:         is.State,
		IsPullRequest: is.IsPullRequest,
		AuthorLogin:   is.AuthorLogin,
		Labels:        labels,
		Url:           is.URL,
		CommentsCount: int32(is.CommentsCount),
		IssueCreated:  is.IssueCreated,
		IssueUpdated:  is.IssueUpdated,
		ClosedAt:      closedAt,
	}
	if pr := is.PullRequest; pr != nil {
		params.IsMerged = pr.Merged
		params.BaseBranch = pr.BaseBranch
		params.HeadBranch = pr.HeadBranch
		if pr.MergedAt != nil {
			params.MergedAt = pgtype.Timestamptz{Time: *pr.MergedAt, Valid: true}
		}
	}
	return params
}

func commentParams(issueID int64, comments []model.IssueComment) []database.CreateIssueCommentsParams {
	params := make([]database.CreateIssueCommentsParams, len(comments))
	for i, c := range comments {
		params[i] = database.CreateIssueCommentsParams{
			IssueID:         issueID,
			GithubCommentID: c.GithubCommentID,
			Body:            c.Body,
			AuthorLogin:     c.AuthorLogin,
			CommentCreated:  c.CommentCreated,
			CommentUpdated:  c.CommentUpdated,
		}
	}
	return params
}

func reviewCommentParams(issueID int64, comments []model.ReviewComment) []database.CreateReviewCommentsParams {
	params := make([]database.CreateReviewCommentsParams, len(comments))
	for i, c := range comments {
		params[i] = database.CreateReviewCommentsParams{
			IssueID:         issueID,
			GithubCommentID: c.GithubCommentID,
			Path:            c.Path,
			Body:            c.Body,
			AuthorLogin:     c.AuthorLogin,
			CommentCreated:  c.CommentCreated,
			CommentUpdated:  c.CommentUpdated,
		}
	}
	return params
}
