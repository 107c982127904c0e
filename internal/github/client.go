// internal/github/client.go
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	custom_errors "github-history-sync/internal/errors"
	"github-history-sync/internal/model"
)

const (
	defaultMaxRetries     = 3
	defaultRetryDelay     = 5 * time.Second
	defaultRateLimitDelay = 60 * time.Second
	defaultHTTPTimeout    = 30 * time.Second

	// GitHub caps per_page at 100 for every listing used here.
	maxPerPage = 100
)

// Client is a wrapper around the go-github client.
// Every call is paced by a client-side limiter and retried on transient
// and rate-limit failures.
type Client struct {
	gh      *github.Client
	logger  *slog.Logger
	limiter *rate.Limiter

	baseURL        string
	maxRetries     int
	retryDelay     time.Duration
	rateLimitDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (GitHub Enterprise, test servers).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithRetryPolicy sets the number of attempts per call and the delays used between them.
func WithRetryPolicy(maxRetries int, retryDelay, rateLimitDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = retryDelay
		c.rateLimitDelay = rateLimitDelay
	}
}

// WithRequestRate limits outgoing requests to rps per second. Zero or less disables pacing.
func WithRequestRate(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates and configures a new Client instance.
// A non-empty token is used to create an authenticated http.Client.
func NewClient(token string, logger *slog.Logger, opts ...Option) (*Client, error) {
	c := &Client{
		logger:         logger,
		limiter:        rate.NewLimiter(rate.Inf, 1),
		maxRetries:     defaultMaxRetries,
		retryDelay:     defaultRetryDelay,
		rateLimitDelay: defaultRateLimitDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxRetries < 1 {
		c.maxRetries = 1
	}

	httpClient := &http.Client{Timeout: defaultHTTPTimeout}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = defaultHTTPTimeout
	}
	c.gh = github.NewClient(httpClient)

	if c.baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(c.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", c.baseURL, err)
		}
		c.gh.BaseURL = u
	}
	return c, nil
}

// GetRepository fetches repository details and translates them to our internal model.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (*model.Repository, error) {
	repo, err := withRetry(ctx, c, "get_repository", func(ctx context.Context) (*github.Repository, error) {
		r, _, err := c.gh.Repositories.Get(ctx, owner, name)
		return r, err
	})
	if err != nil {
		return nil, err
	}
	return toInternalRepository(repo), nil
}

// GetCommits fetches one page of commits from the head of the default branch, newest first.
func (c *Client) GetCommits(ctx context.Context, owner, name string, page, perPage int) ([]model.Commit, error) {
	return c.listCommits(ctx, owner, name, "", page, perPage)
}

// GetCommitsBefore fetches one page of the history reachable from sha, newest first.
// The first item of page 1 is the commit sha itself.
func (c *Client) GetCommitsBefore(ctx context.Context, owner, name, sha string, page, perPage int) ([]model.Commit, error) {
	if sha == "" {
		return nil, &custom_errors.ContractViolationError{Entity: "commit", Field: "sha"}
	}
	return c.listCommits(ctx, owner, name, sha, page, perPage)
}

func (c *Client) listCommits(ctx context.Context, owner, name, sha string, page, perPage int) ([]model.Commit, error) {
	opts := &github.CommitsListOptions{
		SHA: sha,
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: clampPerPage(perPage),
		},
	}
	c.logger.Debug("Fetching commits page", "owner", owner, "repo", name, "sha", sha, "page", page)

	commits, err := withRetry(ctx, c, "list_commits", func(ctx context.Context) ([]*github.RepositoryCommit, error) {
		cs, _, err := c.gh.Repositories.ListCommits(ctx, owner, name, opts)
		return cs, err
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Commit, 0, len(commits))
	for _, rc := range commits {
		commit, err := toInternalCommit(rc)
		if err != nil {
			return nil, err
		}
		out = append(out, commit)
	}
	return out, nil
}

// GetCommitDetail fetches the per-file changes of a single commit.
func (c *Client) GetCommitDetail(ctx context.Context, owner, name, sha string) ([]model.CommitDiff, error) {
	rc, err := withRetry(ctx, c, "get_commit", func(ctx context.Context) (*github.RepositoryCommit, error) {
		r, _, err := c.gh.Repositories.GetCommit(ctx, owner, name, sha, &github.ListOptions{PerPage: maxPerPage})
		return r, err
	})
	if err != nil {
		return nil, err
	}

	diffs := make([]model.CommitDiff, 0, len(rc.Files))
	for _, f := range rc.Files {
		diffs = append(diffs, model.CommitDiff{
			FilePath:  f.GetFilename(),
			Status:    f.GetStatus(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
			Patch:     f.GetPatch(),
		})
	}
	return diffs, nil
}

// GetIssues fetches one page of issues and pull requests in any state, most recently created first.
func (c *Client) GetIssues(ctx context.Context, owner, name string, page, perPage int) ([]model.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:     "all",
		Sort:      "created",
		Direction: "desc",
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: clampPerPage(perPage),
		},
	}
	c.logger.Debug("Fetching issues page", "owner", owner, "repo", name, "page", page)

	issues, err := withRetry(ctx, c, "list_issues", func(ctx context.Context) ([]*github.Issue, error) {
		is, _, err := c.gh.Issues.ListByRepo(ctx, owner, name, opts)
		return is, err
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Issue, 0, len(issues))
	for _, i := range issues {
		issue, err := toInternalIssue(i)
		if err != nil {
			return nil, err
		}
		out = append(out, *issue)
	}
	return out, nil
}

// GetIssueByNumber fetches a single issue or pull request.
// It returns errors.ErrNotFound when GitHub confirms the number does not exist
// in this repository: 404, 410, or the issue was transferred elsewhere.
func (c *Client) GetIssueByNumber(ctx context.Context, owner, name string, number int) (*model.Issue, error) {
	issue, err := withRetry(ctx, c, "get_issue", func(ctx context.Context) (*github.Issue, error) {
		i, _, err := c.gh.Issues.Get(ctx, owner, name, number)
		return i, err
	})
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil {
			switch ghErr.Response.StatusCode {
			case http.StatusNotFound, http.StatusGone:
				return nil, fmt.Errorf("issue #%d: %w", number, custom_errors.ErrNotFound)
			}
		}
		return nil, err
	}

	if repoURL := issue.GetRepositoryURL(); repoURL != "" && !belongsTo(repoURL, owner, name) {
		c.logger.Info("Issue was transferred to another repository", "owner", owner, "repo", name, "number", number, "repository_url", repoURL)
		return nil, fmt.Errorf("issue #%d transferred: %w", number, custom_errors.ErrNotFound)
	}
	return toInternalIssue(issue)
}

// GetIssueComments fetches up to limit comments of an issue, oldest first.
func (c *Client) GetIssueComments(ctx context.Context, owner, name string, number, limit int) ([]model.IssueComment, error) {
	out := []model.IssueComment{}
	if limit <= 0 {
		return out, nil
	}

	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: clampPerPage(limit)},
	}
	for len(out) < limit {
		comments, resp, err := withRetryResp(ctx, c, "list_issue_comments", func(ctx context.Context) ([]*github.IssueComment, *github.Response, error) {
			return c.gh.Issues.ListComments(ctx, owner, name, number, opts)
		})
		if err != nil {
			return nil, err
		}
		for _, cm := range comments {
			if len(out) == limit {
				break
			}
			out = append(out, model.IssueComment{
				GithubCommentID: cm.GetID(),
				Body:            cm.GetBody(),
				AuthorLogin:     cm.GetUser().GetLogin(),
				CommentCreated:  cm.GetCreatedAt().Time,
				CommentUpdated:  cm.GetUpdatedAt().Time,
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// GetPullRequest fetches the merge state and branches of a pull request.
func (c *Client) GetPullRequest(ctx context.Context, owner, name string, number int) (*model.PullRequest, error) {
	pr, err := withRetry(ctx, c, "get_pull_request", func(ctx context.Context) (*github.PullRequest, error) {
		p, _, err := c.gh.PullRequests.Get(ctx, owner, name, number)
		return p, err
	})
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil {
			switch ghErr.Response.StatusCode {
			case http.StatusNotFound, http.StatusGone:
				return nil, fmt.Errorf("pull request #%d: %w", number, custom_errors.ErrNotFound)
			}
		}
		return nil, err
	}
	return toInternalPullRequest(pr), nil
}

// GetPullRequestReviewComments fetches up to limit diff comments of a pull request, oldest first.
func (c *Client) GetPullRequestReviewComments(ctx context.Context, owner, name string, number, limit int) ([]model.ReviewComment, error) {
	out := []model.ReviewComment{}
	if limit <= 0 {
		return out, nil
	}

	opts := &github.PullRequestListCommentsOptions{
		Sort:        "created",
		Direction:   "asc",
		ListOptions: github.ListOptions{PerPage: clampPerPage(limit)},
	}
	for len(out) < limit {
		comments, resp, err := withRetryResp(ctx, c, "list_review_comments", func(ctx context.Context) ([]*github.PullRequestComment, *github.Response, error) {
			return c.gh.PullRequests.ListComments(ctx, owner, name, number, opts)
		})
		if err != nil {
			return nil, err
		}
		for _, cm := range comments {
			if len(out) == limit {
				break
			}
			out = append(out, model.ReviewComment{
				GithubCommentID: cm.GetID(),
				Path:            cm.GetPath(),
				Body:            cm.GetBody(),
				AuthorLogin:     cm.GetUser().GetLogin(),
				CommentCreated:  cm.GetCreatedAt().Time,
				CommentUpdated:  cm.GetUpdatedAt().Time,
			})
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func clampPerPage(perPage int) int {
	if perPage <= 0 || perPage > maxPerPage {
		return maxPerPage
	}
	return perPage
}

// belongsTo reports whether an issue's repository_url names owner/name.
func belongsTo(repositoryURL, owner, name string) bool {
	suffix := "/repos/" + owner + "/" + name
	return strings.HasSuffix(strings.ToLower(strings.TrimSuffix(repositoryURL, "/")), strings.ToLower(suffix))
}

// toInternalRepository translates a github.Repository object to our internal model.Repository.
func toInternalRepository(r *github.Repository) *model.Repository {
	return &model.Repository{
		GithubRepoID:    r.GetID(),
		Owner:           r.GetOwner().GetLogin(),
		Name:            r.GetName(),
		Description:     r.Description,
		URL:             r.GetHTMLURL(),
		DefaultBranch:   r.GetDefaultBranch(),
		Language:        r.Language,
		ForksCount:      r.GetForksCount(),
		StarsCount:      r.GetStargazersCount(),
		OpenIssuesCount: r.GetOpenIssuesCount(),
		RepoCreatedAt:   r.GetCreatedAt().Time,
		RepoUpdatedAt:   r.GetUpdatedAt().Time,
	}
}

// toInternalCommit translates a github.RepositoryCommit object to our internal model.Commit.
func toInternalCommit(c *github.RepositoryCommit) (model.Commit, error) {
	if c.GetSHA() == "" {
		return model.Commit{}, &custom_errors.ContractViolationError{Entity: "commit", Field: "sha"}
	}
	parents := make([]string, 0, len(c.Parents))
	for _, p := range c.Parents {
		parents = append(parents, p.GetSHA())
	}
	return model.Commit{
		SHA:            c.GetSHA(),
		ParentSHAs:     parents,
		Message:        c.GetCommit().GetMessage(),
		AuthorName:     c.GetCommit().GetAuthor().GetName(),
		AuthorEmail:    c.GetCommit().GetAuthor().GetEmail(),
		AuthoredAt:     c.GetCommit().GetAuthor().GetDate().Time,
		CommitterName:  c.GetCommit().GetCommitter().GetName(),
		CommitterEmail: c.GetCommit().GetCommitter().GetEmail(),
		CommittedAt:    c.GetCommit().GetCommitter().GetDate().Time,
		URL:            c.GetHTMLURL(),
	}, nil
}

// toInternalIssue translates a github.Issue object to our internal model.Issue.
func toInternalIssue(i *github.Issue) (*model.Issue, error) {
	if i.GetNumber() == 0 {
		return nil, &custom_errors.ContractViolationError{Entity: "issue", Field: "number"}
	}
	labels := make([]string, 0, len(i.Labels))
	for _, l := range i.Labels {
		labels = append(labels, l.GetName())
	}
	issue := &model.Issue{
		Number:        i.GetNumber(),
		Title:         i.GetTitle(),
		Body:          i.GetBody(),
		State:         i.GetState(),
		IsPullRequest: i.IsPullRequest(),
		AuthorLogin:   i.GetUser().GetLogin(),
		Labels:        labels,
		URL:           i.GetHTMLURL(),
		CommentsCount: i.GetComments(),
		IssueCreated:  i.GetCreatedAt().Time,
		IssueUpdated:  i.GetUpdatedAt().Time,
	}
	if i.ClosedAt != nil {
		closed := i.ClosedAt.Time
		issue.ClosedAt = &closed
	}
	return issue, nil
}

func toInternalPullRequest(p *github.PullRequest) *model.PullRequest {
	pr := &model.PullRequest{
		Merged:              p.GetMerged(),
		BaseBranch:          p.GetBase().GetRef(),
		HeadBranch:          p.GetHead().GetRef(),
		ReviewCommentsCount: p.GetReviewComments(),
	}
	if p.MergedAt != nil {
		merged := p.MergedAt.Time
		pr.MergedAt = &merged
	}
	return pr
}
