// internal/model/models.go
package model

import (
	"fmt"
	"time"
)

// Repository represents the metadata of a GitHub repository.
type Repository struct {
	GithubRepoID    int64 `json:"github_repo_id"`
	Owner           string
	Name            string
	Description     *string
	URL             string
	DefaultBranch   string
	Language        *string
	ForksCount      int
	StarsCount      int
	OpenIssuesCount int
	RepoCreatedAt   time.Time
	RepoUpdatedAt   time.Time
}

// FullName returns the "owner/name" form of the repository.
func (r *Repository) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// Commit is a commit as reported upstream. ParentSHAs is empty for a root commit.
type Commit struct {
	SHA            string
	ParentSHAs     []string
	Message        string
	AuthorName     string
	AuthorEmail    string
	AuthoredAt     time.Time
	CommitterName  string
	CommitterEmail string
	CommittedAt    time.Time
	URL            string
}

// FirstParent returns the sha of the first parent, if any.
func (c *Commit) FirstParent() (string, bool) {
	if len(c.ParentSHAs) == 0 {
		return "", false
	}
	return c.ParentSHAs[0], true
}

// CommitDiff is the change of a single file within a commit.
type CommitDiff struct {
	FilePath  string
	Status    string
	Additions int
	Deletions int
	Patch     string
}

// Issue is an issue or pull request; both share the repository's number space.
type Issue struct {
	Number        int
	Title         string
	Body          string
	State         string
	IsPullRequest bool
	AuthorLogin   string
	Labels        []string
	URL           string
	CommentsCount int
	IssueCreated  time.Time
	IssueUpdated  time.Time
	ClosedAt      *time.Time

	// PullRequest is only set for pull requests, and only once their details were fetched.
	PullRequest *PullRequest
}

// PullRequest holds the pull request fields the issue listing does not carry.
type PullRequest struct {
	Merged              bool
	MergedAt            *time.Time
	BaseBranch          string
	HeadBranch          string
	ReviewCommentsCount int
}

type IssueComment struct {
	GithubCommentID int64
	Body            string
	AuthorLogin     string
	CommentCreated  time.Time
	CommentUpdated  time.Time
}

// ReviewComment is a comment on a pull request's diff.
type ReviewComment struct {
	GithubCommentID int64
	Path            string
	Body            string
	AuthorLogin     string
	CommentCreated  time.Time
	CommentUpdated  time.Time
}
