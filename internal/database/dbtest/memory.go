// Package dbtest provides an in-memory database.Store for unit tests.
// It mirrors the constraints and ordering of the Postgres queries closely
// enough for the sync engine and the HTTP API to be exercised without a server.
package dbtest

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github-history-sync/internal/database"
)

type state struct {
	nextID        int64
	repositories  []database.Repository
	commits       []database.Commit
	commitDiffs   []database.CommitDiff
	issues        []database.Issue
	issueComments []database.IssueComment
	reviews       []database.ReviewComment
	deletedIssues []database.DeletedIssue
}

func (s *state) clone() *state {
	c := &state{
		nextID:        s.nextID,
		repositories:  slices.Clone(s.repositories),
		commits:       slices.Clone(s.commits),
		commitDiffs:   slices.Clone(s.commitDiffs),
		issues:        make([]database.Issue, len(s.issues)),
		issueComments: slices.Clone(s.issueComments),
		reviews:       slices.Clone(s.reviews),
		deletedIssues: slices.Clone(s.deletedIssues),
	}
	for i, is := range s.issues {
		is.Labels = slices.Clone(is.Labels)
		c.issues[i] = is
	}
	return c
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// MemoryStore is a database.Store kept entirely in memory.
// Transactions are serialized and a failed transaction restores the prior state.
type MemoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   *state

	failures map[string]error
	now      func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		st:       &state{},
		failures: make(map[string]error),
		now:      time.Now,
	}
}

var _ database.Store = (*MemoryStore)(nil)

// FailOn makes the next call of the named query return err.
func (m *MemoryStore) FailOn(query string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[query] = err
}

func (m *MemoryStore) injected(query string) error {
	err, ok := m.failures[query]
	if !ok {
		return nil
	}
	delete(m.failures, query)
	return err
}

func (m *MemoryStore) ExecTx(ctx context.Context, fn func(database.Querier) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := m.st.clone()
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.st = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// --- repositories ---

func (m *MemoryStore) CreateRepository(_ context.Context, arg database.CreateRepositoryParams) (database.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("CreateRepository"); err != nil {
		return database.Repository{}, err
	}

	now := m.now()
	for i, r := range m.st.repositories {
		if r.Owner == arg.Owner && r.Name == arg.Name {
			r.GithubRepoID = arg.GithubRepoID
			r.DbUpdatedAt = now
			m.st.repositories[i] = r
			return r, nil
		}
	}
	r := database.Repository{
		ID:              m.st.id(),
		GithubRepoID:    arg.GithubRepoID,
		Owner:           arg.Owner,
		Name:            arg.Name,
		Description:     arg.Description,
		Url:             arg.Url,
		DefaultBranch:   arg.DefaultBranch,
		Language:        arg.Language,
		ForksCount:      arg.ForksCount,
		StarsCount:      arg.StarsCount,
		OpenIssuesCount: arg.OpenIssuesCount,
		RepoCreatedAt:   arg.RepoCreatedAt,
		RepoUpdatedAt:   arg.RepoUpdatedAt,
		DbCreatedAt:     now,
		DbUpdatedAt:     now,
	}
	m.st.repositories = append(m.st.repositories, r)
	return r, nil
}

func (m *MemoryStore) DeleteRepository(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("DeleteRepository"); err != nil {
		return err
	}

	commitIDs := map[int64]bool{}
	for _, c := range m.st.commits {
		if c.RepositoryID == id {
			commitIDs[c.ID] = true
		}
	}
	issueIDs := map[int64]bool{}
	for _, is := range m.st.issues {
		if is.RepositoryID == id {
			issueIDs[is.ID] = true
		}
	}
	m.st.repositories = slices.DeleteFunc(m.st.repositories, func(r database.Repository) bool { return r.ID == id })
	m.st.commits = slices.DeleteFunc(m.st.commits, func(c database.Commit) bool { return c.RepositoryID == id })
	m.st.commitDiffs = slices.DeleteFunc(m.st.commitDiffs, func(d database.CommitDiff) bool { return commitIDs[d.CommitID] })
	m.st.issues = slices.DeleteFunc(m.st.issues, func(is database.Issue) bool { return is.RepositoryID == id })
	m.st.issueComments = slices.DeleteFunc(m.st.issueComments, func(c database.IssueComment) bool { return issueIDs[c.IssueID] })
	m.st.reviews = slices.DeleteFunc(m.st.reviews, func(c database.ReviewComment) bool { return issueIDs[c.IssueID] })
	m.st.deletedIssues = slices.DeleteFunc(m.st.deletedIssues, func(d database.DeletedIssue) bool { return d.RepositoryID == id })
	return nil
}

func (m *MemoryStore) GetRepositoryByOwnerAndName(_ context.Context, arg database.GetRepositoryByOwnerAndNameParams) (database.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("GetRepositoryByOwnerAndName"); err != nil {
		return database.Repository{}, err
	}
	for _, r := range m.st.repositories {
		if r.Owner == arg.Owner && r.Name == arg.Name {
			return r, nil
		}
	}
	return database.Repository{}, pgx.ErrNoRows
}

func (m *MemoryStore) GetRepositoryForUpdate(_ context.Context, id int64) (database.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("GetRepositoryForUpdate"); err != nil {
		return database.Repository{}, err
	}
	for _, r := range m.st.repositories {
		if r.ID == id {
			return r, nil
		}
	}
	return database.Repository{}, pgx.ErrNoRows
}

func (m *MemoryStore) ListRepositories(_ context.Context) ([]database.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("ListRepositories"); err != nil {
		return nil, err
	}
	out := slices.Clone(m.st.repositories)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if out == nil {
		out = []database.Repository{}
	}
	return out, nil
}

func (m *MemoryStore) MarkRepositoryInitialized(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("MarkRepositoryInitialized"); err != nil {
		return err
	}
	now := m.now()
	for i, r := range m.st.repositories {
		if r.ID == id {
			r.IsInitialized = true
			r.LastSyncedAt = pgtype.Timestamptz{Time: now, Valid: true}
			r.DbUpdatedAt = now
			m.st.repositories[i] = r
		}
	}
	return nil
}

func (m *MemoryStore) UpdateRepositorySyncData(_ context.Context, arg database.UpdateRepositorySyncDataParams) (database.Repository, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("UpdateRepositorySyncData"); err != nil {
		return database.Repository{}, err
	}
	now := m.now()
	for i, r := range m.st.repositories {
		if r.ID != arg.ID {
			continue
		}
		r.Description = arg.Description
		r.Language = arg.Language
		r.DefaultBranch = arg.DefaultBranch
		r.ForksCount = arg.ForksCount
		r.StarsCount = arg.StarsCount
		r.OpenIssuesCount = arg.OpenIssuesCount
		r.RepoUpdatedAt = arg.RepoUpdatedAt
		r.LastSyncedAt = pgtype.Timestamptz{Time: now, Valid: true}
		r.DbUpdatedAt = now
		m.st.repositories[i] = r
		return r, nil
	}
	return database.Repository{}, pgx.ErrNoRows
}

// --- commits ---

func (m *MemoryStore) CreateCommit(_ context.Context, arg database.CreateCommitParams) (database.Commit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("CreateCommit"); err != nil {
		return database.Commit{}, err
	}
	for _, c := range m.st.commits {
		if c.RepositoryID == arg.RepositoryID && c.Sha == arg.Sha {
			return database.Commit{}, pgx.ErrNoRows
		}
	}
	c := database.Commit{
		ID:             m.st.id(),
		RepositoryID:   arg.RepositoryID,
		Sha:            arg.Sha,
		ParentSha:      arg.ParentSha,
		IsRoot:         arg.IsRoot,
		Message:        arg.Message,
		AuthorName:     arg.AuthorName,
		AuthorEmail:    arg.AuthorEmail,
		AuthoredAt:     arg.AuthoredAt,
		CommitterName:  arg.CommitterName,
		CommitterEmail: arg.CommitterEmail,
		CommittedAt:    arg.CommittedAt,
		Url:            arg.Url,
		DbCreatedAt:    m.now(),
	}
	m.st.commits = append(m.st.commits, c)
	return c, nil
}

func (m *MemoryStore) CreateCommitDiffs(_ context.Context, arg []database.CreateCommitDiffsParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("CreateCommitDiffs"); err != nil {
		return 0, err
	}
	for _, d := range arg {
		m.st.commitDiffs = append(m.st.commitDiffs, database.CommitDiff{
			ID:        m.st.id(),
			CommitID:  d.CommitID,
			FilePath:  d.FilePath,
			Status:    d.Status,
			Additions: d.Additions,
			Deletions: d.Deletions,
			Patch:     d.Patch,
		})
	}
	return int64(len(arg)), nil
}

func (m *MemoryStore) GetCommitBySha(_ context.Context, arg database.GetCommitByShaParams) (database.Commit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("GetCommitBySha"); err != nil {
		return database.Commit{}, err
	}
	for _, c := range m.st.commits {
		if c.RepositoryID == arg.RepositoryID && c.Sha == arg.Sha {
			return c, nil
		}
	}
	return database.Commit{}, pgx.ErrNoRows
}

func (m *MemoryStore) ListExistingCommitShas(_ context.Context, arg database.ListExistingCommitShasParams) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("ListExistingCommitShas"); err != nil {
		return nil, err
	}
	out := []string{}
	for _, c := range m.st.commits {
		if c.RepositoryID == arg.RepositoryID && slices.Contains(arg.Shas, c.Sha) {
			out = append(out, c.Sha)
		}
	}
	return out, nil
}

func (m *MemoryStore) SetCommitParent(_ context.Context, arg database.SetCommitParentParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("SetCommitParent"); err != nil {
		return err
	}
	for i, c := range m.st.commits {
		if c.ID == arg.ID {
			c.ParentSha = arg.ParentSha
			c.IsRoot = arg.IsRoot
			m.st.commits[i] = c
		}
	}
	return nil
}

func (m *MemoryStore) GetCommitFrontier(_ context.Context, repositoryID int64) (database.Commit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("GetCommitFrontier"); err != nil {
		return database.Commit{}, err
	}

	known := map[string]bool{}
	for _, c := range m.st.commits {
		if c.RepositoryID == repositoryID {
			known[c.Sha] = true
		}
	}
	var (
		best  database.Commit
		found bool
	)
	for _, c := range m.st.commits {
		if c.RepositoryID != repositoryID || c.IsRoot {
			continue
		}
		if c.ParentSha.Valid && known[c.ParentSha.String] {
			continue
		}
		if !found || newerCommit(c, best) {
			best, found = c, true
		}
	}
	if !found {
		return database.Commit{}, pgx.ErrNoRows
	}
	return best, nil
}

func (m *MemoryStore) CountCommitSentinels(_ context.Context, repositoryID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, c := range m.st.commits {
		if c.RepositoryID == repositoryID && !c.ParentSha.Valid && !c.IsRoot {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) GetCommitsByRepoID(_ context.Context, arg database.GetCommitsByRepoIDParams) ([]database.Commit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("GetCommitsByRepoID"); err != nil {
		return nil, err
	}
	var out []database.Commit
	for _, c := range m.st.commits {
		if c.RepositoryID == arg.RepositoryID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newerCommit(out[i], out[j]) })
	return page(out, arg.Limit, arg.Offset), nil
}

func (m *MemoryStore) GetTopNCommitAuthors(_ context.Context, arg database.GetTopNCommitAuthorsParams) ([]database.GetTopNCommitAuthorsRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("GetTopNCommitAuthors"); err != nil {
		return nil, err
	}
	type key struct{ name, email string }
	counts := map[key]int64{}
	for _, c := range m.st.commits {
		if c.RepositoryID == arg.RepositoryID {
			counts[key{c.AuthorName, c.AuthorEmail}]++
		}
	}
	var out []database.GetTopNCommitAuthorsRow
	for k, n := range counts {
		out = append(out, database.GetTopNCommitAuthorsRow{AuthorName: k.name, AuthorEmail: k.email, CommitCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CommitCount != out[j].CommitCount {
			return out[i].CommitCount > out[j].CommitCount
		}
		if out[i].AuthorName != out[j].AuthorName {
			return out[i].AuthorName < out[j].AuthorName
		}
		return out[i].AuthorEmail < out[j].AuthorEmail
	})
	return page(out, arg.Limit, 0), nil
}

func (m *MemoryStore) ListCommitDiffs(_ context.Context, commitID int64) ([]database.CommitDiff, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []database.CommitDiff{}
	for _, d := range m.st.commitDiffs {
		if d.CommitID == commitID {
			out = append(out, d)
		}
	}
	return out, nil
}

// --- issues ---

func (m *MemoryStore) UpsertIssue(_ context.Context, arg database.UpsertIssueParams) (database.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("UpsertIssue"); err != nil {
		return database.Issue{}, err
	}
	if arg.Labels == nil {
		return database.Issue{}, fmt.Errorf("null value in column %q violates not-null constraint", "labels")
	}

	now := m.now()
	for i, is := range m.st.issues {
		if is.RepositoryID != arg.RepositoryID || is.Number != arg.Number {
			continue
		}
		is.Title = arg.Title
		is.Body = arg.Body
		is.State = arg.State
		is.IsPullRequest = arg.IsPullRequest
		is.Labels = slices.Clone(arg.Labels)
		is.CommentsCount = arg.CommentsCount
		is.IssueUpdated = arg.IssueUpdated
		is.ClosedAt = arg.ClosedAt
		is.IsMerged = arg.IsMerged
		is.MergedAt = arg.MergedAt
		is.BaseBranch = arg.BaseBranch
		is.HeadBranch = arg.HeadBranch
		is.DbUpdatedAt = now
		m.st.issues[i] = is
		return is, nil
	}
	is := database.Issue{
		ID:            m.st.id(),
		RepositoryID:  arg.RepositoryID,
		Number:        arg.Number,
		Title:         arg.Title,
		Body:          arg.Body,
		State:         arg.State,
		IsPullRequest: arg.IsPullRequest,
		AuthorLogin:   arg.AuthorLogin,
		Labels:        slices.Clone(arg.Labels),
		Url:           arg.Url,
		CommentsCount: arg.CommentsCount,
		IssueCreated:  arg.IssueCreated,
		IssueUpdated:  arg.IssueUpdated,
		ClosedAt:      arg.ClosedAt,
		IsMerged:      arg.IsMerged,
		MergedAt:      arg.MergedAt,
		BaseBranch:    arg.BaseBranch,
		HeadBranch:    arg.HeadBranch,
		DbCreatedAt:   now,
		DbUpdatedAt:   now,
	}
	m.st.issues = append(m.st.issues, is)
	return is, nil
}

func (m *MemoryStore) GetIssueByNumber(_ context.Context, arg database.GetIssueByNumberParams) (database.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("GetIssueByNumber"); err != nil {
		return database.Issue{}, err
	}
	for _, is := range m.st.issues {
		if is.RepositoryID == arg.RepositoryID && is.Number == arg.Number {
			return is, nil
		}
	}
	return database.Issue{}, pgx.ErrNoRows
}

func (m *MemoryStore) ListKnownIssueNumbers(_ context.Context, arg database.ListKnownIssueNumbersParams) ([]int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("ListKnownIssueNumbers"); err != nil {
		return nil, err
	}
	out := []int32{}
	for _, is := range m.st.issues {
		if is.RepositoryID == arg.RepositoryID && slices.Contains(arg.Numbers, is.Number) {
			out = append(out, is.Number)
		}
	}
	return out, nil
}

func (m *MemoryStore) IsIssueNumberResolved(_ context.Context, arg database.IsIssueNumberResolvedParams) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("IsIssueNumberResolved"); err != nil {
		return false, err
	}
	return m.resolved(arg.RepositoryID)[arg.Number], nil
}

func (m *MemoryStore) resolved(repositoryID int64) map[int32]bool {
	known := map[int32]bool{}
	for _, is := range m.st.issues {
		if is.RepositoryID == repositoryID {
			known[is.Number] = true
		}
	}
	for _, d := range m.st.deletedIssues {
		if d.RepositoryID == repositoryID {
			known[d.Number] = true
		}
	}
	return known
}

func (m *MemoryStore) CreateDeletedIssue(_ context.Context, arg database.CreateDeletedIssueParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("CreateDeletedIssue"); err != nil {
		return err
	}
	for _, d := range m.st.deletedIssues {
		if d.RepositoryID == arg.RepositoryID && d.Number == arg.Number {
			return nil
		}
	}
	m.st.deletedIssues = append(m.st.deletedIssues, database.DeletedIssue{
		RepositoryID: arg.RepositoryID,
		Number:       arg.Number,
		DbCreatedAt:  m.now(),
	})
	return nil
}

func (m *MemoryStore) CountDeletedIssues(_ context.Context, repositoryID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, d := range m.st.deletedIssues {
		if d.RepositoryID == repositoryID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) GetIssueFrontier(_ context.Context, repositoryID int64) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("GetIssueFrontier"); err != nil {
		return 0, err
	}
	known := m.resolved(repositoryID)
	var (
		best  int32
		found bool
	)
	for n := range known {
		if n > 1 && !known[n-1] && (!found || n > best) {
			best, found = n, true
		}
	}
	if !found {
		return 0, pgx.ErrNoRows
	}
	return best, nil
}

func (m *MemoryStore) ListIssues(_ context.Context, arg database.ListIssuesParams) ([]database.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("ListIssues"); err != nil {
		return nil, err
	}
	var out []database.Issue
	for _, is := range m.st.issues {
		if is.RepositoryID == arg.RepositoryID {
			out = append(out, is)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return page(out, arg.Limit, arg.Offset), nil
}

func (m *MemoryStore) CreateIssueComments(_ context.Context, arg []database.CreateIssueCommentsParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("CreateIssueComments"); err != nil {
		return 0, err
	}
	for _, c := range arg {
		for _, existing := range m.st.issueComments {
			if existing.IssueID == c.IssueID && existing.GithubCommentID == c.GithubCommentID {
				return 0, fmt.Errorf("duplicate comment %d for issue %d", c.GithubCommentID, c.IssueID)
			}
		}
		m.st.issueComments = append(m.st.issueComments, database.IssueComment{
			ID:              m.st.id(),
			IssueID:         c.IssueID,
			GithubCommentID: c.GithubCommentID,
			Body:            c.Body,
			AuthorLogin:     c.AuthorLogin,
			CommentCreated:  c.CommentCreated,
			CommentUpdated:  c.CommentUpdated,
		})
	}
	return int64(len(arg)), nil
}

func (m *MemoryStore) ListIssueComments(_ context.Context, issueID int64) ([]database.IssueComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []database.IssueComment{}
	for _, c := range m.st.issueComments {
		if c.IssueID == issueID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CommentCreated.Before(out[j].CommentCreated) })
	return out, nil
}

func (m *MemoryStore) CreateReviewComments(_ context.Context, arg []database.CreateReviewCommentsParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.injected("CreateReviewComments"); err != nil {
		return 0, err
	}
	for _, c := range arg {
		for _, existing := range m.st.reviews {
			if existing.IssueID == c.IssueID && existing.GithubCommentID == c.GithubCommentID {
				return 0, fmt.Errorf("duplicate review comment %d for issue %d", c.GithubCommentID, c.IssueID)
			}
		}
		m.st.reviews = append(m.st.reviews, database.ReviewComment{
			ID:              m.st.id(),
			IssueID:         c.IssueID,
			GithubCommentID: c.GithubCommentID,
			Path:            c.Path,
			Body:            c.Body,
			AuthorLogin:     c.AuthorLogin,
			CommentCreated:  c.CommentCreated,
			CommentUpdated:  c.CommentUpdated,
		})
	}
	return int64(len(arg)), nil
}

func (m *MemoryStore) ListReviewComments(_ context.Context, issueID int64) ([]database.ReviewComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []database.ReviewComment{}
	for _, c := range m.st.reviews {
		if c.IssueID == issueID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CommentCreated.Before(out[j].CommentCreated) })
	return out, nil
}

// --- test helpers ---

// DeletedIssueNumbers returns the tombstoned numbers of a repository in ascending order.
func (m *MemoryStore) DeletedIssueNumbers(repositoryID int64) []int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []int32{}
	for _, d := range m.st.deletedIssues {
		if d.RepositoryID == repositoryID {
			out = append(out, d.Number)
		}
	}
	slices.Sort(out)
	return out
}

// CommitsBySha returns every stored commit of a repository keyed by sha.
func (m *MemoryStore) CommitsBySha(repositoryID int64) map[string]database.Commit {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]database.Commit{}
	for _, c := range m.st.commits {
		if c.RepositoryID == repositoryID {
			out[c.Sha] = c
		}
	}
	return out
}

func newerCommit(a, b database.Commit) bool {
	if !a.CommittedAt.Equal(b.CommittedAt) {
		return a.CommittedAt.After(b.CommittedAt)
	}
	return a.ID > b.ID
}

func page[T any](items []T, limit, offset int32) []T {
	out := []T{}
	if int(offset) >= len(items) {
		return out
	}
	items = items[offset:]
	if limit >= 0 && int(limit) < len(items) {
		items = items[:limit]
	}
	return append(out, items...)
}
