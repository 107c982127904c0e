package syncer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github-history-sync/internal/database"
	"github-history-sync/internal/database/dbtest"
	custom_errors "github-history-sync/internal/errors"
	"github-history-sync/internal/lock"
	"github-history-sync/internal/model"
)

var baseTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// fakeRepo is the upstream state of one repository.
type fakeRepo struct {
	meta     model.Repository
	history  []model.Commit // reachable from head, newest first
	issues   map[int]model.Issue
	comments map[int][]model.IssueComment
	pulls    map[int]model.PullRequest
	reviews  map[int][]model.ReviewComment
	failures map[int]error
}

// fakeSource serves fakeRepos and records the issue numbers it was asked for.
type fakeSource struct {
	mu          sync.Mutex
	repos       map[string]*fakeRepo
	issueLookup []int
	detailCalls int
	pullCalls   int
}

func newFakeSource() *fakeSource {
	return &fakeSource{repos: map[string]*fakeRepo{}}
}

func (f *fakeSource) add(owner, name string) *fakeRepo {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &fakeRepo{
		meta:     model.Repository{GithubRepoID: int64(len(f.repos) + 1), Owner: owner, Name: name, DefaultBranch: "main", RepoCreatedAt: baseTime, RepoUpdatedAt: baseTime},
		issues:   map[int]model.Issue{},
		comments: map[int][]model.IssueComment{},
		pulls:    map[int]model.PullRequest{},
		reviews:  map[int][]model.ReviewComment{},
		failures: map[int]error{},
	}
	f.repos[owner+"/"+name] = r
	return r
}

func (f *fakeSource) repo(owner, name string) (*fakeRepo, error) {
	r, ok := f.repos[owner+"/"+name]
	if !ok {
		return nil, fmt.Errorf("repository %s/%s: %w", owner, name, custom_errors.ErrNotFound)
	}
	return r, nil
}

// linearHistory builds shas prefix1 (head) ... prefixN (root), each the first parent's child.
func linearHistory(prefix string, n int, newest time.Time) []model.Commit {
	out := make([]model.Commit, n)
	for i := 0; i < n; i++ {
		c := model.Commit{
			SHA:         fmt.Sprintf("%s%d", prefix, i+1),
			Message:     fmt.Sprintf("commit %d", i+1),
			AuthorName:  "dev",
			AuthorEmail: "dev@example.com",
			AuthoredAt:  newest.Add(-time.Duration(i) * time.Hour),
			CommittedAt: newest.Add(-time.Duration(i) * time.Hour),
		}
		if i+1 < n {
			c.ParentSHAs = []string{fmt.Sprintf("%s%d", prefix, i+2)}
		}
		out[i] = c
	}
	return out
}

// prepend puts newer commits on top of the head; the oldest one is linked to the current head.
func (r *fakeRepo) prepend(commits []model.Commit) {
	commits[len(commits)-1].ParentSHAs = []string{r.history[0].SHA}
	r.history = append(commits, r.history...)
}

func (r *fakeRepo) addIssue(n int, title string, comments int) {
	r.issues[n] = model.Issue{
		Number:        n,
		Title:         title,
		State:         "open",
		CommentsCount: comments,
		IssueCreated:  baseTime.Add(time.Duration(n) * time.Minute),
		IssueUpdated:  baseTime.Add(time.Duration(n) * time.Minute),
	}
	for i := 0; i < comments; i++ {
		r.comments[n] = append(r.comments[n], model.IssueComment{
			GithubCommentID: int64(n*100 + i),
			Body:            fmt.Sprintf("comment %d", i),
			CommentCreated:  baseTime,
			CommentUpdated:  baseTime,
		})
	}
}

// addPull adds a pull request carrying the given number of review comments.
func (r *fakeRepo) addPull(n int, pr model.PullRequest, reviews int) {
	r.addIssue(n, "pull", 0)
	is := r.issues[n]
	is.IsPullRequest = true
	r.issues[n] = is
	pr.ReviewCommentsCount = reviews
	r.pulls[n] = pr
	for i := 0; i < reviews; i++ {
		r.reviews[n] = append(r.reviews[n], model.ReviewComment{
			GithubCommentID: int64(n*100 + i),
			Path:            fmt.Sprintf("file%d.go", i),
			Body:            fmt.Sprintf("review %d", i),
			CommentCreated:  baseTime.Add(time.Duration(i) * time.Minute),
			CommentUpdated:  baseTime.Add(time.Duration(i) * time.Minute),
		})
	}
}

func pageOf[T any](items []T, page, perPage int) []T {
	start := (page - 1) * perPage
	if start >= len(items) {
		return nil
	}
	end := min(start+perPage, len(items))
	return append([]T(nil), items[start:end]...)
}

func (f *fakeSource) GetRepository(_ context.Context, owner, name string) (*model.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.repo(owner, name)
	if err != nil {
		return nil, err
	}
	meta := r.meta
	return &meta, nil
}

func (f *fakeSource) GetCommits(_ context.Context, owner, name string, page, perPage int) ([]model.Commit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.repo(owner, name)
	if err != nil {
		return nil, err
	}
	return pageOf(r.history, page, perPage), nil
}

func (f *fakeSource) GetCommitsBefore(_ context.Context, owner, name, sha string, page, perPage int) ([]model.Commit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.repo(owner, name)
	if err != nil {
		return nil, err
	}
	for i, c := range r.history {
		if c.SHA == sha {
			return pageOf(r.history[i:], page, perPage), nil
		}
	}
	return nil, nil
}

func (f *fakeSource) GetCommitDetail(_ context.Context, owner, name, sha string) ([]model.CommitDiff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	return []model.CommitDiff{{FilePath: sha + ".txt", Status: "added", Additions: 1, Patch: "+" + sha}}, nil
}

func (f *fakeSource) GetIssues(_ context.Context, owner, name string, page, perPage int) ([]model.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.repo(owner, name)
	if err != nil {
		return nil, err
	}
	numbers := make([]int, 0, len(r.issues))
	for n := range r.issues {
		numbers = append(numbers, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(numbers)))
	var out []model.Issue
	for _, n := range pageOf(numbers, page, perPage) {
		out = append(out, r.issues[n])
	}
	return out, nil
}

func (f *fakeSource) GetIssueByNumber(_ context.Context, owner, name string, number int) (*model.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issueLookup = append(f.issueLookup, number)
	r, err := f.repo(owner, name)
	if err != nil {
		return nil, err
	}
	if err := r.failures[number]; err != nil {
		return nil, err
	}
	issue, ok := r.issues[number]
	if !ok {
		return nil, fmt.Errorf("issue #%d: %w", number, custom_errors.ErrNotFound)
	}
	return &issue, nil
}

func (f *fakeSource) GetIssueComments(_ context.Context, owner, name string, number, limit int) ([]model.IssueComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.repo(owner, name)
	if err != nil {
		return nil, err
	}
	cs := r.comments[number]
	if len(cs) > limit {
		cs = cs[:limit]
	}
	return append([]model.IssueComment(nil), cs...), nil
}

func (f *fakeSource) GetPullRequest(_ context.Context, owner, name string, number int) (*model.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pullCalls++
	r, err := f.repo(owner, name)
	if err != nil {
		return nil, err
	}
	pr, ok := r.pulls[number]
	if !ok {
		return nil, fmt.Errorf("pull request #%d: %w", number, custom_errors.ErrNotFound)
	}
	return &pr, nil
}

func (f *fakeSource) GetPullRequestReviewComments(_ context.Context, owner, name string, number, limit int) ([]model.ReviewComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.repo(owner, name)
	if err != nil {
		return nil, err
	}
	cs := r.reviews[number]
	if len(cs) > limit {
		cs = cs[:limit]
	}
	return append([]model.ReviewComment(nil), cs...), nil
}

func (f *fakeSource) lookups() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.issueLookup...)
}

// MockSource is a mock of the Source interface.
type MockSource struct {
	mock.Mock
}

func (m *MockSource) GetRepository(ctx context.Context, owner, name string) (*model.Repository, error) {
	args := m.Called(ctx, owner, name)
	r, _ := args.Get(0).(*model.Repository)
	return r, args.Error(1)
}
func (m *MockSource) GetCommits(ctx context.Context, owner, name string, page, perPage int) ([]model.Commit, error) {
	args := m.Called(ctx, owner, name, page, perPage)
	return args.Get(0).([]model.Commit), args.Error(1)
}
func (m *MockSource) GetCommitsBefore(ctx context.Context, owner, name, sha string, page, perPage int) ([]model.Commit, error) {
	args := m.Called(ctx, owner, name, sha, page, perPage)
	return args.Get(0).([]model.Commit), args.Error(1)
}
func (m *MockSource) GetCommitDetail(ctx context.Context, owner, name, sha string) ([]model.CommitDiff, error) {
	args := m.Called(ctx, owner, name, sha)
	return args.Get(0).([]model.CommitDiff), args.Error(1)
}
func (m *MockSource) GetIssues(ctx context.Context, owner, name string, page, perPage int) ([]model.Issue, error) {
	args := m.Called(ctx, owner, name, page, perPage)
	return args.Get(0).([]model.Issue), args.Error(1)
}
func (m *MockSource) GetIssueByNumber(ctx context.Context, owner, name string, number int) (*model.Issue, error) {
	args := m.Called(ctx, owner, name, number)
	i, _ := args.Get(0).(*model.Issue)
	return i, args.Error(1)
}
func (m *MockSource) GetIssueComments(ctx context.Context, owner, name string, number, limit int) ([]model.IssueComment, error) {
	args := m.Called(ctx, owner, name, number, limit)
	return args.Get(0).([]model.IssueComment), args.Error(1)
}

func (m *MockSource) GetPullRequest(ctx context.Context, owner, name string, number int) (*model.PullRequest, error) {
	args := m.Called(ctx, owner, name, number)
	pr, _ := args.Get(0).(*model.PullRequest)
	return pr, args.Error(1)
}
func (m *MockSource) GetPullRequestReviewComments(ctx context.Context, owner, name string, number, limit int) ([]model.ReviewComment, error) {
	args := m.Called(ctx, owner, name, number, limit)
	return args.Get(0).([]model.ReviewComment), args.Error(1)
}

var (
	_ Source = (*fakeSource)(nil)
	_ Source = (*MockSource)(nil)
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testOptions = Options{
	CommitBatchSize: 3,
	IssueBatchSize:  3,
	ForwardPerPage:  3,
	MaxComments:     2,
	LockTTL:         time.Minute,
}

func newTestSyncer(t *testing.T, source Source) (*Syncer, *dbtest.MemoryStore, *lock.MemoryLocker) {
	t.Helper()
	store := dbtest.NewMemoryStore()
	locker := lock.NewMemoryLocker()
	s, err := NewSyncer(store, source, locker, nil, testLogger(), testOptions)
	require.NoError(t, err)
	return s, store, locker
}

func mustRegister(t *testing.T, s *Syncer, owner, name string) database.Repository {
	t.Helper()
	repo, err := s.Register(context.Background(), owner, name)
	require.NoError(t, err)
	return repo
}

func sentinels(t *testing.T, store *dbtest.MemoryStore, repoID int64) int64 {
	t.Helper()
	n, err := store.CountCommitSentinels(context.Background(), repoID)
	require.NoError(t, err)
	return n
}
