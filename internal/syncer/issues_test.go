package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github-history-sync/internal/database"
	"github-history-sync/internal/database/dbtest"
	custom_errors "github-history-sync/internal/errors"
	"github-history-sync/internal/model"
)

func storeIssue(t *testing.T, store *dbtest.MemoryStore, repoID int64, n int32) {
	t.Helper()
	_, err := store.UpsertIssue(context.Background(), database.UpsertIssueParams{RepositoryID: repoID, Number: n, Title: "seed", Labels: []string{}})
	require.NoError(t, err)
}

func TestFillBackward_ResolvesPresentAndAbsentNumbers(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	up := src.add("octo", "hello")
	up.addIssue(10, "ten", 0)
	up.addIssue(8, "eight", 3)
	s, store, _ := newTestSyncer(t, src)
	repo := mustRegister(t, s, "octo", "hello")
	storeIssue(t, store, repo.ID, 10)

	var resolved int
	withTx(t, store, func(q database.Querier) error {
		var err error
		resolved, err = s.issues.FillBackward(ctx, q, repo, 10, 3)
		return err
	})

	assert.Equal(t, 2, resolved)
	assert.Equal(t, []int{9, 8}, src.lookups(), "present numbers are not fetched")
	assert.Equal(t, []int32{9}, store.DeletedIssueNumbers(repo.ID))

	eight, err := store.GetIssueByNumber(ctx, database.GetIssueByNumberParams{RepositoryID: repo.ID, Number: 8})
	require.NoError(t, err)
	assert.Equal(t, "eight", eight.Title)
	comments, err := store.ListIssueComments(ctx, eight.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 2, "comments are capped")

	frontier, ok, err := s.issues.frontier(ctx, store, repo)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(8), frontier, "the contiguous range grew downward")

	// Nothing new upstream: a second pass over the same numbers changes nothing.
	withTx(t, store, func(q database.Querier) error {
		var err error
		resolved, err = s.issues.FillBackward(ctx, q, repo, 10, 3)
		return err
	})
	assert.Equal(t, 0, resolved)
	assert.Equal(t, []int{9, 8}, src.lookups())
}

func TestFillBackward_TombstonesAreNeverRequeried(t *testing.T) {
	ctx := context.Background()
	src := new(MockSource)
	store := dbtest.NewMemoryStore()
	s, err := NewSyncer(store, src, nil, nil, testLogger(), testOptions)
	require.NoError(t, err)
	repo, err := store.CreateRepository(ctx, database.CreateRepositoryParams{Owner: "octo", Name: "hello"})
	require.NoError(t, err)
	storeIssue(t, store, repo.ID, 5)

	src.On("GetIssueByNumber", ctx, "octo", "hello", 4).Return(nil, custom_errors.ErrNotFound).Once()
	src.On("GetIssueByNumber", ctx, "octo", "hello", 3).Return(&model.Issue{Number: 3, Title: "three"}, nil).Once()

	withTx(t, store, func(q database.Querier) error {
		_, err := s.issues.FillBackward(ctx, q, repo, 5, 3)
		return err
	})
	src.AssertExpectations(t)

	withTx(t, store, func(q database.Querier) error {
		n, err := s.issues.FillBackward(ctx, q, repo, 5, 3)
		assert.Equal(t, 0, n)
		return err
	})
	src.AssertNumberOfCalls(t, "GetIssueByNumber", 2)
	src.AssertNotCalled(t, "GetIssueComments", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFillBackward_StopsAtOne(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	up := src.add("octo", "hello")
	up.addIssue(1, "first", 0)
	s, store, _ := newTestSyncer(t, src)
	repo := mustRegister(t, s, "octo", "hello")
	storeIssue(t, store, repo.ID, 2)

	var resolved int
	withTx(t, store, func(q database.Querier) error {
		var err error
		resolved, err = s.issues.FillBackward(ctx, q, repo, 2, 10)
		return err
	})

	assert.Equal(t, 1, resolved)
	assert.Equal(t, []int{1}, src.lookups())
	_, ok, err := s.issues.frontier(ctx, store, repo)
	require.NoError(t, err)
	assert.False(t, ok, "range complete down to 1")
}

func TestFillBackward_TransientErrorAborts(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	up := src.add("octo", "hello")
	up.addIssue(3, "three", 0)
	up.failures[2] = errors.New("502 bad gateway")
	s, store, _ := newTestSyncer(t, src)
	repo := mustRegister(t, s, "octo", "hello")
	storeIssue(t, store, repo.ID, 4)

	err := store.ExecTx(ctx, func(q database.Querier) error {
		_, err := s.issues.FillBackward(ctx, q, repo, 4, 4)
		return err
	})

	require.Error(t, err)
	assert.False(t, errors.Is(err, custom_errors.ErrNotFound))
	assert.Empty(t, store.DeletedIssueNumbers(repo.ID), "a transient failure is never recorded as a deletion")
	_, err = store.GetIssueByNumber(ctx, database.GetIssueByNumberParams{RepositoryID: repo.ID, Number: 3})
	assert.Error(t, err, "the whole pass was rolled back")
}

func TestRefreshForward(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	up := src.add("octo", "hello")
	up.addIssue(7, "seven", 1)
	up.addIssue(6, "six", 0)
	up.addIssue(5, "five", 0)
	s, store, _ := newTestSyncer(t, src)
	repo := mustRegister(t, s, "octo", "hello")
	storeIssue(t, store, repo.ID, 6)
	require.NoError(t, store.CreateDeletedIssue(ctx, database.CreateDeletedIssueParams{RepositoryID: repo.ID, Number: 5}))

	var stored int
	withTx(t, store, func(q database.Querier) error {
		var err error
		stored, err = s.issues.RefreshForward(ctx, q, repo, 3)
		return err
	})

	assert.Equal(t, 1, stored, "only the unknown number is counted")
	seven, err := store.GetIssueByNumber(ctx, database.GetIssueByNumberParams{RepositoryID: repo.ID, Number: 7})
	require.NoError(t, err)
	assert.Equal(t, []string{}, seven.Labels)
	comments, err := store.ListIssueComments(ctx, seven.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	six, err := store.GetIssueByNumber(ctx, database.GetIssueByNumberParams{RepositoryID: repo.ID, Number: 6})
	require.NoError(t, err)
	assert.Equal(t, "six", six.Title, "known issues get their metadata refreshed")

	_, err = store.GetIssueByNumber(ctx, database.GetIssueByNumberParams{RepositoryID: repo.ID, Number: 5})
	assert.Error(t, err, "tombstoned numbers are not resurrected")

	// Closing an issue upstream is picked up without refetching comments.
	closed := up.issues[7]
	closed.State = "closed"
	up.issues[7] = closed
	withTx(t, store, func(q database.Querier) error {
		var err error
		stored, err = s.issues.RefreshForward(ctx, q, repo, 3)
		return err
	})
	assert.Equal(t, 0, stored)
	seven, err = store.GetIssueByNumber(ctx, database.GetIssueByNumberParams{RepositoryID: repo.ID, Number: 7})
	require.NoError(t, err)
	assert.Equal(t, "closed", seven.State)
	comments, err = store.ListIssueComments(ctx, seven.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestRefreshForward_PullRequestDetails(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	up := src.add("octo", "hello")
	up.addPull(4, model.PullRequest{BaseBranch: "main", HeadBranch: "feature"}, 3)
	s, store, _ := newTestSyncer(t, src)
	repo := mustRegister(t, s, "octo", "hello")

	refresh := func() int {
		var stored int
		withTx(t, store, func(q database.Querier) error {
			var err error
			stored, err = s.issues.RefreshForward(ctx, q, repo, 3)
			return err
		})
		return stored
	}

	assert.Equal(t, 1, refresh())
	pr, err := store.GetIssueByNumber(ctx, database.GetIssueByNumberParams{RepositoryID: repo.ID, Number: 4})
	require.NoError(t, err)
	assert.True(t, pr.IsPullRequest)
	assert.False(t, pr.IsMerged)
	assert.False(t, pr.MergedAt.Valid)
	assert.Equal(t, "main", pr.BaseBranch)
	assert.Equal(t, "feature", pr.HeadBranch)
	reviews, err := store.ListReviewComments(ctx, pr.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, testOptions.MaxComments, "review comments are capped like issue comments")
	assert.Equal(t, "file0.go", reviews[0].Path)
	assert.Equal(t, 1, src.pullCalls)

	// Unchanged upstream: the stored details are kept without another request.
	assert.Equal(t, 0, refresh())
	pr, err = store.GetIssueByNumber(ctx, database.GetIssueByNumberParams{RepositoryID: repo.ID, Number: 4})
	require.NoError(t, err)
	assert.Equal(t, "feature", pr.HeadBranch)
	assert.Equal(t, 1, src.pullCalls)

	mergedAt := baseTime.Add(time.Hour)
	up.pulls[4] = model.PullRequest{Merged: true, MergedAt: &mergedAt, BaseBranch: "main", HeadBranch: "feature", ReviewCommentsCount: 3}
	is := up.issues[4]
	is.State = "closed"
	is.IssueUpdated = mergedAt
	up.issues[4] = is

	assert.Equal(t, 0, refresh())
	pr, err = store.GetIssueByNumber(ctx, database.GetIssueByNumberParams{RepositoryID: repo.ID, Number: 4})
	require.NoError(t, err)
	assert.True(t, pr.IsMerged)
	assert.Equal(t, mergedAt, pr.MergedAt.Time)
	assert.Equal(t, 2, src.pullCalls)
	reviews, err = store.ListReviewComments(ctx, pr.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, testOptions.MaxComments, "review comments are not fetched again")
}

func TestFillBackward_StoresPullRequestDetails(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	up := src.add("octo", "hello")
	up.addPull(2, model.PullRequest{BaseBranch: "main", HeadBranch: "fix"}, 0)
	s, store, _ := newTestSyncer(t, src)
	repo := mustRegister(t, s, "octo", "hello")
	storeIssue(t, store, repo.ID, 3)

	withTx(t, store, func(q database.Querier) error {
		_, err := s.issues.FillBackward(ctx, q, repo, 2, 1)
		return err
	})

	pr, err := store.GetIssueByNumber(ctx, database.GetIssueByNumberParams{RepositoryID: repo.ID, Number: 2})
	require.NoError(t, err)
	assert.Equal(t, "fix", pr.HeadBranch)
	reviews, err := store.ListReviewComments(ctx, pr.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
}
