// internal/syncer/syncer_test.go
package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github-history-sync/internal/database"
	"github-history-sync/internal/database/dbtest"
	custom_errors "github-history-sync/internal/errors"
	"github-history-sync/internal/lock"
	"github-history-sync/internal/model"
)

// MockQuerier is a mock of the database.Querier interface.
// Methods not overridden here panic through the nil embedded interface.
type MockQuerier struct {
	mock.Mock
	database.Querier
}

func (m *MockQuerier) CreateRepository(ctx context.Context, arg database.CreateRepositoryParams) (database.Repository, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Repository), args.Error(1)
}
func (m *MockQuerier) GetRepositoryByOwnerAndName(ctx context.Context, arg database.GetRepositoryByOwnerAndNameParams) (database.Repository, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Repository), args.Error(1)
}
func (m *MockQuerier) UpdateRepositorySyncData(ctx context.Context, arg database.UpdateRepositorySyncDataParams) (database.Repository, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(database.Repository), args.Error(1)
}

func TestSyncer_UpsertRepository(t *testing.T) {
	logger := testLogger()
	ctx := context.Background()
	description := "a repository"

	ghRepo := &model.Repository{
		GithubRepoID:  12345,
		Owner:         "test-owner",
		Name:          "test-repo",
		Description:   &description,
		URL:           "http://example.com",
		ForksCount:    10,
		StarsCount:    20,
		RepoUpdatedAt: time.Now(),
	}

	t.Run("creates a new repository if it does not exist", func(t *testing.T) {
		mockQ := new(MockQuerier)
		syncer := &Syncer{logger: logger}

		mockQ.On("GetRepositoryByOwnerAndName", ctx, mock.Anything).Return(database.Repository{}, pgx.ErrNoRows).Once()
		expectedRepo := database.Repository{ID: 1, Owner: "test-owner", Name: "test-repo"}
		mockQ.On("CreateRepository", ctx, mock.MatchedBy(func(p database.CreateRepositoryParams) bool {
			return p.Description.Valid && p.Description.String == description && !p.Language.Valid
		})).Return(expectedRepo, nil).Once()

		resultRepo, err := syncer.upsertRepository(ctx, mockQ, ghRepo)

		assert.NoError(t, err)
		assert.Equal(t, expectedRepo, resultRepo)
		mockQ.AssertExpectations(t)
	})

	t.Run("updates an existing repository if it is found", func(t *testing.T) {
		mockQ := new(MockQuerier)
		syncer := &Syncer{logger: logger}

		existingRepo := database.Repository{ID: 1, Owner: "test-owner", Name: "test-repo"}
		mockQ.On("GetRepositoryByOwnerAndName", ctx, mock.Anything).Return(existingRepo, nil).Once()

		updatedRepo := database.Repository{ID: 1, Owner: "test-owner", Name: "test-repo", StarsCount: 100}
		mockQ.On("UpdateRepositorySyncData", ctx, mock.Anything).Return(updatedRepo, nil).Once()

		resultRepo, err := syncer.upsertRepository(ctx, mockQ, ghRepo)

		assert.NoError(t, err)
		assert.Equal(t, updatedRepo, resultRepo)
		mockQ.AssertExpectations(t)
		mockQ.AssertNotCalled(t, "CreateRepository")
	})

	t.Run("returns an error if database lookup fails unexpectedly", func(t *testing.T) {
		mockQ := new(MockQuerier)
		syncer := &Syncer{logger: logger}
		dbError := errors.New("unexpected database error")

		mockQ.On("GetRepositoryByOwnerAndName", ctx, mock.Anything).Return(database.Repository{}, dbError).Once()

		_, err := syncer.upsertRepository(ctx, mockQ, ghRepo)

		assert.Error(t, err)
		assert.Equal(t, dbError, err)
		mockQ.AssertExpectations(t)
		mockQ.AssertNotCalled(t, "CreateRepository")
		mockQ.AssertNotCalled(t, "UpdateRepositorySyncData")
	})
}

func TestNewSyncer_ValidatesOptions(t *testing.T) {
	opts := testOptions
	opts.CommitBatchSize = 1
	_, err := NewSyncer(dbtest.NewMemoryStore(), newFakeSource(), lock.NewMemoryLocker(), nil, testLogger(), opts)
	assert.Error(t, err)

	opts = testOptions
	opts.LockTTL = 0
	_, err = NewSyncer(dbtest.NewMemoryStore(), newFakeSource(), lock.NewMemoryLocker(), nil, testLogger(), opts)
	assert.Error(t, err)
}

func TestParseRepoIdentifiers(t *testing.T) {
	ids, err := ParseRepoIdentifiers([]string{"octo/hello", " golang/go "})
	require.NoError(t, err)
	assert.Equal(t, []RepoIdentifier{{Owner: "octo", Name: "hello"}, {Owner: "golang", Name: "go"}}, ids)

	_, err = ParseRepoIdentifiers([]string{"octo"})
	var formatErr *custom_errors.ErrInvalidRepoFormat
	assert.ErrorAs(t, err, &formatErr)
}

func TestSyncRepository_InitializesThenRunsSteadyPasses(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	up := src.add("octo", "hello")
	up.history = linearHistory("c", 6, baseTime)
	for n := 1; n <= 5; n++ {
		up.addIssue(n, "issue", 0)
	}
	delete(up.issues, 2)
	s, store, _ := newTestSyncer(t, src)

	res, err := s.InitializeRepository(ctx, "octo", "hello")
	require.NoError(t, err)
	assert.True(t, res.Initialized)
	assert.Equal(t, 3, res.CommitsProcessed)
	assert.Equal(t, 3, res.IssuesProcessed, "issues 5, 4 and 3")
	assert.Equal(t, int64(1), sentinels(t, store, res.RepositoryID))

	repo, err := store.GetRepositoryByOwnerAndName(ctx, database.GetRepositoryByOwnerAndNameParams{Owner: "octo", Name: "hello"})
	require.NoError(t, err)
	assert.True(t, repo.IsInitialized)
	assert.True(t, repo.LastSyncedAt.Valid)

	res = s.SyncRepository(ctx, repo)
	require.NoError(t, res.Err)
	assert.False(t, res.Initialized)
	assert.Equal(t, 2, res.CommitsProcessed, "one backward batch")
	assert.Equal(t, 2, res.IssuesProcessed, "number 2 tombstoned and number 1 stored")
	assert.Equal(t, []int32{2}, store.DeletedIssueNumbers(repo.ID))

	res = s.SyncRepository(ctx, repo)
	require.NoError(t, res.Err)
	assert.Equal(t, 1, res.CommitsProcessed, "only the root was left")
	assert.Equal(t, 0, res.IssuesProcessed)
	assert.True(t, store.CommitsBySha(repo.ID)["c6"].IsRoot)

	// Converged: further passes change nothing.
	before := store.CommitsBySha(repo.ID)
	res = s.SyncRepository(ctx, repo)
	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.CommitsProcessed)
	assert.Equal(t, 0, res.IssuesProcessed)
	assert.Equal(t, before, store.CommitsBySha(repo.ID))
	assert.Equal(t, int64(0), sentinels(t, store, repo.ID))
}

func TestSyncRepository_StaleRowDoesNotReinitialize(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.add("octo", "hello").history = linearHistory("c", 10, baseTime)
	s, store, _ := newTestSyncer(t, src)

	// Read before another pass initializes the repository, as a cycle's listing would be.
	stale := mustRegister(t, s, "octo", "hello")
	require.False(t, stale.IsInitialized)

	res, err := s.InitializeRepository(ctx, "octo", "hello")
	require.NoError(t, err)
	require.True(t, res.Initialized)

	res = s.SyncRepository(ctx, stale)
	require.NoError(t, res.Err)
	assert.False(t, res.Initialized, "an initialized repository gets the steady pass")
	assert.Equal(t, 2, res.CommitsProcessed, "one backward batch below c3")
	assert.Equal(t, int64(1), sentinels(t, store, stale.ID))
	commits := store.CommitsBySha(stale.ID)
	assert.Len(t, commits, 5)
	assert.Equal(t, "c4", commits["c3"].ParentSha.String)
}

func TestSyncRepository_RemovedRepository(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.add("octo", "hello").history = linearHistory("c", 2, baseTime)
	s, store, _ := newTestSyncer(t, src)
	repo := mustRegister(t, s, "octo", "hello")
	require.NoError(t, store.DeleteRepository(ctx, repo.ID))

	res := s.SyncRepository(ctx, repo)
	assert.ErrorIs(t, res.Err, pgx.ErrNoRows)
	assert.Empty(t, store.CommitsBySha(repo.ID))
}

func TestSyncRepository_RefreshesMetadata(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	up := src.add("octo", "hello")
	up.history = linearHistory("c", 1, baseTime)
	s, store, _ := newTestSyncer(t, src)

	_, err := s.InitializeRepository(ctx, "octo", "hello")
	require.NoError(t, err)

	up.meta.StarsCount = 99
	lang := "Go"
	up.meta.Language = &lang
	repo, err := store.GetRepositoryByOwnerAndName(ctx, database.GetRepositoryByOwnerAndNameParams{Owner: "octo", Name: "hello"})
	require.NoError(t, err)

	res := s.SyncRepository(ctx, repo)
	require.NoError(t, res.Err)

	repo, err = store.GetRepositoryByOwnerAndName(ctx, database.GetRepositoryByOwnerAndNameParams{Owner: "octo", Name: "hello"})
	require.NoError(t, err)
	assert.Equal(t, int32(99), repo.StarsCount)
	assert.Equal(t, "Go", repo.Language.String)
}

func TestRunCycle_FailureRollsBackOnlyThatRepository(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	for _, name := range []string{"first", "second"} {
		up := src.add("octo", name)
		up.history = linearHistory(name, 4, baseTime)
		up.addIssue(1, "issue", 0)
	}
	s, store, _ := newTestSyncer(t, src)
	first := mustRegister(t, s, "octo", "first")
	second := mustRegister(t, s, "octo", "second")

	// Fails after the commit phase of the first repository stored its commits.
	store.FailOn("UpsertIssue", errors.New("deadlock detected"))

	results, err := s.RunCycle(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Error(t, results[0].Err)
	assert.Equal(t, first.ID, results[0].RepositoryID)
	assert.Zero(t, results[0].CommitsProcessed)
	assert.Empty(t, store.CommitsBySha(first.ID), "commits of the failed pass are rolled back")

	assert.NoError(t, results[1].Err)
	assert.Equal(t, second.ID, results[1].RepositoryID)
	assert.Equal(t, 3, results[1].CommitsProcessed)
	assert.Len(t, store.CommitsBySha(second.ID), 3)

	// The failed repository is still uninitialized and is retried next cycle.
	results, err = s.RunCycle(ctx)
	require.NoError(t, err)
	assert.NoError(t, results[0].Err)
	assert.True(t, results[0].Initialized)
	assert.Len(t, store.CommitsBySha(first.ID), 3)
}

func TestRunCycle_SkipsLockedRepository(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.add("octo", "hello").history = linearHistory("c", 2, baseTime)
	s, store, locker := newTestSyncer(t, src)
	repo := mustRegister(t, s, "octo", "hello")

	lease, err := locker.TryAcquire(ctx, lock.RepositoryKey(repo.ID), time.Minute)
	require.NoError(t, err)

	results, err := s.RunCycle(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Skipped)
	assert.Empty(t, store.CommitsBySha(repo.ID))

	_, err = s.InitializeRepository(ctx, "octo", "hello")
	assert.ErrorIs(t, err, custom_errors.ErrRepositoryBusy)

	require.NoError(t, lease.Release(ctx))
	_, err = s.InitializeRepository(ctx, "octo", "hello")
	require.NoError(t, err)
	assert.False(t, locker.Held(lock.RepositoryKey(repo.ID)), "the repository lock is released after the pass")
}

func TestRunCycle_StopsWhenCancelled(t *testing.T) {
	src := newFakeSource()
	src.add("octo", "hello").history = linearHistory("c", 2, baseTime)
	s, store, _ := newTestSyncer(t, src)
	repo := mustRegister(t, s, "octo", "hello")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.RunCycle(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.CommitsBySha(repo.ID))
}

func TestInitializeRepository_UnknownUpstream(t *testing.T) {
	s, _, _ := newTestSyncer(t, newFakeSource())

	_, err := s.InitializeRepository(context.Background(), "octo", "missing")
	assert.ErrorIs(t, err, custom_errors.ErrNotFound)
}
