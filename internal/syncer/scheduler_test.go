package syncer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github-history-sync/internal/database"
	"github-history-sync/internal/database/dbtest"
	"github-history-sync/internal/lock"
	"github-history-sync/internal/model"
)

func TestRunLockedCycle_SkipsWhenCycleLockHeld(t *testing.T) {
	ctx := context.Background()
	src := new(MockSource)
	src.On("GetRepository", mock.Anything, "octo", "hello").
		Return(&model.Repository{GithubRepoID: 1, Owner: "octo", Name: "hello", RepoCreatedAt: baseTime, RepoUpdatedAt: baseTime}, nil).Once()
	store := dbtest.NewMemoryStore()
	locker := lock.NewMemoryLocker()
	s, err := NewSyncer(store, src, locker, nil, testLogger(), testOptions)
	require.NoError(t, err)
	repo := mustRegister(t, s, "octo", "hello")

	lease, err := locker.TryAcquire(ctx, lock.CycleKey, time.Minute)
	require.NoError(t, err)
	defer lease.Release(ctx)

	report, err := s.RunLockedCycle(ctx)
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Empty(t, report.Results)

	after, err := store.GetRepositoryByOwnerAndName(ctx, database.GetRepositoryByOwnerAndNameParams{Owner: "octo", Name: "hello"})
	require.NoError(t, err)
	assert.Equal(t, repo, after, "a skipped cycle leaves the repository row untouched")
	assert.False(t, after.IsInitialized)
	assert.Empty(t, store.CommitsBySha(repo.ID))
	assert.False(t, locker.Held(lock.RepositoryKey(repo.ID)))

	src.AssertExpectations(t)
	src.AssertNumberOfCalls(t, "GetRepository", 1)
	assert.Len(t, src.Calls, 1, "only registration reached upstream")
}

func TestRunLockedCycle_ReleasesCycleLock(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.add("octo", "hello").history = linearHistory("c", 2, baseTime)
	s, store, locker := newTestSyncer(t, src)
	repo := mustRegister(t, s, "octo", "hello")

	report, err := s.RunLockedCycle(ctx)
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	require.Len(t, report.Results, 1)
	assert.NoError(t, report.Results[0].Err)
	assert.Len(t, store.CommitsBySha(repo.ID), 2)

	assert.False(t, locker.Held(lock.CycleKey))
	assert.False(t, locker.Held(lock.RepositoryKey(repo.ID)))
}

func TestStart_StopsOnCancel(t *testing.T) {
	src := newFakeSource()
	src.add("octo", "hello").history = linearHistory("c", 2, baseTime)
	s, store, _ := newTestSyncer(t, src)
	repo := mustRegister(t, s, "octo", "hello")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx, time.Hour)
		close(done)
	}()

	// The initial cycle runs before the first tick.
	assert.Eventually(t, func() bool {
		return len(store.CommitsBySha(repo.ID)) == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}
}
