// Package lock provides TTL-bound mutual exclusion for sync cycles.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotAcquired is returned by TryAcquire when another holder owns the key.
var ErrNotAcquired = errors.New("lock is held by another owner")

// Locker hands out leases on named keys. TryAcquire never blocks waiting for a holder.
type Locker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// Lease is an acquired lock. Release is safe to call after the TTL expired;
// it never removes a lease taken over by another owner.
type Lease interface {
	Key() string
	Release(ctx context.Context) error
}

// CycleKey guards a whole scheduled cycle.
const CycleKey = "sync:cycle"

// RepositoryKey guards the sync of a single repository.
func RepositoryKey(repositoryID int64) string {
	return fmt.Sprintf("sync:repo:%d", repositoryID)
}
