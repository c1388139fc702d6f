package memory

import (
	"context"
	"hash/fnv"
	"time"

	"academy/contexts/learning/course-marketplace/domain/entities"
)

const (
	numPurchaseShards      = 64
	defaultLockWaitTimeout = 5 * time.Second
)

// PurchaseLock serialises purchases per buyer inside one process. Buyers are
// hashed onto a fixed set of shards, so two buyers may share a shard.
type PurchaseLock struct {
	shards      [numPurchaseShards]chan struct{}
	waitTimeout time.Duration
}

func NewPurchaseLock(waitTimeout time.Duration) *PurchaseLock {
	lock := &PurchaseLock{waitTimeout: waitTimeout}
	for i := range lock.shards {
		lock.shards[i] = make(chan struct{}, 1)
	}
	return lock
}

// Lock waits for the buyer's shard. Waiting stops when ctx is done or the
// wait timeout passes, whichever comes first.
func (l *PurchaseLock) Lock(ctx context.Context, buyer entities.Identity) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := l.waitTimeout
	if timeout <= 0 {
		timeout = defaultLockWaitTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := l.shards[shardFor(buyer)]
	select {
	case shard <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		<-shard
	}, nil
}

func shardFor(buyer entities.Identity) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(buyer))
	return h.Sum32() % numPurchaseShards
}
