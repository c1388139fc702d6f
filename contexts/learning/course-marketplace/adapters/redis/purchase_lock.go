package redisadapter

import (
	"context"
	"log/slog"
	"time"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/domain/entities"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockKeyPrefix      = "academy:purchase-lock:"
	defaultLeaseTTL    = 30 * time.Second
	defaultWaitTimeout = 5 * time.Second
	defaultRetryDelay  = 25 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lease taken over by another process is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the lease only while it still holds our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// PurchaseLock serialises purchases per buyer across processes with a
// SET NX PX lease. The lease is renewed every third of its TTL until release,
// so a slow payment never outlives it.
type PurchaseLock struct {
	client      *redis.Client
	leaseTTL    time.Duration
	waitTimeout time.Duration
	retryDelay  time.Duration
	logger      *slog.Logger
}

func NewPurchaseLock(client *redis.Client, leaseTTL time.Duration, logger *slog.Logger) *PurchaseLock {
	if leaseTTL <= 0 {
		leaseTTL = defaultLeaseTTL
	}
	return &PurchaseLock{
		client:      client,
		leaseTTL:    leaseTTL,
		waitTimeout: defaultWaitTimeout,
		retryDelay:  defaultRetryDelay,
		logger:      application.ResolveLogger(logger),
	}
}

func (l *PurchaseLock) Lock(ctx context.Context, buyer entities.Identity) (func(), error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.waitTimeout)
		defer cancel()
	}

	key := lockKeyPrefix + buyer.String()
	token := uuid.NewString()
	for {
		acquired, err := l.client.SetNX(ctx, key, token, l.leaseTTL).Result()
		if err != nil {
			return nil, err
		}
		if acquired {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}

	stop := make(chan struct{})
	renewed := make(chan struct{})
	go l.keepAlive(key, token, buyer, stop, renewed)

	return func() {
		close(stop)
		<-renewed

		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("purchase lock release failed",
				"event", "redis_purchase_lock_release_failed",
				"module", application.ModuleName,
				"layer", "adapter",
				"buyer", buyer.String(),
				"error", err.Error(),
			)
		}
	}, nil
}

// keepAlive renews the lease until stop closes or the lease is lost.
func (l *PurchaseLock) keepAlive(key string, token string, buyer entities.Identity, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.leaseTTL / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		renewCtx, cancel := context.WithTimeout(context.Background(), l.leaseTTL/3)
		held, err := renewScript.Run(renewCtx, l.client, []string{key}, token, l.leaseTTL.Milliseconds()).Int()
		cancel()
		if err != nil {
			l.logger.Warn("purchase lock renewal failed",
				"event", "redis_purchase_lock_renew_failed",
				"module", application.ModuleName,
				"layer", "adapter",
				"buyer", buyer.String(),
				"error", err.Error(),
			)
			continue
		}
		if held == 0 {
			l.logger.Error("purchase lock lost while held",
				"event", "redis_purchase_lock_lost",
				"module", application.ModuleName,
				"layer", "adapter",
				"buyer", buyer.String(),
			)
			return
		}
	}
}
