//go:build integration

package redisadapter

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type PurchaseLockSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *redis.Client
}

func TestPurchaseLockSuite(t *testing.T) {
	suite.Run(t, new(PurchaseLockSuite))
}

func (s *PurchaseLockSuite) SetupSuite() {
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container

	addr, err := container.ConnectionString(ctx)
	s.Require().NoError(err)
	opts, err := redis.ParseURL(addr)
	s.Require().NoError(err)
	s.client = redis.NewClient(opts)
	s.Require().NoError(s.client.Ping(ctx).Err())
}

func (s *PurchaseLockSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PurchaseLockSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
}

func (s *PurchaseLockSuite) TestSecondHolderWaitsForRelease() {
	lock := NewPurchaseLock(s.client, time.Minute, nil)
	ctx := context.Background()

	release, err := lock.Lock(ctx, "buyer")
	s.Require().NoError(err)

	short, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = lock.Lock(short, "buyer")
	s.ErrorIs(err, context.DeadlineExceeded)

	release()

	again, err := lock.Lock(ctx, "buyer")
	s.Require().NoError(err)
	again()
}

func (s *PurchaseLockSuite) TestDifferentBuyersDoNotContend() {
	lock := NewPurchaseLock(s.client, time.Minute, nil)
	ctx := context.Background()

	releaseA, err := lock.Lock(ctx, "buyer-a")
	s.Require().NoError(err)
	defer releaseA()

	releaseB, err := lock.Lock(ctx, "buyer-b")
	s.Require().NoError(err)
	releaseB()
}

func (s *PurchaseLockSuite) TestLeaseIsRenewedWhileHeld() {
	lock := NewPurchaseLock(s.client, 150*time.Millisecond, nil)
	ctx := context.Background()

	release, err := lock.Lock(ctx, "buyer")
	s.Require().NoError(err)
	time.Sleep(500 * time.Millisecond)

	short, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = lock.Lock(short, "buyer")
	s.ErrorIs(err, context.DeadlineExceeded)

	release()
	exists, err := s.client.Exists(ctx, lockKeyPrefix+"buyer").Result()
	s.Require().NoError(err)
	s.Equal(int64(0), exists)
}

func (s *PurchaseLockSuite) TestStaleReleaseDoesNotDropNewLease() {
	lock := NewPurchaseLock(s.client, time.Minute, nil)
	ctx := context.Background()

	staleRelease, err := lock.Lock(ctx, "buyer")
	s.Require().NoError(err)
	// The lease is lost, e.g. after a redis failover.
	s.Require().NoError(s.client.Del(ctx, lockKeyPrefix+"buyer").Err())

	fresh, err := lock.Lock(ctx, "buyer")
	s.Require().NoError(err)
	staleRelease()

	exists, err := s.client.Exists(ctx, lockKeyPrefix+"buyer").Result()
	require.NoError(s.T(), err)
	s.Equal(int64(1), exists)
	fresh()
}
