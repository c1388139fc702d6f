package workers_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"academy/contexts/learning/course-marketplace/adapters/memory"
	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/application/ledger"
	"academy/contexts/learning/course-marketplace/application/workers"
	"academy/contexts/learning/course-marketplace/domain/entities"
	"academy/contexts/learning/course-marketplace/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

type recordingPublisher struct {
	topics []string
	events []ports.EventEnvelope
	failOn string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if event.EventID == p.failOn {
		return errors.New("broker unavailable")
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func appendEvent(t *testing.T, store *memory.Store, courseID uint64, at time.Time) ports.OutboxMessage {
	t.Helper()
	message, err := application.NewOutboxMessage(context.Background(), store, application.CourseEventSpec(
		application.EventCourseCreated,
		courseID,
		at,
		map[string]any{"course_id": courseID},
	))
	require.NoError(t, err)
	require.NoError(t, store.AppendOutbox(context.Background(), message))
	return message
}

func TestOutboxRelayPublishesInOrderAndMarksSent(t *testing.T) {
	store := memory.NewStore(nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := appendEvent(t, store, 0, now)
	second := appendEvent(t, store, 1, now.Add(time.Second))

	publisher := &recordingPublisher{}
	relay := workers.OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     fixedClock{now: now},
	}
	require.NoError(t, relay.RunOnce(context.Background()))

	require.Len(t, publisher.events, 2)
	assert.Equal(t, first.OutboxID, publisher.events[0].EventID)
	assert.Equal(t, second.OutboxID, publisher.events[1].EventID)
	assert.Equal(t, application.DefaultEventsTopic, publisher.topics[0])
	assert.Equal(t, "course_id", publisher.events[0].PartitionKeyPath)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, relay.RunOnce(context.Background()))
	assert.Len(t, publisher.events, 2)
}

func TestOutboxRelayStopsAtFirstPublishFailure(t *testing.T) {
	store := memory.NewStore(nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := appendEvent(t, store, 0, now)
	appendEvent(t, store, 1, now.Add(time.Second))

	publisher := &recordingPublisher{failOn: first.OutboxID}
	metrics := &recordingMetrics{}
	relay := workers.OutboxRelay{Outbox: store, Publisher: publisher, Topic: "custom", Metrics: metrics}
	err := relay.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, first.OutboxID)
	assert.ErrorContains(t, err, "broker unavailable")
	assert.Empty(t, publisher.events)
	assert.Equal(t, []string{"outbox_relay:error"}, metrics.operations)

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

type recordingMetrics struct {
	operations []string
}

func (m *recordingMetrics) ObserveOperation(operation string, outcome string, _ time.Time) {
	m.operations = append(m.operations, operation+":"+outcome)
}

func (m *recordingMetrics) IncSettlement(entities.TransactionStatus) {}

func TestOutboxRelayRecordsCycleOutcome(t *testing.T) {
	store := memory.NewStore(nil)
	appendEvent(t, store, 0, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	metrics := &recordingMetrics{}
	relay := workers.OutboxRelay{Outbox: store, Publisher: &recordingPublisher{}, Metrics: metrics}
	require.NoError(t, relay.RunOnce(context.Background()))
	require.NoError(t, relay.RunOnce(context.Background()))

	assert.Equal(t, []string{"outbox_relay:ok", "outbox_relay:ok"}, metrics.operations)
}

func TestSettlementReaperFailsOnlyStalePending(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	stale, err := entities.NewPendingTransaction("stale", "buyer", "instructor", 10, "memo-1", now.Add(-time.Hour))
	require.NoError(t, err)
	fresh, err := entities.NewPendingTransaction("fresh", "buyer", "instructor", 10, "memo-2", now.Add(-time.Second))
	require.NoError(t, err)
	done, err := entities.NewPendingTransaction("done", "buyer", "instructor", 10, "memo-3", now.Add(-time.Hour))
	require.NoError(t, err)
	for _, transaction := range []entities.Transaction{stale, fresh, done} {
		require.NoError(t, store.CreateTransaction(ctx, transaction))
	}
	_, err = store.FinalizeTransaction(ctx, "done", ports.Settlement{
		Status:    entities.TransactionStatusCompleted,
		Reference: "ref",
		SettledAt: now.Add(-time.Minute),
	})
	require.NoError(t, err)

	reaper := workers.SettlementReaper{
		Transactions: store,
		Clock:        fixedClock{now: now},
		Timeout:      time.Minute,
	}
	require.NoError(t, reaper.RunOnce(ctx))

	got, err := store.GetTransaction(ctx, "stale")
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusFailed, got.Status)
	assert.Equal(t, "settlement timed out", got.FailureReason)
	assert.Equal(t, now, got.SettledAt)

	got, err = store.GetTransaction(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusPending, got.Status)

	got, err = store.GetTransaction(ctx, "done")
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusCompleted, got.Status)
}

// slowPayments completes after delay unless its context ends first.
type slowPayments struct {
	delay     time.Duration
	completed atomic.Bool
}

func (p *slowPayments) Settle(ctx context.Context, _ ports.SettlementRequest) (ports.SettlementResult, error) {
	select {
	case <-time.After(p.delay):
		p.completed.Store(true)
		return ports.SettlementResult{Reference: "slow-ref", Status: entities.TransactionStatusCompleted}, nil
	case <-ctx.Done():
		return ports.SettlementResult{}, ctx.Err()
	}
}

// runReaper sweeps every few milliseconds until the returned stop func is
// called.
func runReaper(store *memory.Store, timeout time.Duration) func() {
	reaper := workers.SettlementReaper{Transactions: store, Timeout: timeout}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case <-time.After(5 * time.Millisecond):
				_ = reaper.RunOnce(context.Background())
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

func TestSettlementReaperNeverFailsAnAttemptStillSettling(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)
	payments := &slowPayments{delay: 200 * time.Millisecond}
	l := ledger.Ledger{
		Transactions:  store,
		IDGenerator:   store,
		Payments:      payments,
		SettleTimeout: 50 * time.Millisecond,
	}
	stop := runReaper(store, 100*time.Millisecond)

	transaction, err := l.RecordAttempt(ctx, ledger.Attempt{From: "buyer", To: "instructor", Amount: 10, Memo: "memo-slow"})
	require.NoError(t, err)
	time.Sleep(250 * time.Millisecond)
	stop()

	assert.False(t, payments.completed.Load(), "collaborator must not complete after the ledger gave up")
	assert.Equal(t, entities.TransactionStatusFailed, transaction.Status)
	assert.Contains(t, transaction.FailureReason, "settlement deadline exceeded")

	stored, err := store.GetTransaction(ctx, transaction.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, transaction.FailureReason, stored.FailureReason)
}

func TestSettlementReaperLeavesCompletedAttemptAlone(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(nil)
	payments := &slowPayments{delay: 20 * time.Millisecond}
	l := ledger.Ledger{
		Transactions:  store,
		IDGenerator:   store,
		Payments:      payments,
		SettleTimeout: 50 * time.Millisecond,
	}
	stop := runReaper(store, 100*time.Millisecond)

	transaction, err := l.RecordAttempt(ctx, ledger.Attempt{From: "buyer", To: "instructor", Amount: 10, Memo: "memo-fast"})
	require.NoError(t, err)
	time.Sleep(150 * time.Millisecond)
	stop()

	assert.True(t, payments.completed.Load())
	stored, err := store.GetTransaction(ctx, transaction.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusCompleted, stored.Status)
	assert.Equal(t, "slow-ref", stored.SettlementRef)
}
