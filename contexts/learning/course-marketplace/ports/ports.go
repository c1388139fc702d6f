package ports

import (
	"context"
	"time"

	"academy/contexts/learning/course-marketplace/domain/entities"
	contractsv1 "academy/contracts/gen/events/v1"
)

// CourseDraft carries the caller-supplied fields of a new course. The
// registry does not validate them.
type CourseDraft struct {
	Title         string
	Description   string
	Instructor    entities.Identity
	Duration      uint64
	SkillLevel    string
	Prerequisites []string
	Price         uint64
}

// CourseRegistry owns course records. Ids are assigned from 0 upwards and
// never reused, even when the surrounding unit of work rolls back.
type CourseRegistry interface {
	ListCourses(ctx context.Context) ([]entities.Course, error)
	// GetCourse returns ErrCourseNotFound.
	GetCourse(ctx context.Context, courseID uint64) (entities.Course, error)
	ListCoursesByInstructor(ctx context.Context, instructor entities.Identity) ([]entities.Course, error)
	ListCoursesByStudent(ctx context.Context, student entities.Identity) ([]entities.Course, error)
	CreateCourse(ctx context.Context, draft CourseDraft, createdAt time.Time) (entities.Course, error)
	// EnrollStudent returns ErrCourseNotFound, ErrSelfEnrollment or ErrAlreadyEnrolled.
	EnrollStudent(ctx context.Context, courseID uint64, student entities.Identity) (entities.Course, error)
	// CompleteCourse returns ErrCourseNotFound or ErrNotEnrolled.
	CompleteCourse(ctx context.Context, courseID uint64, student entities.Identity) (entities.Course, error)
}

// UserRegistry owns one record per identity.
type UserRegistry interface {
	// RegisterUser returns ErrAlreadyRegistered and never overwrites.
	RegisterUser(ctx context.Context, user entities.User) error
	// GetUser returns ErrUserNotFound.
	GetUser(ctx context.Context, identity entities.Identity) (entities.User, error)
	// RecordPurchase returns ErrUserNotFound or ErrAlreadyPurchased.
	RecordPurchase(ctx context.Context, identity entities.Identity, courseID uint64) error
	RecordEnrollment(ctx context.Context, identity entities.Identity, courseID uint64) error
	RecordCompletion(ctx context.Context, identity entities.Identity, courseID uint64) error
}

// Settlement is the terminal outcome written onto a pending transaction.
type Settlement struct {
	Status        entities.TransactionStatus
	Reference     string
	FailureReason string
	SettledAt     time.Time
}

// TransactionRepository persists ledger rows.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, transaction entities.Transaction) error
	// FinalizeTransaction returns ErrTransactionNotFound, ErrTransactionFinalized
	// or ErrInvalidSettlement.
	FinalizeTransaction(ctx context.Context, transactionID string, settlement Settlement) (entities.Transaction, error)
	GetTransaction(ctx context.Context, transactionID string) (entities.Transaction, error)
	ListTransactionsByPayer(ctx context.Context, payer entities.Identity) ([]entities.Transaction, error)
	ListPendingTransactions(ctx context.Context, createdBefore time.Time, limit int) ([]entities.Transaction, error)
}

type SettlementRequest struct {
	From   entities.Identity
	To     entities.Identity
	Amount uint64
	Memo   string
}

type SettlementResult struct {
	Reference string
	Status    entities.TransactionStatus
	Reason    string
}

// PaymentCollaborator moves funds between identities. Settle blocks until the
// transfer reaches a terminal status or fails.
type PaymentCollaborator interface {
	Settle(ctx context.Context, request SettlementRequest) (SettlementResult, error)
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, message OutboxMessage) error
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// Registries is the transactional view handed to a unit of work.
type Registries struct {
	Courses CourseRegistry
	Users   UserRegistry
	Outbox  OutboxWriter
}

// UnitOfWork commits every write made through Registries together, or none
// of them.
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(Registries) error) error
}

// PurchaseLocker serialises purchase workflows of one buyer. The returned
// release func must be called exactly once.
type PurchaseLocker interface {
	Lock(ctx context.Context, buyer entities.Identity) (func(), error)
}

// Clock allows deterministic testing of timestamps.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts transaction/memo/event identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type Metrics interface {
	ObserveOperation(operation string, outcome string, started time.Time)
	IncSettlement(status entities.TransactionStatus)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
