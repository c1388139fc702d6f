package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/domain/entities"
	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
	"academy/contexts/learning/course-marketplace/ports"

	"github.com/google/uuid"
)

// Store is an in-memory adapter implementing the marketplace ports for local
// runtime and tests. It is not intended as production persistence.
//
// writeMu serialises every registry write and every unit of work, so the
// store behaves like a single actor. mu guards the maps themselves and lets
// reads proceed while a unit of work is waiting on the payment collaborator.
type Store struct {
	writeMu      sync.Mutex
	mu           sync.RWMutex
	courses      map[uint64]entities.Course
	courseOrder  []uint64
	nextCourseID uint64
	users        map[entities.Identity]entities.User
	transactions map[string]entities.Transaction
	txOrder      []string
	outbox       map[string]ports.OutboxMessage
	outboxOrder  []string
	outboxSent   map[string]time.Time
	logger       *slog.Logger
}

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		courses:      make(map[uint64]entities.Course),
		courseOrder:  make([]uint64, 0),
		users:        make(map[entities.Identity]entities.User),
		transactions: make(map[string]entities.Transaction),
		txOrder:      make([]string, 0),
		outbox:       make(map[string]ports.OutboxMessage),
		outboxOrder:  make([]string, 0),
		outboxSent:   make(map[string]time.Time),
		logger:       application.ResolveLogger(logger),
	}
}

func (s *Store) ListCourses(_ context.Context) ([]entities.Course, error) {
	return s.filterCourses(func(entities.Course) bool { return true }), nil
}

func (s *Store) GetCourse(_ context.Context, courseID uint64) (entities.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	course, ok := s.courses[courseID]
	if !ok {
		return entities.Course{}, domainerrors.ErrCourseNotFound
	}
	return course.Clone(), nil
}

func (s *Store) ListCoursesByInstructor(_ context.Context, instructor entities.Identity) ([]entities.Course, error) {
	return s.filterCourses(func(course entities.Course) bool {
		return course.Instructor == instructor
	}), nil
}

func (s *Store) ListCoursesByStudent(_ context.Context, student entities.Identity) ([]entities.Course, error) {
	return s.filterCourses(func(course entities.Course) bool {
		return course.HasStudent(student)
	}), nil
}

func (s *Store) CreateCourse(ctx context.Context, draft ports.CourseDraft, createdAt time.Time) (entities.Course, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.createCourse(ctx, draft, createdAt)
}

func (s *Store) EnrollStudent(ctx context.Context, courseID uint64, student entities.Identity) (entities.Course, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.enrollStudent(ctx, courseID, student)
}

func (s *Store) CompleteCourse(ctx context.Context, courseID uint64, student entities.Identity) (entities.Course, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.completeCourse(ctx, courseID, student)
}

func (s *Store) RegisterUser(ctx context.Context, user entities.User) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.registerUser(ctx, user)
}

func (s *Store) GetUser(_ context.Context, identity entities.Identity) (entities.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[identity]
	if !ok {
		return entities.User{}, domainerrors.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (s *Store) RecordPurchase(ctx context.Context, identity entities.Identity, courseID uint64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.updateUser(ctx, identity, func(user *entities.User) error {
		return user.RecordPurchase(courseID)
	})
}

func (s *Store) RecordEnrollment(ctx context.Context, identity entities.Identity, courseID uint64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.updateUser(ctx, identity, func(user *entities.User) error {
		user.RecordEnrollment(courseID)
		return nil
	})
}

func (s *Store) RecordCompletion(ctx context.Context, identity entities.Identity, courseID uint64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.updateUser(ctx, identity, func(user *entities.User) error {
		user.RecordCompletion(courseID)
		return nil
	})
}

func (s *Store) AppendOutbox(ctx context.Context, message ports.OutboxMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.appendOutbox(ctx, message)
}

// RunInTx executes fn as one unit of work. Course, user and outbox state is
// restored if fn fails; the course id counter is not, so ids are never
// handed out twice.
func (s *Store) RunInTx(ctx context.Context, fn func(ports.Registries) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snap := s.snapshot()
	view := txView{store: s}
	if err := fn(ports.Registries{Courses: view, Users: view, Outbox: view}); err != nil {
		s.restore(snap)
		s.logger.Debug("memory unit of work rolled back",
			"event", "memory_tx_rolled_back",
			"module", application.ModuleName,
			"layer", "adapter",
			"error", err.Error(),
		)
		return err
	}
	return nil
}

func (s *Store) CreateTransaction(_ context.Context, transaction entities.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.transactions[transaction.TransactionID]; exists {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.transactions[transaction.TransactionID] = transaction
	s.txOrder = append(s.txOrder, transaction.TransactionID)
	return nil
}

func (s *Store) FinalizeTransaction(
	_ context.Context,
	transactionID string,
	settlement ports.Settlement,
) (entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	transaction, ok := s.transactions[transactionID]
	if !ok {
		return entities.Transaction{}, domainerrors.ErrTransactionNotFound
	}
	if err := transaction.Settle(
		settlement.Status,
		settlement.Reference,
		settlement.FailureReason,
		settlement.SettledAt,
	); err != nil {
		return entities.Transaction{}, err
	}
	s.transactions[transactionID] = transaction
	return transaction, nil
}

func (s *Store) GetTransaction(_ context.Context, transactionID string) (entities.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	transaction, ok := s.transactions[transactionID]
	if !ok {
		return entities.Transaction{}, domainerrors.ErrTransactionNotFound
	}
	return transaction, nil
}

func (s *Store) ListTransactionsByPayer(_ context.Context, payer entities.Identity) ([]entities.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]entities.Transaction, 0)
	for _, id := range s.txOrder {
		if transaction := s.transactions[id]; transaction.From == payer {
			result = append(result, transaction)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) ListPendingTransactions(
	_ context.Context,
	createdBefore time.Time,
	limit int,
) ([]entities.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	result := make([]entities.Transaction, 0)
	for _, id := range s.txOrder {
		transaction := s.transactions[id]
		if transaction.Status != entities.TransactionStatusPending {
			continue
		}
		if !transaction.CreatedAt.Before(createdBefore.UTC()) {
			continue
		}
		result = append(result, transaction)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	messages := make([]ports.OutboxMessage, 0, limit)
	for _, id := range s.outboxOrder {
		if _, sent := s.outboxSent[id]; sent {
			continue
		}
		if msg, ok := s.outbox[id]; ok {
			messages = append(messages, msg)
		}
		if len(messages) >= limit {
			break
		}
	}
	return messages, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, sentAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.outbox[outboxID]; !ok {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	s.outboxSent[outboxID] = sentAt.UTC()
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// OutboxEvents returns every appended outbox row in append order.
func (s *Store) OutboxEvents() []ports.OutboxMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]ports.OutboxMessage, 0, len(s.outboxOrder))
	for _, id := range s.outboxOrder {
		if evt, ok := s.outbox[id]; ok {
			events = append(events, evt)
		}
	}
	return events
}

func (s *Store) filterCourses(keep func(entities.Course) bool) []entities.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]entities.Course, 0)
	for _, id := range s.courseOrder {
		course := s.courses[id]
		if keep(course) {
			result = append(result, course.Clone())
		}
	}
	return result
}

// The lower-case writers below assume writeMu is held.

func (s *Store) createCourse(_ context.Context, draft ports.CourseDraft, createdAt time.Time) (entities.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	course := entities.Course{
		CourseID:      s.nextCourseID,
		Title:         draft.Title,
		Description:   draft.Description,
		Instructor:    draft.Instructor,
		Duration:      draft.Duration,
		SkillLevel:    draft.SkillLevel,
		Prerequisites: append([]string{}, draft.Prerequisites...),
		Price:         draft.Price,
		Students:      []entities.Identity{},
		Graduates:     []entities.Identity{},
		CreatedAt:     createdAt.UTC(),
	}
	s.nextCourseID++
	s.courses[course.CourseID] = course
	s.courseOrder = append(s.courseOrder, course.CourseID)

	s.logger.Debug("course created in memory store",
		"event", "memory_create_course",
		"module", application.ModuleName,
		"layer", "adapter",
		"course_id", course.CourseID,
		"instructor", course.Instructor.String(),
	)
	return course.Clone(), nil
}

func (s *Store) enrollStudent(_ context.Context, courseID uint64, student entities.Identity) (entities.Course, error) {
	return s.updateCourse(courseID, func(course *entities.Course) error {
		return course.Enroll(student)
	})
}

func (s *Store) completeCourse(_ context.Context, courseID uint64, student entities.Identity) (entities.Course, error) {
	return s.updateCourse(courseID, func(course *entities.Course) error {
		return course.Complete(student)
	})
}

func (s *Store) updateCourse(courseID uint64, mutate func(*entities.Course) error) (entities.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.courses[courseID]
	if !ok {
		return entities.Course{}, domainerrors.ErrCourseNotFound
	}
	course := stored.Clone()
	if err := mutate(&course); err != nil {
		return entities.Course{}, err
	}
	s.courses[courseID] = course
	return course.Clone(), nil
}

func (s *Store) registerUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Identity]; exists {
		return domainerrors.ErrAlreadyRegistered
	}
	s.users[user.Identity] = user.Clone()
	return nil
}

func (s *Store) updateUser(_ context.Context, identity entities.Identity, mutate func(*entities.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.users[identity]
	if !ok {
		return domainerrors.ErrUserNotFound
	}
	user := stored.Clone()
	if err := mutate(&user); err != nil {
		return err
	}
	s.users[identity] = user
	return nil
}

func (s *Store) appendOutbox(_ context.Context, message ports.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.outbox[message.OutboxID]; exists {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	message.Payload = append([]byte(nil), message.Payload...)
	s.outbox[message.OutboxID] = message
	s.outboxOrder = append(s.outboxOrder, message.OutboxID)
	return nil
}

type snapshot struct {
	courses     map[uint64]entities.Course
	courseOrder []uint64
	users       map[entities.Identity]entities.User
	outboxLen   int
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courses := make(map[uint64]entities.Course, len(s.courses))
	for id, course := range s.courses {
		courses[id] = course.Clone()
	}
	users := make(map[entities.Identity]entities.User, len(s.users))
	for id, user := range s.users {
		users[id] = user.Clone()
	}
	return snapshot{
		courses:     courses,
		courseOrder: append([]uint64(nil), s.courseOrder...),
		users:       users,
		outboxLen:   len(s.outboxOrder),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.courses = snap.courses
	s.courseOrder = snap.courseOrder
	s.users = snap.users
	for _, id := range s.outboxOrder[snap.outboxLen:] {
		delete(s.outbox, id)
	}
	s.outboxOrder = s.outboxOrder[:snap.outboxLen]
}

// txView exposes the store to a unit of work without re-acquiring writeMu.
type txView struct {
	store *Store
}

func (v txView) ListCourses(ctx context.Context) ([]entities.Course, error) {
	return v.store.ListCourses(ctx)
}

func (v txView) GetCourse(ctx context.Context, courseID uint64) (entities.Course, error) {
	return v.store.GetCourse(ctx, courseID)
}

func (v txView) ListCoursesByInstructor(ctx context.Context, instructor entities.Identity) ([]entities.Course, error) {
	return v.store.ListCoursesByInstructor(ctx, instructor)
}

func (v txView) ListCoursesByStudent(ctx context.Context, student entities.Identity) ([]entities.Course, error) {
	return v.store.ListCoursesByStudent(ctx, student)
}

func (v txView) CreateCourse(ctx context.Context, draft ports.CourseDraft, createdAt time.Time) (entities.Course, error) {
	return v.store.createCourse(ctx, draft, createdAt)
}

func (v txView) EnrollStudent(ctx context.Context, courseID uint64, student entities.Identity) (entities.Course, error) {
	return v.store.enrollStudent(ctx, courseID, student)
}

func (v txView) CompleteCourse(ctx context.Context, courseID uint64, student entities.Identity) (entities.Course, error) {
	return v.store.completeCourse(ctx, courseID, student)
}

func (v txView) RegisterUser(ctx context.Context, user entities.User) error {
	return v.store.registerUser(ctx, user)
}

func (v txView) GetUser(ctx context.Context, identity entities.Identity) (entities.User, error) {
	return v.store.GetUser(ctx, identity)
}

func (v txView) RecordPurchase(ctx context.Context, identity entities.Identity, courseID uint64) error {
	return v.store.updateUser(ctx, identity, func(user *entities.User) error {
		return user.RecordPurchase(courseID)
	})
}

func (v txView) RecordEnrollment(ctx context.Context, identity entities.Identity, courseID uint64) error {
	return v.store.updateUser(ctx, identity, func(user *entities.User) error {
		user.RecordEnrollment(courseID)
		return nil
	})
}

func (v txView) RecordCompletion(ctx context.Context, identity entities.Identity, courseID uint64) error {
	return v.store.updateUser(ctx, identity, func(user *entities.User) error {
		user.RecordCompletion(courseID)
		return nil
	})
}

func (v txView) AppendOutbox(ctx context.Context, message ports.OutboxMessage) error {
	return v.store.appendOutbox(ctx, message)
}
