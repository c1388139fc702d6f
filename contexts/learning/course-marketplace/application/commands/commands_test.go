package commands_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"academy/contexts/learning/course-marketplace/adapters/memory"
	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/application/commands"
	"academy/contexts/learning/course-marketplace/application/ledger"
	"academy/contexts/learning/course-marketplace/domain/entities"
	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
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

type scriptedPayments struct {
	mu       sync.Mutex
	results  []ports.SettlementResult
	errs     []error
	requests []ports.SettlementRequest
}

func (p *scriptedPayments) Settle(_ context.Context, request ports.SettlementRequest) (ports.SettlementResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, request)

	var err error
	if len(p.errs) > 0 {
		err = p.errs[0]
		p.errs = p.errs[1:]
	}
	result := ports.SettlementResult{Reference: "ref", Status: entities.TransactionStatusCompleted}
	if len(p.results) > 0 {
		result = p.results[0]
		p.results = p.results[1:]
	}
	return result, err
}

func (p *scriptedPayments) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// failingUnitOfWork lets the first n units of work through and fails the rest.
type failingUnitOfWork struct {
	inner ports.UnitOfWork
	allow int
	err   error
}

func (u *failingUnitOfWork) RunInTx(ctx context.Context, fn func(ports.Registries) error) error {
	if u.allow > 0 {
		u.allow--
		return u.inner.RunInTx(ctx, fn)
	}
	return u.err
}

type fixture struct {
	store    *memory.Store
	payments *scriptedPayments
	clock    fixedClock
}

func newFixture() fixture {
	return fixture{
		store:    memory.NewStore(nil),
		payments: &scriptedPayments{},
		clock:    fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
}

func (f fixture) createCourse() commands.CreateCourseUseCase {
	return commands.CreateCourseUseCase{UnitOfWork: f.store, Clock: f.clock, IDGenerator: f.store}
}

func (f fixture) enroll() commands.EnrollCourseUseCase {
	return commands.EnrollCourseUseCase{UnitOfWork: f.store, Clock: f.clock, IDGenerator: f.store}
}

func (f fixture) complete() commands.CompleteCourseUseCase {
	return commands.CompleteCourseUseCase{UnitOfWork: f.store, Clock: f.clock, IDGenerator: f.store}
}

func (f fixture) register() commands.RegisterUserUseCase {
	return commands.RegisterUserUseCase{UnitOfWork: f.store, Clock: f.clock, IDGenerator: f.store}
}

func (f fixture) buy() commands.BuyCourseUseCase {
	return commands.BuyCourseUseCase{
		Courses:    f.store,
		Users:      f.store,
		UnitOfWork: f.store,
		Ledger: ledger.Ledger{
			Transactions: f.store,
			Payments:     f.payments,
			Clock:        f.clock,
			IDGenerator:  f.store,
		},
		Locks:       memory.NewPurchaseLock(time.Second),
		Clock:       f.clock,
		IDGenerator: f.store,
	}
}

func (f fixture) seed(t *testing.T) entities.Course {
	t.Helper()
	ctx := context.Background()
	created, err := f.createCourse().Execute(ctx, commands.CreateCourseCommand{
		Caller: "instructor",
		Title:  "Rust Basics",
		Price:  100,
	})
	require.NoError(t, err)
	_, err = f.register().Execute(ctx, commands.RegisterUserCommand{Caller: "buyer", Username: "buyer"})
	require.NoError(t, err)
	return created.Course
}

func TestCreateCourseBindsInstructorToCaller(t *testing.T) {
	f := newFixture()
	result, err := f.createCourse().Execute(context.Background(), commands.CreateCourseCommand{
		Caller:        "instructor",
		Title:         "Rust Basics",
		Prerequisites: []string{"algebra"},
		Price:         100,
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(0), result.Course.CourseID)
	assert.Equal(t, entities.Identity("instructor"), result.Course.Instructor)
	assert.Equal(t, f.clock.now, result.Course.CreatedAt)

	events := f.store.OutboxEvents()
	require.Len(t, events, 1)
	assert.Equal(t, application.EventCourseCreated, events[0].EventType)
	assert.Equal(t, "0", events[0].PartitionKey)

	var envelope ports.EventEnvelope
	require.NoError(t, json.Unmarshal(events[0].Payload, &envelope))
	assert.Equal(t, application.SourceService, envelope.SourceService)
	assert.Equal(t, events[0].OutboxID, envelope.EventID)
}

func TestCreateCourseRequiresOnlyCaller(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.createCourse().Execute(ctx, commands.CreateCourseCommand{Title: "x"})
	assert.ErrorIs(t, err, domainerrors.ErrMissingIdentity)
	courses, err := f.store.ListCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.Empty(t, f.store.OutboxEvents())

	result, err := f.createCourse().Execute(ctx, commands.CreateCourseCommand{Caller: "instructor", Title: "  "})
	require.NoError(t, err)
	assert.Equal(t, "  ", result.Course.Title)
	assert.Zero(t, result.Course.Price)
	assert.Equal(t, entities.Identity("instructor"), result.Course.Instructor)
	assert.Len(t, f.store.OutboxEvents(), 1)
}

func TestEnrollAndCompleteTrackRegisteredUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	course := f.seed(t)

	_, err := f.complete().Execute(ctx, commands.CompleteCourseCommand{Caller: "buyer", CourseID: course.CourseID})
	assert.ErrorIs(t, err, domainerrors.ErrNotEnrolled)

	_, err = f.enroll().Execute(ctx, commands.EnrollCourseCommand{Caller: "buyer", CourseID: course.CourseID})
	require.NoError(t, err)
	user, err := f.store.GetUser(ctx, "buyer")
	require.NoError(t, err)
	assert.Equal(t, []uint64{course.CourseID}, user.EnrolledCourses)

	completed, err := f.complete().Execute(ctx, commands.CompleteCourseCommand{Caller: "buyer", CourseID: course.CourseID})
	require.NoError(t, err)
	assert.Empty(t, completed.Course.Students)
	assert.Equal(t, []entities.Identity{"buyer"}, completed.Course.Graduates)

	user, err = f.store.GetUser(ctx, "buyer")
	require.NoError(t, err)
	assert.Empty(t, user.EnrolledCourses)
	assert.Equal(t, []uint64{course.CourseID}, user.CompletedCourses)

	_, err = f.complete().Execute(ctx, commands.CompleteCourseCommand{Caller: "buyer", CourseID: course.CourseID})
	assert.ErrorIs(t, err, domainerrors.ErrNotEnrolled)
}

func TestEnrollDoesNotRequireRegistration(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	course := f.seed(t)

	result, err := f.enroll().Execute(ctx, commands.EnrollCourseCommand{Caller: "walk-in", CourseID: course.CourseID})
	require.NoError(t, err)
	assert.Equal(t, []entities.Identity{"walk-in"}, result.Course.Students)

	_, err = f.enroll().Execute(ctx, commands.EnrollCourseCommand{Caller: "walk-in", CourseID: 42})
	assert.ErrorIs(t, err, domainerrors.ErrCourseNotFound)
}

func TestRegisterUserRejectsDuplicateWithoutOverwrite(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.register().Execute(ctx, commands.RegisterUserCommand{Caller: "x", Username: "x", Bio: "first", Skills: []string{"go"}})
	require.NoError(t, err)
	_, err = f.register().Execute(ctx, commands.RegisterUserCommand{Caller: "x", Username: "y", Bio: "second"})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyRegistered)

	user, err := f.store.GetUser(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "first", user.Bio)
	assert.Equal(t, []string{"go"}, user.Skills)

	_, err = f.register().Execute(ctx, commands.RegisterUserCommand{Caller: " "})
	assert.ErrorIs(t, err, domainerrors.ErrMissingIdentity)
}

func TestBuyCourseValidatesBeforePayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	course := f.seed(t)

	_, err := f.buy().Execute(ctx, commands.BuyCourseCommand{Caller: "buyer", CourseID: 99})
	assert.ErrorIs(t, err, domainerrors.ErrCourseNotFound)

	_, err = f.buy().Execute(ctx, commands.BuyCourseCommand{Caller: "stranger", CourseID: course.CourseID})
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)

	_, err = f.buy().Execute(ctx, commands.BuyCourseCommand{CourseID: course.CourseID})
	assert.ErrorIs(t, err, domainerrors.ErrMissingIdentity)

	_, err = f.buy().Execute(ctx, commands.BuyCourseCommand{Caller: "buyer", CourseID: course.CourseID})
	require.NoError(t, err)
	_, err = f.buy().Execute(ctx, commands.BuyCourseCommand{Caller: "buyer", CourseID: course.CourseID})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyPurchased)

	assert.Equal(t, 1, f.payments.calls())
}

func TestBuyCourseFailedPaymentLeavesRegistriesUnchanged(t *testing.T) {
	f := newFixture()
	f.payments.results = []ports.SettlementResult{{Reference: "ref", Status: entities.TransactionStatusFailed, Reason: "declined"}}
	ctx := context.Background()
	course := f.seed(t)
	eventsBefore := len(f.store.OutboxEvents())

	result, err := f.buy().Execute(ctx, commands.BuyCourseCommand{Caller: "buyer", CourseID: course.CourseID})
	require.ErrorIs(t, err, domainerrors.ErrPaymentFailed)
	assert.Equal(t, entities.TransactionStatusFailed, result.Transaction.Status)
	assert.Equal(t, "declined", result.Transaction.FailureReason)

	user, err := f.store.GetUser(ctx, "buyer")
	require.NoError(t, err)
	assert.Empty(t, user.PurchasedCourses)
	assert.Len(t, f.store.OutboxEvents(), eventsBefore)

	stored, err := f.store.GetTransaction(ctx, result.Transaction.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusFailed, stored.Status)
}

func TestBuyCourseCollaboratorErrorIsRecordedAsFailed(t *testing.T) {
	f := newFixture()
	f.payments.errs = []error{errors.New("wallet unreachable")}
	course := f.seed(t)

	result, err := f.buy().Execute(context.Background(), commands.BuyCourseCommand{Caller: "buyer", CourseID: course.CourseID})
	require.ErrorIs(t, err, domainerrors.ErrPaymentFailed)
	assert.Equal(t, entities.TransactionStatusFailed, result.Transaction.Status)
	assert.Equal(t, "wallet unreachable", result.Transaction.FailureReason)
}

func TestBuyCourseCompletedPaymentRecordsPurchase(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	course := f.seed(t)

	result, err := f.buy().Execute(ctx, commands.BuyCourseCommand{Caller: "buyer", CourseID: course.CourseID})
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusCompleted, result.Transaction.Status)
	assert.Equal(t, f.clock.now, result.Transaction.SettledAt)

	require.Len(t, f.payments.requests, 1)
	request := f.payments.requests[0]
	assert.Equal(t, entities.Identity("buyer"), request.From)
	assert.Equal(t, entities.Identity("instructor"), request.To)
	assert.Equal(t, uint64(100), request.Amount)
	assert.Equal(t, result.Transaction.Memo, request.Memo)

	user, err := f.store.GetUser(ctx, "buyer")
	require.NoError(t, err)
	assert.Equal(t, []uint64{course.CourseID}, user.PurchasedCourses)
	assert.Empty(t, user.EnrolledCourses)

	events := f.store.OutboxEvents()
	assert.Equal(t, application.EventCoursePurchased, events[len(events)-1].EventType)
}

func TestBuyCourseReportsUnrecordedSettlement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	course := f.seed(t)
	boom := errors.New("disk full")

	useCase := f.buy()
	useCase.UnitOfWork = &failingUnitOfWork{inner: f.store, err: boom}

	result, err := useCase.Execute(ctx, commands.BuyCourseCommand{Caller: "buyer", CourseID: course.CourseID})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, entities.TransactionStatusCompleted, result.Transaction.Status)

	user, err := f.store.GetUser(ctx, "buyer")
	require.NoError(t, err)
	assert.Empty(t, user.PurchasedCourses)
}

func TestBuyCourseConcurrentAttemptsPayOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	course := f.seed(t)
	useCase := f.buy()

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = useCase.Execute(ctx, commands.BuyCourseCommand{Caller: "buyer", CourseID: course.CourseID})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domainerrors.ErrAlreadyPurchased)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.payments.calls())
}

func TestBuyCourseLockWaitTimeoutIsPurchaseInProgress(t *testing.T) {
	f := newFixture()
	course := f.seed(t)
	locks := memory.NewPurchaseLock(20 * time.Millisecond)

	release, err := locks.Lock(context.Background(), "buyer")
	require.NoError(t, err)
	defer release()

	useCase := f.buy()
	useCase.Locks = locks
	_, err = useCase.Execute(context.Background(), commands.BuyCourseCommand{Caller: "buyer", CourseID: course.CourseID})
	assert.ErrorIs(t, err, domainerrors.ErrPurchaseInProgress)
	assert.Equal(t, 0, f.payments.calls())
}
