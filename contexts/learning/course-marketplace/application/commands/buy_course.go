package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/application/ledger"
	"academy/contexts/learning/course-marketplace/domain/entities"
	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
	"academy/contexts/learning/course-marketplace/domain/services"
	"academy/contexts/learning/course-marketplace/ports"
)

type BuyCourseCommand struct {
	Caller   entities.Identity
	CourseID uint64
}

type BuyCourseResult struct {
	Course      entities.Course
	Transaction entities.Transaction
}

type BuyCourseUseCase struct {
	Courses     ports.CourseRegistry
	Users       ports.UserRegistry
	UnitOfWork  ports.UnitOfWork
	Ledger      ledger.Ledger
	Locks       ports.PurchaseLocker
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Metrics     ports.Metrics
	Logger      *slog.Logger
}

// Execute runs the purchase workflow in this order:
// 1) course lookup (ErrCourseNotFound)
// 2) buyer lookup (ErrUserNotFound)
// 3) duplicate purchase check (ErrAlreadyPurchased)
// 4) ledger attempt with a fresh memo
// 5) purchase record + outbox, only when the payment Completed.
//
// Steps 1-3 always precede the payment. A Failed payment returns
// ErrPaymentFailed together with the recorded transaction and leaves both
// registries unchanged. The workflow holds the buyer's purchase lock
// throughout, so one buyer cannot pay twice for the same course concurrently.
func (u BuyCourseUseCase) Execute(ctx context.Context, cmd BuyCourseCommand) (result BuyCourseResult, err error) {
	started := time.Now()
	defer func() { application.ObserveOperation(u.Metrics, "buy_course", started, err) }()

	logger := application.ResolveLogger(u.Logger)
	if cmd.Caller.IsZero() {
		return BuyCourseResult{}, domainerrors.ErrMissingIdentity
	}

	if u.Locks != nil {
		release, err := u.Locks.Lock(ctx, cmd.Caller)
		if err != nil {
			logger.Warn("purchase lock not acquired",
				"event", "buy_course_lock_failed",
				"module", application.ModuleName,
				"layer", "application",
				"course_id", cmd.CourseID,
				"buyer", cmd.Caller.String(),
				"error", err.Error(),
			)
			if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				return BuyCourseResult{}, fmt.Errorf("%w: %v", domainerrors.ErrPurchaseInProgress, err)
			}
			return BuyCourseResult{}, err
		}
		defer release()
	}

	course, err := u.Courses.GetCourse(ctx, cmd.CourseID)
	if err != nil {
		return BuyCourseResult{}, err
	}
	buyer, err := u.Users.GetUser(ctx, cmd.Caller)
	if err != nil {
		return BuyCourseResult{}, err
	}
	if err := services.EvaluatePurchase(course, buyer); err != nil {
		logger.Warn("buy course rejected",
			"event", "buy_course_rejected",
			"module", application.ModuleName,
			"layer", "application",
			"course_id", cmd.CourseID,
			"buyer", cmd.Caller.String(),
			"error", err.Error(),
		)
		return BuyCourseResult{}, err
	}

	memo, err := u.IDGenerator.NewID(ctx)
	if err != nil {
		return BuyCourseResult{}, err
	}
	transaction, err := u.Ledger.RecordAttempt(ctx, ledger.Attempt{
		From:   buyer.Identity,
		To:     course.Instructor,
		Amount: course.Price,
		Memo:   memo,
	})
	if err != nil {
		return BuyCourseResult{}, err
	}
	if transaction.Status != entities.TransactionStatusCompleted {
		logger.Warn("buy course payment failed",
			"event", "buy_course_payment_failed",
			"module", application.ModuleName,
			"layer", "application",
			"course_id", cmd.CourseID,
			"buyer", cmd.Caller.String(),
			"transaction_id", transaction.TransactionID,
			"failure_reason", transaction.FailureReason,
		)
		return BuyCourseResult{Course: course, Transaction: transaction},
			fmt.Errorf("%w: transaction %s", domainerrors.ErrPaymentFailed, transaction.TransactionID)
	}

	now := application.Now(u.Clock)
	recordCtx := context.WithoutCancel(ctx)
	err = u.UnitOfWork.RunInTx(recordCtx, func(regs ports.Registries) error {
		if err := regs.Users.RecordPurchase(recordCtx, buyer.Identity, course.CourseID); err != nil {
			return err
		}
		message, err := application.NewOutboxMessage(recordCtx, u.IDGenerator, application.CourseEventSpec(
			application.EventCoursePurchased,
			course.CourseID,
			now,
			map[string]any{
				"course_id":      course.CourseID,
				"buyer":          buyer.Identity.String(),
				"instructor":     course.Instructor.String(),
				"amount":         transaction.Amount,
				"transaction_id": transaction.TransactionID,
				"memo":           transaction.Memo,
			},
		))
		if err != nil {
			return err
		}
		return regs.Outbox.AppendOutbox(recordCtx, message)
	})
	if err != nil {
		// Funds moved but the purchase is not on record; the transaction id is
		// the reconciliation handle.
		logger.Error("purchase settled but not recorded",
			"event", "buy_course_record_failed",
			"module", application.ModuleName,
			"layer", "application",
			"course_id", cmd.CourseID,
			"buyer", cmd.Caller.String(),
			"transaction_id", transaction.TransactionID,
			"error", err.Error(),
		)
		return BuyCourseResult{Course: course, Transaction: transaction}, err
	}

	logger.Info("course purchased",
		"event", "course_marketplace_course_purchased",
		"module", application.ModuleName,
		"layer", "application",
		"course_id", course.CourseID,
		"buyer", buyer.Identity.String(),
		"transaction_id", transaction.TransactionID,
		"amount", transaction.Amount,
	)
	return BuyCourseResult{Course: course, Transaction: transaction}, nil
}
