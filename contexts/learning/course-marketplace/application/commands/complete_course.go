package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/domain/entities"
	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
	"academy/contexts/learning/course-marketplace/ports"
)

type CompleteCourseCommand struct {
	Caller   entities.Identity
	CourseID uint64
}

type CompleteCourseResult struct {
	Course entities.Course
}

type CompleteCourseUseCase struct {
	UnitOfWork  ports.UnitOfWork
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Metrics     ports.Metrics
	Logger      *slog.Logger
}

// Execute moves the caller from the roster to the graduates of the course.
// It returns ErrCourseNotFound or ErrNotEnrolled.
func (u CompleteCourseUseCase) Execute(ctx context.Context, cmd CompleteCourseCommand) (result CompleteCourseResult, err error) {
	started := time.Now()
	defer func() { application.ObserveOperation(u.Metrics, "complete_course", started, err) }()

	logger := application.ResolveLogger(u.Logger)
	if cmd.Caller.IsZero() {
		return CompleteCourseResult{}, domainerrors.ErrMissingIdentity
	}

	now := application.Now(u.Clock)
	var completed entities.Course
	err = u.UnitOfWork.RunInTx(ctx, func(regs ports.Registries) error {
		course, err := regs.Courses.CompleteCourse(ctx, cmd.CourseID, cmd.Caller)
		if err != nil {
			return err
		}
		if err := regs.Users.RecordCompletion(ctx, cmd.Caller, cmd.CourseID); err != nil &&
			!errors.Is(err, domainerrors.ErrUserNotFound) {
			return err
		}
		message, err := application.NewOutboxMessage(ctx, u.IDGenerator, application.CourseEventSpec(
			application.EventCourseCompleted,
			course.CourseID,
			now,
			map[string]any{
				"course_id": course.CourseID,
				"student":   cmd.Caller.String(),
			},
		))
		if err != nil {
			return err
		}
		if err := regs.Outbox.AppendOutbox(ctx, message); err != nil {
			return err
		}
		completed = course
		return nil
	})
	if err != nil {
		logger.Warn("complete course rejected",
			"event", "complete_course_failed",
			"module", application.ModuleName,
			"layer", "application",
			"course_id", cmd.CourseID,
			"student", cmd.Caller.String(),
			"error", err.Error(),
		)
		return CompleteCourseResult{}, err
	}

	logger.Info("course completed",
		"event", "course_marketplace_course_completed",
		"module", application.ModuleName,
		"layer", "application",
		"course_id", completed.CourseID,
		"student", cmd.Caller.String(),
	)
	return CompleteCourseResult{Course: completed}, nil
}
