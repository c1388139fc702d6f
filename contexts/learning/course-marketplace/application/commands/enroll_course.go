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

type EnrollCourseCommand struct {
	Caller   entities.Identity
	CourseID uint64
}

type EnrollCourseResult struct {
	Course entities.Course
}

type EnrollCourseUseCase struct {
	UnitOfWork  ports.UnitOfWork
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Metrics     ports.Metrics
	Logger      *slog.Logger
}

// Execute adds the caller to the course roster. It returns ErrCourseNotFound,
// ErrSelfEnrollment or ErrAlreadyEnrolled. Enrollment requires neither a
// registered user nor a purchase; when the caller is registered their
// EnrolledCourses is kept in step.
func (u EnrollCourseUseCase) Execute(ctx context.Context, cmd EnrollCourseCommand) (result EnrollCourseResult, err error) {
	started := time.Now()
	defer func() { application.ObserveOperation(u.Metrics, "enroll_course", started, err) }()

	logger := application.ResolveLogger(u.Logger)
	if cmd.Caller.IsZero() {
		return EnrollCourseResult{}, domainerrors.ErrMissingIdentity
	}

	now := application.Now(u.Clock)
	var enrolled entities.Course
	err = u.UnitOfWork.RunInTx(ctx, func(regs ports.Registries) error {
		course, err := regs.Courses.EnrollStudent(ctx, cmd.CourseID, cmd.Caller)
		if err != nil {
			return err
		}
		if err := regs.Users.RecordEnrollment(ctx, cmd.Caller, cmd.CourseID); err != nil &&
			!errors.Is(err, domainerrors.ErrUserNotFound) {
			return err
		}
		message, err := application.NewOutboxMessage(ctx, u.IDGenerator, application.CourseEventSpec(
			application.EventCourseEnrolled,
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
		enrolled = course
		return nil
	})
	if err != nil {
		logger.Warn("enroll course rejected",
			"event", "enroll_course_failed",
			"module", application.ModuleName,
			"layer", "application",
			"course_id", cmd.CourseID,
			"student", cmd.Caller.String(),
			"error", err.Error(),
		)
		return EnrollCourseResult{}, err
	}

	logger.Info("student enrolled",
		"event", "course_marketplace_student_enrolled",
		"module", application.ModuleName,
		"layer", "application",
		"course_id", enrolled.CourseID,
		"student", cmd.Caller.String(),
		"roster_size", len(enrolled.Students),
	)
	return EnrollCourseResult{Course: enrolled}, nil
}
