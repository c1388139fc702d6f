package commands

import (
	"context"
	"log/slog"
	"time"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/domain/entities"
	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
	"academy/contexts/learning/course-marketplace/ports"
)

type CreateCourseCommand struct {
	Caller        entities.Identity
	Title         string
	Description   string
	Duration      uint64
	SkillLevel    string
	Prerequisites []string
	Price         uint64
}

type CreateCourseResult struct {
	Course entities.Course
}

type CreateCourseUseCase struct {
	UnitOfWork  ports.UnitOfWork
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Metrics     ports.Metrics
	Logger      *slog.Logger
}

// Execute publishes a course owned by the caller. The instructor is always
// the caller; it cannot be supplied by the request. Field values are stored
// as given, empty strings and zero values included.
func (u CreateCourseUseCase) Execute(ctx context.Context, cmd CreateCourseCommand) (result CreateCourseResult, err error) {
	started := time.Now()
	defer func() { application.ObserveOperation(u.Metrics, "create_course", started, err) }()

	logger := application.ResolveLogger(u.Logger)
	if cmd.Caller.IsZero() {
		return CreateCourseResult{}, domainerrors.ErrMissingIdentity
	}

	now := application.Now(u.Clock)
	draft := ports.CourseDraft{
		Title:         cmd.Title,
		Description:   cmd.Description,
		Instructor:    cmd.Caller,
		Duration:      cmd.Duration,
		SkillLevel:    cmd.SkillLevel,
		Prerequisites: cmd.Prerequisites,
		Price:         cmd.Price,
	}

	var created entities.Course
	err = u.UnitOfWork.RunInTx(ctx, func(regs ports.Registries) error {
		course, err := regs.Courses.CreateCourse(ctx, draft, now)
		if err != nil {
			return err
		}
		message, err := application.NewOutboxMessage(ctx, u.IDGenerator, application.CourseEventSpec(
			application.EventCourseCreated,
			course.CourseID,
			now,
			map[string]any{
				"course_id":  course.CourseID,
				"title":      course.Title,
				"instructor": course.Instructor.String(),
				"price":      course.Price,
			},
		))
		if err != nil {
			return err
		}
		if err := regs.Outbox.AppendOutbox(ctx, message); err != nil {
			return err
		}
		created = course
		return nil
	})
	if err != nil {
		logger.Error("create course failed",
			"event", "create_course_failed",
			"module", application.ModuleName,
			"layer", "application",
			"instructor", cmd.Caller.String(),
			"error", err.Error(),
		)
		return CreateCourseResult{}, err
	}

	logger.Info("course created",
		"event", "course_marketplace_course_created",
		"module", application.ModuleName,
		"layer", "application",
		"course_id", created.CourseID,
		"instructor", created.Instructor.String(),
	)
	return CreateCourseResult{Course: created}, nil
}
