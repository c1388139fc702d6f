package queries

import (
	"context"
	"log/slog"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/domain/entities"
	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
	"academy/contexts/learning/course-marketplace/ports"
)

// ListCoursesQuery filters the catalog by instructor or by enrolled student.
// At most one filter may be set; none lists every course.
type ListCoursesQuery struct {
	Instructor entities.Identity
	Student    entities.Identity
}

type ListCoursesResult struct {
	Items []entities.Course
}

type ListCoursesUseCase struct {
	Courses ports.CourseRegistry
	Logger  *slog.Logger
}

func (u ListCoursesUseCase) Execute(ctx context.Context, query ListCoursesQuery) (ListCoursesResult, error) {
	logger := application.ResolveLogger(u.Logger)

	var (
		items []entities.Course
		err   error
	)
	switch {
	case query.Instructor != "" && query.Student != "":
		return ListCoursesResult{}, domainerrors.ErrInvalidRequest
	case query.Instructor != "":
		items, err = u.Courses.ListCoursesByInstructor(ctx, query.Instructor)
	case query.Student != "":
		items, err = u.Courses.ListCoursesByStudent(ctx, query.Student)
	default:
		items, err = u.Courses.ListCourses(ctx)
	}
	if err != nil {
		logger.Error("list courses failed",
			"event", "list_courses_failed",
			"module", application.ModuleName,
			"layer", "application",
			"instructor", query.Instructor.String(),
			"student", query.Student.String(),
			"error", err.Error(),
		)
		return ListCoursesResult{}, err
	}

	logger.Debug("list courses completed",
		"event", "list_courses_completed",
		"module", application.ModuleName,
		"layer", "application",
		"count", len(items),
	)
	return ListCoursesResult{Items: items}, nil
}
