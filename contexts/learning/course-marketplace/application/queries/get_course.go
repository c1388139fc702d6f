package queries

import (
	"context"
	"log/slog"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/domain/entities"
	"academy/contexts/learning/course-marketplace/ports"
)

type GetCourseQuery struct {
	CourseID uint64
}

type GetCourseResult struct {
	Course entities.Course
}

type GetCourseUseCase struct {
	Courses ports.CourseRegistry
	Logger  *slog.Logger
}

func (u GetCourseUseCase) Execute(ctx context.Context, query GetCourseQuery) (GetCourseResult, error) {
	course, err := u.Courses.GetCourse(ctx, query.CourseID)
	if err != nil {
		application.ResolveLogger(u.Logger).Debug("get course failed",
			"event", "get_course_failed",
			"module", application.ModuleName,
			"layer", "application",
			"course_id", query.CourseID,
			"error", err.Error(),
		)
		return GetCourseResult{}, err
	}
	return GetCourseResult{Course: course}, nil
}
