package httpadapter

import (
	"context"
	"log/slog"
	"time"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/application/commands"
	"academy/contexts/learning/course-marketplace/application/queries"
	"academy/contexts/learning/course-marketplace/domain/entities"
	httptransport "academy/contexts/learning/course-marketplace/transport/http"
)

const timestampLayout = "2006-01-02T15:04:05Z"

type Handler struct {
	ListCourses      queries.ListCoursesUseCase
	GetCourse        queries.GetCourseUseCase
	GetUser          queries.GetUserUseCase
	ListTransactions queries.ListTransactionsUseCase
	CreateCourse     commands.CreateCourseUseCase
	EnrollCourse     commands.EnrollCourseUseCase
	CompleteCourse   commands.CompleteCourseUseCase
	RegisterUser     commands.RegisterUserUseCase
	BuyCourse        commands.BuyCourseUseCase
	Logger           *slog.Logger
}

// ListCoursesHandler godoc
// @Summary List courses
// @Description Returns every course in id order.
// @Tags course-marketplace
// @Produce json
// @Success 200 {object} httptransport.ListCoursesResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/courses [get]
func (h Handler) ListCoursesHandler(ctx context.Context) (httptransport.ListCoursesResponse, error) {
	return h.listCourses(ctx, queries.ListCoursesQuery{})
}

// ListInstructorCoursesHandler godoc
// @Summary List courses taught by an instructor
// @Tags course-marketplace
// @Produce json
// @Param identity path string true "Instructor identity"
// @Success 200 {object} httptransport.ListCoursesResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/instructors/{identity}/courses [get]
func (h Handler) ListInstructorCoursesHandler(ctx context.Context, identity string) (httptransport.ListCoursesResponse, error) {
	return h.listCourses(ctx, queries.ListCoursesQuery{Instructor: entities.Identity(identity)})
}

// ListStudentCoursesHandler godoc
// @Summary List courses a student is enrolled in
// @Tags course-marketplace
// @Produce json
// @Param identity path string true "Student identity"
// @Success 200 {object} httptransport.ListCoursesResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/students/{identity}/courses [get]
func (h Handler) ListStudentCoursesHandler(ctx context.Context, identity string) (httptransport.ListCoursesResponse, error) {
	return h.listCourses(ctx, queries.ListCoursesQuery{Student: entities.Identity(identity)})
}

func (h Handler) listCourses(ctx context.Context, query queries.ListCoursesQuery) (httptransport.ListCoursesResponse, error) {
	result, err := h.ListCourses.Execute(ctx, query)
	if err != nil {
		return httptransport.ListCoursesResponse{}, err
	}
	return httptransport.ListCoursesResponse{Items: mapCourses(result.Items)}, nil
}

// GetCourseHandler godoc
// @Summary Get course details
// @Tags course-marketplace
// @Produce json
// @Param course_id path int true "Course id"
// @Success 200 {object} httptransport.GetCourseResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/courses/{course_id} [get]
func (h Handler) GetCourseHandler(ctx context.Context, courseID uint64) (httptransport.GetCourseResponse, error) {
	result, err := h.GetCourse.Execute(ctx, queries.GetCourseQuery{CourseID: courseID})
	if err != nil {
		return httptransport.GetCourseResponse{}, err
	}
	return httptransport.GetCourseResponse{Item: mapCourse(result.Course)}, nil
}

// CreateCourseHandler godoc
// @Summary Create a course
// @Description Creates a course taught by the caller. Course ids start at 0.
// @Tags course-marketplace
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param request body httptransport.CreateCourseRequest true "Course payload"
// @Success 201 {object} httptransport.CreateCourseResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/courses [post]
func (h Handler) CreateCourseHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateCourseRequest,
) (httptransport.CreateCourseResponse, error) {
	result, err := h.CreateCourse.Execute(ctx, commands.CreateCourseCommand{
		Caller:        entities.Identity(userID),
		Title:         req.Title,
		Description:   req.Description,
		Duration:      req.Duration,
		SkillLevel:    req.SkillLevel,
		Prerequisites: req.Prerequisites,
		Price:         req.Price,
	})
	if err != nil {
		return httptransport.CreateCourseResponse{}, err
	}
	return httptransport.CreateCourseResponse{
		CourseID: result.Course.CourseID,
		Item:     mapCourse(result.Course),
	}, nil
}

// EnrollCourseHandler godoc
// @Summary Enroll in a course
// @Tags course-marketplace
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param course_id path int true "Course id"
// @Success 200 {object} httptransport.EnrollmentResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/courses/{course_id}/enroll [post]
func (h Handler) EnrollCourseHandler(ctx context.Context, userID string, courseID uint64) (httptransport.EnrollmentResponse, error) {
	result, err := h.EnrollCourse.Execute(ctx, commands.EnrollCourseCommand{
		Caller:   entities.Identity(userID),
		CourseID: courseID,
	})
	if err != nil {
		return httptransport.EnrollmentResponse{}, err
	}
	return httptransport.EnrollmentResponse{
		CourseID: result.Course.CourseID,
		Student:  userID,
		Status:   "enrolled",
	}, nil
}

// CompleteCourseHandler godoc
// @Summary Complete a course
// @Description Moves the caller from the course roster to its graduates.
// @Tags course-marketplace
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param course_id path int true "Course id"
// @Success 200 {object} httptransport.EnrollmentResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/courses/{course_id}/complete [post]
func (h Handler) CompleteCourseHandler(ctx context.Context, userID string, courseID uint64) (httptransport.EnrollmentResponse, error) {
	result, err := h.CompleteCourse.Execute(ctx, commands.CompleteCourseCommand{
		Caller:   entities.Identity(userID),
		CourseID: courseID,
	})
	if err != nil {
		return httptransport.EnrollmentResponse{}, err
	}
	return httptransport.EnrollmentResponse{
		CourseID: result.Course.CourseID,
		Student:  userID,
		Status:   "completed",
	}, nil
}

// BuyCourseHandler godoc
// @Summary Purchase a course
// @Description Settles the course price from the caller to the instructor and records the purchase.
// @Tags course-marketplace
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param course_id path int true "Course id"
// @Success 200 {object} httptransport.BuyCourseResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 402 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/courses/{course_id}/purchase [post]
func (h Handler) BuyCourseHandler(ctx context.Context, userID string, courseID uint64) (httptransport.BuyCourseResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("buy course request received",
		"event", "http_buy_course_received",
		"module", application.ModuleName,
		"layer", "transport",
		"user_id", userID,
		"course_id", courseID,
	)

	result, err := h.BuyCourse.Execute(ctx, commands.BuyCourseCommand{
		Caller:   entities.Identity(userID),
		CourseID: courseID,
	})
	if err != nil {
		logger.Warn("buy course request failed",
			"event", "http_buy_course_failed",
			"module", application.ModuleName,
			"layer", "transport",
			"user_id", userID,
			"course_id", courseID,
			"error", err.Error(),
		)
		return httptransport.BuyCourseResponse{}, err
	}
	return httptransport.BuyCourseResponse{
		CourseID:    result.Course.CourseID,
		Transaction: mapTransaction(result.Transaction),
	}, nil
}

// RegisterUserHandler godoc
// @Summary Register the caller
// @Tags course-marketplace
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Param request body httptransport.RegisterUserRequest true "Profile payload"
// @Success 201 {object} httptransport.UserResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/users [post]
func (h Handler) RegisterUserHandler(
	ctx context.Context,
	userID string,
	req httptransport.RegisterUserRequest,
) (httptransport.UserResponse, error) {
	result, err := h.RegisterUser.Execute(ctx, commands.RegisterUserCommand{
		Caller:   entities.Identity(userID),
		Username: req.Username,
		Bio:      req.Bio,
		Skills:   req.Skills,
	})
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return httptransport.UserResponse{Item: mapUser(result.User)}, nil
}

// GetUserHandler godoc
// @Summary Get a user profile
// @Tags course-marketplace
// @Produce json
// @Param identity path string true "User identity"
// @Success 200 {object} httptransport.UserResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/users/{identity} [get]
func (h Handler) GetUserHandler(ctx context.Context, identity string) (httptransport.UserResponse, error) {
	result, err := h.GetUser.Execute(ctx, queries.GetUserQuery{Identity: entities.Identity(identity)})
	if err != nil {
		return httptransport.UserResponse{}, err
	}
	return httptransport.UserResponse{Item: mapUser(result.User)}, nil
}

// ListTransactionsHandler godoc
// @Summary List the caller's payment attempts
// @Description Returns ledger rows paid by the caller, newest first.
// @Tags course-marketplace
// @Produce json
// @Param X-User-Id header string true "Caller identity"
// @Success 200 {object} httptransport.ListTransactionsResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /v1/me/transactions [get]
func (h Handler) ListTransactionsHandler(ctx context.Context, userID string) (httptransport.ListTransactionsResponse, error) {
	result, err := h.ListTransactions.Execute(ctx, queries.ListTransactionsQuery{Caller: entities.Identity(userID)})
	if err != nil {
		return httptransport.ListTransactionsResponse{}, err
	}
	items := make([]httptransport.TransactionDTO, 0, len(result.Items))
	for _, transaction := range result.Items {
		items = append(items, mapTransaction(transaction))
	}
	return httptransport.ListTransactionsResponse{Items: items}, nil
}

func mapCourses(courses []entities.Course) []httptransport.CourseDTO {
	items := make([]httptransport.CourseDTO, 0, len(courses))
	for _, course := range courses {
		items = append(items, mapCourse(course))
	}
	return items
}

func mapCourse(course entities.Course) httptransport.CourseDTO {
	return httptransport.CourseDTO{
		CourseID:      course.CourseID,
		Title:         course.Title,
		Description:   course.Description,
		Instructor:    course.Instructor.String(),
		Duration:      course.Duration,
		SkillLevel:    course.SkillLevel,
		Prerequisites: append([]string{}, course.Prerequisites...),
		Price:         course.Price,
		Students:      identityStrings(course.Students),
		Graduates:     identityStrings(course.Graduates),
		CreatedAt:     formatTime(course.CreatedAt),
	}
}

func mapUser(user entities.User) httptransport.UserDTO {
	return httptransport.UserDTO{
		Identity:         user.Identity.String(),
		Username:         user.Username,
		Bio:              user.Bio,
		Skills:           append([]string{}, user.Skills...),
		EnrolledCourses:  append([]uint64{}, user.EnrolledCourses...),
		CompletedCourses: append([]uint64{}, user.CompletedCourses...),
		PurchasedCourses: append([]uint64{}, user.PurchasedCourses...),
		RegisteredAt:     formatTime(user.RegisteredAt),
	}
}

func mapTransaction(transaction entities.Transaction) httptransport.TransactionDTO {
	return httptransport.TransactionDTO{
		TransactionID: transaction.TransactionID,
		From:          transaction.From.String(),
		To:            transaction.To.String(),
		Amount:        transaction.Amount,
		Memo:          transaction.Memo,
		Status:        string(transaction.Status),
		SettlementRef: transaction.SettlementRef,
		FailureReason: transaction.FailureReason,
		CreatedAt:     formatTime(transaction.CreatedAt),
		SettledAt:     formatTime(transaction.SettledAt),
	}
}

func identityStrings(items []entities.Identity) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(timestampLayout)
}
