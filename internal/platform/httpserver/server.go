package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	coursemarketplace "academy/contexts/learning/course-marketplace"
	marketplacedomainerrors "academy/contexts/learning/course-marketplace/domain/errors"
	marketplacehttp "academy/contexts/learning/course-marketplace/transport/http"

	_ "academy/internal/platform/httpserver/docs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	moduleName        = "internal/platform/httpserver"
	userIDHeader      = "X-User-Id"
	readHeaderTimeout = 5 * time.Second
)

type Server struct {
	mux         *http.ServeMux
	http        *http.Server
	logger      *slog.Logger
	addr        string
	marketplace coursemarketplace.Module
	gatherer    prometheus.Gatherer
}

// New builds the API server. A nil gatherer serves the default prometheus
// registry on /metrics.
func New(
	marketplace coursemarketplace.Module,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		addr:        addr,
		marketplace: marketplace,
		gatherer:    gatherer,
	}
	s.registerRoutes()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Start blocks until the server stops. A graceful Shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", moduleName,
		"layer", "platform",
		"addr", s.addr,
	)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server stopping",
		"event", "http_server_stopping",
		"module", moduleName,
		"layer", "platform",
	)
	return s.http.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /v1/courses", s.handleListCourses)
	s.mux.HandleFunc("POST /v1/courses", s.handleCreateCourse)
	s.mux.HandleFunc("GET /v1/courses/{course_id}", s.handleGetCourse)
	s.mux.HandleFunc("POST /v1/courses/{course_id}/enroll", s.handleEnrollCourse)
	s.mux.HandleFunc("POST /v1/courses/{course_id}/complete", s.handleCompleteCourse)
	s.mux.HandleFunc("POST /v1/courses/{course_id}/purchase", s.handleBuyCourse)
	s.mux.HandleFunc("GET /v1/instructors/{identity}/courses", s.handleListInstructorCourses)
	s.mux.HandleFunc("GET /v1/students/{identity}/courses", s.handleListStudentCourses)

	s.mux.HandleFunc("POST /v1/users", s.handleRegisterUser)
	s.mux.HandleFunc("GET /v1/users/{identity}", s.handleGetUser)
	s.mux.HandleFunc("GET /v1/me/transactions", s.handleListTransactions)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	resp, err := s.marketplace.Handler.ListCoursesHandler(r.Context())
	if err != nil {
		s.writeMarketplaceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListInstructorCourses(w http.ResponseWriter, r *http.Request) {
	resp, err := s.marketplace.Handler.ListInstructorCoursesHandler(r.Context(), r.PathValue("identity"))
	if err != nil {
		s.writeMarketplaceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListStudentCourses(w http.ResponseWriter, r *http.Request) {
	resp, err := s.marketplace.Handler.ListStudentCoursesHandler(r.Context(), r.PathValue("identity"))
	if err != nil {
		s.writeMarketplaceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}
	resp, err := s.marketplace.Handler.GetCourseHandler(r.Context(), courseID)
	if err != nil {
		s.writeMarketplaceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req marketplacehttp.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.marketplace.Handler.CreateCourseHandler(r.Context(), userID, req)
	if err != nil {
		s.writeMarketplaceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleEnrollCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	resp, err := s.marketplace.Handler.EnrollCourseHandler(r.Context(), userID, courseID)
	if err != nil {
		s.writeMarketplaceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCompleteCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	resp, err := s.marketplace.Handler.CompleteCourseHandler(r.Context(), userID, courseID)
	if err != nil {
		s.writeMarketplaceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBuyCourse(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	courseID, ok := parseCourseID(w, r)
	if !ok {
		return
	}

	resp, err := s.marketplace.Handler.BuyCourseHandler(r.Context(), userID, courseID)
	if err != nil {
		s.writeMarketplaceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req marketplacehttp.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.marketplace.Handler.RegisterUserHandler(r.Context(), userID, req)
	if err != nil {
		s.writeMarketplaceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	resp, err := s.marketplace.Handler.GetUserHandler(r.Context(), r.PathValue("identity"))
	if err != nil {
		s.writeMarketplaceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	resp, err := s.marketplace.Handler.ListTransactionsHandler(r.Context(), userID)
	if err != nil {
		s.writeMarketplaceDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeMarketplaceDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, marketplacedomainerrors.ErrCourseNotFound):
		writeMarketplaceError(w, http.StatusNotFound, "course_not_found", err.Error())
	case errors.Is(err, marketplacedomainerrors.ErrUserNotFound):
		writeMarketplaceError(w, http.StatusNotFound, "user_not_found", err.Error())
	case errors.Is(err, marketplacedomainerrors.ErrTransactionNotFound):
		writeMarketplaceError(w, http.StatusNotFound, "transaction_not_found", err.Error())
	case errors.Is(err, marketplacedomainerrors.ErrAlreadyRegistered):
		writeMarketplaceError(w, http.StatusConflict, "already_registered", err.Error())
	case errors.Is(err, marketplacedomainerrors.ErrAlreadyEnrolled):
		writeMarketplaceError(w, http.StatusConflict, "already_enrolled", err.Error())
	case errors.Is(err, marketplacedomainerrors.ErrAlreadyPurchased):
		writeMarketplaceError(w, http.StatusConflict, "already_purchased", err.Error())
	case errors.Is(err, marketplacedomainerrors.ErrSelfEnrollment):
		writeMarketplaceError(w, http.StatusConflict, "self_enrollment", err.Error())
	case errors.Is(err, marketplacedomainerrors.ErrNotEnrolled):
		writeMarketplaceError(w, http.StatusConflict, "not_enrolled", err.Error())
	case errors.Is(err, marketplacedomainerrors.ErrPurchaseInProgress):
		writeMarketplaceError(w, http.StatusConflict, "purchase_in_progress", err.Error())
	case errors.Is(err, marketplacedomainerrors.ErrPaymentFailed):
		writeMarketplaceError(w, http.StatusPaymentRequired, "payment_failed", err.Error())
	case errors.Is(err, marketplacedomainerrors.ErrMissingIdentity):
		writeMarketplaceError(w, http.StatusUnauthorized, "missing_user", err.Error())
	case errors.Is(err, marketplacedomainerrors.ErrInvalidRequest):
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		s.logger.Error("unhandled marketplace error",
			"event", "http_internal_error",
			"module", moduleName,
			"layer", "platform",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
		)
		writeMarketplaceError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get(userIDHeader))
	if userID == "" {
		writeMarketplaceError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func parseCourseID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	courseID, err := strconv.ParseUint(r.PathValue("course_id"), 10, 64)
	if err != nil {
		writeMarketplaceError(w, http.StatusBadRequest, "invalid_course_id", "course_id must be a non-negative integer")
		return 0, false
	}
	return courseID, true
}

func writeMarketplaceError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, marketplacehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
