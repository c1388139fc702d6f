//go:build integration

package postgresadapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"academy/contexts/learning/course-marketplace/domain/entities"
	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
	"academy/contexts/learning/course-marketplace/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type RepositorySuite struct {
	suite.Suite
	container testcontainers.Container
	db        *gorm.DB
	repo      *Repository
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("academy"),
		tcpostgres.WithUsername("academy"),
		tcpostgres.WithPassword("academy"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	s.Require().NoError(err)
	s.db = db
	s.Require().NoError(Migrate(ctx, db))
	s.repo = NewRepository(db, nil)
}

func (s *RepositorySuite) TearDownSuite() {
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *RepositorySuite) SetupTest() {
	s.Require().NoError(s.db.Exec(
		"TRUNCATE courses, users, transactions, course_marketplace_outbox",
	).Error)
}

func (s *RepositorySuite) createCourse(ctx context.Context, instructor entities.Identity, title string) entities.Course {
	course, err := s.repo.CreateCourse(ctx, ports.CourseDraft{
		Title:      title,
		Instructor: instructor,
		Price:      100,
	}, time.Now())
	s.Require().NoError(err)
	return course
}

func (s *RepositorySuite) TestCourseIDsIncreaseAndSurviveRollback() {
	ctx := context.Background()
	first := s.createCourse(ctx, "alice", "Go")

	rollback := errors.New("rollback")
	err := s.repo.RunInTx(ctx, func(reg ports.Registries) error {
		_, err := reg.Courses.CreateCourse(ctx, ports.CourseDraft{Title: "lost", Instructor: "alice"}, time.Now())
		s.Require().NoError(err)
		return rollback
	})
	s.ErrorIs(err, rollback)

	second := s.createCourse(ctx, "alice", "Rust")
	s.Greater(second.CourseID, first.CourseID+1)

	items, err := s.repo.ListCourses(ctx)
	s.Require().NoError(err)
	s.Len(items, 2)
}

func (s *RepositorySuite) TestEnrollAndCompleteRoundTrip() {
	ctx := context.Background()
	course := s.createCourse(ctx, "alice", "Go")

	_, err := s.repo.EnrollStudent(ctx, course.CourseID, "alice")
	s.ErrorIs(err, domainerrors.ErrSelfEnrollment)

	_, err = s.repo.EnrollStudent(ctx, course.CourseID, "bob")
	s.Require().NoError(err)
	_, err = s.repo.EnrollStudent(ctx, course.CourseID, "bob")
	s.ErrorIs(err, domainerrors.ErrAlreadyEnrolled)

	byStudent, err := s.repo.ListCoursesByStudent(ctx, "bob")
	s.Require().NoError(err)
	s.Len(byStudent, 1)

	done, err := s.repo.CompleteCourse(ctx, course.CourseID, "bob")
	s.Require().NoError(err)
	s.Empty(done.Students)
	s.Equal([]entities.Identity{"bob"}, done.Graduates)

	_, err = s.repo.CompleteCourse(ctx, course.CourseID, "bob")
	s.ErrorIs(err, domainerrors.ErrNotEnrolled)

	_, err = s.repo.GetCourse(ctx, 9999)
	s.ErrorIs(err, domainerrors.ErrCourseNotFound)
}

func (s *RepositorySuite) TestRegisterUserNeverOverwrites() {
	ctx := context.Background()
	user, err := entities.NewUser("bob", "bob", "first", nil, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.repo.RegisterUser(ctx, user))

	user.Bio = "second"
	s.ErrorIs(s.repo.RegisterUser(ctx, user), domainerrors.ErrAlreadyRegistered)

	stored, err := s.repo.GetUser(ctx, "bob")
	s.Require().NoError(err)
	s.Equal("first", stored.Bio)

	s.Require().NoError(s.repo.RecordPurchase(ctx, "bob", 3))
	s.ErrorIs(s.repo.RecordPurchase(ctx, "bob", 3), domainerrors.ErrAlreadyPurchased)
	s.ErrorIs(s.repo.RecordPurchase(ctx, "carol", 3), domainerrors.ErrUserNotFound)
}

func (s *RepositorySuite) TestTransactionFinalizeIsWriteOnce() {
	ctx := context.Background()
	created := time.Now().Add(-time.Hour)
	pending, err := entities.NewPendingTransaction("tx-1", "bob", "alice", 100, "memo-1", created)
	s.Require().NoError(err)
	s.Require().NoError(s.repo.CreateTransaction(ctx, pending))

	stale, err := s.repo.ListPendingTransactions(ctx, time.Now(), 10)
	s.Require().NoError(err)
	s.Len(stale, 1)

	final, err := s.repo.FinalizeTransaction(ctx, "tx-1", ports.Settlement{
		Status:    entities.TransactionStatusCompleted,
		Reference: "ref-1",
		SettledAt: time.Now(),
	})
	s.Require().NoError(err)
	s.Equal(entities.TransactionStatusCompleted, final.Status)

	_, err = s.repo.FinalizeTransaction(ctx, "tx-1", ports.Settlement{
		Status:        entities.TransactionStatusFailed,
		FailureReason: "late",
		SettledAt:     time.Now(),
	})
	s.ErrorIs(err, domainerrors.ErrTransactionFinalized)

	history, err := s.repo.ListTransactionsByPayer(ctx, "bob")
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal("ref-1", history[0].SettlementRef)
}

func (s *RepositorySuite) TestOutboxPendingThenSent() {
	ctx := context.Background()
	s.Require().NoError(s.repo.AppendOutbox(ctx, ports.OutboxMessage{
		OutboxID:  "evt-1",
		EventType: "course.created",
		Payload:   []byte(`{}`),
		CreatedAt: time.Now(),
	}))

	pending, err := s.repo.ListPendingOutbox(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)

	s.Require().NoError(s.repo.MarkOutboxSent(ctx, "evt-1", time.Now()))
	pending, err = s.repo.ListPendingOutbox(ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)
}
