package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/domain/entities"
	domainerrors "academy/contexts/learning/course-marketplace/domain/errors"
	"academy/contexts/learning/course-marketplace/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"

	courseIDSequence = "course_id_seq"
)

// Repository implements every storage port of the module on one gorm handle.
// Inside RunInTx the handle is bound to the open transaction.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) RunInTx(ctx context.Context, fn func(ports.Registries) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scoped := &Repository{db: tx, logger: r.logger}
		return fn(ports.Registries{Courses: scoped, Users: scoped, Outbox: scoped})
	})
}

func (r *Repository) ListCourses(ctx context.Context) ([]entities.Course, error) {
	var rows []courseModel
	if err := r.db.WithContext(ctx).
		Order("course_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return coursesFromRows(rows), nil
}

func (r *Repository) GetCourse(ctx context.Context, courseID uint64) (entities.Course, error) {
	var row courseModel
	err := r.db.WithContext(ctx).
		Where("course_id = ?", int64(courseID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Course{}, domainerrors.ErrCourseNotFound
		}
		return entities.Course{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCoursesByInstructor(ctx context.Context, instructor entities.Identity) ([]entities.Course, error) {
	var rows []courseModel
	if err := r.db.WithContext(ctx).
		Where("instructor = ?", instructor.String()).
		Order("course_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return coursesFromRows(rows), nil
}

func (r *Repository) ListCoursesByStudent(ctx context.Context, student entities.Identity) ([]entities.Course, error) {
	needle, err := json.Marshal([]string{student.String()})
	if err != nil {
		return nil, err
	}
	var rows []courseModel
	if err := r.db.WithContext(ctx).
		Where("students @> ?::jsonb", string(needle)).
		Order("course_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return coursesFromRows(rows), nil
}

// CreateCourse draws the id from course_id_seq. Sequence values are not
// returned on rollback, so ids are never reused.
func (r *Repository) CreateCourse(ctx context.Context, draft ports.CourseDraft, createdAt time.Time) (entities.Course, error) {
	var nextID int64
	// gorm-postgres-enforcer: allow-raw-sql sequence access has no gorm builder
	if err := r.db.WithContext(ctx).
		Raw("SELECT nextval('" + courseIDSequence + "')").
		Scan(&nextID).
		Error; err != nil {
		return entities.Course{}, err
	}

	course := entities.Course{
		CourseID:      uint64(nextID),
		Title:         draft.Title,
		Description:   draft.Description,
		Instructor:    draft.Instructor,
		Duration:      draft.Duration,
		SkillLevel:    draft.SkillLevel,
		Prerequisites: append([]string{}, draft.Prerequisites...),
		Price:         draft.Price,
		Students:      []entities.Identity{},
		Graduates:     []entities.Identity{},
		CreatedAt:     createdAt.UTC(),
	}
	row := courseModelFromEntity(course)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return entities.Course{}, domainerrors.ErrRepositoryInvariantBroke
		}
		return entities.Course{}, err
	}

	r.logger.Debug("course row created",
		"event", "postgres_create_course",
		"module", application.ModuleName,
		"layer", "adapter",
		"course_id", course.CourseID,
	)
	return course, nil
}

func (r *Repository) EnrollStudent(ctx context.Context, courseID uint64, student entities.Identity) (entities.Course, error) {
	return r.mutateCourse(ctx, courseID, func(course *entities.Course) error {
		return course.Enroll(student)
	})
}

func (r *Repository) CompleteCourse(ctx context.Context, courseID uint64, student entities.Identity) (entities.Course, error) {
	return r.mutateCourse(ctx, courseID, func(course *entities.Course) error {
		return course.Complete(student)
	})
}

func (r *Repository) RegisterUser(ctx context.Context, user entities.User) error {
	row := userModelFromEntity(user)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, identity entities.Identity) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("identity = ?", identity.String()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) RecordPurchase(ctx context.Context, identity entities.Identity, courseID uint64) error {
	return r.mutateUser(ctx, identity, func(user *entities.User) error {
		return user.RecordPurchase(courseID)
	})
}

func (r *Repository) RecordEnrollment(ctx context.Context, identity entities.Identity, courseID uint64) error {
	return r.mutateUser(ctx, identity, func(user *entities.User) error {
		user.RecordEnrollment(courseID)
		return nil
	})
}

func (r *Repository) RecordCompletion(ctx context.Context, identity entities.Identity, courseID uint64) error {
	return r.mutateUser(ctx, identity, func(user *entities.User) error {
		user.RecordCompletion(courseID)
		return nil
	})
}

func (r *Repository) CreateTransaction(ctx context.Context, transaction entities.Transaction) error {
	row := transactionModelFromEntity(transaction)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func (r *Repository) FinalizeTransaction(
	ctx context.Context,
	transactionID string,
	settlement ports.Settlement,
) (entities.Transaction, error) {
	var final entities.Transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row transactionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("transaction_id = ?", transactionID).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrTransactionNotFound
			}
			return err
		}

		transaction := row.toEntity()
		if err := transaction.Settle(
			settlement.Status,
			settlement.Reference,
			settlement.FailureReason,
			settlement.SettledAt,
		); err != nil {
			return err
		}
		updated := transactionModelFromEntity(transaction)
		if err := tx.Save(&updated).Error; err != nil {
			return err
		}
		final = transaction
		return nil
	})
	if err != nil {
		return entities.Transaction{}, err
	}
	return final, nil
}

func (r *Repository) GetTransaction(ctx context.Context, transactionID string) (entities.Transaction, error) {
	var row transactionModel
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Transaction{}, domainerrors.ErrTransactionNotFound
		}
		return entities.Transaction{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListTransactionsByPayer(ctx context.Context, payer entities.Identity) ([]entities.Transaction, error) {
	var rows []transactionModel
	if err := r.db.WithContext(ctx).
		Where("from_identity = ?", payer.String()).
		Order("created_at DESC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return transactionsFromRows(rows), nil
}

func (r *Repository) ListPendingTransactions(
	ctx context.Context,
	createdBefore time.Time,
	limit int,
) ([]entities.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []transactionModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", string(entities.TransactionStatusPending), createdBefore.UTC()).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	return transactionsFromRows(rows), nil
}

func (r *Repository) AppendOutbox(ctx context.Context, message ports.OutboxMessage) error {
	row := outboxModel{
		OutboxID:     message.OutboxID,
		EventType:    message.EventType,
		PartitionKey: message.PartitionKey,
		Payload:      message.Payload,
		Status:       outboxStatusPending,
		CreatedAt:    message.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrRepositoryInvariantBroke
		}
		return err
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Order("outbox_id ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toPort())
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": sentAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRepositoryInvariantBroke
	}
	return nil
}

// mutateCourse applies mutate to a row locked FOR UPDATE so concurrent
// enrollments on the same course serialise in the database.
func (r *Repository) mutateCourse(
	ctx context.Context,
	courseID uint64,
	mutate func(*entities.Course) error,
) (entities.Course, error) {
	var updated entities.Course
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row courseModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("course_id = ?", int64(courseID)).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrCourseNotFound
			}
			return err
		}

		course := row.toEntity()
		if err := mutate(&course); err != nil {
			return err
		}
		next := courseModelFromEntity(course)
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		updated = course
		return nil
	})
	if err != nil {
		return entities.Course{}, err
	}
	return updated, nil
}

func (r *Repository) mutateUser(
	ctx context.Context,
	identity entities.Identity,
	mutate func(*entities.User) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row userModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("identity = ?", identity.String()).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrUserNotFound
			}
			return err
		}

		user := row.toEntity()
		if err := mutate(&user); err != nil {
			return err
		}
		next := userModelFromEntity(user)
		return tx.Save(&next).Error
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
