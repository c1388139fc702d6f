package postgresadapter

import (
	"time"

	"academy/contexts/learning/course-marketplace/domain/entities"
	"academy/contexts/learning/course-marketplace/ports"
)

type courseModel struct {
	CourseID      int64     `gorm:"column:course_id;primaryKey;autoIncrement:false"`
	Title         string    `gorm:"column:title"`
	Description   string    `gorm:"column:description"`
	Instructor    string    `gorm:"column:instructor;index"`
	Duration      int64     `gorm:"column:duration"`
	SkillLevel    string    `gorm:"column:skill_level"`
	Prerequisites []string  `gorm:"column:prerequisites;type:jsonb;serializer:json"`
	Price         int64     `gorm:"column:price"`
	Students      []string  `gorm:"column:students;type:jsonb;serializer:json"`
	Graduates     []string  `gorm:"column:graduates;type:jsonb;serializer:json"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (courseModel) TableName() string {
	return "courses"
}

func courseModelFromEntity(course entities.Course) courseModel {
	return courseModel{
		CourseID:      int64(course.CourseID),
		Title:         course.Title,
		Description:   course.Description,
		Instructor:    course.Instructor.String(),
		Duration:      int64(course.Duration),
		SkillLevel:    course.SkillLevel,
		Prerequisites: nonNilStrings(course.Prerequisites),
		Price:         int64(course.Price),
		Students:      identitiesToStrings(course.Students),
		Graduates:     identitiesToStrings(course.Graduates),
		CreatedAt:     course.CreatedAt.UTC(),
	}
}

func (m courseModel) toEntity() entities.Course {
	return entities.Course{
		CourseID:      uint64(m.CourseID),
		Title:         m.Title,
		Description:   m.Description,
		Instructor:    entities.Identity(m.Instructor),
		Duration:      uint64(m.Duration),
		SkillLevel:    m.SkillLevel,
		Prerequisites: nonNilStrings(m.Prerequisites),
		Price:         uint64(m.Price),
		Students:      stringsToIdentities(m.Students),
		Graduates:     stringsToIdentities(m.Graduates),
		CreatedAt:     m.CreatedAt.UTC(),
	}
}

func coursesFromRows(rows []courseModel) []entities.Course {
	items := make([]entities.Course, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

type userModel struct {
	Identity         string    `gorm:"column:identity;primaryKey"`
	Username         string    `gorm:"column:username"`
	Bio              string    `gorm:"column:bio"`
	Skills           []string  `gorm:"column:skills;type:jsonb;serializer:json"`
	EnrolledCourses  []uint64  `gorm:"column:enrolled_courses;type:jsonb;serializer:json"`
	CompletedCourses []uint64  `gorm:"column:completed_courses;type:jsonb;serializer:json"`
	PurchasedCourses []uint64  `gorm:"column:purchased_courses;type:jsonb;serializer:json"`
	RegisteredAt     time.Time `gorm:"column:registered_at"`
}

func (userModel) TableName() string {
	return "users"
}

func userModelFromEntity(user entities.User) userModel {
	return userModel{
		Identity:         user.Identity.String(),
		Username:         user.Username,
		Bio:              user.Bio,
		Skills:           nonNilStrings(user.Skills),
		EnrolledCourses:  nonNilCourses(user.EnrolledCourses),
		CompletedCourses: nonNilCourses(user.CompletedCourses),
		PurchasedCourses: nonNilCourses(user.PurchasedCourses),
		RegisteredAt:     user.RegisteredAt.UTC(),
	}
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		Identity:         entities.Identity(m.Identity),
		Username:         m.Username,
		Bio:              m.Bio,
		Skills:           nonNilStrings(m.Skills),
		EnrolledCourses:  nonNilCourses(m.EnrolledCourses),
		CompletedCourses: nonNilCourses(m.CompletedCourses),
		PurchasedCourses: nonNilCourses(m.PurchasedCourses),
		RegisteredAt:     m.RegisteredAt.UTC(),
	}
}

type transactionModel struct {
	TransactionID string     `gorm:"column:transaction_id;primaryKey"`
	FromIdentity  string     `gorm:"column:from_identity;index"`
	ToIdentity    string     `gorm:"column:to_identity"`
	Amount        int64      `gorm:"column:amount"`
	Memo          string     `gorm:"column:memo;uniqueIndex"`
	Status        string     `gorm:"column:status;index"`
	SettlementRef string     `gorm:"column:settlement_ref"`
	FailureReason string     `gorm:"column:failure_reason"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	SettledAt     *time.Time `gorm:"column:settled_at"`
}

func (transactionModel) TableName() string {
	return "transactions"
}

func transactionModelFromEntity(transaction entities.Transaction) transactionModel {
	row := transactionModel{
		TransactionID: transaction.TransactionID,
		FromIdentity:  transaction.From.String(),
		ToIdentity:    transaction.To.String(),
		Amount:        int64(transaction.Amount),
		Memo:          transaction.Memo,
		Status:        string(transaction.Status),
		SettlementRef: transaction.SettlementRef,
		FailureReason: transaction.FailureReason,
		CreatedAt:     transaction.CreatedAt.UTC(),
	}
	if !transaction.SettledAt.IsZero() {
		settledAt := transaction.SettledAt.UTC()
		row.SettledAt = &settledAt
	}
	return row
}

func (m transactionModel) toEntity() entities.Transaction {
	transaction := entities.Transaction{
		TransactionID: m.TransactionID,
		From:          entities.Identity(m.FromIdentity),
		To:            entities.Identity(m.ToIdentity),
		Amount:        uint64(m.Amount),
		Memo:          m.Memo,
		Status:        entities.TransactionStatus(m.Status),
		SettlementRef: m.SettlementRef,
		FailureReason: m.FailureReason,
		CreatedAt:     m.CreatedAt.UTC(),
	}
	if m.SettledAt != nil {
		transaction.SettledAt = m.SettledAt.UTC()
	}
	return transaction
}

func transactionsFromRows(rows []transactionModel) []entities.Transaction {
	items := make([]entities.Transaction, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "course_marketplace_outbox"
}

func (m outboxModel) toPort() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     m.OutboxID,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      append([]byte(nil), m.Payload...),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func identitiesToStrings(items []entities.Identity) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}

func stringsToIdentities(items []string) []entities.Identity {
	out := make([]entities.Identity, 0, len(items))
	for _, item := range items {
		out = append(out, entities.Identity(item))
	}
	return out
}

func nonNilStrings(items []string) []string {
	return append([]string{}, items...)
}

func nonNilCourses(items []uint64) []uint64 {
	return append([]uint64{}, items...)
}
