package application

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"academy/contexts/learning/course-marketplace/ports"
	contractsv1 "academy/contracts/gen/events/v1"
)

const (
	SourceService = "course-marketplace"

	EventCourseCreated   = "course.created"
	EventCourseEnrolled  = "course.enrolled"
	EventCourseCompleted = "course.completed"
	EventCoursePurchased = "course.purchased"
	EventUserRegistered  = "user.registered"

	DefaultEventsTopic = "academy.marketplace.events"
)

// EventSpec describes one integration event before it is wrapped in the
// canonical envelope.
type EventSpec struct {
	EventType        string
	PartitionKeyPath string
	PartitionKey     string
	OccurredAt       time.Time
	Data             any
}

// CourseEventSpec keys course events by course id so that consumers see one
// course's history in order.
func CourseEventSpec(eventType string, courseID uint64, occurredAt time.Time, data any) EventSpec {
	return EventSpec{
		EventType:        eventType,
		PartitionKeyPath: "course_id",
		PartitionKey:     strconv.FormatUint(courseID, 10),
		OccurredAt:       occurredAt,
		Data:             data,
	}
}

// NewOutboxMessage builds the outbox row for spec. The event id doubles as
// the outbox id.
func NewOutboxMessage(ctx context.Context, ids ports.IDGenerator, spec EventSpec) (ports.OutboxMessage, error) {
	eventID, err := ids.NewID(ctx)
	if err != nil {
		return ports.OutboxMessage{}, err
	}
	data, err := json.Marshal(spec.Data)
	if err != nil {
		return ports.OutboxMessage{}, err
	}
	envelope := ports.EventEnvelope{
		EventID:          eventID,
		EventType:        spec.EventType,
		OccurredAt:       spec.OccurredAt.UTC(),
		SourceService:    SourceService,
		SchemaVersion:    contractsv1.SchemaVersion,
		PartitionKeyPath: spec.PartitionKeyPath,
		PartitionKey:     spec.PartitionKey,
		Data:             data,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return ports.OutboxMessage{}, err
	}
	return ports.OutboxMessage{
		OutboxID:     eventID,
		EventType:    spec.EventType,
		PartitionKey: spec.PartitionKey,
		Payload:      payload,
		CreatedAt:    spec.OccurredAt.UTC(),
	}, nil
}
