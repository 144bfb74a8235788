package entity

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
)

type OutboxStatus string

const (
	OutboxNew    OutboxStatus = "NEW"
	OutboxSent   OutboxStatus = "SENT"
	OutboxFailed OutboxStatus = "FAILED"
	OutboxGaveUp OutboxStatus = "GAVE_UP"
)

type OutboxAggregate string

const (
	AggregateActivity OutboxAggregate = "activity"
)

type OutboxEventType string

const (
	ActivityCreated     OutboxEventType = "activity_created"
	ActivityDeleted     OutboxEventType = "activity_deleted"
	ParticipantEnrolled OutboxEventType = "participant_enrolled"
)

type OutboxEvent struct {
	ID            int             `db:"id"`
	AggregateID   uuid.UUID       `db:"aggregate_id"`   // FK -> activities.id
	AggregateType OutboxAggregate `db:"aggregate_type"` // "activity"
	EventType     OutboxEventType `db:"event_type"`
	Payload       json.RawMessage `db:"payload"` // JSONB для Kafka
	Status        OutboxStatus    `db:"status"`  // NEW | SENT | FAILED
	Attempts      int             `db:"attempts"`
	NextAttemptAt time.Time       `db:"next_attempt_at"`
	CreatedAt     time.Time       `db:"created_at"`
}
