package v1

import (
	"encoding/json"
	"time"
)

// SchemaVersion is stamped on every envelope produced against this package.
const SchemaVersion = 1

// Envelope is the wire shape of every marketplace integration event, both in
// the outbox payload column and as the Kafka record value. Fields may be
// added but never renamed.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}
