// Package outbox publishes events written transactionally alongside business
// rows. A relay polls the outbox table, leases a batch, dispatches to Kafka
// and marks the rows sent, so a confirmed booking and its event are never
// separated by a crash.
package outbox

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

type Event struct {
	ID            int64
	AggregateType string
	AggregateID   string
	Type          string
	Payload       []byte
	CreatedAt     time.Time
	Status        Status
	RetryCount    int
	LastError     *string
}
