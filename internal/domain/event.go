package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventCharacterCreated EventType = "game.character.created"
	EventCharacterDeleted EventType = "game.character.deleted"
	EventSessionGranted   EventType = "game.session.granted"
	EventSessionRenewed   EventType = "game.session.renewed"
	EventSessionReleased  EventType = "game.session.released"
	EventNodeHeartbeat    EventType = "game.node.heartbeat"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateCharacter AggregateType = "character"
	AggregateSession   AggregateType = "session"
	AggregateNode      AggregateType = "node"
)

// OutboxDraft is the payload written to the event_outbox table inside the
// same transaction as the state change it describes.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
