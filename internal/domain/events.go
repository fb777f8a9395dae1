package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NewCharacterCreatedEvent creates a character lifecycle event.
func NewCharacterCreatedEvent(info *SmallCharacterInfo, accountID uuid.UUID) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"character_id": info.CharacterID.String(),
		"account_id":   accountID.String(),
		"name":         info.Name,
		"class_type":   info.Class,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateCharacter,
		AggregateID:   info.CharacterID.String(),
		EventType:     EventCharacterCreated,
		PartitionKey:  accountID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewCharacterDeletedEvent creates a character soft-delete event.
func NewCharacterDeletedEvent(characterID, accountID uuid.UUID) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"character_id": characterID.String(),
		"account_id":   accountID.String(),
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateCharacter,
		AggregateID:   characterID.String(),
		EventType:     EventCharacterDeleted,
		PartitionKey:  accountID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewSessionGrantedEvent records a lease grant won by a node.
func NewSessionGrantedEvent(accountID, sessionID, serverID uuid.UUID, expiresAt time.Time) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"account_id": accountID.String(),
		"session_id": sessionID.String(),
		"server_id":  serverID.String(),
		"expires_at": expiresAt.UTC().Format(time.RFC3339Nano),
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateSession,
		AggregateID:   sessionID.String(),
		EventType:     EventSessionGranted,
		PartitionKey:  accountID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewSessionRenewedEvent records a lease window being extended.
func NewSessionRenewedEvent(accountID, sessionID uuid.UUID, expiresAt time.Time) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"account_id": accountID.String(),
		"session_id": sessionID.String(),
		"expires_at": expiresAt.UTC().Format(time.RFC3339Nano),
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateSession,
		AggregateID:   sessionID.String(),
		EventType:     EventSessionRenewed,
		PartitionKey:  accountID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewSessionReleasedEvent records a lease being cleared.
func NewSessionReleasedEvent(accountID, sessionID uuid.UUID) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"account_id": accountID.String(),
		"session_id": sessionID.String(),
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateSession,
		AggregateID:   sessionID.String(),
		EventType:     EventSessionReleased,
		PartitionKey:  accountID.String(),
		Headers:       json.RawMessage(`{}`),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
