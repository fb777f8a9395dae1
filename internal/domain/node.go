package domain

import (
	"time"

	"github.com/google/uuid"
)

// Node is a game-server node's registry entry, fully overwritten by every
// heartbeat. Stale nodes are never deleted here; liveness is judged from
// UpdatedAt by external monitoring.
type Node struct {
	ID       uuid.UUID `json:"id"`
	Index    int32     `json:"index"`
	Group    int32     `json:"group"`
	Host     string    `json:"host"`
	Port     int32     `json:"port"`
	Users    int32     `json:"users"`
	MaxUsers int32     `json:"max_users"`
	PvP      bool      `json:"pvp"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
