package domain

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/google/uuid"
)

var nameRegex = regexp.MustCompile(`^[\p{L}\p{N}]+$`)

// ValidateCharacterName checks a character name before normalization.
func ValidateCharacterName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}
	n := utf8.RuneCountInString(name)
	if n < 2 || n > 16 {
		return fmt.Errorf("name must be 2-16 characters, got %d", n)
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("name may contain only letters and digits")
	}
	return nil
}

// ValidateHeartbeat checks the fields a node reports on heartbeat.
func ValidateHeartbeat(n Node) error {
	if n.ID == uuid.Nil {
		return fmt.Errorf("node id is required")
	}
	if n.Host == "" {
		return fmt.Errorf("node host is required")
	}
	if n.Port <= 0 || n.Port > 65535 {
		return fmt.Errorf("node port must be 1-65535, got %d", n.Port)
	}
	if n.MaxUsers < 0 {
		return fmt.Errorf("node maxUsers must not be negative, got %d", n.MaxUsers)
	}
	if n.Users < 0 {
		return fmt.Errorf("node users must not be negative, got %d", n.Users)
	}
	return nil
}

// ValidateInventoryRef checks that an inventory placement is structurally sound.
func ValidateInventoryRef(invType, index int32) error {
	if invType < InventoryCharacterEquipment || invType >= InventoryTemporaryEnd {
		return fmt.Errorf("inventory type %d out of range", invType)
	}
	if index < 0 {
		return fmt.Errorf("inventory index must not be negative, got %d", index)
	}
	return nil
}
