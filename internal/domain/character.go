package domain

import (
	"time"

	"github.com/google/uuid"
)

// CharacterClass pairs the class id with its evolution subtype.
type CharacterClass struct {
	Type    int32 `json:"type"`
	Subtype int32 `json:"subtype"`
}

// CharacterStats holds the allocatable points and derived resource pools.
type CharacterStats struct {
	Points    int32   `json:"points"`
	Strength  int32   `json:"strength"`
	Dexterity int32   `json:"dexterity"`
	Vitality  int32   `json:"vitality"`
	Energy    int32   `json:"energy"`
	Life      float64 `json:"life"`
	Mana      float64 `json:"mana"`
	Stamina   float64 `json:"stamina"`
}

// CharacterPosition is the last saved map location.
type CharacterPosition struct {
	Map       int32   `json:"map"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Direction float64 `json:"direction"`
}

// SkinLink attaches an account skin to a character slot.
type SkinLink struct {
	Slot   int32     `json:"slot"`
	SkinID uuid.UUID `json:"skin_id"`
}

// Character is the persistent character document. Name.Normalized is unique
// among non-deleted characters; deletion is a soft flag.
type Character struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`

	Name           string `json:"name"`
	NameNormalized string `json:"-"`

	Class      CharacterClass    `json:"class"`
	Level      int32             `json:"level"`
	Experience int64             `json:"experience,string"`
	Stats      CharacterStats    `json:"stats"`
	Position   CharacterPosition `json:"position"`
	Skills     []int32           `json:"skills"`
	Skins      []SkinLink        `json:"skins"`
	Authority  int32             `json:"authority"`

	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// MountSummary is the coarse mount indicator on a character list entry.
type MountSummary struct {
	Type   int32      `json:"type"`
	Level  int32      `json:"level"`
	SkinID *uuid.UUID `json:"skin_id,omitempty"`
}

// PetSummary is the coarse pet indicator on a character list entry.
type PetSummary struct {
	Type   int32      `json:"type"`
	Level  int32      `json:"level"`
	SkinID *uuid.UUID `json:"skin_id,omitempty"`
}

// SmallCharacterInfo is the list-view projection of a character: identity,
// class, level, skins, and equipped-gear rank lines, no full stat block.
type SmallCharacterInfo struct {
	CharacterID uuid.UUID          `json:"character_id"`
	Name        string             `json:"name"`
	Class       int32              `json:"class"`
	SubClass    int32              `json:"sub_class"`
	Level       int32              `json:"level"`
	Charset     []EquipmentSummary `json:"charset"`
	Skins       []SkinLink         `json:"skins"`
	Mount       *MountSummary      `json:"mount,omitempty"`
	Pet         *PetSummary        `json:"pet,omitempty"`
	Authority   int32              `json:"authority"`
}

// SmallCharacterFromCharacter projects a character onto its list-view form.
func SmallCharacterFromCharacter(c *Character) *SmallCharacterInfo {
	skins := c.Skins
	if skins == nil {
		skins = []SkinLink{}
	}
	return &SmallCharacterInfo{
		CharacterID: c.ID,
		Name:        c.Name,
		Class:       c.Class.Type,
		SubClass:    c.Class.Subtype,
		Level:       c.Level,
		Charset:     []EquipmentSummary{},
		Skins:       skins,
		Authority:   c.Authority,
	}
}

// FoldItem folds an equipped item into the list entry. Records with an
// out-of-range slot are dropped.
func (s *SmallCharacterInfo) FoldItem(it *Item) {
	summary, ok := ComputeEquipmentSummary(it)
	if !ok {
		return
	}
	s.Charset = append(s.Charset, summary)
}

// FoldMount attaches the character's active mount indicator.
func (s *SmallCharacterInfo) FoldMount(m *Mount) {
	s.Mount = &MountSummary{Type: m.MountType, Level: m.Level, SkinID: m.SkinID}
}

// FoldPet attaches the character's active pet indicator.
func (s *SmallCharacterInfo) FoldPet(p *Pet) {
	s.Pet = &PetSummary{Type: p.PetType, Level: p.Level, SkinID: p.SkinID}
}

// SkinInfo is an account-owned skin as listed alongside characters.
type SkinInfo struct {
	ID    uuid.UUID `json:"id"`
	Type  int32     `json:"type"`
	Index int32     `json:"index"`
}

// Currencies is the per-account wallet, created lazily on first character
// fetch.
type Currencies struct {
	AccountID  uuid.UUID `json:"account_id"`
	Gold       int64     `json:"gold,string"`
	EventCoins int64     `json:"event_coins,string"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DefaultCharacter is a per-class starter template: base stats, spawn point,
// starter items, and skills applied on creation.
type DefaultCharacter struct {
	Class      CharacterClass
	Level      int32
	Experience int64
	Stats      CharacterStats
	Map        int32
	SpawnX     float64
	SpawnY     float64
	Items      []DefaultItem
	Skills     []int32
}

// DefaultItem is a starter-item template; ids and ownership are assigned when
// the template is instantiated for a new character.
type DefaultItem struct {
	ItemType       int32        `json:"type"`
	ItemIndex      int32        `json:"index"`
	InventoryType  int32        `json:"inventory_type"`
	InventoryIndex int32        `json:"inventory_index"`
	Flags          int32        `json:"flags"`
	Level          int32        `json:"level"`
	Experience     int64        `json:"experience"`
	Quantity       int32        `json:"quantity"`
	ItemCombatStats
	Options        []ItemOption `json:"options"`
}

// Instantiate materializes the template as an item owned by ownerID.
func (d *DefaultItem) Instantiate(ownerID uuid.UUID, now time.Time) *Item {
	return &Item{
		ID:              uuid.New(),
		OwnerID:         ownerID,
		InventoryType:   d.InventoryType,
		InventoryIndex:  d.InventoryIndex,
		ItemType:        d.ItemType,
		ItemIndex:       d.ItemIndex,
		Flags:           d.Flags,
		Level:           d.Level,
		Experience:      d.Experience,
		Quantity:        d.Quantity,
		ItemCombatStats: d.ItemCombatStats,
		Options:         d.Options,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// NewCharacterFromTemplate builds the character document inserted by
// Character.Create. Direction is reset and skins start empty.
func NewCharacterFromTemplate(accountID uuid.UUID, name string, tpl *DefaultCharacter, now time.Time) *Character {
	return &Character{
		ID:             uuid.New(),
		AccountID:      accountID,
		Name:           name,
		NameNormalized: NormalizeName(name),
		Class:          tpl.Class,
		Level:          tpl.Level,
		Experience:     tpl.Experience,
		Stats:          tpl.Stats,
		Position: CharacterPosition{
			Map:       tpl.Map,
			X:         tpl.SpawnX,
			Y:         tpl.SpawnY,
			Direction: 0,
		},
		Skills:    tpl.Skills,
		Skins:     []SkinLink{},
		Authority: 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
