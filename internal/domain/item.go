package domain

import (
	"time"

	"github.com/google/uuid"
)

// ItemOption is a rolled bonus on an item, mount, or pet. Rank is on the
// native 0..65535 scale.
type ItemOption struct {
	Type int32 `json:"type"`
	Rank int32 `json:"rank"`
}

// ItemCombatStats holds the rolled combat stats of an item, all on the native
// 0..65535 scale.
type ItemCombatStats struct {
	PhysicalDamageMin int32 `json:"physical_damage_min"`
	PhysicalDamageMax int32 `json:"physical_damage_max"`
	PhysicalDefense   int32 `json:"physical_defense"`
	MagicalDamageMin  int32 `json:"magical_damage_min"`
	MagicalDamageMax  int32 `json:"magical_damage_max"`
	MagicalDefense    int32 `json:"magical_defense"`
	BlockChance       int32 `json:"block_chance"`
	BlockDamage       int32 `json:"block_damage"`
	AttackSpeed       int32 `json:"attack_speed"`
	MoveSpeed         int32 `json:"move_speed"`
}

// Item is a persistent item document. OwnerID is a character id for
// character-scoped slots and an account id for storage slots; the
// inventory type decides which.
type Item struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`

	InventoryType  int32 `json:"inventory_type"`
	InventoryIndex int32 `json:"inventory_index"`

	ItemType  int32 `json:"item_type"`
	ItemIndex int32 `json:"item_index"`
	Flags     int32 `json:"flags"`

	Level      int32 `json:"level"`
	Experience int64 `json:"experience,string"`
	Quantity   int32 `json:"quantity"`

	ItemCombatStats

	Options []ItemOption `json:"options"`

	DeletedAt *time.Time `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// MountCombatStats holds a mount's (or pet's) rolled combat stats.
type MountCombatStats struct {
	PhysicalDamage  int32 `json:"physical_damage"`
	PhysicalDefense int32 `json:"physical_defense"`
	MagicalDamage   int32 `json:"magical_damage"`
	MagicalDefense  int32 `json:"magical_defense"`
	AttackSpeed     int32 `json:"attack_speed"`
	MoveSpeed       int32 `json:"move_speed"`
}

// Mount is a persistent mount document.
type Mount struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`

	InventoryType  int32 `json:"inventory_type"`
	InventoryIndex int32 `json:"inventory_index"`

	MountType int32 `json:"mount_type"`
	Flags     int32 `json:"flags"`

	Level      int32 `json:"level"`
	Experience int64 `json:"experience,string"`

	MountCombatStats

	Options []ItemOption `json:"options"`
	SkinID  *uuid.UUID   `json:"skin_id,omitempty"`

	DeletedAt *time.Time `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Pet is a persistent pet document. Shape mirrors Mount but lives in its own
// collection with its own slot taxonomy.
type Pet struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`

	InventoryType  int32 `json:"inventory_type"`
	InventoryIndex int32 `json:"inventory_index"`

	PetType int32 `json:"pet_type"`
	Flags   int32 `json:"flags"`

	Level      int32 `json:"level"`
	Experience int64 `json:"experience,string"`

	MountCombatStats

	Options []ItemOption `json:"options"`
	SkinID  *uuid.UUID   `json:"skin_id,omitempty"`

	DeletedAt *time.Time `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// InventoryBuckets groups records of one holder (personal inventory or
// account storage) by content category for the full character view.
type InventoryBuckets struct {
	Equipment   []Item  `json:"equipment"`
	Consumables []Item  `json:"consumables"`
	Quests      []Item  `json:"quests"`
	Pets        []Item  `json:"pets"`
	Jewels      []Item  `json:"jewels"`
	Others      []Item  `json:"others"`
	Mounts      []Mount `json:"mounts"`
	PassivePets []Pet   `json:"passive_pets"`
}

// NewInventoryBuckets returns buckets with empty (non-nil) slices so views
// serialize as arrays, not null.
func NewInventoryBuckets() *InventoryBuckets {
	return &InventoryBuckets{
		Equipment:   []Item{},
		Consumables: []Item{},
		Quests:      []Item{},
		Pets:        []Item{},
		Jewels:      []Item{},
		Others:      []Item{},
		Mounts:      []Mount{},
		PassivePets: []Pet{},
	}
}

// BucketForKind returns the item slice for a personal-inventory or storage
// kind, or nil for slots that do not bucket.
func (b *InventoryBuckets) BucketForKind(kind SlotKind) *[]Item {
	switch kind {
	case KindEquipment:
		return &b.Equipment
	case KindPets:
		return &b.Pets
	case KindJewels:
		return &b.Jewels
	case KindConsumables:
		return &b.Consumables
	case KindQuests:
		return &b.Quests
	case KindOthers:
		return &b.Others
	}
	return nil
}
