package domain

// Inventory type enumerations. The raw integer space encodes where a record
// sits; the boundary values are part of the client protocol and must not move.
const (
	InventoryCharacterEquipment int32 = 0

	InventoryCharacterBegin int32 = 1
	InventoryEquipment      int32 = InventoryCharacterBegin
	InventoryPets           int32 = 2
	InventoryJewels         int32 = 3
	InventoryConsumables    int32 = 4
	InventoryQuests         int32 = 5
	InventoryOthers         int32 = 6
	InventoryCharacterEnd   int32 = InventoryCharacterBegin + 63

	InventoryStorageBegin      int32 = 65
	InventoryEquipmentStorage  int32 = InventoryStorageBegin
	InventoryPetsStorage       int32 = 66
	InventoryJewelsStorage     int32 = 67
	InventoryConsumablesStorage int32 = 68
	InventoryQuestsStorage     int32 = 69
	InventoryOthersStorage     int32 = 70
	InventoryStorageEnd        int32 = InventoryStorageBegin + 63

	InventoryAuctionBegin   int32 = InventoryStorageEnd
	InventoryAuctionSelling int32 = InventoryAuctionBegin
	InventoryAuctionReceive int32 = InventoryAuctionBegin + 1
	InventoryAuctionEnd     int32 = InventoryAuctionBegin + 63

	InventoryTemporaryBegin int32 = 224
	InventoryMyTrade        int32 = 225
	InventoryTargetTrade    int32 = 226
	InventoryTemporaryEnd   int32 = 227
)

// Mount inventory types share the layout but hold a single kind per range.
const (
	MountInventoryCharacter int32 = 0

	MountInventoryCharacterBegin int32 = 1
	MountInventoryMounts         int32 = MountInventoryCharacterBegin
	MountInventoryCharacterEnd   int32 = MountInventoryCharacterBegin + 63

	MountInventoryStorageBegin  int32 = 65
	MountInventoryMountsStorage int32 = MountInventoryStorageBegin
	MountInventoryStorageEnd    int32 = MountInventoryStorageBegin + 63
)

const (
	PetInventoryCharacter int32 = 0

	PetInventoryCharacterBegin int32 = 1
	PetInventoryPets           int32 = PetInventoryCharacterBegin
	PetInventoryCharacterEnd   int32 = PetInventoryCharacterBegin + 63

	PetInventoryStorageBegin int32 = 65
	PetInventoryPetsStorage  int32 = PetInventoryStorageBegin
	PetInventoryStorageEnd   int32 = PetInventoryStorageBegin + 63
)

// MaxEquipmentSlots bounds the equipped-gear slot indices; records outside the
// range are dropped from views rather than rejected.
const MaxEquipmentSlots = 12

// SlotCategory is the closed classification of a raw inventory type.
type SlotCategory int

const (
	SlotUnknown SlotCategory = iota
	SlotCharacterEquipped
	SlotPersonalInventory
	SlotAccountStorage
	SlotAuctionHold
	SlotTradeHold
)

// SlotKind names the content category of a personal-inventory or storage slot.
type SlotKind int

const (
	KindNone SlotKind = iota
	KindEquipment
	KindPets
	KindJewels
	KindConsumables
	KindQuests
	KindOthers
)

// ClassifyItemSlot maps a raw item inventory type to its category and kind.
func ClassifyItemSlot(t int32) (SlotCategory, SlotKind) {
	switch {
	case t == InventoryCharacterEquipment:
		return SlotCharacterEquipped, KindNone
	case t >= InventoryCharacterBegin && t < InventoryCharacterEnd:
		return SlotPersonalInventory, itemSlotKind(t - InventoryCharacterBegin)
	case t >= InventoryStorageBegin && t < InventoryStorageEnd:
		return SlotAccountStorage, itemSlotKind(t - InventoryStorageBegin)
	case t >= InventoryAuctionBegin && t < InventoryAuctionEnd:
		return SlotAuctionHold, KindNone
	case t >= InventoryTemporaryBegin && t < InventoryTemporaryEnd:
		return SlotTradeHold, KindNone
	}
	return SlotUnknown, KindNone
}

func itemSlotKind(offset int32) SlotKind {
	switch offset {
	case 0:
		return KindEquipment
	case 1:
		return KindPets
	case 2:
		return KindJewels
	case 3:
		return KindConsumables
	case 4:
		return KindQuests
	case 5:
		return KindOthers
	}
	return KindNone
}

// ClassifyMountSlot maps a raw mount inventory type to its category.
func ClassifyMountSlot(t int32) SlotCategory {
	switch {
	case t == MountInventoryCharacter:
		return SlotCharacterEquipped
	case t >= MountInventoryCharacterBegin && t < MountInventoryCharacterEnd:
		return SlotPersonalInventory
	case t >= MountInventoryStorageBegin && t < MountInventoryStorageEnd:
		return SlotAccountStorage
	}
	return SlotUnknown
}

// ClassifyPetSlot maps a raw pet inventory type to its category.
func ClassifyPetSlot(t int32) SlotCategory {
	switch {
	case t == PetInventoryCharacter:
		return SlotCharacterEquipped
	case t >= PetInventoryCharacterBegin && t < PetInventoryCharacterEnd:
		return SlotPersonalInventory
	case t >= PetInventoryStorageBegin && t < PetInventoryStorageEnd:
		return SlotAccountStorage
	}
	return SlotUnknown
}

// Item type categories. The item_type column holds one of these; predicates
// below drive the rank aggregation stat subsets.
const (
	ItemCategorySwords    int32 = 0
	ItemCategoryAxes      int32 = 1
	ItemCategoryMaces     int32 = 2
	ItemCategoryScepters  int32 = 3
	ItemCategorySpears    int32 = 4
	ItemCategoryBows      int32 = 5
	ItemCategoryCrossbows int32 = 6
	ItemCategoryStaffs    int32 = 7
	ItemCategorySticks    int32 = 8
	ItemCategoryBooks     int32 = 9
	itemWeaponsEnd        int32 = 10

	ItemCategoryShields     int32 = 14
	itemShieldsEnd          int32 = 15
	ItemCategoryProjectiles int32 = 15

	ItemCategoryHelms  int32 = 16
	ItemCategoryArmors int32 = 17
	ItemCategoryPants  int32 = 18
	ItemCategoryGloves int32 = 19
	ItemCategoryBoots  int32 = 20
	ItemCategoryWings  int32 = 21
	itemDefensiveEnd   int32 = 22

	ItemCategoryRings    int32 = 22
	ItemCategoryPendants int32 = 23
	itemEquipmentsEnd    int32 = 24

	ItemCategorySkills      int32 = 32
	ItemCategoryConsumables int32 = 33
	ItemCategoryBoxes       int32 = 34
	ItemCategoryJewels      int32 = 35
	ItemCategoryPets        int32 = 36
	ItemCategoryQuests      int32 = 37
	ItemCategoryEvents      int32 = 38

	MaxItemCategories   int32 = 40
	MaxItemsPerCategory int32 = 256
)

func IsWeaponCategory(c int32) bool {
	return c >= ItemCategorySwords && c < itemWeaponsEnd
}

func IsShieldCategory(c int32) bool {
	return c >= ItemCategoryShields && c < itemShieldsEnd
}

// IsDefensiveCategory covers helms through wings, inclusive.
func IsDefensiveCategory(c int32) bool {
	return c >= ItemCategoryHelms && c < itemDefensiveEnd
}

func IsGlovesCategory(c int32) bool { return c == ItemCategoryGloves }

func IsBootsCategory(c int32) bool { return c == ItemCategoryBoots }

func IsWingCategory(c int32) bool { return c == ItemCategoryWings }

func IsEquipmentCategory(c int32) bool { return c < itemEquipmentsEnd }
