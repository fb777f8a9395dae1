package domain

// RankTier is the discrete quality label clients render as a badge.
type RankTier int32

const (
	RankF RankTier = iota
	RankE
	RankD
	RankC
	RankB
	RankA
	RankS
	RankSS
	RankSSS
	RankEX
)

// rankMaxUnsigned is the native scale of rolled stats and option ranks.
const rankMaxUnsigned = 65535

// RankToFloat normalizes a rolled uint16 stat into 0..1.
func RankToFloat(v int32) float64 {
	const c = 1.0 / rankMaxUnsigned
	return float64(v) * c
}

// RankTierFromFloat buckets a normalized rank into its tier. The thresholds
// are fixed protocol values.
func RankTierFromFloat(rank float64) RankTier {
	switch {
	case rank <= 0.15:
		return RankF
	case rank <= 0.3:
		return RankE
	case rank <= 0.4:
		return RankD
	case rank <= 0.5:
		return RankC
	case rank <= 0.6:
		return RankB
	case rank <= 0.7:
		return RankA
	case rank <= 0.8:
		return RankS
	case rank <= 0.9:
		return RankSS
	case rank < 1.0:
		return RankSSS
	}
	return RankEX
}

// ItemRank computes the normalized 0..1 rank of an item from a
// category-dependent subset of its rolled stats plus every option's rank.
// Items contributing no terms rank 0.
func ItemRank(it *Item) float64 {
	count := 0
	rank := 0.0

	switch {
	case IsWeaponCategory(it.ItemType):
		count += 5
		rank += RankToFloat(it.PhysicalDamageMin)
		rank += RankToFloat(it.PhysicalDamageMax)
		rank += RankToFloat(it.MagicalDamageMin)
		rank += RankToFloat(it.MagicalDamageMax)
		rank += RankToFloat(it.AttackSpeed)

	case IsShieldCategory(it.ItemType) || IsDefensiveCategory(it.ItemType):
		count += 2
		rank += RankToFloat(it.PhysicalDefense)
		rank += RankToFloat(it.MagicalDefense)

		switch {
		case IsShieldCategory(it.ItemType):
			count += 2
			rank += RankToFloat(it.BlockChance)
			rank += RankToFloat(it.BlockDamage)
		case IsGlovesCategory(it.ItemType):
			count += 2
			rank += RankToFloat(it.AttackSpeed)
			rank += RankToFloat(it.MoveSpeed)
		case IsBootsCategory(it.ItemType):
			count++
			rank += RankToFloat(it.MoveSpeed)
		case IsWingCategory(it.ItemType):
			count++
			rank += RankToFloat(it.MoveSpeed)
		}
	}

	for _, opt := range it.Options {
		count++
		rank += RankToFloat(opt.Rank)
	}

	if count > 0 {
		rank /= float64(count)
	}
	return rank
}

// EquipmentSummary is the per-slot gear line in a character list view.
type EquipmentSummary struct {
	Slot      int32    `json:"slot"`
	ItemType  int32    `json:"type"`
	ItemIndex int32    `json:"index"`
	Level     int32    `json:"level"`
	Rank      RankTier `json:"rank"`
}

// ComputeEquipmentSummary folds an equipped item into its list-view line.
// Returns false when the slot index is outside the equipment range.
func ComputeEquipmentSummary(it *Item) (EquipmentSummary, bool) {
	if it.InventoryIndex < 0 || it.InventoryIndex >= MaxEquipmentSlots {
		return EquipmentSummary{}, false
	}
	return EquipmentSummary{
		Slot:      it.InventoryIndex,
		ItemType:  it.ItemType,
		ItemIndex: it.ItemIndex,
		Level:     it.Level,
		Rank:      RankTierFromFloat(ItemRank(it)),
	}, true
}
