package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/murealm/platform/internal/domain"
	"github.com/murealm/platform/internal/repository"
)

// CharacterService owns character lifecycle and the full character view.
type CharacterService struct {
	pool       *pgxpool.Pool
	characters repository.CharacterRepository
	items      repository.ItemRepository
	mounts     repository.MountRepository
	pets       repository.PetRepository
	currencies repository.CurrencyRepository
	skins      repository.SkinRepository
	defaults   repository.DefaultCharacterRepository
	outbox     repository.OutboxRepository
}

// NewCharacterService creates a new CharacterService.
func NewCharacterService(
	pool *pgxpool.Pool,
	characters repository.CharacterRepository,
	items repository.ItemRepository,
	mounts repository.MountRepository,
	pets repository.PetRepository,
	currencies repository.CurrencyRepository,
	skins repository.SkinRepository,
	defaults repository.DefaultCharacterRepository,
	outbox repository.OutboxRepository,
) *CharacterService {
	return &CharacterService{
		pool:       pool,
		characters: characters,
		items:      items,
		mounts:     mounts,
		pets:       pets,
		currencies: currencies,
		skins:      skins,
		defaults:   defaults,
		outbox:     outbox,
	}
}

// CharacterListResult is the account lobby view: list projections plus the
// account's skins.
type CharacterListResult struct {
	Characters []*domain.SmallCharacterInfo `json:"characters"`
	Skins      []domain.SkinInfo            `json:"skins"`
}

// List builds the lobby view. Characters come back in creation order; gear,
// mount, and pet indicators are folded in from three follow-up scans.
func (s *CharacterService) List(ctx context.Context, accountID uuid.UUID) (*CharacterListResult, error) {
	chars, err := s.characters.ListByAccount(ctx, s.pool, accountID)
	if err != nil {
		return nil, domain.ErrInternal("list characters", err)
	}

	result := &CharacterListResult{
		Characters: []*domain.SmallCharacterInfo{},
		Skins:      []domain.SkinInfo{},
	}

	infos := make(map[uuid.UUID]*domain.SmallCharacterInfo, len(chars))
	seen := make(map[uuid.UUID]*[domain.MaxEquipmentSlots]bool, len(chars))
	ids := make([]uuid.UUID, 0, len(chars))
	for i := range chars {
		info := domain.SmallCharacterFromCharacter(&chars[i])
		infos[chars[i].ID] = info
		seen[chars[i].ID] = &[domain.MaxEquipmentSlots]bool{}
		ids = append(ids, chars[i].ID)
		result.Characters = append(result.Characters, info)
	}

	equipped, err := s.items.ListEquippedForOwners(ctx, s.pool, ids)
	if err != nil {
		return nil, domain.ErrInternal("list equipped items", err)
	}
	for i := range equipped {
		it := &equipped[i]
		info := infos[it.OwnerID]
		if info == nil {
			continue
		}
		// First occupant of a slot wins; duplicates are stale rows.
		if it.InventoryIndex >= 0 && it.InventoryIndex < domain.MaxEquipmentSlots {
			occupied := seen[it.OwnerID]
			if occupied[it.InventoryIndex] {
				continue
			}
			occupied[it.InventoryIndex] = true
		}
		info.FoldItem(it)
	}

	mounts, err := s.mounts.ListActiveForOwners(ctx, s.pool, ids)
	if err != nil {
		return nil, domain.ErrInternal("list active mounts", err)
	}
	for i := range mounts {
		if info := infos[mounts[i].OwnerID]; info != nil && info.Mount == nil {
			info.FoldMount(&mounts[i])
		}
	}

	pets, err := s.pets.ListActiveForOwners(ctx, s.pool, ids)
	if err != nil {
		return nil, domain.ErrInternal("list active pets", err)
	}
	for i := range pets {
		if info := infos[pets[i].OwnerID]; info != nil && info.Pet == nil {
			info.FoldPet(&pets[i])
		}
	}

	skins, err := s.skins.ListByAccount(ctx, s.pool, accountID)
	if err != nil {
		return nil, domain.ErrInternal("list skins", err)
	}
	result.Skins = append(result.Skins, skins...)

	return result, nil
}

// CreateCharacterCode is the outcome of a create attempt.
type CreateCharacterCode int32

const (
	CreateCharacterSuccess CreateCharacterCode = iota
	CreateCharacterNameExists
	CreateCharacterInvalidClass
)

// CreateResult carries the outcome and, on success, the new list entry.
type CreateResult struct {
	Code      CreateCharacterCode         `json:"code"`
	Character *domain.SmallCharacterInfo `json:"character,omitempty"`
}

// Create instantiates the class template for a new character. The name race
// is settled by the insert itself, not by a prior existence check.
func (s *CharacterService) Create(ctx context.Context, accountID uuid.UUID, name string, classType int32) (*CreateResult, error) {
	if err := domain.ValidateCharacterName(name); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}

	tpl, err := s.defaults.FindByClassType(ctx, s.pool, classType)
	if err != nil {
		return nil, domain.ErrInternal("find class template", err)
	}
	if tpl == nil {
		return &CreateResult{Code: CreateCharacterInvalidClass}, nil
	}

	now := time.Now()
	char := domain.NewCharacterFromTemplate(accountID, name, tpl, now)

	starter := make([]*domain.Item, 0, len(tpl.Items))
	for i := range tpl.Items {
		starter = append(starter, tpl.Items[i].Instantiate(char.ID, now))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	inserted, err := s.characters.Insert(ctx, tx, char)
	if err != nil {
		return nil, domain.ErrInternal("insert character", err)
	}
	if !inserted {
		return &CreateResult{Code: CreateCharacterNameExists}, nil
	}

	if err := s.items.InsertMany(ctx, tx, starter); err != nil {
		return nil, domain.ErrInternal("insert starter items", err)
	}

	info := domain.SmallCharacterFromCharacter(char)
	for _, it := range starter {
		if it.InventoryType == domain.InventoryCharacterEquipment {
			info.FoldItem(it)
		}
	}

	event := domain.NewCharacterCreatedEvent(info, accountID)
	if err := s.outbox.Insert(ctx, tx, event); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	return &CreateResult{Code: CreateCharacterSuccess, Character: info}, nil
}

// Delete soft-deletes a character and its character-scoped belongings.
// Account storage survives. Deleting an absent or foreign character is a
// silent no-op.
func (s *CharacterService) Delete(ctx context.Context, accountID, characterID uuid.UUID) error {
	now := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	matched, err := s.characters.SoftDelete(ctx, tx, characterID, accountID, now)
	if err != nil {
		return domain.ErrInternal("soft delete character", err)
	}
	if !matched {
		return tx.Commit(ctx)
	}

	if err := s.items.SoftDeleteCharacterScoped(ctx, tx, characterID, now); err != nil {
		return domain.ErrInternal("cascade delete items", err)
	}
	if err := s.mounts.SoftDeleteCharacterScoped(ctx, tx, characterID, now); err != nil {
		return domain.ErrInternal("cascade delete mounts", err)
	}
	if err := s.pets.SoftDeleteCharacterScoped(ctx, tx, characterID, now); err != nil {
		return domain.ErrInternal("cascade delete pets", err)
	}

	event := domain.NewCharacterDeletedEvent(characterID, accountID)
	if err := s.outbox.Insert(ctx, tx, event); err != nil {
		return domain.ErrInternal("insert outbox event", err)
	}

	return tx.Commit(ctx)
}

// CharacterView is the full state a node loads when a player enters the
// world.
type CharacterView struct {
	Character  *domain.Character        `json:"character"`
	Currencies *domain.Currencies       `json:"currencies"`
	Equipment  []domain.Item            `json:"equipment"`
	Inventory  *domain.InventoryBuckets `json:"inventory"`
	Storage    *domain.InventoryBuckets `json:"storage"`
	Mount      *domain.Mount            `json:"mount,omitempty"`
	Pet        *domain.Pet              `json:"pet,omitempty"`
}

// Get loads the full character view in one scan per record kind. The wallet
// row is created on first touch.
func (s *CharacterService) Get(ctx context.Context, accountID, characterID uuid.UUID) (*CharacterView, error) {
	currencies, err := s.currencies.EnsureAndGet(ctx, s.pool, accountID)
	if err != nil {
		return nil, domain.ErrInternal("ensure currencies", err)
	}

	char, err := s.characters.FindByID(ctx, s.pool, characterID)
	if err != nil {
		return nil, domain.ErrInternal("find character", err)
	}
	if char == nil || char.AccountID != accountID {
		return nil, domain.ErrNotFound("character", characterID.String())
	}

	view := &CharacterView{
		Character:  char,
		Currencies: currencies,
		Equipment:  []domain.Item{},
		Inventory:  domain.NewInventoryBuckets(),
		Storage:    domain.NewInventoryBuckets(),
	}

	items, err := s.items.ListForView(ctx, s.pool, characterID, accountID)
	if err != nil {
		return nil, domain.ErrInternal("list items", err)
	}
	var slotTaken [domain.MaxEquipmentSlots]bool
	for i := range items {
		it := items[i]
		cat, kind := domain.ClassifyItemSlot(it.InventoryType)
		switch cat {
		case domain.SlotCharacterEquipped:
			if it.InventoryIndex < 0 || it.InventoryIndex >= domain.MaxEquipmentSlots {
				continue
			}
			if slotTaken[it.InventoryIndex] {
				continue
			}
			slotTaken[it.InventoryIndex] = true
			view.Equipment = append(view.Equipment, it)
		case domain.SlotPersonalInventory:
			if bucket := view.Inventory.BucketForKind(kind); bucket != nil {
				*bucket = append(*bucket, it)
			}
		case domain.SlotAccountStorage:
			if bucket := view.Storage.BucketForKind(kind); bucket != nil {
				*bucket = append(*bucket, it)
			}
		}
	}

	mounts, err := s.mounts.ListForView(ctx, s.pool, characterID, accountID)
	if err != nil {
		return nil, domain.ErrInternal("list mounts", err)
	}
	for i := range mounts {
		m := mounts[i]
		switch domain.ClassifyMountSlot(m.InventoryType) {
		case domain.SlotCharacterEquipped:
			if view.Mount == nil {
				view.Mount = &m
			}
		case domain.SlotPersonalInventory:
			view.Inventory.Mounts = append(view.Inventory.Mounts, m)
		case domain.SlotAccountStorage:
			view.Storage.Mounts = append(view.Storage.Mounts, m)
		}
	}

	pets, err := s.pets.ListForView(ctx, s.pool, characterID, accountID)
	if err != nil {
		return nil, domain.ErrInternal("list pets", err)
	}
	for i := range pets {
		p := pets[i]
		switch domain.ClassifyPetSlot(p.InventoryType) {
		case domain.SlotCharacterEquipped:
			if view.Pet == nil {
				view.Pet = &p
			}
		case domain.SlotPersonalInventory:
			view.Inventory.PassivePets = append(view.Inventory.PassivePets, p)
		case domain.SlotAccountStorage:
			view.Storage.PassivePets = append(view.Storage.PassivePets, p)
		}
	}

	return view, nil
}

// SaveInput is the mutable gameplay block a node persists on save.
type SaveInput struct {
	CharacterID uuid.UUID                `json:"character_id"`
	Class       domain.CharacterClass    `json:"class"`
	Level       int32                    `json:"level"`
	Experience  int64                    `json:"experience,string"`
	Stats       domain.CharacterStats    `json:"stats"`
	Position    domain.CharacterPosition `json:"position"`
	Skills      []int32                  `json:"skills"`
	Skins       []domain.SkinLink        `json:"skins"`
	Gold        int64                    `json:"gold,string"`
	EventCoins  int64                    `json:"event_coins,string"`
}

// Save persists character state and wallet balances in one transaction.
// Writes are last-write-wins; the session lease keeps concurrent saves for
// one character from competing in practice.
func (s *CharacterService) Save(ctx context.Context, accountID uuid.UUID, input SaveInput) error {
	char, err := s.characters.FindByID(ctx, s.pool, input.CharacterID)
	if err != nil {
		return domain.ErrInternal("find character", err)
	}
	if char == nil || char.AccountID != accountID {
		return domain.ErrNotFound("character", input.CharacterID.String())
	}

	char.Class = input.Class
	char.Level = input.Level
	char.Experience = input.Experience
	char.Stats = input.Stats
	char.Position = input.Position
	char.Skills = input.Skills
	char.Skins = input.Skins
	if char.Skills == nil {
		char.Skills = []int32{}
	}
	if char.Skins == nil {
		char.Skins = []domain.SkinLink{}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.currencies.Upsert(ctx, tx, &domain.Currencies{
		AccountID:  accountID,
		Gold:       input.Gold,
		EventCoins: input.EventCoins,
	}); err != nil {
		return domain.ErrInternal("upsert currencies", err)
	}

	if err := s.characters.UpdateState(ctx, tx, char); err != nil {
		return domain.ErrInternal("update character", err)
	}

	return tx.Commit(ctx)
}
