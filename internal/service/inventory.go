package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/murealm/platform/internal/domain"
	"github.com/murealm/platform/internal/repository"
)

// InventoryService persists batched item, mount, and pet state from game
// nodes.
type InventoryService struct {
	pool   *pgxpool.Pool
	items  repository.ItemRepository
	mounts repository.MountRepository
	pets   repository.PetRepository
}

// NewInventoryService creates a new InventoryService.
func NewInventoryService(
	pool *pgxpool.Pool,
	items repository.ItemRepository,
	mounts repository.MountRepository,
	pets repository.PetRepository,
) *InventoryService {
	return &InventoryService{pool: pool, items: items, mounts: mounts, pets: pets}
}

// SaveBatch carries the records a node flushes in one save cycle. Empty
// slices are skipped, not errors.
type SaveBatch struct {
	Items  []*domain.Item  `json:"items"`
	Mounts []*domain.Mount `json:"mounts"`
	Pets   []*domain.Pet   `json:"pets"`
}

// Empty reports whether the batch carries nothing to write.
func (b *SaveBatch) Empty() bool {
	return len(b.Items) == 0 && len(b.Mounts) == 0 && len(b.Pets) == 0
}

// Save upserts all records of a batch in one transaction: either the whole
// flush lands or none of it does.
func (s *InventoryService) Save(ctx context.Context, batch SaveBatch) error {
	if batch.Empty() {
		return nil
	}

	now := time.Now()
	for _, it := range batch.Items {
		if err := domain.ValidateInventoryRef(it.InventoryType, it.InventoryIndex); err != nil {
			return domain.ErrValidation(err.Error())
		}
		it.UpdatedAt = now
		if it.CreatedAt.IsZero() {
			it.CreatedAt = now
		}
	}
	for _, m := range batch.Mounts {
		if err := domain.ValidateInventoryRef(m.InventoryType, m.InventoryIndex); err != nil {
			return domain.ErrValidation(err.Error())
		}
		m.UpdatedAt = now
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
	}
	for _, p := range batch.Pets {
		if err := domain.ValidateInventoryRef(p.InventoryType, p.InventoryIndex); err != nil {
			return domain.ErrValidation(err.Error())
		}
		p.UpdatedAt = now
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.items.UpsertMany(ctx, tx, batch.Items); err != nil {
		return domain.ErrInternal("upsert items", err)
	}
	if err := s.mounts.UpsertMany(ctx, tx, batch.Mounts); err != nil {
		return domain.ErrInternal("upsert mounts", err)
	}
	if err := s.pets.UpsertMany(ctx, tx, batch.Pets); err != nil {
		return domain.ErrInternal("upsert pets", err)
	}

	return tx.Commit(ctx)
}

// DeleteBatch names the records a node discards in one save cycle.
type DeleteBatch struct {
	ItemIDs  []uuid.UUID `json:"item_ids"`
	MountIDs []uuid.UUID `json:"mount_ids"`
	PetIDs   []uuid.UUID `json:"pet_ids"`
}

// Empty reports whether the batch names nothing to delete.
func (b *DeleteBatch) Empty() bool {
	return len(b.ItemIDs) == 0 && len(b.MountIDs) == 0 && len(b.PetIDs) == 0
}

// Delete soft-deletes all named records in one transaction. Already-deleted
// ids are skipped, so retries are safe.
func (s *InventoryService) Delete(ctx context.Context, batch DeleteBatch) error {
	if batch.Empty() {
		return nil
	}
	now := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.items.SoftDeleteByIDs(ctx, tx, batch.ItemIDs, now); err != nil {
		return domain.ErrInternal("delete items", err)
	}
	if err := s.mounts.SoftDeleteByIDs(ctx, tx, batch.MountIDs, now); err != nil {
		return domain.ErrInternal("delete mounts", err)
	}
	if err := s.pets.SoftDeleteByIDs(ctx, tx, batch.PetIDs, now); err != nil {
		return domain.ErrInternal("delete pets", err)
	}

	return tx.Commit(ctx)
}
