package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/murealm/platform/internal/domain"
)

type itemRepo struct{}

// NewItemRepository returns a pgx-backed ItemRepository.
func NewItemRepository() ItemRepository {
	return &itemRepo{}
}

const itemColumns = `
	id, owner_id, inventory_type, inventory_index,
	item_type, item_index, flags, level, experience, quantity,
	physical_damage_min, physical_damage_max, physical_defense,
	magical_damage_min, magical_damage_max, magical_defense,
	block_chance, block_damage, attack_speed, move_speed,
	options, created_at, updated_at`

func (r *itemRepo) InsertMany(ctx context.Context, db DBTX, items []*domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	for _, it := range items {
		opts, err := json.Marshal(optionsOrEmpty(it.Options))
		if err != nil {
			return fmt.Errorf("marshal item options: %w", err)
		}
		_, err = db.Exec(ctx, `
			INSERT INTO items
			  (id, owner_id, inventory_type, inventory_index,
			   item_type, item_index, flags, level, experience, quantity,
			   physical_damage_min, physical_damage_max, physical_defense,
			   magical_damage_min, magical_damage_max, magical_defense,
			   block_chance, block_damage, attack_speed, move_speed,
			   options, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
			itemArgs(it, opts)...)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
	}
	return nil
}

func (r *itemRepo) ListEquippedForOwners(ctx context.Context, db DBTX, ownerIDs []uuid.UUID) ([]domain.Item, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	rows, err := db.Query(ctx, `
		SELECT`+itemColumns+`
		FROM items
		WHERE owner_id = ANY($1)
		  AND inventory_type = $2
		  AND deleted_at IS NULL`,
		ownerIDs, domain.InventoryCharacterEquipment)
	if err != nil {
		return nil, fmt.Errorf("query equipped items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// ListForView fetches two scopes in one scan: rows keyed by the character
// (equipment and personal inventory) and the account's storage rows.
func (r *itemRepo) ListForView(ctx context.Context, db DBTX, characterID, accountID uuid.UUID) ([]domain.Item, error) {
	rows, err := db.Query(ctx, `
		SELECT`+itemColumns+`
		FROM items
		WHERE deleted_at IS NULL
		  AND ((owner_id = $1 AND inventory_type < $3)
		    OR (owner_id = $2 AND inventory_type >= $4 AND inventory_type < $5))`,
		characterID, accountID,
		domain.InventoryCharacterEnd, domain.InventoryStorageBegin, domain.InventoryStorageEnd)
	if err != nil {
		return nil, fmt.Errorf("query items for view: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

// UpsertMany writes one batched statement per item: existing rows get the
// mutable fields overwritten, unknown ids become fresh rows.
func (r *itemRepo) UpsertMany(ctx context.Context, db DBTX, items []*domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, it := range items {
		opts, err := json.Marshal(optionsOrEmpty(it.Options))
		if err != nil {
			return fmt.Errorf("marshal item options: %w", err)
		}
		batch.Queue(`
			INSERT INTO items
			  (id, owner_id, inventory_type, inventory_index,
			   item_type, item_index, flags, level, experience, quantity,
			   physical_damage_min, physical_damage_max, physical_defense,
			   magical_damage_min, magical_damage_max, magical_defense,
			   block_chance, block_damage, attack_speed, move_speed,
			   options, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
			ON CONFLICT (id) DO UPDATE SET
			  owner_id = EXCLUDED.owner_id,
			  inventory_type = EXCLUDED.inventory_type,
			  inventory_index = EXCLUDED.inventory_index,
			  item_type = EXCLUDED.item_type,
			  item_index = EXCLUDED.item_index,
			  flags = EXCLUDED.flags,
			  level = EXCLUDED.level,
			  experience = EXCLUDED.experience,
			  quantity = EXCLUDED.quantity,
			  physical_damage_min = EXCLUDED.physical_damage_min,
			  physical_damage_max = EXCLUDED.physical_damage_max,
			  physical_defense = EXCLUDED.physical_defense,
			  magical_damage_min = EXCLUDED.magical_damage_min,
			  magical_damage_max = EXCLUDED.magical_damage_max,
			  magical_defense = EXCLUDED.magical_defense,
			  block_chance = EXCLUDED.block_chance,
			  block_damage = EXCLUDED.block_damage,
			  attack_speed = EXCLUDED.attack_speed,
			  move_speed = EXCLUDED.move_speed,
			  options = EXCLUDED.options,
			  deleted_at = NULL,
			  updated_at = now()`,
			itemArgs(it, opts)...)
	}
	return sendBatch(ctx, db, batch)
}

func (r *itemRepo) SoftDeleteByIDs(ctx context.Context, db DBTX, ids []uuid.UUID, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, `
		UPDATE items SET deleted_at = $2, updated_at = $2
		WHERE id = ANY($1) AND deleted_at IS NULL`, ids, now)
	if err != nil {
		return fmt.Errorf("soft delete items: %w", err)
	}
	return nil
}

// SoftDeleteCharacterScoped covers equipment and personal inventory; storage
// rows belong to the account and survive the character.
func (r *itemRepo) SoftDeleteCharacterScoped(ctx context.Context, db DBTX, characterID uuid.UUID, now time.Time) error {
	_, err := db.Exec(ctx, `
		UPDATE items SET deleted_at = $2, updated_at = $2
		WHERE owner_id = $1 AND inventory_type < $3 AND deleted_at IS NULL`,
		characterID, now, domain.InventoryCharacterEnd)
	if err != nil {
		return fmt.Errorf("cascade delete items: %w", err)
	}
	return nil
}

func itemArgs(it *domain.Item, opts []byte) []interface{} {
	return []interface{}{
		it.ID, it.OwnerID, it.InventoryType, it.InventoryIndex,
		it.ItemType, it.ItemIndex, it.Flags, it.Level, it.Experience, it.Quantity,
		it.PhysicalDamageMin, it.PhysicalDamageMax, it.PhysicalDefense,
		it.MagicalDamageMin, it.MagicalDamageMax, it.MagicalDefense,
		it.BlockChance, it.BlockDamage, it.AttackSpeed, it.MoveSpeed,
		opts, it.CreatedAt, it.UpdatedAt,
	}
}

func collectItems(rows pgx.Rows) ([]domain.Item, error) {
	var items []domain.Item
	for rows.Next() {
		var it domain.Item
		var opts []byte
		err := rows.Scan(
			&it.ID, &it.OwnerID, &it.InventoryType, &it.InventoryIndex,
			&it.ItemType, &it.ItemIndex, &it.Flags, &it.Level, &it.Experience, &it.Quantity,
			&it.PhysicalDamageMin, &it.PhysicalDamageMax, &it.PhysicalDefense,
			&it.MagicalDamageMin, &it.MagicalDamageMax, &it.MagicalDefense,
			&it.BlockChance, &it.BlockDamage, &it.AttackSpeed, &it.MoveSpeed,
			&opts, &it.CreatedAt, &it.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		if err := json.Unmarshal(opts, &it.Options); err != nil {
			return nil, fmt.Errorf("unmarshal item options: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func optionsOrEmpty(opts []domain.ItemOption) []domain.ItemOption {
	if opts == nil {
		return []domain.ItemOption{}
	}
	return opts
}

// sendBatch flushes a pgx batch and surfaces the first failed statement.
func sendBatch(ctx context.Context, db DBTX, batch *pgx.Batch) error {
	sender, ok := db.(interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	})
	if !ok {
		return fmt.Errorf("db does not support batches")
	}
	results := sender.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	return results.Close()
}
