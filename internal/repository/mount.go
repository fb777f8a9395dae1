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

type mountRepo struct{}

// NewMountRepository returns a pgx-backed MountRepository.
func NewMountRepository() MountRepository {
	return &mountRepo{}
}

const mountColumns = `
	id, owner_id, inventory_type, inventory_index,
	mount_type, flags, level, experience,
	physical_damage, physical_defense, magical_damage, magical_defense,
	attack_speed, move_speed, options, skin_id, created_at, updated_at`

func (r *mountRepo) ListActiveForOwners(ctx context.Context, db DBTX, ownerIDs []uuid.UUID) ([]domain.Mount, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	rows, err := db.Query(ctx, `
		SELECT`+mountColumns+`
		FROM mounts
		WHERE owner_id = ANY($1)
		  AND inventory_type = $2
		  AND deleted_at IS NULL`,
		ownerIDs, domain.MountInventoryCharacter)
	if err != nil {
		return nil, fmt.Errorf("query active mounts: %w", err)
	}
	defer rows.Close()
	return collectMounts(rows)
}

func (r *mountRepo) ListForView(ctx context.Context, db DBTX, characterID, accountID uuid.UUID) ([]domain.Mount, error) {
	rows, err := db.Query(ctx, `
		SELECT`+mountColumns+`
		FROM mounts
		WHERE deleted_at IS NULL
		  AND ((owner_id = $1 AND inventory_type < $3)
		    OR (owner_id = $2 AND inventory_type >= $4 AND inventory_type < $5))`,
		characterID, accountID,
		domain.MountInventoryCharacterEnd, domain.MountInventoryStorageBegin, domain.MountInventoryStorageEnd)
	if err != nil {
		return nil, fmt.Errorf("query mounts for view: %w", err)
	}
	defer rows.Close()
	return collectMounts(rows)
}

func (r *mountRepo) UpsertMany(ctx context.Context, db DBTX, mounts []*domain.Mount) error {
	if len(mounts) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range mounts {
		opts, err := json.Marshal(optionsOrEmpty(m.Options))
		if err != nil {
			return fmt.Errorf("marshal mount options: %w", err)
		}
		batch.Queue(`
			INSERT INTO mounts
			  (id, owner_id, inventory_type, inventory_index,
			   mount_type, flags, level, experience,
			   physical_damage, physical_defense, magical_damage, magical_defense,
			   attack_speed, move_speed, options, skin_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			        $14, $15, $16, $17, $18)
			ON CONFLICT (id) DO UPDATE SET
			  owner_id = EXCLUDED.owner_id,
			  inventory_type = EXCLUDED.inventory_type,
			  inventory_index = EXCLUDED.inventory_index,
			  mount_type = EXCLUDED.mount_type,
			  flags = EXCLUDED.flags,
			  level = EXCLUDED.level,
			  experience = EXCLUDED.experience,
			  physical_damage = EXCLUDED.physical_damage,
			  physical_defense = EXCLUDED.physical_defense,
			  magical_damage = EXCLUDED.magical_damage,
			  magical_defense = EXCLUDED.magical_defense,
			  attack_speed = EXCLUDED.attack_speed,
			  move_speed = EXCLUDED.move_speed,
			  options = EXCLUDED.options,
			  skin_id = EXCLUDED.skin_id,
			  deleted_at = NULL,
			  updated_at = now()`,
			m.ID, m.OwnerID, m.InventoryType, m.InventoryIndex,
			m.MountType, m.Flags, m.Level, m.Experience,
			m.PhysicalDamage, m.PhysicalDefense, m.MagicalDamage, m.MagicalDefense,
			m.AttackSpeed, m.MoveSpeed, opts, m.SkinID, m.CreatedAt, m.UpdatedAt)
	}
	return sendBatch(ctx, db, batch)
}

func (r *mountRepo) SoftDeleteByIDs(ctx context.Context, db DBTX, ids []uuid.UUID, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, `
		UPDATE mounts SET deleted_at = $2, updated_at = $2
		WHERE id = ANY($1) AND deleted_at IS NULL`, ids, now)
	if err != nil {
		return fmt.Errorf("soft delete mounts: %w", err)
	}
	return nil
}

func (r *mountRepo) SoftDeleteCharacterScoped(ctx context.Context, db DBTX, characterID uuid.UUID, now time.Time) error {
	_, err := db.Exec(ctx, `
		UPDATE mounts SET deleted_at = $2, updated_at = $2
		WHERE owner_id = $1 AND inventory_type < $3 AND deleted_at IS NULL`,
		characterID, now, domain.MountInventoryCharacterEnd)
	if err != nil {
		return fmt.Errorf("cascade delete mounts: %w", err)
	}
	return nil
}

func collectMounts(rows pgx.Rows) ([]domain.Mount, error) {
	var mounts []domain.Mount
	for rows.Next() {
		var m domain.Mount
		var opts []byte
		err := rows.Scan(
			&m.ID, &m.OwnerID, &m.InventoryType, &m.InventoryIndex,
			&m.MountType, &m.Flags, &m.Level, &m.Experience,
			&m.PhysicalDamage, &m.PhysicalDefense, &m.MagicalDamage, &m.MagicalDefense,
			&m.AttackSpeed, &m.MoveSpeed, &opts, &m.SkinID, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan mount row: %w", err)
		}
		if err := json.Unmarshal(opts, &m.Options); err != nil {
			return nil, fmt.Errorf("unmarshal mount options: %w", err)
		}
		mounts = append(mounts, m)
	}
	return mounts, rows.Err()
}
