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

type petRepo struct{}

// NewPetRepository returns a pgx-backed PetRepository.
func NewPetRepository() PetRepository {
	return &petRepo{}
}

const petColumns = `
	id, owner_id, inventory_type, inventory_index,
	pet_type, flags, level, experience,
	physical_damage, physical_defense, magical_damage, magical_defense,
	attack_speed, move_speed, options, skin_id, created_at, updated_at`

func (r *petRepo) ListActiveForOwners(ctx context.Context, db DBTX, ownerIDs []uuid.UUID) ([]domain.Pet, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}
	rows, err := db.Query(ctx, `
		SELECT`+petColumns+`
		FROM pets
		WHERE owner_id = ANY($1)
		  AND inventory_type = $2
		  AND deleted_at IS NULL`,
		ownerIDs, domain.PetInventoryCharacter)
	if err != nil {
		return nil, fmt.Errorf("query active pets: %w", err)
	}
	defer rows.Close()
	return collectPets(rows)
}

func (r *petRepo) ListForView(ctx context.Context, db DBTX, characterID, accountID uuid.UUID) ([]domain.Pet, error) {
	rows, err := db.Query(ctx, `
		SELECT`+petColumns+`
		FROM pets
		WHERE deleted_at IS NULL
		  AND ((owner_id = $1 AND inventory_type < $3)
		    OR (owner_id = $2 AND inventory_type >= $4 AND inventory_type < $5))`,
		characterID, accountID,
		domain.PetInventoryCharacterEnd, domain.PetInventoryStorageBegin, domain.PetInventoryStorageEnd)
	if err != nil {
		return nil, fmt.Errorf("query pets for view: %w", err)
	}
	defer rows.Close()
	return collectPets(rows)
}

func (r *petRepo) UpsertMany(ctx context.Context, db DBTX, pets []*domain.Pet) error {
	if len(pets) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range pets {
		opts, err := json.Marshal(optionsOrEmpty(p.Options))
		if err != nil {
			return fmt.Errorf("marshal pet options: %w", err)
		}
		batch.Queue(`
			INSERT INTO pets
			  (id, owner_id, inventory_type, inventory_index,
			   pet_type, flags, level, experience,
			   physical_damage, physical_defense, magical_damage, magical_defense,
			   attack_speed, move_speed, options, skin_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			        $14, $15, $16, $17, $18)
			ON CONFLICT (id) DO UPDATE SET
			  owner_id = EXCLUDED.owner_id,
			  inventory_type = EXCLUDED.inventory_type,
			  inventory_index = EXCLUDED.inventory_index,
			  pet_type = EXCLUDED.pet_type,
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
			p.ID, p.OwnerID, p.InventoryType, p.InventoryIndex,
			p.PetType, p.Flags, p.Level, p.Experience,
			p.PhysicalDamage, p.PhysicalDefense, p.MagicalDamage, p.MagicalDefense,
			p.AttackSpeed, p.MoveSpeed, opts, p.SkinID, p.CreatedAt, p.UpdatedAt)
	}
	return sendBatch(ctx, db, batch)
}

func (r *petRepo) SoftDeleteByIDs(ctx context.Context, db DBTX, ids []uuid.UUID, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, `
		UPDATE pets SET deleted_at = $2, updated_at = $2
		WHERE id = ANY($1) AND deleted_at IS NULL`, ids, now)
	if err != nil {
		return fmt.Errorf("soft delete pets: %w", err)
	}
	return nil
}

func (r *petRepo) SoftDeleteCharacterScoped(ctx context.Context, db DBTX, characterID uuid.UUID, now time.Time) error {
	_, err := db.Exec(ctx, `
		UPDATE pets SET deleted_at = $2, updated_at = $2
		WHERE owner_id = $1 AND inventory_type < $3 AND deleted_at IS NULL`,
		characterID, now, domain.PetInventoryCharacterEnd)
	if err != nil {
		return fmt.Errorf("cascade delete pets: %w", err)
	}
	return nil
}

func collectPets(rows pgx.Rows) ([]domain.Pet, error) {
	var pets []domain.Pet
	for rows.Next() {
		var p domain.Pet
		var opts []byte
		err := rows.Scan(
			&p.ID, &p.OwnerID, &p.InventoryType, &p.InventoryIndex,
			&p.PetType, &p.Flags, &p.Level, &p.Experience,
			&p.PhysicalDamage, &p.PhysicalDefense, &p.MagicalDamage, &p.MagicalDefense,
			&p.AttackSpeed, &p.MoveSpeed, &opts, &p.SkinID, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pet row: %w", err)
		}
		if err := json.Unmarshal(opts, &p.Options); err != nil {
			return nil, fmt.Errorf("unmarshal pet options: %w", err)
		}
		pets = append(pets, p)
	}
	return pets, rows.Err()
}
