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

type characterRepo struct{}

// NewCharacterRepository returns a pgx-backed CharacterRepository.
func NewCharacterRepository() CharacterRepository {
	return &characterRepo{}
}

const characterColumns = `
	id, account_id, name, name_normalized,
	class_type, class_subtype, level, experience,
	stat_points, strength, dexterity, vitality, energy, life, mana, stamina,
	map_index, position_x, position_y, direction,
	skills, skins, authority, created_at, updated_at`

// Insert relies on the partial unique index over live normalized names: a
// conflicting insert affects zero rows and the caller reports a taken name.
func (r *characterRepo) Insert(ctx context.Context, db DBTX, c *domain.Character) (bool, error) {
	skins, err := json.Marshal(c.Skins)
	if err != nil {
		return false, fmt.Errorf("marshal skins: %w", err)
	}

	tag, err := db.Exec(ctx, `
		INSERT INTO characters
		  (id, account_id, name, name_normalized,
		   class_type, class_subtype, level, experience,
		   stat_points, strength, dexterity, vitality, energy, life, mana, stamina,
		   map_index, position_x, position_y, direction,
		   skills, skins, authority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		ON CONFLICT (name_normalized) WHERE deleted_at IS NULL DO NOTHING`,
		c.ID, c.AccountID, c.Name, c.NameNormalized,
		c.Class.Type, c.Class.Subtype, c.Level, c.Experience,
		c.Stats.Points, c.Stats.Strength, c.Stats.Dexterity, c.Stats.Vitality,
		c.Stats.Energy, c.Stats.Life, c.Stats.Mana, c.Stats.Stamina,
		c.Position.Map, c.Position.X, c.Position.Y, c.Position.Direction,
		c.Skills, skins, c.Authority, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("insert character: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *characterRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Character, error) {
	row := db.QueryRow(ctx, `
		SELECT`+characterColumns+`
		FROM characters WHERE id = $1 AND deleted_at IS NULL`, id)
	return scanCharacter(row)
}

func (r *characterRepo) ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID) ([]domain.Character, error) {
	rows, err := db.Query(ctx, `
		SELECT`+characterColumns+`
		FROM characters
		WHERE account_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query characters: %w", err)
	}
	defer rows.Close()

	var chars []domain.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		chars = append(chars, *c)
	}
	return chars, rows.Err()
}

func (r *characterRepo) SoftDelete(ctx context.Context, db DBTX, id, accountID uuid.UUID, now time.Time) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE characters
		SET deleted_at = $3, updated_at = $3
		WHERE id = $1 AND account_id = $2 AND deleted_at IS NULL`,
		id, accountID, now)
	if err != nil {
		return false, fmt.Errorf("soft delete character: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateState writes the gameplay block only. Last write wins; nodes own
// their sessions exclusively so concurrent saves for one character do not
// happen in practice.
func (r *characterRepo) UpdateState(ctx context.Context, db DBTX, c *domain.Character) error {
	skins, err := json.Marshal(c.Skins)
	if err != nil {
		return fmt.Errorf("marshal skins: %w", err)
	}

	_, err = db.Exec(ctx, `
		UPDATE characters
		SET class_type = $2, class_subtype = $3, level = $4, experience = $5,
		    stat_points = $6, strength = $7, dexterity = $8, vitality = $9,
		    energy = $10, life = $11, mana = $12, stamina = $13,
		    map_index = $14, position_x = $15, position_y = $16, direction = $17,
		    skills = $18, skins = $19, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`,
		c.ID, c.Class.Type, c.Class.Subtype, c.Level, c.Experience,
		c.Stats.Points, c.Stats.Strength, c.Stats.Dexterity, c.Stats.Vitality,
		c.Stats.Energy, c.Stats.Life, c.Stats.Mana, c.Stats.Stamina,
		c.Position.Map, c.Position.X, c.Position.Y, c.Position.Direction,
		c.Skills, skins)
	if err != nil {
		return fmt.Errorf("update character state: %w", err)
	}
	return nil
}

func scanCharacter(row pgx.Row) (*domain.Character, error) {
	var c domain.Character
	var skins []byte
	err := row.Scan(
		&c.ID, &c.AccountID, &c.Name, &c.NameNormalized,
		&c.Class.Type, &c.Class.Subtype, &c.Level, &c.Experience,
		&c.Stats.Points, &c.Stats.Strength, &c.Stats.Dexterity, &c.Stats.Vitality,
		&c.Stats.Energy, &c.Stats.Life, &c.Stats.Mana, &c.Stats.Stamina,
		&c.Position.Map, &c.Position.X, &c.Position.Y, &c.Position.Direction,
		&c.Skills, &skins, &c.Authority, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan character: %w", err)
	}
	if err := json.Unmarshal(skins, &c.Skins); err != nil {
		return nil, fmt.Errorf("unmarshal skins: %w", err)
	}
	return &c, nil
}
