package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/murealm/platform/internal/domain"
)

type defaultCharacterRepo struct{}

// NewDefaultCharacterRepository returns a pgx-backed DefaultCharacterRepository.
func NewDefaultCharacterRepository() DefaultCharacterRepository {
	return &defaultCharacterRepo{}
}

func (r *defaultCharacterRepo) FindByClassType(ctx context.Context, db DBTX, classType int32) (*domain.DefaultCharacter, error) {
	row := db.QueryRow(ctx, `
		SELECT class_type, class_subtype, level, experience,
		       stat_points, strength, dexterity, vitality, energy, life, mana, stamina,
		       map_index, spawn_x, spawn_y, items, skills
		FROM default_characters WHERE class_type = $1`, classType)

	var tpl domain.DefaultCharacter
	var items []byte
	err := row.Scan(
		&tpl.Class.Type, &tpl.Class.Subtype, &tpl.Level, &tpl.Experience,
		&tpl.Stats.Points, &tpl.Stats.Strength, &tpl.Stats.Dexterity, &tpl.Stats.Vitality,
		&tpl.Stats.Energy, &tpl.Stats.Life, &tpl.Stats.Mana, &tpl.Stats.Stamina,
		&tpl.Map, &tpl.SpawnX, &tpl.SpawnY, &items, &tpl.Skills,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan default character: %w", err)
	}
	if err := json.Unmarshal(items, &tpl.Items); err != nil {
		return nil, fmt.Errorf("unmarshal template items: %w", err)
	}
	return &tpl, nil
}

func (r *defaultCharacterRepo) Upsert(ctx context.Context, db DBTX, tpl *domain.DefaultCharacter) error {
	items, err := json.Marshal(tpl.Items)
	if err != nil {
		return fmt.Errorf("marshal template items: %w", err)
	}

	_, err = db.Exec(ctx, `
		INSERT INTO default_characters
		  (class_type, class_subtype, level, experience,
		   stat_points, strength, dexterity, vitality, energy, life, mana, stamina,
		   map_index, spawn_x, spawn_y, items, skills)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (class_type) DO UPDATE SET
		  class_subtype = EXCLUDED.class_subtype,
		  level = EXCLUDED.level,
		  experience = EXCLUDED.experience,
		  stat_points = EXCLUDED.stat_points,
		  strength = EXCLUDED.strength,
		  dexterity = EXCLUDED.dexterity,
		  vitality = EXCLUDED.vitality,
		  energy = EXCLUDED.energy,
		  life = EXCLUDED.life,
		  mana = EXCLUDED.mana,
		  stamina = EXCLUDED.stamina,
		  map_index = EXCLUDED.map_index,
		  spawn_x = EXCLUDED.spawn_x,
		  spawn_y = EXCLUDED.spawn_y,
		  items = EXCLUDED.items,
		  skills = EXCLUDED.skills`,
		tpl.Class.Type, tpl.Class.Subtype, tpl.Level, tpl.Experience,
		tpl.Stats.Points, tpl.Stats.Strength, tpl.Stats.Dexterity, tpl.Stats.Vitality,
		tpl.Stats.Energy, tpl.Stats.Life, tpl.Stats.Mana, tpl.Stats.Stamina,
		tpl.Map, tpl.SpawnX, tpl.SpawnY, items, tpl.Skills)
	if err != nil {
		return fmt.Errorf("upsert default character: %w", err)
	}
	return nil
}
