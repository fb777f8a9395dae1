package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/murealm/platform/internal/domain"
)

type skinRepo struct{}

// NewSkinRepository returns a pgx-backed SkinRepository.
func NewSkinRepository() SkinRepository {
	return &skinRepo{}
}

func (r *skinRepo) ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID) ([]domain.SkinInfo, error) {
	rows, err := db.Query(ctx, `
		SELECT id, skin_type, skin_index
		FROM skins WHERE account_id = $1
		ORDER BY skin_type, skin_index`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query skins: %w", err)
	}
	defer rows.Close()

	var skins []domain.SkinInfo
	for rows.Next() {
		var s domain.SkinInfo
		if err := rows.Scan(&s.ID, &s.Type, &s.Index); err != nil {
			return nil, fmt.Errorf("scan skin row: %w", err)
		}
		skins = append(skins, s)
	}
	return skins, rows.Err()
}
