package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/murealm/platform/internal/domain"
	"github.com/murealm/platform/internal/infra"
)

type currencyRepo struct{}

// NewCurrencyRepository returns a pgx-backed CurrencyRepository.
func NewCurrencyRepository() CurrencyRepository {
	return &currencyRepo{}
}

// EnsureAndGet materializes the wallet lazily: the insert is a no-op for
// accounts that already have one, so first touch and every later touch read
// the same way.
func (r *currencyRepo) EnsureAndGet(ctx context.Context, db DBTX, accountID uuid.UUID) (*domain.Currencies, error) {
	_, err := db.Exec(ctx, `
		INSERT INTO currencies (account_id) VALUES ($1)
		ON CONFLICT (account_id) DO NOTHING`, accountID)
	if err != nil {
		return nil, fmt.Errorf("ensure currencies: %w", err)
	}

	row := db.QueryRow(ctx, `
		SELECT account_id, gold, event_coins, created_at, updated_at
		FROM currencies WHERE account_id = $1`, accountID)
	return scanCurrencies(row)
}

func (r *currencyRepo) Upsert(ctx context.Context, db DBTX, c *domain.Currencies) error {
	_, err := db.Exec(ctx, `
		INSERT INTO currencies (account_id, gold, event_coins)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE SET
		  gold = EXCLUDED.gold,
		  event_coins = EXCLUDED.event_coins,
		  updated_at = now()`,
		c.AccountID,
		infra.Int64ToNumeric(c.Gold),
		infra.Int64ToNumeric(c.EventCoins))
	if err != nil {
		return fmt.Errorf("upsert currencies: %w", err)
	}
	return nil
}

func scanCurrencies(row pgx.Row) (*domain.Currencies, error) {
	var c domain.Currencies
	var goldNum, coinsNum pgtype.Numeric
	err := row.Scan(&c.AccountID, &goldNum, &coinsNum, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan currencies: %w", err)
	}

	var convErr error
	c.Gold, convErr = infra.NumericToInt64(goldNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert gold: %w", convErr)
	}
	c.EventCoins, convErr = infra.NumericToInt64(coinsNum)
	if convErr != nil {
		return nil, fmt.Errorf("convert event_coins: %w", convErr)
	}
	return &c, nil
}
