package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/murealm/platform/internal/domain"
)

type accountRepo struct{}

// NewAccountRepository returns a pgx-backed AccountRepository.
func NewAccountRepository() AccountRepository {
	return &accountRepo{}
}

func (r *accountRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Account, error) {
	row := db.QueryRow(ctx, `
		SELECT id, username, game_session_id, game_server_id, game_session_expires_at
		FROM accounts WHERE id = $1`, id)

	var a domain.Account
	var sessionID, serverID *uuid.UUID
	var expiresAt *time.Time
	err := row.Scan(&a.ID, &a.Username, &sessionID, &serverID, &expiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}
	if sessionID != nil && serverID != nil && expiresAt != nil {
		a.Lease = &domain.GameSessionLease{
			SessionID: *sessionID,
			ServerID:  *serverID,
			ExpiresAt: *expiresAt,
		}
	}
	return &a, nil
}

func (r *accountRepo) Create(ctx context.Context, db DBTX, account *domain.Account) error {
	_, err := db.Exec(ctx, `
		INSERT INTO accounts (id, username, username_normalized)
		VALUES ($1, $2, $3)`,
		account.ID, account.Username, domain.NormalizeName(account.Username))
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// AcquireLease is the single exclusion device for game sessions: one
// conditional UPDATE that only matches when no live lease is held. Two nodes
// racing for the same account serialize on the row and exactly one wins.
func (r *accountRepo) AcquireLease(ctx context.Context, db DBTX, accountID uuid.UUID, lease domain.GameSessionLease, now time.Time) (*string, error) {
	row := db.QueryRow(ctx, `
		UPDATE accounts
		SET game_session_id = $2,
		    game_server_id = $3,
		    game_session_expires_at = $4,
		    updated_at = now()
		WHERE id = $1
		  AND (game_session_expires_at IS NULL OR game_session_expires_at <= $5)
		RETURNING username`,
		accountID, lease.SessionID, lease.ServerID, lease.ExpiresAt, now)

	var username string
	if err := row.Scan(&username); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("acquire lease: %w", err)
	}
	return &username, nil
}

// RenewLease extends a lease that is still inside its window. A lease is
// renewable up to and including its expiry instant.
func (r *accountRepo) RenewLease(ctx context.Context, db DBTX, accountID, sessionID uuid.UUID, expiresAt time.Time, now time.Time) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE accounts
		SET game_session_expires_at = $3, updated_at = now()
		WHERE id = $1
		  AND game_session_id = $2
		  AND game_session_expires_at >= $4`,
		accountID, sessionID, expiresAt, now)
	if err != nil {
		return false, fmt.Errorf("renew lease: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ReleaseLease clears the lease whenever the session id matches, expired or
// not, so release stays idempotent after crashes.
func (r *accountRepo) ReleaseLease(ctx context.Context, db DBTX, accountID, sessionID uuid.UUID) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE accounts
		SET game_session_id = NULL,
		    game_server_id = NULL,
		    game_session_expires_at = NULL,
		    updated_at = now()
		WHERE id = $1 AND game_session_id = $2`,
		accountID, sessionID)
	if err != nil {
		return false, fmt.Errorf("release lease: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

type ticketRepo struct{}

// NewTicketRepository returns a pgx-backed TicketRepository.
func NewTicketRepository() TicketRepository {
	return &ticketRepo{}
}

func (r *ticketRepo) Insert(ctx context.Context, db DBTX, ticket *domain.SessionTicket) error {
	_, err := db.Exec(ctx, `
		INSERT INTO game_session_tickets (session_id, account_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`,
		ticket.SessionID, ticket.AccountID, ticket.CreatedAt, ticket.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// Consume deletes and returns the ticket in one statement, so a ticket is
// spent even when it turns out to be expired.
func (r *ticketRepo) Consume(ctx context.Context, db DBTX, accountID, sessionID uuid.UUID) (*domain.SessionTicket, error) {
	row := db.QueryRow(ctx, `
		DELETE FROM game_session_tickets
		WHERE session_id = $1 AND account_id = $2
		RETURNING session_id, account_id, created_at, expires_at`,
		sessionID, accountID)

	var t domain.SessionTicket
	err := row.Scan(&t.SessionID, &t.AccountID, &t.CreatedAt, &t.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("consume ticket: %w", err)
	}
	return &t, nil
}
