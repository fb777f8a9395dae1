package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/murealm/platform/internal/domain"
	"github.com/murealm/platform/internal/repository"
)

// SessionService owns the game session lease lifecycle: ticket validation,
// periodic renewal, and release.
type SessionService struct {
	pool     *pgxpool.Pool
	accounts repository.AccountRepository
	tickets  repository.TicketRepository
	outbox   repository.OutboxRepository
	duration time.Duration
}

// NewSessionService creates a new SessionService. duration is the lease
// length granted on validate and renew.
func NewSessionService(
	pool *pgxpool.Pool,
	accounts repository.AccountRepository,
	tickets repository.TicketRepository,
	outbox repository.OutboxRepository,
	duration time.Duration,
) *SessionService {
	return &SessionService{
		pool:     pool,
		accounts: accounts,
		tickets:  tickets,
		outbox:   outbox,
		duration: duration,
	}
}

// ValidateResult is the outcome of a session validation attempt.
type ValidateResult struct {
	Code      domain.SessionValidateCode `json:"code"`
	Username  string                     `json:"username,omitempty"`
	ExpiresAt *time.Time                 `json:"expires_at,omitempty"`
}

// Validate consumes a login ticket and attempts to install the lease for the
// calling node. The ticket is spent on every outcome: a failed validation
// must not leave a replayable ticket behind.
func (s *SessionService) Validate(ctx context.Context, accountID, sessionID, serverID uuid.UUID) (*ValidateResult, error) {
	now := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	ticket, err := s.tickets.Consume(ctx, tx, accountID, sessionID)
	if err != nil {
		return nil, domain.ErrInternal("consume ticket", err)
	}
	if ticket == nil || ticket.Expired(now) {
		if err := tx.Commit(ctx); err != nil {
			return nil, domain.ErrInternal("commit tx", err)
		}
		return &ValidateResult{Code: domain.SessionValidateInvalidSession}, nil
	}

	lease := domain.GameSessionLease{
		SessionID: sessionID,
		ServerID:  serverID,
		ExpiresAt: now.Add(s.duration),
	}
	username, err := s.accounts.AcquireLease(ctx, tx, accountID, lease, now)
	if err != nil {
		return nil, domain.ErrInternal("acquire lease", err)
	}
	if username == nil {
		// Another node holds a live lease. The consumed ticket still commits.
		if err := tx.Commit(ctx); err != nil {
			return nil, domain.ErrInternal("commit tx", err)
		}
		return &ValidateResult{Code: domain.SessionValidateAccountInUse}, nil
	}

	event := domain.NewSessionGrantedEvent(accountID, sessionID, serverID, lease.ExpiresAt)
	if err := s.outbox.Insert(ctx, tx, event); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	expiresAt := lease.ExpiresAt
	return &ValidateResult{
		Code:      domain.SessionValidateSuccess,
		Username:  *username,
		ExpiresAt: &expiresAt,
	}, nil
}

// RenewResult is the outcome of a lease renewal attempt.
type RenewResult struct {
	Code      domain.SessionRenewCode `json:"code"`
	ExpiresAt *time.Time              `json:"expires_at,omitempty"`
}

// Renew extends the lease for a node that still holds it inside its window.
// A renew arriving after expiry fails; the node must re-validate.
func (s *SessionService) Renew(ctx context.Context, accountID, sessionID uuid.UUID) (*RenewResult, error) {
	now := time.Now()
	expiresAt := now.Add(s.duration)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	ok, err := s.accounts.RenewLease(ctx, tx, accountID, sessionID, expiresAt, now)
	if err != nil {
		return nil, domain.ErrInternal("renew lease", err)
	}
	if !ok {
		return &RenewResult{Code: domain.SessionRenewFailed}, nil
	}

	event := domain.NewSessionRenewedEvent(accountID, sessionID, expiresAt)
	if err := s.outbox.Insert(ctx, tx, event); err != nil {
		return nil, domain.ErrInternal("insert outbox event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}
	return &RenewResult{Code: domain.SessionRenewSuccess, ExpiresAt: &expiresAt}, nil
}

// Release clears the lease if the session id still matches. Releasing a
// session that is already gone is a no-op, so shutdown paths can always call
// it.
func (s *SessionService) Release(ctx context.Context, accountID, sessionID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	matched, err := s.accounts.ReleaseLease(ctx, tx, accountID, sessionID)
	if err != nil {
		return domain.ErrInternal("release lease", err)
	}
	if matched {
		event := domain.NewSessionReleasedEvent(accountID, sessionID)
		if err := s.outbox.Insert(ctx, tx, event); err != nil {
			return domain.ErrInternal("insert outbox event", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	return nil
}

// IssueTicket creates a single-use login ticket for an account. The login
// tier calls this after authenticating the client.
func (s *SessionService) IssueTicket(ctx context.Context, accountID uuid.UUID, ttl time.Duration) (*domain.SessionTicket, error) {
	account, err := s.accounts.FindByID(ctx, s.pool, accountID)
	if err != nil {
		return nil, domain.ErrInternal("find account", err)
	}
	if account == nil {
		return nil, domain.ErrNotFound("account", accountID.String())
	}

	now := time.Now()
	ticket := &domain.SessionTicket{
		SessionID: uuid.New(),
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.tickets.Insert(ctx, s.pool, ticket); err != nil {
		return nil, domain.ErrInternal("issue ticket", err)
	}
	return ticket, nil
}
