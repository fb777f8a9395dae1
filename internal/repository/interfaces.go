package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/murealm/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// AccountRepository provides access to accounts, including the game session
// lease columns.
type AccountRepository interface {
	// FindByID returns an account with its lease, or nil when absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Account, error)

	// Create inserts a new account.
	Create(ctx context.Context, db DBTX, account *domain.Account) error

	// AcquireLease conditionally installs a lease: it matches only when the
	// account holds no lease or the held lease is expired. Returns the
	// account's username on success, nil when the precondition failed.
	AcquireLease(ctx context.Context, db DBTX, accountID uuid.UUID, lease domain.GameSessionLease, now time.Time) (*string, error)

	// RenewLease extends a lease only when the account still holds a live
	// lease with the given session id. Reports whether a row matched.
	RenewLease(ctx context.Context, db DBTX, accountID, sessionID uuid.UUID, expiresAt time.Time, now time.Time) (bool, error)

	// ReleaseLease clears the lease whenever the session id matches,
	// regardless of expiry. Always succeeds; reports whether a row matched.
	ReleaseLease(ctx context.Context, db DBTX, accountID, sessionID uuid.UUID) (bool, error)
}

// TicketRepository provides access to game_session_tickets.
type TicketRepository interface {
	// Insert writes a single-use ticket issued by the login flow.
	Insert(ctx context.Context, db DBTX, ticket *domain.SessionTicket) error

	// Consume deletes the ticket matching account and session, returning it.
	// The delete happens whether or not the ticket is still fresh; callers
	// judge expiry themselves. Returns nil when no ticket matched.
	Consume(ctx context.Context, db DBTX, accountID, sessionID uuid.UUID) (*domain.SessionTicket, error)
}

// NodeRepository provides access to the nodes registry.
type NodeRepository interface {
	// Upsert registers or fully refreshes a node by id. CreatedAt is kept
	// from the first registration.
	Upsert(ctx context.Context, db DBTX, node *domain.Node) error

	// List returns all registered nodes ordered by index.
	List(ctx context.Context, db DBTX) ([]domain.Node, error)
}

// CharacterRepository provides access to characters. All reads see live
// (non-deleted) rows only.
type CharacterRepository interface {
	// Insert creates a character, guarded by the live-name unique index.
	// Reports false when the normalized name is already taken.
	Insert(ctx context.Context, db DBTX, c *domain.Character) (bool, error)

	// FindByID returns a live character, or nil.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Character, error)

	// ListByAccount returns all live characters of an account.
	ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID) ([]domain.Character, error)

	// SoftDelete marks the character deleted if it is live and owned by the
	// account. Reports whether a row matched.
	SoftDelete(ctx context.Context, db DBTX, id, accountID uuid.UUID, now time.Time) (bool, error)

	// UpdateState overwrites the mutable gameplay block of a live character.
	// Identity, name, class, and authority are never touched here.
	UpdateState(ctx context.Context, db DBTX, c *domain.Character) error
}

// ItemRepository provides access to items.
type ItemRepository interface {
	// InsertMany bulk-inserts new items.
	InsertMany(ctx context.Context, db DBTX, items []*domain.Item) error

	// ListEquippedForOwners returns live equipped items for a set of
	// characters, for the list view.
	ListEquippedForOwners(ctx context.Context, db DBTX, ownerIDs []uuid.UUID) ([]domain.Item, error)

	// ListForView returns all live items visible in a full character view:
	// character-scoped rows of the character plus storage rows of the account.
	ListForView(ctx context.Context, db DBTX, characterID, accountID uuid.UUID) ([]domain.Item, error)

	// UpsertMany writes item states by id, inserting rows that do not exist
	// yet and overwriting the mutable fields of rows that do.
	UpsertMany(ctx context.Context, db DBTX, items []*domain.Item) error

	// SoftDeleteByIDs marks the given live items deleted.
	SoftDeleteByIDs(ctx context.Context, db DBTX, ids []uuid.UUID, now time.Time) error

	// SoftDeleteCharacterScoped cascades a character deletion over its
	// character-scoped items, leaving account storage untouched.
	SoftDeleteCharacterScoped(ctx context.Context, db DBTX, characterID uuid.UUID, now time.Time) error
}

// MountRepository provides access to mounts.
type MountRepository interface {
	ListActiveForOwners(ctx context.Context, db DBTX, ownerIDs []uuid.UUID) ([]domain.Mount, error)
	ListForView(ctx context.Context, db DBTX, characterID, accountID uuid.UUID) ([]domain.Mount, error)
	UpsertMany(ctx context.Context, db DBTX, mounts []*domain.Mount) error
	SoftDeleteByIDs(ctx context.Context, db DBTX, ids []uuid.UUID, now time.Time) error
	SoftDeleteCharacterScoped(ctx context.Context, db DBTX, characterID uuid.UUID, now time.Time) error
}

// PetRepository provides access to pets.
type PetRepository interface {
	ListActiveForOwners(ctx context.Context, db DBTX, ownerIDs []uuid.UUID) ([]domain.Pet, error)
	ListForView(ctx context.Context, db DBTX, characterID, accountID uuid.UUID) ([]domain.Pet, error)
	UpsertMany(ctx context.Context, db DBTX, pets []*domain.Pet) error
	SoftDeleteByIDs(ctx context.Context, db DBTX, ids []uuid.UUID, now time.Time) error
	SoftDeleteCharacterScoped(ctx context.Context, db DBTX, characterID uuid.UUID, now time.Time) error
}

// CurrencyRepository provides access to per-account currencies.
type CurrencyRepository interface {
	// EnsureAndGet creates the zeroed wallet row on first touch and returns
	// its current state.
	EnsureAndGet(ctx context.Context, db DBTX, accountID uuid.UUID) (*domain.Currencies, error)

	// Upsert overwrites the wallet balances.
	Upsert(ctx context.Context, db DBTX, c *domain.Currencies) error
}

// SkinRepository provides access to account-owned skins.
type SkinRepository interface {
	ListByAccount(ctx context.Context, db DBTX, accountID uuid.UUID) ([]domain.SkinInfo, error)
}

// DefaultCharacterRepository provides access to per-class starter templates.
type DefaultCharacterRepository interface {
	// FindByClassType returns the template for a class, or nil.
	FindByClassType(ctx context.Context, db DBTX, classType int32) (*domain.DefaultCharacter, error)

	// Upsert installs or replaces a class template.
	Upsert(ctx context.Context, db DBTX, tpl *domain.DefaultCharacter) error
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert writes an outbox event within the same transaction as the state
	// change it describes.
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns unpublished events for the outbox poller.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished marks events as published.
	MarkPublished(ctx context.Context, db DBTX, eventIDs []uuid.UUID) error
}
