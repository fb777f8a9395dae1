//go:build integration

package integration

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/murealm/platform/internal/repository"
	"github.com/murealm/platform/test/integration/testutil"
)

type validateResponse struct {
	Code      int32      `json:"code"`
	Username  string     `json:"username"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type renewResponse struct {
	Code      int32      `json:"code"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func TestSessionValidate_Success(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Alice")
	sessionID := env.SeedTicket(accountID, time.Now().Add(time.Minute))
	serverID := uuid.New()

	resp := env.POST("/sessions/validate", map[string]interface{}{
		"account_id": accountID,
		"session_id": sessionID,
		"server_id":  serverID,
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result validateResponse
	testutil.DecodeJSON(t, resp, &result)
	if result.Code != 0 {
		t.Errorf("expected success code, got %d", result.Code)
	}
	if result.Username != "Alice" {
		t.Errorf("expected username Alice, got %q", result.Username)
	}
	if result.ExpiresAt == nil || !result.ExpiresAt.After(time.Now()) {
		t.Errorf("expected a future lease expiry, got %v", result.ExpiresAt)
	}

	leaseSession, leaseServer, _ := env.Lease(accountID)
	if leaseSession == nil || *leaseSession != sessionID {
		t.Errorf("lease session mismatch: %v", leaseSession)
	}
	if leaseServer == nil || *leaseServer != serverID {
		t.Errorf("lease server mismatch: %v", leaseServer)
	}

	if testutil.CountOutboxEvents(t, env, "game.session.granted", sessionID) != 1 {
		t.Error("expected one session.granted outbox event")
	}
}

func TestSessionValidate_TicketConsumedOnce(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Bob")
	sessionID := env.SeedTicket(accountID, time.Now().Add(time.Minute))

	resp := env.POST("/sessions/validate", map[string]interface{}{
		"account_id": accountID,
		"session_id": sessionID,
		"server_id":  uuid.New(),
	}, token)
	resp.Body.Close()

	if testutil.TicketExists(t, env, sessionID) {
		t.Error("ticket should be deleted after validation")
	}

	// Replaying the same ticket fails even though the first attempt succeeded.
	resp = env.POST("/sessions/validate", map[string]interface{}{
		"account_id": accountID,
		"session_id": sessionID,
		"server_id":  uuid.New(),
	}, token)
	var result validateResponse
	testutil.DecodeJSON(t, resp, &result)
	if result.Code != 1 {
		t.Errorf("expected invalid-session code on replay, got %d", result.Code)
	}
}

func TestSessionValidate_ExpiredTicketSpent(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Carol")
	sessionID := env.SeedTicket(accountID, time.Now().Add(-time.Second))

	resp := env.POST("/sessions/validate", map[string]interface{}{
		"account_id": accountID,
		"session_id": sessionID,
		"server_id":  uuid.New(),
	}, token)

	var result validateResponse
	testutil.DecodeJSON(t, resp, &result)
	if result.Code != 1 {
		t.Errorf("expected invalid-session code, got %d", result.Code)
	}

	// The stale ticket is still spent.
	if testutil.TicketExists(t, env, sessionID) {
		t.Error("expired ticket should still be deleted")
	}
}

func TestSessionValidate_AccountInUse(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Dave")

	first := env.SeedTicket(accountID, time.Now().Add(time.Minute))
	resp := env.POST("/sessions/validate", map[string]interface{}{
		"account_id": accountID,
		"session_id": first,
		"server_id":  uuid.New(),
	}, token)
	resp.Body.Close()

	second := env.SeedTicket(accountID, time.Now().Add(time.Minute))
	resp = env.POST("/sessions/validate", map[string]interface{}{
		"account_id": accountID,
		"session_id": second,
		"server_id":  uuid.New(),
	}, token)

	var result validateResponse
	testutil.DecodeJSON(t, resp, &result)
	if result.Code != 2 {
		t.Errorf("expected account-in-use code, got %d", result.Code)
	}

	// The losing ticket was still consumed.
	if testutil.TicketExists(t, env, second) {
		t.Error("second ticket should be deleted")
	}

	// The first node's lease is untouched.
	leaseSession, _, _ := env.Lease(accountID)
	if leaseSession == nil || *leaseSession != first {
		t.Errorf("lease should still belong to first session, got %v", leaseSession)
	}
}

func TestSessionValidate_ConcurrentClaims(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Race")
	tickets := []uuid.UUID{
		env.SeedTicket(accountID, time.Now().Add(time.Minute)),
		env.SeedTicket(accountID, time.Now().Add(time.Minute)),
	}

	// Two nodes race for the same account; the row lock makes one win.
	responses := make(chan *http.Response, len(tickets))
	var wg sync.WaitGroup
	for _, sessionID := range tickets {
		wg.Add(1)
		go func(sessionID uuid.UUID) {
			defer wg.Done()
			responses <- env.POST("/sessions/validate", map[string]interface{}{
				"account_id": accountID,
				"session_id": sessionID,
				"server_id":  uuid.New(),
			}, token)
		}(sessionID)
	}
	wg.Wait()
	close(responses)

	var wins, busy int
	for resp := range responses {
		var result validateResponse
		testutil.DecodeJSON(t, resp, &result)
		switch result.Code {
		case 0:
			wins++
		case 2:
			busy++
		}
	}
	if wins != 1 || busy != 1 {
		t.Errorf("expected one winner and one account-in-use, got %d wins / %d busy", wins, busy)
	}
}

func TestSessionValidate_ExpiredLeaseTakeover(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Erin")

	first := env.SeedTicket(accountID, time.Now().Add(time.Minute))
	resp := env.POST("/sessions/validate", map[string]interface{}{
		"account_id": accountID,
		"session_id": first,
		"server_id":  uuid.New(),
	}, token)
	resp.Body.Close()

	env.ExpireLease(accountID)

	second := env.SeedTicket(accountID, time.Now().Add(time.Minute))
	resp = env.POST("/sessions/validate", map[string]interface{}{
		"account_id": accountID,
		"session_id": second,
		"server_id":  uuid.New(),
	}, token)

	var result validateResponse
	testutil.DecodeJSON(t, resp, &result)
	if result.Code != 0 {
		t.Errorf("expected takeover of expired lease, got code %d", result.Code)
	}

	leaseSession, _, _ := env.Lease(accountID)
	if leaseSession == nil || *leaseSession != second {
		t.Errorf("lease should belong to second session, got %v", leaseSession)
	}
}

func TestSessionRenew(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Frank")
	sessionID := env.SeedTicket(accountID, time.Now().Add(time.Minute))

	resp := env.POST("/sessions/validate", map[string]interface{}{
		"account_id": accountID,
		"session_id": sessionID,
		"server_id":  uuid.New(),
	}, token)
	resp.Body.Close()

	resp = env.POST("/sessions/renew", map[string]interface{}{
		"account_id": accountID,
		"session_id": sessionID,
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result renewResponse
	testutil.DecodeJSON(t, resp, &result)
	if result.Code != 0 {
		t.Errorf("expected renew success, got code %d", result.Code)
	}
	if result.ExpiresAt == nil || !result.ExpiresAt.After(time.Now()) {
		t.Errorf("expected a future expiry, got %v", result.ExpiresAt)
	}

	if n := testutil.CountOutboxEvents(t, env, "game.session.renewed", sessionID); n != 1 {
		t.Errorf("expected one session.renewed outbox event, got %d", n)
	}
}

func TestSessionRenew_FailsAfterExpiry(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Grace")
	sessionID := env.SeedTicket(accountID, time.Now().Add(time.Minute))

	resp := env.POST("/sessions/validate", map[string]interface{}{
		"account_id": accountID,
		"session_id": sessionID,
		"server_id":  uuid.New(),
	}, token)
	resp.Body.Close()

	env.ExpireLease(accountID)

	resp = env.POST("/sessions/renew", map[string]interface{}{
		"account_id": accountID,
		"session_id": sessionID,
	}, token)

	var result renewResponse
	testutil.DecodeJSON(t, resp, &result)
	if result.Code != 1 {
		t.Errorf("expected renew failure on expired lease, got code %d", result.Code)
	}
}

func TestSessionRenew_AtExpiryInstant(t *testing.T) {
	env := testutil.NewTestEnv(t)

	accountID := env.CreateAccount("Ivy")
	sessionID := uuid.New()

	// Pin the lease expiry so the renew can land exactly on it. Postgres
	// stores microseconds, so truncate for an exact match.
	ctx := context.Background()
	expiresAt := time.Now().Add(time.Minute).UTC().Truncate(time.Microsecond)
	_, err := env.Pool.Exec(ctx, `
		UPDATE accounts
		SET game_session_id = $2, game_server_id = $3, game_session_expires_at = $4
		WHERE id = $1`, accountID, sessionID, uuid.New(), expiresAt)
	if err != nil {
		t.Fatalf("install lease: %v", err)
	}

	// A renew arriving at the expiry instant is still inside the window.
	accounts := repository.NewAccountRepository()
	ok, err := accounts.RenewLease(ctx, env.Pool, accountID, sessionID, expiresAt.Add(time.Minute), expiresAt)
	if err != nil {
		t.Fatalf("renew lease: %v", err)
	}
	if !ok {
		t.Error("renew at the expiry instant should succeed")
	}

	// One microsecond past expiry it fails.
	ok, err = accounts.RenewLease(ctx, env.Pool, accountID, sessionID, expiresAt.Add(2*time.Minute), expiresAt.Add(time.Minute+time.Microsecond))
	if err != nil {
		t.Fatalf("renew lease: %v", err)
	}
	if ok {
		t.Error("renew past the expiry instant should fail")
	}
}

func TestSessionRenew_WrongSession(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Heidi")
	sessionID := env.SeedTicket(accountID, time.Now().Add(time.Minute))

	resp := env.POST("/sessions/validate", map[string]interface{}{
		"account_id": accountID,
		"session_id": sessionID,
		"server_id":  uuid.New(),
	}, token)
	resp.Body.Close()

	resp = env.POST("/sessions/renew", map[string]interface{}{
		"account_id": accountID,
		"session_id": uuid.New(),
	}, token)

	var result renewResponse
	testutil.DecodeJSON(t, resp, &result)
	if result.Code != 1 {
		t.Errorf("expected renew failure for mismatched session, got code %d", result.Code)
	}
}

func TestSessionRelease_Idempotent(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Ivan")
	sessionID := env.SeedTicket(accountID, time.Now().Add(time.Minute))

	resp := env.POST("/sessions/validate", map[string]interface{}{
		"account_id": accountID,
		"session_id": sessionID,
		"server_id":  uuid.New(),
	}, token)
	resp.Body.Close()

	for i := 0; i < 2; i++ {
		resp = env.POST("/sessions/release", map[string]interface{}{
			"account_id": accountID,
			"session_id": sessionID,
		}, token)
		testutil.AssertStatus(t, resp, http.StatusOK)
		resp.Body.Close()
	}

	leaseSession, leaseServer, leaseExpiry := env.Lease(accountID)
	if leaseSession != nil || leaseServer != nil || leaseExpiry != nil {
		t.Error("lease columns should be cleared after release")
	}

	// Only the first release records an event.
	if n := testutil.CountOutboxEvents(t, env, "game.session.released", sessionID); n != 1 {
		t.Errorf("expected one session.released outbox event, got %d", n)
	}
}

func TestIssueTicket(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Judy")

	resp := env.POST("/sessions/tickets", map[string]interface{}{
		"account_id": accountID,
		"ttl":        "30s",
	}, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var ticket struct {
		SessionID uuid.UUID `json:"session_id"`
		AccountID uuid.UUID `json:"account_id"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	testutil.DecodeJSON(t, resp, &ticket)
	if ticket.AccountID != accountID {
		t.Errorf("ticket account mismatch: %s", ticket.AccountID)
	}
	if !testutil.TicketExists(t, env, ticket.SessionID) {
		t.Error("issued ticket should be stored")
	}
}

func TestIssueTicket_UnknownAccount(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	resp := env.POST("/sessions/tickets", map[string]interface{}{
		"account_id": uuid.New(),
		"ttl":        "30s",
	}, token)
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	testutil.AssertErrorCode(t, resp, "NOT_FOUND")
}

func TestSessionEndpoints_RequireNodeAuth(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.POST("/sessions/validate", map[string]interface{}{
		"account_id": uuid.New(),
		"session_id": uuid.New(),
		"server_id":  uuid.New(),
	}, "")
	testutil.AssertStatus(t, resp, http.StatusUnauthorized)
	resp.Body.Close()
}
