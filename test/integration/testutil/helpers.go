//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/murealm/platform/internal/auth"
	"github.com/murealm/platform/internal/domain"
	"github.com/murealm/platform/internal/repository"
)

// NodeToken generates a JWT for a world node.
func (env *TestEnv) NodeToken(nodeID uuid.UUID) string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateToken(auth.RealmNode, nodeID, "node-test")
	if err != nil {
		env.t.Fatalf("NodeToken: %v", err)
	}
	return token
}

// CreateAccount inserts an account through the repository and returns its ID.
func (env *TestEnv) CreateAccount(username string) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	account := &domain.Account{ID: uuid.New(), Username: username}
	if err := repository.NewAccountRepository().Create(ctx, env.Pool, account); err != nil {
		env.t.Fatalf("CreateAccount: %v", err)
	}
	return account.ID
}

// SeedTicket inserts a single-use login ticket and returns its session id.
func (env *TestEnv) SeedTicket(accountID uuid.UUID, expiresAt time.Time) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sessionID := uuid.New()
	_, err := env.Pool.Exec(ctx, `
		INSERT INTO game_session_tickets (session_id, account_id, expires_at)
		VALUES ($1, $2, $3)`,
		sessionID, accountID, expiresAt)
	if err != nil {
		env.t.Fatalf("SeedTicket: %v", err)
	}
	return sessionID
}

// ExpireLease rewrites the account's lease expiry into the past.
func (env *TestEnv) ExpireLease(accountID uuid.UUID) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx, `
		UPDATE accounts SET game_session_expires_at = now() - interval '1 second'
		WHERE id = $1`, accountID)
	if err != nil {
		env.t.Fatalf("ExpireLease: %v", err)
	}
}

// Lease reads the account's current lease columns.
func (env *TestEnv) Lease(accountID uuid.UUID) (sessionID, serverID *uuid.UUID, expiresAt *time.Time) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := env.Pool.QueryRow(ctx, `
		SELECT game_session_id, game_server_id, game_session_expires_at
		FROM accounts WHERE id = $1`, accountID).Scan(&sessionID, &serverID, &expiresAt)
	if err != nil {
		env.t.Fatalf("Lease: %v", err)
	}
	return sessionID, serverID, expiresAt
}

// SeedDefaultCharacter inserts a starter template for the given class: a
// sword equipped in the weapon slot and a stack of potions in the bag.
func (env *TestEnv) SeedDefaultCharacter(classType int32) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	items := []map[string]interface{}{
		{
			"type": 0, "index": 1,
			"inventory_type":  0,
			"inventory_index": 0,
			"flags":           0,
			"level":           1,
			"experience":      0,
			"quantity":        1,
			"physical_damage_min": 6, "physical_damage_max": 10,
			"options": []interface{}{},
		},
		{
			"type": 14, "index": 3,
			"inventory_type":  2,
			"inventory_index": 0,
			"flags":           0,
			"level":           0,
			"experience":      0,
			"quantity":        10,
			"options":         []interface{}{},
		},
	}
	itemsJSON, _ := json.Marshal(items)

	_, err := env.Pool.Exec(ctx, `
		INSERT INTO default_characters
		  (class_type, class_subtype, level, experience, stat_points,
		   strength, dexterity, vitality, energy, life, mana, stamina,
		   map_index, spawn_x, spawn_y, items, skills)
		VALUES ($1, 0, 1, 0, 0, 18, 18, 15, 30, 60, 60, 50, 0, 125.5, 120.0, $2, '{1,2}')
		ON CONFLICT (class_type) DO NOTHING`,
		classType, itemsJSON)
	if err != nil {
		env.t.Fatalf("SeedDefaultCharacter: %v", err)
	}
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.request("POST", path, body, token)
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	return env.request("GET", path, nil, token)
}

// AuthPUT performs an authenticated PUT request.
func (env *TestEnv) AuthPUT(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.request("PUT", path, body, token)
}

// AuthDELETE performs an authenticated DELETE request.
func (env *TestEnv) AuthDELETE(path, token string) *http.Response {
	env.t.Helper()
	return env.request("DELETE", path, nil, token)
}

func (env *TestEnv) request(method, path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// FakeUUID returns a random UUID string for test placeholders.
func FakeUUID() string {
	return uuid.New().String()
}
