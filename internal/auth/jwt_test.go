package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager() *JWTManager {
	return NewJWTManager("test-secret-key", 24*time.Hour)
}

func TestGenerateAndValidateNodeToken(t *testing.T) {
	mgr := newTestJWTManager()
	nodeID := uuid.New()

	token, err := mgr.GenerateToken(RealmNode, nodeID, "eu-1")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := mgr.ValidateTokenForRealm(token, RealmNode)
	require.NoError(t, err)
	assert.Equal(t, nodeID.String(), claims.Subject)
	assert.Equal(t, RealmNode, claims.Realm)
	assert.Equal(t, "eu-1", claims.Name)
}

func TestUnknownRealmRejected(t *testing.T) {
	mgr := newTestJWTManager()

	_, err := mgr.GenerateToken(Realm("player"), uuid.New(), "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown realm")
}

func TestRealmMismatchRejected(t *testing.T) {
	mgr := newTestJWTManager()

	token, err := mgr.GenerateToken(RealmNode, uuid.New(), "")
	require.NoError(t, err)

	_, err = mgr.ValidateTokenForRealm(token, Realm("admin"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected realm admin")
}

func TestInvalidSecretRejected(t *testing.T) {
	mgr1 := NewJWTManager("secret-1", 24*time.Hour)
	mgr2 := NewJWTManager("secret-2", 24*time.Hour)

	token, err := mgr1.GenerateToken(RealmNode, uuid.New(), "")
	require.NoError(t, err)

	_, err = mgr2.ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	mgr := NewJWTManager("secret", 1*time.Millisecond)

	token, err := mgr.GenerateToken(RealmNode, uuid.New(), "")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}
