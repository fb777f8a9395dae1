//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/murealm/platform/test/integration/testutil"
)

func heartbeatBody(nodeID uuid.UUID, index, users int32) map[string]interface{} {
	return map[string]interface{}{
		"id":        nodeID,
		"index":     index,
		"group":     0,
		"host":      "10.0.0.5",
		"port":      7900,
		"users":     users,
		"max_users": 500,
		"pvp":       index%2 == 1,
	}
}

func TestNodeHeartbeat_UpsertAndList(t *testing.T) {
	env := testutil.NewTestEnv(t)
	nodeID := uuid.New()
	token := env.NodeToken(nodeID)

	resp := env.POST("/nodes/heartbeat", heartbeatBody(nodeID, 1, 10), token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	// A later heartbeat from the same node replaces the entry.
	resp = env.POST("/nodes/heartbeat", heartbeatBody(nodeID, 1, 42), token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	other := uuid.New()
	resp = env.POST("/nodes/heartbeat", heartbeatBody(other, 2, 5), token)
	resp.Body.Close()

	resp = env.AuthGET("/nodes", token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result struct {
		Nodes []struct {
			ID       uuid.UUID `json:"id"`
			Index    int32     `json:"index"`
			Users    int32     `json:"users"`
			MaxUsers int32     `json:"max_users"`
		} `json:"nodes"`
	}
	testutil.DecodeJSON(t, resp, &result)

	if len(result.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(result.Nodes))
	}
	// Listing is ordered by node index.
	if result.Nodes[0].ID != nodeID || result.Nodes[0].Users != 42 {
		t.Errorf("unexpected first node: %+v", result.Nodes[0])
	}
	if result.Nodes[1].Index != 2 {
		t.Errorf("unexpected second node: %+v", result.Nodes[1])
	}
}

func TestNodeHeartbeat_Validation(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	body := heartbeatBody(uuid.New(), 1, 10)
	body["port"] = 0

	resp := env.POST("/nodes/heartbeat", body, token)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestNodeList_Empty(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	resp := env.AuthGET("/nodes", token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result struct {
		Nodes []interface{} `json:"nodes"`
	}
	testutil.DecodeJSON(t, resp, &result)
	if result.Nodes == nil {
		t.Error("nodes should be an empty array, not null")
	}
}

func TestHealthEndpoint(t *testing.T) {
	env := testutil.NewTestEnv(t)

	resp := env.GET("/health")
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result struct {
		Status string `json:"status"`
	}
	testutil.DecodeJSON(t, resp, &result)
	if result.Status != "healthy" {
		t.Errorf("expected healthy, got %q", result.Status)
	}
}
