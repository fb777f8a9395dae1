//go:build integration

package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/murealm/platform/test/integration/testutil"
)

func saveItemBody(id, ownerID uuid.UUID, invType, invIndex, quantity int32) map[string]interface{} {
	return map[string]interface{}{
		"id":              id,
		"owner_id":        ownerID,
		"inventory_type":  invType,
		"inventory_index": invIndex,
		"item_type":       0,
		"item_index":      1,
		"level":           3,
		"experience":      "0",
		"quantity":        quantity,
		"options":         []interface{}{},
	}
}

func TestInventorySave_UpsertAndRevive(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())
	ctx := context.Background()

	ownerID := uuid.New()
	itemID := uuid.New()

	resp := env.POST("/inventory/save", map[string]interface{}{
		"items": []interface{}{saveItemBody(itemID, ownerID, 2, 0, 1)},
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	// Second save moves the item and bumps the quantity.
	resp = env.POST("/inventory/save", map[string]interface{}{
		"items": []interface{}{saveItemBody(itemID, ownerID, 2, 5, 7)},
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	var invIndex, quantity int32
	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM items WHERE id = $1", itemID).Scan(&count)
	if err != nil || count != 1 {
		t.Fatalf("expected one row for upserted item (err %v, count %d)", err, count)
	}
	err = env.Pool.QueryRow(ctx,
		"SELECT inventory_index, quantity FROM items WHERE id = $1", itemID).Scan(&invIndex, &quantity)
	if err != nil || invIndex != 5 || quantity != 7 {
		t.Errorf("upsert did not apply: index %d quantity %d (err %v)", invIndex, quantity, err)
	}

	// Deleting then saving again revives the row.
	resp = env.POST("/inventory/delete", map[string]interface{}{
		"item_ids": []uuid.UUID{itemID},
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	var deleted bool
	_ = env.Pool.QueryRow(ctx,
		"SELECT deleted_at IS NOT NULL FROM items WHERE id = $1", itemID).Scan(&deleted)
	if !deleted {
		t.Fatal("item should be soft-deleted")
	}

	resp = env.POST("/inventory/save", map[string]interface{}{
		"items": []interface{}{saveItemBody(itemID, ownerID, 2, 1, 7)},
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	_ = env.Pool.QueryRow(ctx,
		"SELECT deleted_at IS NOT NULL FROM items WHERE id = $1", itemID).Scan(&deleted)
	if deleted {
		t.Error("saving a deleted item should revive it")
	}
}

func TestInventorySave_RejectsBadSlot(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	body := saveItemBody(uuid.New(), uuid.New(), 2, 0, 1)
	body["inventory_index"] = -1

	resp := env.POST("/inventory/save", map[string]interface{}{
		"items": []interface{}{body},
	}, token)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	testutil.AssertErrorCode(t, resp, "VALIDATION_ERROR")
}

func TestInventoryDelete_Idempotent(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())
	ctx := context.Background()

	ownerID := uuid.New()
	itemID := uuid.New()
	mountID := uuid.New()

	resp := env.POST("/inventory/save", map[string]interface{}{
		"items": []interface{}{saveItemBody(itemID, ownerID, 2, 0, 1)},
		"mounts": []interface{}{map[string]interface{}{
			"id":              mountID,
			"owner_id":        ownerID,
			"inventory_type":  1,
			"inventory_index": 0,
			"mount_type":      2,
			"level":           1,
			"experience":      "0",
			"options":         []interface{}{},
		}},
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	for i := 0; i < 2; i++ {
		resp = env.POST("/inventory/delete", map[string]interface{}{
			"item_ids":  []uuid.UUID{itemID},
			"mount_ids": []uuid.UUID{mountID},
		}, token)
		testutil.AssertStatus(t, resp, http.StatusOK)
		resp.Body.Close()
	}

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var liveItems, liveMounts int
	_ = env.Pool.QueryRow(ctx2,
		"SELECT COUNT(*) FROM items WHERE owner_id = $1 AND deleted_at IS NULL", ownerID).Scan(&liveItems)
	_ = env.Pool.QueryRow(ctx2,
		"SELECT COUNT(*) FROM mounts WHERE owner_id = $1 AND deleted_at IS NULL", ownerID).Scan(&liveMounts)
	if liveItems != 0 || liveMounts != 0 {
		t.Errorf("expected no live records, got %d items %d mounts", liveItems, liveMounts)
	}
}
