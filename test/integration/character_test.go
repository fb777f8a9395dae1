//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/murealm/platform/test/integration/testutil"
)

type createCharacterResponse struct {
	Code      int32 `json:"code"`
	Character *struct {
		CharacterID uuid.UUID `json:"character_id"`
		Name        string    `json:"name"`
		Class       int32     `json:"class"`
		Level       int32     `json:"level"`
		Charset     []struct {
			Slot int32 `json:"slot"`
		} `json:"charset"`
	} `json:"character"`
}

func charactersPath(accountID uuid.UUID) string {
	return fmt.Sprintf("/accounts/%s/characters", accountID)
}

func characterPath(accountID, characterID uuid.UUID) string {
	return fmt.Sprintf("/accounts/%s/characters/%s", accountID, characterID)
}

func createCharacter(t *testing.T, env *testutil.TestEnv, token string, accountID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	resp := env.POST(charactersPath(accountID), map[string]interface{}{
		"name":       name,
		"class_type": 1,
	}, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var result createCharacterResponse
	testutil.DecodeJSON(t, resp, &result)
	if result.Code != 0 || result.Character == nil {
		t.Fatalf("character creation failed: code %d", result.Code)
	}
	return result.Character.CharacterID
}

func TestCharacterCreate(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Alice")
	env.SeedDefaultCharacter(1)

	resp := env.POST(charactersPath(accountID), map[string]interface{}{
		"name":       "Conan",
		"class_type": 1,
	}, token)
	testutil.AssertStatus(t, resp, http.StatusCreated)

	var result createCharacterResponse
	testutil.DecodeJSON(t, resp, &result)
	if result.Code != 0 {
		t.Fatalf("expected success code, got %d", result.Code)
	}
	if result.Character.Name != "Conan" || result.Character.Class != 1 || result.Character.Level != 1 {
		t.Errorf("unexpected character projection: %+v", result.Character)
	}
	// The seeded template equips one starter weapon.
	if len(result.Character.Charset) != 1 {
		t.Errorf("expected one equipped starter item, got %d", len(result.Character.Charset))
	}

	if testutil.CountOutboxEvents(t, env, "game.character.created", result.Character.CharacterID) != 1 {
		t.Error("expected one character.created outbox event")
	}
}

func TestCharacterCreate_InvalidClass(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Bob")

	resp := env.POST(charactersPath(accountID), map[string]interface{}{
		"name":       "Ghost",
		"class_type": 99,
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result createCharacterResponse
	testutil.DecodeJSON(t, resp, &result)
	if result.Code != 2 {
		t.Errorf("expected invalid-class code, got %d", result.Code)
	}
}

func TestCharacterCreate_DuplicateName(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	first := env.CreateAccount("Carol")
	second := env.CreateAccount("Dave")
	env.SeedDefaultCharacter(1)

	createCharacter(t, env, token, first, "Merlin")

	// Name uniqueness is global and case-insensitive.
	resp := env.POST(charactersPath(second), map[string]interface{}{
		"name":       "MERLIN",
		"class_type": 1,
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result createCharacterResponse
	testutil.DecodeJSON(t, resp, &result)
	if result.Code != 1 {
		t.Errorf("expected name-exists code, got %d", result.Code)
	}
}

func TestCharacterCreate_ConcurrentNameClaim(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accounts := []uuid.UUID{env.CreateAccount("Pat"), env.CreateAccount("Quinn")}
	env.SeedDefaultCharacter(1)

	// Two accounts race for the same name; the unique index lets one through.
	responses := make(chan *http.Response, len(accounts))
	var wg sync.WaitGroup
	for _, accountID := range accounts {
		wg.Add(1)
		go func(accountID uuid.UUID) {
			defer wg.Done()
			responses <- env.POST(charactersPath(accountID), map[string]interface{}{
				"name":       "Contested",
				"class_type": 1,
			}, token)
		}(accountID)
	}
	wg.Wait()
	close(responses)

	var created, taken int
	for resp := range responses {
		var result createCharacterResponse
		testutil.DecodeJSON(t, resp, &result)
		switch result.Code {
		case 0:
			created++
		case 1:
			taken++
		}
	}
	if created != 1 || taken != 1 {
		t.Errorf("expected one creation and one name-exists, got %d created / %d taken", created, taken)
	}

	var live int
	err := env.Pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM characters WHERE name_normalized = 'contested' AND deleted_at IS NULL").Scan(&live)
	if err != nil || live != 1 {
		t.Errorf("expected exactly one live character with the name (err %v, live %d)", err, live)
	}
}

func TestCharacterCreate_RejectsBadNames(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())
	accountID := env.CreateAccount("Erin")

	for _, name := range []string{"x", "has space", "semi;colon", ""} {
		resp := env.POST(charactersPath(accountID), map[string]interface{}{
			"name":       name,
			"class_type": 1,
		}, token)
		testutil.AssertStatus(t, resp, http.StatusBadRequest)
		resp.Body.Close()
	}
}

func TestCharacterList(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Frank")
	env.SeedDefaultCharacter(1)

	createCharacter(t, env, token, accountID, "Ragnar")
	createCharacter(t, env, token, accountID, "Lagertha")

	resp := env.AuthGET(charactersPath(accountID), token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var result struct {
		Characters []struct {
			Name    string `json:"name"`
			Charset []struct {
				Slot int32 `json:"slot"`
			} `json:"charset"`
		} `json:"characters"`
		Skins []interface{} `json:"skins"`
	}
	testutil.DecodeJSON(t, resp, &result)
	if len(result.Characters) != 2 {
		t.Fatalf("expected 2 characters, got %d", len(result.Characters))
	}
	for _, c := range result.Characters {
		if len(c.Charset) != 1 {
			t.Errorf("character %s: expected 1 equipped item, got %d", c.Name, len(c.Charset))
		}
	}
	if result.Skins == nil {
		t.Error("skins should be an empty array, not null")
	}
}

func TestCharacterDelete_CascadeScope(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Grace")
	env.SeedDefaultCharacter(1)
	characterID := createCharacter(t, env, token, accountID, "Doomed")

	// One account-storage item owned by the account survives deletion.
	ctx := context.Background()
	storageItemID := uuid.New()
	_, err := env.Pool.Exec(ctx, `
		INSERT INTO items (id, owner_id, inventory_type, inventory_index, item_type, item_index, level)
		VALUES ($1, $2, 65, 0, 0, 1, 1)`, storageItemID, accountID)
	if err != nil {
		t.Fatalf("seed storage item: %v", err)
	}

	resp := env.AuthDELETE(characterPath(accountID, characterID), token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	var liveCount int
	err = env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM characters WHERE id = $1 AND deleted_at IS NULL", characterID).Scan(&liveCount)
	if err != nil || liveCount != 0 {
		t.Errorf("character should be soft-deleted (err %v, live %d)", err, liveCount)
	}

	// Character-scoped starter items are gone; the storage item is untouched.
	var charItems int
	err = env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM items WHERE owner_id = $1 AND deleted_at IS NULL", characterID).Scan(&charItems)
	if err != nil || charItems != 0 {
		t.Errorf("character items should be soft-deleted (err %v, live %d)", err, charItems)
	}
	var storageLive bool
	err = env.Pool.QueryRow(ctx,
		"SELECT deleted_at IS NULL FROM items WHERE id = $1", storageItemID).Scan(&storageLive)
	if err != nil || !storageLive {
		t.Errorf("storage item should survive character deletion (err %v)", err)
	}

	// Deleting again is a silent success.
	resp = env.AuthDELETE(characterPath(accountID, characterID), token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	if testutil.CountOutboxEvents(t, env, "game.character.deleted", characterID) != 1 {
		t.Error("expected exactly one character.deleted outbox event")
	}
}

func TestCharacterDelete_FreesName(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Heidi")
	env.SeedDefaultCharacter(1)

	characterID := createCharacter(t, env, token, accountID, "Phoenix")

	resp := env.AuthDELETE(characterPath(accountID, characterID), token)
	resp.Body.Close()

	// The freed name can be claimed again.
	createCharacter(t, env, token, accountID, "Phoenix")
}

func TestCharacterGet(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Ivan")
	env.SeedDefaultCharacter(1)
	characterID := createCharacter(t, env, token, accountID, "Viewer")

	resp := env.AuthGET(characterPath(accountID, characterID), token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var view struct {
		Character *struct {
			ID   uuid.UUID `json:"id"`
			Name string    `json:"name"`
		} `json:"character"`
		Currencies *struct {
			Gold string `json:"gold"`
		} `json:"currencies"`
		Equipment []interface{} `json:"equipment"`
		Inventory *struct {
			Consumables []interface{} `json:"consumables"`
		} `json:"inventory"`
		Storage *struct{} `json:"storage"`
	}
	testutil.DecodeJSON(t, resp, &view)

	if view.Character == nil || view.Character.ID != characterID {
		t.Fatalf("unexpected character in view: %+v", view.Character)
	}
	// Wallet row is created lazily on first fetch.
	if view.Currencies == nil || view.Currencies.Gold != "0" {
		t.Errorf("expected lazily-created zero wallet, got %+v", view.Currencies)
	}
	if len(view.Equipment) != 1 {
		t.Errorf("expected 1 equipped item, got %d", len(view.Equipment))
	}
	if view.Storage == nil {
		t.Error("storage buckets should be present")
	}
}

func TestCharacterGet_EquippedSlotDedup(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Nina")
	env.SeedDefaultCharacter(1)
	characterID := createCharacter(t, env, token, accountID, "Doubled")

	// Two live records claiming the same equipped slot; the view keeps one.
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := env.Pool.Exec(ctx, `
			INSERT INTO items (id, owner_id, inventory_type, inventory_index, item_type, item_index, level)
			VALUES ($1, $2, 0, 3, 0, 1, 1)`, uuid.New(), characterID)
		if err != nil {
			t.Fatalf("seed duplicate slot item: %v", err)
		}
	}

	resp := env.AuthGET(characterPath(accountID, characterID), token)
	testutil.AssertStatus(t, resp, http.StatusOK)

	var view struct {
		Equipment []struct {
			InventoryIndex int32 `json:"inventory_index"`
		} `json:"equipment"`
	}
	testutil.DecodeJSON(t, resp, &view)

	var atSlot int
	for _, it := range view.Equipment {
		if it.InventoryIndex == 3 {
			atSlot++
		}
	}
	if atSlot != 1 {
		t.Errorf("expected exactly one item in the contested slot, got %d", atSlot)
	}
}

func TestCharacterGet_WrongAccount(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	owner := env.CreateAccount("Judy")
	intruder := env.CreateAccount("Mallory")
	env.SeedDefaultCharacter(1)
	characterID := createCharacter(t, env, token, owner, "Guarded")

	resp := env.AuthGET(characterPath(intruder, characterID), token)
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	testutil.AssertErrorCode(t, resp, "NOT_FOUND")
}

func TestCharacterSave_Roundtrip(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Karl")
	env.SeedDefaultCharacter(1)
	characterID := createCharacter(t, env, token, accountID, "Grinder")

	resp := env.AuthPUT(characterPath(accountID, characterID), map[string]interface{}{
		"class":      map[string]interface{}{"type": 2, "subtype": 1},
		"level":      42,
		"experience": "123456789",
		"stats": map[string]interface{}{
			"points":    5,
			"strength":  50,
			"dexterity": 40,
			"vitality":  30,
			"energy":    20,
			"life":      512.5,
			"mana":      256.25,
			"stamina":   100,
		},
		"position": map[string]interface{}{
			"map":       3,
			"x":         10.5,
			"y":         20.5,
			"direction": 1.5,
		},
		"skills":      []int32{1, 2, 7},
		"gold":        "5000",
		"event_coins": "12",
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = env.AuthGET(characterPath(accountID, characterID), token)
	var view struct {
		Character *struct {
			Class struct {
				Type    int32 `json:"type"`
				Subtype int32 `json:"subtype"`
			} `json:"class"`
			Level      int32  `json:"level"`
			Experience string `json:"experience"`
			Position   struct {
				Map int32   `json:"map"`
				X   float64 `json:"x"`
			} `json:"position"`
			Skills []int32 `json:"skills"`
		} `json:"character"`
		Currencies *struct {
			Gold       string `json:"gold"`
			EventCoins string `json:"event_coins"`
		} `json:"currencies"`
	}
	testutil.DecodeJSON(t, resp, &view)

	if view.Character.Level != 42 || view.Character.Experience != "123456789" {
		t.Errorf("progress not persisted: %+v", view.Character)
	}
	// Class evolutions carried by the save block must stick.
	if view.Character.Class.Type != 2 || view.Character.Class.Subtype != 1 {
		t.Errorf("class not persisted: %+v", view.Character.Class)
	}
	if view.Character.Position.Map != 3 || view.Character.Position.X != 10.5 {
		t.Errorf("position not persisted: %+v", view.Character.Position)
	}
	if len(view.Character.Skills) != 3 {
		t.Errorf("skills not persisted: %v", view.Character.Skills)
	}
	if view.Currencies.Gold != "5000" || view.Currencies.EventCoins != "12" {
		t.Errorf("wallet not persisted: %+v", view.Currencies)
	}
}

func TestCharacterSave_LargeCurrency(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token := env.NodeToken(uuid.New())

	accountID := env.CreateAccount("Liam")
	env.SeedDefaultCharacter(1)
	characterID := createCharacter(t, env, token, accountID, "Hoarder")

	// Values beyond float64's 2^53 integer precision survive intact.
	const gold = "9007199254740995"
	resp := env.AuthPUT(characterPath(accountID, characterID), map[string]interface{}{
		"level":      1,
		"experience": "0",
		"stats":      map[string]interface{}{},
		"position":   map[string]interface{}{},
		"gold":       gold,
		"event_coins": "0",
	}, token)
	testutil.AssertStatus(t, resp, http.StatusOK)
	resp.Body.Close()

	var stored string
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := env.Pool.QueryRow(ctx,
		"SELECT gold::text FROM currencies WHERE account_id = $1", accountID).Scan(&stored)
	if err != nil {
		t.Fatalf("read gold: %v", err)
	}
	if stored != gold {
		t.Errorf("gold precision lost: stored %s", stored)
	}
}
