package oauthstate_test

import (
	"testing"
	"time"

	"github.com/trusteehub/cams/internal/app/store/oauthstate"
	"github.com/trusteehub/cams/internal/testutil"
)

func TestStore_SaveAndConsume(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Save(ctx, "state-abc", "/cases/081-23-12345", time.Now().UTC().Add(10*time.Minute))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	returnURL, valid, err := store.Consume(ctx, "state-abc")
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if !valid {
		t.Fatal("expected state to be valid")
	}
	if returnURL != "/cases/081-23-12345" {
		t.Errorf("expected stored return URL, got %q", returnURL)
	}
}

func TestStore_Consume_OneTimeUse(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Save(ctx, "state-abc", "", time.Now().UTC().Add(10*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, valid, err := store.Consume(ctx, "state-abc")
	if err != nil || !valid {
		t.Fatalf("first Consume: valid=%v err=%v", valid, err)
	}
	_, valid, err = store.Consume(ctx, "state-abc")
	if err != nil {
		t.Fatalf("second Consume failed: %v", err)
	}
	if valid {
		t.Error("expected state to be invalid after first use")
	}
}

func TestStore_Consume_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, valid, err := store.Consume(ctx, "never-saved")
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if valid {
		t.Error("expected unknown state to be invalid")
	}
}

func TestStore_Consume_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Save(ctx, "state-abc", "", time.Now().UTC().Add(-time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, valid, err := store.Consume(ctx, "state-abc")
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if valid {
		t.Error("expected expired state to be invalid")
	}
}

func TestStore_EnsureIndexes_RejectsDuplicateState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	expires := time.Now().UTC().Add(10 * time.Minute)
	if err := store.Save(ctx, "state-abc", "", expires); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "state-abc", "", expires); err == nil {
		t.Fatal("expected duplicate state to be rejected")
	}
}
