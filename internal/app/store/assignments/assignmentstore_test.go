package assignments_test

import (
	"testing"
	"time"

	"github.com/trusteehub/cams/internal/app/store/assignments"
	"github.com/trusteehub/cams/internal/domain/models"
	"github.com/trusteehub/cams/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignments.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id, err := store.Create(ctx, models.CaseAssignment{
		CaseID: "081-23-12345",
		UserID: "attorney-1",
		Name:   "Jane Doe",
		Role:   models.RoleTrialAttorney,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id == "" {
		t.Error("expected a non-empty assignment id")
	}
}

func TestStore_Create_DefaultsAssignedOnAndDocType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignments.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.CaseAssignment{
		CaseID: "081-23-12345",
		UserID: "attorney-1",
		Name:   "Jane Doe",
		Role:   models.RoleTrialAttorney,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	active, err := store.FindActiveByCaseID(ctx, "081-23-12345")
	if err != nil {
		t.Fatalf("FindActiveByCaseID failed: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active assignment, got %d", len(active))
	}
	if active[0].AssignedOn.IsZero() {
		t.Error("expected AssignedOn to be defaulted")
	}
	if active[0].DocumentType != models.DocTypeAssignment {
		t.Errorf("expected document type %q, got %q", models.DocTypeAssignment, active[0].DocumentType)
	}
}

func TestStore_FindActiveByCaseID_ExcludesUnassigned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignments.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.CaseAssignment{
		CaseID: "081-23-12345",
		UserID: "attorney-1",
		Name:   "Jane Doe",
		Role:   models.RoleTrialAttorney,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.CaseAssignment{
		CaseID: "081-23-12345",
		UserID: "attorney-2",
		Name:   "Rob Roe",
		Role:   models.RoleTrialAttorney,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	active, err := store.FindActiveByCaseID(ctx, "081-23-12345")
	if err != nil {
		t.Fatalf("FindActiveByCaseID failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active assignments, got %d", len(active))
	}

	// Unassign one and verify it drops out of the active set.
	unassigned := active[1]
	now := time.Now().UTC()
	unassigned.UnassignedOn = &now
	if err := store.Update(ctx, unassigned); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	active, err = store.FindActiveByCaseID(ctx, "081-23-12345")
	if err != nil {
		t.Fatalf("FindActiveByCaseID failed: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active assignment after unassign, got %d", len(active))
	}
	if active[0].UserID != "attorney-1" {
		t.Errorf("expected attorney-1 to remain active, got %q", active[0].UserID)
	}
}

func TestStore_FindActiveByCaseID_SortsByAssignedOn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignments.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, userID := range []string{"attorney-3", "attorney-1", "attorney-2"} {
		if _, err := store.Create(ctx, models.CaseAssignment{
			CaseID:     "081-23-12345",
			UserID:     userID,
			Name:       userID,
			Role:       models.RoleTrialAttorney,
			AssignedOn: base.Add(time.Duration(2-i) * time.Hour),
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	active, err := store.FindActiveByCaseID(ctx, "081-23-12345")
	if err != nil {
		t.Fatalf("FindActiveByCaseID failed: %v", err)
	}
	if len(active) != 3 {
		t.Fatalf("expected 3 active assignments, got %d", len(active))
	}
	for i := 1; i < len(active); i++ {
		if active[i].AssignedOn.Before(active[i-1].AssignedOn) {
			t.Fatal("expected assignments ordered oldest first")
		}
	}
}

func TestStore_FindActiveByAssignee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignments.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, caseID := range []string{"081-23-11111", "081-23-22222"} {
		if _, err := store.Create(ctx, models.CaseAssignment{
			CaseID: caseID,
			UserID: "attorney-1",
			Name:   "Jane Doe",
			Role:   models.RoleTrialAttorney,
		}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if _, err := store.Create(ctx, models.CaseAssignment{
		CaseID: "081-23-33333",
		UserID: "attorney-2",
		Name:   "Rob Roe",
		Role:   models.RoleTrialAttorney,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	mine, err := store.FindActiveByAssignee(ctx, "attorney-1")
	if err != nil {
		t.Fatalf("FindActiveByAssignee failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 assignments for attorney-1, got %d", len(mine))
	}
	for _, a := range mine {
		if a.UserID != "attorney-1" {
			t.Errorf("unexpected assignee %q", a.UserID)
		}
	}
}

func TestStore_EnsureIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignments.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}
	// Idempotent on a second call.
	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes (second call) failed: %v", err)
	}
}
