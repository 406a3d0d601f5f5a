package assignments_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/trusteehub/cams/internal/app/features/assignments"
	"github.com/trusteehub/cams/internal/app/system/auth"
	"github.com/trusteehub/cams/internal/domain/cerrs"
	"github.com/trusteehub/cams/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// fakeAssignmentRepo is an in-memory AssignmentRepository that counts
// writes so tests can assert on idempotence.
type fakeAssignmentRepo struct {
	byID    map[string]models.CaseAssignment
	creates int
	updates int
	failOn  string // case id whose writes fail
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{byID: make(map[string]models.CaseAssignment)}
}

func (f *fakeAssignmentRepo) FindActiveByCaseID(_ context.Context, caseID string) ([]models.CaseAssignment, error) {
	var out []models.CaseAssignment
	for _, a := range f.byID {
		if a.CaseID == caseID && a.Active() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) FindActiveByAssignee(_ context.Context, userID string) ([]models.CaseAssignment, error) {
	var out []models.CaseAssignment
	for _, a := range f.byID {
		if a.UserID == userID && a.Active() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) Create(_ context.Context, a models.CaseAssignment) (string, error) {
	if a.CaseID == f.failOn {
		return "", errors.New("write unavailable")
	}
	f.creates++
	a.ID = primitive.NewObjectID()
	id := a.ID.Hex()
	f.byID[id] = a
	return id, nil
}

func (f *fakeAssignmentRepo) Update(_ context.Context, a models.CaseAssignment) error {
	if a.CaseID == f.failOn {
		return errors.New("write unavailable")
	}
	f.updates++
	f.byID[a.ID.Hex()] = a
	return nil
}

// fakeCasesRepo serves case summaries and consolidation references and
// records assignment history writes.
type fakeCasesRepo struct {
	summaries  map[string]models.CaseSummary
	references map[string][]models.ConsolidationReference
	history    []models.AssignmentHistory
}

func newFakeCasesRepo() *fakeCasesRepo {
	return &fakeCasesRepo{
		summaries:  make(map[string]models.CaseSummary),
		references: make(map[string][]models.ConsolidationReference),
	}
}

func (f *fakeCasesRepo) GetCaseSummary(_ context.Context, caseID string) (models.CaseSummary, error) {
	s, ok := f.summaries[caseID]
	if !ok {
		return models.CaseSummary{}, mongo.ErrNoDocuments
	}
	return s, nil
}

func (f *fakeCasesRepo) GetConsolidation(_ context.Context, caseID string) ([]models.ConsolidationReference, error) {
	return f.references[caseID], nil
}

func (f *fakeCasesRepo) CreateAssignmentHistory(_ context.Context, h models.AssignmentHistory) error {
	f.history = append(f.history, h)
	return nil
}

func (f *fakeCasesRepo) addCase(caseID, division string) {
	f.summaries[caseID] = models.CaseSummary{
		CaseID:            caseID,
		CaseTitle:         "In re " + caseID,
		Chapter:           "15",
		CourtDivisionCode: division,
	}
}

func (f *fakeCasesRepo) addChild(leadID, childID string, ctype models.ConsolidationType) {
	f.references[leadID] = append(f.references[leadID], models.ConsolidationReference{
		CaseID:            leadID,
		DocumentType:      models.DocTypeConsolidationFrom,
		ConsolidationType: ctype,
		OtherCase:         f.summaries[childID],
	})
	f.references[childID] = append(f.references[childID], models.ConsolidationReference{
		CaseID:            childID,
		DocumentType:      models.DocTypeConsolidationTo,
		ConsolidationType: ctype,
		OtherCase:         f.summaries[leadID],
	})
}

func manager(divisions ...string) *auth.SessionUser {
	return &auth.SessionUser{
		ID:            "mgr-1",
		Name:          "Casey Manager",
		Roles:         []models.CamsRole{models.RoleCaseAssignmentManager},
		DivisionCodes: divisions,
	}
}

func activeNames(t *testing.T, repo *fakeAssignmentRepo, caseID string) map[string]bool {
	t.Helper()
	active, err := repo.FindActiveByCaseID(context.Background(), caseID)
	if err != nil {
		t.Fatalf("FindActiveByCaseID failed: %v", err)
	}
	names := make(map[string]bool, len(active))
	for _, a := range active {
		names[a.Name] = true
	}
	return names
}

func TestCreateTrialAttorneyAssignments_NewRoster(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-12345", "081")
	repo := newFakeAssignmentRepo()
	w := assignments.NewWorkflow(cases, repo, zap.NewNop())

	roster := []models.UserReference{
		{ID: "atty-1", Name: "Jane Counsel"},
		{ID: "atty-2", Name: "Rob Barrister"},
	}
	created, err := w.CreateTrialAttorneyAssignments(context.Background(), manager("081"),
		"081-23-12345", roster, models.RoleTrialAttorney)
	if err != nil {
		t.Fatalf("CreateTrialAttorneyAssignments failed: %v", err)
	}
	if len(created) != 2 {
		t.Errorf("created ids: got %d, want 2", len(created))
	}

	names := activeNames(t, repo, "081-23-12345")
	if !names["Jane Counsel"] || !names["Rob Barrister"] || len(names) != 2 {
		t.Errorf("active roster = %v, want Jane Counsel and Rob Barrister", names)
	}
	if len(cases.history) != 1 {
		t.Fatalf("history records: got %d, want 1", len(cases.history))
	}
	if len(cases.history[0].Before) != 0 || len(cases.history[0].After) != 2 {
		t.Errorf("history before/after = %d/%d, want 0/2",
			len(cases.history[0].Before), len(cases.history[0].After))
	}
}

func TestCreateTrialAttorneyAssignments_DeduplicatesRoster(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-12345", "081")
	repo := newFakeAssignmentRepo()
	w := assignments.NewWorkflow(cases, repo, zap.NewNop())

	roster := []models.UserReference{
		{ID: "atty-1", Name: "Jane Counsel"},
		{ID: "atty-1", Name: "Jane Counsel"},
		{ID: "atty-1", Name: "Jane Counsel"},
	}
	created, err := w.CreateTrialAttorneyAssignments(context.Background(), manager("081"),
		"081-23-12345", roster, models.RoleTrialAttorney)
	if err != nil {
		t.Fatalf("CreateTrialAttorneyAssignments failed: %v", err)
	}
	if len(created) != 1 {
		t.Errorf("created ids: got %d, want 1 after dedupe", len(created))
	}
}

func TestCreateTrialAttorneyAssignments_Reconciles(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-12345", "081")
	repo := newFakeAssignmentRepo()
	w := assignments.NewWorkflow(cases, repo, zap.NewNop())
	ctx := context.Background()
	sess := manager("081")

	first := []models.UserReference{
		{ID: "atty-1", Name: "Jane Counsel"},
		{ID: "atty-2", Name: "Rob Barrister"},
	}
	if _, err := w.CreateTrialAttorneyAssignments(ctx, sess, "081-23-12345", first, models.RoleTrialAttorney); err != nil {
		t.Fatalf("first reconciliation failed: %v", err)
	}

	// Keep Jane, drop Rob, add Ana.
	second := []models.UserReference{
		{ID: "atty-1", Name: "Jane Counsel"},
		{ID: "atty-3", Name: "Ana Esquire"},
	}
	createsBefore := repo.creates
	if _, err := w.CreateTrialAttorneyAssignments(ctx, sess, "081-23-12345", second, models.RoleTrialAttorney); err != nil {
		t.Fatalf("second reconciliation failed: %v", err)
	}

	names := activeNames(t, repo, "081-23-12345")
	if !names["Jane Counsel"] || !names["Ana Esquire"] || names["Rob Barrister"] || len(names) != 2 {
		t.Errorf("active roster = %v, want Jane Counsel and Ana Esquire", names)
	}
	// Jane's record must have been left alone, not re-created.
	if repo.creates != createsBefore+1 {
		t.Errorf("creates during second pass: got %d, want 1", repo.creates-createsBefore)
	}
	if repo.updates != 1 {
		t.Errorf("updates: got %d, want 1 (Rob unassigned)", repo.updates)
	}
}

func TestCreateTrialAttorneyAssignments_UnassignsOtherRoles(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-12345", "081")
	repo := newFakeAssignmentRepo()
	w := assignments.NewWorkflow(cases, repo, zap.NewNop())
	ctx := context.Background()

	// An active assignment held in a different role than the one being
	// reconciled. It has no matching (name, role) entry in the roster, so
	// the reconciliation must close it out.
	if _, err := repo.Create(ctx, models.CaseAssignment{
		DocumentType: models.DocTypeAssignment,
		CaseID:       "081-23-12345",
		UserID:       "para-1",
		Name:         "Pat Paralegal",
		Role:         models.RoleCaseAssignmentManager,
		AssignedOn:   time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seeding assignment failed: %v", err)
	}

	roster := []models.UserReference{{ID: "atty-1", Name: "Jane Counsel"}}
	if _, err := w.CreateTrialAttorneyAssignments(ctx, manager("081"),
		"081-23-12345", roster, models.RoleTrialAttorney); err != nil {
		t.Fatalf("CreateTrialAttorneyAssignments failed: %v", err)
	}

	names := activeNames(t, repo, "081-23-12345")
	if names["Pat Paralegal"] {
		t.Error("assignment held in another role must be unassigned")
	}
	if !names["Jane Counsel"] || len(names) != 1 {
		t.Errorf("active roster = %v, want Jane Counsel only", names)
	}
	if repo.updates != 1 {
		t.Errorf("updates: got %d, want 1", repo.updates)
	}
}

func TestCreateTrialAttorneyAssignments_Idempotent(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-12345", "081")
	repo := newFakeAssignmentRepo()
	w := assignments.NewWorkflow(cases, repo, zap.NewNop())
	ctx := context.Background()
	sess := manager("081")

	roster := []models.UserReference{{ID: "atty-1", Name: "Jane Counsel"}}
	if _, err := w.CreateTrialAttorneyAssignments(ctx, sess, "081-23-12345", roster, models.RoleTrialAttorney); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	creates, updates := repo.creates, repo.updates

	created, err := w.CreateTrialAttorneyAssignments(ctx, sess, "081-23-12345", roster, models.RoleTrialAttorney)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if len(created) != 0 {
		t.Errorf("second call created %d assignments, want 0", len(created))
	}
	if repo.creates != creates || repo.updates != updates {
		t.Errorf("second call issued writes: creates %d->%d updates %d->%d",
			creates, repo.creates, updates, repo.updates)
	}
}

func TestCreateTrialAttorneyAssignments_CascadesToAdministrativeChildren(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-00001", "081")
	cases.addCase("081-23-00002", "081")
	cases.addCase("081-23-00003", "081")
	cases.addChild("081-23-00001", "081-23-00002", models.ConsolidationAdministrative)
	cases.addChild("081-23-00001", "081-23-00003", models.ConsolidationAdministrative)
	repo := newFakeAssignmentRepo()
	w := assignments.NewWorkflow(cases, repo, zap.NewNop())

	roster := []models.UserReference{{ID: "atty-1", Name: "Jane Counsel"}}
	created, err := w.CreateTrialAttorneyAssignments(context.Background(), manager("081"),
		"081-23-00001", roster, models.RoleTrialAttorney)
	if err != nil {
		t.Fatalf("CreateTrialAttorneyAssignments failed: %v", err)
	}
	if len(created) != 3 {
		t.Errorf("created ids: got %d, want 3 (lead plus two children)", len(created))
	}
	for _, caseID := range []string{"081-23-00001", "081-23-00002", "081-23-00003"} {
		names := activeNames(t, repo, caseID)
		if !names["Jane Counsel"] || len(names) != 1 {
			t.Errorf("case %s roster = %v, want exactly Jane Counsel", caseID, names)
		}
	}
	if len(cases.history) != 3 {
		t.Errorf("history records: got %d, want 3", len(cases.history))
	}
}

func TestCreateTrialAttorneyAssignments_SubstantiveDoesNotCascade(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-00001", "081")
	cases.addCase("081-23-00002", "081")
	cases.addChild("081-23-00001", "081-23-00002", models.ConsolidationSubstantive)
	repo := newFakeAssignmentRepo()
	w := assignments.NewWorkflow(cases, repo, zap.NewNop())

	roster := []models.UserReference{{ID: "atty-1", Name: "Jane Counsel"}}
	if _, err := w.CreateTrialAttorneyAssignments(context.Background(), manager("081"),
		"081-23-00001", roster, models.RoleTrialAttorney); err != nil {
		t.Fatalf("CreateTrialAttorneyAssignments failed: %v", err)
	}
	if names := activeNames(t, repo, "081-23-00002"); len(names) != 0 {
		t.Errorf("substantive child roster = %v, want empty", names)
	}
}

func TestCreateTrialAttorneyAssignments_MissingRole(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-12345", "081")
	repo := newFakeAssignmentRepo()
	w := assignments.NewWorkflow(cases, repo, zap.NewNop())

	sess := &auth.SessionUser{
		ID:            "atty-9",
		Name:          "No Manager",
		Roles:         []models.CamsRole{models.RoleTrialAttorney},
		DivisionCodes: []string{"081"},
	}
	_, err := w.CreateTrialAttorneyAssignments(context.Background(), sess,
		"081-23-12345", []models.UserReference{{ID: "atty-1", Name: "Jane Counsel"}}, models.RoleTrialAttorney)
	if !cerrs.IsUnauthorized(err) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if repo.creates != 0 || repo.updates != 0 || len(cases.history) != 0 {
		t.Error("unauthorized call must perform zero writes")
	}
}

func TestCreateTrialAttorneyAssignments_ProcessRoleGrantsManager(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-12345", "081")
	repo := newFakeAssignmentRepo()
	w := assignments.NewWorkflow(cases, repo, zap.NewNop())

	verifier := &auth.SessionUser{
		ID:            "dv-1",
		Name:          "Dana Verifier",
		Roles:         []models.CamsRole{models.RoleDataVerifier},
		DivisionCodes: []string{"081"},
	}
	_, err := w.CreateTrialAttorneyAssignments(context.Background(), verifier,
		"081-23-12345", []models.UserReference{{ID: "atty-1", Name: "Jane Counsel"}},
		models.RoleTrialAttorney, models.RoleCaseAssignmentManager)
	if err != nil {
		t.Fatalf("expected process role to authorize the call, got %v", err)
	}
}

func TestCreateTrialAttorneyAssignments_WrongOffice(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-12345", "081")
	repo := newFakeAssignmentRepo()
	w := assignments.NewWorkflow(cases, repo, zap.NewNop())

	_, err := w.CreateTrialAttorneyAssignments(context.Background(), manager("101"),
		"081-23-12345", []models.UserReference{{ID: "atty-1", Name: "Jane Counsel"}}, models.RoleTrialAttorney)
	if !cerrs.IsUnauthorized(err) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if repo.creates != 0 || len(cases.history) != 0 {
		t.Error("unauthorized call must perform zero writes")
	}
}

func TestCreateTrialAttorneyAssignments_UnknownCase(t *testing.T) {
	cases := newFakeCasesRepo()
	repo := newFakeAssignmentRepo()
	w := assignments.NewWorkflow(cases, repo, zap.NewNop())

	_, err := w.CreateTrialAttorneyAssignments(context.Background(), manager("081"),
		"081-99-99999", []models.UserReference{{ID: "atty-1", Name: "Jane Counsel"}}, models.RoleTrialAttorney)
	if !cerrs.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestCreateTrialAttorneyAssignments_ChildFailureAbortsCascade(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-00001", "081")
	cases.addCase("081-23-00002", "081")
	cases.addCase("081-23-00003", "081")
	cases.addChild("081-23-00001", "081-23-00002", models.ConsolidationAdministrative)
	cases.addChild("081-23-00001", "081-23-00003", models.ConsolidationAdministrative)
	repo := newFakeAssignmentRepo()
	repo.failOn = "081-23-00002"
	w := assignments.NewWorkflow(cases, repo, zap.NewNop())

	roster := []models.UserReference{{ID: "atty-1", Name: "Jane Counsel"}}
	_, err := w.CreateTrialAttorneyAssignments(context.Background(), manager("081"),
		"081-23-00001", roster, models.RoleTrialAttorney)
	if err == nil {
		t.Fatal("expected the child write failure to surface")
	}
	// Fail-fast: the second child is never touched.
	if names := activeNames(t, repo, "081-23-00003"); len(names) != 0 {
		t.Errorf("case after failed sibling got roster %v, want untouched", names)
	}
}

func TestGetCaseLoad(t *testing.T) {
	cases := newFakeCasesRepo()
	repo := newFakeAssignmentRepo()
	w := assignments.NewWorkflow(cases, repo, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		caseID := fmt.Sprintf("081-23-0000%d", i)
		if _, err := repo.Create(ctx, models.CaseAssignment{
			CaseID:     caseID,
			UserID:     "atty-1",
			Name:       "Jane Counsel",
			Role:       models.RoleTrialAttorney,
			AssignedOn: time.Now(),
		}); err != nil {
			t.Fatalf("seed create failed: %v", err)
		}
	}

	n, err := w.GetCaseLoad(ctx, "atty-1")
	if err != nil {
		t.Fatalf("GetCaseLoad failed: %v", err)
	}
	if n != 3 {
		t.Errorf("caseload: got %d, want 3", n)
	}
}
