package assignments_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/trusteehub/cams/internal/app/features/assignments"
	"github.com/trusteehub/cams/internal/app/system/auditlog"
	"github.com/trusteehub/cams/internal/app/system/auth"
	"github.com/trusteehub/cams/internal/domain/models"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, cases *fakeCasesRepo, repo *fakeAssignmentRepo) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	sm, err := auth.NewSessionManager("0123456789abcdef0123456789abcdef", "cams_session", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	audit := auditlog.New(nil, logger, auditlog.Config{Workflow: auditlog.ModeLog})
	w := assignments.NewWorkflow(cases, repo, logger)
	h := assignments.NewHandler(w, audit, logger)
	return assignments.Routes(h, sm)
}

func TestServeCreate(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-12345", "081")
	repo := newFakeAssignmentRepo()
	router := newTestRouter(t, cases, repo)

	body := `{"caseId":"081-23-12345","attorneyList":[{"id":"atty-1","name":"Jane Counsel"}],"role":"TrialAttorney"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = auth.WithTestUser(req, manager("081"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "createdIds") {
		t.Errorf("response missing createdIds: %s", rec.Body.String())
	}
	if names := activeNames(t, repo, "081-23-12345"); !names["Jane Counsel"] {
		t.Errorf("assignment not persisted, roster = %v", names)
	}
}

func TestServeCreate_Unauthenticated(t *testing.T) {
	cases := newFakeCasesRepo()
	repo := newFakeAssignmentRepo()
	router := newTestRouter(t, cases, repo)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want 401", rec.Code)
	}
}

func TestServeCreate_MissingRole(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-12345", "081")
	repo := newFakeAssignmentRepo()
	router := newTestRouter(t, cases, repo)

	attorney := &auth.SessionUser{
		ID:            "atty-9",
		Name:          "No Manager",
		Roles:         []models.CamsRole{models.RoleTrialAttorney},
		DivisionCodes: []string{"081"},
	}
	body := `{"caseId":"081-23-12345","attorneyList":[{"id":"atty-1","name":"Jane Counsel"}],"role":"TrialAttorney"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = auth.WithTestUser(req, attorney)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rec.Code)
	}
	if repo.creates != 0 {
		t.Error("forbidden request must not create assignments")
	}
}

func TestServeCreate_BadRequests(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-12345", "081")

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"caseId":`},
		{"missing case id", `{"attorneyList":[{"id":"a","name":"A"}],"role":"TrialAttorney"}`},
		{"unknown role", `{"caseId":"081-23-12345","attorneyList":[{"id":"a","name":"A"}],"role":"Wizard"}`},
		{"attorney missing name", `{"caseId":"081-23-12345","attorneyList":[{"id":"a"}],"role":"TrialAttorney"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeAssignmentRepo()
			router := newTestRouter(t, cases, repo)
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			req = auth.WithTestUser(req, manager("081"))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want 400", rec.Code)
			}
			if repo.creates != 0 {
				t.Error("bad request must not create assignments")
			}
		})
	}
}

func TestServeCreate_UnknownCase(t *testing.T) {
	cases := newFakeCasesRepo()
	repo := newFakeAssignmentRepo()
	router := newTestRouter(t, cases, repo)

	body := `{"caseId":"081-99-99999","attorneyList":[{"id":"atty-1","name":"Jane Counsel"}],"role":"TrialAttorney"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = auth.WithTestUser(req, manager("081"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestServeListByCase(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-12345", "081")
	repo := newFakeAssignmentRepo()
	router := newTestRouter(t, cases, repo)

	body := `{"caseId":"081-23-12345","attorneyList":[{"id":"atty-1","name":"Jane Counsel"}],"role":"TrialAttorney"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = auth.WithTestUser(req, manager("081"))
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/case/081-23-12345", nil)
	req = auth.WithTestUser(req, manager("081"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Jane Counsel") {
		t.Errorf("response missing assignment: %s", rec.Body.String())
	}
}

func TestServeCaseLoad(t *testing.T) {
	cases := newFakeCasesRepo()
	cases.addCase("081-23-12345", "081")
	repo := newFakeAssignmentRepo()
	router := newTestRouter(t, cases, repo)

	body := `{"caseId":"081-23-12345","attorneyList":[{"id":"atty-1","name":"Jane Counsel"}],"role":"TrialAttorney"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req = auth.WithTestUser(req, manager("081"))
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/user/atty-1/caseload", nil)
	req = auth.WithTestUser(req, manager("081"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"caseLoad":1`) {
		t.Errorf("unexpected caseload payload: %s", rec.Body.String())
	}
}
