// internal/app/features/assignments/handler.go
package assignments

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/trusteehub/cams/internal/app/store/audit"
	"github.com/trusteehub/cams/internal/app/system/auditlog"
	"github.com/trusteehub/cams/internal/app/system/auth"
	"github.com/trusteehub/cams/internal/app/system/respond"
	"github.com/trusteehub/cams/internal/domain/cerrs"
	"github.com/trusteehub/cams/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the case-assignment API.
type Handler struct {
	Workflow *Workflow
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler creates a new assignments handler.
func NewHandler(workflow *Workflow, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Workflow: workflow, Audit: auditLogger, Log: logger}
}

// createRequest is the JSON body for POST /api/case-assignments.
type createRequest struct {
	CaseID    string                 `json:"caseId"`
	Attorneys []models.UserReference `json:"attorneyList"`
	Role      string                 `json:"role"`
}

// createResponse reports the ids of the assignment records created.
type createResponse struct {
	CreatedIDs []string `json:"createdIds"`
}

// ServeCreate handles POST /api/case-assignments. The request body names
// the complete desired attorney roster for the case; assignments not in
// the roster are closed out.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, h.Log, cerrs.Unauthorized(moduleName, "session required"))
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, h.Log, cerrs.BadRequest(moduleName, "invalid request body"))
		return
	}
	if req.CaseID == "" {
		respond.Error(w, h.Log, cerrs.BadRequest(moduleName, "required parameter caseId is absent"))
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		respond.Error(w, h.Log, cerrs.BadRequest(moduleName, "invalid role for the attorney assignment"))
		return
	}
	for _, a := range req.Attorneys {
		if a.ID == "" || a.Name == "" {
			respond.Error(w, h.Log, cerrs.BadRequest(moduleName, "attorney entries require both id and name"))
			return
		}
	}

	created, err := h.Workflow.CreateTrialAttorneyAssignments(r.Context(), sess, req.CaseID, req.Attorneys, role)
	if err != nil {
		if cerrs.IsUnauthorized(err) {
			h.Audit.LogRequest(r, audit.Event{
				Category:      audit.CategoryWorkflow,
				EventType:     audit.EventAssignmentsDenied,
				ActorID:       sess.ID,
				ActorName:     sess.Name,
				CaseID:        req.CaseID,
				FailureReason: err.Error(),
			})
		}
		respond.Error(w, h.Log, err)
		return
	}

	h.Audit.LogRequest(r, audit.Event{
		Category:  audit.CategoryWorkflow,
		EventType: audit.EventAssignmentsReconciled,
		ActorID:   sess.ID,
		ActorName: sess.Name,
		CaseID:    req.CaseID,
		Success:   true,
		Details:   map[string]string{"role": string(role)},
	})
	respond.JSON(w, http.StatusCreated, createResponse{CreatedIDs: created})
}

// ServeListByCase handles GET /api/case-assignments/case/{caseID}.
func (h *Handler) ServeListByCase(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	if caseID == "" {
		respond.Error(w, h.Log, cerrs.BadRequest(moduleName, "required parameter caseId is absent"))
		return
	}
	out, err := h.Workflow.FindAssignmentsByCase(r.Context(), caseID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if out == nil {
		out = []models.CaseAssignment{}
	}
	respond.JSON(w, http.StatusOK, out)
}

// caseLoadResponse is the payload for the caseload endpoint.
type caseLoadResponse struct {
	UserID   string `json:"userId"`
	CaseLoad int    `json:"caseLoad"`
}

// ServeCaseLoad handles GET /api/case-assignments/user/{userID}/caseload.
func (h *Handler) ServeCaseLoad(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respond.Error(w, h.Log, cerrs.BadRequest(moduleName, "required parameter userId is absent"))
		return
	}
	n, err := h.Workflow.GetCaseLoad(r.Context(), userID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, caseLoadResponse{UserID: userID, CaseLoad: n})
}
