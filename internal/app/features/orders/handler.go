// internal/app/features/orders/handler.go
package orders

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

// Handler serves the consolidation order API.
type Handler struct {
	Workflow *Workflow
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler creates a new orders handler.
func NewHandler(workflow *Workflow, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Workflow: workflow, Audit: auditLogger, Log: logger}
}

// ServeList handles GET /api/consolidation-orders.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, h.Log, cerrs.Unauthorized(moduleName, "session required"))
		return
	}
	out, err := h.Workflow.ListOrders(r.Context(), sess)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if out == nil {
		out = []models.ConsolidationOrder{}
	}
	respond.JSON(w, http.StatusOK, out)
}

// approveRequest is the JSON body for the approval endpoint.
type approveRequest struct {
	LeadCaseID      string   `json:"leadCaseId"`
	ApprovedCaseIDs []string `json:"approvedCaseIds"`
}

// ServeApprove handles POST /api/consolidation-orders/{orderID}/approve.
func (h *Handler) ServeApprove(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, h.Log, cerrs.Unauthorized(moduleName, "session required"))
		return
	}

	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, h.Log, cerrs.BadRequest(moduleName, "invalid request body"))
		return
	}

	orderID := chi.URLParam(r, "orderID")
	result, err := h.Workflow.ApproveConsolidation(r.Context(), sess, ApprovalRequest{
		OrderID:         orderID,
		LeadCaseID:      req.LeadCaseID,
		ApprovedCaseIDs: req.ApprovedCaseIDs,
	})
	if err != nil {
		h.auditAction(r, sess, audit.EventConsolidationConflict, orderID, err)
		respond.Error(w, h.Log, err)
		return
	}

	h.Audit.LogRequest(r, audit.Event{
		Category:  audit.CategoryWorkflow,
		EventType: audit.EventConsolidationApproved,
		ActorID:   sess.ID,
		ActorName: sess.Name,
		CaseID:    req.LeadCaseID,
		Success:   true,
		Details:   map[string]string{"order_id": orderID},
	})
	respond.JSON(w, http.StatusOK, result)
}

// rejectRequest is the JSON body for the rejection endpoint.
type rejectRequest struct {
	RejectedCaseIDs []string `json:"rejectedCaseIds"`
	Reason          string   `json:"reason"`
}

// ServeReject handles POST /api/consolidation-orders/{orderID}/reject.
func (h *Handler) ServeReject(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, h.Log, cerrs.Unauthorized(moduleName, "session required"))
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, h.Log, cerrs.BadRequest(moduleName, "invalid request body"))
		return
	}

	orderID := chi.URLParam(r, "orderID")
	result, err := h.Workflow.RejectConsolidation(r.Context(), sess, RejectionRequest{
		OrderID:         orderID,
		RejectedCaseIDs: req.RejectedCaseIDs,
		Reason:          req.Reason,
	})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.Audit.LogRequest(r, audit.Event{
		Category:  audit.CategoryWorkflow,
		EventType: audit.EventConsolidationRejected,
		ActorID:   sess.ID,
		ActorName: sess.Name,
		Success:   true,
		Details:   map[string]string{"order_id": orderID},
	})
	respond.JSON(w, http.StatusOK, result)
}

// auditAction records a failed order action when the failure is a domain
// conflict; internal errors are left to the error logger.
func (h *Handler) auditAction(r *http.Request, sess *auth.SessionUser, eventType, orderID string, err error) {
	if !cerrs.IsBadRequest(err) {
		return
	}
	h.Audit.LogRequest(r, audit.Event{
		Category:      audit.CategoryWorkflow,
		EventType:     eventType,
		ActorID:       sess.ID,
		ActorName:     sess.Name,
		FailureReason: err.Error(),
		Details:       map[string]string{"order_id": orderID},
	})
}
