// internal/app/features/orders/workflow.go

// Package orders implements the consolidation order workflow: reviewing
// pending court orders that propose consolidating child cases under a lead
// case, approving or rejecting them (split semantics for partial action),
// materializing lead/child references, recording audit history, and
// propagating the lead case's attorney roster on approval.
package orders

import (
	"context"
	"errors"
	"time"

	"github.com/trusteehub/cams/internal/app/system/auth"
	"github.com/trusteehub/cams/internal/app/system/htmlsanitize"
	"github.com/trusteehub/cams/internal/app/system/metrics"
	"github.com/trusteehub/cams/internal/domain/cerrs"
	"github.com/trusteehub/cams/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const moduleName = "consolidation-orders"

// OrdersRepository is the persistence contract for consolidation orders.
type OrdersRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.ConsolidationOrder, error)
	Create(ctx context.Context, o models.ConsolidationOrder) (models.ConsolidationOrder, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Search(ctx context.Context, divisionCodes []string) ([]models.ConsolidationOrder, error)
}

// CasesRepository is the slice of the case store the workflow needs.
type CasesRepository interface {
	GetCaseSummary(ctx context.Context, caseID string) (models.CaseSummary, error)
	GetConsolidation(ctx context.Context, caseID string) ([]models.ConsolidationReference, error)
	CreateConsolidationFrom(ctx context.Context, ref models.ConsolidationReference) error
	CreateConsolidationTo(ctx context.Context, ref models.ConsolidationReference) error
	CreateConsolidationHistory(ctx context.Context, h models.ConsolidationHistory) error
	ListConsolidationHistory(ctx context.Context, caseID string) ([]models.ConsolidationHistory, error)
}

// AssignmentsWorkflow propagates the lead case's attorney roster onto
// approved children. Satisfied by the case-assignment workflow.
type AssignmentsWorkflow interface {
	CreateTrialAttorneyAssignments(ctx context.Context, sess *auth.SessionUser, caseID string, assignees []models.UserReference, role models.CamsRole, processRoles ...models.CamsRole) ([]string, error)
	FindAssignmentsByCase(ctx context.Context, caseID string) ([]models.CaseAssignment, error)
}

// Workflow acts on pending consolidation orders. All persistence calls are
// sequential; validation runs before any write, but a repository failure
// mid-approval leaves earlier writes in place.
type Workflow struct {
	orders      OrdersRepository
	cases       CasesRepository
	assignments AssignmentsWorkflow
	log         *zap.Logger
	now         func() time.Time
}

// NewWorkflow builds the consolidation order workflow.
func NewWorkflow(orders OrdersRepository, cases CasesRepository, assignments AssignmentsWorkflow, logger *zap.Logger) *Workflow {
	return &Workflow{orders: orders, cases: cases, assignments: assignments, log: logger, now: time.Now}
}

// ApprovalRequest names the subset of a pending order's children to approve
// and the lead case they consolidate under.
type ApprovalRequest struct {
	OrderID         string
	LeadCaseID      string
	ApprovedCaseIDs []string
}

// RejectionRequest names the subset of a pending order's children to reject
// and the reviewer's reason.
type RejectionRequest struct {
	OrderID         string
	RejectedCaseIDs []string
	Reason          string
}

// ListOrders returns the consolidation orders for the divisions the session
// user can see, oldest order date first.
func (w *Workflow) ListOrders(ctx context.Context, sess *auth.SessionUser) ([]models.ConsolidationOrder, error) {
	out, err := w.orders.Search(ctx, sess.DivisionCodes)
	if err != nil {
		return nil, cerrs.Wrap(moduleName, "failed to search consolidation orders", err)
	}
	return out, nil
}

// ApproveConsolidation approves the named children of a pending order under
// the lead case.
//
// The order splits when the approval covers a strict subset of its
// children: a residual pending order is created for the remainder, then the
// original document is deleted and a new approved order is created. Per
// approved child the workflow writes a CONSOLIDATION_TO reference on the
// child, a CONSOLIDATION_FROM reference on the lead, and a consolidation
// history record; the lead case's own history record is written after every
// child so lead history never predates a child update. Finally the lead
// case's active attorney roster is assigned onto each approved child.
//
// Returns the resulting orders, approved first, residual pending second
// when the order split.
func (w *Workflow) ApproveConsolidation(ctx context.Context, sess *auth.SessionUser, req ApprovalRequest) ([]models.ConsolidationOrder, error) {
	if !sess.HasRole(models.RoleDataVerifier) {
		return nil, cerrs.Unauthorized(moduleName, "user does not have appropriate access to approve consolidations")
	}
	if req.LeadCaseID == "" {
		return nil, cerrs.BadRequest(moduleName, "required parameter leadCaseId is absent")
	}

	order, included, remainder, err := w.loadAndPartition(ctx, req.OrderID, req.ApprovedCaseIDs)
	if err != nil {
		return nil, err
	}

	lead, err := w.cases.GetCaseSummary(ctx, req.LeadCaseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cerrs.NotFound(moduleName, "lead case "+req.LeadCaseID+" not found")
		}
		return nil, cerrs.Wrap(moduleName, "failed to look up lead case "+req.LeadCaseID, err)
	}

	// Validate-then-commit: every conflict check runs before the first
	// write, so a rejected approval mutates nothing.
	if err := w.checkLeadNotChild(ctx, lead.CaseID); err != nil {
		return nil, err
	}
	for _, child := range included {
		if child.CaseID == lead.CaseID {
			continue
		}
		if err := w.checkChildUnconsolidated(ctx, child.CaseID, lead.CaseID); err != nil {
			return nil, err
		}
	}

	now := w.now().UTC()
	actor := sess.Reference()

	result, err := w.splitOrder(ctx, order, included, remainder, models.OrderApproved, "", &lead, now, actor)
	if err != nil {
		metrics.WorkflowErrors.WithLabelValues(moduleName).Inc()
		return nil, err
	}

	approvedSummaries := make([]models.CaseSummary, 0, len(included))
	for _, child := range included {
		if child.CaseID == lead.CaseID {
			continue
		}
		approvedSummaries = append(approvedSummaries, child.CaseSummary)
		if err := w.writeChildConsolidation(ctx, order, child, lead, now, actor); err != nil {
			metrics.WorkflowErrors.WithLabelValues(moduleName).Inc()
			return result, err
		}
	}

	// Lead history is always the last history write.
	if err := w.writeLeadHistory(ctx, lead, approvedSummaries, now, actor); err != nil {
		metrics.WorkflowErrors.WithLabelValues(moduleName).Inc()
		return result, err
	}

	if err := w.propagateAttorneys(ctx, sess, lead, approvedSummaries); err != nil {
		metrics.WorkflowErrors.WithLabelValues(moduleName).Inc()
		return result, err
	}

	metrics.ConsolidationActions.WithLabelValues(string(models.OrderApproved)).Inc()
	w.log.Info("consolidation approved",
		zap.String("lead_case_id", lead.CaseID),
		zap.Int("children", len(approvedSummaries)),
		zap.Bool("split", len(remainder) > 0))
	return result, nil
}

// RejectConsolidation rejects the named children of a pending order. The
// split mechanics match approval, but rejection writes no consolidation
// references, no lead history, and performs no attorney reassignment; each
// rejected child gets one history record and the rejected order carries the
// reviewer's sanitized reason.
func (w *Workflow) RejectConsolidation(ctx context.Context, sess *auth.SessionUser, req RejectionRequest) ([]models.ConsolidationOrder, error) {
	if !sess.HasRole(models.RoleDataVerifier) {
		return nil, cerrs.Unauthorized(moduleName, "user does not have appropriate access to reject consolidations")
	}

	order, included, remainder, err := w.loadAndPartition(ctx, req.OrderID, req.RejectedCaseIDs)
	if err != nil {
		return nil, err
	}

	now := w.now().UTC()
	actor := sess.Reference()
	reason := htmlsanitize.PlainText(req.Reason)

	result, err := w.splitOrder(ctx, order, included, remainder, models.OrderRejected, reason, nil, now, actor)
	if err != nil {
		metrics.WorkflowErrors.WithLabelValues(moduleName).Inc()
		return nil, err
	}

	for _, child := range included {
		before, err := w.latestConsolidationSummary(ctx, child.CaseID)
		if err != nil {
			metrics.WorkflowErrors.WithLabelValues(moduleName).Inc()
			return result, err
		}
		// A rejected record never names a lead case; only prior child
		// references survive into the new snapshot.
		after := models.ConsolidationSummary{Status: models.OrderRejected}
		if before != nil {
			after.ChildCases = before.ChildCases
		}
		h := models.ConsolidationHistory{
			CaseID:       child.CaseID,
			DocumentType: models.DocTypeAuditConsolidation,
			Before:       before,
			After:        after,
			UpdatedOn:    now,
			UpdatedBy:    actor,
		}
		if err := w.cases.CreateConsolidationHistory(ctx, h); err != nil {
			metrics.WorkflowErrors.WithLabelValues(moduleName).Inc()
			return result, cerrs.Wrap(moduleName, "failed to write consolidation history for case "+child.CaseID, err)
		}
	}

	metrics.ConsolidationActions.WithLabelValues(string(models.OrderRejected)).Inc()
	w.log.Info("consolidation rejected",
		zap.String("order_id", order.ID.Hex()),
		zap.Int("children", len(included)),
		zap.Bool("split", len(remainder) > 0))
	return result, nil
}

// loadAndPartition fetches the pending order and partitions its children
// into the acted-on subset (in caller order) and the remainder.
func (w *Workflow) loadAndPartition(ctx context.Context, orderID string, caseIDs []string) (models.ConsolidationOrder, []models.ConsolidationOrderCase, []models.ConsolidationOrderCase, error) {
	var none []models.ConsolidationOrderCase

	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return models.ConsolidationOrder{}, none, none, cerrs.BadRequest(moduleName, "invalid consolidation order id")
	}
	order, err := w.orders.GetByID(ctx, oid)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ConsolidationOrder{}, none, none, cerrs.NotFound(moduleName, "consolidation order not found")
		}
		return models.ConsolidationOrder{}, none, none, cerrs.Wrap(moduleName, "failed to load consolidation order", err)
	}
	if order.Status != models.OrderPending {
		return models.ConsolidationOrder{}, none, none, cerrs.BadRequest(moduleName, "consolidation order is not pending")
	}
	if len(caseIDs) == 0 {
		return models.ConsolidationOrder{}, none, none, cerrs.BadRequest(moduleName, "no child cases named")
	}

	seen := make(map[string]bool, len(caseIDs))
	var included []models.ConsolidationOrderCase
	for _, id := range caseIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		child, ok := order.ChildCase(id)
		if !ok {
			return models.ConsolidationOrder{}, none, none, cerrs.BadRequest(moduleName, "case "+id+" is not a child of this order")
		}
		included = append(included, child)
	}

	var remainder []models.ConsolidationOrderCase
	for _, child := range order.ChildCases {
		if !seen[child.CaseID] {
			remainder = append(remainder, child)
		}
	}
	return order, included, remainder, nil
}

// checkLeadNotChild rejects a lead case that is itself consolidated under
// another case.
func (w *Workflow) checkLeadNotChild(ctx context.Context, leadCaseID string) error {
	refs, err := w.cases.GetConsolidation(ctx, leadCaseID)
	if err != nil {
		return cerrs.Wrap(moduleName, "failed to look up consolidations for lead case "+leadCaseID, err)
	}
	for _, ref := range refs {
		if ref.DocumentType == models.DocTypeConsolidationTo {
			return cerrs.BadRequest(moduleName, "Cannot consolidate order. The lead case is a child case of another consolidation.")
		}
	}
	return nil
}

// checkChildUnconsolidated rejects a child that already holds a reference
// to a lead other than the proposed one.
func (w *Workflow) checkChildUnconsolidated(ctx context.Context, childCaseID, leadCaseID string) error {
	refs, err := w.cases.GetConsolidation(ctx, childCaseID)
	if err != nil {
		return cerrs.Wrap(moduleName, "failed to look up consolidations for case "+childCaseID, err)
	}
	for _, ref := range refs {
		if ref.LeadCaseID() != leadCaseID {
			metrics.ConsolidationActions.WithLabelValues("conflict").Inc()
			return cerrs.BadRequest(moduleName, "Cannot consolidate order. A child case has already been consolidated.")
		}
	}
	return nil
}

// splitOrder performs the order document shuffle shared by approval and
// rejection: create the residual pending order when the action covers a
// strict subset, delete the original, create the acted-on order. The
// acted-on order gets a fresh consolidation id from the store.
func (w *Workflow) splitOrder(ctx context.Context, order models.ConsolidationOrder, included, remainder []models.ConsolidationOrderCase, status models.OrderStatus, reason string, lead *models.CaseSummary, now time.Time, actor models.UserReference) ([]models.ConsolidationOrder, error) {
	var residual *models.ConsolidationOrder
	if len(remainder) > 0 {
		r, err := w.orders.Create(ctx, models.ConsolidationOrder{
			ConsolidationType: order.ConsolidationType,
			CourtName:         order.CourtName,
			CourtDivisionCode: order.CourtDivisionCode,
			JobID:             order.JobID,
			OrderDate:         order.OrderDate,
			Status:            models.OrderPending,
			ChildCases:        remainder,
			UpdatedOn:         now,
			UpdatedBy:         actor,
		})
		if err != nil {
			return nil, cerrs.Wrap(moduleName, "failed to create residual pending order", err)
		}
		residual = &r
	}

	if err := w.orders.Delete(ctx, order.ID); err != nil {
		return nil, cerrs.Wrap(moduleName, "failed to delete original pending order", err)
	}

	acted, err := w.orders.Create(ctx, models.ConsolidationOrder{
		ConsolidationType: order.ConsolidationType,
		CourtName:         order.CourtName,
		CourtDivisionCode: order.CourtDivisionCode,
		JobID:             order.JobID,
		OrderDate:         order.OrderDate,
		Status:            status,
		LeadCase:          lead,
		ChildCases:        included,
		Reason:            reason,
		UpdatedOn:         now,
		UpdatedBy:         actor,
	})
	if err != nil {
		return nil, cerrs.Wrap(moduleName, "failed to create "+string(status)+" order", err)
	}

	result := []models.ConsolidationOrder{acted}
	if residual != nil {
		result = append(result, *residual)
	}
	return result, nil
}

// writeChildConsolidation writes the reference pair and the history record
// for one approved child.
func (w *Workflow) writeChildConsolidation(ctx context.Context, order models.ConsolidationOrder, child models.ConsolidationOrderCase, lead models.CaseSummary, now time.Time, actor models.UserReference) error {
	to := models.ConsolidationReference{
		CaseID:            child.CaseID,
		DocumentType:      models.DocTypeConsolidationTo,
		ConsolidationType: order.ConsolidationType,
		OrderDate:         child.OrderDate,
		OtherCase:         lead,
		UpdatedOn:         now,
		UpdatedBy:         actor,
	}
	if err := w.cases.CreateConsolidationTo(ctx, to); err != nil {
		return cerrs.Wrap(moduleName, "failed to write consolidation reference for case "+child.CaseID, err)
	}

	from := models.ConsolidationReference{
		CaseID:            lead.CaseID,
		DocumentType:      models.DocTypeConsolidationFrom,
		ConsolidationType: order.ConsolidationType,
		OrderDate:         child.OrderDate,
		OtherCase:         child.CaseSummary,
		UpdatedOn:         now,
		UpdatedBy:         actor,
	}
	if err := w.cases.CreateConsolidationFrom(ctx, from); err != nil {
		return cerrs.Wrap(moduleName, "failed to write consolidation reference for lead case "+lead.CaseID, err)
	}

	before, err := w.latestConsolidationSummary(ctx, child.CaseID)
	if err != nil {
		return err
	}
	after := models.ConsolidationSummary{
		Status:   models.OrderApproved,
		LeadCase: &lead,
	}
	if before != nil {
		after.ChildCases = before.ChildCases
	}
	h := models.ConsolidationHistory{
		CaseID:       child.CaseID,
		DocumentType: models.DocTypeAuditConsolidation,
		Before:       before,
		After:        after,
		UpdatedOn:    now,
		UpdatedBy:    actor,
	}
	if err := w.cases.CreateConsolidationHistory(ctx, h); err != nil {
		return cerrs.Wrap(moduleName, "failed to write consolidation history for case "+child.CaseID, err)
	}
	return nil
}

// writeLeadHistory appends the lead case's history record with the full
// accumulated child list: children from the latest prior record plus the
// children approved now.
func (w *Workflow) writeLeadHistory(ctx context.Context, lead models.CaseSummary, approved []models.CaseSummary, now time.Time, actor models.UserReference) error {
	before, err := w.latestConsolidationSummary(ctx, lead.CaseID)
	if err != nil {
		return err
	}

	var children []models.CaseSummary
	known := make(map[string]bool)
	if before != nil {
		for _, c := range before.ChildCases {
			children = append(children, c)
			known[c.CaseID] = true
		}
	}
	for _, c := range approved {
		if !known[c.CaseID] {
			children = append(children, c)
			known[c.CaseID] = true
		}
	}

	h := models.ConsolidationHistory{
		CaseID:       lead.CaseID,
		DocumentType: models.DocTypeAuditConsolidation,
		Before:       before,
		After: models.ConsolidationSummary{
			Status:     models.OrderApproved,
			LeadCase:   &lead,
			ChildCases: children,
		},
		UpdatedOn: now,
		UpdatedBy: actor,
	}
	if err := w.cases.CreateConsolidationHistory(ctx, h); err != nil {
		return cerrs.Wrap(moduleName, "failed to write consolidation history for lead case "+lead.CaseID, err)
	}
	return nil
}

// latestConsolidationSummary returns the most recent consolidation snapshot
// for a case, or nil when the case has no consolidation history yet.
func (w *Workflow) latestConsolidationSummary(ctx context.Context, caseID string) (*models.ConsolidationSummary, error) {
	history, err := w.cases.ListConsolidationHistory(ctx, caseID)
	if err != nil {
		return nil, cerrs.Wrap(moduleName, "failed to load consolidation history for case "+caseID, err)
	}
	if len(history) == 0 {
		return nil, nil
	}
	latest := history[0].After
	return &latest, nil
}

// propagateAttorneys assigns the lead case's active attorney roster onto
// each approved child with the CaseAssignmentManager process role, so a
// reviewer who is not an assignment manager can still complete an approval.
func (w *Workflow) propagateAttorneys(ctx context.Context, sess *auth.SessionUser, lead models.CaseSummary, children []models.CaseSummary) error {
	leadAssignments, err := w.assignments.FindAssignmentsByCase(ctx, lead.CaseID)
	if err != nil {
		return cerrs.Wrap(moduleName, "failed to load attorney roster for lead case "+lead.CaseID, err)
	}
	roster := make([]models.UserReference, 0, len(leadAssignments))
	for _, a := range leadAssignments {
		roster = append(roster, models.UserReference{ID: a.UserID, Name: a.Name})
	}

	for _, child := range children {
		if _, err := w.assignments.CreateTrialAttorneyAssignments(ctx, sess, child.CaseID, roster,
			models.RoleTrialAttorney, models.RoleCaseAssignmentManager); err != nil {
			return cerrs.Wrap(moduleName, "failed to propagate attorneys to case "+child.CaseID, err)
		}
	}
	return nil
}
