// internal/app/features/assignments/workflow.go

// Package assignments implements the staff assignment workflow: reconciling
// the desired attorney roster for a case against the stored assignments,
// cascading to administratively consolidated child cases, and recording the
// audit history for each reconciliation.
package assignments

import (
	"context"
	"errors"
	"time"

	"github.com/trusteehub/cams/internal/app/policy/assignmentpolicy"
	"github.com/trusteehub/cams/internal/app/system/auth"
	"github.com/trusteehub/cams/internal/app/system/metrics"
	"github.com/trusteehub/cams/internal/domain/cerrs"
	"github.com/trusteehub/cams/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const moduleName = "case-assignment"

// AssignmentRepository is the persistence contract for assignment records.
type AssignmentRepository interface {
	FindActiveByCaseID(ctx context.Context, caseID string) ([]models.CaseAssignment, error)
	FindActiveByAssignee(ctx context.Context, userID string) ([]models.CaseAssignment, error)
	Create(ctx context.Context, a models.CaseAssignment) (string, error)
	Update(ctx context.Context, a models.CaseAssignment) error
}

// CasesRepository is the slice of the case store the workflow needs.
type CasesRepository interface {
	GetCaseSummary(ctx context.Context, caseID string) (models.CaseSummary, error)
	GetConsolidation(ctx context.Context, caseID string) ([]models.ConsolidationReference, error)
	CreateAssignmentHistory(ctx context.Context, h models.AssignmentHistory) error
}

// Workflow reconciles attorney rosters. All persistence calls are issued
// sequentially; the first repository error aborts the remaining work with
// no compensation for writes already made.
type Workflow struct {
	cases CasesRepository
	repo  AssignmentRepository
	log   *zap.Logger
	now   func() time.Time
}

// NewWorkflow builds the assignment workflow over its repositories.
func NewWorkflow(cases CasesRepository, repo AssignmentRepository, logger *zap.Logger) *Workflow {
	return &Workflow{cases: cases, repo: repo, log: logger, now: time.Now}
}

// CreateTrialAttorneyAssignments makes assignees the complete attorney
// roster for the case in the given role, then repeats the reconciliation
// for every child case the target case leads through an administrative
// consolidation. Substantive consolidations do not cascade.
//
// processRoles lets another workflow acting for the session user supply
// CaseAssignmentManager; the office check is always made against the
// session user's own offices. Both checks run before any write, so an
// unauthorized call mutates nothing.
//
// Returns the ids of every assignment record created, target case first.
func (w *Workflow) CreateTrialAttorneyAssignments(ctx context.Context, sess *auth.SessionUser, caseID string, assignees []models.UserReference, role models.CamsRole, processRoles ...models.CamsRole) ([]string, error) {
	summary, err := w.cases.GetCaseSummary(ctx, caseID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cerrs.NotFound(moduleName, "case "+caseID+" not found")
		}
		return nil, cerrs.Wrap(moduleName, "failed to look up case "+caseID, err)
	}

	roleOK, officeOK := assignmentpolicy.CanManageAssignments(sess, processRoles, summary.CourtDivisionCode)
	if !roleOK {
		return nil, cerrs.Unauthorized(moduleName, "user does not have appropriate access to create assignments")
	}
	if !officeOK {
		return nil, cerrs.Unauthorized(moduleName, "user does not have appropriate access to create assignments for this office")
	}

	desired := dedupe(assignees)

	// Compute the affected case list up front: the target case plus, when
	// it leads a joint administration, every administrative child.
	affected := []string{caseID}
	references, err := w.cases.GetConsolidation(ctx, caseID)
	if err != nil {
		return nil, cerrs.Wrap(moduleName, "failed to look up consolidations for case "+caseID, err)
	}
	for _, ref := range references {
		if ref.DocumentType == models.DocTypeConsolidationFrom &&
			ref.ConsolidationType == models.ConsolidationAdministrative {
			affected = append(affected, ref.OtherCase.CaseID)
		}
	}

	var created []string
	for _, id := range affected {
		ids, err := w.reconcile(ctx, sess, id, desired, role)
		if err != nil {
			metrics.WorkflowErrors.WithLabelValues(moduleName).Inc()
			return created, err
		}
		created = append(created, ids...)
	}
	return created, nil
}

// FindAssignmentsByCase returns the active assignments for a case.
func (w *Workflow) FindAssignmentsByCase(ctx context.Context, caseID string) ([]models.CaseAssignment, error) {
	out, err := w.repo.FindActiveByCaseID(ctx, caseID)
	if err != nil {
		return nil, cerrs.Wrap(moduleName, "failed to look up assignments for case "+caseID, err)
	}
	return out, nil
}

// GetCaseLoad returns the number of cases actively assigned to a user.
func (w *Workflow) GetCaseLoad(ctx context.Context, userID string) (int, error) {
	out, err := w.repo.FindActiveByAssignee(ctx, userID)
	if err != nil {
		return 0, cerrs.Wrap(moduleName, "failed to look up caseload for user "+userID, err)
	}
	return len(out), nil
}

// reconcile drives one case's active assignment set to exactly the desired
// roster:
//
//  1. active assignments with no desired entry of the same name and role
//     are closed out by setting unassigned_on,
//  2. desired entries with no matching active assignment are created,
//  3. the resulting set is re-read and one history record capturing the
//     full before/after snapshot is written.
//
// Running it twice with the same roster performs no writes beyond the
// history record on the second pass.
func (w *Workflow) reconcile(ctx context.Context, sess *auth.SessionUser, caseID string, desired []models.UserReference, role models.CamsRole) ([]string, error) {
	existing, err := w.repo.FindActiveByCaseID(ctx, caseID)
	if err != nil {
		return nil, cerrs.Wrap(moduleName, "failed to load existing assignments for case "+caseID, err)
	}

	now := w.now().UTC()
	changed := false

	for _, ea := range existing {
		if hasDesired(desired, ea.Name, ea.Role, role) {
			continue
		}
		unassigned := ea
		ts := now
		unassigned.UnassignedOn = &ts
		unassigned.UpdatedOn = now
		unassigned.UpdatedBy = sess.Reference()
		if err := w.repo.Update(ctx, unassigned); err != nil {
			return nil, cerrs.Wrap(moduleName, "failed to unassign "+ea.Name+" from case "+caseID, err)
		}
		changed = true
	}

	var created []string
	for _, d := range desired {
		if hasExisting(existing, d.Name, role) {
			continue
		}
		a := models.CaseAssignment{
			DocumentType: models.DocTypeAssignment,
			CaseID:       caseID,
			UserID:       d.ID,
			Name:         d.Name,
			Role:         role,
			AssignedOn:   now,
			UpdatedOn:    now,
			UpdatedBy:    sess.Reference(),
		}
		id, err := w.repo.Create(ctx, a)
		if err != nil {
			return created, cerrs.Wrap(moduleName, "failed to assign "+d.Name+" to case "+caseID, err)
		}
		created = append(created, id)
		changed = true
	}

	after, err := w.repo.FindActiveByCaseID(ctx, caseID)
	if err != nil {
		return created, cerrs.Wrap(moduleName, "failed to reload assignments for case "+caseID, err)
	}

	history := models.AssignmentHistory{
		CaseID:       caseID,
		DocumentType: models.DocTypeAuditAssignment,
		Before:       existing,
		After:        after,
		UpdatedOn:    now,
		UpdatedBy:    sess.Reference(),
	}
	if err := w.cases.CreateAssignmentHistory(ctx, history); err != nil {
		return created, cerrs.Wrap(moduleName, "failed to write assignment history for case "+caseID, err)
	}

	metrics.AssignmentsReconciled.WithLabelValues(boolLabel(changed)).Inc()
	w.log.Info("reconciled assignments",
		zap.String("case_id", caseID),
		zap.Int("active", len(after)),
		zap.Int("created", len(created)),
		zap.Bool("changed", changed))
	return created, nil
}

// dedupe applies set semantics to the desired roster, keyed by user id and
// name, preserving first-seen order.
func dedupe(refs []models.UserReference) []models.UserReference {
	seen := make(map[models.UserReference]struct{}, len(refs))
	out := make([]models.UserReference, 0, len(refs))
	for _, r := range refs {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// hasDesired reports whether an existing active assignment survives the
// reconciliation: the desired set must carry the same name in the same
// role. Active assignments held in any other role have no matching entry
// and are closed out.
func hasDesired(desired []models.UserReference, name string, existingRole, role models.CamsRole) bool {
	if existingRole != role {
		return false
	}
	for _, d := range desired {
		if d.Name == name {
			return true
		}
	}
	return false
}

func hasExisting(existing []models.CaseAssignment, name string, role models.CamsRole) bool {
	for _, ea := range existing {
		if ea.Name == name && ea.Role == role {
			return true
		}
	}
	return false
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
