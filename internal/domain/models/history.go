// internal/domain/models/history.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Case history document types. History records are immutable once written;
// each captures a before/after snapshot of one state change on one case.
const (
	DocTypeAuditAssignment    = "AUDIT_ASSIGNMENT"
	DocTypeAuditConsolidation = "AUDIT_CONSOLIDATION"
)

// AssignmentHistory records one reconciliation of a case's staff roster:
// the full assignment set before and after.
type AssignmentHistory struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CaseID       string             `bson:"case_id" json:"caseId"`
	DocumentType string             `bson:"document_type" json:"documentType"`
	Before       []CaseAssignment   `bson:"before" json:"before"`
	After        []CaseAssignment   `bson:"after" json:"after"`

	UpdatedOn time.Time     `bson:"updated_on" json:"updatedOn"`
	UpdatedBy UserReference `bson:"updated_by" json:"updatedBy"`
}

// ConsolidationSummary is the consolidation state snapshot stored inside a
// consolidation history record.
type ConsolidationSummary struct {
	Status     OrderStatus   `bson:"status" json:"status"`
	LeadCase   *CaseSummary  `bson:"lead_case,omitempty" json:"leadCase,omitempty"`
	ChildCases []CaseSummary `bson:"child_cases" json:"childCases"`
}

// ConsolidationHistory records one consolidation state transition on a case.
// Before is nil on the first record for a case.
type ConsolidationHistory struct {
	ID           primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	CaseID       string                `bson:"case_id" json:"caseId"`
	DocumentType string                `bson:"document_type" json:"documentType"`
	Before       *ConsolidationSummary `bson:"before" json:"before"`
	After        ConsolidationSummary  `bson:"after" json:"after"`

	UpdatedOn time.Time     `bson:"updated_on" json:"updatedOn"`
	UpdatedBy UserReference `bson:"updated_by" json:"updatedBy"`
}
