// internal/domain/models/consolidation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConsolidationType distinguishes joint administration from substantive
// consolidation. Only administrative consolidations cascade attorney
// assignments from the lead case to its children.
type ConsolidationType string

const (
	ConsolidationAdministrative ConsolidationType = "administrative"
	ConsolidationSubstantive    ConsolidationType = "substantive"
)

// Consolidation reference document types. A CONSOLIDATION_FROM document is
// stored on the lead case and points at a child; a CONSOLIDATION_TO document
// is stored on a child case and points at its lead. References are always
// created in pairs when an order is approved.
const (
	DocTypeConsolidationFrom = "CONSOLIDATION_FROM"
	DocTypeConsolidationTo   = "CONSOLIDATION_TO"
)

// ConsolidationReference is a directional link between a lead case and a
// child case, written when a consolidation order is approved.
type ConsolidationReference struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CaseID            string             `bson:"case_id" json:"caseId"`
	DocumentType      string             `bson:"document_type" json:"documentType"`
	ConsolidationType ConsolidationType  `bson:"consolidation_type" json:"consolidationType"`
	OrderDate         time.Time          `bson:"order_date" json:"orderDate"`
	OtherCase         CaseSummary        `bson:"other_case" json:"otherCase"`

	UpdatedOn time.Time     `bson:"updated_on" json:"updatedOn"`
	UpdatedBy UserReference `bson:"updated_by" json:"updatedBy"`
}

// LeadCaseID returns the case id of the lead case a reference implies.
// For a CONSOLIDATION_TO document the lead is the other case; for a
// CONSOLIDATION_FROM document the owning case is itself the lead.
func (r ConsolidationReference) LeadCaseID() string {
	if r.DocumentType == DocTypeConsolidationTo {
		return r.OtherCase.CaseID
	}
	return r.CaseID
}
