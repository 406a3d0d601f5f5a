// internal/domain/models/order.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus is the lifecycle state of a consolidation order.
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderApproved OrderStatus = "approved"
	OrderRejected OrderStatus = "rejected"
)

// ConsolidationOrderCase is a case listed on a consolidation order: the case
// summary plus the docket date of the order that proposed consolidating it.
type ConsolidationOrderCase struct {
	CaseSummary `bson:",inline"`

	OrderDate time.Time `bson:"order_date" json:"orderDate"`
}

// ConsolidationOrder is a court order proposing that a set of child cases be
// consolidated under a lead case.
//
// A pending order may be acted on for a subset of its children, in which
// case it splits: a new approved (or rejected) order holds the acted-on
// children and a residual pending order holds the remainder. The original
// pending document is deleted as part of the split.
type ConsolidationOrder struct {
	ID                primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	ConsolidationID   string                   `bson:"consolidation_id" json:"consolidationId"`
	ConsolidationType ConsolidationType        `bson:"consolidation_type,omitempty" json:"consolidationType,omitempty"`
	CourtName         string                   `bson:"court_name" json:"courtName"`
	CourtDivisionCode string                   `bson:"court_division_code" json:"courtDivisionCode"`
	JobID             int64                    `bson:"job_id,omitempty" json:"jobId,omitempty"`
	OrderDate         time.Time                `bson:"order_date" json:"orderDate"`
	Status            OrderStatus              `bson:"status" json:"status"`
	LeadCase          *CaseSummary             `bson:"lead_case,omitempty" json:"leadCase,omitempty"`
	ChildCases        []ConsolidationOrderCase `bson:"child_cases" json:"childCases"`

	// Reason is the reviewer's explanation on a rejected order. Free text
	// supplied by the caller; sanitized before it is persisted.
	Reason string `bson:"reason,omitempty" json:"reason,omitempty"`

	UpdatedOn time.Time     `bson:"updated_on" json:"updatedOn"`
	UpdatedBy UserReference `bson:"updated_by" json:"updatedBy"`
}

// ChildCase returns the child entry for caseID and whether it exists.
func (o ConsolidationOrder) ChildCase(caseID string) (ConsolidationOrderCase, bool) {
	for _, c := range o.ChildCases {
		if c.CaseID == caseID {
			return c, true
		}
	}
	return ConsolidationOrderCase{}, false
}
