// internal/domain/models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocTypeAssignment is the document type tag stored on assignment records.
const DocTypeAssignment = "ASSIGNMENT"

// CaseAssignment links a staff user to a case in a given role.
//
// Assignments are never physically deleted: removing someone from a case
// sets UnassignedOn. At most one active (UnassignedOn unset) assignment may
// exist per (case, user, role); the reconciliation workflow maintains that
// invariant.
type CaseAssignment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DocumentType string             `bson:"document_type" json:"documentType"`
	CaseID       string             `bson:"case_id" json:"caseId"`
	UserID       string             `bson:"user_id" json:"userId"`
	Name         string             `bson:"name" json:"name"`
	Role         CamsRole           `bson:"role" json:"role"`
	AssignedOn   time.Time          `bson:"assigned_on" json:"assignedOn"`
	UnassignedOn *time.Time         `bson:"unassigned_on,omitempty" json:"unassignedOn,omitempty"`

	// Audit fields
	UpdatedOn time.Time     `bson:"updated_on" json:"updatedOn"`
	UpdatedBy UserReference `bson:"updated_by" json:"updatedBy"`
}

// Active reports whether the assignment is still in effect.
func (a CaseAssignment) Active() bool {
	return a.UnassignedOn == nil
}

// Reference returns the assigned user as a UserReference.
func (a CaseAssignment) Reference() UserReference {
	return UserReference{ID: a.UserID, Name: a.Name}
}
