// internal/domain/models/case.go
package models

import "time"

// CaseSummary is the slim view of a bankruptcy case used throughout the
// assignment and consolidation workflows. The full case record lives in the
// synced cases collection; workflows only need these fields.
type CaseSummary struct {
	CaseID            string    `bson:"case_id" json:"caseId"`
	CaseTitle         string    `bson:"case_title" json:"caseTitle"`
	Chapter           string    `bson:"chapter" json:"chapter"`
	CourtName         string    `bson:"court_name" json:"courtName"`
	CourtDivisionCode string    `bson:"court_division_code" json:"courtDivisionCode"`
	CourtDivisionName string    `bson:"court_division_name" json:"courtDivisionName"`
	DateFiled         time.Time `bson:"date_filed" json:"dateFiled"`
}
