// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/trusteehub/cams/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that call handlers directly instead of going
// through a router.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for seeding test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateCaseSummary seeds a case summary document.
func (f *Fixtures) CreateCaseSummary(ctx context.Context, caseID, division string) models.CaseSummary {
	f.t.Helper()
	s := models.CaseSummary{
		CaseID:            caseID,
		CaseTitle:         "In re " + caseID,
		Chapter:           "15",
		CourtName:         "Test District Court",
		CourtDivisionCode: division,
		CourtDivisionName: "Division " + division,
		DateFiled:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	if _, err := f.db.Collection("cases").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to seed case %s: %v", caseID, err)
	}
	return s
}

// CreateAssignment seeds an active assignment document.
func (f *Fixtures) CreateAssignment(ctx context.Context, caseID, userID, name string, role models.CamsRole) models.CaseAssignment {
	f.t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	a := models.CaseAssignment{
		ID:           primitive.NewObjectID(),
		DocumentType: models.DocTypeAssignment,
		CaseID:       caseID,
		UserID:       userID,
		Name:         name,
		Role:         role,
		AssignedOn:   now,
		UpdatedOn:    now,
		UpdatedBy:    models.UserReference{ID: "fixture", Name: "Fixture"},
	}
	if _, err := f.db.Collection("case_assignments").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to seed assignment for %s: %v", caseID, err)
	}
	return a
}

// CreatePendingOrder seeds a pending consolidation order over the given
// child cases.
func (f *Fixtures) CreatePendingOrder(ctx context.Context, division string, children ...models.CaseSummary) models.ConsolidationOrder {
	f.t.Helper()
	orderDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var cc []models.ConsolidationOrderCase
	for _, c := range children {
		cc = append(cc, models.ConsolidationOrderCase{CaseSummary: c, OrderDate: orderDate})
	}
	o := models.ConsolidationOrder{
		ID:                primitive.NewObjectID(),
		ConsolidationID:   primitive.NewObjectID().Hex(),
		ConsolidationType: models.ConsolidationAdministrative,
		CourtName:         "Test District Court",
		CourtDivisionCode: division,
		OrderDate:         orderDate,
		Status:            models.OrderPending,
		ChildCases:        cc,
		UpdatedOn:         orderDate,
		UpdatedBy:         models.UserReference{ID: "fixture", Name: "Fixture"},
	}
	if _, err := f.db.Collection("consolidation_orders").InsertOne(ctx, o); err != nil {
		f.t.Fatalf("failed to seed consolidation order: %v", err)
	}
	return o
}
