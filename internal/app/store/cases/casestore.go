// internal/app/store/cases/casestore.go

// Package cases wraps the case-centric collections: synced case summaries,
// consolidation references, and the per-case audit history.
package cases

import (
	"context"
	"time"

	"github.com/trusteehub/cams/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages case summaries, consolidation references, and case history.
type Store struct {
	cases      *mongo.Collection
	references *mongo.Collection
	history    *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		cases:      db.Collection("cases"),
		references: db.Collection("consolidation_references"),
		history:    db.Collection("case_history"),
	}
}

// EnsureIndexes creates the indexes the case queries depend on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.cases.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "case_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	if _, err := s.references.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "case_id", Value: 1}},
	}); err != nil {
		return err
	}
	_, err := s.history.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "case_id", Value: 1},
			{Key: "document_type", Value: 1},
			{Key: "updated_on", Value: -1},
		},
	})
	return err
}

// GetCaseSummary returns the synced summary for a case.
// Returns mongo.ErrNoDocuments if the case is unknown.
func (s *Store) GetCaseSummary(ctx context.Context, caseID string) (models.CaseSummary, error) {
	var summary models.CaseSummary
	err := s.cases.FindOne(ctx, bson.M{"case_id": caseID}).Decode(&summary)
	return summary, err
}

// PutCaseSummary upserts a synced case summary. Used by data import.
func (s *Store) PutCaseSummary(ctx context.Context, summary models.CaseSummary) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.cases.ReplaceOne(ctx, bson.M{"case_id": summary.CaseID}, summary, opts)
	return err
}

// GetConsolidation returns every consolidation reference stored on a case.
func (s *Store) GetConsolidation(ctx context.Context, caseID string) ([]models.ConsolidationReference, error) {
	cur, err := s.references.Find(ctx, bson.M{"case_id": caseID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.ConsolidationReference
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateConsolidationFrom records a lead-to-child reference on the lead case.
func (s *Store) CreateConsolidationFrom(ctx context.Context, ref models.ConsolidationReference) error {
	ref.DocumentType = models.DocTypeConsolidationFrom
	return s.insertReference(ctx, ref)
}

// CreateConsolidationTo records a child-to-lead reference on the child case.
func (s *Store) CreateConsolidationTo(ctx context.Context, ref models.ConsolidationReference) error {
	ref.DocumentType = models.DocTypeConsolidationTo
	return s.insertReference(ctx, ref)
}

func (s *Store) insertReference(ctx context.Context, ref models.ConsolidationReference) error {
	if ref.UpdatedOn.IsZero() {
		ref.UpdatedOn = time.Now().UTC()
	}
	_, err := s.references.InsertOne(ctx, ref)
	return err
}

// CreateAssignmentHistory appends an immutable assignment audit record.
func (s *Store) CreateAssignmentHistory(ctx context.Context, h models.AssignmentHistory) error {
	h.DocumentType = models.DocTypeAuditAssignment
	if h.UpdatedOn.IsZero() {
		h.UpdatedOn = time.Now().UTC()
	}
	_, err := s.history.InsertOne(ctx, h)
	return err
}

// CreateConsolidationHistory appends an immutable consolidation audit record.
func (s *Store) CreateConsolidationHistory(ctx context.Context, h models.ConsolidationHistory) error {
	h.DocumentType = models.DocTypeAuditConsolidation
	if h.UpdatedOn.IsZero() {
		h.UpdatedOn = time.Now().UTC()
	}
	_, err := s.history.InsertOne(ctx, h)
	return err
}

// ListConsolidationHistory returns a case's consolidation audit records,
// most recent first.
func (s *Store) ListConsolidationHistory(ctx context.Context, caseID string) ([]models.ConsolidationHistory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_on", Value: -1}})
	cur, err := s.history.Find(ctx, bson.M{
		"case_id":       caseID,
		"document_type": models.DocTypeAuditConsolidation,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.ConsolidationHistory
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAssignmentHistory returns a case's assignment audit records, most
// recent first.
func (s *Store) ListAssignmentHistory(ctx context.Context, caseID string) ([]models.AssignmentHistory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_on", Value: -1}})
	cur, err := s.history.Find(ctx, bson.M{
		"case_id":       caseID,
		"document_type": models.DocTypeAuditAssignment,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.AssignmentHistory
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
