// internal/app/store/assignments/assignmentstore.go
package assignments

import (
	"context"
	"time"

	"github.com/trusteehub/cams/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages case assignment records. Assignments are soft-deleted:
// unassigning sets unassigned_on rather than removing the document.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("case_assignments")}
}

// EnsureIndexes creates the indexes the assignment queries depend on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "case_id", Value: 1},
				{Key: "unassigned_on", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "unassigned_on", Value: 1},
			},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new assignment record and returns its id as a hex string.
// If AssignedOn is zero it is set to now (UTC).
func (s *Store) Create(ctx context.Context, a models.CaseAssignment) (string, error) {
	if a.AssignedOn.IsZero() {
		a.AssignedOn = time.Now().UTC()
	}
	if a.DocumentType == "" {
		a.DocumentType = models.DocTypeAssignment
	}

	res, err := s.c.InsertOne(ctx, a)
	if err != nil {
		return "", err
	}
	oid, _ := res.InsertedID.(primitive.ObjectID)
	return oid.Hex(), nil
}

// Update replaces the assignment document with the given _id. Used by the
// reconciliation workflow to set unassigned_on.
func (s *Store) Update(ctx context.Context, a models.CaseAssignment) error {
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": a.ID}, a)
	return err
}

// FindActiveByCaseID returns the active (unassigned_on unset) assignments
// for a case, oldest first.
func (s *Store) FindActiveByCaseID(ctx context.Context, caseID string) ([]models.CaseAssignment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "assigned_on", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{
		"case_id":       caseID,
		"unassigned_on": bson.M{"$exists": false},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.CaseAssignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindActiveByAssignee returns the active assignments held by a user across
// all cases. Used for caseload reporting.
func (s *Store) FindActiveByAssignee(ctx context.Context, userID string) ([]models.CaseAssignment, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"user_id":       userID,
		"unassigned_on": bson.M{"$exists": false},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.CaseAssignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
