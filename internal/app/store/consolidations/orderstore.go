// internal/app/store/consolidations/orderstore.go
package consolidations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/trusteehub/cams/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages consolidation order documents.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("consolidation_orders")}
}

// EnsureIndexes creates the indexes the order queries depend on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "court_division_code", Value: 1},
				{Key: "order_date", Value: 1},
			},
		},
		{
			Keys:    bson.D{{Key: "consolidation_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create inserts a new order document. A zero ID and empty ConsolidationID
// are filled in; the stored document is returned.
func (s *Store) Create(ctx context.Context, o models.ConsolidationOrder) (models.ConsolidationOrder, error) {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	if o.ConsolidationID == "" {
		o.ConsolidationID = uuid.NewString()
	}
	if o.UpdatedOn.IsZero() {
		o.UpdatedOn = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, o); err != nil {
		return models.ConsolidationOrder{}, err
	}
	return o, nil
}

// GetByID returns the order with the given _id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.ConsolidationOrder, error) {
	var o models.ConsolidationOrder
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	return o, err
}

// Delete removes the order with the given _id.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Search returns orders for the given court division codes, oldest order
// date first. The division filter is always applied, so an empty
// divisionCodes list matches no orders.
func (s *Store) Search(ctx context.Context, divisionCodes []string) ([]models.ConsolidationOrder, error) {
	if divisionCodes == nil {
		divisionCodes = []string{}
	}
	query := bson.M{"court_division_code": bson.M{"$in": divisionCodes}}
	opts := options.Find().SetSort(bson.D{{Key: "order_date", Value: 1}})
	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.ConsolidationOrder
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
