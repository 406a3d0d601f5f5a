// internal/app/store/sessioncache/store.go

// Package sessioncache persists a short-lived record of each OIDC login so
// that bearer-token callers can be resolved to a session without a round
// trip to the identity provider on every request. Tokens are stored only as
// SHA-256 digests; documents expire via a TTL index.
package sessioncache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/trusteehub/cams/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CachedSession is one authenticated session resolved from the identity
// provider.
type CachedSession struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	TokenDigest   string             `bson:"token_digest"`
	UserID        string             `bson:"user_id"`
	Name          string             `bson:"name"`
	LoginID       string             `bson:"login_id"`
	Roles         []models.CamsRole  `bson:"roles"`
	DivisionCodes []string           `bson:"division_codes"`
	Provider      string             `bson:"provider"`
	IssuedAt      time.Time          `bson:"issued_at"`
	ExpiresAt     time.Time          `bson:"expires_at"`
}

// Store manages cached sessions.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("session_cache")}
}

// EnsureIndexes creates the token lookup index and the TTL index that
// reaps expired sessions.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token_digest", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Digest returns the hex SHA-256 of a bearer token. The digest is the only
// form of the token this package ever stores.
func Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Put upserts the cached session for its token digest.
func (s *Store) Put(ctx context.Context, cs CachedSession) error {
	if cs.IssuedAt.IsZero() {
		cs.IssuedAt = time.Now().UTC()
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.c.ReplaceOne(ctx, bson.M{"token_digest": cs.TokenDigest}, cs, opts)
	return err
}

// GetByToken resolves a bearer token to its cached session. Expired entries
// are treated as absent even if the TTL reaper has not removed them yet.
// Returns mongo.ErrNoDocuments when no live session exists.
func (s *Store) GetByToken(ctx context.Context, token string) (CachedSession, error) {
	var cs CachedSession
	err := s.c.FindOne(ctx, bson.M{
		"token_digest": Digest(token),
		"expires_at":   bson.M{"$gt": time.Now().UTC()},
	}).Decode(&cs)
	return cs, err
}

// DeleteByToken removes a cached session on logout.
func (s *Store) DeleteByToken(ctx context.Context, token string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"token_digest": Digest(token)})
	return err
}
