package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fleetops/transport-fleet/internal/core/domain"
)

const tokenCollection = "refresh_tokens"

// RefreshTokenRepository implements ports.RefreshTokenRepository using
// MongoDB. Rotation relies on a conditional update ({revoked: false} filter)
// so that exactly one of any number of concurrent consumers of the same token
// wins; the loser observes ModifiedCount == 0.
type RefreshTokenRepository struct {
	coll *mongo.Collection
}

func NewRefreshTokenRepository(db *mongo.Database) *RefreshTokenRepository {
	return &RefreshTokenRepository{coll: db.Collection(tokenCollection)}
}

func (r *RefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rt domain.RefreshToken
	if err := r.coll.FindOne(ctx, bson.M{"token": token}).Decode(&rt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &rt, nil
}

func (r *RefreshTokenRepository) Insert(ctx context.Context, token *domain.RefreshToken) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	token.CreatedAt = now
	token.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, token); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// Rotate revokes the token identified by oldID and inserts next inside one
// transaction. The conditional filter is the single-winner guard: when the
// token was already consumed, no writes happen and
// domain.ErrRefreshTokenExpired is returned. Context cancellation aborts the
// transaction whole, so a revoked-old-without-new state cannot persist.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldID string, next *domain.RefreshToken) error {
	session, err := r.coll.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("rotate refresh token: start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now().UTC()

		res, err := r.coll.UpdateOne(sc,
			bson.M{"_id": oldID, "revoked": false},
			bson.M{"$set": bson.M{"revoked": true, "updated_at": now}},
		)
		if err != nil {
			return nil, fmt.Errorf("revoke old token: %w", err)
		}
		if res.ModifiedCount == 0 {
			return nil, domain.ErrRefreshTokenExpired
		}

		next.CreatedAt = now
		next.UpdatedAt = now
		if _, err := r.coll.InsertOne(sc, next); err != nil {
			return nil, fmt.Errorf("insert new token: %w", err)
		}
		return nil, nil
	})
	return err
}

// EnsureIndexes creates the unique token index and the owner index on the
// refresh_tokens collection.
func (r *RefreshTokenRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
