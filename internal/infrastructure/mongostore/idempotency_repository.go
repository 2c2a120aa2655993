package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// IdempotencyRepository implements repository.IdempotencyRepository on
// MongoDB. Expired keys are also removed by the TTL index.
type IdempotencyRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ repository.IdempotencyRepository = (*IdempotencyRepository)(nil)

func (r *IdempotencyRepository) GetByKey(ctx context.Context, businessID uuid.UUID, key string) (*entity.IdempotencyKey, error) {
	var doc idempotencyDoc
	filter := bson.M{
		"business_id": businessID.String(),
		"key":         key,
		"expires_at":  bson.M{"$gt": r.now()},
	}
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity.IdempotencyKey{
		ID:           parseUUID(doc.ID),
		Key:          doc.Key,
		BusinessID:   parseUUID(doc.BusinessID),
		Endpoint:     doc.Endpoint,
		ResponseCode: doc.ResponseCode,
		ResponseBody: doc.ResponseBody,
		CreatedAt:    doc.CreatedAt,
		ExpiresAt:    doc.ExpiresAt,
	}, nil
}

func (r *IdempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	if ikey.CreatedAt.IsZero() {
		ikey.CreatedAt = r.now()
	}
	_, err := r.coll.InsertOne(ctx, idempotencyDoc{
		ID:           ikey.ID.String(),
		Key:          ikey.Key,
		BusinessID:   ikey.BusinessID.String(),
		Endpoint:     ikey.Endpoint,
		ResponseCode: ikey.ResponseCode,
		ResponseBody: ikey.ResponseBody,
		CreatedAt:    ikey.CreatedAt,
		ExpiresAt:    ikey.ExpiresAt,
	})
	return translateError(err)
}

func (r *IdempotencyRepository) DeleteExpired(ctx context.Context) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": r.now()}})
	return err
}
