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
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BusinessRepository implements repository.BusinessRepository on MongoDB.
type BusinessRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ repository.BusinessRepository = (*BusinessRepository)(nil)

func (r *BusinessRepository) Create(ctx context.Context, b *entity.Business) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := r.now()
	b.CreatedAt, b.UpdatedAt = now, now

	_, err := r.coll.InsertOne(ctx, businessDoc{
		ID:        b.ID.String(),
		Name:      b.Name,
		Slug:      b.Slug,
		Active:    b.Active,
		Settings:  b.Settings.Data(),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	})
	return err
}

func (r *BusinessRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Business, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *BusinessRepository) GetBySlug(ctx context.Context, slug string) (*entity.Business, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *BusinessRepository) findOne(ctx context.Context, filter bson.M) (*entity.Business, error) {
	var doc businessDoc
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *BusinessRepository) ListActive(ctx context.Context) ([]entity.Business, error) {
	cur, err := r.coll.Find(ctx, bson.M{"active": true}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []businessDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.Business, 0, len(docs))
	for _, doc := range docs {
		out = append(out, *doc.toEntity())
	}
	return out, nil
}
