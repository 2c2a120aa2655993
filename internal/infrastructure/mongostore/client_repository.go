package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/identity"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/pkg/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ClientRepository implements repository.ClientRepository on MongoDB.
type ClientRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ repository.ClientRepository = (*ClientRepository)(nil)

func (r *ClientRepository) Create(ctx context.Context, client *entity.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	client.ApplyDefaults()
	now := r.now()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, newClientDoc(client))
	return translateError(err)
}

func (r *ClientRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*entity.Client, error) {
	filter := activeClients(businessID)
	filter["_id"] = id.String()
	return r.findOne(ctx, filter)
}

func (r *ClientRepository) FindByEmail(ctx context.Context, businessID uuid.UUID, emailKey string) (*entity.Client, error) {
	if emailKey == "" {
		return nil, nil
	}
	filter := activeClients(businessID)
	filter["email_normalized"] = emailKey
	return r.findOne(ctx, filter)
}

func (r *ClientRepository) FindByPhone(ctx context.Context, businessID uuid.UUID, phoneKey string) (*entity.Client, error) {
	if phoneKey == "" {
		return nil, nil
	}
	filter := activeClients(businessID)
	filter["phone_normalized"] = phoneKey
	return r.findOne(ctx, filter)
}

// findOne returns the oldest matching client.
func (r *ClientRepository) findOne(ctx context.Context, filter bson.M) (*entity.Client, error) {
	var doc clientDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	err := r.coll.FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toEntity(), nil
}

func (r *ClientRepository) ScanByPhone(ctx context.Context, businessID uuid.UUID, phoneKey string, limit int) (*entity.Client, error) {
	if phoneKey == "" || limit <= 0 {
		return nil, nil
	}

	filter := activeClients(businessID)
	filter["phone"] = bson.M{"$nin": bson.A{"", nil}}
	filter["phone_normalized"] = bson.M{"$in": bson.A{"", nil}}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	docs, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		// toEntity would re-derive the key, so compare against the raw phone
		if identity.NormalizePhone(doc.Phone) == phoneKey {
			return doc.toEntity(), nil
		}
	}
	return nil, nil
}

func (r *ClientRepository) Update(ctx context.Context, businessID, id uuid.UUID, patch repository.ClientPatch) error {
	current, err := r.GetByID(ctx, businessID, id)
	if err != nil {
		return err
	}
	if current == nil {
		return repository.ErrNotFound
	}

	patch.Apply(current, r.now())
	filter := activeClients(businessID)
	filter["_id"] = id.String()

	res, err := r.coll.ReplaceOne(ctx, filter, newClientDoc(current))
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ClientRepository) List(ctx context.Context, businessID uuid.UUID, filter *repository.ClientFilter, sort repository.ClientSort, params *pagination.PaginationParams) ([]entity.Client, int64, error) {
	query := clientFilter(businessID, filter)

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	params.Validate()
	opts := options.Find().
		SetSort(clientSort(sort)).
		SetSkip(int64(params.Offset())).
		SetLimit(int64(params.PerPage))
	if sort.Field == repository.ClientSortName {
		opts.SetCollation(&options.Collation{Locale: "en", Strength: 2})
	}

	docs, err := r.find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	clients := make([]entity.Client, 0, len(docs))
	for _, doc := range docs {
		clients = append(clients, *doc.toEntity())
	}
	return clients, total, nil
}

func (r *ClientRepository) Count(ctx context.Context, businessID uuid.UUID, filter *repository.ClientFilter) (int64, error) {
	return r.coll.CountDocuments(ctx, clientFilter(businessID, filter))
}

func (r *ClientRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]clientDoc, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []clientDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
