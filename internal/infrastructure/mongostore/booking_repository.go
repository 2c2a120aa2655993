package mongostore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/identity"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BookingRepository implements repository.BookingRepository on MongoDB.
type BookingRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ repository.BookingRepository = (*BookingRepository)(nil)

// Save upserts a booking. The booking subsystem owns the collection; this is
// used by the import tooling and to seed local data.
func (r *BookingRepository) Save(ctx context.Context, b *entity.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	now := r.now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	opts := options.Replace().SetUpsert(true)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": b.ID.String()}, newBookingDoc(b), opts)
	return err
}

func (r *BookingRepository) GetByID(ctx context.Context, businessID, id uuid.UUID) (*entity.Booking, error) {
	var doc bookingDoc
	filter := bson.M{"_id": id.String(), "business_id": businessID.String(), "deleted_at": nil}
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b := doc.toEntity()
	return &b, nil
}

func (r *BookingRepository) FindForIdentity(ctx context.Context, businessID uuid.UUID, filter identity.Filter, limit int) ([]entity.Booking, error) {
	if filter.IsEmpty() {
		return nil, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.coll.Find(ctx, notCancelled(identityFilter(businessID, filter)), opts)
	if err != nil {
		return nil, err
	}

	var docs []bookingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	bookings := make([]entity.Booking, 0, len(docs))
	for _, doc := range docs {
		bookings = append(bookings, doc.toEntity())
	}
	return bookings, nil
}

func (r *BookingRepository) CountCancelledForIdentity(ctx context.Context, businessID uuid.UUID, filter identity.Filter) (int64, error) {
	if filter.IsEmpty() {
		return 0, nil
	}
	return r.coll.CountDocuments(ctx, onlyCancelled(identityFilter(businessID, filter)))
}

func (r *BookingRepository) AssignCustomer(ctx context.Context, businessID, bookingID, clientID uuid.UUID) error {
	filter := bson.M{"_id": bookingID.String(), "business_id": businessID.String(), "deleted_at": nil}
	update := bson.M{"$set": bson.M{"customer_id": clientID.String(), "updated_at": r.now()}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
