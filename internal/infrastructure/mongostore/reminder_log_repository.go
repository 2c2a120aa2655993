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

// ReminderLogRepository implements repository.ReminderLogRepository on MongoDB.
type ReminderLogRepository struct {
	coll *mongo.Collection
}

var _ repository.ReminderLogRepository = (*ReminderLogRepository)(nil)

func (r *ReminderLogRepository) Create(ctx context.Context, log *entity.ReminderLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	_, err := r.coll.InsertOne(ctx, reminderDoc{
		ID:         log.ID.String(),
		BusinessID: log.BusinessID.String(),
		ClientID:   log.ClientID.String(),
		Channel:    log.Channel,
		Recipient:  log.Recipient,
		Status:     log.Status,
		ProviderID: log.ProviderID,
		Error:      log.Error,
		SentAt:     log.SentAt,
	})
	return err
}

func (r *ReminderLogRepository) LastSentAt(ctx context.Context, businessID, clientID uuid.UUID) (*time.Time, error) {
	var doc reminderDoc
	filter := bson.M{
		"business_id": businessID.String(),
		"client_id":   clientID.String(),
		"status":      entity.ReminderStatusSent,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "sent_at", Value: -1}})
	err := r.coll.FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc.SentAt, nil
}
