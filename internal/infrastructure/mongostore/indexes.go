package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// indexSpecs lists the indexes each collection needs. The two partial unique
// indexes on clients hold at most one active client per identifier.
func indexSpecs() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		collClients: {
			{
				Keys: bson.D{{Key: "business_id", Value: 1}, {Key: "email_normalized", Value: 1}},
				Options: options.Index().
					SetName("uniq_active_email").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{
						"active":           true,
						"email_normalized": bson.M{"$gt": ""},
					}),
			},
			{
				Keys: bson.D{{Key: "business_id", Value: 1}, {Key: "phone_match_key", Value: 1}},
				Options: options.Index().
					SetName("uniq_active_phone").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{
						"active":          true,
						"phone_match_key": bson.M{"$exists": true},
					}),
			},
			{
				Keys:    bson.D{{Key: "business_id", Value: 1}, {Key: "phone_normalized", Value: 1}},
				Options: options.Index().SetName("business_phone"),
			},
			{
				Keys:    bson.D{{Key: "business_id", Value: 1}, {Key: "active", Value: 1}, {Key: "stats.last_visit", Value: 1}},
				Options: options.Index().SetName("business_last_visit"),
			},
		},
		collBookings: {
			{
				Keys:    bson.D{{Key: "business_id", Value: 1}, {Key: "customer_id", Value: 1}},
				Options: options.Index().SetName("business_customer"),
			},
			{
				Keys:    bson.D{{Key: "business_id", Value: 1}, {Key: "date", Value: -1}},
				Options: options.Index().SetName("business_date"),
			},
		},
		collBusinesses: {
			{
				Keys:    bson.D{{Key: "slug", Value: 1}},
				Options: options.Index().SetName("uniq_slug").SetUnique(true),
			},
		},
		collIdempotency: {
			{
				Keys:    bson.D{{Key: "business_id", Value: 1}, {Key: "key", Value: 1}},
				Options: options.Index().SetName("uniq_business_key").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetName("ttl_expires_at").SetExpireAfterSeconds(0),
			},
		},
		collReminders: {
			{
				Keys:    bson.D{{Key: "business_id", Value: 1}, {Key: "client_id", Value: 1}, {Key: "sent_at", Value: -1}},
				Options: options.Index().SetName("business_client_sent"),
			},
		},
	}
}

// EnsureIndexes creates every index. Creating an identical index again is a
// no-op on the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for coll, models := range indexSpecs() {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
