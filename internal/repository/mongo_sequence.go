package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gulmohar/billing/internal/db"
	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/models"
)

type mongoSequenceRepository struct {
	coll *mongo.Collection
}

func NewMongoSequenceRepository(database *mongo.Database) SequenceRepository {
	return &mongoSequenceRepository{coll: database.Collection(db.SequencesCollection)}
}

// Next uses $inc with upsert. Two first-of-the-month upserts can race on
// _id; the loser simply retries and increments the winner's document.
func (r *mongoSequenceRepository) Next(ctx context.Context, key string, now time.Time) (int64, error) {
	var seq models.InvoiceSequence
	err := db.Try(ctx, func(int) error {
		return r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": key},
			bson.M{
				"$inc": bson.M{"last_value": int64(1)},
				"$set": bson.M{"updated_at": now},
			},
			options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
		).Decode(&seq)
	})
	if err != nil {
		return 0, ierr.WithError(err).
			WithMessagef("failed to advance invoice sequence %s", key).
			Mark(ierr.ErrDatabase)
	}
	return seq.LastValue, nil
}

func (r *mongoSequenceRepository) RaiseTo(ctx context.Context, key string, value int64, now time.Time) error {
	err := db.Try(ctx, func(int) error {
		_, err := r.coll.UpdateOne(ctx,
			bson.M{"_id": key},
			bson.M{
				"$max": bson.M{"last_value": value},
				"$set": bson.M{"updated_at": now},
			},
			options.Update().SetUpsert(true),
		)
		return err
	})
	if err != nil {
		return ierr.WithError(err).
			WithMessagef("failed to raise invoice sequence %s", key).
			Mark(ierr.ErrDatabase)
	}
	return nil
}
