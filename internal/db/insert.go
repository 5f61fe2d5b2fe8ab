package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"gulmohar/billing/internal/models"
)

// InsertOne stores doc with a freshly generated id, drawing a new id when
// the previous one collides on _id. Any other duplicate key (for example a
// unique business field) is returned unchanged to the caller. Timestamps are
// the caller's job.
func InsertOne[T models.IBase](ctx context.Context, coll *mongo.Collection, doc T) (T, error) {
	err := WithRetries(ctx, func(attempt int) error {
		if attempt == 0 {
			doc.GenIDIfEmpty()
		} else {
			doc.GenID()
		}
		_, err := coll.InsertOne(ctx, doc)
		return err
	}, DefaultMaxRetries, func(err error) bool {
		return IsDuplicateKeyOnIndex(err, "_id_")
	})
	return doc, err
}
