package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Operation performs one attempt. attempt starts at 0.
type Operation func(attempt int) error

// IsRetryable reports whether a failed attempt may be repeated.
type IsRetryable func(err error) bool

const DefaultMaxRetries = 3

// Backoff is the pause before retry number attempt+1. Tests set it to
// return 0.
var Backoff = func(attempt int) time.Duration {
	return time.Duration(50*(attempt+1)) * time.Millisecond
}

// Try runs op with DefaultMaxRetries, retrying only duplicate key errors.
func Try(ctx context.Context, op Operation) error {
	return WithRetries(ctx, op, DefaultMaxRetries, IsMongoDuplicateKeyError)
}

// WithRetries runs op once plus up to maxRetries more times while
// isRetryable accepts the error. The last error is returned when retries
// run out. A cancelled context stops the loop between attempts.
func WithRetries(ctx context.Context, op Operation, maxRetries int, isRetryable IsRetryable) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = op(attempt)
		if err == nil {
			return nil
		}
		if attempt == maxRetries || !isRetryable(err) {
			return err
		}

		if d := Backoff(attempt); d > 0 {
			timer := time.NewTimer(d)
			select {
			case <-ctx.Done():
				timer.Stop()
				return errors.Join(err, ctx.Err())
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return errors.Join(err, ctx.Err())
		}
	}
	return err
}

// IsMongoDuplicateKeyError checks if an error from MongoDB is a duplicate key error (code 11000).
func IsMongoDuplicateKeyError(err error) bool {
	return len(duplicateKeyMessages(err)) > 0
}

// IsDuplicateKeyOnIndex narrows IsMongoDuplicateKeyError to one index, e.g.
// "_id_" or "invoice_number_1".
func IsDuplicateKeyOnIndex(err error, index string) bool {
	for _, msg := range duplicateKeyMessages(err) {
		if strings.Contains(msg, "index: "+index+" ") {
			return true
		}
	}
	return false
}

func duplicateKeyMessages(err error) []string {
	var msgs []string
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				msgs = append(msgs, e.Message)
			}
		}
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == 11000 {
				msgs = append(msgs, e.Message)
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		msgs = append(msgs, ce.Message)
	}
	return msgs
}
