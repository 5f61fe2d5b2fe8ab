package models

import "time"

// InvoiceSequence is the per-month invoice counter. ID is the YYYYMM scope.
type InvoiceSequence struct {
	ID        string    `bson:"_id" json:"yearMonth"`
	LastValue int64     `bson:"last_value" json:"lastValue"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
