package models

import (
	"time"

	"gulmohar/billing/internal/utils"
)

// IBase is implemented by every persisted document so db.InsertOne can
// assign ids and timestamps uniformly.
type IBase interface {
	GenIDIfEmpty()
	GenID()
	GetID() utils.SixID
	Touch(now time.Time)
}

type Base struct {
	ID        utils.SixID `bson:"_id" json:"id"`
	CreatedAt time.Time   `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updatedAt"`
}

func (m *Base) GenIDIfEmpty() {
	if m.ID.IsZero() {
		m.GenID()
	}
}

func (m *Base) GenID() {
	m.ID = utils.NewSixID()
}

func (m *Base) GetID() utils.SixID {
	return m.ID
}

// Touch sets CreatedAt once and UpdatedAt every time.
func (m *Base) Touch(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}
