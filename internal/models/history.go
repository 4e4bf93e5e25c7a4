package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// History categories, matching the labels shown in the app history screen.
const (
	HistoryWorkshops = "Talleres"
	HistoryDiagnosis = "Diagnóstico"
)

// SearchRecord is one entry of a user's recent searches.
type SearchRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"-"`
	Category  string             `bson:"category" json:"category"`
	Detail    string             `bson:"detail" json:"detail"`
	RequestID string             `bson:"request_id,omitempty" json:"request_id,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
