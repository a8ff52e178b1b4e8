package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FormResponse struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	FormID    string                 `bson:"formId" json:"formId"`
	Answers   map[string]AnswerValue `bson:"answers" json:"answers"`
	Metadata  map[string]string      `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt time.Time              `bson:"createdAt" json:"createdAt"`
}

type AnswerValue struct {
	Value interface{} `bson:"value" json:"value"`
}

type FormResponseCount struct {
	FormID string `bson:"_id" json:"formId"`
	Count  int64  `bson:"count" json:"responseCount"`
}

// FormWithResponses composes a full form document with its responses,
// newest first.
type FormWithResponses struct {
	Form      *FormDocument  `json:"form"`
	Responses []FormResponse `json:"responses"`
}
