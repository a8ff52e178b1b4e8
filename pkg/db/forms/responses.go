package forms

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	formTypes "github.com/finnscodingadventure/digilizeforms/pkg/forms/types"
)

var sortByCreatedAtDesc = bson.D{
	primitive.E{Key: "createdAt", Value: -1},
}

// SaveResponse inserts a new response row. Responses are immutable once
// created; there is no update path.
func (dbService *FormsDBService) SaveResponse(ctx context.Context, response *formTypes.FormResponse) (*formTypes.FormResponse, error) {
	response.CreatedAt = time.Now().UTC()

	ret, err := dbService.collectionFormResponses().InsertOne(ctx, response)
	if err != nil {
		return nil, err
	}
	response.ID = ret.InsertedID.(primitive.ObjectID)
	return response, nil
}

// GetResponsesForForm returns all responses of a form, newest first.
func (dbService *FormsDBService) GetResponsesForForm(ctx context.Context, formID string) (responses []formTypes.FormResponse, err error) {
	opts := &options.FindOptions{}
	opts.SetSort(sortByCreatedAtDesc)

	cursor, err := dbService.collectionFormResponses().Find(ctx, bson.M{"formId": formID}, opts)
	if err != nil {
		return responses, err
	}
	defer cursor.Close(ctx)

	responses = []formTypes.FormResponse{}
	if err = cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

// GetResponseCountsByOwner aggregates response counts per form for all
// forms of the given owner. Rows that fail to decode are skipped.
func (dbService *FormsDBService) GetResponseCountsByOwner(ctx context.Context, ownerID string) (counts []formTypes.FormResponseCount, err error) {
	opts := &options.FindOptions{}
	opts.SetProjection(bson.D{primitive.E{Key: "_id", Value: 1}})

	cursor, err := dbService.collectionForms().Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return counts, err
	}

	formIDs := []string{}
	for cursor.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			slog.Warn("failed to decode form id row", slog.String("error", err.Error()))
			continue
		}
		formIDs = append(formIDs, row.ID.Hex())
	}
	cursor.Close(ctx)

	counts = []formTypes.FormResponseCount{}
	if len(formIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"formId": bson.M{"$in": formIDs}}}},
		bson.D{{Key: "$group", Value: bson.M{"_id": "$formId", "count": bson.M{"$sum": 1}}}},
	}

	aggCursor, err := dbService.collectionFormResponses().Aggregate(ctx, pipeline)
	if err != nil {
		return counts, err
	}
	defer aggCursor.Close(ctx)

	for aggCursor.Next(ctx) {
		var row formTypes.FormResponseCount
		if err := aggCursor.Decode(&row); err != nil {
			slog.Warn("failed to decode response count row", slog.String("error", err.Error()))
			continue
		}
		counts = append(counts, row)
	}
	return counts, aggCursor.Err()
}
