package forms

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	formTypes "github.com/finnscodingadventure/digilizeforms/pkg/forms/types"
)

var (
	sortByUpdatedAtDesc = bson.D{
		primitive.E{Key: "updatedAt", Value: -1},
	}

	projectionForFormList = bson.D{
		primitive.E{Key: "ownerId", Value: 1},
		primitive.E{Key: "title", Value: 1},
		primitive.E{Key: "description", Value: 1},
		primitive.E{Key: "isPublished", Value: 1},
		primitive.E{Key: "createdAt", Value: 1},
		primitive.E{Key: "updatedAt", Value: 1},
	}
)

// GetFormsByOwner returns the owner's forms as a projection without the
// form structure, newest update first.
func (dbService *FormsDBService) GetFormsByOwner(ctx context.Context, ownerID string) (forms []formTypes.FormDocument, err error) {
	opts := &options.FindOptions{}
	opts.SetProjection(projectionForFormList)
	opts.SetSort(sortByUpdatedAtDesc)

	cursor, err := dbService.collectionForms().Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return forms, err
	}
	defer cursor.Close(ctx)

	forms = []formTypes.FormDocument{}
	if err = cursor.All(ctx, &forms); err != nil {
		return nil, err
	}
	return forms, nil
}

func (dbService *FormsDBService) GetFormByID(ctx context.Context, formID string, ownerID string) (*formTypes.FormDocument, error) {
	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return nil, formTypes.ErrNotFound
	}

	filter := bson.M{
		"_id":     _id,
		"ownerId": ownerID,
	}

	var form formTypes.FormDocument
	err = dbService.collectionForms().FindOne(ctx, filter).Decode(&form)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, formTypes.ErrNotFound
		}
		return nil, err
	}
	return &form, nil
}

// GetPublishedFormByID is the only read path available to anonymous
// callers. It must never return unpublished forms.
func (dbService *FormsDBService) GetPublishedFormByID(ctx context.Context, formID string) (*formTypes.FormDocument, error) {
	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return nil, formTypes.ErrNotFound
	}

	filter := bson.M{
		"_id":         _id,
		"isPublished": true,
	}

	var form formTypes.FormDocument
	err = dbService.collectionForms().FindOne(ctx, filter).Decode(&form)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, formTypes.ErrNotFound
		}
		return nil, err
	}
	return &form, nil
}

// CreateForm inserts a new form row. OwnerID must be set by the caller;
// writes without an owner are rejected here as a defense-in-depth check.
func (dbService *FormsDBService) CreateForm(ctx context.Context, form *formTypes.FormDocument) (*formTypes.FormDocument, error) {
	if form.OwnerID == "" {
		return nil, formTypes.ErrNoIdentity
	}

	now := time.Now().UTC()
	form.CreatedAt = now
	form.UpdatedAt = now

	ret, err := dbService.collectionForms().InsertOne(ctx, form)
	if err != nil {
		return nil, err
	}
	form.ID = ret.InsertedID.(primitive.ObjectID)
	return form, nil
}

// UpdateForm applies a sparse patch filtered by both form id and owner and
// returns the updated document. Zero matched rows yield ErrNotFound.
func (dbService *FormsDBService) UpdateForm(ctx context.Context, formID string, ownerID string, patch formTypes.FormPatch) (*formTypes.FormDocument, error) {
	if ownerID == "" {
		return nil, formTypes.ErrNoIdentity
	}
	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return nil, formTypes.ErrNotFound
	}

	set := bson.M{
		"updatedAt": time.Now().UTC(),
	}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Structure != nil {
		set["structure"] = *patch.Structure
	}
	if patch.IsPublished != nil {
		set["isPublished"] = *patch.IsPublished
	}

	filter := bson.M{
		"_id":     _id,
		"ownerId": ownerID,
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated formTypes.FormDocument
	err = dbService.collectionForms().FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, formTypes.ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// DeleteForm removes the form and its responses, filtered by id and owner.
func (dbService *FormsDBService) DeleteForm(ctx context.Context, formID string, ownerID string) error {
	if ownerID == "" {
		return formTypes.ErrNoIdentity
	}
	_id, err := primitive.ObjectIDFromHex(formID)
	if err != nil {
		return formTypes.ErrNotFound
	}

	res, err := dbService.collectionForms().DeleteOne(ctx, bson.M{"_id": _id, "ownerId": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount < 1 {
		return formTypes.ErrNotFound
	}

	// responses are owned by the form, remove them together
	_, err = dbService.collectionFormResponses().DeleteMany(ctx, bson.M{"formId": formID})
	return err
}
