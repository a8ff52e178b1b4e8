package forms

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/finnscodingadventure/digilizeforms/pkg/db"
)

// collection names
const (
	COLLECTION_NAME_FORMS          = "forms"
	COLLECTION_NAME_FORM_RESPONSES = "formResponses"
)

type FormsDBService struct {
	DBClient     *mongo.Client
	timeout      int
	DBNamePrefix string
}

func NewFormsDBService(configs db.DBConfig) (*FormsDBService, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer cancel()

	dbClient, err := mongo.Connect(ctx,
		options.Client().ApplyURI(configs.URI),
		options.Client().SetMaxConnIdleTime(time.Duration(configs.IdleConnTimeout)*time.Second),
		options.Client().SetMaxPoolSize(configs.MaxPoolSize),
	)
	if err != nil {
		return nil, err
	}

	ctx, conCancel := context.WithTimeout(context.Background(), time.Duration(configs.Timeout)*time.Second)
	defer conCancel()
	err = dbClient.Ping(ctx, nil)
	if err != nil {
		return nil, err
	}

	formsDBSc := &FormsDBService{
		DBClient:     dbClient,
		timeout:      configs.Timeout,
		DBNamePrefix: configs.DBNamePrefix,
	}

	if err := formsDBSc.ensureIndexes(); err != nil {
		slog.Error("Error ensuring indexes for forms DB", slog.String("error", err.Error()))
	}

	return formsDBSc, nil
}

func (dbService *FormsDBService) getDBName() string {
	return dbService.DBNamePrefix + "formsDB"
}

func (dbService *FormsDBService) collectionForms() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_FORMS)
}

func (dbService *FormsDBService) collectionFormResponses() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_FORM_RESPONSES)
}

func (dbService *FormsDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *FormsDBService) ensureIndexes() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionForms().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "ownerId", Value: 1},
					{Key: "updatedAt", Value: -1},
				},
			},
			{
				Keys: bson.D{
					{Key: "isPublished", Value: 1},
				},
			},
		},
	)
	if err != nil {
		return err
	}

	_, err = dbService.collectionFormResponses().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "formId", Value: 1},
					{Key: "createdAt", Value: -1},
				},
			},
		},
	)
	return err
}
