package users

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
	COLLECTION_NAME_USERS    = "users"
	COLLECTION_NAME_PROFILES = "profiles"
)

type UserDBService struct {
	DBClient     *mongo.Client
	timeout      int
	DBNamePrefix string
}

func NewUserDBService(configs db.DBConfig) (*UserDBService, error) {
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

	userDBSc := &UserDBService{
		DBClient:     dbClient,
		timeout:      configs.Timeout,
		DBNamePrefix: configs.DBNamePrefix,
	}

	if err := userDBSc.ensureIndexes(); err != nil {
		slog.Error("Error ensuring indexes for user DB", slog.String("error", err.Error()))
	}

	return userDBSc, nil
}

func (dbService *UserDBService) getDBName() string {
	return dbService.DBNamePrefix + "userDB"
}

func (dbService *UserDBService) collectionUsers() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_USERS)
}

func (dbService *UserDBService) collectionProfiles() *mongo.Collection {
	return dbService.DBClient.Database(dbService.getDBName()).Collection(COLLECTION_NAME_PROFILES)
}

func (dbService *UserDBService) getContext() (ctx context.Context, cancel context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(dbService.timeout)*time.Second)
}

func (dbService *UserDBService) ensureIndexes() error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionUsers().Indexes().CreateMany(
		ctx, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "account.email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "timestamps.createdAt", Value: 1}},
			},
		},
	)
	return err
}
