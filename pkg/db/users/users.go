package users

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	userTypes "github.com/finnscodingadventure/digilizeforms/pkg/user-management/types"
)

var ErrUserNotFound = errors.New("user not found")

func (dbService *UserDBService) CreateUser(user userTypes.User) (id string, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	if user.Timestamps.CreatedAt == 0 {
		user.Timestamps.CreatedAt = time.Now().Unix()
	}

	ret, err := dbService.collectionUsers().InsertOne(ctx, user)
	if err != nil {
		return "", err
	}
	return ret.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (dbService *UserDBService) GetUserByEmail(email string) (user userTypes.User, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"account.email": email}
	err = dbService.collectionUsers().FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user, ErrUserNotFound
		}
		return user, err
	}
	return user, nil
}

func (dbService *UserDBService) GetUserByID(userID string) (user userTypes.User, err error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return user, ErrUserNotFound
	}

	err = dbService.collectionUsers().FindOne(ctx, bson.M{"_id": _id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user, ErrUserNotFound
		}
		return user, err
	}
	return user, nil
}

func (dbService *UserDBService) ReplaceUser(user userTypes.User) (userTypes.User, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	filter := bson.M{"_id": user.ID}
	res, err := dbService.collectionUsers().ReplaceOne(ctx, filter, user)
	if err != nil {
		return user, err
	}
	if res.MatchedCount < 1 {
		return user, ErrUserNotFound
	}
	return user, nil
}

func (dbService *UserDBService) SaveFailedLoginAttempt(userID string) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrUserNotFound
	}

	update := bson.M{
		"$push": bson.M{"account.failedLoginAttempts": time.Now().Unix()},
	}
	_, err = dbService.collectionUsers().UpdateOne(ctx, bson.M{"_id": _id}, update)
	return err
}
