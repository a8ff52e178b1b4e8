package users

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	userTypes "github.com/finnscodingadventure/digilizeforms/pkg/user-management/types"
)

// GetProfileByID returns nil without error when no profile row exists.
func (dbService *UserDBService) GetProfileByID(userID string) (*userTypes.Profile, error) {
	ctx, cancel := dbService.getContext()
	defer cancel()

	var profile userTypes.Profile
	err := dbService.collectionProfiles().FindOne(ctx, bson.M{"_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// CreateProfile inserts a profile row keyed by the user id. Inserting an
// already existing profile is treated as success so that profile-ensure
// stays idempotent.
func (dbService *UserDBService) CreateProfile(profile userTypes.Profile) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	_, err := dbService.collectionProfiles().InsertOne(ctx, profile)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return err
	}
	return nil
}

func (dbService *UserDBService) UpdateProfile(profile userTypes.Profile) error {
	ctx, cancel := dbService.getContext()
	defer cancel()

	res, err := dbService.collectionProfiles().ReplaceOne(ctx, bson.M{"_id": profile.ID}, profile)
	if err != nil {
		return err
	}
	if res.MatchedCount < 1 {
		return ErrUserNotFound
	}
	return nil
}
