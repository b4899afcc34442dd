package store

import (
	"context"
	"time"

	"github.com/studyaivault/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActiveUserByEmail looks up an active account by (already lowercased)
// email. Returns nil, nil when no such user exists.
func (db *DB) ActiveUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"email": email, "isActive": true}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := db.Users().FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (db *DB) CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	res, err := db.Users().InsertOne(ctx, user, options.InsertOne())
	if err != nil {
		return primitive.NilObjectID, err
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

// SaveLoginState persists the lockout counters and last-login timestamp
// after a signin attempt.
func (db *DB) SaveLoginState(ctx context.Context, user *models.User) error {
	_, err := db.Users().UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"loginAttempts": user.LoginAttempts,
		"lockUntil":     user.LockUntil,
		"lastLogin":     user.LastLogin,
		"updatedAt":     time.Now(),
	}})
	return err
}

// SaveProfile persists the mutable profile fields and the recomputed
// completion percentage. Identity and security fields are not touched.
func (db *DB) SaveProfile(ctx context.Context, user *models.User) error {
	_, err := db.Users().UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": bson.M{
		"fullName":          user.FullName,
		"bio":               user.Bio,
		"location":          user.Location,
		"website":           user.Website,
		"birthDate":         user.BirthDate,
		"avatar":            user.Avatar,
		"favoriteGenres":    user.FavoriteGenres,
		"favoriteBooks":     user.FavoriteBooks,
		"preferences":       user.Preferences,
		"privacy":           user.Privacy,
		"profileCompletion": user.ProfileCompletion,
		"updatedAt":         time.Now(),
	}})
	return err
}

func (db *DB) SaveReadingStats(ctx context.Context, id primitive.ObjectID, stats models.ReadingStats) error {
	_, err := db.Users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"readingStats": stats,
		"updatedAt":    time.Now(),
	}})
	return err
}

func (db *DB) SetVerificationToken(ctx context.Context, id primitive.ObjectID, token string) error {
	_, err := db.Users().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"verificationToken": token,
	}})
	return err
}

// VerifyEmailByToken marks the matching account verified and clears the
// token. Returns false when the token matches no account.
func (db *DB) VerifyEmailByToken(ctx context.Context, token string) (bool, error) {
	res, err := db.Users().UpdateOne(ctx,
		bson.M{"verificationToken": token, "isActive": true},
		bson.M{"$set": bson.M{"isEmailVerified": true, "verificationToken": ""}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
