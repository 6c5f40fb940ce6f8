package repository

import (
	"context"
	"errors"
	"time"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository handles database operations related to users.
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		collection: db.Collection("users"),
	}
}

// Create inserts a new user into the database.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	user.Version = 1

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, apperr.Upstream("insert user", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, apperr.Upstream("insert user", errors.New("unexpected inserted id type"))
	}
	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetByID retrieves a user by their ID.
func (r *MongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFoundf("user not found")
		}
		logrus.WithField("userID", id.Hex()).WithError(err).Error("Failed to find user by ID")
		return nil, apperr.Upstream("find user", err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFoundf("user not found")
		}
		logrus.WithField("email", email).WithError(err).Error("Failed to find user by email")
		return nil, apperr.Upstream("find user", err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFoundf("user not found")
		}
		logrus.WithField("username", username).WithError(err).Error("Failed to find user by username")
		return nil, apperr.Upstream("find user", err)
	}
	return &user, nil
}

// List fetches all users, newest first.
func (r *MongoUserRepository) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperr.Upstream("fetch users", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, apperr.Upstream("decode users", err)
	}
	return users, nil
}

// Update replaces the user document conditionally on the version the caller
// read. A mismatch surfaces as Conflict.
func (r *MongoUserRepository) Update(ctx context.Context, id primitive.ObjectID, expectedVersion int64, user *models.User) (*models.User, error) {
	user.ID = id
	user.Version = expectedVersion + 1
	user.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id, "version": expectedVersion}, user)
	if err != nil {
		logrus.WithField("userID", id.Hex()).WithError(err).Error("Failed to update user")
		return nil, apperr.Upstream("update user", err)
	}
	if result.MatchedCount == 0 {
		return nil, r.conflictOrNotFound(ctx, id)
	}

	logrus.WithField("userID", id.Hex()).Info("User updated successfully")
	return user, nil
}

// Delete removes a user from the database.
func (r *MongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithField("userID", id.Hex()).WithError(err).Error("Failed to delete user")
		return apperr.Upstream("delete user", err)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFoundf("user not found")
	}

	logrus.WithField("userID", id.Hex()).Info("User deleted successfully")
	return nil
}

// SetStats overwrites the stats block. Only the reading pipeline calls this.
func (r *MongoUserRepository) SetStats(ctx context.Context, id primitive.ObjectID, stats models.UserStats) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"stats": stats, "updated_at": time.Now()},
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return apperr.Upstream("update user stats", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFoundf("user not found")
	}
	return nil
}

// TouchLastActive refreshes the last-active marker without bumping version.
func (r *MongoUserRepository) TouchLastActive(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"last_active": time.Now()},
	})
	if err != nil {
		return apperr.Upstream("touch last active", err)
	}
	return nil
}

func (r *MongoUserRepository) conflictOrNotFound(ctx context.Context, id primitive.ObjectID) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err == nil && count > 0 {
		return apperr.Conflictf("user was modified concurrently, refresh and retry")
	}
	return apperr.NotFoundf("user not found")
}
