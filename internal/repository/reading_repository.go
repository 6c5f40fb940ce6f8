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

// MongoReadingRepository handles database operations related to readings.
type MongoReadingRepository struct {
	collection *mongo.Collection
}

func NewMongoReadingRepository(db *mongo.Database) *MongoReadingRepository {
	return &MongoReadingRepository{
		collection: db.Collection("readings"),
	}
}

func (r *MongoReadingRepository) Create(ctx context.Context, reading *models.Reading) (*models.Reading, error) {
	reading.CreatedAt = time.Now()
	reading.UpdatedAt = reading.CreatedAt
	reading.Version = 1

	result, err := r.collection.InsertOne(ctx, reading)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert reading")
		return nil, apperr.Upstream("insert reading", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, apperr.Upstream("insert reading", errors.New("unexpected inserted id type"))
	}
	reading.ID = insertedID

	logrus.WithFields(logrus.Fields{
		"readingID": reading.ID.Hex(),
		"userID":    reading.UserID.Hex(),
		"parameter": reading.Parameter,
	}).Info("Reading created successfully")
	return reading, nil
}

func (r *MongoReadingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reading, error) {
	var reading models.Reading
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reading)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFoundf("reading not found")
		}
		return nil, apperr.Upstream("find reading", err)
	}
	return &reading, nil
}

// ListByUser returns a user's readings, most recent measurement first.
func (r *MongoReadingRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Reading, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, apperr.Upstream("fetch readings", err)
	}
	defer cursor.Close(ctx)

	var readings []models.Reading
	if err := cursor.All(ctx, &readings); err != nil {
		return nil, apperr.Upstream("decode readings", err)
	}
	return readings, nil
}

// List returns all readings, newest first. Admin surface.
func (r *MongoReadingRepository) List(ctx context.Context) ([]models.Reading, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperr.Upstream("fetch readings", err)
	}
	defer cursor.Close(ctx)

	var readings []models.Reading
	if err := cursor.All(ctx, &readings); err != nil {
		return nil, apperr.Upstream("decode readings", err)
	}
	return readings, nil
}

func (r *MongoReadingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithField("readingID", id.Hex()).WithError(err).Error("Failed to delete reading")
		return apperr.Upstream("delete reading", err)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFoundf("reading not found")
	}
	return nil
}
