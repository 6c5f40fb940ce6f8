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

// MongoUpdateRepository handles database operations related to updates
// (announcements).
type MongoUpdateRepository struct {
	collection *mongo.Collection
}

func NewMongoUpdateRepository(db *mongo.Database) *MongoUpdateRepository {
	return &MongoUpdateRepository{
		collection: db.Collection("updates"),
	}
}

func (r *MongoUpdateRepository) Create(ctx context.Context, update *models.Update) (*models.Update, error) {
	update.CreatedAt = time.Now()
	update.UpdatedAt = update.CreatedAt
	update.Version = 1

	result, err := r.collection.InsertOne(ctx, update)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert update")
		return nil, apperr.Upstream("insert update", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, apperr.Upstream("insert update", errors.New("unexpected inserted id type"))
	}
	update.ID = insertedID

	logrus.WithField("updateID", update.ID.Hex()).Info("Update created successfully")
	return update, nil
}

func (r *MongoUpdateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Update, error) {
	var update models.Update
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&update)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFoundf("update not found")
		}
		return nil, apperr.Upstream("find update", err)
	}
	return &update, nil
}

// List returns every update, newest first. Admin surface.
func (r *MongoUpdateRepository) List(ctx context.Context) ([]models.Update, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperr.Upstream("fetch updates", err)
	}
	defer cursor.Close(ctx)

	var updates []models.Update
	if err := cursor.All(ctx, &updates); err != nil {
		return nil, apperr.Upstream("decode updates", err)
	}
	return updates, nil
}

// ListPublished returns published updates excluding auto-expired ones, even
// when their stored status still reads published.
func (r *MongoUpdateRepository) ListPublished(ctx context.Context, now time.Time) ([]models.Update, error) {
	filter := bson.M{
		"status": models.UpdateStatusPublished,
		"$or": []bson.M{
			{"auto_expire": false},
			{"expiration_date": bson.M{"$exists": false}},
			{"expiration_date": bson.M{"$gt": now}},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Upstream("fetch published updates", err)
	}
	defer cursor.Close(ctx)

	var updates []models.Update
	if err := cursor.All(ctx, &updates); err != nil {
		return nil, apperr.Upstream("decode updates", err)
	}
	return updates, nil
}

// ListDueForPublish returns scheduled updates whose scheduled date arrived.
func (r *MongoUpdateRepository) ListDueForPublish(ctx context.Context, now time.Time) ([]models.Update, error) {
	filter := bson.M{
		"status":         models.UpdateStatusScheduled,
		"scheduled_date": bson.M{"$lte": now},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, apperr.Upstream("fetch due updates", err)
	}
	defer cursor.Close(ctx)

	var updates []models.Update
	if err := cursor.All(ctx, &updates); err != nil {
		return nil, apperr.Upstream("decode updates", err)
	}
	return updates, nil
}

func (r *MongoUpdateRepository) Update(ctx context.Context, id primitive.ObjectID, expectedVersion int64, update *models.Update) (*models.Update, error) {
	update.ID = id
	update.Version = expectedVersion + 1
	update.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id, "version": expectedVersion}, update)
	if err != nil {
		logrus.WithField("updateID", id.Hex()).WithError(err).Error("Failed to update announcement")
		return nil, apperr.Upstream("update announcement", err)
	}
	if result.MatchedCount == 0 {
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if countErr == nil && count > 0 {
			return nil, apperr.Conflictf("update was modified concurrently, refresh and retry")
		}
		return nil, apperr.NotFoundf("update not found")
	}

	logrus.WithField("updateID", id.Hex()).Info("Update modified successfully")
	return update, nil
}

// SetStatus flips the lifecycle status without touching content. Used by the
// scheduler's publish sweep.
func (r *MongoUpdateRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return apperr.Upstream("set update status", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFoundf("update not found")
	}
	return nil
}

func (r *MongoUpdateRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithField("updateID", id.Hex()).WithError(err).Error("Failed to delete update")
		return apperr.Upstream("delete update", err)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFoundf("update not found")
	}
	return nil
}
