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

// Notifications are kept for a week, then swept by the scheduler.
const notificationTTL = 7 * 24 * time.Hour

// MongoNotificationRepository handles database operations related to
// notifications.
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{
		collection: db.Collection("notifications"),
	}
}

func (r *MongoNotificationRepository) Create(ctx context.Context, notif *models.Notification) (*models.Notification, error) {
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = notif.CreatedAt.Add(notificationTTL)

	result, err := r.collection.InsertOne(ctx, notif)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert notification")
		return nil, apperr.Upstream("insert notification", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, apperr.Upstream("insert notification", errors.New("unexpected inserted id type"))
	}
	notif.ID = insertedID
	return notif, nil
}

func (r *MongoNotificationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	var notif models.Notification
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&notif)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFoundf("notification not found")
		}
		return nil, apperr.Upstream("find notification", err)
	}
	return &notif, nil
}

// ListForUser returns the user's own notifications plus broadcasts, newest
// first, excluding expired ones.
func (r *MongoNotificationRepository) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	filter := bson.M{
		"expires_at": bson.M{"$gt": time.Now()},
		"$or": []bson.M{
			{"user_id": userID},
			{"user_id": bson.M{"$exists": false}},
			{"user_id": nil},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Upstream("fetch notifications", err)
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, apperr.Upstream("decode notifications", err)
	}
	return notifications, nil
}

// MarkAsRead sets the notification's Read flag.
func (r *MongoNotificationRepository) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return apperr.Upstream("mark notification read", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFoundf("notification not found")
	}
	return nil
}

func (r *MongoNotificationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperr.Upstream("delete notification", err)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFoundf("notification not found")
	}
	return nil
}

// DeleteExpired purges notifications past their TTL.
func (r *MongoNotificationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now()}})
	if err != nil {
		return 0, apperr.Upstream("delete expired notifications", err)
	}
	if result.DeletedCount > 0 {
		logrus.Infof("Deleted %d expired notifications", result.DeletedCount)
	}
	return result.DeletedCount, nil
}
