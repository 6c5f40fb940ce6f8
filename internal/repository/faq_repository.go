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

// MongoFAQRepository handles database operations related to FAQs.
type MongoFAQRepository struct {
	collection *mongo.Collection
}

func NewMongoFAQRepository(db *mongo.Database) *MongoFAQRepository {
	return &MongoFAQRepository{
		collection: db.Collection("faqs"),
	}
}

func (r *MongoFAQRepository) Create(ctx context.Context, faq *models.FAQ) (*models.FAQ, error) {
	faq.CreatedAt = time.Now()
	faq.UpdatedAt = faq.CreatedAt
	faq.Version = 1

	result, err := r.collection.InsertOne(ctx, faq)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert FAQ")
		return nil, apperr.Upstream("insert faq", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, apperr.Upstream("insert faq", errors.New("unexpected inserted id type"))
	}
	faq.ID = insertedID

	logrus.WithField("faqID", faq.ID.Hex()).Info("FAQ created successfully")
	return faq, nil
}

func (r *MongoFAQRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FAQ, error) {
	var faq models.FAQ
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&faq)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFoundf("faq not found")
		}
		return nil, apperr.Upstream("find faq", err)
	}
	return &faq, nil
}

// List returns FAQs ordered by category, then the explicit order field.
func (r *MongoFAQRepository) List(ctx context.Context, status string) ([]models.FAQ, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{
		{Key: "category", Value: 1},
		{Key: "order", Value: 1},
		{Key: "created_at", Value: -1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Upstream("fetch faqs", err)
	}
	defer cursor.Close(ctx)

	var faqs []models.FAQ
	if err := cursor.All(ctx, &faqs); err != nil {
		return nil, apperr.Upstream("decode faqs", err)
	}
	return faqs, nil
}

func (r *MongoFAQRepository) Update(ctx context.Context, id primitive.ObjectID, expectedVersion int64, faq *models.FAQ) (*models.FAQ, error) {
	faq.ID = id
	faq.Version = expectedVersion + 1
	faq.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": id, "version": expectedVersion}, faq)
	if err != nil {
		logrus.WithField("faqID", id.Hex()).WithError(err).Error("Failed to update FAQ")
		return nil, apperr.Upstream("update faq", err)
	}
	if result.MatchedCount == 0 {
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if countErr == nil && count > 0 {
			return nil, apperr.Conflictf("faq was modified concurrently, refresh and retry")
		}
		return nil, apperr.NotFoundf("faq not found")
	}

	logrus.WithField("faqID", id.Hex()).Info("FAQ updated successfully")
	return faq, nil
}

func (r *MongoFAQRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithField("faqID", id.Hex()).WithError(err).Error("Failed to delete FAQ")
		return apperr.Upstream("delete faq", err)
	}
	if result.DeletedCount == 0 {
		return apperr.NotFoundf("faq not found")
	}
	return nil
}

// IncrementViewCount atomically bumps the counter and returns the updated
// document. Detail reads only; list reads never call this.
func (r *MongoFAQRepository) IncrementViewCount(ctx context.Context, id primitive.ObjectID) (*models.FAQ, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var faq models.FAQ
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"view_count": 1}},
		opts,
	).Decode(&faq)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFoundf("faq not found")
		}
		return nil, apperr.Upstream("increment faq view count", err)
	}
	return &faq, nil
}
