package repository

import (
	"context"
	"time"

	"github.com/coastwatch-app/coastwatch/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The resource-service contract is defined once against these interfaces;
// exactly one adapter exists per target datastore (Mongo in production,
// in-memory for tests and demo mode). Update takes the fully merged entity
// together with the version the caller read; the adapter performs a
// conditional write and returns apperr.ErrConflict on a version mismatch.

type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, expectedVersion int64, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetStats(ctx context.Context, id primitive.ObjectID, stats models.UserStats) error
	TouchLastActive(ctx context.Context, id primitive.ObjectID) error
}

type FAQRepository interface {
	Create(ctx context.Context, faq *models.FAQ) (*models.FAQ, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.FAQ, error)
	// List returns FAQs ordered by category, then explicit order. An empty
	// status means no status filter.
	List(ctx context.Context, status string) ([]models.FAQ, error)
	Update(ctx context.Context, id primitive.ObjectID, expectedVersion int64, faq *models.FAQ) (*models.FAQ, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// IncrementViewCount atomically bumps the counter and returns the
	// updated document.
	IncrementViewCount(ctx context.Context, id primitive.ObjectID) (*models.FAQ, error)
}

type UpdateRepository interface {
	Create(ctx context.Context, update *models.Update) (*models.Update, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Update, error)
	List(ctx context.Context) ([]models.Update, error)
	// ListPublished excludes auto-expired records even when their stored
	// status still reads published.
	ListPublished(ctx context.Context, now time.Time) ([]models.Update, error)
	ListDueForPublish(ctx context.Context, now time.Time) ([]models.Update, error)
	Update(ctx context.Context, id primitive.ObjectID, expectedVersion int64, update *models.Update) (*models.Update, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ReadingRepository interface {
	Create(ctx context.Context, reading *models.Reading) (*models.Reading, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reading, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Reading, error)
	List(ctx context.Context) ([]models.Reading, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, notif *models.Notification) (*models.Notification, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	// ListForUser returns the user's own notifications plus broadcasts,
	// newest first, excluding expired ones.
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteExpired(ctx context.Context) (int64, error)
}
