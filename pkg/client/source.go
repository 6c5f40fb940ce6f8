package client

import (
	"context"
	"time"

	"github.com/coastwatch-app/coastwatch/internal/models"
)

// DataSource is the backend a SyncStore reads from and writes through. The
// remote implementation talks to the CoastWatch API; the fixture
// implementation serves a built-in demo dataset when the backend is
// unreachable.
type DataSource interface {
	Login(ctx context.Context, email, password string) (*models.AuthResponse, error)

	ListFAQs(ctx context.Context) ([]models.FAQ, error)
	CreateFAQ(ctx context.Context, faq models.FAQ) (*models.FAQ, error)
	PatchFAQ(ctx context.Context, id string, patch models.FAQPatch) (*models.FAQ, error)
	DeleteFAQ(ctx context.Context, id string) error

	ListUpdates(ctx context.Context) ([]models.UpdateView, error)
	CreateUpdate(ctx context.Context, update models.Update) (*models.Update, error)
	PatchUpdate(ctx context.Context, id string, patch models.UpdatePatch) (*models.Update, error)
	DeleteUpdate(ctx context.Context, id string) error

	ListUsers(ctx context.Context) ([]models.User, error)
	PatchUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error

	ListNotifications(ctx context.Context) ([]models.Notification, error)
}

// SystemStats is derived locally from the loaded collections.
type SystemStats struct {
	TotalFAQs          int       `json:"totalFaqs"`
	TotalUpdates       int       `json:"totalUpdates"`
	TotalUsers         int       `json:"totalUsers"`
	ActiveUsers        int       `json:"activeUsers"`
	TotalNotifications int       `json:"totalNotifications"`
	GeneratedAt        time.Time `json:"generatedAt"`
}
