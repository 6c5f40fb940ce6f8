package client

import (
	"context"
	"sync"
	"time"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FixtureSource serves a built-in demo dataset. It backs the store when the
// API is unreachable, so a fresh checkout still renders something useful.
// Mutations apply to the in-memory copies and are lost on restart.
type FixtureSource struct {
	mu            sync.Mutex
	users         []models.User
	faqs          []models.FAQ
	updates       []models.Update
	notifications []models.Notification
}

func NewFixtureSource() *FixtureSource {
	now := time.Now()
	adminID := primitive.NewObjectID()
	citizenID := primitive.NewObjectID()

	return &FixtureSource{
		users: []models.User{
			{
				ID:         adminID,
				Name:       "Demo Admin",
				Email:      "admin@coastwatch.local",
				Username:   "demo-admin",
				Role:       models.RoleAdmin,
				Status:     models.StatusActive,
				Version:    1,
				LastActive: now,
				CreatedAt:  now.AddDate(0, -2, 0),
				UpdatedAt:  now,
			},
			{
				ID:         citizenID,
				Name:       "Aminata Diallo",
				Email:      "aminata@coastwatch.local",
				Username:   "aminata",
				Role:       models.RoleCitizen,
				Team:       "North Shore",
				Status:     models.StatusActive,
				Stats:      models.UserStats{TotalReadings: 42, Streak: 6, Accuracy: 91.5, LastReadingAt: now.Add(-3 * time.Hour)},
				Version:    3,
				LastActive: now.Add(-3 * time.Hour),
				CreatedAt:  now.AddDate(0, -1, 0),
				UpdatedAt:  now.Add(-3 * time.Hour),
			},
		},
		faqs: []models.FAQ{
			{
				ID:         primitive.NewObjectID(),
				Category:   "equipment",
				Question:   "How do I calibrate the pH meter?",
				Answer:     "Rinse the probe, then use the 7.0 buffer solution before each session.",
				Priority:   models.PriorityHigh,
				Importance: models.ImportanceHigh,
				Tags:       []string{"ph", "calibration"},
				ViewCount:  128,
				Order:      1,
				Status:     models.FAQStatusActive,
				Version:    2,
				CreatedAt:  now.AddDate(0, -1, 0),
				UpdatedAt:  now.AddDate(0, 0, -10),
			},
			{
				ID:         primitive.NewObjectID(),
				Category:   "general",
				Question:   "When should I take my readings?",
				Answer:     "Morning readings within two hours of low tide give the most comparable data.",
				Priority:   models.PriorityMedium,
				Importance: models.ImportanceNormal,
				Tags:       []string{"schedule"},
				ViewCount:  74,
				Order:      1,
				Status:     models.FAQStatusActive,
				Version:    1,
				CreatedAt:  now.AddDate(0, -1, -5),
				UpdatedAt:  now.AddDate(0, -1, -5),
			},
		},
		updates: []models.Update{
			{
				ID:        primitive.NewObjectID(),
				Title:     "New turbidity protocol",
				Content:   "Starting next week all turbidity readings use the Secchi tube method.",
				Type:      models.UpdateTypeProtocol,
				Priority:  models.PriorityHigh,
				Tags:      []string{"turbidity", "protocol"},
				Status:    models.UpdateStatusPublished,
				Version:   1,
				CreatedAt: now.AddDate(0, 0, -2),
				UpdatedAt: now.AddDate(0, 0, -2),
			},
		},
		notifications: []models.Notification{
			{
				ID:        primitive.NewObjectID(),
				Type:      models.NotifUpdateCreated,
				Title:     "New announcement",
				Message:   "New turbidity protocol",
				CreatedAt: now.AddDate(0, 0, -2),
				ExpiresAt: now.AddDate(0, 0, 5),
			},
		},
	}
}

// Login accepts any fixture user with the shared demo password.
func (f *FixtureSource) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if password != "demo" {
		return nil, apperr.Unauthorizedf("invalid credentials")
	}
	for i := range f.users {
		if f.users[i].Email == email {
			return &models.AuthResponse{Token: "fixture-token", User: f.users[i].Public()}, nil
		}
	}
	return nil, apperr.Unauthorizedf("invalid credentials")
}

func (f *FixtureSource) ListFAQs(ctx context.Context) ([]models.FAQ, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.FAQ(nil), f.faqs...), nil
}

func (f *FixtureSource) CreateFAQ(ctx context.Context, faq models.FAQ) (*models.FAQ, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	faq.ID = primitive.NewObjectID()
	faq.Version = 1
	faq.CreatedAt = time.Now()
	faq.UpdatedAt = faq.CreatedAt
	f.faqs = append(f.faqs, faq)
	return &faq, nil
}

func (f *FixtureSource) PatchFAQ(ctx context.Context, id string, patch models.FAQPatch) (*models.FAQ, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.faqs {
		if f.faqs[i].ID.Hex() != id {
			continue
		}
		faq := &f.faqs[i]
		if patch.Category != nil {
			faq.Category = *patch.Category
		}
		if patch.Subcategory != nil {
			faq.Subcategory = *patch.Subcategory
		}
		if patch.Question != nil {
			faq.Question = *patch.Question
		}
		if patch.Answer != nil {
			faq.Answer = *patch.Answer
		}
		if patch.Priority != nil {
			faq.Priority = *patch.Priority
		}
		if patch.Importance != nil {
			faq.Importance = *patch.Importance
		}
		if patch.Tags != nil {
			faq.Tags = *patch.Tags
		}
		if patch.Order != nil {
			faq.Order = *patch.Order
		}
		if patch.Status != nil {
			faq.Status = *patch.Status
		}
		faq.Version++
		faq.UpdatedAt = time.Now()
		out := *faq
		return &out, nil
	}
	return nil, apperr.NotFoundf("FAQ not found")
}

func (f *FixtureSource) DeleteFAQ(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.faqs {
		if f.faqs[i].ID.Hex() == id {
			f.faqs = append(f.faqs[:i], f.faqs[i+1:]...)
			return nil
		}
	}
	return apperr.NotFoundf("FAQ not found")
}

func (f *FixtureSource) ListUpdates(ctx context.Context) ([]models.UpdateView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	views := make([]models.UpdateView, 0, len(f.updates))
	for _, upd := range f.updates {
		if upd.Status != models.UpdateStatusPublished || upd.Expired(now) {
			continue
		}
		views = append(views, models.UpdateView{
			Update:      upd,
			IsNew:       now.Sub(upd.CreatedAt) <= 7*24*time.Hour,
			LastUpdated: upd.UpdatedAt,
		})
	}
	return views, nil
}

func (f *FixtureSource) CreateUpdate(ctx context.Context, update models.Update) (*models.Update, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	update.ID = primitive.NewObjectID()
	update.Version = 1
	if update.Status == "" {
		update.Status = models.UpdateStatusPublished
	}
	update.CreatedAt = time.Now()
	update.UpdatedAt = update.CreatedAt
	f.updates = append(f.updates, update)
	return &update, nil
}

func (f *FixtureSource) PatchUpdate(ctx context.Context, id string, patch models.UpdatePatch) (*models.Update, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.updates {
		if f.updates[i].ID.Hex() != id {
			continue
		}
		upd := &f.updates[i]
		if patch.Title != nil {
			upd.Title = *patch.Title
		}
		if patch.Content != nil {
			upd.Content = *patch.Content
		}
		if patch.Type != nil {
			upd.Type = *patch.Type
		}
		if patch.Priority != nil {
			upd.Priority = *patch.Priority
		}
		if patch.Tags != nil {
			upd.Tags = *patch.Tags
		}
		if patch.ScheduledDate != nil {
			upd.ScheduledDate = *patch.ScheduledDate
		}
		if patch.ExpirationDate != nil {
			upd.ExpirationDate = *patch.ExpirationDate
		}
		if patch.AutoExpire != nil {
			upd.AutoExpire = *patch.AutoExpire
		}
		if patch.Status != nil {
			upd.Status = *patch.Status
		}
		upd.Version++
		upd.UpdatedAt = time.Now()
		out := *upd
		return &out, nil
	}
	return nil, apperr.NotFoundf("update not found")
}

func (f *FixtureSource) DeleteUpdate(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.updates {
		if f.updates[i].ID.Hex() == id {
			f.updates = append(f.updates[:i], f.updates[i+1:]...)
			return nil
		}
	}
	return apperr.NotFoundf("update not found")
}

func (f *FixtureSource) ListUsers(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.User(nil), f.users...), nil
}

func (f *FixtureSource) PatchUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.users {
		if f.users[i].ID.Hex() != id {
			continue
		}
		user := &f.users[i]
		if patch.Name != nil {
			user.Name = *patch.Name
		}
		if patch.Team != nil {
			user.Team = *patch.Team
		}
		if patch.Status != nil {
			user.Status = *patch.Status
		}
		if patch.Role != nil {
			user.Role = *patch.Role
		}
		if patch.Profile != nil {
			user.Profile = *patch.Profile
		}
		user.Version++
		user.UpdatedAt = time.Now()
		out := *user
		return &out, nil
	}
	return nil, apperr.NotFoundf("user not found")
}

func (f *FixtureSource) DeleteUser(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.users {
		if f.users[i].ID.Hex() == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return apperr.NotFoundf("user not found")
}

func (f *FixtureSource) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Notification(nil), f.notifications...), nil
}
