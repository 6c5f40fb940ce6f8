package services

import (
	"context"
	"time"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Updates created within this window are flagged isNew for citizens.
const updateNewWindow = 7 * 24 * time.Hour

var allowedUpdateTypes = map[string]bool{
	models.UpdateTypeAnnouncement: true,
	models.UpdateTypeNews:         true,
	models.UpdateTypeAlert:        true,
	models.UpdateTypeEvent:        true,
	models.UpdateTypeProtocol:     true,
}

var allowedUpdateStatuses = map[string]bool{
	models.UpdateStatusDraft:     true,
	models.UpdateStatusScheduled: true,
	models.UpdateStatusPublished: true,
}

// UpdateService encapsulates the business logic for announcements.
type UpdateService struct {
	repo   repository.UpdateRepository
	notifs *NotificationService
	now    func() time.Time
}

func NewUpdateService(repo repository.UpdateRepository, notifs *NotificationService) *UpdateService {
	return &UpdateService{repo: repo, notifs: notifs, now: time.Now}
}

// ListPublic returns published, unexpired updates enriched for the citizen
// view. Auto-expired records are excluded even when their stored status
// still reads published.
func (s *UpdateService) ListPublic(ctx context.Context) ([]models.UpdateView, error) {
	now := s.now()
	updates, err := s.repo.ListPublished(ctx, now)
	if err != nil {
		return nil, err
	}

	views := make([]models.UpdateView, 0, len(updates))
	for _, update := range updates {
		views = append(views, models.UpdateView{
			Update:      update,
			IsNew:       now.Sub(update.CreatedAt) <= updateNewWindow,
			LastUpdated: update.UpdatedAt,
		})
	}
	return views, nil
}

// ListAll returns every update including drafts and expired ones. Admin
// surface.
func (s *UpdateService) ListAll(ctx context.Context) ([]models.Update, error) {
	updates, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if updates == nil {
		updates = []models.Update{}
	}
	return updates, nil
}

// Get fetches a single update. Admin surface.
func (s *UpdateService) Get(ctx context.Context, id string) (*models.Update, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validationf("invalid update ID")
	}
	return s.repo.GetByID(ctx, objID)
}

// Create validates requireds, applies defaults and announces the update.
// An empty status becomes scheduled when a scheduled date is set, draft
// otherwise.
func (s *UpdateService) Create(ctx context.Context, update *models.Update) (*models.Update, error) {
	if update.Title == "" || update.Content == "" {
		return nil, apperr.Validationf("title and content are required")
	}

	if update.Type == "" {
		update.Type = models.UpdateTypeAnnouncement
	}
	if update.Priority == "" {
		update.Priority = models.PriorityMedium
	}
	if update.Tags == nil {
		update.Tags = []string{}
	}
	if update.Status == "" {
		if !update.ScheduledDate.IsZero() {
			update.Status = models.UpdateStatusScheduled
		} else {
			update.Status = models.UpdateStatusDraft
		}
	}

	if err := validateUpdateEnums(update); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, update)
	if err != nil {
		return nil, err
	}

	s.announce(ctx, models.NotifUpdateCreated, "New announcement", created.Title, created.ID)
	return created, nil
}

// Update applies a partial patch and announces the change.
func (s *UpdateService) Update(ctx context.Context, id string, patch models.UpdatePatch) (*models.Update, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validationf("invalid update ID")
	}

	update, err := s.repo.GetByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		update.Title = *patch.Title
	}
	if patch.Content != nil {
		update.Content = *patch.Content
	}
	if patch.Type != nil {
		update.Type = *patch.Type
	}
	if patch.Priority != nil {
		update.Priority = *patch.Priority
	}
	if patch.Tags != nil {
		update.Tags = *patch.Tags
	}
	if patch.ScheduledDate != nil {
		update.ScheduledDate = *patch.ScheduledDate
	}
	if patch.ExpirationDate != nil {
		update.ExpirationDate = *patch.ExpirationDate
	}
	if patch.AutoExpire != nil {
		update.AutoExpire = *patch.AutoExpire
	}
	if patch.Status != nil {
		update.Status = *patch.Status
	}

	if update.Title == "" || update.Content == "" {
		return nil, apperr.Validationf("title and content cannot be emptied")
	}
	if err := validateUpdateEnums(update); err != nil {
		return nil, err
	}

	expectedVersion := update.Version
	if patch.Version != nil {
		expectedVersion = *patch.Version
	}

	updated, err := s.repo.Update(ctx, objID, expectedVersion, update)
	if err != nil {
		return nil, err
	}

	s.announce(ctx, models.NotifUpdateUpdated, "Announcement updated", updated.Title, updated.ID)
	return updated, nil
}

// Delete hard-deletes an update and announces the removal.
func (s *UpdateService) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validationf("invalid update ID")
	}

	update, err := s.repo.GetByID(ctx, objID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, objID); err != nil {
		return err
	}

	s.announce(ctx, models.NotifUpdateDeleted, "Announcement removed", update.Title, update.ID)
	return nil
}

// PublishDue promotes scheduled updates whose scheduled date arrived.
// Called by the scheduler.
func (s *UpdateService) PublishDue(ctx context.Context) error {
	due, err := s.repo.ListDueForPublish(ctx, s.now())
	if err != nil {
		return err
	}

	for _, update := range due {
		if err := s.repo.SetStatus(ctx, update.ID, models.UpdateStatusPublished); err != nil {
			logrus.WithField("updateID", update.ID.Hex()).WithError(err).Error("Failed to publish scheduled update")
			continue
		}
		s.announce(ctx, models.NotifUpdatePublished, "Announcement published", update.Title, update.ID)
	}
	return nil
}

func (s *UpdateService) announce(ctx context.Context, notifType, title, message string, targetID primitive.ObjectID) {
	if err := s.notifs.Broadcast(ctx, notifType, title, message, &targetID); err != nil {
		logrus.WithError(err).Warn("Failed to broadcast update notification")
	}
}

func validateUpdateEnums(update *models.Update) error {
	if !allowedUpdateTypes[update.Type] {
		return apperr.Validationf("invalid type %q", update.Type)
	}
	if !allowedPriorities[update.Priority] {
		return apperr.Validationf("invalid priority %q", update.Priority)
	}
	if !allowedUpdateStatuses[update.Status] {
		return apperr.Validationf("invalid status %q", update.Status)
	}
	return nil
}
