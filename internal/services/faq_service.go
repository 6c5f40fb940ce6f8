package services

import (
	"context"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var allowedPriorities = map[string]bool{
	models.PriorityLow:    true,
	models.PriorityMedium: true,
	models.PriorityHigh:   true,
}

var allowedImportances = map[string]bool{
	models.ImportanceNormal:   true,
	models.ImportanceHigh:     true,
	models.ImportanceCritical: true,
}

var allowedFAQStatuses = map[string]bool{
	models.FAQStatusActive:   true,
	models.FAQStatusArchived: true,
}

// FAQService encapsulates the business logic for FAQ entries.
type FAQService struct {
	repo   repository.FAQRepository
	notifs *NotificationService
}

func NewFAQService(repo repository.FAQRepository, notifs *NotificationService) *FAQService {
	return &FAQService{repo: repo, notifs: notifs}
}

// ListPublic returns active FAQs in category/order ordering.
func (s *FAQService) ListPublic(ctx context.Context) ([]models.FAQ, error) {
	faqs, err := s.repo.List(ctx, models.FAQStatusActive)
	if err != nil {
		return nil, err
	}
	if faqs == nil {
		faqs = []models.FAQ{}
	}
	return faqs, nil
}

// ListAll returns every FAQ regardless of status. Admin surface.
func (s *FAQService) ListAll(ctx context.Context) ([]models.FAQ, error) {
	faqs, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	if faqs == nil {
		faqs = []models.FAQ{}
	}
	return faqs, nil
}

// Get fetches a FAQ without touching the view counter. Admin surface.
func (s *FAQService) Get(ctx context.Context, id string) (*models.FAQ, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validationf("invalid faq ID")
	}
	return s.repo.GetByID(ctx, objID)
}

// GetPublic fetches an active FAQ and counts the view. List reads never
// touch the counter, only this detail read does.
func (s *FAQService) GetPublic(ctx context.Context, id string) (*models.FAQ, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validationf("invalid faq ID")
	}

	faq, err := s.repo.GetByID(ctx, objID)
	if err != nil {
		return nil, err
	}
	if faq.Status != models.FAQStatusActive {
		return nil, apperr.NotFoundf("faq not found")
	}

	return s.repo.IncrementViewCount(ctx, objID)
}

// Create validates requireds, applies defaults and announces the new entry.
func (s *FAQService) Create(ctx context.Context, faq *models.FAQ) (*models.FAQ, error) {
	if faq.Question == "" || faq.Answer == "" {
		return nil, apperr.Validationf("question and answer are required")
	}

	if faq.Category == "" {
		faq.Category = "general"
	}
	if faq.Priority == "" {
		faq.Priority = models.PriorityMedium
	}
	if faq.Importance == "" {
		faq.Importance = models.ImportanceNormal
	}
	if faq.Status == "" {
		faq.Status = models.FAQStatusActive
	}
	if faq.Tags == nil {
		faq.Tags = []string{}
	}
	faq.ViewCount = 0

	if err := validateFAQEnums(faq); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, faq)
	if err != nil {
		return nil, err
	}

	s.announce(ctx, models.NotifFAQCreated, "New FAQ published", created.Question, created.ID)
	return created, nil
}

// Update applies a partial patch and announces the change.
func (s *FAQService) Update(ctx context.Context, id string, patch models.FAQPatch) (*models.FAQ, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validationf("invalid faq ID")
	}

	faq, err := s.repo.GetByID(ctx, objID)
	if err != nil {
		return nil, err
	}

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

	if faq.Question == "" || faq.Answer == "" {
		return nil, apperr.Validationf("question and answer cannot be emptied")
	}
	if err := validateFAQEnums(faq); err != nil {
		return nil, err
	}

	expectedVersion := faq.Version
	if patch.Version != nil {
		expectedVersion = *patch.Version
	}

	updated, err := s.repo.Update(ctx, objID, expectedVersion, faq)
	if err != nil {
		return nil, err
	}

	s.announce(ctx, models.NotifFAQUpdated, "FAQ updated", updated.Question, updated.ID)
	return updated, nil
}

// Delete hard-deletes a FAQ and announces the removal. One notification
// policy for every mutation type.
func (s *FAQService) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validationf("invalid faq ID")
	}

	faq, err := s.repo.GetByID(ctx, objID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, objID); err != nil {
		return err
	}

	s.announce(ctx, models.NotifFAQDeleted, "FAQ removed", faq.Question, faq.ID)
	return nil
}

func (s *FAQService) announce(ctx context.Context, notifType, title, message string, targetID primitive.ObjectID) {
	if err := s.notifs.Broadcast(ctx, notifType, title, message, &targetID); err != nil {
		logrus.WithError(err).Warn("Failed to broadcast FAQ notification")
	}
}

func validateFAQEnums(faq *models.FAQ) error {
	if !allowedPriorities[faq.Priority] {
		return apperr.Validationf("invalid priority %q", faq.Priority)
	}
	if !allowedImportances[faq.Importance] {
		return apperr.Validationf("invalid importance %q", faq.Importance)
	}
	if !allowedFAQStatuses[faq.Status] {
		return apperr.Validationf("invalid status %q", faq.Status)
	}
	return nil
}
