package services

import (
	"context"
	"errors"
	"time"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// A reading continues the streak when it lands within this gap of the
// previous one. Deliberately naive: no timezone handling, no same-day
// dedup.
const streakWindow = 24 * time.Hour

// ReadingService encapsulates submission of water-quality readings and the
// owner-stats bookkeeping that goes with it.
type ReadingService struct {
	repo     repository.ReadingRepository
	userRepo repository.UserRepository
}

func NewReadingService(repo repository.ReadingRepository, userRepo repository.UserRepository) *ReadingService {
	return &ReadingService{repo: repo, userRepo: userRepo}
}

// Create validates and stores a reading, then updates the owner's stats:
// totalReadings increments, lastReadingAt moves to the reading's timestamp,
// and the streak increments when the gap to the previous reading is within
// the window, otherwise resets to 1.
func (s *ReadingService) Create(ctx context.Context, userID primitive.ObjectID, req models.ReadingRequest) (*models.Reading, error) {
	if !models.AllowedParameters[req.Parameter] {
		return nil, apperr.Validationf("invalid parameter %q", req.Parameter)
	}
	if req.Value == nil {
		return nil, apperr.Validationf("value is required")
	}
	if req.Accuracy < 0 || req.Accuracy > 100 {
		return nil, apperr.Validationf("accuracy must be between 0 and 100")
	}

	timestamp := req.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	reading := &models.Reading{
		UserID:    userID,
		Parameter: req.Parameter,
		Value:     *req.Value,
		Unit:      req.Unit,
		Location:  req.Location,
		Timestamp: timestamp,
		Accuracy:  req.Accuracy,
		Notes:     req.Notes,
	}

	created, err := s.repo.Create(ctx, reading)
	if err != nil {
		return nil, err
	}

	stats := user.Stats
	if !stats.LastReadingAt.IsZero() && timestamp.Sub(stats.LastReadingAt) <= streakWindow {
		stats.Streak++
	} else {
		stats.Streak = 1
	}
	stats.TotalReadings++
	stats.LastReadingAt = timestamp

	if err := s.userRepo.SetStats(ctx, userID, stats); err != nil {
		logrus.WithFields(logrus.Fields{
			"userID":    userID.Hex(),
			"readingID": created.ID.Hex(),
		}).WithError(err).Error("Failed to update owner stats after reading")
		return nil, err
	}

	return created, nil
}

// ListForUser returns a user's own readings, most recent first.
func (s *ReadingService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Reading, error) {
	readings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if readings == nil {
		readings = []models.Reading{}
	}
	return readings, nil
}

// ListAll returns every reading. Admin surface.
func (s *ReadingService) ListAll(ctx context.Context) ([]models.Reading, error) {
	readings, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if readings == nil {
		readings = []models.Reading{}
	}
	return readings, nil
}

// Get fetches a single reading.
func (s *ReadingService) Get(ctx context.Context, id string) (*models.Reading, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validationf("invalid reading ID")
	}
	return s.repo.GetByID(ctx, objID)
}

// Delete removes a reading. Only the owner or an admin may delete. The
// owner's totalReadings decrements (floor 0); streak and lastReadingAt are
// never recomputed retroactively, readings are an append-mostly log.
func (s *ReadingService) Delete(ctx context.Context, id string, callerID string, callerRole string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validationf("invalid reading ID")
	}

	reading, err := s.repo.GetByID(ctx, objID)
	if err != nil {
		return err
	}

	if callerRole != models.RoleAdmin && reading.UserID.Hex() != callerID {
		return apperr.Forbiddenf("you can only delete your own readings")
	}

	if err := s.repo.Delete(ctx, objID); err != nil {
		return err
	}

	owner, err := s.userRepo.GetByID(ctx, reading.UserID)
	if err != nil {
		// The owning account may be gone; the reading is already deleted.
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return err
	}

	stats := owner.Stats
	if stats.TotalReadings > 0 {
		stats.TotalReadings--
	}
	if err := s.userRepo.SetStats(ctx, owner.ID, stats); err != nil {
		logrus.WithField("userID", owner.ID.Hex()).WithError(err).Warn("Failed to adjust stats after reading deletion")
	}
	return nil
}
