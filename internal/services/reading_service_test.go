package services

import (
	"context"
	"testing"
	"time"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/repository"
	"github.com/stretchr/testify/require"
)

func float64Ptr(v float64) *float64 { return &v }

func newTestReadingService(t *testing.T) (*ReadingService, *models.User, repository.UserRepository) {
	t.Helper()
	userRepo := repository.NewMemoryUserRepository()
	user, err := userRepo.Create(context.Background(), &models.User{
		Name:     "Reader",
		Email:    "reader@example.com",
		Username: "reader",
		Role:     models.RoleCitizen,
		Status:   models.StatusActive,
	})
	require.NoError(t, err)
	return NewReadingService(repository.NewMemoryReadingRepository(), userRepo), user, userRepo
}

func submitAt(t *testing.T, svc *ReadingService, user *models.User, ts time.Time) *models.Reading {
	t.Helper()
	reading, err := svc.Create(context.Background(), user.ID, models.ReadingRequest{
		Parameter: "temperature",
		Value:     float64Ptr(21.4),
		Unit:      "C",
		Location:  models.Location{Latitude: 14.7, Longitude: -17.5, Village: "Yoff"},
		Timestamp: ts,
		Accuracy:  90,
	})
	require.NoError(t, err)
	return reading
}

func TestCreateReadingValidation(t *testing.T) {
	svc, user, _ := newTestReadingService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, user.ID, models.ReadingRequest{Parameter: "wind_speed", Value: float64Ptr(3)})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Create(ctx, user.ID, models.ReadingRequest{Parameter: "ph"})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Create(ctx, user.ID, models.ReadingRequest{Parameter: "ph", Value: float64Ptr(7), Accuracy: 140})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestStreakIncrementsWithinWindow(t *testing.T) {
	svc, user, userRepo := newTestReadingService(t)
	base := time.Now().Add(-48 * time.Hour)

	submitAt(t, svc, user, base)
	submitAt(t, svc, user, base.Add(20*time.Hour))
	submitAt(t, svc, user, base.Add(40*time.Hour))

	stored, err := userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, 3, stored.Stats.TotalReadings)
	require.Equal(t, 3, stored.Stats.Streak)
	require.True(t, stored.Stats.LastReadingAt.Equal(base.Add(40*time.Hour)))
}

func TestStreakResetsAfterGap(t *testing.T) {
	svc, user, userRepo := newTestReadingService(t)
	base := time.Now().Add(-10 * 24 * time.Hour)

	submitAt(t, svc, user, base)
	submitAt(t, svc, user, base.Add(12*time.Hour))
	submitAt(t, svc, user, base.Add(5*24*time.Hour)) // long gap

	stored, err := userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, 3, stored.Stats.TotalReadings)
	require.Equal(t, 1, stored.Stats.Streak)
}

func TestDeleteReadingOwnership(t *testing.T) {
	svc, user, _ := newTestReadingService(t)
	reading := submitAt(t, svc, user, time.Now())

	err := svc.Delete(context.Background(), reading.ID.Hex(), "someone-else", models.RoleCitizen)
	require.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// Admin may delete anyone's reading.
	err = svc.Delete(context.Background(), reading.ID.Hex(), "someone-else", models.RoleAdmin)
	require.NoError(t, err)
}

// Deleting a reading only decrements the total; the streak is never
// recomputed retroactively.
func TestDeleteReadingDecrementsTotalOnly(t *testing.T) {
	svc, user, userRepo := newTestReadingService(t)
	base := time.Now().Add(-24 * time.Hour)

	submitAt(t, svc, user, base)
	second := submitAt(t, svc, user, base.Add(10*time.Hour))

	require.NoError(t, svc.Delete(context.Background(), second.ID.Hex(), user.ID.Hex(), models.RoleCitizen))

	stored, err := userRepo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.Stats.TotalReadings)
	require.Equal(t, 2, stored.Stats.Streak)
	require.True(t, stored.Stats.LastReadingAt.Equal(base.Add(10*time.Hour)))
}

func TestListForUserNewestFirst(t *testing.T) {
	svc, user, _ := newTestReadingService(t)
	base := time.Now().Add(-3 * time.Hour)

	submitAt(t, svc, user, base)
	submitAt(t, svc, user, base.Add(time.Hour))
	submitAt(t, svc, user, base.Add(2*time.Hour))

	readings, err := svc.ListForUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, readings, 3)
	require.True(t, readings[0].Timestamp.After(readings[1].Timestamp))
	require.True(t, readings[1].Timestamp.After(readings[2].Timestamp))
}
