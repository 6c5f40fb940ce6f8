package services

import (
	"context"
	"testing"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/repository"
	"github.com/stretchr/testify/require"
)

func newTestFAQService() (*FAQService, *NotificationService) {
	notifs := NewNotificationService(repository.NewMemoryNotificationRepository())
	return NewFAQService(repository.NewMemoryFAQRepository(), notifs), notifs
}

func TestFAQCreateAppliesDefaults(t *testing.T) {
	svc, _ := newTestFAQService()

	created, err := svc.Create(context.Background(), &models.FAQ{
		Question: "How deep should the probe go?",
		Answer:   "About 30 cm below the surface.",
	})
	require.NoError(t, err)
	require.Equal(t, "general", created.Category)
	require.Equal(t, models.PriorityMedium, created.Priority)
	require.Equal(t, models.ImportanceNormal, created.Importance)
	require.Equal(t, models.FAQStatusActive, created.Status)
	require.NotNil(t, created.Tags)
	require.Zero(t, created.ViewCount)
}

func TestFAQCreateRequiresQuestionAndAnswer(t *testing.T) {
	svc, _ := newTestFAQService()

	_, err := svc.Create(context.Background(), &models.FAQ{Question: "Only a question"})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

// Only the public detail read moves the view counter; list reads never do.
func TestFAQViewCountOnDetailReadOnly(t *testing.T) {
	svc, _ := newTestFAQService()
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.FAQ{Question: "Q", Answer: "A"})
	require.NoError(t, err)

	faqs, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, faqs, 1)
	require.Zero(t, faqs[0].ViewCount)

	viewed, err := svc.GetPublic(ctx, created.ID.Hex())
	require.NoError(t, err)
	require.Equal(t, int64(1), viewed.ViewCount)

	faqs, err = svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), faqs[0].ViewCount)
}

func TestFAQArchivedHiddenFromPublic(t *testing.T) {
	svc, _ := newTestFAQService()
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.FAQ{
		Question: "Q", Answer: "A", Status: models.FAQStatusArchived,
	})
	require.NoError(t, err)

	faqs, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Empty(t, faqs)

	_, err = svc.GetPublic(ctx, created.ID.Hex())
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// Admin read still sees it, without bumping the counter.
	faq, err := svc.Get(ctx, created.ID.Hex())
	require.NoError(t, err)
	require.Zero(t, faq.ViewCount)
}

func TestFAQUpdatePatchMerge(t *testing.T) {
	svc, _ := newTestFAQService()
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.FAQ{Question: "Q", Answer: "Old answer"})
	require.NoError(t, err)

	answer := "New answer"
	updated, err := svc.Update(ctx, created.ID.Hex(), models.FAQPatch{Answer: &answer})
	require.NoError(t, err)
	require.Equal(t, "New answer", updated.Answer)
	require.Equal(t, "Q", updated.Question)
	require.Equal(t, created.Version+1, updated.Version)
}

func TestFAQUpdateStaleVersionConflicts(t *testing.T) {
	svc, _ := newTestFAQService()
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.FAQ{Question: "Q", Answer: "A"})
	require.NoError(t, err)

	stale := created.Version + 5
	answer := "B"
	_, err = svc.Update(ctx, created.ID.Hex(), models.FAQPatch{Answer: &answer, Version: &stale})
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

// Every FAQ mutation broadcasts a notification.
func TestFAQMutationsBroadcast(t *testing.T) {
	notifRepo := repository.NewMemoryNotificationRepository()
	notifs := NewNotificationService(notifRepo)
	svc := NewFAQService(repository.NewMemoryFAQRepository(), notifs)
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.FAQ{Question: "Q", Answer: "A"})
	require.NoError(t, err)

	answer := "B"
	_, err = svc.Update(ctx, created.ID.Hex(), models.FAQPatch{Answer: &answer})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID.Hex()))

	// Broadcasts are visible to any user.
	all, err := notifs.ListForUser(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)

	types := map[string]bool{}
	for _, n := range all {
		types[n.Type] = true
		require.Nil(t, n.UserID)
	}
	require.True(t, types[models.NotifFAQCreated])
	require.True(t, types[models.NotifFAQUpdated])
	require.True(t, types[models.NotifFAQDeleted])
}
