package client

import (
	"context"
	"errors"
	"testing"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/stretchr/testify/require"
)

// unreachableSource fails every call, standing in for a dead backend.
type unreachableSource struct{}

func (unreachableSource) fail() error {
	return apperr.Upstream("api call", errors.New("connection refused"))
}

func (s unreachableSource) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	return nil, s.fail()
}
func (s unreachableSource) ListFAQs(ctx context.Context) ([]models.FAQ, error) { return nil, s.fail() }
func (s unreachableSource) CreateFAQ(ctx context.Context, faq models.FAQ) (*models.FAQ, error) {
	return nil, s.fail()
}
func (s unreachableSource) PatchFAQ(ctx context.Context, id string, patch models.FAQPatch) (*models.FAQ, error) {
	return nil, s.fail()
}
func (s unreachableSource) DeleteFAQ(ctx context.Context, id string) error { return s.fail() }
func (s unreachableSource) ListUpdates(ctx context.Context) ([]models.UpdateView, error) {
	return nil, s.fail()
}
func (s unreachableSource) CreateUpdate(ctx context.Context, update models.Update) (*models.Update, error) {
	return nil, s.fail()
}
func (s unreachableSource) PatchUpdate(ctx context.Context, id string, patch models.UpdatePatch) (*models.Update, error) {
	return nil, s.fail()
}
func (s unreachableSource) DeleteUpdate(ctx context.Context, id string) error { return s.fail() }
func (s unreachableSource) ListUsers(ctx context.Context) ([]models.User, error) {
	return nil, s.fail()
}
func (s unreachableSource) PatchUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	return nil, s.fail()
}
func (s unreachableSource) DeleteUser(ctx context.Context, id string) error { return s.fail() }
func (s unreachableSource) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	return nil, s.fail()
}

func TestLoadAllFallsBackToFixtures(t *testing.T) {
	store := NewSyncStore(unreachableSource{})

	require.NoError(t, store.LoadAll(context.Background()))
	require.True(t, store.Degraded())
	require.False(t, store.LastSync().IsZero())

	require.NotEmpty(t, store.FAQs())
	require.NotEmpty(t, store.Users())

	stats := store.Stats()
	require.Equal(t, len(store.FAQs()), stats.TotalFAQs)
	require.Equal(t, len(store.Users()), stats.TotalUsers)
	require.Positive(t, stats.ActiveUsers)
}

func TestLoadAllHealthySource(t *testing.T) {
	store := NewSyncStore(NewFixtureSource())

	require.NoError(t, store.LoadAll(context.Background()))
	require.False(t, store.Degraded())
	require.False(t, store.Syncing())
}

func TestMutationsFoldIntoCache(t *testing.T) {
	store := NewSyncStore(NewFixtureSource())
	ctx := context.Background()
	require.NoError(t, store.LoadAll(ctx))

	before := len(store.FAQs())
	created, err := store.CreateFAQ(ctx, models.FAQ{
		Question: "What is a Secchi tube?", Answer: "A transparency measuring device.",
	})
	require.NoError(t, err)
	require.Len(t, store.FAQs(), before+1)

	// The mutation leaves a local notification trail.
	notifs := store.Notifications()
	require.NotEmpty(t, notifs)
	require.Equal(t, models.NotifFAQCreated, notifs[0].Type)

	answer := "A clear tube for measuring water transparency."
	updated, err := store.PatchFAQ(ctx, created.ID.Hex(), models.FAQPatch{Answer: &answer})
	require.NoError(t, err)
	require.Equal(t, answer, updated.Answer)

	var cached *models.FAQ
	for _, faq := range store.FAQs() {
		if faq.ID == created.ID {
			f := faq
			cached = &f
		}
	}
	require.NotNil(t, cached)
	require.Equal(t, answer, cached.Answer)

	require.NoError(t, store.DeleteFAQ(ctx, created.ID.Hex()))
	require.Len(t, store.FAQs(), before)
}

func TestDegradedStoreRefusesMutations(t *testing.T) {
	store := NewSyncStore(unreachableSource{})
	ctx := context.Background()

	require.NoError(t, store.LoadAll(ctx))
	require.True(t, store.Degraded())
	before := len(store.FAQs())

	// Writes keep going to the real backend: a dead server means a loud
	// failure, not an edit that silently lands in fixture data.
	_, err := store.CreateFAQ(ctx, models.FAQ{Question: "Q", Answer: "A"})
	require.Error(t, err)
	require.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	require.Len(t, store.FAQs(), before)

	require.Error(t, store.DeleteFAQ(ctx, store.FAQs()[0].ID.Hex()))
	require.Len(t, store.FAQs(), before)
}

func TestForceSyncDiscardsLocalEdits(t *testing.T) {
	store := NewSyncStore(NewFixtureSource())
	ctx := context.Background()
	require.NoError(t, store.LoadAll(ctx))

	baseline := len(store.Notifications())
	_, err := store.CreateFAQ(ctx, models.FAQ{Question: "Q", Answer: "A"})
	require.NoError(t, err)
	require.Greater(t, len(store.Notifications()), baseline)

	require.NoError(t, store.ForceSync(ctx))
	// Local notification entries are gone, server truth wins.
	require.Equal(t, baseline, len(store.Notifications()))
}

func TestExportImportRoundTrip(t *testing.T) {
	store := NewSyncStore(NewFixtureSource())
	ctx := context.Background()
	require.NoError(t, store.LoadAll(ctx))

	snapshot, err := store.ExportAll()
	require.NoError(t, err)

	faqCount := len(store.FAQs())
	require.Positive(t, faqCount)
	require.NoError(t, store.DeleteFAQ(ctx, store.FAQs()[0].ID.Hex()))
	require.Len(t, store.FAQs(), faqCount-1)

	require.NoError(t, store.ImportAll(snapshot))
	require.Len(t, store.FAQs(), faqCount)
	require.Equal(t, faqCount, store.Stats().TotalFAQs)
}

func TestImportRejectsGarbage(t *testing.T) {
	store := NewSyncStore(NewFixtureSource())
	require.Error(t, store.ImportAll([]byte("{not json")))
}
