package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coastwatch-app/coastwatch/internal/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SyncStore is the client-side source of truth: a mutex-guarded cache of
// every collection, loaded from the API and kept current by routing all
// mutations through it. When the API cannot be reached the store falls back
// to the fixture dataset for reads and flags itself degraded; mutations
// still go to the API so a write either lands on the server or fails loudly
// instead of disappearing into fixture data.
type SyncStore struct {
	source   DataSource
	fixtures DataSource

	mu            sync.RWMutex
	faqs          []models.FAQ
	updates       []models.UpdateView
	users         []models.User
	notifications []models.Notification
	stats         SystemStats
	degraded      bool
	syncing       bool
	lastSync      time.Time
}

// NewSyncStore builds a store over the given source. The fixture fallback is
// always available.
func NewSyncStore(source DataSource) *SyncStore {
	return &SyncStore{source: source, fixtures: NewFixtureSource()}
}

// LoadAll fetches every collection in parallel and derives SystemStats. If
// any fetch fails the whole load falls back to fixture data and the store is
// flagged degraded until the next successful sync.
func (s *SyncStore) LoadAll(ctx context.Context) error {
	s.mu.Lock()
	s.syncing = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.syncing = false
		s.mu.Unlock()
	}()

	faqs, updates, users, notifications, err := fetchAll(ctx, s.source)
	degraded := false
	if err != nil {
		log.WithError(err).Warn("Falling back to fixture data")
		degraded = true
		faqs, updates, users, notifications, err = fetchAll(ctx, s.fixtures)
		if err != nil {
			return fmt.Errorf("failed to load fixture data: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.faqs = faqs
	s.updates = updates
	s.users = users
	s.notifications = notifications
	s.degraded = degraded
	s.lastSync = time.Now()
	s.stats = deriveStats(faqs, updates, users, notifications)
	return nil
}

func fetchAll(ctx context.Context, src DataSource) ([]models.FAQ, []models.UpdateView, []models.User, []models.Notification, error) {
	var (
		wg            sync.WaitGroup
		faqs          []models.FAQ
		updates       []models.UpdateView
		users         []models.User
		notifications []models.Notification
		errFAQ        error
		errUpd        error
		errUser       error
		errNotif      error
	)

	wg.Add(4)
	go func() { defer wg.Done(); faqs, errFAQ = src.ListFAQs(ctx) }()
	go func() { defer wg.Done(); updates, errUpd = src.ListUpdates(ctx) }()
	go func() { defer wg.Done(); users, errUser = src.ListUsers(ctx) }()
	go func() { defer wg.Done(); notifications, errNotif = src.ListNotifications(ctx) }()
	wg.Wait()

	for _, err := range []error{errFAQ, errUpd, errUser, errNotif} {
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}
	return faqs, updates, users, notifications, nil
}

func deriveStats(faqs []models.FAQ, updates []models.UpdateView, users []models.User, notifications []models.Notification) SystemStats {
	active := 0
	for _, u := range users {
		if u.Status == models.StatusActive {
			active++
		}
	}
	return SystemStats{
		TotalFAQs:          len(faqs),
		TotalUpdates:       len(updates),
		TotalUsers:         len(users),
		ActiveUsers:        active,
		TotalNotifications: len(notifications),
		GeneratedAt:        time.Now(),
	}
}

// ForceSync re-runs LoadAll against the primary source.
func (s *SyncStore) ForceSync(ctx context.Context) error {
	return s.LoadAll(ctx)
}

// --- Accessors (copies, safe to hand out) ---

func (s *SyncStore) FAQs() []models.FAQ {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.FAQ(nil), s.faqs...)
}

func (s *SyncStore) Updates() []models.UpdateView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.UpdateView(nil), s.updates...)
}

func (s *SyncStore) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.User(nil), s.users...)
}

func (s *SyncStore) Notifications() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Notification(nil), s.notifications...)
}

func (s *SyncStore) Stats() SystemStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *SyncStore) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

func (s *SyncStore) Syncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncing
}

func (s *SyncStore) LastSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

// --- Mutations: call the primary source even when degraded, fold the
// returned record into the cache, record a local notification entry ---

func (s *SyncStore) CreateFAQ(ctx context.Context, faq models.FAQ) (*models.FAQ, error) {
	created, err := s.source.CreateFAQ(ctx, faq)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.faqs = append(s.faqs, *created)
	s.recordLocked(models.NotifFAQCreated, "FAQ created", created.Question)
	return created, nil
}

func (s *SyncStore) PatchFAQ(ctx context.Context, id string, patch models.FAQPatch) (*models.FAQ, error) {
	updated, err := s.source.PatchFAQ(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.faqs {
		if s.faqs[i].ID == updated.ID {
			s.faqs[i] = *updated
			break
		}
	}
	s.recordLocked(models.NotifFAQUpdated, "FAQ updated", updated.Question)
	return updated, nil
}

func (s *SyncStore) DeleteFAQ(ctx context.Context, id string) error {
	if err := s.source.DeleteFAQ(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.faqs {
		if s.faqs[i].ID.Hex() == id {
			s.faqs = append(s.faqs[:i], s.faqs[i+1:]...)
			break
		}
	}
	s.recordLocked(models.NotifFAQDeleted, "FAQ deleted", id)
	return nil
}

func (s *SyncStore) CreateUpdate(ctx context.Context, update models.Update) (*models.Update, error) {
	created, err := s.source.CreateUpdate(ctx, update)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, models.UpdateView{
		Update:      *created,
		IsNew:       true,
		LastUpdated: created.UpdatedAt,
	})
	s.recordLocked(models.NotifUpdateCreated, "Announcement created", created.Title)
	return created, nil
}

func (s *SyncStore) PatchUpdate(ctx context.Context, id string, patch models.UpdatePatch) (*models.Update, error) {
	updated, err := s.source.PatchUpdate(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.updates {
		if s.updates[i].ID == updated.ID {
			s.updates[i].Update = *updated
			s.updates[i].LastUpdated = updated.UpdatedAt
			break
		}
	}
	s.recordLocked(models.NotifUpdateUpdated, "Announcement updated", updated.Title)
	return updated, nil
}

func (s *SyncStore) DeleteUpdate(ctx context.Context, id string) error {
	if err := s.source.DeleteUpdate(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.updates {
		if s.updates[i].ID.Hex() == id {
			s.updates = append(s.updates[:i], s.updates[i+1:]...)
			break
		}
	}
	s.recordLocked(models.NotifUpdateDeleted, "Announcement deleted", id)
	return nil
}

func (s *SyncStore) PatchUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	updated, err := s.source.PatchUser(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == updated.ID {
			s.users[i] = *updated
			break
		}
	}
	s.recordLocked(models.NotifAccountChanged, "Account updated", updated.Name)
	return updated, nil
}

func (s *SyncStore) DeleteUser(ctx context.Context, id string) error {
	if err := s.source.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID.Hex() == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			break
		}
	}
	s.recordLocked(models.NotifAccountChanged, "Account deleted", id)
	return nil
}

// recordLocked appends a local notification entry and refreshes the derived
// stats. Caller must hold s.mu.
func (s *SyncStore) recordLocked(notifType, title, message string) {
	now := time.Now()
	s.notifications = append([]models.Notification{{
		ID:        primitive.NewObjectID(),
		Type:      notifType,
		Title:     title,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(7 * 24 * time.Hour),
	}}, s.notifications...)
	s.stats = deriveStats(s.faqs, s.updates, s.users, s.notifications)
}

// snapshot is the export/import wire shape.
type snapshot struct {
	FAQs          []models.FAQ          `json:"faqs"`
	Updates       []models.UpdateView   `json:"updates"`
	Users         []models.User         `json:"users"`
	Notifications []models.Notification `json:"notifications"`
	Stats         SystemStats           `json:"stats"`
	ExportedAt    time.Time             `json:"exportedAt"`
}

// ExportAll serializes the whole cache to JSON.
func (s *SyncStore) ExportAll() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return json.MarshalIndent(snapshot{
		FAQs:          s.faqs,
		Updates:       s.updates,
		Users:         s.users,
		Notifications: s.notifications,
		Stats:         s.stats,
		ExportedAt:    time.Now(),
	}, "", "  ")
}

// ImportAll replaces the local cache with a previously exported snapshot.
// Nothing is written back to the server; the next ForceSync discards the
// imported state.
func (s *SyncStore) ImportAll(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.faqs = snap.FAQs
	s.updates = snap.Updates
	s.users = snap.Users
	s.notifications = snap.Notifications
	s.stats = deriveStats(snap.FAQs, snap.Updates, snap.Users, snap.Notifications)
	return nil
}
