package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory adapters backing tests and demo mode. Same contract and error
// semantics as the Mongo adapters, guarded by a mutex instead of relying on
// per-document atomicity.

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[primitive.ObjectID]models.User)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	user.Version = 1
	r.users[user.ID] = *user
	return user, nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFoundf("user not found")
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, apperr.NotFoundf("user not found")
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, apperr.NotFoundf("user not found")
}

func (r *MemoryUserRepository) List(ctx context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *MemoryUserRepository) Update(ctx context.Context, id primitive.ObjectID, expectedVersion int64, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFoundf("user not found")
	}
	if current.Version != expectedVersion {
		return nil, apperr.Conflictf("user was modified concurrently, refresh and retry")
	}

	user.ID = id
	user.Version = expectedVersion + 1
	user.UpdatedAt = time.Now()
	r.users[id] = *user
	return user, nil
}

func (r *MemoryUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return apperr.NotFoundf("user not found")
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) SetStats(ctx context.Context, id primitive.ObjectID, stats models.UserStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return apperr.NotFoundf("user not found")
	}
	user.Stats = stats
	user.Version++
	user.UpdatedAt = time.Now()
	r.users[id] = user
	return nil
}

func (r *MemoryUserRepository) TouchLastActive(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return apperr.NotFoundf("user not found")
	}
	user.LastActive = time.Now()
	r.users[id] = user
	return nil
}

type MemoryFAQRepository struct {
	mu   sync.RWMutex
	faqs map[primitive.ObjectID]models.FAQ
}

func NewMemoryFAQRepository() *MemoryFAQRepository {
	return &MemoryFAQRepository{faqs: make(map[primitive.ObjectID]models.FAQ)}
}

func (r *MemoryFAQRepository) Create(ctx context.Context, faq *models.FAQ) (*models.FAQ, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	faq.ID = primitive.NewObjectID()
	faq.CreatedAt = time.Now()
	faq.UpdatedAt = faq.CreatedAt
	faq.Version = 1
	r.faqs[faq.ID] = *faq
	return faq, nil
}

func (r *MemoryFAQRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FAQ, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	faq, ok := r.faqs[id]
	if !ok {
		return nil, apperr.NotFoundf("faq not found")
	}
	return &faq, nil
}

func (r *MemoryFAQRepository) List(ctx context.Context, status string) ([]models.FAQ, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	faqs := make([]models.FAQ, 0, len(r.faqs))
	for _, faq := range r.faqs {
		if status != "" && faq.Status != status {
			continue
		}
		faqs = append(faqs, faq)
	}
	sort.Slice(faqs, func(i, j int) bool {
		if faqs[i].Category != faqs[j].Category {
			return faqs[i].Category < faqs[j].Category
		}
		if faqs[i].Order != faqs[j].Order {
			return faqs[i].Order < faqs[j].Order
		}
		return faqs[i].CreatedAt.After(faqs[j].CreatedAt)
	})
	return faqs, nil
}

func (r *MemoryFAQRepository) Update(ctx context.Context, id primitive.ObjectID, expectedVersion int64, faq *models.FAQ) (*models.FAQ, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.faqs[id]
	if !ok {
		return nil, apperr.NotFoundf("faq not found")
	}
	if current.Version != expectedVersion {
		return nil, apperr.Conflictf("faq was modified concurrently, refresh and retry")
	}

	faq.ID = id
	faq.Version = expectedVersion + 1
	faq.UpdatedAt = time.Now()
	r.faqs[id] = *faq
	return faq, nil
}

func (r *MemoryFAQRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.faqs[id]; !ok {
		return apperr.NotFoundf("faq not found")
	}
	delete(r.faqs, id)
	return nil
}

func (r *MemoryFAQRepository) IncrementViewCount(ctx context.Context, id primitive.ObjectID) (*models.FAQ, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	faq, ok := r.faqs[id]
	if !ok {
		return nil, apperr.NotFoundf("faq not found")
	}
	faq.ViewCount++
	r.faqs[id] = faq
	return &faq, nil
}

type MemoryUpdateRepository struct {
	mu      sync.RWMutex
	updates map[primitive.ObjectID]models.Update
}

func NewMemoryUpdateRepository() *MemoryUpdateRepository {
	return &MemoryUpdateRepository{updates: make(map[primitive.ObjectID]models.Update)}
}

func (r *MemoryUpdateRepository) Create(ctx context.Context, update *models.Update) (*models.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	update.ID = primitive.NewObjectID()
	update.CreatedAt = time.Now()
	update.UpdatedAt = update.CreatedAt
	update.Version = 1
	r.updates[update.ID] = *update
	return update, nil
}

func (r *MemoryUpdateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Update, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	update, ok := r.updates[id]
	if !ok {
		return nil, apperr.NotFoundf("update not found")
	}
	return &update, nil
}

func (r *MemoryUpdateRepository) List(ctx context.Context) ([]models.Update, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	updates := make([]models.Update, 0, len(r.updates))
	for _, update := range r.updates {
		updates = append(updates, update)
	}
	sortUpdatesNewestFirst(updates)
	return updates, nil
}

func (r *MemoryUpdateRepository) ListPublished(ctx context.Context, now time.Time) ([]models.Update, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var updates []models.Update
	for _, update := range r.updates {
		if update.Status != models.UpdateStatusPublished {
			continue
		}
		if update.Expired(now) {
			continue
		}
		updates = append(updates, update)
	}
	sortUpdatesNewestFirst(updates)
	return updates, nil
}

func (r *MemoryUpdateRepository) ListDueForPublish(ctx context.Context, now time.Time) ([]models.Update, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var updates []models.Update
	for _, update := range r.updates {
		if update.Status == models.UpdateStatusScheduled && !update.ScheduledDate.IsZero() && !update.ScheduledDate.After(now) {
			updates = append(updates, update)
		}
	}
	sortUpdatesNewestFirst(updates)
	return updates, nil
}

func (r *MemoryUpdateRepository) Update(ctx context.Context, id primitive.ObjectID, expectedVersion int64, update *models.Update) (*models.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.updates[id]
	if !ok {
		return nil, apperr.NotFoundf("update not found")
	}
	if current.Version != expectedVersion {
		return nil, apperr.Conflictf("update was modified concurrently, refresh and retry")
	}

	update.ID = id
	update.Version = expectedVersion + 1
	update.UpdatedAt = time.Now()
	r.updates[id] = *update
	return update, nil
}

func (r *MemoryUpdateRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	update, ok := r.updates[id]
	if !ok {
		return apperr.NotFoundf("update not found")
	}
	update.Status = status
	update.Version++
	update.UpdatedAt = time.Now()
	r.updates[id] = update
	return nil
}

func (r *MemoryUpdateRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.updates[id]; !ok {
		return apperr.NotFoundf("update not found")
	}
	delete(r.updates, id)
	return nil
}

func sortUpdatesNewestFirst(updates []models.Update) {
	sort.Slice(updates, func(i, j int) bool { return updates[i].CreatedAt.After(updates[j].CreatedAt) })
}

type MemoryReadingRepository struct {
	mu       sync.RWMutex
	readings map[primitive.ObjectID]models.Reading
}

func NewMemoryReadingRepository() *MemoryReadingRepository {
	return &MemoryReadingRepository{readings: make(map[primitive.ObjectID]models.Reading)}
}

func (r *MemoryReadingRepository) Create(ctx context.Context, reading *models.Reading) (*models.Reading, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reading.ID = primitive.NewObjectID()
	reading.CreatedAt = time.Now()
	reading.UpdatedAt = reading.CreatedAt
	reading.Version = 1
	r.readings[reading.ID] = *reading
	return reading, nil
}

func (r *MemoryReadingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reading, ok := r.readings[id]
	if !ok {
		return nil, apperr.NotFoundf("reading not found")
	}
	return &reading, nil
}

func (r *MemoryReadingRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var readings []models.Reading
	for _, reading := range r.readings {
		if reading.UserID == userID {
			readings = append(readings, reading)
		}
	}
	sort.Slice(readings, func(i, j int) bool { return readings[i].Timestamp.After(readings[j].Timestamp) })
	return readings, nil
}

func (r *MemoryReadingRepository) List(ctx context.Context) ([]models.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	readings := make([]models.Reading, 0, len(r.readings))
	for _, reading := range r.readings {
		readings = append(readings, reading)
	}
	sort.Slice(readings, func(i, j int) bool { return readings[i].CreatedAt.After(readings[j].CreatedAt) })
	return readings, nil
}

func (r *MemoryReadingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.readings[id]; !ok {
		return apperr.NotFoundf("reading not found")
	}
	delete(r.readings, id)
	return nil
}

type MemoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications map[primitive.ObjectID]models.Notification
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{notifications: make(map[primitive.ObjectID]models.Notification)}
}

func (r *MemoryNotificationRepository) Create(ctx context.Context, notif *models.Notification) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = notif.CreatedAt.Add(notificationTTL)
	r.notifications[notif.ID] = *notif
	return notif, nil
}

func (r *MemoryNotificationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notif, ok := r.notifications[id]
	if !ok {
		return nil, apperr.NotFoundf("notification not found")
	}
	return &notif, nil
}

func (r *MemoryNotificationRepository) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	var notifications []models.Notification
	for _, notif := range r.notifications {
		if !notif.ExpiresAt.After(now) {
			continue
		}
		if notif.UserID != nil && *notif.UserID != userID {
			continue
		}
		notifications = append(notifications, notif)
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (r *MemoryNotificationRepository) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	notif, ok := r.notifications[id]
	if !ok {
		return apperr.NotFoundf("notification not found")
	}
	notif.Read = true
	r.notifications[id] = notif
	return nil
}

func (r *MemoryNotificationRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.notifications[id]; !ok {
		return apperr.NotFoundf("notification not found")
	}
	delete(r.notifications, id)
	return nil
}

func (r *MemoryNotificationRepository) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var deleted int64
	for id, notif := range r.notifications {
		if !notif.ExpiresAt.After(now) {
			delete(r.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}
