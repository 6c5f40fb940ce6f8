package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coastwatch-app/coastwatch/internal/config"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/repository"
	"github.com/coastwatch-app/coastwatch/internal/services"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

// newTestRouter builds the production route table over in-memory
// repositories via the same NewRouter constructor cmd/server uses.
func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:      "test-secret",
		TokenExpiry:    time.Hour,
		RequestTimeout: 5 * time.Second,
	}

	userRepo := repository.NewMemoryUserRepository()
	notifService := services.NewNotificationService(repository.NewMemoryNotificationRepository())
	userService := services.NewUserService(userRepo, notifService)
	faqService := services.NewFAQService(repository.NewMemoryFAQRepository(), notifService)
	updateService := services.NewUpdateService(repository.NewMemoryUpdateRepository(), notifService)
	readingService := services.NewReadingService(repository.NewMemoryReadingRepository(), userRepo)

	return NewRouter(RouterDeps{
		Config:   cfg,
		Users:    userService,
		FAQs:     faqService,
		Updates:  updateService,
		Readings: readingService,
		Notifs:   notifService,
		Hub:      NewNotificationHub(),
		Pinger:   PingerFunc(func(ctx context.Context) error { return nil }),
	})
}

func doJSON(t *testing.T, router *mux.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func registerAccount(t *testing.T, router *mux.Router, email, username, role string) models.AuthResponse {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Email:     email,
		Password:  "supersecret",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var auth models.AuthResponse
	decodeBody(t, rec, &auth)
	require.NotEmpty(t, auth.Token)
	return auth
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	router := newTestRouter(t)
	registerAccount(t, router, "flow@example.com", "flow", "")

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", models.LoginRequest{
		Email: "flow@example.com", Password: "supersecret",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var auth models.AuthResponse
	decodeBody(t, rec, &auth)
	require.Equal(t, models.RoleCitizen, auth.User.Role)

	rec = doJSON(t, router, http.MethodGet, "/api/auth/profile", auth.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile models.User
	decodeBody(t, rec, &profile)
	require.Equal(t, "flow@example.com", profile.Email)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := newTestRouter(t)
	registerAccount(t, router, "bad@example.com", "bad", "")

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login", "", models.LoginRequest{
		Email: "bad@example.com", Password: "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	decodeBody(t, rec, &envelope)
	require.False(t, envelope.Success)
	require.Equal(t, "invalid credentials", envelope.Error)
}

func TestAdminRoutesAuthz(t *testing.T) {
	router := newTestRouter(t)
	citizen := registerAccount(t, router, "citizen@example.com", "citizen", "")
	admin := registerAccount(t, router, "admin@example.com", "admin", models.RoleAdmin)

	faq := models.FAQ{Question: "Q", Answer: "A"}

	rec := doJSON(t, router, http.MethodPost, "/api/admin/faqs", "", faq)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/admin/faqs", citizen.Token, faq)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/admin/faqs", admin.Token, faq)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestFAQPublicViewCountFlow(t *testing.T) {
	router := newTestRouter(t)
	admin := registerAccount(t, router, "admin2@example.com", "admin2", models.RoleAdmin)

	rec := doJSON(t, router, http.MethodPost, "/api/admin/faqs", admin.Token, models.FAQ{
		Question: "How often should I sample?", Answer: "Twice a week.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.FAQ
	decodeBody(t, rec, &created)

	rec = doJSON(t, router, http.MethodGet, "/api/user/faqs", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []models.FAQ
	decodeBody(t, rec, &listed)
	require.Len(t, listed, 1)
	require.Zero(t, listed[0].ViewCount)

	rec = doJSON(t, router, http.MethodGet, "/api/user/faqs/"+created.ID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail models.FAQ
	decodeBody(t, rec, &detail)
	require.Equal(t, int64(1), detail.ViewCount)
}

func TestReadingSubmitListAndStats(t *testing.T) {
	router := newTestRouter(t)
	citizen := registerAccount(t, router, "sampler@example.com", "sampler", "")

	rec := doJSON(t, router, http.MethodPost, "/api/readings", citizen.Token, models.ReadingRequest{
		Parameter: "ph",
		Value:     func() *float64 { v := 8.1; return &v }(),
		Location:  models.Location{Latitude: 14.7, Longitude: -17.4, Village: "Ngor"},
		Accuracy:  95,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/readings", citizen.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var readings []models.Reading
	decodeBody(t, rec, &readings)
	require.Len(t, readings, 1)
	require.Equal(t, "ph", readings[0].Parameter)

	rec = doJSON(t, router, http.MethodGet, "/api/auth/profile", citizen.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile models.User
	decodeBody(t, rec, &profile)
	require.Equal(t, 1, profile.Stats.TotalReadings)
	require.Equal(t, 1, profile.Stats.Streak)
}

func TestPublicUpdateFeed(t *testing.T) {
	router := newTestRouter(t)
	admin := registerAccount(t, router, "editor@example.com", "editor", models.RoleAdmin)

	rec := doJSON(t, router, http.MethodPost, "/api/admin/updates", admin.Token, models.Update{
		Title: "Beach cleanup", Content: "Saturday 9am", Status: models.UpdateStatusPublished,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Drafts never reach the public feed.
	rec = doJSON(t, router, http.MethodPost, "/api/admin/updates", admin.Token, models.Update{
		Title: "Draft", Content: "Not ready",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/user/updates", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var views []models.UpdateView
	decodeBody(t, rec, &views)
	require.Len(t, views, 1)
	require.Equal(t, "Beach cleanup", views[0].Title)
	require.True(t, views[0].IsNew)
}

func TestNotificationsFlow(t *testing.T) {
	router := newTestRouter(t)
	citizen := registerAccount(t, router, "notified@example.com", "notified", "")
	admin := registerAccount(t, router, "announcer@example.com", "announcer", models.RoleAdmin)

	rec := doJSON(t, router, http.MethodPost, "/api/admin/faqs", admin.Token, models.FAQ{
		Question: "Q", Answer: "A",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/notifications", citizen.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var notifications []models.Notification
	decodeBody(t, rec, &notifications)
	require.Len(t, notifications, 1)
	require.Equal(t, models.NotifFAQCreated, notifications[0].Type)
	require.False(t, notifications[0].Read)

	// An account patch emits a notification addressed to the citizen alone,
	// with no hint about who performed the edit.
	team := "North Shore"
	rec = doJSON(t, router, http.MethodPut, "/api/admin/users/"+citizen.User.ID.Hex(), admin.Token, models.UserPatch{
		Team: &team,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/notifications", citizen.Token, nil)
	decodeBody(t, rec, &notifications)
	require.Len(t, notifications, 2)

	var personal *models.Notification
	for i := range notifications {
		if notifications[i].Type == models.NotifAccountChanged {
			personal = &notifications[i]
		}
	}
	require.NotNil(t, personal)
	require.Equal(t, "Your account details were changed.", personal.Message)

	path := fmt.Sprintf("/api/notifications/%s/read", personal.ID.Hex())
	rec = doJSON(t, router, http.MethodPost, path, citizen.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/notifications", citizen.Token, nil)
	decodeBody(t, rec, &notifications)
	for _, n := range notifications {
		if n.ID == personal.ID {
			require.True(t, n.Read)
		}
	}
}

func TestNotificationWriteAuthorization(t *testing.T) {
	router := newTestRouter(t)
	admin := registerAccount(t, router, "ops@example.com", "ops", models.RoleAdmin)
	alice := registerAccount(t, router, "alice@example.com", "alice", "")
	bob := registerAccount(t, router, "bob@example.com", "bob", "")

	rec := doJSON(t, router, http.MethodPost, "/api/admin/faqs", admin.Token, models.FAQ{
		Question: "Q", Answer: "A",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var notifications []models.Notification
	rec = doJSON(t, router, http.MethodGet, "/api/notifications", alice.Token, nil)
	decodeBody(t, rec, &notifications)
	require.Len(t, notifications, 1)
	broadcastID := notifications[0].ID.Hex()

	// A citizen may neither delete nor mark a broadcast: the read flag lives
	// on the shared record, so either write would affect everyone.
	rec = doJSON(t, router, http.MethodDelete, "/api/notifications/"+broadcastID, alice.Token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/notifications/"+broadcastID+"/read", alice.Token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/notifications", bob.Token, nil)
	decodeBody(t, rec, &notifications)
	require.Len(t, notifications, 1, "broadcast must survive a citizen's delete attempt")

	// Targeted notifications are only writable by their addressee.
	team := "Reef Watch"
	rec = doJSON(t, router, http.MethodPut, "/api/admin/users/"+alice.User.ID.Hex(), admin.Token, models.UserPatch{
		Team: &team,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/notifications", alice.Token, nil)
	decodeBody(t, rec, &notifications)

	var personalID string
	for _, n := range notifications {
		if n.Type == models.NotifAccountChanged {
			personalID = n.ID.Hex()
		}
	}
	require.NotEmpty(t, personalID)

	rec = doJSON(t, router, http.MethodDelete, "/api/notifications/"+personalID, bob.Token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/notifications/"+personalID, alice.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Admins can retire a broadcast for everyone.
	rec = doJSON(t, router, http.MethodDelete, "/api/notifications/"+broadcastID, admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/notifications", bob.Token, nil)
	decodeBody(t, rec, &notifications)
	require.Empty(t, notifications)
}

func TestUserPatchSemantics(t *testing.T) {
	router := newTestRouter(t)
	citizen := registerAccount(t, router, "member@example.com", "member", "")
	admin := registerAccount(t, router, "boss@example.com", "boss", models.RoleAdmin)

	team := "East Bay"
	rec := doJSON(t, router, http.MethodPut, "/api/admin/users/"+citizen.User.ID.Hex(), admin.Token, models.UserPatch{
		Team: &team,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.User
	decodeBody(t, rec, &updated)
	require.Equal(t, "East Bay", updated.Team)
	// Untouched fields survive the patch.
	require.Equal(t, "member@example.com", updated.Email)
	require.Equal(t, models.RoleCitizen, updated.Role)
}

func TestWebAppDispatcher(t *testing.T) {
	router := newTestRouter(t)
	citizen := registerAccount(t, router, "tg@example.com", "tg", "")

	login := func(payloadType string) *httptest.ResponseRecorder {
		creds, _ := json.Marshal(models.LoginRequest{Email: "tg@example.com", Password: "supersecret"})
		return doJSON(t, router, http.MethodPost, "/api/telegram/webapp", "", WebAppPayload{
			Type: payloadType, Data: creds,
		})
	}

	rec := login("citizen_login")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var auth models.AuthResponse
	decodeBody(t, rec, &auth)
	require.NotEmpty(t, auth.Token)

	// A citizen cannot use the admin login entry point.
	rec = login("admin_login")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/telegram/webapp", "", WebAppPayload{Type: "selfie"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Readings submitted through the web app hit the same pipeline.
	reading, _ := json.Marshal(models.ReadingRequest{
		Parameter: "salinity",
		Value:     func() *float64 { v := 35.1; return &v }(),
		Location:  models.Location{Latitude: 14.7, Longitude: -17.4},
	})
	rec = doJSON(t, router, http.MethodPost, "/api/telegram/webapp", "", WebAppPayload{
		Type: "reading", Token: citizen.Token, Data: reading,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestWSStreamRequiresToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/ws/notifications", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/ws/notifications?token=garbage", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
