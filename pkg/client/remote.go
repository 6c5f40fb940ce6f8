package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
)

// RemoteSource talks to a running CoastWatch server. The bearer token is
// captured by Login and attached to every subsequent request.
type RemoteSource struct {
	baseURL string
	client  *http.Client

	mu    sync.RWMutex
	token string
}

func NewRemoteSource(baseURL string) *RemoteSource {
	return &RemoteSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Token returns the bearer token captured by the last successful login.
func (s *RemoteSource) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken installs a token obtained out of band.
func (s *RemoteSource) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *RemoteSource) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var auth models.AuthResponse
	creds := models.LoginRequest{Email: email, Password: password}
	if err := s.do(ctx, http.MethodPost, "/api/auth/login", creds, &auth); err != nil {
		return nil, err
	}
	s.SetToken(auth.Token)
	return &auth, nil
}

func (s *RemoteSource) ListFAQs(ctx context.Context) ([]models.FAQ, error) {
	var faqs []models.FAQ
	if err := s.do(ctx, http.MethodGet, "/api/user/faqs", nil, &faqs); err != nil {
		return nil, err
	}
	return faqs, nil
}

func (s *RemoteSource) CreateFAQ(ctx context.Context, faq models.FAQ) (*models.FAQ, error) {
	var created models.FAQ
	if err := s.do(ctx, http.MethodPost, "/api/admin/faqs", faq, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *RemoteSource) PatchFAQ(ctx context.Context, id string, patch models.FAQPatch) (*models.FAQ, error) {
	var updated models.FAQ
	if err := s.do(ctx, http.MethodPut, "/api/admin/faqs/"+id, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *RemoteSource) DeleteFAQ(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/api/admin/faqs/"+id, nil, nil)
}

func (s *RemoteSource) ListUpdates(ctx context.Context) ([]models.UpdateView, error) {
	var updates []models.UpdateView
	if err := s.do(ctx, http.MethodGet, "/api/user/updates", nil, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (s *RemoteSource) CreateUpdate(ctx context.Context, update models.Update) (*models.Update, error) {
	var created models.Update
	if err := s.do(ctx, http.MethodPost, "/api/admin/updates", update, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *RemoteSource) PatchUpdate(ctx context.Context, id string, patch models.UpdatePatch) (*models.Update, error) {
	var updated models.Update
	if err := s.do(ctx, http.MethodPut, "/api/admin/updates/"+id, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *RemoteSource) DeleteUpdate(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/api/admin/updates/"+id, nil, nil)
}

func (s *RemoteSource) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.do(ctx, http.MethodGet, "/api/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *RemoteSource) PatchUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	var updated models.User
	if err := s.do(ctx, http.MethodPut, "/api/admin/users/"+id, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *RemoteSource) DeleteUser(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, "/api/admin/users/"+id, nil, nil)
}

func (s *RemoteSource) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := s.do(ctx, http.MethodGet, "/api/notifications", nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *RemoteSource) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := s.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return apperr.Upstream(method+" "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Upstream(method+" "+path, err)
	}
	return nil
}

// decodeAPIError turns the server's error envelope back into the taxonomy
// the rest of the codebase speaks.
func decodeAPIError(resp *http.Response) error {
	var envelope struct {
		Error string `json:"error"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != "" {
		msg = envelope.Error
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return apperr.Validationf("%s", msg)
	case http.StatusUnauthorized:
		return apperr.Unauthorizedf("%s", msg)
	case http.StatusForbidden:
		return apperr.Forbiddenf("%s", msg)
	case http.StatusNotFound:
		return apperr.NotFoundf("%s", msg)
	case http.StatusConflict:
		return apperr.Conflictf("%s", msg)
	default:
		return apperr.Upstream(resp.Request.URL.Path, errors.New(msg))
	}
}
