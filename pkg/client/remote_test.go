package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/stretchr/testify/require"
)

func TestRemoteSourceDecodesLists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/user/faqs", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]models.FAQ{{Question: "Q", Answer: "A"}})
	}))
	defer srv.Close()

	source := NewRemoteSource(srv.URL)
	source.SetToken("tok")

	faqs, err := source.ListFAQs(context.Background())
	require.NoError(t, err)
	require.Len(t, faqs, 1)
	require.Equal(t, "Q", faqs[0].Question)
}

func TestRemoteSourceLoginCapturesToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var creds models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, "a@b.com", creds.Email)
		json.NewEncoder(w).Encode(models.AuthResponse{Token: "issued-token"})
	}))
	defer srv.Close()

	source := NewRemoteSource(srv.URL)
	auth, err := source.Login(context.Background(), "a@b.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "issued-token", auth.Token)
	require.Equal(t, "issued-token", source.Token())
}

// Server error envelopes map back onto the error taxonomy.
func TestRemoteSourceErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		kind   apperr.Kind
	}{
		{http.StatusBadRequest, apperr.KindValidation},
		{http.StatusUnauthorized, apperr.KindUnauthorized},
		{http.StatusForbidden, apperr.KindForbidden},
		{http.StatusNotFound, apperr.KindNotFound},
		{http.StatusConflict, apperr.KindConflict},
		{http.StatusInternalServerError, apperr.KindUpstream},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "boom"})
		}))

		source := NewRemoteSource(srv.URL)
		_, err := source.ListFAQs(context.Background())
		require.Error(t, err)
		require.Equal(t, tc.kind, apperr.KindOf(err), "status %d", tc.status)
		srv.Close()
	}
}

func TestRemoteSourceUnreachable(t *testing.T) {
	source := NewRemoteSource("http://127.0.0.1:1")

	_, err := source.ListFAQs(context.Background())
	require.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}
