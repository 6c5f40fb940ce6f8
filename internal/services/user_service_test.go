package services

import (
	"context"
	"testing"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/repository"
	"github.com/stretchr/testify/require"
)

func newTestUserService() *UserService {
	notifs := NewNotificationService(repository.NewMemoryNotificationRepository())
	return NewUserService(repository.NewMemoryUserRepository(), notifs)
}

func registerTestUser(t *testing.T, svc *UserService, email, username string) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Email:     email,
		Password:  "supersecret",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterDefaults(t *testing.T) {
	svc := newTestUserService()

	user := registerTestUser(t, svc, "test@example.com", "tester")

	require.Equal(t, models.RoleCitizen, user.Role)
	require.Equal(t, models.StatusActive, user.Status)
	require.Equal(t, "Test User", user.Name)
	require.Equal(t, int64(1), user.Version)
	require.NotEqual(t, "supersecret", user.HashedPassword)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()

	cases := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"missing email", models.RegisterRequest{Password: "supersecret", Username: "x"}},
		{"bad email", models.RegisterRequest{Email: "not-an-email", Password: "supersecret", Username: "x"}},
		{"short password", models.RegisterRequest{Email: "a@b.com", Password: "short", Username: "x"}},
		{"bad role", models.RegisterRequest{Email: "a@b.com", Password: "supersecret", Username: "x", Role: "superuser"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.req)
			require.Error(t, err)
			require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()
	registerTestUser(t, svc, "dup@example.com", "dup")

	_, err := svc.Register(ctx, models.RegisterRequest{
		Email: "dup@example.com", Password: "supersecret", Username: "other",
	})
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	_, err = svc.Register(ctx, models.RegisterRequest{
		Email: "other@example.com", Password: "supersecret", Username: "dup",
	})
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestAuthenticate(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()
	registerTestUser(t, svc, "login@example.com", "login")

	user, err := svc.Authenticate(ctx, "login@example.com", "supersecret")
	require.NoError(t, err)
	require.Equal(t, "login@example.com", user.Email)
}

// Unknown email and wrong password must be indistinguishable to the caller.
func TestAuthenticateFailuresLookAlike(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()
	registerTestUser(t, svc, "known@example.com", "known")

	_, errUnknown := svc.Authenticate(ctx, "nobody@example.com", "supersecret")
	_, errWrongPwd := svc.Authenticate(ctx, "known@example.com", "wrong-password")

	require.Error(t, errUnknown)
	require.Error(t, errWrongPwd)
	require.Equal(t, errUnknown.Error(), errWrongPwd.Error())
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(errUnknown))
	require.Equal(t, apperr.KindUnauthorized, apperr.KindOf(errWrongPwd))
}

func TestUpdateUserPatchMerge(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()
	user := registerTestUser(t, svc, "patch@example.com", "patch")

	team := "North Shore"
	updated, err := svc.UpdateUser(ctx, user.ID.Hex(), models.UserPatch{Team: &team})
	require.NoError(t, err)
	require.Equal(t, "North Shore", updated.Team)
	require.Equal(t, "Test User", updated.Name)
	require.Equal(t, user.Version+1, updated.Version)
}

func TestUpdateUserStaleVersionConflicts(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()
	user := registerTestUser(t, svc, "stale@example.com", "stale")

	stale := user.Version + 5
	name := "Renamed"
	_, err := svc.UpdateUser(ctx, user.ID.Hex(), models.UserPatch{Name: &name, Version: &stale})
	require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestUpdateUserRejectsBadEnums(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()
	user := registerTestUser(t, svc, "enum@example.com", "enum")

	badStatus := "frozen"
	_, err := svc.UpdateUser(ctx, user.ID.Hex(), models.UserPatch{Status: &badStatus})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDeleteUser(t *testing.T) {
	svc := newTestUserService()
	ctx := context.Background()
	user := registerTestUser(t, svc, "gone@example.com", "gone")

	require.NoError(t, svc.DeleteUser(ctx, user.ID.Hex()))

	_, err := svc.GetUser(ctx, user.ID.Hex())
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	// Deleting again reports not found.
	err = svc.DeleteUser(ctx, user.ID.Hex())
	require.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
