package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var allowedRoles = map[string]bool{
	models.RoleCitizen:   true,
	models.RoleAdmin:     true,
	models.RoleModerator: true,
}

var allowedStatuses = map[string]bool{
	models.StatusActive:    true,
	models.StatusInactive:  true,
	models.StatusSuspended: true,
}

// UserService encapsulates the business logic for user accounts.
type UserService struct {
	repo   repository.UserRepository
	notifs *NotificationService
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo repository.UserRepository, notifs *NotificationService) *UserService {
	return &UserService{repo: repo, notifs: notifs}
}

// Register creates a new account after hashing the password. Email and
// username must each be globally unique.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	logrus.WithField("email", req.Email).Info("Registering new user")

	if req.Email == "" || req.Password == "" || req.Username == "" {
		return nil, apperr.Validationf("email, password and username are required")
	}
	if !emailRegex.MatchString(req.Email) {
		return nil, apperr.Validationf("invalid email format")
	}
	if len(req.Password) < 8 {
		return nil, apperr.Validationf("password must be at least 8 characters")
	}

	role := req.Role
	if role == "" {
		role = models.RoleCitizen
	}
	if !allowedRoles[role] {
		return nil, apperr.Validationf("invalid role %q", role)
	}

	if err := s.ensureUnique(ctx, req.Email, req.Username); err != nil {
		return nil, err
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, apperr.Upstream("hash password", err)
	}

	user := &models.User{
		Name:           strings.TrimSpace(req.FirstName + " " + req.LastName),
		Email:          req.Email,
		Username:       req.Username,
		HashedPassword: string(hashedPwd),
		Role:           role,
		Status:         models.StatusActive,
		Profile:        models.UserProfile{},
		Stats:          models.UserStats{},
		LastActive:     time.Now(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"userID": created.ID.Hex(),
		"role":   created.Role,
	}).Info("User registered successfully")
	return created, nil
}

// Authenticate verifies credentials. Unknown email and wrong password both
// return the same generic error to avoid user enumeration.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			logrus.WithField("email", email).Warn("Login attempt for unknown email")
			return nil, apperr.Unauthorizedf("invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Invalid credentials")
		return nil, apperr.Unauthorizedf("invalid credentials")
	}

	if err := s.repo.TouchLastActive(ctx, user.ID); err != nil {
		logrus.WithError(err).Warn("Failed to refresh last_active on login")
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// GetUser retrieves a user by hex ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validationf("invalid user ID")
	}
	return s.repo.GetByID(ctx, objID)
}

// ListUsers returns all users, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// UpdateUser applies a partial patch. Stats cannot be patched; they belong
// to the reading pipeline.
func (s *UserService) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Validationf("invalid user ID")
	}

	user, err := s.repo.GetByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Team != nil {
		user.Team = *patch.Team
	}
	if patch.Status != nil {
		if !allowedStatuses[*patch.Status] {
			return nil, apperr.Validationf("invalid status %q", *patch.Status)
		}
		user.Status = *patch.Status
	}
	if patch.Role != nil {
		if !allowedRoles[*patch.Role] {
			return nil, apperr.Validationf("invalid role %q", *patch.Role)
		}
		user.Role = *patch.Role
	}
	if patch.Profile != nil {
		user.Profile = *patch.Profile
	}

	expectedVersion := user.Version
	if patch.Version != nil {
		expectedVersion = *patch.Version
	}

	updated, err := s.repo.Update(ctx, objID, expectedVersion, user)
	if err != nil {
		return nil, err
	}

	// Both the admin surface and self-service profile edits land here, so
	// the message stays neutral about who made the change.
	if err := s.notifs.Notify(ctx, &objID, models.NotifAccountChanged,
		"Account updated", "Your account details were changed.", nil); err != nil {
		logrus.WithError(err).Warn("Failed to emit account change notification")
	}

	logrus.WithField("userID", id).Info("User updated successfully")
	return updated, nil
}

// DeleteUser hard-deletes an account.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.Validationf("invalid user ID")
	}
	if err := s.repo.Delete(ctx, objID); err != nil {
		return err
	}
	logrus.WithField("userID", id).Info("User deleted successfully")
	return nil
}

// TouchLastActive refreshes the last-active marker, best effort.
func (s *UserService) TouchLastActive(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.TouchLastActive(ctx, id)
}

func (s *UserService) ensureUnique(ctx context.Context, email, username string) error {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return apperr.Conflictf("email already in use")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return apperr.Conflictf("username already in use")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return nil
}
