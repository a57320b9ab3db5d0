package services

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/eventzone/booking-backend/internal/database"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/pkg/validator"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// UserService manages customer profiles and the admin user console
type UserService struct {
	users      *database.UserRepository
	bcryptCost int
	logger     logrus.FieldLogger
}

// NewUserService creates a new user service
func NewUserService(users *database.UserRepository, bcryptCost int, logger logrus.FieldLogger) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost, logger: logger}
}

// GetByUsername returns a user's profile
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, persistenceError(err, "failed to load user")
	}
	if user == nil {
		return nil, notFoundError("user %q not found", username)
	}
	return user, nil
}

// GetByID returns a user's profile
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, persistenceError(err, "failed to load user")
	}
	if user == nil {
		return nil, notFoundError("user %d not found", id)
	}
	return user, nil
}

// UpdateProfile edits name, email, phone and optionally the picture path
func (s *UserService) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) error {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return validationError("full name is required")
	}
	email, err := validator.ValidateEmail(req.Email)
	if err != nil {
		return validationError("%s", err.Error())
	}

	var phone *string
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		sanitized, err := validator.SanitizePhone(*req.Phone)
		if err != nil {
			return validationError("%s", err.Error())
		}
		phone = &sanitized
	}

	n, err := s.users.UpdateProfile(ctx, req.Username, fullName, email, phone, req.ProfilePic)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return conflictError("email already registered")
		}
		return persistenceError(err, "failed to update profile")
	}
	if n == 0 {
		return notFoundError("user %q not found", req.Username)
	}
	return nil
}

// SetProfilePic records the stored path of an uploaded picture
func (s *UserService) SetProfilePic(ctx context.Context, username, path string) error {
	n, err := s.users.UpdateProfilePic(ctx, username, path)
	if err != nil {
		return persistenceError(err, "failed to update profile picture")
	}
	if n == 0 {
		return notFoundError("user %q not found", username)
	}
	return nil
}

// VerifyPassword checks a user's current password
func (s *UserService) VerifyPassword(ctx context.Context, username, password string) error {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return unauthorizedError("incorrect password")
	}
	return nil
}

// UpdatePassword stores a new password for a user
func (s *UserService) UpdatePassword(ctx context.Context, username, newPassword string) error {
	if err := validator.ValidatePassword(newPassword); err != nil {
		return validationError("%s", err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	n, err := s.users.UpdatePasswordByUsername(ctx, username, string(hash))
	if err != nil {
		return persistenceError(err, "failed to update password")
	}
	if n == 0 {
		return notFoundError("user %q not found", username)
	}

	s.logger.WithField("username", username).Info("Password updated")
	return nil
}

// List returns every user for the admin console
func (s *UserService) List(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, persistenceError(err, "failed to list users")
	}
	return users, nil
}

// AdminUpdate edits a user's name and email
func (s *UserService) AdminUpdate(ctx context.Context, id int64, req models.AdminUpdateUserRequest) error {
	email, err := validator.ValidateEmail(req.Email)
	if err != nil {
		return validationError("%s", err.Error())
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return validationError("full name is required")
	}

	n, err := s.users.AdminUpdateUser(ctx, id, fullName, email)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return conflictError("email already registered")
		}
		return persistenceError(err, "failed to update user")
	}
	if n == 0 {
		return notFoundError("user %d not found", id)
	}
	return nil
}

// Delete removes a user and their bookings
func (s *UserService) Delete(ctx context.Context, id int64) error {
	n, err := s.users.DeleteUser(ctx, id)
	if err != nil {
		return persistenceError(err, "failed to delete user")
	}
	if n == 0 {
		return notFoundError("user %d not found", id)
	}

	s.logger.WithField("user_id", id).Info("User deleted")
	return nil
}
