package services

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/eventzone/booking-backend/internal/database"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/pkg/jwt"
	"github.com/eventzone/booking-backend/pkg/validator"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles signup, login and token refresh for customers and admins
type AuthService struct {
	users       *database.UserRepository
	credentials CredentialStore
	jwtService  *jwt.Service
	bcryptCost  int
	logger      logrus.FieldLogger
}

// NewAuthService creates a new auth service
func NewAuthService(
	users *database.UserRepository,
	credentials CredentialStore,
	jwtService *jwt.Service,
	bcryptCost int,
	logger logrus.FieldLogger,
) *AuthService {
	return &AuthService{
		users:       users,
		credentials: credentials,
		jwtService:  jwtService,
		bcryptCost:  bcryptCost,
		logger:      logger,
	}
}

// Signup registers a customer account
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, validationError("full name is required")
	}
	username, err := validator.ValidateUsername(req.Username)
	if err != nil {
		return nil, validationError("%s", err.Error())
	}
	email, err := validator.ValidateEmail(req.Email)
	if err != nil {
		return nil, validationError("%s", err.Error())
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		return nil, validationError("%s", err.Error())
	}

	count, err := s.users.CountByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, persistenceError(err, "failed to check existing users")
	}
	if count > 0 {
		return nil, conflictError("username or email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &models.User{Username: username, Email: email, FullName: fullName, Password: string(hash)}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, conflictError("username or email already registered")
		}
		return nil, persistenceError(err, "failed to create user")
	}
	user.ID = id

	s.logger.WithFields(logrus.Fields{"user_id": id, "username": username}).Info("User registered")
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var account *models.Account
	var err error

	if strings.EqualFold(strings.TrimSpace(req.Role), models.RoleAdmin) {
		account, err = s.credentials.Verify(req.Username, req.Password)
	} else {
		account, err = s.verifyUser(ctx, req.Username, req.Password)
	}
	if err != nil {
		return nil, err
	}

	return s.issueTokens(*account)
}

func (s *AuthService) verifyUser(ctx context.Context, username, password string) (*models.Account, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, persistenceError(err, "failed to load user")
	}
	if user == nil {
		return nil, unauthorizedError("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, unauthorizedError("invalid username or password")
	}
	return &models.Account{ID: user.ID, Username: user.Username, FullName: user.FullName, Role: models.RoleUser}, nil
}

// Refresh exchanges a refresh token for a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.LoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, unauthorizedError("invalid refresh token")
	}

	account := models.Account{ID: claims.UserID, Username: claims.Username, FullName: claims.FullName, Role: claims.Role}
	if account.Role != models.RoleAdmin {
		user, err := s.users.GetUserByID(ctx, claims.UserID)
		if err != nil {
			return nil, persistenceError(err, "failed to load user")
		}
		if user == nil {
			return nil, unauthorizedError("account no longer exists")
		}
		account.Username, account.FullName = user.Username, user.FullName
	}

	accessToken, err := s.jwtService.GenerateAccessToken(toSubject(account))
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtService.AccessTokenExpiry().Seconds()),
		User:        account,
	}, nil
}

func (s *AuthService) issueTokens(account models.Account) (*models.LoginResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(toSubject(account))
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate access token")
	}
	refreshToken, err := s.jwtService.GenerateRefreshToken(toSubject(account))
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate refresh token")
	}

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtService.AccessTokenExpiry().Seconds()),
		User:         account,
	}, nil
}

func toSubject(a models.Account) jwt.Subject {
	return jwt.Subject{UserID: a.ID, Username: a.Username, FullName: a.FullName, Role: a.Role}
}
