package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eventzone/booking-backend/internal/models"
)

const userColumns = `id, username, email, fullname, phone, profile_pic, password, created_at`

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// CreateUser inserts a user whose password is already hashed and returns the new id
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (int64, error) {
	query := `
		INSERT INTO users (username, email, fullname, password)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.GetContext(ctx, &id, query, user.Username, user.Email, user.FullName, user.Password)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	return id, nil
}

// CountByUsernameOrEmail counts users holding either the username or the email
func (r *UserRepository) CountByUsernameOrEmail(ctx context.Context, username, email string) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE username = $1 OR email = $2`

	var count int
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.GetContext(ctx, &count, query, normalize(username), normalize(email))
	})
	if err != nil {
		return 0, fmt.Errorf("failed to check existing users: %w", err)
	}

	return count, nil
}

// GetUserByID retrieves a user by id, or nil if not found
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetUserByUsername retrieves a user by username, or nil if not found
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, normalize(username))
}

// GetUserByIdentifier retrieves a user whose username or email equals identifier, or nil if not found
func (r *UserRepository) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $1 ORDER BY id LIMIT 1`
	return r.getOne(ctx, query, normalize(identifier))
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.GetContext(ctx, &user, query, arg)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateProfile updates the editable profile fields. A nil profilePic keeps the current picture.
func (r *UserRepository) UpdateProfile(ctx context.Context, username, fullName, email string, phone, profilePic *string) (int64, error) {
	query := `
		UPDATE users
		SET fullname = $1, email = $2, phone = $3, profile_pic = COALESCE($4, profile_pic)
		WHERE username = $5
	`
	return execAffected(ctx, r.db, "profile update", query, fullName, email, phone, profilePic, normalize(username))
}

// UpdateProfilePic stores the path of a freshly uploaded profile picture
func (r *UserRepository) UpdateProfilePic(ctx context.Context, username, path string) (int64, error) {
	return execAffected(ctx, r.db, "profile picture update",
		`UPDATE users SET profile_pic = $1 WHERE username = $2`, path, normalize(username))
}

// UpdatePasswordByUsername replaces the password hash of one user
func (r *UserRepository) UpdatePasswordByUsername(ctx context.Context, username, passwordHash string) (int64, error) {
	return execAffected(ctx, r.db, "password update",
		`UPDATE users SET password = $1 WHERE username = $2`, passwordHash, normalize(username))
}

// UpdatePasswordByIdentifier replaces the password hash of the user matched by username or email
func (r *UserRepository) UpdatePasswordByIdentifier(ctx context.Context, identifier, passwordHash string) (int64, error) {
	return execAffected(ctx, r.db, "password reset",
		`UPDATE users SET password = $1 WHERE username = $2 OR email = $2`, passwordHash, normalize(identifier))
}

// ListUsers returns every user ordered by id
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	users := []models.UserSummary{}
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.SelectContext(ctx, &users, `SELECT id, username, fullname, email FROM users ORDER BY id`)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// AdminUpdateUser updates a user's name and email by id
func (r *UserRepository) AdminUpdateUser(ctx context.Context, id int64, fullName, email string) (int64, error) {
	return execAffected(ctx, r.db, "user update",
		`UPDATE users SET fullname = $1, email = $2 WHERE id = $3`, fullName, email, id)
}

// DeleteUser removes a user and, through the foreign keys, their bookings
func (r *UserRepository) DeleteUser(ctx context.Context, id int64) (int64, error) {
	return execAffected(ctx, r.db, "user delete", `DELETE FROM users WHERE id = $1`, id)
}
