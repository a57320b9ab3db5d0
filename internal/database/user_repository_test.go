package database

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "username", "email", "fullname", "phone", "profile_pic", "password", "created_at"}

func TestCreateUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("alice", "alice@example.com", "Alice", "hash").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		id, err := repo.CreateUser(ctx, &models.User{
			Username: "alice", Email: "alice@example.com", FullName: "Alice", Password: "hash",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(fmt.Errorf("database error"))

		_, err := repo.CreateUser(ctx, &models.User{Username: "bob"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create user")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUserByIdentifier(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Found By Email", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \$1 OR email = \$1`).
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(7, "alice", "alice@example.com", "Alice", nil, nil, "hash", time.Now()))

		user, err := repo.GetUserByIdentifier(ctx, "  alice@example.com ")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "alice", user.Username)
		assert.Nil(t, user.Phone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM users`).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetUserByIdentifier(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdatePasswordByIdentifier(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Updated", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users SET password`).
			WithArgs("new-hash", "alice").
			WillReturnResult(sqlmock.NewResult(0, 1))

		n, err := repo.UpdatePasswordByIdentifier(ctx, "alice", "new-hash")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("No Matching User", func(t *testing.T) {
		mock.ExpectExec(`UPDATE users SET password`).
			WithArgs("new-hash", "nobody").
			WillReturnResult(sqlmock.NewResult(0, 0))

		n, err := repo.UpdatePasswordByIdentifier(ctx, "nobody", "new-hash")
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfile_KeepsPictureWhenNil(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	phone := "5550100"
	mock.ExpectExec(`UPDATE users`).
		WithArgs("Alice A", "a@example.com", phone, nil, "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.UpdateProfile(context.Background(), "alice", "Alice A", "a@example.com", &phone, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
