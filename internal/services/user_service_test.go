package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cockroachdb/errors"
	"github.com/eventzone/booking-backend/internal/database"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupUserTest(t *testing.T) (*UserService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	postgresDB := &database.PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}
	logger, _ := test.NewNullLogger()
	return NewUserService(database.NewUserRepository(postgresDB), bcrypt.MinCost, logger), mock
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	phone := "+94 (77) 123-4567"

	t.Run("sanitizes phone", func(t *testing.T) {
		service, mock := setupUserTest(t)
		mock.ExpectExec(`UPDATE users`).
			WithArgs("Alice Perera", "alice@example.com", "94771234567", nil, "alice").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := service.UpdateProfile(ctx, models.UpdateProfileRequest{
			Username: "alice", FullName: " Alice Perera ", Email: "alice@example.com", Phone: &phone,
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid email", func(t *testing.T) {
		service, _ := setupUserTest(t)
		err := service.UpdateProfile(ctx, models.UpdateProfileRequest{Username: "alice", FullName: "Alice", Email: "nope"})
		assert.True(t, errors.Is(err, ErrValidation))
	})

	t.Run("email taken", func(t *testing.T) {
		service, mock := setupUserTest(t)
		mock.ExpectExec(`UPDATE users`).WillReturnError(&pq.Error{Code: "23505"})

		err := service.UpdateProfile(ctx, models.UpdateProfileRequest{Username: "alice", FullName: "Alice", Email: "bob@example.com"})
		assert.True(t, errors.Is(err, ErrConflict))
	})

	t.Run("unknown user", func(t *testing.T) {
		service, mock := setupUserTest(t)
		mock.ExpectExec(`UPDATE users`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := service.UpdateProfile(ctx, models.UpdateProfileRequest{Username: "ghost", FullName: "Ghost", Email: "ghost@example.com"})
		assert.True(t, errors.Is(err, ErrNotFound))
	})
}

func TestVerifyAndUpdatePassword(t *testing.T) {
	ctx := context.Background()
	service, mock := setupUserTest(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	rows := func() *sqlmock.Rows {
		return sqlmock.NewRows(userColumns()).
			AddRow(7, "alice", "alice@example.com", "Alice", nil, nil, string(hash), time.Now())
	}

	mock.ExpectQuery(`FROM users WHERE username = \$1`).WithArgs("alice").WillReturnRows(rows())
	assert.NoError(t, service.VerifyPassword(ctx, "alice", "secret123"))

	mock.ExpectQuery(`FROM users WHERE username = \$1`).WithArgs("alice").WillReturnRows(rows())
	assert.True(t, errors.Is(service.VerifyPassword(ctx, "alice", "wrong"), ErrUnauthorized))

	assert.True(t, errors.Is(service.UpdatePassword(ctx, "alice", "123"), ErrValidation))

	mock.ExpectExec(`UPDATE users SET password = \$1 WHERE username = \$2`).
		WithArgs(sqlmock.AnyArg(), "alice").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, service.UpdatePassword(ctx, "alice", "newSecret123"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdminUserManagement(t *testing.T) {
	ctx := context.Background()
	service, mock := setupUserTest(t)

	mock.ExpectQuery(`SELECT id, username, fullname, email FROM users ORDER BY id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "fullname", "email"}).
			AddRow(1, "alice", "Alice", "alice@example.com"))
	users, err := service.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)

	mock.ExpectExec(`UPDATE users SET fullname = \$1, email = \$2 WHERE id = \$3`).
		WithArgs("Alice P", "alice@example.com", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, service.AdminUpdate(ctx, 1, models.AdminUpdateUserRequest{FullName: "Alice P", Email: "alice@example.com"}))

	mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.True(t, errors.Is(service.Delete(ctx, 2), ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}
