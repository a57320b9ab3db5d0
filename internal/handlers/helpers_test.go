package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cockroachdb/errors"
	"github.com/eventzone/booking-backend/internal/database"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/internal/services"
	"github.com/eventzone/booking-backend/pkg/clock"
	"github.com/eventzone/booking-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var userRowColumns = []string{"id", "username", "email", "fullname", "phone", "profile_pic", "password", "created_at"}

type stubCredentials struct{}

func (stubCredentials) Verify(username, password string) (*models.Account, error) {
	if username == "root" && password == "toor" {
		return &models.Account{Username: "root", FullName: "Site Admin", Role: models.RoleAdmin}, nil
	}
	return nil, errors.Mark(errors.New("invalid username or password"), services.ErrUnauthorized)
}

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *recordingSender) SendOTP(ctx context.Context, recipient, code string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, recipient+":"+code)
	return nil
}

func (s *recordingSender) GetName() string { return "recording" }

type apiFixture struct {
	router    *gin.Engine
	mock      sqlmock.Sqlmock
	jwt       *jwt.Service
	clock     *clock.MockClock
	sender    *recordingSender
	uploadDir string
}

func setupAPI(t *testing.T, exposeOTP bool) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db := &database.PostgresDB{DB: sqlx.NewDb(sqlDB, "sqlmock")}
	logger, _ := test.NewNullLogger()
	mockClock := clock.NewMockClock(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC))
	jwtService := jwt.NewService("handler-access-secret", "handler-refresh-secret", time.Hour, 24*time.Hour)
	sender := &recordingSender{}
	uploadDir := t.TempDir()

	userRepo := database.NewUserRepository(db)
	eventRepo := database.NewEventRepository(db)

	coupons := services.NewCouponService(database.NewCouponRepository(db), logger)
	bookings := services.NewBookingService(database.NewBookingRepository(db), coupons, logger, services.WithClock(mockClock))
	receipts := services.NewReceiptService(bookings, mockClock)
	otp := services.NewOTPService(db, userRepo, 5*time.Minute, bcrypt.MinCost, mockClock, logger)
	auth := services.NewAuthService(userRepo, stubCredentials{}, jwtService, bcrypt.MinCost, logger)
	users := services.NewUserService(userRepo, bcrypt.MinCost, logger)
	audit := services.NewAuditService(logger, true)
	limiter := services.NewRateLimitService(db, services.DefaultRateLimitConfig(), mockClock)
	catalog := services.NewCatalogService(eventRepo, database.NewSelectionRepository(db), logger)
	messages := services.NewMessageService(database.NewChatRepository(db), database.NewFeedbackRepository(db), mockClock, logger)
	reports := services.NewReportService(database.NewStatsRepository(db), userRepo)

	router := gin.New()
	router.GET("/health", HealthCheck(db, "test"))
	RegisterRoutes(router, Handlers{
		Auth:    NewAuthHandler(auth, otp, users, audit, limiter, sender, exposeOTP, logger),
		Profile: NewProfileHandler(users, uploadDir, 1<<20, logger),
		Booking: NewBookingHandler(bookings, receipts, logger),
		Catalog: NewCatalogHandler(catalog, logger),
		Message: NewMessageHandler(messages, logger),
		Admin:   NewAdminHandler(users, catalog, coupons, bookings, messages, reports, logger),
	}, jwtService, logger)

	return &apiFixture{
		router:    router,
		mock:      mock,
		jwt:       jwtService,
		clock:     mockClock,
		sender:    sender,
		uploadDir: uploadDir,
	}
}

func (f *apiFixture) userToken(t *testing.T, id int64, username string) string {
	t.Helper()
	token, err := f.jwt.GenerateAccessToken(jwt.Subject{UserID: id, Username: username, FullName: "Test User", Role: models.RoleUser})
	require.NoError(t, err)
	return token
}

func (f *apiFixture) adminToken(t *testing.T) string {
	t.Helper()
	token, err := f.jwt.GenerateAccessToken(jwt.Subject{Username: "root", FullName: "Site Admin", Role: models.RoleAdmin})
	require.NoError(t, err)
	return token
}

// do sends body as JSON unless it is already an io.Reader
func (f *apiFixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		payload, _ := json.Marshal(b)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equalf(t, status, w.Code, "body: %s", w.Body.String())
}
