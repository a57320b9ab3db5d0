package services

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/eventzone/booking-backend/internal/database"
	"github.com/eventzone/booking-backend/internal/models"
)

// ReportService builds the admin dashboard and data exports
type ReportService struct {
	stats *database.StatsRepository
	users *database.UserRepository
}

// NewReportService creates a new report service
func NewReportService(stats *database.StatsRepository, users *database.UserRepository) *ReportService {
	return &ReportService{stats: stats, users: users}
}

// Overview returns dashboard totals and chart series
func (s *ReportService) Overview(ctx context.Context) (*models.AdminOverview, error) {
	overview, err := s.stats.Overview(ctx)
	if err != nil {
		return nil, persistenceError(err, "failed to load overview")
	}
	return overview, nil
}

// WriteUsersCSV writes every user as ID,USERNAME,FULLNAME,EMAIL rows
func (s *ReportService) WriteUsersCSV(ctx context.Context, w io.Writer) error {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return persistenceError(err, "failed to list users")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "USERNAME", "FULLNAME", "EMAIL"}); err != nil {
		return err
	}
	for _, u := range users {
		if err := cw.Write([]string{strconv.FormatInt(u.ID, 10), u.Username, u.FullName, u.Email}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
