package database

import (
	"context"
	"fmt"

	"github.com/eventzone/booking-backend/internal/models"
)

// StatsRepository runs the aggregate queries behind the admin dashboard
type StatsRepository struct {
	db DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Overview collects totals and chart buckets on a single connection.
// Revenue counts bookings that have been paid, approved or not.
func (r *StatsRepository) Overview(ctx context.Context) (*models.AdminOverview, error) {
	paid, approved := string(models.BookingStatusPaid), string(models.BookingStatusApproved)

	totalsQuery := `
		SELECT
			(SELECT COUNT(*) FROM users) AS total_users,
			(SELECT COUNT(*) FROM events) AS total_events,
			(SELECT COUNT(*) FROM bookings) AS total_bookings,
			(SELECT COALESCE(SUM(price), 0) FROM bookings WHERE status IN ($1, $2)) AS total_revenue
	`
	revenueQuery := `
		SELECT TO_CHAR(booking_date, 'Mon') AS label, COALESCE(SUM(price), 0) AS value
		FROM bookings
		WHERE status IN ($1, $2)
		GROUP BY TO_CHAR(booking_date, 'Mon'), EXTRACT(MONTH FROM booking_date)
		ORDER BY EXTRACT(MONTH FROM booking_date)
	`
	plansQuery := `
		SELECT COALESCE(NULLIF(plan, ''), 'N/A') AS label, COUNT(*) AS value
		FROM bookings
		GROUP BY 1
		ORDER BY 1
	`
	citiesQuery := `
		SELECT COALESCE(NULLIF(city, ''), 'Unknown') AS label, COUNT(*) AS value
		FROM events
		GROUP BY 1
		ORDER BY 1
	`

	var (
		overview models.AdminOverview
		revenue  []models.LabeledValue
		plans    []models.LabeledValue
		cities   []models.LabeledValue
	)
	err := r.db.WithConn(ctx, func(conn Conn) error {
		if err := conn.GetContext(ctx, &overview.Stats, totalsQuery, paid, approved); err != nil {
			return fmt.Errorf("totals: %w", err)
		}
		if err := conn.SelectContext(ctx, &revenue, revenueQuery, paid, approved); err != nil {
			return fmt.Errorf("revenue by month: %w", err)
		}
		if err := conn.SelectContext(ctx, &plans, plansQuery); err != nil {
			return fmt.Errorf("plans: %w", err)
		}
		if err := conn.SelectContext(ctx, &cities, citiesQuery); err != nil {
			return fmt.Errorf("events per city: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load overview: %w", err)
	}

	overview.Charts = models.OverviewCharts{
		Revenue: models.NewChartSeries(revenue),
		Plans:   models.NewChartSeries(plans),
		Cities:  models.NewChartSeries(cities),
	}
	return &overview, nil
}
