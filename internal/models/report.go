package models

// OverviewStats are the headline numbers on the admin dashboard
type OverviewStats struct {
	TotalUsers    int64   `json:"totalUsers" db:"total_users"`
	TotalEvents   int64   `json:"totalEvents" db:"total_events"`
	TotalBookings int64   `json:"totalBookings" db:"total_bookings"`
	TotalRevenue  float64 `json:"totalRevenue" db:"total_revenue"`
}

// LabeledValue is one bucket of a grouped aggregate
type LabeledValue struct {
	Label string  `db:"label"`
	Value float64 `db:"value"`
}

// ChartSeries is the labels/values pair the dashboard charts consume
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// NewChartSeries splits grouped rows into parallel slices
func NewChartSeries(rows []LabeledValue) ChartSeries {
	series := ChartSeries{Labels: make([]string, 0, len(rows)), Values: make([]float64, 0, len(rows))}
	for _, r := range rows {
		series.Labels = append(series.Labels, r.Label)
		series.Values = append(series.Values, r.Value)
	}
	return series
}

// OverviewCharts groups the dashboard charts
type OverviewCharts struct {
	Revenue ChartSeries `json:"revenue"`
	Plans   ChartSeries `json:"plans"`
	Cities  ChartSeries `json:"cities"`
}

// AdminOverview is the admin dashboard payload
type AdminOverview struct {
	Stats  OverviewStats  `json:"stats"`
	Charts OverviewCharts `json:"charts"`
}
