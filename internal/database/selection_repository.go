package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SelectionRepository stores the most recent city and date chosen on the landing page
type SelectionRepository struct {
	db DB
}

// NewSelectionRepository creates a new selection repository
func NewSelectionRepository(db DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

// SaveCity records a selected city
func (r *SelectionRepository) SaveCity(ctx context.Context, city string) error {
	_, err := execAffected(ctx, r.db, "city selection",
		`INSERT INTO selected_city (city_name) VALUES ($1)`, normalize(city))
	return err
}

// LatestCity returns the last selected city, or "" if none was ever saved
func (r *SelectionRepository) LatestCity(ctx context.Context) (string, error) {
	var city string
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.GetContext(ctx, &city, `SELECT city_name FROM selected_city ORDER BY id DESC LIMIT 1`)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get selected city: %w", err)
	}
	return city, nil
}

// SaveDate records a selected day
func (r *SelectionRepository) SaveDate(ctx context.Context, day time.Time) error {
	_, err := execAffected(ctx, r.db, "date selection",
		`INSERT INTO selected_date (selected_date_value) VALUES ($1)`, day)
	return err
}

// LatestDate returns the last selected day, or nil if none was ever saved
func (r *SelectionRepository) LatestDate(ctx context.Context) (*time.Time, error) {
	var day time.Time
	err := r.db.WithConn(ctx, func(conn Conn) error {
		return conn.GetContext(ctx, &day, `SELECT selected_date_value FROM selected_date ORDER BY id DESC LIMIT 1`)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get selected date: %w", err)
	}
	return &day, nil
}
