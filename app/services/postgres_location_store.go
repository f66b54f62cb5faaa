package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/job-geocoder/app/models"
	"go.uber.org/zap"
)

const locationsTable = "locations"

var locationsSchema = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id BIGSERIAL PRIMARY KEY,
		city TEXT NULL,
		state TEXT NULL,
		country TEXT NOT NULL DEFAULT 'USA',
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS locations_city_state_country_key
		ON locations (COALESCE(city, ''), COALESCE(state, ''), country)`,
	`CREATE INDEX IF NOT EXISTS locations_created_at_idx ON locations (created_at DESC)`,
}

var locationColumns = []interface{}{"city", "state", "country", "latitude", "longitude", "created_at"}

// PostgresLocationStore lưu cache tọa độ trong bảng locations
type PostgresLocationStore struct {
	db     *sql.DB
	goqu   *goqu.Database
	logger *zap.Logger
}

// NewPostgresLocationStore tạo mới PostgresLocationStore
func NewPostgresLocationStore(db *sql.DB, logger *zap.Logger) *PostgresLocationStore {
	return &PostgresLocationStore{
		db:     db,
		goqu:   goqu.New("postgres", db),
		logger: logger,
	}
}

// EnsureSchema tạo bảng và unique index nếu chưa có
func (s *PostgresLocationStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range locationsSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("lỗi tạo schema locations: %w", err)
		}
	}
	return nil
}

// Find tìm bản ghi bằng so sánh bằng trên từng cột, NULL khớp với IS NULL
func (s *PostgresLocationStore) Find(ctx context.Context, q models.LocationQuery) (*models.LocationCache, error) {
	query, args, err := s.goqu.From(locationsTable).
		Select(locationColumns...).
		Where(nullableEq("city", q.City), nullableEq("state", q.State), goqu.C("country").Eq(q.Country)).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("lỗi build query locations: %w", err)
	}

	entry, err := scanLocation(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lỗi query locations: %w", err)
	}
	entry.Fingerprint = q.Fingerprint()
	return entry, nil
}

// Insert thêm bản ghi, trùng unique index thì bỏ qua
func (s *PostgresLocationStore) Insert(ctx context.Context, entry *models.LocationCache) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query, args, err := s.goqu.Insert(locationsTable).
		Rows(goqu.Record{
			"city":       nullString(entry.City),
			"state":      nullString(entry.State),
			"country":    entry.Country,
			"latitude":   entry.Latitude,
			"longitude":  entry.Longitude,
			"created_at": createdAt,
		}).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return fmt.Errorf("lỗi build insert locations: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("lỗi insert locations: %w", err)
	}
	return nil
}

// Count đếm số bản ghi trong bảng locations
func (s *PostgresLocationStore) Count(ctx context.Context) (int64, error) {
	query, args, err := s.goqu.From(locationsTable).Select(goqu.COUNT("*")).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("lỗi build count locations: %w", err)
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("lỗi count locations: %w", err)
	}
	return count, nil
}

// Recent lấy các bản ghi mới nhất
func (s *PostgresLocationStore) Recent(ctx context.Context, limit int) ([]models.LocationCache, error) {
	if limit <= 0 {
		return nil, nil
	}
	query, args, err := s.goqu.From(locationsTable).
		Select(locationColumns...).
		Order(goqu.I("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("lỗi build query locations: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lỗi query locations: %w", err)
	}
	defer rows.Close()

	var entries []models.LocationCache
	for rows.Next() {
		entry, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("lỗi scan locations: %w", err)
		}
		entry.Fingerprint = entry.Query().Fingerprint()
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocation(row rowScanner) (*models.LocationCache, error) {
	var (
		city, state sql.NullString
		entry       models.LocationCache
	)
	if err := row.Scan(&city, &state, &entry.Country, &entry.Latitude, &entry.Longitude, &entry.CreatedAt); err != nil {
		return nil, err
	}
	entry.City = stringPtr(city)
	entry.State = stringPtr(state)
	return &entry, nil
}

func nullableEq(column string, value *string) exp.Expression {
	if value == nil {
		return goqu.C(column).IsNull()
	}
	return goqu.C(column).Eq(*value)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
