package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/job-geocoder/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockLocationStore(t *testing.T) (*PostgresLocationStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresLocationStore(db, zap.NewNop()), mock
}

func TestPostgresLocationStore_EnsureSchema(t *testing.T) {
	store, mock := newMockLocationStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS locations`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE UNIQUE INDEX IF NOT EXISTS locations_city_state_country_key`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS locations_created_at_idx`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLocationStore_FindMatchesNullAsIsNull(t *testing.T) {
	store, mock := newMockLocationStore(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM "locations" WHERE .*"city" = 'Arlington'.*"state" IS NULL.*"country" = 'USA'.*LIMIT 1`).
		WillReturnRows(sqlmock.NewRows([]string{"city", "state", "country", "latitude", "longitude", "created_at"}).
			AddRow("Arlington", nil, "USA", 38.8816, -77.0910, created))

	q := models.NewLocationQuery(strPtr("Arlington"), nil, "USA")
	entry, err := store.Find(context.Background(), q)
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, "Arlington", *entry.City)
	assert.Nil(t, entry.State)
	assert.Equal(t, 38.8816, entry.Latitude)
	assert.Equal(t, -77.0910, entry.Longitude)
	assert.Equal(t, q.Fingerprint(), entry.Fingerprint)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLocationStore_FindNotFound(t *testing.T) {
	store, mock := newMockLocationStore(t)

	mock.ExpectQuery(`SELECT .+ FROM "locations"`).
		WillReturnRows(sqlmock.NewRows([]string{"city", "state", "country", "latitude", "longitude", "created_at"}))

	entry, err := store.Find(context.Background(), models.NewLocationQuery(strPtr("Nowhere"), strPtr("ZZ"), "USA"))
	assert.NoError(t, err)
	assert.Nil(t, entry)
}

func TestPostgresLocationStore_FindError(t *testing.T) {
	store, mock := newMockLocationStore(t)

	mock.ExpectQuery(`SELECT .+ FROM "locations"`).WillReturnError(errors.New("connection refused"))

	entry, err := store.Find(context.Background(), models.NewLocationQuery(strPtr("Austin"), nil, "USA"))
	assert.Error(t, err)
	assert.Nil(t, entry)
}

func TestPostgresLocationStore_InsertIgnoresConflict(t *testing.T) {
	store, mock := newMockLocationStore(t)

	mock.ExpectExec(`INSERT INTO "locations" .+ VALUES .*'Austin'.*'USA'.*NULL.*ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	q := models.NewLocationQuery(strPtr("Austin"), nil, "USA")
	err := store.Insert(context.Background(), models.NewLocationCache(q, models.Coordinates{Lat: 30.2672, Lon: -97.7431}))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLocationStore_CountAndRecent(t *testing.T) {
	store, mock := newMockLocationStore(t)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "locations"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(42)))
	mock.ExpectQuery(`SELECT .+ FROM "locations" ORDER BY "created_at" DESC LIMIT 2`).
		WillReturnRows(sqlmock.NewRows([]string{"city", "state", "country", "latitude", "longitude", "created_at"}).
			AddRow("Boston", "MA", "USA", 42.36, -71.06, created).
			AddRow(nil, "TX", "USA", 31.0, -100.0, created.Add(-time.Hour)))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)

	entries, err := store.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Boston", *entries[0].City)
	assert.Nil(t, entries[1].City)
	assert.Equal(t, models.NewLocationQuery(nil, strPtr("TX"), "USA").Fingerprint(), entries[1].Fingerprint)
	assert.NoError(t, mock.ExpectationsWereMet())
}
