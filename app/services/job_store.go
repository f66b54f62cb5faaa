package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/job-geocoder/app/models"
	"go.uber.org/zap"
)

const jobsTable = "jobs"

var jobsSchema = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id BIGSERIAL PRIMARY KEY,
		site_name TEXT NOT NULL,
		job_url TEXT NOT NULL,
		title TEXT NOT NULL,
		company TEXT NULL,
		description TEXT NULL,
		job_type TEXT NULL,
		is_remote BOOLEAN NULL,
		city TEXT NULL,
		state TEXT NULL,
		country TEXT NOT NULL DEFAULT 'USA',
		interval TEXT NULL,
		min_amount DOUBLE PRECISION NULL,
		max_amount DOUBLE PRECISION NULL,
		currency TEXT NULL,
		salary_source TEXT NULL,
		date_posted TIMESTAMPTZ NULL,
		latitude DOUBLE PRECISION NULL,
		longitude DOUBLE PRECISION NULL,
		UNIQUE (site_name, job_url)
	)`,
	`CREATE INDEX IF NOT EXISTS jobs_date_posted_idx ON jobs (date_posted DESC)`,
}

var jobColumns = []interface{}{
	"site_name", "job_url", "title", "company", "description", "job_type", "is_remote",
	"city", "state", "country", "interval", "min_amount", "max_amount", "currency",
	"salary_source", "date_posted", "latitude", "longitude",
}

// JobFilter điều kiện tìm job trong bảng jobs
type JobFilter struct {
	Term     string     // ILIKE trên title/description
	Location string     // ILIKE trên city/state/country
	Since    *time.Time // date_posted >= Since
	Limit    int
}

// JobStore truy cập bảng jobs trong PostgreSQL
type JobStore struct {
	db     *sql.DB
	goqu   *goqu.Database
	logger *zap.Logger
}

// NewJobStore tạo mới JobStore
func NewJobStore(db *sql.DB, logger *zap.Logger) *JobStore {
	return &JobStore{
		db:     db,
		goqu:   goqu.New("postgres", db),
		logger: logger,
	}
}

// EnsureSchema tạo bảng jobs nếu chưa có
func (s *JobStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range jobsSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("lỗi tạo schema jobs: %w", err)
		}
	}
	return nil
}

// Upsert ghi các job, trùng (site_name, job_url) thì cập nhật
func (s *JobStore) Upsert(ctx context.Context, rows []*models.NormalizedJobRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	records := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		records = append(records, jobRecord(row))
	}

	update := goqu.Record{}
	for _, col := range jobColumns {
		name := col.(string)
		if name == "site_name" || name == "job_url" {
			continue
		}
		update[name] = goqu.L("EXCLUDED." + name)
	}

	query, args, err := s.goqu.Insert(jobsTable).
		Rows(records...).
		OnConflict(goqu.DoUpdate("site_name, job_url", update)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("lỗi build upsert jobs: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("lỗi upsert jobs: %w", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

// Search tìm job theo từ khóa, địa điểm và thời gian đăng
func (s *JobStore) Search(ctx context.Context, f JobFilter) ([]models.NormalizedJobRow, error) {
	ds := s.goqu.From(jobsTable).Select(jobColumns...)
	if conds := textConditions(f); len(conds) > 0 {
		ds = ds.Where(goqu.Or(conds...))
	}
	if f.Since != nil {
		ds = ds.Where(goqu.C("date_posted").Gte(f.Since.UTC()))
	}
	if f.Limit > 0 {
		ds = ds.Limit(uint(f.Limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("lỗi build query jobs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lỗi query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]models.NormalizedJobRow, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("lỗi scan jobs: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// HeatmapPoints các job đã có tọa độ
func (s *JobStore) HeatmapPoints(ctx context.Context, f JobFilter) ([]models.HeatmapPoint, error) {
	ds := s.goqu.From(jobsTable).
		Select("id", "latitude", "longitude").
		Where(goqu.C("latitude").IsNotNull(), goqu.C("longitude").IsNotNull())
	if conds := textConditions(f); len(conds) > 0 {
		ds = ds.Where(goqu.Or(conds...))
	}
	if f.Since != nil {
		ds = ds.Where(goqu.C("date_posted").Gte(f.Since.UTC()))
	}
	if f.Limit > 0 {
		ds = ds.Limit(uint(f.Limit))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("lỗi build query heatmap: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lỗi query heatmap: %w", err)
	}
	defer rows.Close()

	points := make([]models.HeatmapPoint, 0)
	for rows.Next() {
		p := models.HeatmapPoint{Weight: 1}
		if err := rows.Scan(&p.ID, &p.Lat, &p.Lon); err != nil {
			return nil, fmt.Errorf("lỗi scan heatmap: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// RecentTitles lấy tối đa limit title khác null
func (s *JobStore) RecentTitles(ctx context.Context, limit int) ([]string, error) {
	query, args, err := s.goqu.From(jobsTable).
		Select("title").
		Where(goqu.C("title").IsNotNull()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("lỗi build query titles: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lỗi query titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("lỗi scan titles: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

func textConditions(f JobFilter) []exp.Expression {
	var conds []exp.Expression
	if f.Term != "" {
		like := "%" + f.Term + "%"
		conds = append(conds, goqu.C("title").ILike(like), goqu.C("description").ILike(like))
	}
	if f.Location != "" {
		like := "%" + f.Location + "%"
		conds = append(conds,
			goqu.C("city").ILike(like),
			goqu.C("state").ILike(like),
			goqu.C("country").ILike(like))
	}
	return conds
}

func jobRecord(row *models.NormalizedJobRow) goqu.Record {
	var datePosted sql.NullTime
	if row.DatePosted != nil {
		if t, err := time.Parse(time.RFC3339Nano, *row.DatePosted); err == nil {
			datePosted = sql.NullTime{Time: t, Valid: true}
		}
	}
	var jobType, interval sql.NullString
	if row.JobType != nil {
		jobType = sql.NullString{String: string(*row.JobType), Valid: true}
	}
	if row.Interval != nil {
		interval = sql.NullString{String: string(*row.Interval), Valid: true}
	}

	return goqu.Record{
		"site_name":     row.SiteName,
		"job_url":       row.JobURL,
		"title":         row.Title,
		"company":       nullString(row.Company),
		"description":   nullString(row.Description),
		"job_type":      jobType,
		"is_remote":     nullBool(row.IsRemote),
		"city":          nullString(row.City),
		"state":         nullString(row.State),
		"country":       row.Country,
		"interval":      interval,
		"min_amount":    nullFloat(row.MinAmount),
		"max_amount":    nullFloat(row.MaxAmount),
		"currency":      nullString(row.Currency),
		"salary_source": nullString(row.SalarySource),
		"date_posted":   datePosted,
		"latitude":      nullFloat(row.Latitude),
		"longitude":     nullFloat(row.Longitude),
	}
}

func scanJob(row rowScanner) (*models.NormalizedJobRow, error) {
	var (
		job                                     models.NormalizedJobRow
		company, description, jobType, city     sql.NullString
		state, interval, currency, salarySource sql.NullString
		isRemote                                sql.NullBool
		minAmount, maxAmount, lat, lon          sql.NullFloat64
		datePosted                              sql.NullTime
	)
	err := row.Scan(
		&job.SiteName, &job.JobURL, &job.Title, &company, &description, &jobType, &isRemote,
		&city, &state, &job.Country, &interval, &minAmount, &maxAmount, &currency,
		&salarySource, &datePosted, &lat, &lon,
	)
	if err != nil {
		return nil, err
	}

	job.Company = stringPtr(company)
	job.Description = stringPtr(description)
	job.City = stringPtr(city)
	job.State = stringPtr(state)
	job.Currency = stringPtr(currency)
	job.SalarySource = stringPtr(salarySource)
	if jobType.Valid {
		jt := models.JobType(jobType.String)
		job.JobType = &jt
	}
	if interval.Valid {
		iv := models.SalaryInterval(interval.String)
		job.Interval = &iv
	}
	if isRemote.Valid {
		b := isRemote.Bool
		job.IsRemote = &b
	}
	job.MinAmount = floatPtr(minAmount)
	job.MaxAmount = floatPtr(maxAmount)
	job.Latitude = floatPtr(lat)
	job.Longitude = floatPtr(lon)
	if datePosted.Valid {
		s := datePosted.Time.UTC().Format("2006-01-02T15:04:05.000Z")
		job.DatePosted = &s
	}
	return &job, nil
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}
