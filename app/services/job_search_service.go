package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/job-geocoder/app/models"
	"github.com/job-geocoder/internal/external"
	"github.com/job-geocoder/internal/normalizer"
	"go.uber.org/zap"
)

const (
	DefaultResultsWanted = 30
	DefaultHoursOld      = 72
	MaxHoursOld          = 720
	HeatmapLimit         = 2000
	KeywordSampleSize    = 100
	TopKeywords          = 8
)

var (
	// ErrSearchTermRequired thiếu từ khóa tìm kiếm
	ErrSearchTermRequired = errors.New("searchTerm is required")
	// ErrProviderNotConfigured chưa cấu hình job provider
	ErrProviderNotConfigured = errors.New("job provider is not configured")
)

// ProviderError job provider trả lỗi
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string { return "job provider error: " + e.Err.Error() }
func (e *ProviderError) Unwrap() error { return e.Err }

// JobProvider nguồn job bên ngoài
type JobProvider interface {
	Scrape(ctx context.Context, p external.ScrapeParams) ([]models.RawJobRecord, error)
}

// JobRepository tầng lưu trữ job
type JobRepository interface {
	Upsert(ctx context.Context, rows []*models.NormalizedJobRow) (int64, error)
	Search(ctx context.Context, f JobFilter) ([]models.NormalizedJobRow, error)
	HeatmapPoints(ctx context.Context, f JobFilter) ([]models.HeatmapPoint, error)
	RecentTitles(ctx context.Context, limit int) ([]string, error)
}

// SearchOptions tham số tìm job
type SearchOptions struct {
	SearchTerm    string
	Location      string
	ResultsWanted *int
	HoursOld      *int
	ForceExternal bool
}

// SearchResult kết quả tìm job
type SearchResult struct {
	Count     int                       `json:"count"`
	Jobs      []models.NormalizedJobRow `json:"jobs"`
	FromStore bool                      `json:"-"`
}

// JobSearchService pipeline tìm job: store trước, sau đó provider -> chuẩn hóa -> geocode -> upsert
type JobSearchService struct {
	provider JobProvider // nil nếu chưa cấu hình
	jobs     JobRepository
	geocoder *GeocodeService
	logger   *zap.Logger
	now      func() time.Time
}

// NewJobSearchService tạo mới JobSearchService
func NewJobSearchService(provider JobProvider, jobs JobRepository, geocoder *GeocodeService, logger *zap.Logger) *JobSearchService {
	return &JobSearchService{
		provider: provider,
		jobs:     jobs,
		geocoder: geocoder,
		logger:   logger,
		now:      time.Now,
	}
}

// Search chạy pipeline tìm job
func (s *JobSearchService) Search(ctx context.Context, opts SearchOptions) (*SearchResult, error) {
	term := strings.TrimSpace(opts.SearchTerm)
	if term == "" {
		return nil, ErrSearchTermRequired
	}
	location := strings.TrimSpace(opts.Location)
	resultsWanted := DefaultResultsWanted
	if opts.ResultsWanted != nil {
		resultsWanted = *opts.ResultsWanted
	}
	hoursOld := DefaultHoursOld
	if opts.HoursOld != nil {
		hoursOld = *opts.HoursOld
	}
	if hoursOld > MaxHoursOld {
		hoursOld = MaxHoursOld
	}

	if !opts.ForceExternal {
		since := s.now().Add(-time.Duration(hoursOld) * time.Hour)
		cached, err := s.jobs.Search(ctx, JobFilter{Term: term, Location: location, Since: &since, Limit: resultsWanted})
		switch {
		case err != nil:
			s.logger.Error("jobs DB lookup error", zap.Error(err))
		case len(cached) > 0:
			s.logger.Debug("Returning cached jobs from DB", zap.Int("count", len(cached)))
			return &SearchResult{Count: len(cached), Jobs: cached, FromStore: true}, nil
		default:
			s.logger.Debug("No cached jobs found, falling back to provider")
		}
	}

	if s.provider == nil {
		return nil, ErrProviderNotConfigured
	}

	raw, err := s.provider.Scrape(ctx, external.ScrapeParams{
		SearchTerm:    term,
		Location:      location,
		ResultsWanted: resultsWanted,
		HoursOld:      hoursOld,
	})
	if err != nil {
		return nil, &ProviderError{Err: err}
	}

	imported, err := s.Import(ctx, raw)
	if err != nil {
		return nil, err
	}

	jobs := make([]models.NormalizedJobRow, 0, len(imported.Rows))
	for _, row := range imported.Rows {
		jobs = append(jobs, *row)
	}
	return &SearchResult{Count: len(jobs), Jobs: jobs}, nil
}

// ImportResult kết quả nạp một lô job thô
type ImportResult struct {
	Received        int
	Normalized      int
	UniqueLocations int
	WithCoordinates int
	Upserted        int64
	Rows            []*models.NormalizedJobRow
}

// Import chuẩn hóa, geocode và upsert một lô job thô từ provider
func (s *JobSearchService) Import(ctx context.Context, raw []models.RawJobRecord) (*ImportResult, error) {
	rows := NormalizeRecords(raw, s.logger)

	coords := s.geocoder.ResolveAll(ctx, QueriesFor(rows))
	attached := AttachCoordinates(rows, coords)
	s.logger.Info("Geocoded jobs",
		zap.Int("provider_jobs", len(raw)),
		zap.Int("normalized", len(rows)),
		zap.Int("unique_locations", len(coords)),
		zap.Int("with_coordinates", attached))

	upserted, err := s.jobs.Upsert(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("upsert jobs: %w", err)
	}

	return &ImportResult{
		Received:        len(raw),
		Normalized:      len(rows),
		UniqueLocations: len(coords),
		WithCoordinates: attached,
		Upserted:        upserted,
		Rows:            rows,
	}, nil
}

// Heatmap các điểm job đã geocode; hoursOld nil thì không lọc theo thời gian
func (s *JobSearchService) Heatmap(ctx context.Context, term, location string, hoursOld *float64) ([]models.HeatmapPoint, error) {
	f := JobFilter{
		Term:     strings.TrimSpace(term),
		Location: strings.TrimSpace(location),
		Limit:    HeatmapLimit,
	}
	if hoursOld != nil {
		h := *hoursOld
		if h < 1 {
			h = 1
		}
		if h > MaxHoursOld {
			h = MaxHoursOld
		}
		since := s.now().Add(-time.Duration(h * float64(time.Hour)))
		f.Since = &since
	}
	return s.jobs.HeatmapPoints(ctx, f)
}

// Keywords các title xuất hiện nhiều nhất; hòa thì giữ thứ tự xuất hiện
func (s *JobSearchService) Keywords(ctx context.Context) []string {
	titles, err := s.jobs.RecentTitles(ctx, KeywordSampleSize)
	if err != nil {
		s.logger.Error("job-keywords query error", zap.Error(err))
		return []string{}
	}
	return TopTitles(titles, TopKeywords)
}

// TopTitles đếm title đã trim, trả về n title nhiều nhất
func TopTitles(titles []string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, t := range titles {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, seen := counts[t]; !seen {
			order = append(order, t)
		}
		counts[t]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	if order == nil {
		return []string{}
	}
	return order
}

// NormalizeRecords chuẩn hóa danh sách job thô, bỏ các job thiếu trường định danh
func NormalizeRecords(raw []models.RawJobRecord, logger *zap.Logger) []*models.NormalizedJobRow {
	rows := make([]*models.NormalizedJobRow, 0, len(raw))
	rejected := 0
	for _, r := range raw {
		row, ok := normalizer.NormalizeProviderRecord(r)
		if !ok {
			rejected++
			continue
		}
		rows = append(rows, row)
	}
	if rejected > 0 {
		logger.Info("Bỏ qua job thiếu site/job_url/title", zap.Int("rejected", rejected))
	}
	return rows
}
