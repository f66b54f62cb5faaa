package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/job-geocoder/app/models"
)

// ScrapeParams tham số tìm kiếm gửi tới job provider
type ScrapeParams struct {
	SearchTerm    string
	Location      string
	ResultsWanted int
	HoursOld      int
}

// JobSpyClient client gọi endpoint /scrape của job provider
type JobSpyClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewJobSpyClient tạo client, baseURL rỗng trả về ErrNotConfigured
func NewJobSpyClient(baseURL string, timeout time.Duration) (*JobSpyClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNotConfigured
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &JobSpyClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Scrape lấy danh sách job thô từ provider
func (c *JobSpyClient) Scrape(ctx context.Context, p ScrapeParams) ([]models.RawJobRecord, error) {
	u, err := url.Parse(c.baseURL + "/scrape")
	if err != nil {
		return nil, fmt.Errorf("jobspy: invalid base URL: %w", err)
	}
	params := url.Values{}
	params.Set("search_term", p.SearchTerm)
	if p.Location != "" {
		params.Set("location", p.Location)
	}
	params.Set("results_wanted", strconv.Itoa(p.ResultsWanted))
	params.Set("hours_old", strconv.Itoa(p.HoursOld))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jobspy: request: %w", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, newStatusError("jobspy", resp)
	}

	var payload struct {
		Jobs []models.RawJobRecord `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("jobspy: decode response: %w", err)
	}
	return payload.Jobs, nil
}
