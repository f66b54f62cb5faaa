package external

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/job-geocoder/app/models"
	"golang.org/x/time/rate"
)

const (
	DefaultNominatimUserAgent = "MyJobMap/1.0 (contact: change-me@example.com)"
	DefaultGeocodeTimeout     = 10 * time.Second
)

// NominatimClient client gọi API search của Nominatim, mỗi lần lấy đúng một kết quả
type NominatimClient struct {
	baseURL    string
	email      string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NominatimOption tùy chọn cho NominatimClient
type NominatimOption func(*NominatimClient)

func WithEmail(email string) NominatimOption {
	return func(n *NominatimClient) {
		n.email = strings.TrimSpace(email)
	}
}

func WithUserAgent(userAgent string) NominatimOption {
	return func(n *NominatimClient) {
		if strings.TrimSpace(userAgent) != "" {
			n.userAgent = userAgent
		}
	}
}

func WithHTTPClient(client *http.Client) NominatimOption {
	return func(n *NominatimClient) {
		if client != nil {
			n.httpClient = client
		}
	}
}

func WithTimeout(timeout time.Duration) NominatimOption {
	return func(n *NominatimClient) {
		if timeout > 0 {
			n.httpClient = &http.Client{Timeout: timeout, Transport: n.httpClient.Transport}
		}
	}
}

// WithRateLimit giới hạn số request mỗi giây, <= 0 để tắt
func WithRateLimit(perSecond float64) NominatimOption {
	return func(n *NominatimClient) {
		if perSecond <= 0 {
			n.limiter = nil
			return
		}
		n.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewNominatimClient tạo client với base URL đầy đủ của endpoint search
func NewNominatimClient(baseURL string, opts ...NominatimOption) (*NominatimClient, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNotConfigured
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("nominatim: invalid base URL: %w", err)
	}

	n := &NominatimClient{
		baseURL:    baseURL,
		userAgent:  DefaultNominatimUserAgent,
		httpClient: &http.Client{Timeout: DefaultGeocodeTimeout},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// BuildQuery ghép city, state, country khác rỗng bằng ", "
func BuildQuery(q models.LocationQuery) string {
	parts := make([]string, 0, 3)
	for _, p := range []*string{q.City, q.State, &q.Country} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, *p)
		}
	}
	return strings.Join(parts, ", ")
}

// Geocode resolve một địa điểm. Trả về nil, nil khi không có gì để query hoặc không có kết quả.
func (n *NominatimClient) Geocode(ctx context.Context, q models.LocationQuery) (*models.Coordinates, error) {
	if !q.Resolvable() {
		return nil, nil
	}
	query := BuildQuery(q)

	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("nominatim: rate limit wait: %w", err)
		}
	}

	req, err := n.newRequest(ctx, query)
	if err != nil {
		return nil, err
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim: request %q: %w", query, err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, newStatusError("nominatim", resp)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("nominatim: decode response: %w", err)
	}
	if len(results) == 0 || results[0].Lat == "" || results[0].Lon == "" {
		return nil, nil
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(results[0].Lat), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(results[0].Lon), 64)
	if latErr != nil || lonErr != nil || !finite(lat) || !finite(lon) {
		return nil, fmt.Errorf("%w: lat=%q lon=%q", ErrInvalidCoordinates, results[0].Lat, results[0].Lon)
	}
	return &models.Coordinates{Lat: lat, Lon: lon}, nil
}

func (n *NominatimClient) newRequest(ctx context.Context, query string) (*http.Request, error) {
	u, err := url.Parse(n.baseURL)
	if err != nil {
		return nil, fmt.Errorf("nominatim: invalid base URL: %w", err)
	}
	params := u.Query()
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	if n.email != "" {
		params.Set("email", n.email)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", n.userAgent)
	return req, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
