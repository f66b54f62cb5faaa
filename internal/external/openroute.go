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

const DefaultOpenRouteURL = "https://api.openrouteservice.org"

// Route kết quả chỉ đường; Distance nil khi provider không trả summary
type Route struct {
	Distance *float64
	Duration *float64
	Geometry any // mảng tọa độ LineString, nil nếu không có
}

// OpenRouteClient client gọi API directions driving-car
type OpenRouteClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOpenRouteClient tạo client; apiKey rỗng trả về ErrNotConfigured
func NewOpenRouteClient(baseURL, apiKey string, timeout time.Duration) (*OpenRouteClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultOpenRouteURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &OpenRouteClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Directions lấy tuyến đường lái xe giữa hai điểm
func (c *OpenRouteClient) Directions(ctx context.Context, from, to models.Coordinates) (*Route, error) {
	u, err := url.Parse(c.baseURL + "/v2/directions/driving-car")
	if err != nil {
		return nil, fmt.Errorf("openroute: invalid base URL: %w", err)
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("start", lonLat(from))
	params.Set("end", lonLat(to))
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/geo+json;charset=UTF-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openroute: request: %w", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, newStatusError("openroute", resp)
	}

	var payload struct {
		Features []struct {
			Properties struct {
				Summary *struct {
					Distance *float64 `json:"distance"`
					Duration *float64 `json:"duration"`
				} `json:"summary"`
			} `json:"properties"`
			Geometry *struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("openroute: decode response: %w", err)
	}

	route := &Route{}
	if len(payload.Features) == 0 {
		return route, nil
	}
	feature := payload.Features[0]
	if s := feature.Properties.Summary; s != nil {
		route.Distance = s.Distance
		route.Duration = s.Duration
	}
	if g := feature.Geometry; g != nil && g.Type == "LineString" {
		route.Geometry = g.Coordinates
	}
	return route, nil
}

func lonLat(c models.Coordinates) string {
	return strconv.FormatFloat(c.Lon, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}
