package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/job-geocoder/app/models"
	"github.com/job-geocoder/internal/external"
	"github.com/job-geocoder/internal/normalizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func strPtr(s string) *string { return &s }

// memoryCache ILocationCache trong bộ nhớ, đếm số lần gọi
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]models.Coordinates
	lookups int
	stores  int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]models.Coordinates)}
}

func (m *memoryCache) Lookup(_ context.Context, q models.LocationQuery) (*models.Coordinates, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	c, ok := m.entries[q.Fingerprint()]
	if !ok {
		return nil, false
	}
	return &c, true
}

func (m *memoryCache) Store(_ context.Context, q models.LocationQuery, c models.Coordinates) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stores++
	m.entries[q.Fingerprint()] = c
}

func (m *memoryCache) GetStats(context.Context) (*CacheStats, error) {
	return &CacheStats{TotalItems: int64(len(m.entries))}, nil
}

// stubGeocoder trả tọa độ cố định, đếm số lần gọi theo query
type stubGeocoder struct {
	mu     sync.Mutex
	calls  map[string]int
	coords map[string]models.Coordinates
	err    error
	delay  time.Duration
}

func newStubGeocoder() *stubGeocoder {
	return &stubGeocoder{calls: make(map[string]int), coords: make(map[string]models.Coordinates)}
}

func (g *stubGeocoder) Geocode(ctx context.Context, q models.LocationQuery) (*models.Coordinates, error) {
	g.mu.Lock()
	g.calls[external.BuildQuery(q)]++
	g.mu.Unlock()

	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	if g.err != nil {
		return nil, g.err
	}
	c, ok := g.coords[external.BuildQuery(q)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (g *stubGeocoder) totalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, n := range g.calls {
		total += n
	}
	return total
}

func threeCityRows(n int) []*models.NormalizedJobRow {
	cities := []struct{ city, state string }{
		{"Arlington", "VA"},
		{"Austin", "TX"},
		{"Boston", "MA"},
	}
	rows := make([]*models.NormalizedJobRow, 0, n)
	for i := 0; i < n; i++ {
		c := cities[i%len(cities)]
		city := c.city
		// biến thể hoa/thường và khoảng trắng vẫn cùng cache key
		if i%2 == 1 {
			city = " " + city + " "
		}
		rows = append(rows, &models.NormalizedJobRow{
			JobURL:  fmt.Sprintf("https://example.com/%d", i),
			City:    strPtr(city),
			State:   strPtr(c.state),
			Country: "USA",
		})
	}
	return rows
}

func TestGeocodeService_ResolveAll_DedupBoundsExternalCalls(t *testing.T) {
	geocoder := newStubGeocoder()
	geocoder.coords["Arlington, VA, USA"] = models.Coordinates{Lat: 38.8816, Lon: -77.0910}
	geocoder.coords["Austin, TX, USA"] = models.Coordinates{Lat: 30.2672, Lon: -97.7431}
	geocoder.coords["Boston, MA, USA"] = models.Coordinates{Lat: 42.3601, Lon: -71.0589}

	cache := newMemoryCache()
	svc := NewGeocodeService(cache, geocoder, 1, zap.NewNop())

	rows := threeCityRows(100)
	coords := svc.ResolveAll(context.Background(), QueriesFor(rows))

	assert.Len(t, coords, 3)
	assert.LessOrEqual(t, geocoder.totalCalls(), 3)
	assert.Equal(t, 3, cache.stores)
	assert.Equal(t, 100, AttachCoordinates(rows, coords))

	// Lần thứ hai toàn bộ là cache hit
	geocoder2 := newStubGeocoder()
	svc2 := NewGeocodeService(cache, geocoder2, 1, zap.NewNop())
	coords2 := svc2.ResolveAll(context.Background(), QueriesFor(threeCityRows(100)))

	assert.Len(t, coords2, 3)
	assert.Zero(t, geocoder2.totalCalls())
}

func TestGeocodeService_ResolveAll_CacheHitShortCircuits(t *testing.T) {
	q := models.NewLocationQuery(strPtr("Denver"), strPtr("CO"), "USA")
	cache := newMemoryCache()
	cache.entries[q.Fingerprint()] = models.Coordinates{Lat: 39.7392, Lon: -104.9903}

	geocoder := newStubGeocoder()
	svc := NewGeocodeService(cache, geocoder, 1, zap.NewNop())

	coords := svc.ResolveAll(context.Background(), []models.LocationQuery{q})

	require.Contains(t, coords, "denver|co|usa")
	assert.Equal(t, 39.7392, coords["denver|co|usa"].Lat)
	assert.Zero(t, geocoder.totalCalls())
	assert.Zero(t, cache.stores)
}

func TestGeocodeService_ResolveAll_SkipsUnresolvable(t *testing.T) {
	geocoder := newStubGeocoder()
	cache := newMemoryCache()
	svc := NewGeocodeService(cache, geocoder, 1, zap.NewNop())

	coords := svc.ResolveAll(context.Background(), []models.LocationQuery{
		models.NewLocationQuery(nil, nil, "USA"),
		models.NewLocationQuery(strPtr(""), nil, "Canada"),
	})

	assert.Empty(t, coords)
	assert.Zero(t, cache.lookups)
	assert.Zero(t, geocoder.totalCalls())
}

func TestGeocodeService_ResolveAll_ExternalFailureLeavesKeyAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Tulsa, OK, USA" {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[{"lat":"35.4676","lon":"-97.5164"}]`))
	}))
	defer srv.Close()

	client, err := external.NewNominatimClient(srv.URL, external.WithRateLimit(0))
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	cache := newMemoryCache()
	svc := NewGeocodeService(cache, client, 1, zap.New(core))

	coords := svc.ResolveAll(context.Background(), []models.LocationQuery{
		models.NewLocationQuery(strPtr("Tulsa"), strPtr("OK"), "USA"),
		models.NewLocationQuery(strPtr("Oklahoma City"), strPtr("OK"), "USA"),
	})

	assert.NotContains(t, coords, "tulsa|ok|usa")
	assert.Contains(t, coords, "oklahoma city|ok|usa")
	assert.Equal(t, 1, cache.stores)
	assert.Equal(t, 1, logs.FilterMessage("Geocode thất bại").Len())
}

func TestGeocodeService_ResolveAll_NoResultNotStored(t *testing.T) {
	geocoder := newStubGeocoder()
	cache := newMemoryCache()
	svc := NewGeocodeService(cache, geocoder, 1, zap.NewNop())

	coords := svc.ResolveAll(context.Background(), []models.LocationQuery{
		models.NewLocationQuery(strPtr("Atlantis"), nil, "USA"),
	})

	assert.Empty(t, coords)
	assert.Equal(t, 1, geocoder.totalCalls())
	assert.Zero(t, cache.stores)
}

func TestGeocodeService_ResolveAll_EndToEndArlington(t *testing.T) {
	raw := []models.RawJobRecord{
		{"site": "indeed", "job_url": "https://indeed.com/1", "title": "Analyst", "city": "Arlington, VA", "state": nil, "country": nil},
		{"SITE": "linkedin", "JOB_URL": "https://linkedin.com/2", "TITLE": "Engineer", "CITY": "Arlington, VA"},
	}
	rows := NormalizeRecords(raw, zap.NewNop())
	require.Len(t, rows, 2)

	geocoder := newStubGeocoder()
	geocoder.coords["Arlington, VA, USA"] = models.Coordinates{Lat: 38.8816, Lon: -77.0910}
	cache := newMemoryCache()
	svc := NewGeocodeService(cache, geocoder, 1, zap.NewNop())

	coords := svc.ResolveAll(context.Background(), QueriesFor(rows))
	require.Len(t, coords, 1)
	assert.Equal(t, 2, AttachCoordinates(rows, coords))

	assert.Equal(t, 1, geocoder.totalCalls())
	assert.Equal(t, 1, cache.stores)
	for _, row := range rows {
		require.NotNil(t, row.Latitude)
		require.NotNil(t, row.Longitude)
		assert.Equal(t, 38.8816, *row.Latitude)
		assert.Equal(t, -77.0910, *row.Longitude)
	}
}

func TestGeocodeService_ResolveAll_ParallelKeys(t *testing.T) {
	geocoder := newStubGeocoder()
	geocoder.delay = 10 * time.Millisecond
	var queries []models.LocationQuery
	for i := 0; i < 12; i++ {
		city := fmt.Sprintf("Town%d", i)
		geocoder.coords[city+", KS, USA"] = models.Coordinates{Lat: float64(i), Lon: float64(-i)}
		// mỗi key xuất hiện hai lần trong lô
		queries = append(queries,
			models.NewLocationQuery(strPtr(city), strPtr("KS"), "USA"),
			models.NewLocationQuery(strPtr(city), strPtr("ks"), "usa"))
	}

	cache := newMemoryCache()
	svc := NewGeocodeService(cache, geocoder, 4, zap.NewNop())
	coords := svc.ResolveAll(context.Background(), queries)

	assert.Len(t, coords, 12)
	for q, n := range geocoder.calls {
		assert.Equal(t, 1, n, q)
	}
	assert.Equal(t, 12, cache.stores)
}

func TestGeocodeService_Resolve_ConcurrentRequestsShareFlight(t *testing.T) {
	var calls int32
	geocoder := geocoderFunc(func(ctx context.Context, q models.LocationQuery) (*models.Coordinates, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		return &models.Coordinates{Lat: 1, Lon: 2}, nil
	})
	cache := newMemoryCache()
	svc := NewGeocodeService(cache, geocoder, 1, zap.NewNop())
	q := models.NewLocationQuery(strPtr("Reno"), strPtr("NV"), "USA")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := svc.Resolve(context.Background(), q)
			assert.NotNil(t, c)
		}()
	}
	wg.Wait()

	// các request đồng thời cùng key dùng chung một lượt gọi; request đến muộn gặp cache hit
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, cache.stores)
}

func TestGeocodeService_Resolve_CancelledCallerDoesNotAffectOthers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	geocoder := geocoderFunc(func(ctx context.Context, q models.LocationQuery) (*models.Coordinates, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &models.Coordinates{Lat: 39.5296, Lon: -119.8138}, nil
	})
	cache := newMemoryCache()
	svc := NewGeocodeService(cache, geocoder, 1, zap.NewNop())
	q := models.NewLocationQuery(strPtr("Reno"), strPtr("NV"), "USA")

	ctxA, cancelA := context.WithCancel(context.Background())
	resultA := make(chan *models.Coordinates, 1)
	go func() { resultA <- svc.Resolve(ctxA, q) }()
	<-started

	resultB := make(chan *models.Coordinates, 1)
	go func() { resultB <- svc.Resolve(context.Background(), q) }()
	time.Sleep(20 * time.Millisecond)

	// request A bị hủy thì trả về ngay, không chờ lượt resolve chung
	cancelA()
	select {
	case c := <-resultA:
		assert.Nil(t, c)
	case <-time.After(time.Second):
		t.Fatal("request đã hủy vẫn bị chặn")
	}

	close(release)
	select {
	case c := <-resultB:
		require.NotNil(t, c)
		assert.Equal(t, 39.5296, c.Lat)
	case <-time.After(time.Second):
		t.Fatal("request B không nhận được kết quả")
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Eventually(t, func() bool {
		_, found := cache.Lookup(context.Background(), q)
		return found
	}, time.Second, 10*time.Millisecond)
}

func TestGeocodeService_ResolveAll_CancelledContextReturnsEmpty(t *testing.T) {
	geocoder := newStubGeocoder()
	geocoder.coords["Austin, TX, USA"] = models.Coordinates{Lat: 30.2672, Lon: -97.7431}
	geocoder.delay = 50 * time.Millisecond
	svc := NewGeocodeService(newMemoryCache(), geocoder, 1, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	coords := svc.ResolveAll(ctx, []models.LocationQuery{models.NewLocationQuery(strPtr("Austin"), strPtr("TX"), "USA")})
	assert.Empty(t, coords)
}

func TestGeocodeService_NilGeocoderServesCacheOnly(t *testing.T) {
	hit := models.NewLocationQuery(strPtr("Miami"), strPtr("FL"), "USA")
	miss := models.NewLocationQuery(strPtr("Tampa"), strPtr("FL"), "USA")
	cache := newMemoryCache()
	cache.entries[hit.Fingerprint()] = models.Coordinates{Lat: 25.76, Lon: -80.19}

	core, logs := observer.New(zap.WarnLevel)
	svc := NewGeocodeService(cache, nil, 1, zap.New(core))

	coords := svc.ResolveAll(context.Background(), []models.LocationQuery{hit, miss})
	assert.Len(t, coords, 1)
	assert.Contains(t, coords, normalizer.KeyFor(hit))
	assert.Equal(t, 1, logs.FilterMessage("Geocoder chưa cấu hình, bỏ qua geocode").Len())
}

func TestGeocodeService_ResolveAll_ErrorDoesNotAbortBatch(t *testing.T) {
	geocoder := newStubGeocoder()
	geocoder.err = errors.New("connection reset")
	svc := NewGeocodeService(newMemoryCache(), geocoder, 2, zap.NewNop())

	coords := svc.ResolveAll(context.Background(), QueriesFor(threeCityRows(9)))
	assert.Empty(t, coords)
	assert.Equal(t, 3, geocoder.totalCalls())
}

type geocoderFunc func(ctx context.Context, q models.LocationQuery) (*models.Coordinates, error)

func (f geocoderFunc) Geocode(ctx context.Context, q models.LocationQuery) (*models.Coordinates, error) {
	return f(ctx, q)
}
