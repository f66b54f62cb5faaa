package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobSpy_Scrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scrape", r.URL.Path)
		assert.Equal(t, "golang developer", r.URL.Query().Get("search_term"))
		assert.Equal(t, "Austin, TX", r.URL.Query().Get("location"))
		assert.Equal(t, "30", r.URL.Query().Get("results_wanted"))
		assert.Equal(t, "72", r.URL.Query().Get("hours_old"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"jobs":[{"SITE":"indeed","JOB_URL":"u1","TITLE":"Dev"},{"site":"linkedin"}]}`))
	}))
	defer srv.Close()

	client, err := NewJobSpyClient(srv.URL+"/", 0)
	require.NoError(t, err)

	jobs, err := client.Scrape(context.Background(), ScrapeParams{
		SearchTerm:    "golang developer",
		Location:      "Austin, TX",
		ResultsWanted: 30,
		HoursOld:      72,
	})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	v, ok := jobs[0].Field("site")
	assert.True(t, ok)
	assert.Equal(t, "indeed", v)
}

func TestJobSpy_Scrape_OmitsEmptyLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("location"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewJobSpyClient(srv.URL, 0)
	require.NoError(t, err)

	jobs, err := client.Scrape(context.Background(), ScrapeParams{SearchTerm: "nurse", ResultsWanted: 5, HoursOld: 24})
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestJobSpy_Scrape_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited by board", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewJobSpyClient(srv.URL, 0)
	require.NoError(t, err)

	_, err = client.Scrape(context.Background(), ScrapeParams{SearchTerm: "nurse"})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusTooManyRequests))
}

func TestNewJobSpyClient_NotConfigured(t *testing.T) {
	_, err := NewJobSpyClient("", 0)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
