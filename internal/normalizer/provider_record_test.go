package normalizer

import (
	"encoding/json"
	"testing"

	"github.com/job-geocoder/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseRecord() models.RawJobRecord {
	return models.RawJobRecord{
		"site":    "indeed",
		"job_url": "https://indeed.com/viewjob?jk=1",
		"title":   "Backend Engineer",
	}
}

func TestNormalizeProviderRecord_RejectsMissingIdentity(t *testing.T) {
	testCases := []struct {
		name   string
		remove []string
		set    map[string]any
	}{
		{name: "Missing job_url", remove: []string{"job_url"}},
		{name: "Null job_url both casings", remove: []string{"job_url"}, set: map[string]any{"job_url": nil, "JOB_URL": nil}},
		{name: "Empty job_url", set: map[string]any{"job_url": ""}},
		{name: "Missing title", remove: []string{"title"}},
		{name: "Missing site", remove: []string{"site"}},
		{name: "Blank site", set: map[string]any{"site": "   "}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := baseRecord()
			raw["company"] = "Acme"
			raw["city"] = "Arlington"
			raw["state"] = "VA"
			for _, k := range tc.remove {
				delete(raw, k)
			}
			for k, v := range tc.set {
				raw[k] = v
			}

			row, ok := NormalizeProviderRecord(raw)
			assert.False(t, ok)
			assert.Nil(t, row)
		})
	}
}

func TestNormalizeProviderRecord_UpperCaseFallback(t *testing.T) {
	raw := models.RawJobRecord{
		"SITE":     "LinkedIn",
		"JOB_URL":  "https://linkedin.com/jobs/1",
		"TITLE":    "Data Analyst",
		"COMPANY":  "Acme",
		"title":    nil,
		"CITY":     "Austin",
		"state":    "TX",
		"STATE":    "CA",
		"JOB_TYPE": "FullTime",
	}

	row, ok := NormalizeProviderRecord(raw)
	require.True(t, ok)
	assert.Equal(t, "linkedin", row.SiteName)
	assert.Equal(t, "https://linkedin.com/jobs/1", row.JobURL)
	assert.Equal(t, "Data Analyst", row.Title)
	assert.Equal(t, "Acme", *row.Company)
	assert.Equal(t, "Austin", *row.City)
	assert.Equal(t, "TX", *row.State, "lower-case key wins when present")
	assert.Equal(t, models.JobTypeFullTime, *row.JobType)
}

func TestNormalizeProviderRecord_Location(t *testing.T) {
	testCases := []struct {
		name        string
		fields      map[string]any
		wantCity    *string
		wantState   *string
		wantCountry string
	}{
		{
			name:        "Combined city state country",
			fields:      map[string]any{"city": "Tuscaloosa, AL, US"},
			wantCity:    strPtr("Tuscaloosa"),
			wantState:   strPtr("AL"),
			wantCountry: "US",
		},
		{
			name:        "Combined city state",
			fields:      map[string]any{"city": "Arlington, VA"},
			wantCity:    strPtr("Arlington"),
			wantState:   strPtr("VA"),
			wantCountry: "USA",
		},
		{
			// Token đơn không có dấu phẩy giữ nguyên là city
			name:        "Bare state token without comma stays city",
			fields:      map[string]any{"city": "VA"},
			wantCity:    strPtr("VA"),
			wantState:   nil,
			wantCountry: "USA",
		},
		{
			name:        "State level pair",
			fields:      map[string]any{"city": "AL, US"},
			wantCity:    nil,
			wantState:   strPtr("AL"),
			wantCountry: "USA",
		},
		{
			name:        "Raw location used when no city or state",
			fields:      map[string]any{"location": "Arlington, VA"},
			wantCity:    strPtr("Arlington"),
			wantState:   strPtr("VA"),
			wantCountry: "USA",
		},
		{
			name:        "Raw location ignored when state present",
			fields:      map[string]any{"location": "Somewhere, ZZ", "STATE": "VA"},
			wantCity:    nil,
			wantState:   strPtr("VA"),
			wantCountry: "USA",
		},
		{
			name:        "Provided country beats split country",
			fields:      map[string]any{"city": "Toronto, ON, CA", "country": "Canada"},
			wantCity:    strPtr("Toronto"),
			wantState:   strPtr("ON"),
			wantCountry: "Canada",
		},
		{
			name:        "Long second part not treated as state",
			fields:      map[string]any{"city": "Springfield, Illinois"},
			wantCity:    strPtr("Springfield"),
			wantState:   nil,
			wantCountry: "USA",
		},
		{
			name:        "Existing state kept when splitting city",
			fields:      map[string]any{"city": "Reston, VA", "state": "Virginia"},
			wantCity:    strPtr("Reston"),
			wantState:   strPtr("Virginia"),
			wantCountry: "USA",
		},
		{
			name:        "Empty country defaults",
			fields:      map[string]any{"city": "Denver", "state": "CO", "country": ""},
			wantCity:    strPtr("Denver"),
			wantState:   strPtr("CO"),
			wantCountry: "USA",
		},
		{
			name:        "Nothing to locate",
			fields:      map[string]any{},
			wantCity:    nil,
			wantState:   nil,
			wantCountry: "USA",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := baseRecord()
			for k, v := range tc.fields {
				raw[k] = v
			}

			row, ok := NormalizeProviderRecord(raw)
			require.True(t, ok)
			assert.Equal(t, tc.wantCity, row.City)
			assert.Equal(t, tc.wantState, row.State)
			assert.Equal(t, tc.wantCountry, row.Country)
			assert.Nil(t, row.Latitude)
			assert.Nil(t, row.Longitude)
		})
	}
}

func TestNormalizeProviderRecord_Enumerations(t *testing.T) {
	jt := func(v models.JobType) *models.JobType { return &v }
	iv := func(v models.SalaryInterval) *models.SalaryInterval { return &v }

	testCases := []struct {
		name         string
		jobType      any
		interval     any
		wantJobType  *models.JobType
		wantInterval *models.SalaryInterval
	}{
		{name: "Known values", jobType: "PARTTIME", interval: "Hourly", wantJobType: jt(models.JobTypePartTime), wantInterval: iv(models.IntervalHourly)},
		{name: "Unknown values", jobType: "temporary", interval: "biweekly", wantJobType: jt(models.JobTypeOther), wantInterval: iv(models.IntervalOther)},
		{name: "Null values", jobType: nil, interval: nil},
		{name: "Empty values", jobType: "", interval: ""},
		{name: "Internship yearly", jobType: "internship", interval: "yearly", wantJobType: jt(models.JobTypeInternship), wantInterval: iv(models.IntervalYearly)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw := baseRecord()
			raw["job_type"] = tc.jobType
			raw["interval"] = tc.interval

			row, ok := NormalizeProviderRecord(raw)
			require.True(t, ok)
			assert.Equal(t, tc.wantJobType, row.JobType)
			assert.Equal(t, tc.wantInterval, row.Interval)
		})
	}
}

func TestNormalizeProviderRecord_ScalarFields(t *testing.T) {
	var raw models.RawJobRecord
	payload := `{
		"SITE": "ZipRecruiter",
		"job_url": "https://ziprecruiter.com/j/9",
		"title": "Nurse",
		"is_remote": true,
		"MIN_AMOUNT": 55000,
		"max_amount": "72000.5",
		"date_posted": "2024-03-05",
		"DESCRIPTION": "Night shift"
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))

	row, ok := NormalizeProviderRecord(raw)
	require.True(t, ok)
	assert.Equal(t, "zip_recruiter", row.SiteName)
	require.NotNil(t, row.IsRemote)
	assert.True(t, *row.IsRemote)
	assert.Equal(t, 55000.0, *row.MinAmount)
	assert.Equal(t, 72000.5, *row.MaxAmount)
	assert.Equal(t, "2024-03-05T00:00:00.000Z", *row.DatePosted)
	assert.Equal(t, "Night shift", *row.Description)
	assert.Nil(t, row.Currency)
	assert.Nil(t, row.SalarySource)

	for _, v := range []any{"NaN", "Inf", "-Infinity", "nan"} {
		raw := baseRecord()
		raw["min_amount"] = v
		raw["max_amount"] = v
		row, ok := NormalizeProviderRecord(raw)
		require.True(t, ok, "%v", v)
		assert.Nil(t, row.MinAmount, "%v", v)
		assert.Nil(t, row.MaxAmount, "%v", v)
	}
}

func TestNormalizeProviderRecord_InvalidDateBecomesNull(t *testing.T) {
	raw := baseRecord()
	raw["date_posted"] = "last tuesday"

	row, ok := NormalizeProviderRecord(raw)
	require.True(t, ok)
	assert.Nil(t, row.DatePosted)
}

func TestNormalizeProviderRecord_UnknownSiteLowercased(t *testing.T) {
	raw := baseRecord()
	raw["site"] = "Monster"

	row, ok := NormalizeProviderRecord(raw)
	require.True(t, ok)
	assert.Equal(t, "monster", row.SiteName)
}

func TestNormalizeProviderRecord_KeepsSiteThatFoldsToEmpty(t *testing.T) {
	raw := baseRecord()
	raw["site"] = "🚀"

	row, ok := NormalizeProviderRecord(raw)
	require.True(t, ok)
	assert.Equal(t, "🚀", row.SiteName)
}
