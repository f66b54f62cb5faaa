package normalizer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/job-geocoder/app/models"
)

// shortTokenMaxLen token có độ dài <= giá trị này được coi là mã bang/quốc gia
const shortTokenMaxLen = 3

var datePostedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeProviderRecord chuẩn hóa một job thô từ provider.
// Trả về false khi thiếu một trong các trường định danh site, job_url, title.
func NormalizeProviderRecord(raw models.RawJobRecord) (*models.NormalizedJobRow, bool) {
	return normalizeRecord(raw, DefaultSiteCanonicalizer())
}

func normalizeRecord(raw models.RawJobRecord, sites *SiteCanonicalizer) (*models.NormalizedJobRow, bool) {
	site := ""
	if s := stringField(raw, "site"); s != nil {
		site = sites.Canonicalize(*s)
	}
	jobURL := stringField(raw, "job_url")
	title := stringField(raw, "title")
	if site == "" || jobURL == nil || *jobURL == "" || title == nil || *title == "" {
		return nil, false
	}

	city, state, country := extractLocation(
		trimmedField(raw, "city"),
		trimmedField(raw, "state"),
		trimmedField(raw, "country"),
		trimmedField(raw, "location"),
	)

	row := &models.NormalizedJobRow{
		SiteName:    site,
		JobURL:      *jobURL,
		Title:       *title,
		Company:     stringField(raw, "company"),
		Description: stringField(raw, "description"),
		JobType:     normalizeJobType(stringField(raw, "job_type")),
		IsRemote:    boolField(raw, "is_remote"),
		City:        city,
		State:       state,
		Country:     country,
		Interval:    normalizeInterval(stringField(raw, "interval")),
		MinAmount:   floatField(raw, "min_amount"),
		MaxAmount:   floatField(raw, "max_amount"),
		DatePosted:  normalizeDatePosted(stringField(raw, "date_posted")),
	}
	return row, true
}

// extractLocation tách city/state/country từ các trường có cấu trúc hoặc chuỗi location gộp.
// Quy tắc độ dài <= 3 là heuristic cho mã bang/quốc gia, không tra bảng chuẩn.
func extractLocation(city, state, country, locationText *string) (*string, *string, string) {
	if city == nil && state == nil && locationText != nil {
		city = locationText
	}

	if city != nil {
		parts := splitLocation(*city)
		if len(parts) >= 2 {
			rawCity, rawState := parts[0], parts[1]
			var rawCountry *string
			if len(parts) > 2 {
				rawCountry = &parts[2]
			}

			if state == nil && runeLen(rawCity) <= shortTokenMaxLen && rawCountry == nil {
				// "AL, US": token đầu là bang bị đặt nhầm vào city
				state = &rawCity
				city = nil
			} else {
				city = &rawCity
				if state == nil && runeLen(rawState) <= shortTokenMaxLen {
					state = &rawState
				}
			}

			if country == nil && rawCountry != nil {
				country = rawCountry
			}
		}
	}

	if country == nil {
		return city, state, models.DefaultCountry
	}
	return city, state, *country
}

func splitLocation(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

func normalizeJobType(raw *string) *models.JobType {
	if raw == nil || *raw == "" {
		return nil
	}
	jt := models.JobTypeOther
	switch v := models.JobType(strings.ToLower(*raw)); v {
	case models.JobTypeFullTime, models.JobTypePartTime, models.JobTypeInternship, models.JobTypeContract:
		jt = v
	}
	return &jt
}

func normalizeInterval(raw *string) *models.SalaryInterval {
	if raw == nil || *raw == "" {
		return nil
	}
	iv := models.IntervalOther
	switch v := models.SalaryInterval(strings.ToLower(*raw)); v {
	case models.IntervalYearly, models.IntervalMonthly, models.IntervalWeekly, models.IntervalDaily, models.IntervalHourly:
		iv = v
	}
	return &iv
}

// normalizeDatePosted trả về thời gian dạng ISO-8601 UTC, nil nếu không parse được
func normalizeDatePosted(raw *string) *string {
	if raw == nil || *raw == "" {
		return nil
	}
	for _, layout := range datePostedLayouts {
		if t, err := time.Parse(layout, *raw); err == nil {
			s := t.UTC().Format("2006-01-02T15:04:05.000Z")
			return &s
		}
	}
	return nil
}

// stringField lấy trường dạng chuỗi, giá trị scalar khác được chuyển sang chuỗi
func stringField(raw models.RawJobRecord, name string) *string {
	v, ok := raw.Field(name)
	if !ok {
		return nil
	}
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool, int, int64:
		s = fmt.Sprint(t)
	default:
		return nil
	}
	return &s
}

// trimmedField như stringField nhưng trim và coi chuỗi rỗng là không có
func trimmedField(raw models.RawJobRecord, name string) *string {
	s := stringField(raw, name)
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func boolField(raw models.RawJobRecord, name string) *bool {
	v, ok := raw.Field(name)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case bool:
		return &t
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return &b
		}
	}
	return nil
}

// floatField số thực hữu hạn; NaN và Inf coi như không có
func floatField(raw models.RawJobRecord, name string) *float64 {
	v, ok := raw.Field(name)
	if !ok {
		return nil
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
