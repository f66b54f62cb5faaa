package normalizer

import (
	"strings"

	"github.com/job-geocoder/app/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KeySeparator ngăn cách các thành phần của cache key
const KeySeparator = "|"

// NormalizeKey sinh LocationCacheKey từ bộ (city, state, country).
// Mỗi trường được trim và lowercase, null thành chuỗi rỗng, country rỗng thành "usa".
func NormalizeKey(city, state, country *string) string {
	c := foldField(country)
	if c == "" {
		c = strings.ToLower(models.DefaultCountry)
	}
	return foldField(city) + KeySeparator + foldField(state) + KeySeparator + c
}

// KeyFor sinh cache key cho một LocationQuery
func KeyFor(q models.LocationQuery) string {
	country := q.Country
	return NormalizeKey(q.City, q.State, &country)
}

func foldField(s *string) string {
	if s == nil {
		return ""
	}
	// Caser không dùng chung giữa các goroutine được
	return cases.Lower(language.Und).String(strings.TrimSpace(*s))
}
