package normalizer

import (
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/mozillazg/go-unidecode"
	"github.com/xrash/smetrics"
)

// SiteCanonicalizer map tên site từ provider về tên job board chuẩn
type SiteCanonicalizer struct {
	rules   *SiteRules
	aliases map[string]string // alias đã fold -> tên chuẩn
	names   []string
}

var (
	defaultSitesOnce sync.Once
	defaultSites     *SiteCanonicalizer
)

// DefaultSiteCanonicalizer canonicalizer dùng bảng alias embedded
func DefaultSiteCanonicalizer() *SiteCanonicalizer {
	defaultSitesOnce.Do(func() {
		rules, err := LoadSiteRules()
		if err != nil {
			// sites.yaml được embed lúc build, lỗi ở đây là lỗi lập trình
			panic(err)
		}
		defaultSites = NewSiteCanonicalizer(rules)
	})
	return defaultSites
}

// NewSiteCanonicalizer tạo canonicalizer từ rules
func NewSiteCanonicalizer(rules *SiteRules) *SiteCanonicalizer {
	sc := &SiteCanonicalizer{
		rules:   rules,
		aliases: make(map[string]string),
		names:   rules.CanonicalNames(),
	}
	for _, name := range sc.names {
		sc.aliases[foldSite(name)] = name
		for _, alias := range rules.Sites[name] {
			sc.aliases[foldSite(alias)] = name
		}
	}
	return sc
}

// Canonicalize trả về tên site chuẩn; site không nhận ra được giữ nguyên ở dạng lowercase
func (sc *SiteCanonicalizer) Canonicalize(site string) string {
	folded := foldSite(site)
	if folded == "" {
		// unidecode có thể xóa hết ký tự (emoji, dấu phân cách)
		return strings.ToLower(strings.TrimSpace(site))
	}
	if name, ok := sc.aliases[folded]; ok {
		return name
	}
	if name, ok := sc.fuzzyMatch(folded); ok {
		return name
	}
	return strings.ToLower(strings.TrimSpace(site))
}

func (sc *SiteCanonicalizer) fuzzyMatch(query string) (string, bool) {
	cfg := sc.rules.Fuzzy
	if utf8.RuneCountInString(query) < cfg.MinLength {
		return "", false
	}

	best, bestScore := "", 0.0
	for alias, name := range sc.aliases {
		jw := smetrics.JaroWinkler(query, alias, 0.7, 4)
		dist := levenshtein.ComputeDistance(query, alias)
		if jw < cfg.JWThreshold && dist > cfg.LevMaxDistance {
			continue
		}
		maxLen := math.Max(float64(utf8.RuneCountInString(query)), float64(utf8.RuneCountInString(alias)))
		score := math.Max(jw, 1.0-float64(dist)/maxLen)
		if score > bestScore || (score == bestScore && name < best) {
			best, bestScore = name, score
		}
	}
	return best, best != ""
}

// foldSite bỏ dấu, lowercase, gom các dấu phân cách về một khoảng trắng
func foldSite(s string) string {
	s = strings.ToLower(unidecode.Unidecode(strings.TrimSpace(s)))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
