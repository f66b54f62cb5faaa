package normalizer

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed data/sites.yaml
var sitesYAML []byte

// FuzzyConfig ngưỡng so khớp gần đúng cho tên site
type FuzzyConfig struct {
	MinLength      int     `yaml:"min_length"`
	JWThreshold    float64 `yaml:"jw_threshold"`
	LevMaxDistance int     `yaml:"lev_max_distance"`
}

// SiteRules cấu hình alias site được load từ YAML
type SiteRules struct {
	Sites map[string][]string `yaml:"sites"`
	Fuzzy FuzzyConfig         `yaml:"fuzzy"`
}

// LoadSiteRules load cấu hình site từ embedded YAML
func LoadSiteRules() (*SiteRules, error) {
	rules := &SiteRules{}
	if err := yaml.Unmarshal(sitesYAML, rules); err != nil {
		return nil, fmt.Errorf("lỗi parse sites.yaml: %w", err)
	}
	if len(rules.Sites) == 0 {
		return nil, fmt.Errorf("sites.yaml không có site nào")
	}
	return rules, nil
}

// CanonicalNames danh sách tên site chuẩn, đã sắp xếp
func (r *SiteRules) CanonicalNames() []string {
	names := make([]string, 0, len(r.Sites))
	for name := range r.Sites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
