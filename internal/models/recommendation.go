package models

import "fmt"

// Level is how strongly a recommendation should be acted on
type Level int

const (
	LevelCritical Level = iota
	LevelHigh
	LevelMedium
	LevelLow
)

// Levels lists every level in priority order
var Levels = []Level{LevelCritical, LevelHigh, LevelMedium, LevelLow}

// Priority is the sort rank of the level, lower first
func (l Level) Priority() int {
	return int(l)
}

func (l Level) String() string {
	switch l {
	case LevelCritical:
		return "critical"
	case LevelHigh:
		return "high"
	case LevelMedium:
		return "medium"
	default:
		return "low"
	}
}

// Glyph is the single-character marker used in one-line renderings
func (l Level) Glyph() string {
	switch l {
	case LevelCritical:
		return "🔴"
	case LevelHigh:
		return "🟠"
	case LevelMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

// MarshalText encodes the level as its lower-case name
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Category groups recommendations by the part of the pipeline they configure
type Category int

const (
	CategoryAPI Category = iota
	CategorySecurity
	CategoryProfile
	CategoryConverter
	CategoryPerformance
	CategoryOutput
)

// Categories lists every category in priority order
var Categories = []Category{
	CategoryAPI, CategorySecurity, CategoryProfile,
	CategoryConverter, CategoryPerformance, CategoryOutput,
}

// Priority is the secondary sort rank of the category, lower first
func (c Category) Priority() int {
	return int(c)
}

func (c Category) String() string {
	switch c {
	case CategoryAPI:
		return "api"
	case CategorySecurity:
		return "security"
	case CategoryProfile:
		return "profile"
	case CategoryConverter:
		return "converter"
	case CategoryPerformance:
		return "performance"
	default:
		return "output"
	}
}

// MarshalText encodes the category as its lower-case name
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Recommendation is a single conditioned suggestion for configuring the conversion pipeline
type Recommendation struct {
	Category     Category       `json:"category"`
	Level        Level          `json:"level"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Rationale    string         `json:"rationale"`
	Action       string         `json:"action"`
	Settings     map[string]any `json:"settings"`
	Conditions   []string       `json:"conditions"`
	CostEstimate *float64       `json:"cost_estimate,omitempty"`
	TimeImpact   string         `json:"time_impact,omitempty"`
}

func (r Recommendation) String() string {
	return fmt.Sprintf("%s %s: %s", r.Level.Glyph(), r.Title, r.Description)
}

// Summary aggregates a recommendation list
type Summary struct {
	Total          int
	ByLevel        map[Level]int
	ByCategory     map[Category]int
	TotalCost      float64
	CriticalTitles []string
}

// ToMap flattens the summary into plain keys for reports
func (s Summary) ToMap() map[string]any {
	byLevel := make(map[string]int, len(s.ByLevel))
	for l, n := range s.ByLevel {
		byLevel[l.String()] = n
	}
	byCategory := make(map[string]int, len(s.ByCategory))
	for c, n := range s.ByCategory {
		byCategory[c.String()] = n
	}
	critical := s.CriticalTitles
	if critical == nil {
		critical = []string{}
	}
	return map[string]any{
		"total_recommendations": s.Total,
		"by_level":              byLevel,
		"by_category":           byCategory,
		"estimated_total_cost":  s.TotalCost,
		"critical_actions":      critical,
	}
}
