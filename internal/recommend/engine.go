package recommend

import (
	"sort"

	"emlscout/internal/models"
)

const defaultChunkSize = 2000

// Preferences are optional user choices that switch on extra rules
type Preferences struct {
	// AIProcessing marks output destined for LLM consumption
	AIProcessing bool    `yaml:"ai_processing"`
	ChunkSize    int     `yaml:"chunk_size"`
	PDFMode      OCRMode `yaml:"pdf_mode"`
}

func (p Preferences) chunkSize() int {
	if p.ChunkSize > 0 {
		return p.ChunkSize
	}
	return defaultChunkSize
}

func (p Preferences) pdfMode() OCRMode {
	if _, ok := ocrMultipliers[p.PDFMode]; ok {
		return p.PDFMode
	}
	return OCRModeAll
}

type generator func(scan *models.ScanResult, prefs Preferences) []models.Recommendation

// Engine turns scan results into ordered recommendations. It is safe for
// concurrent use; the environment snapshot is never modified.
type Engine struct {
	env Environment
}

// NewEngine creates an engine bound to one environment snapshot
func NewEngine(env Environment) *Engine {
	return &Engine{env: env}
}

// Environment returns the snapshot the engine was built with
func (e *Engine) Environment() Environment {
	return e.env
}

// Generate runs every rule group against scan and returns the recommendations
// ordered by level, then category, then emission order.
func (e *Engine) Generate(scan *models.ScanResult, prefs *Preferences) []models.Recommendation {
	recs := make([]models.Recommendation, 0, 16)
	if scan == nil {
		return recs
	}

	var p Preferences
	if prefs != nil {
		p = *prefs
	}

	generators := []generator{
		e.profileRecommendations,
		e.pdfRecommendations,
		e.docxRecommendations,
		e.excelRecommendations,
		e.performanceRecommendations,
		e.securityRecommendations,
		e.apiRecommendations,
		e.outputRecommendations,
	}
	for _, gen := range generators {
		recs = append(recs, gen(scan, p)...)
	}

	sortRecommendations(recs)
	return recs
}

func sortRecommendations(recs []models.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Level.Priority() != b.Level.Priority() {
			return a.Level.Priority() < b.Level.Priority()
		}
		return a.Category.Priority() < b.Category.Priority()
	})
}

// Summarize aggregates counts, cost and critical titles
func Summarize(recs []models.Recommendation) models.Summary {
	summary := models.Summary{
		Total:          len(recs),
		ByLevel:        make(map[models.Level]int, len(models.Levels)),
		ByCategory:     make(map[models.Category]int, len(models.Categories)),
		CriticalTitles: []string{},
	}
	for _, l := range models.Levels {
		summary.ByLevel[l] = 0
	}
	for _, c := range models.Categories {
		summary.ByCategory[c] = 0
	}

	for _, r := range recs {
		summary.ByLevel[r.Level]++
		summary.ByCategory[r.Category]++
		if r.CostEstimate != nil {
			summary.TotalCost += *r.CostEstimate
		}
		if r.Level == models.LevelCritical {
			summary.CriticalTitles = append(summary.CriticalTitles, r.Title)
		}
	}

	return summary
}
