// Package report renders scan results and recommendations for people and tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"emlscout/internal/models"
	"emlscout/internal/pipeline"
	"emlscout/internal/recommend"
)

// Report bundles everything known about one scanned message
type Report struct {
	GeneratedAt     time.Time               `json:"generated_at"`
	Scan            *models.ScanResult      `json:"scan"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Summary         map[string]any          `json:"summary"`
	Pipeline        pipeline.Config         `json:"pipeline"`
}

// New assembles a report from a scan and its ordered recommendations
func New(scan *models.ScanResult, recs []models.Recommendation) *Report {
	if recs == nil {
		recs = []models.Recommendation{}
	}
	return &Report{
		GeneratedAt:     time.Now().UTC(),
		Scan:            scan,
		Recommendations: recs,
		Summary:         recommend.Summarize(recs).ToMap(),
		Pipeline:        pipeline.Build(recs),
	}
}

// WriteJSON writes the report as indented JSON
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// WriteJSONBatch writes several reports as one JSON array
func WriteJSONBatch(w io.Writer, reports []*Report) error {
	if reports == nil {
		reports = []*Report{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}
	return nil
}
