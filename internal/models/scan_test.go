package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEstimatesEncodeAsSeconds(t *testing.T) {
	est := 1500 * time.Millisecond
	pages := 3
	scan := &ScanResult{
		Source: "a.eml",
		Attachments: []AttachmentInfo{
			{Filename: "a.pdf", FileType: FileTypePDF, Features: NewFeatureSet(FeatureDocument), EstimatedPages: &pages, EstimatedTime: &est},
			{Filename: "b.bin"},
		},
		EstimatedTime: 50 * time.Second,
	}

	data, err := json.Marshal(scan)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["estimated_seconds"] != 50.0 {
		t.Fatalf("expected 50 seconds, got %v", decoded["estimated_seconds"])
	}
	if _, ok := decoded["estimated_time"]; ok {
		t.Fatalf("expected no nanosecond field")
	}
	if decoded["source"] != "a.eml" {
		t.Fatalf("expected other fields to be kept, got %v", decoded["source"])
	}

	atts := decoded["attachments"].([]any)
	first := atts[0].(map[string]any)
	if first["estimated_seconds"] != 1.5 || first["file_type"] != "pdf" || first["estimated_pages"] != 3.0 {
		t.Fatalf("unexpected attachment encoding %v", first)
	}
	if _, ok := atts[1].(map[string]any)["estimated_seconds"]; ok {
		t.Fatalf("expected no estimate for attachment without one")
	}
}
