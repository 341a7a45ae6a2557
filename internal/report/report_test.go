package report

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"emlscout/internal/models"
	"emlscout/internal/recommend"
	"emlscout/internal/scanner"
)

func sampleReport(t *testing.T) *Report {
	t.Helper()

	pages := 12
	est := 40 * time.Second
	date := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	scan := &models.ScanResult{
		Source:    "inbox/<weird>.eml",
		Subject:   "Invoice <March>",
		Sender:    "billing@example.com",
		Date:      &date,
		TotalSize: 2 * 1024 * 1024,
		BodySize:  2048,
		Attachments: []models.AttachmentInfo{
			{
				Filename:       "invoice.pdf",
				Size:           900 * 1024,
				FileType:       models.FileTypePDF,
				Complexity:     models.ComplexitySimple,
				Features:       scanner.FeaturesFor(models.FileTypePDF),
				EstimatedPages: &pages,
				EstimatedTime:  &est,
				Warnings:       []string{},
			},
			{
				Filename:   "tool.exe",
				Size:       1024,
				FileType:   models.FileTypeOther,
				Complexity: models.ComplexitySimple,
				Warnings:   []string{},
			},
		},
		ComplexityScore: 2.7,
		EstimatedTime:   50 * time.Second,
		Hints:           []string{"Use 'quick' profile for fast processing"},
		Warnings:        []string{"tool.exe: Malware detected: Eicar-Test-Signature"},
	}

	env := recommend.Environment{Credentials: map[recommend.Provider]bool{}, CPUCores: 4, AvailableMemory: 1 << 33}
	recs := recommend.NewEngine(env).Generate(scan, nil)
	return New(scan, recs)
}

func TestNewBuildsSummaryAndPipeline(t *testing.T) {
	r := sampleReport(t)
	if r.Summary["total_recommendations"] != len(r.Recommendations) {
		t.Fatalf("summary total does not match recommendations")
	}
	critical, ok := r.Summary["critical_actions"].([]string)
	if !ok || len(critical) != 2 {
		t.Fatalf("expected credential and dangerous attachment criticals, got %v", r.Summary["critical_actions"])
	}
	if r.Pipeline.SkipRiskyFiles != true {
		t.Fatalf("expected pipeline to skip risky attachments")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport(t).WriteJSON(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	recs, ok := decoded["recommendations"].([]any)
	if !ok || len(recs) == 0 {
		t.Fatalf("expected recommendations in JSON")
	}
	first := recs[0].(map[string]any)
	if first["level"] != "critical" {
		t.Fatalf("expected levels encoded as names, got %v", first["level"])
	}
	scan := decoded["scan"].(map[string]any)
	atts := scan["attachments"].([]any)
	features := atts[0].(map[string]any)["features"].([]any)
	if len(features) != 1 || features[0] != "document" {
		t.Fatalf("expected feature names, got %v", features)
	}
}

func TestWriteJSONBatchEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSONBatch(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", buf.String())
	}
}

func TestWriteText(t *testing.T) {
	r := sampleReport(t)
	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{"Invoice <March>", "invoice.pdf", "Warnings:", "Recommendations (", r.Recommendations[0].String()} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestWriteTextWithoutScan(t *testing.T) {
	if err := (&Report{}).WriteText(&bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for empty report")
	}
}

func TestBuildHTMLEscapes(t *testing.T) {
	out := sampleReport(t).BuildHTML()
	if strings.Contains(out, "<March>") {
		t.Fatalf("expected subject to be escaped")
	}
	if !strings.Contains(out, "Invoice &lt;March&gt;") {
		t.Fatalf("expected escaped subject in output")
	}
	if !strings.Contains(out, "Dangerous Attachments Detected") {
		t.Fatalf("expected recommendations in output")
	}
}

func TestWriteBasicPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	renderer, err := sampleReport(t).WritePDF(context.Background(), path, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if renderer != RendererBasic {
		t.Fatalf("expected basic renderer, got %s", renderer)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF header")
	}
}

func TestRichPDFFallsBackToBasic(t *testing.T) {
	t.Setenv("CHROME_PATH", filepath.Join(t.TempDir(), "no-such-chrome"))

	ctx, cancel := context.WithCancel(context.Background())
	contexts := map[string]context.Context{
		"chrome_missing": context.Background(),
		"context_done":   ctx,
	}
	cancel()

	for name, ctx := range contexts {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "report.pdf")
			renderer, err := sampleReport(t).WritePDF(ctx, path, true)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if renderer != RendererBasic {
				t.Fatalf("expected basic renderer fallback, got %s", renderer)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read pdf: %v", err)
			}
			if !bytes.HasPrefix(data, []byte("%PDF")) {
				t.Fatalf("expected PDF header")
			}
		})
	}
}

func TestRenderHTMLToPDFWritesNothingOnFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := filepath.Join(t.TempDir(), "report.pdf")
	if err := renderHTMLToPDF(ctx, "<html><body>x</body></html>", path); err == nil {
		t.Fatalf("expected error for finished context")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no output file, got %v", err)
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()

	first, err := OutputPath(dir, "inbox/a:b.eml", ".json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(first) != "a_b_report.json" {
		t.Fatalf("unexpected path %s", first)
	}
	if err := os.WriteFile(first, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to write: %v", err)
	}

	second, err := OutputPath(dir, "inbox/a:b.eml", ".json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(second) != "a_b_report_1.json" {
		t.Fatalf("expected unique path, got %s", second)
	}
}
