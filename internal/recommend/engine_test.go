package recommend

import (
	"math"
	"reflect"
	"testing"

	"emlscout/internal/models"
	"emlscout/internal/scanner"
)

func testEnv(withOCR bool) Environment {
	return Environment{
		Credentials:     map[Provider]bool{ProviderOCR: withOCR},
		CPUCores:        8,
		AvailableMemory: 8 * 1024 * mb,
	}
}

func att(name string, size int64) models.AttachmentInfo {
	t := scanner.ClassifyFileType(name)
	a := models.AttachmentInfo{
		Filename:   name,
		Size:       size,
		FileType:   t,
		Complexity: scanner.ClassifyComplexity(t, size),
		Features:   scanner.FeaturesFor(t),
	}
	if t == models.FileTypePDF {
		pages := scanner.EstimatePDFPages(size)
		a.EstimatedPages = &pages
	}
	return a
}

func scanOf(attachments ...models.AttachmentInfo) *models.ScanResult {
	return &models.ScanResult{
		Source:          "test",
		BodySize:        1024,
		Attachments:     attachments,
		ComplexityScore: scanner.ComplexityScore(1024, attachments),
	}
}

func filter(recs []models.Recommendation, level models.Level, category models.Category) []models.Recommendation {
	var out []models.Recommendation
	for _, r := range recs {
		if r.Level == level && r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

func findTitle(recs []models.Recommendation, title string) *models.Recommendation {
	for i := range recs {
		if recs[i].Title == title {
			return &recs[i]
		}
	}
	return nil
}

func TestGenerateNilInputs(t *testing.T) {
	recs := NewEngine(testEnv(true)).Generate(nil, nil)
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", recs)
	}
}

func TestQuickProfileForPlainMessage(t *testing.T) {
	recs := NewEngine(testEnv(true)).Generate(scanOf(), nil)
	if len(recs) != 1 {
		t.Fatalf("expected a single recommendation, got %d", len(recs))
	}
	if recs[0].Title != "Use Quick Profile" || recs[0].Level != models.LevelHigh {
		t.Fatalf("unexpected recommendation %+v", recs[0])
	}
	if recs[0].Settings["profile"] != "quick" {
		t.Fatalf("expected quick profile setting, got %v", recs[0].Settings)
	}
}

func TestProfileSelection(t *testing.T) {
	cases := []struct {
		name     string
		scan     *models.ScanResult
		title    string
		level    models.Level
		settings string
	}{
		{
			name:     "complex_pdf_is_ai_ready",
			scan:     scanOf(att("big.pdf", 6*mb)),
			title:    "Use AI-Ready Profile",
			level:    models.LevelHigh,
			settings: "ai_ready",
		},
		{
			name:     "complex_image_is_comprehensive",
			scan:     scanOf(att("photo.png", 6*mb)),
			title:    "Use Comprehensive Profile",
			level:    models.LevelHigh,
			settings: "comprehensive",
		},
		{
			name:     "moderate_mix_is_medium_comprehensive",
			scan:     scanOf(att("a.txt", 2*mb), att("b.png", 10)),
			title:    "Use Comprehensive Profile",
			level:    models.LevelMedium,
			settings: "comprehensive",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recs := NewEngine(testEnv(true)).profileRecommendations(tc.scan, Preferences{})
			if len(recs) == 0 {
				t.Fatalf("expected a profile recommendation")
			}
			if recs[0].Title != tc.title || recs[0].Level != tc.level || recs[0].Settings["profile"] != tc.settings {
				t.Fatalf("unexpected profile %+v", recs[0])
			}
		})
	}
}

func TestArchiveProfileIsAdditive(t *testing.T) {
	recs := NewEngine(testEnv(true)).profileRecommendations(scanOf(att("IMPORTANT-contract.txt", 100)), Preferences{})
	if len(recs) != 2 {
		t.Fatalf("expected primary and archive profiles, got %d", len(recs))
	}
	if recs[1].Title != "Consider Archive Profile" || recs[1].Level != models.LevelMedium {
		t.Fatalf("unexpected archive recommendation %+v", recs[1])
	}

	recs = NewEngine(testEnv(true)).profileRecommendations(scanOf(att("a.txt", 6*mb), att("b.txt", 6*mb)), Preferences{})
	if findTitle(recs, "Consider Archive Profile") == nil {
		t.Fatalf("expected archive profile for >10MB total")
	}
}

func TestMissingOCRKeyIsSingleCriticalAPIFirst(t *testing.T) {
	scan := scanOf(att("a.pdf", 100*1024), att("b.pdf", 6*mb), att("c.xlsx", 2*mb))
	recs := NewEngine(testEnv(false)).Generate(scan, &Preferences{AIProcessing: true})

	critical := filter(recs, models.LevelCritical, models.CategoryAPI)
	if len(critical) != 1 {
		t.Fatalf("expected exactly one critical API recommendation, got %d", len(critical))
	}
	if recs[0].Title != critical[0].Title {
		t.Fatalf("expected the credential recommendation first, got %q", recs[0].Title)
	}
	if recs[0].Settings["env_var"] != CredentialEnv[ProviderOCR] {
		t.Fatalf("expected env var setting, got %v", recs[0].Settings)
	}

	withKey := NewEngine(testEnv(true)).Generate(scan, nil)
	if len(filter(withKey, models.LevelCritical, models.CategoryAPI)) != 0 {
		t.Fatalf("expected no credential recommendation when key is present")
	}
}

func TestDangerousAttachment(t *testing.T) {
	for _, size := range []int64{0, 1024, 60 * mb} {
		recs := NewEngine(testEnv(true)).Generate(scanOf(att("payload.exe", size)), nil)
		critical := filter(recs, models.LevelCritical, models.CategorySecurity)
		if len(critical) != 1 {
			t.Fatalf("size %d: expected one critical security recommendation, got %d", size, len(critical))
		}
		if critical[0].Title != "Dangerous Attachments Detected" {
			t.Fatalf("unexpected title %q", critical[0].Title)
		}
	}
}

func TestLargeAttachmentSecurityWarning(t *testing.T) {
	recs := NewEngine(testEnv(true)).securityRecommendations(scanOf(att("video.bin", 11*mb)), Preferences{})
	if len(recs) != 1 || recs[0].Level != models.LevelMedium {
		t.Fatalf("expected one medium security recommendation, got %+v", recs)
	}
}

func TestPDFModeSelection(t *testing.T) {
	e := NewEngine(testEnv(true))

	recs := e.pdfRecommendations(scanOf(att("big.pdf", 6*mb)), Preferences{})
	if len(recs) != 1 || recs[0].Settings["pdf_mode"] != "text" {
		t.Fatalf("expected text mode, got %+v", recs)
	}
	if recs[0].CostEstimate == nil {
		t.Fatalf("expected cost estimate")
	}
	pages := float64(scanner.EstimatePDFPages(6 * mb))
	if math.Abs(*recs[0].CostEstimate-pages*0.001*0.5) > 1e-9 {
		t.Fatalf("unexpected text mode cost %v", *recs[0].CostEstimate)
	}

	withImages := att("scan.pdf", mb)
	withImages.Features = withImages.Features.With(models.FeatureImages)
	recs = e.pdfRecommendations(scanOf(withImages), Preferences{})
	if len(recs) != 1 || recs[0].Settings["pdf_mode"] != "all" {
		t.Fatalf("expected all mode, got %+v", recs)
	}

	recs = e.pdfRecommendations(scanOf(att("huge.pdf", 25*mb)), Preferences{})
	if findTitle(recs, "Enable High-Quality OCR") == nil {
		t.Fatalf("expected high quality OCR for very complex pdf")
	}

	if recs := e.pdfRecommendations(scanOf(att("a.docx", mb)), Preferences{}); recs != nil {
		t.Fatalf("expected no pdf rules without pdfs")
	}
}

func TestDOCXRules(t *testing.T) {
	e := NewEngine(testEnv(true))

	recs := e.docxRecommendations(scanOf(att("small.docx", 100*1024)), Preferences{})
	if len(recs) != 1 || recs[0].Level != models.LevelLow {
		t.Fatalf("expected only style preservation, got %+v", recs)
	}

	recs = e.docxRecommendations(scanOf(att("small.docx", 100*1024)), Preferences{AIProcessing: true, ChunkSize: 500})
	if recs[0].Level != models.LevelHigh || recs[0].Settings["chunk_size"] != 500 {
		t.Fatalf("expected chunking with preferred size, got %+v", recs[0])
	}

	big := att("big.docx", 3*mb)
	big.Features = big.Features.With(models.FeatureImages)
	recs = e.docxRecommendations(scanOf(big), Preferences{})
	if len(recs) != 3 || recs[0].Settings["chunk_size"] != defaultChunkSize {
		t.Fatalf("expected chunking, images and styles, got %+v", recs)
	}
}

func TestExcelRules(t *testing.T) {
	e := NewEngine(testEnv(true))
	if recs := e.excelRecommendations(scanOf(att("a.xlsx", 10)), Preferences{}); len(recs) != 1 {
		t.Fatalf("expected csv conversion only, got %d", len(recs))
	}
	recs := e.excelRecommendations(scanOf(att("a.xlsx", 2*mb)), Preferences{})
	if len(recs) != 2 || recs[1].Title != "Process All Worksheets" {
		t.Fatalf("expected all-worksheets rule, got %+v", recs)
	}
}

func TestPerformanceThresholdsAreExclusive(t *testing.T) {
	e := NewEngine(testEnv(true))

	recs := e.performanceRecommendations(scanOf(att("a.bin", 30*mb)), Preferences{})
	if len(recs) != 1 || recs[0].Level != models.LevelHigh {
		t.Fatalf("expected memory limit increase, got %+v", recs)
	}

	recs = e.performanceRecommendations(scanOf(att("a.bin", 60*mb)), Preferences{})
	if len(recs) != 1 || recs[0].Level != models.LevelCritical {
		t.Fatalf("expected only high memory mode, got %+v", recs)
	}
	if recs[0].Settings["process_individually"] != true {
		t.Fatalf("expected process_individually flag")
	}
}

func TestParallelProcessing(t *testing.T) {
	scan := scanOf(att("a.txt", 1), att("b.txt", 1), att("c.txt", 1), att("d.txt", 1))

	recs := NewEngine(testEnv(true)).performanceRecommendations(scan, Preferences{})
	if len(recs) != 1 || recs[0].Settings["max_workers"] != 4 {
		t.Fatalf("expected parallel processing with 4 workers, got %+v", recs)
	}

	env := testEnv(true)
	env.CPUCores = 2
	if recs := NewEngine(env).performanceRecommendations(scan, Preferences{}); len(recs) != 0 {
		t.Fatalf("expected no parallel suggestion on 2 cores")
	}
}

func TestOCRCostWarning(t *testing.T) {
	e := NewEngine(testEnv(true))

	// 200 pages in "all" mode cost $0.20
	many := att("long.pdf", 15*mb)
	pages := 200
	many.EstimatedPages = &pages
	recs := e.apiRecommendations(scanOf(many), Preferences{})
	if len(recs) != 1 || recs[0].CostEstimate == nil || math.Abs(*recs[0].CostEstimate-0.2) > 1e-9 {
		t.Fatalf("expected cost warning of $0.20, got %+v", recs)
	}

	pages = 50
	if recs := e.apiRecommendations(scanOf(many), Preferences{}); len(recs) != 0 {
		t.Fatalf("expected no warning under $0.10")
	}
}

func TestOutputRules(t *testing.T) {
	recs := NewEngine(testEnv(true)).outputRecommendations(scanOf(att("a.xlsx", 10)), Preferences{AIProcessing: true})
	if len(recs) != 2 || recs[0].Settings["output_format"] != "markdown" || recs[1].Title != "Export Structured CSV" {
		t.Fatalf("unexpected output recommendations %+v", recs)
	}
}

func TestOrderingIsDeterministicAndSorted(t *testing.T) {
	scan := scanOf(
		att("payload.exe", 12*mb),
		att("report.pdf", 30*mb),
		att("notes.docx", 3*mb),
		att("figures.xlsx", 2*mb),
		att("important.txt", 1),
	)
	prefs := &Preferences{AIProcessing: true}
	e := NewEngine(testEnv(false))

	first := e.Generate(scan, prefs)
	second := e.Generate(scan, prefs)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected deterministic recommendations ordering")
	}

	for i := 1; i < len(first); i++ {
		a, b := first[i-1], first[i]
		if a.Level.Priority() > b.Level.Priority() {
			t.Fatalf("level out of order at %d: %s before %s", i, a.Level, b.Level)
		}
		if a.Level == b.Level && a.Category.Priority() > b.Category.Priority() {
			t.Fatalf("category out of order at %d: %s before %s", i, a.Category, b.Category)
		}
	}
}

func TestSortPreservesEmissionOrderForTies(t *testing.T) {
	recs := []models.Recommendation{
		{Level: models.LevelMedium, Category: models.CategoryConverter, Title: "first"},
		{Level: models.LevelHigh, Category: models.CategoryOutput, Title: "high"},
		{Level: models.LevelMedium, Category: models.CategoryConverter, Title: "second"},
		{Level: models.LevelMedium, Category: models.CategoryAPI, Title: "api"},
	}
	sortRecommendations(recs)

	var titles []string
	for _, r := range recs {
		titles = append(titles, r.Title)
	}
	expected := []string{"high", "api", "first", "second"}
	if !reflect.DeepEqual(titles, expected) {
		t.Fatalf("expected %v, got %v", expected, titles)
	}
}

func TestEstimateOCRCost(t *testing.T) {
	pages := 100
	pdf := models.AttachmentInfo{FileType: models.FileTypePDF, EstimatedPages: &pages}
	if got := EstimateOCRCost([]models.AttachmentInfo{pdf}, OCRModeText); math.Abs(got-0.05) > 1e-12 {
		t.Fatalf("expected 0.05, got %v", got)
	}

	// no page estimate falls back to ceil(size / 75KB)
	raw := models.AttachmentInfo{FileType: models.FileTypePDF, Size: 75*1024 + 1}
	if got := EstimateOCRCost([]models.AttachmentInfo{raw}, OCRModeImages); math.Abs(got-0.003) > 1e-12 {
		t.Fatalf("expected 0.003, got %v", got)
	}

	other := models.AttachmentInfo{FileType: models.FileTypeDOCX, Size: 10 * mb}
	if got := EstimateOCRCost([]models.AttachmentInfo{other}, OCRModeAll); got != 0 {
		t.Fatalf("expected non-pdf attachments to be free, got %v", got)
	}
}

func TestSummarize(t *testing.T) {
	cost := 0.25
	recs := []models.Recommendation{
		{Level: models.LevelCritical, Category: models.CategoryAPI, Title: "Key"},
		{Level: models.LevelHigh, Category: models.CategoryConverter, Title: "Mode", CostEstimate: &cost},
		{Level: models.LevelMedium, Category: models.CategoryAPI, Title: "Cost", CostEstimate: &cost},
	}
	s := Summarize(recs)
	if s.Total != 3 || s.ByLevel[models.LevelCritical] != 1 || s.ByCategory[models.CategoryAPI] != 2 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if s.ByLevel[models.LevelLow] != 0 {
		t.Fatalf("expected zero low recommendations")
	}
	if math.Abs(s.TotalCost-0.5) > 1e-12 {
		t.Fatalf("expected total cost 0.5, got %v", s.TotalCost)
	}
	if !reflect.DeepEqual(s.CriticalTitles, []string{"Key"}) {
		t.Fatalf("unexpected critical titles %v", s.CriticalTitles)
	}

	m := s.ToMap()
	if m["total_recommendations"] != 3 {
		t.Fatalf("unexpected map %v", m)
	}
}

func TestProbeEnvironmentWith(t *testing.T) {
	env := ProbeEnvironmentWith(func(name string) (string, bool) {
		if name == "MISTRAL_API_KEY" {
			return "secret", true
		}
		if name == "OPENAI_API_KEY" {
			return "", true
		}
		return "", false
	})
	if !env.HasCredential(ProviderMistral) {
		t.Fatalf("expected mistral credential")
	}
	if env.HasCredential(ProviderOpenAI) || env.HasCredential(ProviderAnthropic) {
		t.Fatalf("expected empty or missing keys to count as absent")
	}
	if env.CPUCores < 1 || env.AvailableMemory == 0 {
		t.Fatalf("unexpected environment %+v", env)
	}
}

func TestRecommendationString(t *testing.T) {
	glyphs := map[string]bool{}
	for _, l := range models.Levels {
		r := models.Recommendation{Level: l, Title: "T", Description: "D"}
		glyphs[l.Glyph()] = true
		if got := r.String(); got != l.Glyph()+" T: D" {
			t.Fatalf("unexpected rendering %q", got)
		}
	}
	if len(glyphs) != 4 {
		t.Fatalf("expected four distinct glyphs")
	}
}
