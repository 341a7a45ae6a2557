package recommend

import (
	"fmt"
	"strings"

	"emlscout/internal/models"
	"emlscout/internal/security"
)

const (
	mb = 1024 * 1024

	aiRelevantMB       = 0.5
	archiveTotalMB     = 10
	largePDFMB         = 5
	largeDocMB         = 2
	multiSheetMB       = 1
	memoryLimitMB      = 20
	highMemoryMB       = 50
	parallelMinFiles   = 3
	parallelMinCores   = 2
	largeAttachmentMB  = 10
	costWarningDollars = 0.10
)

func sizeMB(size int64) float64 {
	return float64(size) / mb
}

func anyAttachment(atts []models.AttachmentInfo, pred func(models.AttachmentInfo) bool) bool {
	for _, a := range atts {
		if pred(a) {
			return true
		}
	}
	return false
}

func costPtr(v float64) *float64 {
	return &v
}

func (e *Engine) profileRecommendations(scan *models.ScanResult, _ Preferences) []models.Recommendation {
	var recs []models.Recommendation
	score := scan.ComplexityScore

	hasComplex := anyAttachment(scan.Attachments, func(a models.AttachmentInfo) bool {
		return a.Complexity == models.ComplexityComplex || a.Complexity == models.ComplexityVeryComplex
	})

	switch {
	case score < 2:
		recs = append(recs, models.Recommendation{
			Category:    models.CategoryProfile,
			Level:       models.LevelHigh,
			Title:       "Use Quick Profile",
			Description: "Simple message content can be converted with the fast profile",
			Rationale:   fmt.Sprintf("Complexity score %.1f is below 2", score),
			Action:      "Run the conversion with --profile quick",
			Settings:    map[string]any{"profile": "quick"},
			Conditions:  []string{"complexity_score<2"},
			TimeImpact:  "faster",
		})

	case score > 7 || hasComplex:
		aiRelevant := anyAttachment(scan.Attachments, func(a models.AttachmentInfo) bool {
			return (a.FileType == models.FileTypePDF || a.FileType == models.FileTypeDOCX) && a.SizeMB() > aiRelevantMB
		})
		conditions := []string{"complex_content"}
		if aiRelevant {
			conditions = append(conditions, "ai_relevant_documents")
			recs = append(recs, models.Recommendation{
				Category:    models.CategoryProfile,
				Level:       models.LevelHigh,
				Title:       "Use AI-Ready Profile",
				Description: "Complex documents benefit from chunked, AI-ready output",
				Rationale:   fmt.Sprintf("Complexity score %.1f with substantial PDF or Word documents", score),
				Action:      "Run the conversion with --profile ai_ready",
				Settings:    map[string]any{"profile": "ai_ready"},
				Conditions:  conditions,
				TimeImpact:  "slower",
			})
		} else {
			recs = append(recs, models.Recommendation{
				Category:    models.CategoryProfile,
				Level:       models.LevelHigh,
				Title:       "Use Comprehensive Profile",
				Description: "Complex content needs full extraction of every attachment",
				Rationale:   fmt.Sprintf("Complexity score %.1f or complex attachments present", score),
				Action:      "Run the conversion with --profile comprehensive",
				Settings:    map[string]any{"profile": "comprehensive"},
				Conditions:  conditions,
				TimeImpact:  "moderate",
			})
		}

	default:
		recs = append(recs, models.Recommendation{
			Category:    models.CategoryProfile,
			Level:       models.LevelMedium,
			Title:       "Use Comprehensive Profile",
			Description: "Balanced processing suits moderately complex messages",
			Rationale:   fmt.Sprintf("Complexity score %.1f", score),
			Action:      "Run the conversion with --profile comprehensive",
			Settings:    map[string]any{"profile": "comprehensive"},
			Conditions:  []string{"moderate_complexity"},
			TimeImpact:  "moderate",
		})
	}

	// Filename matching on "important" is a crude signal but it is what users rely on.
	important := anyAttachment(scan.Attachments, func(a models.AttachmentInfo) bool {
		return strings.Contains(strings.ToLower(a.Filename), "important")
	})
	large := sizeMB(scan.TotalAttachmentSize()) > archiveTotalMB
	if large || important {
		var conditions []string
		if large {
			conditions = append(conditions, "total_size>10MB")
		}
		if important {
			conditions = append(conditions, "important_filename")
		}
		recs = append(recs, models.Recommendation{
			Category:    models.CategoryProfile,
			Level:       models.LevelMedium,
			Title:       "Consider Archive Profile",
			Description: "Keep a complete archival copy of this message and its attachments",
			Rationale:   "Large or important attachments are worth preserving in full",
			Action:      "Run an additional conversion with --profile archive",
			Settings:    map[string]any{"profile": "archive"},
			Conditions:  conditions,
		})
	}

	return recs
}

func (e *Engine) pdfRecommendations(scan *models.ScanResult, _ Preferences) []models.Recommendation {
	pdfs := scan.AttachmentsOfType(models.FileTypePDF)
	if len(pdfs) == 0 {
		return nil
	}

	var recs []models.Recommendation

	if !e.env.HasCredential(ProviderOCR) {
		recs = append(recs, models.Recommendation{
			Category:    models.CategoryAPI,
			Level:       models.LevelCritical,
			Title:       "Configure OCR API Key",
			Description: fmt.Sprintf("%d PDF attachment(s) need OCR but no API key is configured", len(pdfs)),
			Rationale:   "PDF text extraction requires an OCR provider credential",
			Action:      fmt.Sprintf("Set %s before converting", CredentialEnv[ProviderOCR]),
			Settings:    map[string]any{"ocr_provider": string(ProviderOCR), "env_var": CredentialEnv[ProviderOCR]},
			Conditions:  []string{"pdf_present", "ocr_key_missing"},
		})
	}

	largePDF := anyAttachment(pdfs, func(a models.AttachmentInfo) bool { return a.SizeMB() > largePDFMB })
	withImages := anyAttachment(pdfs, func(a models.AttachmentInfo) bool { return a.Features.Has(models.FeatureImages) })

	switch {
	case largePDF:
		recs = append(recs, models.Recommendation{
			Category:     models.CategoryConverter,
			Level:        models.LevelHigh,
			Title:        "Use Text-Only PDF Mode",
			Description:  "Extract only text from large PDFs to cut OCR time and cost",
			Rationale:    fmt.Sprintf("At least one PDF is larger than %d MB", largePDFMB),
			Action:       "Set the PDF converter mode to text",
			Settings:     map[string]any{"pdf_mode": string(OCRModeText)},
			Conditions:   []string{"pdf_size>5MB"},
			CostEstimate: costPtr(EstimateOCRCost(pdfs, OCRModeText)),
			TimeImpact:   "faster",
		})
	case withImages:
		recs = append(recs, models.Recommendation{
			Category:     models.CategoryConverter,
			Level:        models.LevelHigh,
			Title:        "Extract Text and Images from PDFs",
			Description:  "PDFs contain images worth extracting alongside text",
			Rationale:    "Image-bearing PDFs lose content with text-only extraction",
			Action:       "Set the PDF converter mode to all",
			Settings:     map[string]any{"pdf_mode": string(OCRModeAll)},
			Conditions:   []string{"pdf_has_images"},
			CostEstimate: costPtr(EstimateOCRCost(pdfs, OCRModeAll)),
			TimeImpact:   "slower",
		})
	}

	if anyAttachment(pdfs, func(a models.AttachmentInfo) bool { return a.Complexity == models.ComplexityVeryComplex }) {
		recs = append(recs, models.Recommendation{
			Category:    models.CategoryConverter,
			Level:       models.LevelMedium,
			Title:       "Enable High-Quality OCR",
			Description: "Very complex PDFs extract more reliably with high-quality OCR",
			Rationale:   "At least one PDF is classified very complex",
			Action:      "Set OCR quality to high",
			Settings:    map[string]any{"ocr_quality": "high"},
			Conditions:  []string{"pdf_very_complex"},
			TimeImpact:  "slower",
		})
	}

	return recs
}

func (e *Engine) docxRecommendations(scan *models.ScanResult, prefs Preferences) []models.Recommendation {
	docs := scan.AttachmentsOfType(models.FileTypeDOCX)
	if len(docs) == 0 {
		return nil
	}

	var recs []models.Recommendation

	largeDoc := anyAttachment(docs, func(a models.AttachmentInfo) bool { return a.SizeMB() > largeDocMB })
	if largeDoc || prefs.AIProcessing {
		var conditions []string
		if largeDoc {
			conditions = append(conditions, "docx_size>2MB")
		}
		if prefs.AIProcessing {
			conditions = append(conditions, "ai_processing")
		}
		recs = append(recs, models.Recommendation{
			Category:    models.CategoryConverter,
			Level:       models.LevelHigh,
			Title:       "Enable Semantic Chunking for Word Documents",
			Description: "Split Word documents into semantic chunks",
			Rationale:   "Large documents and AI consumers work better with bounded segments",
			Action:      fmt.Sprintf("Enable DOCX chunking with chunk size %d", prefs.chunkSize()),
			Settings: map[string]any{
				"docx_chunking":  true,
				"chunk_size":     prefs.chunkSize(),
				"chunk_strategy": "semantic",
			},
			Conditions: conditions,
		})
	}

	if anyAttachment(docs, func(a models.AttachmentInfo) bool { return a.Features.Has(models.FeatureImages) }) {
		recs = append(recs, models.Recommendation{
			Category:    models.CategoryConverter,
			Level:       models.LevelMedium,
			Title:       "Extract Images from Word Documents",
			Description: "Word documents contain embedded images",
			Rationale:   "Embedded figures are lost unless extracted",
			Action:      "Enable DOCX image extraction",
			Settings:    map[string]any{"docx_extract_images": true},
			Conditions:  []string{"docx_has_images"},
			TimeImpact:  "slower",
		})
	}

	if anyAttachment(docs, func(a models.AttachmentInfo) bool { return a.Features.Has(models.FeatureFormattedText) }) {
		recs = append(recs, models.Recommendation{
			Category:    models.CategoryConverter,
			Level:       models.LevelLow,
			Title:       "Preserve Document Styles",
			Description: "Keep headings, lists and emphasis from Word documents",
			Rationale:   "Formatted text carries structure useful downstream",
			Action:      "Enable DOCX style preservation",
			Settings:    map[string]any{"docx_preserve_styles": true},
			Conditions:  []string{"docx_formatted_text"},
		})
	}

	return recs
}

func (e *Engine) excelRecommendations(scan *models.ScanResult, _ Preferences) []models.Recommendation {
	sheets := scan.AttachmentsOfType(models.FileTypeXLSX)
	if len(sheets) == 0 {
		return nil
	}

	recs := []models.Recommendation{{
		Category:    models.CategoryConverter,
		Level:       models.LevelHigh,
		Title:       "Convert Spreadsheets to CSV",
		Description: fmt.Sprintf("%d spreadsheet(s) convert cleanly to CSV", len(sheets)),
		Rationale:   "CSV keeps tabular data machine readable",
		Action:      "Set the Excel output format to csv",
		Settings:    map[string]any{"excel_format": "csv"},
		Conditions:  []string{"xlsx_present"},
	}}

	if anyAttachment(sheets, func(a models.AttachmentInfo) bool { return a.SizeMB() > multiSheetMB }) {
		recs = append(recs, models.Recommendation{
			Category:    models.CategoryConverter,
			Level:       models.LevelMedium,
			Title:       "Process All Worksheets",
			Description: "Large workbooks likely span several worksheets",
			Rationale:   fmt.Sprintf("At least one spreadsheet is larger than %d MB", multiSheetMB),
			Action:      "Enable conversion of every worksheet",
			Settings:    map[string]any{"excel_all_sheets": true},
			Conditions:  []string{"xlsx_size>1MB"},
			TimeImpact:  "slower",
		})
	}

	return recs
}

func (e *Engine) performanceRecommendations(scan *models.ScanResult, _ Preferences) []models.Recommendation {
	var recs []models.Recommendation
	total := sizeMB(scan.TotalAttachmentSize())
	availMB := e.env.AvailableMemoryMB()

	switch {
	case total > highMemoryMB:
		recs = append(recs, models.Recommendation{
			Category:    models.CategoryPerformance,
			Level:       models.LevelCritical,
			Title:       "Enable High-Memory Mode",
			Description: fmt.Sprintf("Attachments total %.1f MB", total),
			Rationale:   fmt.Sprintf("More than %d MB of attachments can exhaust default memory limits", highMemoryMB),
			Action:      "Raise the memory limit and process attachments one at a time",
			Settings: map[string]any{
				"memory_limit_mb":      memoryLimit(availMB, 4096),
				"process_individually": true,
			},
			Conditions: []string{"total_size>50MB"},
			TimeImpact: "slower",
		})
	case total > memoryLimitMB:
		recs = append(recs, models.Recommendation{
			Category:    models.CategoryPerformance,
			Level:       models.LevelHigh,
			Title:       "Increase Memory Limit",
			Description: fmt.Sprintf("Attachments total %.1f MB", total),
			Rationale:   fmt.Sprintf("More than %d MB of attachments needs extra headroom", memoryLimitMB),
			Action:      "Raise the converter memory limit",
			Settings:    map[string]any{"memory_limit_mb": memoryLimit(availMB, 2048)},
			Conditions:  []string{"total_size>20MB"},
		})
	}

	count := len(scan.Attachments)
	if count > parallelMinFiles && e.env.CPUCores > parallelMinCores {
		workers := count
		if e.env.CPUCores < workers {
			workers = e.env.CPUCores
		}
		recs = append(recs, models.Recommendation{
			Category:    models.CategoryPerformance,
			Level:       models.LevelMedium,
			Title:       "Enable Parallel Processing",
			Description: fmt.Sprintf("Convert %d attachments concurrently", count),
			Rationale:   fmt.Sprintf("%d CPU cores are available", e.env.CPUCores),
			Action:      fmt.Sprintf("Run with %d parallel workers", workers),
			Settings:    map[string]any{"parallel": true, "max_workers": workers},
			Conditions:  []string{"attachment_count>3", "cpu_cores>2"},
			TimeImpact:  "faster",
		})
	}

	return recs
}

// memoryLimit caps the wanted limit at half the available memory, never below 512 MB
func memoryLimit(availableMB, wantMB int) int {
	limit := wantMB
	if half := availableMB / 2; half > 0 && half < limit {
		limit = half
	}
	if limit < 512 {
		limit = 512
	}
	return limit
}

func (e *Engine) securityRecommendations(scan *models.ScanResult, _ Preferences) []models.Recommendation {
	var recs []models.Recommendation

	var large, names []string
	for _, a := range scan.Attachments {
		if a.SizeMB() > largeAttachmentMB {
			large = append(large, a.Filename)
		}
		names = append(names, a.Filename)
	}

	if len(large) > 0 {
		recs = append(recs, models.Recommendation{
			Category:    models.CategorySecurity,
			Level:       models.LevelMedium,
			Title:       "Large Attachments Detected",
			Description: fmt.Sprintf("%d attachment(s) exceed %d MB: %s", len(large), largeAttachmentMB, strings.Join(large, ", ")),
			Rationale:   "Oversized attachments are a common vector for resource exhaustion",
			Action:      "Verify the sender before processing large files",
			Settings:    map[string]any{"verify_large_files": true},
			Conditions:  []string{"attachment_size>10MB"},
		})
	}

	if risky := security.RiskyFiles(names); len(risky) > 0 {
		recs = append(recs, models.Recommendation{
			Category:    models.CategorySecurity,
			Level:       models.LevelCritical,
			Title:       "Dangerous Attachments Detected",
			Description: fmt.Sprintf("Executable attachment(s) found: %s", strings.Join(risky, ", ")),
			Rationale:   "Executable file types can carry malware",
			Action:      "Do not open these files; scan them or skip them during conversion",
			Settings:    map[string]any{"skip_risky_attachments": true},
			Conditions:  []string{"risky_extension"},
		})
	}

	return recs
}

func (e *Engine) apiRecommendations(scan *models.ScanResult, prefs Preferences) []models.Recommendation {
	pdfs := scan.AttachmentsOfType(models.FileTypePDF)
	if len(pdfs) == 0 {
		return nil
	}

	mode := prefs.pdfMode()
	cost := EstimateOCRCost(pdfs, mode)
	if cost <= costWarningDollars {
		return nil
	}

	return []models.Recommendation{{
		Category:     models.CategoryAPI,
		Level:        models.LevelMedium,
		Title:        "Optimize OCR Costs",
		Description:  fmt.Sprintf("Estimated OCR cost is $%.2f in %s mode", cost, mode),
		Rationale:    fmt.Sprintf("OCR cost exceeds $%.2f", costWarningDollars),
		Action:       "Use text mode or limit OCR to the PDFs you need",
		Settings:     map[string]any{"pdf_mode": string(OCRModeText)},
		Conditions:   []string{"ocr_cost>0.10"},
		CostEstimate: costPtr(cost),
	}}
}

func (e *Engine) outputRecommendations(scan *models.ScanResult, prefs Preferences) []models.Recommendation {
	var recs []models.Recommendation

	if prefs.AIProcessing {
		recs = append(recs, models.Recommendation{
			Category:    models.CategoryOutput,
			Level:       models.LevelHigh,
			Title:       "Use Markdown Output with Chunking",
			Description: "Markdown chunks are the most convenient input for LLMs",
			Rationale:   "AI processing was requested",
			Action:      "Set the output format to markdown and enable chunking",
			Settings: map[string]any{
				"output_format": "markdown",
				"chunking":      true,
				"chunk_size":    prefs.chunkSize(),
			},
			Conditions: []string{"ai_processing"},
		})
	}

	if len(scan.AttachmentsOfType(models.FileTypeXLSX)) > 0 {
		recs = append(recs, models.Recommendation{
			Category:    models.CategoryOutput,
			Level:       models.LevelMedium,
			Title:       "Export Structured CSV",
			Description: "Keep spreadsheet data as structured CSV next to the converted message",
			Rationale:   "Spreadsheet attachments carry tabular data",
			Action:      "Enable structured CSV output",
			Settings:    map[string]any{"structured_csv": true},
			Conditions:  []string{"xlsx_present"},
		})
	}

	return recs
}
