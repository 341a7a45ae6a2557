// Package pipeline turns recommendation settings into conversion pipeline options.
package pipeline

import (
	"emlscout/internal/models"
)

// Config holds the options a conversion pipeline is started with
type Config struct {
	Profile             string   `json:"profile"`
	PDFMode             string   `json:"pdf_mode"`
	OCRQuality          string   `json:"ocr_quality"`
	DOCXChunking        bool     `json:"docx_chunking"`
	ChunkSize           int      `json:"chunk_size"`
	ChunkStrategy       string   `json:"chunk_strategy,omitempty"`
	DOCXExtractImages   bool     `json:"docx_extract_images"`
	DOCXPreserveStyles  bool     `json:"docx_preserve_styles"`
	ExcelFormat         string   `json:"excel_format"`
	ExcelAllSheets      bool     `json:"excel_all_sheets"`
	MemoryLimitMB       int      `json:"memory_limit_mb,omitempty"`
	ProcessIndividually bool     `json:"process_individually"`
	Parallel            bool     `json:"parallel"`
	MaxWorkers          int      `json:"max_workers,omitempty"`
	OutputFormat        string   `json:"output_format"`
	Chunking            bool     `json:"chunking"`
	StructuredCSV       bool     `json:"structured_csv"`
	SkipRiskyFiles      bool     `json:"skip_risky_attachments"`
	Applied             []string `json:"applied"`
}

// Default returns the options used when no recommendation applies
func Default() Config {
	return Config{
		Profile:      "comprehensive",
		PDFMode:      "all",
		OCRQuality:   "standard",
		ChunkSize:    2000,
		ExcelFormat:  "xlsx",
		OutputFormat: "pdf",
		Applied:      []string{},
	}
}

// Build applies recommendation settings on top of the defaults. Recommendations
// are expected in priority order; the first one to set a key wins, so a
// critical or high recommendation is never overridden by a lower one.
// Archive suggestions are additive runs and never replace the primary profile.
func Build(recs []models.Recommendation) Config {
	cfg := Default()
	set := map[string]bool{}

	for _, r := range recs {
		applied := false
		for key, value := range r.Settings {
			if set[key] {
				continue
			}
			if key == "profile" && value == "archive" {
				continue
			}
			if cfg.apply(key, value) {
				set[key] = true
				applied = true
			}
		}
		if applied {
			cfg.Applied = append(cfg.Applied, r.Title)
		}
	}

	return cfg
}

// apply sets one option and reports whether the key and value type were recognised
func (c *Config) apply(key string, value any) bool {
	switch key {
	case "profile":
		return setString(&c.Profile, value)
	case "pdf_mode":
		return setString(&c.PDFMode, value)
	case "ocr_quality":
		return setString(&c.OCRQuality, value)
	case "docx_chunking":
		return setBool(&c.DOCXChunking, value)
	case "chunk_size":
		return setInt(&c.ChunkSize, value)
	case "chunk_strategy":
		return setString(&c.ChunkStrategy, value)
	case "docx_extract_images":
		return setBool(&c.DOCXExtractImages, value)
	case "docx_preserve_styles":
		return setBool(&c.DOCXPreserveStyles, value)
	case "excel_format":
		return setString(&c.ExcelFormat, value)
	case "excel_all_sheets":
		return setBool(&c.ExcelAllSheets, value)
	case "memory_limit_mb":
		return setInt(&c.MemoryLimitMB, value)
	case "process_individually":
		return setBool(&c.ProcessIndividually, value)
	case "parallel":
		return setBool(&c.Parallel, value)
	case "max_workers":
		return setInt(&c.MaxWorkers, value)
	case "output_format":
		return setString(&c.OutputFormat, value)
	case "chunking":
		return setBool(&c.Chunking, value)
	case "structured_csv":
		return setBool(&c.StructuredCSV, value)
	case "skip_risky_attachments":
		return setBool(&c.SkipRiskyFiles, value)
	}
	return false
}

func setString(dst *string, v any) bool {
	s, ok := v.(string)
	if ok {
		*dst = s
	}
	return ok
}

func setBool(dst *bool, v any) bool {
	b, ok := v.(bool)
	if ok {
		*dst = b
	}
	return ok
}

func setInt(dst *int, v any) bool {
	switch n := v.(type) {
	case int:
		*dst = n
	case int64:
		*dst = int(n)
	case float64:
		*dst = int(n)
	default:
		return false
	}
	return true
}
