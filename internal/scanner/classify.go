package scanner

import (
	"math"
	"path/filepath"
	"strings"
	"time"

	"emlscout/internal/models"
)

const (
	largeFileMB       = 50
	largePDFMB        = 20
	largeSpreadsheet  = 10
	maxFilenameLength = 255
	pdfStartup        = 5 * time.Second
	kbPerPDFPage      = 75
)

var extensionTypes = map[string]models.FileType{
	".pdf":  models.FileTypePDF,
	".doc":  models.FileTypeDOCX,
	".docx": models.FileTypeDOCX,
	".xls":  models.FileTypeXLSX,
	".xlsx": models.FileTypeXLSX,
	".png":  models.FileTypeImage,
	".jpg":  models.FileTypeImage,
	".jpeg": models.FileTypeImage,
	".gif":  models.FileTypeImage,
	".bmp":  models.FileTypeImage,
	".txt":  models.FileTypeText,
	".csv":  models.FileTypeText,
	".md":   models.FileTypeText,
}

// upper-exclusive MB bounds for SIMPLE, MODERATE, COMPLEX; anything above is VERY_COMPLEX
var complexityBands = map[models.FileType][3]float64{
	models.FileTypePDF:  {1, 5, 20},
	models.FileTypeDOCX: {0.5, 2, 10},
	models.FileTypeXLSX: {0.1, 1, 5},
}

// seconds of processing per MB
var processingRates = map[models.FileType]float64{
	models.FileTypePDF:   30,
	models.FileTypeDOCX:  5,
	models.FileTypeXLSX:  3,
	models.FileTypeImage: 2,
	models.FileTypeText:  1,
	models.FileTypeOther: 1,
}

// ClassifyFileType maps a filename extension onto a file type
func ClassifyFileType(filename string) models.FileType {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return models.FileTypeOther
}

// ClassifyComplexity applies the per-type size bands
func ClassifyComplexity(t models.FileType, size int64) models.Complexity {
	sizeMB := float64(size) / (1024 * 1024)

	bands, ok := complexityBands[t]
	if !ok {
		switch {
		case sizeMB < 1:
			return models.ComplexitySimple
		case sizeMB < 5:
			return models.ComplexityModerate
		default:
			return models.ComplexityComplex
		}
	}

	switch {
	case sizeMB < bands[0]:
		return models.ComplexitySimple
	case sizeMB < bands[1]:
		return models.ComplexityModerate
	case sizeMB < bands[2]:
		return models.ComplexityComplex
	default:
		return models.ComplexityVeryComplex
	}
}

// FeaturesFor returns the content features implied by a file type
func FeaturesFor(t models.FileType) models.FeatureSet {
	switch t {
	case models.FileTypePDF:
		return models.NewFeatureSet(models.FeatureDocument)
	case models.FileTypeDOCX:
		return models.NewFeatureSet(models.FeatureDocument, models.FeatureFormattedText)
	case models.FileTypeXLSX:
		return models.NewFeatureSet(models.FeatureSpreadsheet, models.FeatureStructuredData)
	case models.FileTypeImage:
		return models.NewFeatureSet(models.FeatureVisualContent)
	default:
		return models.NewFeatureSet()
	}
}

// EstimateProcessingTime estimates conversion time for one attachment
func EstimateProcessingTime(t models.FileType, size int64) time.Duration {
	sizeMB := float64(size) / (1024 * 1024)
	seconds := math.Max(1, sizeMB*processingRates[t])
	d := time.Duration(seconds * float64(time.Second))
	if t == models.FileTypePDF {
		d += pdfStartup
	}
	return d
}

// EstimatePDFPages guesses a page count from file size at 75 KB per page
func EstimatePDFPages(size int64) int {
	sizeKB := float64(size) / 1024
	pages := int(math.Floor(sizeKB / kbPerPDFPage))
	if pages < 1 {
		return 1
	}
	return pages
}

// attachmentWarnings flags sizes and names likely to cause trouble downstream
func attachmentWarnings(filename string, t models.FileType, size int64) []string {
	sizeMB := float64(size) / (1024 * 1024)
	warnings := []string{}

	if sizeMB > largeFileMB {
		warnings = append(warnings, "Large file - processing may be slow")
	}
	if t == models.FileTypePDF && sizeMB > largePDFMB {
		warnings = append(warnings, "Large PDF - OCR processing may take significant time")
	}
	if t == models.FileTypeXLSX && sizeMB > largeSpreadsheet {
		warnings = append(warnings, "Large Excel file - may require increased memory")
	}
	if len(filename) > maxFilenameLength {
		warnings = append(warnings, "Very long filename - may cause filesystem issues")
	}

	return warnings
}
