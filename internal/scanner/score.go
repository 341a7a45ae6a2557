package scanner

import (
	"math"
	"time"

	"emlscout/internal/models"
)

const (
	baseProcessingTime    = 5 * time.Second
	perAttachmentOverhead = 2 * time.Second
	maxComplexityScore    = 10.0
)

var complexityWeights = map[models.Complexity]float64{
	models.ComplexitySimple:      0.5,
	models.ComplexityModerate:    1.0,
	models.ComplexityComplex:     2.0,
	models.ComplexityVeryComplex: 3.0,
}

// ComplexityScore rates a whole message on a 0-10 scale.
// Only the heaviest attachment contributes its weight, so many small files
// cannot outweigh one difficult one.
func ComplexityScore(bodySize int64, attachments []models.AttachmentInfo) float64 {
	score := 0.0

	bodyKB := float64(bodySize) / 1024
	switch {
	case bodyKB < 10:
		score += 0.2
	case bodyKB < 50:
		score += 0.5
	default:
		score += 1.0
	}

	score += math.Min(2.0, float64(len(attachments))*0.5)

	if len(attachments) > 0 {
		heaviest := 0.0
		for _, a := range attachments {
			heaviest = math.Max(heaviest, complexityWeights[a.Complexity])
		}
		score += heaviest
	}

	score += math.Min(2.0, float64(len(models.DistinctFileTypes(attachments)))*0.5)

	var total int64
	for _, a := range attachments {
		total += a.Size
	}
	totalMB := float64(total) / (1024 * 1024)
	if totalMB > 10 {
		score += 0.5
	}
	if totalMB > 50 {
		score += 0.5
	}

	return math.Max(0, math.Min(maxComplexityScore, score))
}

// TotalProcessingTime sums the per-attachment estimates plus fixed overheads
func TotalProcessingTime(attachments []models.AttachmentInfo) time.Duration {
	total := baseProcessingTime
	for _, a := range attachments {
		if a.EstimatedTime != nil {
			total += *a.EstimatedTime
		}
	}
	if len(attachments) > 1 {
		total += time.Duration(len(attachments)) * perAttachmentOverhead
	}
	return total
}

// Hints builds the lightweight advisory list carried on a scan result
func Hints(score float64, attachments []models.AttachmentInfo) []string {
	hints := []string{}

	switch {
	case score < 3:
		hints = append(hints, "Use 'quick' profile for fast processing")
	case score < 6:
		hints = append(hints, "Use 'comprehensive' profile for balanced processing")
	default:
		hints = append(hints, "Use 'ai_ready' profile for optimal AI processing")
	}

	var pdfs, docs, sheets int
	var largePDF, largeDoc bool
	var total int64
	for _, a := range attachments {
		total += a.Size
		switch a.FileType {
		case models.FileTypePDF:
			pdfs++
			if a.SizeMB() > 5 {
				largePDF = true
			}
		case models.FileTypeDOCX:
			docs++
			if a.SizeMB() > 2 {
				largeDoc = true
			}
		case models.FileTypeXLSX:
			sheets++
		}
	}

	if pdfs > 0 {
		hints = append(hints, "Configure OCR API key for PDF text extraction")
		if largePDF {
			hints = append(hints, "Use 'text' PDF mode for large PDFs to reduce OCR cost and time")
		}
	}
	if docs > 0 {
		if largeDoc {
			hints = append(hints, "Enable DOCX chunking for large Word documents")
		} else {
			hints = append(hints, "Enable DOCX image extraction if documents contain figures")
		}
	}
	if sheets > 0 {
		hints = append(hints, "Excel files will be converted to CSV per worksheet")
	}
	if len(attachments) > 5 {
		hints = append(hints, "Many attachments - consider processing them in parallel")
	}
	if float64(total)/(1024*1024) > 50 {
		hints = append(hints, "Large total attachment size - ensure adequate memory")
	}

	return hints
}
