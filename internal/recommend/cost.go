package recommend

import (
	"math"

	"emlscout/internal/models"
)

// OCRMode selects what the OCR provider extracts from a PDF
type OCRMode string

const (
	OCRModeText   OCRMode = "text"
	OCRModeImages OCRMode = "images"
	OCRModeAll    OCRMode = "all"
)

const (
	costPerPage  = 0.001
	bytesPerPage = 75 * 1024
)

var ocrMultipliers = map[OCRMode]float64{
	OCRModeText:   0.5,
	OCRModeImages: 1.5,
	OCRModeAll:    1.0,
}

// Multiplier returns the price multiplier of the mode; unknown modes price as "all"
func (m OCRMode) Multiplier() float64 {
	if mult, ok := ocrMultipliers[m]; ok {
		return mult
	}
	return ocrMultipliers[OCRModeAll]
}

// EstimateOCRCost prices OCR for every PDF in attachments, in dollars
func EstimateOCRCost(attachments []models.AttachmentInfo, mode OCRMode) float64 {
	pages := 0
	for _, a := range attachments {
		if a.FileType != models.FileTypePDF {
			continue
		}
		if a.EstimatedPages != nil {
			pages += *a.EstimatedPages
			continue
		}
		pages += int(math.Ceil(float64(a.Size) / bytesPerPage))
	}
	return float64(pages) * costPerPage * mode.Multiplier()
}
