package models

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// FileType is the coarse attachment classification used for conversion dispatch
type FileType int

const (
	FileTypeOther FileType = iota
	FileTypePDF
	FileTypeDOCX
	FileTypeXLSX
	FileTypeImage
	FileTypeText
)

func (t FileType) String() string {
	switch t {
	case FileTypePDF:
		return "pdf"
	case FileTypeDOCX:
		return "docx"
	case FileTypeXLSX:
		return "xlsx"
	case FileTypeImage:
		return "image"
	case FileTypeText:
		return "text"
	default:
		return "other"
	}
}

// MarshalText encodes the file type as its lower-case name
func (t FileType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Complexity is the four-tier ordinal derived from attachment type and size
type Complexity int

const (
	ComplexitySimple Complexity = iota
	ComplexityModerate
	ComplexityComplex
	ComplexityVeryComplex
)

func (c Complexity) String() string {
	switch c {
	case ComplexityModerate:
		return "moderate"
	case ComplexityComplex:
		return "complex"
	case ComplexityVeryComplex:
		return "very_complex"
	default:
		return "simple"
	}
}

// MarshalText encodes the complexity as its lower-case name
func (c Complexity) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Feature is a single content feature tag
type Feature uint8

const (
	FeatureDocument Feature = 1 << iota
	FeatureFormattedText
	FeatureSpreadsheet
	FeatureStructuredData
	FeatureVisualContent
	FeatureImages
)

var featureNames = []struct {
	f    Feature
	name string
}{
	{FeatureDocument, "document"},
	{FeatureFormattedText, "formatted_text"},
	{FeatureSpreadsheet, "spreadsheet"},
	{FeatureStructuredData, "structured_data"},
	{FeatureVisualContent, "visual_content"},
	{FeatureImages, "images"},
}

// FeatureSet is a closed set of feature tags
type FeatureSet uint8

// NewFeatureSet builds a set from the given features
func NewFeatureSet(features ...Feature) FeatureSet {
	var s FeatureSet
	for _, f := range features {
		s |= FeatureSet(f)
	}
	return s
}

// Has reports whether f is in the set
func (s FeatureSet) Has(f Feature) bool {
	return s&FeatureSet(f) != 0
}

// With returns a copy of the set with f added
func (s FeatureSet) With(f Feature) FeatureSet {
	return s | FeatureSet(f)
}

// Strings lists the tag names in declaration order
func (s FeatureSet) Strings() []string {
	names := []string{}
	for _, fn := range featureNames {
		if s.Has(fn.f) {
			names = append(names, fn.name)
		}
	}
	return names
}

func (s FeatureSet) String() string {
	return strings.Join(s.Strings(), ",")
}

// MarshalJSON encodes the set as a list of tag names
func (s FeatureSet) MarshalJSON() ([]byte, error) {
	names := s.Strings()
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = `"` + n + `"`
	}
	return []byte("[" + strings.Join(quoted, ",") + "]"), nil
}

// AttachmentInfo describes one attachment found in a message
type AttachmentInfo struct {
	Filename       string         `json:"filename"`
	ContentType    string         `json:"content_type"`
	Size           int64          `json:"size"`
	FileType       FileType       `json:"file_type"`
	Complexity     Complexity     `json:"complexity"`
	Features       FeatureSet     `json:"features"`
	EstimatedPages *int           `json:"estimated_pages,omitempty"`
	EstimatedTime  *time.Duration `json:"-"`
	Warnings       []string       `json:"warnings"`
}

// MarshalJSON encodes the time estimate as estimated_seconds
func (a AttachmentInfo) MarshalJSON() ([]byte, error) {
	type plain AttachmentInfo
	out := struct {
		plain
		EstimatedSeconds *float64 `json:"estimated_seconds,omitempty"`
	}{plain: plain(a)}
	if a.EstimatedTime != nil {
		secs := a.EstimatedTime.Seconds()
		out.EstimatedSeconds = &secs
	}
	return json.Marshal(out)
}

// SizeMB returns the size in mebibytes
func (a AttachmentInfo) SizeMB() float64 {
	return float64(a.Size) / (1024 * 1024)
}

// Features is the message-level feature map
type Features struct {
	HasText          bool       `json:"has_text"`
	HasHTML          bool       `json:"has_html"`
	HTMLImages       int        `json:"html_images"`
	HTMLLinks        int        `json:"html_links"`
	Charset          string     `json:"charset,omitempty"`
	TransferEncoding string     `json:"transfer_encoding,omitempty"`
	AttachmentTypes  []FileType `json:"attachment_types"`
	AttachmentCount  int        `json:"attachment_count"`
}

// ScanResult is the complete, read-only profile of one scanned message
type ScanResult struct {
	Source          string           `json:"source"`
	Subject         string           `json:"subject"`
	Sender          string           `json:"sender"`
	Date            *time.Time       `json:"date,omitempty"`
	TotalSize       int64            `json:"total_size"`
	BodySize        int64            `json:"body_size"`
	Attachments     []AttachmentInfo `json:"attachments"`
	ComplexityScore float64          `json:"complexity_score"`
	EstimatedTime   time.Duration    `json:"-"`
	Hints           []string         `json:"hints"`
	Warnings        []string         `json:"warnings"`
	Features        Features         `json:"features"`
}

// MarshalJSON encodes the time estimate as estimated_seconds
func (r ScanResult) MarshalJSON() ([]byte, error) {
	type plain ScanResult
	return json.Marshal(struct {
		plain
		EstimatedSeconds float64 `json:"estimated_seconds"`
	}{plain: plain(r), EstimatedSeconds: r.EstimatedTime.Seconds()})
}

// AttachmentsOfType returns the attachments with the given file type, in message order
func (r *ScanResult) AttachmentsOfType(t FileType) []AttachmentInfo {
	var out []AttachmentInfo
	for _, a := range r.Attachments {
		if a.FileType == t {
			out = append(out, a)
		}
	}
	return out
}

// TotalAttachmentSize sums attachment sizes in bytes
func (r *ScanResult) TotalAttachmentSize() int64 {
	var total int64
	for _, a := range r.Attachments {
		total += a.Size
	}
	return total
}

// DistinctFileTypes returns the distinct attachment types in ascending order
func DistinctFileTypes(attachments []AttachmentInfo) []FileType {
	seen := map[FileType]bool{}
	types := []FileType{}
	for _, a := range attachments {
		if !seen[a.FileType] {
			seen[a.FileType] = true
			types = append(types, a.FileType)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
