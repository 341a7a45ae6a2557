package scanner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"

	"emlscout/internal/models"
)

var (
	// ErrNotFound is returned when the message source does not exist
	ErrNotFound = errors.New("message source not found")
	// ErrInvalidFormat is returned when the source cannot be parsed as a message
	ErrInvalidFormat = errors.New("invalid message format")
)

// Inspector performs additional per-attachment checks, such as virus scanning.
// Returned strings are added to the attachment's warnings.
type Inspector interface {
	Inspect(filename string, content []byte) ([]string, error)
}

// Scanner profiles messages and their attachments
type Scanner struct {
	inspector Inspector
}

// NewScanner creates a scanner; inspector may be nil
func NewScanner(inspector Inspector) *Scanner {
	return &Scanner{inspector: inspector}
}

// Scan reads and profiles the EML file at path
func (s *Scanner) Scan(path string) (*models.ScanResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidFormat, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open eml file: %w", err)
	}
	defer file.Close()

	envelope, err := enmime.ReadEnvelope(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}
	if isEmptyEnvelope(envelope) {
		return nil, fmt.Errorf("%w: %s: no headers or content", ErrInvalidFormat, path)
	}

	result := s.ScanMessage(path, FromEnvelope(envelope))
	result.TotalSize = info.Size()
	return result, nil
}

// ScanReader parses and profiles a message read from r
func (s *Scanner) ScanReader(id string, r io.Reader) (*models.ScanResult, error) {
	counter := &countingReader{r: r}
	envelope, err := enmime.ReadEnvelope(counter)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, id, err)
	}
	if isEmptyEnvelope(envelope) {
		return nil, fmt.Errorf("%w: %s: no headers or content", ErrInvalidFormat, id)
	}

	result := s.ScanMessage(id, FromEnvelope(envelope))
	result.TotalSize = counter.n
	return result, nil
}

// ScanMessage profiles an already parsed message. It never fails; problems
// with individual attachments degrade that attachment only.
func (s *Scanner) ScanMessage(id string, msg Message) *models.ScanResult {
	result := &models.ScanResult{
		Source:      id,
		Subject:     msg.Header("Subject"),
		Sender:      msg.Header("From"),
		Attachments: []models.AttachmentInfo{},
		Warnings:    []string{},
	}

	if raw := msg.Header("Date"); raw != "" {
		if t, err := mail.ParseDate(raw); err == nil {
			result.Date = &t
		}
	}

	for _, e := range msg.Errors() {
		result.Warnings = append(result.Warnings, "Parse problem: "+e)
	}

	var totalSize int64
	parts := msg.Parts()
	for i, part := range parts {
		if part.IsMultipart() {
			if i == 0 {
				recordEncoding(&result.Features, part)
			}
			continue
		}

		if !part.IsAttachment() {
			if i == 0 {
				recordEncoding(&result.Features, part)
			}
			n := recordBody(&result.Features, part)
			result.BodySize += n
			totalSize += n
			continue
		}

		att := s.analyzeAttachment(part)
		totalSize += att.Size
		for _, w := range att.Warnings {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", att.Filename, w))
		}
		result.Attachments = append(result.Attachments, att)
	}

	if result.Features.Charset == "" || result.Features.TransferEncoding == "" {
		for _, part := range parts {
			if part.IsMultipart() || part.IsAttachment() || !isBodyType(part.ContentType) {
				continue
			}
			if result.Features.Charset == "" {
				result.Features.Charset = strings.ToLower(part.Charset)
			}
			if result.Features.TransferEncoding == "" {
				result.Features.TransferEncoding = part.TransferEncoding
			}
			break
		}
	}

	result.Features.AttachmentTypes = models.DistinctFileTypes(result.Attachments)
	result.Features.AttachmentCount = len(result.Attachments)
	result.TotalSize = totalSize
	result.ComplexityScore = ComplexityScore(result.BodySize, result.Attachments)
	result.EstimatedTime = TotalProcessingTime(result.Attachments)
	result.Hints = Hints(result.ComplexityScore, result.Attachments)

	return result
}

// analyzeAttachment builds the attachment profile. Any failure, including a
// panicking inspector, leaves a degraded record with size 0 and no page estimate.
func (s *Scanner) analyzeAttachment(part Part) (info models.AttachmentInfo) {
	fileType := ClassifyFileType(part.FileName)
	info = models.AttachmentInfo{
		Filename:    part.FileName,
		ContentType: part.ContentType,
		FileType:    fileType,
		Features:    FeaturesFor(fileType),
		Warnings:    []string{},
	}

	defer func() {
		if r := recover(); r != nil {
			info = degraded(info, fmt.Errorf("analysis failed: %v", r))
		}
	}()

	if part.Content == nil {
		err := part.DecodeErr
		if err == nil {
			err = errors.New("payload could not be decoded")
		}
		return degraded(info, err)
	}

	info.Size = int64(len(part.Content))
	info.Complexity = ClassifyComplexity(fileType, info.Size)
	est := EstimateProcessingTime(fileType, info.Size)
	info.EstimatedTime = &est
	if fileType == models.FileTypePDF {
		pages := EstimatePDFPages(info.Size)
		info.EstimatedPages = &pages
	}
	info.Warnings = append(info.Warnings, attachmentWarnings(part.FileName, fileType, info.Size)...)

	if s.inspector != nil {
		findings, err := s.inspector.Inspect(part.FileName, part.Content)
		if err != nil {
			info.Warnings = append(info.Warnings, fmt.Sprintf("Inspection failed: %v", err))
		}
		info.Warnings = append(info.Warnings, findings...)
	}

	return info
}

func degraded(info models.AttachmentInfo, cause error) models.AttachmentInfo {
	info.Size = 0
	info.Complexity = ClassifyComplexity(info.FileType, 0)
	info.EstimatedPages = nil
	est := EstimateProcessingTime(info.FileType, 0)
	info.EstimatedTime = &est
	info.Warnings = append(info.Warnings, fmt.Sprintf("Could not analyze attachment: %v", cause))
	return info
}

func recordEncoding(f *models.Features, part Part) {
	f.Charset = strings.ToLower(part.Charset)
	f.TransferEncoding = part.TransferEncoding
}

func isBodyType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return ct == "" || ct == "text/plain" || ct == "text/html"
}

// recordBody updates body features and returns the body part size
func recordBody(f *models.Features, part Part) int64 {
	switch strings.ToLower(part.ContentType) {
	case "", "text/plain":
		f.HasText = true
	case "text/html":
		f.HasHTML = true
		images, links := inspectHTML(part.Content)
		f.HTMLImages += images
		f.HTMLLinks += links
	default:
		return 0
	}
	return int64(len(part.Content))
}

// inspectHTML counts embedded images and hyperlinks in an HTML body
func inspectHTML(content []byte) (images, links int) {
	if len(content) == 0 {
		return 0, 0
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(content)))
	if err != nil {
		return 0, 0
	}
	images = doc.Find("img").Length()
	links = doc.Find("a[href]").Length()
	return images, links
}

// isEmptyEnvelope reports whether parsing found neither headers nor any content
func isEmptyEnvelope(env *enmime.Envelope) bool {
	root := env.Root
	if root == nil {
		return true
	}
	return len(root.Header) == 0 && len(bytes.TrimSpace(root.Content)) == 0 && root.FirstChild == nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
