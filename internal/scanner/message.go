package scanner

import (
	"fmt"
	"strings"

	"github.com/jhillyerd/enmime"
)

// Part is one MIME part as seen by the scanner
type Part struct {
	ContentType      string
	Disposition      string
	FileName         string
	Charset          string
	TransferEncoding string
	// Content is the decoded payload, nil when it could not be decoded
	Content   []byte
	DecodeErr error
}

// IsMultipart reports whether the part is a container
func (p Part) IsMultipart() bool {
	return strings.HasPrefix(strings.ToLower(p.ContentType), "multipart/")
}

// IsAttachment reports whether the part is a named file rather than body content
func (p Part) IsAttachment() bool {
	return p.Disposition != "" && p.FileName != ""
}

// Message is the parsed-message abstraction the scanner works on
type Message interface {
	// Header returns the decoded value of a top-level header, or ""
	Header(name string) string
	// Parts returns every part in depth-first document order, root first
	Parts() []Part
	// Errors returns non-fatal problems found while parsing
	Errors() []string
}

// envelopeMessage adapts an enmime envelope to Message
type envelopeMessage struct {
	env *enmime.Envelope
}

// FromEnvelope wraps a parsed enmime envelope
func FromEnvelope(env *enmime.Envelope) Message {
	return &envelopeMessage{env: env}
}

func (m *envelopeMessage) Header(name string) string {
	return m.env.GetHeader(name)
}

func (m *envelopeMessage) Parts() []Part {
	var parts []Part

	var walk func(p *enmime.Part)
	walk = func(p *enmime.Part) {
		for ; p != nil; p = p.NextSibling {
			parts = append(parts, convertPart(p))
			if p.FirstChild != nil {
				walk(p.FirstChild)
			}
		}
	}
	walk(m.env.Root)

	return parts
}

func (m *envelopeMessage) Errors() []string {
	errs := make([]string, 0, len(m.env.Errors))
	for _, e := range m.env.Errors {
		errs = append(errs, fmt.Sprintf("%s: %s", e.Name, e.Detail))
	}
	return errs
}

func convertPart(p *enmime.Part) Part {
	part := Part{
		ContentType: p.ContentType,
		Disposition: p.Disposition,
		FileName:    p.FileName,
		Charset:     p.Charset,
		Content:     p.Content,
	}
	if p.Header != nil {
		part.TransferEncoding = strings.ToLower(strings.TrimSpace(p.Header.Get("Content-Transfer-Encoding")))
	}

	// enmime keeps the raw bytes when decoding fails and records a severe error
	for _, e := range p.Errors {
		if e.Severe && part.IsAttachment() {
			part.Content = nil
			part.DecodeErr = fmt.Errorf("%s: %s", e.Name, e.Detail)
			break
		}
	}

	return part
}
