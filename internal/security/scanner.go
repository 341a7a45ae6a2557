package security

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"

	clamd "github.com/dutchcoders/go-clamd"
	"github.com/sirupsen/logrus"
)

const defaultClamdAddress = "localhost:3310"

// Scanner provides virus scanning of attachment payloads through ClamAV
type Scanner struct {
	enabled bool
	client  *clamd.Clamd
}

// ScanResult contains the result of a virus scan
type ScanResult struct {
	Scanned  bool
	Infected bool
	Threats  []string
}

// NewScanner creates a new virus scanner. When ClamAV is not available the
// returned scanner is disabled rather than failing.
func NewScanner(enabled bool, clamdAddress string, logger logrus.FieldLogger) (*Scanner, error) {
	if !enabled {
		return &Scanner{enabled: false}, nil
	}

	if clamdAddress == "" {
		clamdAddress = defaultClamdAddress
	}

	if !isClamAVAvailable(clamdAddress) {
		logger.WithField("address", clamdAddress).Warn("ClamAV is not available, disabling virus scanning")
		return &Scanner{enabled: false}, nil
	}

	client := clamd.NewClamd(clamdAddress)

	version, err := client.Version()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClamAV: %w", err)
	}

	for v := range version {
		logger.WithField("version", v.Raw).Debug("Connected to ClamAV")
	}

	return &Scanner{
		enabled: true,
		client:  client,
	}, nil
}

// isClamAVAvailable checks if ClamAV is installed and the daemon is running
func isClamAVAvailable(address string) bool {
	if err := exec.Command("clamscan", "--version").Run(); err != nil {
		return false
	}

	if err := clamd.NewClamd(address).Ping(); err != nil {
		return false
	}

	return true
}

// IsEnabled returns whether the scanner is enabled
func (s *Scanner) IsEnabled() bool {
	return s != nil && s.enabled
}

// ScanBytes scans a byte slice for viruses
func (s *Scanner) ScanBytes(data []byte) (*ScanResult, error) {
	if !s.IsEnabled() {
		return &ScanResult{Scanned: false}, nil
	}

	return s.ScanReader(bytes.NewReader(data))
}

// ScanReader scans an io.Reader for viruses
func (s *Scanner) ScanReader(reader io.Reader) (*ScanResult, error) {
	if !s.IsEnabled() {
		return &ScanResult{Scanned: false}, nil
	}

	result := &ScanResult{
		Scanned: true,
		Threats: []string{},
	}

	scanResults, err := s.client.ScanStream(reader, make(chan bool))
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	for sr := range scanResults {
		if sr.Status == clamd.RES_FOUND {
			result.Infected = true
			result.Threats = append(result.Threats, sr.Description)
		}
	}

	return result, nil
}

// Inspect scans one attachment payload and reports detected threats as warnings
func (s *Scanner) Inspect(filename string, content []byte) ([]string, error) {
	result, err := s.ScanBytes(content)
	if err != nil {
		return nil, fmt.Errorf("virus scan of %s: %w", filename, err)
	}

	warnings := []string{}
	for _, threat := range result.Threats {
		warnings = append(warnings, fmt.Sprintf("Malware detected: %s", threat))
	}
	return warnings, nil
}
