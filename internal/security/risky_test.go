package security

import (
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestIsRisky(t *testing.T) {
	cases := []struct {
		name     string
		expected bool
	}{
		{"payload.exe", true},
		{"SCREEN.SCR", true},
		{"run.bat", true},
		{"archive.com", true},
		{"shortcut.pif", true},
		{"setup.cmd", true},
		{"report.pdf", false},
		{"exe", false},
		{"notes.exe.txt", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRisky(tc.name); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestRiskyFiles(t *testing.T) {
	got := RiskyFiles([]string{"a.pdf", "b.exe", "c.docx", "d.bat"})
	if !reflect.DeepEqual(got, []string{"b.exe", "d.bat"}) {
		t.Fatalf("unexpected risky files %v", got)
	}
}

func TestDisabledScannerInspectsNothing(t *testing.T) {
	s, err := NewScanner(false, "", logrus.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.IsEnabled() {
		t.Fatalf("expected disabled scanner")
	}
	warnings, err := s.Inspect("a.exe", []byte("MZ"))
	if err != nil || len(warnings) != 0 {
		t.Fatalf("expected no findings, got %v, %v", warnings, err)
	}
}
