// Package spool archives job payloads and rendered PDFs on disk.
package spool

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Spool struct {
	// Dir receives raw job payloads kept for troubleshooting.
	Dir string
	// OutputDir receives PDFs produced for virtual printer targets.
	OutputDir string
}

func (s Spool) Ensure() error {
	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0755); err != nil {
			return err
		}
	}
	if s.OutputDir != "" {
		if err := os.MkdirAll(s.OutputDir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// SaveRaw archives one received payload under a timestamped name that
// carries the sanitized source tag, and returns the path written.
func (s Spool) SaveRaw(data []byte, source string, receivedAt time.Time) (string, error) {
	if s.Dir == "" {
		return "", fmt.Errorf("spool: no raw directory configured")
	}
	if err := s.Ensure(); err != nil {
		return "", err
	}
	name := fmt.Sprintf("job-%s-%s.raw", receivedAt.Format("20060102-150405"), sanitizeFileName(source))
	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// SavePDF writes a rendered document into the output directory using
// the raw_data naming the virtual printer workflow expects.
func (s Spool) SavePDF(pdf []byte, receivedAt time.Time) (string, error) {
	if s.OutputDir == "" {
		return "", fmt.Errorf("spool: no output directory configured")
	}
	if err := s.Ensure(); err != nil {
		return "", err
	}
	name := fmt.Sprintf("raw_data_%s.pdf", receivedAt.Format("20060102_150405"))
	path := filepath.Join(s.OutputDir, name)
	if err := os.WriteFile(path, pdf, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func sanitizeFileName(name string) string {
	clean := make([]rune, 0, len(name))
	for _, r := range name {
		if r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|' {
			continue
		}
		clean = append(clean, r)
	}
	if len(clean) == 0 {
		return "document"
	}
	return string(clean)
}
