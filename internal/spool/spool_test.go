package spool

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSavePDFUsesRawDataNaming(t *testing.T) {
	s := Spool{OutputDir: t.TempDir()}
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)

	path, err := s.SavePDF([]byte("%PDF-1.4 test"), at)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != "raw_data_20250314_092653.pdf" {
		t.Errorf("file name = %q", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "%PDF-1.4 test" {
		t.Errorf("content = %q", data)
	}
}

func TestSaveRawCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "spool")
	s := Spool{Dir: dir}

	path, err := s.SaveRaw([]byte{0x1b, 0x45}, "10.0.0.9:51234", time.Now())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	base := filepath.Base(path)
	if !strings.HasPrefix(base, "job-") || !strings.HasSuffix(base, ".raw") {
		t.Errorf("unexpected name %q", base)
	}
	if strings.Contains(base, ":") {
		t.Errorf("source tag not sanitized: %q", base)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("stat: %v", err)
	}
}

func TestSaveRawWithoutDirFails(t *testing.T) {
	var s Spool
	if _, err := s.SaveRaw([]byte("x"), "local", time.Now()); err == nil {
		t.Fatal("expected an error without a directory")
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":          "report.pdf",
		"../../etc/passwd":    "....etcpasswd",
		`bad:*?"<>|name.txt`:  "badname.txt",
		"":                    "document",
		`\\share\doc.ps`:      "sharedoc.ps",
	}
	for in, want := range cases {
		if got := sanitizeFileName(in); got != want {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
