package sniff

import (
	"bytes"
	"strings"
	"testing"
)

func TestClassifyKnownPrefixes(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"pcl-uel", []byte("\x1b%-12345X@PJL\r\n"), FormatPCL},
		{"escp", []byte("\x1bHello"), FormatESCP},
		{"postscript", []byte("%!PS-Adobe-3.0\n"), FormatPostScript},
		{"zpl", []byte("\x02^XA^FDtest^FS^XZ"), FormatZPL},
		{"pdf-magic", []byte("%PDF-1.7\n%binary"), FormatPDF},
		{"office", []byte("PK\x03\x04 something .docx inside"), FormatOffice},
	}
	for _, tc := range cases {
		if got := Classify(tc.data); got != tc.want {
			t.Errorf("%s: Classify = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestClassifyOrderPCLBeforeESCP(t *testing.T) {
	// Both rules match a UEL prefix; PCL must win.
	if got := Classify([]byte("\x1b%-12345X")); got != FormatPCL {
		t.Fatalf("Classify = %q, want %q", got, FormatPCL)
	}
}

func TestClassifyEmpty(t *testing.T) {
	if got := Classify(nil); got != FormatEmpty {
		t.Fatalf("Classify(nil) = %q, want %q", got, FormatEmpty)
	}
	if got := Classify([]byte{}); got != FormatEmpty {
		t.Fatalf("Classify(empty) = %q, want %q", got, FormatEmpty)
	}
}

func TestClassifyText(t *testing.T) {
	got := Classify([]byte("plain text job"))
	if !strings.HasPrefix(got, FormatText) {
		t.Fatalf("Classify = %q, want %q prefix", got, FormatText)
	}
	if !strings.Contains(got, "14 bytes") {
		t.Fatalf("Classify = %q, want byte count annotation", got)
	}
}

func TestClassifyWhitespaceOnlyIsBinary(t *testing.T) {
	// Valid UTF-8 but no printable non-whitespace character.
	got := Classify([]byte(" \n\t\r "))
	if !strings.HasPrefix(got, FormatBinary) {
		t.Fatalf("Classify = %q, want %q prefix", got, FormatBinary)
	}
}

func TestClassifyInvalidUTF8IsBinary(t *testing.T) {
	got := Classify([]byte{0xff, 0xfe, 0x00, 0x91})
	if !strings.HasPrefix(got, FormatBinary) {
		t.Fatalf("Classify = %q, want %q prefix", got, FormatBinary)
	}
}

func TestClassifyPDFOnlyInHead(t *testing.T) {
	// "PDF" beyond the first 100 bytes must not trigger the PDF rule.
	data := append(bytes.Repeat([]byte("a"), 150), []byte("%PDF")...)
	got := Classify(data)
	if got == FormatPDF {
		t.Fatalf("Classify matched PDF outside the first %d bytes", headLen)
	}
}
