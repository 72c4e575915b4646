package render

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
)

var when = time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)

func TestPDFNeverEmpty(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		[]byte("plain text"),
		{0xff, 0xfe, 0x00, 0x01, 0x91},
		bytes.Repeat([]byte{0x00, 0x1b, 0x7f}, 4000),
	}
	for i, in := range inputs {
		out := PDF(in, "Binary/Unknown format", when)
		if len(out) == 0 {
			t.Fatalf("input %d: empty output", i)
		}
		if !bytes.HasPrefix(out, []byte("%PDF")) {
			t.Fatalf("input %d: output does not start with %%PDF", i)
		}
	}
}

func TestPDFContainsReadableText(t *testing.T) {
	out := PDF([]byte("plain text job"), "Text document (14 bytes)", when)
	// Streams are uncompressed, so the content page carries the literal.
	if !bytes.Contains(out, []byte("plain text job")) {
		t.Fatal("rendered PDF does not contain the job text")
	}
	if !bytes.Contains(out, []byte("Data length: 14 bytes")) {
		t.Fatal("rendered PDF missing the length header")
	}
	if !bytes.Contains(out, []byte("Text document")) {
		t.Fatal("rendered PDF missing the format header")
	}
}

func TestPDFBinaryFallsBackToHexDump(t *testing.T) {
	out := PDF([]byte{0x00, 0x01, 0x02, 0x03}, "Binary/Unknown format (4 bytes)", when)
	if !bytes.Contains(out, []byte("Raw Data")) {
		t.Fatal("rendered PDF missing the hex dump section")
	}
	if !bytes.Contains(out, []byte("00 01 02 03")) {
		t.Fatal("rendered PDF missing grouped hex bytes")
	}
	if !bytes.Contains(out, []byte("ASCII representation")) {
		t.Fatal("rendered PDF missing the ASCII section")
	}
}

func TestPDFLongTextPaginates(t *testing.T) {
	long := strings.Repeat("the quick brown fox jumps over the lazy dog\n", 200)
	out := PDF([]byte(long), "Text document", when)
	m := regexp.MustCompile(`/Count (\d+)`).FindSubmatch(out)
	if m == nil {
		t.Fatal("no page tree /Count entry in output")
	}
	if n, _ := strconv.Atoi(string(m[1])); n < 2 {
		t.Fatalf("page count = %d, want multi-page for long text", n)
	}
}

func TestExtractTextUTF8(t *testing.T) {
	got := ExtractText([]byte("hello\tworld\r\nbye\x00!"))
	if !strings.Contains(got, "hello\tworld") {
		t.Fatalf("ExtractText = %q", got)
	}
	if strings.Contains(got, "\x00") {
		t.Fatalf("control byte survived cleaning: %q", got)
	}
}

func TestExtractTextWindows1252(t *testing.T) {
	// 0x93/0x94 are curly quotes in Windows-1252 and invalid UTF-8.
	got := ExtractText([]byte{0x93, 'h', 'i', 0x94})
	if !strings.Contains(got, "hi") {
		t.Fatalf("ExtractText = %q, want hi", got)
	}
}

func TestExtractTextEmpty(t *testing.T) {
	if got := ExtractText(nil); got != "" {
		t.Fatalf("ExtractText(nil) = %q, want empty", got)
	}
}

func TestMinimalPDFIsValidEnough(t *testing.T) {
	out := minimalPDF()
	if !bytes.HasPrefix(out, []byte("%PDF")) || !bytes.Contains(out, []byte("%%EOF")) {
		t.Fatalf("minimal PDF malformed: %q", out)
	}
}

func TestWrap(t *testing.T) {
	rows := wrap(strings.Repeat("ab", 90), 80)
	if len(rows) != 3 {
		t.Fatalf("wrap rows = %d, want 3", len(rows))
	}
	if len(rows[0]) != 80 || len(rows[1]) != 80 || len(rows[2]) != 20 {
		t.Fatalf("row lengths = %d/%d/%d", len(rows[0]), len(rows[1]), len(rows[2]))
	}
}
