// Package render synthesizes a PDF document from arbitrary print-job
// bytes for virtual PDF targets.
//
// Rendering never fails: decode or layout problems degrade the output
// (readable text -> hex dump -> minimal document) instead of propagating,
// so a job is never lost on this path.
package render

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"
)

const (
	marginLeft  = 100.0
	marginTop   = 72.0
	lineAdvance = 15.0
	dumpAdvance = 12.0
	wrapWidth   = 80

	hexDumpLimit   = 2000
	asciiDumpLimit = 1000
)

// PDF renders the job bytes into a PDF: a header block (length, format
// label, receipt time) followed by either the extracted readable text or
// a hex+ASCII dump. The result is always non-empty valid PDF bytes.
func PDF(data []byte, format string, receivedAt time.Time) []byte {
	doc := newDoc()
	p := &page{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor("")}

	p.setFont("Helvetica", "B", 16)
	p.line("PrinterOne - Print Job")
	p.y += 15

	p.setFont("Helvetica", "", 12)
	p.line(fmt.Sprintf("Data length: %d bytes", len(data)))
	p.line(fmt.Sprintf("Data format: %s", format))
	p.line("Received at: " + receivedAt.Format("2006-01-02 15:04:05"))
	p.y += 25

	if text := ExtractText(data); text != "" {
		p.writeText(text)
	} else {
		p.writeDump(data)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil || buf.Len() == 0 {
		return minimalPDF()
	}
	return buf.Bytes()
}

func newDoc() *fpdf.Fpdf {
	doc := fpdf.New("P", "pt", "Letter", "")
	// Uncompressed streams keep the rendered text grep-able, matching the
	// original's output.
	doc.SetCompression(false)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	return doc
}

type page struct {
	doc     *fpdf.Fpdf
	tr      func(string) string
	y       float64
	advance float64
}

func (p *page) setFont(family, style string, size float64) {
	p.doc.SetFont(family, style, size)
	if p.y == 0 {
		p.y = marginTop
	}
	p.advance = lineAdvance
}

func (p *page) line(s string) {
	_, pageH := p.doc.GetPageSize()
	if p.y > pageH-80 {
		p.doc.AddPage()
		p.y = marginTop
	}
	p.doc.Text(marginLeft, p.y, p.tr(s))
	p.y += p.advance
}

func (p *page) writeText(text string) {
	p.setFont("Helvetica", "B", 14)
	p.line("Content:")
	p.y += 15

	p.setFont("Helvetica", "", 11)
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		if line == "" {
			p.line("")
			continue
		}
		for _, chunk := range wrap(line, wrapWidth) {
			p.line(chunk)
		}
	}
}

func (p *page) writeDump(data []byte) {
	p.setFont("Helvetica", "B", 12)
	p.line("Raw Data (Hex):")
	p.y += 15

	p.setFont("Courier", "", 8)
	p.advance = dumpAdvance
	hexData := hex.EncodeToString(limit(data, hexDumpLimit))
	for _, row := range wrap(hexData, wrapWidth) {
		p.line(groupBytePairs(row))
	}

	p.y += 20
	p.setFont("Helvetica", "B", 12)
	p.line("ASCII representation:")
	p.y += 5

	p.setFont("Courier", "", 8)
	p.advance = dumpAdvance
	ascii := make([]byte, 0, asciiDumpLimit)
	for _, b := range limit(data, asciiDumpLimit) {
		if b >= 32 && b <= 126 {
			ascii = append(ascii, b)
		} else {
			ascii = append(ascii, '.')
		}
	}
	for _, row := range wrap(string(ascii), wrapWidth) {
		p.line(row)
	}
}

// ExtractText decodes the buffer through UTF-8, then Windows-1252, then
// ASCII (both lossy), replacing control characters other than newline,
// carriage return and tab with spaces. It returns "" when no readable
// text survives cleaning.
func ExtractText(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if utf8.Valid(data) {
		return cleanText(string(data))
	}
	if decoded, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
		if s := cleanText(string(decoded)); s != "" {
			return s
		}
	}
	ascii := make([]byte, 0, len(data))
	for _, b := range data {
		if b < 0x80 {
			ascii = append(ascii, b)
		}
	}
	return cleanText(string(ascii))
}

func cleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(r)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(b.String())
}

func wrap(s string, width int) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, len(s)/width+1)
	for len(s) > width {
		out = append(out, s[:width])
		s = s[width:]
	}
	return append(out, s)
}

func groupBytePairs(row string) string {
	var b strings.Builder
	for i := 0; i < len(row); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := i + 2
		if end > len(row) {
			end = len(row)
		}
		b.WriteString(row[i:end])
	}
	return b.String()
}

func limit(data []byte, n int) []byte {
	if len(data) > n {
		return data[:n]
	}
	return data
}

// minimalPDF is the last-resort output: a valid empty single-page
// document built by hand so this path has no failure mode of its own.
func minimalPDF() []byte {
	var b bytes.Buffer
	offsets := make([]int, 4)
	b.WriteString("%PDF-1.4\n")
	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	offsets[2] = b.Len()
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>\nendobj\n")
	start := b.Len()
	b.WriteString("xref\n0 4\n0000000000 65535 f \n")
	for i := 1; i < 4; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", start)
	return b.Bytes()
}
