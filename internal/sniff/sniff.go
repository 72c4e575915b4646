// Package sniff classifies raw print payloads by byte signature.
//
// Classification is advisory: it feeds logs and the PDF rendering header
// and never blocks dispatch.
package sniff

import (
	"bytes"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Format labels returned by Classify. Labels carrying a byte count are
// produced with the same prefix plus " (N bytes)".
const (
	FormatEmpty      = "Empty data"
	FormatPCL        = "PCL (HP)"
	FormatESCP       = "ESC/P (Epson)"
	FormatPostScript = "PostScript"
	FormatZPL        = "ZPL (Zebra)"
	FormatPDF        = "PDF document"
	FormatOffice     = "Microsoft Office document"
	FormatText       = "Text document"
	FormatBinary     = "Binary/Unknown format"
)

// headLen bounds substring searches; prefix rules look only at the start.
const headLen = 100

type rule struct {
	label string
	match func(data []byte) bool
}

// Rules are evaluated top to bottom; order matters because inputs can
// match several signatures (a PCL UEL starts with the ESC byte).
var rules = []rule{
	{FormatPCL, func(d []byte) bool { return bytes.HasPrefix(d, []byte("\x1b%-12345X")) }},
	{FormatESCP, func(d []byte) bool { return len(d) > 0 && d[0] == 0x1b }},
	{FormatPostScript, func(d []byte) bool { return bytes.HasPrefix(d, []byte("%!PS")) }},
	{FormatZPL, func(d []byte) bool { return len(d) > 0 && d[0] == 0x02 }},
	{FormatPDF, func(d []byte) bool { return bytes.Contains(head(d), []byte("%PDF")) || bytes.Contains(head(d), []byte("PDF")) }},
	{FormatOffice, func(d []byte) bool {
		return bytes.Contains(d, []byte("Microsoft Office")) ||
			bytes.Contains(d, []byte("Word")) ||
			bytes.Contains(d, []byte(".docx")) ||
			bytes.Contains(d, []byte(".doc"))
	}},
}

func head(d []byte) []byte {
	if len(d) > headLen {
		return d[:headLen]
	}
	return d
}

// Classify maps a byte buffer to a format label. Empty input gets its own
// label independent of the rule list.
func Classify(data []byte) string {
	if len(data) == 0 {
		return FormatEmpty
	}
	for _, r := range rules {
		if r.match(data) {
			return r.label
		}
	}
	if looksLikeText(data) {
		return fmt.Sprintf("%s (%d bytes)", FormatText, len(data))
	}
	return fmt.Sprintf("%s (%d bytes)", FormatBinary, len(data))
}

// looksLikeText reports whether the buffer decodes as UTF-8 and the first
// 200 characters contain at least one printable non-whitespace rune.
func looksLikeText(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	n := 0
	for _, r := range string(data) {
		if n >= 200 {
			break
		}
		n++
		if unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}
