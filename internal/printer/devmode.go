package printer

import (
	"fmt"

	"printerone/internal/model"
)

// DevMode mirrors the spooler's structured settings record for a device.
// Field values use the Windows DEVMODE codes; other platforms translate
// them to their native option syntax.
type DevMode struct {
	Orientation int16
	Duplex      int16
	PaperSize   int16
	Quality     int16
	Color       int16
}

// DEVMODE field codes, carried as data.
const (
	OrientPortrait  int16 = 1 // DMORIENT_PORTRAIT
	OrientLandscape int16 = 2 // DMORIENT_LANDSCAPE

	DuplexSimplex  int16 = 1 // DMDUP_SIMPLEX
	DuplexLongEdge int16 = 2 // DMDUP_VERTICAL
	DuplexShort    int16 = 3 // DMDUP_HORIZONTAL

	ColorMonochrome int16 = 1 // DMCOLOR_MONOCHROME
	ColorColor      int16 = 2 // DMCOLOR_COLOR
)

var orientationCodes = map[string]int16{
	"portrait":  OrientPortrait,
	"landscape": OrientLandscape,
}

var duplexCodes = map[string]int16{
	"simplex":      DuplexSimplex,
	"duplex_long":  DuplexLongEdge,
	"duplex_short": DuplexShort,
}

var paperSizeCodes = map[string]int16{
	"A3":     8,  // DMPAPER_A3
	"A4":     9,  // DMPAPER_A4
	"A5":     11, // DMPAPER_A5
	"Letter": 1,  // DMPAPER_LETTER
	"Legal":  5,  // DMPAPER_LEGAL
}

var qualityCodes = map[string]int16{
	"draft":  -1, // DMRES_DRAFT
	"normal": -2, // DMRES_MEDIUM
	"high":   -3, // DMRES_HIGH
	"best":   -4, // best available
}

var colorModeCodes = map[string]int16{
	"color":      ColorColor,
	"monochrome": ColorMonochrome,
	"grayscale":  ColorMonochrome, // closest the record can express
}

// FieldResult records the outcome of translating one settings field.
// Settings application is always best-effort: no outcome aborts the job.
type FieldResult struct {
	Field   string
	Value   string
	Outcome string
}

const (
	// OutcomeApplied means the field was written into the device mode.
	OutcomeApplied = "applied"
	// OutcomeDefault means the field was absent; the device default stays.
	OutcomeDefault = "device default"
	// OutcomeUnsupported means the value is outside the known set and was
	// treated as absent.
	OutcomeUnsupported = "unsupported value, using device default"
)

func (r FieldResult) String() string {
	if r.Value == "" {
		return fmt.Sprintf("%s: %s", r.Field, r.Outcome)
	}
	return fmt.Sprintf("%s=%s: %s", r.Field, r.Value, r.Outcome)
}

// Translate overwrites the fields of mode that are present in settings,
// leaving absent or unrecognized values untouched, and reports a result
// per field.
func Translate(mode *DevMode, settings *model.Settings) []FieldResult {
	if settings == nil {
		return nil
	}
	var sink DevMode
	if mode == nil {
		mode = &sink
	}
	results := make([]FieldResult, 0, 5)
	apply := func(field, value string, codes map[string]int16, dst *int16) {
		if value == "" {
			results = append(results, FieldResult{Field: field, Outcome: OutcomeDefault})
			return
		}
		code, ok := codes[value]
		if !ok {
			results = append(results, FieldResult{Field: field, Value: value, Outcome: OutcomeUnsupported})
			return
		}
		*dst = code
		results = append(results, FieldResult{Field: field, Value: value, Outcome: OutcomeApplied})
	}
	apply("orientation", settings.Orientation, orientationCodes, &mode.Orientation)
	apply("duplex", settings.Duplex, duplexCodes, &mode.Duplex)
	apply("paperSize", settings.PaperSize, paperSizeCodes, &mode.PaperSize)
	apply("quality", settings.Quality, qualityCodes, &mode.Quality)
	apply("colorMode", settings.ColorMode, colorModeCodes, &mode.Color)
	return results
}
