package printer

import (
	"testing"

	"printerone/internal/model"
)

func TestTranslateAppliesKnownFields(t *testing.T) {
	settings := &model.Settings{
		Orientation: "landscape",
		Duplex:      "duplex_long",
		PaperSize:   "A4",
		Quality:     "draft",
		ColorMode:   "color",
	}
	var mode DevMode
	results := Translate(&mode, settings)
	if len(results) != 5 {
		t.Fatalf("expected 5 field results, got %d", len(results))
	}
	for _, r := range results {
		if r.Outcome != OutcomeApplied {
			t.Errorf("%s: outcome = %q, want applied", r.Field, r.Outcome)
		}
	}
	if mode.Orientation != OrientLandscape {
		t.Errorf("orientation = %d, want %d", mode.Orientation, OrientLandscape)
	}
	if mode.Duplex != DuplexLongEdge {
		t.Errorf("duplex = %d, want %d", mode.Duplex, DuplexLongEdge)
	}
	if mode.PaperSize != 9 {
		t.Errorf("paper size = %d, want 9", mode.PaperSize)
	}
	if mode.Quality != -1 {
		t.Errorf("quality = %d, want -1", mode.Quality)
	}
	if mode.Color != ColorColor {
		t.Errorf("color = %d, want %d", mode.Color, ColorColor)
	}
}

func TestTranslateUnsupportedValueLeavesOthersApplied(t *testing.T) {
	settings := &model.Settings{
		Orientation: "portrait",
		PaperSize:   "Tabloid",
	}
	var mode DevMode
	results := Translate(&mode, settings)

	byField := map[string]FieldResult{}
	for _, r := range results {
		byField[r.Field] = r
	}
	if got := byField["orientation"].Outcome; got != OutcomeApplied {
		t.Errorf("orientation outcome = %q, want applied", got)
	}
	if got := byField["paperSize"].Outcome; got != OutcomeUnsupported {
		t.Errorf("paperSize outcome = %q, want unsupported", got)
	}
	if got := byField["duplex"].Outcome; got != OutcomeDefault {
		t.Errorf("duplex outcome = %q, want device default", got)
	}
	if mode.Orientation != OrientPortrait {
		t.Errorf("orientation = %d, want %d", mode.Orientation, OrientPortrait)
	}
	if mode.PaperSize != 0 {
		t.Errorf("paper size = %d, want untouched 0", mode.PaperSize)
	}
}

func TestTranslateNilArguments(t *testing.T) {
	if results := Translate(&DevMode{}, nil); results != nil {
		t.Errorf("nil settings: got %v, want nil", results)
	}
	// A nil mode still produces per-field results.
	results := Translate(nil, &model.Settings{Orientation: "portrait"})
	if len(results) != 5 {
		t.Fatalf("expected 5 field results, got %d", len(results))
	}
}
