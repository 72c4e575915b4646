package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func pinConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("PRINTERONE_CONFIG", path)
	return path
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	pinConfig(t)
	cfg := Load()
	if cfg.Port != 9100 {
		t.Fatalf("Port = %d, want 9100", cfg.Port)
	}
	if !cfg.UsePDFConversion || cfg.SavePDFFile || !cfg.MinimizeToTray {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Path() != "" {
		t.Fatalf("Path = %q, want empty for in-memory defaults", cfg.Path())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := pinConfig(t)

	cfg := Default()
	name := "X"
	port := 9200
	cfg.Apply(Updates{PrinterName: &name, Port: &port})
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if cfg.Path() != path {
		t.Fatalf("Path = %q, want %q", cfg.Path(), path)
	}

	got := Load()
	if got.PrinterName != "X" || got.Port != 9200 {
		t.Fatalf("round trip = %+v, want printer X port 9200", got)
	}
	if !got.UsePDFConversion || got.SavePDFFile || !got.MinimizeToTray {
		t.Fatalf("other fields not at defaults: %+v", got)
	}
}

func TestLoadFillsMissingKeys(t *testing.T) {
	path := pinConfig(t)
	if err := os.WriteFile(path, []byte(`{"printer_name":"Office"}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := Load()
	if cfg.PrinterName != "Office" {
		t.Fatalf("PrinterName = %q, want Office", cfg.PrinterName)
	}
	if cfg.Port != 9100 {
		t.Fatalf("Port = %d, want default 9100", cfg.Port)
	}
}

func TestUnknownKeysPreserved(t *testing.T) {
	path := pinConfig(t)
	if err := os.WriteFile(path, []byte(`{"port":9105,"service_name":"PrinterOne"}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := Load()
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["service_name"] != "PrinterOne" {
		t.Fatalf("unknown key lost: %v", raw)
	}
	if raw["port"].(float64) != 9105 {
		t.Fatalf("port = %v, want 9105", raw["port"])
	}
}

func TestCorruptFileFallsBackToDefaults(t *testing.T) {
	path := pinConfig(t)
	if err := os.WriteFile(path, []byte(`{not json`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := Load()
	if cfg.Port != 9100 {
		t.Fatalf("Port = %d, want default after corrupt file", cfg.Port)
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "config.json")
	t.Setenv("PRINTERONE_CONFIG", path)

	cfg := Default()
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
}

func TestSaveNoWritablePath(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0500); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Setenv("PRINTERONE_CONFIG", filepath.Join(dir, "sub", "config.json"))

	cfg := Default()
	err := cfg.Save()
	if !errors.Is(err, ErrNoWritablePath) {
		t.Fatalf("Save error = %v, want ErrNoWritablePath", err)
	}
}
