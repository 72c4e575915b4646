// Package config loads and saves the server configuration.
//
// The configuration is a small JSON object tried against an ordered list
// of candidate locations for both load and save; the first location that
// works wins and is remembered for subsequent saves. Unknown keys are
// preserved across a load/save cycle so that collaborating layers (GUI,
// installer) can keep their own fields in the same file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "PrinterOne"

// ErrNoWritablePath is returned by Save when every candidate location
// fails. The caller keeps running with the in-memory configuration.
var ErrNoWritablePath = errors.New("config: no writable location")

type Config struct {
	PrinterName      string
	Port             int
	UsePDFConversion bool
	SavePDFFile      bool
	MinimizeToTray   bool

	// extra holds JSON keys this version does not know about.
	extra map[string]json.RawMessage
	// path is the location of the last successful read or write.
	path string
}

func Default() *Config {
	return &Config{
		Port:             9100,
		UsePDFConversion: true,
		SavePDFFile:      false,
		MinimizeToTray:   true,
	}
}

// Updates carries the optional fields of a partial save; nil means
// "leave unchanged".
type Updates struct {
	PrinterName      *string
	Port             *int
	UsePDFConversion *bool
	SavePDFFile      *bool
	MinimizeToTray   *bool
}

func (c *Config) Apply(u Updates) {
	if u.PrinterName != nil {
		c.PrinterName = *u.PrinterName
	}
	if u.Port != nil {
		c.Port = *u.Port
	}
	if u.UsePDFConversion != nil {
		c.UsePDFConversion = *u.UsePDFConversion
	}
	if u.SavePDFFile != nil {
		c.SavePDFFile = *u.SavePDFFile
	}
	if u.MinimizeToTray != nil {
		c.MinimizeToTray = *u.MinimizeToTray
	}
}

// Path returns the config file location currently in use, or "" when the
// configuration only exists in memory.
func (c *Config) Path() string { return c.path }

// CandidatePaths lists the locations tried for load and save, in
// preference order. PRINTERONE_CONFIG pins a single location.
func CandidatePaths() []string {
	if p := os.Getenv("PRINTERONE_CONFIG"); p != "" {
		return []string{p}
	}
	paths := []string{"config.json"}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths, filepath.Join(home, appDirName, "config.json"))
	}
	if conf, err := os.UserConfigDir(); err == nil && conf != "" {
		paths = append(paths, filepath.Join(conf, appDirName, "config.json"))
	}
	paths = append(paths, filepath.Join(os.TempDir(), appDirName, "config.json"))
	return paths
}

// Load reads the first readable candidate location. Missing keys are
// filled from defaults; a missing or unreadable file is not an error and
// yields the defaults.
func Load() *Config {
	cfg := Default()
	for _, path := range CandidatePaths() {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := cfg.UnmarshalJSON(data); err != nil {
			// Corrupt file; keep trying other locations.
			*cfg = *Default()
			continue
		}
		cfg.path = path
		return cfg
	}
	return cfg
}

// Save writes the configuration, preferring the location it was loaded
// from and falling back through the candidate list. Writes go through a
// temp file and rename so a concurrent load never sees a partial file.
func (c *Config) Save() error {
	data, err := c.MarshalJSON()
	if err != nil {
		return err
	}
	paths := CandidatePaths()
	if c.path != "" {
		paths = append([]string{c.path}, paths...)
	}
	var lastErr error
	for _, path := range paths {
		if err := writeFileAtomic(path, data); err != nil {
			lastErr = err
			continue
		}
		c.path = path
		return nil
	}
	return fmt.Errorf("%w: %v", ErrNoWritablePath, lastErr)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (c *Config) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	takeString := func(key string, dst *string) {
		if v, ok := raw[key]; ok {
			var s string
			if json.Unmarshal(v, &s) == nil {
				*dst = s
			}
			delete(raw, key)
		}
	}
	takeInt := func(key string, dst *int) {
		if v, ok := raw[key]; ok {
			var n int
			if json.Unmarshal(v, &n) == nil {
				*dst = n
			}
			delete(raw, key)
		}
	}
	takeBool := func(key string, dst *bool) {
		if v, ok := raw[key]; ok {
			var b bool
			if json.Unmarshal(v, &b) == nil {
				*dst = b
			}
			delete(raw, key)
		}
	}
	takeString("printer_name", &c.PrinterName)
	takeInt("port", &c.Port)
	takeBool("use_pdf_conversion", &c.UsePDFConversion)
	takeBool("save_pdf_file", &c.SavePDFFile)
	takeBool("minimize_to_tray", &c.MinimizeToTray)
	if len(raw) > 0 {
		c.extra = raw
	}
	return nil
}

func (c *Config) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	for k, v := range c.extra {
		out[k] = v
	}
	out["printer_name"] = c.PrinterName
	out["port"] = c.Port
	out["use_pdf_conversion"] = c.UsePDFConversion
	out["save_pdf_file"] = c.SavePDFFile
	out["minimize_to_tray"] = c.MinimizeToTray
	return json.MarshalIndent(out, "", "    ")
}

// Runtime locations, overridable by environment like the rest of the
// deployment knobs.

func DataDir() string { return getenv("PRINTERONE_DATA_DIR", "data") }

func DBPath() string {
	return getenv("PRINTERONE_DB_PATH", filepath.Join(DataDir(), "printerone.db"))
}

func OutputDir() string {
	return getenv("PRINTERONE_OUTPUT_DIR", filepath.Join(DataDir(), "printed"))
}

func SpoolDir() string {
	return getenv("PRINTERONE_SPOOL_DIR", filepath.Join(DataDir(), "spool"))
}

func LogPath() string {
	return getenv("PRINTERONE_LOG", filepath.Join("logs", "printerone.log"))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
