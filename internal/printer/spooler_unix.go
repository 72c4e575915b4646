//go:build !windows

package printer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"printerone/internal/model"
)

// spoolerSend hands the job to CUPS through lp. The data goes in raw;
// settings translate to -o job options where CUPS has an equivalent.
func spoolerSend(ctx context.Context, name string, data []byte, settings *model.Settings) error {
	lp, err := exec.LookPath("lp")
	if err != nil {
		return deviceErr(name, "spool", errors.New("lp not found in PATH"))
	}

	args := []string{"-d", name, "-n", fmt.Sprint(settings.CopyCount())}
	for _, opt := range lpOptions(settings) {
		args = append(args, "-o", opt)
	}

	cmd := exec.CommandContext(ctx, lp, args...)
	cmd.Stdin = bytes.NewReader(data)
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = err.Error()
		}
		return deviceErr(name, "spool", errors.New(msg))
	}
	return nil
}

func lpOptions(settings *model.Settings) []string {
	var opts []string
	if settings == nil {
		return opts
	}
	if settings.Orientation == "landscape" {
		opts = append(opts, "landscape")
	}
	if s, ok := map[string]string{
		"simplex":      "sides=one-sided",
		"duplex_long":  "sides=two-sided-long-edge",
		"duplex_short": "sides=two-sided-short-edge",
	}[settings.Duplex]; ok {
		opts = append(opts, s)
	}
	if settings.PaperSize != "" {
		if _, ok := paperSizeCodes[settings.PaperSize]; ok {
			opts = append(opts, "media="+settings.PaperSize)
		}
	}
	if n, ok := map[string]int{"draft": 3, "normal": 4, "high": 5, "best": 5}[settings.Quality]; ok {
		opts = append(opts, fmt.Sprintf("print-quality=%d", n))
	}
	if settings.ColorMode == "monochrome" || settings.ColorMode == "grayscale" {
		opts = append(opts, "print-color-mode=monochrome")
	}
	return opts
}

// spoolerList asks CUPS for the configured queues.
func spoolerList() ([]string, error) {
	lpstat, err := exec.LookPath("lpstat")
	if err != nil {
		return nil, errors.New("lpstat not found in PATH")
	}

	// -e lists every visible destination, one name per line.
	out, err := exec.Command(lpstat, "-e").Output()
	if err != nil {
		// Older lpstat has no -e; fall back to parsing -a.
		out, err = exec.Command(lpstat, "-a").Output()
		if err != nil {
			return nil, fmt.Errorf("lpstat: %w", err)
		}
		var names []string
		for _, line := range strings.Split(string(out), "\n") {
			fields := strings.Fields(line)
			if len(fields) > 0 {
				names = append(names, fields[0])
			}
		}
		return names, nil
	}

	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}
