package printer

import (
	"context"
	"errors"
	"log"

	"printerone/internal/model"
)

// Dispatch sends job data to the named printer. URI-style names go
// through the matching network backend; plain names go to the local
// spooler. Settings are applied best-effort and logged field by field.
// Delivery failures surface as DeviceError and are never retried.
func Dispatch(ctx context.Context, data []byte, printerName string, settings *model.Settings) error {
	if printerName == "" {
		return deviceErr("", "dispatch", errors.New("no printer selected"))
	}

	for _, r := range Translate(nil, settings) {
		log.Printf("[SETTINGS] %s: %s", printerName, r)
	}

	target := ParseTarget(printerName)
	if target.URI != nil {
		b := forScheme(target.URI.Scheme)
		log.Printf("[DISPATCH] %s via %s backend, %d bytes", printerName, target.URI.Scheme, len(data))
		return b.Send(ctx, target, data, settings)
	}

	log.Printf("[DISPATCH] %s via system spooler, %d bytes", printerName, len(data))
	return spoolerSend(ctx, printerName, data, settings)
}

// ListPrinters returns the queue names known to the local spooler.
func ListPrinters() ([]string, error) {
	return spoolerList()
}
