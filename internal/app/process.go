package app

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"printerone/internal/model"
	"printerone/internal/printer"
	"printerone/internal/render"
	"printerone/internal/sniff"
)

// DispatchUploadedFile prints a file handed over by an outer layer
// (GUI upload, CLI). The payload is prepared by extension, then goes
// through the same dispatch path as a network job.
func (m *Manager) DispatchUploadedFile(data []byte, fileName, printerName string, settings *model.Settings) error {
	if printerName == "" {
		m.mu.Lock()
		printerName = m.cfg.PrinterName
		m.mu.Unlock()
	}
	if printerName == "" {
		return fmt.Errorf("no printer selected")
	}

	receivedAt := time.Now()
	format := sniff.Classify(data)
	payload := prepareUpload(data, fileName, format, printerName, receivedAt)
	log.Printf("[UPLOAD] %s (%d bytes, format: %s) to %s", fileName, len(data), format, printerName)

	if printer.IsVirtualPDF(printerName) {
		if path, err := m.spool.SavePDF(payload, receivedAt); err == nil {
			log.Printf("[UPLOAD] wrote %s", path)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()
	err := printer.Dispatch(ctx, payload, printerName, settings)

	job := model.PrintJob{Data: data, Source: "upload:" + fileName, ReceivedAt: receivedAt, Format: format}
	if err != nil {
		m.record(job, printerName, model.JobStatusFailed, err)
		return err
	}
	m.record(job, printerName, model.JobStatusPrinted, nil)
	return nil
}

// prepareUpload converts the file into printable bytes. Text files get
// a filename banner; PDFs pass through; a virtual PDF target converts
// everything else through the rendering fallback.
func prepareUpload(data []byte, fileName, format, printerName string, receivedAt time.Time) []byte {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt", ".log":
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "=== %s ===\r\n\r\n", filepath.Base(fileName))
		buf.Write(data)
		if printer.IsVirtualPDF(printerName) {
			return render.PDF(buf.Bytes(), format, receivedAt)
		}
		return buf.Bytes()
	case ".pdf":
		return data
	default:
		if printer.IsVirtualPDF(printerName) {
			return render.PDF(data, format, receivedAt)
		}
		return data
	}
}
