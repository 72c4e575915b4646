// Package app wires the listener, renderer, dispatcher and history
// store together behind one facade the entry points drive.
package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"printerone/internal/config"
	"printerone/internal/model"
	"printerone/internal/printer"
	"printerone/internal/render"
	"printerone/internal/server"
	"printerone/internal/spool"
	"printerone/internal/store"
)

// dispatchTimeout bounds one delivery attempt end to end.
const dispatchTimeout = 2 * time.Minute

type Manager struct {
	mu    sync.Mutex
	cfg   *config.Config
	store *store.Store
	spool spool.Spool

	listener *server.Listener
	adv      *server.Advertiser
}

func New(cfg *config.Config, st *store.Store) *Manager {
	m := &Manager{
		cfg:   cfg,
		store: st,
		spool: spool.Spool{Dir: config.SpoolDir(), OutputDir: config.OutputDir()},
	}
	m.listener = &server.Listener{Handle: m.handleJob}
	return m
}

// Config returns a copy of the current configuration.
func (m *Manager) Config() config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.cfg
}

// UpdateConfig applies a partial update and persists it. The listener
// keeps running on its old port until restarted.
func (m *Manager) UpdateConfig(u config.Updates) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Apply(u)
	return m.cfg.Save()
}

// ListPrinters returns the local spooler's queue names.
func (m *Manager) ListPrinters() ([]string, error) {
	return printer.ListPrinters()
}

// StartListener binds the configured port and begins accepting jobs,
// advertising the service over DNS-SD as a side effect.
func (m *Manager) StartListener() error {
	m.mu.Lock()
	port := m.cfg.Port
	name := m.cfg.PrinterName
	m.mu.Unlock()

	if err := m.listener.Start(port); err != nil {
		return err
	}
	if name == "" {
		name = "PrinterOne"
	}
	adv, err := server.StartAdvertiser(name, port)
	if err != nil {
		log.Printf("[DNSSD] %v", err)
	}
	m.mu.Lock()
	m.adv = adv
	m.mu.Unlock()
	return nil
}

// StopListener stops accepting, waits for in-flight jobs and withdraws
// the DNS-SD advertisement.
func (m *Manager) StopListener() {
	m.mu.Lock()
	adv := m.adv
	m.adv = nil
	m.mu.Unlock()

	adv.Close()
	m.listener.Stop()
}

// ListenerState reports the ingestion lifecycle phase.
func (m *Manager) ListenerState() server.State {
	return m.listener.State()
}

// handleJob runs in the connection worker. Empty jobs are recorded and
// dropped; everything else goes through the print pipeline.
func (m *Manager) handleJob(job model.PrintJob) error {
	m.mu.Lock()
	cfg := *m.cfg
	m.mu.Unlock()

	if len(job.Data) == 0 {
		log.Printf("[JOB] %s: empty job, nothing to print", job.Source)
		m.record(job, cfg.PrinterName, model.JobStatusEmpty, nil)
		return nil
	}

	err := m.printJob(job, cfg)
	if err != nil {
		// Keep the payload around so a failed job can be resent by hand.
		if path, saveErr := m.spool.SaveRaw(job.Data, job.Source, job.ReceivedAt); saveErr == nil {
			log.Printf("[JOB] payload kept at %s", path)
		}
		m.record(job, cfg.PrinterName, model.JobStatusFailed, err)
		return err
	}
	m.record(job, cfg.PrinterName, model.JobStatusPrinted, nil)
	return nil
}

// printJob delivers one job: virtual PDF targets get a rendered
// document, physical targets get the raw bytes. The rendered PDF is
// additionally archived when save_pdf_file is on.
func (m *Manager) printJob(job model.PrintJob, cfg config.Config) error {
	if cfg.PrinterName == "" {
		return fmt.Errorf("no printer configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	data := job.Data
	if printer.IsVirtualPDF(cfg.PrinterName) && cfg.UsePDFConversion {
		pdf := render.PDF(job.Data, job.Format, job.ReceivedAt)
		if path, err := m.spool.SavePDF(pdf, job.ReceivedAt); err != nil {
			log.Printf("[PDF] archive failed: %v", err)
		} else {
			log.Printf("[PDF] rendered %d bytes to %s", len(pdf), path)
		}
		data = pdf
	} else if cfg.SavePDFFile {
		pdf := render.PDF(job.Data, job.Format, job.ReceivedAt)
		if path, err := m.spool.SavePDF(pdf, job.ReceivedAt); err != nil {
			log.Printf("[PDF] archive failed: %v", err)
		} else {
			log.Printf("[PDF] archived copy at %s", path)
		}
	}

	return printer.Dispatch(ctx, data, cfg.PrinterName, nil)
}

func (m *Manager) record(job model.PrintJob, printerName, status string, jobErr error) {
	if m.store == nil {
		return
	}
	rec := model.JobRecord{
		Source:     job.Source,
		Printer:    printerName,
		Format:     job.Format,
		SizeBytes:  int64(len(job.Data)),
		Status:     status,
		ReceivedAt: job.ReceivedAt,
	}
	if jobErr != nil {
		rec.Error = jobErr.Error()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := m.store.RecordJob(ctx, rec); err != nil {
		log.Printf("[HISTORY] record failed: %v", err)
	}
}

// History returns the newest job records.
func (m *Manager) History(ctx context.Context, limit int) ([]model.JobRecord, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.ListRecent(ctx, limit)
}
