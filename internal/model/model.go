package model

import "time"

// PrintJob is one payload delimited by a client connection's lifecycle.
// Data is never mutated after the receiver returns it.
type PrintJob struct {
	Data       []byte
	Source     string
	ReceivedAt time.Time
	Format     string
}

// Settings is the abstract print-settings record handed to the dispatcher.
// Every field is optional; an empty or unrecognized value means "use the
// device default" and is never an error.
type Settings struct {
	Orientation string `json:"orientation,omitempty"`
	Duplex      string `json:"duplex,omitempty"`
	PaperSize   string `json:"paperSize,omitempty"`
	Quality     string `json:"quality,omitempty"`
	ColorMode   string `json:"colorMode,omitempty"`
	Copies      int    `json:"copies,omitempty"`
}

// CopyCount returns the effective number of copies, minimum 1.
func (s *Settings) CopyCount() int {
	if s == nil || s.Copies < 1 {
		return 1
	}
	return s.Copies
}

// Job states recorded in the history store.
const (
	JobStatusPrinted = "printed"
	JobStatusFailed  = "failed"
	JobStatusEmpty   = "empty"
)

// JobRecord is one row of the job-history store.
type JobRecord struct {
	ID         int64
	Source     string
	Printer    string
	Format     string
	SizeBytes  int64
	Status     string
	Error      string
	ReceivedAt time.Time
}
