package printer

import "fmt"

// DeviceError reports a failure talking to the printer device (open,
// write, close). Jobs failing with a DeviceError are dropped and never
// retried by the server; retry is the sending client's responsibility.
type DeviceError struct {
	Printer string
	Op      string
	Err     error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("printer %q: %s: %v", e.Printer, e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

func deviceErr(printer, op string, err error) error {
	return &DeviceError{Printer: printer, Op: op, Err: err}
}
