// Package server owns the raw TCP ingestion side: a JetDirect-style
// listener where one connection carries exactly one job and the job
// ends when the client closes its half of the connection.
package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// defaultInactivityWindow is how long a connection may sit without
// delivering a byte before the job is cut off at whatever was read so
// far.
const defaultInactivityWindow = 30 * time.Second

// readChunk matches the receive buffer most PCL drivers fill per write.
const readChunk = 32 * 1024

// TransientIOError reports a mid-job read failure. The partial data is
// discarded; the connection's client is expected to resend.
type TransientIOError struct {
	Remote string
	Err    error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("receive from %s: %v", e.Remote, e.Err)
}

func (e *TransientIOError) Unwrap() error { return e.Err }

// receiveJob drains one connection into memory. A clean EOF or a client
// reset after data was received both end the job normally; a stalled
// connection past the inactivity window yields the bytes read so far.
func receiveJob(conn net.Conn, window time.Duration) ([]byte, error) {
	if window <= 0 {
		window = defaultInactivityWindow
	}
	remote := conn.RemoteAddr().String()
	var buf bytes.Buffer
	chunk := make([]byte, readChunk)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(window))
		n, err := conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err == nil {
			continue
		}
		if err == io.EOF {
			return buf.Bytes(), nil
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			// Stalled client. Treat what arrived as the whole job.
			return buf.Bytes(), nil
		}
		if buf.Len() > 0 && errors.Is(err, net.ErrClosed) {
			return buf.Bytes(), nil
		}
		return nil, &TransientIOError{Remote: remote, Err: err}
	}
}
