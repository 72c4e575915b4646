package server

import (
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"printerone/internal/model"
	"printerone/internal/netutil"
	"printerone/internal/sniff"
)

// State is the listener lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateBinding
	StateListening
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBinding:
		return "binding"
	case StateListening:
		return "listening"
	case StateStopping:
		return "stopping"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// BindError reports that the listen socket could not be acquired, even
// after trying to reclaim the port from its current owner.
type BindError struct {
	Port int
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind port %d: %v", e.Port, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

// acceptPollInterval bounds how long Stop waits for the accept loop to
// notice the shutdown.
const acceptPollInterval = 1 * time.Second

// Listener accepts raw print connections and runs one worker per
// connection. Workers are unbounded; the OS accept queue is the only
// admission control, the same as a hardware JetDirect port.
type Listener struct {
	// Handle is invoked once per completed job, from the connection's
	// worker goroutine. It must be safe for concurrent calls.
	Handle func(model.PrintJob) error

	// InactivityWindow cuts off a silent connection; zero means the
	// 30 second default.
	InactivityWindow time.Duration

	mu    sync.Mutex
	state State
	ln    *net.TCPListener
	stop  chan struct{}
	wg    sync.WaitGroup
}

// State returns the current lifecycle phase.
func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Start binds 0.0.0.0:port and launches the accept loop. When the port
// is occupied its owner is killed and the bind retried once. Start is
// a no-op error when the listener is not idle.
func (l *Listener) Start(port int) error {
	l.mu.Lock()
	if l.state != StateIdle {
		l.mu.Unlock()
		return fmt.Errorf("listener is %s, not idle", l.state)
	}
	l.state = StateBinding
	l.mu.Unlock()

	ln, err := bindPort(port)
	if err != nil {
		l.mu.Lock()
		l.state = StateIdle
		l.mu.Unlock()
		return &BindError{Port: port, Err: err}
	}

	l.mu.Lock()
	l.ln = ln
	l.stop = make(chan struct{})
	l.state = StateListening
	l.mu.Unlock()

	log.Printf("[LISTEN] accepting raw jobs on %s", ln.Addr())
	l.wg.Add(1)
	go l.acceptLoop(ln, l.stop)
	return nil
}

func bindPort(port int) (*net.TCPListener, error) {
	addr := &net.TCPAddr{IP: net.IPv4zero, Port: port}
	ln, err := net.ListenTCP("tcp4", addr)
	if err == nil {
		return ln, nil
	}
	if reclaimed := netutil.FreePort(port); reclaimed > 0 {
		// Give the OS a moment to release the socket.
		time.Sleep(500 * time.Millisecond)
		return net.ListenTCP("tcp4", addr)
	}
	return nil, err
}

// Stop closes the listen socket, waits for the accept loop and all
// in-flight connection workers, then returns the listener to idle.
// Stopping an idle listener is a no-op.
func (l *Listener) Stop() {
	l.mu.Lock()
	if l.state != StateListening {
		l.mu.Unlock()
		return
	}
	l.state = StateStopping
	ln := l.ln
	stop := l.stop
	l.mu.Unlock()

	close(stop)
	_ = ln.Close()
	l.wg.Wait()

	l.mu.Lock()
	l.ln = nil
	l.stop = nil
	l.state = StateIdle
	l.mu.Unlock()
	log.Printf("[LISTEN] stopped")
}

// Addr returns the bound address while listening, nil otherwise.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

func (l *Listener) acceptLoop(ln *net.TCPListener, stop chan struct{}) {
	defer l.wg.Done()
	for {
		select {
		case <-stop:
			return
		default:
		}
		_ = ln.SetDeadline(time.Now().Add(acceptPollInterval))
		conn, err := ln.Accept()
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			select {
			case <-stop:
			default:
				log.Printf("[LISTEN] accept: %v", err)
			}
			return
		}
		l.wg.Add(1)
		go l.serveConn(conn)
	}
}

func (l *Listener) serveConn(conn net.Conn) {
	defer l.wg.Done()
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	log.Printf("[RECV] connection from %s", remote)

	data, err := receiveJob(conn, l.InactivityWindow)
	if err != nil {
		log.Printf("[RECV] %v", err)
		return
	}

	format := sniff.Classify(data)
	log.Printf("[RECV] %s: %d bytes, format: %s", remote, len(data), format)

	job := model.PrintJob{
		Data:       data,
		Source:     remote,
		ReceivedAt: time.Now(),
		Format:     format,
	}
	if l.Handle == nil {
		return
	}
	if err := l.Handle(job); err != nil {
		log.Printf("[JOB] %s: %v", remote, err)
	}
}
