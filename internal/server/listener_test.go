package server

import (
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"printerone/internal/model"
)

func startTestListener(t *testing.T, handle func(model.PrintJob) error) (*Listener, string) {
	t.Helper()
	// Bind an ephemeral port first so the test never fights another
	// process for 9100.
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("probe listen: %v", err)
	}
	port := probe.Addr().(*net.TCPAddr).Port
	probe.Close()

	l := &Listener{Handle: handle}
	if err := l.Start(port); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(l.Stop)
	return l, net.JoinHostPort("127.0.0.1", strconv.Itoa(l.Addr().(*net.TCPAddr).Port))
}

func sendJob(t *testing.T, addr string, data []byte) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if _, err := conn.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.Close()
}

func TestListenerDeliversJobOnConnectionClose(t *testing.T) {
	jobs := make(chan model.PrintJob, 1)
	_, addr := startTestListener(t, func(j model.PrintJob) error {
		jobs <- j
		return nil
	})

	sendJob(t, addr, []byte("\x1bHello printer"))

	select {
	case job := <-jobs:
		if string(job.Data) != "\x1bHello printer" {
			t.Errorf("data = %q", job.Data)
		}
		if !strings.Contains(job.Format, "ESC/P") {
			t.Errorf("format = %q, want ESC/P classification", job.Format)
		}
		if job.Source == "" {
			t.Error("source is empty")
		}
		if job.ReceivedAt.IsZero() {
			t.Error("receive time is zero")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("job never delivered")
	}
}

func TestListenerDeliversEmptyJob(t *testing.T) {
	jobs := make(chan model.PrintJob, 1)
	_, addr := startTestListener(t, func(j model.PrintJob) error {
		jobs <- j
		return nil
	})

	sendJob(t, addr, nil)

	select {
	case job := <-jobs:
		if len(job.Data) != 0 {
			t.Errorf("expected zero bytes, got %d", len(job.Data))
		}
	case <-time.After(10 * time.Second):
		t.Fatal("empty job never delivered")
	}
}

func TestListenerConcurrentConnectionsDoNotInterleave(t *testing.T) {
	var mu sync.Mutex
	got := map[string]bool{}
	done := make(chan struct{}, 2)
	_, addr := startTestListener(t, func(j model.PrintJob) error {
		mu.Lock()
		got[string(j.Data)] = true
		mu.Unlock()
		done <- struct{}{}
		return nil
	})

	payloadA := strings.Repeat("A", 64*1024)
	payloadB := strings.Repeat("B", 64*1024)

	var wg sync.WaitGroup
	for _, p := range []string{payloadA, payloadB} {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
			if err != nil {
				t.Errorf("dial: %v", err)
				return
			}
			for sent := 0; sent < len(p); {
				end := sent + 8192
				if end > len(p) {
					end = len(p)
				}
				if _, err := conn.Write([]byte(p[sent:end])); err != nil {
					t.Errorf("write: %v", err)
					break
				}
				sent = end
			}
			conn.Close()
		}(p)
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Fatal("jobs never delivered")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if !got[payloadA] || !got[payloadB] {
		t.Error("payloads were not delivered intact")
	}
}

func TestListenerLifecycle(t *testing.T) {
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("probe listen: %v", err)
	}
	port := probe.Addr().(*net.TCPAddr).Port
	probe.Close()

	l := &Listener{}
	if got := l.State(); got != StateIdle {
		t.Fatalf("initial state = %s, want idle", got)
	}
	if err := l.Start(port); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := l.State(); got != StateListening {
		t.Fatalf("state after start = %s, want listening", got)
	}
	if err := l.Start(port); err == nil {
		t.Fatal("second start should fail while listening")
	}
	l.Stop()
	if got := l.State(); got != StateIdle {
		t.Fatalf("state after stop = %s, want idle", got)
	}
	// Stop on an idle listener is a no-op.
	l.Stop()
	if err := l.Start(port); err != nil {
		t.Fatalf("restart: %v", err)
	}
	l.Stop()
}
