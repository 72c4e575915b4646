// Package logging wires the stdlib logger to a rotating file and fans
// lines out to registered listeners (the GUI console collaborator in the
// desktop build).
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// RotatingFile writes UTF-8 log lines to a file and rotates to "<path>.O"
// when maxSize is reached, keeping a single backup.
type RotatingFile struct {
	path    string
	maxSize int64
	mu      sync.Mutex
	mode    targetMode
}

type targetMode int

const (
	targetFile targetMode = iota
	targetStderr
	targetStdout
	targetDiscard
)

func NewRotatingFile(path string, maxSize int64) *RotatingFile {
	r := &RotatingFile{path: strings.TrimSpace(path), maxSize: maxSize}
	switch strings.ToLower(strings.TrimSpace(path)) {
	case "", "none", "off":
		r.mode = targetDiscard
	case "stderr", "-":
		r.mode = targetStderr
	case "stdout":
		r.mode = targetStdout
	default:
		r.mode = targetFile
	}
	return r
}

func (r *RotatingFile) Write(p []byte) (int, error) {
	if r == nil {
		return len(p), nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.mode {
	case targetDiscard:
		return len(p), nil
	case targetStderr:
		return os.Stderr.Write(p)
	case targetStdout:
		return os.Stdout.Write(p)
	default:
		if err := r.ensureDir(); err != nil {
			return 0, err
		}
		if err := r.rotateIfNeeded(int64(len(p))); err != nil {
			return 0, err
		}
		f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		return f.Write(p)
	}
}

func (r *RotatingFile) ensureDir() error {
	dir := filepath.Dir(r.path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (r *RotatingFile) rotateIfNeeded(next int64) error {
	if r.maxSize <= 0 {
		return nil
	}
	info, err := os.Stat(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Size()+next <= r.maxSize {
		return nil
	}
	oldPath := r.path + ".O"
	_ = os.Remove(oldPath)
	if err := os.Rename(r.path, oldPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

var _ io.Writer = (*RotatingFile)(nil)

// broadcaster tees log writes to the rotating file, stderr, and any
// registered line listeners.
type broadcaster struct {
	mu        sync.Mutex
	file      *RotatingFile
	console   io.Writer
	listeners []func(string)
	partial   []byte
}

var out = &broadcaster{console: os.Stderr}

// Configure points the shared writer at a rotating log file. Call before
// log.SetOutput(ErrorWriter()).
func Configure(path string, maxSize int64) {
	out.mu.Lock()
	out.file = NewRotatingFile(path, maxSize)
	out.mu.Unlock()
}

// ErrorWriter returns the writer the stdlib logger should use.
func ErrorWriter() io.Writer { return out }

// Listen registers a listener invoked once per complete log line, without
// the trailing newline. Listeners run on the logging goroutine and must
// not block.
func Listen(fn func(line string)) {
	if fn == nil {
		return
	}
	out.mu.Lock()
	out.listeners = append(out.listeners, fn)
	out.mu.Unlock()
}

func (b *broadcaster) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.file != nil {
		_, _ = b.file.Write(p)
	}
	if b.console != nil {
		_, _ = b.console.Write(p)
	}
	if len(b.listeners) > 0 {
		b.partial = append(b.partial, p...)
		for {
			i := strings.IndexByte(string(b.partial), '\n')
			if i < 0 {
				break
			}
			line := strings.TrimRight(string(b.partial[:i]), "\r")
			b.partial = b.partial[i+1:]
			for _, fn := range b.listeners {
				fn(line)
			}
		}
	}
	return len(p), nil
}
