// Package printer delivers job bytes to a named target: a network
// backend for URI-style names (socket://, ipp://, lpd://) or the local
// OS spooler for plain queue names.
//
// Printer access is not serialized here. Concurrent jobs against the
// same device rely on the OS spooler's own queuing.
package printer

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"printerone/internal/model"
)

// Target identifies the device a backend should talk to.
type Target struct {
	// Name is the configured printer name as the operator entered it.
	Name string
	// URI is the parsed form for network targets, nil for spooler queues.
	URI *url.URL
}

// Backend sends one job to a device class identified by URI scheme.
type Backend interface {
	Schemes() []string
	Send(ctx context.Context, target Target, data []byte, settings *model.Settings) error
}

var registry struct {
	sync.RWMutex
	backends []Backend
}

func Register(b Backend) {
	if b == nil {
		return
	}
	registry.Lock()
	registry.backends = append(registry.backends, b)
	registry.Unlock()
}

func forScheme(scheme string) Backend {
	registry.RLock()
	defer registry.RUnlock()
	for _, b := range registry.backends {
		for _, s := range b.Schemes() {
			if strings.EqualFold(s, scheme) {
				return b
			}
		}
	}
	return nil
}

// ParseTarget splits a printer name into a network target or a spooler
// queue name. A name only counts as a URI when it has both a scheme a
// backend knows and a host.
func ParseTarget(name string) Target {
	t := Target{Name: name}
	u, err := url.Parse(name)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return t
	}
	if forScheme(u.Scheme) == nil {
		return t
	}
	t.URI = u
	return t
}

// IsVirtualPDF reports whether the named target is a virtual PDF device,
// inferred from a case-insensitive "pdf" substring in the name.
func IsVirtualPDF(name string) bool {
	return strings.Contains(strings.ToLower(name), "pdf")
}
