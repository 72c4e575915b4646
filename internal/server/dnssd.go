package server

import (
	"log"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/mdns"
	"github.com/miekg/dns"
)

// Advertiser broadcasts the raw print service over DNS-SD so network
// clients can discover it without typing an address. Everything here
// is best effort: advertisement failures never block the listener.
type Advertiser struct {
	zone   *dnssdZone
	server *mdns.Server
}

type dnssdZone struct {
	mu       sync.RWMutex
	services []*mdns.MDNSService
}

func (z *dnssdZone) SetServices(services []*mdns.MDNSService) {
	z.mu.Lock()
	z.services = services
	z.mu.Unlock()
}

func (z *dnssdZone) Records(q dns.Question) []dns.RR {
	z.mu.RLock()
	services := append([]*mdns.MDNSService(nil), z.services...)
	z.mu.RUnlock()

	var out []dns.RR
	for _, svc := range services {
		if svc == nil {
			continue
		}
		out = append(out, svc.Records(q)...)
	}
	return out
}

// StartAdvertiser announces the service on the local network under the
// given instance name and port. A nil Advertiser and nil error means
// mDNS is unavailable on this host; callers carry on without it.
func StartAdvertiser(instance string, port int) (*Advertiser, error) {
	zone := &dnssdZone{}
	server, err := mdns.NewServer(&mdns.Config{Zone: zone, LogEmptyResponses: false})
	if err != nil {
		log.Printf("[DNSSD] unavailable: %v", err)
		return nil, nil
	}

	adv := &Advertiser{zone: zone, server: server}
	adv.zone.SetServices(buildServices(instance, port))
	log.Printf("[DNSSD] advertising %q on port %d", instance, port)
	return adv, nil
}

// Close withdraws the advertisement.
func (a *Advertiser) Close() {
	if a == nil {
		return
	}
	a.zone.SetServices(nil)
	if a.server != nil {
		_ = a.server.Shutdown()
	}
}

func buildServices(instance string, port int) []*mdns.MDNSService {
	instance = strings.TrimSpace(instance)
	if instance == "" {
		instance = "PrinterOne"
	}
	hostName := dnssdHostName()
	txt := []string{"txtvers=1", "qtotal=1", "pdl=application/octet-stream", "note=PrinterOne raw queue"}

	services := []*mdns.MDNSService{}
	if svc, err := mdns.NewMDNSService(instance, "_pdl-datastream._tcp", "local", hostName, port, nil, txt); err == nil {
		services = append(services, svc)
	}
	if svc, err := mdns.NewMDNSService(instance, "_printer._tcp", "local", hostName, 0, nil, nil); err == nil {
		services = append(services, svc)
	}
	return services
}

func dnssdHostName() string {
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		return ""
	}
	host = strings.TrimSpace(host)
	if strings.Contains(host, ".") {
		if !strings.HasSuffix(host, ".") {
			host += "."
		}
		return host
	}
	return host + ".local."
}
