// Package netutil holds the network helpers the listener depends on:
// outbound-address discovery for operator display and TCP port
// reclamation before bind.
package netutil

import (
	"net"
	"os"
	"strings"
)

// probeAddr is only dialed with UDP; no packet is ever sent.
const probeAddr = "8.8.8.8:80"

// BestLocalAddress returns the address other machines should use to
// reach this host. It tries the outbound-socket trick, then an interface
// scan, then hostname resolution, and falls back to loopback so it
// always terminates. Advisory display information only.
func BestLocalAddress() string {
	if conn, err := net.Dial("udp", probeAddr); err == nil {
		addr, ok := conn.LocalAddr().(*net.UDPAddr)
		conn.Close()
		if ok && usableIP(addr.IP) {
			return addr.IP.String()
		}
	}
	if ip := scanInterfaces(); ip != "" {
		return ip
	}
	if host, err := os.Hostname(); err == nil {
		if addrs, err := net.LookupHost(host); err == nil {
			for _, a := range addrs {
				if ip := net.ParseIP(a); usableIP(ip) {
					return ip.String()
				}
			}
		}
	}
	return "127.0.0.1"
}

// virtualAdapterPatterns matches interface names that never carry the
// operator-facing LAN address.
var virtualAdapterPatterns = []string{
	"virtualbox", "vmware", "vbox", "hyper-v", "loopback",
	"bluetooth", "isatap", "teredo", "tunnel",
	"docker", "veth", "br-", "tun", "tap",
}

// preferredAdapterPatterns matches the names of primary adapters.
var preferredAdapterPatterns = []string{
	"wi-fi", "wifi", "wlan", "ethernet", "eth", "local area", "en0",
}

func scanInterfaces() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	var preferred, other []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		if isVirtualAdapter(iface.Name) {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok || !usableIP(ipnet.IP) {
				continue
			}
			if isPreferredAdapter(iface.Name) {
				preferred = append(preferred, ipnet.IP.String())
			} else {
				other = append(other, ipnet.IP.String())
			}
		}
	}
	if len(preferred) > 0 {
		return preferred[0]
	}
	if len(other) > 0 {
		return other[0]
	}
	return ""
}

func isVirtualAdapter(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range virtualAdapterPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func isPreferredAdapter(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range preferredAdapterPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// usableIP filters loopback, APIPA link-local, and the VirtualBox
// host-only subnet; only IPv4 addresses are displayed to operators.
func usableIP(ip net.IP) bool {
	v4 := ip.To4()
	if v4 == nil {
		return false
	}
	if v4.IsLoopback() || v4.IsLinkLocalUnicast() {
		return false
	}
	if v4[0] == 192 && v4[1] == 168 && v4[2] == 56 {
		return false
	}
	return true
}
