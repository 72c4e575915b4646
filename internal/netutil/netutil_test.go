package netutil

import (
	"net"
	"testing"
)

func TestUsableIP(t *testing.T) {
	cases := []struct {
		ip   string
		want bool
	}{
		{"10.0.0.5", true},
		{"192.168.1.20", true},
		{"127.0.0.1", false},
		{"169.254.10.1", false},
		{"192.168.56.1", false}, // VirtualBox host-only
		{"::1", false},
		{"fe80::1", false},
		{"2001:db8::1", false}, // IPv6 not displayed
	}
	for _, tc := range cases {
		if got := usableIP(net.ParseIP(tc.ip)); got != tc.want {
			t.Errorf("usableIP(%s) = %v, want %v", tc.ip, got, tc.want)
		}
	}
}

func TestAdapterNameFilters(t *testing.T) {
	virtual := []string{"VirtualBox Host-Only Network", "vmware0", "docker0", "veth12ab", "br-9f2", "tun0", "Bluetooth Network Connection"}
	for _, name := range virtual {
		if !isVirtualAdapter(name) {
			t.Errorf("isVirtualAdapter(%q) = false, want true", name)
		}
	}
	real := []string{"Wi-Fi", "Ethernet", "eth0", "wlan0", "en0", "Local Area Connection"}
	for _, name := range real {
		if isVirtualAdapter(name) {
			t.Errorf("isVirtualAdapter(%q) = true, want false", name)
		}
		if !isPreferredAdapter(name) {
			t.Errorf("isPreferredAdapter(%q) = false, want true", name)
		}
	}
}

func TestBestLocalAddressAlwaysTerminates(t *testing.T) {
	addr := BestLocalAddress()
	if net.ParseIP(addr) == nil {
		t.Fatalf("BestLocalAddress = %q, not an IP", addr)
	}
}

func TestFreePortSkipsOwnProcess(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	if n := FreePort(port); n != 0 {
		t.Fatalf("FreePort reclaimed %d processes, want 0 (own pid)", n)
	}
	// The listener must still be alive.
	conn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("listener died: %v", err)
	}
	conn.Close()
}

func TestFreePortUnusedPortIsNoop(t *testing.T) {
	// Grab an ephemeral port and release it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	if n := FreePort(port); n != 0 {
		t.Fatalf("FreePort = %d, want 0 for unused port", n)
	}
}
