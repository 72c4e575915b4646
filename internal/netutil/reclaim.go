package netutil

import (
	"log"
	"os"
	"time"

	gopsnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// terminateWait bounds how long FreePort waits after a graceful
// terminate before force-killing.
const terminateWait = 3 * time.Second

// FreePort finds processes listening on the given TCP port and asks them
// to exit, force-killing after terminateWait. It returns how many
// processes were reclaimed. Failures are logged and never abort startup:
// the subsequent bind attempt is the authoritative signal.
func FreePort(port int) int {
	conns, err := gopsnet.Connections("tcp")
	if err != nil {
		log.Printf("[KILL] cannot enumerate sockets: %v", err)
		return 0
	}
	self := int32(os.Getpid())
	reclaimed := 0
	for _, conn := range conns {
		if conn.Status != "LISTEN" || int(conn.Laddr.Port) != port {
			continue
		}
		if conn.Pid <= 0 || conn.Pid == self {
			continue
		}
		if reclaimProcess(conn.Pid, port) {
			reclaimed++
		}
	}
	return reclaimed
}

func reclaimProcess(pid int32, port int) bool {
	proc, err := process.NewProcess(pid)
	if err != nil {
		log.Printf("[KILL] pid %d on port %d already gone: %v", pid, port, err)
		return false
	}
	name, _ := proc.Name()

	if err := proc.Terminate(); err != nil {
		log.Printf("[KILL] failed to terminate pid %d (%s): %v", pid, name, err)
		return false
	}
	log.Printf("[KILL] terminated pid %d (%s) using port %d", pid, name, port)

	deadline := time.Now().Add(terminateWait)
	for time.Now().Before(deadline) {
		running, err := proc.IsRunning()
		if err != nil || !running {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err := proc.Kill(); err != nil {
		log.Printf("[KILL] failed to force kill pid %d: %v", pid, err)
		return false
	}
	log.Printf("[KILL] force killed pid %d", pid)
	return true
}
