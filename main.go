package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"printerone/internal/app"
	"printerone/internal/config"
	"printerone/internal/logging"
	"printerone/internal/netutil"
	"printerone/internal/printer"
	"printerone/internal/store"
)

const maxLogSize = 5 << 20

func main() {
	args := os.Args[1:]
	if len(args) > 0 {
		switch args[0] {
		case "--help", "-h", "help":
			usage()
			return
		case "test":
			os.Exit(runTest(args[1:]))
		case "console":
			args = args[1:]
		}
	}
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", args[0])
		usage()
		os.Exit(2)
	}
	runServer()
}

func runServer() {
	cfg := config.Load()
	logging.Configure(config.LogPath(), maxLogSize)
	log.SetOutput(logging.ErrorWriter())

	if err := os.MkdirAll(config.DataDir(), 0755); err != nil {
		log.Fatalf("failed to create data dir: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(config.DBPath()), 0755); err != nil {
		log.Fatalf("failed to create db dir: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, config.DBPath())
	if err != nil {
		log.Fatalf("failed to open job history: %v", err)
	}
	defer st.Close()

	mgr := app.New(cfg, st)

	if err := mgr.StartListener(); err != nil {
		log.Fatalf("failed to start listener: %v", err)
	}
	defer mgr.StopListener()

	ip := netutil.BestLocalAddress()
	log.Printf("PrinterOne listening on %s:%d", ip, cfg.Port)
	if cfg.PrinterName == "" {
		log.Printf("no printer configured yet; jobs will be received and recorded only")
	} else {
		log.Printf("dispatching to printer %q", cfg.PrinterName)
		go logSupplies(cfg.PrinterName)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Printf("shutting down")
}

// logSupplies asks a network printer for its marker supply levels over
// SNMP. Advisory only; most failures just mean the device speaks no
// SNMP.
func logSupplies(printerName string) {
	target := printer.ParseTarget(printerName)
	if target.URI == nil || target.URI.Hostname() == "" {
		return
	}
	supplies, err := printer.QuerySupplies(target.URI.Hostname(), "")
	if err != nil || len(supplies) == 0 {
		return
	}
	for _, s := range supplies {
		log.Printf("[SUPPLIES] %s: %s", printerName, s)
	}
}

// runTest opens a connection to a running server, optionally sends a
// probe payload and closes, which the server treats as one job.
func runTest(args []string) int {
	host := "127.0.0.1"
	port := config.Default().Port
	payload := "\x1bHello"
	if len(args) > 0 {
		host = args[0]
	}
	if len(args) > 1 {
		p, err := strconv.Atoi(args[1])
		if err != nil || p <= 0 || p > 65535 {
			fmt.Fprintf(os.Stderr, "invalid port %q\n", args[1])
			return 2
		}
		port = p
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", addr, err)
		return 1
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(payload)); err != nil {
		fmt.Fprintf(os.Stderr, "send: %v\n", err)
		return 1
	}
	fmt.Printf("sent %d bytes to %s\n", len(payload), addr)
	return 0
}

func usage() {
	fmt.Print(`PrinterOne - raw network print server

Usage:
  printerone [console]      run the print server (default)
  printerone test [host [port]]
                            send a small test job to a running server
  printerone --help         show this help

The server accepts raw jobs on the configured TCP port (default 9100).
A client sends the job bytes and closes the connection to mark the end
of the job.
`)
}
