// printsend pushes a file (or stdin) to a raw print server and closes
// the connection, which the server treats as the end of the job.
package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

var errShowHelp = errors.New("show-help")

type options struct {
	host    string
	port    int
	repeat  int
	verbose bool
	files   []string
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if errors.Is(err, errShowHelp) {
		usage()
		return
	}
	if err != nil {
		fail(err)
	}

	data, err := readInput(opts.files)
	if err != nil {
		fail(err)
	}

	addr := net.JoinHostPort(opts.host, strconv.Itoa(opts.port))
	for i := 0; i < opts.repeat; i++ {
		if err := sendOnce(addr, data); err != nil {
			fail(err)
		}
		if opts.verbose {
			fmt.Printf("sent %d bytes to %s\n", len(data), addr)
		}
	}
}

func sendOnce(addr string, data []byte) error {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	return nil
}

func readInput(files []string) ([]byte, error) {
	if len(files) == 0 {
		return io.ReadAll(os.Stdin)
	}
	var out []byte
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out, nil
}

func usage() {
	fmt.Println("Usage: printsend [options] [file(s)]")
	fmt.Println("Reads the file(s) (or stdin) and sends the bytes to a raw print")
	fmt.Println("server, closing the connection to mark the end of the job.")
	fmt.Println("Options:")
	fmt.Println("-H host                 Server host (default 127.0.0.1)")
	fmt.Println("-p port                 Server port (default 9100)")
	fmt.Println("-n count                Send the job count times")
	fmt.Println("-v                      Report each job sent")
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "printsend:", err)
	os.Exit(1)
}

func parseArgs(args []string) (options, error) {
	opts := options{host: "127.0.0.1", port: 9100, repeat: 1}
	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])
		if arg == "" {
			continue
		}
		if arg == "--help" {
			return opts, errShowHelp
		}
		if strings.HasPrefix(arg, "--") {
			return opts, fmt.Errorf("unknown option %q", arg)
		}
		if strings.HasPrefix(arg, "-") && arg != "-" {
			short := strings.TrimPrefix(arg, "-")
			for pos := 0; pos < len(short); pos++ {
				ch := short[pos]
				rest := short[pos+1:]
				consume := func(name byte) (string, error) {
					if rest != "" {
						pos = len(short)
						return rest, nil
					}
					if i+1 >= len(args) {
						return "", fmt.Errorf("expected value after -%c", name)
					}
					i++
					return args[i], nil
				}

				switch ch {
				case 'H':
					v, err := consume(ch)
					if err != nil {
						return opts, err
					}
					opts.host = strings.TrimSpace(v)
				case 'p':
					v, err := consume(ch)
					if err != nil {
						return opts, err
					}
					n, err := strconv.Atoi(strings.TrimSpace(v))
					if err != nil || n < 1 || n > 65535 {
						return opts, fmt.Errorf("invalid port %q", v)
					}
					opts.port = n
				case 'n':
					v, err := consume(ch)
					if err != nil {
						return opts, err
					}
					n, err := strconv.Atoi(strings.TrimSpace(v))
					if err != nil || n < 1 {
						return opts, fmt.Errorf("count must be 1 or more")
					}
					opts.repeat = n
				case 'v':
					opts.verbose = true
				default:
					return opts, fmt.Errorf("unknown option -%c", ch)
				}
			}
			continue
		}
		opts.files = append(opts.files, arg)
	}
	return opts, nil
}
