package printer

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"printerone/internal/model"
)

type lpdBackend struct{}

func init() {
	Register(lpdBackend{})
}

func (lpdBackend) Schemes() []string {
	return []string{"lpd"}
}

func (lpdBackend) Send(ctx context.Context, target Target, data []byte, settings *model.Settings) error {
	host := target.URI.Host
	if !strings.Contains(host, ":") {
		host = net.JoinHostPort(host, "515")
	}
	queue := strings.TrimPrefix(target.URI.Path, "/")
	if queue == "" {
		queue = "lp"
	}

	dialer := net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return deviceErr(target.Name, "dial", err)
	}
	defer conn.Close()
	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))

	if err := lpdReceiveJob(rw, queue); err != nil {
		return deviceErr(target.Name, "receive-job", err)
	}

	hostName, _ := os.Hostname()
	if hostName == "" {
		hostName = "localhost"
	}
	jobID := int(time.Now().UnixNano() % 1000)
	cfName := fmt.Sprintf("cfA%03d%s", jobID, hostName)
	dfName := fmt.Sprintf("dfA%03d%s", jobID, hostName)

	control := lpdControl(hostName, dfName, settings.CopyCount())
	if err := lpdSendControl(rw, cfName, []byte(control)); err != nil {
		return deviceErr(target.Name, "control", err)
	}
	if err := lpdSendData(rw, dfName, data); err != nil {
		return deviceErr(target.Name, "data", err)
	}
	return nil
}

func lpdReceiveJob(rw *bufio.ReadWriter, queue string) error {
	if _, err := rw.WriteString("\x02" + queue + "\n"); err != nil {
		return err
	}
	if err := rw.Flush(); err != nil {
		return err
	}
	return lpdAck(rw)
}

func lpdSendControl(rw *bufio.ReadWriter, name string, data []byte) error {
	if _, err := rw.WriteString(fmt.Sprintf("\x02%d %s\n", len(data), name)); err != nil {
		return err
	}
	if err := rw.Flush(); err != nil {
		return err
	}
	if err := lpdAck(rw); err != nil {
		return err
	}
	if _, err := rw.Write(data); err != nil {
		return err
	}
	if _, err := rw.Write([]byte{0x00}); err != nil {
		return err
	}
	if err := rw.Flush(); err != nil {
		return err
	}
	return lpdAck(rw)
}

func lpdSendData(rw *bufio.ReadWriter, name string, data []byte) error {
	if _, err := rw.WriteString(fmt.Sprintf("\x03%d %s\n", len(data), name)); err != nil {
		return err
	}
	if err := rw.Flush(); err != nil {
		return err
	}
	if err := lpdAck(rw); err != nil {
		return err
	}
	if _, err := rw.Write(data); err != nil {
		return err
	}
	if err := rw.Flush(); err != nil {
		return err
	}
	if _, err := rw.Write([]byte{0x00}); err != nil {
		return err
	}
	if err := rw.Flush(); err != nil {
		return err
	}
	return lpdAck(rw)
}

func lpdAck(rw *bufio.ReadWriter) error {
	b, err := rw.ReadByte()
	if err != nil {
		return err
	}
	if b != 0 {
		return fmt.Errorf("lpd error: %d", b)
	}
	return nil
}

func lpdControl(host, dataFile string, copies int) string {
	var b bytes.Buffer
	b.WriteString("H" + host + "\n")
	b.WriteString("Panonymous\n")
	b.WriteString("JPrinterOne Job\n")
	b.WriteString("N" + dataFile + "\n")
	b.WriteString("U" + dataFile + "\n")
	// One print line per requested copy.
	for i := 0; i < copies; i++ {
		b.WriteString("l" + dataFile + "\n")
	}
	return b.String()
}
