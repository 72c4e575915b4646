package printer

import (
	"context"
	"errors"
	"net"
	"time"

	"printerone/internal/model"
)

// socketBackend streams raw bytes to a JetDirect-style port, the same
// protocol this server itself speaks on the receiving side.
type socketBackend struct{}

func init() {
	Register(socketBackend{})
}

func (socketBackend) Schemes() []string {
	return []string{"socket", "jetdirect"}
}

func (socketBackend) Send(ctx context.Context, target Target, data []byte, settings *model.Settings) error {
	host := target.URI.Host
	if host == "" {
		return deviceErr(target.Name, "dial", errors.New("missing host"))
	}
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, "9100")
	}

	dialer := net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return deviceErr(target.Name, "dial", err)
	}
	defer conn.Close()

	// Raw targets have no copy semantics; repeat the payload.
	for i := 0; i < settings.CopyCount(); i++ {
		if deadline, ok := ctx.Deadline(); ok {
			_ = conn.SetWriteDeadline(deadline)
		}
		if _, err := conn.Write(data); err != nil {
			return deviceErr(target.Name, "write", err)
		}
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.CloseWrite()
	}
	return nil
}
