package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"
)

// NetworkLink carries frames over TCP to a USB bridge or the station emulator.
// Frames are sent without the HID report id.
type NetworkLink struct {
	conn net.Conn
}

// DialNetwork connects to address (host:port).
func DialNetwork(ctx context.Context, address string, timeout time.Duration) (*NetworkLink, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("could not connect to %v: %w", address, err)
	}
	return &NetworkLink{conn: conn}, nil
}

func (l *NetworkLink) Send(frame []byte) error {
	_, err := l.conn.Write(frame)
	return err
}

func (l *NetworkLink) Receive(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(l.conn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (l *NetworkLink) SetDeadline(t time.Time) error {
	return l.conn.SetDeadline(t)
}

func (l *NetworkLink) Close() error {
	return l.conn.Close()
}
