// Package transport moves bytes between the host and the station memory.
package transport

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lzrdig/FineOffsetNET/pkg/fineoffset"
	"go.uber.org/zap"
)

// USB identity of Fine Offset consoles.
const (
	VendorID  = 0x1941
	ProductID = 0x8021
)

const defaultTimeout = 5 * time.Second

var (
	// ErrTransport wraps every I/O failure of a link. It is worth retrying.
	ErrTransport = errors.New("transport error")

	// ErrWriteRejected is returned when the station does not acknowledge a write.
	ErrWriteRejected = errors.New("write rejected by station")

	// ErrNoDevice means discovery found no attached console.
	ErrNoDevice = errors.New("no station attached")
)

var (
	readsTotal       = metrics.NewCounter(`fineoffset_transport_reads_total`)
	readErrorsTotal  = metrics.NewCounter(`fineoffset_transport_read_errors_total`)
	writesTotal      = metrics.NewCounter(`fineoffset_transport_writes_total`)
	writeRejectTotal = metrics.NewCounter(`fineoffset_transport_write_rejected_total`)
	retriesTotal     = metrics.NewCounter(`fineoffset_transport_retries_total`)
	readDuration     = metrics.NewHistogram(`fineoffset_transport_read_duration_seconds`)
)

// Transport reads and writes station memory.
type Transport interface {
	// Read returns the fineoffset.TransferSize bytes starting at addr.
	Read(ctx context.Context, addr int) ([]byte, error)
	// Write stores one byte or one 32-byte block at addr and waits for the
	// station's acknowledgement.
	Write(ctx context.Context, addr int, data []byte) error
	Close() error
}

// Link carries frames to the station and returns its replies.
type Link interface {
	Send(frame []byte) error
	Receive(n int) ([]byte, error)
	SetDeadline(t time.Time) error
	Close() error
}

// Device speaks the station's command protocol over a Link.
type Device struct {
	link    Link
	timeout time.Duration
	logger  *zap.SugaredLogger
	mu      sync.Mutex
}

// NewDevice wraps link. A zero timeout selects a five second default.
func NewDevice(link Link, timeout time.Duration, logger *zap.SugaredLogger) *Device {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Device{link: link, timeout: timeout, logger: logger}
}

func (d *Device) Read(ctx context.Context, addr int) ([]byte, error) {
	if addr < 0 || addr >= fineoffset.MemorySize {
		return nil, fmt.Errorf("read address 0x%X outside station memory", addr)
	}
	started := time.Now()
	readsTotal.Inc()

	cmd := Command(OpRead, addr, 0)
	reply, err := d.exchange(ctx, cmd[:], fineoffset.TransferSize)
	if err != nil {
		readErrorsTotal.Inc()
		return nil, fmt.Errorf("%w: read 0x%04X: %w", ErrTransport, addr, err)
	}
	readDuration.UpdateDuration(started)
	return reply, nil
}

func (d *Device) Write(ctx context.Context, addr int, data []byte) error {
	if addr < 0 || addr >= fineoffset.MemorySize {
		return fmt.Errorf("write address 0x%X outside station memory", addr)
	}

	var frame []byte
	switch len(data) {
	case 1:
		cmd := Command(OpWrite1, addr, data[0])
		frame = cmd[:]
	case PayloadSize:
		cmd := Command(OpWrite32, addr, 0)
		frame = append(cmd[:], data...)
	default:
		return fmt.Errorf("write of %d bytes: only 1 or %d supported", len(data), PayloadSize)
	}
	writesTotal.Inc()

	reply, err := d.exchange(ctx, frame, AckSize)
	if err != nil {
		return fmt.Errorf("%w: write 0x%04X: %w", ErrTransport, addr, err)
	}
	if !IsAck(reply) {
		writeRejectTotal.Inc()
		return fmt.Errorf("%w: write 0x%04X: reply %s", ErrWriteRejected, addr, hex.EncodeToString(reply))
	}
	return nil
}

func (d *Device) exchange(ctx context.Context, frame []byte, replySize int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	deadline := time.Now().Add(d.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	if err := d.link.SetDeadline(deadline); err != nil && !errors.Is(err, os.ErrNoDeadline) {
		return nil, err
	}

	if d.logger != nil {
		d.logger.Debugf("sending frame %s", hex.EncodeToString(frame[:min(len(frame), CommandSize)]))
	}
	if err := d.link.Send(frame); err != nil {
		return nil, err
	}
	return d.link.Receive(replySize)
}

func (d *Device) Close() error {
	return d.link.Close()
}
