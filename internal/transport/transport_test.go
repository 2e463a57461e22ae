package transport_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lzrdig/FineOffsetNET/internal/emulator"
	"github.com/lzrdig/FineOffsetNET/internal/transport"
	"github.com/lzrdig/FineOffsetNET/pkg/fineoffset"
)

func TestCommand(t *testing.T) {
	cmd := transport.Command(transport.OpRead, 0x1234, 0)
	assert.Equal(t, [8]byte{0xA1, 0x12, 0x34, 0x20, 0xA1, 0x00, 0x00, 0x20}, cmd)

	cmd = transport.Command(transport.OpWrite1, 0x001A, 0xAA)
	assert.Equal(t, [8]byte{0xA2, 0x00, 0x1A, 0x20, 0xA2, 0xAA, 0x00, 0x20}, cmd)

	op, addr, data, ok := transport.ParseCommand(cmd[:])
	require.True(t, ok)
	assert.Equal(t, transport.OpWrite1, op)
	assert.Equal(t, 0x001A, addr)
	assert.Equal(t, byte(0xAA), data)

	_, _, _, ok = transport.ParseCommand([]byte{0xA1, 0, 0, 0x20, 0xA2, 0, 0, 0x20})
	assert.False(t, ok)

	assert.Equal(t, 40, transport.FrameSize(transport.OpWrite32))
	assert.Equal(t, 8, transport.FrameSize(transport.OpRead))
}

func TestIsAck(t *testing.T) {
	assert.True(t, transport.IsAck(transport.Ack()))
	assert.False(t, transport.IsAck(make([]byte, 8)))
	assert.False(t, transport.IsAck([]byte{0xA5, 0xA5}))
}

func newDevice(t *testing.T, img *emulator.Image) *transport.Device {
	t.Helper()
	d := transport.NewDevice(transport.NewLoopback(img), time.Second, zap.NewNop().Sugar())
	t.Cleanup(func() { d.Close() })
	return d
}

func TestDeviceReadWrite(t *testing.T) {
	ctx := context.Background()
	img := emulator.NewImage()
	img.Put(0x0300, []byte{1, 2, 3, 4})
	d := newDevice(t, img)

	buf, err := d.Read(ctx, 0x0300)
	require.NoError(t, err)
	require.Len(t, buf, fineoffset.TransferSize)
	assert.Equal(t, []byte{1, 2, 3, 4}, buf[:4])

	require.NoError(t, d.Write(ctx, fineoffset.TimezoneAddress, []byte{0x82}))
	assert.Equal(t, []byte{0x82}, img.Bytes(fineoffset.TimezoneAddress, 1))

	block := make([]byte, transport.PayloadSize)
	block[31] = 0x42
	require.NoError(t, d.Write(ctx, 0x0400, block))
	assert.Equal(t, byte(0x42), img.Bytes(0x0400+31, 1)[0])

	assert.Error(t, d.Write(ctx, 0x0400, []byte{1, 2}))
	_, err = d.Read(ctx, fineoffset.MemorySize)
	assert.Error(t, err)
}

type rejecting struct{}

func (rejecting) Respond(frame []byte) []byte {
	if frame[0] == transport.OpRead {
		return make([]byte, fineoffset.TransferSize)
	}
	return []byte{0xA5, 0xA5, 0xA5, 0xA5, 0xA5, 0xA5, 0xA5, 0x00}
}

func TestDeviceWriteRejected(t *testing.T) {
	d := transport.NewDevice(transport.NewLoopback(rejecting{}), time.Second, nil)
	err := d.Write(context.Background(), fineoffset.ReadPeriodAddress, []byte{10})
	assert.ErrorIs(t, err, transport.ErrWriteRejected)
	assert.NotErrorIs(t, err, transport.ErrTransport)
}

type silent struct{}

func (silent) Respond([]byte) []byte { return nil }

func TestDeviceReadFailure(t *testing.T) {
	d := transport.NewDevice(transport.NewLoopback(silent{}), time.Second, nil)
	_, err := d.Read(context.Background(), 0)
	assert.ErrorIs(t, err, transport.ErrTransport)
}

func TestDeviceCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := newDevice(t, emulator.NewImage())
	_, err := d.Read(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

// flakyTransport fails the first n calls with ErrTransport.
type flakyTransport struct {
	failures int
	calls    int
	err      error
}

func (f *flakyTransport) Read(_ context.Context, _ int) ([]byte, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return make([]byte, fineoffset.TransferSize), nil
}

func (f *flakyTransport) Write(_ context.Context, _ int, _ []byte) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyTransport) Close() error { return nil }

func TestRetrying(t *testing.T) {
	transient := errors.Join(transport.ErrTransport, errors.New("timeout"))
	tests := []struct {
		name      string
		failures  int
		err       error
		wantErr   error
		wantCalls int
	}{
		{"first try", 0, transient, nil, 1},
		{"recovers on retry", 2, transient, nil, 3},
		{"gives up", 5, transient, transport.ErrTransport, 3},
		{"rejected writes are final", 5, transport.ErrWriteRejected, transport.ErrWriteRejected, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &flakyTransport{failures: tt.failures, err: tt.err}
			r := transport.WithRetry(f, 3, 0, zap.NewNop().Sugar())
			err := r.Write(context.Background(), 0x10, []byte{1})
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantCalls, f.calls)
		})
	}
}

func TestRetryingRead(t *testing.T) {
	f := &flakyTransport{failures: 1, err: transport.ErrTransport}
	r := transport.WithRetry(f, 0, time.Millisecond, nil)
	buf, err := r.Read(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, buf, fineoffset.TransferSize)
	assert.Equal(t, 2, f.calls)
}
