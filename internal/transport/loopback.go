package transport

import (
	"errors"
	"io"
	"sync"
	"time"
)

// Responder plays the station side of the protocol: it receives one complete
// frame and returns the reply bytes.
type Responder interface {
	Respond(frame []byte) []byte
}

// LoopbackLink connects a Device to an in-process Responder.
type LoopbackLink struct {
	responder Responder

	mu      sync.Mutex
	pending []byte
	partial []byte
	closed  bool
}

// NewLoopback returns a link served by r.
func NewLoopback(r Responder) *LoopbackLink {
	return &LoopbackLink{responder: r}
}

var errLinkClosed = errors.New("link closed")

func (l *LoopbackLink) Send(frame []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return errLinkClosed
	}

	l.partial = append(l.partial, frame...)
	for len(l.partial) >= CommandSize {
		size := FrameSize(l.partial[0])
		if len(l.partial) < size {
			break
		}
		l.pending = append(l.pending, l.responder.Respond(l.partial[:size])...)
		l.partial = l.partial[size:]
	}
	return nil
}

func (l *LoopbackLink) Receive(n int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil, errLinkClosed
	}
	if len(l.pending) < n {
		l.pending = nil
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]byte, n)
	copy(out, l.pending)
	l.pending = l.pending[n:]
	return out, nil
}

func (l *LoopbackLink) SetDeadline(time.Time) error { return nil }

func (l *LoopbackLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}
