// Package emulator imitates a Fine Offset console: a memory image that answers
// the USB command protocol, a generator that fills it with plausible weather
// and a TCP server that exposes it.
package emulator

import (
	"sync"

	"github.com/lzrdig/FineOffsetNET/internal/transport"
	"github.com/lzrdig/FineOffsetNET/pkg/fineoffset"
)

// Image is the 64 KiB memory of a console.
type Image struct {
	mu     sync.RWMutex
	mem    [fineoffset.MemorySize]byte
	writes []int
}

// NewImage returns an image with an empty history area. Unused records read
// back as 0xFF, as on a console fresh from the factory.
func NewImage() *Image {
	img := &Image{}
	for i := fineoffset.HistoryStart; i < fineoffset.MemorySize; i++ {
		img.mem[i] = 0xFF
	}
	return img
}

// Respond implements transport.Responder.
func (m *Image) Respond(frame []byte) []byte {
	op, addr, data, ok := transport.ParseCommand(frame)
	if !ok {
		return make([]byte, transport.AckSize)
	}

	switch op {
	case transport.OpRead:
		return m.Bytes(addr, fineoffset.TransferSize)
	case transport.OpWrite1:
		m.Put(addr, []byte{data})
		return transport.Ack()
	case transport.OpWrite32:
		if len(frame) < transport.CommandSize+transport.PayloadSize {
			return make([]byte, transport.AckSize)
		}
		m.Put(addr, frame[transport.CommandSize:transport.CommandSize+transport.PayloadSize])
		return transport.Ack()
	}
	return make([]byte, transport.AckSize)
}

// Bytes copies n bytes from addr, wrapping at the end of memory.
func (m *Image) Bytes(addr, n int) []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]byte, n)
	for i := range out {
		out[i] = m.mem[(addr+i)%fineoffset.MemorySize]
	}
	return out
}

// Put stores data at addr and records the write.
func (m *Image) Put(addr int, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(addr, data)
	m.writes = append(m.writes, addr)
}

func (m *Image) put(addr int, data []byte) {
	for i, b := range data {
		m.mem[(addr+i)%fineoffset.MemorySize] = b
	}
}

// Writes returns the addresses written through the protocol, in order.
func (m *Image) Writes() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.writes...)
}

// Settings decodes the image's settings block.
func (m *Image) Settings() (fineoffset.Settings, error) {
	return fineoffset.DecodeSettings(m.Bytes(0, fineoffset.SettingsBlockSize))
}
