package emulator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/panjf2000/gnet/v2"
	"go.uber.org/zap"

	"github.com/lzrdig/FineOffsetNET/internal/transport"
)

// FlakyConfig simulates an unreliable USB bridge.
type FlakyConfig struct {
	Enabled         bool
	CorruptByteRate float64 // probability of flipping one reply byte
	NoResponseRate  float64 // probability of swallowing a frame
	RejectWriteRate float64 // probability of answering a write without ack
}

// Server exposes a Responder over TCP using the framed protocol of
// transport.NetworkLink.
type Server struct {
	gnet.BuiltinEventEngine

	addr      string
	responder transport.Responder
	flaky     FlakyConfig
	logger    *zap.SugaredLogger

	eng    gnet.Engine
	booted chan struct{}
	once   sync.Once
}

// NewServer returns a server listening on addr (host:port) once Run is called.
func NewServer(addr string, responder transport.Responder, flaky FlakyConfig, logger *zap.SugaredLogger) *Server {
	return &Server{
		addr:      addr,
		responder: responder,
		flaky:     flaky,
		logger:    logger,
		booted:    make(chan struct{}),
	}
}

// Run serves until ctx is cancelled. A context cancelled before the engine
// boots stops it as soon as it is up.
func (s *Server) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-s.booted:
		case <-done:
			return
		}
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		if err := s.eng.Stop(context.Background()); err != nil {
			s.logger.Warnf("stopping emulator: %v", err)
		}
	}()

	err := gnet.Run(s, "tcp://"+s.addr, gnet.WithMulticore(true), gnet.WithReusePort(true))
	if err != nil {
		return fmt.Errorf("emulator on %s: %w", s.addr, err)
	}
	return nil
}

func (s *Server) OnBoot(eng gnet.Engine) gnet.Action {
	s.eng = eng
	s.once.Do(func() { close(s.booted) })
	s.logger.Infof("station emulator listening on %s", s.addr)
	return gnet.None
}

func (s *Server) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	s.logger.Infof("client connected from %v", c.RemoteAddr())
	return nil, gnet.None
}

func (s *Server) OnClose(c gnet.Conn, err error) gnet.Action {
	if err != nil {
		s.logger.Warnf("client %v disconnected: %v", c.RemoteAddr(), err)
	} else {
		s.logger.Infof("client %v disconnected", c.RemoteAddr())
	}
	return gnet.None
}

// OnTraffic answers every complete frame in the inbound buffer.
func (s *Server) OnTraffic(c gnet.Conn) gnet.Action {
	for c.InboundBuffered() >= transport.CommandSize {
		head, err := c.Peek(1)
		if err != nil {
			return gnet.Close
		}
		size := transport.FrameSize(head[0])
		if c.InboundBuffered() < size {
			return gnet.None
		}
		frame, err := c.Next(size)
		if err != nil {
			return gnet.Close
		}

		reply := s.reply(frame)
		if reply == nil {
			continue
		}
		if _, err := c.Write(reply); err != nil {
			s.logger.Errorf("write to %v: %v", c.RemoteAddr(), err)
			return gnet.Close
		}
	}
	return gnet.None
}

func (s *Server) reply(frame []byte) []byte {
	f := s.flaky
	if f.Enabled && rand.Float64() < f.NoResponseRate {
		s.logger.Debug("flaky: dropping frame")
		return nil
	}
	if f.Enabled && frame[0] != transport.OpRead && rand.Float64() < f.RejectWriteRate {
		s.logger.Debug("flaky: rejecting write")
		return make([]byte, transport.AckSize)
	}

	reply := s.responder.Respond(frame)
	if f.Enabled && len(reply) > 0 && rand.Float64() < f.CorruptByteRate {
		s.logger.Debug("flaky: corrupting reply")
		reply[rand.IntN(len(reply))] ^= 0xFF
	}
	return reply
}
