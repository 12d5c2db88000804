package tracker

import (
	"errors"
	"fmt"
	"log"
	"net"
	"sync/atomic"

	"github.com/tracklab/posefilter/internal/protocol"
	"github.com/tracklab/posefilter/internal/types"
)

// UDPSource receives raw poses as FTN datagrams and retains the most
// recent one.
type UDPSource struct {
	addr     string
	conn     *net.UDPConn
	latest   atomic.Pointer[types.Pose]
	stopChan chan struct{}
}

// NewUDPSource creates a source listening on addr.
func NewUDPSource(addr string) *UDPSource {
	return &UDPSource{addr: addr}
}

// Start binds the socket and begins receiving in the background.
func (s *UDPSource) Start() error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to resolve pose listen address %q: %w", s.addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("failed to bind pose listener: %w", err)
	}

	s.conn = conn
	s.stopChan = make(chan struct{})
	go s.receiveLoop()

	log.Printf("listening for raw poses on %s", conn.LocalAddr())
	return nil
}

// Pose returns the most recent received pose.
func (s *UDPSource) Pose() types.Pose {
	if p := s.latest.Load(); p != nil {
		return *p
	}
	return types.Pose{}
}

// LocalAddr returns the bound address, or nil before Start.
func (s *UDPSource) LocalAddr() net.Addr {
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Close stops the receive loop and closes the socket.
func (s *UDPSource) Close() error {
	if s.conn == nil {
		return nil
	}
	close(s.stopChan)
	return s.conn.Close()
}

func (s *UDPSource) receiveLoop() {
	buf := make([]byte, protocol.PacketSize)
	for {
		n, _, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-s.stopChan:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("pose receive error: %v", err)
			continue
		}

		pose, err := protocol.Unmarshal(buf[:n])
		if err != nil {
			log.Printf("dropping malformed pose packet: %v", err)
			continue
		}
		s.latest.Store(&pose)
	}
}
