// Package protocol implements the UDP pose wire format consumed by
// head-tracking games and simulators: one datagram per pose, six
// little-endian float64 values (x, y, z, yaw, pitch, roll), 48 bytes.
package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
	"net"

	"github.com/tracklab/posefilter/internal/types"
)

// PacketSize is the length of one pose datagram in bytes.
const PacketSize = types.NumAxes * 8

// DefaultPort is the conventional receiver port.
const DefaultPort = 4242

// Marshal encodes a pose into a 48-byte datagram payload.
func Marshal(pose types.Pose) []byte {
	buf := make([]byte, PacketSize)
	for i, v := range pose {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

// Unmarshal decodes a pose datagram payload.
func Unmarshal(buf []byte) (types.Pose, error) {
	var pose types.Pose
	if len(buf) != PacketSize {
		return pose, fmt.Errorf("invalid pose packet length %d, want %d", len(buf), PacketSize)
	}
	for i := range pose {
		pose[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return pose, nil
}

// Client sends poses to a single UDP destination.
type Client struct {
	conn *net.UDPConn
}

// Dial resolves the destination address and opens the sending socket.
func Dial(addr string) (*Client, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pose destination %q: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to open pose socket: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Send transmits one pose datagram.
func (c *Client) Send(pose types.Pose) error {
	if _, err := c.conn.Write(Marshal(pose)); err != nil {
		return fmt.Errorf("failed to send pose: %w", err)
	}
	return nil
}

// Close closes the sending socket.
func (c *Client) Close() error {
	return c.conn.Close()
}
