package protocol

import (
	"encoding/binary"
	"math"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracklab/posefilter/internal/types"
)

func TestMarshalLayout(t *testing.T) {
	pose := types.Pose{1.5, -2.0, 0, 90.25, -45.5, 0.001}
	buf := Marshal(pose)

	require.Len(t, buf, PacketSize)
	for i, v := range pose {
		got := math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
		assert.Equal(t, v, got, "axis %d", i)
	}
}

func TestUnmarshalRejectsShortPacket(t *testing.T) {
	_, err := Unmarshal(make([]byte, PacketSize-1))
	assert.Error(t, err)

	_, err = Unmarshal(nil)
	assert.Error(t, err)
}

func TestClientSendsDatagram(t *testing.T) {
	recv, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer recv.Close()

	client, err := Dial(recv.LocalAddr().String())
	require.NoError(t, err)
	defer client.Close()

	pose := types.Pose{1, 2, 3, 4, 5, 6}
	require.NoError(t, client.Send(pose))

	buf := make([]byte, PacketSize+1)
	require.NoError(t, recv.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := recv.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Equal(t, PacketSize, n)

	got, err := Unmarshal(buf[:n])
	require.NoError(t, err)
	assert.Equal(t, pose, got)
}

func TestDialRejectsBadAddress(t *testing.T) {
	_, err := Dial("not-an-address:::")
	assert.Error(t, err)
}
