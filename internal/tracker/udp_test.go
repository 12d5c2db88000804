package tracker

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracklab/posefilter/internal/protocol"
	"github.com/tracklab/posefilter/internal/types"
)

func TestUDPSourceRetainsLatestPose(t *testing.T) {
	source := NewUDPSource("127.0.0.1:0")
	require.NoError(t, source.Start())
	defer source.Close()

	// No sample yet: zero pose.
	assert.Equal(t, types.Pose{}, source.Pose())

	client, err := protocol.Dial(source.LocalAddr().String())
	require.NoError(t, err)
	defer client.Close()

	first := types.Pose{1, 2, 3, 4, 5, 6}
	second := types.Pose{-1, -2, -3, -4, -5, -6}

	require.NoError(t, client.Send(first))
	require.Eventually(t, func() bool {
		return source.Pose() == first
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, client.Send(second))
	require.Eventually(t, func() bool {
		return source.Pose() == second
	}, 2*time.Second, 5*time.Millisecond)

	// Polling between samples repeats the last value.
	assert.Equal(t, source.Pose(), source.Pose())
}

func TestUDPSourceIgnoresMalformedPackets(t *testing.T) {
	source := NewUDPSource("127.0.0.1:0")
	require.NoError(t, source.Start())
	defer source.Close()

	client, err := protocol.Dial(source.LocalAddr().String())
	require.NoError(t, err)
	defer client.Close()

	pose := types.Pose{9, 8, 7, 6, 5, 4}
	require.NoError(t, client.Send(pose))
	require.Eventually(t, func() bool {
		return source.Pose() == pose
	}, 2*time.Second, 5*time.Millisecond)

	// A short datagram must not disturb the retained pose.
	raw, err := net.Dial("udp", source.LocalAddr().String())
	require.NoError(t, err)
	defer raw.Close()
	_, err = raw.Write([]byte{1, 2, 3})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, pose, source.Pose())
}

func TestUDPSourceBadAddress(t *testing.T) {
	source := NewUDPSource("not-an-address:::")
	assert.Error(t, source.Start())
}
