// Package tracker provides pose input sources for the processing loop.
//
// A source is polled, not consumed: the loop asks for the most recent
// sample at its own rate, so a slow sensor simply yields the same pose
// on consecutive polls. The downstream filter detects those repeats and
// freezes its noise statistics accordingly.
package tracker

import "github.com/tracklab/posefilter/internal/types"

// Source supplies raw pose samples.
type Source interface {
	// Start begins acquisition.
	Start() error
	// Pose returns the most recent sample without blocking. Before the
	// first sample arrives it returns the zero pose.
	Pose() types.Pose
	// Close stops acquisition and releases resources.
	Close() error
}
