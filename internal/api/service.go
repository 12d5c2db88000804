package api

import (
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tracklab/posefilter/internal/config"
	"github.com/tracklab/posefilter/internal/filter"
	"github.com/tracklab/posefilter/internal/protocol"
	"github.com/tracklab/posefilter/internal/tracker"
	"github.com/tracklab/posefilter/internal/types"
)

// defaultPollInterval is used when the configured interval is missing
// or non-positive.
const defaultPollInterval = time.Second / 60

// PoseSample pairs a raw input pose with its smoothed output.
type PoseSample struct {
	Raw      types.Pose `json:"raw"`
	Filtered types.Pose `json:"filtered"`
}

// TrackingService runs the pose processing loop: poll the source, run
// the adaptive filter, transmit the smoothed pose.
type TrackingService struct {
	store *config.Store

	stopChan    chan struct{}
	running     bool
	statusMutex sync.RWMutex

	source *tracker.UDPSource
	client *protocol.Client

	last atomic.Pointer[PoseSample]
}

// NewTrackingService creates a service reading its configuration from
// the store.
func NewTrackingService(store *config.Store) *TrackingService {
	return &TrackingService{
		store:    store,
		stopChan: make(chan struct{}),
	}
}

// Start opens the input and output sockets and launches the loop.
func (s *TrackingService) Start() error {
	s.statusMutex.Lock()
	defer s.statusMutex.Unlock()

	if s.running {
		return fmt.Errorf("tracking service is already running")
	}

	cfg := s.store.Snapshot()

	source := tracker.NewUDPSource(cfg.Input.BindAddr)
	if err := source.Start(); err != nil {
		return fmt.Errorf("failed to start pose source: %w", err)
	}
	s.source = source

	client, err := protocol.Dial(cfg.Output.Addr)
	if err != nil {
		s.source.Close()
		return fmt.Errorf("failed to open pose output: %w", err)
	}
	s.client = client

	log.Printf("sending smoothed poses to %s", cfg.Output.Addr)

	s.stopChan = make(chan struct{})
	s.running = true

	go s.runTrackingLoop()

	return nil
}

// Stop terminates the loop. The sockets are closed by the loop itself.
func (s *TrackingService) Stop() error {
	s.statusMutex.Lock()
	defer s.statusMutex.Unlock()

	if !s.running {
		return fmt.Errorf("tracking service is not running")
	}

	close(s.stopChan)
	s.running = false

	return nil
}

// IsRunning reports whether the loop is active.
func (s *TrackingService) IsRunning() bool {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.running
}

// InputAddr returns the bound input address, or nil when stopped.
func (s *TrackingService) InputAddr() net.Addr {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	if s.source == nil {
		return nil
	}
	return s.source.LocalAddr()
}

// LastSample returns the most recent raw/filtered pose pair.
func (s *TrackingService) LastSample() (PoseSample, bool) {
	if sample := s.last.Load(); sample != nil {
		return *sample, true
	}
	return PoseSample{}, false
}

// runTrackingLoop is the processing loop. It owns the filter instance:
// configuration is re-read through the store every invocation, but the
// filter state itself is touched from this goroutine only.
func (s *TrackingService) runTrackingLoop() {
	defer func() {
		if s.source != nil {
			s.source.Close()
		}
		if s.client != nil {
			s.client.Close()
		}
		log.Println("tracking loop stopped")
	}()

	poseFilter := filter.NewAdaptiveEWMA(s.store)

	interval := s.pollInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Printf("tracking loop started (poll interval %s)", interval)

	for {
		select {
		case <-s.stopChan:
			return

		case <-ticker.C:
			if next := s.pollInterval(); next != interval {
				interval = next
				ticker.Reset(interval)
				log.Printf("poll interval changed to %s", interval)
			}

			raw := s.source.Pose()
			filtered := poseFilter.Filter(raw)

			if err := s.client.Send(filtered); err != nil {
				log.Printf("failed to transmit pose: %v", err)
			}

			s.last.Store(&PoseSample{Raw: raw, Filtered: filtered})
		}
	}
}

func (s *TrackingService) pollInterval() time.Duration {
	if interval := s.store.Snapshot().Tracker.PollInterval; interval > 0 {
		return interval
	}
	return defaultPollInterval
}
