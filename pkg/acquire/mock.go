package acquire

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/gocmon/pkg/config"
)

// Mock simulates the sensor head for testing and development. It answers
// every scan request with a synthetic mains-frequency oscillation whose
// per-channel amplitude comes from the mock configuration, so the whole
// pipeline down to the distance conversion can run without hardware.
type Mock struct {
	cfg *config.MockConfig

	scans     chan Scan
	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
	pending   bool

	seq int // increments per scan, decorrelates the noise between scans
}

// NewMock creates a new mocked device instance.
func NewMock(cfg *config.MockConfig) *Mock {
	if cfg == nil {
		cfg = &config.Default().Mock
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:       cfg,
		scans:     make(chan Scan, DefaultBufferSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
	}
}

// Connect simulates connecting to the device.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.pending = false

	return nil
}

// Close stops the mocked device.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false
	close(m.scans)

	return nil
}

// StartScan schedules one synthetic scan after the configured acquisition delay.
func (m *Mock) StartScan(kind ScanKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}
	if m.pending {
		return fmt.Errorf("scan already in flight")
	}

	m.pending = true
	m.seq++
	seq := m.seq

	go func() {
		select {
		case <-m.ctx.Done():
			return
		case <-time.After(m.cfg.ScanDelay):
		}

		scan := m.generateScan(kind, seq)

		// Delivery happens under the lock so Close cannot pull the
		// channel out from underneath the send.
		m.mu.Lock()
		defer m.mu.Unlock()
		m.pending = false
		if !m.connected {
			return
		}

		select {
		case m.scans <- scan:
		default:
			log.Printf("Scan buffer full, dropping %s scan", kind)
		}
	}()

	return nil
}

// Scans returns the channel for reading completed scans.
func (m *Mock) Scans() <-chan Scan {
	return m.scans
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// generateScan synthesizes one dual-channel scan: a sine at the mains
// frequency around mid-scale, plus deterministic pseudo-noise.
func (m *Mock) generateScan(kind ScanKind, seq int) Scan {
	var ampLeft, ampRight float32
	switch kind {
	case ScanPosition:
		ampLeft = m.cfg.WpcAmpLeft
		ampRight = m.cfg.WpcAmpRight
	case ScanCurrent:
		ampLeft = m.cfg.HallAmpLeft
		ampRight = m.cfg.HallAmpRight
	}

	var scan Scan
	scan.Kind = kind

	mid := float32(MaxSample) / 2
	omega := 2 * math32.Pi * m.cfg.MainsHz / m.cfg.SampleHz
	for i := 0; i < SamplesPerChannel; i++ {
		phase := omega * float32(i)
		noise := (math32.Sin(float32(seq*31+i)*1.7) + math32.Cos(float32(seq*17+i)*2.3)) *
			m.cfg.NoiseLevel * 0.5
		scan.Left[i] = clampSample(mid + ampLeft*math32.Sin(phase) + noise)
		scan.Right[i] = clampSample(mid + ampRight*math32.Sin(phase) + noise)
	}

	return scan
}

// clampSample converts a synthetic value to the 12-bit ADC range.
func clampSample(v float32) uint16 {
	if v < 0 {
		return 0
	}
	if v > MaxSample {
		return MaxSample
	}
	return uint16(v)
}
