package acquire

import (
	"testing"
	"time"

	"github.com/itohio/gocmon/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockConfig() *config.MockConfig {
	return &config.MockConfig{
		WpcAmpLeft:   350,
		WpcAmpRight:  300,
		HallAmpLeft:  900,
		HallAmpRight: 900,
		NoiseLevel:   0,
		MainsHz:      50,
		SampleHz:     600,
		ScanDelay:    time.Millisecond,
	}
}

func TestNewMock(t *testing.T) {
	cfg := mockConfig()
	dev := NewMock(cfg)
	assert.NotNil(t, dev)
	assert.Equal(t, cfg, dev.cfg)
	assert.NotNil(t, dev.scans)
	assert.False(t, dev.IsConnected())
}

func TestNewMock_NilConfig(t *testing.T) {
	dev := NewMock(nil)
	assert.NotNil(t, dev)
	assert.NotNil(t, dev.cfg)
	assert.Equal(t, float32(50), dev.cfg.MainsHz)
	assert.Equal(t, float32(600), dev.cfg.SampleHz)
	assert.NotZero(t, dev.cfg.ScanDelay)
}

func TestMock_ConnectClose(t *testing.T) {
	dev := NewMock(mockConfig())

	require.NoError(t, dev.Connect())
	assert.True(t, dev.IsConnected())
	assert.Error(t, dev.Connect(), "second connect should fail")

	require.NoError(t, dev.Close())
	assert.False(t, dev.IsConnected())
	assert.NoError(t, dev.Close(), "closing twice is a no-op")
}

func TestMock_StartScanRequiresConnection(t *testing.T) {
	dev := NewMock(mockConfig())
	assert.Error(t, dev.StartScan(ScanPosition))
}

func TestMock_StartScanDeliversScan(t *testing.T) {
	dev := NewMock(mockConfig())
	require.NoError(t, dev.Connect())
	defer dev.Close()

	require.NoError(t, dev.StartScan(ScanPosition))

	select {
	case scan := <-dev.Scans():
		assert.Equal(t, ScanPosition, scan.Kind)
		// Noise is disabled, so the waveform is a clean sine around
		// mid-scale: peaks must reach mid +/- amplitude.
		var min, max uint16 = MaxSample, 0
		for _, v := range scan.Left {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		assert.InDelta(t, 2047-350, float64(min), 2)
		assert.InDelta(t, 2047+350, float64(max), 2)
	case <-time.After(time.Second):
		t.Fatal("no scan delivered")
	}
}

func TestMock_RejectsOverlappingScan(t *testing.T) {
	cfg := mockConfig()
	cfg.ScanDelay = 100 * time.Millisecond
	dev := NewMock(cfg)
	require.NoError(t, dev.Connect())
	defer dev.Close()

	require.NoError(t, dev.StartScan(ScanPosition))
	assert.Error(t, dev.StartScan(ScanCurrent), "second scan while one is in flight")

	select {
	case <-dev.Scans():
	case <-time.After(time.Second):
		t.Fatal("no scan delivered")
	}

	// After delivery a new scan may be started again
	assert.NoError(t, dev.StartScan(ScanCurrent))
}

func TestMock_HallAmplitude(t *testing.T) {
	dev := NewMock(mockConfig())
	require.NoError(t, dev.Connect())
	defer dev.Close()

	require.NoError(t, dev.StartScan(ScanCurrent))

	select {
	case scan := <-dev.Scans():
		assert.Equal(t, ScanCurrent, scan.Kind)
		var max uint16
		for _, v := range scan.Right {
			if v > max {
				max = v
			}
		}
		assert.InDelta(t, 2047+900, float64(max), 2)
	case <-time.After(time.Second):
		t.Fatal("no scan delivered")
	}
}
