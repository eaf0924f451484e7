package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Len(t, cfg.Lut.DistanceMM, 11)
	assert.Equal(t, float32(0), cfg.Lut.DistanceMM[0])
	assert.Equal(t, float32(300), cfg.Lut.DistanceMM[10])
	assert.Len(t, cfg.Lut.L.Left, 11)
	assert.Len(t, cfg.Lut.LN.Right, 11)
	assert.Len(t, cfg.Lut.LNPE.Left, 11)
	assert.Equal(t, float32(365), cfg.Lut.LN.Left[0])
	assert.Equal(t, float32(165), cfg.Lut.LN.Right[10])
	assert.Equal(t, float32(0.0008056640625), cfg.Calibration.VoltsPerStep)
	assert.Equal(t, float32(95), cfg.Calibration.OpAmpGain)
	assert.Equal(t, float32(90), cfg.Calibration.HallGain)
	assert.Equal(t, float32(300), cfg.Calibration.DetectionLimitMM)
	assert.Equal(t, 2*time.Second, cfg.Measurement.ScanTimeout)
	assert.Equal(t, 200*time.Millisecond, cfg.Measurement.TouchSettle)
}

func TestLoad_FileNotExists(t *testing.T) {
	cfg, err := Load("nonexistent.yaml")
	require.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyUSB1"

lut:
  distance_mm: [0, 100, 300]
  l:
    left: [800, 500, 400]
    right: [810, 450, 330]
  ln:
    left: [365, 265, 210]
    right: [570, 265, 165]
  lnpe:
    left: [315, 235, 204]
    right: [450, 237, 170]

calibration:
  op_amp_gain: 100
  hall_gain: 80

measurement:
  scan_timeout: 5s
  touch_settle: 300ms
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, []float32{0, 100, 300}, cfg.Lut.DistanceMM)
	assert.Equal(t, []float32{365, 265, 210}, cfg.Lut.LN.Left)
	assert.Equal(t, float32(100), cfg.Calibration.OpAmpGain)
	assert.Equal(t, float32(80), cfg.Calibration.HallGain)
	assert.Equal(t, 5*time.Second, cfg.Measurement.ScanTimeout)
	assert.Equal(t, 300*time.Millisecond, cfg.Measurement.TouchSettle)
	// Untouched fields fall back to defaults
	assert.Equal(t, float32(0.0008056640625), cfg.Calibration.VoltsPerStep)
	assert.Equal(t, 20*time.Millisecond, cfg.Measurement.PollInterval)
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = tmpfile.WriteString("invalid: yaml: content: [")
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_PartialYAML(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "test_config_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	yamlContent := `
serial:
  port: "/dev/ttyUSB0"
`

	_, err = tmpfile.WriteString(yamlContent)
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	cfg, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	// Should use defaults for missing fields
	assert.Equal(t, "/dev/ttyUSB0", cfg.Serial.Port)
	assert.Len(t, cfg.Lut.DistanceMM, 11)               // default
	assert.Equal(t, float32(95), cfg.Calibration.OpAmpGain) // default
	assert.Equal(t, 2*time.Second, cfg.Measurement.ScanTimeout) // default
}

func TestSave(t *testing.T) {
	cfg := Default()
	cfg.Serial.Port = "/dev/ttyUSB0"
	cfg.Measurement.ScanTimeout = 10 * time.Second
	cfg.Mock.WpcAmpLeft = 123

	tmpfile, err := os.CreateTemp("", "test_save_*.yaml")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	err = cfg.Save(tmpfile.Name())
	require.NoError(t, err)

	// Load it back and verify
	loaded, err := Load(tmpfile.Name())
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB0", loaded.Serial.Port)
	assert.Equal(t, 10*time.Second, loaded.Measurement.ScanTimeout)
	assert.Equal(t, float32(123), loaded.Mock.WpcAmpLeft)
	assert.Equal(t, cfg.Lut.LNPE.Right, loaded.Lut.LNPE.Right)
}
