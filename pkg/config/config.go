package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Lut         LutConfig         `yaml:"lut"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Measurement MeasurementConfig `yaml:"measurement"`
	Mock        MockConfig        `yaml:"mock"`
}

// SerialConfig contains serial port configuration for the sensor head.
type SerialConfig struct {
	Port string `yaml:"port"`
}

// SideTables holds one amplitude lookup table per sensor side.
// Both tables share the distance axis of LutConfig and must be
// monotonically non-increasing (coupling falls off with distance).
type SideTables struct {
	Left  []float32 `yaml:"left"`
	Right []float32 `yaml:"right"`
}

// LutConfig contains the amplitude-to-distance calibration tables,
// one pair per wiring mode.
type LutConfig struct {
	DistanceMM []float32  `yaml:"distance_mm"`
	L          SideTables `yaml:"l"`
	LN         SideTables `yaml:"ln"`
	LNPE       SideTables `yaml:"lnpe"`
}

// CalibrationConfig contains the constants for the current calculation
// and the plausibility limits of the distance estimate.
type CalibrationConfig struct {
	VoltsPerStep  float32 `yaml:"volts_per_step"` // ADC volts per digit
	OpAmpGain     float32 `yaml:"op_amp_gain"`    // Amplification of the input circuit
	HallGain      float32 `yaml:"hall_gain"`      // Amplification of the hall sensor
	FieldConstant float32 `yaml:"field_constant"` // Permeability/pi constant of the field model

	CurrentMaxDistMM float32 `yaml:"current_max_dist_mm"` // Current shown only closer than this
	DetectionLimitMM float32 `yaml:"detection_limit_mm"`  // Mean beyond this means no cable
}

// MeasurementConfig contains measurement loop timing parameters.
type MeasurementConfig struct {
	ScanTimeout  time.Duration `yaml:"scan_timeout"`  // Abort a measurement if a scan never completes
	TouchSettle  time.Duration `yaml:"touch_settle"`  // Dead time after the options toggle fires
	PollInterval time.Duration `yaml:"poll_interval"` // Period of the main poll loop
}

// MockConfig configures the simulated sensor head.
type MockConfig struct {
	WpcAmpLeft   float32       `yaml:"wpc_amp_left"`   // Target WPC oscillation amplitude, ADC steps
	WpcAmpRight  float32       `yaml:"wpc_amp_right"`  // Target WPC oscillation amplitude, ADC steps
	HallAmpLeft  float32       `yaml:"hall_amp_left"`  // Target hall oscillation amplitude, ADC steps
	HallAmpRight float32       `yaml:"hall_amp_right"` // Target hall oscillation amplitude, ADC steps
	NoiseLevel   float32       `yaml:"noise_level"`    // Additive noise, ADC steps
	MainsHz      float32       `yaml:"mains_hz"`       // Frequency of the sensed oscillation
	SampleHz     float32       `yaml:"sample_hz"`      // Scan sampling frequency
	ScanDelay    time.Duration `yaml:"scan_delay"`     // Simulated acquisition time per scan
}

// Default returns a default configuration with the reference calibration.
// The lookup tables are the measured curves of the reference sensor pair,
// one pair per wiring mode, over a shared 0..300 mm distance axis.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			Port: "/dev/ttyACM0",
		},
		Lut: LutConfig{
			DistanceMM: []float32{0, 10, 20, 30, 40, 50, 70, 100, 150, 200, 300},
			L: SideTables{
				Left:  []float32{795, 740, 683, 570, 540, 510, 490, 460, 430, 420, 410},
				Right: []float32{810, 690, 620, 565, 530, 510, 490, 450, 395, 380, 330},
			},
			LN: SideTables{
				Left:  []float32{365, 350, 350, 325, 320, 305, 275, 265, 262, 215, 210},
				Right: []float32{570, 510, 430, 375, 340, 330, 290, 265, 245, 195, 165},
			},
			LNPE: SideTables{
				Left:  []float32{315, 292, 280, 263, 260, 255, 242, 235, 220, 211, 204},
				Right: []float32{450, 363, 306, 283, 273, 267, 263, 237, 215, 198, 170},
			},
		},
		Calibration: CalibrationConfig{
			VoltsPerStep:     0.0008056640625,
			OpAmpGain:        95,
			HallGain:         90,
			FieldConstant:    4998556.330,
			CurrentMaxDistMM: 10,
			DetectionLimitMM: 300,
		},
		Measurement: MeasurementConfig{
			ScanTimeout:  2 * time.Second,
			TouchSettle:  200 * time.Millisecond,
			PollInterval: 20 * time.Millisecond,
		},
		Mock: MockConfig{
			WpcAmpLeft:   350,
			WpcAmpRight:  340,
			HallAmpLeft:  900,
			HallAmpRight: 900,
			NoiseLevel:   4,
			MainsHz:      50,
			SampleHz:     600,
			ScanDelay:    100 * time.Millisecond,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}

	if len(c.Lut.DistanceMM) == 0 {
		c.Lut = def.Lut
	}
	if len(c.Lut.L.Left) == 0 || len(c.Lut.L.Right) == 0 {
		c.Lut.L = def.Lut.L
	}
	if len(c.Lut.LN.Left) == 0 || len(c.Lut.LN.Right) == 0 {
		c.Lut.LN = def.Lut.LN
	}
	if len(c.Lut.LNPE.Left) == 0 || len(c.Lut.LNPE.Right) == 0 {
		c.Lut.LNPE = def.Lut.LNPE
	}

	if c.Calibration.VoltsPerStep == 0 {
		c.Calibration.VoltsPerStep = def.Calibration.VoltsPerStep
	}
	if c.Calibration.OpAmpGain == 0 {
		c.Calibration.OpAmpGain = def.Calibration.OpAmpGain
	}
	if c.Calibration.HallGain == 0 {
		c.Calibration.HallGain = def.Calibration.HallGain
	}
	if c.Calibration.FieldConstant == 0 {
		c.Calibration.FieldConstant = def.Calibration.FieldConstant
	}
	if c.Calibration.CurrentMaxDistMM == 0 {
		c.Calibration.CurrentMaxDistMM = def.Calibration.CurrentMaxDistMM
	}
	if c.Calibration.DetectionLimitMM == 0 {
		c.Calibration.DetectionLimitMM = def.Calibration.DetectionLimitMM
	}

	if c.Measurement.ScanTimeout == 0 {
		c.Measurement.ScanTimeout = def.Measurement.ScanTimeout
	}
	if c.Measurement.TouchSettle == 0 {
		c.Measurement.TouchSettle = def.Measurement.TouchSettle
	}
	if c.Measurement.PollInterval == 0 {
		c.Measurement.PollInterval = def.Measurement.PollInterval
	}

	if c.Mock.MainsHz == 0 {
		c.Mock.MainsHz = def.Mock.MainsHz
	}
	if c.Mock.SampleHz == 0 {
		c.Mock.SampleHz = def.Mock.SampleHz
	}
	if c.Mock.ScanDelay == 0 {
		c.Mock.ScanDelay = def.Mock.ScanDelay
	}
}
