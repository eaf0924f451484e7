package acquire

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// SamplesPerChannel is the number of raw samples per channel and scan.
	// 12 samples per 50 Hz period at 600 Hz sampling, 5 periods per scan.
	SamplesPerChannel = 60
	// MaxSample is the maximum value of a 12-bit ADC reading.
	MaxSample = 4095
)

// ScanKind selects which sensor pair a scan samples.
type ScanKind int

const (
	// ScanPosition samples the inductive WPC position sensor pair.
	ScanPosition ScanKind = iota
	// ScanCurrent samples the hall current sensor pair.
	ScanCurrent
)

// String returns the protocol token for the scan kind.
func (k ScanKind) String() string {
	switch k {
	case ScanPosition:
		return "wpc"
	case ScanCurrent:
		return "hall"
	default:
		return "unknown"
	}
}

// Scan is one completed dual-channel acquisition. Left and Right hold
// SamplesPerChannel raw ADC readings each, in sampling order.
type Scan struct {
	Kind  ScanKind
	Left  [SamplesPerChannel]uint16
	Right [SamplesPerChannel]uint16
}

// parseLine parses a scan line from the sensor head.
// Format: kind followed by 2*SamplesPerChannel interleaved readings
// (left then right per sampling instant), comma separated.
// Example: wpc,2048,2051,2040,...
func parseLine(line string) (Scan, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 1+2*SamplesPerChannel {
		return Scan{}, fmt.Errorf("invalid scan line: expected %d fields, got %d", 1+2*SamplesPerChannel, len(parts))
	}

	var scan Scan
	switch parts[0] {
	case "wpc":
		scan.Kind = ScanPosition
	case "hall":
		scan.Kind = ScanCurrent
	default:
		return Scan{}, fmt.Errorf("invalid scan kind %q", parts[0])
	}

	for i := 0; i < SamplesPerChannel; i++ {
		left, err := strconv.ParseUint(parts[1+2*i], 10, 16)
		if err != nil {
			return Scan{}, fmt.Errorf("invalid left sample %d: %w", i, err)
		}
		if left > MaxSample {
			return Scan{}, fmt.Errorf("left sample %d out of range: %d (max %d)", i, left, MaxSample)
		}
		right, err := strconv.ParseUint(parts[2+2*i], 10, 16)
		if err != nil {
			return Scan{}, fmt.Errorf("invalid right sample %d: %w", i, err)
		}
		if right > MaxSample {
			return Scan{}, fmt.Errorf("right sample %d out of range: %d (max %d)", i, right, MaxSample)
		}
		scan.Left[i] = uint16(left)
		scan.Right[i] = uint16(right)
	}

	return scan, nil
}
