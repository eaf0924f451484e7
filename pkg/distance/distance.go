package distance

import (
	"fmt"

	"github.com/itohio/gocmon/pkg/config"
)

// Mode selects which wiring the sensed cable carries. The coupling between
// the cable and the sensors differs per wiring, so every mode has its own
// calibration tables.
type Mode int

const (
	ModeL Mode = iota
	ModeLN
	ModeLNPE
)

func (m Mode) String() string {
	switch m {
	case ModeL:
		return "L"
	case ModeLN:
		return "L+N"
	case ModeLNPE:
		return "L+N+PE"
	default:
		return "unknown"
	}
}

// Side selects one of the two pickup coils.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "unknown"
	}
}

// Converter maps a sensed oscillation amplitude to a cable distance by
// interpolating the calibration tables. Amplitude falls off with distance,
// so the tables are non-increasing over the ascending distance axis.
// A Converter is immutable after construction and safe for concurrent use.
type Converter struct {
	axis   []float32
	tables [3][2][]float32
}

// NewConverter validates the calibration tables and builds a converter
// from them. The distance axis must be strictly ascending, every table
// must match its length, and every table must be non-increasing.
func NewConverter(cfg config.LutConfig) (*Converter, error) {
	c := &Converter{
		axis: append([]float32(nil), cfg.DistanceMM...),
	}
	c.tables[ModeL][SideLeft] = append([]float32(nil), cfg.L.Left...)
	c.tables[ModeL][SideRight] = append([]float32(nil), cfg.L.Right...)
	c.tables[ModeLN][SideLeft] = append([]float32(nil), cfg.LN.Left...)
	c.tables[ModeLN][SideRight] = append([]float32(nil), cfg.LN.Right...)
	c.tables[ModeLNPE][SideLeft] = append([]float32(nil), cfg.LNPE.Left...)
	c.tables[ModeLNPE][SideRight] = append([]float32(nil), cfg.LNPE.Right...)

	if len(c.axis) < 2 {
		return nil, fmt.Errorf("distance axis needs at least 2 nodes, got %d", len(c.axis))
	}
	for i := 1; i < len(c.axis); i++ {
		if c.axis[i] <= c.axis[i-1] {
			return nil, fmt.Errorf("distance axis not ascending at node %d: %v <= %v",
				i, c.axis[i], c.axis[i-1])
		}
	}

	for mode := ModeL; mode <= ModeLNPE; mode++ {
		for side := SideLeft; side <= SideRight; side++ {
			table := c.tables[mode][side]
			if len(table) != len(c.axis) {
				return nil, fmt.Errorf("%v %v table has %d nodes, axis has %d",
					mode, side, len(table), len(c.axis))
			}
			for i := 1; i < len(table); i++ {
				if table[i] > table[i-1] {
					return nil, fmt.Errorf("%v %v table increases at node %d: %v > %v",
						mode, side, i, table[i], table[i-1])
				}
			}
		}
	}

	return c, nil
}

// MaxDistance returns the far end of the distance axis, beyond which the
// converter never reports.
func (c *Converter) MaxDistance() float32 {
	return c.axis[len(c.axis)-1]
}

// Convert maps one channel's amplitude to a distance in millimeters.
//
// Amplitudes at or above the first table node clamp to the nearest
// calibrated distance, amplitudes at or below the last node clamp to the
// farthest. An amplitude matching a node exactly returns that node's
// distance, anything in between is interpolated linearly between its
// bracketing nodes. The result is always within the calibrated range.
func (c *Converter) Convert(mode Mode, side Side, amplitude float32) float32 {
	table := c.tables[mode][side]
	last := len(table) - 1

	if amplitude >= table[0] {
		return c.axis[0]
	}
	if amplitude <= table[last] {
		return c.axis[last]
	}

	for i := 0; i < last; i++ {
		if amplitude == table[i] {
			return c.axis[i]
		}
		if amplitude > table[i+1] {
			// Bracketed by nodes i and i+1. The exact-match and clamp
			// checks above guarantee table[i] > amplitude > table[i+1],
			// so the span below is never zero.
			span := table[i] - table[i+1]
			frac := (table[i] - amplitude) / span
			return c.axis[i] + frac*(c.axis[i+1]-c.axis[i])
		}
	}

	return c.axis[last]
}
