package gui

import (
	"github.com/itohio/gocmon/pkg/analytics"
	"github.com/itohio/gocmon/pkg/distance"
)

// accuracyCycles maps the accuracy option index to measurement cycles.
var accuracyCycles = [...]int{1, 5, 10}

// OptionsState holds the three user options plus the wiring mode from the
// bottom bar. It is owned by the site manager: touch events mutate it
// there, everyone else reads it. The analyzer gets a Snapshot, never a
// live reference.
type OptionsState struct {
	Mode      distance.Mode
	Display   analytics.DisplayMode
	Measuring analytics.MeasuringType
	Accuracy  int // option index 0..2 for 1x/5x/10x
}

// Snapshot converts the UI state to a per-measurement options record.
func (o OptionsState) Snapshot() analytics.Options {
	idx := o.Accuracy
	if idx < 0 || idx >= len(accuracyCycles) {
		idx = 0
	}
	return analytics.Options{
		Mode:      o.Mode,
		Display:   o.Display,
		Measuring: o.Measuring,
		Cycles:    accuracyCycles[idx],
	}
}
