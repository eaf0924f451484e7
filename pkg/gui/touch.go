package gui

import (
	"time"

	"github.com/itohio/gocmon/pkg/analytics"
	"github.com/itohio/gocmon/pkg/distance"
	"tinygo.org/x/drivers/touch"
)

// EventKind tags a classified touch input.
type EventKind int

const (
	EventNone EventKind = iota
	// EventGeneral is an unspecific touch, only meaningful on the hint site.
	EventGeneral
	// EventModeChange selects a wiring mode on the bottom bar.
	EventModeChange
	// EventOptionsToggle enters or leaves the options site.
	EventOptionsToggle
	// EventOptionChange selects a new value for one option row.
	EventOptionChange
)

// Event is one classified touch. Mode is set for EventModeChange,
// Option/Value for EventOptionChange.
type Event struct {
	Kind   EventKind
	Mode   distance.Mode
	Option int
	Value  int
}

// Classifier turns raw touch samples into GUI events. It is edge
// triggered: only the transition from released to pressed is evaluated,
// so a held finger yields exactly one event. Classification never mutates
// any state besides the classifier's own latches; the site manager owns
// applying events.
type Classifier struct {
	settle time.Duration

	prevTouched bool
	settleUntil time.Time
}

// NewClassifier creates a classifier with the given settle delay. After
// an options toggle fires, touches are ignored for that long so one press
// cannot toggle twice.
func NewClassifier(settle time.Duration) *Classifier {
	return &Classifier{settle: settle}
}

// Classify evaluates one polled touch sample against the current site and
// options. A pressure of zero means released.
func (c *Classifier) Classify(p touch.Point, site Site, opts OptionsState, now time.Time) Event {
	touched := p.Z > 0
	rising := touched && !c.prevTouched
	c.prevTouched = touched

	if !rising || now.Before(c.settleUntil) {
		return Event{}
	}

	x, y := p.X, p.Y

	if site == SiteHint {
		return Event{Kind: EventGeneral}
	}

	if site != SiteMain && site != SiteMeasurement && site != SiteOptions {
		return Event{}
	}

	// Options toggle, top right
	if y < 40 && x > 160 {
		c.settleUntil = now.Add(c.settle)
		return Event{Kind: EventOptionsToggle}
	}

	// Mode bar, bottom. Fires only on an actual change.
	if y > 280 {
		switch {
		case x < 80 && opts.Mode != distance.ModeL:
			return Event{Kind: EventModeChange, Mode: distance.ModeL}
		case 80 < x && x < 160 && opts.Mode != distance.ModeLN:
			return Event{Kind: EventModeChange, Mode: distance.ModeLN}
		case x > 160 && opts.Mode != distance.ModeLNPE:
			return Event{Kind: EventModeChange, Mode: distance.ModeLNPE}
		}
		return Event{}
	}

	if site == SiteOptions {
		return classifyOptionRows(x, y, opts)
	}

	return Event{}
}

// classifyOptionRows maps a touch inside the three option rows to an
// option-change event. Rows sit at y 80..120, 160..200 and 240..280; the
// first two split into two columns, the accuracy row into three.
func classifyOptionRows(x, y int, opts OptionsState) Event {
	change := func(option, value int) Event {
		return Event{Kind: EventOptionChange, Option: option, Value: value}
	}

	switch {
	case 80 < y && y < 120:
		if x < 120 && opts.Display != analytics.DisplayAnalysed {
			return change(0, int(analytics.DisplayAnalysed))
		}
		if x > 120 && opts.Display != analytics.DisplayRaw {
			return change(0, int(analytics.DisplayRaw))
		}
	case 160 < y && y < 200:
		if x < 120 && opts.Measuring != analytics.MeasureSingle {
			return change(1, int(analytics.MeasureSingle))
		}
		if x > 120 && opts.Measuring != analytics.MeasureContinuous {
			return change(1, int(analytics.MeasureContinuous))
		}
	case 240 < y && y < 280:
		switch {
		case x < 80 && opts.Accuracy != 0:
			return change(2, 0)
		case 80 < x && x < 160 && opts.Accuracy != 1:
			return change(2, 1)
		case x > 160 && opts.Accuracy != 2:
			return change(2, 2)
		}
	}

	return Event{}
}
