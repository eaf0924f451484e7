package gui

import (
	"testing"
	"time"

	"github.com/itohio/gocmon/pkg/analytics"
	"github.com/itohio/gocmon/pkg/distance"
	"github.com/stretchr/testify/assert"
	"tinygo.org/x/drivers/touch"
)

func press(x, y int) touch.Point {
	return touch.Point{X: x, Y: y, Z: 100}
}

func released() touch.Point {
	return touch.Point{}
}

func TestClassify_ModeBar(t *testing.T) {
	opts := OptionsState{Mode: distance.ModeLN}

	tests := []struct {
		name string
		x, y int
		want Event
	}{
		{
			name: "left zone selects L",
			x:    50, y: 300,
			want: Event{Kind: EventModeChange, Mode: distance.ModeL},
		},
		{
			name: "middle zone is the current mode",
			x:    120, y: 300,
			want: Event{},
		},
		{
			name: "right zone selects LNPE",
			x:    200, y: 300,
			want: Event{Kind: EventModeChange, Mode: distance.ModeLNPE},
		},
		{
			name: "zone boundary hits nothing",
			x:    80, y: 300,
			want: Event{},
		},
		{
			name: "above the bar",
			x:    50, y: 270,
			want: Event{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(200 * time.Millisecond)
			got := c.Classify(press(tt.x, tt.y), SiteMain, opts, time.Now())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_EdgeTriggered(t *testing.T) {
	c := NewClassifier(200 * time.Millisecond)
	opts := OptionsState{Mode: distance.ModeLN}
	now := time.Now()

	ev := c.Classify(press(50, 300), SiteMain, opts, now)
	assert.Equal(t, EventModeChange, ev.Kind)

	// Held finger: no second event
	ev = c.Classify(press(50, 300), SiteMain, opts, now.Add(20*time.Millisecond))
	assert.Equal(t, EventNone, ev.Kind)

	// Release and press again: fires again
	c.Classify(released(), SiteMain, opts, now.Add(40*time.Millisecond))
	ev = c.Classify(press(50, 300), SiteMain, opts, now.Add(60*time.Millisecond))
	assert.Equal(t, EventModeChange, ev.Kind)
}

func TestClassify_HintDismiss(t *testing.T) {
	c := NewClassifier(200 * time.Millisecond)

	ev := c.Classify(press(120, 160), SiteHint, OptionsState{}, time.Now())
	assert.Equal(t, EventGeneral, ev.Kind)
}

func TestClassify_OptionsToggleSettles(t *testing.T) {
	c := NewClassifier(200 * time.Millisecond)
	opts := OptionsState{}
	now := time.Now()

	ev := c.Classify(press(200, 20), SiteMain, opts, now)
	assert.Equal(t, EventOptionsToggle, ev.Kind)

	// A new press inside the settle window is swallowed
	c.Classify(released(), SiteOptions, opts, now.Add(50*time.Millisecond))
	ev = c.Classify(press(200, 20), SiteOptions, opts, now.Add(100*time.Millisecond))
	assert.Equal(t, EventNone, ev.Kind)

	// After the settle window the toggle works again
	c.Classify(released(), SiteOptions, opts, now.Add(250*time.Millisecond))
	ev = c.Classify(press(200, 20), SiteOptions, opts, now.Add(300*time.Millisecond))
	assert.Equal(t, EventOptionsToggle, ev.Kind)
}

func TestClassify_OptionRows(t *testing.T) {
	opts := OptionsState{
		Display:   analytics.DisplayAnalysed,
		Measuring: analytics.MeasureSingle,
		Accuracy:  0,
	}

	tests := []struct {
		name string
		x, y int
		want Event
	}{
		{
			name: "display row current choice",
			x:    60, y: 100,
			want: Event{},
		},
		{
			name: "display row selects raw",
			x:    180, y: 100,
			want: Event{Kind: EventOptionChange, Option: 0, Value: int(analytics.DisplayRaw)},
		},
		{
			name: "measuring row selects continuous",
			x:    180, y: 180,
			want: Event{Kind: EventOptionChange, Option: 1, Value: int(analytics.MeasureContinuous)},
		},
		{
			name: "accuracy row selects 5x",
			x:    120, y: 260,
			want: Event{Kind: EventOptionChange, Option: 2, Value: 1},
		},
		{
			name: "accuracy row selects 10x",
			x:    200, y: 260,
			want: Event{Kind: EventOptionChange, Option: 2, Value: 2},
		},
		{
			name: "between rows",
			x:    120, y: 140,
			want: Event{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(200 * time.Millisecond)
			got := c.Classify(press(tt.x, tt.y), SiteOptions, opts, time.Now())
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_OptionRowsOnlyOnOptionsSite(t *testing.T) {
	c := NewClassifier(200 * time.Millisecond)
	opts := OptionsState{Display: analytics.DisplayAnalysed}

	ev := c.Classify(press(180, 100), SiteMain, opts, time.Now())
	assert.Equal(t, EventNone, ev.Kind)
}
