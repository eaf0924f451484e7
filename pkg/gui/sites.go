package gui

import (
	"fmt"
	"image/color"

	"github.com/itohio/gocmon/pkg/analytics"
)

// Site identifies one GUI page.
type Site int

const (
	SiteNone Site = iota
	SiteHint
	SiteMain
	SiteMeasurement
	SiteOptions
)

func (s Site) String() string {
	switch s {
	case SiteNone:
		return "none"
	case SiteHint:
		return "hint"
	case SiteMain:
		return "main"
	case SiteMeasurement:
		return "measurement"
	case SiteOptions:
		return "options"
	default:
		return "unknown"
	}
}

// banner is the detection state shown behind the mode field. It is armed
// by a finished measurement and consumed by the next top-bar redraw, so
// later redraws fall back to white.
type banner int

const (
	bannerNone banner = iota
	bannerDetected
	bannerNotDetected
)

// modeEntry is one bottom-bar zone.
type modeEntry struct {
	label string
	back  color.RGBA
	frame color.RGBA
}

var modeEntries = [...]modeEntry{
	{" L", ColorLightRed, ColorRed},
	{" LN", ColorLightBlue, ColorBlue},
	{"LNPE", ColorLightGreen, ColorGreen},
}

// optionRow describes one row of the options page.
type optionRow struct {
	title   string
	choices []string
}

var optionRows = [...]optionRow{
	{"Display Data", []string{"Analysed", "Raw"}},
	{"Meas. Type", []string{"Single", "Continuous"}},
	{"Accuracy", []string{"1x", "5x", "10x"}},
}

// SiteManager owns the GUI page state and the options, applies classified
// touch events and finished measurements, and renders everything through
// the Display. It is the only writer of OptionsState.
type SiteManager struct {
	disp Display
	opts OptionsState

	site   Site
	result analytics.Result
	banner banner
}

// NewSiteManager creates a site manager starting on the empty site; the
// first Advance draws the hint page.
func NewSiteManager(disp Display, opts OptionsState) *SiteManager {
	return &SiteManager{
		disp: disp,
		opts: opts,
		site: SiteNone,
	}
}

// Site returns the current GUI page.
func (m *SiteManager) Site() Site {
	return m.site
}

// Options returns the current option values.
func (m *SiteManager) Options() OptionsState {
	return m.opts
}

// Advance runs one GUI step with this poll's inputs: the classified touch
// event, the edge-triggered button, and a finished measurement if one
// arrived. It reports whether the options changed so the caller can hand
// the analyzer a fresh snapshot.
func (m *SiteManager) Advance(ev Event, button bool, result *analytics.Result) (optionsChanged bool) {
	if result != nil {
		m.result = *result
		m.banner = bannerNone
		if result.Display == analytics.DisplayAnalysed {
			if result.CableDetected {
				m.banner = bannerDetected
			} else {
				m.banner = bannerNotDetected
			}
		}
	}

	switch m.site {
	case SiteNone:
		m.disp.Clear(ColorWhite)
		m.drawHint()
		m.site = SiteHint

	case SiteHint:
		if button || ev.Kind != EventNone {
			m.disp.Clear(ColorWhite)
			m.drawTopMode()
			m.drawTopOptions()
			m.drawModeBar()
			m.site = SiteMain
		}

	case SiteMain, SiteMeasurement:
		switch ev.Kind {
		case EventModeChange:
			m.opts.Mode = ev.Mode
			optionsChanged = true
			m.drawTopMode()
		case EventOptionsToggle:
			m.site = SiteOptions
			m.clearSite()
			m.drawOptions()
			m.drawTopOptions()
		default:
			if result != nil {
				m.drawResult()
				m.drawTopMode()
				m.site = SiteMeasurement
			}
		}

	case SiteOptions:
		switch ev.Kind {
		case EventModeChange:
			m.opts.Mode = ev.Mode
			optionsChanged = true
			m.drawTopMode()
		case EventOptionsToggle:
			m.site = SiteMeasurement
			m.clearSite()
			m.drawResult()
			m.drawTopMode()
			m.drawTopOptions()
		case EventOptionChange:
			m.applyOption(ev.Option, ev.Value)
			optionsChanged = true
			m.drawOptions()
		}
	}

	return optionsChanged
}

// applyOption writes one option row's new value.
func (m *SiteManager) applyOption(option, value int) {
	switch option {
	case 0:
		m.opts.Display = analytics.DisplayMode(value)
	case 1:
		m.opts.Measuring = analytics.MeasuringType(value)
	case 2:
		m.opts.Accuracy = value
	}
}

// drawHint renders the splash page.
func (m *SiteManager) drawHint() {
	m.disp.DrawText(5, 10, "Cable-Monitor", Font24, ColorBlack, ColorWhite)
	m.disp.DrawText(5, 60, "Touch on screen or", Font16, ColorBlack, ColorWhite)
	m.disp.DrawText(5, 80, "press blue button", Font16, ColorBlack, ColorWhite)
	m.disp.DrawText(5, 100, "to proceed to", Font16, ColorBlack, ColorWhite)
	m.disp.DrawText(5, 120, "the main screen", Font16, ColorBlack, ColorWhite)
}

// drawModeBar renders the three mode zones at the bottom of the screen.
func (m *SiteManager) drawModeBar() {
	const (
		margin = 2
		height = 40
		y      = ScreenHeight - height
	)
	w := ScreenWidth / len(modeEntries)

	for i, entry := range modeEntries {
		x := i * w
		m.disp.FillRect(x+margin, y+margin, w-2*margin, height-2*margin, entry.back)
		m.disp.DrawRect(x+margin, y+margin, w-2*margin, height-2*margin, entry.frame)
		m.disp.DrawText(x+7*margin, y+6*margin, entry.label, Font20, ColorBlack, entry.back)
	}
}

// drawTopMode renders the mode field in the top bar. The background is
// green when the last measurement found a cable, red when it did not, and
// white otherwise; the detection state is consumed by the draw.
func (m *SiteManager) drawTopMode() {
	const (
		margin = 2
		height = 40
	)
	w := ScreenWidth / 3

	back := ColorWhite
	switch m.banner {
	case bannerDetected:
		back = ColorLightGreen
	case bannerNotDetected:
		back = ColorLightRed
	}
	m.banner = bannerNone

	m.disp.FillRect(margin, margin, 2*w-2*margin, height-2*margin, back)
	m.disp.DrawRect(margin, margin, 2*w-2*margin, height-2*margin, ColorBlack)
	m.disp.DrawText(3*margin, 6*margin, "Mode:", Font20, ColorBlack, back)
	m.disp.DrawText(3*margin+84, 6*margin, m.opts.Mode.String(), Font20, ColorDarkGray, back)
}

// drawTopOptions renders the OPTN/BACK field in the top right corner.
func (m *SiteManager) drawTopOptions() {
	const (
		margin = 2
		height = 40
	)
	w := ScreenWidth / 3
	x := 2 * w

	m.disp.FillRect(x+margin, margin, w-2*margin, height-2*margin, ColorLightGray)
	if m.site != SiteOptions {
		m.disp.DrawText(x+7*margin, 6*margin, "OPTN", Font20, ColorDarkGray, ColorLightGray)
	} else {
		m.disp.DrawText(x+7*margin, 6*margin, "BACK", Font20, ColorRed, ColorLightGray)
	}
	m.disp.DrawRect(x+margin, margin, w-2*margin, height-2*margin, ColorBlack)
}

// clearSite erases the content region between the top bar and the mode
// bar, removing leftovers of differently shaped previous content.
func (m *SiteManager) clearSite() {
	m.disp.FillRect(0, 40, ScreenWidth, 240, ColorWhite)
}

// drawResult renders the stored measurement, analysed or raw.
func (m *SiteManager) drawResult() {
	if m.result.Display == analytics.DisplayRaw {
		m.drawRaw()
	} else {
		m.drawMeasurement()
	}
}

// drawMeasurement renders the analysed measurement page: the angle dial
// and the value lines. Sentinel values keep their lines off the screen.
func (m *SiteManager) drawMeasurement() {
	m.clearSite()

	r := m.result

	// Angle dial: a half circle with a baseline and a center mark
	m.disp.FillRect(0, 45, ScreenWidth, 70, ColorWhite)
	m.disp.DrawCircle(120, 110, 50, ColorBlack)
	m.disp.FillRect(0, 110, ScreenWidth, 60, ColorWhite)
	m.disp.DrawLine(60, 110, 180, 110, ColorBlack)
	m.disp.DrawLine(120, 50, 120, 110, ColorBlack)

	angleOnDial := r.AngleDeg > -46 && r.AngleDeg < 46
	if angleOnDial {
		const dx, dy = 0.888, 0.333
		x := 120 + int(dx*r.AngleDeg)
		y := 55 + int(dy*r.AngleDeg)
		if r.AngleDeg < 0 {
			y = 55 - int(dy*r.AngleDeg)
		}
		m.disp.DrawLine(120, 110, x, y, ColorRed)
	}

	x := 30
	y := 125
	if angleOnDial {
		text := fmt.Sprintf("Angle:    %4ddeg", int(r.AngleDeg))
		m.disp.DrawText(x, y, text, Font16, ColorBlack, ColorWhite)
	}
	y += 30

	if r.DistanceMM > analytics.NoCableValue {
		text := fmt.Sprintf("Distance: %4.1fmm", r.DistanceMM)
		m.disp.DrawText(x, y, text, Font16, ColorBlack, ColorWhite)

		if r.Cycles > 1 {
			y += 20
			text = fmt.Sprintf("Std.Dev.: %4.1fmm", r.StdDevMM)
			m.disp.DrawText(x, y, text, Font16, ColorBlack, ColorWhite)
			y += 20
			text = fmt.Sprintf("Accuracy: %4dx", r.Cycles)
			m.disp.DrawText(x, y, text, Font16, ColorBlack, ColorWhite)
		}
	}

	if r.DistanceMM > analytics.NoCableValue && r.DistanceMM <= 10 {
		y += 30
		text := fmt.Sprintf("Current:  %4.1fA", r.CurrentA)
		m.disp.DrawText(x, y, text, Font16, ColorBlack, ColorWhite)
	}

	y += 30
	if m.opts.Measuring == analytics.MeasureSingle {
		m.disp.DrawText(x, y, "Meas.Type:   sng", Font16, ColorBlack, ColorWhite)
	} else {
		m.disp.DrawText(x, y, "Meas.Type:  cont", Font16, ColorBlack, ColorWhite)
	}
}

// drawRaw renders the four per-channel amplitudes without conversion.
func (m *SiteManager) drawRaw() {
	m.clearSite()

	r := m.result
	x := 30
	y := 60

	m.disp.DrawText(x, y, "Hall Sensors:", Font20, ColorBlack, ColorWhite)
	y += 20
	m.disp.DrawText(x, y, fmt.Sprintf("Right:    %5.2f", r.HallRight), Font16, ColorBlack, ColorWhite)
	y += 20
	m.disp.DrawText(x, y, fmt.Sprintf("Left:     %5.2f", r.HallLeft), Font16, ColorBlack, ColorWhite)
	y += 35

	m.disp.DrawText(x, y, "WPC Sensors:", Font20, ColorBlack, ColorWhite)
	y += 20
	m.disp.DrawText(x, y, fmt.Sprintf("Right:    %5.2f", r.WpcRight), Font16, ColorBlack, ColorWhite)
	y += 20
	m.disp.DrawText(x, y, fmt.Sprintf("Left:     %5.2f", r.WpcLeft), Font16, ColorBlack, ColorWhite)
}

// drawOptions renders the three option rows with the active choice
// highlighted.
func (m *SiteManager) drawOptions() {
	const (
		margin = 4
		height = 40
	)

	active := [...]int{int(m.opts.Display), int(m.opts.Measuring), m.opts.Accuracy}

	for i, row := range optionRows {
		y := 38 + i*80

		m.disp.FillRect(margin, y+margin, ScreenWidth-2*margin, 2*height-margin, ColorLightGray)
		m.disp.DrawRect(margin, y+margin, ScreenWidth-2*margin, height, ColorBlack)
		m.disp.DrawText(3*margin, y+3*margin, row.title, Font20, ColorBlack, ColorLightGray)

		w := (ScreenWidth - 2*margin) / len(row.choices)
		for j, choice := range row.choices {
			back := ColorLightGray
			if active[i] == j {
				back = ColorLightCyan
				m.disp.FillRect(margin+j*w, y+margin+height, w, height-margin, back)
			}
			m.disp.DrawRect(margin+j*w, y+margin+height, w, height-margin, ColorBlack)
			m.disp.DrawText(3*margin+j*w, y+4*margin+height, choice, Font16, ColorBlack, back)
		}
	}
}
