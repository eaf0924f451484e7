package analytics

import (
	"log"
	"sync"
	"time"

	"github.com/chewxy/math32"
	"github.com/itohio/gocmon/pkg/acquire"
	"github.com/itohio/gocmon/pkg/config"
	"github.com/itohio/gocmon/pkg/distance"
	"github.com/itohio/gocmon/pkg/sample"
)

// DisplayMode selects what a finished measurement reports.
type DisplayMode int

const (
	DisplayAnalysed DisplayMode = iota
	DisplayRaw
)

// MeasuringType selects whether a button press runs one measurement or
// keeps measuring until the next press.
type MeasuringType int

const (
	MeasureSingle MeasuringType = iota
	MeasureContinuous
)

// Options is the per-measurement configuration snapshot. The UI hands a
// new snapshot over at any time, but it takes effect only between
// measurements so an in-flight statistical computation never sees a
// mode or cycle-count change.
type Options struct {
	Mode      distance.Mode
	Display   DisplayMode
	Measuring MeasuringType
	Cycles    int // measurement cycles per result: 1, 5 or 10
}

// Sentinel values reported when no cable is detected.
const (
	NoCableAngle = 100
	NoCableValue = -1
)

// Result is one finished measurement. Which fields are meaningful depends
// on Display: the analysed path fills the angle/distance/deviation/current
// group, the raw path fills the four per-channel amplitude means.
type Result struct {
	Display DisplayMode
	Cycles  int

	// Analysed path. Sentinels (Angle=100, others=-1) when CableDetected
	// is false.
	CableDetected bool
	AngleDeg      float32
	DistanceMM    float32
	StdDevMM      float32
	CurrentA      float32

	// Raw path: per-channel amplitude means without conversion.
	WpcLeft   float32
	WpcRight  float32
	HallLeft  float32
	HallRight float32
}

// ScanStarter requests one scan from the acquisition device. The analyzer
// never overlaps requests; completion arrives through HandleScan.
type ScanStarter interface {
	StartScan(kind acquire.ScanKind) error
}

// state tags where the analyzer is inside the two-phase cycle. Replacing
// the usual pile of busy booleans with one tag makes half-started cycles
// unrepresentable.
type state int

const (
	stateIdle state = iota
	stateAwaitPosition
	stateAwaitCurrent
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAwaitPosition:
		return "awaiting position scan"
	case stateAwaitCurrent:
		return "awaiting current scan"
	default:
		return "unknown"
	}
}

// Analyzer drives repeated two-phase measurement cycles and reduces them
// to a Result. One cycle is a position-sensor scan followed by a
// current-sensor scan; a measurement is Cycles such cycles followed by the
// statistics pass. The caller polls it: PressButton and HandleScan feed
// inputs in, Tick enforces the scan timeout, OnResult callbacks carry
// finished measurements out.
type Analyzer struct {
	cfg  *config.Config
	conv *distance.Converter
	dev  ScanStarter

	mu       sync.Mutex
	state    state
	opts     Options // active for the in-flight measurement
	next     Options // latest snapshot from the UI
	hasNext  bool
	stopWish bool
	deadline time.Time

	cycle     int
	wpcLeft   []float32
	wpcRight  []float32
	hallLeft  []float32
	hallRight []float32

	callbacks []func(Result)
	cbMu      sync.RWMutex
}

// New creates an analyzer using the given device for scan requests.
func New(cfg *config.Config, conv *distance.Converter, dev ScanStarter, opts Options) *Analyzer {
	return &Analyzer{
		cfg:   cfg,
		conv:  conv,
		dev:   dev,
		state: stateIdle,
		opts:  sanitize(opts),
	}
}

// OnResult registers a callback invoked with every finished measurement.
// Callbacks run on the caller's goroutine with no analyzer lock held.
func (a *Analyzer) OnResult(cb func(Result)) {
	a.cbMu.Lock()
	defer a.cbMu.Unlock()
	a.callbacks = append(a.callbacks, cb)
}

// SetOptions hands over a new options snapshot. It applies immediately
// when idle, otherwise once the in-flight measurement finishes.
func (a *Analyzer) SetOptions(opts Options) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.next = sanitize(opts)
	a.hasNext = true
	if a.state == stateIdle {
		a.applyPendingLocked()
	}
}

// Options returns the active options snapshot.
func (a *Analyzer) Options() Options {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.opts
}

// Busy reports whether a measurement is in flight.
func (a *Analyzer) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state != stateIdle
}

// PressButton feeds one edge-triggered button press. When idle it starts
// a measurement. During a continuous measurement it requests a stop after
// the in-flight cycle; the two-phase scan already running always completes.
func (a *Analyzer) PressButton(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != stateIdle {
		if a.opts.Measuring == MeasureContinuous {
			a.stopWish = true
		}
		return
	}

	a.startMeasurementLocked(now)
}

// Tick enforces the scan timeout. A scan request that never completes
// aborts the whole measurement back to idle instead of stalling forever.
func (a *Analyzer) Tick(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == stateIdle || now.Before(a.deadline) {
		return
	}

	log.Printf("Scan timed out while %v, aborting measurement", a.state)
	a.abortLocked()
}

// HandleScan feeds one completed scan from the device. Scans that do not
// match the awaited kind are logged and dropped.
func (a *Analyzer) HandleScan(scan acquire.Scan, now time.Time) {
	a.mu.Lock()

	var emit *Result

	switch {
	case a.state == stateAwaitPosition && scan.Kind == acquire.ScanPosition:
		ampLeft, ampRight, err := sample.Reduce(scan.Left[:], scan.Right[:])
		if err != nil {
			log.Printf("Failed to reduce position scan: %v", err)
			a.abortLocked()
			break
		}
		a.wpcLeft = append(a.wpcLeft, ampLeft)
		a.wpcRight = append(a.wpcRight, ampRight)
		a.requestLocked(acquire.ScanCurrent, stateAwaitCurrent, now)

	case a.state == stateAwaitCurrent && scan.Kind == acquire.ScanCurrent:
		ampLeft, ampRight, err := sample.Reduce(scan.Left[:], scan.Right[:])
		if err != nil {
			log.Printf("Failed to reduce current scan: %v", err)
			a.abortLocked()
			break
		}
		a.hallLeft = append(a.hallLeft, ampLeft)
		a.hallRight = append(a.hallRight, ampRight)
		a.cycle++

		if a.cycle < a.opts.Cycles {
			a.requestLocked(acquire.ScanPosition, stateAwaitPosition, now)
			break
		}

		r := analyze(a.opts, a.conv, &a.cfg.Calibration,
			a.wpcLeft, a.wpcRight, a.hallLeft, a.hallRight)
		emit = &r

		a.state = stateIdle
		restart := a.opts.Measuring == MeasureContinuous && !a.stopWish
		a.stopWish = false
		a.applyPendingLocked()
		if restart {
			a.startMeasurementLocked(now)
		}

	default:
		log.Printf("Dropping unexpected %v scan while %v", scan.Kind, a.state)
	}

	a.mu.Unlock()

	if emit != nil {
		a.notify(*emit)
	}
}

// startMeasurementLocked resets the cycle buffers and requests the first
// position scan. Caller holds the lock and has verified the idle state.
func (a *Analyzer) startMeasurementLocked(now time.Time) {
	a.cycle = 0
	a.wpcLeft = a.wpcLeft[:0]
	a.wpcRight = a.wpcRight[:0]
	a.hallLeft = a.hallLeft[:0]
	a.hallRight = a.hallRight[:0]
	a.stopWish = false
	a.requestLocked(acquire.ScanPosition, stateAwaitPosition, now)
}

// requestLocked issues one scan request and arms the timeout.
func (a *Analyzer) requestLocked(kind acquire.ScanKind, next state, now time.Time) {
	if err := a.dev.StartScan(kind); err != nil {
		log.Printf("Failed to start %v scan: %v", kind, err)
		a.abortLocked()
		return
	}
	a.state = next
	a.deadline = now.Add(a.cfg.Measurement.ScanTimeout)
}

// abortLocked drops the in-flight measurement and returns to idle.
func (a *Analyzer) abortLocked() {
	a.state = stateIdle
	a.stopWish = false
	a.applyPendingLocked()
}

// applyPendingLocked installs the latest options snapshot. Only called
// while idle, which is what keeps snapshots out of running measurements.
func (a *Analyzer) applyPendingLocked() {
	if !a.hasNext {
		return
	}
	a.opts = a.next
	a.hasNext = false
}

// notify invokes all registered callbacks without holding the state lock.
func (a *Analyzer) notify(r Result) {
	a.cbMu.RLock()
	callbacks := make([]func(Result), len(a.callbacks))
	copy(callbacks, a.callbacks)
	a.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(r)
		}
	}
}

// sanitize clamps an options snapshot to its legal values.
func sanitize(o Options) Options {
	switch o.Cycles {
	case 1, 5, 10:
	default:
		log.Printf("Invalid cycle count %d, using 1", o.Cycles)
		o.Cycles = 1
	}
	return o
}

// angleRatioThreshold is how far below the pooled mean one side's distance
// must fall before the angle indicator leaves zero. The indicator is a
// coarse three-way direction hint, not a protractor.
const (
	angleRatioThreshold = 0.8
	angleBucketDeg      = 30
)

// analyze reduces the collected cycle amplitudes to a Result.
func analyze(opts Options, conv *distance.Converter, cal *config.CalibrationConfig,
	wpcLeft, wpcRight, hallLeft, hallRight []float32) Result {

	r := Result{
		Display: opts.Display,
		Cycles:  opts.Cycles,
	}

	if opts.Display == DisplayRaw {
		r.WpcLeft = mean(wpcLeft)
		r.WpcRight = mean(wpcRight)
		r.HallLeft = mean(hallLeft)
		r.HallRight = mean(hallRight)
		return r
	}

	distLeft := make([]float32, len(wpcLeft))
	distRight := make([]float32, len(wpcRight))
	for i := range wpcLeft {
		distLeft[i] = conv.Convert(opts.Mode, distance.SideLeft, wpcLeft[i])
		distRight[i] = conv.Convert(opts.Mode, distance.SideRight, wpcRight[i])
	}

	meanLeft := mean(distLeft)
	meanRight := mean(distRight)
	pooledMean := (meanLeft + meanRight) / 2

	if pooledMean >= cal.DetectionLimitMM {
		r.CableDetected = false
		r.AngleDeg = NoCableAngle
		r.DistanceMM = NoCableValue
		r.StdDevMM = NoCableValue
		r.CurrentA = NoCableValue
		return r
	}

	r.CableDetected = true
	r.DistanceMM = pooledMean
	r.StdDevMM = pooledStdDev(distLeft, distRight, pooledMean)
	r.AngleDeg = bucketAngle(meanLeft, meanRight, pooledMean)

	if pooledMean > 0 && pooledMean <= cal.CurrentMaxDistMM {
		hallAmp := (mean(hallLeft) + mean(hallRight)) / 2
		r.CurrentA = electricalCurrent(hallAmp, pooledMean/1000, cal)
	}

	return r
}

// pooledStdDev is the population standard deviation of both sides' cycle
// distances around the pooled mean. A single cycle has no spread.
func pooledStdDev(left, right []float32, pooledMean float32) float32 {
	n := len(left) + len(right)
	if n < 4 {
		return 0
	}

	var sum float32
	for _, d := range left {
		diff := d - pooledMean
		sum += diff * diff
	}
	for _, d := range right {
		diff := d - pooledMean
		sum += diff * diff
	}

	return math32.Sqrt(sum / float32(n))
}

// bucketAngle classifies which side the cable leans towards. A side whose
// distance falls well below the pooled mean is the nearer one: left near
// means the cable tilts left of the head, reported negative.
func bucketAngle(meanLeft, meanRight, pooledMean float32) float32 {
	if pooledMean <= 0 {
		return 0
	}

	switch {
	case meanLeft/pooledMean < angleRatioThreshold:
		return -angleBucketDeg
	case meanRight/pooledMean < angleRatioThreshold:
		return angleBucketDeg
	default:
		return 0
	}
}

// electricalCurrent estimates the conductor current from the hall
// amplitude and the cable distance in meters. The amplitude is first
// turned back into the flux density at the sensor by undoing the ADC
// scaling and the two gain stages, then the field model constant relates
// field, distance and current.
func electricalCurrent(amplitude, distanceM float32, cal *config.CalibrationConfig) float32 {
	b := amplitude * cal.VoltsPerStep / cal.OpAmpGain / cal.HallGain
	if b <= 0 {
		return 0
	}
	return cal.FieldConstant * distanceM / b
}

// mean averages a cycle buffer. Buffers are never empty when this runs,
// the state machine guarantees at least one completed cycle.
func mean(values []float32) float32 {
	if len(values) == 0 {
		return 0
	}
	var sum float32
	for _, v := range values {
		sum += v
	}
	return sum / float32(len(values))
}
