package sample

import (
	"fmt"
	"log"
	"sort"

	"github.com/itohio/gocmon/pkg/acquire"
)

const (
	// tailSize is the number of samples taken from each end of the
	// sorted buffer. The reduction uses only the extremes of the
	// sensed oscillation and discards everything in between.
	tailSize = 5
	// minSamples is the smallest buffer the reduction is defined for.
	minSamples = 2 * tailSize

	midScale = acquire.MaxSample / 2
	// checkTolerance is how far the extreme-value mean may sit from
	// mid-scale before the diagnostic warning fires, in ADC steps.
	checkTolerance = 1024
)

// Reduce reduces both channels of a raw scan to one signed-centered
// amplitude each. See Amplitude for the algorithm.
func Reduce(left, right []uint16) (ampLeft, ampRight float32, err error) {
	ampLeft, err = Amplitude(left)
	if err != nil {
		return 0, 0, fmt.Errorf("left channel: %w", err)
	}
	ampRight, err = Amplitude(right)
	if err != nil {
		return 0, 0, fmt.Errorf("right channel: %w", err)
	}
	return ampLeft, ampRight, nil
}

// Amplitude reduces one channel's raw samples to a single noise-resistant
// amplitude value.
//
// The input is a sensed oscillation around mid-scale. Sorting the buffer
// and keeping only the 5 lowest and 5 highest readings isolates the wave
// crests from the bulk of the samples. The lows are reflected around the
// ADC maximum so that all ten values reference the positive crest, their
// mean is taken, and half the ADC range is subtracted to center the
// result on zero. The output is therefore the oscillation magnitude, free
// of the DC level the sensors ride on.
//
// The input slice is not modified. Fewer than 10 samples is an error.
func Amplitude(raw []uint16) (float32, error) {
	if len(raw) < minSamples {
		return 0, fmt.Errorf("need at least %d samples, got %d", minSamples, len(raw))
	}

	buf := make([]uint16, len(raw))
	copy(buf, raw)
	sort.Slice(buf, func(i, j int) bool { return buf[i] < buf[j] })

	values := make([]uint32, 0, 2*tailSize)
	for _, v := range buf[:tailSize] {
		values = append(values, uint32(v))
	}
	for _, v := range buf[len(buf)-tailSize:] {
		values = append(values, uint32(v))
	}

	// Diagnostic only: the extremes of a symmetric oscillation should
	// average out near mid-scale. A skewed mean hints at clipping or a
	// broken sensor but does not invalidate the reduction.
	var checkSum uint32
	for _, v := range values {
		checkSum += v
	}
	checkMean := checkSum / uint32(len(values))
	if checkMean > midScale+checkTolerance || checkMean < midScale-checkTolerance {
		log.Printf("Sample extremes mean %d is far from mid-scale %d", checkMean, midScale)
	}

	// Reflect the lows around the ADC maximum so they reference the
	// positive crest like the highs do.
	for i := 0; i < tailSize; i++ {
		values[i] = acquire.MaxSample - values[i]
	}

	var sum uint32
	for _, v := range values {
		sum += v
	}
	mean := sum / uint32(len(values))

	return float32(mean) - midScale, nil
}
