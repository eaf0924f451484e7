package distance

import (
	"testing"

	"github.com/itohio/gocmon/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceConverter(t *testing.T) *Converter {
	t.Helper()
	c, err := NewConverter(config.Default().Lut)
	require.NoError(t, err)
	return c
}

func TestConvert(t *testing.T) {
	c := referenceConverter(t)

	tests := []struct {
		name      string
		mode      Mode
		side      Side
		amplitude float32
		want      float32
	}{
		{
			name:      "exact first node",
			mode:      ModeLN,
			side:      SideLeft,
			amplitude: 365,
			want:      0,
		},
		{
			name:      "exact inner node",
			mode:      ModeLN,
			side:      SideRight,
			amplitude: 430,
			want:      20,
		},
		{
			name: "interpolated between nodes",
			mode: ModeLN,
			side: SideRight,
			// 200 sits between 245 at 150mm and 195 at 200mm:
			// 150 + 45/50 * 50 = 195
			amplitude: 200,
			want:      195,
		},
		{
			name:      "midpoint of a bracket",
			mode:      ModeL,
			side:      SideLeft,
			amplitude: 525, // between 540 at 40mm and 510 at 50mm
			want:      45,
		},
		{
			name:      "strong signal clamps to nearest",
			mode:      ModeL,
			side:      SideRight,
			amplitude: 2000,
			want:      0,
		},
		{
			name:      "weak signal clamps to farthest",
			mode:      ModeLNPE,
			side:      SideRight,
			amplitude: 12,
			want:      300,
		},
		{
			name:      "zero amplitude clamps to farthest",
			mode:      ModeLN,
			side:      SideLeft,
			amplitude: 0,
			want:      300,
		},
		{
			name: "duplicate table nodes resolve to the nearer distance",
			mode: ModeLN,
			side: SideLeft,
			// The LN left table holds 350 at both 10mm and 20mm
			amplitude: 350,
			want:      10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Convert(tt.mode, tt.side, tt.amplitude)
			assert.InDelta(t, tt.want, got, 1e-3)
		})
	}
}

// A falling amplitude sweep must never report a shrinking distance, for
// every mode and side.
func TestConvert_Monotonic(t *testing.T) {
	c := referenceConverter(t)

	for mode := ModeL; mode <= ModeLNPE; mode++ {
		for side := SideLeft; side <= SideRight; side++ {
			prev := c.Convert(mode, side, 1000)
			for amp := float32(999); amp >= 0; amp-- {
				d := c.Convert(mode, side, amp)
				assert.GreaterOrEqual(t, d, prev,
					"%v %v at amplitude %v", mode, side, amp)
				assert.GreaterOrEqual(t, d, float32(0))
				assert.LessOrEqual(t, d, c.MaxDistance())
				prev = d
			}
		}
	}
}

func TestNewConverter_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.LutConfig)
	}{
		{
			name: "axis too short",
			mutate: func(l *config.LutConfig) {
				l.DistanceMM = []float32{0}
			},
		},
		{
			name: "axis not ascending",
			mutate: func(l *config.LutConfig) {
				l.DistanceMM[3] = l.DistanceMM[2]
			},
		},
		{
			name: "table length mismatch",
			mutate: func(l *config.LutConfig) {
				l.LN.Right = l.LN.Right[:5]
			},
		},
		{
			name: "table increases",
			mutate: func(l *config.LutConfig) {
				l.LNPE.Left[4] = l.LNPE.Left[3] + 1
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lut := config.Default().Lut
			tt.mutate(&lut)
			_, err := NewConverter(lut)
			assert.Error(t, err)
		})
	}
}

func TestConverter_MaxDistance(t *testing.T) {
	c := referenceConverter(t)
	assert.Equal(t, float32(300), c.MaxDistance())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "L", ModeL.String())
	assert.Equal(t, "L+N", ModeLN.String())
	assert.Equal(t, "L+N+PE", ModeLNPE.String())
}
