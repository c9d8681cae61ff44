package spinview

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapAngle(t *testing.T) {
	assert.InDelta(t, 0.0, wrapAngle(0), 1e-12)
	assert.InDelta(t, 1.0, wrapAngle(1), 1e-12)
	assert.InDelta(t, 0.5, wrapAngle(0.5+4*math.Pi), 1e-9)
	assert.InDelta(t, 2*math.Pi-1, wrapAngle(-1), 1e-12)
}

func TestSmoothInterp(t *testing.T) {
	assert.Equal(t, 0.0, smoothInterp(0.2, 0.4, 0.1))
	assert.Equal(t, 1.0, smoothInterp(0.2, 0.4, 0.5))
	assert.InDelta(t, 0.5, smoothInterp(0.2, 0.4, 0.3), 1e-12)
	// Degenerate interval behaves as a hard step.
	assert.Equal(t, 0.0, smoothInterp(0.3, 0.3, 0.2))
	assert.Equal(t, 1.0, smoothInterp(0.3, 0.3, 0.3))
}

func TestRevealAlpha_CutWindow(t *testing.T) {
	u := NewShaderUniformSet(0, math.Pi/2)

	// Deep inside the cut window: fully revealed, fragment skipped.
	alpha, drawn := RevealAlpha(math.Cos(0.5), math.Sin(0.5), u)
	assert.False(t, drawn)
	assert.InDelta(t, 0.0, alpha, 1e-9)

	// Opposite side of the model: opaque overlay.
	alpha, drawn = RevealAlpha(math.Cos(math.Pi), math.Sin(math.Pi), u)
	assert.True(t, drawn)
	assert.InDelta(t, 1.0, alpha, 1e-9)

	// Just before the slice start: still covered.
	alpha, drawn = RevealAlpha(math.Cos(0.005), math.Sin(0.005), u)
	assert.True(t, drawn)
	assert.InDelta(t, 1.0, alpha, 1e-9)
}

func TestRevealAlpha_SliceStartOffsetsWindow(t *testing.T) {
	u := NewShaderUniformSet(1.0, math.Pi/2)

	// The same local angle relative to the shifted start is revealed.
	theta := 1.0 + 0.5
	_, drawn := RevealAlpha(math.Cos(theta), math.Sin(theta), u)
	assert.False(t, drawn)

	// An angle inside the unshifted window is now covered.
	_, drawn = RevealAlpha(math.Cos(0.2), math.Sin(0.2), u)
	assert.True(t, drawn)
}

// Faster spin widens the soft edge: a fragment just past the leading edge
// is fully revealed when still, but partially covered when spinning.
func TestRevealAlpha_EdgeWidensWithVelocity(t *testing.T) {
	theta := 0.06

	still := NewShaderUniformSet(0, math.Pi/2)
	alpha, drawn := RevealAlpha(math.Cos(theta), math.Sin(theta), still)
	assert.False(t, drawn, "at rest the 0.06 rad fragment sits inside the cut")
	assert.Less(t, alpha, minDrawAlpha)

	spinning := NewShaderUniformSet(0, math.Pi/2)
	spinning.SetAngularVelocity(1)
	alpha, drawn = RevealAlpha(math.Cos(theta), math.Sin(theta), spinning)
	assert.True(t, drawn, "at full spin the widened edge covers the same fragment")
	assert.Greater(t, alpha, minDrawAlpha)
	assert.Less(t, alpha, 1.0)
}

func TestRevealAlpha_AlphaStaysInUnitRange(t *testing.T) {
	u := NewShaderUniformSet(0.3, 2.0)
	for _, v := range []float64{0, 0.25, 0.5, 1} {
		u.SetAngularVelocity(v)
		for theta := 0.0; theta < 2*math.Pi; theta += 0.01 {
			alpha, _ := RevealAlpha(math.Cos(theta), math.Sin(theta), u)
			if alpha < 0 || alpha > 1 {
				t.Fatalf("alpha out of range at theta=%v v=%v: %v", theta, v, alpha)
			}
		}
	}
}
