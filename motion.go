package spinview

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// motionSmoothing and motionSample are the exponential moving average
	// weights: smoothed = smoothed*0.9 + raw*0.1.
	motionSmoothing = 0.9
	motionSample    = 0.1
	// motionWriteThreshold suppresses uniform writes for changes too small
	// to see. A perf heuristic, not a correctness requirement.
	motionWriteThreshold = 0.01
	// minMotionDt guards the velocity division against degenerate deltas.
	minMotionDt = 1e-3
)

// MotionUniformSync derives a smoothed, normalized angular velocity from
// per-tick rotation deltas and writes it into the shader uniform set. It
// is a pure function of its own smoothing state and the inputs; nothing
// else feeds it.
type MotionUniformSync struct {
	intensity float64
	smoothed  float64
}

func NewMotionUniformSync(opts Options) *MotionUniformSync {
	intensity := opts.MotionBlurIntensity
	if !opts.MotionBlurEnabled {
		// Disabled blur degenerates to a zero uniform rather than a
		// separate code path in the shader.
		intensity = 0
	}
	return &MotionUniformSync{intensity: intensity}
}

// Update folds one tick's angle delta into the smoothed velocity and
// writes the normalized value into u unless the change is below the
// suppression threshold.
func (s *MotionUniformSync) Update(angleDelta, dt float64, u *ShaderUniformSet) {
	raw := math.Abs(angleDelta) / math.Max(dt, minMotionDt)
	s.smoothed = s.smoothed*motionSmoothing + raw*motionSample

	normalized := mgl64.Clamp(s.smoothed*s.intensity, 0, 1)
	if math.Abs(normalized-u.AngularVelocity) > motionWriteThreshold {
		u.SetAngularVelocity(normalized)
	}
}

// Smoothed exposes the raw EMA value, mainly for tests and debug overlays.
func (s *MotionUniformSync) Smoothed() float64 { return s.smoothed }
