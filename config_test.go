package spinview

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_ClampedHealsOutOfRangeValues(t *testing.T) {
	opts := Options{
		AutoRotateSpeed:     -3,
		ResumeDelay:         -time.Second,
		TransitionDuration:  -time.Second,
		PauseDelay:          -time.Second,
		MotionBlurIntensity: 1e9,
		VisibilityThreshold: 7,
		SliceStart:          -1,
		SliceArc:            100,
	}
	clamped := opts.Clamped()

	assert.Equal(t, 0.0, clamped.AutoRotateSpeed)
	assert.Equal(t, time.Duration(0), clamped.ResumeDelay)
	assert.Equal(t, time.Duration(0), clamped.TransitionDuration)
	assert.Equal(t, time.Duration(0), clamped.PauseDelay)
	assert.Equal(t, maxMotionBlurIntensity, clamped.MotionBlurIntensity)
	assert.Equal(t, 1.0, clamped.VisibilityThreshold)
	assert.InDelta(t, 2*math.Pi-1, clamped.SliceStart, 1e-12)
	assert.Equal(t, 2*math.Pi, clamped.SliceArc)
	assert.Equal(t, 1280, clamped.WindowWidth)
	assert.Equal(t, 720, clamped.WindowHeight)
}

func TestOptions_ClampedHealsNaN(t *testing.T) {
	opts := DefaultOptions()
	opts.AutoRotateSpeed = math.NaN()
	opts.MotionBlurIntensity = math.NaN()
	opts.VisibilityThreshold = math.NaN()
	clamped := opts.Clamped()

	assert.Equal(t, 0.0, clamped.AutoRotateSpeed)
	assert.Equal(t, 0.0, clamped.MotionBlurIntensity)
	assert.Equal(t, 0.0, clamped.VisibilityThreshold)
}

func TestLoadOptions_OverridesAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	content := `
autoRotateSpeed: 1.25
resumeDelayMs: 300
smoothTransition: false
motionBlurIntensity: 2.5
pauseDelayMs: 250
windowTitle: showcase
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)

	assert.Equal(t, 1.25, opts.AutoRotateSpeed)
	assert.Equal(t, 300*time.Millisecond, opts.ResumeDelay)
	assert.False(t, opts.SmoothTransition)
	assert.Equal(t, 2.5, opts.MotionBlurIntensity)
	assert.Equal(t, 250*time.Millisecond, opts.PauseDelay)
	assert.Equal(t, "showcase", opts.WindowTitle)

	// Untouched fields keep their defaults.
	assert.Equal(t, defaultTransitionDuration, opts.TransitionDuration)
	assert.True(t, opts.PauseOnInteraction)
	assert.Equal(t, 0.1, opts.VisibilityThreshold)
}

func TestLoadOptions_ClampsFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	content := `
autoRotateSpeed: -2
visibilityThreshold: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, opts.AutoRotateSpeed)
	assert.Equal(t, 1.0, opts.VisibilityThreshold)
}

func TestLoadOptions_MissingFile(t *testing.T) {
	_, err := LoadOptions(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadOptions_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	require.NoError(t, os.WriteFile(path, []byte("autoRotateSpeed: [broken"), 0o644))

	_, err := LoadOptions(path)
	assert.Error(t, err)
}
