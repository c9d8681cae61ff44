package spinview

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Options holds every recognized tuning knob of the viewer. Out-of-range
// numeric values are clamped to the nearest valid value by Clamped rather
// than rejected, so a bad config file degrades instead of failing.
type Options struct {
	// AutoRotateSpeed is the base rotation speed in radians per second.
	AutoRotateSpeed float64
	// PauseOnInteraction stops auto-rotation while the user holds a press.
	PauseOnInteraction bool
	// ResumeDelay is how long after the last interaction ends before
	// auto-rotation resumes.
	ResumeDelay time.Duration
	// SmoothTransition ramps the rotation speed back up with an eased
	// curve instead of snapping to full speed.
	SmoothTransition   bool
	TransitionDuration time.Duration

	MotionBlurEnabled   bool
	MotionBlurIntensity float64

	// VisibilityThreshold is handed to the external intersection source;
	// the gate itself only consumes the resulting boolean.
	VisibilityThreshold float64
	// PauseDelay debounces out-of-view pauses: hidden intervals shorter
	// than this never stop the render loop.
	PauseDelay time.Duration

	// SliceStart and SliceArc define the angular reveal window, in radians.
	SliceStart float64
	SliceArc   float64

	WindowWidth  int
	WindowHeight int
	WindowTitle  string

	Debug bool
}

const (
	defaultResumeDelay        = 700 * time.Millisecond
	defaultTransitionDuration = 1200 * time.Millisecond
	defaultPauseDelay         = 500 * time.Millisecond
	maxMotionBlurIntensity    = 100.0
)

func DefaultOptions() Options {
	return Options{
		AutoRotateSpeed:     0.5,
		PauseOnInteraction:  true,
		ResumeDelay:         defaultResumeDelay,
		SmoothTransition:    true,
		TransitionDuration:  defaultTransitionDuration,
		MotionBlurEnabled:   true,
		MotionBlurIntensity: 5.0,
		VisibilityThreshold: 0.1,
		PauseDelay:          defaultPauseDelay,
		SliceStart:          math.Pi / 6,
		SliceArc:            math.Pi / 2,
		WindowWidth:         1280,
		WindowHeight:        720,
		WindowTitle:         "spinview",
	}
}

// Clamped returns a copy with every numeric field forced into its valid
// range. Invalid configuration never fails; it heals.
func (o Options) Clamped() Options {
	if o.AutoRotateSpeed < 0 || math.IsNaN(o.AutoRotateSpeed) {
		o.AutoRotateSpeed = 0
	}
	if o.ResumeDelay < 0 {
		o.ResumeDelay = 0
	}
	if o.TransitionDuration < 0 {
		o.TransitionDuration = 0
	}
	if o.PauseDelay < 0 {
		o.PauseDelay = 0
	}
	if o.MotionBlurIntensity < 0 || math.IsNaN(o.MotionBlurIntensity) {
		o.MotionBlurIntensity = 0
	} else if o.MotionBlurIntensity > maxMotionBlurIntensity {
		o.MotionBlurIntensity = maxMotionBlurIntensity
	}
	if o.VisibilityThreshold < 0 || math.IsNaN(o.VisibilityThreshold) {
		o.VisibilityThreshold = 0
	} else if o.VisibilityThreshold > 1 {
		o.VisibilityThreshold = 1
	}
	o.SliceStart = wrapAngle(o.SliceStart)
	if o.SliceArc < 0 || math.IsNaN(o.SliceArc) {
		o.SliceArc = 0
	} else if o.SliceArc > 2*math.Pi {
		o.SliceArc = 2 * math.Pi
	}
	if o.WindowWidth <= 0 {
		o.WindowWidth = 1280
	}
	if o.WindowHeight <= 0 {
		o.WindowHeight = 720
	}
	return o
}

// optionsFile is the YAML layout of an options file. Durations are plain
// millisecond integers there; pointers distinguish "absent" from "zero".
type optionsFile struct {
	AutoRotateSpeed      *float64 `yaml:"autoRotateSpeed"`
	PauseOnInteraction   *bool    `yaml:"pauseOnInteraction"`
	ResumeDelayMs        *int     `yaml:"resumeDelayMs"`
	SmoothTransition     *bool    `yaml:"smoothTransition"`
	TransitionDurationMs *int     `yaml:"transitionDurationMs"`
	MotionBlurEnabled    *bool    `yaml:"motionBlurEnabled"`
	MotionBlurIntensity  *float64 `yaml:"motionBlurIntensity"`
	VisibilityThreshold  *float64 `yaml:"visibilityThreshold"`
	PauseDelayMs         *int     `yaml:"pauseDelayMs"`
	SliceStart           *float64 `yaml:"sliceStart"`
	SliceArc             *float64 `yaml:"sliceArc"`
	WindowWidth          *int     `yaml:"windowWidth"`
	WindowHeight         *int     `yaml:"windowHeight"`
	WindowTitle          *string  `yaml:"windowTitle"`
	Debug                *bool    `yaml:"debug"`
}

// LoadOptions reads a YAML options file on top of the defaults. Fields
// missing from the file keep their default value.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read options file: %w", err)
	}
	var file optionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return opts, fmt.Errorf("parse options file %s: %w", path, err)
	}
	opts.apply(&file)
	return opts.Clamped(), nil
}

func (o *Options) apply(f *optionsFile) {
	if f.AutoRotateSpeed != nil {
		o.AutoRotateSpeed = *f.AutoRotateSpeed
	}
	if f.PauseOnInteraction != nil {
		o.PauseOnInteraction = *f.PauseOnInteraction
	}
	if f.ResumeDelayMs != nil {
		o.ResumeDelay = time.Duration(*f.ResumeDelayMs) * time.Millisecond
	}
	if f.SmoothTransition != nil {
		o.SmoothTransition = *f.SmoothTransition
	}
	if f.TransitionDurationMs != nil {
		o.TransitionDuration = time.Duration(*f.TransitionDurationMs) * time.Millisecond
	}
	if f.MotionBlurEnabled != nil {
		o.MotionBlurEnabled = *f.MotionBlurEnabled
	}
	if f.MotionBlurIntensity != nil {
		o.MotionBlurIntensity = *f.MotionBlurIntensity
	}
	if f.VisibilityThreshold != nil {
		o.VisibilityThreshold = *f.VisibilityThreshold
	}
	if f.PauseDelayMs != nil {
		o.PauseDelay = time.Duration(*f.PauseDelayMs) * time.Millisecond
	}
	if f.SliceStart != nil {
		o.SliceStart = *f.SliceStart
	}
	if f.SliceArc != nil {
		o.SliceArc = *f.SliceArc
	}
	if f.WindowWidth != nil {
		o.WindowWidth = *f.WindowWidth
	}
	if f.WindowHeight != nil {
		o.WindowHeight = *f.WindowHeight
	}
	if f.WindowTitle != nil {
		o.WindowTitle = *f.WindowTitle
	}
	if f.Debug != nil {
		o.Debug = *f.Debug
	}
}
