// Package filter implements an exponentially weighted moving average
// (EWMA) pose filter with dynamic smoothing.
//
// The filter adjusts the amount of smoothing per axis to minimize lag
// while moving and minimize noise while still. It compares the smoothed
// instantaneous delta against a long-running estimate of the delta's
// noise variance: as the delta grows from zero to three standard
// deviations of the noise, the per-axis time constant scales down from
// MaxSmoothing to MinSmoothing at a rate controlled by CurveExponent.
package filter

import (
	"math"

	"github.com/tracklab/posefilter/internal/types"
)

const (
	// DefaultChangeEpsilon is the default absolute threshold below which
	// an input is considered a stale repeat of the last output.
	DefaultChangeEpsilon = 1e-4

	// noiseFloor guards the noise normalization against division by a
	// near-zero variance estimate.
	noiseFloor = 1e-10

	// varianceSpan maps the normalization range to 9 variances,
	// i.e. 3 standard deviations.
	varianceSpan = 9.0
)

// Settings is one consistent snapshot of the filter tuning. All
// durations are in seconds.
type Settings struct {
	// DeltaTimeConstant controls how fast the smoothed delta estimate
	// adapts to new samples.
	DeltaTimeConstant float64

	// NoiseTimeConstant controls how fast the running noise-variance
	// estimate adapts. Much larger than DeltaTimeConstant so the
	// variance reflects long-term jitter rather than current motion.
	NoiseTimeConstant float64

	// CurveExponent shapes the mapping from normalized noise to the
	// smoothing fraction. Must be positive.
	CurveExponent float64

	// MinSmoothing and MaxSmoothing bound the dynamic per-axis time
	// constant before axis weighting. MaxSmoothing is clamped up to
	// MinSmoothing when misconfigured.
	MinSmoothing float64
	MaxSmoothing float64

	// AxisWeights multiply the dynamic time constant per axis, so
	// translation and rotation axes can carry different baseline
	// responsiveness.
	AxisWeights [types.NumAxes]float64

	// ChangeEpsilon is the per-axis absolute threshold for detecting a
	// genuinely new sample versus a stale repeat.
	ChangeEpsilon [types.NumAxes]float64
}

// DefaultSettings returns the stock tuning.
func DefaultSettings() Settings {
	return Settings{
		DeltaTimeConstant: 1.0,
		NoiseTimeConstant: 60.0,
		CurveExponent:     0.5,
		MinSmoothing:      0.01,
		MaxSmoothing:      0.25,
		AxisWeights:       [types.NumAxes]float64{5, 5, 3, 1, 1, 1},
		ChangeEpsilon: [types.NumAxes]float64{
			DefaultChangeEpsilon, DefaultChangeEpsilon, DefaultChangeEpsilon,
			DefaultChangeEpsilon, DefaultChangeEpsilon, DefaultChangeEpsilon,
		},
	}
}

// SettingsProvider supplies the current tuning snapshot. It is read once
// per Filter call and must be safe to call while another goroutine
// replaces the settings.
type SettingsProvider interface {
	FilterSettings() Settings
}

// SettingsFunc adapts a function to the SettingsProvider interface.
type SettingsFunc func() Settings

func (f SettingsFunc) FilterSettings() Settings { return f() }

// axisState is the per-axis filter memory.
type axisState struct {
	lastOutput float64 // most recent smoothed output, baseline for change detection
	lastDelta  float64 // smoothed instantaneous change
	lastNoise  float64 // smoothed squared delta, a running variance estimate
}

// AdaptiveEWMA smooths a 6DOF pose stream with a per-axis dynamic time
// constant. It is not safe for concurrent use; each instance belongs to
// a single processing loop.
type AdaptiveEWMA struct {
	settings SettingsProvider

	// sampleTimer measures the time between genuinely new samples and
	// drives the delta/noise estimators. outputTimer measures the time
	// between invocations and drives the output blend, so the output
	// decay rate stays correct when the input repeats.
	sampleTimer *Timer
	outputTimer *Timer

	axes        [types.NumAxes]axisState
	initialized bool
}

// Option configures an AdaptiveEWMA.
type Option func(*AdaptiveEWMA)

// WithClock substitutes the monotonic clock, for tests.
func WithClock(clock Clock) Option {
	return func(f *AdaptiveEWMA) {
		f.sampleTimer = NewTimer(clock)
		f.outputTimer = NewTimer(clock)
	}
}

// NewAdaptiveEWMA creates a filter reading its tuning from settings.
func NewAdaptiveEWMA(settings SettingsProvider, opts ...Option) *AdaptiveEWMA {
	f := &AdaptiveEWMA{
		settings:    settings,
		sampleTimer: NewTimer(nil),
		outputTimer: NewTimer(nil),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Filter consumes one pose sample and returns the smoothed pose. The
// first call initializes the filter state and returns the input
// unchanged. Non-finite inputs are not guarded and propagate through
// the arithmetic.
func (f *AdaptiveEWMA) Filter(input types.Pose) types.Pose {
	cfg := f.settings.FilterSettings()

	if !f.initialized {
		f.initialized = true
		f.sampleTimer.Start()
		f.outputTimer.Start()
		for i := range f.axes {
			f.axes[i] = axisState{lastOutput: input[i]}
		}
	}

	newSample := false
	for i := range f.axes {
		if math.Abs(f.axes[i].lastOutput-input[i]) > cfg.ChangeEpsilon[i] {
			newSample = true
			break
		}
	}

	// Two time bases: the sample clock only advances the estimators when
	// a new sample arrived, so oversampling does not dilute the noise
	// statistics. The output clock always advances.
	var dtSample float64
	if newSample {
		dtSample = f.sampleTimer.ElapsedSeconds()
		f.sampleTimer.Start()
	}
	dtOutput := f.outputTimer.ElapsedSeconds()
	f.outputTimer.Start()

	deltaAlpha := blend(dtSample, math.Max(cfg.DeltaTimeConstant, 0))
	noiseAlpha := blend(dtSample, math.Max(cfg.NoiseTimeConstant, 0))

	minSmoothing := cfg.MinSmoothing
	maxSmoothing := math.Max(cfg.MaxSmoothing, minSmoothing)

	var output types.Pose
	for i := range f.axes {
		ax := &f.axes[i]

		// Current and smoothed delta, then its square as the current
		// noise sample feeding the running variance estimate.
		delta := input[i] - ax.lastOutput
		ax.lastDelta = deltaAlpha*delta + (1-deltaAlpha)*ax.lastDelta
		noise := ax.lastDelta * ax.lastDelta
		ax.lastNoise = noiseAlpha*noise + (1-noiseAlpha)*ax.lastNoise

		// Normalize the noise to 0..1 over 0..9 variances (3 stddevs).
		normNoise := 0.0
		if ax.lastNoise >= noiseFloor {
			normNoise = math.Min(noise/(varianceSpan*ax.lastNoise), 1)
		}

		smoothing := 1 - math.Pow(normNoise, cfg.CurveExponent)
		rc := cfg.AxisWeights[i] * (minSmoothing + smoothing*(maxSmoothing-minSmoothing))

		alpha := blend(dtOutput, rc)
		ax.lastOutput = alpha*input[i] + (1-alpha)*ax.lastOutput
		output[i] = ax.lastOutput
	}
	return output
}

// Reset returns the filter to its pre-first-call state. The next Filter
// call reinitializes from its input.
func (f *AdaptiveEWMA) Reset() {
	f.initialized = false
	f.axes = [types.NumAxes]axisState{}
}

// blend computes the EWMA blend factor dt/(dt+rc), with dt <= 0 mapping
// to 0 so a zero dt and a zero rc cannot divide 0 by 0.
func blend(dt, rc float64) float64 {
	if dt <= 0 {
		return 0
	}
	return dt / (dt + rc)
}
