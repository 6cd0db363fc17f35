package tts

import "fmt"

// Speech rate bounds. Speed is a multiplier of the voice's natural rate:
// 1.0 is normal, 2.0 twice as fast, 0.5 half speed.
const (
	MinSpeed     = 0.5
	MaxSpeed     = 2.0
	DefaultSpeed = 1.0
)

// SpeedSteps are the presets the UI cycles through.
var SpeedSteps = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 1.75, 2.0}

// ValidSpeed reports whether s falls within the supported range.
func ValidSpeed(s float64) bool {
	return s >= MinSpeed && s <= MaxSpeed
}

// SlowMode reports whether a speed should be rendered in an engine's slow
// mode. Engines without continuous rate control treat every speed below
// normal as slow and everything at or above normal as normal.
func SlowMode(speed float64) bool {
	return speed < DefaultSpeed
}

// LengthScale converts a speed multiplier to a phoneme length scale, the
// inverse representation synthesis models use. Speed 2.0 halves phoneme
// length, speed 0.5 doubles it.
func LengthScale(speed float64) float64 {
	if speed == 0 {
		return 1.0
	}
	return 1.0 / speed
}

// FormatLengthScale renders a speed as a length scale argument with two
// decimal places.
func FormatLengthScale(speed float64) string {
	return fmt.Sprintf("%.2f", LengthScale(speed))
}

// FormatSpeed returns a compact display form of a speed, e.g. "1x" or
// "1.25x".
func FormatSpeed(speed float64) string {
	if speed == float64(int(speed)) {
		return fmt.Sprintf("%.0fx", speed)
	}
	return fmt.Sprintf("%.2gx", speed)
}

// NextSpeed returns the first preset above s, or s unchanged when already
// at the top step.
func NextSpeed(s float64) float64 {
	for _, step := range SpeedSteps {
		if step > s {
			return step
		}
	}
	return s
}

// PrevSpeed returns the first preset below s, or s unchanged when already
// at the bottom step.
func PrevSpeed(s float64) float64 {
	for i := len(SpeedSteps) - 1; i >= 0; i-- {
		if SpeedSteps[i] < s {
			return SpeedSteps[i]
		}
	}
	return s
}
