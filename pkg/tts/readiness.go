package tts

// Readiness is the result of probing an engine's dependencies. It answers
// "can this engine speak right now", not "did the last request succeed".
type Readiness int

const (
	// Ready means every dependency the engine needs is present.
	Ready Readiness = iota

	// NotInstalled means the engine's executable could not be found.
	NotInstalled

	// AssetMissing means the executable is present but a required voice
	// asset has not been downloaded yet.
	AssetMissing

	// Unavailable means the host has no usable audio output, so no engine
	// can play regardless of its own dependencies.
	Unavailable
)

func (r Readiness) String() string {
	switch r {
	case Ready:
		return "ready"
	case NotInstalled:
		return "not installed"
	case AssetMissing:
		return "voice not downloaded"
	case Unavailable:
		return "audio unavailable"
	default:
		return "unknown"
	}
}

// Err maps a readiness state to the sentinel error a caller receives when
// trying to speak through an engine in that state. Ready maps to nil.
func (r Readiness) Err() error {
	switch r {
	case Ready:
		return nil
	case AssetMissing:
		return ErrAssetMissing
	default:
		return ErrEngineUnavailable
	}
}

// ClassifyReadiness folds the three dependency probes into a single state.
// Audio output is checked first: without a playback device the executable
// and asset results are irrelevant. Then the executable, then the asset.
func ClassifyReadiness(audioOK, installed, assetOK bool) Readiness {
	switch {
	case !audioOK:
		return Unavailable
	case !installed:
		return NotInstalled
	case !assetOK:
		return AssetMissing
	default:
		return Ready
	}
}
