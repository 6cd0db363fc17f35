package tts

// Config holds the user-tunable settings, populated from the config file,
// environment, and flags. Fields map one to one onto config file keys;
// environment variables override the file.
type Config struct {
	// Engine pins playback to one engine id ("gtts" or "piper"). Empty
	// means use the first engine that is ready.
	Engine string `yaml:"engine" env:"UTTER_ENGINE"`

	// Speed is the speech rate multiplier, between 0.5 and 2.0.
	Speed float64 `yaml:"speed" env:"UTTER_SPEED"`

	// Language is the BCP 47 tag or language name for the online engine.
	Language string `yaml:"language" env:"UTTER_LANGUAGE"`

	// Voice names the offline voice model, e.g. "en_US-norman-medium".
	Voice string `yaml:"voice" env:"UTTER_VOICE"`

	// DataDir overrides where voice models are stored.
	DataDir string `yaml:"data_dir" env:"UTTER_DATA_DIR"`

	// PiperBinary overrides the piper executable path or name.
	PiperBinary string `yaml:"piper_binary" env:"UTTER_PIPER_BINARY"`

	// RequestsPerMinute throttles calls to the online synthesis service.
	RequestsPerMinute int `yaml:"requests_per_minute" env:"UTTER_REQUESTS_PER_MINUTE"`

	// CacheAudio keeps synthesized audio in memory so repeating a phrase
	// does not re-run synthesis.
	CacheAudio bool `yaml:"cache_audio" env:"UTTER_CACHE_AUDIO"`

	// Debug enables verbose logging.
	Debug bool `yaml:"debug" env:"UTTER_DEBUG"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Speed:             DefaultSpeed,
		Language:          DefaultLanguage,
		Voice:             DefaultVoice,
		PiperBinary:       "piper",
		RequestsPerMinute: 30,
		CacheAudio:        true,
	}
}
