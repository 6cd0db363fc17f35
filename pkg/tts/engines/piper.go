package engines

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/utter/internal/audio"
	"github.com/dgnsrekt/utter/pkg/tts"
)

const (
	piperID   = "piper"
	piperName = "Piper TTS (offline)"

	// probeTimeout bounds the --help check so a hung binary cannot stall
	// a readiness probe.
	probeTimeout = 2 * time.Second

	// stopGrace is how long a cancelled piper process gets to exit after
	// SIGINT before it is killed.
	stopGrace = 500 * time.Millisecond
)

// PiperConfig configures the offline engine.
type PiperConfig struct {
	// Binary is the piper executable path or name. Defaults to "piper".
	Binary string

	// Store supplies the voice model files. Required for synthesis.
	Store *tts.VoiceStore

	// PollInterval overrides how often playback completion is checked.
	PollInterval time.Duration

	// TempDir is where intermediate audio files are written.
	TempDir string

	// Cache, when set, stores synthesized audio keyed by request.
	Cache *tts.AudioCache

	// Player supplies the audio player. Defaults to the shared device.
	Player tts.PlayerFunc
}

// Piper speaks through the piper neural synthesizer running as a local
// subprocess. Text goes in on stdin; piper writes a WAV file which is
// decoded, resampled if needed, and played. Everything runs on this
// machine, so the engine works without a network but needs a downloaded
// voice model.
type Piper struct {
	binary  string
	store   *tts.VoiceStore
	poll    time.Duration
	tempDir string
	cache   *tts.AudioCache
	player  tts.PlayerFunc

	lookPath func(string) (string, error)
	audioOK  func() bool
	probe    func(ctx context.Context, path string) error
}

// NewPiper builds the offline engine.
func NewPiper(cfg PiperConfig) *Piper {
	binary := cfg.Binary
	if binary == "" {
		binary = "piper"
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = tts.DefaultPollInterval
	}
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	player := cfg.Player
	if player == nil {
		player = audio.Shared
	}
	return &Piper{
		binary:   binary,
		store:    cfg.Store,
		poll:     poll,
		tempDir:  tempDir,
		cache:    cfg.Cache,
		player:   player,
		lookPath: defaultLookPath,
		audioOK:  audio.Available,
		probe:    probePiper,
	}
}

// ID implements tts.Engine.
func (p *Piper) ID() string { return piperID }

// DisplayName implements tts.Engine.
func (p *Piper) DisplayName() string { return piperName }

// CheckReady implements tts.Engine. The executable check runs the binary
// with --help under a short timeout; the asset check is a pure file
// existence test against the voice store.
func (p *Piper) CheckReady() tts.Readiness {
	asset := p.store != nil && p.store.Installed()
	return tts.ClassifyReadiness(p.audioOK(), p.installed(), asset)
}

func (p *Piper) installed() bool {
	path, err := findExecutable(p.lookPath, p.binary, piperDirs())
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if err := p.probe(ctx, path); err != nil {
		log.Debug("piper probe failed", "path", path, "error", err)
		return false
	}
	return true
}

func piperDirs() []string {
	return append(commonBinDirs(), "/opt/piper")
}

// probePiper verifies path is actually piper. The binary has no --version
// flag; --help exits nonzero on some builds, so the usage text is
// accepted as proof either way.
func probePiper(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, path, "--help")
	out, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil || strings.Contains(strings.ToLower(string(out)), "piper") {
		return nil
	}
	return err
}

// SynthesizeAndPlay implements tts.Engine.
func (p *Piper) SynthesizeAndPlay(ctx context.Context, req tts.Request) error {
	if p.store == nil || !p.store.Installed() {
		return &tts.EngineError{Engine: piperID, Op: "synthesize", Err: tts.ErrAssetMissing}
	}

	key := tts.CacheKey(piperID, p.store.Voice(), "", req.Speed, req.Text)
	pcm, ok := p.cache.Get(key)
	if !ok {
		var err error
		pcm, err = p.synthesize(ctx, req)
		if err != nil {
			return err
		}
		p.cache.Put(key, pcm)
	} else {
		log.Debug("audio cache hit", "engine", piperID, "bytes", len(pcm))
	}
	return playPCM(ctx, piperID, p.player, pcm, p.poll)
}

// synthesize runs piper with the text on stdin and reads back the WAV it
// writes. The temp file is removed on every path out of here, including
// cancellation, which also interrupts the subprocess.
func (p *Piper) synthesize(ctx context.Context, req tts.Request) ([]byte, error) {
	binPath, err := findExecutable(p.lookPath, p.binary, piperDirs())
	if err != nil {
		return nil, &tts.EngineError{Engine: piperID, Op: "synthesize", Detail: err.Error(), Err: tts.ErrEngineUnavailable}
	}

	wav, err := os.CreateTemp(p.tempDir, "utter-piper-*.wav")
	if err != nil {
		return nil, &tts.EngineError{Engine: piperID, Op: "synthesize", Detail: err.Error(), Err: tts.ErrSynthesisFailed}
	}
	wavPath := wav.Name()
	wav.Close() //nolint:errcheck
	defer func() {
		if err := os.Remove(wavPath); err != nil && !os.IsNotExist(err) {
			log.Warn("could not remove temp audio file", "path", wavPath, "error", err)
		}
	}()

	args := p.argsFor(req, wavPath)
	log.Debug("invoking piper", "model", p.store.ModelPath(), "length_scale", tts.FormatLengthScale(req.Speed))

	cmd := exec.CommandContext(ctx, binPath, args...)
	// Stdin must be wired before the process starts.
	cmd.Stdin = strings.NewReader(req.Text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// On cancellation, interrupt first so piper can flush and exit; kill
	// only if it lingers past the grace period.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = stopGrace

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &tts.EngineError{Engine: piperID, Op: "synthesize", Detail: tail(stderr.Bytes()), Err: tts.ErrSynthesisFailed}
	}

	data, err := os.ReadFile(wavPath)
	if err != nil {
		return nil, &tts.EngineError{Engine: piperID, Op: "decode", Detail: err.Error(), Err: tts.ErrSynthesisFailed}
	}
	pcm, format, err := tts.DecodeWAV(data)
	if err != nil {
		return nil, &tts.EngineError{Engine: piperID, Op: "decode", Detail: err.Error(), Err: tts.ErrSynthesisFailed}
	}
	if len(pcm) == 0 {
		return nil, &tts.EngineError{Engine: piperID, Op: "decode", Detail: "piper produced no audio", Err: tts.ErrSynthesisFailed}
	}

	if format.SampleRate != tts.SampleRate {
		log.Debug("resampling piper output", "from", format.SampleRate, "to", tts.SampleRate)
		resampled, err := tts.Resample(pcm, format, tts.DefaultPCMFormat())
		if err != nil {
			return nil, &tts.EngineError{Engine: piperID, Op: "decode", Detail: err.Error(), Err: tts.ErrSynthesisFailed}
		}
		return resampled, nil
	}

	// DecodeWAV aliases the file buffer; copy so the cached audio does
	// not pin the whole WAV in memory.
	out := make([]byte, len(pcm))
	copy(out, pcm)
	return out, nil
}

// argsFor builds the piper invocation. The length scale is always passed,
// inverse to the requested speed: speaking twice as fast means phonemes
// half as long.
func (p *Piper) argsFor(req tts.Request, outPath string) []string {
	return []string{
		"--model", p.store.ModelPath(),
		"--output_file", outPath,
		"--length_scale", tts.FormatLengthScale(req.Speed),
	}
}

var _ tts.Engine = (*Piper)(nil)
