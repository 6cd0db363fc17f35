package engines

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/utter/internal/audio"
	"github.com/dgnsrekt/utter/pkg/tts"
)

const (
	googleID   = "gtts"
	googleName = "Google TTS (online)"

	// defaultRequestsPerMinute spaces out calls to the synthesis service
	// so bursty use does not get the client blocked.
	defaultRequestsPerMinute = 30
)

// GoogleConfig configures the online engine. The zero value is usable.
type GoogleConfig struct {
	// CLIPath overrides the gtts-cli executable path or name.
	CLIPath string

	// FFmpegPath overrides the ffmpeg executable path or name.
	FFmpegPath string

	// RequestsPerMinute throttles synthesis calls.
	RequestsPerMinute int

	// PollInterval overrides how often playback completion is checked.
	PollInterval time.Duration

	// TempDir is where intermediate audio files are written.
	TempDir string

	// Cache, when set, stores synthesized audio keyed by request.
	Cache *tts.AudioCache

	// Player supplies the audio player. Defaults to the shared device.
	Player tts.PlayerFunc
}

// Google speaks through the gtts-cli tool, which calls Google Translate's
// synthesis endpoint and writes an MP3. ffmpeg decodes that to PCM. The
// engine has no voice assets of its own: if the two executables and audio
// output are present, it is ready, network reachability is only
// discovered when a request actually runs.
type Google struct {
	cliName    string
	ffmpegName string
	limiter    *rate.Limiter
	poll       time.Duration
	tempDir    string
	cache      *tts.AudioCache
	player     tts.PlayerFunc

	lookPath func(string) (string, error)
	audioOK  func() bool
}

// NewGoogle builds the online engine.
func NewGoogle(cfg GoogleConfig) *Google {
	cliName := cfg.CLIPath
	if cliName == "" {
		cliName = "gtts-cli"
	}
	ffmpegName := cfg.FFmpegPath
	if ffmpegName == "" {
		ffmpegName = "ffmpeg"
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
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
	return &Google{
		cliName:    cliName,
		ffmpegName: ffmpegName,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		poll:       poll,
		tempDir:    tempDir,
		cache:      cfg.Cache,
		player:     player,
		lookPath:   defaultLookPath,
		audioOK:    audio.Available,
	}
}

// ID implements tts.Engine.
func (g *Google) ID() string { return googleID }

// DisplayName implements tts.Engine.
func (g *Google) DisplayName() string { return googleName }

// CheckReady implements tts.Engine. Both gtts-cli and ffmpeg are needed to
// produce playable audio, so either one missing counts as not installed.
// No network probe happens here.
func (g *Google) CheckReady() tts.Readiness {
	installed := g.resolveCLI() == nil && g.resolveFFmpeg() == nil
	return tts.ClassifyReadiness(g.audioOK(), installed, true)
}

func (g *Google) resolveCLI() error {
	_, err := findExecutable(g.lookPath, g.cliName, commonBinDirs())
	return err
}

func (g *Google) resolveFFmpeg() error {
	_, err := findExecutable(g.lookPath, g.ffmpegName, commonBinDirs())
	return err
}

// SynthesizeAndPlay implements tts.Engine.
func (g *Google) SynthesizeAndPlay(ctx context.Context, req tts.Request) error {
	key := tts.CacheKey(googleID, "", req.Language, req.Speed, req.Text)
	pcm, ok := g.cache.Get(key)
	if !ok {
		var err error
		pcm, err = g.synthesize(ctx, req)
		if err != nil {
			return err
		}
		g.cache.Put(key, pcm)
	} else {
		log.Debug("audio cache hit", "engine", googleID, "bytes", len(pcm))
	}
	return playPCM(ctx, googleID, g.player, pcm, g.poll)
}

// synthesize runs the two-step pipeline: gtts-cli writes an MP3 to a temp
// file, ffmpeg decodes it to PCM on stdout. The temp file is removed on
// every path out of here.
func (g *Google) synthesize(ctx context.Context, req tts.Request) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	cliPath, err := findExecutable(g.lookPath, g.cliName, commonBinDirs())
	if err != nil {
		return nil, &tts.EngineError{Engine: googleID, Op: "synthesize", Detail: err.Error(), Err: tts.ErrEngineUnavailable}
	}
	ffmpegPath, err := findExecutable(g.lookPath, g.ffmpegName, commonBinDirs())
	if err != nil {
		return nil, &tts.EngineError{Engine: googleID, Op: "decode", Detail: err.Error(), Err: tts.ErrEngineUnavailable}
	}

	mp3, err := os.CreateTemp(g.tempDir, "utter-gtts-*.mp3")
	if err != nil {
		return nil, &tts.EngineError{Engine: googleID, Op: "synthesize", Detail: err.Error(), Err: tts.ErrSynthesisFailed}
	}
	mp3Path := mp3.Name()
	mp3.Close() //nolint:errcheck
	defer func() {
		if err := os.Remove(mp3Path); err != nil && !os.IsNotExist(err) {
			log.Warn("could not remove temp audio file", "path", mp3Path, "error", err)
		}
	}()

	args := g.argsFor(req, mp3Path)
	log.Debug("invoking gtts-cli", "lang", req.Language, "slow", tts.SlowMode(req.Speed), "chars", len(req.Text))

	cmd := exec.CommandContext(ctx, cliPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &tts.EngineError{Engine: googleID, Op: "synthesize", Detail: tail(stderr.Bytes()), Err: tts.ErrSynthesisFailed}
	}

	return g.decodeMP3(ctx, ffmpegPath, mp3Path)
}

// argsFor builds the gtts-cli invocation. The service has no rate
// parameter, only a slow mode, so any speed below normal maps to --slow
// and everything else plays at the service's natural rate.
func (g *Google) argsFor(req tts.Request, outPath string) []string {
	args := []string{req.Text, "--output", outPath, "--lang", req.Language}
	if tts.SlowMode(req.Speed) {
		args = append(args, "--slow")
	}
	return args
}

func (g *Google) decodeMP3(ctx context.Context, ffmpegPath, mp3Path string) ([]byte, error) {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", mp3Path,
		"-f", "s16le",
		"-ar", strconv.Itoa(tts.SampleRate),
		"-ac", strconv.Itoa(tts.Channels),
		"pipe:1",
	}
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &tts.EngineError{Engine: googleID, Op: "decode", Detail: tail(stderr.Bytes()), Err: tts.ErrSynthesisFailed}
	}

	pcm := stdout.Bytes()
	if len(pcm) == 0 {
		return nil, &tts.EngineError{Engine: googleID, Op: "decode", Detail: "ffmpeg produced no audio", Err: tts.ErrSynthesisFailed}
	}
	if len(pcm)%2 != 0 {
		// Keep samples aligned to 16 bits.
		pcm = append(pcm, 0)
	}
	log.Debug("synthesis complete", "engine", googleID, "bytes", len(pcm))
	return pcm, nil
}

var _ tts.Engine = (*Google)(nil)
