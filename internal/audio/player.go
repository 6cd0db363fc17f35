package audio

import (
	"bytes"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"

	"github.com/dgnsrekt/utter/pkg/tts"
)

// The oto context is process wide: audio backends misbehave when a second
// context is created, so it is initialized lazily on first playback and
// never torn down. Readiness checks must not touch it.
var (
	contextOnce sync.Once
	sharedCtx   *oto.Context
	contextErr  error
)

func sharedContext() (*oto.Context, error) {
	contextOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   tts.SampleRate,
			ChannelCount: tts.Channels,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   bufferSizeFor(runtime.GOOS),
		}
		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			contextErr = fmt.Errorf("initializing audio device: %w", err)
			return
		}
		<-readyChan
		sharedCtx = ctx
		log.Debug("audio context initialized",
			"sample_rate", tts.SampleRate, "channels", tts.Channels, "buffer", op.BufferSize)
	})
	return sharedCtx, contextErr
}

// bufferSizeFor picks a playback buffer per platform. CoreAudio wants more
// headroom than ALSA or PulseAudio; too small produces crackle, too large
// adds stop latency.
func bufferSizeFor(goos string) time.Duration {
	switch goos {
	case "darwin":
		return 100 * time.Millisecond
	case "windows":
		return 80 * time.Millisecond
	default:
		return 50 * time.Millisecond
	}
}

// stream keeps the PCM buffer reachable while oto reads from it. Without
// this the data can be collected mid-playback, which comes out of the
// speaker as static.
type stream struct {
	data     []byte
	duration time.Duration
}

// Player plays raw PCM through the shared audio device. It satisfies
// tts.AudioPlayer. Use Shared to get the process-wide instance; engines
// should not construct their own.
type Player struct {
	mu      sync.Mutex
	player  *oto.Player
	active  *stream
	started time.Time
}

var (
	playerOnce   sync.Once
	sharedPlayer *Player
)

// Shared returns the process-wide player, initializing the audio device on
// first call. It is a tts.PlayerFunc, ready to hand to engine constructors.
func Shared() (tts.AudioPlayer, error) {
	if _, err := sharedContext(); err != nil {
		return nil, err
	}
	playerOnce.Do(func() {
		sharedPlayer = &Player{}
	})
	return sharedPlayer, nil
}

// Play starts playback of pcm and returns immediately. Any playback still
// in progress is stopped first. The data is copied, so the caller may
// reuse its buffer.
func (p *Player) Play(pcm []byte) error {
	if len(pcm) == 0 {
		return errors.New("audio data is empty")
	}
	ctx, err := sharedContext()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	data := make([]byte, len(pcm))
	copy(data, pcm)
	s := &stream{
		data:     data,
		duration: tts.DefaultPCMFormat().Duration(len(data)),
	}

	player := ctx.NewPlayer(bytes.NewReader(s.data))
	p.player = player
	p.active = s
	p.started = time.Now()
	player.Play()

	log.Debug("playback started", "bytes", len(data), "duration", s.duration)
	return nil
}

// Stop halts playback and releases the current buffer. Stopping an idle
// player is a no-op.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

func (p *Player) stopLocked() {
	if p.player != nil {
		p.player.Pause()
		if err := p.player.Close(); err != nil {
			log.Debug("closing audio player", "error", err)
		}
		p.player = nil
	}
	p.active = nil
}

// IsPlaying reports whether audio is still coming out of the device. It
// also checks elapsed time against the buffer's duration in case the
// backend keeps reporting activity after the samples have drained.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player == nil || p.active == nil {
		return false
	}
	if !p.player.IsPlaying() {
		p.stopLocked()
		return false
	}
	if time.Since(p.started) > p.active.duration+time.Second {
		p.stopLocked()
		return false
	}
	return true
}

// Close stops playback. The underlying audio context stays up for the
// life of the process.
func (p *Player) Close() error {
	return p.Stop()
}

var _ tts.AudioPlayer = (*Player)(nil)
