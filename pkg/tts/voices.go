package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// DefaultVoice is the model fetched when no voice is configured.
const DefaultVoice = "en_US-norman-medium"

// voiceBaseURL is the published voice collection the offline engine's
// models are fetched from.
const voiceBaseURL = "https://huggingface.co/rhasspy/piper-voices/resolve/main"

// VoiceStore manages the offline engine's voice assets on disk. A voice is
// a pair of files, the ONNX model and its JSON config, both of which must
// be present for synthesis to work.
type VoiceStore struct {
	dir    string
	voice  string
	client *http.Client
}

// NewVoiceStore returns a store rooted at dir for the named voice. An
// empty voice falls back to DefaultVoice.
func NewVoiceStore(dir, voice string) *VoiceStore {
	if voice == "" {
		voice = DefaultVoice
	}
	return &VoiceStore{
		dir:    dir,
		voice:  voice,
		client: &http.Client{},
	}
}

// Dir returns the directory voice files live in.
func (s *VoiceStore) Dir() string { return s.dir }

// Voice returns the configured voice name.
func (s *VoiceStore) Voice() string { return s.voice }

// ModelPath returns where the ONNX model lives, whether or not it has been
// downloaded yet.
func (s *VoiceStore) ModelPath() string {
	return filepath.Join(s.dir, s.voice+".onnx")
}

// ConfigPath returns where the model's JSON config lives.
func (s *VoiceStore) ConfigPath() string {
	return s.ModelPath() + ".json"
}

// Installed reports whether both voice files are present. Partial
// downloads never count: files are written under a temporary name and
// only renamed into place once complete.
func (s *VoiceStore) Installed() bool {
	return fileExists(s.ModelPath()) && fileExists(s.ConfigPath())
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ModelURL derives the download URL from the voice name. Voice names
// follow the collection's convention of locale-speaker-quality, e.g.
// "en_US-norman-medium" lives under en/en_US/norman/medium/.
func (s *VoiceStore) ModelURL() (string, error) {
	parts := strings.SplitN(s.voice, "-", 3)
	if len(parts) != 3 {
		return "", fmt.Errorf("unrecognized voice name %q, want locale-speaker-quality", s.voice)
	}
	locale := parts[0]
	family := strings.SplitN(locale, "_", 2)[0]
	return strings.Join([]string{voiceBaseURL, family, locale, parts[1], parts[2], s.voice + ".onnx"}, "/"), nil
}

// ConfigURL returns the download URL of the model's JSON config.
func (s *VoiceStore) ConfigURL() (string, error) {
	u, err := s.ModelURL()
	if err != nil {
		return "", err
	}
	return u + ".json", nil
}

// Download fetches the voice model and its config into the store,
// reporting human-readable progress lines through onProgress. Files are
// downloaded to a temporary name and renamed into place, so a cancelled
// or failed download never leaves a voice that looks installed.
func (s *VoiceStore) Download(ctx context.Context, onProgress func(string)) error {
	if onProgress == nil {
		onProgress = func(string) {}
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating voice directory: %w", err)
	}

	modelURL, err := s.ModelURL()
	if err != nil {
		return err
	}
	configURL, err := s.ConfigURL()
	if err != nil {
		return err
	}

	files := []struct {
		label string
		url   string
		dest  string
	}{
		{"voice model", modelURL, s.ModelPath()},
		{"voice config", configURL, s.ConfigPath()},
	}
	for i, f := range files {
		onProgress(fmt.Sprintf("Fetching %s (%d of %d)…", f.label, i+1, len(files)))
		if err := s.fetch(ctx, f.url, f.dest, f.label, onProgress); err != nil {
			return err
		}
	}
	onProgress(fmt.Sprintf("Voice %s installed.", s.voice))
	return nil
}

func (s *VoiceStore) fetch(ctx context.Context, url, dest, label string, onProgress func(string)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", label, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", label, err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching %s: unexpected status %s", label, resp.Status)
	}

	tmp := dest + ".download"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}

	pw := &progressWriter{
		label:    label,
		total:    resp.ContentLength,
		report:   onProgress,
		throttle: rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
	written, err := io.Copy(out, io.TeeReader(resp.Body, pw))
	if err != nil {
		out.Close()        //nolint:errcheck
		_ = os.Remove(tmp) // drop the partial file
		return fmt.Errorf("downloading %s: %w", label, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", label, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("installing %s: %w", label, err)
	}

	log.Debug("voice file downloaded", "label", label, "dest", dest, "size", humanize.Bytes(uint64(written))) //nolint:gosec
	return nil
}

// progressWriter reports download progress, throttled so a fast download
// does not flood the caller with updates.
type progressWriter struct {
	label    string
	written  int64
	total    int64
	report   func(string)
	throttle *rate.Limiter
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.written += int64(len(p))
	if w.throttle.Allow() {
		w.report(w.line())
	}
	return len(p), nil
}

func (w *progressWriter) line() string {
	if w.total > 0 {
		pct := float64(w.written) / float64(w.total) * 100
		return fmt.Sprintf("Downloading %s… %.0f%% (%s of %s)",
			w.label, pct, humanize.Bytes(uint64(w.written)), humanize.Bytes(uint64(w.total))) //nolint:gosec
	}
	return fmt.Sprintf("Downloading %s… %s", w.label, humanize.Bytes(uint64(w.written))) //nolint:gosec
}

// Watch emits a signal whenever the voice directory changes, so the UI can
// refresh engine readiness the moment a download completes or a model is
// deleted out from under us. The watcher shuts down when ctx is cancelled.
func (s *VoiceStore) Watch(ctx context.Context) (<-chan struct{}, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating voice directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating voice watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close() //nolint:errcheck
		return nil, fmt.Errorf("watching %s: %w", s.dir, err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer watcher.Close() //nolint:errcheck
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				select {
				case ch <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Debug("voice watcher error", "error", err)
			}
		}
	}()
	return ch, nil
}
