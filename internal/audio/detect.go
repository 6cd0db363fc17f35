package audio

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Available reports whether the host can play audio at all, without
// initializing the audio device. CI environments report false so test
// runs never classify engines as ready.
func Available() bool {
	if isCI() {
		return false
	}
	switch runtime.GOOS {
	case "linux":
		return linuxAudioPresent()
	case "darwin", "windows":
		// CoreAudio and WASAPI are part of the OS.
		return true
	default:
		return false
	}
}

func isCI() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}

// linuxAudioPresent probes the usual suspects in order: a PulseAudio (or
// PipeWire) server, raw ALSA devices, the soundcard list, and finally the
// aplay utility.
func linuxAudioPresent() bool {
	if pulseRunning() {
		return true
	}
	if alsaDevicesPresent() {
		return true
	}
	if soundCardsPresent() {
		return true
	}
	_, err := exec.LookPath("aplay")
	return err == nil
}

func pulseRunning() bool {
	pactl, err := exec.LookPath("pactl")
	if err != nil {
		return false
	}
	out, err := exec.Command(pactl, "info").Output()
	if err != nil {
		return false
	}
	return strings.Contains(string(out), "Server Name")
}

func alsaDevicesPresent() bool {
	entries, err := os.ReadDir("/dev/snd")
	if err != nil {
		return false
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "pcm") {
			return true
		}
	}
	return false
}

func soundCardsPresent() bool {
	data, err := os.ReadFile(filepath.Join("/proc", "asound", "cards"))
	if err != nil {
		return false
	}
	content := strings.TrimSpace(string(data))
	return content != "" && !strings.Contains(content, "no soundcards")
}
