package source

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

var (
	// ErrFFmpegNotFound is returned when a required ffmpeg tool cannot be
	// located.
	ErrFFmpegNotFound = errors.New("source: ffmpeg not found")

	// ErrProbeFailed is returned when the video size cannot be determined.
	ErrProbeFailed = errors.New("source: probe failed")
)

// Environment variables overriding tool discovery.
const (
	EnvFFmpeg  = "FFMPEG_PATH"
	EnvFFprobe = "FFPROBE_PATH"
)

// FindFFmpeg locates the ffmpeg binary. An explicit path wins, then
// FFMPEG_PATH, then PATH, then common install locations.
func FindFFmpeg(explicit string) (string, error) {
	return findTool("ffmpeg", explicit, EnvFFmpeg)
}

// FindFFprobe locates the ffprobe binary in the same order as FindFFmpeg,
// using FFPROBE_PATH.
func FindFFprobe(explicit string) (string, error) {
	return findTool("ffprobe", explicit, EnvFFprobe)
}

func findTool(name, explicit, env string) (string, error) {
	// An explicit path must exist; it is never silently replaced.
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s: %s not found", ErrFFmpegNotFound, name, explicit)
		}
		return explicit, nil
	}
	if p := os.Getenv(env); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	execName := name
	if runtime.GOOS == "windows" {
		execName += ".exe"
	}
	if p, err := exec.LookPath(execName); err == nil {
		return p, nil
	}

	for _, dir := range commonDirs() {
		p := dir + string(os.PathSeparator) + execName
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrFFmpegNotFound, name)
}

func commonDirs() []string {
	if runtime.GOOS == "windows" {
		return []string{
			`C:\ffmpeg\bin`,
			`C:\Program Files\ffmpeg\bin`,
			`C:\Program Files (x86)\ffmpeg\bin`,
		}
	}
	return []string{
		"/usr/bin",
		"/usr/local/bin",
		"/opt/homebrew/bin",
		"/snap/bin",
	}
}
