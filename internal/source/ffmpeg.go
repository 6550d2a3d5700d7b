package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/gogpu/ggplay"
)

// Options configures an ffmpeg decoder.
type Options struct {
	// FFmpeg is the binary path. Empty means auto-discover.
	FFmpeg string

	Input string
	FPS   int

	// Geometry is the probed video size. Every frame has this size.
	Geometry ggplay.Geometry
}

// Args returns the ffmpeg command line for o, without the binary.
func (o Options) Args() []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", o.Input,
		"-r", strconv.Itoa(o.FPS),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	}
}

// FFmpeg is a running ffmpeg decoder. It implements player.Source.
type FFmpeg struct {
	*Reader

	cmd    *exec.Cmd
	stderr bytes.Buffer

	closeOnce sync.Once
	closeErr  error
}

// Start spawns ffmpeg for o. The process runs until the video ends or Close
// is called; ctx only bounds the spawn.
func Start(ctx context.Context, o Options) (*FFmpeg, error) {
	if !o.Geometry.Valid() {
		return nil, fmt.Errorf("source: %w: %s", ggplay.ErrInvalidGeometry, o.Geometry)
	}
	if o.FPS <= 0 {
		return nil, fmt.Errorf("source: invalid fps %d", o.FPS)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := FindFFmpeg(o.FFmpeg)
	if err != nil {
		return nil, err
	}

	f := &FFmpeg{}
	f.cmd = exec.Command(path, o.Args()...) //nolint:gosec // path comes from discovery or the user
	f.cmd.Stderr = &f.stderr
	stdout, err := f.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("source: stdout pipe: %w", err)
	}
	if err := f.cmd.Start(); err != nil {
		return nil, fmt.Errorf("source: start ffmpeg: %w", err)
	}
	f.Reader = NewReader(stdout, o.Geometry)

	ggplay.Logger().Info("source: ffmpeg started",
		"path", path, "pid", f.cmd.Process.Pid, "input", o.Input,
		"fps", o.FPS, "size", o.Geometry)
	return f, nil
}

// Close stops the decoder and reaps the process. It is safe to call more
// than once.
func (f *FFmpeg) Close() error {
	f.closeOnce.Do(func() {
		f.Reader.stop()
		if err := f.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			ggplay.Logger().Warn("source: kill ffmpeg", "err", err)
		}
		// Wait closes stdout, so the reader must be done with it first.
		f.Reader.wait()
		err := f.cmd.Wait()

		if msg := strings.TrimSpace(f.stderr.String()); msg != "" {
			ggplay.Logger().Warn("source: ffmpeg stderr", "output", msg)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Killed by us or exited on its own after the stream ended.
			ggplay.Logger().Debug("source: ffmpeg exited", "state", exitErr.ProcessState)
			return
		}
		if err != nil {
			f.closeErr = fmt.Errorf("source: wait ffmpeg: %w", err)
		}
	})
	return f.closeErr
}
