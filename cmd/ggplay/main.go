// Command ggplay plays a video inside the terminal.
//
// Usage:
//
//	ggplay [flags] <input> [fps]
//
// Keys: space pauses, q quits, 1-5 select nearest, bilinear, gaussian,
// lanczos or box, and [ ] lower or raise the filter strength.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/gogpu/ggplay"
	"github.com/gogpu/ggplay/backend"
	"github.com/gogpu/ggplay/internal/config"
	"github.com/gogpu/ggplay/internal/player"
	"github.com/gogpu/ggplay/internal/source"
	"github.com/gogpu/ggplay/internal/term"

	// Engines register themselves with the backend registry.
	_ "github.com/gogpu/ggplay/internal/gpu"
	_ "github.com/gogpu/ggplay/internal/software"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "ggplay:", err)
		stop()
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "ggplay",
		Usage:     "play a video in the terminal with GPU resampling",
		ArgsUsage: "<input> [fps]",
		Version:   version,
		Flags: []cli.Flag{
			&cli.PathFlag{Name: "config", Usage: "YAML configuration file"},
			&cli.StringFlag{Name: "engine", Usage: "resampling engine: gpu or cpu"},
			&cli.StringFlag{Name: "filter", Usage: "initial filter: nearest, bilinear, gaussian, lanczos or box"},
			&cli.Float64Flag{Name: "strength", Usage: "initial filter strength"},
			&cli.PathFlag{Name: "ffmpeg", Usage: "ffmpeg binary (default: $FFMPEG_PATH or PATH)"},
			&cli.PathFlag{Name: "ffprobe", Usage: "ffprobe binary (default: $FFPROBE_PATH or PATH)"},
			&cli.PathFlag{Name: "log-file", Usage: "write logs to this file"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if c.NArg() < 1 {
		// Missing input is not an error.
		return cli.ShowAppHelp(c)
	}
	input := c.Args().Get(0)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	log, closeLog, err := setupLogging(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	ggplay.SetLogger(log)
	defer ggplay.SetLogger(nil)

	return play(c.Context, cfg, input, log)
}

// loadConfig layers defaults, the config file, flags and the positional fps.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.Path("config"); path != "" {
		var err error
		if cfg, err = config.LoadFromFile(path); err != nil {
			return cfg, err
		}
	}

	if c.IsSet("engine") {
		cfg.Engine = c.String("engine")
	}
	if c.IsSet("filter") {
		cfg.Filter = c.String("filter")
	}
	if c.IsSet("strength") {
		cfg.Strength = float32(c.Float64("strength"))
	}
	if c.IsSet("ffmpeg") {
		cfg.FFmpeg = c.Path("ffmpeg")
	}
	if c.IsSet("ffprobe") {
		cfg.FFprobe = c.Path("ffprobe")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.Path("log-file")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.NArg() > 1 {
		cfg.FPS = parseFPS(c.Args().Get(1))
	}

	return cfg, cfg.Validate()
}

// parseFPS parses the positional frame rate. Anything that is not a
// positive integer selects the default; larger rates are capped.
func parseFPS(s string) int {
	fps, err := strconv.Atoi(s)
	if err != nil || fps <= 0 {
		return player.DefaultFPS
	}
	return min(fps, player.MaxFPS)
}

// setupLogging builds the process logger. With no log file, logs go to
// stderr unless stderr is the terminal the video is drawn on.
func setupLogging(cfg config.Config, stderr *os.File) (*slog.Logger, func(), error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var (
		handler slog.Handler
		closeFn = func() {}
	)
	switch {
	case cfg.LogFile != "":
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("log file: %w", err)
		}
		handler = slog.NewTextHandler(f, opts)
		closeFn = func() { _ = f.Close() }
	case isatty.IsTerminal(stderr.Fd()) || isatty.IsCygwinTerminal(stderr.Fd()):
		handler = slog.DiscardHandler
	default:
		handler = slog.NewTextHandler(stderr, opts)
	}

	return slog.New(handler).With("session", uuid.NewString()), closeFn, nil
}

// play runs one playback session. Everything that can fail before playback
// starts does so before the terminal is switched to the alternate screen.
func play(ctx context.Context, cfg config.Config, input string, log *slog.Logger) error {
	geom, err := source.Probe(ctx, cfg.FFprobe, input)
	if err != nil {
		return err
	}

	engine, err := backend.Open(cfg.Engine)
	if err != nil {
		return err
	}
	defer engine.Close()

	dec, err := source.Start(ctx, source.Options{
		FFmpeg:   cfg.FFmpeg,
		Input:    input,
		FPS:      cfg.FPS,
		Geometry: geom,
	})
	if err != nil {
		return err
	}
	defer closeLogged(log, "decoder", dec)

	session, err := term.Open()
	if err != nil {
		return err
	}
	defer session.Close()

	// Signals cancel ctx; the scheduler also watches the flag directly.
	quit := new(atomic.Bool)
	stopAfter := context.AfterFunc(ctx, func() { quit.Store(true) })
	defer stopAfter()

	opts := cfg.PlayerOptions()
	opts.Logger = log
	sched := player.New(dec, engine, term.NewRenderer(session), session.Events(),
		geom, session.Size(), quit, opts)
	return sched.Run(ctx)
}

func closeLogged(log *slog.Logger, what string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warn("close failed", "what", what, "err", err)
	}
}
