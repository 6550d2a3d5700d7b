package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gogpu/ggplay"
)

// ErrInputClosed is returned when the event channel closes while playback
// is still running.
var ErrInputClosed = errors.New("player: input closed")

// Source yields decoded rasters in display order. Next returns io.EOF once
// the stream is exhausted.
type Source interface {
	Next(ctx context.Context) (ggplay.Raster, error)
}

// Renderer draws a raster on the terminal.
type Renderer interface {
	Render(r ggplay.Raster, g ggplay.Geometry) error

	// Clear blanks the display. It is called after a resize.
	Clear()
}

// Default pacing and control parameters.
const (
	DefaultFPS          = 15
	MaxFPS              = 1000
	DefaultStrengthStep = 0.5
	DefaultMinStrength  = 1.0
	DefaultPollInterval = time.Millisecond
	DefaultIdleWait     = 20 * time.Millisecond
)

// Options configures a Scheduler. A non-positive FPS, Strength,
// StrengthStep or MinStrength and an out-of-range Filter select the
// defaults. FPS is capped at MaxFPS and Strength is raised to MinStrength.
// Zero waits make input polling non-blocking.
type Options struct {
	FPS int

	// Filter is the initial filter. Its zero value is FilterNearest, so
	// callers wanting the default pass ggplay.DefaultFilter.
	Filter   ggplay.FilterKind
	Strength float32

	// StrengthStep is the change applied by the [ and ] keys.
	StrengthStep float32

	// MinStrength is the lower clamp for strength. There is no upper clamp;
	// the engines bound the kernel radius instead.
	MinStrength float32

	// PollInterval bounds how long a playing tick waits for input.
	PollInterval time.Duration

	// IdleWait bounds how long a paused tick with nothing to draw waits for
	// input before returning.
	IdleWait time.Duration

	Clock  Clock
	Logger *slog.Logger
}

func (o *Options) setDefaults() {
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	o.FPS = min(o.FPS, MaxFPS)
	if !o.Filter.Valid() {
		o.Filter = ggplay.DefaultFilter
	}
	if o.Strength <= 0 {
		o.Strength = ggplay.DefaultStrength
	}
	if o.StrengthStep <= 0 {
		o.StrengthStep = DefaultStrengthStep
	}
	if o.MinStrength <= 0 {
		o.MinStrength = DefaultMinStrength
	}
	o.Strength = max(o.Strength, o.MinStrength)
	if o.PollInterval < 0 {
		o.PollInterval = 0
	}
	if o.IdleWait < 0 {
		o.IdleWait = 0
	}
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	if o.Logger == nil {
		o.Logger = ggplay.Logger()
	}
}

// State is the playback state owned by the scheduler.
type State struct {
	Filter   ggplay.FilterKind
	Strength float32
	Paused   bool

	// Terminal is the current terminal size in cells.
	Terminal ggplay.Geometry

	// Frame is the logical frame index. It only decreases on resume, which
	// resets it to 0.
	Frame int64

	// Anchor is the wall-clock instant frame 0 is due.
	Anchor time.Time

	// Interval is the fixed frame interval, 1s/FPS.
	Interval time.Duration
}

// Expected returns floor((now - Anchor) / Interval), never negative.
func (s State) Expected(now time.Time) int64 {
	elapsed := now.Sub(s.Anchor)
	if elapsed <= 0 {
		return 0
	}
	return int64(elapsed / s.Interval)
}

// TickResult reports what a tick did.
type TickResult int

const (
	// TickIdle means nothing was rendered.
	TickIdle TickResult = iota

	// TickSkipped means a decoded frame was dropped to catch up.
	TickSkipped

	// TickRendered means a frame was resampled and rendered.
	TickRendered

	// TickStopped means termination was requested. Run returns.
	TickStopped
)

func (r TickResult) String() string {
	switch r {
	case TickIdle:
		return "idle"
	case TickSkipped:
		return "skipped"
	case TickRendered:
		return "rendered"
	case TickStopped:
		return "stopped"
	default:
		return fmt.Sprintf("TickResult(%d)", int(r))
	}
}

// Stats counts playback work.
type Stats struct {
	Decoded  uint64
	Rendered uint64
	Skipped  uint64
	Slept    time.Duration
}

// Scheduler is the playback loop. It is driven from a single goroutine;
// only the termination flag may be touched from elsewhere.
type Scheduler struct {
	src    Source
	engine ggplay.Resampler
	out    Renderer
	events <-chan Event
	quit   *atomic.Bool

	source ggplay.Geometry
	opts   Options
	log    *slog.Logger

	state   State
	frame   ggplay.Raster // latest decoded raster
	redraw  bool          // input changed something since the last render
	skipped bool          // the latest decoded frame was not rendered
	ended   bool          // the source reported end of stream

	stats Stats
}

// New creates a scheduler. source is the decoded raster size, terminal the
// initial terminal size in cells. quit is the termination flag shared with
// the interrupt handler; it may be nil.
func New(src Source, engine ggplay.Resampler, out Renderer, events <-chan Event,
	source, terminal ggplay.Geometry, quit *atomic.Bool, opts Options,
) *Scheduler {
	opts.setDefaults()
	if quit == nil {
		quit = new(atomic.Bool)
	}
	s := &Scheduler{
		src:     src,
		engine:  engine,
		out:     out,
		events:  events,
		quit:    quit,
		source:  source,
		opts:    opts,
		log:     opts.Logger,
		skipped: true,
	}
	s.state = State{
		Filter:   opts.Filter,
		Strength: opts.Strength,
		Terminal: terminal,
		Anchor:   opts.Clock.Now(),
		Interval: time.Second / time.Duration(opts.FPS),
	}
	return s
}

// State returns a copy of the playback state.
func (s *Scheduler) State() State { return s.state }

// Stats returns a copy of the counters.
func (s *Scheduler) Stats() Stats { return s.stats }

// Stop sets the termination flag. It is safe to call from any goroutine.
func (s *Scheduler) Stop() { s.quit.Store(true) }

// Run ticks until termination is requested or a tick fails.
// Cancelling ctx counts as a termination request.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("player: playback started",
		"source", s.source, "terminal", s.state.Terminal,
		"fps", s.opts.FPS, "filter", s.state.Filter, "strength", s.state.Strength,
		"engine", s.engine.Name())

	for {
		res, err := s.Tick(ctx)
		if err != nil {
			s.logStats("player: playback failed", err)
			return err
		}
		if res == TickStopped {
			s.logStats("player: playback stopped", nil)
			return nil
		}
	}
}

func (s *Scheduler) logStats(msg string, err error) {
	attrs := []any{
		"decoded", s.stats.Decoded,
		"rendered", s.stats.Rendered,
		"skipped", s.stats.Skipped,
		"slept", s.stats.Slept,
	}
	if err != nil {
		s.log.Error(msg, append(attrs, "err", err)...)
		return
	}
	s.log.Info(msg, attrs...)
}

func (s *Scheduler) stopping(ctx context.Context) bool {
	return s.quit.Load() || ctx.Err() != nil
}

// Tick runs one iteration of the playback loop.
func (s *Scheduler) Tick(ctx context.Context) (TickResult, error) {
	if s.stopping(ctx) {
		return TickStopped, nil
	}

	if err := s.pollInput(ctx); err != nil {
		return TickIdle, err
	}
	if s.stopping(ctx) {
		return TickStopped, nil
	}

	fresh := false
	if !s.state.Paused {
		raster, err := s.src.Next(ctx)
		switch {
		case err == nil:
			if cerr := raster.Check(s.source); cerr != nil {
				return TickIdle, fmt.Errorf("player: decoded frame: %w", cerr)
			}
			s.frame = raster
			s.stats.Decoded++
			fresh = true
		case errors.Is(err, io.EOF):
			s.state.Paused = true
			if !s.ended {
				s.ended = true
				s.log.Info("player: stream ended, pausing", "frame", s.state.Frame)
			}
			return TickIdle, nil
		case s.stopping(ctx):
			return TickStopped, nil
		default:
			return TickIdle, fmt.Errorf("player: read frame: %w", err)
		}

		expected := s.state.Expected(s.opts.Clock.Now())
		if s.state.Frame+1 < expected {
			s.state.Frame++
			s.skipped = true
			s.stats.Skipped++
			s.log.Debug("player: behind schedule, dropping frame",
				"frame", s.state.Frame, "expected", expected)
			return TickSkipped, nil
		}
	}

	if !fresh && !s.redraw && !s.skipped {
		return TickIdle, nil
	}
	if s.frame == nil {
		// Nothing decoded yet, so there is nothing to redraw.
		s.redraw = false
		return TickIdle, nil
	}

	if err := s.render(); err != nil {
		return TickIdle, err
	}

	if !s.state.Paused {
		due := s.state.Anchor.Add(time.Duration(s.state.Frame) * s.state.Interval)
		if wait := due.Sub(s.opts.Clock.Now()); wait > 0 {
			if err := s.opts.Clock.Sleep(ctx, wait); err != nil && !s.stopping(ctx) {
				return TickIdle, fmt.Errorf("player: sleep: %w", err)
			}
			s.stats.Slept += wait
		}
		s.state.Frame++
	}
	s.skipped = false
	s.redraw = false
	return TickRendered, nil
}

// render resamples the current frame to fit the terminal and draws it.
func (s *Scheduler) render() error {
	dst := ggplay.FitGeometry(s.source, s.state.Terminal)
	if !dst.Valid() {
		return nil
	}

	out, err := s.engine.Resample(s.frame, ggplay.FilterParams{
		Src:      s.source,
		Dst:      dst,
		Filter:   s.state.Filter,
		Strength: s.state.Strength,
	})
	if err != nil {
		return fmt.Errorf("player: resample: %w", err)
	}
	if err := s.out.Render(out, dst); err != nil {
		return fmt.Errorf("player: render: %w", err)
	}
	s.stats.Rendered++
	return nil
}

// pollInput applies every pending event. When paused with nothing to draw
// it waits up to IdleWait for the first event; otherwise up to
// PollInterval. A nil channel never delivers; a closed one is an error
// unless termination was already requested.
func (s *Scheduler) pollInput(ctx context.Context) error {
	wait := s.opts.PollInterval
	if s.state.Paused && !s.redraw && !s.skipped {
		wait = s.opts.IdleWait
	}

	if wait > 0 {
		t := time.NewTimer(wait)
		select {
		case ev, ok := <-s.events:
			t.Stop()
			if !ok {
				return s.inputClosed(ctx)
			}
			s.handle(ev)
		case <-t.C:
			return nil
		case <-ctx.Done():
			t.Stop()
			return nil
		}
	}

	for {
		select {
		case ev, ok := <-s.events:
			if !ok {
				return s.inputClosed(ctx)
			}
			s.handle(ev)
		default:
			return nil
		}
	}
}

func (s *Scheduler) inputClosed(ctx context.Context) error {
	s.events = nil
	if s.stopping(ctx) {
		return nil
	}
	return ErrInputClosed
}

// handle applies one event to the playback state.
func (s *Scheduler) handle(ev Event) {
	switch ev.Kind {
	case EventInterrupt:
		s.log.Info("player: interrupt")
		s.quit.Store(true)

	case EventResize:
		if ev.Size == s.state.Terminal {
			return
		}
		s.state.Terminal = ev.Size
		s.out.Clear()
		s.redraw = true
		s.log.Debug("player: resize", "terminal", ev.Size)

	case EventKey:
		action, filter := ActionFor(ev.Rune)
		switch action {
		case ActionQuit:
			s.quit.Store(true)
		case ActionTogglePause:
			s.state.Paused = !s.state.Paused
			if !s.state.Paused {
				s.state.Frame = 0
				s.state.Anchor = s.opts.Clock.Now()
			}
			s.redraw = true
			s.log.Debug("player: pause toggled", "paused", s.state.Paused)
		case ActionSelectFilter:
			s.state.Filter = filter
			s.redraw = true
			s.log.Debug("player: filter", "filter", filter)
		case ActionStrengthDown:
			s.state.Strength = max(s.state.Strength-s.opts.StrengthStep, s.opts.MinStrength)
			s.redraw = true
			s.log.Debug("player: strength", "strength", s.state.Strength)
		case ActionStrengthUp:
			s.state.Strength += s.opts.StrengthStep
			s.redraw = true
			s.log.Debug("player: strength", "strength", s.state.Strength)
		case ActionNone:
		}
	}
}
