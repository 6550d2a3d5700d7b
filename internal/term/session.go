package term

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/ggplay"
	"github.com/gogpu/ggplay/internal/player"
)

// eventBuffer is the capacity of the event channel. Input beyond it blocks
// the pump until the scheduler catches up.
const eventBuffer = 64

// ErrSessionClosed is returned when drawing into a closed session.
var ErrSessionClosed = errors.New("term: session closed")

// Session owns the terminal for the duration of playback.
type Session struct {
	screen tcell.Screen
	events chan player.Event

	mu     sync.Mutex
	closed bool
	done   chan struct{}
	pumped sync.WaitGroup
}

// Open initializes the controlling terminal.
func Open() (*Session, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("term: new screen: %w", err)
	}
	return NewSession(screen)
}

// NewSession takes ownership of screen, initializes it and starts the event
// pump. Tests pass a tcell simulation screen.
func NewSession(screen tcell.Screen) (*Session, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("term: init screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset))
	screen.HideCursor()
	screen.Clear()
	screen.Show()

	s := &Session{
		screen: screen,
		events: make(chan player.Event, eventBuffer),
		done:   make(chan struct{}),
	}
	s.pumped.Add(1)
	go s.pump()
	return s, nil
}

// Screen returns the underlying tcell screen.
func (s *Session) Screen() tcell.Screen { return s.screen }

// Size returns the terminal size in cells.
func (s *Session) Size() ggplay.Geometry {
	w, h := s.screen.Size()
	return ggplay.Geometry{Width: w, Height: h}
}

// Events returns the input channel. It is closed when the session closes.
func (s *Session) Events() <-chan player.Event { return s.events }

// Clear blanks the screen. The blank is flushed with the next frame.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.screen.Clear()
}

// Close restores the terminal. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	// Fini makes PollEvent return nil, which ends the pump.
	s.screen.Fini()
	s.pumped.Wait()
	ggplay.Logger().Debug("term: session closed")
}

func (s *Session) pump() {
	defer s.pumped.Done()
	defer close(s.events)

	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		pe, ok := translate(ev)
		if !ok {
			continue
		}
		select {
		case s.events <- pe:
		case <-s.done:
			return
		}
	}
}

// translate maps a tcell event onto a player event. Events the player does
// not act on are dropped.
func translate(ev tcell.Event) (player.Event, bool) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		w, h := ev.Size()
		return player.ResizeEvent(ggplay.Geometry{Width: w, Height: h}), true
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyRune:
			return player.KeyEvent(ev.Rune()), true
		case tcell.KeyCtrlC:
			return player.InterruptEvent(), true
		}
	}
	return player.Event{}, false
}
