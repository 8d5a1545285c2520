package host

import (
	"errors"
	"sync"

	"github.com/provide-io/bootsplash/pkg/splash/decode"
)

// ErrDisplayClosed is returned by Screen.Blit once the window showing it has
// gone away.
var ErrDisplayClosed = errors.New("display closed")

// Screen is the state a window shares with the playback goroutine: the
// composed picture, pending keystrokes and whether the window was closed.
// It serves as both display and input.
type Screen struct {
	width, height int

	mu     sync.Mutex
	canvas *Canvas
	dirty  bool
	keys   int
	closed bool
}

// NewScreen creates a black width×height screen.
func NewScreen(width, height int) *Screen {
	return &Screen{width: width, height: height, canvas: NewCanvas(width, height), dirty: true}
}

func (s *Screen) Resolution() (int, int) { return s.width, s.height }

// Blit composes fb onto the screen. It fails with ErrDisplayClosed after
// MarkClosed, which ends playback whether or not skipping is allowed.
func (s *Screen) Blit(fb *decode.FrameBuffer, x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrDisplayClosed
	}
	s.canvas.Compose(fb, x, y)
	s.dirty = true
	return nil
}

func (s *Screen) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.canvas.Clear()
	s.dirty = true
	return nil
}

// PollKey consumes one pending keystroke. A closed screen always reports one.
func (s *Screen) PollKey() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	if s.keys == 0 {
		return false
	}
	s.keys--
	return true
}

func (s *Screen) Flush() {
	s.mu.Lock()
	s.keys = 0
	s.mu.Unlock()
}

// AddKeys queues n keystrokes.
func (s *Screen) AddKeys(n int) {
	s.mu.Lock()
	s.keys += n
	s.mu.Unlock()
}

// MarkClosed records that the window is gone.
func (s *Screen) MarkClosed() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Frame calls fn with the RGBA pixels when they changed since the last call
// and reports whether it did. fn must not keep pix.
func (s *Screen) Frame(fn func(pix []byte)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return false
	}
	fn(s.canvas.Image().Pix)
	s.dirty = false
	return true
}
