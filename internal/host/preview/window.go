// Package preview shows playback in a desktop window. The window acts as both
// the display and the keyboard of a simulated boot.
package preview

import (
	"errors"
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten"
	"github.com/hajimehoshi/ebiten/inpututil"
	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/bootsplash/internal/host"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

var errPlaybackDone = errors.New("playback done")

// Window is an ebiten game presenting a host.Screen.
type Window struct {
	*host.Screen

	width, height int
	logger        hclog.Logger

	mu      sync.Mutex
	done    bool
	surface *ebiten.Image
}

// NewWindow creates a window with a width×height drawing surface.
func NewWindow(width, height int, logger hclog.Logger) (*Window, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: preview window %dx%d", splasherr.ErrInvalidArgument, width, height)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Window{
		Screen: host.NewScreen(width, height),
		width:  width,
		height: height,
		logger: logger,
	}, nil
}

// Update collects keystrokes and ends the game once playback has finished.
func (w *Window) Update(screen *ebiten.Image) error {
	pressed := 0
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		if inpututil.IsKeyJustPressed(k) {
			pressed++
		}
	}
	if pressed > 0 {
		w.AddKeys(pressed)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return errPlaybackDone
	}
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	if w.surface == nil {
		img, err := ebiten.NewImage(w.width, w.height, ebiten.FilterDefault)
		if err != nil {
			w.logger.Error("Failed to create surface", "error", err)
			return
		}
		w.surface = img
	}
	var uploadErr error
	w.Frame(func(pix []byte) { uploadErr = w.surface.ReplacePixels(pix) })
	if uploadErr != nil {
		w.logger.Error("Failed to upload frame", "error", uploadErr)
	}
	_ = screen.Fill(color.Black)
	_ = screen.DrawImage(w.surface, &ebiten.DrawImageOptions{})
}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return w.width, w.height
}

// Run opens the window and runs play alongside it. It must be called from
// the main goroutine. The window closes when play returns. Closing the
// window first makes every later blit fail with host.ErrDisplayClosed, and
// Run then waits for play to wind down.
func (w *Window) Run(title string, play func() error) error {
	ebiten.SetWindowSize(w.width, w.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizable(true)

	result := make(chan error, 1)
	go func() {
		err := play()
		w.mu.Lock()
		w.done = true
		w.mu.Unlock()
		result <- err
	}()

	w.logger.Debug("🪟 Preview window open", "width", w.width, "height", w.height)
	err := ebiten.RunGame(w)
	w.MarkClosed()

	playErr := <-result
	if err != nil && !errors.Is(err, errPlaybackDone) {
		return err
	}
	return playErr
}
