// Package platform declares the services playback consumes from the machine
// it runs on: storage volumes, the display surface, keystrokes, sleeping and
// the hand-off to the next boot stage.
//
// Paths use the boot convention: backslash separated and rooted at the
// volume, for example `\EFI\BootSplash\splash.anim`.
package platform

import (
	"io"
	"time"

	"github.com/provide-io/bootsplash/pkg/splash/decode"
)

// File is an open, read-only file on a volume.
type File interface {
	io.ReaderAt
	// Size reports the total byte size of the file.
	Size() (int64, error)
	Close() error
}

// Root is an opened volume root.
type Root interface {
	Open(path string) (File, error)
	Close() error
}

// Volumes resolves storage volumes. An empty label selects the volume the
// boot application itself was loaded from.
type Volumes interface {
	OpenRoot(label string) (Root, error)
}

// Display is the output surface.
type Display interface {
	// Resolution reports the current surface size in pixels.
	Resolution() (width, height int)
	// Blit copies fb to the surface with its top-left corner at (x, y).
	Blit(fb *decode.FrameBuffer, x, y int) error
	// Restore reverts the display mode captured at startup.
	Restore() error
}

// Input polls for keystrokes without blocking.
type Input interface {
	// PollKey consumes one pending keystroke and reports whether there was one.
	PollKey() bool
	// Flush discards every pending keystroke.
	Flush()
}

// Clock suspends the caller.
type Clock interface {
	Sleep(d time.Duration)
}

// Chainloader starts the next boot-stage executable.
type Chainloader interface {
	Chainload(volume, path string) error
}

// ReadFull reads exactly len(buf) bytes at off. Running out of file yields
// io.ErrUnexpectedEOF.
func ReadFull(f File, buf []byte, off int64) error {
	n, err := f.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
