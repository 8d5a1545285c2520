// Package splashtest provides in-memory implementations of the platform
// services and fixture builders for tests.
package splashtest

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/provide-io/bootsplash/pkg/splash/decode"
	"github.com/provide-io/bootsplash/pkg/splash/platform"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// MemFile is a platform.File over a byte slice.
type MemFile struct {
	*bytes.Reader
	closed  bool
	onClose func()
}

// Size reports the length of the underlying data.
func (f *MemFile) Size() (int64, error) {
	return f.Reader.Size(), nil
}

// Close marks the file closed.
func (f *MemFile) Close() error {
	if f.closed {
		return fmt.Errorf("%w: file closed twice", splasherr.ErrInvalidArgument)
	}
	f.closed = true
	if f.onClose != nil {
		f.onClose()
	}
	return nil
}

// MemVolumes maps volume labels to in-memory file trees. The empty label is
// the default volume. Paths are matched case-insensitively with either
// separator, like a FAT volume.
type MemVolumes struct {
	mu      sync.Mutex
	volumes map[string]map[string][]byte
	open    int

	// Opened records every path opened, as "label:path".
	Opened []string
}

// NewMemVolumes creates an empty volume set.
func NewMemVolumes() *MemVolumes {
	return &MemVolumes{volumes: make(map[string]map[string][]byte)}
}

func memKey(path string) string {
	return strings.ToLower(strings.ReplaceAll(path, "/", `\`))
}

// Put stores data at path on the volume with label, creating the volume.
func (v *MemVolumes) Put(label, path string, data []byte) *MemVolumes {
	v.mu.Lock()
	defer v.mu.Unlock()
	files, ok := v.volumes[label]
	if !ok {
		files = make(map[string][]byte)
		v.volumes[label] = files
	}
	files[memKey(path)] = data
	return v
}

// AddVolume creates an empty volume.
func (v *MemVolumes) AddVolume(label string) *MemVolumes {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.volumes[label]; !ok {
		v.volumes[label] = make(map[string][]byte)
	}
	return v
}

// OpenFiles reports how many files are open. Zero after a run means
// nothing leaked.
func (v *MemVolumes) OpenFiles() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.open
}

// OpenRoot implements platform.Volumes.
func (v *MemVolumes) OpenRoot(label string) (platform.Root, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.volumes[label]; !ok {
		return nil, fmt.Errorf("%w: volume %q", splasherr.ErrNotFound, label)
	}
	return &memRoot{owner: v, label: label}, nil
}

type memRoot struct {
	owner *MemVolumes
	label string
}

func (r *memRoot) Open(path string) (platform.File, error) {
	v := r.owner
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Opened = append(v.Opened, r.label+":"+path)
	data, ok := v.volumes[r.label][memKey(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", splasherr.ErrNotFound, path)
	}
	v.open++
	return &MemFile{
		Reader: bytes.NewReader(data),
		onClose: func() {
			v.mu.Lock()
			v.open--
			v.mu.Unlock()
		},
	}, nil
}

func (r *memRoot) Close() error { return nil }

// Blit is one recorded display update.
type Blit struct {
	X, Y   int
	Width  int
	Height int
	Pix    []byte
}

// RecordingDisplay remembers every blit.
type RecordingDisplay struct {
	Width, Height int
	Blits         []Blit
	Restored      int

	// BlitErr, when set, is returned from the blit with index FailAt.
	BlitErr error
	FailAt  int
}

// NewRecordingDisplay creates a display of the given resolution.
func NewRecordingDisplay(width, height int) *RecordingDisplay {
	return &RecordingDisplay{Width: width, Height: height}
}

func (d *RecordingDisplay) Resolution() (int, int) { return d.Width, d.Height }

func (d *RecordingDisplay) Blit(fb *decode.FrameBuffer, x, y int) error {
	if d.BlitErr != nil && len(d.Blits) == d.FailAt {
		return d.BlitErr
	}
	d.Blits = append(d.Blits, Blit{
		X: x, Y: y,
		Width:  fb.Width,
		Height: fb.Height,
		Pix:    append([]byte(nil), fb.Pix...),
	})
	return nil
}

func (d *RecordingDisplay) Restore() error {
	d.Restored++
	return nil
}

// ScriptedInput reports a keystroke on a chosen poll.
type ScriptedInput struct {
	// KeyOnPoll is the 1-based poll that sees a key; 0 means never.
	KeyOnPoll int
	Polls     int
	Flushes   int
	Closes    int
}

func (in *ScriptedInput) PollKey() bool {
	in.Polls++
	return in.KeyOnPoll > 0 && in.Polls == in.KeyOnPoll
}

func (in *ScriptedInput) Flush() { in.Flushes++ }

func (in *ScriptedInput) Close() error {
	in.Closes++
	return nil
}

// FakeClock records sleeps instead of sleeping.
type FakeClock struct {
	Sleeps []time.Duration
}

func (c *FakeClock) Sleep(d time.Duration) { c.Sleeps = append(c.Sleeps, d) }

// Total is the sum of all recorded sleeps.
func (c *FakeClock) Total() time.Duration {
	var total time.Duration
	for _, d := range c.Sleeps {
		total += d
	}
	return total
}

// Chainload is one recorded hand-off.
type Chainload struct {
	Volume string
	Path   string
}

// RecordingChainloader records hand-offs and returns Err. OnChainload, when
// set, runs at the start of each hand-off.
type RecordingChainloader struct {
	Calls       []Chainload
	Err         error
	OnChainload func()
}

func (c *RecordingChainloader) Chainload(volume, path string) error {
	if c.OnChainload != nil {
		c.OnChainload()
	}
	c.Calls = append(c.Calls, Chainload{Volume: volume, Path: path})
	return c.Err
}
