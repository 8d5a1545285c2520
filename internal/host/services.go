package host

import (
	"fmt"
	"image"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/term"

	"github.com/provide-io/bootsplash/pkg/splash/decode"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
	"github.com/provide-io/bootsplash/pkg/utils/shellparse"
)

// HeadlessDisplay composes frames onto an in-memory canvas without showing
// them.
type HeadlessDisplay struct {
	width, height int
	logger        hclog.Logger

	mu     sync.Mutex
	frames int
	canvas *Canvas
}

// NewHeadlessDisplay creates a display of the given resolution.
func NewHeadlessDisplay(width, height int, logger hclog.Logger) *HeadlessDisplay {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &HeadlessDisplay{width: width, height: height, logger: logger, canvas: NewCanvas(width, height)}
}

func (d *HeadlessDisplay) Resolution() (int, int) { return d.width, d.height }

func (d *HeadlessDisplay) Blit(fb *decode.FrameBuffer, x, y int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames++
	d.canvas.Compose(fb, x, y)
	d.logger.Trace("🖼️ Frame presented", "n", d.frames, "x", x, "y", y)
	return nil
}

// Restore keeps the last composed screen so it can still be captured.
func (d *HeadlessDisplay) Restore() error {
	d.logger.Debug("🖥️ Display restored", "frames", d.Frames())
	return nil
}

// Frames reports how many frames were presented.
func (d *HeadlessDisplay) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// Snapshot copies the screen as last presented.
func (d *HeadlessDisplay) Snapshot() *image.RGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.canvas.Snapshot()
}

// SystemClock sleeps on the wall clock.
type SystemClock struct{}

func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

// NoInput never reports a keystroke.
type NoInput struct{}

func (NoInput) PollKey() bool { return false }
func (NoInput) Flush()        {}

// TerminalInput reads keystrokes from a terminal in raw mode. Any other
// readable file works too; every byte read counts as a keystroke.
type TerminalInput struct {
	file  *os.File
	owned bool
	fd    int
	state *term.State
	keys  chan byte
	done  chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// ttyPath is the controlling terminal opened by OpenTerminalInput.
const ttyPath = "/dev/tty"

// OpenTerminalInput reads keys from the controlling terminal, falling back to
// stdin when there is none. The terminal is opened separately from stdin so
// that Close can stop the reader.
func OpenTerminalInput() (*TerminalInput, error) {
	f, err := os.OpenFile(ttyPath, os.O_RDWR, 0)
	if err != nil {
		return NewTerminalInput(os.Stdin)
	}
	in, err := NewTerminalInput(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	in.owned = true
	return in, nil
}

// NewTerminalInput starts reading keys from f, switching it to raw mode when
// it is a terminal.
func NewTerminalInput(f *os.File) (*TerminalInput, error) {
	fd, err := fileDescriptor(f)
	if err != nil {
		return nil, fmt.Errorf("%w: input descriptor: %w", splasherr.ErrIOFailure, err)
	}
	in := &TerminalInput{file: f, fd: fd, keys: make(chan byte, 64), done: make(chan struct{})}
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("%w: raw terminal: %w", splasherr.ErrIOFailure, err)
		}
		in.state = state
	}
	go in.read()
	return in, nil
}

// fileDescriptor returns the descriptor of f without f.Fd, which would put
// f into blocking mode and disable read deadlines.
func fileDescriptor(f *os.File) (int, error) {
	rc, err := f.SyscallConn()
	if err != nil {
		return -1, err
	}
	fd := -1
	if err := rc.Control(func(p uintptr) { fd = int(p) }); err != nil {
		return -1, err
	}
	return fd, nil
}

func (in *TerminalInput) read() {
	defer close(in.done)
	buf := make([]byte, 1)
	for {
		n, err := in.file.Read(buf)
		if err != nil {
			return
		}
		if n == 1 {
			select {
			case in.keys <- buf[0]:
			default:
			}
		}
	}
}

func (in *TerminalInput) PollKey() bool {
	select {
	case <-in.keys:
		return true
	default:
		return false
	}
}

func (in *TerminalInput) Flush() {
	for in.PollKey() {
	}
}

// Close restores the terminal mode and stops the reader, so later input
// reaches whatever runs next. Files without read deadline support keep
// their reader until they hit end of file. Close is idempotent.
func (in *TerminalInput) Close() error {
	in.closeOnce.Do(func() {
		if in.state != nil {
			in.closeErr = term.Restore(in.fd, in.state)
		}
		if err := in.file.SetReadDeadline(time.Now()); err == nil {
			<-in.done
		}
		if in.owned {
			if err := in.file.Close(); err != nil && in.closeErr == nil {
				in.closeErr = err
			}
		}
	})
	return in.closeErr
}

// Stopped is closed once the reader has exited.
func (in *TerminalInput) Stopped() <-chan struct{} { return in.done }

// CommandChainloader hands off to the next stage on the host. With no
// command it only checks the image is present; otherwise it spawns the
// command with {volume}, {path} and {host_path} substituted.
type CommandChainloader struct {
	volumes *DirVolumes
	command string
	logger  hclog.Logger
}

// NewCommandChainloader creates a chainloader resolving images on volumes.
func NewCommandChainloader(volumes *DirVolumes, command string, logger hclog.Logger) *CommandChainloader {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &CommandChainloader{volumes: volumes, command: command, logger: logger}
}

func (c *CommandChainloader) Chainload(volume, bootPath string) error {
	hostPath, err := c.volumes.HostPath(volume, bootPath)
	if err != nil {
		return err
	}
	info, err := os.Stat(hostPath)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return fmt.Errorf("%w: next stage image %s", splasherr.ErrNotFound, hostPath)
	}

	if c.command == "" {
		c.logger.Info("🚀 Next stage image ready", "path", hostPath, "bytes", info.Size())
		return nil
	}

	args, err := shellparse.Expand(c.command, map[string]string{
		"volume":    volume,
		"path":      bootPath,
		"host_path": hostPath,
	})
	if err != nil {
		return fmt.Errorf("%w: next stage command: %w", splasherr.ErrInvalidArgument, err)
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	c.logger.Info("🚀 Executing next stage", "command", args[0])
	c.logger.Debug("🚀 Full command with args", "args", args[1:])
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start process: %w", err)
	}
	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			c.logger.Info("⏹️ Process exited", "code", exitErr.ExitCode())
			return fmt.Errorf("exit code %d", exitErr.ExitCode())
		}
		return fmt.Errorf("process error: %w", err)
	}
	c.logger.Info("✅ Next stage completed")
	return nil
}
