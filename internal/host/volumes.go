// Package host implements the platform services on a regular operating
// system so the boot flow can run, and be tested, outside firmware.
package host

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/provide-io/bootsplash/pkg/splash/platform"
	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// DirVolumes maps volume labels to host directories. The empty label is the
// default volume.
type DirVolumes struct {
	dirs map[string]string
}

// NewDirVolumes creates a volume set whose default volume is defaultDir.
func NewDirVolumes(defaultDir string) *DirVolumes {
	v := &DirVolumes{dirs: make(map[string]string)}
	if defaultDir != "" {
		v.dirs[""] = defaultDir
	}
	return v
}

// Add maps label to dir.
func (v *DirVolumes) Add(label, dir string) {
	v.dirs[label] = dir
}

// ParseVolumeFlag parses a LABEL=DIR mapping.
func (v *DirVolumes) ParseVolumeFlag(mapping string) error {
	label, dir, ok := strings.Cut(mapping, "=")
	if !ok || label == "" || dir == "" {
		return fmt.Errorf("%w: volume mapping %q, want LABEL=DIR", splasherr.ErrInvalidArgument, mapping)
	}
	v.Add(label, dir)
	return nil
}

// HostPath translates a boot path on a volume to a host file path.
func (v *DirVolumes) HostPath(label, bootPath string) (string, error) {
	dir, ok := v.dirs[label]
	if !ok {
		return "", fmt.Errorf("%w: volume %q", splasherr.ErrNotFound, label)
	}
	// Cleaning against "/" keeps ".." from climbing out of the volume.
	rel := path.Clean("/" + strings.ReplaceAll(bootPath, `\`, "/"))
	return filepath.Join(dir, filepath.FromSlash(rel)), nil
}

// OpenRoot implements platform.Volumes.
func (v *DirVolumes) OpenRoot(label string) (platform.Root, error) {
	dir, ok := v.dirs[label]
	if !ok {
		return nil, fmt.Errorf("%w: volume %q", splasherr.ErrNotFound, label)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: volume %q directory %s", splasherr.ErrNotFound, label, dir)
	}
	return &dirRoot{volumes: v, label: label}, nil
}

type dirRoot struct {
	volumes *DirVolumes
	label   string
}

func (r *dirRoot) Open(bootPath string) (platform.File, error) {
	hostPath, err := r.volumes.HostPath(r.label, bootPath)
	if err != nil {
		return nil, err
	}
	return OpenFile(hostPath)
}

func (r *dirRoot) Close() error { return nil }

// File adapts *os.File to platform.File.
type File struct {
	*os.File
}

// OpenFile opens a host file for reading.
func OpenFile(name string) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", splasherr.ErrNotFound, name)
		}
		return nil, splasherr.IOf(err, "open %s", name)
	}
	return &File{File: f}, nil
}

// Size reports the file size.
func (f *File) Size() (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
