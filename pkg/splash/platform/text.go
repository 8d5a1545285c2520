package platform

import (
	"errors"
	"fmt"
	"io"

	"github.com/provide-io/bootsplash/pkg/splash/splasherr"
)

// MaxTextFileBytes caps configuration and manifest files read into memory.
const MaxTextFileBytes = 256 * 1024

// ReadTextFile reads the whole text file at path on root.
func ReadTextFile(root Root, path string) ([]byte, error) {
	if root == nil || path == "" {
		return nil, fmt.Errorf("%w: read text file %q", splasherr.ErrInvalidArgument, path)
	}

	f, err := root.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	size, err := f.Size()
	if err != nil {
		return nil, splasherr.IOf(err, "size of %s", path)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: %s is empty", splasherr.ErrIOFailure, path)
	}
	if size > MaxTextFileBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d",
			splasherr.ErrResourceExhausted, path, size, MaxTextFileBytes)
	}

	buf := make([]byte, size)
	if err := ReadFull(f, buf, 0); err != nil {
		return nil, ReadError(err, "read %s", path)
	}
	return buf, nil
}

// ReadError classifies a failed read: running out of data is corruption,
// anything else is an I/O failure.
func ReadError(err error, format string, args ...interface{}) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return splasherr.Corruptf("%s: short read", fmt.Sprintf(format, args...))
	}
	return splasherr.IOf(err, format, args...)
}
