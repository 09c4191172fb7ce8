//go:build unix

package adapter

import (
	"os"

	"github.com/hashicorp/go-multierror"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sys/unix"

	m "github.com/mouse-blink/refix/internal/model"
)

// LocalFileViewAdapter maps files with mmap(2).
type LocalFileViewAdapter struct{}

// NewLocalFileViewAdapter constructs a LocalFileViewAdapter.
func NewLocalFileViewAdapter() *LocalFileViewAdapter {
	return &LocalFileViewAdapter{}
}

// Open maps the whole file shared, read-write when writable is set.
func (a *LocalFileViewAdapter) Open(path m.Path, writable bool) (FileView, error) {
	flag, prot := os.O_RDONLY, unix.PROT_READ
	if writable {
		flag, prot = os.O_RDWR, unix.PROT_READ|unix.PROT_WRITE
	}

	// #nosec G304 - the target file is user supplied by design
	file, err := os.OpenFile(string(path), flag, 0)
	if err != nil {
		return nil, errors.Errorf("opening %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()

		return nil, errors.Errorf("stat %s: %w", path, err)
	}

	size := info.Size()
	if int64(int(size)) != size {
		_ = file.Close()

		return nil, errors.Errorf("%s is too large to map (%d bytes)", path, size)
	}

	view := &mappedFile{
		path:     path,
		file:     file,
		writable: writable,
		pageSize: unix.Getpagesize(),
	}

	// mmap(2) rejects zero-length mappings; an empty file is an empty view.
	if size == 0 {
		return view, nil
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(size), prot, unix.MAP_SHARED)
	if err != nil {
		_ = file.Close()

		return nil, errors.Errorf("mapping %s: %w", path, err)
	}

	view.data = data

	return view, nil
}

type mappedFile struct {
	path     m.Path
	file     *os.File
	data     []byte
	writable bool
	pageSize int
}

func (v *mappedFile) Bytes() []byte {
	return v.data
}

func (v *mappedFile) Flush(offset, length int) error {
	if !v.writable || length == 0 {
		return nil
	}

	if offset < 0 || length < 0 || offset > len(v.data) || length > len(v.data)-offset {
		return errors.Errorf("flushing %s: range [%d, +%d) outside %d byte mapping", v.path, offset, length, len(v.data))
	}

	// msync(2) wants a page aligned address.
	start := offset &^ (v.pageSize - 1)
	if err := unix.Msync(v.data[start:offset+length], unix.MS_ASYNC); err != nil {
		return errors.Errorf("flushing %s [%d, +%d): %w", v.path, offset, length, err)
	}

	return nil
}

func (v *mappedFile) Close() error {
	var result *multierror.Error

	if v.data != nil {
		if v.writable {
			if err := unix.Msync(v.data, unix.MS_SYNC); err != nil {
				result = multierror.Append(result, errors.Errorf("syncing %s: %w", v.path, err))
			}
		}

		if err := unix.Munmap(v.data); err != nil {
			result = multierror.Append(result, errors.Errorf("unmapping %s: %w", v.path, err))
		}

		v.data = nil
	}

	if v.file != nil {
		if err := v.file.Close(); err != nil {
			result = multierror.Append(result, errors.Errorf("closing %s: %w", v.path, err))
		}

		v.file = nil
	}

	return result.ErrorOrNil()
}
