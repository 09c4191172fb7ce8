package adapter

import (
	m "github.com/mouse-blink/refix/internal/model"
)

// FileView is a file mapped into memory. Bytes returns the whole file; its
// length never changes. Writes through a writable view land in the file.
type FileView interface {
	Bytes() []byte
	// Flush schedules write-back of [offset, offset+length).
	Flush(offset, length int) error
	// Close flushes everything still dirty, unmaps and closes the file.
	Close() error
}

// FileViewAdapter opens files as FileViews.
type FileViewAdapter interface {
	Open(path m.Path, writable bool) (FileView, error)
}
