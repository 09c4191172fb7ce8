package domain

import (
	"bytes"

	m "github.com/mouse-blink/refix/internal/model"
)

// Magic values from <elf.h> and <ar.h>.
var (
	elfMagic                = []byte("\x7fELF")
	archiveMagic            = []byte("!<arch>\n")
	archiveHeaderTerminator = []byte("`\n")
)

// minSniffLength is the shortest buffer that is classified at all.
const minSniffLength = 8

// DetectFileType classifies data by its leading magic bytes.
func DetectFileType(data []byte) m.FileType {
	if len(data) < minSniffLength {
		return m.FileUnknown
	}

	switch {
	case bytes.HasPrefix(data, elfMagic):
		return m.FileELF
	case bytes.HasPrefix(data, archiveMagic):
		return m.FileArchive
	default:
		return m.FileUnknown
	}
}
