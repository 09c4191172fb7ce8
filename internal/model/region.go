// Package model defines the data structures shared by the scanner, the
// substitution engine and the UI.
package model

// Path represents a file system path.
type Path string

// FileType is the container format detected from a file's magic bytes.
type FileType string

const (
	// FileELF is a standalone ELF image (object, executable or shared library).
	FileELF FileType = "elf"
	// FileArchive is an ar archive, possibly holding ELF members.
	FileArchive FileType = "ar"
	// FileUnknown is anything else.
	FileUnknown FileType = "unknown"
)

// Region is a byte range of the target file searched for the source pattern.
// Offset is always file-absolute.
type Region struct {
	Offset  int
	Length  int
	Section string // section name, empty for the whole-file fallback
	Member  string // archive member name, empty outside archives
}

// End returns the offset one past the last byte of the region.
func (r Region) End() int {
	return r.Offset + r.Length
}

// FullReplacement is a section whose bytes are swapped wholesale for Data.
// len(Data) equals the section size.
type FullReplacement struct {
	Offset  int
	Data    []byte
	Section string
	Member  string
}

// End returns the offset one past the last replaced byte.
func (r FullReplacement) End() int {
	return r.Offset + len(r.Data)
}

// ArchiveMember is one file embedded in an ar archive. Offset points at the
// member data, past its header.
type ArchiveMember struct {
	Name   string
	Offset int
	Size   int
}

// PatternPair is the equal-length source/destination pair to substitute.
type PatternPair struct {
	Source      []byte
	Destination []byte
}

// Empty reports whether no pattern was supplied.
func (p PatternPair) Empty() bool {
	return len(p.Source) == 0 && len(p.Destination) == 0
}
