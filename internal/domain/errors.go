package domain

import (
	"gitlab.com/tozd/go/errors"
)

// Input validation errors.
var (
	// ErrPatternLength is returned when source and destination differ in length or are empty.
	ErrPatternLength = errors.New("source and destination must be non-empty and of equal length")
	// ErrSectionSize is returned when replacement data does not match the section size.
	ErrSectionSize = errors.New("replacement size does not match section size")
	// ErrMissingSection is returned when a requested section is not present in the file.
	ErrMissingSection = errors.New("section not found")
)

// Format errors.
var (
	// ErrMalformedELF is returned for a truncated or inconsistent ELF header or section table.
	ErrMalformedELF = errors.New("malformed ELF image")
	// ErrArchiveHeader is returned for a corrupted ar member header.
	ErrArchiveHeader = errors.New("corrupted ar member header")
	// ErrArchiveTruncated is returned when the archive ends inside a member header.
	ErrArchiveTruncated = errors.New("archive truncated within a member header")
	// ErrArchiveSize is returned when a member extends past the end of the archive.
	ErrArchiveSize = errors.New("archive member extends past the end of the archive")
)

// Logical errors.
var (
	// ErrNoStructuralTarget is returned when a section replacement is requested
	// for a file that contains no ELF image to satisfy it.
	ErrNoStructuralTarget = errors.New("no ELF image to replace sections in")
	// ErrOverlappingTargets is returned when two discovered ranges overlap.
	ErrOverlappingTargets = errors.New("discovered ranges overlap")
)
