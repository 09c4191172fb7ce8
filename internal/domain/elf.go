package domain

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

// Fixed sizes of the ELF structures this package decodes by hand. Only the
// identification header, the section header table and the section name
// string table are ever read: symbol tables, relocations and program headers
// are skipped entirely so discovery stays cheap on large binaries.
const (
	elf32HeaderSize  = 52
	elf64HeaderSize  = 64
	elf32SectionSize = 40
	elf64SectionSize = 64
)

const invalidSectionName = "<invalid name>"

// elfHeader holds the header fields needed to find and decode section headers.
type elfHeader struct {
	class     elf.Class
	order     binary.ByteOrder
	shoff     uint64
	shentsize uint64
	shnum     uint64
	shstrndx  uint64
}

// sectionHeader holds the section header fields the scanner uses.
type sectionHeader struct {
	name   uint32
	typ    elf.SectionType
	offset uint64
	size   uint64
	link   uint32
}

// parseELFHeader decodes the ELF file header at the start of data.
func parseELFHeader(data []byte) (elfHeader, error) {
	if len(data) < elf.EI_NIDENT || !bytes.HasPrefix(data, elfMagic) {
		return elfHeader{}, errors.Errorf("%w: missing identification header", ErrMalformedELF)
	}

	var h elfHeader

	switch elf.Data(data[elf.EI_DATA]) {
	case elf.ELFDATA2LSB:
		h.order = binary.LittleEndian
	case elf.ELFDATA2MSB:
		h.order = binary.BigEndian
	default:
		return elfHeader{}, errors.Errorf("%w: unknown data encoding %d", ErrMalformedELF, data[elf.EI_DATA])
	}

	h.class = elf.Class(data[elf.EI_CLASS])

	switch h.class {
	case elf.ELFCLASS32:
		if len(data) < elf32HeaderSize {
			return elfHeader{}, errors.Errorf("%w: header truncated (%d < %d bytes)", ErrMalformedELF, len(data), elf32HeaderSize)
		}

		h.shoff = uint64(h.order.Uint32(data[32:36]))
		h.shentsize = uint64(h.order.Uint16(data[46:48]))
		h.shnum = uint64(h.order.Uint16(data[48:50]))
		h.shstrndx = uint64(h.order.Uint16(data[50:52]))
	case elf.ELFCLASS64:
		if len(data) < elf64HeaderSize {
			return elfHeader{}, errors.Errorf("%w: header truncated (%d < %d bytes)", ErrMalformedELF, len(data), elf64HeaderSize)
		}

		h.shoff = h.order.Uint64(data[40:48])
		h.shentsize = uint64(h.order.Uint16(data[58:60]))
		h.shnum = uint64(h.order.Uint16(data[60:62]))
		h.shstrndx = uint64(h.order.Uint16(data[62:64]))
	default:
		return elfHeader{}, errors.Errorf("%w: unknown class %d", ErrMalformedELF, data[elf.EI_CLASS])
	}

	return h, nil
}

// sectionHeaderSize returns the smallest valid e_shentsize for the class.
func (h elfHeader) sectionHeaderSize() uint64 {
	if h.class == elf.ELFCLASS32 {
		return elf32SectionSize
	}

	return elf64SectionSize
}

// parseSectionHeader decodes the section header that starts at off.
func parseSectionHeader(data []byte, off uint64, h elfHeader) (sectionHeader, error) {
	size := h.sectionHeaderSize()
	if off > uint64(len(data)) || uint64(len(data))-off < size {
		return sectionHeader{}, errors.Errorf("%w: section header at %#x past end of image", ErrMalformedELF, off)
	}

	b := data[off : off+size]

	if h.class == elf.ELFCLASS32 {
		return sectionHeader{
			name:   h.order.Uint32(b[0:4]),
			typ:    elf.SectionType(h.order.Uint32(b[4:8])),
			offset: uint64(h.order.Uint32(b[16:20])),
			size:   uint64(h.order.Uint32(b[20:24])),
			link:   h.order.Uint32(b[24:28]),
		}, nil
	}

	return sectionHeader{
		name:   h.order.Uint32(b[0:4]),
		typ:    elf.SectionType(h.order.Uint32(b[4:8])),
		offset: h.order.Uint64(b[24:32]),
		size:   h.order.Uint64(b[32:40]),
		link:   h.order.Uint32(b[40:44]),
	}, nil
}

// parseSectionTable decodes every section header and returns them together
// with the index of the section name string table. Counts and indexes that
// overflow the header fields are taken from section 0 (sh_size holds the
// section count, sh_link the string table index).
func parseSectionTable(data []byte, h elfHeader) ([]sectionHeader, uint64, error) {
	if h.shoff == 0 {
		return nil, 0, nil
	}

	if h.shentsize < h.sectionHeaderSize() {
		return nil, 0, errors.Errorf("%w: section header entry size %d too small", ErrMalformedELF, h.shentsize)
	}

	shnum, shstrndx := h.shnum, h.shstrndx
	if shnum == 0 || shstrndx == uint64(elf.SHN_XINDEX) {
		first, err := parseSectionHeader(data, h.shoff, h)
		if err != nil {
			return nil, 0, err
		}

		if shnum == 0 {
			shnum = first.size
		}

		if shstrndx == uint64(elf.SHN_XINDEX) {
			shstrndx = uint64(first.link)
		}
	}

	if shnum == 0 {
		return nil, 0, nil
	}

	if h.shoff > uint64(len(data)) || shnum > (uint64(len(data))-h.shoff)/h.shentsize {
		return nil, 0, errors.Errorf("%w: %d section headers at %#x past end of image (%d bytes)",
			ErrMalformedELF, shnum, h.shoff, len(data))
	}

	if shstrndx >= shnum {
		return nil, 0, errors.Errorf("%w: section name string table index %d out of range (%d sections)",
			ErrMalformedELF, shstrndx, shnum)
	}

	sections := make([]sectionHeader, shnum)
	for i := range sections {
		sh, err := parseSectionHeader(data, h.shoff+uint64(i)*h.shentsize, h)
		if err != nil {
			return nil, 0, err
		}

		sections[i] = sh
	}

	return sections, shstrndx, nil
}

// sectionData returns the file bytes of a section.
func sectionData(data []byte, sh sectionHeader) ([]byte, error) {
	if sh.offset > uint64(len(data)) || sh.size > uint64(len(data))-sh.offset {
		return nil, errors.Errorf("%w: section data [%#x, +%#x) past end of image (%d bytes)",
			ErrMalformedELF, sh.offset, sh.size, len(data))
	}

	return data[sh.offset : sh.offset+sh.size], nil
}

// sectionName extracts a NUL-terminated name from the string table. Names
// that cannot be resolved or are not valid UTF-8 get a placeholder.
func sectionName(strtab []byte, off uint32) string {
	if uint64(off) >= uint64(len(strtab)) {
		return invalidSectionName
	}

	name := strtab[off:]
	if end := bytes.IndexByte(name, 0); end >= 0 {
		name = name[:end]
	}

	if !utf8.Valid(name) {
		return invalidSectionName
	}

	return string(name)
}
