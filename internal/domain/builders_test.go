package domain

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"
)

type testSection struct {
	name string
	typ  elf.SectionType
	data []byte
	size uint64
}

// elfBuilder assembles minimal relocatable ELF images: header, section
// contents, .shstrtab and the section header table, in that order.
type elfBuilder struct {
	class    elf.Class
	order    binary.ByteOrder
	sections []testSection

	// overflowCount stores the section count in section 0's sh_size.
	overflowCount bool
	// overflowStrndx stores the string table index in section 0's sh_link.
	overflowStrndx bool
	// nameOffsets overrides sh_name for the section with the given name.
	nameOffsets map[string]uint32
}

func newELF(class elf.Class, order binary.ByteOrder) *elfBuilder {
	return &elfBuilder{class: class, order: order, nameOffsets: map[string]uint32{}}
}

func newELF64() *elfBuilder {
	return newELF(elf.ELFCLASS64, binary.LittleEndian)
}

func (b *elfBuilder) section(name string, data []byte) *elfBuilder {
	b.sections = append(b.sections, testSection{name: name, typ: elf.SHT_PROGBITS, data: data, size: uint64(len(data))})

	return b
}

func (b *elfBuilder) nobits(name string, size uint64) *elfBuilder {
	b.sections = append(b.sections, testSection{name: name, typ: elf.SHT_NOBITS, size: size})

	return b
}

func (b *elfBuilder) headerSize() int {
	if b.class == elf.ELFCLASS32 {
		return elf32HeaderSize
	}

	return elf64HeaderSize
}

func (b *elfBuilder) entrySize() int {
	if b.class == elf.ELFCLASS32 {
		return elf32SectionSize
	}

	return elf64SectionSize
}

// offsetOf returns the file offset the named section's data is written at.
func (b *elfBuilder) offsetOf(name string) int {
	off := b.headerSize()
	for _, s := range b.sections {
		if s.name == name {
			return off
		}

		if s.typ != elf.SHT_NOBITS {
			off += len(s.data)
		}
	}

	panic("unknown section " + name)
}

func (b *elfBuilder) build() []byte {
	buf := make([]byte, b.headerSize())
	copy(buf, elfMagic)
	buf[elf.EI_CLASS] = byte(b.class)
	buf[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	if b.order == binary.LittleEndian {
		buf[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	} else {
		buf[elf.EI_DATA] = byte(elf.ELFDATA2MSB)
	}

	b.order.PutUint16(buf[16:18], uint16(elf.ET_REL))
	b.order.PutUint32(buf[20:24], uint32(elf.EV_CURRENT))

	strtab := []byte{0}
	names := make([]uint32, len(b.sections))

	for i, s := range b.sections {
		names[i] = uint32(len(strtab))
		if off, ok := b.nameOffsets[s.name]; ok {
			names[i] = off
		}

		strtab = append(strtab, s.name...)
		strtab = append(strtab, 0)
	}

	strtabName := uint32(len(strtab))
	strtab = append(strtab, ".shstrtab\x00"...)

	offsets := make([]int, len(b.sections))
	for i, s := range b.sections {
		offsets[i] = len(buf)
		if s.typ != elf.SHT_NOBITS {
			buf = append(buf, s.data...)
		}
	}

	strtabOffset := len(buf)
	buf = append(buf, strtab...)

	shoff := len(buf)
	total := len(b.sections) + 2
	strndx := total - 1

	var first sectionHeader
	if b.overflowCount {
		first.size = uint64(total)
	}

	if b.overflowStrndx {
		first.link = uint32(strndx)
	}

	buf = b.appendSectionHeader(buf, first)

	for i, s := range b.sections {
		buf = b.appendSectionHeader(buf, sectionHeader{
			name:   names[i],
			typ:    s.typ,
			offset: uint64(offsets[i]),
			size:   s.size,
		})
	}

	buf = b.appendSectionHeader(buf, sectionHeader{
		name:   strtabName,
		typ:    elf.SHT_STRTAB,
		offset: uint64(strtabOffset),
		size:   uint64(len(strtab)),
	})

	shnum, shstrndx := uint16(total), uint16(strndx)
	if b.overflowCount {
		shnum = 0
	}

	if b.overflowStrndx {
		shstrndx = uint16(elf.SHN_XINDEX)
	}

	if b.class == elf.ELFCLASS32 {
		b.order.PutUint32(buf[32:36], uint32(shoff))
		b.order.PutUint16(buf[40:42], elf32HeaderSize)
		b.order.PutUint16(buf[46:48], elf32SectionSize)
		b.order.PutUint16(buf[48:50], shnum)
		b.order.PutUint16(buf[50:52], shstrndx)
	} else {
		b.order.PutUint64(buf[40:48], uint64(shoff))
		b.order.PutUint16(buf[52:54], elf64HeaderSize)
		b.order.PutUint16(buf[58:60], elf64SectionSize)
		b.order.PutUint16(buf[60:62], shnum)
		b.order.PutUint16(buf[62:64], shstrndx)
	}

	return buf
}

func (b *elfBuilder) appendSectionHeader(buf []byte, sh sectionHeader) []byte {
	entry := make([]byte, b.entrySize())

	b.order.PutUint32(entry[0:4], sh.name)
	b.order.PutUint32(entry[4:8], uint32(sh.typ))

	if b.class == elf.ELFCLASS32 {
		b.order.PutUint32(entry[16:20], uint32(sh.offset))
		b.order.PutUint32(entry[20:24], uint32(sh.size))
		b.order.PutUint32(entry[24:28], sh.link)
	} else {
		b.order.PutUint64(entry[24:32], sh.offset)
		b.order.PutUint64(entry[32:40], sh.size)
		b.order.PutUint32(entry[40:44], sh.link)
	}

	return append(buf, entry...)
}

// arBuilder assembles ar archives without padding odd-sized members.
type arBuilder struct {
	buf bytes.Buffer
}

func newArchive() *arBuilder {
	b := &arBuilder{}
	b.buf.Write(archiveMagic)

	return b
}

func (b *arBuilder) header(name string, size string) *arBuilder {
	fmt.Fprintf(&b.buf, "%-16s%-12s%-6s%-6s%-8s%-10s`\n", name, "0", "0", "0", "644", size)

	return b
}

func (b *arBuilder) member(name string, data []byte) *arBuilder {
	b.header(name+"/", fmt.Sprint(len(data)))
	b.buf.Write(data)

	return b
}

// offset is the position the next header will be written at.
func (b *arBuilder) offset() int {
	return b.buf.Len()
}

func (b *arBuilder) raw(data []byte) *arBuilder {
	b.buf.Write(data)

	return b
}

func (b *arBuilder) bytes() []byte {
	return bytes.Clone(b.buf.Bytes())
}
