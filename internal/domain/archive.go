package domain

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"

	m "github.com/mouse-blink/refix/internal/model"
)

// Layout of struct ar_hdr from <ar.h>:
//
//	char ar_name[16];
//	char ar_date[12];
//	char ar_uid[6], ar_gid[6];
//	char ar_mode[8];
//	char ar_size[10];  /* ASCII decimal, space padded */
//	char ar_fmag[2];   /* "`\n" */
const (
	arHeaderSize = 60
	arNameLen    = 16
	arSizeOffset = 48
	arSizeLen    = 10
)

// GNU special member names.
const (
	arSymbolTable = "/"
	arLongNames   = "//"
)

// arHeader is a decoded member header.
type arHeader struct {
	name string
	size int
}

// parseArchiveHeader decodes the member header starting at pos.
func parseArchiveHeader(data []byte, pos int) (arHeader, error) {
	if pos < 0 || pos > len(data) || len(data)-pos < arHeaderSize {
		return arHeader{}, errors.Errorf("%w: header at offset %d", ErrArchiveTruncated, pos)
	}

	hdr := data[pos : pos+arHeaderSize]
	if !bytes.HasSuffix(hdr, archiveHeaderTerminator) {
		return arHeader{}, errors.Errorf("%w: terminator not found at offset %d", ErrArchiveHeader, pos+arHeaderSize-len(archiveHeaderTerminator))
	}

	field := strings.TrimSpace(string(hdr[arSizeOffset : arSizeOffset+arSizeLen]))

	size, err := strconv.ParseUint(field, 10, 63)
	if err != nil {
		return arHeader{}, errors.Errorf("%w: size field %q at offset %d is not a decimal integer", ErrArchiveHeader, field, pos)
	}

	return arHeader{
		name: strings.TrimRight(string(hdr[:arNameLen]), " "),
		size: int(size),
	}, nil
}

// memberName resolves GNU short names ("foo.o/") and long names ("/123",
// an offset into the "//" member).
func memberName(raw string, longNames []byte) string {
	if raw == arSymbolTable || raw == arLongNames {
		return raw
	}

	if strings.HasPrefix(raw, "/") {
		off, err := strconv.Atoi(raw[1:])
		if err != nil || off < 0 || off >= len(longNames) {
			return raw
		}

		name := longNames[off:]
		if end := bytes.Index(name, []byte("/\n")); end >= 0 {
			name = name[:end]
		}

		return string(name)
	}

	return strings.TrimSuffix(raw, "/")
}

// Members enumerates the members of an ar archive. Each member starts
// exactly header-plus-declared-size after the previous one; odd-sized
// members are not assumed to be followed by a padding byte.
func Members(data []byte) ([]m.ArchiveMember, error) {
	if !bytes.HasPrefix(data, archiveMagic) {
		return nil, errors.Errorf("%w: missing archive magic", ErrArchiveHeader)
	}

	var (
		members   []m.ArchiveMember
		longNames []byte
	)

	pos := len(archiveMagic)
	for pos < len(data) {
		hdr, err := parseArchiveHeader(data, pos)
		if err != nil {
			return nil, err
		}

		pos += arHeaderSize

		if hdr.size > len(data)-pos {
			return nil, errors.Errorf("%w: member %q at offset %d declares %d bytes, %d remain",
				ErrArchiveSize, hdr.name, pos, hdr.size, len(data)-pos)
		}

		if hdr.name == arLongNames {
			longNames = data[pos : pos+hdr.size]
		}

		members = append(members, m.ArchiveMember{
			Name:   memberName(hdr.name, longNames),
			Offset: pos,
			Size:   hdr.size,
		})

		pos += hdr.size
	}

	return members, nil
}

func (s *scanner) ScanArchive(data []byte) (m.Targets, error) {
	members, err := Members(data)
	if err != nil {
		return m.Targets{}, err
	}

	var targets m.Targets

	for _, member := range members {
		image := data[member.Offset : member.Offset+member.Size]
		if DetectFileType(image) != m.FileELF {
			slog.Debug("skipping archive member", "member", member.Name, "size", member.Size)

			continue
		}

		found, err := s.ScanELF(image, member.Offset, member.Name)
		if err != nil {
			return m.Targets{}, errors.Errorf("archive member %s: %w", member.Name, err)
		}

		targets.Merge(found)
	}

	slog.Debug("walked archive", "members", len(members), "elf_members", targets.ELFMembers)

	return targets, nil
}
