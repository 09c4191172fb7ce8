package domain

import (
	"debug/elf"
	"log/slog"
	"strings"

	"gitlab.com/tozd/go/errors"

	m "github.com/mouse-blink/refix/internal/model"
)

// Scanner discovers the byte ranges of a file that get rewritten: sections
// whose name starts with a configured prefix, and sections named for a full
// replacement. All offsets it reports are file-absolute.
type Scanner interface {
	// ScanELF scans one ELF image located at base inside the file.
	ScanELF(image []byte, base int, member string) (m.Targets, error)
	// ScanArchive walks an ar archive and scans every ELF member.
	ScanArchive(data []byte) (m.Targets, error)
}

type scanner struct {
	config m.SectionConfig
}

// NewScanner constructs a Scanner for the given section selection.
func NewScanner(config m.SectionConfig) Scanner {
	return &scanner{config: config}
}

func (s *scanner) ScanELF(image []byte, base int, member string) (m.Targets, error) {
	header, err := parseELFHeader(image)
	if err != nil {
		return m.Targets{}, err
	}

	sections, strndx, err := parseSectionTable(image, header)
	if err != nil {
		return m.Targets{}, err
	}

	targets := m.Targets{ELFMembers: 1}
	if len(sections) == 0 {
		return targets, nil
	}

	strtab, err := sectionData(image, sections[strndx])
	if err != nil {
		return m.Targets{}, errors.Errorf("section name string table: %w", err)
	}

	for _, sh := range sections {
		// NOBITS sections occupy no file bytes.
		if sh.typ == elf.SHT_NULL || sh.typ == elf.SHT_NOBITS {
			continue
		}

		name := sectionName(strtab, sh.name)

		replacement, full := s.config.Replacements[name]
		if !full && !s.matchesPrefix(name) {
			continue
		}

		if _, err := sectionData(image, sh); err != nil {
			return m.Targets{}, errors.Errorf("section %s: %w", name, err)
		}

		offset := base + int(sh.offset)

		if full {
			if uint64(len(replacement)) != sh.size {
				return m.Targets{}, errors.Errorf("%w: section %s is %d bytes, replacement is %d bytes",
					ErrSectionSize, name, sh.size, len(replacement))
			}

			targets.Replacements = append(targets.Replacements, m.FullReplacement{
				Offset:  offset,
				Data:    replacement,
				Section: name,
				Member:  member,
			})

			continue
		}

		targets.Regions = append(targets.Regions, m.Region{
			Offset:  offset,
			Length:  int(sh.size),
			Section: name,
			Member:  member,
		})
	}

	slog.Debug("scanned ELF image",
		"member", member,
		"base", base,
		"sections", len(sections),
		"regions", len(targets.Regions),
		"replacements", len(targets.Replacements))

	return targets, nil
}

func (s *scanner) matchesPrefix(name string) bool {
	for _, prefix := range s.config.Prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}
