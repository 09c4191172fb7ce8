package model

// DefaultPrefixes lists the sections where build paths usually end up:
// string constants (__FILE__, assert messages) and the DWARF line/string tables.
var DefaultPrefixes = []string{".rodata", ".debug_line", ".debug_str"}

// SectionConfig selects which ELF sections a scan reports.
type SectionConfig struct {
	// Prefixes selects substitution candidates; a section matches when its
	// name starts with any of them.
	Prefixes []string
	// Replacements maps an exact section name to the bytes that replace it.
	Replacements map[string][]byte
}

// Targets is everything discovered in one file.
type Targets struct {
	Regions      []Region
	Replacements []FullReplacement
	// ELFMembers counts the ELF images that were scanned: 1 for a standalone
	// ELF file, the number of ELF members for an archive.
	ELFMembers int
}

// Merge appends other's regions, replacements and member count to t.
func (t *Targets) Merge(other Targets) {
	t.Regions = append(t.Regions, other.Regions...)
	t.Replacements = append(t.Replacements, other.Replacements...)
	t.ELFMembers += other.ELFMembers
}
