package model

// TargetKind tells how a target range is rewritten.
type TargetKind string

const (
	// KindSubstitute is a prefix-matched region searched for the pattern.
	KindSubstitute TargetKind = "substitute"
	// KindReplace is a section overwritten wholesale.
	KindReplace TargetKind = "replace"
)

// RegionReport is the outcome for one region or full replacement.
type RegionReport struct {
	Kind    TargetKind
	Section string
	Member  string
	Offset  int
	Length  int
	Matches int  // pattern occurrences rewritten (or found, for a scan)
	Changed bool // bytes were written and flushed
}

// RunReport summarizes one invocation over a single file.
type RunReport struct {
	Path     Path
	Type     FileType
	Size     int
	Fallback bool // the whole file was treated as one opaque region
	DryRun   bool
	Regions  []RegionReport
}

// ChangedCount returns how many regions were modified.
func (r RunReport) ChangedCount() int {
	count := 0

	for _, region := range r.Regions {
		if region.Changed {
			count++
		}
	}

	return count
}

// MatchCount returns the total number of pattern occurrences.
func (r RunReport) MatchCount() int {
	total := 0

	for _, region := range r.Regions {
		total += region.Matches
	}

	return total
}

// ScannedBytes returns the number of bytes covered by all regions.
func (r RunReport) ScannedBytes() int {
	total := 0

	for _, region := range r.Regions {
		total += region.Length
	}

	return total
}

// AffectedCount returns how many regions were (or, for a dry run, would be) modified.
func (r RunReport) AffectedCount() int {
	if !r.DryRun {
		return r.ChangedCount()
	}

	count := 0

	for _, region := range r.Regions {
		if region.Kind == KindReplace || region.Matches > 0 {
			count++
		}
	}

	return count
}
