package domain

import (
	"bytes"
	"runtime"

	"golang.org/x/sync/errgroup"

	m "github.com/mouse-blink/refix/internal/model"
)

// DefaultMinChunk is the smallest chunk a region is split into for parallel
// substitution.
const DefaultMinChunk = 1 << 20

// chunkPatternFactor scales the pattern length into a minimum chunk size.
const chunkPatternFactor = 10

// Substituter rewrites every occurrence of a pattern in place, splitting
// large regions into chunks that are searched concurrently.
type Substituter struct {
	source      []byte
	destination []byte
	minChunk    int
	parallelism int
}

// NewSubstituter constructs a Substituter. The pair must already have been
// validated as equal-length.
func NewSubstituter(pair m.PatternPair, minChunk int) *Substituter {
	if minChunk <= 0 {
		minChunk = DefaultMinChunk
	}

	return &Substituter{
		source:      pair.Source,
		destination: pair.Destination,
		minChunk:    minChunk,
		parallelism: runtime.GOMAXPROCS(0),
	}
}

// ChunkSize returns the chunk size used for regions searched with this pair.
func (s *Substituter) ChunkSize() int {
	return max(chunkPatternFactor*len(s.destination), s.minChunk)
}

// Substitute replaces the pattern in data and returns how many occurrences
// were rewritten.
//
// Chunks are processed independently, then the window of pattern length on
// each side of every chunk boundary is scanned again sequentially so an
// occurrence straddling two chunks is still found. Re-scanning bytes that
// were already rewritten is harmless since they no longer match.
func (s *Substituter) Substitute(data []byte) int {
	n := len(s.source)
	if n == 0 || len(data) < n {
		return 0
	}

	chunk := s.ChunkSize()
	if len(data) <= chunk {
		return replaceAll(data, s.source, s.destination)
	}

	chunks := (len(data) + chunk - 1) / chunk
	counts := make([]int, chunks)

	var g errgroup.Group

	g.SetLimit(s.parallelism)

	for i := range chunks {
		start := i * chunk
		end := min(start+chunk, len(data))
		part := data[start:end:end]

		g.Go(func() error {
			counts[i] = replaceAll(part, s.source, s.destination)

			return nil
		})
	}

	// Chunk jobs never return an error.
	_ = g.Wait()

	total := 0
	for _, c := range counts {
		total += c
	}

	for boundary := chunk; boundary < len(data); boundary += chunk {
		lo := boundary - n
		hi := min(boundary+n, len(data))
		total += replaceAll(data[lo:hi], s.source, s.destination)
	}

	return total
}

// Count returns how many non-overlapping occurrences of the pattern data holds.
func (s *Substituter) Count(data []byte) int {
	if len(s.source) == 0 {
		return 0
	}

	return bytes.Count(data, s.source)
}

// replaceAll is the sequential leftmost, non-overlapping scan: each match is
// overwritten and the search resumes right after it.
func replaceAll(data, source, destination []byte) int {
	n := len(source)
	if n == 0 {
		return 0
	}

	count := 0

	for i := 0; len(data)-i >= n; {
		p := bytes.Index(data[i:], source)
		if p < 0 {
			break
		}

		i += p
		copy(data[i:i+n], destination)
		i += n
		count++
	}

	return count
}

// ReplaceRegion overwrites a full replacement's range in data. Its size was
// validated during scanning, so it always reports a change.
func ReplaceRegion(data []byte, replacement m.FullReplacement) bool {
	copy(data[replacement.Offset:replacement.End()], replacement.Data)

	return true
}
