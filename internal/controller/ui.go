// Package controller provides the output side of refix: a plain text summary
// for pipes and an interactive progress view for terminals.
package controller

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	m "github.com/mouse-blink/refix/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeRewrite StartMode = iota
	ModeScan
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithRewriteMode sets the UI to rewrite mode.
func WithRewriteMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRewrite
	}
}

// WithScanMode sets the UI to scan (dry run) mode.
func WithScanMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeScan
	}
}

// Plan describes the work discovered in a file before any byte is written.
type Plan struct {
	Path         m.Path
	Type         m.FileType
	Size         int
	Regions      int
	Replacements int
	Workers      int
	Fallback     bool
}

// Total returns the number of work items in the plan.
func (p Plan) Total() int {
	return p.Regions + p.Replacements
}

// UI defines how a run is presented.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(options ...StartOption) error
	Close()
	Wait() // Wait for UI to finish rendering
	DisplayPlan(plan Plan)
	DisplayRegionDone(report m.RegionReport, worker int)
	DisplayReport(report m.RunReport, err error) error
}

// regionLabel names a region for display: "member(section)" inside
// archives, the section name otherwise.
func regionLabel(r m.RegionReport) string {
	section := r.Section
	if section == "" {
		section = "<whole file>"
	}

	if r.Member == "" {
		return section
	}

	return fmt.Sprintf("%s(%s)", r.Member, section)
}

// regionStatus describes what happened to a region.
func regionStatus(r m.RegionReport, dryRun bool) string {
	switch {
	case dryRun && r.Kind == m.KindReplace:
		return "would replace"
	case dryRun && r.Matches > 0:
		return "would rewrite"
	case dryRun:
		return "no match"
	case r.Changed && r.Kind == m.KindReplace:
		return "replaced"
	case r.Changed:
		return "rewritten"
	default:
		return "unchanged"
	}
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}

	if lipgloss.Width(text) <= width {
		return text
	}

	ellipsis := "…"

	maxWidth := width - lipgloss.Width(ellipsis)
	if maxWidth <= 0 {
		return ellipsis
	}

	currentWidth := 0

	result := make([]rune, 0, len(text))
	for _, r := range text {
		rWidth := lipgloss.Width(string(r))
		if currentWidth+rWidth > maxWidth {
			break
		}

		result = append(result, r)
		currentWidth += rWidth
	}

	return string(result) + ellipsis
}
