package controller

import (
	"bytes"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/mouse-blink/refix/internal/model"
)

// SimpleUI implements UI using cobra Command's output stream.
type SimpleUI struct {
	cmd  *cobra.Command
	mode StartMode
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start records the mode; there is nothing to set up.
func (s *SimpleUI) Start(options ...StartOption) error {
	cfg := StartConfig{mode: ModeRewrite}
	for _, option := range options {
		option(&cfg)
	}

	s.mode = cfg.mode

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close() {}

// Wait returns immediately; output is written synchronously.
func (s *SimpleUI) Wait() {}

// DisplayPlan prints a one line description of the discovered work.
func (s *SimpleUI) DisplayPlan(plan Plan) {
	verb := "Rewriting"
	if s.mode == ModeScan {
		verb = "Scanning"
	}

	target := fmt.Sprintf("%d region(s), %d section replacement(s)", plan.Regions, plan.Replacements)
	if plan.Fallback {
		target = "whole file (no ELF sections)"
	}

	s.printf("%s %s (%s, %s): %s\n", verb, plan.Path, plan.Type, humanize.Bytes(uint64(plan.Size)), target)
}

// DisplayRegionDone is silent; the summary table lists every region.
func (s *SimpleUI) DisplayRegionDone(_ m.RegionReport, _ int) {}

// DisplayReport prints the per-region table or the error.
func (s *SimpleUI) DisplayReport(report m.RunReport, err error) error {
	if err != nil {
		s.printf("refix error: %v\n", err)

		return err
	}

	if len(report.Regions) == 0 {
		s.printf("No matching sections found\n")

		return nil
	}

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Region", "Offset", "Size", "Matches", "Status"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_LEFT,
	})

	for _, region := range report.Regions {
		table.Append([]string{
			regionLabel(region),
			fmt.Sprintf("%#x", region.Offset),
			humanize.Bytes(uint64(region.Length)),
			fmt.Sprintf("%d", region.Matches),
			regionStatus(region, report.DryRun),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Regions %d", len(report.Regions)),
		"",
		humanize.Bytes(uint64(report.ScannedBytes())),
		fmt.Sprintf("%d", report.MatchCount()),
		fmt.Sprintf("%d changed", report.AffectedCount()),
	})

	table.Render()
	s.printf("\n%s", tableBuffer.String())

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
