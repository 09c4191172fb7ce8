package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mouse-blink/refix/internal/domain"
	m "github.com/mouse-blink/refix/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <report>",
		Short: "View a report saved with --report",
		Long:  "View a run report previously written by refix or refix scan with --report.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return workflow.View(domain.ViewArgs{Report: m.Path(args[0])})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
