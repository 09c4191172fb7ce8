package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mouse-blink/refix/internal/domain"
	m "github.com/mouse-blink/refix/internal/model"
)

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <file> [src dst]",
		Short: "List the regions refix would rewrite",
		Long: `Scan runs region discovery on a file and lists every section that would be
searched or replaced, without opening the file for writing. When src and dst
are given, each region also shows how many occurrences of src it holds.`,
		Args: fileAndPatternArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := resolveInvocation(cmd.Flags(), args)
			if err != nil {
				return err
			}

			return workflow.Scan(cmd.Context(), domain.ScanArgs{
				Path:     inv.path,
				Pattern:  inv.pattern,
				Prefixes: inv.prefixes,
				Sections: inv.sections,
				Report:   m.Path(reportFlag),
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
