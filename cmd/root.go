// Package cmd provides the root command and CLI setup for refix.
package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/xyproto/env/v2"
	"gitlab.com/tozd/go/errors"

	"github.com/mouse-blink/refix/internal/adapter"
	"github.com/mouse-blink/refix/internal/controller"
	"github.com/mouse-blink/refix/internal/domain"
	"github.com/mouse-blink/refix/internal/logging"
	m "github.com/mouse-blink/refix/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var viewAdapter adapter.FileViewAdapter
var reportStore adapter.ReportStore
var manifestLoader adapter.ManifestLoader
var workflow domain.Workflow
var ui controller.UI

func init() {
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	viewAdapter = adapter.NewLocalFileViewAdapter()
	reportStore = adapter.NewReportStore()
	manifestLoader = adapter.NewLocalManifestLoader()
	workflow = domain.NewWorkflow(
		fsAdapter,
		viewAdapter,
		reportStore,
		ui,
	)
}

var sectionFlags []string
var prefixFlags []string
var manifestFlag string
var reportFlag string
var verboseFlag bool
var workersFlag int
var minChunkFlag int

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refix <file> [src dst]",
		Short: "Rewrite fixed-length strings inside ELF files and ar archives",
		Long: `Refix rewrites byte strings embedded in compiled artifacts in place, without
changing the length or layout of the file. Its main use is replacing absolute
build paths with a canonical path of the same length so that binaries built on
different machines are byte-identical.

Supported inputs:
  - ELF objects, executables and shared libraries (32/64-bit, either byte order)
  - ar archives; every ELF member is scanned
  - anything else is treated as one opaque region

Only sections whose name starts with a --prefix are searched. Sections named
with --section are replaced wholesale by the contents of a file of exactly the
same size.`,
		Example: `  refix libfoo.a /home/ci/build/x1 /usr/src/pkg/foo
  refix --section .note.package=note.bin app /tmp/build/AAAA /usr/src/BBBB
  refix --manifest refix.yaml app`,
		Args:         fileAndPatternArgs,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Setup(cmd.ErrOrStderr(), logging.Options{
				Verbose: verboseFlag,
				Color:   controller.IsTTY(cmd.ErrOrStderr()),
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := resolveInvocation(cmd.Flags(), args)
			if err != nil {
				return err
			}

			if inv.pattern.Empty() {
				return errors.New("missing <src> <dst>: pass them as arguments or in --manifest")
			}

			return workflow.Rewrite(cmd.Context(), domain.RewriteArgs{
				Path:     inv.path,
				Pattern:  inv.pattern,
				Prefixes: inv.prefixes,
				Sections: inv.sections,
				Workers:  inv.workers,
				MinChunk: inv.minChunk,
				Report:   m.Path(reportFlag),
			})
		},
	}
	cmd.PersistentFlags().StringArrayVar(&sectionFlags, "section", nil, "replace section NAME with the contents of PATH, as NAME=PATH (can be repeated)")
	cmd.PersistentFlags().StringSliceVar(&prefixFlags, "prefix", m.DefaultPrefixes, "section name prefixes to search for the pattern")
	cmd.PersistentFlags().StringVar(&manifestFlag, "manifest", "", "YAML manifest with src, dst, prefixes and sections")
	cmd.PersistentFlags().StringVar(&reportFlag, "report", "", "write the run report as YAML to this file")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", env.Bool("REFIX_VERBOSE"), "log discovery and dispatch details to stderr")
	cmd.Flags().IntVarP(&workersFlag, "workers", "p", env.Int("REFIX_WORKERS", domain.DefaultWorkers), "number of regions rewritten concurrently")
	cmd.Flags().IntVar(&minChunkFlag, "min-chunk", env.Int("REFIX_MIN_CHUNK", domain.DefaultMinChunk), "smallest chunk, in bytes, a region is split into for parallel search")

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// fileAndPatternArgs accepts either a lone file (patterns from --manifest)
// or a file followed by the source and destination patterns.
func fileAndPatternArgs(_ *cobra.Command, args []string) error {
	if len(args) != 1 && len(args) != 3 {
		return errors.Errorf("expected <file> or <file> <src> <dst>, got %d arguments", len(args))
	}

	return nil
}

// invocation is the merged view of arguments, flags and the manifest.
type invocation struct {
	path     m.Path
	pattern  m.PatternPair
	prefixes []string
	sections map[string]m.Path
	workers  int
	minChunk int
}

// resolveInvocation merges the manifest, if any, with the command line.
// Explicit flags and positional patterns win over manifest values.
func resolveInvocation(flags *pflag.FlagSet, args []string) (invocation, error) {
	inv := invocation{
		path:     m.Path(args[0]),
		prefixes: prefixFlags,
		sections: make(map[string]m.Path),
		workers:  workersFlag,
		minChunk: minChunkFlag,
	}

	if manifestFlag != "" {
		manifest, err := manifestLoader.Load(m.Path(manifestFlag))
		if err != nil {
			return invocation{}, err
		}

		applyManifest(flags, &inv, manifest, filepath.Dir(manifestFlag))
	}

	if len(args) == 3 {
		inv.pattern = m.PatternPair{Source: []byte(args[1]), Destination: []byte(args[2])}
	}

	for _, flag := range sectionFlags {
		name, path, err := parseSectionFlag(flag)
		if err != nil {
			return invocation{}, err
		}

		inv.sections[name] = path
	}

	return inv, nil
}

// applyManifest copies manifest values into inv. Relative section paths are
// taken relative to the manifest's directory.
func applyManifest(flags *pflag.FlagSet, inv *invocation, manifest adapter.Manifest, dir string) {
	inv.pattern = m.PatternPair{Source: []byte(manifest.Source), Destination: []byte(manifest.Destination)}

	if len(manifest.Prefixes) > 0 && !flags.Changed("prefix") {
		inv.prefixes = manifest.Prefixes
	}

	if manifest.Workers > 0 && !flags.Changed("workers") {
		inv.workers = manifest.Workers
	}

	if manifest.MinChunk > 0 && !flags.Changed("min-chunk") {
		inv.minChunk = manifest.MinChunk
	}

	for name, path := range manifest.Sections {
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}

		inv.sections[name] = m.Path(path)
	}
}

// parseSectionFlag splits a NAME=PATH section flag.
func parseSectionFlag(flag string) (string, m.Path, error) {
	name, path, ok := strings.Cut(flag, "=")
	if !ok || name == "" || path == "" {
		return "", "", errors.Errorf("invalid --section %q: expected NAME=PATH", flag)
	}

	return name, m.Path(path), nil
}
