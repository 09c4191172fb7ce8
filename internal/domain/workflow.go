package domain

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"
	"gitlab.com/tozd/go/errors"

	"github.com/mouse-blink/refix/internal/adapter"
	"github.com/mouse-blink/refix/internal/controller"
	m "github.com/mouse-blink/refix/internal/model"
)

// DefaultWorkers is the size of the region worker pool. The work is memory
// bandwidth bound, so more workers add CPU time without reducing latency.
const DefaultWorkers = 4

// RewriteArgs contains arguments for rewriting one file in place.
type RewriteArgs struct {
	Path     m.Path
	Pattern  m.PatternPair
	Prefixes []string
	Sections map[string]m.Path // section name -> replacement data file
	Workers  int
	MinChunk int
	Report   m.Path // optional YAML report destination
}

// ScanArgs contains arguments for a read-only scan.
type ScanArgs struct {
	Path     m.Path
	Pattern  m.PatternPair // optional, enables match counts
	Prefixes []string
	Sections map[string]m.Path
	Report   m.Path
}

// ViewArgs contains arguments for displaying a stored report.
type ViewArgs struct {
	Report m.Path
}

// Workflow drives a whole run over a single file.
type Workflow interface {
	// Rewrite substitutes the pattern and replaces sections in place.
	Rewrite(ctx context.Context, args RewriteArgs) error
	// Scan reports what Rewrite would touch without writing anything.
	Scan(ctx context.Context, args ScanArgs) error
	// View displays a report previously saved by Rewrite or Scan.
	View(args ViewArgs) error
}

type workflow struct {
	fsAdapter   adapter.SourceFSAdapter
	viewAdapter adapter.FileViewAdapter
	reportStore adapter.ReportStore
	ui          controller.UI
}

// NewWorkflow creates a new Workflow instance with the provided adapters.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	viewAdapter adapter.FileViewAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
) Workflow {
	return &workflow{
		fsAdapter:   fsAdapter,
		viewAdapter: viewAdapter,
		reportStore: reportStore,
		ui:          ui,
	}
}

// ValidatePattern checks that source and destination are non-empty and of
// equal length in bytes.
func ValidatePattern(pair m.PatternPair) error {
	if len(pair.Source) == 0 || len(pair.Source) != len(pair.Destination) {
		return errors.Errorf("%w: `%s' has %d bytes but `%s' has %d bytes",
			ErrPatternLength, pair.Source, len(pair.Source), pair.Destination, len(pair.Destination))
	}

	return nil
}

func (w *workflow) Rewrite(ctx context.Context, args RewriteArgs) error {
	if err := w.ui.Start(controller.WithRewriteMode()); err != nil {
		return err
	}
	defer w.ui.Close()

	report, err := w.rewrite(ctx, args)

	return w.finish(report, err, args.Report)
}

func (w *workflow) Scan(ctx context.Context, args ScanArgs) error {
	if err := w.ui.Start(controller.WithScanMode()); err != nil {
		return err
	}
	defer w.ui.Close()

	report, err := w.scan(ctx, args)

	return w.finish(report, err, args.Report)
}

func (w *workflow) View(args ViewArgs) error {
	report, err := w.reportStore.LoadReport(args.Report)
	if err != nil {
		return err
	}

	mode := controller.WithRewriteMode()
	if report.DryRun {
		mode = controller.WithScanMode()
	}

	if err := w.ui.Start(mode); err != nil {
		return err
	}
	defer w.ui.Close()

	plan := controller.Plan{
		Path:     report.Path,
		Type:     report.Type,
		Size:     report.Size,
		Workers:  1,
		Fallback: report.Fallback,
	}

	for _, r := range report.Regions {
		if r.Kind == m.KindReplace {
			plan.Replacements++
		} else {
			plan.Regions++
		}
	}

	w.ui.DisplayPlan(plan)

	for _, r := range report.Regions {
		w.ui.DisplayRegionDone(r, 0)
	}

	err = w.ui.DisplayReport(report, nil)
	w.ui.Wait()

	return err
}

// finish hands the outcome to the UI and stores the report when asked to.
func (w *workflow) finish(report m.RunReport, err error, reportPath m.Path) error {
	err = w.ui.DisplayReport(report, err)
	w.ui.Wait()

	if err != nil {
		return err
	}

	if reportPath != "" {
		return w.reportStore.SaveReport(reportPath, report)
	}

	return nil
}

func (w *workflow) rewrite(ctx context.Context, args RewriteArgs) (report m.RunReport, err error) {
	report = m.RunReport{Path: args.Path}

	if err := ValidatePattern(args.Pattern); err != nil {
		return report, err
	}

	config, err := w.sectionConfig(args.Prefixes, args.Sections)
	if err != nil {
		return report, err
	}

	path, err := w.resolveTarget(args.Path)
	if err != nil {
		return report, err
	}

	view, err := w.viewAdapter.Open(path, true)
	if err != nil {
		return report, err
	}

	defer func() {
		err = appendCloseError(err, view.Close())
	}()

	data := view.Bytes()

	fileType, targets, fallback, err := discover(data, config)
	if err != nil {
		return report, err
	}

	report.Type, report.Size, report.Fallback = fileType, len(data), fallback

	workers := args.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	w.ui.DisplayPlan(controller.Plan{
		Path:         args.Path,
		Type:         fileType,
		Size:         len(data),
		Regions:      len(targets.Regions),
		Replacements: len(targets.Replacements),
		Workers:      workers,
		Fallback:     fallback,
	})

	substituter := NewSubstituter(args.Pattern, args.MinChunk)

	slog.DebugContext(ctx, "dispatching",
		"path", args.Path,
		"type", fileType,
		"regions", len(targets.Regions),
		"replacements", len(targets.Replacements),
		"workers", workers,
		"chunk", substituter.ChunkSize())

	report.Regions, err = w.dispatch(view, targets, substituter, workers)
	if err != nil {
		return report, err
	}

	slog.InfoContext(ctx, "rewrote file",
		"path", args.Path,
		"regions", len(report.Regions),
		"changed", report.ChangedCount(),
		"matches", report.MatchCount())

	return report, nil
}

func (w *workflow) scan(ctx context.Context, args ScanArgs) (report m.RunReport, err error) {
	report = m.RunReport{Path: args.Path, DryRun: true}

	if !args.Pattern.Empty() {
		if err := ValidatePattern(args.Pattern); err != nil {
			return report, err
		}
	}

	config, err := w.sectionConfig(args.Prefixes, args.Sections)
	if err != nil {
		return report, err
	}

	path, err := w.resolveTarget(args.Path)
	if err != nil {
		return report, err
	}

	view, err := w.viewAdapter.Open(path, false)
	if err != nil {
		return report, err
	}

	defer func() {
		err = appendCloseError(err, view.Close())
	}()

	data := view.Bytes()

	fileType, targets, fallback, err := discover(data, config)
	if err != nil {
		return report, err
	}

	report.Type, report.Size, report.Fallback = fileType, len(data), fallback

	w.ui.DisplayPlan(controller.Plan{
		Path:         args.Path,
		Type:         fileType,
		Size:         len(data),
		Regions:      len(targets.Regions),
		Replacements: len(targets.Replacements),
		Workers:      1,
		Fallback:     fallback,
	})

	substituter := NewSubstituter(args.Pattern, 0)

	for _, region := range targets.Regions {
		r := m.RegionReport{
			Kind:    m.KindSubstitute,
			Section: region.Section,
			Member:  region.Member,
			Offset:  region.Offset,
			Length:  region.Length,
			Matches: substituter.Count(data[region.Offset:region.End()]),
		}
		report.Regions = append(report.Regions, r)
		w.ui.DisplayRegionDone(r, 0)
	}

	for _, replacement := range targets.Replacements {
		r := m.RegionReport{
			Kind:    m.KindReplace,
			Section: replacement.Section,
			Member:  replacement.Member,
			Offset:  replacement.Offset,
			Length:  len(replacement.Data),
		}
		report.Regions = append(report.Regions, r)
		w.ui.DisplayRegionDone(r, 0)
	}

	slog.DebugContext(ctx, "scanned file", "path", args.Path, "type", fileType, "regions", len(report.Regions))

	return report, nil
}

// sectionConfig loads the replacement data for every requested section.
func (w *workflow) sectionConfig(prefixes []string, sections map[string]m.Path) (m.SectionConfig, error) {
	config := m.SectionConfig{
		Prefixes:     prefixes,
		Replacements: make(map[string][]byte, len(sections)),
	}

	for name, path := range sections {
		data, err := w.fsAdapter.ReadFile(path)
		if err != nil {
			return m.SectionConfig{}, errors.Errorf("replacement for section %s: %w", name, err)
		}

		config.Replacements[name] = data
	}

	return config, nil
}

// resolveTarget returns the absolute path of the file to rewrite and rejects
// anything that is not a regular file.
func (w *workflow) resolveTarget(path m.Path) (m.Path, error) {
	resolved, err := w.fsAdapter.ResolvePath(path)
	if err != nil {
		return "", err
	}

	info, err := w.fsAdapter.FileInfo(resolved)
	if err != nil {
		return "", errors.Errorf("opening %s: %w", path, err)
	}

	if !info.Mode().IsRegular() {
		return "", errors.Errorf("%s is not a regular file", path)
	}

	return resolved, nil
}

// discover classifies data and collects every range to rewrite. Files with
// no ELF image fall back to a single region covering the whole file, unless
// section replacements were requested.
func discover(data []byte, config m.SectionConfig) (m.FileType, m.Targets, bool, error) {
	scanner := NewScanner(config)
	fileType := DetectFileType(data)

	var (
		targets m.Targets
		err     error
	)

	switch fileType {
	case m.FileELF:
		targets, err = scanner.ScanELF(data, 0, "")
	case m.FileArchive:
		targets, err = scanner.ScanArchive(data)
	case m.FileUnknown:
	}

	if err != nil {
		return fileType, m.Targets{}, false, err
	}

	if targets.ELFMembers == 0 {
		if len(config.Replacements) > 0 {
			return fileType, m.Targets{}, false, errors.Errorf("%w: file type is %s", ErrNoStructuralTarget, fileType)
		}

		slog.Debug("no ELF image found, treating the whole file as one region", "type", fileType)

		return fileType, m.Targets{Regions: []m.Region{{Offset: 0, Length: len(data)}}}, true, nil
	}

	if err := checkMissingSections(config, targets); err != nil {
		return fileType, m.Targets{}, false, err
	}

	if err := checkDisjoint(targets); err != nil {
		return fileType, m.Targets{}, false, err
	}

	return fileType, targets, false, nil
}

func checkMissingSections(config m.SectionConfig, targets m.Targets) error {
	found := make(map[string]struct{}, len(targets.Replacements))
	for _, r := range targets.Replacements {
		found[r.Section] = struct{}{}
	}

	var missing []string

	for name := range config.Replacements {
		if _, ok := found[name]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)

		return errors.Errorf("%w: %v", ErrMissingSection, missing)
	}

	return nil
}

// checkDisjoint proves that no two targets share a byte, which lets workers
// write their ranges without locking.
func checkDisjoint(targets m.Targets) error {
	type span struct {
		start, end int
		name       string
	}

	spans := make([]span, 0, len(targets.Regions)+len(targets.Replacements))

	for _, r := range targets.Regions {
		spans = append(spans, span{r.Offset, r.End(), r.Section})
	}

	for _, r := range targets.Replacements {
		spans = append(spans, span{r.Offset, r.End(), r.Section})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var prev *span

	for i := range spans {
		if spans[i].start == spans[i].end {
			continue
		}

		if prev != nil && spans[i].start < prev.end {
			return errors.Errorf("%w: %s [%#x, %#x) and %s [%#x, %#x)",
				ErrOverlappingTargets, prev.name, prev.start, prev.end, spans[i].name, spans[i].start, spans[i].end)
		}

		prev = &spans[i]
	}

	return nil
}

// targetJob is one region or full replacement handed to a worker.
type targetJob struct {
	index       int
	region      m.Region
	replacement *m.FullReplacement
}

// targetResult holds the result of processing a single target.
type targetResult struct {
	index  int
	worker int
	report m.RegionReport
	err    error
}

// dispatch runs every target through a fixed pool of workers and returns the
// reports in discovery order. Each worker owns the bytes of the targets it
// receives; checkDisjoint has already ruled out sharing.
func (w *workflow) dispatch(view adapter.FileView, targets m.Targets, substituter *Substituter, workers int) ([]m.RegionReport, error) {
	total := len(targets.Regions) + len(targets.Replacements)
	reports := make([]m.RegionReport, total)

	jobs := make(chan targetJob, total)
	results := make(chan targetResult, total)

	var (
		wg     sync.WaitGroup
		failed atomic.Bool
	)

	for id := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			processTargetWorker(id, view, substituter, &failed, jobs, results)
		}()
	}

	for i, region := range targets.Regions {
		jobs <- targetJob{index: i, region: region}
	}

	for i := range targets.Replacements {
		jobs <- targetJob{index: len(targets.Regions) + i, replacement: &targets.Replacements[i]}
	}

	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error

	for res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}

			continue
		}

		reports[res.index] = res.report
		w.ui.DisplayRegionDone(res.report, res.worker)
	}

	if firstErr != nil {
		return nil, firstErr
	}

	return reports, nil
}

// processTargetWorker processes targets from the jobs channel until it is
// drained. Once any worker has failed, the remaining jobs are skipped.
func processTargetWorker(id int, view adapter.FileView, substituter *Substituter, failed *atomic.Bool, jobs <-chan targetJob, results chan<- targetResult) {
	for job := range jobs {
		if failed.Load() {
			continue
		}

		report, err := processTarget(view, substituter, job)
		if err != nil {
			failed.Store(true)
		}

		results <- targetResult{index: job.index, worker: id, report: report, err: err}
	}
}

func processTarget(view adapter.FileView, substituter *Substituter, job targetJob) (m.RegionReport, error) {
	data := view.Bytes()

	if r := job.replacement; r != nil {
		report := m.RegionReport{
			Kind:    m.KindReplace,
			Section: r.Section,
			Member:  r.Member,
			Offset:  r.Offset,
			Length:  len(r.Data),
			Changed: ReplaceRegion(data, *r),
		}

		if err := view.Flush(r.Offset, len(r.Data)); err != nil {
			return report, errors.Errorf("section %s: %w", r.Section, err)
		}

		return report, nil
	}

	region := job.region
	matches := substituter.Substitute(data[region.Offset:region.End():region.End()])

	report := m.RegionReport{
		Kind:    m.KindSubstitute,
		Section: region.Section,
		Member:  region.Member,
		Offset:  region.Offset,
		Length:  region.Length,
		Matches: matches,
		Changed: matches > 0,
	}

	if report.Changed {
		if err := view.Flush(region.Offset, region.Length); err != nil {
			return report, errors.Errorf("section %s: %w", region.Section, err)
		}
	}

	return report, nil
}

// appendCloseError folds the error from closing the mapping into err.
func appendCloseError(err, closeErr error) error {
	if closeErr == nil {
		return err
	}

	if err == nil {
		return closeErr
	}

	return multierror.Append(err, closeErr)
}
