package domain

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mouse-blink/refix/internal/adapter"
	adaptermocks "github.com/mouse-blink/refix/internal/adapter/mocks"
	"github.com/mouse-blink/refix/internal/controller"
	controllermocks "github.com/mouse-blink/refix/internal/controller/mocks"
	m "github.com/mouse-blink/refix/internal/model"
)

const (
	buildPath = "/build/AAAA"
	canonPath = "/usr/src/BB"
)

type flushRange struct {
	offset, length int
}

// memView is a FileView over a private copy of the file contents.
type memView struct {
	mu       sync.Mutex
	data     []byte
	flushes  []flushRange
	closed   bool
	flushErr error
}

func (v *memView) Bytes() []byte {
	return v.data
}

func (v *memView) Flush(offset, length int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.flushes = append(v.flushes, flushRange{offset, length})

	return v.flushErr
}

func (v *memView) Close() error {
	v.closed = true

	return nil
}

// memViewAdapter serves memViews loaded from the requested path.
type memViewAdapter struct {
	views    []*memView
	writable []bool
	flushErr error
}

func (a *memViewAdapter) Open(path m.Path, writable bool) (adapter.FileView, error) {
	data, err := os.ReadFile(string(path))
	if err != nil {
		return nil, err
	}

	view := &memView{data: data, flushErr: a.flushErr}
	a.views = append(a.views, view)
	a.writable = append(a.writable, writable)

	return view, nil
}

func (a *memViewAdapter) view(t *testing.T) *memView {
	t.Helper()
	require.Len(t, a.views, 1)

	return a.views[0]
}

func newTestWorkflow(views adapter.FileViewAdapter) (Workflow, *bytes.Buffer) {
	out := &bytes.Buffer{}

	cmd := &cobra.Command{}
	cmd.SetOut(out)

	return NewWorkflow(
		adapter.NewLocalSourceFSAdapter(),
		views,
		adapter.NewReportStore(),
		controller.NewSimpleUI(cmd),
	), out
}

func writeTempFile(t *testing.T, name string, data []byte) m.Path {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return m.Path(path)
}

// sampleELF has build paths in a searched section, an unsearched section
// and a debug section.
func sampleELF() *elfBuilder {
	return newELF64().
		section(".text", []byte("code "+buildPath+" code")).
		section(".rodata", []byte(buildPath+"/a.c\x00"+buildPath+"/b.c\x00")).
		section(".note.package", []byte("0123456789abcdef")).
		section(".debug_str", []byte("dir="+buildPath+"\x00")).
		section(".comment", []byte("GCC"))
}

func rewriteArgs(path m.Path) RewriteArgs {
	return RewriteArgs{
		Path:     path,
		Pattern:  pair(buildPath, canonPath),
		Prefixes: m.DefaultPrefixes,
		Workers:  2,
		MinChunk: 64,
	}
}

func TestWorkflow_Rewrite_ELF(t *testing.T) {
	// Arrange
	b := sampleELF()
	image := b.build()
	path := writeTempFile(t, "app", image)

	views := &memViewAdapter{}
	wf, out := newTestWorkflow(views)

	// Act
	err := wf.Rewrite(context.Background(), rewriteArgs(path))

	// Assert
	require.NoError(t, err)

	view := views.view(t)
	assert.True(t, views.writable[0])
	assert.True(t, view.closed)
	assert.Len(t, view.data, len(image))

	want := bytes.Clone(image)
	rodata, debugStr := b.offsetOf(".rodata"), b.offsetOf(".debug_str")
	copy(want[rodata:], canonPath)
	copy(want[rodata+len(buildPath+"/a.c\x00"):], canonPath)
	copy(want[debugStr+len("dir="):], canonPath)
	assert.Equal(t, want, view.data)

	assert.Contains(t, string(view.data), "code "+buildPath+" code", ".text is not searched")
	assert.ElementsMatch(t, []flushRange{
		{rodata, len(buildPath+"/a.c\x00") * 2},
		{debugStr, len("dir=" + buildPath + "\x00")},
	}, view.flushes)

	assert.Contains(t, out.String(), "Rewriting")
	assert.Contains(t, out.String(), ".rodata")
	assert.Contains(t, strings.ToUpper(out.String()), "2 CHANGED")
}

func TestWorkflow_Rewrite_FullSectionReplacement(t *testing.T) {
	b := sampleELF()
	image := b.build()
	path := writeTempFile(t, "app", image)
	blob := writeTempFile(t, "note.bin", []byte("FEDCBA9876543210"))

	views := &memViewAdapter{}
	wf, _ := newTestWorkflow(views)

	args := rewriteArgs(path)
	args.Prefixes = nil
	args.Sections = map[string]m.Path{".note.package": blob}

	err := wf.Rewrite(context.Background(), args)

	require.NoError(t, err)

	note := b.offsetOf(".note.package")
	want := bytes.Clone(image)
	copy(want[note:], "FEDCBA9876543210")

	view := views.view(t)
	assert.Equal(t, want, view.data, "only the replaced section changes")
	assert.Equal(t, []flushRange{{note, 16}}, view.flushes)
}

func TestWorkflow_Rewrite_FatalErrorsLeaveFileUnmodified(t *testing.T) {
	image := sampleELF().build()

	tests := []struct {
		name     string
		mutate   func(t *testing.T, args *RewriteArgs)
		wantErr  error
		wantOpen bool
	}{
		{
			name: "pattern length mismatch",
			mutate: func(_ *testing.T, args *RewriteArgs) {
				args.Pattern = pair(buildPath, "/usr")
			},
			wantErr: ErrPatternLength,
		},
		{
			name: "empty pattern",
			mutate: func(_ *testing.T, args *RewriteArgs) {
				args.Pattern = m.PatternPair{}
			},
			wantErr: ErrPatternLength,
		},
		{
			name: "replacement size mismatch",
			mutate: func(t *testing.T, args *RewriteArgs) {
				args.Sections = map[string]m.Path{".note.package": writeTempFile(t, "short.bin", []byte("short"))}
			},
			wantErr:  ErrSectionSize,
			wantOpen: true,
		},
		{
			name: "missing section",
			mutate: func(t *testing.T, args *RewriteArgs) {
				args.Sections = map[string]m.Path{".note.missing": writeTempFile(t, "blob.bin", []byte("x"))}
			},
			wantErr:  ErrMissingSection,
			wantOpen: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "app", image)
			views := &memViewAdapter{}
			wf, out := newTestWorkflow(views)

			args := rewriteArgs(path)
			tt.mutate(t, &args)

			err := wf.Rewrite(context.Background(), args)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, out.String(), "refix error")

			if !tt.wantOpen {
				assert.Empty(t, views.views, "the file is never opened")

				return
			}

			view := views.view(t)
			assert.Equal(t, image, view.data)
			assert.Empty(t, view.flushes)
			assert.True(t, view.closed)
		})
	}
}

func TestWorkflow_Rewrite_MissingReplacementFile(t *testing.T) {
	path := writeTempFile(t, "app", sampleELF().build())
	views := &memViewAdapter{}
	wf, _ := newTestWorkflow(views)

	args := rewriteArgs(path)
	args.Sections = map[string]m.Path{".note.package": m.Path(filepath.Join(t.TempDir(), "nope.bin"))}

	err := wf.Rewrite(context.Background(), args)

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, views.views)
}

func TestWorkflow_Rewrite_NotRegularFile(t *testing.T) {
	views := &memViewAdapter{}
	wf, _ := newTestWorkflow(views)

	err := wf.Rewrite(context.Background(), rewriteArgs(m.Path(t.TempDir())))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a regular file")
	assert.Empty(t, views.views)
}

func TestWorkflow_Rewrite_UnknownFileFallback(t *testing.T) {
	data := bytes.Repeat([]byte("log line "+buildPath+"\n"), 50)
	path := writeTempFile(t, "build.log", data)
	reportPath := m.Path(filepath.Join(t.TempDir(), "report.yaml"))

	views := &memViewAdapter{}
	wf, _ := newTestWorkflow(views)

	args := rewriteArgs(path)
	args.Report = reportPath

	err := wf.Rewrite(context.Background(), args)

	require.NoError(t, err)
	assert.Equal(t, bytes.ReplaceAll(data, []byte(buildPath), []byte(canonPath)), views.view(t).data)

	report, err := adapter.NewReportStore().LoadReport(reportPath)
	require.NoError(t, err)
	assert.True(t, report.Fallback)
	assert.Equal(t, m.FileUnknown, report.Type)
	require.Len(t, report.Regions, 1)
	assert.Equal(t, 50, report.Regions[0].Matches)
	assert.Equal(t, len(data), report.Regions[0].Length)
}

func TestWorkflow_Rewrite_NoStructuralTarget(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "unknown file", data: []byte("plain text " + buildPath)},
		{name: "archive without elf members", data: newArchive().member("a.txt", []byte(buildPath)).bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "input", tt.data)
			views := &memViewAdapter{}
			wf, _ := newTestWorkflow(views)

			args := rewriteArgs(path)
			args.Sections = map[string]m.Path{".note.package": writeTempFile(t, "blob", []byte("x"))}

			err := wf.Rewrite(context.Background(), args)

			require.ErrorIs(t, err, ErrNoStructuralTarget)
			assert.Equal(t, tt.data, views.view(t).data)
		})
	}
}

func TestWorkflow_Rewrite_ArchiveWithoutELFFallback(t *testing.T) {
	data := newArchive().member("a.txt", []byte(buildPath)).member("b.txt", []byte("x"+buildPath)).bytes()
	path := writeTempFile(t, "lib.a", data)

	views := &memViewAdapter{}
	wf, _ := newTestWorkflow(views)

	err := wf.Rewrite(context.Background(), rewriteArgs(path))

	require.NoError(t, err)
	assert.Equal(t, bytes.ReplaceAll(data, []byte(buildPath), []byte(canonPath)), views.view(t).data)
}

func TestWorkflow_Rewrite_Archive(t *testing.T) {
	first, second := sampleELF(), sampleELF()

	ar := newArchive()
	ar.member("notes.txt", []byte(buildPath))
	ar.member("a.o", first.build())
	ar.member("b.o", second.build())
	data := ar.bytes()
	path := writeTempFile(t, "lib.a", data)

	views := &memViewAdapter{}
	wf, _ := newTestWorkflow(views)

	err := wf.Rewrite(context.Background(), rewriteArgs(path))

	require.NoError(t, err)

	got := views.view(t).data
	assert.Len(t, got, len(data))
	assert.Equal(t, 2, bytes.Count(got, []byte("code "+buildPath+" code")), ".text of both members untouched")
	assert.Equal(t, 1+2, bytes.Count(got, []byte(buildPath)), "non-ELF member and .text sections keep the old path")
	assert.Equal(t, 6, bytes.Count(got, []byte(canonPath)))
}

func TestWorkflow_Rewrite_FlushError(t *testing.T) {
	path := writeTempFile(t, "app", sampleELF().build())

	views := &memViewAdapter{flushErr: assert.AnError}
	wf, _ := newTestWorkflow(views)

	args := rewriteArgs(path)
	args.Workers = 1

	err := wf.Rewrite(context.Background(), args)

	require.ErrorIs(t, err, assert.AnError)
	assert.True(t, views.view(t).closed)
}

func TestWorkflow_Rewrite_UIEvents(t *testing.T) {
	// Arrange
	b := sampleELF()
	path := writeTempFile(t, "app", b.build())

	mockUI := controllermocks.NewMockUI(t)
	mockUI.EXPECT().Start(mock.Anything).Return(nil)
	mockUI.EXPECT().DisplayPlan(mock.MatchedBy(func(plan controller.Plan) bool {
		return plan.Type == m.FileELF && plan.Regions == 2 && plan.Replacements == 0 && plan.Workers == DefaultWorkers && !plan.Fallback
	})).Return()
	mockUI.EXPECT().DisplayRegionDone(mock.Anything, mock.Anything).Return().Times(2)
	mockUI.EXPECT().DisplayReport(mock.MatchedBy(func(report m.RunReport) bool {
		return report.Type == m.FileELF && report.MatchCount() == 3 && report.ChangedCount() == 2 &&
			report.Regions[0].Section == ".rodata" && report.Regions[1].Section == ".debug_str"
	}), nil).Return(nil)
	mockUI.EXPECT().Wait().Return()
	mockUI.EXPECT().Close().Return()

	wf := NewWorkflow(adapter.NewLocalSourceFSAdapter(), &memViewAdapter{}, adapter.NewReportStore(), mockUI)

	args := rewriteArgs(path)
	args.Workers = 0

	// Act
	err := wf.Rewrite(context.Background(), args)

	// Assert
	require.NoError(t, err)
}

func TestWorkflow_Rewrite_UsesAdapters(t *testing.T) {
	// Arrange
	image := sampleELF().build()

	mockFS := adaptermocks.NewMockSourceFSAdapter(t)
	mockViews := adaptermocks.NewMockFileViewAdapter(t)
	mockView := adaptermocks.NewMockFileView(t)
	mockReports := adaptermocks.NewMockReportStore(t)

	info, err := os.Stat(string(writeTempFile(t, "app", image)))
	require.NoError(t, err)

	mockFS.EXPECT().ResolvePath(m.Path("app")).Return(m.Path("/abs/app"), nil)
	mockFS.EXPECT().FileInfo(m.Path("/abs/app")).Return(info, nil)
	mockViews.EXPECT().Open(m.Path("/abs/app"), true).Return(mockView, nil)
	mockView.EXPECT().Bytes().Return(image)
	mockView.EXPECT().Flush(mock.Anything, mock.Anything).Return(nil).Times(2)
	mockView.EXPECT().Close().Return(nil)
	mockReports.EXPECT().SaveReport(m.Path("out.yaml"), mock.MatchedBy(func(report m.RunReport) bool {
		return report.Path == "app" && report.ChangedCount() == 2
	})).Return(nil)

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	wf := NewWorkflow(mockFS, mockViews, mockReports, controller.NewSimpleUI(cmd))

	args := rewriteArgs("app")
	args.Report = "out.yaml"

	// Act
	err = wf.Rewrite(context.Background(), args)

	// Assert
	require.NoError(t, err)
}

func TestWorkflow_Scan_DoesNotWrite(t *testing.T) {
	b := sampleELF()
	image := b.build()
	path := writeTempFile(t, "app", image)
	blob := writeTempFile(t, "note.bin", []byte("FEDCBA9876543210"))

	views := &memViewAdapter{}
	wf, out := newTestWorkflow(views)

	err := wf.Scan(context.Background(), ScanArgs{
		Path:     path,
		Pattern:  pair(buildPath, canonPath),
		Prefixes: m.DefaultPrefixes,
		Sections: map[string]m.Path{".note.package": blob},
	})

	require.NoError(t, err)
	assert.False(t, views.writable[0])

	view := views.view(t)
	assert.Equal(t, image, view.data)
	assert.Empty(t, view.flushes)

	assert.Contains(t, out.String(), "Scanning")
	assert.Contains(t, out.String(), "would replace")
	assert.Contains(t, out.String(), "would rewrite")
	assert.Contains(t, strings.ToUpper(out.String()), "3 CHANGED")
}

func TestWorkflow_Scan_WithoutPattern(t *testing.T) {
	path := writeTempFile(t, "app", sampleELF().build())

	views := &memViewAdapter{}
	wf, out := newTestWorkflow(views)

	err := wf.Scan(context.Background(), ScanArgs{Path: path, Prefixes: m.DefaultPrefixes})

	require.NoError(t, err)
	assert.Contains(t, out.String(), ".rodata")
	assert.Contains(t, out.String(), ".debug_str")
	assert.Contains(t, out.String(), "no match")
}

func TestWorkflow_Scan_InvalidPattern(t *testing.T) {
	views := &memViewAdapter{}
	wf, _ := newTestWorkflow(views)

	err := wf.Scan(context.Background(), ScanArgs{Path: "unused", Pattern: pair("abc", "de")})

	require.ErrorIs(t, err, ErrPatternLength)
	assert.Empty(t, views.views)
}

func TestWorkflow_View(t *testing.T) {
	report := m.RunReport{
		Path: "app",
		Type: m.FileELF,
		Size: 4096,
		Regions: []m.RegionReport{
			{Kind: m.KindSubstitute, Section: ".rodata", Offset: 64, Length: 128, Matches: 2, Changed: true},
			{Kind: m.KindReplace, Section: ".note.package", Offset: 512, Length: 16, Changed: true},
		},
	}

	mockReports := adaptermocks.NewMockReportStore(t)
	mockReports.EXPECT().LoadReport(m.Path("report.yaml")).Return(report, nil)

	mockUI := controllermocks.NewMockUI(t)
	mockUI.EXPECT().Start(mock.Anything).Return(nil)
	mockUI.EXPECT().DisplayPlan(controller.Plan{
		Path: "app", Type: m.FileELF, Size: 4096, Regions: 1, Replacements: 1, Workers: 1,
	}).Return()
	mockUI.EXPECT().DisplayRegionDone(report.Regions[0], 0).Return()
	mockUI.EXPECT().DisplayRegionDone(report.Regions[1], 0).Return()
	mockUI.EXPECT().DisplayReport(report, nil).Return(nil)
	mockUI.EXPECT().Wait().Return()
	mockUI.EXPECT().Close().Return()

	wf := NewWorkflow(adaptermocks.NewMockSourceFSAdapter(t), adaptermocks.NewMockFileViewAdapter(t), mockReports, mockUI)

	err := wf.View(ViewArgs{Report: "report.yaml"})

	require.NoError(t, err)
}

func TestWorkflow_View_LoadError(t *testing.T) {
	mockReports := adaptermocks.NewMockReportStore(t)
	mockReports.EXPECT().LoadReport(m.Path("report.yaml")).Return(m.RunReport{}, assert.AnError)

	wf := NewWorkflow(nil, nil, mockReports, controllermocks.NewMockUI(t))

	err := wf.View(ViewArgs{Report: "report.yaml"})

	require.ErrorIs(t, err, assert.AnError)
}

func TestValidatePattern(t *testing.T) {
	require.NoError(t, ValidatePattern(pair("abc", "xyz")))
	require.ErrorIs(t, ValidatePattern(pair("abc", "xy")), ErrPatternLength)
	require.ErrorIs(t, ValidatePattern(pair("", "")), ErrPatternLength)
	require.ErrorIs(t, ValidatePattern(pair("", "x")), ErrPatternLength)
}

func TestCheckDisjoint(t *testing.T) {
	tests := []struct {
		name    string
		targets m.Targets
		wantErr bool
	}{
		{
			name: "adjacent",
			targets: m.Targets{
				Regions:      []m.Region{{Offset: 0, Length: 10}, {Offset: 20, Length: 5}},
				Replacements: []m.FullReplacement{{Offset: 10, Data: make([]byte, 10)}},
			},
		},
		{
			name: "empty regions at the same offset",
			targets: m.Targets{
				Regions: []m.Region{{Offset: 5, Length: 0}, {Offset: 0, Length: 10}},
			},
		},
		{
			name: "overlapping regions",
			targets: m.Targets{
				Regions: []m.Region{{Offset: 0, Length: 10}, {Offset: 9, Length: 5}},
			},
			wantErr: true,
		},
		{
			name: "region containing a replacement",
			targets: m.Targets{
				Regions:      []m.Region{{Offset: 0, Length: 100, Section: ".rodata"}},
				Replacements: []m.FullReplacement{{Offset: 40, Data: make([]byte, 4), Section: ".rodata.id"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkDisjoint(tt.targets)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrOverlappingTargets)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
