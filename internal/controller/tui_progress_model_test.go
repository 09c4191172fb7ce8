package controller

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/refix/internal/model"
)

func update(t *testing.T, pm progressModel, msg tea.Msg) (progressModel, tea.Cmd) {
	t.Helper()

	next, cmd := pm.Update(msg)

	model, ok := next.(progressModel)
	require.True(t, ok, "Update returned %T", next)

	return model, cmd
}

func TestProgressModel_InitialView(t *testing.T) {
	pm := newProgressModel(ModeRewrite)

	assert.Nil(t, pm.Init())
	assert.Contains(t, pm.View(), "refix")
	assert.Contains(t, pm.View(), "Scanning sections")

	scan := newProgressModel(ModeScan)
	assert.Contains(t, scan.View(), "refix scan")
}

func TestProgressModel_TracksRegions(t *testing.T) {
	pm := newProgressModel(ModeRewrite)
	pm, _ = update(t, pm, tea.WindowSizeMsg{Width: 120, Height: 40})

	pm, _ = update(t, pm, planMsg{plan: Plan{Path: "libfoo.a", Type: m.FileArchive, Size: 4096, Regions: 3, Replacements: 1, Workers: 2}})
	assert.True(t, pm.planned)
	assert.InDelta(t, 0.0, pm.percent(), 1e-9)

	pm, _ = update(t, pm, regionDoneMsg{report: m.RegionReport{Section: ".rodata", Member: "a.o", Matches: 2, Changed: true}, worker: 0})
	pm, _ = update(t, pm, regionDoneMsg{report: m.RegionReport{Section: ".debug_str", Member: "a.o"}, worker: 1})

	assert.Equal(t, 2, pm.completed)
	assert.Equal(t, 1, pm.changed)
	assert.Equal(t, 2, pm.matches)
	assert.InDelta(t, 0.5, pm.percent(), 1e-9)
	assert.Equal(t, "a.o(.rodata)", pm.workerLast[0])

	view := pm.View()
	assert.Contains(t, view, "libfoo.a")
	assert.Contains(t, view, "a.o(.rodata)")
	assert.Contains(t, view, "a.o(.debug_str)")
}

func TestProgressModel_ReportQuits(t *testing.T) {
	pm := newProgressModel(ModeScan)
	pm, _ = update(t, pm, planMsg{plan: Plan{Path: "app", Regions: 1, Workers: 1}})

	report := m.RunReport{
		DryRun:  true,
		Regions: []m.RegionReport{{Kind: m.KindSubstitute, Section: ".rodata", Length: 100, Matches: 4}},
	}

	pm, cmd := update(t, pm, reportMsg{report: report})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, pm.finished)
	assert.InDelta(t, 1.0, pm.percent(), 1e-9)

	view := pm.View()
	assert.Contains(t, view, "Matches")
	assert.Contains(t, view, "Would change")
}

func TestProgressModel_ReportError(t *testing.T) {
	pm := newProgressModel(ModeRewrite)

	pm, _ = update(t, pm, reportMsg{err: errors.New("section not found")})

	assert.Contains(t, pm.View(), "error: section not found")
}

func TestProgressModel_WindowSize(t *testing.T) {
	pm := newProgressModel(ModeRewrite)

	pm, _ = update(t, pm, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Equal(t, 100, pm.width)
	assert.Equal(t, 92, pm.progressBar.Width)

	pm, _ = update(t, pm, tea.WindowSizeMsg{Width: 10, Height: 40})
	assert.Equal(t, 20, pm.progressBar.Width)
}

func TestProgressModel_IdleWorkers(t *testing.T) {
	pm := newProgressModel(ModeRewrite)
	pm, _ = update(t, pm, planMsg{plan: Plan{Path: "app", Regions: 1, Workers: 3}})

	assert.Contains(t, pm.View(), "idle")
}
