package controller

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	m "github.com/mouse-blink/refix/internal/model"
)

// progressModel renders a run: the plan, a progress bar over regions, the
// region each worker finished last and the final summary.
type progressModel struct {
	mode        StartMode
	width       int
	progressBar progress.Model
	plan        Plan
	planned     bool
	completed   int
	changed     int
	matches     int
	workerLast  map[int]string
	report      m.RunReport
	err         error
	finished    bool
}

func newProgressModel(mode StartMode) progressModel {
	return progressModel{
		mode: mode,
		progressBar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(40),
			progress.WithoutPercentage(),
		),
		workerLast: make(map[int]string),
	}
}

func (pm progressModel) Init() tea.Cmd {
	return nil
}

func (pm progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pm = pm.handleWindowSize(msg)

	case planMsg:
		pm.plan = msg.plan
		pm.planned = true

	case regionDoneMsg:
		pm = pm.handleRegionDone(msg)

	case reportMsg:
		pm.report = msg.report
		pm.err = msg.err
		pm.finished = true

		return pm, tea.Quit
	}

	return pm, nil
}

func (pm progressModel) handleWindowSize(msg tea.WindowSizeMsg) progressModel {
	pm.width = msg.Width

	pm.progressBar.Width = pm.width - 8
	if pm.progressBar.Width < 20 {
		pm.progressBar.Width = 20
	}

	return pm
}

func (pm progressModel) handleRegionDone(msg regionDoneMsg) progressModel {
	pm.completed++
	pm.matches += msg.report.Matches

	if msg.report.Changed {
		pm.changed++
	}

	pm.workerLast[msg.worker] = regionLabel(msg.report)

	return pm
}

func (pm progressModel) percent() float64 {
	if pm.finished {
		return 1
	}

	total := pm.plan.Total()
	if total == 0 {
		return 0
	}

	return float64(pm.completed) / float64(total)
}

func (pm progressModel) View() string {
	accentColor := lipgloss.Color("6") // Cyan

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true).
		Padding(1, 0, 0, 2)

	summaryStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")).
		Padding(0, 0, 1, 2)

	accentStyle := lipgloss.NewStyle().Foreground(accentColor)

	title := "refix"
	if pm.mode == ModeScan {
		title = "refix scan"
	}

	if !pm.planned && !pm.finished {
		return titleStyle.Render(title) + "\n" + summaryStyle.Render("Scanning sections…") + "\n"
	}

	if pm.finished {
		return lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(title),
			summaryStyle.Render(pm.summaryLine(accentStyle)),
		) + "\n"
	}

	header := summaryStyle.Render(fmt.Sprintf("%s  •  %s  •  Regions: %s / %s  •  Matches: %s  •  Changed: %s  •  Workers: %s",
		accentStyle.Render(string(pm.plan.Path)),
		accentStyle.Render(humanize.Bytes(uint64(pm.plan.Size))),
		accentStyle.Render(fmt.Sprintf("%d", pm.completed)),
		accentStyle.Render(fmt.Sprintf("%d", pm.plan.Total())),
		accentStyle.Render(fmt.Sprintf("%d", pm.matches)),
		accentStyle.Render(fmt.Sprintf("%d", pm.changed)),
		accentStyle.Render(fmt.Sprintf("%d", pm.plan.Workers)),
	))

	progressView := lipgloss.NewStyle().Padding(0, 2).Render(pm.progressBar.ViewAs(pm.percent()))

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		header,
		progressView,
		pm.renderWorkerBox(accentColor),
	) + "\n"
}

func (pm progressModel) summaryLine(accentStyle lipgloss.Style) string {
	if pm.err != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(fmt.Sprintf("error: %v", pm.err))
	}

	changedLabel := "Changed"
	if pm.report.DryRun {
		changedLabel = "Would change"
	}

	return fmt.Sprintf("Regions: %s  •  Matches: %s  •  %s: %s  •  Scanned: %s",
		accentStyle.Render(fmt.Sprintf("%d", len(pm.report.Regions))),
		accentStyle.Render(fmt.Sprintf("%d", pm.report.MatchCount())),
		changedLabel,
		accentStyle.Render(fmt.Sprintf("%d", pm.report.AffectedCount())),
		accentStyle.Render(humanize.Bytes(uint64(pm.report.ScannedBytes()))),
	)
}

func (pm progressModel) renderWorkerBox(accentColor lipgloss.Color) string {
	boxWidth := max(pm.width-4, 20)

	contentStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Margin(1, 1, 1, 0).
		Width(boxWidth)

	workers := max(pm.plan.Workers, 1)
	lines := make([]string, 0, workers)
	digits := len(fmt.Sprintf("%d", workers-1))
	available := boxWidth - 4 - (8 + digits)

	for i := range workers {
		label, ok := pm.workerLast[i]
		if !ok {
			label = "idle"
		}

		lines = append(lines, fmt.Sprintf("Worker %*d: %s", digits, i,
			lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Render(truncateToWidth(label, available))))
	}

	return contentStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
