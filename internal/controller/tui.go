package controller

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	m "github.com/mouse-blink/refix/internal/model"
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output  io.Writer
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the Bubble Tea program in the background.
func (t *TUI) Start(options ...StartOption) error {
	cfg := StartConfig{mode: ModeRewrite}
	for _, option := range options {
		option(&cfg)
	}

	t.program = tea.NewProgram(newProgressModel(cfg.mode),
		tea.WithOutput(t.output),
		tea.WithInput(nil),
	)
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)

		_, _ = t.program.Run()
	}()

	return nil
}

// Close stops the program if it is still running and waits for it to exit.
func (t *TUI) Close() {
	if t.program == nil {
		return
	}

	t.program.Quit()
	t.Wait()
}

// Wait blocks until the program has rendered its final frame.
func (t *TUI) Wait() {
	if t.done != nil {
		<-t.done
	}
}

// DisplayPlan shows the discovered work.
func (t *TUI) DisplayPlan(plan Plan) {
	t.send(planMsg{plan: plan})
}

// DisplayRegionDone advances the progress bar.
func (t *TUI) DisplayRegionDone(report m.RegionReport, worker int) {
	t.send(regionDoneMsg{report: report, worker: worker})
}

// DisplayReport shows the final summary and ends the program.
func (t *TUI) DisplayReport(report m.RunReport, err error) error {
	t.send(reportMsg{report: report, err: err})

	return err
}

func (t *TUI) send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}
