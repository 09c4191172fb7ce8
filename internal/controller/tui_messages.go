package controller

import (
	m "github.com/mouse-blink/refix/internal/model"
)

// Message types.
type planMsg struct {
	plan Plan
}

type regionDoneMsg struct {
	report m.RegionReport
	worker int
}

type reportMsg struct {
	report m.RunReport
	err    error
}
