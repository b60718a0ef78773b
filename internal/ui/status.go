// Package ui draws the viewer's status panel and placement overlay.
package ui

import (
	"fmt"
	"strings"
)

// Status is the information shown in the side panel.
type Status struct {
	Connected  bool
	Iteration  int
	Population int
	TickSpeed  int
	Rows, Cols int
	Pattern    string
	Paused     bool
	HeatMap    bool
	// Rejection is the most recent pattern_rejected reason, if any.
	Rejection string
}

// Lines formats s for display, one entry per panel row.
func (s Status) Lines() []string {
	if !s.Connected {
		return []string{"connecting..."}
	}
	lines := []string{
		fmt.Sprintf("gen %d", s.Iteration),
		fmt.Sprintf("alive %d", s.Population),
		fmt.Sprintf("grid %dx%d @ %d/s", s.Cols, s.Rows, s.TickSpeed),
		"pattern " + s.Pattern,
	}
	var flags []string
	if s.Paused {
		flags = append(flags, "paused")
	}
	if s.HeatMap {
		flags = append(flags, "heat")
	}
	if len(flags) > 0 {
		lines = append(lines, strings.Join(flags, " "))
	}
	if s.Rejection != "" {
		lines = append(lines, "rejected: "+s.Rejection)
	}
	return lines
}
