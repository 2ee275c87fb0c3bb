package ui

import (
	"fmt"
	"io"
	"strings"
)

// BarWidth is the number of cells in a rendered progress bar.
const BarWidth = 40

// Bar renders current/total as a fixed-width cell bar. The percentage uses
// truncating integer arithmetic (current*100/total, then re-scaled to
// cells) to match the displayed output operators already grep for.
// A zero total is treated as 0%.
func Bar(current, total uint64) string {
	var pct uint64
	if total > 0 {
		pct = current * 100 / total
	}
	filled := int(pct * BarWidth / 100)
	if filled > BarWidth {
		filled = BarWidth
	}
	return barFilledStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", BarWidth-filled))
}

// Percent returns the truncated integer percentage shown next to the bar.
func Percent(current, total uint64) uint64 {
	if total == 0 {
		return 0
	}
	return current * 100 / total
}

// ProgressRenderer redraws a single labeled progress line in place.
type ProgressRenderer struct {
	w       io.Writer
	started bool
}

func NewProgressRenderer(w io.Writer) *ProgressRenderer {
	return &ProgressRenderer{w: w}
}

// Render overwrites the previous progress line with the current one.
func (r *ProgressRenderer) Render(label string, current, total uint64) {
	r.started = true
	fmt.Fprintf(r.w, "\r%s %s %3d%% (%d/%d)",
		labelStyle.Render(label), Bar(current, total), Percent(current, total), current, total)
}

// Finish terminates the in-place line so later output starts fresh.
func (r *ProgressRenderer) Finish() {
	if r.started {
		fmt.Fprintln(r.w)
		r.started = false
	}
}
