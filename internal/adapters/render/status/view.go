package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/life-assistant/internal/application"
	"github.com/bnema/life-assistant/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	barWidth       = 24
	finishedLimit  = 5
	queueListLimit = 10
)

type RenderOptions struct {
	Now time.Time
	// StaleAfter flags the backend as idle when its last system check is older.
	StaleAfter time.Duration
}

func renderView(status application.Status, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Life Assistant"),
		s.header.Render(fmt.Sprintf("cycles: %d · executed: %d · queue: %d pending / %d",
			status.CyclesCompleted, status.ExecutionCount, status.PendingTasks(), len(status.Queue))),
	}
	if check := backendLine(status, opts, s); check != "" {
		lines = append(lines, check)
	}

	lines = append(lines, s.section.Render(renderSequences(status, opts, s)))
	lines = append(lines, s.section.Render(renderFinished(status, opts, s)))
	lines = append(lines, s.section.Render(renderQueue(status, s)))
	if len(status.ConstantTasks) > 0 {
		lines = append(lines, s.section.Render(renderConstantTasks(status, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func backendLine(status application.Status, opts RenderOptions, s styles) string {
	if opts.Now.IsZero() {
		return ""
	}

	checked, ok := domain.ParseTimestamp(status.LastSystemCheck)
	if !ok {
		return s.warning.Render("backend: no system check recorded")
	}

	line := s.meta.Render("backend: last check " + formatAgo(checked, opts.Now))
	if opts.StaleAfter > 0 && opts.Now.Sub(checked) > opts.StaleAfter {
		line += " " + s.warning.Render("[stale]")
	}

	return line
}

func renderSequences(status application.Status, opts RenderOptions, s styles) string {
	parts := []string{s.title.Render(fmt.Sprintf("Active sequences (%d)", len(status.ActiveSequences)))}
	if len(status.ActiveSequences) == 0 {
		parts = append(parts, s.empty.Render("No active task sequences."))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	for _, seq := range status.ActiveSequences {
		parts = append(parts, sequenceLine(seq, seq.ID == status.CurrentSequenceID, s))
		if task, ok := seq.CurrentTask(); ok {
			parts = append(parts, s.detail.Render(fmt.Sprintf("  next: %s", task)))
		}
		if seq.Attempts > 0 {
			parts = append(parts, s.warning.Render(fmt.Sprintf("  retry %d: %s", seq.Attempts, seq.LastError)))
		}
		if updated, ok := domain.ParseTimestamp(seq.UpdatedAt); ok && !opts.Now.IsZero() {
			parts = append(parts, s.meta.Render("  updated "+formatAgo(updated, opts.Now)))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func sequenceLine(seq domain.Sequence, current bool, s styles) string {
	title := s.sequence.Render(fmt.Sprintf("%s (%s)", seq.Name, seq.ID))
	if current {
		title = s.current.Render("▶ ") + title
	}

	done := seq.CurrentTaskIndex
	total := len(seq.Tasks)
	percent := 100.0
	if total > 0 {
		percent = float64(done) / float64(total) * 100
	}

	meta := lipgloss.NewStyle().Foreground(interpolateColor(percent, 0, 100)).
		Render(fmt.Sprintf("%d/%d", done, total))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		title,
		" ",
		renderProgressBar(percent, barWidth, s),
		" ",
		meta,
		" ",
		s.key.Render(string(seq.Priority)),
	)
}

func renderFinished(status application.Status, opts RenderOptions, s styles) string {
	completed, failed := 0, 0
	for _, seq := range status.CompletedSequences {
		if seq.Status == domain.SequenceFailed {
			failed++
			continue
		}
		completed++
	}

	parts := []string{s.title.Render(fmt.Sprintf("Finished sequences (%d completed, %d failed)", completed, failed))}
	if len(status.CompletedSequences) == 0 {
		parts = append(parts, s.empty.Render("None yet."))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	recent := status.CompletedSequences
	if len(recent) > finishedLimit {
		recent = recent[len(recent)-finishedLimit:]
	}
	for _, seq := range recent {
		label := s.detail.Render(fmt.Sprintf("%s: %d steps", seq.Name, len(seq.CompletedTasks)))
		if seq.Status == domain.SequenceFailed {
			label = s.failed.Render(fmt.Sprintf("%s: failed at step %d", seq.Name, seq.CurrentTaskIndex+1))
		}
		if finished, ok := domain.ParseTimestamp(seq.FinishedAt); ok && !opts.Now.IsZero() {
			label += " " + s.meta.Render("("+formatAgo(finished, opts.Now)+")")
		}
		parts = append(parts, label)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderQueue(status application.Status, s styles) string {
	parts := []string{s.title.Render(fmt.Sprintf("Processing queue (%d)", len(status.Queue)))}
	if len(status.Queue) == 0 {
		parts = append(parts, s.empty.Render("Queue is empty."))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	items := status.Queue
	if len(items) > queueListLimit {
		items = items[:queueListLimit]
	}
	for _, item := range items {
		line := fmt.Sprintf("• %s [%s]", item.Task.Description, item.Status)
		if item.Attempts > 0 {
			line += fmt.Sprintf(" attempts=%d", item.Attempts)
		}
		parts = append(parts, s.detail.Render(line))
	}
	if hidden := len(status.Queue) - len(items); hidden > 0 {
		parts = append(parts, s.empty.Render(fmt.Sprintf("… %d more", hidden)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderConstantTasks(status application.Status, opts RenderOptions, s styles) string {
	parts := []string{s.title.Render(fmt.Sprintf("Constant tasks (%d)", len(status.ConstantTasks)))}
	for _, task := range status.ConstantTasks {
		last := "never"
		if task.LastExecuted != nil {
			if at, ok := domain.ParseTimestamp(*task.LastExecuted); ok && !opts.Now.IsZero() {
				last = formatAgo(at, opts.Now)
			} else {
				last = *task.LastExecuted
			}
		}
		parts = append(parts, s.detail.Render(fmt.Sprintf("• %s (%s, last run %s)", task.Description, task.Interval, last)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderProgressBar(donePercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	done := clampPercent(donePercent)
	filled := int(math.Round(float64(width) * done / 100.0))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatAgo(at, now time.Time) string {
	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return plural(int(elapsed.Minutes()), "minute") + " ago"
	case elapsed < 24*time.Hour:
		return plural(int(elapsed.Hours()), "hour") + " ago"
	default:
		return plural(int(math.Floor(elapsed.Hours()/24)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// interpolateColor maps value onto the 240..255 greyscale ramp.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	code := int(240.0 + 15.0*normalized)
	return lipgloss.Color(fmt.Sprintf("%d", code))
}
