// Package view renders cache statistics and the tool catalog for the terminal.
package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/ui/output"
	"go.trai.ch/thingsgate/internal/ui/style"
)

const labelWidth = 14

// View renders with the color profile of its destination writer.
type View struct {
	r     *lipgloss.Renderer
	title lipgloss.Style
	label lipgloss.Style
	good  lipgloss.Style
	bad   lipgloss.Style
	faint lipgloss.Style
}

// New creates a View for output written to w.
func New(w io.Writer) *View {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(output.ProfileFor(w))

	return &View{
		r:     r,
		title: r.NewStyle().Bold(true).Foreground(style.Iris),
		label: r.NewStyle().Width(labelWidth).Foreground(style.Slate),
		good:  r.NewStyle().Foreground(style.Green),
		bad:   r.NewStyle().Foreground(style.Red),
		faint: r.NewStyle().Foreground(style.Slate),
	}
}

// Stats renders a cache statistics block under title.
func (v *View) Stats(title string, s domain.CacheStats) string {
	state := v.good.Render(style.Dot + " enabled")
	if !s.Enabled {
		state = v.bad.Render(style.Circle + " disabled")
	}

	rows := [][2]string{
		{"state", state},
		{"entries", fmt.Sprintf("%d / %d", s.Size, s.MaxSize)},
		{"ttl", fmt.Sprintf("%ds", s.TTLSeconds)},
		{"invalidation", string(s.Invalidation)},
		{"hits", fmt.Sprintf("%d", s.Hits)},
		{"misses", fmt.Sprintf("%d", s.Misses)},
		{"requests", fmt.Sprintf("%d", s.TotalRequests)},
		{"hit rate", fmt.Sprintf("%.2f%%", s.HitRatePercent)},
	}

	var b strings.Builder
	b.WriteString(v.title.Render(title))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("  ")
		b.WriteString(v.label.Render(row[0]))
		b.WriteString(row[1])
		b.WriteString("\n")
	}
	return b.String()
}

// Tools renders the operations grouped by their group.
func (v *View) Tools(ops []domain.Operation) string {
	width := 0
	for _, op := range ops {
		width = max(width, len(op.Name))
	}
	name := v.r.NewStyle().Width(width + 2)

	var b strings.Builder
	group := ""
	for _, op := range ops {
		if op.Group != group {
			if group != "" {
				b.WriteString("\n")
			}
			group = op.Group
			b.WriteString(v.title.Render(group))
			b.WriteString("\n")
		}
		b.WriteString("  ")
		b.WriteString(name.Render(op.Name))
		b.WriteString(v.class(op.Class()))
		if len(op.Invalidates) > 0 {
			b.WriteString(v.faint.Render(" " + style.Arrow + " " + strings.Join(op.Invalidates, ", ")))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (v *View) class(c domain.OperationClass) string {
	switch c {
	case domain.ClassRead:
		return v.good.Render(string(c))
	case domain.ClassWrite:
		return v.bad.Render(string(c))
	default:
		return v.faint.Render(string(c))
	}
}

// Result renders a cache hit or miss marker for an action.
func (v *View) Result(action string, hit bool) string {
	if hit {
		return v.good.Render(style.Check + " Cache hit: " + action)
	}
	return v.faint.Render(style.Circle + " Cache miss: " + action)
}
