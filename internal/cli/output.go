package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"
)

// ErrUnknownFormat is returned for an unsupported --output value.
var ErrUnknownFormat = errors.New("unknown output format")

const (
	formatTable = "table"
	formatJSON  = "json"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	nameStyle    = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AA00"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

type printer struct {
	out    io.Writer
	format string
}

func (p printer) isJSON() bool { return p.format == formatJSON }

func (p printer) json(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p printer) table(headers []any, rows [][]any) {
	tbl := table.New(headers...).
		WithWriter(p.out).
		WithPadding(2).
		WithWidthFunc(lipgloss.Width).
		WithHeaderFormatter(func(format string, vals ...any) string {
			return headerStyle.Render(fmt.Sprintf(format, vals...))
		}).
		WithFirstColumnFormatter(func(format string, vals ...any) string {
			return nameStyle.Render(fmt.Sprintf(format, vals...))
		})
	for _, row := range rows {
		tbl.AddRow(row...)
	}
	tbl.Print()
}

func (p printer) success(format string, args ...any) {
	fmt.Fprintln(p.out, successStyle.Render(fmt.Sprintf(format, args...)))
}

func (p printer) warn(format string, args ...any) {
	fmt.Fprintln(p.out, warningStyle.Render(fmt.Sprintf(format, args...)))
}

func formatTime(t *time.Time) string {
	if t == nil {
		return dimStyle.Render("-")
	}
	return t.Local().Format(time.DateTime)
}

func yesNo(b bool) string {
	if b {
		return warningStyle.Render("yes")
	}
	return "no"
}
