// Package output renders command results as tables, JSON, YAML or plain
// text.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Format selects how results are rendered.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatText  Format = "text"
)

// Formats lists the accepted output formats.
func Formats() []Format {
	return []Format{FormatTable, FormatJSON, FormatYAML, FormatText}
}

// ParseFormat validates a --output value. Empty selects table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML, FormatText:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected table, json, yaml or text)", s)
	}
}

// Tabular is implemented by results that render as rows.
type Tabular interface {
	Headers() []string
	Rows() [][]string
}

// Printer writes results in one format.
type Printer struct {
	w      io.Writer
	format Format
	color  bool
	width  int
}

// New creates a printer. Color and width are enabled only when w is a
// terminal.
func New(w io.Writer, format Format) *Printer {
	p := &Printer{w: w, format: format}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.color = true
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			p.width = width
		}
	}
	return p
}

// Format returns the printer's format.
func (p *Printer) Format() Format {
	return p.format
}

// Structured reports whether the format is machine-readable.
func (p *Printer) Structured() bool {
	return p.format == FormatJSON || p.format == FormatYAML
}

// Print renders v. Tabular values become tables in table mode and
// tab-separated rows in text mode.
func (p *Printer) Print(v any) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatText:
		if t, ok := v.(Tabular); ok {
			return p.text(t)
		}
	default:
		if t, ok := v.(Tabular); ok {
			return p.table(t)
		}
	}

	if s, ok := v.(fmt.Stringer); ok {
		_, err := fmt.Fprintln(p.w, s.String())
		return err
	}
	_, err := fmt.Fprintf(p.w, "%v\n", v)
	return err
}

func (p *Printer) table(t Tabular) error {
	rows := t.Rows()
	if len(rows) == 0 {
		return p.Info("(none)")
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	borderStyle := lipgloss.NewStyle()
	if p.color {
		headerStyle = headerStyle.Foreground(lipgloss.Color("15"))
		borderStyle = borderStyle.Foreground(lipgloss.Color("62"))
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(t.Headers()...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	if p.width > 0 {
		tbl = tbl.Width(p.width)
	}

	_, err := fmt.Fprintln(p.w, tbl.Render())
	return err
}

func (p *Printer) text(t Tabular) error {
	for _, row := range t.Rows() {
		if _, err := fmt.Fprintln(p.w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// Success prints a confirmation line. Structured formats print nothing.
func (p *Printer) Success(format string, args ...any) error {
	return p.message("42", format, args...)
}

// Warn prints a warning line. Structured formats print nothing.
func (p *Printer) Warn(format string, args ...any) error {
	return p.message("214", format, args...)
}

// Info prints a neutral line. Structured formats print nothing.
func (p *Printer) Info(format string, args ...any) error {
	return p.message("", format, args...)
}

func (p *Printer) message(color, format string, args ...any) error {
	if p.Structured() {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	if p.color && color != "" {
		msg = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(msg)
	}
	_, err := fmt.Fprintln(p.w, msg)
	return err
}

// Table is a ready-made Tabular value.
type Table struct {
	Head []string
	Body [][]string
}

func (t Table) Headers() []string { return t.Head }
func (t Table) Rows() [][]string  { return t.Body }
