// Package launcher shows short pick lists through an external dmenu-style
// program (rofi, fuzzel, wofi or dmenu).
package launcher

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

// ErrCancelled is returned when the user closes the menu without choosing.
var ErrCancelled = errors.New("menu cancelled")

// Entry is one row of a menu.
type Entry struct {
	Label  string
	Action string
	Icon   string
	// Header rows are shown as section titles and cannot be chosen.
	Header bool
	Active bool
}

// Chooser shows entries and returns the one the user picked.
type Chooser interface {
	Choose(prompt string, entries []Entry) (Entry, error)
}

// Programs lists supported launcher programs in detection order.
var Programs = []string{"rofi", "fuzzel", "wofi", "dmenu"}

// ValidName reports whether name is "auto", empty or a supported program.
func ValidName(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		return true
	}
	for _, p := range Programs {
		if p == name {
			return true
		}
	}
	return false
}

// Detect returns the first supported program found in PATH.
func Detect() (string, error) {
	for _, p := range Programs {
		if _, err := exec.LookPath(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no launcher found in PATH (looked for: %s)", strings.Join(Programs, ", "))
}

// New returns a Chooser for the named program, detecting one for "auto".
func New(name string) (Chooser, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		detected, err := Detect()
		if err != nil {
			return nil, err
		}
		name = detected
	}
	if !ValidName(name) {
		return nil, fmt.Errorf("unknown launcher %q (expected: auto, %s)", name, strings.Join(Programs, ", "))
	}
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("launcher %q not found in PATH", name)
	}
	return newProgram(name), nil
}

// program drives a dmenu-compatible executable over stdin/stdout.
type program struct {
	command string
	// indexed programs print the chosen row index instead of its text.
	indexed bool
	markup  bool
}

func newProgram(name string) *program {
	switch name {
	case "rofi":
		return &program{command: name, indexed: true, markup: true}
	case "fuzzel":
		return &program{command: name, indexed: true}
	default:
		return &program{command: name}
	}
}

func (p *program) Choose(prompt string, entries []Entry) (Entry, error) {
	rows := p.rows(entries)
	if len(rows) == 0 {
		return Entry{}, fmt.Errorf("launcher: no entries to show")
	}

	for {
		cmd := exec.Command(p.command, p.args(prompt, rows)...)
		cmd.Stdin = strings.NewReader(p.input(rows))
		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		err := cmd.Run()
		selection := strings.TrimSpace(stdout.String())
		if err != nil {
			if selection == "" && isCancelExit(err) {
				return Entry{}, ErrCancelled
			}
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return Entry{}, fmt.Errorf("%s failed: %s", p.command, msg)
			}
			return Entry{}, fmt.Errorf("%s failed: %w", p.command, err)
		}
		if selection == "" {
			return Entry{}, ErrCancelled
		}

		e, err := p.parse(selection, rows)
		if err != nil {
			return Entry{}, err
		}
		// Programs without non-selectable rows let headers through.
		if e.Header {
			continue
		}
		return e, nil
	}
}

// rows returns the entries to display, dropping headers for programs
// that cannot render them and disambiguating duplicate labels for
// programs that answer with text.
func (p *program) rows(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	seen := make(map[string]int)
	for _, e := range entries {
		e.Label = cleanLabel(e.Label)
		if e.Header && p.command != "rofi" {
			continue
		}
		if !p.indexed && !e.Header {
			if n := seen[e.Label]; n > 0 {
				seen[e.Label]++
				e.Label = fmt.Sprintf("%s (%d)", e.Label, n+1)
			} else {
				seen[e.Label] = 1
			}
		}
		out = append(out, e)
	}
	return out
}

func (p *program) args(prompt string, rows []Entry) []string {
	switch p.command {
	case "rofi":
		args := []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		var active []string
		selected := -1
		for i, e := range rows {
			if e.Header {
				continue
			}
			if selected < 0 {
				selected = i
			}
			if e.Active {
				active = append(active, strconv.Itoa(i))
			}
		}
		if len(active) > 0 {
			args = append(args, "-a", strings.Join(active, ","))
			selected, _ = strconv.Atoi(active[0])
		}
		if selected >= 0 {
			args = append(args, "-selected-row", strconv.Itoa(selected))
		}
		return args
	case "fuzzel":
		args := []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
		return args
	case "wofi":
		args := []string{"--dmenu"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
		return args
	default:
		args := []string{"-i"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		return args
	}
}

func (p *program) input(rows []Entry) string {
	lines := make([]string, 0, len(rows))
	for _, e := range rows {
		lines = append(lines, p.line(e))
	}
	return strings.Join(lines, "\n")
}

// line formats one row. Rofi row properties follow a single NUL and are
// separated by \x1f.
func (p *program) line(e Entry) string {
	label := e.Label
	if !p.markup {
		return label
	}
	label = html.EscapeString(label)
	var attrs []string
	if e.Header {
		label = "<b>" + label + "</b>"
		attrs = append(attrs, "nonselectable", "true")
	}
	if e.Icon != "" {
		attrs = append(attrs, "icon", cleanField(e.Icon))
	}
	if len(attrs) == 0 {
		return label
	}
	return label + "\x00" + strings.Join(attrs, "\x1f")
}

func (p *program) parse(selection string, rows []Entry) (Entry, error) {
	if p.indexed {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(rows) {
				return Entry{}, fmt.Errorf("launcher: index %d out of range", idx)
			}
			return rows[idx], nil
		}
	}
	for _, e := range rows {
		if e.Label == selection {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("launcher: unknown selection %q", selection)
}

func cleanLabel(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func cleanField(s string) string {
	s = strings.ReplaceAll(s, "\x00", " ")
	s = strings.ReplaceAll(s, "\x1f", " ")
	return cleanLabel(s)
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	switch exitErr.ExitCode() {
	case 1, 130:
		return true
	}
	return false
}
