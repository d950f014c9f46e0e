// SPDX-License-Identifier: MPL-2.0

package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Color palette defaults, shared with the CLI for consistent theming.
const (
	ColorInfo    = "#3B82F6"
	ColorSuccess = "#10B981"
	ColorWarning = "#F59E0B"
	ColorError   = "#EF4444"
)

// Theme holds the styles for each output category.
type Theme struct {
	Info    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// DefaultTheme returns the built-in color theme.
func DefaultTheme() Theme {
	return ThemeFromColors(nil)
}

// ThemeFromColors builds a theme from a category→color mapping. Missing
// or empty entries fall back to the default palette. Recognized keys:
// "info", "success", "warning", "error".
func ThemeFromColors(colors map[string]string) Theme {
	pick := func(key, fallback string) lipgloss.Color {
		if c, ok := colors[key]; ok && c != "" {
			return lipgloss.Color(c)
		}
		return lipgloss.Color(fallback)
	}
	return Theme{
		Info:    lipgloss.NewStyle().Foreground(pick("info", ColorInfo)),
		Success: lipgloss.NewStyle().Foreground(pick("success", ColorSuccess)),
		Warning: lipgloss.NewStyle().Foreground(pick("warning", ColorWarning)),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(pick("error", ColorError)),
	}
}

// Console writes categorized lines and reads interactive input. All reads
// are synchronous and blocking; a Console is not safe for concurrent use.
type Console struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
	errOut io.Writer
	theme  Theme
}

// New creates a Console over the given streams.
func New(in io.Reader, out, errOut io.Writer, theme Theme) *Console {
	return &Console{
		in:     in,
		reader: bufio.NewReader(in),
		out:    out,
		errOut: errOut,
		theme:  theme,
	}
}

// Print writes an unstyled line to the output stream.
func (c *Console) Print(format string, a ...any) {
	fmt.Fprintf(c.out, format+"\n", a...)
}

// Info writes an informational line.
func (c *Console) Info(format string, a ...any) {
	fmt.Fprintln(c.out, c.theme.Info.Render(fmt.Sprintf(format, a...)))
}

// Success writes a success line.
func (c *Console) Success(format string, a ...any) {
	fmt.Fprintln(c.out, c.theme.Success.Render(fmt.Sprintf(format, a...)))
}

// Warning writes a warning line.
func (c *Console) Warning(format string, a ...any) {
	fmt.Fprintln(c.out, c.theme.Warning.Render(fmt.Sprintf(format, a...)))
}

// Error writes an error line to the error stream.
func (c *Console) Error(format string, a ...any) {
	fmt.Fprintln(c.errOut, c.theme.Error.Render(fmt.Sprintf(format, a...)))
}

// Prompt asks for a line of input. An empty answer yields def.
func (c *Console) Prompt(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(c.out, "%s: ", label)
	}
	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// PromptPassword asks for a line of input without echoing it when the
// input stream is a terminal. On non-terminal input it degrades to a
// plain read, which keeps scripted and test invocations working.
func (c *Console) PromptPassword(label string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", label)
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return c.readLine()
}

// Confirm asks a yes/no question. An empty answer yields def.
func (c *Console) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(c.out, "%s [%s]: ", label, hint)
	line, err := c.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (c *Console) readLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
