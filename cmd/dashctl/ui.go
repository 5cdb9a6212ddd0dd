package main

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	okText   = color.New(color.FgGreen).SprintFunc()
	warnText = color.New(color.FgYellow).SprintFunc()
	addText  = color.New(color.FgGreen).SprintFunc()
	delText  = color.New(color.FgRed).SprintFunc()
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// shouldUseColor respects NO_COLOR and CLICOLOR_FORCE, otherwise colors
// only when w is a terminal.
func shouldUseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	return isTerminal(w)
}

// colorDiff paints removed lines red and added lines green.
func colorDiff(diff string) string {
	lines := strings.SplitAfter(diff, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		switch {
		case strings.HasPrefix(trimmed, "-"):
			lines[i] = delText(line)
		case strings.HasPrefix(trimmed, "+"):
			lines[i] = addText(line)
		}
	}
	return strings.Join(lines, "")
}
