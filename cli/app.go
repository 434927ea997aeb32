// Package cli implements the commitstack command line interface.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"commitstack"
	"commitstack/config"
)

// App bundles the dependencies the commands operate on, so tests can swap
// in mocks for git, parsing and planning.
type App struct {
	Out      io.Writer
	Err      io.Writer
	In       io.Reader
	Git      commitstack.GitRunner
	Parser   commitstack.Parser
	Planner  commitstack.Planner
	Verifier commitstack.PatchVerifier
	Config   config.Config
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	commitStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func (a *App) printWarning(format string, args ...any) {
	fmt.Fprintln(a.Err, warningStyle.Render(fmt.Sprintf("warning: "+format, args...)))
}

func (a *App) printError(format string, args ...any) {
	fmt.Fprintln(a.Err, errorStyle.Render(fmt.Sprintf(format, args...)))
}

// confirm reads a y/N answer from the application input.
func (a *App) confirm(prompt string) bool {
	fmt.Fprintf(a.Err, "%s [y/N] ", prompt)
	scanner := bufio.NewScanner(a.In)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
