package main

import (
	"arcadia/engine"
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFCC00"))
	hintStyle   = lipgloss.NewStyle().Faint(true)
	savedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#44FF44"))
	failedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4444"))
)

// TerminalPrompter asks for the pseudonym on a terminal. An empty line keeps the default; "-" cancels.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalPrompter() *TerminalPrompter {
	return newTerminalPrompter(os.Stdin, os.Stdout)
}

func newTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(in), out: out}
}

func (p *TerminalPrompter) Prompt(ctx context.Context, req engine.PromptRequest) (string, error) {
	fmt.Fprintln(p.out, promptStyle.Render(req.Message()))
	fmt.Fprint(p.out, hintStyle.Render(fmt.Sprintf("[%s, '-' to skip] ", req.Default)))

	type result struct {
		line string
		err  error
	}
	lines := make(chan result, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		lines <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-lines:
		line := strings.TrimSpace(r.line)
		if r.err != nil && line == "" {
			return "", engine.ErrPromptCancelled
		}
		if line == "-" {
			return "", engine.ErrPromptCancelled
		}
		if line == "" {
			return req.Default, nil
		}
		return line, nil
	}
}

// PrintReport writes a styled one-line outcome to stdout.
func PrintReport(r engine.Report) {
	fprintReport(os.Stdout, r)
}

func fprintReport(w io.Writer, r engine.Report) {
	style := hintStyle
	switch r.Kind {
	case engine.ReportSaved:
		style = savedStyle
	case engine.ReportFailed:
		style = failedStyle
	}
	fmt.Fprintln(w, style.Render(r.String()))
}
