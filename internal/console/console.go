// Package console renders the interview for the candidate and reads their input.
package console

import (
	"io"
	"os"
	"strings"

	"github.com/spigell/voice-interviewer/internal/interview"

	"github.com/fatih/color"
)

var (
	bannerColor   = color.New(color.FgCyan, color.Bold)
	phaseColor    = color.New(color.FgMagenta, color.Bold)
	questionColor = color.New(color.FgGreen)
	heardColor    = color.New(color.FgBlue)
	statusColor   = color.New(color.FgYellow)
	failColor     = color.New(color.FgRed)
	reportColor   = color.New(color.FgWhite, color.Bold)
)

// Console prints interview output to a terminal.
type Console struct {
	out io.Writer
}

func New(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

func (c *Console) Banner(title string) {
	line := strings.Repeat("=", 60)
	bannerColor.Fprintf(c.out, "\n%s\n%s\n%s\n", line, title, line)
}

func (c *Console) Phase(phase interview.Phase) {
	var title string
	switch phase {
	case interview.PhaseResume:
		title = "PHASE 1: RESUME & PROJECTS"
	case interview.PhaseSkills:
		title = "PHASE 2: TECHNICAL SKILLS"
	default:
		title = "INTERVIEW COMPLETE"
	}
	phaseColor.Fprintf(c.out, "\n--- %s ---\n", title)
}

func (c *Console) Question(index, total int, text string) {
	questionColor.Fprintf(c.out, "\n[Question %d/%d] %s\n", index, total, strings.TrimSpace(text))
}

// Remark prints interviewer text that is not a numbered question.
func (c *Console) Remark(text string) {
	questionColor.Fprintf(c.out, "\nInterviewer: %s\n", strings.TrimSpace(text))
}

func (c *Console) Heard(text string) {
	heardColor.Fprintf(c.out, "You said: %s\n", text)
}

func (c *Console) Status(msg string) {
	statusColor.Fprintf(c.out, "%s\n", msg)
}

func (c *Console) Report(text string) {
	c.Banner("FINAL EVALUATION REPORT")
	reportColor.Fprintf(c.out, "%s\n", strings.TrimSpace(text))
}

// Probe prints one model selection attempt. It has the shape of gemini.ProbeFunc.
func (c *Console) Probe(strategy, model string, err error) {
	if err != nil {
		failColor.Fprintf(c.out, "  [%s] %s ... failed\n", strategy, model)
		return
	}
	questionColor.Fprintf(c.out, "  [%s] %s ... ok\n", strategy, model)
}
