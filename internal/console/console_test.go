package console

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spigell/voice-interviewer/internal/interview"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/stretchr/testify/require"
)

func newTestConsole(t *testing.T) (*Console, *bytes.Buffer) {
	t.Helper()

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	var buf bytes.Buffer
	return New(&buf), &buf
}

func TestConsoleOutput(t *testing.T) {
	c, buf := newTestConsole(t)

	c.Phase(interview.PhaseSkills)
	c.Question(5, 9, "  What is a goroutine?\n")
	c.Probe("preferred", "gemini-pro", errors.New("404"))
	c.Probe("preferred", "gemini-2.5-flash", nil)
	c.Report("Overall Rating: 7/10")

	out := buf.String()
	require.Contains(t, out, "--- PHASE 2: TECHNICAL SKILLS ---")
	require.Contains(t, out, "[Question 5/9] What is a goroutine?\n")
	require.Contains(t, out, "[preferred] gemini-pro ... failed")
	require.Contains(t, out, "[preferred] gemini-2.5-flash ... ok")
	require.Contains(t, out, "FINAL EVALUATION REPORT")
	require.Contains(t, out, "Overall Rating: 7/10\n")
}

func scriptedAsker(answers ...string) (Asker, *[]string) {
	var labels []string
	return func(label string, validate promptui.ValidateFunc) (string, error) {
		labels = append(labels, label)
		if len(answers) == 0 {
			return "", context.Canceled
		}
		answer := answers[0]
		answers = answers[1:]
		if validate != nil {
			if err := validate(answer); err != nil {
				return "", err
			}
		}
		return answer, nil
	}, &labels
}

func TestResumePathStripsQuotes(t *testing.T) {
	ask, _ := scriptedAsker(` '/home/a/My CV.pdf' `)

	path, err := ResumePath(ask)
	require.NoError(t, err)
	require.Equal(t, "/home/a/My CV.pdf", path)
}

func TestJobDescriptionRequired(t *testing.T) {
	ask, _ := scriptedAsker("   ")

	_, err := JobDescription(ask)
	require.Error(t, err)
}

type fakeListener struct {
	text  string
	calls int
}

func (f *fakeListener) Listen(context.Context) (string, error) {
	f.calls++
	return f.text, nil
}

func TestPushToTalk(t *testing.T) {
	c, buf := newTestConsole(t)
	listener := &fakeListener{text: "channels"}
	ask, labels := scriptedAsker("")

	ptt := NewPushToTalk(listener, ask, c)

	text, err := ptt.Listen(context.Background())
	require.NoError(t, err)
	require.Equal(t, "channels", text)
	require.Equal(t, []string{"Press Enter and speak"}, *labels)
	require.Contains(t, buf.String(), "Listening...")

	// The scripted asker is exhausted, which stands for Ctrl+C.
	_, err = ptt.Listen(context.Background())
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, listener.calls)
}

func TestTypedAnswers(t *testing.T) {
	ask, _ := scriptedAsker("  I would use a mutex  ", "")
	typed := NewTypedAnswers(ask)

	text, err := typed.Listen(context.Background())
	require.NoError(t, err)
	require.Equal(t, "I would use a mutex", text)

	text, err = typed.Listen(context.Background())
	require.NoError(t, err)
	require.Empty(t, text)
}
