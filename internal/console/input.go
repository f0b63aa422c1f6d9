package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/voice-interviewer/internal/document"

	"github.com/manifoldco/promptui"
)

// Asker reads one line of input for the given label.
type Asker func(label string, validate promptui.ValidateFunc) (string, error)

// Prompt is the promptui backed Asker.
func Prompt(label string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Validate: validate,
	}

	value, err := prompt.Run()
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return "", fmt.Errorf("%w: %v", context.Canceled, err)
	}

	return value, err
}

func required(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("value is required")
	}
	return nil
}

// JobDescription asks for the job description text.
func JobDescription(ask Asker) (string, error) {
	value, err := ask("Paste the job description", required)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// ResumePath asks for the resume location and strips quotes left by
// drag-and-drop.
func ResumePath(ask Asker) (string, error) {
	value, err := ask("Resume path (.pdf or .docx)", required)
	if err != nil {
		return "", err
	}
	return document.CleanPath(value), nil
}

// Listener captures one answer.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// PushToTalk waits for Enter before every capture.
type PushToTalk struct {
	listener Listener
	ask      Asker
	console  *Console
}

func NewPushToTalk(listener Listener, ask Asker, console *Console) *PushToTalk {
	return &PushToTalk{listener: listener, ask: ask, console: console}
}

func (p *PushToTalk) Listen(ctx context.Context) (string, error) {
	if _, err := p.ask("Press Enter and speak", nil); err != nil {
		return "", err
	}

	p.console.Status("Listening...")
	return p.listener.Listen(ctx)
}

// TypedAnswers reads answers from the keyboard instead of the microphone.
type TypedAnswers struct {
	ask Asker
}

func NewTypedAnswers(ask Asker) *TypedAnswers {
	return &TypedAnswers{ask: ask}
}

func (t *TypedAnswers) Listen(context.Context) (string, error) {
	value, err := t.ask("Your answer", nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}
