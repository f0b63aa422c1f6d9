package interview

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/voice-interviewer/internal/ai"
)

// recordingChat answers every message with a numbered reply unless configured
// to withhold or fail.
type recordingChat struct {
	messages []string
	withhold bool
	failAt   int
}

func (c *recordingChat) Send(_ context.Context, message string) (*ai.Reply, error) {
	c.messages = append(c.messages, message)
	if c.failAt > 0 && len(c.messages) == c.failAt {
		return nil, errors.New("service unavailable")
	}
	if c.withhold {
		return ai.Withheld("SAFETY"), nil
	}
	return &ai.Reply{Text: fmt.Sprintf("reply %d", len(c.messages)), FinishReason: "STOP"}, nil
}

func (c *recordingChat) last() string {
	if len(c.messages) == 0 {
		return ""
	}
	return c.messages[len(c.messages)-1]
}

type fakeStarter struct {
	chat    *recordingChat
	started int
	err     error
}

func (s *fakeStarter) StartChat(context.Context) (ai.Chat, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.started++
	return s.chat, nil
}

func (s *fakeStarter) Model() string { return "fake" }

func newStarter() *fakeStarter {
	return &fakeStarter{chat: &recordingChat{}}
}
