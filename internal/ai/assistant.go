package ai

import (
	"context"
	"errors"
)

// WithheldText is returned in place of generated text when the model blocked,
// truncated or emptied its answer. It is a valid interview output.
const WithheldText = "[The interviewer had no response for this turn. Let's continue.]"

// ErrWithheld marks a response that was replaced by WithheldText.
var ErrWithheld = errors.New("model output withheld")

// Reply is the text produced by one exchange with the chat model.
type Reply struct {
	Text string
	// Withheld is set when Text is WithheldText.
	Withheld bool
	// FinishReason is the raw finish reason reported by the provider, if any.
	FinishReason string
}

// Chat is a conversational history owned by the model provider. Every Send
// appends the message and the reply to the history in order.
type Chat interface {
	Send(ctx context.Context, message string) (*Reply, error)
}

// ChatStarter opens a new conversational history on the bound model.
type ChatStarter interface {
	StartChat(ctx context.Context) (Chat, error)
	Model() string
}

// Withheld builds the sentinel reply.
func Withheld(reason string) *Reply {
	return &Reply{Text: WithheldText, Withheld: true, FinishReason: reason}
}
