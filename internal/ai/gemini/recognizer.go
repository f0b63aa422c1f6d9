package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/voice-interviewer/internal/ai"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	unintelligibleMarker = "[UNINTELLIGIBLE]"

	transcribePrompt = "Transcribe the spoken English in this audio recording verbatim. " +
		"Reply with the transcript only, without quotes or commentary. " +
		"If there is no intelligible speech, reply with exactly " + unintelligibleMarker + "."
)

// Recognizer turns recorded speech into text with the bound model.
type Recognizer struct {
	models contentGenerator
	model  string
	logger *zap.Logger
}

// Recognizer returns a speech recognizer sharing the generator's model.
func (g *Generator) Recognizer() *Recognizer {
	return &Recognizer{models: g.models, model: g.model, logger: g.logger.Named("recognizer")}
}

// Recognize transcribes audio. ai.ErrWithheld is returned when the model found
// no intelligible speech or withheld its output.
func (r *Recognizer) Recognize(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if r == nil || r.models == nil {
		return "", errors.New("gemini recognizer is not initialized")
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("%w: empty recording", ai.ErrWithheld)
	}

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: transcribePrompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: audio}},
		},
	}}

	resp, err := r.models.GenerateContent(ctx, r.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	reply := extractReply(resp)
	text := strings.Trim(strings.TrimSpace(reply.Text), `"`)
	if reply.Withheld || text == "" || strings.EqualFold(text, unintelligibleMarker) {
		r.logger.Debug("no intelligible speech", zap.String("finish_reason", reply.FinishReason))
		return "", fmt.Errorf("%w: %s", ai.ErrWithheld, reply.FinishReason)
	}

	return text, nil
}
