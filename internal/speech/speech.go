// Package speech captures a spoken answer and turns it into text.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spigell/voice-interviewer/internal/ai"
	"github.com/spigell/voice-interviewer/internal/utils"

	"go.uber.org/zap"
)

var (
	// ErrNoSpeech is returned when no speech began within the listen timeout.
	ErrNoSpeech = errors.New("no speech detected")
	// ErrUnintelligible is returned when speech was captured but not decodable.
	ErrUnintelligible = errors.New("speech was not intelligible")
	// ErrServiceUnavailable covers microphone and recognition backend failures.
	ErrServiceUnavailable = errors.New("speech service unavailable")
)

const wavMIMEType = "audio/wav"

// Recognizer converts encoded audio into text.
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Gateway performs one blocking listen-and-transcribe call. Outcomes are never
// retried here; the caller decides whether to ask again.
type Gateway struct {
	listener   *Listener
	recognizer Recognizer
	logger     *zap.Logger
}

func NewGateway(listener *Listener, recognizer Recognizer, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{listener: listener, recognizer: recognizer, logger: logger}
}

// Listen records one utterance and returns its transcript. Failures wrap
// ErrNoSpeech, ErrUnintelligible or ErrServiceUnavailable.
func (g *Gateway) Listen(ctx context.Context) (string, error) {
	rec, err := g.listener.Record(ctx)
	if err != nil {
		return "", err
	}

	g.logger.Debug("speech captured",
		zap.Duration("duration", rec.Duration()),
		zap.Float64("threshold", rec.Threshold),
	)

	audio, err := EncodeWAV(rec)
	if err != nil {
		return "", fmt.Errorf("%w: encoding recording: %v", ErrServiceUnavailable, err)
	}

	text, err := g.recognizer.Recognize(ctx, audio, wavMIMEType)
	switch {
	case errors.Is(err, ai.ErrWithheld):
		return "", fmt.Errorf("%w: %v", ErrUnintelligible, err)
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrUnintelligible
	}

	g.logger.Debug("speech recognized",
		zap.Int("length", utf8.RuneCountInString(text)),
		zap.String("preview", utils.TruncateForLog(text, 80)),
	)

	return text, nil
}
