package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spigell/voice-interviewer/internal/ai"
	"github.com/spigell/voice-interviewer/internal/logger"
	"github.com/spigell/voice-interviewer/internal/utils"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	provider = "gemini"

	DefaultTemperature     = 0.7
	DefaultMaxOutputTokens = 8000
	DefaultMaxRetries      = 3
	DefaultMaxLogLength    = 200

	baseRetryDelay = time.Second
	maxRetryDelay  = 30 * time.Second
)

var wait = utils.WaitFor

var retryAfterPattern = regexp.MustCompile(`(?i)retry (?:after|in) (\d+(?:\.\d+)?)\s*s`)

// Options tunes generation for the bound model.
type Options struct {
	// Temperature is nil for the default; zero is a valid setting.
	Temperature     *float32
	MaxOutputTokens int32
	// MaxRetries counts the attempts made after the first one.
	MaxRetries   int
	MaxLogLength int
}

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	chats *genai.Chats
}

func (c genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := c.chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// Generator is the model gateway bound to a single Gemini model.
type Generator struct {
	chats  chatCreator
	models contentGenerator
	model  string

	temperature     float32
	maxOutputTokens int32
	maxRetries      int
	maxLogLen       int

	logger *zap.Logger
}

// NewClient creates a genai client for the Gemini API backend.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return client, nil
}

// NewGenerator binds the gateway to an already selected model.
func NewGenerator(client *genai.Client, model string, opts Options, log *zap.Logger) *Generator {
	return newGenerator(genaiChats{chats: client.Chats}, client.Models, model, opts, log)
}

func newGenerator(chats chatCreator, models contentGenerator, model string, opts Options, log *zap.Logger) *Generator {
	temperature := float32(DefaultTemperature)
	if opts.Temperature != nil && *opts.Temperature >= 0 {
		temperature = *opts.Temperature
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.MaxLogLength <= 0 {
		opts.MaxLogLength = DefaultMaxLogLength
	}

	return &Generator{
		chats:           chats,
		models:          models,
		model:           model,
		temperature:     temperature,
		maxOutputTokens: opts.MaxOutputTokens,
		maxRetries:      opts.MaxRetries,
		maxLogLen:       opts.MaxLogLength,
		logger:          logger.WithCommonFields(log, provider, model),
	}
}

// Model returns the bound model identifier.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// StartChat opens a new conversational history on the bound model.
func (g *Generator) StartChat(ctx context.Context) (ai.Chat, error) {
	if g == nil || g.chats == nil {
		return nil, errors.New("gemini generator is not initialized")
	}

	session, err := g.chats.Create(ctx, g.model, g.generationConfig(), nil)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	g.logger.Debug("chat started")

	return &chat{generator: g, session: session}, nil
}

func (g *Generator) generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxOutputTokens,
	}
}

type chat struct {
	generator *Generator
	session   chatSession
	turns     int
}

// Send appends the message to the chat history and returns the reply. Blocked
// or empty generations come back as the withheld sentinel, not as an error.
func (c *chat) Send(ctx context.Context, message string) (*ai.Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.New("message must not be empty")
	}

	g := c.generator
	c.turns++
	log := g.logger.With(zap.Int("turn", c.turns))

	log.Debug("gemini chat request",
		zap.Int("message_length", utf8.RuneCountInString(message)),
		zap.String("message_preview", utils.TruncateForLog(message, g.maxLogLen)),
	)

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	for attempt := 1; ; attempt++ {
		resp, err = c.session.SendMessage(ctx, genai.Part{Text: message})
		if err == nil {
			break
		}

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt > g.maxRetries {
			return nil, fmt.Errorf("send message: %w", err)
		}

		log.Warn("temporary gemini error, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		if err := wait(ctx, delay); err != nil {
			return nil, err
		}
	}

	reply := extractReply(resp)
	if reply.Withheld {
		log.Warn("gemini response withheld", zap.String("finish_reason", reply.FinishReason))
		return reply, nil
	}

	log.Debug("gemini chat response",
		zap.String("finish_reason", reply.FinishReason),
		zap.Int("response_length", utf8.RuneCountInString(reply.Text)),
		zap.String("response_preview", utils.TruncateForLog(reply.Text, g.maxLogLen)),
	)

	return reply, nil
}

// retryDelay reports whether err is a temporary API error and how long to wait
// before the next attempt.
func retryDelay(err error, attempt int) (time.Duration, bool) {
	apiErr, ok := asAPIError(err)
	if !ok {
		return 0, false
	}

	switch apiErr.Code {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
	default:
		return 0, false
	}

	delay := baseRetryDelay << (attempt - 1)
	if hinted, ok := hintedDelay(apiErr); ok {
		delay = hinted
	}

	if delay > maxRetryDelay {
		return 0, false
	}

	return delay, true
}

func asAPIError(err error) (genai.APIError, bool) {
	var value genai.APIError
	if errors.As(err, &value) {
		return value, true
	}

	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return *ptr, true
	}

	return genai.APIError{}, false
}

func hintedDelay(apiErr genai.APIError) (time.Duration, bool) {
	for _, detail := range apiErr.Details {
		raw, ok := detail["retryDelay"].(string)
		if !ok {
			continue
		}
		if d, err := time.ParseDuration(raw); err == nil {
			return d, true
		}
	}

	match := retryAfterPattern.FindStringSubmatch(apiErr.Message)
	if len(match) < 2 {
		return 0, false
	}

	seconds, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}

	return time.Duration(seconds * float64(time.Second)), true
}
