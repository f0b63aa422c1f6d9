package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultProbePrompt = "Test"
	generateAction     = "generateContent"
	modelsPrefix       = "models/"
)

// DefaultModels is the preference order tried before model discovery.
var DefaultModels = []string{
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-1.5-flash",
	"gemini-1.5-flash-001",
	"gemini-pro",
	"gemini-1.0-pro",
}

// ErrNoUsableModel is returned when no candidate model answered a probe.
var ErrNoUsableModel = errors.New("no usable gemini model")

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type modelLister interface {
	All(ctx context.Context) iter.Seq2[*genai.Model, error]
}

type prober interface {
	Probe(ctx context.Context, model string) error
}

// Strategy yields an ordered list of candidate model identifiers.
type Strategy struct {
	Name       string
	Candidates func(ctx context.Context) ([]string, error)
}

// ProbeFunc observes every probe made during selection.
type ProbeFunc func(strategy, model string, err error)

// SelectionConfig drives SelectModel.
type SelectionConfig struct {
	Candidates  []string
	Discover    bool
	ProbePrompt string
	OnProbe     ProbeFunc
}

type generateProber struct {
	models contentGenerator
	prompt string
}

func (p generateProber) Probe(ctx context.Context, model string) error {
	_, err := p.models.GenerateContent(ctx, model, genai.Text(p.prompt), nil)
	return err
}

// SelectModel probes the configured candidates and, when enabled, every model
// the credential can list. The first model that answers is returned.
func SelectModel(ctx context.Context, client *genai.Client, cfg SelectionConfig, log *zap.Logger) (string, error) {
	prompt := strings.TrimSpace(cfg.ProbePrompt)
	if prompt == "" {
		prompt = DefaultProbePrompt
	}

	strategies := []Strategy{StaticStrategy(cfg.Candidates)}
	if cfg.Discover {
		strategies = append(strategies, DiscoveryStrategy(client.Models))
	}

	return selectModel(ctx, generateProber{models: client.Models, prompt: prompt}, strategies, cfg.OnProbe, log)
}

func selectModel(ctx context.Context, p prober, strategies []Strategy, onProbe ProbeFunc, log *zap.Logger) (string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	tried := make(map[string]struct{})
	for _, strategy := range strategies {
		candidates, err := strategy.Candidates(ctx)
		if err != nil {
			log.Warn("model strategy failed", zap.String("strategy", strategy.Name), zap.Error(err))
			continue
		}

		for _, model := range candidates {
			if _, ok := tried[model]; ok {
				continue
			}
			tried[model] = struct{}{}

			err := p.Probe(ctx, model)
			if onProbe != nil {
				onProbe(strategy.Name, model, err)
			}
			if err != nil {
				log.Debug("model probe failed",
					zap.String("strategy", strategy.Name),
					zap.String("model", model),
					zap.Error(err),
				)
				if ctx.Err() != nil {
					return "", ctx.Err()
				}
				continue
			}

			log.Info("model selected", zap.String("strategy", strategy.Name), zap.String("model", model))
			return model, nil
		}
	}

	return "", fmt.Errorf("%w: tried %d models", ErrNoUsableModel, len(tried))
}

// StaticStrategy returns the given identifiers in order, falling back to DefaultModels.
func StaticStrategy(models []string) Strategy {
	candidates := normalizeModels(models)
	if len(candidates) == 0 {
		candidates = slices.Clone(DefaultModels)
	}

	return Strategy{
		Name: "preferred",
		Candidates: func(context.Context) ([]string, error) {
			return candidates, nil
		},
	}
}

// DiscoveryStrategy lists every model supporting free-form text generation.
func DiscoveryStrategy(lister modelLister) Strategy {
	return Strategy{
		Name: "discovery",
		Candidates: func(ctx context.Context) ([]string, error) {
			return ListTextModels(ctx, lister)
		},
	}
}

// ListTextModels returns the names of the models that support generateContent.
func ListTextModels(ctx context.Context, lister modelLister) ([]string, error) {
	var names []string
	for model, err := range lister.All(ctx) {
		if err != nil {
			return names, fmt.Errorf("list models: %w", err)
		}
		if model == nil || !slices.Contains(model.SupportedActions, generateAction) {
			continue
		}
		names = append(names, strings.TrimPrefix(model.Name, modelsPrefix))
	}

	return names, nil
}

func normalizeModels(models []string) []string {
	result := make([]string, 0, len(models))
	for _, m := range models {
		m = strings.TrimPrefix(strings.TrimSpace(m), modelsPrefix)
		if m == "" || slices.Contains(result, m) {
			continue
		}
		result = append(result, m)
	}
	return result
}
