package gemini

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeProber struct {
	working map[string]bool
	probed  []string
}

func (p *fakeProber) Probe(_ context.Context, model string) error {
	p.probed = append(p.probed, model)
	if p.working[model] {
		return nil
	}
	return errors.New("permission denied")
}

type fakeLister struct {
	models []*genai.Model
	err    error
}

func (l fakeLister) All(context.Context) iter.Seq2[*genai.Model, error] {
	return func(yield func(*genai.Model, error) bool) {
		for _, m := range l.models {
			if !yield(m, nil) {
				return
			}
		}
		if l.err != nil {
			yield(nil, l.err)
		}
	}
}

func TestSelectModelBindsFirstWorkingCandidate(t *testing.T) {
	p := &fakeProber{working: map[string]bool{"c": true, "d": true}}

	var observed []string
	onProbe := func(_ string, model string, _ error) { observed = append(observed, model) }

	model, err := selectModel(context.Background(), p, []Strategy{StaticStrategy([]string{"a", "b", "c", "d"})}, onProbe, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, "c", model)
	require.Equal(t, []string{"a", "b", "c"}, p.probed)
	require.Equal(t, p.probed, observed)
}

func TestSelectModelFallsBackToDiscovery(t *testing.T) {
	p := &fakeProber{working: map[string]bool{"gemini-exp": true}}
	lister := fakeLister{models: []*genai.Model{
		{Name: "models/embedding-001", SupportedActions: []string{"embedContent"}},
		{Name: "models/a", SupportedActions: []string{"generateContent"}},
		{Name: "models/gemini-exp", SupportedActions: []string{"countTokens", "generateContent"}},
		{Name: "models/gemini-late", SupportedActions: []string{"generateContent"}},
	}}

	strategies := []Strategy{StaticStrategy([]string{"a", "b"}), DiscoveryStrategy(lister)}

	model, err := selectModel(context.Background(), p, strategies, nil, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, "gemini-exp", model)
	// "a" was already probed by the static strategy.
	require.Equal(t, []string{"a", "b", "gemini-exp"}, p.probed)
}

func TestSelectModelFailsWhenNothingWorks(t *testing.T) {
	p := &fakeProber{}
	strategies := []Strategy{
		StaticStrategy([]string{"a"}),
		DiscoveryStrategy(fakeLister{err: errors.New("forbidden")}),
	}

	_, err := selectModel(context.Background(), p, strategies, nil, nil)
	require.ErrorIs(t, err, ErrNoUsableModel)
	require.Equal(t, []string{"a"}, p.probed)
}

func TestStaticStrategyDefaults(t *testing.T) {
	candidates, err := StaticStrategy(nil).Candidates(context.Background())
	require.NoError(t, err)
	require.Equal(t, DefaultModels, candidates)

	candidates, err = StaticStrategy([]string{" models/x ", "x", "", "y"}).Candidates(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y"}, candidates)
}

func TestListTextModelsReturnsPartialOnError(t *testing.T) {
	lister := fakeLister{
		models: []*genai.Model{{Name: "models/one", SupportedActions: []string{"generateContent"}}},
		err:    errors.New("page failed"),
	}

	names, err := ListTextModels(context.Background(), lister)
	require.Error(t, err)
	require.Equal(t, []string{"one"}, names)
}
