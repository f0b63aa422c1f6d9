package gemini

import (
	"testing"

	"github.com/spigell/voice-interviewer/internal/ai"

	"google.golang.org/genai"
)

func TestExtractReply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		resp     *genai.GenerateContentResponse
		text     string
		withheld bool
	}{
		{name: "nil response", resp: nil, withheld: true},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}, withheld: true},
		{
			name: "prompt blocked",
			resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
			},
			withheld: true,
		},
		{name: "plain text", resp: textResponse("  What is a goroutine?  "), text: "What is a goroutine?"},
		{
			name: "truncated keeps first fragment",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					FinishReason: genai.FinishReasonMaxTokens,
					Content:      &genai.Content{Parts: []*genai.Part{{Text: "Tell me about"}, {Text: " more"}}},
				}},
			},
			text: "Tell me about",
		},
		{
			name: "safety without content",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
			},
			withheld: true,
		},
		{
			name: "empty parts",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					FinishReason: genai.FinishReasonStop,
					Content:      &genai.Content{Parts: []*genai.Part{nil}},
				}},
			},
			withheld: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			reply := extractReply(tt.resp)
			if reply == nil {
				t.Fatal("reply must never be nil")
			}
			if reply.Withheld != tt.withheld {
				t.Fatalf("expected withheld=%v, got %+v", tt.withheld, reply)
			}
			if tt.withheld {
				if reply.Text != ai.WithheldText {
					t.Fatalf("expected sentinel text, got %q", reply.Text)
				}
				return
			}
			if reply.Text != tt.text {
				t.Fatalf("expected %q, got %q", tt.text, reply.Text)
			}
		})
	}
}
