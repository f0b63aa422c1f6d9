package gemini

import (
	"strings"

	"github.com/spigell/voice-interviewer/internal/ai"

	"google.golang.org/genai"
)

// extractReply reads the generated text from resp. When the response was blocked
// or truncated it falls back to the first fragment of the first candidate and,
// failing that, to the withheld sentinel.
func extractReply(resp *genai.GenerateContentResponse) *ai.Reply {
	if resp == nil {
		return ai.Withheld("EMPTY_RESPONSE")
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return ai.Withheld(string(resp.PromptFeedback.BlockReason))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ai.Withheld("NO_CANDIDATES")
	}

	candidate := resp.Candidates[0]
	reason := string(candidate.FinishReason)

	if !withheldFinish(candidate.FinishReason) {
		if text := strings.TrimSpace(primaryText(resp)); text != "" {
			return &ai.Reply{Text: text, FinishReason: reason}
		}
	}

	if text := firstFragment(candidate); text != "" {
		return &ai.Reply{Text: text, FinishReason: reason}
	}

	if reason == "" {
		reason = "EMPTY_TEXT"
	}

	return ai.Withheld(reason)
}

func primaryText(resp *genai.GenerateContentResponse) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	return resp.Text()
}

func firstFragment(candidate *genai.Candidate) string {
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return ""
	}

	part := candidate.Content.Parts[0]
	if part == nil {
		return ""
	}

	return strings.TrimSpace(part.Text)
}

func withheldFinish(reason genai.FinishReason) bool {
	switch reason {
	case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonMaxTokens,
		genai.FinishReasonBlocklist, genai.FinishReasonProhibitedContent, genai.FinishReasonSPII:
		return true
	default:
		return false
	}
}
