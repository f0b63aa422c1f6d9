package interview

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlanValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		plan  Plan
		valid bool
	}{
		{plan: DefaultPlan(), valid: true},
		{plan: Plan{Questions: 2, ResumeQuestions: 1}, valid: true},
		{plan: Plan{Questions: 5, ResumeQuestions: 0}},
		{plan: Plan{Questions: 5, ResumeQuestions: 5}},
		{plan: Plan{Questions: 1, ResumeQuestions: 1}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.plan.Questions, tt.plan.ResumeQuestions), func(t *testing.T) {
			t.Parallel()
			err := tt.plan.Validate()
			if tt.valid {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidPlan)
		})
	}
}

func TestPlanWithLimit(t *testing.T) {
	t.Parallel()

	require.Equal(t, Plan{Questions: 5, ResumeQuestions: 4}, DefaultPlan().WithLimit(5))
	require.Equal(t, Plan{Questions: 3, ResumeQuestions: 2}, DefaultPlan().WithLimit(3))
	require.Equal(t, DefaultPlan(), DefaultPlan().WithLimit(0))
	require.Equal(t, DefaultPlan(), DefaultPlan().WithLimit(20))
}

func TestPlanInstructionDependsOnIndexOnly(t *testing.T) {
	t.Parallel()

	plans := []Plan{DefaultPlan(), {Questions: 5, ResumeQuestions: 2}, {Questions: 2, ResumeQuestions: 1}}

	for _, plan := range plans {
		for next := 1; next <= plan.Questions+1; next++ {
			instruction := plan.Instruction(next)
			require.Equal(t, instruction, plan.Instruction(next))

			switch {
			case next <= plan.ResumeQuestions:
				require.Equal(t, PhaseResume, plan.PhaseOf(next))
				require.Contains(t, instruction, "RESUME")
				require.Contains(t, instruction, fmt.Sprintf("Question #%d of %d", next, plan.Questions))
			case next <= plan.Questions:
				require.Equal(t, PhaseSkills, plan.PhaseOf(next))
				require.Contains(t, instruction, "TECHNICAL")
				require.Contains(t, instruction, "JD")
				require.Contains(t, instruction, fmt.Sprintf("Question #%d of %d", next, plan.Questions))
			default:
				require.Equal(t, PhaseComplete, plan.PhaseOf(next))
				require.Contains(t, instruction, "COMPLETE")
				require.NotContains(t, instruction, "Question #")
			}
		}
	}
}

func TestOpeningPromptEmbedsContext(t *testing.T) {
	t.Parallel()

	prompt := openingPrompt(DefaultPlan(), NewContext("Backend Engineer", "Built X with Go", "Hi, I'm A", 0))

	for _, want := range []string{"Backend Engineer", "Built X with Go", "Hi, I'm A", "Question #1 of 9", "RESUME", "exactly one question"} {
		require.Contains(t, prompt, want)
	}
	require.False(t, strings.Contains(prompt, "{{"), "unreplaced placeholder in %q", prompt)
}

func TestOpeningPromptKeepsPlaceholderTextInContext(t *testing.T) {
	t.Parallel()

	ic := NewContext("JD mentions {{RESUME}} literally", "resume text with {{INTRODUCTION}} inside", "Hi, I'm A", 0)

	first := openingPrompt(DefaultPlan(), ic)
	require.Contains(t, first, "JD mentions {{RESUME}} literally")
	require.Contains(t, first, "resume text with {{INTRODUCTION}} inside")
	require.Equal(t, 1, strings.Count(first, "Hi, I'm A"))

	for range 50 {
		require.Equal(t, first, openingPrompt(DefaultPlan(), ic))
	}
}

func TestNewContextTruncatesResume(t *testing.T) {
	t.Parallel()

	ic := NewContext(" jd ", strings.Repeat("é", DefaultResumeLimit+10), " intro ", 0)

	require.Equal(t, "jd", ic.JobDescription)
	require.Equal(t, "intro", ic.Introduction)
	require.Equal(t, DefaultResumeLimit, len([]rune(ic.Resume)))

	require.Equal(t, "abc", NewContext("", "abcdef", "", 3).Resume)
}
