package cmd

import (
	"testing"

	"github.com/spigell/voice-interviewer/internal/interview"

	"github.com/stretchr/testify/require"
)

func TestInterviewPlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		base  interview.Plan
		limit int
		want  interview.Plan
		err   bool
	}{
		{name: "no limit", base: interview.DefaultPlan(), want: interview.DefaultPlan()},
		{name: "demo limit", base: interview.DefaultPlan(), limit: 3, want: interview.Plan{Questions: 3, ResumeQuestions: 2}},
		{name: "smallest demo", base: interview.DefaultPlan(), limit: 2, want: interview.Plan{Questions: 2, ResumeQuestions: 1}},
		{name: "single question", base: interview.DefaultPlan(), limit: 1, err: true},
		{name: "negative", base: interview.DefaultPlan(), limit: -4, err: true},
		{name: "broken config", base: interview.Plan{Questions: 5, ResumeQuestions: 0}, err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			plan, err := interviewPlan(tt.base, tt.limit)
			if tt.err {
				require.ErrorIs(t, err, interview.ErrInvalidPlan)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, plan)
		})
	}
}
