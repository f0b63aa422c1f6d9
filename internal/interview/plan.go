package interview

import (
	"errors"
	"fmt"
)

const (
	DefaultQuestions       = 9
	DefaultResumeQuestions = 4
)

// ErrInvalidPlan is returned for plans violating 1 <= ResumeQuestions < Questions.
var ErrInvalidPlan = errors.New("invalid question plan")

// Phase is a contiguous range of question indices sharing a topical focus.
type Phase int

const (
	PhaseResume Phase = iota + 1
	PhaseSkills
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseResume:
		return "resume"
	case PhaseSkills:
		return "skills"
	case PhaseComplete:
		return "complete"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Plan is the fixed question budget split into the resume and skills phases.
type Plan struct {
	// Questions is the total number of questions N.
	Questions int `mapstructure:"questions"`
	// ResumeQuestions is the phase boundary B: questions 1..B focus on the resume.
	ResumeQuestions int `mapstructure:"resume-questions"`
}

func DefaultPlan() Plan {
	return Plan{Questions: DefaultQuestions, ResumeQuestions: DefaultResumeQuestions}
}

func (p Plan) Validate() error {
	if p.ResumeQuestions < 1 || p.ResumeQuestions >= p.Questions {
		return fmt.Errorf("%w: need 1 <= resume questions (%d) < questions (%d)", ErrInvalidPlan, p.ResumeQuestions, p.Questions)
	}
	return nil
}

// WithLimit lowers the question budget for short demo runs, keeping the
// boundary inside the budget.
func (p Plan) WithLimit(questions int) Plan {
	if questions <= 0 || questions >= p.Questions {
		return p
	}

	p.Questions = questions
	if p.ResumeQuestions >= questions {
		p.ResumeQuestions = questions - 1
	}
	return p
}

// PhaseOf returns the phase of a 1-based question index.
func (p Plan) PhaseOf(index int) Phase {
	switch {
	case index > p.Questions:
		return PhaseComplete
	case index <= p.ResumeQuestions:
		return PhaseResume
	default:
		return PhaseSkills
	}
}

// Instruction returns the turn instruction for the question that follows an
// answer. It depends on nextIndex only.
func (p Plan) Instruction(nextIndex int) string {
	var template string
	switch p.PhaseOf(nextIndex) {
	case PhaseResume:
		template = resumeTemplate
	case PhaseSkills:
		template = skillsTemplate
	default:
		return render(completeTemplate, nil)
	}

	return render(template, map[string]string{
		"QUESTION": fmt.Sprint(nextIndex),
		"TOTAL":    fmt.Sprint(p.Questions),
	})
}
