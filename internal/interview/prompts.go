package interview

import (
	_ "embed"
	"fmt"
	"strings"
)

var (
	//go:embed prompts/opening.md
	openingTemplate string
	//go:embed prompts/resume.md
	resumeTemplate string
	//go:embed prompts/skills.md
	skillsTemplate string
	//go:embed prompts/complete.md
	completeTemplate string
	//go:embed prompts/report.md
	reportTemplate string
)

// render fills every {{KEY}} placeholder in one pass, so placeholder-like
// text inside the values is left as is.
func render(template string, values map[string]string) string {
	pairs := make([]string, 0, 2*len(values))
	for key, value := range values {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(template))
}

func openingPrompt(plan Plan, ic Context) string {
	return render(openingTemplate, map[string]string{
		"TOTAL":            fmt.Sprint(plan.Questions),
		"RESUME_QUESTIONS": fmt.Sprint(plan.ResumeQuestions),
		"JOB_DESCRIPTION":  ic.JobDescription,
		"RESUME":           ic.Resume,
		"INTRODUCTION":     ic.Introduction,
	})
}

func answerMessage(answer, instruction string) string {
	return fmt.Sprintf("The candidate answered: %q\n\n%s", answer, instruction)
}

// ReportPrompt is the final instruction asking for the structured evaluation.
func ReportPrompt() string {
	return render(reportTemplate, nil)
}
