package interview

import (
	"strings"

	"github.com/spigell/voice-interviewer/internal/utils"
)

// DefaultResumeLimit bounds the resume text sent to the model.
const DefaultResumeLimit = 10000

// Context is the candidate material the interview is seeded with.
type Context struct {
	JobDescription string
	Resume         string
	Introduction   string
}

// NewContext trims the inputs and cuts the resume to resumeLimit runes.
func NewContext(jobDescription, resume, introduction string, resumeLimit int) Context {
	if resumeLimit <= 0 {
		resumeLimit = DefaultResumeLimit
	}

	return Context{
		JobDescription: strings.TrimSpace(jobDescription),
		Resume:         utils.TruncateRunes(strings.TrimSpace(resume), resumeLimit),
		Introduction:   strings.TrimSpace(introduction),
	}
}
