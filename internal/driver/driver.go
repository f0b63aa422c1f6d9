// Package driver runs the interview turn loop between the candidate and the
// interview session.
package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/voice-interviewer/internal/ai"
	"github.com/spigell/voice-interviewer/internal/interview"
	"github.com/spigell/voice-interviewer/internal/speech"
	"github.com/spigell/voice-interviewer/internal/utils"

	"go.uber.org/zap"
)

const introQuestion = "Before we start, please tell me about yourself."

// AnswerSource captures one spoken or typed answer.
type AnswerSource interface {
	Listen(ctx context.Context) (string, error)
}

// Presenter shows the interview to the candidate.
type Presenter interface {
	Phase(phase interview.Phase)
	Question(index, total int, text string)
	Remark(text string)
	Heard(text string)
	Status(msg string)
	Report(text string)
}

// Interviewer is the interview session as seen by the driver.
type Interviewer interface {
	Plan() interview.Plan
	State() interview.State
	Begin(ctx context.Context, ic interview.Context) (*ai.Reply, error)
	SubmitAnswer(ctx context.Context, answer string) (*interview.Turn, error)
	Finalize(ctx context.Context) (*ai.Reply, error)
}

type Config struct {
	ResumeLimit int
	IntroFiller interview.Filler
}

// Input is the material collected before the interview starts.
type Input struct {
	JobDescription string
	Resume         string
}

// Result is what the interview produced.
type Result struct {
	Introduction string
	Answers      []string
	Report       string
	// Summary is nil when the report carried no parsable summary.
	Summary *interview.Summary
}

type Driver struct {
	session   Interviewer
	answers   AnswerSource
	presenter Presenter
	config    Config
	logger    *zap.Logger
}

func New(session Interviewer, answers AnswerSource, presenter Presenter, config Config, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.IntroFiller.Text == "" {
		config.IntroFiller = interview.IntroFiller()
	}
	if config.ResumeLimit <= 0 {
		config.ResumeLimit = interview.DefaultResumeLimit
	}

	return &Driver{
		session:   session,
		answers:   answers,
		presenter: presenter,
		config:    config,
		logger:    logger,
	}
}

// Run conducts the whole interview and prints the final report. Only a failure
// to open the conversation or a canceled context ends it early; every other
// failure is reported to the candidate and the interview moves on.
func (d *Driver) Run(ctx context.Context, in Input) (*Result, error) {
	result := &Result{}
	total := d.session.Plan().Questions

	d.presenter.Remark(introQuestion)
	intro, err := d.capture(ctx)
	if err != nil {
		return result, err
	}

	intro, substituted := d.config.IntroFiller.Apply(intro)
	if substituted {
		d.presenter.Status("No introduction captured, continuing without it.")
	}
	result.Introduction = intro

	ic := interview.NewContext(in.JobDescription, in.Resume, intro, d.config.ResumeLimit)

	d.presenter.Status("Preparing the first question...")
	reply, err := d.session.Begin(ctx, ic)
	if d.session.State() == interview.StateUninitialized {
		return result, fmt.Errorf("starting interview: %w", err)
	}

	d.presenter.Phase(interview.PhaseResume)
	if err != nil {
		d.logger.Warn("first question failed", zap.Error(err))
		d.presenter.Status(fmt.Sprintf("The interviewer could not ask question 1 (%v). Please introduce your recent project.", err))
	} else {
		d.showQuestion(1, total, reply)
	}

	for d.session.State() == interview.StateActive {
		answer, err := d.capture(ctx)
		if err != nil {
			return result, err
		}

		turn, err := d.session.SubmitAnswer(ctx, answer)
		if turn == nil {
			return result, err
		}
		if turn.Substituted {
			d.presenter.Status("No answer captured, recorded as \"not sure\".")
		}
		result.Answers = append(result.Answers, answer)

		if turn.PhaseChanged {
			d.presenter.Phase(turn.Phase)
		}

		if err != nil {
			d.logger.Warn("turn failed", zap.Int("question", turn.Answered), zap.Error(err))
			if turn.Complete() {
				d.presenter.Status(fmt.Sprintf("The final answer could not be submitted (%v). The report will not include it.", err))
			} else {
				d.presenter.Status(fmt.Sprintf("The interviewer could not ask question %d (%v). Moving on.", turn.Next, err))
			}
			continue
		}

		if turn.Complete() {
			d.presenter.Remark(turn.Reply.Text)
			continue
		}
		d.showQuestion(turn.Next, total, turn.Reply)
	}

	d.presenter.Status("Generating the evaluation report...")
	report, err := d.session.Finalize(ctx)
	if err != nil {
		d.presenter.Status(fmt.Sprintf("The evaluation report could not be generated: %v", err))
		return result, fmt.Errorf("finalizing interview: %w", err)
	}

	result.Report = report.Text
	d.presenter.Report(report.Text)

	if report.Withheld {
		d.logger.Warn("evaluation report withheld", zap.String("finish_reason", report.FinishReason))
		return result, nil
	}

	summary, err := interview.ParseSummary(report.Text)
	if err != nil {
		d.logger.Warn("evaluation summary not parsed", zap.Error(err))
		return result, nil
	}
	result.Summary = summary

	d.logger.Info("interview evaluated",
		zap.Float64("rating", summary.Rating),
		zap.Bool("hire", summary.Hire),
		zap.String("verdict", summary.Verdict),
	)

	return result, nil
}

func (d *Driver) showQuestion(index, total int, reply *ai.Reply) {
	d.presenter.Question(index, total, reply.Text)
	if reply.Withheld {
		d.presenter.Status(fmt.Sprintf("The model withheld its response (%s).", reply.FinishReason))
	}
}

// capture returns the candidate's answer, or an empty string after telling
// them why nothing was captured. Only cancellation is returned as an error.
func (d *Driver) capture(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := d.answers.Listen(ctx)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "", err
	case errors.Is(err, speech.ErrNoSpeech):
		d.presenter.Status("Silence detected, moving on.")
		return "", nil
	case errors.Is(err, speech.ErrUnintelligible):
		d.presenter.Status("Could not understand the audio.")
		return "", nil
	case errors.Is(err, speech.ErrServiceUnavailable):
		d.logger.Warn("speech service unavailable", zap.Error(err))
		d.presenter.Status("Speech service is unavailable right now.")
		return "", nil
	case err != nil:
		d.logger.Warn("capturing answer failed", zap.Error(err))
		d.presenter.Status(fmt.Sprintf("Could not capture the answer: %v", err))
		return "", nil
	}

	if text != "" {
		d.presenter.Heard(text)
		d.logger.Debug("answer captured", zap.String("preview", utils.TruncateForLog(text, 80)))
	}

	return text, nil
}
