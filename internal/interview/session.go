package interview

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/voice-interviewer/internal/ai"
	"github.com/spigell/voice-interviewer/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrNotStarted     = errors.New("interview has not started")
	ErrAlreadyStarted = errors.New("interview already started")
	ErrConcluded      = errors.New("interview is concluded")
)

// State is the lifecycle position of a Session.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateConcluded
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateConcluded:
		return "concluded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Turn is the outcome of one accepted answer.
type Turn struct {
	// Answered is the index of the question the answer belongs to.
	Answered int
	// Next is the index of the question asked in Reply; greater than the
	// budget once the interview is complete.
	Next  int
	Phase Phase
	// PhaseChanged is set when Next is the first question of a new phase.
	PhaseChanged bool
	// Substituted is set when the answer was replaced by the filler.
	Substituted bool
	Instruction string
	// Reply is nil when the model exchange failed.
	Reply *ai.Reply
}

// Complete reports whether no further question is due.
func (t *Turn) Complete() bool {
	return t.Phase == PhaseComplete
}

// Session sequences the interview questions over one conversational history.
type Session struct {
	plan    Plan
	starter ai.ChatStarter
	filler  Filler
	logger  *zap.Logger

	chat  ai.Chat
	state State
	index int
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithFiller overrides the substitution used for empty answers.
func WithFiller(f Filler) Option {
	return func(s *Session) { s.filler = f }
}

func New(plan Plan, starter ai.ChatStarter, opts ...Option) (*Session, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if starter == nil {
		return nil, errors.New("chat starter is required")
	}

	s := &Session{
		plan:    plan,
		starter: starter,
		filler:  AnswerFiller(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.WithFields(s.logger, zap.Int("questions", plan.Questions), zap.Int("resume_questions", plan.ResumeQuestions))

	return s, nil
}

func (s *Session) Plan() Plan { return s.plan }
func (s *Session) State() State { return s.state }

// Index is the 1-based index of the question currently awaiting an answer.
func (s *Session) Index() int { return s.index }

// Begin opens the conversational history and asks the first question.
func (s *Session) Begin(ctx context.Context, ic Context) (*ai.Reply, error) {
	if s.state != StateUninitialized {
		return nil, ErrAlreadyStarted
	}

	chat, err := s.starter.StartChat(ctx)
	if err != nil {
		return nil, fmt.Errorf("starting chat: %w", err)
	}

	s.chat = chat
	s.state = StateActive
	s.index = 1

	s.logger.Info("interview started",
		zap.Int(logger.FieldQuestion, s.index),
		zap.Stringer(logger.FieldPhase, PhaseResume),
		zap.Bool("has_resume", ic.Resume != ""),
		zap.Bool("has_introduction", ic.Introduction != ""),
	)

	reply, err := s.chat.Send(ctx, openingPrompt(s.plan, ic))
	if err != nil {
		return nil, fmt.Errorf("asking question 1: %w", err)
	}

	return reply, nil
}

// SubmitAnswer records the answer to the current question and asks the next
// one, or closes the interview after the last question. The session advances
// even when the model exchange fails; the error is returned with the turn.
func (s *Session) SubmitAnswer(ctx context.Context, answer string) (*Turn, error) {
	switch s.state {
	case StateUninitialized:
		return nil, ErrNotStarted
	case StateConcluded:
		return nil, ErrConcluded
	}

	answer, substituted := s.filler.Apply(answer)

	next := s.index + 1
	turn := &Turn{
		Answered:    s.index,
		Next:        next,
		Phase:       s.plan.PhaseOf(next),
		Substituted: substituted,
		Instruction: s.plan.Instruction(next),
	}
	turn.PhaseChanged = turn.Phase != s.plan.PhaseOf(s.index)

	s.index = next
	if turn.Complete() {
		s.state = StateConcluded
	}

	log := s.logger.With(
		zap.Int(logger.FieldQuestion, turn.Answered),
		zap.Stringer(logger.FieldPhase, turn.Phase),
	)
	if turn.PhaseChanged {
		log.Info("interview phase changed", zap.Int("next", turn.Next))
	}

	reply, err := s.chat.Send(ctx, answerMessage(answer, turn.Instruction))
	if err != nil {
		log.Warn("model exchange failed", zap.Error(err))
		return turn, fmt.Errorf("answer to question %d: %w", turn.Answered, err)
	}
	turn.Reply = reply

	return turn, nil
}

// Finalize asks for the evaluation report over the history so far. It does not
// change the session state and may be called more than once.
func (s *Session) Finalize(ctx context.Context) (*ai.Reply, error) {
	if s.state == StateUninitialized {
		return nil, ErrNotStarted
	}

	s.logger.Info("requesting evaluation report", zap.Stringer("state", s.state))

	reply, err := s.chat.Send(ctx, ReportPrompt())
	if err != nil {
		return nil, fmt.Errorf("requesting report: %w", err)
	}

	return reply, nil
}
