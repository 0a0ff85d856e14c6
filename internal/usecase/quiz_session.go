package usecase

import (
	"fmt"

	"github.com/eslsoft/vocabulearn/internal/entity"
)

// SessionState is the position of a QuizSession in its lifecycle.
type SessionState int

const (
	SessionNotStarted SessionState = iota
	SessionAsking
	SessionScoring
	SessionFinished
)

func (s SessionState) String() string {
	switch s {
	case SessionNotStarted:
		return "not_started"
	case SessionAsking:
		return "asking"
	case SessionScoring:
		return "scoring"
	case SessionFinished:
		return "finished"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// QuizSession walks a fixed list of entries in order. Each entry is asked
// once (Next) and scored once (Answer); the index only moves forward.
type QuizSession struct {
	gen       *QuestionGenerator
	items     []*entity.VocabItem
	direction entity.QuestionDirection

	state   SessionState
	index   int
	current entity.QAPair
	result  entity.QuizResult
}

func NewQuizSession(gen *QuestionGenerator, items []*entity.VocabItem, direction entity.QuestionDirection) *QuizSession {
	return &QuizSession{gen: gen, items: items, direction: direction, index: -1}
}

// Next generates the question for the next entry. ok is false once every
// entry has been scored and the session is Finished.
func (s *QuizSession) Next() (q entity.QAPair, ok bool, err error) {
	switch s.state {
	case SessionFinished:
		return entity.QAPair{}, false, nil
	case SessionAsking:
		return entity.QAPair{}, false, answerPending(s.index)
	}

	if s.index+1 >= len(s.items) {
		s.state = SessionFinished
		return entity.QAPair{}, false, nil
	}
	pair, err := s.gen.Generate(s.items[s.index+1], s.direction)
	if err != nil {
		return entity.QAPair{}, false, err
	}
	s.index++
	s.current = pair
	s.state = SessionAsking
	return pair, true, nil
}

// Answer scores attempt against the pending question.
func (s *QuizSession) Answer(attempt string) (entity.AnswerOutcome, error) {
	switch s.state {
	case SessionFinished:
		return entity.AnswerIncorrect, entity.ErrSessionFinished
	case SessionAsking:
	default:
		return entity.AnswerIncorrect, entity.ErrNoPendingQuestion
	}

	s.state = SessionScoring
	outcome := Evaluate(attempt, s.current.Expected)
	if outcome.Score() == 1 {
		s.result.Correct++
	} else {
		s.result.Wrong++
	}
	return outcome, nil
}

func (s *QuizSession) State() SessionState { return s.state }

// Index is the zero-based position of the current entry, -1 before the first question.
func (s *QuizSession) Index() int { return s.index }

func (s *QuizSession) Len() int { return len(s.items) }

// Result returns the tally so far; it is final once State is SessionFinished.
func (s *QuizSession) Result() entity.QuizResult { return s.result }

func answerPending(index int) error {
	return fmt.Errorf("question %d: %w", index+1, entity.ErrAnswerPending)
}
