package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocabulearn/internal/entity"
)

// QuizRunner drives an interactive session over line-oriented text streams.
type QuizRunner struct {
	gen    *QuestionGenerator
	in     *bufio.Reader
	out    io.Writer
	logger *logrus.Logger
}

func NewQuizRunner(gen *QuestionGenerator, in io.Reader, out io.Writer, logger *logrus.Logger) *QuizRunner {
	return &QuizRunner{gen: gen, in: bufio.NewReader(in), out: out, logger: logger}
}

// Run asks every item in order and returns the tally. Any generation or
// input error aborts the session and no partial result is returned.
func (r *QuizRunner) Run(ctx context.Context, items []*entity.VocabItem, direction entity.QuestionDirection) (entity.QuizResult, error) {
	session := NewQuizSession(r.gen, items, direction)
	log := r.logger.WithFields(logrus.Fields{"questions": len(items), "direction": direction.String()})
	log.Debug("quiz session started")

	for {
		if err := ctx.Err(); err != nil {
			return entity.QuizResult{}, err
		}
		q, ok, err := session.Next()
		if err != nil {
			return entity.QuizResult{}, err
		}
		if !ok {
			break
		}

		if _, err := fmt.Fprintf(r.out, "(%d/%d) %s\n", session.Index()+1, session.Len(), q.Prompt); err != nil {
			return entity.QuizResult{}, fmt.Errorf("write prompt: %w", err)
		}
		attempt, err := r.readLine()
		if err != nil {
			return entity.QuizResult{}, err
		}
		outcome, err := session.Answer(attempt)
		if err != nil {
			return entity.QuizResult{}, err
		}
		if _, err := fmt.Fprintln(r.out, resultMessage(outcome, q.Expected.Raw)); err != nil {
			return entity.QuizResult{}, fmt.Errorf("write result: %w", err)
		}
		log.WithFields(logrus.Fields{"question": session.Index() + 1, "outcome": outcome.String()}).Debug("answer scored")
	}

	result := session.Result()
	log.WithFields(logrus.Fields{"correct": result.Correct, "wrong": result.Wrong}).Info("quiz session finished")
	return result, nil
}

func (r *QuizRunner) readLine() (string, error) {
	line, err := r.in.ReadString('\n')
	if errors.Is(err, io.EOF) {
		if line == "" {
			return "", entity.ErrInputClosed
		}
	} else if err != nil {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func resultMessage(outcome entity.AnswerOutcome, expected string) string {
	switch outcome {
	case entity.AnswerExact:
		return "Correct"
	case entity.AnswerPartial:
		return fmt.Sprintf("Correct, full answer is '%s'", expected)
	default:
		return fmt.Sprintf("Wrong, correct answer was %s", expected)
	}
}

// FormatSummary renders the line printed after a finished session.
func FormatSummary(result entity.QuizResult) string {
	return fmt.Sprintf("Quiz finished: %d correct, %d wrong (%.0f%%)", result.Correct, result.Wrong, result.Percent())
}
