package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/eslsoft/vocabulearn/internal/entity"
	"github.com/eslsoft/vocabulearn/internal/infrastructure/logging"
)

func runQuiz(t *testing.T, input string, items []*entity.VocabItem, dir entity.QuestionDirection) (entity.QuizResult, string, error) {
	t.Helper()
	var out bytes.Buffer
	runner := NewQuizRunner(NewQuestionGenerator(newTestRand()), strings.NewReader(input), &out, logging.Discard())
	result, err := runner.Run(context.Background(), items, dir)
	return result, out.String(), err
}

func TestQuizRunner_Messages(t *testing.T) {
	items := []*entity.VocabItem{
		vocabItem(1, "gato", "cat"),
		vocabItem(2, "perro", "dog/hound"),
		vocabItem(3, "caballo", "horse"),
	}
	result, out, err := runQuiz(t, "cat\nhound\r\nmule\n", items, entity.NativeToForeign)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := strings.Join([]string{
		"(1/3) gato",
		"Correct",
		"(2/3) perro",
		"Correct, full answer is 'dog/hound'",
		"(3/3) caballo",
		"Wrong, correct answer was horse",
		"",
	}, "\n")
	if out != want {
		t.Fatalf("unexpected transcript:\n%s\nwant:\n%s", out, want)
	}
	if result != (entity.QuizResult{Correct: 2, Wrong: 1}) {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := FormatSummary(result); got != "Quiz finished: 2 correct, 1 wrong (67%)" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestQuizRunner_TotalsMatchQuestionCount(t *testing.T) {
	items := []*entity.VocabItem{
		vocabItem(1, "gato", "cat"),
		vocabItem(2, "perro", "dog"),
		vocabItem(3, "casa", "house"),
		vocabItem(4, "libro", "book"),
	}
	for _, input := range []string{"cat\ndog\nhouse\nbook\n", "\n\n\n\n", "gato\ncat\nx\nbook"} {
		result, _, err := runQuiz(t, input, items, entity.Bidirectional)
		if err != nil {
			t.Fatalf("run %q: %v", input, err)
		}
		if result.Total() != len(items) || result.Correct < 0 || result.Wrong < 0 {
			t.Fatalf("input %q: unexpected result %+v", input, result)
		}
	}
}

func TestQuizRunner_FatalErrors(t *testing.T) {
	items := []*entity.VocabItem{vocabItem(1, "gato", "cat"), vocabItem(2, "perro", "dog")}

	result, out, err := runQuiz(t, "cat\n", items, entity.NativeToForeign)
	if !errors.Is(err, entity.ErrInputClosed) {
		t.Fatalf("expected input closed, got %v", err)
	}
	if result.Total() != 0 {
		t.Fatalf("no partial result expected, got %+v", result)
	}
	if !strings.Contains(out, "(2/2) perro") {
		t.Fatalf("second prompt should have been shown: %q", out)
	}

	broken := []*entity.VocabItem{vocabItem(1, "gato", "cat"), {ID: 2, Native: "casa"}}
	if _, _, err := runQuiz(t, "cat\nhouse\n", broken, entity.ForeignToNative); !errors.Is(err, entity.ErrMissingTransliteration) {
		t.Fatalf("expected missing transliteration, got %v", err)
	}
}

func TestQuizRunner_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := NewQuizRunner(NewQuestionGenerator(newTestRand()), strings.NewReader("cat\n"), &bytes.Buffer{}, logging.Discard())
	if _, err := runner.Run(ctx, []*entity.VocabItem{vocabItem(1, "gato", "cat")}, entity.NativeToForeign); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}
