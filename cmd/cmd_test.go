package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/eslsoft/vocabulearn/internal/entity"
)

const testVocab = `id,in_native_lang,transliterated,in_original_lang,time_added
1,gato,cat,,2021-03-01T10:00:00Z
`

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default so viper falls back to config
// between invocations of the shared root command.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func dataDir(t *testing.T, vocab string) string {
	t.Helper()
	t.Chdir(t.TempDir())
	dir := t.TempDir()
	if vocab == "" {
		return dir
	}
	for name, content := range map[string]string{
		"vocab.csv":       vocab,
		"labels.csv":      "id,display_name,label_type\n",
		"item_labels.csv": "item_id,label_id\n",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestQuizCommand(t *testing.T) {
	dir := dataDir(t, testVocab)

	out, err := runCLI(t, " CAT \n", "quiz", "--data-dir", dir, "--type", "ntf", "-n", "5", "--seed", "3")
	if err != nil {
		t.Fatalf("quiz: %v\n%s", err, out)
	}
	want := "(1/1) gato\nCorrect\nQuiz finished: 1 correct, 0 wrong (100%)\n"
	if out != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", out, want)
	}

	out, err = runCLI(t, "gata\n", "quiz", "--data-dir", dir, "-t", "ftn")
	if err != nil {
		t.Fatalf("quiz ftn: %v", err)
	}
	if !strings.Contains(out, "(1/1) cat\nWrong, correct answer was gato\n") || !strings.Contains(out, "0 correct, 1 wrong (0%)") {
		t.Fatalf("unexpected ftn output %q", out)
	}
}

func TestQuizCommandFatalErrors(t *testing.T) {
	dir := dataDir(t, testVocab)

	out, err := runCLI(t, "", "quiz", "--data-dir", dir)
	if !errors.Is(err, entity.ErrInputClosed) {
		t.Fatalf("expected closed input error, got %v", err)
	}
	if strings.Contains(out, "Quiz finished") {
		t.Fatalf("no summary expected after a fatal error: %q", out)
	}

	if _, err := runCLI(t, "cat\n", "quiz", "--data-dir", dir, "--type", "sideways"); !errors.Is(err, entity.ErrInvalidDirection) {
		t.Fatalf("expected invalid direction, got %v", err)
	}
	if _, err := runCLI(t, "cat\n", "quiz", "--data-dir", dir, "-n", "0"); !errors.Is(err, entity.ErrInvalidQuestionCount) {
		t.Fatalf("expected invalid count, got %v", err)
	}
	if _, err := runCLI(t, "", "quiz", "--data-dir", filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("expected missing data to fail")
	}
}

func TestQuizCommandSkipIncomplete(t *testing.T) {
	dir := dataDir(t, testVocab+"2,casa,,,2021-03-02T10:00:00Z\n")

	if _, err := runCLI(t, "cat\ncat\n", "quiz", "--data-dir", dir, "--type", "ntf", "--filter", "id >= 2"); !errors.Is(err, entity.ErrMissingTransliteration) {
		t.Fatalf("expected missing transliteration, got %v", err)
	}

	out, err := runCLI(t, "cat\n", "quiz", "--data-dir", dir, "--type", "ntf", "--skip-incomplete")
	if err != nil {
		t.Fatalf("quiz: %v", err)
	}
	if !strings.Contains(out, "(1/1) gato") || !strings.Contains(out, "1 correct, 0 wrong") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestVocabCommands(t *testing.T) {
	dir := dataDir(t, "")

	out, err := runCLI(t, "", "init", "--data-dir", dir)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if strings.Count(out, "Created ") != 3 {
		t.Fatalf("expected three created files, got %q", out)
	}

	out, err = runCLI(t, "", "vocab", "add", "perro", "dog/hound", "--data-dir", dir, "--label", "animals:WordArea", "--original", "perro")
	if err != nil {
		t.Fatalf("vocab add: %v", err)
	}
	if out != "Added entry 1: perro = dog/hound\n" {
		t.Fatalf("unexpected add output %q", out)
	}
	if _, err := runCLI(t, "", "vocab", "add", "gato", "cat", "--data-dir", dir); err != nil {
		t.Fatalf("vocab add: %v", err)
	}
	if _, err := runCLI(t, "", "vocab", "add", "only-native", "--data-dir", dir); err == nil {
		t.Fatalf("expected argument count error")
	}

	out, err = runCLI(t, "", "vocab", "list", "--data-dir", dir, "--filter", "label == 'Animals'")
	if err != nil {
		t.Fatalf("vocab list: %v", err)
	}
	if !strings.HasPrefix(out, "1\tperro\tdog/hound\tperro\t") || strings.Count(out, "\n") != 1 {
		t.Fatalf("unexpected list output %q", out)
	}

	out, err = runCLI(t, "", "vocab", "list", "--data-dir", dir, "--order-by", "native", "--limit", "1")
	if err != nil {
		t.Fatalf("vocab list: %v", err)
	}
	if !strings.HasPrefix(out, "2\tgato\tcat\t\t") {
		t.Fatalf("unexpected ordered output %q", out)
	}

	out, err = runCLI(t, "", "vocab", "labels", "--data-dir", dir)
	if err != nil {
		t.Fatalf("vocab labels: %v", err)
	}
	if out != "1\tanimals\tWordArea\n" {
		t.Fatalf("unexpected labels output %q", out)
	}
}

func TestExportImportCommands(t *testing.T) {
	src := dataDir(t, testVocab)
	backupPath := filepath.Join(t.TempDir(), "backup.jsonl.gz")

	out, err := runCLI(t, "", "export", "--data-dir", src, "-o", backupPath)
	if err != nil {
		t.Fatalf("export: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Exported vocab_items: 1/1 rows") {
		t.Fatalf("unexpected export output %q", out)
	}

	dst := t.TempDir()
	if _, err := runCLI(t, "", "init", "--data-dir", dst); err != nil {
		t.Fatalf("init: %v", err)
	}
	out, err = runCLI(t, "", "import", "--data-dir", dst, "-i", backupPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "vocab_items: 1 imported, 0 skipped") {
		t.Fatalf("unexpected import output %q", out)
	}

	out, err = runCLI(t, "", "vocab", "list", "--data-dir", dst)
	if err != nil {
		t.Fatalf("vocab list: %v", err)
	}
	if out != "1\tgato\tcat\t\t2021-03-01T10:00:00Z\n" {
		t.Fatalf("unexpected imported data %q", out)
	}

	if _, err := runCLI(t, "", "import", "--data-dir", dst); err == nil {
		t.Fatalf("expected missing input error")
	}
}

func TestQuizCommandEmptySelection(t *testing.T) {
	dir := dataDir(t, testVocab)

	out, err := runCLI(t, "", "quiz", "--data-dir", dir, "--filter", "id >= 100", "--log-level", "error")
	if err != nil {
		t.Fatalf("quiz on empty selection: %v", err)
	}
	if out != "Quiz finished: 0 correct, 0 wrong (0%)\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestNormalizeTables(t *testing.T) {
	got, err := normalizeTables([]string{" Vocab ", "labels,mapping", "items"})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := []string{"vocab_items", "labels", "item_labels"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v want %v", got, want)
	}

	if got, err := normalizeTables([]string{" ", ""}); err != nil || got != nil {
		t.Fatalf("blank list should select everything: %v %v", got, err)
	}
	if _, err := normalizeTables([]string{"words"}); err == nil {
		t.Fatalf("expected unknown table error")
	}

	dir := dataDir(t, testVocab)
	if _, err := runCLI(t, "", "export", "--data-dir", dir, "-o", filepath.Join(t.TempDir(), "b.jsonl"), "--tables", "words"); err == nil {
		t.Fatalf("export with an unknown table should fail")
	}
}
