/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eslsoft/vocabulearn/internal/app"
	"github.com/eslsoft/vocabulearn/internal/entity"
	"github.com/eslsoft/vocabulearn/internal/infrastructure/config"
	"github.com/eslsoft/vocabulearn/internal/usecase"
)

const (
	quizTypeKey           = "quiz.type"
	quizNumQuestionsKey   = "quiz.num_questions"
	quizSkipIncompleteKey = "quiz.skip_incomplete"
	quizSeedKey           = "quiz.seed"
)

// quizCmd runs one interactive quiz session on stdin/stdout.
var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Run an interactive vocabulary quiz",
	Long: `Samples random entries and asks for their translation, one per line.

--type selects the direction: ntf (native to foreign), ftn (foreign to
native) or both (a random direction per question).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		direction, err := entity.ParseQuestionDirection(cfg.Quiz.Type)
		if err != nil {
			return err
		}
		filter, _ := cmd.Flags().GetString("filter")

		c, cleanup, err := app.Initialize(cfg)
		if err != nil {
			return fmt.Errorf("load vocabulary: %w", err)
		}
		defer cleanup()

		items, err := c.Vocab.Sample(ctx, cfg.Quiz.NumQuestions, filter, usecase.SampleOptions{
			Direction:      direction,
			SkipIncomplete: cfg.Quiz.SkipIncomplete,
		})
		if err != nil {
			return err
		}
		if len(items) == 0 {
			c.Logger.WithField("filter", filter).Warn("no vocabulary entries match the quiz selection")
		}

		runner := usecase.NewQuizRunner(c.Questions, cmd.InOrStdin(), cmd.OutOrStdout(), c.Logger)
		result, err := runner.Run(ctx, items, direction)
		if err != nil {
			return fmt.Errorf("quiz aborted: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), usecase.FormatSummary(result))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(quizCmd)

	quizCmd.Flags().StringP("type", "t", "both", "question direction: ntf, ftn or both")
	quizCmd.Flags().IntP("num-questions", "n", 10, "number of questions to ask")
	quizCmd.Flags().String("filter", "", "only ask entries matching this expression, e.g. \"label == 'animals'\"")
	quizCmd.Flags().Bool("skip-incomplete", false, "leave out entries without a transliteration instead of failing")
	quizCmd.Flags().Uint64("seed", 0, "random seed for a reproducible quiz (0 picks one at random)")

	bindFlagToViper(quizTypeKey, quizCmd.Flags().Lookup("type"))
	bindFlagToViper(quizNumQuestionsKey, quizCmd.Flags().Lookup("num-questions"))
	bindFlagToViper(quizSkipIncompleteKey, quizCmd.Flags().Lookup("skip-incomplete"))
	bindFlagToViper(quizSeedKey, quizCmd.Flags().Lookup("seed"))
}
