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
	"time"

	"github.com/spf13/cobra"

	"github.com/eslsoft/vocabulearn/internal/app"
	"github.com/eslsoft/vocabulearn/internal/infrastructure/config"
	"github.com/eslsoft/vocabulearn/internal/repository"
	"github.com/eslsoft/vocabulearn/internal/usecase"
)

// vocabCmd groups the commands that read or extend the vocabulary list.
var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Manage vocabulary entries",
}

var vocabAddCmd = &cobra.Command{
	Use:   "add <native> <transliterated>",
	Short: "Append a new entry to the vocabulary list",
	Example: `  vocabulearn vocab add gato cat
  vocabulearn vocab add perro "dog/hound" --label animals:WordArea --label noun:WordType`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		original, _ := cmd.Flags().GetString("original")
		rawLabels, _ := cmd.Flags().GetStringArray("label")

		labels := make([]usecase.LabelRef, 0, len(rawLabels))
		for _, raw := range rawLabels {
			ref, err := usecase.ParseLabelRef(raw)
			if err != nil {
				return err
			}
			labels = append(labels, ref)
		}

		return withContainer(func(c *app.Container) error {
			item, err := c.Vocab.Add(cmd.Context(), usecase.AddVocabInput{
				Native:         args[0],
				Transliterated: args[1],
				Original:       original,
				Labels:         labels,
			})
			if err != nil {
				return fmt.Errorf("add vocab item: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added entry %d: %s = %s\n", item.ID, item.Native, item.TransliteratedText())
			return nil
		})
	},
}

var vocabListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print vocabulary entries as tab-separated lines",
	Long: `Prints id, native text, transliteration, original script and time added.

--filter accepts a conjunction of: label == 'x', label in ['x', 'y'],
native.startsWith('x'), transliterated.startsWith('x'),
added >= timestamp('2024-01-01T00:00:00Z'), added <= ..., id >= n, id <= n.
--order-by accepts up to two of id, native, added with asc or desc.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		orderBy, _ := cmd.Flags().GetString("order-by")
		limit, _ := cmd.Flags().GetInt("limit")

		return withContainer(func(c *app.Container) error {
			items, err := c.Vocab.List(cmd.Context(), repository.FilterOrder{Filter: filter, OrderBy: orderBy}, limit)
			if err != nil {
				return fmt.Errorf("list vocab items: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, item := range items {
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n",
					item.ID, item.Native, item.TransliteratedText(), item.OriginalText(),
					item.CreatedAt.UTC().Format(time.RFC3339))
			}
			return nil
		})
	},
}

var vocabLabelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Print the known labels as tab-separated lines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(func(c *app.Container) error {
			labels, err := c.Vocab.Labels(cmd.Context())
			if err != nil {
				return fmt.Errorf("list labels: %w", err)
			}
			for _, l := range labels {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", l.ID, l.DisplayName, l.Type)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(vocabCmd)
	vocabCmd.AddCommand(vocabAddCmd, vocabListCmd, vocabLabelsCmd)

	vocabAddCmd.Flags().String("original", "", "the word in its original script")
	vocabAddCmd.Flags().StringArray("label", nil, "attach a label, NAME or NAME:TYPE (WordType, WordArea, Group); repeatable")

	vocabListCmd.Flags().String("filter", "", "filter expression")
	vocabListCmd.Flags().String("order-by", "", "order expression, e.g. \"added desc, id\"")
	vocabListCmd.Flags().Int("limit", 0, "maximum number of entries (0 for all)")
}

// withContainer loads configuration, wires the application and runs fn.
func withContainer(fn func(c *app.Container) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c, cleanup, err := app.Initialize(cfg)
	if err != nil {
		return fmt.Errorf("load vocabulary: %w", err)
	}
	defer cleanup()
	return fn(c)
}
