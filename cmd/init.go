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

	"github.com/eslsoft/vocabulearn/internal/adapter/repository"
	"github.com/eslsoft/vocabulearn/internal/infrastructure/config"
	"github.com/eslsoft/vocabulearn/internal/infrastructure/logging"
)

// initCmd prepares an empty store for the configured driver.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create empty data files or the SQL schema",
	Long: `With the csv driver, creates any missing vocab, labels and mapping file
with only its header row. With a SQL driver, creates the tables.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := logging.NewLogger(cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if cfg.DatabaseDriver() == config.DriverCSV {
			created, err := repository.InitFiles(repository.PathsFromConfig(cfg))
			if err != nil {
				return fmt.Errorf("create data files: %w", err)
			}
			for _, path := range created {
				fmt.Fprintf(out, "Created %s\n", path)
			}
			if len(created) == 0 {
				fmt.Fprintln(out, "Data files already exist")
			}
			return nil
		}

		_, cleanup, err := repository.NewVocabRepository(cfg, logger)
		if err != nil {
			return err
		}
		cleanup()
		fmt.Fprintf(out, "Schema ready (%s)\n", cfg.DatabaseDriver())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
