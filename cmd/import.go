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
	"compress/gzip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/vocabulearn/internal/app"
	"github.com/eslsoft/vocabulearn/internal/usecase/backup"
)

const (
	importInputKey  = "backup.import.input"
	importGzipKey   = "backup.import.gzip"
	importTablesKey = "backup.import.tables"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an NDJSON backup into the vocabulary store",
	Long: `Reads a backup written by export and adds its labels, entries and
label mappings to the configured store, keeping their ids. Rows whose id
already exists are skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		inputPath := viper.GetString(importInputKey)
		gzipEnabled := viper.GetBool(importGzipKey)
		tableList, err := tablesFromConfig(importTablesKey)
		if err != nil {
			return err
		}

		if inputPath == "" {
			return errors.New("specify the backup file with --input, or - for stdin")
		}
		if !gzipEnabled && inputPath != "-" && strings.HasSuffix(strings.ToLower(inputPath), ".gz") {
			gzipEnabled = true
		}

		var (
			reader  = cmd.InOrStdin()
			closers []func() error
		)

		if inputPath != "-" {
			file, openErr := os.Open(filepath.Clean(inputPath))
			if openErr != nil {
				return fmt.Errorf("open backup file: %w", openErr)
			}
			reader = file
			closers = append(closers, file.Close)
		}

		if gzipEnabled {
			gzr, gzErr := gzip.NewReader(reader)
			if gzErr != nil {
				for _, closer := range closers {
					_ = closer()
				}
				return fmt.Errorf("create gzip reader: %w", gzErr)
			}
			reader = gzr
			closers = append([]func() error{gzr.Close}, closers...)
		}

		defer func() {
			for _, closer := range closers {
				if cerr := closer(); cerr != nil && err == nil {
					err = cerr
				}
			}
		}()

		var importOpts []backup.ImportOption
		if len(tableList) > 0 {
			importOpts = append(importOpts, backup.WithImportTables(tableList))
		}

		return withContainer(func(c *app.Container) error {
			stats, err := c.Backup.Import(ctx, reader, importOpts...)
			if err != nil {
				return fmt.Errorf("import backup: %w", err)
			}
			for _, table := range []string{backup.TableLabels, backup.TableVocabItems, backup.TableItemLabels} {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d imported, %d skipped\n", table, stats.Imported[table], stats.Skipped[table])
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("input", "i", "", "backup file path, - for stdin")
	importCmd.Flags().Bool("gzip", false, "input is gzip compressed")
	importCmd.Flags().StringSlice("tables", nil, "only import these record types (labels, vocab_items, item_labels)")

	bindImportConfig()
}

func bindImportConfig() {
	bindFlagToViper(importInputKey, importCmd.Flags().Lookup("input"))
	bindFlagToViper(importGzipKey, importCmd.Flags().Lookup("gzip"))
	bindFlagToViper(importTablesKey, importCmd.Flags().Lookup("tables"))
}
