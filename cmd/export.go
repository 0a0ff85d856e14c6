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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/vocabulearn/internal/app"
	"github.com/eslsoft/vocabulearn/internal/usecase/backup"
)

const (
	exportOutputKey = "backup.export.output"
	exportGzipKey   = "backup.export.gzip"
	exportTablesKey = "backup.export.tables"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the vocabulary store as an NDJSON backup",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		outputPath := viper.GetString(exportOutputKey)
		gzipEnabled := viper.GetBool(exportGzipKey)
		tableList, err := tablesFromConfig(exportTablesKey)
		if err != nil {
			return err
		}

		if outputPath == "" {
			outputPath = defaultExportFilename(gzipEnabled)
		}
		if !gzipEnabled && outputPath != "-" && strings.HasSuffix(strings.ToLower(outputPath), ".gz") {
			gzipEnabled = true
		}

		return withContainer(func(c *app.Container) (err error) {
			var (
				writer   = cmd.OutOrStdout()
				closeFns []func() error
			)

			if outputPath != "-" {
				if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
					return fmt.Errorf("create output directory: %w", err)
				}
				file, openErr := os.Create(outputPath)
				if openErr != nil {
					return fmt.Errorf("create backup file: %w", openErr)
				}
				writer = file
				closeFns = append(closeFns, file.Close)
			}

			if gzipEnabled {
				gz := gzip.NewWriter(writer)
				writer = gz
				closeFns = append([]func() error{gz.Close}, closeFns...)
			}

			defer func() {
				for _, closer := range closeFns {
					if cerr := closer(); cerr != nil && err == nil {
						err = cerr
					}
				}
			}()

			exportOpts := []backup.ExportOption{backup.WithProgressReporter(newCLIProgress(cmd.ErrOrStderr()))}
			if len(tableList) > 0 {
				exportOpts = append(exportOpts, backup.WithTables(tableList))
			}
			if err := c.Backup.Export(ctx, writer, exportOpts...); err != nil {
				return fmt.Errorf("export backup: %w", err)
			}

			if outputPath == "-" {
				fmt.Fprintln(cmd.ErrOrStderr(), "Export finished: written to stdout")
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "Export finished: %s\n", outputPath)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "backup file path, - for stdout")
	exportCmd.Flags().Bool("gzip", false, "gzip the output")
	exportCmd.Flags().StringSlice("tables", nil, "only export these record types (labels, vocab_items, item_labels)")

	bindExportConfig()
}

func defaultExportFilename(gzipEnabled bool) string {
	ts := time.Now().UTC().Format("20060102-150405")
	filename := fmt.Sprintf("vocabulearn-backup-%s.jsonl", ts)
	if gzipEnabled {
		filename += ".gz"
	}
	return filename
}

func bindExportConfig() {
	bindFlagToViper(exportOutputKey, exportCmd.Flags().Lookup("output"))
	bindFlagToViper(exportGzipKey, exportCmd.Flags().Lookup("gzip"))
	bindFlagToViper(exportTablesKey, exportCmd.Flags().Lookup("tables"))
}

type cliProgress struct {
	out    io.Writer
	totals map[string]int
	counts map[string]int
}

func newCLIProgress(out io.Writer) *cliProgress {
	return &cliProgress{
		out:    out,
		totals: make(map[string]int),
		counts: make(map[string]int),
	}
}

func (p *cliProgress) StartTable(table string, total int) {
	p.totals[table] = max(total, 0)
	p.counts[table] = 0
}

func (p *cliProgress) Increment(table string, delta int) {
	if delta > 0 {
		p.counts[table] += delta
	}
}

func (p *cliProgress) FinishTable(table string) {
	fmt.Fprintf(p.out, "Exported %s: %d/%d rows\n", table, p.counts[table], p.totals[table])
	delete(p.counts, table)
	delete(p.totals, table)
}
