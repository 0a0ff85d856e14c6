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
	"os"

	"github.com/spf13/cobra"

	"github.com/eslsoft/vocabulearn/internal/infrastructure/config"
)

const (
	logLevelKey = "log.level"
	dataDirKey  = "data.dir"
	driverKey   = "storage.driver"
	dsnKey      = "database.dsn"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vocabulearn",
	Short: "Learn vocabulary from your own word lists",
	Long: `vocabulearn keeps a personal vocabulary list and quizzes you on it.

Entries are read from CSV files under the data directory (or from a SQLite
or PostgreSQL store) and asked in either direction.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is ./.env or ./config/.env)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding vocab.csv, labels.csv and item_labels.csv")
	rootCmd.PersistentFlags().String("driver", "", "storage driver: csv, sqlite3, postgres or pgx")
	rootCmd.PersistentFlags().String("dsn", "", "database DSN for SQL storage drivers")

	bindFlagToViper(config.ConfigFileKey, rootCmd.PersistentFlags().Lookup("config"))
	bindFlagToViper(logLevelKey, rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlagToViper(dataDirKey, rootCmd.PersistentFlags().Lookup("data-dir"))
	bindFlagToViper(driverKey, rootCmd.PersistentFlags().Lookup("driver"))
	bindFlagToViper(dsnKey, rootCmd.PersistentFlags().Lookup("dsn"))
}
