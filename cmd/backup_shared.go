package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eslsoft/vocabulearn/internal/usecase/backup"
)

// tableAliases maps the names users tend to type onto backup record types.
var tableAliases = map[string]string{
	backup.TableLabels:     backup.TableLabels,
	"label":                backup.TableLabels,
	backup.TableVocabItems: backup.TableVocabItems,
	"vocab":                backup.TableVocabItems,
	"items":                backup.TableVocabItems,
	backup.TableItemLabels: backup.TableItemLabels,
	"mapping":              backup.TableItemLabels,
	"links":                backup.TableItemLabels,
}

// tablesFromConfig reads a --tables list from viper. An empty list selects
// every record type.
func tablesFromConfig(key string) ([]string, error) {
	return normalizeTables(viper.GetStringSlice(key))
}

func normalizeTables(values []string) ([]string, error) {
	result := make([]string, 0, len(values))
	for _, value := range values {
		// viper hands env values over as one comma separated string
		for _, name := range strings.Split(value, ",") {
			name = strings.ToLower(strings.TrimSpace(name))
			if name == "" {
				continue
			}
			table, ok := tableAliases[name]
			if !ok {
				return nil, fmt.Errorf("unknown table %q (want %s, %s or %s)",
					name, backup.TableLabels, backup.TableVocabItems, backup.TableItemLabels)
			}
			result = append(result, table)
		}
	}
	if len(result) == 0 {
		return nil, nil
	}
	return lo.Uniq(result), nil
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}
