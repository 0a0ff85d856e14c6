package repository

import (
	"strings"

	"github.com/samber/lo"

	"github.com/eslsoft/vocabulearn/internal/entity"
)

// normalizeLowerStrings lowercases, trims and deduplicates label names.
func normalizeLowerStrings(in []string) []string {
	out := lo.Uniq(lo.FilterMap(in, func(item string, _ int) (string, bool) {
		name := entity.NormalizeLabelName(item)
		return name, name != ""
	}))
	if len(out) == 0 {
		return nil
	}
	return out
}

func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func normalizeDisplayName(name string) string {
	return strings.TrimSpace(name)
}
