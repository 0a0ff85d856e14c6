package entity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	alternativeSeparator = "/"
	qualifierOpen        = "("
)

// ExpectedAnswer is an expected-answer string parsed into its acceptable forms.
//
// "cat/kitten" yields alternatives CAT and KITTEN; "dog (m)" yields the
// qualifier-free stem DOG. Inside a "/" list every alternative also accepts
// its own stem, so "dog (m)/hound (m)" accepts "hound".
type ExpectedAnswer struct {
	Raw          string
	Primary      string
	Alternatives []string
	Stem         string
}

// ParseExpectedAnswer parses raw once so evaluation never rescans it.
func ParseExpectedAnswer(raw string) ExpectedAnswer {
	ans := ExpectedAnswer{Raw: raw, Primary: NormalizeAnswer(raw)}

	if strings.Contains(raw, alternativeSeparator) {
		seen := make(map[string]struct{})
		add := func(s string) {
			if s == "" {
				return
			}
			if _, ok := seen[s]; ok {
				return
			}
			seen[s] = struct{}{}
			ans.Alternatives = append(ans.Alternatives, s)
		}
		// tokens are trimmed like attempts, so "cat / kitten" accepts "kitten"
		for _, token := range strings.Split(raw, alternativeSeparator) {
			add(NormalizeAnswer(token))
			if stem, ok := qualifierStem(token); ok {
				add(stem)
			}
		}
		return ans
	}

	if stem, ok := qualifierStem(raw); ok {
		ans.Stem = stem
	}
	return ans
}

// HasAlternatives reports whether raw was a "/" list.
func (a ExpectedAnswer) HasAlternatives() bool { return len(a.Alternatives) > 0 }

// NormalizeAnswer trims surrounding whitespace and case-folds s.
func NormalizeAnswer(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	return strings.ToUpper(cases.Fold().String(s))
}

func qualifierStem(s string) (string, bool) {
	idx := strings.Index(s, qualifierOpen)
	if idx < 0 {
		return "", false
	}
	stem := NormalizeAnswer(s[:idx])
	return stem, stem != ""
}
