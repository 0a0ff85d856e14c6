package entity

import (
	"strings"
	"time"
)

// VocabItem is one vocabulary entry. Entries are never mutated after creation.
type VocabItem struct {
	ID             int64     `json:"id"`
	Native         string    `json:"in_native_lang"`
	Transliterated *string   `json:"transliterated,omitempty"`
	Original       *string   `json:"in_original_lang,omitempty"`
	CreatedAt      time.Time `json:"time_added"`
}

// HasTransliteration reports whether the entry carries a non-empty transliterated form.
func (v *VocabItem) HasTransliteration() bool {
	return v != nil && v.Transliterated != nil && strings.TrimSpace(*v.Transliterated) != ""
}

// TransliteratedText returns the transliterated form or "" when absent.
func (v *VocabItem) TransliteratedText() string {
	if v == nil || v.Transliterated == nil {
		return ""
	}
	return *v.Transliterated
}

// OriginalText returns the original-script form or "" when absent.
func (v *VocabItem) OriginalText() string {
	if v == nil || v.Original == nil {
		return ""
	}
	return *v.Original
}

// OptionalText converts an empty string into an absent value.
func OptionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// NormalizeVocabItem trims text fields and validates the native form.
func NormalizeVocabItem(item *VocabItem) (*VocabItem, error) {
	if item == nil {
		return nil, ErrInvalidVocabText
	}
	native := strings.TrimSpace(item.Native)
	if native == "" {
		return nil, ErrInvalidVocabText
	}
	if item.ID < 0 {
		return nil, ErrInvalidVocabID
	}
	out := *item
	out.Native = native
	out.Transliterated = OptionalText(item.TransliteratedText())
	out.Original = OptionalText(item.OriginalText())
	if !out.CreatedAt.IsZero() {
		out.CreatedAt = out.CreatedAt.UTC()
	}
	return &out, nil
}
