package entity

import "strings"

// LabelType classifies what a label groups entries by.
type LabelType string

const (
	LabelTypeWordType LabelType = "WordType"
	LabelTypeWordArea LabelType = "WordArea"
	LabelTypeGroup    LabelType = "Group"
)

// Label tags vocabulary entries, e.g. "noun" (WordType) or "food" (WordArea).
type Label struct {
	ID          int64     `json:"id"`
	DisplayName string    `json:"display_name"`
	Type        LabelType `json:"label_type"`
}

// ItemLabel links a vocabulary entry to a label.
type ItemLabel struct {
	ItemID  int64 `json:"item_id"`
	LabelID int64 `json:"label_id"`
}

// ParseLabelType accepts the stored names as well as short lowercase aliases.
func ParseLabelType(raw string) (LabelType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "wordtype", "type", "word_type":
		return LabelTypeWordType, nil
	case "wordarea", "area", "word_area":
		return LabelTypeWordArea, nil
	case "group", "":
		return LabelTypeGroup, nil
	default:
		return "", ErrInvalidLabelType
	}
}

// NormalizeLabelName lowercases and trims a label display name for comparison.
func NormalizeLabelName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
