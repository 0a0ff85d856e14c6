package entity

import "testing"

func TestQuestionDirectionValid(t *testing.T) {
	for _, d := range []QuestionDirection{NativeToForeign, ForeignToNative, Bidirectional} {
		if !d.Valid() {
			t.Fatalf("%s should be valid", d)
		}
	}
	for _, d := range []QuestionDirection{-1, 3, 42} {
		if d.Valid() {
			t.Fatalf("%s should be invalid", d)
		}
	}
}
