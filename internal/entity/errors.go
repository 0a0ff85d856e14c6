package entity

import "errors"

// Domain errors for vocabulary entries, labels and quiz sessions.
var (
	ErrVocabItemNotFound      = errors.New("vocab item not found")
	ErrDuplicateVocabItem     = errors.New("vocab item already exists")
	ErrInvalidVocabText       = errors.New("invalid vocab text")
	ErrInvalidVocabID         = errors.New("invalid vocab item ID")
	ErrLabelNotFound          = errors.New("label not found")
	ErrDuplicateLabel         = errors.New("label already exists")
	ErrInvalidLabel           = errors.New("invalid label")
	ErrInvalidLabelType       = errors.New("invalid label type")
	ErrMissingTransliteration = errors.New("vocab item has no transliterated text")
	ErrInvalidDirection       = errors.New("invalid question direction")
	ErrInvalidQuestionCount   = errors.New("number of questions must be positive")
	ErrInputClosed            = errors.New("answer input closed")
	ErrSessionFinished        = errors.New("quiz session already finished")
	ErrNoPendingQuestion      = errors.New("no question is awaiting an answer")
	ErrAnswerPending          = errors.New("current question has not been answered")
)
