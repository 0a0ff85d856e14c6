package repository

import (
	"context"
	"time"

	"github.com/eslsoft/vocabulearn/internal/entity"
)

// VocabFilter narrows the entries returned by List. Nil or empty fields match everything.
type VocabFilter struct {
	Labels               []string
	NativePrefix         *string
	TransliteratedPrefix *string
	AddedAfter           *time.Time
	AddedBefore          *time.Time
	IDMin                *int64
	IDMax                *int64
}

// ListVocabQuery is populated by filterexpr.Bind; order keys are id, native or added.
type ListVocabQuery struct {
	VocabFilter

	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool

	Limit int
}

// VocabRepository defines data access for the vocabulary dataset.
type VocabRepository interface {
	List(ctx context.Context, query *ListVocabQuery) ([]*entity.VocabItem, error)
	GetByID(ctx context.Context, id int64) (*entity.VocabItem, error)
	// Create persists item. A zero ID is assigned the next free id.
	Create(ctx context.Context, item *entity.VocabItem) (*entity.VocabItem, error)

	Labels(ctx context.Context) ([]*entity.Label, error)
	CreateLabel(ctx context.Context, label *entity.Label) (*entity.Label, error)
	ItemLabels(ctx context.Context) ([]entity.ItemLabel, error)
	AttachLabel(ctx context.Context, link entity.ItemLabel) error
}
