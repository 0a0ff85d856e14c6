package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocabulearn/internal/entity"
	"github.com/eslsoft/vocabulearn/internal/repository"
	"github.com/eslsoft/vocabulearn/pkg/filterexpr"
)

// VocabUsecase covers listing, sampling and adding vocabulary entries.
type VocabUsecase interface {
	List(ctx context.Context, in repository.FilterOrder, limit int) ([]*entity.VocabItem, error)
	// Sample draws up to n distinct entries matching filter, in random order.
	Sample(ctx context.Context, n int, filter string, opts SampleOptions) ([]*entity.VocabItem, error)
	Add(ctx context.Context, in AddVocabInput) (*entity.VocabItem, error)
	Labels(ctx context.Context) ([]*entity.Label, error)
}

// SampleOptions controls which entries are eligible for a quiz.
type SampleOptions struct {
	Direction entity.QuestionDirection
	// SkipIncomplete drops entries the direction cannot ask about instead of
	// leaving them to fail question generation.
	SkipIncomplete bool
}

// AddVocabInput is a new entry plus the labels to attach to it.
type AddVocabInput struct {
	Native         string
	Transliterated string
	Original       string
	Labels         []LabelRef
}

// LabelRef names a label, creating it with Type when it does not exist yet.
type LabelRef struct {
	Name string
	Type entity.LabelType
}

// ParseLabelRef parses NAME or NAME:TYPE. Without a type the store default applies.
func ParseLabelRef(raw string) (LabelRef, error) {
	name, typ, _ := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return LabelRef{}, fmt.Errorf("%w: %q", entity.ErrInvalidLabel, raw)
	}
	if strings.TrimSpace(typ) == "" {
		return LabelRef{Name: name}, nil
	}
	lt, err := entity.ParseLabelType(typ)
	if err != nil {
		return LabelRef{}, fmt.Errorf("label %q: %w", name, err)
	}
	return LabelRef{Name: name, Type: lt}, nil
}

func NewVocabUsecase(repo repository.VocabRepository, rng *rand.Rand, logger *logrus.Logger) VocabUsecase {
	return &vocabUsecase{repo: repo, rng: rng, logger: logger}
}

type vocabUsecase struct {
	repo   repository.VocabRepository
	rng    *rand.Rand
	logger *logrus.Logger
}

func (u *vocabUsecase) List(ctx context.Context, in repository.FilterOrder, limit int) ([]*entity.VocabItem, error) {
	if limit < 0 {
		return nil, fmt.Errorf("limit must not be negative, got %d", limit)
	}
	query := &repository.ListVocabQuery{Limit: limit}
	if err := filterexpr.Bind(&in, query, repository.ListVocabSchema); err != nil {
		return nil, err
	}
	return u.repo.List(ctx, query)
}

func (u *vocabUsecase) Sample(ctx context.Context, n int, filter string, opts SampleOptions) ([]*entity.VocabItem, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", entity.ErrInvalidQuestionCount, n)
	}
	items, err := u.List(ctx, repository.FilterOrder{Filter: filter}, 0)
	if err != nil {
		return nil, err
	}
	if opts.SkipIncomplete && RequiresTransliteration(opts.Direction) {
		before := len(items)
		items = lo.Filter(items, func(item *entity.VocabItem, _ int) bool { return item.HasTransliteration() })
		if skipped := before - len(items); skipped > 0 {
			u.logger.WithField("skipped", skipped).Warn("entries without transliteration excluded from quiz")
		}
	}

	picked := sampleWithoutReplacement(u.rng, items, n)
	u.logger.WithFields(logrus.Fields{
		"requested": n,
		"eligible":  len(items),
		"sampled":   len(picked),
	}).Debug("sampled vocabulary")
	return picked, nil
}

// sampleWithoutReplacement shuffles the first min(n, len(items)) positions of
// a copy of items (partial Fisher-Yates) and returns them.
func sampleWithoutReplacement[T any](rng *rand.Rand, items []T, n int) []T {
	pool := slices.Clone(items)
	k := min(n, len(pool))
	for i := range k {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

func (u *vocabUsecase) Add(ctx context.Context, in AddVocabInput) (*entity.VocabItem, error) {
	native := strings.TrimSpace(in.Native)
	if native == "" {
		return nil, entity.ErrInvalidVocabText
	}
	translit := strings.TrimSpace(in.Transliterated)
	if translit == "" {
		return nil, entity.ErrMissingTransliteration
	}

	for _, ref := range in.Labels {
		if entity.NormalizeLabelName(ref.Name) == "" {
			return nil, fmt.Errorf("%w: %q", entity.ErrInvalidLabel, ref.Name)
		}
	}

	// labels are only created once the entry itself is stored
	item, err := u.repo.Create(ctx, &entity.VocabItem{
		Native:         native,
		Transliterated: entity.OptionalText(translit),
		Original:       entity.OptionalText(in.Original),
	})
	if err != nil {
		return nil, err
	}
	labels, err := u.resolveLabels(ctx, in.Labels)
	if err != nil {
		return nil, fmt.Errorf("entry %d added without labels: %w", item.ID, err)
	}
	for _, label := range labels {
		if err := u.repo.AttachLabel(ctx, entity.ItemLabel{ItemID: item.ID, LabelID: label.ID}); err != nil {
			return nil, fmt.Errorf("attach label %q: %w", label.DisplayName, err)
		}
	}
	return item, nil
}

// resolveLabels looks up refs by display name and creates the missing ones.
func (u *vocabUsecase) resolveLabels(ctx context.Context, refs []LabelRef) ([]*entity.Label, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	existing, err := u.repo.Labels(ctx)
	if err != nil {
		return nil, err
	}
	byName := lo.KeyBy(existing, func(l *entity.Label) string { return entity.NormalizeLabelName(l.DisplayName) })

	out := make([]*entity.Label, 0, len(refs))
	for _, ref := range refs {
		key := entity.NormalizeLabelName(ref.Name)
		if label, ok := byName[key]; ok {
			if ref.Type != "" && ref.Type != label.Type {
				u.logger.WithFields(logrus.Fields{
					"label":     label.DisplayName,
					"type":      label.Type,
					"requested": ref.Type,
				}).Warn("label exists with a different type; keeping the stored type")
			}
			out = append(out, label)
			continue
		}
		created, err := u.repo.CreateLabel(ctx, &entity.Label{DisplayName: ref.Name, Type: ref.Type})
		if err != nil {
			return nil, fmt.Errorf("create label %q: %w", ref.Name, err)
		}
		byName[key] = created
		out = append(out, created)
	}
	return lo.UniqBy(out, func(l *entity.Label) int64 { return l.ID }), nil
}

func (u *vocabUsecase) Labels(ctx context.Context) ([]*entity.Label, error) {
	return u.repo.Labels(ctx)
}
