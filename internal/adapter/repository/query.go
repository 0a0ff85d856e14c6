package repository

import (
	"cmp"
	"slices"
	"strings"

	"github.com/eslsoft/vocabulearn/internal/entity"
	repo "github.com/eslsoft/vocabulearn/internal/repository"
)

// matchVocab applies f to item in memory; itemLabels holds normalized label names per item.
func matchVocab(item *entity.VocabItem, f repo.VocabFilter, itemLabels map[int64][]string) bool {
	if f.NativePrefix != nil && !strings.HasPrefix(item.Native, *f.NativePrefix) {
		return false
	}
	if f.TransliteratedPrefix != nil && !strings.HasPrefix(item.TransliteratedText(), *f.TransliteratedPrefix) {
		return false
	}
	if f.AddedAfter != nil && item.CreatedAt.Before(*f.AddedAfter) {
		return false
	}
	if f.AddedBefore != nil && item.CreatedAt.After(*f.AddedBefore) {
		return false
	}
	if f.IDMin != nil && item.ID < *f.IDMin {
		return false
	}
	if f.IDMax != nil && item.ID > *f.IDMax {
		return false
	}
	if wanted := normalizeLowerStrings(f.Labels); len(wanted) > 0 {
		if !slices.ContainsFunc(itemLabels[item.ID], func(name string) bool {
			return slices.Contains(wanted, name)
		}) {
			return false
		}
	}
	return true
}

// sortVocab orders items by the query's primary then secondary key; id breaks remaining ties.
func sortVocab(items []*entity.VocabItem, q *repo.ListVocabQuery) {
	primary, secondary := repo.OrderByID, repo.OrderByID
	var primaryDesc, secondaryDesc bool
	if q != nil && q.PrimaryKey != "" {
		primary, primaryDesc = q.PrimaryKey, q.PrimaryDesc
		secondary, secondaryDesc = q.SecondaryKey, q.SecondaryDesc
	}
	slices.SortStableFunc(items, func(a, b *entity.VocabItem) int {
		if c := compareBy(a, b, primary, primaryDesc); c != 0 {
			return c
		}
		if c := compareBy(a, b, secondary, secondaryDesc); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func compareBy(a, b *entity.VocabItem, key string, desc bool) int {
	var c int
	switch key {
	case repo.OrderByNative:
		c = strings.Compare(a.Native, b.Native)
	case repo.OrderByAdded:
		c = a.CreatedAt.Compare(b.CreatedAt)
	default:
		c = cmp.Compare(a.ID, b.ID)
	}
	if desc {
		return -c
	}
	return c
}
