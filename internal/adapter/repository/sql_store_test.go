package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/eslsoft/vocabulearn/internal/entity"
	"github.com/eslsoft/vocabulearn/internal/infrastructure/config"
	"github.com/eslsoft/vocabulearn/internal/infrastructure/logging"
	repo "github.com/eslsoft/vocabulearn/internal/repository"
)

func newSQLiteRepository(t *testing.T) *SQLVocabRepository {
	t.Helper()
	requireSQLite(t)

	cfg := &config.Config{
		Storage:  config.StorageConfig{Driver: config.DriverSQLite},
		Database: config.DatabaseConfig{DSN: "file:" + filepath.Join(t.TempDir(), "vocab.db") + "?_fk=1"},
	}
	r, cleanup, err := NewVocabRepository(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(cleanup)

	sqlRepo, ok := r.(*SQLVocabRepository)
	if !ok {
		t.Fatalf("expected *SQLVocabRepository, got %T", r)
	}
	return sqlRepo
}

func seedSQLRepository(t *testing.T, r repo.VocabRepository) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, item := range []*entity.VocabItem{
		{Native: "cat", Transliterated: entity.OptionalText("gato")},
		{Native: "dog", Transliterated: entity.OptionalText("perro/can")},
		{Native: "house", Original: entity.OptionalText("casa")},
	} {
		item.CreatedAt = base.AddDate(0, 0, i)
		if _, err := r.Create(ctx, item); err != nil {
			t.Fatalf("seed item %q: %v", item.Native, err)
		}
	}
	noun, err := r.CreateLabel(ctx, &entity.Label{DisplayName: "Noun", Type: entity.LabelTypeWordType})
	if err != nil {
		t.Fatalf("seed label: %v", err)
	}
	animals, err := r.CreateLabel(ctx, &entity.Label{DisplayName: "Animals", Type: entity.LabelTypeWordArea})
	if err != nil {
		t.Fatalf("seed label: %v", err)
	}
	for _, link := range []entity.ItemLabel{
		{ItemID: 1, LabelID: noun.ID},
		{ItemID: 1, LabelID: animals.ID},
		{ItemID: 2, LabelID: animals.ID},
	} {
		if err := r.AttachLabel(ctx, link); err != nil {
			t.Fatalf("seed link %+v: %v", link, err)
		}
	}
}

func TestSQLVocabRepository_CreateAndGet(t *testing.T) {
	r := newSQLiteRepository(t)
	seedSQLRepository(t, r)
	ctx := context.Background()

	got, err := r.GetByID(ctx, 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Native != "dog" || got.TransliteratedText() != "perro/can" || got.Original != nil {
		t.Fatalf("unexpected item %+v", got)
	}
	if !got.CreatedAt.Equal(time.Date(2021, 3, 2, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created_at %v", got.CreatedAt)
	}

	house, _ := r.GetByID(ctx, 3)
	if house.HasTransliteration() || house.OriginalText() != "casa" {
		t.Fatalf("unexpected optional columns %+v", house)
	}

	if _, err := r.GetByID(ctx, 42); !errors.Is(err, entity.ErrVocabItemNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := r.Create(ctx, &entity.VocabItem{ID: 1, Native: "again"}); !errors.Is(err, entity.ErrDuplicateVocabItem) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if _, err := r.CreateLabel(ctx, &entity.Label{DisplayName: " animals "}); !errors.Is(err, entity.ErrDuplicateLabel) {
		t.Fatalf("expected duplicate label, got %v", err)
	}
	if err := r.AttachLabel(ctx, entity.ItemLabel{ItemID: 3, LabelID: 99}); !errors.Is(err, entity.ErrLabelNotFound) {
		t.Fatalf("expected label not found, got %v", err)
	}
}

func TestSQLVocabRepository_List(t *testing.T) {
	r := newSQLiteRepository(t)
	seedSQLRepository(t, r)
	ctx := context.Background()

	all, err := r.List(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if ids := itemIDs(all); ids != "1,2,3" {
		t.Fatalf("default order: got %s", ids)
	}

	items, err := r.List(ctx, &repo.ListVocabQuery{VocabFilter: repo.VocabFilter{Labels: []string{"ANIMALS"}}})
	if err != nil {
		t.Fatalf("label filter: %v", err)
	}
	if ids := itemIDs(items); ids != "1,2" {
		t.Fatalf("label filter: got %s", ids)
	}

	items, _ = r.List(ctx, &repo.ListVocabQuery{VocabFilter: repo.VocabFilter{Labels: []string{"unknown"}}})
	if len(items) != 0 {
		t.Fatalf("unknown label should match nothing, got %d", len(items))
	}

	prefix := "ho"
	items, _ = r.List(ctx, &repo.ListVocabQuery{VocabFilter: repo.VocabFilter{NativePrefix: &prefix}})
	if ids := itemIDs(items); ids != "3" {
		t.Fatalf("prefix filter: got %s", ids)
	}

	minID := int64(2)
	items, _ = r.List(ctx, &repo.ListVocabQuery{
		VocabFilter: repo.VocabFilter{IDMin: &minID},
		PrimaryKey:  repo.OrderByAdded, PrimaryDesc: true,
		Limit: 1,
	})
	if ids := itemIDs(items); ids != "3" {
		t.Fatalf("ordered limit: got %s", ids)
	}
}

func TestSQLVocabRepository_ItemLabels(t *testing.T) {
	r := newSQLiteRepository(t)
	seedSQLRepository(t, r)
	ctx := context.Background()

	if err := r.AttachLabel(ctx, entity.ItemLabel{ItemID: 1, LabelID: 1}); err != nil {
		t.Fatalf("re-attach should be a no-op: %v", err)
	}
	links, err := r.ItemLabels(ctx)
	if err != nil {
		t.Fatalf("item labels: %v", err)
	}
	want := []entity.ItemLabel{{ItemID: 1, LabelID: 1}, {ItemID: 1, LabelID: 2}, {ItemID: 2, LabelID: 2}}
	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %+v", len(want), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Fatalf("link %d: want %+v got %+v", i, want[i], links[i])
		}
	}

	labels, _ := r.Labels(ctx)
	if len(labels) != 2 || labels[0].Type != entity.LabelTypeWordType {
		t.Fatalf("unexpected labels %+v", labels)
	}
}

func requireSQLite(t *testing.T) {
	t.Helper()
	db, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	if err != nil {
		t.Skipf("sqlite driver not available: %v", err)
		return
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Skipf("skipping sqlite-dependent tests: %v", err)
	}
}
