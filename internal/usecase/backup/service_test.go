package backup

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	adapterrepo "github.com/eslsoft/vocabulearn/internal/adapter/repository"
	"github.com/eslsoft/vocabulearn/internal/entity"
	"github.com/eslsoft/vocabulearn/internal/infrastructure/config"
	"github.com/eslsoft/vocabulearn/internal/infrastructure/logging"
	"github.com/eslsoft/vocabulearn/internal/repository"
)

func TestServiceExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()

	src := newFileRepo(t)
	seedData(t, ctx, src)

	exporter := NewService(src, logging.Discard())
	var buf bytes.Buffer
	if err := exporter.Export(ctx, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	dst := newFileRepo(t)
	importer := NewService(dst, logging.Discard())
	stats, err := importer.Import(ctx, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if stats.Imported[TableVocabItems] != 3 || stats.Imported[TableLabels] != 2 || stats.Imported[TableItemLabels] != 3 {
		t.Fatalf("unexpected import stats %+v", stats)
	}

	want := snapshotRepo(t, ctx, src)
	if got := snapshotRepo(t, ctx, dst); !reflect.DeepEqual(want, got) {
		t.Fatalf("dataset mismatch after import:\nwant %#v\ngot  %#v", want, got)
	}

	again, err := importer.Import(ctx, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("re-import failed: %v", err)
	}
	if again.Skipped[TableVocabItems] != 3 || again.Imported[TableVocabItems] != 0 {
		t.Fatalf("re-import should skip existing ids, got %+v", again)
	}
}

func TestServiceExportFormat(t *testing.T) {
	ctx := context.Background()
	src := newFileRepo(t)
	seedData(t, ctx, src)

	svc := NewService(src, logging.Discard())
	svc.now = func() time.Time { return time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC) }

	progress := &recordingProgress{}
	var buf bytes.Buffer
	if err := svc.Export(ctx, &buf, WithTables([]string{"VOCAB_ITEMS"}), WithProgressReporter(progress)); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected meta + 3 rows, got %d lines", len(lines))
	}
	var meta rawRecord
	if err := json.Unmarshal([]byte(lines[0]), &meta); err != nil {
		t.Fatalf("decode meta: %v", err)
	}
	if meta.Type != "meta" || meta.Version != formatVersion || meta.RowCounts[TableVocabItems] != 3 || meta.SchemaHash == "" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if !meta.ExportedAt.Equal(svc.now()) {
		t.Fatalf("unexpected exported_at %v", meta.ExportedAt)
	}
	if !strings.Contains(lines[1], `"in_native_lang":"gato"`) || !strings.Contains(lines[1], `"time_added":"2021-03-01T10:00:00Z"`) {
		t.Fatalf("unexpected first row %s", lines[1])
	}
	if progress.started[TableVocabItems] != 3 || progress.counted[TableVocabItems] != 3 || !progress.finished[TableVocabItems] {
		t.Fatalf("unexpected progress %+v", progress)
	}

	if err := svc.Export(ctx, &buf, WithTables([]string{"words"})); err == nil {
		t.Fatalf("expected unknown table error")
	}
}

func TestServiceImportRejectsBadStreams(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		"missing meta": `{"type":"labels","payload":{"id":1,"display_name":"x","label_type":"Group"}}` + "\n",
		"bad version":  `{"type":"meta","version":9}` + "\n",
		"bad json":     `{"type":"meta","version":1}` + "\n{not json\n",
		"no payload":   `{"type":"meta","version":1}` + "\n" + `{"type":"vocab_items"}` + "\n",
		"bad label":    `{"type":"meta","version":1}` + "\n" + `{"type":"labels","payload":{"id":1,"display_name":"x","label_type":"Colour"}}` + "\n",
	}
	for name, stream := range cases {
		dst := newFileRepo(t)
		if _, err := NewService(dst, logging.Discard()).Import(ctx, strings.NewReader(stream)); err == nil {
			t.Fatalf("%s: expected import error", name)
		}
		items, _ := dst.List(ctx, nil)
		labels, _ := dst.Labels(ctx)
		if len(items) != 0 || len(labels) != 0 {
			t.Fatalf("%s: failed import must not write anything", name)
		}
	}
}

func TestServiceImportIntoSQLite(t *testing.T) {
	requireSQLite(t)
	ctx := context.Background()

	src := newFileRepo(t)
	seedData(t, ctx, src)
	var buf bytes.Buffer
	if err := NewService(src, logging.Discard()).Export(ctx, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	cfg := &config.Config{
		Storage:  config.StorageConfig{Driver: config.DriverSQLite},
		Database: config.DatabaseConfig{DSN: "file:" + filepath.Join(t.TempDir(), "dst.db") + "?_fk=1"},
	}
	dst, cleanup, err := adapterrepo.NewVocabRepository(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(cleanup)

	if _, err := NewService(dst, logging.Discard()).Import(ctx, bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	want := snapshotRepo(t, ctx, src)
	if got := snapshotRepo(t, ctx, dst); !reflect.DeepEqual(want, got) {
		t.Fatalf("dataset mismatch after import:\nwant %#v\ngot  %#v", want, got)
	}
}

func newFileRepo(t *testing.T) *adapterrepo.FileVocabRepository {
	t.Helper()
	dir := t.TempDir()
	paths := adapterrepo.FilePaths{
		Vocab:   filepath.Join(dir, "vocab.csv"),
		Labels:  filepath.Join(dir, "labels.csv"),
		Mapping: filepath.Join(dir, "item_labels.csv"),
	}
	if _, err := adapterrepo.InitFiles(paths); err != nil {
		t.Fatalf("init files: %v", err)
	}
	r, err := adapterrepo.NewFileVocabRepository(paths, logging.Discard())
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	return r
}

func seedData(t *testing.T, ctx context.Context, r repository.VocabRepository) {
	t.Helper()
	base := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, item := range []*entity.VocabItem{
		{Native: "gato", Transliterated: entity.OptionalText("cat")},
		{Native: "perro", Transliterated: entity.OptionalText("dog/hound")},
		{Native: "casa", Original: entity.OptionalText("house")},
	} {
		item.CreatedAt = base.AddDate(0, 0, i)
		if _, err := r.Create(ctx, item); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}
	for _, l := range []*entity.Label{
		{DisplayName: "Animals", Type: entity.LabelTypeWordArea},
		{DisplayName: "Noun", Type: entity.LabelTypeWordType},
	} {
		if _, err := r.CreateLabel(ctx, l); err != nil {
			t.Fatalf("seed label: %v", err)
		}
	}
	for _, link := range []entity.ItemLabel{{ItemID: 1, LabelID: 1}, {ItemID: 2, LabelID: 1}, {ItemID: 3, LabelID: 2}} {
		if err := r.AttachLabel(ctx, link); err != nil {
			t.Fatalf("seed link: %v", err)
		}
	}
}

type datasetSnapshot struct {
	Items  []entity.VocabItem
	Labels []entity.Label
	Links  []entity.ItemLabel
}

func snapshotRepo(t *testing.T, ctx context.Context, r repository.VocabRepository) datasetSnapshot {
	t.Helper()
	items, err := r.List(ctx, nil)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	labels, err := r.Labels(ctx)
	if err != nil {
		t.Fatalf("list labels: %v", err)
	}
	links, err := r.ItemLabels(ctx)
	if err != nil {
		t.Fatalf("list links: %v", err)
	}
	var snap datasetSnapshot
	for _, item := range items {
		snap.Items = append(snap.Items, *item)
	}
	for _, l := range labels {
		snap.Labels = append(snap.Labels, *l)
	}
	snap.Links = links
	return snap
}

type recordingProgress struct {
	started  map[string]int
	counted  map[string]int
	finished map[string]bool
}

func (p *recordingProgress) StartTable(table string, total int) {
	if p.started == nil {
		p.started, p.counted, p.finished = map[string]int{}, map[string]int{}, map[string]bool{}
	}
	p.started[table] = total
}

func (p *recordingProgress) Increment(table string, delta int) { p.counted[table] += delta }

func (p *recordingProgress) FinishTable(table string) { p.finished[table] = true }

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
