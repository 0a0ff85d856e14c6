package backup

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"time"

	"entgo.io/ent/dialect/sql/schema"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocabulearn/internal/entity"
	"github.com/eslsoft/vocabulearn/internal/infrastructure/database"
	"github.com/eslsoft/vocabulearn/internal/repository"
)

const formatVersion = 1

// Record types, named after the SQL tables they mirror and listed in
// dependency order.
const (
	TableLabels     = "labels"
	TableVocabItems = "vocab_items"
	TableItemLabels = "item_labels"
)

var allTables = []string{TableLabels, TableVocabItems, TableItemLabels}

var errNoTablesSelected = errors.New("backup: no tables selected")

type ProgressReporter interface {
	StartTable(table string, total int)
	Increment(table string, delta int)
	FinishTable(table string)
}

type noopProgress struct{}

func (noopProgress) StartTable(string, int) {}
func (noopProgress) Increment(string, int)  {}
func (noopProgress) FinishTable(string)     {}

// Service streams a vocabulary store to and from NDJSON. It works against
// any repository.VocabRepository, so a backup taken from the flat files can
// be restored into a SQL store and the other way round.
type Service struct {
	repo       repository.VocabRepository
	logger     *logrus.Logger
	schemaHash string
	now        func() time.Time
}

func NewService(repo repository.VocabRepository, logger *logrus.Logger) *Service {
	return &Service{
		repo:       repo,
		logger:     logger,
		schemaHash: computeSchemaHash(database.Tables),
		now:        time.Now,
	}
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	tables   []string
	reporter ProgressReporter
}

// WithTables restricts export to the provided record types.
func WithTables(tables []string) ExportOption {
	return func(cfg *exportConfig) {
		if len(tables) == 0 {
			return
		}
		cfg.tables = append([]string{}, tables...)
	}
}

// WithProgressReporter registers a reporter that receives progress callbacks during export.
func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	tables []string
}

// WithImportTables restricts import to the provided record types.
func WithImportTables(tables []string) ImportOption {
	return func(cfg *importConfig) {
		if len(tables) == 0 {
			return
		}
		cfg.tables = append([]string{}, tables...)
	}
}

// ImportStats counts rows written and rows skipped because the id already existed.
type ImportStats struct {
	Imported map[string]int
	Skipped  map[string]int
}

type record struct {
	Type       string         `json:"type"`
	Version    int            `json:"version,omitempty"`
	ExportedAt *time.Time     `json:"exported_at,omitempty"`
	SchemaHash string         `json:"schema_hash,omitempty"`
	Tables     []string       `json:"tables,omitempty"`
	RowCounts  map[string]int `json:"row_counts,omitempty"`
	Payload    any            `json:"payload,omitempty"`
}

type rawRecord struct {
	Type       string          `json:"type"`
	Version    int             `json:"version"`
	ExportedAt *time.Time      `json:"exported_at"`
	SchemaHash string          `json:"schema_hash"`
	Tables     []string        `json:"tables"`
	RowCounts  map[string]int  `json:"row_counts"`
	Payload    json.RawMessage `json:"payload"`
}

type labelRow struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	LabelType   string `json:"label_type"`
}

type itemLabelRow struct {
	ItemID  int64 `json:"item_id"`
	LabelID int64 `json:"label_id"`
}

// snapshot is the whole dataset, ordered for export and import.
type snapshot struct {
	labels []*entity.Label
	items  []*entity.VocabItem
	links  []entity.ItemLabel
}

func (s snapshot) count(table string) int {
	switch table {
	case TableLabels:
		return len(s.labels)
	case TableVocabItems:
		return len(s.items)
	case TableItemLabels:
		return len(s.links)
	default:
		return 0
	}
}

func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	tables, err := selectTables(cfg.tables)
	if err != nil {
		return err
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	snap, err := s.load(ctx)
	if err != nil {
		return err
	}
	counts := make(map[string]int, len(tables))
	for _, tbl := range tables {
		counts[tbl] = snap.count(tbl)
	}

	writer := bufio.NewWriter(w)
	defer writer.Flush()

	now := s.now().UTC()
	meta := record{
		Type:       "meta",
		Version:    formatVersion,
		ExportedAt: &now,
		SchemaHash: s.schemaHash,
		Tables:     tables,
		RowCounts:  counts,
	}
	if err := writeRecord(writer, meta); err != nil {
		return err
	}

	for _, tbl := range tables {
		reporter.StartTable(tbl, counts[tbl])
		for _, payload := range snap.payloads(tbl) {
			if err := writeRecord(writer, record{Type: tbl, Payload: payload}); err != nil {
				return err
			}
			reporter.Increment(tbl, 1)
		}
		reporter.FinishTable(tbl)
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{"tables": tables, "row_counts": counts}).Info("backup exported")
	return nil
}

func (s *Service) load(ctx context.Context) (snapshot, error) {
	labels, err := s.repo.Labels(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("read labels: %w", err)
	}
	items, err := s.repo.List(ctx, &repository.ListVocabQuery{PrimaryKey: repository.OrderByID})
	if err != nil {
		return snapshot{}, fmt.Errorf("read vocab items: %w", err)
	}
	links, err := s.repo.ItemLabels(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("read item labels: %w", err)
	}
	sort.Slice(labels, func(i, j int) bool { return labels[i].ID < labels[j].ID })
	return snapshot{labels: labels, items: items, links: links}, nil
}

func (s snapshot) payloads(table string) []any {
	switch table {
	case TableLabels:
		return lo.Map(s.labels, func(l *entity.Label, _ int) any {
			return labelRow{ID: l.ID, DisplayName: l.DisplayName, LabelType: string(l.Type)}
		})
	case TableVocabItems:
		return lo.Map(s.items, func(item *entity.VocabItem, _ int) any { return item })
	case TableItemLabels:
		return lo.Map(s.links, func(l entity.ItemLabel, _ int) any {
			return itemLabelRow{ItemID: l.ItemID, LabelID: l.LabelID}
		})
	default:
		return nil
	}
}

// Import reads a whole backup before touching the store, then writes labels,
// entries and mappings in that order. Rows whose id already exists are skipped.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) (ImportStats, error) {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	tables, err := selectTables(cfg.tables)
	if err != nil {
		return ImportStats{}, err
	}

	snap, meta, err := s.decode(r, tables)
	if err != nil {
		return ImportStats{}, err
	}
	if meta.SchemaHash != "" && meta.SchemaHash != s.schemaHash {
		s.logger.WithFields(logrus.Fields{
			"backup_schema": meta.SchemaHash,
			"local_schema":  s.schemaHash,
		}).Warn("backup was taken with a different schema")
	}

	stats := ImportStats{Imported: map[string]int{}, Skipped: map[string]int{}}
	tally := func(table string, err error, duplicate error) error {
		switch {
		case err == nil:
			stats.Imported[table]++
		case errors.Is(err, duplicate):
			stats.Skipped[table]++
		default:
			return err
		}
		return nil
	}

	for _, l := range snap.labels {
		_, err := s.repo.CreateLabel(ctx, l)
		if err := tally(TableLabels, err, entity.ErrDuplicateLabel); err != nil {
			return stats, fmt.Errorf("import label %d: %w", l.ID, err)
		}
	}
	for _, item := range snap.items {
		_, err := s.repo.Create(ctx, item)
		if err := tally(TableVocabItems, err, entity.ErrDuplicateVocabItem); err != nil {
			return stats, fmt.Errorf("import vocab item %d: %w", item.ID, err)
		}
	}
	for _, link := range snap.links {
		if err := s.repo.AttachLabel(ctx, link); err != nil {
			return stats, fmt.Errorf("import item label %d/%d: %w", link.ItemID, link.LabelID, err)
		}
		stats.Imported[TableItemLabels]++
	}

	s.logger.WithFields(logrus.Fields{"imported": stats.Imported, "skipped": stats.Skipped}).Info("backup imported")
	return stats, nil
}

func (s *Service) decode(r io.Reader, tables []string) (snapshot, rawRecord, error) {
	br := bufio.NewReader(r)
	var (
		snap     snapshot
		metaSeen bool
		meta     rawRecord
	)

	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return snapshot{}, rawRecord{}, fmt.Errorf("read backup: %w", err)
		}
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var rec rawRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				return snapshot{}, rawRecord{}, fmt.Errorf("decode record on line %d: %w", lineNo, err)
			}
			if rec.Type == "meta" {
				metaSeen = true
				meta = rec
			} else if slices.Contains(tables, rec.Type) {
				if len(rec.Payload) == 0 {
					return snapshot{}, rawRecord{}, fmt.Errorf("backup: missing payload for %s on line %d", rec.Type, lineNo)
				}
				if err := snap.add(rec.Type, rec.Payload); err != nil {
					return snapshot{}, rawRecord{}, fmt.Errorf("decode %s on line %d: %w", rec.Type, lineNo, err)
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if !metaSeen {
		return snapshot{}, rawRecord{}, errors.New("backup: missing meta record")
	}
	if meta.Version != formatVersion {
		return snapshot{}, rawRecord{}, fmt.Errorf("backup: unsupported format version %d", meta.Version)
	}
	return snap, meta, nil
}

func (s *snapshot) add(table string, payload json.RawMessage) error {
	switch table {
	case TableLabels:
		var row labelRow
		if err := json.Unmarshal(payload, &row); err != nil {
			return err
		}
		typ, err := entity.ParseLabelType(row.LabelType)
		if err != nil {
			return err
		}
		s.labels = append(s.labels, &entity.Label{ID: row.ID, DisplayName: row.DisplayName, Type: typ})
	case TableVocabItems:
		var item entity.VocabItem
		if err := json.Unmarshal(payload, &item); err != nil {
			return err
		}
		if item.ID <= 0 {
			return entity.ErrInvalidVocabID
		}
		s.items = append(s.items, &item)
	case TableItemLabels:
		var row itemLabelRow
		if err := json.Unmarshal(payload, &row); err != nil {
			return err
		}
		s.links = append(s.links, entity.ItemLabel{ItemID: row.ItemID, LabelID: row.LabelID})
	}
	return nil
}

func selectTables(requested []string) ([]string, error) {
	if len(requested) == 0 {
		return slices.Clone(allTables), nil
	}
	want := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		name = strings.ToLower(strings.TrimSpace(name))
		if !slices.Contains(allTables, name) {
			return nil, fmt.Errorf("backup: unknown table %q", name)
		}
		want[name] = struct{}{}
	}
	out := lo.Filter(allTables, func(name string, _ int) bool {
		_, ok := want[name]
		return ok
	})
	if len(out) == 0 {
		return nil, errNoTablesSelected
	}
	return out, nil
}

func computeSchemaHash(tables []*schema.Table) string {
	builder := &strings.Builder{}
	sortedTables := slices.Clone(tables)
	sort.Slice(sortedTables, func(i, j int) bool { return sortedTables[i].Name < sortedTables[j].Name })

	for _, tbl := range sortedTables {
		builder.WriteString(tbl.Name)
		builder.WriteString("|cols:")
		sortedCols := slices.Clone(tbl.Columns)
		sort.Slice(sortedCols, func(i, j int) bool { return sortedCols[i].Name < sortedCols[j].Name })
		for _, col := range sortedCols {
			fmt.Fprintf(builder, "%s:%d:%t:%t;", col.Name, col.Type, col.Nullable, col.Unique)
		}
		builder.WriteString("|pk:")
		for _, pk := range tbl.PrimaryKey {
			builder.WriteString(pk.Name)
			builder.WriteByte(',')
		}
		builder.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(builder.String()))
	return hex.EncodeToString(sum[:])
}

func writeRecord(w io.Writer, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return err
	}
	return nil
}
