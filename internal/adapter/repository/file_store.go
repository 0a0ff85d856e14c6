package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocabulearn/internal/entity"
	repo "github.com/eslsoft/vocabulearn/internal/repository"
)

var (
	vocabHeader   = []string{"id", "in_native_lang", "transliterated", "in_original_lang", "time_added"}
	labelsHeader  = []string{"id", "display_name", "label_type"}
	mappingHeader = []string{"item_id", "label_id"}
)

// FilePaths locates the three CSV files of the flat-file dataset.
type FilePaths struct {
	Vocab   string
	Labels  string
	Mapping string
}

// FileVocabRepository keeps the dataset in memory and rewrites a file
// atomically (temp file + rename) on every change.
type FileVocabRepository struct {
	paths  FilePaths
	logger *logrus.Logger
	now    func() time.Time

	items  []*entity.VocabItem
	byID   map[int64]*entity.VocabItem
	labels []*entity.Label
	links  []entity.ItemLabel
}

var _ repo.VocabRepository = (*FileVocabRepository)(nil)

// NewFileVocabRepository loads the dataset. All three files must exist; run
// InitFiles first for a fresh data directory.
func NewFileVocabRepository(paths FilePaths, logger *logrus.Logger) (*FileVocabRepository, error) {
	r := &FileVocabRepository{paths: paths, logger: logger, now: time.Now}

	items, err := readVocabFile(paths.Vocab)
	if err != nil {
		return nil, fmt.Errorf("load vocab: %w", err)
	}
	labels, err := readLabelsFile(paths.Labels)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	links, err := readMappingFile(paths.Mapping)
	if err != nil {
		return nil, fmt.Errorf("load label mapping: %w", err)
	}

	r.items = items
	r.byID = lo.KeyBy(items, func(item *entity.VocabItem) int64 { return item.ID })
	if len(r.byID) != len(items) {
		return nil, fmt.Errorf("load vocab: %s: %w", paths.Vocab, entity.ErrDuplicateVocabItem)
	}
	r.labels = labels
	labelIDs := lo.KeyBy(labels, func(l *entity.Label) int64 { return l.ID })
	if len(labelIDs) != len(labels) {
		return nil, fmt.Errorf("load labels: %s: %w", paths.Labels, entity.ErrDuplicateLabel)
	}
	for _, link := range links {
		if _, ok := r.byID[link.ItemID]; !ok {
			return nil, fmt.Errorf("load label mapping: item %d: %w", link.ItemID, entity.ErrVocabItemNotFound)
		}
		if _, ok := labelIDs[link.LabelID]; !ok {
			return nil, fmt.Errorf("load label mapping: label %d: %w", link.LabelID, entity.ErrLabelNotFound)
		}
	}
	r.links = links

	logger.WithFields(logrus.Fields{
		"entries":  len(items),
		"labels":   len(labels),
		"mappings": len(links),
	}).Debug("loaded flat-file vocabulary")
	return r, nil
}

// InitFiles creates any missing dataset file with only its header row.
func InitFiles(paths FilePaths) ([]string, error) {
	var created []string
	for _, f := range []struct {
		path   string
		header []string
	}{
		{paths.Vocab, vocabHeader},
		{paths.Labels, labelsHeader},
		{paths.Mapping, mappingHeader},
	} {
		if _, err := os.Stat(f.path); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return created, err
		}
		if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
			return created, fmt.Errorf("create data directory: %w", err)
		}
		if err := writeCSVAtomic(f.path, f.header, nil); err != nil {
			return created, err
		}
		created = append(created, f.path)
	}
	return created, nil
}

func (r *FileVocabRepository) List(_ context.Context, q *repo.ListVocabQuery) ([]*entity.VocabItem, error) {
	var filter repo.VocabFilter
	if q != nil {
		filter = q.VocabFilter
	}
	itemLabels := r.labelNamesByItem()
	out := lo.FilterMap(r.items, func(item *entity.VocabItem, _ int) (*entity.VocabItem, bool) {
		if !matchVocab(item, filter, itemLabels) {
			return nil, false
		}
		cp := *item
		return &cp, true
	})
	sortVocab(out, q)
	if q != nil && q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *FileVocabRepository) GetByID(_ context.Context, id int64) (*entity.VocabItem, error) {
	item, ok := r.byID[id]
	if !ok {
		return nil, entity.ErrVocabItemNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *FileVocabRepository) Create(_ context.Context, item *entity.VocabItem) (*entity.VocabItem, error) {
	norm, err := entity.NormalizeVocabItem(item)
	if err != nil {
		return nil, err
	}
	if norm.ID == 0 {
		for _, existing := range r.items {
			norm.ID = max(norm.ID, existing.ID)
		}
		norm.ID++
	} else if _, exists := r.byID[norm.ID]; exists {
		return nil, entity.ErrDuplicateVocabItem
	}
	if norm.CreatedAt.IsZero() {
		norm.CreatedAt = r.now().UTC()
	}

	items := append(slices.Clone(r.items), norm)
	if err := writeVocabFile(r.paths.Vocab, items); err != nil {
		return nil, fmt.Errorf("persist vocab: %w", err)
	}
	r.items = items
	r.byID[norm.ID] = norm

	r.logger.WithFields(logrus.Fields{"id": norm.ID, "native": norm.Native}).Info("vocab item added")
	cp := *norm
	return &cp, nil
}

func (r *FileVocabRepository) Labels(_ context.Context) ([]*entity.Label, error) {
	return lo.Map(r.labels, func(l *entity.Label, _ int) *entity.Label {
		cp := *l
		return &cp
	}), nil
}

func (r *FileVocabRepository) CreateLabel(_ context.Context, label *entity.Label) (*entity.Label, error) {
	if label == nil || strings.TrimSpace(label.DisplayName) == "" || label.ID < 0 {
		return nil, entity.ErrInvalidLabel
	}
	cp := *label
	cp.DisplayName = strings.TrimSpace(cp.DisplayName)
	if cp.Type == "" {
		cp.Type = entity.LabelTypeGroup
	}
	for _, existing := range r.labels {
		if existing.ID == cp.ID || entity.NormalizeLabelName(existing.DisplayName) == entity.NormalizeLabelName(cp.DisplayName) {
			return nil, entity.ErrDuplicateLabel
		}
	}
	if cp.ID == 0 {
		for _, existing := range r.labels {
			cp.ID = max(cp.ID, existing.ID)
		}
		cp.ID++
	}

	labels := append(slices.Clone(r.labels), &cp)
	if err := writeCSVAtomic(r.paths.Labels, labelsHeader, labelRows(labels)); err != nil {
		return nil, fmt.Errorf("persist labels: %w", err)
	}
	r.labels = labels
	out := cp
	return &out, nil
}

func (r *FileVocabRepository) ItemLabels(_ context.Context) ([]entity.ItemLabel, error) {
	return slices.Clone(r.links), nil
}

func (r *FileVocabRepository) AttachLabel(_ context.Context, link entity.ItemLabel) error {
	if _, ok := r.byID[link.ItemID]; !ok {
		return entity.ErrVocabItemNotFound
	}
	if !slices.ContainsFunc(r.labels, func(l *entity.Label) bool { return l.ID == link.LabelID }) {
		return entity.ErrLabelNotFound
	}
	if slices.Contains(r.links, link) {
		return nil
	}
	links := append(slices.Clone(r.links), link)
	if err := writeCSVAtomic(r.paths.Mapping, mappingHeader, mappingRows(links)); err != nil {
		return fmt.Errorf("persist label mapping: %w", err)
	}
	r.links = links
	return nil
}

func (r *FileVocabRepository) labelNamesByItem() map[int64][]string {
	names := make(map[int64]string, len(r.labels))
	for _, l := range r.labels {
		names[l.ID] = entity.NormalizeLabelName(l.DisplayName)
	}
	out := make(map[int64][]string)
	for _, link := range r.links {
		out[link.ItemID] = append(out[link.ItemID], names[link.LabelID])
	}
	return out
}

// csv encoding

func readVocabFile(path string) ([]*entity.VocabItem, error) {
	var items []*entity.VocabItem
	err := readCSV(path, vocabHeader, func(line int, get func(string) string) error {
		id, err := strconv.ParseInt(get("id"), 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("line %d: %w: %q", line, entity.ErrInvalidVocabID, get("id"))
		}
		addedRaw := get("time_added")
		added, err := time.Parse(time.RFC3339Nano, addedRaw)
		if err != nil {
			return fmt.Errorf("line %d: invalid time_added %q: %w", line, addedRaw, err)
		}
		item, err := entity.NormalizeVocabItem(&entity.VocabItem{
			ID:             id,
			Native:         get("in_native_lang"),
			Transliterated: entity.OptionalText(get("transliterated")),
			Original:       entity.OptionalText(get("in_original_lang")),
			CreatedAt:      added,
		})
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, item)
		return nil
	})
	return items, err
}

func writeVocabFile(path string, items []*entity.VocabItem) error {
	rows := lo.Map(items, func(item *entity.VocabItem, _ int) []string {
		return []string{
			strconv.FormatInt(item.ID, 10),
			item.Native,
			item.TransliteratedText(),
			item.OriginalText(),
			item.CreatedAt.UTC().Format(time.RFC3339Nano),
		}
	})
	return writeCSVAtomic(path, vocabHeader, rows)
}

func readLabelsFile(path string) ([]*entity.Label, error) {
	var labels []*entity.Label
	err := readCSV(path, labelsHeader, func(line int, get func(string) string) error {
		id, err := strconv.ParseInt(get("id"), 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("line %d: invalid label id %q", line, get("id"))
		}
		typ, err := entity.ParseLabelType(get("label_type"))
		if err != nil {
			return fmt.Errorf("line %d: %w: %q", line, err, get("label_type"))
		}
		name := strings.TrimSpace(get("display_name"))
		if name == "" {
			return fmt.Errorf("line %d: %w", line, entity.ErrInvalidLabel)
		}
		labels = append(labels, &entity.Label{ID: id, DisplayName: name, Type: typ})
		return nil
	})
	return labels, err
}

func labelRows(labels []*entity.Label) [][]string {
	return lo.Map(labels, func(l *entity.Label, _ int) []string {
		return []string{strconv.FormatInt(l.ID, 10), l.DisplayName, string(l.Type)}
	})
}

func readMappingFile(path string) ([]entity.ItemLabel, error) {
	var links []entity.ItemLabel
	err := readCSV(path, mappingHeader, func(line int, get func(string) string) error {
		itemID, err := strconv.ParseInt(get("item_id"), 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid item_id %q", line, get("item_id"))
		}
		labelID, err := strconv.ParseInt(get("label_id"), 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid label_id %q", line, get("label_id"))
		}
		links = append(links, entity.ItemLabel{ItemID: itemID, LabelID: labelID})
		return nil
	})
	return links, err
}

func mappingRows(links []entity.ItemLabel) [][]string {
	return lo.Map(links, func(l entity.ItemLabel, _ int) []string {
		return []string{strconv.FormatInt(l.ItemID, 10), strconv.FormatInt(l.LabelID, 10)}
	})
}

// readCSV reads a headed CSV file, resolving columns by header name.
func readCSV(path string, required []string, row func(line int, get func(string) string) error) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer f.Close()

	rd := csv.NewReader(f)
	rd.FieldsPerRecord = -1
	header, err := rd.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: missing header row", path)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("%s: missing column %q", path, col)
		}
	}

	for line := 2; ; line++ {
		record, err := rd.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		get := func(col string) string {
			i := index[col]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}
		if err := row(line, get); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
}

// writeCSVAtomic writes rows to a temp file next to path and renames it into place.
func writeCSVAtomic(path string, header []string, rows [][]string) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(header); err != nil {
		return err
	}
	if err = w.WriteAll(rows); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
