package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/vocabulearn/internal/entity"
	"github.com/eslsoft/vocabulearn/internal/infrastructure/database"
	repo "github.com/eslsoft/vocabulearn/internal/repository"
)

var (
	vocabColumns = columnNames(database.VocabItemsColumns)
	labelColumns = columnNames(database.LabelsColumns)
)

// SQLVocabRepository stores the dataset in the vocab_items, labels and
// item_labels tables. Queries are built with ent's dialect-aware builder.
type SQLVocabRepository struct {
	db      *sql.DB
	dialect string
	logSQL  bool
	logger  *logrus.Logger
	now     func() time.Time
}

var _ repo.VocabRepository = (*SQLVocabRepository)(nil)

func NewSQLVocabRepository(conn *database.Conn, logger *logrus.Logger) *SQLVocabRepository {
	return &SQLVocabRepository{db: conn.DB, dialect: conn.Dialect, logSQL: conn.LogSQL, logger: logger, now: time.Now}
}

func (r *SQLVocabRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

func (r *SQLVocabRepository) List(ctx context.Context, q *repo.ListVocabQuery) ([]*entity.VocabItem, error) {
	b := r.builder()
	sel := b.Select(vocabColumns...).From(b.Table(database.VocabItemsTable.Name))

	var filter repo.VocabFilter
	if q != nil {
		filter = q.VocabFilter
	}
	preds, empty, err := r.predicates(ctx, filter)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, nil
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}

	order := repo.ListVocabSchema.Order
	primary, secondary := repo.OrderByID, repo.OrderByAdded
	var primaryDesc, secondaryDesc bool
	if q != nil && q.PrimaryKey != "" {
		primary, primaryDesc = q.PrimaryKey, q.PrimaryDesc
		secondary, secondaryDesc = q.SecondaryKey, q.SecondaryDesc
	}
	sel.OrderBy(orderTerm(order.ColumnFor(primary), primaryDesc))
	if secondary != "" && secondary != primary {
		sel.OrderBy(orderTerm(order.ColumnFor(secondary), secondaryDesc))
	}
	if primary != repo.OrderByID && secondary != repo.OrderByID {
		sel.OrderBy(entsql.Asc("id"))
	}
	if q != nil && q.Limit > 0 {
		sel.Limit(q.Limit)
	}

	query, args := sel.Query()
	r.trace(query, args)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vocab items: %w", err)
	}
	defer rows.Close()

	var items []*entity.VocabItem
	for rows.Next() {
		item, err := scanVocabItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// predicates translates f into SQL; empty is true when a label filter matches no known label.
func (r *SQLVocabRepository) predicates(ctx context.Context, f repo.VocabFilter) ([]*entsql.Predicate, bool, error) {
	var preds []*entsql.Predicate
	if f.NativePrefix != nil {
		preds = append(preds, entsql.HasPrefix("in_native_lang", *f.NativePrefix))
	}
	if f.TransliteratedPrefix != nil {
		preds = append(preds, entsql.HasPrefix("transliterated", *f.TransliteratedPrefix))
	}
	if f.AddedAfter != nil {
		preds = append(preds, entsql.GTE("time_added", f.AddedAfter.UTC()))
	}
	if f.AddedBefore != nil {
		preds = append(preds, entsql.LTE("time_added", f.AddedBefore.UTC()))
	}
	if f.IDMin != nil {
		preds = append(preds, entsql.GTE("id", *f.IDMin))
	}
	if f.IDMax != nil {
		preds = append(preds, entsql.LTE("id", *f.IDMax))
	}

	if wanted := normalizeLowerStrings(f.Labels); len(wanted) > 0 {
		labels, err := r.Labels(ctx)
		if err != nil {
			return nil, false, err
		}
		ids := lo.FilterMap(labels, func(l *entity.Label, _ int) (any, bool) {
			return l.ID, lo.Contains(wanted, entity.NormalizeLabelName(l.DisplayName))
		})
		if len(ids) == 0 {
			return nil, true, nil
		}
		b := r.builder()
		sub := b.Select("item_id").
			From(b.Table(database.ItemLabelsTable.Name)).
			Where(entsql.In("label_id", ids...))
		preds = append(preds, entsql.In("id", sub))
	}
	return preds, false, nil
}

func (r *SQLVocabRepository) GetByID(ctx context.Context, id int64) (*entity.VocabItem, error) {
	b := r.builder()
	query, args := b.Select(vocabColumns...).
		From(b.Table(database.VocabItemsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	r.trace(query, args)
	item, err := scanVocabItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrVocabItemNotFound
	}
	return item, err
}

func (r *SQLVocabRepository) Create(ctx context.Context, item *entity.VocabItem) (*entity.VocabItem, error) {
	norm, err := entity.NormalizeVocabItem(item)
	if err != nil {
		return nil, err
	}
	if norm.CreatedAt.IsZero() {
		norm.CreatedAt = r.now().UTC()
	}

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if norm.ID == 0 {
			next, err := r.nextID(ctx, tx, database.VocabItemsTable.Name)
			if err != nil {
				return err
			}
			norm.ID = next
		} else {
			n, err := r.count(ctx, tx, database.VocabItemsTable.Name, entsql.EQ("id", norm.ID))
			if err != nil {
				return err
			}
			if n > 0 {
				return entity.ErrDuplicateVocabItem
			}
		}

		query, args := r.builder().Insert(database.VocabItemsTable.Name).
			Columns(vocabColumns...).
			Values(norm.ID, norm.Native, optionalString(norm.Transliterated), optionalString(norm.Original), norm.CreatedAt).
			Query()
		r.trace(query, args)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert vocab item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.WithFields(logrus.Fields{"id": norm.ID, "native": norm.Native}).Info("vocab item added")
	return norm, nil
}

func (r *SQLVocabRepository) Labels(ctx context.Context) ([]*entity.Label, error) {
	b := r.builder()
	query, args := b.Select(labelColumns...).
		From(b.Table(database.LabelsTable.Name)).
		OrderBy(entsql.Asc("id")).
		Query()
	r.trace(query, args)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	defer rows.Close()

	var labels []*entity.Label
	for rows.Next() {
		var (
			l   entity.Label
			typ string
		)
		if err := rows.Scan(&l.ID, &l.DisplayName, &typ); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		l.Type = entity.LabelType(typ)
		labels = append(labels, &l)
	}
	return labels, rows.Err()
}

func (r *SQLVocabRepository) CreateLabel(ctx context.Context, label *entity.Label) (*entity.Label, error) {
	if label == nil || label.ID < 0 {
		return nil, entity.ErrInvalidLabel
	}
	cp := *label
	cp.DisplayName = normalizeDisplayName(cp.DisplayName)
	if cp.DisplayName == "" {
		return nil, entity.ErrInvalidLabel
	}
	if cp.Type == "" {
		cp.Type = entity.LabelTypeGroup
	}

	existing, err := r.Labels(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range existing {
		if l.ID == cp.ID || entity.NormalizeLabelName(l.DisplayName) == entity.NormalizeLabelName(cp.DisplayName) {
			return nil, entity.ErrDuplicateLabel
		}
	}

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if cp.ID == 0 {
			next, err := r.nextID(ctx, tx, database.LabelsTable.Name)
			if err != nil {
				return err
			}
			cp.ID = next
		}
		query, args := r.builder().Insert(database.LabelsTable.Name).
			Columns(labelColumns...).
			Values(cp.ID, cp.DisplayName, string(cp.Type)).
			Query()
		r.trace(query, args)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert label: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

func (r *SQLVocabRepository) ItemLabels(ctx context.Context) ([]entity.ItemLabel, error) {
	b := r.builder()
	query, args := b.Select("item_id", "label_id").
		From(b.Table(database.ItemLabelsTable.Name)).
		OrderBy(entsql.Asc("item_id"), entsql.Asc("label_id")).
		Query()
	r.trace(query, args)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list item labels: %w", err)
	}
	defer rows.Close()

	var links []entity.ItemLabel
	for rows.Next() {
		var l entity.ItemLabel
		if err := rows.Scan(&l.ItemID, &l.LabelID); err != nil {
			return nil, fmt.Errorf("scan item label: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *SQLVocabRepository) AttachLabel(ctx context.Context, link entity.ItemLabel) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if n, err := r.count(ctx, tx, database.VocabItemsTable.Name, entsql.EQ("id", link.ItemID)); err != nil {
			return err
		} else if n == 0 {
			return entity.ErrVocabItemNotFound
		}
		if n, err := r.count(ctx, tx, database.LabelsTable.Name, entsql.EQ("id", link.LabelID)); err != nil {
			return err
		} else if n == 0 {
			return entity.ErrLabelNotFound
		}
		n, err := r.count(ctx, tx, database.ItemLabelsTable.Name,
			entsql.And(entsql.EQ("item_id", link.ItemID), entsql.EQ("label_id", link.LabelID)))
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		query, args := r.builder().Insert(database.ItemLabelsTable.Name).
			Columns("item_id", "label_id").
			Values(link.ItemID, link.LabelID).
			Query()
		r.trace(query, args)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert item label: %w", err)
		}
		return nil
	})
}

func (r *SQLVocabRepository) trace(query string, args []any) {
	if r.logSQL {
		r.logger.WithFields(logrus.Fields{"sql": query, "args": args}).Debug("sql")
	}
}

func (r *SQLVocabRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *SQLVocabRepository) nextID(ctx context.Context, tx *sql.Tx, table string) (int64, error) {
	b := r.builder()
	query, args := b.Select("COALESCE(MAX(id), 0)").From(b.Table(table)).Query()
	var maxID int64
	r.trace(query, args)
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("next %s id: %w", table, err)
	}
	return maxID + 1, nil
}

func (r *SQLVocabRepository) count(ctx context.Context, tx *sql.Tx, table string, pred *entsql.Predicate) (int64, error) {
	b := r.builder()
	query, args := b.Select("COUNT(*)").From(b.Table(table)).Where(pred).Query()
	var n int64
	r.trace(query, args)
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVocabItem(row rowScanner) (*entity.VocabItem, error) {
	var (
		item                   entity.VocabItem
		transliterated, origin sql.NullString
	)
	if err := row.Scan(&item.ID, &item.Native, &transliterated, &origin, &item.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan vocab item: %w", err)
	}
	if transliterated.Valid {
		item.Transliterated = entity.OptionalText(transliterated.String)
	}
	if origin.Valid {
		item.Original = entity.OptionalText(origin.String)
	}
	item.CreatedAt = item.CreatedAt.UTC()
	return &item, nil
}

func orderTerm(column string, desc bool) string {
	if desc {
		return entsql.Desc(column)
	}
	return entsql.Asc(column)
}

func columnNames(cols []*schema.Column) []string {
	return lo.Map(cols, func(c *schema.Column, _ int) string { return c.Name })
}
