package database

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// VocabItemsColumns holds the columns for the "vocab_items" table.
	VocabItemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "in_native_lang", Type: field.TypeString},
		{Name: "transliterated", Type: field.TypeString, Nullable: true},
		{Name: "in_original_lang", Type: field.TypeString, Nullable: true},
		{Name: "time_added", Type: field.TypeTime},
	}
	// VocabItemsTable holds the schema information for the "vocab_items" table.
	VocabItemsTable = &schema.Table{
		Name:       "vocab_items",
		Columns:    VocabItemsColumns,
		PrimaryKey: []*schema.Column{VocabItemsColumns[0]},
	}
	// LabelsColumns holds the columns for the "labels" table.
	LabelsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "display_name", Type: field.TypeString, Unique: true},
		{Name: "label_type", Type: field.TypeString, Default: "Group"},
	}
	// LabelsTable holds the schema information for the "labels" table.
	LabelsTable = &schema.Table{
		Name:       "labels",
		Columns:    LabelsColumns,
		PrimaryKey: []*schema.Column{LabelsColumns[0]},
	}
	// ItemLabelsColumns holds the columns for the "item_labels" table.
	ItemLabelsColumns = []*schema.Column{
		{Name: "item_id", Type: field.TypeInt64},
		{Name: "label_id", Type: field.TypeInt64},
	}
	// ItemLabelsTable holds the schema information for the "item_labels" table.
	ItemLabelsTable = &schema.Table{
		Name:       "item_labels",
		Columns:    ItemLabelsColumns,
		PrimaryKey: []*schema.Column{ItemLabelsColumns[0], ItemLabelsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "item_labels_vocab_items_item",
				Columns:    []*schema.Column{ItemLabelsColumns[0]},
				RefColumns: []*schema.Column{VocabItemsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "item_labels_labels_label",
				Columns:    []*schema.Column{ItemLabelsColumns[1]},
				RefColumns: []*schema.Column{LabelsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}
	// Tables holds all the tables in the schema, parents first.
	Tables = []*schema.Table{
		VocabItemsTable,
		LabelsTable,
		ItemLabelsTable,
	}
)

func init() {
	ItemLabelsTable.ForeignKeys[0].RefTable = VocabItemsTable
	ItemLabelsTable.ForeignKeys[1].RefTable = LabelsTable
}

// Migrate creates or upgrades the vocabulary tables.
func Migrate(ctx context.Context, conn *Conn) error {
	drv := entsql.OpenDB(conn.Dialect, conn.DB)
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
