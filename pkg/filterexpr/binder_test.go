package filterexpr

import (
	"strings"
	"testing"
	"time"
)

type entryParams struct {
	Labels        []string
	NativePrefix  *string
	AddedAfter    *time.Time
	IDMin         *int64
	IDMax         *int64
	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool
}

type rawMsg struct{ filter, orderBy string }

func (m rawMsg) GetFilter() string  { return m.filter }
func (m rawMsg) GetOrderBy() string { return m.orderBy }

var entrySchema = ResourceSchema{
	Filter: map[string]FilterField{
		"label": {
			Kind:   KindString,
			Ops:    map[Op]string{OpEQ: "Labels", OpIN: "Labels"},
			Setter: AppendString,
		},
		"native": {Kind: KindString, Ops: map[Op]string{OpSW: "NativePrefix"}},
		"added":  {Kind: KindTimestamp, Ops: map[Op]string{OpGTE: "AddedAfter"}},
		"id":     {Kind: KindNumber, Ops: map[Op]string{OpGTE: "IDMin", OpLTE: "IDMax"}},
	},
	Order: OrderSchema{
		Default:    "id",
		TieBreaker: "id",
		Fields: map[string]OrderField{
			"id":     {Expr: "id"},
			"native": {Expr: "in_native_lang"},
			"added":  {Expr: "time_added"},
		},
	},
}

func TestBind_Conjunction(t *testing.T) {
	var params entryParams
	msg := rawMsg{filter: "label == 'noun' && label in ['food', 'animals'] && native.startsWith('ga') && added >= timestamp('2024-01-01T00:00:00Z') && id >= 2 && id <= 9"}

	if err := Bind(msg, &params, entrySchema); err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}

	if strings.Join(params.Labels, ",") != "noun,food,animals" {
		t.Fatalf("unexpected labels %v", params.Labels)
	}
	if params.NativePrefix == nil || *params.NativePrefix != "ga" {
		t.Fatalf("expected NativePrefix 'ga', got %v", params.NativePrefix)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if params.AddedAfter == nil || !params.AddedAfter.Equal(want) {
		t.Fatalf("expected AddedAfter %v, got %v", want, params.AddedAfter)
	}
	if params.IDMin == nil || *params.IDMin != 2 || params.IDMax == nil || *params.IDMax != 9 {
		t.Fatalf("unexpected id bounds %v %v", params.IDMin, params.IDMax)
	}
	if params.PrimaryKey != "id" || params.SecondaryKey != "" {
		t.Fatalf("unexpected default order %q/%q", params.PrimaryKey, params.SecondaryKey)
	}
}

func TestBind_RejectsUnsupported(t *testing.T) {
	cases := []string{
		"label == 'noun' || label == 'verb'",
		"!(label == 'noun')",
		"transliterated == 'x'",
		"native == 'x'",
		"id >= 1.5",
		"added >= timestamp('yesterday')",
	}
	for _, filter := range cases {
		var params entryParams
		if err := Bind(rawMsg{filter: filter}, &params, entrySchema); err == nil {
			t.Fatalf("%q: expected error", filter)
		}
	}
}

func TestBind_OrderBy(t *testing.T) {
	var params entryParams
	if err := Bind(rawMsg{orderBy: "native desc"}, &params, entrySchema); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if params.PrimaryKey != "native" || !params.PrimaryDesc {
		t.Fatalf("unexpected primary %q desc=%v", params.PrimaryKey, params.PrimaryDesc)
	}
	if params.SecondaryKey != "id" || params.SecondaryDesc {
		t.Fatalf("unexpected secondary %q desc=%v", params.SecondaryKey, params.SecondaryDesc)
	}
	if entrySchema.Order.ColumnFor(params.PrimaryKey) != "in_native_lang" {
		t.Fatalf("unexpected column %q", entrySchema.Order.ColumnFor(params.PrimaryKey))
	}

	for _, bad := range []string{"native sideways", "unknown", "id, id", "id, native, added"} {
		var p entryParams
		if err := Bind(rawMsg{orderBy: bad}, &p, entrySchema); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestBind_OrderByTieBreaker(t *testing.T) {
	cases := map[string][2]string{
		"added":              {"added", "id"},
		"id desc":            {"id", ""},
		"added desc, native": {"added", "native"},
		" , native":          {"native", "id"},
	}
	for orderBy, want := range cases {
		var params entryParams
		if err := Bind(rawMsg{orderBy: orderBy}, &params, entrySchema); err != nil {
			t.Fatalf("%q: unexpected err: %v", orderBy, err)
		}
		if params.PrimaryKey != want[0] || params.SecondaryKey != want[1] {
			t.Fatalf("%q: got %q/%q want %q/%q", orderBy, params.PrimaryKey, params.SecondaryKey, want[0], want[1])
		}
	}

	broken := entrySchema
	broken.Order.TieBreaker = "rank"
	var params entryParams
	if err := Bind(rawMsg{}, &params, broken); err == nil {
		t.Fatalf("expected error for a tie breaker outside the schema")
	}
}
