package repository

import "github.com/eslsoft/vocabulearn/pkg/filterexpr"

// Order keys accepted by ListVocabQuery.
const (
	OrderByID     = "id"
	OrderByNative = "native"
	OrderByAdded  = "added"
)

// ListVocabSchema maps the vocab filter language onto ListVocabQuery.
var ListVocabSchema = filterexpr.ResourceSchema{
	Filter: map[string]filterexpr.FilterField{
		"label": {
			Kind: filterexpr.KindString,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpEQ: "Labels",
				filterexpr.OpIN: "Labels",
			},
			Setter: filterexpr.AppendString,
		},
		"native": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpSW: "NativePrefix"},
		},
		"transliterated": {
			Kind: filterexpr.KindString,
			Ops:  map[filterexpr.Op]string{filterexpr.OpSW: "TransliteratedPrefix"},
		},
		"added": {
			Kind: filterexpr.KindTimestamp,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpGTE: "AddedAfter",
				filterexpr.OpLTE: "AddedBefore",
			},
		},
		"id": {
			Kind: filterexpr.KindNumber,
			Ops: map[filterexpr.Op]string{
				filterexpr.OpGTE: "IDMin",
				filterexpr.OpLTE: "IDMax",
			},
		},
	},
	Order: filterexpr.OrderSchema{
		Default:    OrderByID,
		TieBreaker: OrderByID,
		Fields: map[string]filterexpr.OrderField{
			OrderByID:     {Expr: "id"},
			OrderByNative: {Expr: "in_native_lang"},
			OrderByAdded:  {Expr: "time_added"},
		},
	},
}
