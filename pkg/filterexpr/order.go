package filterexpr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// maxOrderKeys bounds order_by to a primary and a secondary key.
const maxOrderKeys = 2

type orderParams struct {
	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool
}

// ColumnFor resolves an order key to its backing column, falling back to the key itself.
func (s OrderSchema) ColumnFor(key string) string {
	if f, ok := s.Fields[key]; ok && f.Expr != "" {
		return f.Expr
	}
	return key
}

// parseOrderBy reads "key [asc|desc][, key [asc|desc]]". A missing secondary
// key becomes the schema's tie breaker unless that is already the primary.
func parseOrderBy(raw string, schema OrderSchema) (orderParams, error) {
	if _, ok := schema.Fields[schema.Default]; !ok {
		return orderParams{}, fmt.Errorf("default order key %q missing from schema fields", schema.Default)
	}
	if _, ok := schema.Fields[schema.TieBreaker]; schema.TieBreaker != "" && !ok {
		return orderParams{}, fmt.Errorf("tie breaker %q missing from schema fields", schema.TieBreaker)
	}

	var keys []orderKey
	for _, seg := range strings.Split(raw, ",") {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		k, err := parseOrderSegment(seg, schema)
		if err != nil {
			return orderParams{}, err
		}
		for _, prev := range keys {
			if prev.name == k.name {
				return orderParams{}, fmt.Errorf("duplicate order key %q", k.name)
			}
		}
		keys = append(keys, k)
	}
	if len(keys) > maxOrderKeys {
		return orderParams{}, fmt.Errorf("order_by supports at most %d keys", maxOrderKeys)
	}
	if len(keys) == 0 {
		keys = append(keys, orderKey{name: schema.Default, desc: schema.DefaultDesc})
	}
	if len(keys) == 1 && schema.TieBreaker != "" && schema.TieBreaker != keys[0].name {
		keys = append(keys, orderKey{name: schema.TieBreaker})
	}

	ord := orderParams{PrimaryKey: keys[0].name, PrimaryDesc: keys[0].desc}
	if len(keys) > 1 {
		ord.SecondaryKey, ord.SecondaryDesc = keys[1].name, keys[1].desc
	}
	return ord, nil
}

type orderKey struct {
	name string
	desc bool
}

func parseOrderSegment(seg string, schema OrderSchema) (orderKey, error) {
	parts := strings.Fields(seg)
	if len(parts) > 2 {
		return orderKey{}, fmt.Errorf("invalid order segment %q", strings.TrimSpace(seg))
	}
	k := orderKey{name: parts[0]}
	if _, ok := schema.Fields[k.name]; !ok {
		return orderKey{}, fmt.Errorf("field %q cannot be used for ordering", k.name)
	}
	if len(parts) == 2 {
		switch strings.ToLower(parts[1]) {
		case "asc":
		case "desc":
			k.desc = true
		default:
			return orderKey{}, fmt.Errorf("invalid direction %q for field %q", parts[1], k.name)
		}
	}
	return k, nil
}

func setOrderParams(binding any, ord orderParams) error {
	rv := reflect.ValueOf(binding)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return errors.New("binding must be a non-nil pointer to a struct")
	}
	target := rv.Elem()

	for name, value := range map[string]any{
		"PrimaryKey":    ord.PrimaryKey,
		"PrimaryDesc":   ord.PrimaryDesc,
		"SecondaryKey":  ord.SecondaryKey,
		"SecondaryDesc": ord.SecondaryDesc,
	} {
		field := target.FieldByName(name)
		if !field.IsValid() || !field.CanSet() {
			return fmt.Errorf("params struct %s has no settable field %q", target.Type(), name)
		}
		v := reflect.ValueOf(value)
		if !v.Type().ConvertibleTo(field.Type()) {
			return fmt.Errorf("field %q must be %s-compatible, got %s", name, field.Type(), v.Type())
		}
		field.Set(v.Convert(field.Type()))
	}
	return nil
}
