/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package postgres

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/storagemodels"
)

// validFieldNameRe validates filter field names. Field names are spliced
// into the JSON-path extraction expression, so they must never come from
// untrusted input unvalidated.
var validFieldNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// opSymbols maps comparison operators to their SQL form. Every value-bearing
// predicate binds through a positional placeholder; operators only select
// the comparison symbol.
var opSymbols = map[string]string{
	storagemodels.OpEq:  "=",
	storagemodels.OpNe:  "<>",
	storagemodels.OpGt:  ">",
	storagemodels.OpGte: ">=",
	storagemodels.OpLt:  "<",
	storagemodels.OpLte: "<=",
}

// Translator turns a QuerySpec into parameterized SQL against a table's
// jsonb document column. It is pure: same spec in, same (sqlText, args) out.
// Placeholders are numbered sequentially from $1 in the order predicates
// are emitted, and args[i-1] is the value bound to $i.
type Translator struct {
	table  string
	fields map[string]struct{}
}

// NewTranslator creates a Translator for a table. When fields is non-empty
// it becomes the field schema: filters may only reference those names.
func NewTranslator(table string, fields []string) (*Translator, error) {
	if err := validateTableName(table); err != nil {
		return nil, err
	}
	t := &Translator{table: table}
	if len(fields) > 0 {
		t.fields = make(map[string]struct{}, len(fields))
		for _, f := range fields {
			t.fields[f] = struct{}{}
		}
	}
	return t, nil
}

// Select builds a SELECT data statement for the spec.
func (t *Translator) Select(spec *storagemodels.QuerySpec) (string, []any, error) {
	return t.build("SELECT data FROM "+t.table, spec, true)
}

// Count builds a SELECT count(*) statement for the spec's filter.
// Pagination does not apply to counts.
func (t *Translator) Count(spec *storagemodels.QuerySpec) (string, []any, error) {
	return t.build("SELECT count(*) FROM "+t.table, spec, false)
}

func (t *Translator) build(head string, spec *storagemodels.QuerySpec, paginate bool) (string, []any, error) {
	if spec == nil {
		spec = &storagemodels.QuerySpec{}
	}

	var sb strings.Builder
	sb.WriteString(head)

	args := make([]any, 0, len(spec.Filter)+2)
	where, err := t.where(spec.Filter, &args)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if paginate {
		if spec.Limit > 0 {
			args = append(args, spec.Limit)
			fmt.Fprintf(&sb, " LIMIT $%d", len(args))
		}
		if spec.Skip > 0 {
			args = append(args, spec.Skip)
			fmt.Fprintf(&sb, " OFFSET $%d", len(args))
		}
	}
	return sb.String(), args, nil
}

// where renders a filter to a conjunction of clauses. Keys are walked in
// sorted order so translation is deterministic.
func (t *Translator) where(filter storagemodels.Filter, args *[]any) (string, error) {
	if len(filter) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]string, 0, len(keys))
	for _, key := range keys {
		value := filter[key]
		switch key {
		case storagemodels.OpAnd, storagemodels.OpOr:
			clause, err := t.logical(key, value, args)
			if err != nil {
				return "", err
			}
			clauses = append(clauses, clause)
		default:
			clause, err := t.fieldClause(key, value, args)
			if err != nil {
				return "", err
			}
			clauses = append(clauses, clause)
		}
	}
	return strings.Join(clauses, " AND "), nil
}

func (t *Translator) logical(op string, value any, args *[]any) (string, error) {
	subs, err := asFilterList(value)
	if err != nil {
		return "", errors.NewValidationError(op, err.Error())
	}
	if len(subs) == 0 {
		return "", errors.NewValidationError(op, "requires at least one sub-filter")
	}

	parts := make([]string, 0, len(subs))
	for _, sub := range subs {
		clause, err := t.where(sub, args)
		if err != nil {
			return "", err
		}
		if clause == "" {
			return "", errors.NewValidationError(op, "empty sub-filter")
		}
		parts = append(parts, "("+clause+")")
	}

	joiner := " AND "
	if op == storagemodels.OpOr {
		joiner = " OR "
	}
	return "(" + strings.Join(parts, joiner) + ")", nil
}

func (t *Translator) fieldClause(field string, value any, args *[]any) (string, error) {
	if !t.validField(field) {
		return "", errors.NewValidationError(field, "unknown field")
	}
	column := fmt.Sprintf("data->>'%s'", field)

	ops, ok := asOperatorMap(value)
	if !ok {
		// Plain value means equality.
		return t.predicate(column, storagemodels.OpEq, value, args)
	}

	opKeys := make([]string, 0, len(ops))
	for op := range ops {
		opKeys = append(opKeys, op)
	}
	sort.Strings(opKeys)

	clauses := make([]string, 0, len(opKeys))
	for _, op := range opKeys {
		clause, err := t.predicate(column, op, ops[op], args)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	return strings.Join(clauses, " AND "), nil
}

func (t *Translator) predicate(column, op string, value any, args *[]any) (string, error) {
	if op == storagemodels.OpIn {
		vals, err := textSlice(value)
		if err != nil {
			return "", errors.NewValidationError(op, err.Error())
		}
		*args = append(*args, pq.Array(vals))
		return fmt.Sprintf("%s = ANY($%d)", column, len(*args)), nil
	}

	symbol, ok := opSymbols[op]
	if !ok {
		return "", errors.NewValidationError(op, "unknown operator")
	}
	*args = append(*args, textValue(value))
	return fmt.Sprintf("%s %s $%d", column, symbol, len(*args)), nil
}

// validField checks a field name against the identifier pattern and, when a
// field schema is configured, against the schema.
func (t *Translator) validField(name string) bool {
	if !validFieldNameRe.MatchString(name) {
		return false
	}
	if t.fields != nil {
		_, ok := t.fields[name]
		return ok
	}
	return true
}

// textValue renders a predicate value to the text form the ->> extraction
// yields for it, so comparisons against the placeholder are type-consistent.
func textValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case fmt.Stringer:
		return x.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

func textSlice(v any) ([]string, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("membership requires a slice, got %T", v)
	}
	out := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = textValue(rv.Index(i).Interface())
	}
	return out, nil
}

func asOperatorMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case storagemodels.Filter:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

func asFilterList(v any) ([]storagemodels.Filter, error) {
	switch list := v.(type) {
	case []storagemodels.Filter:
		return list, nil
	case []map[string]any:
		out := make([]storagemodels.Filter, len(list))
		for i, m := range list {
			out[i] = storagemodels.Filter(m)
		}
		return out, nil
	case []any:
		out := make([]storagemodels.Filter, len(list))
		for i, item := range list {
			m, ok := asOperatorMap(item)
			if !ok {
				return nil, fmt.Errorf("expected a list of filters, got %T", item)
			}
			out[i] = storagemodels.Filter(m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list of filters, got %T", v)
	}
}
