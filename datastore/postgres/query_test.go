/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package postgres

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/storagemodels"
)

func newTestTranslator(t *testing.T, fields ...string) *Translator {
	t.Helper()
	tr, err := NewTranslator("widgets", fields)
	require.NoError(t, err)
	return tr
}

func TestTranslatorSelect(t *testing.T) {
	tr := newTestTranslator(t)

	t.Run("NoFilter", func(t *testing.T) {
		sqlText, args, err := tr.Select(nil)
		require.NoError(t, err)
		assert.Equal(t, "SELECT data FROM widgets", sqlText)
		assert.Empty(t, args)
	})

	t.Run("Equality", func(t *testing.T) {
		sqlText, args, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{"name": "gear"},
		})
		require.NoError(t, err)
		assert.Equal(t, "SELECT data FROM widgets WHERE data->>'name' = $1", sqlText)
		assert.Equal(t, []any{"gear"}, args)
	})

	t.Run("NumericValueBindsAsText", func(t *testing.T) {
		// ->> yields text, so numeric values bind in their JSON text form.
		sqlText, args, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{"qty": 5},
		})
		require.NoError(t, err)
		assert.Equal(t, "SELECT data FROM widgets WHERE data->>'qty' = $1", sqlText)
		assert.Equal(t, []any{"5"}, args)
	})

	t.Run("TimeValueBindsAsRFC3339", func(t *testing.T) {
		ts := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
		_, args, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{"createdAt": storagemodels.Filter{storagemodels.OpGt: ts}},
		})
		require.NoError(t, err)
		assert.Equal(t, []any{"2025-03-01T12:30:00Z"}, args)
	})

	t.Run("OperatorMap", func(t *testing.T) {
		sqlText, args, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{
				"qty": storagemodels.Filter{
					storagemodels.OpGte: 2,
					storagemodels.OpLt:  10,
				},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "SELECT data FROM widgets WHERE data->>'qty' >= $1 AND data->>'qty' < $2", sqlText)
		assert.Equal(t, []any{"2", "10"}, args)
	})

	t.Run("AllComparisonOperators", func(t *testing.T) {
		cases := map[string]string{
			storagemodels.OpEq:  "=",
			storagemodels.OpNe:  "<>",
			storagemodels.OpGt:  ">",
			storagemodels.OpGte: ">=",
			storagemodels.OpLt:  "<",
			storagemodels.OpLte: "<=",
		}
		for op, symbol := range cases {
			sqlText, args, err := tr.Select(&storagemodels.QuerySpec{
				Filter: storagemodels.Filter{"qty": storagemodels.Filter{op: 3}},
			})
			require.NoError(t, err, op)
			assert.Equal(t, "SELECT data FROM widgets WHERE data->>'qty' "+symbol+" $1", sqlText, op)
			assert.Equal(t, []any{"3"}, args, op)
		}
	})

	t.Run("MultipleFieldsSortedDeterministically", func(t *testing.T) {
		spec := &storagemodels.QuerySpec{
			Filter: storagemodels.Filter{
				"qty":  storagemodels.Filter{storagemodels.OpGt: 1},
				"name": "gear",
			},
		}
		want := "SELECT data FROM widgets WHERE data->>'name' = $1 AND data->>'qty' > $2"
		for i := 0; i < 10; i++ {
			sqlText, args, err := tr.Select(spec)
			require.NoError(t, err)
			assert.Equal(t, want, sqlText)
			assert.Equal(t, []any{"gear", "1"}, args)
		}
	})

	t.Run("Membership", func(t *testing.T) {
		sqlText, args, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{
				"name": storagemodels.Filter{storagemodels.OpIn: []string{"a", "b"}},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "SELECT data FROM widgets WHERE data->>'name' = ANY($1)", sqlText)
		require.Len(t, args, 1)
		assert.Equal(t, pq.Array([]string{"a", "b"}), args[0])
	})

	t.Run("MembershipMixedValues", func(t *testing.T) {
		_, args, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{
				"qty": storagemodels.Filter{storagemodels.OpIn: []any{1, 2, 3}},
			},
		})
		require.NoError(t, err)
		require.Len(t, args, 1)
		assert.Equal(t, pq.Array([]string{"1", "2", "3"}), args[0])
	})

	t.Run("MembershipNonSlice", func(t *testing.T) {
		_, _, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{
				"qty": storagemodels.Filter{storagemodels.OpIn: 42},
			},
		})
		require.Error(t, err)
		assert.True(t, errors.IsInvalidInput(err))
	})

	t.Run("LimitAndSkip", func(t *testing.T) {
		sqlText, args, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{"name": "gear"},
			Limit:  25,
			Skip:   50,
		})
		require.NoError(t, err)
		assert.Equal(t, "SELECT data FROM widgets WHERE data->>'name' = $1 LIMIT $2 OFFSET $3", sqlText)
		assert.Equal(t, []any{"gear", 25, 50}, args)
	})

	t.Run("LimitWithoutFilter", func(t *testing.T) {
		sqlText, args, err := tr.Select(&storagemodels.QuerySpec{Limit: 100})
		require.NoError(t, err)
		assert.Equal(t, "SELECT data FROM widgets LIMIT $1", sqlText)
		assert.Equal(t, []any{100}, args)
	})
}

func TestTranslatorLogicalOperators(t *testing.T) {
	tr := newTestTranslator(t)

	t.Run("Or", func(t *testing.T) {
		sqlText, args, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{
				storagemodels.OpOr: []storagemodels.Filter{
					{"name": "gear"},
					{"qty": storagemodels.Filter{storagemodels.OpGt: 5}},
				},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "SELECT data FROM widgets WHERE ((data->>'name' = $1) OR (data->>'qty' > $2))", sqlText)
		assert.Equal(t, []any{"gear", "5"}, args)
	})

	t.Run("AndNestedInOr", func(t *testing.T) {
		sqlText, args, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{
				storagemodels.OpOr: []storagemodels.Filter{
					{storagemodels.OpAnd: []storagemodels.Filter{
						{"name": "gear"},
						{"qty": storagemodels.Filter{storagemodels.OpGte: 2}},
					}},
					{"price": storagemodels.Filter{storagemodels.OpLt: 1}},
				},
			},
		})
		require.NoError(t, err)
		assert.Equal(t,
			"SELECT data FROM widgets WHERE ((((data->>'name' = $1) AND (data->>'qty' >= $2))) OR (data->>'price' < $3))",
			sqlText)
		assert.Equal(t, []any{"gear", "2", "1"}, args)
	})

	t.Run("UntypedFilterList", func(t *testing.T) {
		// JSON-decoded filters arrive as []any of map[string]any.
		sqlText, args, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{
				storagemodels.OpOr: []any{
					map[string]any{"name": "a"},
					map[string]any{"name": "b"},
				},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "SELECT data FROM widgets WHERE ((data->>'name' = $1) OR (data->>'name' = $2))", sqlText)
		assert.Equal(t, []any{"a", "b"}, args)
	})

	t.Run("LogicalBeforeFieldClauses", func(t *testing.T) {
		// "$" sorts before letters, so logical clauses come first.
		sqlText, args, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{
				"name": "gear",
				storagemodels.OpOr: []storagemodels.Filter{
					{"qty": 1},
					{"qty": 2},
				},
			},
		})
		require.NoError(t, err)
		assert.Equal(t,
			"SELECT data FROM widgets WHERE ((data->>'qty' = $1) OR (data->>'qty' = $2)) AND data->>'name' = $3",
			sqlText)
		assert.Equal(t, []any{"1", "2", "gear"}, args)
	})

	t.Run("EmptyList", func(t *testing.T) {
		_, _, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{storagemodels.OpOr: []storagemodels.Filter{}},
		})
		require.Error(t, err)
		assert.True(t, errors.IsInvalidInput(err))
	})

	t.Run("NonListValue", func(t *testing.T) {
		_, _, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{storagemodels.OpAnd: "oops"},
		})
		require.Error(t, err)
		assert.True(t, errors.IsInvalidInput(err))
	})
}

func TestTranslatorValidation(t *testing.T) {
	t.Run("UnknownOperator", func(t *testing.T) {
		tr := newTestTranslator(t)
		_, _, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{"qty": storagemodels.Filter{"$regex": ".*"}},
		})
		require.Error(t, err)
		assert.True(t, errors.IsInvalidInput(err))
	})

	t.Run("MalformedFieldName", func(t *testing.T) {
		tr := newTestTranslator(t)
		for _, field := range []string{"na me", "name'; DROP TABLE widgets; --", "1name", ""} {
			_, _, err := tr.Select(&storagemodels.QuerySpec{
				Filter: storagemodels.Filter{field: "x"},
			})
			require.Error(t, err, field)
			assert.True(t, errors.IsInvalidInput(err), field)
		}
	})

	t.Run("FieldSchemaEnforced", func(t *testing.T) {
		tr := newTestTranslator(t, "name", "qty")

		_, _, err := tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{"name": "ok"},
		})
		require.NoError(t, err)

		_, _, err = tr.Select(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{"price": 1},
		})
		require.Error(t, err)
		assert.True(t, errors.IsInvalidInput(err))
	})

	t.Run("InvalidTableName", func(t *testing.T) {
		for _, table := range []string{"", "1widgets", "wid gets", "widgets; DROP"} {
			_, err := NewTranslator(table, nil)
			require.Error(t, err, table)
			assert.True(t, errors.IsInvalidInput(err), table)
		}
	})
}

func TestTranslatorCount(t *testing.T) {
	tr := newTestTranslator(t)

	t.Run("NoFilter", func(t *testing.T) {
		sqlText, args, err := tr.Count(nil)
		require.NoError(t, err)
		assert.Equal(t, "SELECT count(*) FROM widgets", sqlText)
		assert.Empty(t, args)
	})

	t.Run("PaginationIgnored", func(t *testing.T) {
		sqlText, args, err := tr.Count(&storagemodels.QuerySpec{
			Filter: storagemodels.Filter{"name": "gear"},
			Limit:  10,
			Skip:   5,
		})
		require.NoError(t, err)
		assert.Equal(t, "SELECT count(*) FROM widgets WHERE data->>'name' = $1", sqlText)
		assert.Equal(t, []any{"gear"}, args)
	})
}
