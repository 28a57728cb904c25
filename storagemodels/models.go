/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

// Document is the JSON-compatible structured mapping an entity is
// serialized to before storage and deserialized from after retrieval.
// Every persisted document carries the identifier field ("_id").
type Document map[string]any

// Filter is a declarative filter expression over entity fields.
//
// A plain value means equality:
//
//	Filter{"name": "a"}
//
// An operator map applies comparison or membership operators:
//
//	Filter{"qty": Filter{OpGt: 10, OpLte: 100}}
//	Filter{"status": Filter{OpIn: []string{"open", "closed"}}}
//
// OpAnd and OpOr nest logical structure:
//
//	Filter{OpOr: []Filter{{"qty": 1}, {"qty": 2}}}
type Filter map[string]any

// Supported filter operators.
const (
	OpEq  = "$eq"
	OpNe  = "$ne"
	OpGt  = "$gt"
	OpGte = "$gte"
	OpLt  = "$lt"
	OpLte = "$lte"
	OpIn  = "$in"
	OpAnd = "$and"
	OpOr  = "$or"
)

// DefaultLimit bounds bulk reads when the caller does not specify a limit.
const DefaultLimit = 100

// QuerySpec defines the parameters of a filtered read.
type QuerySpec struct {
	// Filter is the filter expression. An empty or nil filter matches every row.
	Filter Filter
	// Limit bounds the result count. Zero means the implementation default.
	Limit int
	// Skip offsets the starting row.
	Skip int
}
