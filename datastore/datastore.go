/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/docstore/storagemodels"
)

// Iterator is a finite, forward-only sequence of entities driven by
// consumption. It is restartable only by reissuing the Find call.
// Callers must Close the iterator to release the underlying connection.
type Iterator[T any] interface {
	// Next advances to the next entity. It returns false when the
	// sequence is exhausted or an error occurred; check Err afterwards.
	Next() bool

	// Entity returns the current entity. Valid only after Next returned true.
	Entity() *T

	// Err returns the first error encountered while iterating.
	Err() error

	// Close releases the resources held by the iterator.
	Close() error
}

// Codec serializes entities to and from the stored document mapping.
type Codec[T any] interface {
	// Serialize renders the entity to a JSON-compatible document.
	// Date/time values render to their ISO-8601 string representation.
	Serialize(entity *T) (storagemodels.Document, error)

	// Deserialize builds an entity from a stored document.
	Deserialize(doc storagemodels.Document) (*T, error)
}

// DataStore is the per-entity-type persistence contract.
type DataStore[T any] interface {
	// Count returns the total row count for the entity type.
	Count(ctx context.Context) (int64, error)

	// Exists reports whether a row with the given identifier exists.
	Exists(ctx context.Context, id string) (bool, error)

	// FindByID returns the entity with the given identifier,
	// or a NotFoundError when no row matches.
	FindByID(ctx context.Context, id string) (*T, error)

	// FindOne returns the first entity matching the spec, or nil
	// (without error) when none matches.
	FindOne(ctx context.Context, spec *storagemodels.QuerySpec) (*T, error)

	// Find returns a lazy iterator over the entities matching the spec.
	// A zero limit defaults to storagemodels.DefaultLimit.
	Find(ctx context.Context, spec *storagemodels.QuerySpec) (Iterator[T], error)

	// Stream pushes the entities matching the spec through a channel.
	Stream(ctx context.Context, spec *storagemodels.QuerySpec, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]

	// Add constructs and persists one entity per document, returning
	// the persisted entities in input order.
	Add(ctx context.Context, docs ...storagemodels.Document) ([]*T, error)

	// Save upserts the entity by identifier and replaces the in-memory
	// state with the row returned by the database.
	Save(ctx context.Context, entity *T) error

	// Load overwrites the entity's in-memory fields from the stored row.
	Load(ctx context.Context, entity *T) error

	// Delete removes the entity's row, verifies the returned identifier,
	// and clears the in-memory state to the zero value.
	Delete(ctx context.Context, entity *T) error

	// Drop removes the backing table. Dropping is never automatic.
	Drop(ctx context.Context) error
}
