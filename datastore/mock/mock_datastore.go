/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides mock implementations of the DataStore interface for testing
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/suparena/docstore/datastore"
	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/storagemodels"
)

// DataStore is an in-memory implementation of datastore.DataStore[T] for testing
type DataStore[T any] struct {
	mu         sync.RWMutex
	codec      datastore.Codec[T]
	entityType string
	docs       map[string]storagemodels.Document
	order      []string

	saveError   error
	deleteError error
	findError   error
}

// New creates a new mock DataStore
func New[T any]() *DataStore[T] {
	var zero T
	return &DataStore[T]{
		codec:      datastore.JSONCodec[T]{},
		entityType: fmt.Sprintf("%T", zero),
		docs:       make(map[string]storagemodels.Document),
	}
}

// WithSaveError makes Save (and Add) operations return an error
func (m *DataStore[T]) WithSaveError(err error) *DataStore[T] {
	m.saveError = err
	return m
}

// WithDeleteError makes Delete operations return an error
func (m *DataStore[T]) WithDeleteError(err error) *DataStore[T] {
	m.deleteError = err
	return m
}

// WithFindError makes read operations return an error
func (m *DataStore[T]) WithFindError(err error) *DataStore[T] {
	m.findError = err
	return m
}

// Count returns the number of stored documents
func (m *DataStore[T]) Count(ctx context.Context) (int64, error) {
	if m.findError != nil {
		return 0, m.findError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.docs)), nil
}

// Exists reports whether a document with the given identifier is stored
func (m *DataStore[T]) Exists(ctx context.Context, id string) (bool, error) {
	if m.findError != nil {
		return false, m.findError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.docs[id]
	return ok, nil
}

// FindByID retrieves an entity by identifier
func (m *DataStore[T]) FindByID(ctx context.Context, id string) (*T, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	m.mu.RLock()
	doc, ok := m.docs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError(m.entityType, id)
	}
	return m.codec.Deserialize(doc)
}

// FindOne returns the first matching entity, or nil when none matches
func (m *DataStore[T]) FindOne(ctx context.Context, spec *storagemodels.QuerySpec) (*T, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	docs := m.matching(spec)
	if len(docs) == 0 {
		return nil, nil
	}
	return m.codec.Deserialize(docs[0])
}

// Find returns an iterator over the matching entities in insertion order
func (m *DataStore[T]) Find(ctx context.Context, spec *storagemodels.QuerySpec) (datastore.Iterator[T], error) {
	if m.findError != nil {
		return nil, m.findError
	}
	return &sliceIterator[T]{codec: m.codec, docs: m.matching(spec)}, nil
}

// Stream pushes the matching entities through a channel
func (m *DataStore[T]) Stream(ctx context.Context, spec *storagemodels.QuerySpec, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	options := storagemodels.DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}
	ch := make(chan storagemodels.StreamResult[T], options.BufferSize)

	go func() {
		defer close(ch)
		if m.findError != nil {
			ch <- storagemodels.StreamResult[T]{Error: m.findError}
			return
		}
		for i, doc := range m.matching(spec) {
			entity, err := m.codec.Deserialize(doc)
			result := storagemodels.StreamResult[T]{
				Item:  entity,
				Raw:   doc,
				Error: err,
				Meta:  storagemodels.StreamMeta{Index: int64(i), Timestamp: time.Now()},
			}
			select {
			case <-ctx.Done():
				return
			case ch <- result:
			}
		}
	}()

	return ch
}

// Add persists one entity per document
func (m *DataStore[T]) Add(ctx context.Context, docs ...storagemodels.Document) ([]*T, error) {
	if len(docs) == 0 {
		return nil, errors.NewInvalidArgumentError("add", "at least one document is required")
	}
	entities := make([]*T, 0, len(docs))
	for i, doc := range docs {
		if doc == nil {
			return nil, errors.NewInvalidArgumentError("add", fmt.Sprintf("document %d is nil", i))
		}
		entity, err := m.codec.Deserialize(doc)
		if err != nil {
			return nil, errors.NewInvalidArgumentError("add", err.Error())
		}
		if err := m.Save(ctx, entity); err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// Save upserts the entity by identifier, generating one when empty
func (m *DataStore[T]) Save(ctx context.Context, entity *T) error {
	if m.saveError != nil {
		return m.saveError
	}
	doc, err := m.codec.Serialize(entity)
	if err != nil {
		return err
	}

	id, err := identifierIn(doc)
	if err != nil {
		return err
	}
	if id == "" {
		id = uuid.NewString()
		doc["_id"] = id
	}

	m.mu.Lock()
	if _, exists := m.docs[id]; !exists {
		m.order = append(m.order, id)
	}
	m.docs[id] = doc
	m.mu.Unlock()

	stored, err := m.codec.Deserialize(doc)
	if err != nil {
		return err
	}
	*entity = *stored
	return nil
}

// Load overwrites the entity from the stored document
func (m *DataStore[T]) Load(ctx context.Context, entity *T) error {
	doc, err := m.codec.Serialize(entity)
	if err != nil {
		return err
	}
	id, err := identifierIn(doc)
	if err != nil {
		return err
	}
	if id == "" {
		return errors.NewMissingIdentifierError(m.entityType, "load")
	}

	m.mu.RLock()
	stored, ok := m.docs[id]
	m.mu.RUnlock()
	if !ok {
		return errors.NewMissingIdentifierError(m.entityType, "load")
	}

	loaded, err := m.codec.Deserialize(stored)
	if err != nil {
		return err
	}
	*entity = *loaded
	return nil
}

// Delete removes the stored document and clears the entity to its zero value
func (m *DataStore[T]) Delete(ctx context.Context, entity *T) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	doc, err := m.codec.Serialize(entity)
	if err != nil {
		return err
	}
	id, err := identifierIn(doc)
	if err != nil {
		return err
	}
	if id == "" {
		return errors.NewMissingIdentifierError(m.entityType, "delete")
	}

	m.mu.Lock()
	_, ok := m.docs[id]
	if ok {
		delete(m.docs, id)
		for i, stored := range m.order {
			if stored == id {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	m.mu.Unlock()
	if !ok {
		return errors.NewMissingIdentifierError(m.entityType, "delete")
	}

	var zero T
	*entity = zero
	return nil
}

// Drop clears every stored document
func (m *DataStore[T]) Drop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = make(map[string]storagemodels.Document)
	m.order = nil
	return nil
}

// matching returns the stored documents matching the spec's filter, in
// insertion order, honoring skip and limit. Only equality predicates are
// evaluated; operator filters match the document when the field is present.
func (m *DataStore[T]) matching(spec *storagemodels.QuerySpec) []storagemodels.Document {
	limit := storagemodels.DefaultLimit
	skip := 0
	var filter storagemodels.Filter
	if spec != nil {
		if spec.Limit > 0 {
			limit = spec.Limit
		}
		skip = spec.Skip
		filter = spec.Filter
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []storagemodels.Document
	matched := 0
	for _, id := range m.order {
		doc := m.docs[id]
		if !matchesFilter(doc, filter) {
			continue
		}
		matched++
		if matched <= skip {
			continue
		}
		out = append(out, doc)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// identifierIn extracts the identifier from a serialized document,
// rejecting non-string values the same way the real store does.
func identifierIn(doc storagemodels.Document) (string, error) {
	raw, ok := doc["_id"]
	if !ok || raw == nil {
		return "", nil
	}
	id, ok := raw.(string)
	if !ok {
		return "", errors.NewValidationError("_id", fmt.Sprintf("identifier must be a string, got %T", raw))
	}
	return id, nil
}

func matchesFilter(doc storagemodels.Document, filter storagemodels.Filter) bool {
	for field, want := range filter {
		if field == storagemodels.OpAnd || field == storagemodels.OpOr {
			continue
		}
		got, ok := doc[field]
		if !ok {
			return false
		}
		if _, isOps := want.(storagemodels.Filter); isOps {
			continue
		}
		if _, isOps := want.(map[string]any); isOps {
			continue
		}
		if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", want) {
			return false
		}
	}
	return true
}

// sliceIterator iterates over pre-materialized documents
type sliceIterator[T any] struct {
	codec datastore.Codec[T]
	docs  []storagemodels.Document
	pos   int
	cur   *T
	err   error
}

func (it *sliceIterator[T]) Next() bool {
	if it.err != nil || it.pos >= len(it.docs) {
		return false
	}
	entity, err := it.codec.Deserialize(it.docs[it.pos])
	if err != nil {
		it.err = err
		return false
	}
	it.pos++
	it.cur = entity
	return true
}

func (it *sliceIterator[T]) Entity() *T {
	return it.cur
}

func (it *sliceIterator[T]) Err() error {
	return it.err
}

func (it *sliceIterator[T]) Close() error {
	return nil
}
