/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"encoding/json"
	"fmt"

	"github.com/suparena/docstore/storagemodels"
)

// JSONCodec is the default Codec implementation. It round-trips entities
// through encoding/json, so struct tags control field names and time.Time
// and compatible types render to ISO-8601 strings on write.
type JSONCodec[T any] struct{}

// Serialize renders the entity to a document via its JSON form.
func (JSONCodec[T]) Serialize(entity *T) (storagemodels.Document, error) {
	b, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %T: %w", entity, err)
	}
	var doc storagemodels.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to serialize %T: %w", entity, err)
	}
	if doc == nil {
		doc = storagemodels.Document{}
	}
	return doc, nil
}

// Deserialize builds an entity from a stored document via its JSON form.
func (JSONCodec[T]) Deserialize(doc storagemodels.Document) (*T, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize document: %w", err)
	}
	entity := new(T)
	if err := json.Unmarshal(b, entity); err != nil {
		return nil, fmt.Errorf("failed to deserialize document into %T: %w", entity, err)
	}
	return entity, nil
}
