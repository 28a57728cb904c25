/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"reflect"
	"sync"
)

// ComputedField is a capability hook evaluated at save time. The store
// treats the function as opaque and stores its result under the field name.
type ComputedField struct {
	// Fn produces the field value.
	Fn func() any
	// OnlyEmpty restricts evaluation to documents where the field is
	// absent or empty, so an already-set value is never regenerated.
	OnlyEmpty bool
}

// EntityConfig carries the per-entity-type storage configuration,
// resolved once at store construction rather than probed at every call.
type EntityConfig struct {
	// Table overrides the table name derived from the type name.
	Table string
	// Fields lists the queryable field names. An empty list allows any
	// syntactically valid field name in filters.
	Fields []string
	// Computed maps field names to computed-field hooks applied at save time.
	Computed map[string]ComputedField
}

var (
	entityConfigRegistry = make(map[reflect.Type]EntityConfig)
	mu                   sync.RWMutex
)

// RegisterEntityConfig associates a Go type T with its storage configuration.
func RegisterEntityConfig[T any](cfg EntityConfig) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.Lock()
	defer mu.Unlock()
	entityConfigRegistry[t] = cfg
}

// GetEntityConfig retrieves the storage configuration for type T, if any.
func GetEntityConfig[T any]() (EntityConfig, bool) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.RLock()
	defer mu.RUnlock()
	cfg, ok := entityConfigRegistry[t]
	return cfg, ok
}
