/*
Package registry manages type registration and entity configuration for DocStore.

The registry system enables:
  - Per-entity-type storage configuration resolved once at store construction
  - Dynamic decoding of stored documents back to their Go types
  - Computed-field hooks evaluated at save time

Type Registry:
Maps entity type names to decode functions:

	registry.RegisterType("Widget", func(doc storagemodels.Document) (interface{}, error) {
	    w := &Widget{}
	    return w, mapToStruct(doc, w)
	})

Entity Config Registry:
Associates Go types with their table name, queryable fields, and computed fields:

	registry.RegisterEntityConfig[Widget](registry.EntityConfig{
	    Table:  "widgets",
	    Fields: []string{"_id", "name", "qty"},
	    Computed: map[string]registry.ComputedField{
	        "createdAt": {Fn: func() any { return time.Now().UTC() }, OnlyEmpty: true},
	    },
	})

The registry is thread-safe and should be populated during initialization,
typically in init() functions.
*/
package registry
