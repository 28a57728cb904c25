package registry

import (
	"fmt"

	"github.com/suparena/docstore/storagemodels"
)

// DecodeFunc defines a function that takes a raw stored document and returns the decoded object.
type DecodeFunc func(doc storagemodels.Document) (interface{}, error)

// typeRegistry holds the mapping from an entity type name to its decode function.
var typeRegistry = make(map[string]DecodeFunc)

// RegisterType registers a decode function for a given entity type name.
// If a type is already registered for the given name, it panics to prevent accidental overrides.
func RegisterType(name string, fn DecodeFunc) {
	if _, exists := typeRegistry[name]; exists {
		panic(fmt.Sprintf("type registry: type %q already registered", name))
	}
	typeRegistry[name] = fn
}

// GetDecodeFunc returns the registered decode function for the given entity type name.
// If no function is registered, it returns an error.
func GetDecodeFunc(name string) (DecodeFunc, error) {
	fn, ok := typeRegistry[name]
	if !ok {
		return nil, fmt.Errorf("type registry: no type registered for %q", name)
	}
	return fn, nil
}
