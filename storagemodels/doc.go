/*
Package storagemodels defines the data structures used throughout DocStore.

Key Types:

Document:
The JSON-compatible mapping an entity round-trips through on its way to and
from the single jsonb column:

	doc := Document{"_id": "abc", "name": "a", "qty": 1}

QuerySpec:
Parameters for a filtered read, combining a declarative filter with
pagination:

	spec := &QuerySpec{
	    Filter: Filter{
	        "qty":  Filter{OpGte: 10},
	        OpOr:   []Filter{{"status": "open"}, {"status": "review"}},
	    },
	    Limit: 25,
	    Skip:  50,
	}

StreamResult:
Results from streaming operations with metadata:

	type StreamResult[T any] struct {
	    Item  *T         // The decoded entity
	    Raw   Document   // Raw stored document
	    Error error      // Item-specific error, if any
	    Meta  StreamMeta // Metadata about this item
	}

StreamOptions:
Configuration for streaming behavior:

	opts := []StreamOption{
	    WithBufferSize(100),
	    WithProgressHandler(progressFunc),
	}

These types provide a consistent interface across different storage implementations.
*/
package storagemodels
