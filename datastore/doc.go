/*
Package datastore defines the core interfaces for DocStore's data persistence layer.

The main interface is DataStore[T], which provides generic document-style
persistence for any entity type T:

	type DataStore[T any] interface {
	    Count(ctx context.Context) (int64, error)
	    Exists(ctx context.Context, id string) (bool, error)
	    FindByID(ctx context.Context, id string) (*T, error)
	    FindOne(ctx context.Context, spec *storagemodels.QuerySpec) (*T, error)
	    Find(ctx context.Context, spec *storagemodels.QuerySpec) (Iterator[T], error)
	    Stream(ctx context.Context, spec *storagemodels.QuerySpec, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
	    Add(ctx context.Context, docs ...storagemodels.Document) ([]*T, error)
	    Save(ctx context.Context, entity *T) error
	    Load(ctx context.Context, entity *T) error
	    Delete(ctx context.Context, entity *T) error
	    Drop(ctx context.Context) error
	}

Implementations:
  - postgres: PostgreSQL implementation storing one jsonb document per row
  - mock: In-memory mock implementation for testing

Entities cross the storage boundary through the Codec interface; JSONCodec is
the default and maps entities to documents through their JSON form. The
package uses Go generics to ensure type safety at compile time while
maintaining flexibility for different storage backends.
*/
package datastore
