/*
Package docstore provides a document-style persistence layer for Go
applications on top of PostgreSQL, storing each entity as a single jsonb
document per row addressed by an application-level identifier.

Key Features:
  - Type-safe operations using Go generics
  - One table per entity type, one jsonb column, one hash index on "_id"
  - Process-wide connection pool cache keyed by config fingerprint
  - Declarative filters translated to parameterized SQL
  - Upsert-by-identifier save semantics with RETURNING adoption
  - Semantic error types for better error handling
  - In-memory mock implementation for testing

Basic Usage:

	// Create a pool cache and a typed store
	cache := postgres.NewPoolCache()
	widgets, _ := postgres.NewPostgresDataStore[Widget](cache, &postgres.ConnConfig{
	    Host:     "localhost",
	    Database: "app",
	})

	// Persist and read back
	saved, _ := widgets.Add(ctx, storagemodels.Document{"name": "a"})
	found, _ := widgets.FindByID(ctx, saved[0].ID)

	// Manage stores per entity type
	mts := docstore.NewMultiTypeStorage()
	docstore.RegisterDataStore(mts, "widgets", widgets)

For more information, see the documentation at https://github.com/suparena/docstore
*/
package docstore
