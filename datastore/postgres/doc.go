/*
Package postgres provides a PostgreSQL implementation of the DataStore interface.

Each entity type maps to one table holding a single jsonb column named data;
the whole entity lives in that document, addressed by the "_id" field inside
it and indexed by a hash index on its textual extraction. No other columns,
joins, or secondary engines are supported.

The PostgresDataStore supports:
  - Lazy, idempotent schema bootstrap on first use per (pool, entity type)
  - Upsert-by-identifier save semantics with RETURNING adoption
  - Declarative filters translated to parameterized SQL ($1, $2, ...)
  - Lazy single-pass iteration and channel-based streaming
  - Delete verification against the identifier returned by the DELETE

Connection pooling:
Pools are database/sql pools over lib/pq, deduplicated process-wide by the
PoolCache keyed on the config fingerprint:

	cache := postgres.NewPoolCache()
	store, err := postgres.NewPostgresDataStore[Widget](cache, &postgres.ConnConfig{
	    Host:     "localhost",
	    Database: "app",
	})

Querying:

	it, err := store.Find(ctx, &storagemodels.QuerySpec{
	    Filter: storagemodels.Filter{"qty": storagemodels.Filter{storagemodels.OpGte: 10}},
	    Limit:  25,
	})
	defer it.Close()
	for it.Next() {
	    widget := it.Entity()
	    ...
	}

The save path checks existence before choosing INSERT or UPDATE. The two
statements are not one transaction, so concurrent writers to the same
identifier resolve last-write-wins. For usage examples, see the integration
tests and documentation.
*/
package postgres
