/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/suparena/docstore/datastore"
	"github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/registry"
	"github.com/suparena/docstore/storagemodels"
)

// primaryField is the fixed primary-key convention: one string identifier
// field per entity type, computed only when empty at save time.
type primaryField struct {
	name      string
	compute   func() string
	onlyEmpty bool
}

func defaultPrimary() primaryField {
	return primaryField{
		name:      "_id",
		compute:   uuid.NewString,
		onlyEmpty: true,
	}
}

func checkPrimary(p primaryField) error {
	if p.name != "_id" {
		return errors.NewValidationError(p.name, `primary field must be named "_id"`)
	}
	if p.compute == nil {
		return errors.NewValidationError(p.name, "primary field requires a compute function")
	}
	return nil
}

// PostgresDataStore implements datastore.DataStore[T] on a PostgreSQL table
// holding one jsonb document per row, addressed by the "_id" field inside
// the document and indexed by a hash index on its textual extraction.
type PostgresDataStore[T any] struct {
	cache      *PoolCache
	config     *ConnConfig
	table      string
	entityType string
	codec      datastore.Codec[T]
	translator *Translator
	computed   map[string]registry.ComputedField
	primary    primaryField

	// mu guards the bootstrap marker. The marker is the pool identity the
	// schema was last ensured against, so bootstrap re-runs after the pool
	// cache was torn down and a fresh pool handed out.
	mu   sync.Mutex
	pool *sql.DB
}

// NewPostgresDataStore constructs a store for type T. Table name, field
// schema, and computed fields come from the entity config registry when T
// is registered there; otherwise the table name derives from the type name
// and any syntactically valid field may be filtered on.
func NewPostgresDataStore[T any](cache *PoolCache, cfg *ConnConfig) (*PostgresDataStore[T], error) {
	var zero T
	entityType := reflect.TypeOf(zero).Name()
	if entityType == "" {
		return nil, errors.NewValidationError("type", "entity type must be a named struct type")
	}

	table := strings.ToLower(entityType)
	var fields []string
	computed := map[string]registry.ComputedField{}
	if ec, ok := registry.GetEntityConfig[T](); ok {
		if ec.Table != "" {
			table = ec.Table
		}
		fields = ec.Fields
		for name, cf := range ec.Computed {
			computed[name] = cf
		}
	}

	primary := defaultPrimary()
	if err := checkPrimary(primary); err != nil {
		return nil, err
	}
	if len(fields) > 0 && !contains(fields, primary.name) {
		fields = append(fields, primary.name)
	}

	translator, err := NewTranslator(table, fields)
	if err != nil {
		return nil, err
	}

	connCfg := ConnConfig{}
	if cfg != nil {
		connCfg = *cfg
	}
	if connCfg.Database == "" {
		connCfg.Database = "postgres"
	}

	return &PostgresDataStore[T]{
		cache:      cache,
		config:     &connCfg,
		table:      table,
		entityType: entityType,
		codec:      datastore.JSONCodec[T]{},
		translator: translator,
		computed:   computed,
		primary:    primary,
	}, nil
}

// Table returns the backing table name.
func (d *PostgresDataStore[T]) Table() string {
	return d.table
}

// connect obtains the shared pool and bootstraps the schema the first time
// this store sees a given pool. Schema DDL therefore runs meaningfully once
// per (pool, entity type), yet re-runs when the cache replaced the pool.
func (d *PostgresDataStore[T]) connect(ctx context.Context) (*sql.DB, error) {
	pool, err := d.cache.Connect(ctx, d.config)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool == pool {
		return pool, nil
	}
	if err := EnsureTable(ctx, pool, d.table); err != nil {
		return nil, err
	}
	d.pool = pool
	return pool, nil
}

// acquire checks out a dedicated connection for one logical operation.
// Callers must Close it on every exit path.
func (d *PostgresDataStore[T]) acquire(ctx context.Context) (*sql.Conn, error) {
	pool, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}
	conn, err := pool.Conn(ctx)
	if err != nil {
		return nil, errors.NewConnectionError(d.config.RedactedFingerprint(), err)
	}
	return conn, nil
}

// Count returns the total row count for the entity type.
func (d *PostgresDataStore[T]) Count(ctx context.Context) (int64, error) {
	sqlText, args, err := d.translator.Count(nil)
	if err != nil {
		return 0, err
	}

	conn, err := d.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	var n int64
	if err := conn.QueryRowContext(ctx, sqlText, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", d.entityType, err)
	}
	return n, nil
}

// Exists reports whether a row with the given identifier exists.
func (d *PostgresDataStore[T]) Exists(ctx context.Context, id string) (bool, error) {
	conn, err := d.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	return d.existsOn(ctx, conn, id)
}

func (d *PostgresDataStore[T]) existsOn(ctx context.Context, conn *sql.Conn, id string) (bool, error) {
	sqlText, args, err := d.translator.Count(&storagemodels.QuerySpec{
		Filter: storagemodels.Filter{d.primary.name: id},
	})
	if err != nil {
		return false, err
	}

	var n int64
	if err := conn.QueryRowContext(ctx, sqlText, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("exists %s %q: %w", d.entityType, id, err)
	}
	return n > 0, nil
}

// FindByID returns the entity with the given identifier, or a
// NotFoundError when no row matches.
func (d *PostgresDataStore[T]) FindByID(ctx context.Context, id string) (*T, error) {
	sqlText, args, err := d.translator.Select(&storagemodels.QuerySpec{
		Filter: storagemodels.Filter{d.primary.name: id},
		Limit:  1,
	})
	if err != nil {
		return nil, err
	}

	conn, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var raw []byte
	if err := conn.QueryRowContext(ctx, sqlText, args...).Scan(&raw); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError(d.entityType, id)
		}
		return nil, fmt.Errorf("findByID %s %q: %w", d.entityType, id, err)
	}

	entity, _, err := d.decodeRow(raw)
	return entity, err
}

// FindOne returns the first entity matching the spec, or nil (without
// error) when none matches. Absence is a value here, not a failure.
func (d *PostgresDataStore[T]) FindOne(ctx context.Context, spec *storagemodels.QuerySpec) (*T, error) {
	one := storagemodels.QuerySpec{Limit: 1}
	if spec != nil {
		one.Filter = spec.Filter
		one.Skip = spec.Skip
	}
	sqlText, args, err := d.translator.Select(&one)
	if err != nil {
		return nil, err
	}

	conn, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var raw []byte
	if err := conn.QueryRowContext(ctx, sqlText, args...).Scan(&raw); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("findOne %s: %w", d.entityType, err)
	}

	entity, _, err := d.decodeRow(raw)
	return entity, err
}

// Find returns a lazy iterator over the entities matching the spec. Row
// fetch is driven by consumption; the iterator holds a dedicated connection
// until Close. A zero limit defaults to storagemodels.DefaultLimit.
func (d *PostgresDataStore[T]) Find(ctx context.Context, spec *storagemodels.QuerySpec) (datastore.Iterator[T], error) {
	bounded := storagemodels.QuerySpec{Limit: storagemodels.DefaultLimit}
	if spec != nil {
		bounded.Filter = spec.Filter
		bounded.Skip = spec.Skip
		if spec.Limit > 0 {
			bounded.Limit = spec.Limit
		}
	}
	sqlText, args, err := d.translator.Select(&bounded)
	if err != nil {
		return nil, err
	}

	conn, err := d.acquire(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, sqlText, args...)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("find %s: %w", d.entityType, err)
	}
	return &rowIterator[T]{rows: rows, conn: conn, codec: d.codec}, nil
}

// Add constructs and persists one entity per document, returning the
// persisted entities in input order.
func (d *PostgresDataStore[T]) Add(ctx context.Context, docs ...storagemodels.Document) ([]*T, error) {
	if len(docs) == 0 {
		return nil, errors.NewInvalidArgumentError("add", "at least one document is required")
	}

	entities := make([]*T, 0, len(docs))
	for i, doc := range docs {
		if doc == nil {
			return nil, errors.NewInvalidArgumentError("add", fmt.Sprintf("document %d is nil", i))
		}
		entity, err := d.codec.Deserialize(doc)
		if err != nil {
			return nil, errors.NewInvalidArgumentError("add", err.Error())
		}
		if err := d.Save(ctx, entity); err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// AddOne persists a single document and returns the resulting entity.
func (d *PostgresDataStore[T]) AddOne(ctx context.Context, doc storagemodels.Document) (*T, error) {
	entities, err := d.Add(ctx, doc)
	if err != nil {
		return nil, err
	}
	return entities[0], nil
}

// Save upserts the entity by identifier. Computed fields are materialized
// first; a missing identifier is populated with a random UUID, never
// regenerated once set. When the identifier was already set and a row with
// it exists, the row is updated, otherwise a new row is inserted. Either
// way the in-memory state is replaced with the row the database returned.
//
// The existence check and the following write are two statements, not one
// transaction: under concurrent writers to the same identifier the last
// writer wins. That race is a documented property of this layer.
func (d *PostgresDataStore[T]) Save(ctx context.Context, entity *T) error {
	doc, err := d.codec.Serialize(entity)
	if err != nil {
		return err
	}
	d.applyComputed(doc)

	id, err := d.identifierIn(doc)
	if err != nil {
		return err
	}
	hadID := id != ""
	if !hadID {
		id = d.primary.compute()
		doc[d.primary.name] = id
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("save %s: %w", d.entityType, err)
	}

	conn, err := d.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	var raw []byte
	if hadID {
		exists, err := d.existsOn(ctx, conn, id)
		if err != nil {
			return err
		}
		if exists {
			stmt := fmt.Sprintf("UPDATE %s SET data = $1 WHERE data->>'_id' = $2 RETURNING data", d.table)
			if err := conn.QueryRowContext(ctx, stmt, payload, id).Scan(&raw); err != nil {
				return fmt.Errorf("save %s %q: %w", d.entityType, id, err)
			}
			return d.adopt(entity, raw)
		}
	}

	stmt := fmt.Sprintf("INSERT INTO %s VALUES ($1) RETURNING data", d.table)
	if err := conn.QueryRowContext(ctx, stmt, payload).Scan(&raw); err != nil {
		return fmt.Errorf("save %s %q: %w", d.entityType, id, err)
	}
	return d.adopt(entity, raw)
}

// Load overwrites the entity's in-memory fields from the stored row. It
// fails with MissingIdentifierError when the identifier is absent or no
// row carries it.
func (d *PostgresDataStore[T]) Load(ctx context.Context, entity *T) error {
	id, err := d.identifierOf(entity)
	if err != nil {
		return err
	}
	if id == "" {
		return errors.NewMissingIdentifierError(d.entityType, "load")
	}

	conn, err := d.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	exists, err := d.existsOn(ctx, conn, id)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NewMissingIdentifierError(d.entityType, "load")
	}

	sqlText, args, err := d.translator.Select(&storagemodels.QuerySpec{
		Filter: storagemodels.Filter{d.primary.name: id},
		Limit:  1,
	})
	if err != nil {
		return err
	}

	var raw []byte
	if err := conn.QueryRowContext(ctx, sqlText, args...).Scan(&raw); err != nil {
		return fmt.Errorf("load %s %q: %w", d.entityType, id, err)
	}
	return d.adopt(entity, raw)
}

// Delete removes the entity's row. The identifier returned by the DELETE
// must match the entity's identifier; a mismatch is a data-integrity
// failure, never silently swallowed. On success the in-memory state is
// cleared to the zero value.
func (d *PostgresDataStore[T]) Delete(ctx context.Context, entity *T) error {
	id, err := d.identifierOf(entity)
	if err != nil {
		return err
	}
	if id == "" {
		return errors.NewMissingIdentifierError(d.entityType, "delete")
	}

	conn, err := d.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	exists, err := d.existsOn(ctx, conn, id)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NewMissingIdentifierError(d.entityType, "delete")
	}

	stmt := fmt.Sprintf("DELETE FROM %s WHERE data->>'_id' = $1 RETURNING data->>'_id'", d.table)
	var deletedID string
	if err := conn.QueryRowContext(ctx, stmt, id).Scan(&deletedID); err != nil {
		return fmt.Errorf("delete %s %q: %w", d.entityType, id, err)
	}
	if deletedID != id {
		return errors.NewDeleteVerificationError(d.entityType, id, deletedID)
	}

	var zero T
	*entity = zero
	return nil
}

// Drop removes the backing table and clears the bootstrap marker, so the
// next operation recreates an empty table.
func (d *PostgresDataStore[T]) Drop(ctx context.Context) error {
	pool, err := d.connect(ctx)
	if err != nil {
		return err
	}
	if err := DropTable(ctx, pool, d.table); err != nil {
		return err
	}

	d.mu.Lock()
	d.pool = nil
	d.mu.Unlock()
	return nil
}

// applyComputed materializes computed fields into the document. Fields
// marked OnlyEmpty are computed only when absent or empty.
func (d *PostgresDataStore[T]) applyComputed(doc storagemodels.Document) {
	for name, cf := range d.computed {
		if cf.Fn == nil {
			continue
		}
		if cf.OnlyEmpty && !isEmptyValue(doc[name]) {
			continue
		}
		doc[name] = cf.Fn()
	}
}

func (d *PostgresDataStore[T]) identifierOf(entity *T) (string, error) {
	doc, err := d.codec.Serialize(entity)
	if err != nil {
		return "", err
	}
	return d.identifierIn(doc)
}

// identifierIn extracts the identifier from a serialized document. The
// primary-key contract fixes its type as string; a present value of any
// other type is rejected rather than silently rekeyed.
func (d *PostgresDataStore[T]) identifierIn(doc storagemodels.Document) (string, error) {
	raw, ok := doc[d.primary.name]
	if !ok || raw == nil {
		return "", nil
	}
	id, ok := raw.(string)
	if !ok {
		return "", errors.NewValidationError(d.primary.name,
			fmt.Sprintf("identifier must be a string, got %T", raw))
	}
	return id, nil
}

// adopt replaces the entity's in-memory state with the row returned by the
// database, the post-write canonical form.
func (d *PostgresDataStore[T]) adopt(entity *T, raw []byte) error {
	decoded, _, err := d.decodeRow(raw)
	if err != nil {
		return err
	}
	*entity = *decoded
	return nil
}

func (d *PostgresDataStore[T]) decodeRow(raw []byte) (*T, storagemodels.Document, error) {
	var doc storagemodels.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode %s row: %w", d.entityType, err)
	}
	entity, err := d.codec.Deserialize(doc)
	if err != nil {
		return nil, doc, err
	}
	return entity, doc, nil
}

func isEmptyValue(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
