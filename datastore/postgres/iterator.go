/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package postgres

import (
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/suparena/docstore/datastore"
	"github.com/suparena/docstore/storagemodels"
)

// rowIterator is a single-pass iterator over a result set. Each Next call
// fetches and decodes one row, so consumption drives the row fetch with no
// buffering beyond what the driver provides. The iterator owns a dedicated
// connection and returns it to the pool on Close.
type rowIterator[T any] struct {
	rows   *sql.Rows
	conn   *sql.Conn
	codec  datastore.Codec[T]
	cur    *T
	err    error
	closed bool
}

func (it *rowIterator[T]) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	if !it.rows.Next() {
		it.err = it.rows.Err()
		_ = it.Close()
		return false
	}

	var raw []byte
	if err := it.rows.Scan(&raw); err != nil {
		it.err = fmt.Errorf("failed to scan row: %w", err)
		_ = it.Close()
		return false
	}

	var doc storagemodels.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		it.err = fmt.Errorf("failed to decode row: %w", err)
		_ = it.Close()
		return false
	}
	entity, err := it.codec.Deserialize(doc)
	if err != nil {
		it.err = err
		_ = it.Close()
		return false
	}

	it.cur = entity
	return true
}

func (it *rowIterator[T]) Entity() *T {
	return it.cur
}

func (it *rowIterator[T]) Err() error {
	return it.err
}

func (it *rowIterator[T]) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	err := it.rows.Close()
	return stderrors.Join(err, it.conn.Close())
}
