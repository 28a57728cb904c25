/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"regexp"

	"github.com/lib/pq"

	"github.com/suparena/docstore/errors"
)

// validTableNameRe validates table names (alphanumeric and underscores,
// not starting with a digit). Table names reach DDL text directly, so
// anything else is rejected before any statement is built.
var validTableNameRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func validateTableName(table string) error {
	if table == "" || len(table) > 63 || !validTableNameRe.MatchString(table) {
		return errors.NewValidationError("table", fmt.Sprintf("invalid table name %q", table))
	}
	return nil
}

// EnsureTable creates the backing table and its identifier hash index for
// an entity type. It is idempotent: the "already exists" failure class is
// treated as success, so concurrent bootstrap attempts from multiple
// processes never fail each other. Any other DDL failure surfaces as a
// SchemaConflictError.
func EnsureTable(ctx context.Context, db *sql.DB, table string) error {
	if err := validateTableName(table); err != nil {
		return err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return errors.NewConnectionError(table, err)
	}
	defer conn.Close()

	stmts := []string{
		fmt.Sprintf("CREATE TABLE %s ( data jsonb )", table),
		fmt.Sprintf("CREATE INDEX idx_id_%s ON %s USING HASH ((data->>'_id'))", table, table),
	}
	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			if isDuplicateObject(err) {
				continue
			}
			return errors.NewSchemaConflictError(table, err)
		}
	}
	return nil
}

// DropTable removes the backing table for an entity type. Tables are never
// dropped automatically; this is the explicit drop operation.
func DropTable(ctx context.Context, db *sql.DB, table string) error {
	if err := validateTableName(table); err != nil {
		return err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return errors.NewConnectionError(table, err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, fmt.Sprintf("DROP TABLE %s", table)); err != nil {
		return errors.NewSchemaConflictError(table, err)
	}
	return nil
}

// isDuplicateObject reports whether err is PostgreSQL's "already exists"
// failure class: 42P07 (duplicate relation) or 42710 (duplicate object).
func isDuplicateObject(err error) bool {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch pqErr.Code {
		case "42P07", "42710":
			return true
		}
	}
	return false
}
