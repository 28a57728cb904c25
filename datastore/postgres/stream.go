/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/suparena/docstore/registry"
	"github.com/suparena/docstore/storagemodels"
)

// Stream pushes the entities matching the spec through a channel with
// configurable options. Rows are fetched as the channel is drained; the
// channel closes when the result set is exhausted, the context is
// canceled, or the error handler stops the stream.
func (d *PostgresDataStore[T]) Stream(ctx context.Context, spec *storagemodels.QuerySpec, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	// Apply options
	options := storagemodels.DefaultStreamOptions()
	for _, opt := range opts {
		opt(&options)
	}

	resultCh := make(chan storagemodels.StreamResult[T], options.BufferSize)

	go d.streamWorker(ctx, spec, options, resultCh)

	return resultCh
}

// streamWorker handles the actual streaming logic
func (d *PostgresDataStore[T]) streamWorker(
	ctx context.Context,
	spec *storagemodels.QuerySpec,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult[T],
) {
	defer close(resultCh)

	var itemIndex int64
	startTime := time.Now()
	var streamErrors []error

	reportProgress := func() {
		if options.ProgressHandler == nil {
			return
		}
		progress := storagemodels.StreamProgress{
			ItemsProcessed: itemIndex,
			Errors:         streamErrors,
			StartTime:      startTime,
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			progress.CurrentRate = float64(progress.ItemsProcessed) / elapsed
		}
		options.ProgressHandler(progress)
	}

	// send delivers a result unless the context is canceled first. Every
	// delivery must go through it so a consumer that stops receiving can
	// never strand the worker and its connection.
	send := func(result storagemodels.StreamResult[T]) bool {
		select {
		case <-ctx.Done():
			return false
		case resultCh <- result:
			return true
		}
	}

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
		send(storagemodels.StreamResult[T]{Error: err, Meta: d.streamMeta(itemIndex)})
		return
	}

	conn, err := d.acquire(ctx)
	if err != nil {
		send(storagemodels.StreamResult[T]{Error: err, Meta: d.streamMeta(itemIndex)})
		return
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, sqlText, args...)
	if err != nil {
		send(storagemodels.StreamResult[T]{
			Error: fmt.Errorf("stream %s: %w", d.entityType, err),
			Meta:  d.streamMeta(itemIndex),
		})
		return
	}
	defer rows.Close()

	for rows.Next() {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return
		default:
		}

		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			send(storagemodels.StreamResult[T]{
				Error: fmt.Errorf("failed to scan row: %w", err),
				Meta:  d.streamMeta(itemIndex),
			})
			return
		}

		result := d.processRow(raw, itemIndex)
		itemIndex++

		if !send(result) {
			return
		}

		if result.Error != nil {
			streamErrors = append(streamErrors, result.Error)
			if options.ErrorHandler != nil && !options.ErrorHandler(result.Error) {
				return
			}
		}

		if options.ProgressInterval > 0 && itemIndex%options.ProgressInterval == 0 {
			reportProgress()
		}
	}

	if err := rows.Err(); err != nil {
		send(storagemodels.StreamResult[T]{
			Error: fmt.Errorf("stream %s: %w", d.entityType, err),
			Meta:  d.streamMeta(itemIndex),
		})
	}

	// Final progress report
	reportProgress()
}

// processRow converts one stored document to a typed result. When the
// direct codec fails, the type registry's decode function is the fallback.
func (d *PostgresDataStore[T]) processRow(raw []byte, index int64) storagemodels.StreamResult[T] {
	meta := d.streamMeta(index)

	var doc storagemodels.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return storagemodels.StreamResult[T]{
			Error: fmt.Errorf("failed to decode row: %w", err),
			Meta:  meta,
		}
	}

	entity, err := d.codec.Deserialize(doc)
	if err == nil {
		return storagemodels.StreamResult[T]{Item: entity, Raw: doc, Meta: meta}
	}

	if decodeFn, regErr := registry.GetDecodeFunc(d.entityType); regErr == nil {
		obj, decodeErr := decodeFn(doc)
		if decodeErr == nil {
			switch typed := obj.(type) {
			case *T:
				return storagemodels.StreamResult[T]{Item: typed, Raw: doc, Meta: meta}
			case T:
				return storagemodels.StreamResult[T]{Item: &typed, Raw: doc, Meta: meta}
			}
		}
	}

	return storagemodels.StreamResult[T]{
		Error: fmt.Errorf("failed to decode document for %s: %w", d.entityType, err),
		Raw:   doc,
		Meta:  meta,
	}
}

func (d *PostgresDataStore[T]) streamMeta(index int64) storagemodels.StreamMeta {
	return storagemodels.StreamMeta{
		Index:     index,
		Timestamp: time.Now(),
	}
}
