package storagemodels

import (
	"time"
)

// StreamResult represents a single item in a stream with metadata
type StreamResult[T any] struct {
	Item  *T         // The decoded entity
	Raw   Document   // Raw stored document
	Error error      // Item-specific error, if any
	Meta  StreamMeta // Metadata about this item
}

// StreamMeta contains metadata about a streamed item
type StreamMeta struct {
	Index     int64     // Item index in stream (0-based)
	Timestamp time.Time // When item was retrieved
}

// StreamOptions configures streaming behavior
type StreamOptions struct {
	BufferSize       int                  // Channel buffer size (default: 100)
	ProgressInterval int64                // Items between progress reports (default: 100)
	ProgressHandler  func(StreamProgress) // Optional progress callback
	ErrorHandler     func(error) bool     // Return true to continue, false to stop
}

// StreamProgress tracks streaming progress
type StreamProgress struct {
	ItemsProcessed int64     // Total items processed
	Errors         []error   // Accumulated non-fatal errors
	StartTime      time.Time // When streaming started
	CurrentRate    float64   // Items per second
}

// StreamOption is a functional option for configuring streaming
type StreamOption func(*StreamOptions)

// DefaultStreamOptions returns default streaming options
func DefaultStreamOptions() StreamOptions {
	return StreamOptions{
		BufferSize:       100,
		ProgressInterval: 100,
	}
}

// WithBufferSize sets the result channel buffer size
func WithBufferSize(size int) StreamOption {
	return func(o *StreamOptions) {
		o.BufferSize = size
	}
}

// WithProgressInterval sets how many items pass between progress reports
func WithProgressInterval(n int64) StreamOption {
	return func(o *StreamOptions) {
		o.ProgressInterval = n
	}
}

// WithProgressHandler sets a progress callback
func WithProgressHandler(fn func(StreamProgress)) StreamOption {
	return func(o *StreamOptions) {
		o.ProgressHandler = fn
	}
}

// WithErrorHandler sets an error callback; return true to continue streaming
func WithErrorHandler(fn func(error) bool) StreamOption {
	return func(o *StreamOptions) {
		o.ErrorHandler = fn
	}
}
