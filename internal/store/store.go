// Package store holds the drivers for the managed key-value table.
//
// Every driver exposes the same four data operations the functions need:
// a full scan, a point get, an unconditional upsert and an unconditional
// delete. Drivers never retry and never translate faults; a wrapped
// driver error still matches errors.Is/As against its cause.
package store

import "context"

// Keyed is implemented by records that carry their own integer key.
type Keyed interface {
	Key() int
}

// Table is a key-value table of records of type T.
type Table[T Keyed] interface {
	// Scan returns every record, all pages, no filter. An empty table
	// yields an empty, non-nil slice.
	Scan(ctx context.Context) ([]T, error)

	// Get returns the record stored under key. A missing record is
	// reported as found=false with a nil error.
	Get(ctx context.Context, key int) (T, bool, error)

	// Put writes item whether or not its key already exists.
	Put(ctx context.Context, item T) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key int) error

	// Ping checks that the table is reachable.
	Ping(ctx context.Context) error
}
