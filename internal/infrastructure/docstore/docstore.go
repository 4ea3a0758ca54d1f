// Package docstore defines the generic document-store contract the domain
// repositories are built on: path-keyed documents with schemaless fields,
// filtered queries, size-limited batch writes, and change subscriptions.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxBatchSize is the per-batch write ceiling of the underlying store.
// Larger operations are split into sequential batches; each batch commits
// atomically but the overall operation does not.
const MaxBatchSize = 500

var (
	ErrBatchTooLarge = errors.New("batch exceeds maximum write count")
	ErrInvalidPath   = errors.New("invalid document path")
)

// TimeLayout is the canonical encoding for timestamp fields. The fraction is
// fixed-width: RFC3339Nano trims trailing zeros, which makes the strings
// variable-length and breaks lexicographic ordering ("…00.1Z" sorts after
// "…00.15Z"). Nine digits and a forced UTC offset keep text comparison equal
// to chronological comparison.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime encodes t in TimeLayout, normalized to UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Document is one stored record. Fields round-trip through JSON, so numbers
// may come back as float64 and timestamps as RFC3339 strings depending on the
// backend; the repository layer owns decoding.
type Document struct {
	Path      string
	Fields    map[string]any
	UpdatedAt time.Time
}

// ID returns the last path segment.
func (d Document) ID() string {
	idx := strings.LastIndexByte(d.Path, '/')
	if idx < 0 {
		return d.Path
	}
	return d.Path[idx+1:]
}

type Op string

const (
	OpEqual          Op = "=="
	OpGreaterOrEqual Op = ">="
	OpLessOrEqual    Op = "<="
	// OpArrayContains matches documents whose field is an array containing
	// the filter value.
	OpArrayContains Op = "array-contains"
)

type Filter struct {
	Field string
	Op    Op
	Value any
}

func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

type WriteKind string

const (
	WriteSet    WriteKind = "set"
	WriteUpdate WriteKind = "update"
	WriteDelete WriteKind = "delete"
)

type Write struct {
	Kind   WriteKind
	Path   string
	Fields map[string]any
}

// Subscription is a live query. Updates delivers the full matching snapshot
// after every relevant change, starting with the current one. After Updates
// is closed, Err reports whether the feed ended by Close or by failure.
type Subscription interface {
	Updates() <-chan []Document
	Err() error
	Close()
}

type Store interface {
	Get(ctx context.Context, path string) (Document, bool, error)
	Query(ctx context.Context, collection string, filters []Filter, orderBy string) ([]Document, error)
	Set(ctx context.Context, path string, fields map[string]any) error
	Update(ctx context.Context, path string, fields map[string]any) error
	Delete(ctx context.Context, path string) error
	BatchCommit(ctx context.Context, writes []Write) error
	Subscribe(ctx context.Context, collection string, filters []Filter) (Subscription, error)
}

// CommitInChunks splits writes into store-sized batches and commits them
// sequentially.
func CommitInChunks(ctx context.Context, store Store, writes []Write) error {
	for start := 0; start < len(writes); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(writes) {
			end = len(writes)
		}
		if err := store.BatchCommit(ctx, writes[start:end]); err != nil {
			return fmt.Errorf("commit batch %d..%d: %w", start, end, err)
		}
	}
	return nil
}

// SplitPath validates a document path and returns its collection and ID
// parts. Paths alternate collection/id segments, as in
// "groups/g1/predictions/p1".
func SplitPath(path string) (collection, id string, err error) {
	segments := strings.Split(path, "/")
	if len(segments) < 2 || len(segments)%2 != 0 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	for _, segment := range segments {
		if segment == "" {
			return "", "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return strings.Join(segments[:len(segments)-1], "/"), segments[len(segments)-1], nil
}

// CollectionOf returns the collection part of a valid document path.
func CollectionOf(path string) string {
	collection, _, err := SplitPath(path)
	if err != nil {
		return ""
	}
	return collection
}
