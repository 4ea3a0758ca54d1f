// Package memory is the in-process docstore backend used by tests and by the
// demo configuration. Subscriptions re-run their query after every mutation
// in the watched collection and deliver full snapshots.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore"
)

type Store struct {
	mu   sync.RWMutex
	docs map[string]map[string]any // path -> fields
	meta map[string]time.Time      // path -> updated at
	subs map[*subscription]struct{}
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		docs: make(map[string]map[string]any),
		meta: make(map[string]time.Time),
		subs: make(map[*subscription]struct{}),
		now:  time.Now,
	}
}

func (s *Store) Get(_ context.Context, path string) (docstore.Document, bool, error) {
	if _, _, err := docstore.SplitPath(path); err != nil {
		return docstore.Document{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	fields, ok := s.docs[path]
	if !ok {
		return docstore.Document{}, false, nil
	}
	return docstore.Document{Path: path, Fields: cloneFields(fields), UpdatedAt: s.meta[path]}, true, nil
}

func (s *Store) Query(_ context.Context, collection string, filters []docstore.Filter, orderBy string) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryLocked(collection, filters, orderBy), nil
}

func (s *Store) queryLocked(collection string, filters []docstore.Filter, orderBy string) []docstore.Document {
	out := make([]docstore.Document, 0)
	for path, fields := range s.docs {
		if docstore.CollectionOf(path) != collection {
			continue
		}
		if !matchesFilters(fields, filters) {
			continue
		}
		out = append(out, docstore.Document{Path: path, Fields: cloneFields(fields), UpdatedAt: s.meta[path]})
	}

	if orderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return compareValues(out[i].Fields[orderBy], out[j].Fields[orderBy]) < 0
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	}

	return out
}

func (s *Store) Set(_ context.Context, path string, fields map[string]any) error {
	collection, _, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.docs[path] = cloneFields(fields)
	s.meta[path] = s.now()
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *Store) Update(_ context.Context, path string, fields map[string]any) error {
	collection, _, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	existing, ok := s.docs[path]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("update %q: document does not exist", path)
	}
	for key, value := range fields {
		existing[key] = value
	}
	s.meta[path] = s.now()
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *Store) Delete(_ context.Context, path string) error {
	collection, _, err := docstore.SplitPath(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.docs, path)
	delete(s.meta, path)
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *Store) BatchCommit(ctx context.Context, writes []docstore.Write) error {
	if len(writes) > docstore.MaxBatchSize {
		return fmt.Errorf("%w: %d > %d", docstore.ErrBatchTooLarge, len(writes), docstore.MaxBatchSize)
	}

	collections := make(map[string]struct{})
	s.mu.Lock()
	for _, w := range writes {
		collection, _, err := docstore.SplitPath(w.Path)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		collections[collection] = struct{}{}

		switch w.Kind {
		case docstore.WriteSet:
			s.docs[w.Path] = cloneFields(w.Fields)
			s.meta[w.Path] = s.now()
		case docstore.WriteUpdate:
			existing, ok := s.docs[w.Path]
			if !ok {
				s.mu.Unlock()
				return fmt.Errorf("update %q: document does not exist", w.Path)
			}
			for key, value := range w.Fields {
				existing[key] = value
			}
			s.meta[w.Path] = s.now()
		case docstore.WriteDelete:
			delete(s.docs, w.Path)
			delete(s.meta, w.Path)
		default:
			s.mu.Unlock()
			return fmt.Errorf("unknown write kind %q", w.Kind)
		}
	}
	s.mu.Unlock()

	for collection := range collections {
		s.notify(collection)
	}
	_ = ctx
	return nil
}

func (s *Store) Subscribe(_ context.Context, collection string, filters []docstore.Filter) (docstore.Subscription, error) {
	sub := &subscription{
		store:      s,
		collection: collection,
		filters:    filters,
		updates:    make(chan []docstore.Document, 1),
	}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	snapshot := s.queryLocked(collection, filters, "")
	s.mu.Unlock()

	sub.push(snapshot)
	return sub, nil
}

func (s *Store) notify(collection string) {
	s.mu.RLock()
	targets := make([]*subscription, 0, len(s.subs))
	for sub := range s.subs {
		if sub.collection == collection {
			targets = append(targets, sub)
		}
	}
	s.mu.RUnlock()

	for _, sub := range targets {
		s.mu.RLock()
		snapshot := s.queryLocked(sub.collection, sub.filters, "")
		s.mu.RUnlock()
		sub.push(snapshot)
	}
}

func (s *Store) drop(sub *subscription) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

type subscription struct {
	store      *Store
	collection string
	filters    []docstore.Filter
	updates    chan []docstore.Document

	mu     sync.Mutex
	closed bool
}

func (s *subscription) Updates() <-chan []docstore.Document {
	return s.updates
}

func (s *subscription) Err() error {
	return nil
}

func (s *subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.store.drop(s)
	close(s.updates)
}

// push coalesces: when the receiver lags, the stale pending snapshot is
// replaced by the newest one.
func (s *subscription) push(snapshot []docstore.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.updates <- snapshot:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

func matchesFilters(fields map[string]any, filters []docstore.Filter) bool {
	for _, f := range filters {
		value, ok := fields[f.Field]
		if !ok {
			return false
		}
		switch f.Op {
		case docstore.OpEqual:
			if compareValues(value, f.Value) != 0 {
				return false
			}
		case docstore.OpGreaterOrEqual:
			if compareValues(value, f.Value) < 0 {
				return false
			}
		case docstore.OpLessOrEqual:
			if compareValues(value, f.Value) > 0 {
				return false
			}
		case docstore.OpArrayContains:
			if !arrayContains(value, f.Value) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func arrayContains(value, target any) bool {
	switch arr := value.(type) {
	case []string:
		for _, item := range arr {
			if compareValues(item, target) == 0 {
				return true
			}
		}
	case []any:
		for _, item := range arr {
			if compareValues(item, target) == 0 {
				return true
			}
		}
	}
	return false
}

// compareValues orders two field values, normalizing across the numeric types
// and timestamp encodings the JSON round-trip produces.
func compareValues(a, b any) int {
	if ta, ok := asTime(a); ok {
		if tb, ok := asTime(b); ok {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			default:
				return 0
			}
		}
	}
	if na, ok := asFloat(a); ok {
		if nb, ok := asFloat(b); ok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		switch v := value.(type) {
		case []string:
			out[key] = append([]string(nil), v...)
		case []any:
			out[key] = append([]any(nil), v...)
		case map[string]any:
			out[key] = cloneFields(v)
		default:
			out[key] = value
		}
	}
	return out
}
