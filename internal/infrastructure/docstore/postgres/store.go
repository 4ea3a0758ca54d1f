package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore"
	"github.com/JuanCGomezS/polla-club/internal/platform/logging"
	qb "github.com/JuanCGomezS/polla-club/internal/platform/querybuilder"
)

// Store keeps every document in a single `documents` table: the path is the
// primary key and the fields live in a JSONB column. The notify trigger
// installed by the migrations makes Subscribe work without polling the table
// on every change.
type Store struct {
	db       *sqlx.DB
	notifier *notifier

	now func() time.Time
}

func NewStore(db *sqlx.DB, listenDSN string, logger *logging.Logger) *Store {
	s := &Store{
		db:  db,
		now: time.Now,
	}
	s.notifier = newNotifier(s, listenDSN, logger)
	return s
}

// Close stops the listen connection behind active subscriptions.
func (s *Store) Close() {
	s.notifier.close()
}

type documentRow struct {
	Path      string    `db:"path"`
	Fields    []byte    `db:"fields"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (s *Store) Get(ctx context.Context, path string) (docstore.Document, bool, error) {
	if _, _, err := docstore.SplitPath(path); err != nil {
		return docstore.Document{}, false, err
	}

	query, args, err := qb.Select("path", "fields", "updated_at").
		From("documents").
		Where(qb.Eq("path", path)).
		ToSQL()
	if err != nil {
		return docstore.Document{}, false, fmt.Errorf("build select document query: %w", err)
	}

	var row documentRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return docstore.Document{}, false, nil
		}
		return docstore.Document{}, false, fmt.Errorf("select document %q: %w", path, err)
	}

	doc, err := rowToDocument(row)
	if err != nil {
		return docstore.Document{}, false, err
	}
	return doc, true, nil
}

func (s *Store) Query(ctx context.Context, collection string, filters []docstore.Filter, orderBy string) ([]docstore.Document, error) {
	conditions := []qb.Condition{qb.Eq("collection", collection)}
	for _, f := range filters {
		cond, err := filterCondition(f)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, cond)
	}

	builder := qb.Select("path", "fields", "updated_at").
		From("documents").
		Where(conditions...)
	if orderBy != "" {
		builder = builder.OrderBy(fieldExpr(orderBy))
	} else {
		builder = builder.OrderBy("path")
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build query documents query: %w", err)
	}

	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select documents in %q: %w", collection, err)
	}

	out := make([]docstore.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := rowToDocument(row)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, path string, fields map[string]any) error {
	return s.runWrites(ctx, s.db, []docstore.Write{{Kind: docstore.WriteSet, Path: path, Fields: fields}})
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	return s.runWrites(ctx, s.db, []docstore.Write{{Kind: docstore.WriteUpdate, Path: path, Fields: fields}})
}

func (s *Store) Delete(ctx context.Context, path string) error {
	return s.runWrites(ctx, s.db, []docstore.Write{{Kind: docstore.WriteDelete, Path: path}})
}

func (s *Store) BatchCommit(ctx context.Context, writes []docstore.Write) error {
	if len(writes) > docstore.MaxBatchSize {
		return fmt.Errorf("%w: %d writes", docstore.ErrBatchTooLarge, len(writes))
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch commit: %w", err)
	}

	if err := s.runWrites(ctx, tx, writes); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

func (s *Store) Subscribe(ctx context.Context, collection string, filters []docstore.Filter) (docstore.Subscription, error) {
	return s.notifier.subscribe(ctx, collection, filters)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) runWrites(ctx context.Context, ex execer, writes []docstore.Write) error {
	for _, w := range writes {
		collection, _, err := docstore.SplitPath(w.Path)
		if err != nil {
			return err
		}

		var query string
		var args []any
		switch w.Kind {
		case docstore.WriteSet:
			payload, err := sonic.Marshal(w.Fields)
			if err != nil {
				return fmt.Errorf("encode fields for %q: %w", w.Path, err)
			}
			query, args, err = qb.InsertInto("documents").
				Columns("path", "collection", "fields", "updated_at").
				Values(w.Path, collection, payload, s.now().UTC()).
				Suffix("ON CONFLICT (path) DO UPDATE SET fields = EXCLUDED.fields, updated_at = EXCLUDED.updated_at").
				ToSQL()
			if err != nil {
				return fmt.Errorf("build set document query: %w", err)
			}
		case docstore.WriteUpdate:
			payload, err := sonic.Marshal(w.Fields)
			if err != nil {
				return fmt.Errorf("encode fields for %q: %w", w.Path, err)
			}
			query, args, err = qb.Update("documents").
				SetExpr("fields", "fields || ?::jsonb", payload).
				Set("updated_at", s.now().UTC()).
				Where(qb.Eq("path", w.Path)).
				ToSQL()
			if err != nil {
				return fmt.Errorf("build update document query: %w", err)
			}
		case docstore.WriteDelete:
			query = "DELETE FROM documents WHERE path = $1"
			args = []any{w.Path}
		default:
			return fmt.Errorf("unknown write kind %q", w.Kind)
		}

		result, err := ex.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%s document %q: %w", w.Kind, w.Path, err)
		}
		if w.Kind == docstore.WriteUpdate {
			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("update document %q: %w", w.Path, err)
			}
			if affected == 0 {
				return fmt.Errorf("update %q: document does not exist", w.Path)
			}
		}
	}
	return nil
}

func filterCondition(f docstore.Filter) (qb.Condition, error) {
	switch f.Op {
	case docstore.OpEqual:
		return qb.Expr(fieldExpr(f.Field)+" = ?", filterText(f.Value)), nil
	case docstore.OpGreaterOrEqual:
		return qb.Expr(fieldExpr(f.Field)+" >= ?", filterText(f.Value)), nil
	case docstore.OpLessOrEqual:
		return qb.Expr(fieldExpr(f.Field)+" <= ?", filterText(f.Value)), nil
	case docstore.OpArrayContains:
		return qb.Expr("fields->"+quoteField(f.Field)+" @> to_jsonb(?::text)", filterText(f.Value)), nil
	default:
		return qb.Condition{}, fmt.Errorf("unsupported filter operator %q", f.Op)
	}
}

// fieldExpr extracts a field as text. Timestamps are stored in the
// fixed-width docstore.TimeLayout form, so text comparison matches
// chronological order.
func fieldExpr(field string) string {
	return "fields->>" + quoteField(field)
}

func quoteField(field string) string {
	return "'" + strings.ReplaceAll(field, "'", "''") + "'"
}

func filterText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		return docstore.FormatTime(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func rowToDocument(row documentRow) (docstore.Document, error) {
	fields := map[string]any{}
	if len(row.Fields) > 0 {
		if err := sonic.Unmarshal(row.Fields, &fields); err != nil {
			return docstore.Document{}, fmt.Errorf("decode fields for %q: %w", row.Path, err)
		}
	}
	return docstore.Document{
		Path:      row.Path,
		Fields:    fields,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
