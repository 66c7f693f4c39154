package docstore

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notifyChannel = "docstore_changes"

//go:embed migrations/*.sql
var migrations embed.FS

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Migrate applies the embedded schema. dsn is a postgres:// URL.
func Migrate(dsn string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, strings.Replace(dsn, "postgres://", "pgx5://", 1))
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

type postgresStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// NewPostgres stores documents as JSONB rows and turns NOTIFY events into
// full-collection snapshots.
func NewPostgres(pool *pgxpool.Pool, log *slog.Logger) Store {
	return &postgresStore{pool: pool, log: log}
}

func (s *postgresStore) Subscribe(ctx context.Context, collection string, order *OrderBy, onSnapshot func([]Document), onError func(error)) (Unsubscribe, error) {
	if order != nil && !fieldName.MatchString(order.Field) {
		return nil, fmt.Errorf("invalid order field %q", order.Field)
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listener: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			unlistenCtx, c := context.WithTimeout(context.Background(), 2*time.Second)
			defer c()
			if _, err := conn.Exec(unlistenCtx, "UNLISTEN *"); err != nil {
				s.log.Warn("unlisten", "collection", collection, "error", err)
			}
			conn.Release()
		}()

		emit := func() bool {
			docs, err := s.snapshot(ctx, collection, order)
			if err != nil {
				if ctx.Err() == nil {
					onError(err)
				}
				return false
			}
			onSnapshot(docs)
			return true
		}

		if !emit() {
			return
		}
		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					onError(fmt.Errorf("watch %s: %w", collection, err))
				}
				return
			}
			if n.Payload != collection {
				continue
			}
			if !emit() {
				return
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}, nil
}

func (s *postgresStore) snapshot(ctx context.Context, collection string, order *OrderBy) ([]Document, error) {
	query := `SELECT id, doc FROM documents WHERE collection = $1 ORDER BY id`
	args := []any{collection}
	if order != nil {
		dir := "ASC"
		if order.Desc {
			dir = "DESC"
		}
		query = fmt.Sprintf(`SELECT id, doc FROM documents WHERE collection = $1 ORDER BY doc->>($2::text) %s, id`, dir)
		args = append(args, order.Field)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var raw []byte
		if err := rows.Scan(&d.ID, &raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		d.Data = json.RawMessage(raw)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", collection, err)
	}
	return docs, nil
}

func (s *postgresStore) Set(ctx context.Context, collection, id string, doc any) error {
	m, err := Fields(doc)
	if err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, doc, updated_at) VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *postgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal patch %s/%s: %w", collection, id, err)
	}
	ct, err := s.pool.Exec(ctx,
		`UPDATE documents SET doc = doc || $3::jsonb, updated_at = NOW() WHERE collection = $1 AND id = $2`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *postgresStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}
