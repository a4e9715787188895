package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	// Pure-Go SQLite driver, registers "sqlite".
	_ "modernc.org/sqlite"

	"github.com/hay-kot/shopcart/internal/core/account"
	"github.com/hay-kot/shopcart/internal/core/catalog"
)

// SQLite stores products and users as JSON documents in a SQLite database.
type SQLite struct {
	db     *sql.DB
	logger zerolog.Logger
	mu     sync.Mutex // serializes InsertMany batches
	now    func() time.Time
}

var (
	_ catalog.Store = (*SQLite)(nil)
	_ account.Store = (*SQLite)(nil)
)

// OpenSQLite opens or creates the database at path. Use ":memory:" for a
// throwaway database.
func OpenSQLite(path string, logger zerolog.Logger) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection keeps ":memory:" databases shared and writes ordered.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLite{db: db, logger: logger, now: time.Now}

	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	logger.Info().Str("path", path).Int("schema_version", currentSchemaVersion).Msg("database ready")
	return s, nil
}

// Close releases the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) List(ctx context.Context, query string) ([]catalog.Product, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	rows, err := s.db.QueryContext(ctx, `
		SELECT doc FROM products
		WHERE ? = '' OR instr(lower(name), ?) > 0
		ORDER BY created_at DESC, rowid ASC`, q, q)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	products := []catalog.Product{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}

		var p catalog.Product
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}

		// lower() only folds ASCII; re-check with Unicode folding.
		if catalog.MatchesQuery(p, query) {
			products = append(products, p)
		}
	}

	return products, rows.Err()
}

func (s *SQLite) Get(ctx context.Context, id string) (catalog.Product, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM products WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("get product: %w", err)
	}

	var p catalog.Product
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return catalog.Product{}, fmt.Errorf("decode product: %w", err)
	}
	return p, nil
}

func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (s *SQLite) InsertMany(ctx context.Context, products []catalog.Product) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO products (id, name, created_at, doc) VALUES (?, ?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	now := s.now().UTC()
	out := make([]catalog.Product, len(products))
	for i, p := range products {
		p = catalog.Prepare(p, newID(), now)

		doc, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode product: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.CreatedAt.UnixNano(), string(doc)); err != nil {
			return nil, fmt.Errorf("insert product %q: %w", p.Name, err)
		}
		out[i] = p
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func (s *SQLite) Create(ctx context.Context, u account.User) error {
	u.Email = account.NormalizeEmail(u.Email)

	doc, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, email, doc) VALUES (?, ?, ?) ON CONFLICT(email) DO NOTHING",
		u.ID, u.Email, string(doc))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if n == 0 {
		return account.ErrEmailTaken
	}
	return nil
}

func (s *SQLite) FindByEmail(ctx context.Context, email string) (account.User, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM users WHERE email = ?", account.NormalizeEmail(email)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return account.User{}, account.ErrNotFound
	}
	if err != nil {
		return account.User{}, fmt.Errorf("find user: %w", err)
	}

	var u account.User
	if err := json.Unmarshal([]byte(doc), &u); err != nil {
		return account.User{}, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}
