// Package store provides the SQLite-backed record store behind the sandbox API.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/finsight/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrNotFound is returned when a row does not exist for the given owner.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a unique constraint rejects an insert.
	ErrConflict = errors.New("store: already exists")
)

// timeLayout is fixed-width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps the sandbox database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at dbPath and applies migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// User is an account in the sandbox.
type User struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateUser inserts u, assigning an ID and creation time.
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	u.ID = uuid.NewString()
	u.CreatedAt = s.now()

	_, err := s.db.ExecContext(ctx, `INSERT INTO users
		(id, username, email, hashed_password, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.HashedPassword, boolInt(u.IsAdmin), u.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, fmt.Errorf("user %q: %w", u.Username, ErrConflict)
		}
		return User{}, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

// UserByUsername looks a user up for login.
func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `SELECT
		id, username, email, hashed_password, is_admin, created_at
		FROM users WHERE username = ?`, username))
}

// UserByID looks a user up by token subject.
func (s *Store) UserByID(ctx context.Context, id string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `SELECT
		id, username, email, hashed_password, is_admin, created_at
		FROM users WHERE id = ?`, id))
}

func (s *Store) scanUser(row *sql.Row) (User, error) {
	var u User
	var isAdmin int
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &isAdmin, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.IsAdmin = isAdmin != 0
	u.CreatedAt, _ = time.Parse(timeLayout, created)
	return u, nil
}

// Category is a user-defined income or expense bucket.
type Category struct {
	ID    string                `json:"id"`
	Name  string                `json:"name"`
	Icon  string                `json:"icon"`
	Color string                `json:"color"`
	Type  model.TransactionType `json:"type"`
}

// CreateCategory adds a category owned by userID.
func (s *Store) CreateCategory(ctx context.Context, userID string, c Category) (Category, error) {
	c.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO categories
		(id, user_id, name, icon, color, type) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, userID, c.Name, c.Icon, c.Color, string(c.Type),
	)
	if err != nil {
		return Category{}, fmt.Errorf("inserting category: %w", err)
	}
	return c, nil
}

// Categories returns userID's categories keyed by ID.
func (s *Store) Categories(ctx context.Context, userID string) (map[string]Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, icon, color, type FROM categories WHERE user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]Category)
	for rows.Next() {
		var c Category
		var typ string
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &typ); err != nil {
			return nil, err
		}
		c.Type = model.TransactionType(typ)
		result[c.ID] = c
	}
	return result, rows.Err()
}

// InsertTransaction stores t for userID. A set CategoryID is resolved to its
// name; an unknown category leaves the name empty.
func (s *Store) InsertTransaction(ctx context.Context, userID string, t model.Transaction) (model.Transaction, error) {
	now := s.now()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Currency == "" {
		t.Currency = "€"
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Transaction{}, err
	}
	defer func() { _ = tx.Rollback() }()

	t.CategoryName = nil
	if t.CategoryID != nil {
		var name string
		err := tx.QueryRowContext(ctx,
			"SELECT name FROM categories WHERE id = ? AND user_id = ?", *t.CategoryID, userID).Scan(&name)
		switch {
		case err == nil:
			t.CategoryName = &name
		case !errors.Is(err, sql.ErrNoRows):
			return model.Transaction{}, fmt.Errorf("resolving category: %w", err)
		}
	}

	tags, err := json.Marshal(t.Tags)
	if err != nil {
		return model.Transaction{}, err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO transactions
		(id, user_id, type, amount, currency, category_id, category_name, merchant_name,
		 description, date, tags, is_recurring, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, userID, string(t.Type), t.Amount, t.Currency, t.CategoryID, t.CategoryName, t.MerchantName,
		t.Description, t.Date.UTC().Format(timeLayout), string(tags), boolInt(t.IsRecurring),
		now.Format(timeLayout), now.Format(timeLayout),
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("inserting transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Transaction{}, err
	}
	return t, nil
}

// ListFilter narrows ListTransactions. Zero values mean "no filter".
type ListFilter struct {
	Type       model.TransactionType
	CategoryID string
	Start, End time.Time
	Skip       int
	Limit      int
}

const transactionColumns = `id, type, amount, currency, category_id, category_name, merchant_name,
	description, date, tags, is_recurring, created_at, updated_at`

// ListTransactions returns userID's records newest first.
func (s *Store) ListTransactions(ctx context.Context, userID string, f ListFilter) ([]model.Transaction, error) {
	var (
		where = []string{"user_id = ?"}
		args  = []any{userID}
	)
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if !f.Start.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.Start.UTC().Format(timeLayout))
	}
	if !f.End.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.End.UTC().Format(timeLayout))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, max(f.Skip, 0))

	query := "SELECT " + transactionColumns + " FROM transactions WHERE " +
		strings.Join(where, " AND ") + " ORDER BY date DESC, created_at DESC LIMIT ? OFFSET ?"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	records := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, t)
	}
	return records, rows.Err()
}

// Transaction returns one of userID's records.
func (s *Store) Transaction(ctx context.Context, userID, id string) (model.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, ErrNotFound
	}
	return t, err
}

// DeleteTransaction removes one of userID's records.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// TransactionCount returns how many records userID owns.
func (s *Store) TransactionCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions WHERE user_id = ?", userID).Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (model.Transaction, error) {
	var (
		t                                         model.Transaction
		typ, date, tags, created, updated         string
		categoryID, categoryName, merchant, descr sql.NullString
		isRecurring                               int
	)
	err := row.Scan(&t.ID, &typ, &t.Amount, &t.Currency, &categoryID, &categoryName, &merchant,
		&descr, &date, &tags, &isRecurring, &created, &updated)
	if err != nil {
		return model.Transaction{}, err
	}

	t.Type = model.TransactionType(typ)
	t.CategoryID = nullable(categoryID)
	t.CategoryName = nullable(categoryName)
	t.MerchantName = nullable(merchant)
	t.Description = nullable(descr)
	t.IsRecurring = isRecurring != 0
	t.Date, _ = time.Parse(timeLayout, date)
	t.CreatedAt, _ = time.Parse(timeLayout, created)
	t.UpdatedAt, _ = time.Parse(timeLayout, updated)
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil || t.Tags == nil {
		t.Tags = []string{}
	}
	return t, nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
