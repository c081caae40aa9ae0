package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"mspro-labs/cafe-critic/internal/models"
)

var (
	// ErrNotFound is returned when no café has the requested id.
	ErrNotFound = errors.New("cafe not found")
	// ErrDuplicate is returned when a café name is already taken by another record.
	ErrDuplicate = errors.New("cafe name already exists")
	// ErrStoreUnavailable is returned by Connect when the database cannot be opened.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Connect opens a connection to the SQLite database and ensures the schema exists.
// It automatically applies recommended settings for concurrency (WAL mode).
func Connect(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrStoreUnavailable, err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %v", ErrStoreUnavailable, err)
	}

	if err = createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to ensure schema: %v", ErrStoreUnavailable, err)
	}

	return db, nil
}

// dsn appends robust connection settings to prevent "database locked" errors,
// keeping any query string the caller already put on the path.
func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_busy_timeout=5000&_journal_mode=WAL"
}

// createSchema is private as it's only called by Connect.
func createSchema(db *sqlx.DB) error {
	cafeTable := `
	CREATE TABLE IF NOT EXISTS cafe (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  name TEXT UNIQUE NOT NULL,
	  city TEXT,
	  website TEXT,
	  map_location TEXT,
	  description TEXT,
	  overall_rating REAL CHECK (overall_rating BETWEEN 0 AND 5),
	  coffee INTEGER CHECK (coffee BETWEEN 0 AND 5),
	  tea INTEGER CHECK (tea BETWEEN 0 AND 5),
	  wifi INTEGER CHECK (wifi BETWEEN 0 AND 5),
	  cake INTEGER CHECK (cake BETWEEN 0 AND 5),
	  work INTEGER CHECK (work BETWEEN 0 AND 5),
	  breakfast INTEGER CHECK (breakfast BETWEEN 0 AND 5),
	  review TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_overall_rating ON cafe(overall_rating);
	`
	_, err := db.Exec(cafeTable)
	return err
}

// Store is the persistence layer for café records.
// Each method is its own atomic unit; uniqueness and existence are
// enforced by the statement itself, never by a separate lookup.
type Store struct {
	db *sqlx.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const selectCafe = `
	SELECT id, name,
	  COALESCE(city, '') AS city,
	  COALESCE(website, '') AS website,
	  COALESCE(map_location, '') AS map_location,
	  COALESCE(description, '') AS description,
	  overall_rating, coffee, tea, wifi, cake, work, breakfast,
	  COALESCE(review, '') AS review
	FROM cafe`

// Create inserts a new café and returns its assigned id.
func (s *Store) Create(ctx context.Context, f models.CafeFields) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
	INSERT INTO cafe (
	  name, city, website, map_location, description, overall_rating,
	  coffee, tea, wifi, cake, work, breakfast, review
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args(f)...)
	if err != nil {
		return 0, classify(err, "failed to insert %q", f.Name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read new cafe id: %w", err)
	}
	return id, nil
}

// Get fetches one café by id.
func (s *Store) Get(ctx context.Context, id int64) (models.Cafe, error) {
	var c models.Cafe
	err := s.db.GetContext(ctx, &c, selectCafe+" WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Cafe{}, ErrNotFound
	}
	if err != nil {
		return models.Cafe{}, fmt.Errorf("failed to load cafe %d: %w", id, err)
	}
	return c, nil
}

// ListByRatingAscending returns every café, lowest overall rating first.
// Unrated cafés come last; ties are broken by id.
func (s *Store) ListByRatingAscending(ctx context.Context) ([]models.Cafe, error) {
	cafes := []models.Cafe{}
	err := s.db.SelectContext(ctx, &cafes,
		selectCafe+" ORDER BY overall_rating IS NULL, overall_rating ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list cafes: %w", err)
	}
	return cafes, nil
}

// Update replaces every mutable field of an existing café.
func (s *Store) Update(ctx context.Context, id int64, f models.CafeFields) error {
	res, err := s.db.ExecContext(ctx, `
	UPDATE cafe SET
	  name = ?, city = ?, website = ?, map_location = ?, description = ?, overall_rating = ?,
	  coffee = ?, tea = ?, wifi = ?, cake = ?, work = ?, breakfast = ?, review = ?
	WHERE id = ?`, append(args(f), id)...)
	if err != nil {
		return classify(err, "failed to update cafe %d", id)
	}
	return requireAffected(res, id)
}

// Delete removes a café permanently.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cafe WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cafe %d: %w", id, err)
	}
	return requireAffected(res, id)
}

func args(f models.CafeFields) []any {
	return []any{
		f.Name,
		nullString(f.City),
		nullString(f.Website),
		nullString(f.MapLocation),
		nullString(f.Description),
		nullFloat(f.OverallRating),
		nullInt(f.Coffee),
		nullInt(f.Tea),
		nullInt(f.Wifi),
		nullInt(f.Cake),
		nullInt(f.Work),
		nullInt(f.Breakfast),
		nullString(f.Review),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

// classify maps a unique-constraint violation on name to ErrDuplicate.
func classify(err error, format string, a ...any) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrDuplicate
	}
	return fmt.Errorf(format+": %w", append(a, err)...)
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for cafe %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
