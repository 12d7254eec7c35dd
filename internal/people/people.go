// Package people is the person card store. The scheduling engine reads it
// but does not own it.
package people

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/tartampluch/birthday-reminder/internal/birthday"
	"github.com/tartampluch/birthday-reminder/internal/config"
	"github.com/tartampluch/birthday-reminder/internal/model"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

var (
	// ErrPersonNotFound is returned when no card has the requested id.
	ErrPersonNotFound = errors.New(config.ErrPersonNotFound)

	// ErrInvalidPerson is returned when a card fails validation before being written.
	ErrInvalidPerson = errors.New(config.ErrPersonInvalid)
)

var columns = []string{"id", "name", "birthday", "description", "photo_path"}

const schema = `
CREATE TABLE IF NOT EXISTS person_cards (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	birthday TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	photo_path TEXT NOT NULL DEFAULT ''
);`

// Store keeps person cards in sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (and creates when needed) the person database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open(config.SQLiteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDBOpen, err)
	}
	db.SetMaxOpenConns(1)

	// enable write-ahead logging for better concurrency
	if _, err := db.Exec(config.PragmaWAL); err != nil {
		slog.Warn(config.ErrDBOpen, config.LogKeyComponent, config.CompPeople, config.LogKeyError, err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrDBMigrate, err)
	}

	slog.Debug(config.MsgDBReady, config.LogKeyComponent, config.CompPeople, config.LogKeyPath, path)
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Validate rejects cards the store must never hold: an empty name or an
// unparseable birthday.
func Validate(p model.Person) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: %s", ErrInvalidPerson, config.ErrPersonNameEmpty)
	}
	if p.HasBirthday() {
		if _, err := birthday.Parse(p.Birthday); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPerson, err)
		}
	}
	return nil
}

// Create inserts a new card, generating an id when p.ID is empty.
func (s *Store) Create(ctx context.Context, p model.Person) (model.Person, error) {
	if err := Validate(p); err != nil {
		return model.Person{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query := psql.Insert(config.TablePeople).
		Columns(columns...).
		Values(p.ID, p.Name, p.Birthday, p.Description, p.PhotoPath)
	if err := s.exec(ctx, query); err != nil {
		return model.Person{}, err
	}
	return p, nil
}

// Upsert inserts the card or replaces the one with the same id.
func (s *Store) Upsert(ctx context.Context, p model.Person) error {
	if err := Validate(p); err != nil {
		return err
	}
	query := psql.Insert(config.TablePeople).
		Columns(columns...).
		Values(p.ID, p.Name, p.Birthday, p.Description, p.PhotoPath).
		Suffix("ON CONFLICT(id) DO UPDATE SET").
		Suffix("name = excluded.name,").
		Suffix("birthday = excluded.birthday,").
		Suffix("description = excluded.description,").
		Suffix("photo_path = excluded.photo_path")
	return s.exec(ctx, query)
}

// Get returns one card or ErrPersonNotFound.
func (s *Store) Get(ctx context.Context, id string) (model.Person, error) {
	sqlStr, args, err := psql.Select(columns...).
		From(config.TablePeople).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Person{}, fmt.Errorf("%s: %w", config.ErrDBBuildSQL, err)
	}

	var p model.Person
	err = s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&p.ID, &p.Name, &p.Birthday, &p.Description, &p.PhotoPath)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Person{}, fmt.Errorf("%w: %s", ErrPersonNotFound, id)
	}
	if err != nil {
		return model.Person{}, fmt.Errorf("%s: %w", config.ErrPersonQuery, err)
	}
	return p, nil
}

// List returns every card ordered by name.
func (s *Store) List(ctx context.Context) ([]model.Person, error) {
	sqlStr, args, err := psql.Select(columns...).
		From(config.TablePeople).
		OrderBy("name ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDBBuildSQL, err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPersonQuery, err)
	}
	defer func() { _ = rows.Close() }()

	people := []model.Person{}
	for rows.Next() {
		var p model.Person
		if err := rows.Scan(&p.ID, &p.Name, &p.Birthday, &p.Description, &p.PhotoPath); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrPersonQuery, err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPersonQuery, err)
	}
	return people, nil
}

// Update overwrites an existing card.
func (s *Store) Update(ctx context.Context, p model.Person) error {
	if err := Validate(p); err != nil {
		return err
	}
	query := psql.Update(config.TablePeople).
		Set("name", p.Name).
		Set("birthday", p.Birthday).
		Set("description", p.Description).
		Set("photo_path", p.PhotoPath).
		Where(sq.Eq{"id": p.ID})
	return s.execOne(ctx, query, p.ID)
}

// Delete removes a card.
func (s *Store) Delete(ctx context.Context, id string) error {
	query := psql.Delete(config.TablePeople).Where(sq.Eq{"id": id})
	return s.execOne(ctx, query, id)
}

func (s *Store) exec(ctx context.Context, query sq.Sqlizer) error {
	_, err := s.run(ctx, query)
	return err
}

// execOne runs query and maps "no row touched" to ErrPersonNotFound.
func (s *Store) execOne(ctx context.Context, query sq.Sqlizer, id string) error {
	res, err := s.run(ctx, query)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrPersonQuery, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrPersonNotFound, id)
	}
	return nil
}

func (s *Store) run(ctx context.Context, query sq.Sqlizer) (sql.Result, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDBBuildSQL, err)
	}
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrPersonQuery, err)
	}
	return res, nil
}
