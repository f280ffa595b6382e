// Package db owns the SQLite record store: schema, migrations, and the
// typed queries the triage router and engagement scheduler run against.
// Components receive the Store as an explicit dependency; there is no
// process-wide connection.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/tendhq/tend/internal/errors"
	"github.com/tendhq/tend/internal/record"
)

// Store wraps a sql.DB with typed queries over the tend schema.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over an initialized database.
func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

// DB exposes the underlying handle for pool configuration and shutdown.
func (s *Store) DB() *sql.DB {
	return s.db
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func toNullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func toNullInt(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

func fromNullInt(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

func toJSONList(items []string) (sql.NullString, error) {
	if len(items) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return sql.NullString{}, errors.NewInternal(err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func fromJSONList(ns sql.NullString) ([]string, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(ns.String), &items); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

// --- People ---

const personColumns = `key, name, role, team, importance, cadence,
	channels_json, style, categories_json, created_at, updated_at`

// InsertPerson writes a new person record. The stable key is immutable:
// a collision is a conflict, never an overwrite.
func (s *Store) InsertPerson(ctx context.Context, p *record.Person) error {
	channels, err := toJSONList(p.Channels)
	if err != nil {
		return err
	}
	categories, err := toJSONList(p.Categories)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO people (` + personColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		p.Key, p.Name, toNullString(p.Role), toNullString(p.Team),
		string(p.Importance), string(p.Cadence), channels,
		toNullString(p.Style), categories, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewAlreadyExists("person", p.Key)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// UpdatePerson rewrites a person's mutable fields. The key never changes.
func (s *Store) UpdatePerson(ctx context.Context, p *record.Person) error {
	channels, err := toJSONList(p.Channels)
	if err != nil {
		return err
	}
	categories, err := toJSONList(p.Categories)
	if err != nil {
		return err
	}

	query := `
		UPDATE people
		SET name = ?, role = ?, team = ?, importance = ?, cadence = ?,
		    channels_json = ?, style = ?, categories_json = ?, updated_at = ?
		WHERE key = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		p.Name, toNullString(p.Role), toNullString(p.Team),
		string(p.Importance), string(p.Cadence), channels,
		toNullString(p.Style), categories, p.UpdatedAt, p.Key,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("person", p.Key)
	}
	return nil
}

// GetPerson retrieves a person by stable key.
func (s *Store) GetPerson(ctx context.Context, key string) (*record.Person, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+personColumns+` FROM people WHERE key = ?
	`, key)

	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("person", key)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return p, nil
}

// ListPeople returns every person record ordered by key.
func (s *Store) ListPeople(ctx context.Context) ([]record.Person, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+personColumns+` FROM people ORDER BY key
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var people []record.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		people = append(people, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return people, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*record.Person, error) {
	var p record.Person
	var role, team, style, channels, categories sql.NullString
	var importance, cadence string

	err := row.Scan(&p.Key, &p.Name, &role, &team, &importance, &cadence,
		&channels, &style, &categories, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Role = fromNullString(role)
	p.Team = fromNullString(team)
	p.Style = fromNullString(style)
	p.Importance = record.Importance(importance)
	p.Cadence = record.Cadence(cadence)
	if p.Channels, err = fromJSONList(channels); err != nil {
		return nil, err
	}
	if p.Categories, err = fromJSONList(categories); err != nil {
		return nil, err
	}
	return &p, nil
}

// --- Tasks ---

const taskColumns = `key, description, direction, assignee, priority, due_at,
	follow_up, follow_up_at, category, status, created_at, updated_at`

// InsertTask writes a new task record.
func (s *Store) InsertTask(ctx context.Context, t *record.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		t.Key, t.Description, string(t.Direction), toNullString(t.Assignee),
		string(t.Priority), toNullInt(t.DueAt), boolToInt(t.FollowUp),
		toNullInt(t.FollowUpAt), t.Category, string(t.Status),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewAlreadyExists("task", t.Key)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// GetTask retrieves a task by stable key.
func (s *Store) GetTask(ctx context.Context, key string) (*record.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE key = ?
	`, key)

	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("task", key)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return t, nil
}

// ListTasks returns tasks, optionally filtered by status, newest first.
func (s *Store) ListTasks(ctx context.Context, status record.TaskStatus) ([]record.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var tasks []record.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return tasks, nil
}

func scanTask(row rowScanner) (*record.Task, error) {
	var t record.Task
	var assignee, category sql.NullString
	var dueAt, followUpAt sql.NullInt64
	var direction, priority, status string
	var followUp int

	err := row.Scan(&t.Key, &t.Description, &direction, &assignee, &priority,
		&dueAt, &followUp, &followUpAt, &category, &status,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.Direction = record.Direction(direction)
	t.Assignee = fromNullString(assignee)
	t.Priority = record.Priority(priority)
	t.DueAt = fromNullInt(dueAt)
	t.FollowUp = followUp != 0
	t.FollowUpAt = fromNullInt(followUpAt)
	if category.Valid {
		t.Category = category.String
	}
	t.Status = record.TaskStatus(status)
	return &t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
