package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
)

// errStaleRecord is returned by the version/status guarded updates when
// the row no longer matches what the caller last read.
var errStaleRecord = errors.New("record changed since it was read")

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	role TEXT NOT NULL,
	password_hash BYTEA NOT NULL,
	version INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS tasks (
	id SERIAL PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	created_by INTEGER NOT NULL REFERENCES users (id),
	version INTEGER NOT NULL DEFAULT 1
);`

func openDB(cfg config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConnections)
	db.SetMaxIdleConns(cfg.db.maxIdleConnections)
	db.SetConnMaxIdleTime(cfg.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func createTables(db *sql.DB, schema string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := db.ExecContext(ctx, schema)
	return err
}

type storage struct {
	db *sql.DB
}

func newStorage(db *sql.DB) *storage {
	return &storage{db: db}
}

func (s *storage) getUserByEmail(email string) (*user, error) {
	query := `SELECT id, created_at, name, email, role, password_hash, version
			  FROM users
			  WHERE email = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, email)
	var u user
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *storage) getUserByID(id int) (*user, error) {
	query := `SELECT id, created_at, name, email, role, password_hash, version
			  FROM users
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, id)
	var u user
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *storage) insertUser(u *user) error {
	query := `INSERT INTO users (created_at, name, email, role, password_hash)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, version`

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.db.QueryRowContext(ctx, query, u.CreatedAt, u.Name, u.Email, u.Role, u.PasswordHash)
	return row.Scan(&u.ID, &u.Version)
}

func (s *storage) insertTask(t *task) error {
	query := `INSERT INTO tasks (created_at, title, description, status, created_by)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, version`

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.db.QueryRowContext(ctx, query, t.CreatedAt, t.Title, t.Description, t.Status, t.CreatedBy)
	return row.Scan(&t.ID, &t.Version)
}

func (s *storage) getTaskByID(id int) (*task, error) {
	query := `SELECT id, created_at, title, description, status, created_by, version
			  FROM tasks
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, id)
	var t task
	err := row.Scan(&t.ID, &t.CreatedAt, &t.Title, &t.Description, &t.Status, &t.CreatedBy, &t.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &t, nil
}

// getTasks lists tasks, optionally restricted to a creator (createdBy > 0)
// and/or a status (status != ""). Ordering is whatever the store returns.
func (s *storage) getTasks(createdBy int, status taskStatus) ([]task, error) {
	query := `SELECT id, created_at, title, description, status, created_by, version
			  FROM tasks`
	var args []any
	switch {
	case createdBy > 0 && status != "":
		query += ` WHERE created_by = $1 AND status = $2`
		args = append(args, createdBy, status)
	case createdBy > 0:
		query += ` WHERE created_by = $1`
		args = append(args, createdBy)
	case status != "":
		query += ` WHERE status = $1`
		args = append(args, status)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []task{}
	for rows.Next() {
		var t task
		err := rows.Scan(&t.ID, &t.CreatedAt, &t.Title, &t.Description, &t.Status, &t.CreatedBy, &t.Version)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *storage) getTasksWithCreators() ([]task, error) {
	query := `SELECT t.id, t.created_at, t.title, t.description, t.status, t.created_by, t.version, u.name
			  FROM tasks t
			  INNER JOIN users u ON u.id = t.created_by`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []task{}
	for rows.Next() {
		var t task
		err := rows.Scan(&t.ID, &t.CreatedAt, &t.Title, &t.Description, &t.Status, &t.CreatedBy, &t.Version, &t.CreatorName)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *storage) getTaskWithCreator(id int) (*task, error) {
	query := `SELECT t.id, t.created_at, t.title, t.description, t.status, t.created_by, t.version, u.name
			  FROM tasks t
			  INNER JOIN users u ON u.id = t.created_by
			  WHERE t.id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, id)
	var t task
	err := row.Scan(&t.ID, &t.CreatedAt, &t.Title, &t.Description, &t.Status, &t.CreatedBy, &t.Version, &t.CreatorName)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &t, nil
}

// updateTaskStatus transitions t to the given status with a conditional
// write keyed on the status the caller last observed. If another writer
// got there first the update matches no row and errStaleRecord comes back.
func (s *storage) updateTaskStatus(t *task, to taskStatus) error {
	query := `UPDATE tasks SET status = $1, version = version + 1
			  WHERE id = $2 AND status = $3
			  RETURNING version`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.db.QueryRowContext(ctx, query, to, t.ID, t.Status)
	err := row.Scan(&t.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return errStaleRecord
		default:
			return err
		}
	}
	t.Status = to
	return nil
}

// updateTaskDetails writes title/description guarded by the version the
// caller read, so a concurrent edit surfaces instead of being overwritten.
func (s *storage) updateTaskDetails(t *task) error {
	query := `UPDATE tasks SET title = $1, description = $2, version = version + 1
			  WHERE id = $3 AND version = $4
			  RETURNING version`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.db.QueryRowContext(ctx, query, t.Title, t.Description, t.ID, t.Version)
	err := row.Scan(&t.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return errStaleRecord
		default:
			return err
		}
	}
	return nil
}

func (s *storage) deleteTask(id int) (bool, error) {
	query := `DELETE FROM tasks
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
