package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TIMESTAMP NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	role TEXT NOT NULL,
	password_hash BLOB NOT NULL,
	version INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE tasks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at TIMESTAMP NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	created_by INTEGER NOT NULL REFERENCES users (id),
	version INTEGER NOT NULL DEFAULT 1
);`

const testPassword = "test-password-1"

// setupTestApp builds an application over a temporary SQLite database,
// so the whole stack runs against real SQL in every test.
func setupTestApp(t *testing.T) *application {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		db.Close()
	})

	if err := createTables(db, sqliteSchema); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}

	cfg := config{
		env:       "test",
		jwtSecret: "test-secret-that-is-long-enough",
	}
	cfg.cors.trustedOrigins = []string{"http://localhost:5173"}

	st := newStorage(db)
	return &application{
		config:  cfg,
		storage: st,
		tasks:   newTaskService(st),
	}
}

func createTestUser(t *testing.T, app *application, name, email string, r role) *user {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	u := &user{
		CreatedAt:    time.Now().UTC(),
		Name:         name,
		Email:        email,
		Role:         r,
		PasswordHash: hash,
	}
	if err := app.storage.insertUser(u); err != nil {
		t.Fatalf("failed to insert user %q: %v", email, err)
	}
	return u
}

func createTestTask(t *testing.T, app *application, owner *user, title string) *task {
	t.Helper()
	created, err := app.tasks.createTask(title, "description of "+title, identity{UserID: owner.ID, Role: owner.Role})
	if err != nil {
		t.Fatalf("failed to create task %q: %v", title, err)
	}
	return created
}

// forceStatus moves a task to an arbitrary status, bypassing the
// transition rules, to set up from-states the engine would never allow.
func forceStatus(t *testing.T, app *application, id int, status taskStatus) {
	t.Helper()
	_, err := app.storage.db.Exec(`UPDATE tasks SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		t.Fatalf("failed to force status: %v", err)
	}
}

func identityOf(u *user) identity {
	return identity{UserID: u.ID, Role: u.Role}
}

func tokenFor(t *testing.T, app *application, u *user) string {
	t.Helper()
	token, err := app.issueToken(u)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

// doRequest drives a request through the composed routes. A non-empty
// token rides in the session cookie, the way the frontend sends it.
func doRequest(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func taskPath(id int) string {
	return "/tasks/" + strconv.Itoa(id)
}

func doRequestWithOrigin(t *testing.T, handler http.Handler, origin string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", "/healthcheck", nil)
	req.Header.Set("Origin", origin)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return v
}
