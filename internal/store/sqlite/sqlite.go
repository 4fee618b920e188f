package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vishnuvardhan833199/chattify/internal/store"
)

// schema is applied on open. Column names follow the domain model; avatars
// and attachment URLs are public paths under the upload directory.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	full_name     TEXT NOT NULL,
	avatar_url    TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	sender_id   INTEGER NOT NULL,
	receiver_id INTEGER NOT NULL,
	text        TEXT NOT NULL DEFAULT '',
	image_url   TEXT NOT NULL DEFAULT '',
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (sender_id) REFERENCES users(id),
	FOREIGN KEY (receiver_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_pair
	ON messages(sender_id, receiver_id, created_at);

CREATE TABLE IF NOT EXISTS calls (
	id          TEXT PRIMARY KEY,
	caller_id   INTEGER NOT NULL,
	callee_id   INTEGER NOT NULL,
	media_type  TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'ongoing',
	started_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	ended_at    DATETIME,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY (caller_id) REFERENCES users(id),
	FOREIGN KEY (callee_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_calls_user
	ON calls(caller_id, started_at DESC);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Set connection pool limits
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function after
// the schema is applied. Useful for tests to seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}

	if setup != nil {
		if err := setup(s.db); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

// CreateUser creates a new user with hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, email, passwordHash, fullName string) (*store.User, error) {
	query := `
		INSERT INTO users (email, password_hash, full_name)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, email, passwordHash, fullName)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `
		SELECT id, email, password_hash, full_name, avatar_url, created_at
		FROM users
		WHERE id = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.AvatarURL,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `
		SELECT id, email, password_hash, full_name, avatar_url, created_at
		FROM users
		WHERE email = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.AvatarURL,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", err)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// ListUsersExcept returns all users except the given one, for the sidebar.
func (s *SQLiteStore) ListUsersExcept(ctx context.Context, userID int64) ([]store.User, error) {
	query := `
		SELECT id, email, password_hash, full_name, avatar_url, created_at
		FROM users
		WHERE id != ?
		ORDER BY full_name
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []store.User{}
	for rows.Next() {
		var user store.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.FullName,
			&user.AvatarURL,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

// UpdateAvatar replaces the user's avatar URL.
func (s *SQLiteStore) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	query := `
		UPDATE users SET avatar_url = ? WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, avatarURL, userID)
	if err != nil {
		return fmt.Errorf("update avatar: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d not found", userID)
	}
	return nil
}

// ==== MessageStore implementation ====

// CreateMessage persists a message and returns it with ID and timestamp set.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *store.Message) (*store.Message, error) {
	query := `
		INSERT INTO messages (sender_id, receiver_id, text, image_url)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, msg.SenderID, msg.ReceiverID, msg.Text, msg.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.getMessage(ctx, id)
}

func (s *SQLiteStore) getMessage(ctx context.Context, id int64) (*store.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, text, image_url, created_at
		FROM messages
		WHERE id = ?
	`
	var msg store.Message
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.Text,
		&msg.ImageURL,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("query message: %w", err)
	}
	return &msg, nil
}

// ListConversation returns all messages between two users, oldest first.
func (s *SQLiteStore) ListConversation(ctx context.Context, userA, userB int64) ([]store.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, text, image_url, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?)
		   OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userA, userB, userB, userA)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	messages := []store.Message{}
	for rows.Next() {
		var msg store.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.SenderID,
			&msg.ReceiverID,
			&msg.Text,
			&msg.ImageURL,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// ==== CallStore implementation ====

// CreateCall creates a new call record.
func (s *SQLiteStore) CreateCall(ctx context.Context, call *store.Call) error {
	query := `
		INSERT INTO calls (id, caller_id, callee_id, media_type, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		call.ID,
		call.CallerID,
		call.CalleeID,
		call.MediaType,
		call.Status,
		call.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert call: %w", err)
	}
	return nil
}

// GetCall retrieves a call by ID.
func (s *SQLiteStore) GetCall(ctx context.Context, id string) (*store.Call, error) {
	query := `
		SELECT id, caller_id, callee_id, media_type, status, started_at, ended_at, duration_ms
		FROM calls
		WHERE id = ?
	`
	var call store.Call
	var endedAt sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&call.ID,
		&call.CallerID,
		&call.CalleeID,
		&call.MediaType,
		&call.Status,
		&call.StartedAt,
		&endedAt,
		&call.DurationMs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("call not found: %w", err)
		}
		return nil, fmt.Errorf("query call: %w", err)
	}
	if endedAt.Valid {
		call.EndedAt = &endedAt.Time
	}

	return &call, nil
}

// FinishCall sets the terminal status, end time and duration.
func (s *SQLiteStore) FinishCall(ctx context.Context, id string, status store.CallStatus, endedAt time.Time, durationMs int64) error {
	query := `
		UPDATE calls
		SET status = ?, ended_at = ?, duration_ms = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query, status, endedAt, durationMs, id)
	if err != nil {
		return fmt.Errorf("update call: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("call %s not found", id)
	}
	return nil
}

// ListCallsForUser returns the user's call history, newest first.
func (s *SQLiteStore) ListCallsForUser(ctx context.Context, userID int64, limit int) ([]store.Call, error) {
	query := `
		SELECT id, caller_id, callee_id, media_type, status, started_at, ended_at, duration_ms
		FROM calls
		WHERE caller_id = ? OR callee_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, userID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	calls := []store.Call{}
	for rows.Next() {
		var call store.Call
		var endedAt sql.NullTime
		if err := rows.Scan(
			&call.ID,
			&call.CallerID,
			&call.CalleeID,
			&call.MediaType,
			&call.Status,
			&call.StartedAt,
			&endedAt,
			&call.DurationMs,
		); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		if endedAt.Valid {
			call.EndedAt = &endedAt.Time
		}
		calls = append(calls, call)
	}

	return calls, rows.Err()
}
