package chatmessage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	stderrors "errors"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/KirkDiggler/rpg-pirateborg/internal/errors"
	"github.com/KirkDiggler/rpg-pirateborg/internal/pkg/clock"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteConfig holds the configuration for the SQLite repository
type SQLiteConfig struct {
	Path  string
	Clock clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *SQLiteConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("Path", c.Path, vb)
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	return vb.Build()
}

// SQLiteRepository persists chat messages in a SQLite file
type SQLiteRepository struct {
	db    *sql.DB
	clock clock.Clock
}

var _ Repository = (*SQLiteRepository)(nil)

// OpenSQLite opens the database at cfg.Path and ensures the schema exists
func OpenSQLite(ctx context.Context, cfg *SQLiteConfig) (*SQLiteRepository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	dsn := filepath.Clean(cfg.Path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite db")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping sqlite db")
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to apply schema")
	}

	return &SQLiteRepository{db: db, clock: cfg.Clock}, nil
}

// Close closes the SQLite handle
func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Create inserts a message row
func (r *SQLiteRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	msg := cloneMessage(input.Message)
	now := r.clock.Now()
	msg.CreatedAt = now
	msg.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_messages (
		   id, speaker_actor_id, speaker_token_id, speaker_alias, content, sound, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID,
		msg.Speaker.ActorID,
		msg.Speaker.TokenID,
		msg.Speaker.Alias,
		msg.Content,
		msg.Sound,
		toMillis(msg.CreatedAt),
		toMillis(msg.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errors.AlreadyExistsf("chat message %s already exists", msg.ID)
		}
		return nil, errors.Wrap(err, "failed to insert chat message")
	}
	return &CreateOutput{Message: msg}, nil
}

// Get reads one message row
func (r *SQLiteRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errMessageIDEmpty)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, speaker_actor_id, speaker_token_id, speaker_alias, content, sound, created_at, updated_at
		 FROM chat_messages WHERE id = ?`,
		input.ID,
	)
	msg, err := scanMessage(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundf("chat message %s not found", input.ID)
		}
		return nil, errors.Wrap(err, "failed to get chat message")
	}
	return &GetOutput{Message: msg}, nil
}

// List returns messages oldest first
func (r *SQLiteRepository) List(ctx context.Context, input ListInput) (*ListOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT * FROM (
		   SELECT id, speaker_actor_id, speaker_token_id, speaker_alias, content, sound, created_at, updated_at, rowid AS seq
		   FROM chat_messages ORDER BY created_at DESC, seq DESC LIMIT ?
		 ) ORDER BY created_at ASC, seq ASC`,
		limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chat messages")
	}
	defer func() { _ = rows.Close() }()

	out := &ListOutput{}
	for rows.Next() {
		var (
			msg        ChatMessage
			created    int64
			updated    int64
			sequenceNo int64
		)
		if err := rows.Scan(&msg.ID, &msg.Speaker.ActorID, &msg.Speaker.TokenID, &msg.Speaker.Alias,
			&msg.Content, &msg.Sound, &created, &updated, &sequenceNo); err != nil {
			return nil, errors.Wrap(err, "failed to scan chat message")
		}
		msg.CreatedAt = fromMillis(created)
		msg.UpdatedAt = fromMillis(updated)
		out.Messages = append(out.Messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate chat messages")
	}
	return out, nil
}

// GetFlag reads one flag row
func (r *SQLiteRepository) GetFlag(ctx context.Context, input GetFlagInput) (*GetFlagOutput, error) {
	if err := validateFlag(input.MessageID, input.Scope, input.Key); err != nil {
		return nil, err
	}
	if err := r.ensureExists(ctx, input.MessageID); err != nil {
		return nil, err
	}

	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM chat_message_flags WHERE message_id = ? AND field = ?`,
		input.MessageID, flagField(input.Scope, input.Key),
	).Scan(&value)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return &GetFlagOutput{}, nil
		}
		return nil, errors.Wrap(err, "failed to get flag")
	}
	return &GetFlagOutput{Value: json.RawMessage(value), Found: true}, nil
}

// SetFlag upserts one flag row
func (r *SQLiteRepository) SetFlag(ctx context.Context, input SetFlagInput) (*SetFlagOutput, error) {
	if err := validateFlag(input.MessageID, input.Scope, input.Key); err != nil {
		return nil, err
	}
	if !json.Valid(input.Value) {
		return nil, errors.InvalidArgumentf("flag %s is not valid JSON", flagField(input.Scope, input.Key))
	}
	if err := r.ensureExists(ctx, input.MessageID); err != nil {
		return nil, err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_message_flags (message_id, field, value) VALUES (?, ?, ?)
		 ON CONFLICT(message_id, field) DO UPDATE SET value = excluded.value`,
		input.MessageID, flagField(input.Scope, input.Key), string(input.Value),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store flag")
	}
	return &SetFlagOutput{}, nil
}

// UpdateContent replaces the content column
func (r *SQLiteRepository) UpdateContent(ctx context.Context, input UpdateContentInput) (*UpdateContentOutput, error) {
	if input.MessageID == "" {
		return nil, errors.InvalidArgument(errMessageIDEmpty)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE chat_messages SET content = ?, updated_at = ? WHERE id = ?`,
		input.Content, toMillis(r.clock.Now()), input.MessageID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update chat message")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, errors.NotFoundf("chat message %s not found", input.MessageID)
	}

	out, err := r.Get(ctx, GetInput{ID: input.MessageID})
	if err != nil {
		return nil, err
	}
	return &UpdateContentOutput{Message: out.Message}, nil
}

func (r *SQLiteRepository) ensureExists(ctx context.Context, id string) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM chat_messages WHERE id = ?`, id).Scan(&one)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundf("chat message %s not found", id)
		}
		return errors.Wrap(err, "failed to check chat message")
	}
	return nil
}

func scanMessage(row *sql.Row) (*ChatMessage, error) {
	var (
		msg     ChatMessage
		created int64
		updated int64
	)
	if err := row.Scan(&msg.ID, &msg.Speaker.ActorID, &msg.Speaker.TokenID, &msg.Speaker.Alias,
		&msg.Content, &msg.Sound, &created, &updated); err != nil {
		return nil, err
	}
	msg.CreatedAt = fromMillis(created)
	msg.UpdatedAt = fromMillis(updated)
	return &msg, nil
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if stderrors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
