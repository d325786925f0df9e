package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	tonifyerrors "tonify/internal/errors"
	"tonify/internal/logging"
	"tonify/internal/ports"
	"tonify/internal/trait"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	id             TEXT PRIMARY KEY,
	owner_id       TEXT NOT NULL,
	name           TEXT NOT NULL,
	formality      REAL NOT NULL,
	brevity        REAL NOT NULL,
	humor          REAL NOT NULL,
	warmth         REAL NOT NULL,
	directness     REAL NOT NULL,
	expressiveness REAL NOT NULL,
	title          TEXT NOT NULL,
	summary        TEXT NOT NULL,
	prompt         TEXT NOT NULL,
	examples       TEXT NOT NULL,
	created_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_profiles_owner ON profiles(owner_id, created_at DESC);
`

// SQLiteStore persists profiles in a local SQLite database. Examples are
// stored as a JSON array; created_at as unix nanoseconds.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
	newID  func() string
	now    func() time.Time
}

var _ ports.ProfileStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string, logger logging.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logging.OrNop(logger),
		newID:  newProfileID,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, ownerID string, fields ports.ProfileFields) (ports.Profile, error) {
	profile := ports.Profile{
		ID:        s.newID(),
		OwnerID:   ownerID,
		Name:      fields.Name,
		Traits:    fields.Traits,
		Title:     fields.Title,
		Summary:   fields.Summary,
		Prompt:    fields.Prompt,
		Examples:  append([]string(nil), fields.Examples...),
		CreatedAt: s.now(),
	}

	examples, err := json.Marshal(profile.Examples)
	if err != nil {
		return ports.Profile{}, fmt.Errorf("encode examples: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (
			id, owner_id, name,
			formality, brevity, humor, warmth, directness, expressiveness,
			title, summary, prompt, examples, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID, profile.OwnerID, profile.Name,
		profile.Traits.Formality, profile.Traits.Brevity, profile.Traits.Humor,
		profile.Traits.Warmth, profile.Traits.Directness, profile.Traits.Expressiveness,
		profile.Title, profile.Summary, profile.Prompt,
		string(examples), profile.CreatedAt.UnixNano(),
	)
	if err != nil {
		return ports.Profile{}, fmt.Errorf("insert profile: %w", err)
	}

	s.logger.Debug("Created profile %s for owner %s", profile.ID, ownerID)
	return profile, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (ports.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name,
			formality, brevity, humor, warmth, directness, expressiveness,
			title, summary, prompt, examples, created_at
		FROM profiles WHERE id = ?`, id)
	return scanProfile(row)
}

func (s *SQLiteStore) List(ctx context.Context, ownerID string) ([]ports.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name,
			formality, brevity, humor, warmth, directness, expressiveness,
			title, summary, prompt, examples, created_at
		FROM profiles WHERE owner_id = ?
		ORDER BY created_at DESC, rowid DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []ports.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, profile)
	}
	return result, rows.Err()
}

func (s *SQLiteStore) Update(ctx context.Context, id string, update ports.ProfileUpdate) (ports.Profile, error) {
	profile, err := s.Get(ctx, id)
	if err != nil {
		return ports.Profile{}, err
	}

	update.Apply(&profile)

	examples, err := json.Marshal(profile.Examples)
	if err != nil {
		return ports.Profile{}, fmt.Errorf("encode examples: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET
			name = ?,
			formality = ?, brevity = ?, humor = ?, warmth = ?, directness = ?, expressiveness = ?,
			title = ?, summary = ?, prompt = ?, examples = ?
		WHERE id = ?`,
		profile.Name,
		profile.Traits.Formality, profile.Traits.Brevity, profile.Traits.Humor,
		profile.Traits.Warmth, profile.Traits.Directness, profile.Traits.Expressiveness,
		profile.Title, profile.Summary, profile.Prompt, string(examples),
		id,
	)
	if err != nil {
		return ports.Profile{}, fmt.Errorf("update profile: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ports.Profile{}, tonifyerrors.ErrNotFound
	}

	return profile, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return tonifyerrors.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (ports.Profile, error) {
	var profile ports.Profile
	var traits trait.Vector
	var examplesJSON string
	var createdAt int64

	err := row.Scan(
		&profile.ID, &profile.OwnerID, &profile.Name,
		&traits.Formality, &traits.Brevity, &traits.Humor,
		&traits.Warmth, &traits.Directness, &traits.Expressiveness,
		&profile.Title, &profile.Summary, &profile.Prompt,
		&examplesJSON, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.Profile{}, tonifyerrors.ErrNotFound
	}
	if err != nil {
		return ports.Profile{}, fmt.Errorf("scan profile: %w", err)
	}

	if err := json.Unmarshal([]byte(examplesJSON), &profile.Examples); err != nil {
		return ports.Profile{}, fmt.Errorf("decode examples: %w", err)
	}

	profile.Traits = traits
	profile.CreatedAt = time.Unix(0, createdAt).UTC()
	return profile, nil
}
