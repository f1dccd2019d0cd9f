package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devotionalai/api/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	full_name TEXT NOT NULL,
	plan TEXT NOT NULL DEFAULT 'free',
	generations_count INT NOT NULL DEFAULT 0,
	generations_limit INT NOT NULL DEFAULT 5,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS generations (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(id),
	kind TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	input_text TEXT NOT NULL,
	language TEXT NOT NULL,
	voice_style TEXT NOT NULL,
	selected_voice TEXT NOT NULL,
	template_id TEXT,
	lyrics JSONB,
	audio_url TEXT,
	video_url TEXT,
	error_message TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	started_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ,
	processing_seconds INT NOT NULL DEFAULT 0,
	file_size_bytes BIGINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_generations_user_created
	ON generations (user_id, created_at);
`

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and ensures the schema exists.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// CreateGeneration inserts a pending record and increments the owner's
// counter in a single transaction. The row lock on the user serializes
// concurrent submissions near the quota boundary.
func (s *PostgresStore) CreateGeneration(ctx context.Context, userID string, params model.GenerationParams) (*model.Generation, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var count, limit int
	err = tx.QueryRow(ctx,
		`SELECT generations_count, generations_limit FROM users WHERE id = $1 FOR UPDATE`,
		userID,
	).Scan(&count, &limit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock user row: %w", err)
	}
	if count >= limit {
		return nil, ErrQuotaExceeded
	}

	gen := &model.Generation{
		ID:            uuid.New().String(),
		UserID:        userID,
		Kind:          params.Kind,
		Status:        model.StatusPending,
		InputText:     params.InputText,
		Language:      params.Language,
		VoiceStyle:    params.VoiceStyle,
		SelectedVoice: params.SelectedVoice,
		TemplateID:    params.TemplateID,
		Lyrics:        params.Lyrics,
	}

	var lyricsJSON []byte
	if len(params.Lyrics) > 0 {
		lyricsJSON, err = json.Marshal(params.Lyrics)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal lyrics: %w", err)
		}
	}

	err = tx.QueryRow(ctx, `
INSERT INTO generations (id, user_id, kind, status, input_text, language, voice_style, selected_voice, template_id, lyrics)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at`,
		gen.ID, gen.UserID, gen.Kind, gen.Status, gen.InputText,
		gen.Language, gen.VoiceStyle, gen.SelectedVoice, gen.TemplateID, lyricsJSON,
	).Scan(&gen.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert generation: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET generations_count = generations_count + 1 WHERE id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to increment counter: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return gen, nil
}

const generationColumns = `id, user_id, kind, status, input_text, language, voice_style, selected_voice,
template_id, lyrics, audio_url, video_url, error_message, created_at, started_at, completed_at,
processing_seconds, file_size_bytes`

func scanGeneration(row pgx.Row) (*model.Generation, error) {
	var gen model.Generation
	var lyricsJSON []byte
	err := row.Scan(
		&gen.ID, &gen.UserID, &gen.Kind, &gen.Status, &gen.InputText,
		&gen.Language, &gen.VoiceStyle, &gen.SelectedVoice, &gen.TemplateID,
		&lyricsJSON, &gen.AudioURL, &gen.VideoURL, &gen.Error,
		&gen.CreatedAt, &gen.StartedAt, &gen.CompletedAt,
		&gen.ProcessingSeconds, &gen.FileSizeBytes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(lyricsJSON) > 0 {
		if err := json.Unmarshal(lyricsJSON, &gen.Lyrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal lyrics: %w", err)
		}
	}
	return &gen, nil
}

func (s *PostgresStore) GetGeneration(ctx context.Context, id, userID string) (*model.Generation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+generationColumns+` FROM generations WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	return scanGeneration(row)
}

func (s *PostgresStore) GetGenerationAny(ctx context.Context, id string) (*model.Generation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+generationColumns+` FROM generations WHERE id = $1`,
		id,
	)
	return scanGeneration(row)
}

func (s *PostgresStore) ListGenerations(ctx context.Context, userID string, offset, limit int) ([]*model.Generation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+generationColumns+` FROM generations WHERE user_id = $1 ORDER BY created_at OFFSET $2 LIMIT $3`,
		userID, offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	defer rows.Close()

	generations := make([]*model.Generation, 0, limit)
	for rows.Next() {
		gen, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		generations = append(generations, gen)
	}
	return generations, rows.Err()
}

// MarkProcessing moves a pending generation to processing. The WHERE guard
// makes the transition a no-op instead of a regression for any other state.
func (s *PostgresStore) MarkProcessing(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE generations SET status = $2, started_at = now() WHERE id = $1 AND status = $3`,
		id, model.StatusProcessing, model.StatusPending,
	)
	return transitionResult(tag, err)
}

func (s *PostgresStore) MarkCompleted(ctx context.Context, id string, result model.GenerationResult) error {
	tag, err := s.pool.Exec(ctx, `
UPDATE generations
SET status = $2, audio_url = $3, video_url = $4, completed_at = $5,
    processing_seconds = $6, file_size_bytes = $7
WHERE id = $1 AND status = $8`,
		id, model.StatusCompleted, result.AudioURL, result.VideoURL, time.Now().UTC(),
		result.ProcessingSeconds, result.FileSizeBytes, model.StatusProcessing,
	)
	return transitionResult(tag, err)
}

func (s *PostgresStore) MarkFailed(ctx context.Context, id string, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE generations SET status = $2, error_message = $3, completed_at = $4 WHERE id = $1 AND status = $5`,
		id, model.StatusFailed, errMsg, time.Now().UTC(), model.StatusProcessing,
	)
	return transitionResult(tag, err)
}

func transitionResult(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidTransition
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, email, passwordHash, fullName string, plan model.Plan, limit int) (*model.User, error) {
	user := &model.User{
		ID:               uuid.New().String(),
		Email:            email,
		PasswordHash:     passwordHash,
		FullName:         fullName,
		Plan:             plan,
		GenerationsLimit: limit,
	}
	err := s.pool.QueryRow(ctx, `
INSERT INTO users (id, email, password_hash, full_name, plan, generations_limit)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at`,
		user.ID, user.Email, user.PasswordHash, user.FullName, user.Plan, user.GenerationsLimit,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, full_name, plan, generations_count, generations_limit, created_at
		 FROM users WHERE id = $1`, id))
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, full_name, plan, generations_count, generations_limit, created_at
		 FROM users WHERE email = $1`, email))
}

func (s *PostgresStore) scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName,
		&user.Plan, &user.GenerationsCount, &user.GenerationsLimit, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}
