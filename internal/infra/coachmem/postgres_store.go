package coachmem

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/lunarfit/coach-api/internal/domain/coach"
)

// PostgresStore persists coach notes with embeddings in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs the adapter.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Upsert stores or refreshes a note keyed by user and content.
func (s *PostgresStore) Upsert(ctx context.Context, note coach.Note) error {
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	var embedding any
	if len(note.Embedding) > 0 {
		embedding = pgvector.NewVector(note.Embedding)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO coach_notes (user_id, content, embedding, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, content)
		DO UPDATE SET embedding = EXCLUDED.embedding, created_at = EXCLUDED.created_at
	`, note.UserID, note.Content, embedding, note.CreatedAt)
	return err
}

// Search returns the top-k similar notes for a user.
func (s *PostgresStore) Search(ctx context.Context, userID int64, embedding []float32, k int) ([]coach.RetrievedNote, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	limit := k
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, content, created_at,
		       (1.0 / (1.0 + (embedding <-> $2))) AS score
		FROM coach_notes
		WHERE user_id = $1 AND embedding IS NOT NULL
		ORDER BY (embedding <-> $2) ASC
		LIMIT $3
	`, userID, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]coach.RetrievedNote, 0)
	for rows.Next() {
		var (
			note  coach.Note
			score float64
		)
		if err := rows.Scan(&note.ID, &note.UserID, &note.Content, &note.CreatedAt, &score); err != nil {
			return nil, err
		}
		results = append(results, coach.RetrievedNote{Note: note, Score: score})
	}
	return results, rows.Err()
}

var _ coach.NoteStore = (*PostgresStore)(nil)
