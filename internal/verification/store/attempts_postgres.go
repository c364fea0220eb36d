package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bgv/internal/verification/models"
	id "bgv/pkg/domain"
	"bgv/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresAttemptStore persists attempts in verification_attempts.
type PostgresAttemptStore struct {
	db *sql.DB
}

func NewPostgresAttemptStore(db *sql.DB) *PostgresAttemptStore {
	return &PostgresAttemptStore{db: db}
}

func (s *PostgresAttemptStore) Append(ctx context.Context, rec models.AttemptRecord) error {
	const query = `
		INSERT INTO verification_attempts (id, candidate_id, method, raw_response, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(rec.ID),
		uuid.UUID(rec.CandidateID),
		string(rec.Method),
		string(rec.RawResponse),
		rec.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("append attempt %s: %w", rec.ID, sentinel.ErrConflict)
		}
		return fmt.Errorf("append attempt: %w", err)
	}
	return nil
}

func (s *PostgresAttemptStore) ListByCandidate(ctx context.Context, candidateID id.CandidateID) ([]models.AttemptRecord, error) {
	const query = `
		SELECT id, candidate_id, method, raw_response, created_at
		FROM verification_attempts
		WHERE candidate_id = $1
		ORDER BY created_at DESC, seq DESC`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(candidateID))
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []models.AttemptRecord
	for rows.Next() {
		var (
			attemptID, candID uuid.UUID
			method            string
			raw               []byte
			rec               models.AttemptRecord
		)
		if err := rows.Scan(&attemptID, &candID, &method, &raw, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		rec.ID = id.AttemptID(attemptID)
		rec.CandidateID = id.CandidateID(candID)
		rec.Method = models.Method(method)
		rec.RawResponse = raw
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return out, nil
}
