package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"bgv/internal/verification/models"
	id "bgv/pkg/domain"
	"bgv/pkg/platform/sentinel"
)

// InMemoryOrgSettings holds each organization's active provider.
type InMemoryOrgSettings struct {
	mu        sync.RWMutex
	providers map[id.OrgID]models.Provider
}

func NewInMemoryOrgSettings() *InMemoryOrgSettings {
	return &InMemoryOrgSettings{providers: make(map[id.OrgID]models.Provider)}
}

// ActiveProvider returns sentinel.ErrNotFound for organizations never configured.
func (s *InMemoryOrgSettings) ActiveProvider(_ context.Context, orgID id.OrgID) (models.Provider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.providers[orgID]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return p, nil
}

func (s *InMemoryOrgSettings) SetActiveProvider(_ context.Context, orgID id.OrgID, p models.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[orgID] = p
	return nil
}

// PostgresOrgSettings reads and writes organization_settings.
type PostgresOrgSettings struct {
	db *sql.DB
}

func NewPostgresOrgSettings(db *sql.DB) *PostgresOrgSettings {
	return &PostgresOrgSettings{db: db}
}

func (s *PostgresOrgSettings) ActiveProvider(ctx context.Context, orgID id.OrgID) (models.Provider, error) {
	const query = `SELECT active_provider FROM organization_settings WHERE org_id = $1`
	var p string
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(orgID)).Scan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find active provider: %w", err)
	}
	return models.Provider(p), nil
}

func (s *PostgresOrgSettings) SetActiveProvider(ctx context.Context, orgID id.OrgID, p models.Provider) error {
	const query = `
		INSERT INTO organization_settings (org_id, active_provider, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (org_id) DO UPDATE
		SET active_provider = EXCLUDED.active_provider, updated_at = EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, query, uuid.UUID(orgID), string(p), time.Now().UTC()); err != nil {
		return fmt.Errorf("save active provider: %w", err)
	}
	return nil
}
