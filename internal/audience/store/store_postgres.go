package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recouvro/internal/audience/models"
	id "recouvro/pkg/domain"
	"recouvro/pkg/platform/sentinel"
)

// Postgres persists audiences in PostgreSQL. Open the *sql.DB through the
// pgx stdlib driver.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const insertAudience = `
INSERT INTO audiences (
	id, dossier_id, date_audience, tribunal, resultat, huissier, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (s *Postgres) Create(ctx context.Context, audience *models.Audience) error {
	_, err := s.db.ExecContext(ctx, insertAudience,
		audience.ID.String(),
		audience.DossierID.String(),
		audience.DateAudience,
		audience.Tribunal,
		audience.Resultat,
		audience.BailiffName,
		audience.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create audience: %w", err)
	}
	return nil
}

const selectAudiencesByDossier = `
SELECT id, dossier_id, date_audience, tribunal, resultat, huissier, created_at
FROM audiences WHERE dossier_id = $1
ORDER BY date_audience`

func (s *Postgres) ListByDossier(ctx context.Context, dossierID id.DossierID) ([]*models.Audience, error) {
	rows, err := s.db.QueryContext(ctx, selectAudiencesByDossier, dossierID.String())
	if err != nil {
		return nil, fmt.Errorf("list audiences: %w", err)
	}
	defer rows.Close()

	var out []*models.Audience
	for rows.Next() {
		var (
			a          models.Audience
			rawID      string
			rawDossier string
		)
		err := rows.Scan(&rawID, &rawDossier, &a.DateAudience, &a.Tribunal, &a.Resultat, &a.BailiffName, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan audience: %w", err)
		}
		parsedID, err := id.ParseAudienceID(rawID)
		if err != nil {
			return nil, fmt.Errorf("scan audience: %w", err)
		}
		parsedDossier, err := id.ParseDossierID(rawDossier)
		if err != nil {
			return nil, fmt.Errorf("scan audience: %w", err)
		}
		a.ID = parsedID
		a.DossierID = parsedDossier
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audiences: %w", err)
	}
	return out, nil
}

func (s *Postgres) CountByDossier(ctx context.Context, dossierID id.DossierID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audiences WHERE dossier_id = $1`,
		dossierID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count audiences: %w", err)
	}
	return count, nil
}

// isUniqueViolation matches the PostgreSQL unique_violation SQLSTATE.
func isUniqueViolation(err error) bool {
	type sqlState interface{ SQLState() string }
	var state sqlState
	if errors.As(err, &state) {
		return state.SQLState() == "23505"
	}
	return false
}

// Schema returns the DDL for the audiences table.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS audiences (
	id            UUID PRIMARY KEY,
	dossier_id    UUID NOT NULL,
	date_audience TIMESTAMPTZ NOT NULL,
	tribunal      TEXT NOT NULL,
	resultat      TEXT NOT NULL DEFAULT '',
	huissier      TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audiences_dossier_idx ON audiences (dossier_id);`
}
