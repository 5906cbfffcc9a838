package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recouvro/internal/action/models"
	id "recouvro/pkg/domain"
	"recouvro/pkg/platform/sentinel"
)

// Postgres persists recovery actions in PostgreSQL. Open the *sql.DB through
// the pgx stdlib driver.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const insertAction = `
INSERT INTO recovery_actions (
	id, dossier_id, type, montant_recupere, montant_restant,
	etat_resultant, attachment_ref, huissier, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func (s *Postgres) Create(ctx context.Context, action *models.RecoveryAction) error {
	_, err := s.db.ExecContext(ctx, insertAction,
		action.ID.String(),
		action.DossierID.String(),
		string(action.Type),
		action.MontantRecupere,
		action.MontantRestant,
		string(action.ResultingState),
		action.AttachmentRef,
		action.BailiffName,
		action.CreatedAt,
		action.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create action: %w", err)
	}
	return nil
}

const selectAction = `
SELECT id, dossier_id, type, montant_recupere, montant_restant,
	etat_resultant, attachment_ref, huissier, created_at, updated_at
FROM recovery_actions WHERE id = $1`

func (s *Postgres) FindByID(ctx context.Context, actionID id.ActionID) (*models.RecoveryAction, error) {
	row := s.db.QueryRowContext(ctx, selectAction, actionID.String())
	return scanAction(row)
}

const selectActionsByDossier = `
SELECT id, dossier_id, type, montant_recupere, montant_restant,
	etat_resultant, attachment_ref, huissier, created_at, updated_at
FROM recovery_actions WHERE dossier_id = $1
ORDER BY created_at`

func (s *Postgres) ListByDossier(ctx context.Context, dossierID id.DossierID) ([]*models.RecoveryAction, error) {
	rows, err := s.db.QueryContext(ctx, selectActionsByDossier, dossierID.String())
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var out []*models.RecoveryAction
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	return out, nil
}

func (s *Postgres) CountByDossier(ctx context.Context, dossierID id.DossierID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recovery_actions WHERE dossier_id = $1`,
		dossierID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count actions: %w", err)
	}
	return count, nil
}

func (s *Postgres) SumByDossier(ctx context.Context, dossierID id.DossierID, exclude *id.ActionID) (float64, error) {
	query := `SELECT COALESCE(SUM(montant_recupere), 0) FROM recovery_actions WHERE dossier_id = $1`
	args := []any{dossierID.String()}
	if exclude != nil {
		query += ` AND id <> $2`
		args = append(args, exclude.String())
	}
	var sum float64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum actions: %w", err)
	}
	return sum, nil
}

const updateAction = `
UPDATE recovery_actions SET
	type = $2, montant_recupere = $3, montant_restant = $4,
	etat_resultant = $5, attachment_ref = $6, huissier = $7, updated_at = $8
WHERE id = $1`

func (s *Postgres) Update(ctx context.Context, action *models.RecoveryAction) error {
	res, err := s.db.ExecContext(ctx, updateAction,
		action.ID.String(),
		string(action.Type),
		action.MontantRecupere,
		action.MontantRestant,
		string(action.ResultingState),
		action.AttachmentRef,
		action.BailiffName,
		action.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update action: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update action: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, actionID id.ActionID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recovery_actions WHERE id = $1`, actionID.String())
	if err != nil {
		return fmt.Errorf("delete action: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete action: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAction(row rowScanner) (*models.RecoveryAction, error) {
	var (
		a          models.RecoveryAction
		rawID      string
		rawDossier string
		actionType string
		stateHint  string
	)
	err := row.Scan(
		&rawID,
		&rawDossier,
		&actionType,
		&a.MontantRecupere,
		&a.MontantRestant,
		&stateHint,
		&a.AttachmentRef,
		&a.BailiffName,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan action: %w", err)
	}

	parsedID, err := id.ParseActionID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan action: %w", err)
	}
	parsedDossier, err := id.ParseDossierID(rawDossier)
	if err != nil {
		return nil, fmt.Errorf("scan action: %w", err)
	}
	a.ID = parsedID
	a.DossierID = parsedDossier
	a.Type = models.ActionType(actionType)
	a.ResultingState = models.StateHint(stateHint)
	return &a, nil
}

// isUniqueViolation matches the PostgreSQL unique_violation SQLSTATE without
// binding the scan path to a specific driver error type.
func isUniqueViolation(err error) bool {
	type sqlState interface{ SQLState() string }
	var state sqlState
	if errors.As(err, &state) {
		return state.SQLState() == "23505"
	}
	return false
}

// Schema returns the DDL for the recovery_actions table.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS recovery_actions (
	id               UUID PRIMARY KEY,
	dossier_id       UUID NOT NULL,
	type             TEXT NOT NULL,
	montant_recupere DOUBLE PRECISION NOT NULL DEFAULT 0,
	montant_restant  DOUBLE PRECISION NOT NULL DEFAULT 0,
	etat_resultant   TEXT NOT NULL DEFAULT 'EN_COURS',
	attachment_ref   TEXT NOT NULL DEFAULT '',
	huissier         TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS recovery_actions_dossier_idx ON recovery_actions (dossier_id);`
}
