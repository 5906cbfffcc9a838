package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recouvro/internal/dossier/models"
	id "recouvro/pkg/domain"
	"recouvro/pkg/platform/sentinel"
)

// Postgres persists dossiers in PostgreSQL. Open the *sql.DB through the
// pgx stdlib driver.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const insertDossier = `
INSERT INTO dossiers (
	id, reference, montant_creance, montant_recupere, date_cloture,
	statut, etape_huissier, huissier, departement, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

func (s *Postgres) Create(ctx context.Context, dossier *models.Dossier) error {
	_, err := s.db.ExecContext(ctx, insertDossier,
		dossier.ID.String(),
		dossier.Reference,
		dossier.MontantCreance,
		dossier.MontantRecupere,
		dossier.DateCloture,
		string(dossier.Statut),
		string(dossier.Stage),
		dossier.BailiffName,
		string(dossier.Departement),
		dossier.CreatedAt,
		dossier.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create dossier: %w", err)
	}
	return nil
}

const selectDossier = `
SELECT id, reference, montant_creance, montant_recupere, date_cloture,
	statut, etape_huissier, huissier, departement, created_at, updated_at
FROM dossiers WHERE id = $1`

func (s *Postgres) FindByID(ctx context.Context, dossierID id.DossierID) (*models.Dossier, error) {
	row := s.db.QueryRowContext(ctx, selectDossier, dossierID.String())
	return scanDossier(row)
}

const updateDossier = `
UPDATE dossiers SET
	reference = $2, montant_creance = $3, montant_recupere = $4,
	date_cloture = $5, statut = $6, etape_huissier = $7, huissier = $8,
	departement = $9, updated_at = $10
WHERE id = $1`

// Execute runs validate-then-mutate inside a transaction holding a row lock,
// so concurrent commands against the same dossier serialize at the database.
func (s *Postgres) Execute(ctx context.Context, dossierID id.DossierID,
	validate func(*models.Dossier) error,
	mutate func(*models.Dossier)) (*models.Dossier, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin dossier tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, selectDossier+" FOR UPDATE", dossierID.String())
	dossier, err := scanDossier(row)
	if err != nil {
		return nil, err
	}

	if err := validate(dossier); err != nil {
		return nil, err
	}
	mutate(dossier)

	_, err = tx.ExecContext(ctx, updateDossier,
		dossier.ID.String(),
		dossier.Reference,
		dossier.MontantCreance,
		dossier.MontantRecupere,
		dossier.DateCloture,
		string(dossier.Statut),
		string(dossier.Stage),
		dossier.BailiffName,
		string(dossier.Departement),
		dossier.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update dossier: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit dossier tx: %w", err)
	}
	return dossier, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDossier(row rowScanner) (*models.Dossier, error) {
	var (
		d           models.Dossier
		rawID       string
		statut      string
		stage       string
		departement string
		dateCloture sql.NullTime
	)
	err := row.Scan(
		&rawID,
		&d.Reference,
		&d.MontantCreance,
		&d.MontantRecupere,
		&dateCloture,
		&statut,
		&stage,
		&d.BailiffName,
		&departement,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan dossier: %w", err)
	}

	parsed, err := id.ParseDossierID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan dossier: %w", err)
	}
	d.ID = parsed
	d.Statut = models.Statut(statut)
	d.Stage = models.Stage(stage)
	d.Departement = models.Departement(departement)
	if dateCloture.Valid {
		t := dateCloture.Time
		d.DateCloture = &t
	}
	return &d, nil
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

// Schema returns the DDL for the dossiers table.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS dossiers (
	id               UUID PRIMARY KEY,
	reference        TEXT NOT NULL UNIQUE,
	montant_creance  DOUBLE PRECISION NOT NULL,
	montant_recupere DOUBLE PRECISION NOT NULL DEFAULT 0,
	date_cloture     TIMESTAMPTZ,
	statut           TEXT NOT NULL,
	etape_huissier   TEXT NOT NULL DEFAULT '',
	huissier         TEXT NOT NULL DEFAULT '',
	departement      TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);`
}
