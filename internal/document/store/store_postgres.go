package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"recouvro/internal/document/models"
	id "recouvro/pkg/domain"
	"recouvro/pkg/platform/sentinel"
)

// Postgres persists legal documents in PostgreSQL. Open the *sql.DB through
// the pgx stdlib driver.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const insertDocument = `
INSERT INTO legal_documents (
	id, dossier_id, type, delai_jours, created_at,
	attachment_ref, huissier, completed, completed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (s *Postgres) Create(ctx context.Context, doc *models.LegalDocument) error {
	_, err := s.db.ExecContext(ctx, insertDocument,
		doc.ID.String(),
		doc.DossierID.String(),
		string(doc.Type),
		doc.DelayDays,
		doc.CreatedAt,
		doc.AttachmentRef,
		doc.BailiffName,
		doc.Completed,
		doc.CompletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

const selectDocument = `
SELECT id, dossier_id, type, delai_jours, created_at,
	attachment_ref, huissier, completed, completed_at
FROM legal_documents WHERE id = $1`

func (s *Postgres) FindByID(ctx context.Context, documentID id.DocumentID) (*models.LegalDocument, error) {
	row := s.db.QueryRowContext(ctx, selectDocument, documentID.String())
	return scanDocument(row)
}

const selectDocumentsByDossier = `
SELECT id, dossier_id, type, delai_jours, created_at,
	attachment_ref, huissier, completed, completed_at
FROM legal_documents WHERE dossier_id = $1
ORDER BY created_at`

func (s *Postgres) ListByDossier(ctx context.Context, dossierID id.DossierID) ([]*models.LegalDocument, error) {
	rows, err := s.db.QueryContext(ctx, selectDocumentsByDossier, dossierID.String())
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*models.LegalDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return out, nil
}

func (s *Postgres) CountByDossier(ctx context.Context, dossierID id.DossierID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM legal_documents WHERE dossier_id = $1`,
		dossierID.String()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

const updateDocument = `
UPDATE legal_documents SET
	attachment_ref = $2, huissier = $3, completed = $4, completed_at = $5
WHERE id = $1`

// Execute runs validate-then-mutate inside a transaction holding a row lock.
func (s *Postgres) Execute(ctx context.Context, documentID id.DocumentID,
	validate func(*models.LegalDocument) error,
	mutate func(*models.LegalDocument)) (*models.LegalDocument, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin document tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, selectDocument+" FOR UPDATE", documentID.String())
	doc, err := scanDocument(row)
	if err != nil {
		return nil, err
	}

	if err := validate(doc); err != nil {
		return nil, err
	}
	mutate(doc)

	_, err = tx.ExecContext(ctx, updateDocument,
		doc.ID.String(),
		doc.AttachmentRef,
		doc.BailiffName,
		doc.Completed,
		doc.CompletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit document tx: %w", err)
	}
	return doc, nil
}

func (s *Postgres) Delete(ctx context.Context, documentID id.DocumentID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM legal_documents WHERE id = $1`, documentID.String())
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.LegalDocument, error) {
	var (
		d           models.LegalDocument
		rawID       string
		rawDossier  string
		docType     string
		completedAt sql.NullTime
	)
	err := row.Scan(
		&rawID,
		&rawDossier,
		&docType,
		&d.DelayDays,
		&d.CreatedAt,
		&d.AttachmentRef,
		&d.BailiffName,
		&d.Completed,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}

	parsedID, err := id.ParseDocumentID(rawID)
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	parsedDossier, err := id.ParseDossierID(rawDossier)
	if err != nil {
		return nil, fmt.Errorf("scan document: %w", err)
	}
	d.ID = parsedID
	d.DossierID = parsedDossier
	d.Type = models.DocumentType(docType)
	if completedAt.Valid {
		t := completedAt.Time
		d.CompletedAt = &t
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

// Schema returns the DDL for the legal_documents table.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS legal_documents (
	id             UUID PRIMARY KEY,
	dossier_id     UUID NOT NULL,
	type           TEXT NOT NULL,
	delai_jours    INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL,
	attachment_ref TEXT NOT NULL DEFAULT '',
	huissier       TEXT NOT NULL,
	completed      BOOLEAN NOT NULL DEFAULT FALSE,
	completed_at   TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS legal_documents_dossier_idx ON legal_documents (dossier_id);`
}
