package models

import (
	"encoding/json"
	"strings"
	"time"

	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
)

// Statut is the coarse lifecycle state of a dossier, shared with the amiable
// and juridique departments.
type Statut string

const (
	StatutEnCours  Statut = "EN_COURS"
	StatutCloture  Statut = "CLOTURE"
	StatutSuspendu Statut = "SUSPENDU"
)

// Departement owns the dossier at a given point of the recovery pipeline.
type Departement string

const (
	DepartementAmiable   Departement = "AMIABLE"
	DepartementJuridique Departement = "JURIDIQUE"
	DepartementFinance   Departement = "FINANCE"
)

// Dossier is the aggregate root for a recovery case file.
//
// Invariants:
//   - MontantCreance >= 0; MontantRecupere >= 0
//   - A closed dossier (DateCloture set or Statut CLOTURE) accepts no
//     document, action, or audience mutations regardless of stage
//   - Stage transitions are strictly forward; hand-to-finance is a separate
//     command and the only way to reach TRANSMIS_FINANCE
//   - Dossiers are never deleted, only closed or reactivated
//
// MontantRecupere is a cached projection of the action ledger sum. The action
// sum is authoritative; the projection exists because a legacy finance import
// writes it directly, so readers reconcile with max() (see action service).
type Dossier struct {
	ID              id.DossierID
	Reference       string
	MontantCreance  float64
	MontantRecupere float64
	DateCloture     *time.Time
	Statut          Statut
	Stage           Stage
	BailiffName     string
	Departement     Departement
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewDossier validates and constructs a dossier entering the juridique
// pipeline. Stage starts empty and reads as EN_ATTENTE_DOCUMENTS.
func NewDossier(dossierID id.DossierID, reference string, montantCreance float64, bailiffName string, now time.Time) (*Dossier, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "reference is required")
	}
	if montantCreance < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "montant creance must not be negative")
	}
	return &Dossier{
		ID:             dossierID,
		Reference:      reference,
		MontantCreance: montantCreance,
		Statut:         StatutEnCours,
		Stage:          StageAwaitingDocuments,
		BailiffName:    strings.TrimSpace(bailiffName),
		Departement:    DepartementJuridique,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// EffectiveStage normalizes the absent stage to the implicit default.
func (d *Dossier) EffectiveStage() Stage {
	if d.Stage == "" {
		return StageAwaitingDocuments
	}
	return d.Stage
}

// IsClosed reports whether the dossier is frozen for mutations.
func (d *Dossier) IsClosed() bool {
	return d.DateCloture != nil || d.Statut == StatutCloture
}

// EnsureOpen returns CodeCaseClosed when the dossier is frozen.
func (d *Dossier) EnsureOpen() error {
	if d.IsClosed() {
		return dErrors.New(dErrors.CodeCaseClosed, "dossier is closed")
	}
	return nil
}

// CanAdvanceTo checks the linear stage transition from the current stage.
func (d *Dossier) CanAdvanceTo(target Stage) error {
	if err := d.EnsureOpen(); err != nil {
		return err
	}
	current := d.EffectiveStage()
	if !current.CanAdvanceTo(target) {
		return dErrors.Newf(dErrors.CodeStageViolation,
			"cannot advance from %s to %s", current, target)
	}
	return nil
}

// ApplyStage records a stage transition. Call CanAdvanceTo first; this applies
// unconditionally so the Execute-callback store pattern can separate the
// validation from the mutation.
func (d *Dossier) ApplyStage(target Stage, now time.Time) {
	d.Stage = target
	d.UpdatedAt = now
}

// ApplyHandToFinance marks the bailiff sub-workflow finished. Eligibility
// (at least one action or audience) is checked by the progression service;
// it is stage-independent by design.
func (d *Dossier) ApplyHandToFinance(now time.Time) {
	d.Stage = StageFinance
	d.Departement = DepartementFinance
	d.UpdatedAt = now
}

// CanClose checks that the dossier is not already closed.
func (d *Dossier) CanClose() error {
	if d.IsClosed() {
		return dErrors.New(dErrors.CodeConflict, "dossier is already closed")
	}
	return nil
}

// ApplyClosure freezes the dossier.
func (d *Dossier) ApplyClosure(now time.Time) {
	closure := now
	d.DateCloture = &closure
	d.Statut = StatutCloture
	d.UpdatedAt = now
}

// CanReactivate checks that the dossier is currently closed.
func (d *Dossier) CanReactivate() error {
	if !d.IsClosed() {
		return dErrors.New(dErrors.CodeConflict, "dossier is not closed")
	}
	return nil
}

// ApplyReactivation reopens the dossier.
func (d *Dossier) ApplyReactivation(now time.Time) {
	d.DateCloture = nil
	d.Statut = StatutEnCours
	d.UpdatedAt = now
}

// ApplyRecovered refreshes the cached recovered-amount projection from the
// authoritative action sum.
func (d *Dossier) ApplyRecovered(total float64, now time.Time) {
	if total < 0 {
		total = 0
	}
	d.MontantRecupere = total
	d.UpdatedAt = now
}

// dossierJSON is the wire shape. The stage historically appeared under two
// spellings; unmarshalling accepts both, marshalling emits only the
// canonical snake_case key.
type dossierJSON struct {
	ID              id.DossierID `json:"id"`
	Reference       string       `json:"reference"`
	MontantCreance  float64      `json:"montant_creance"`
	MontantRecupere float64      `json:"montant_recupere"`
	DateCloture     *time.Time   `json:"date_cloture,omitempty"`
	Statut          Statut       `json:"statut"`
	EtapeHuissier   string       `json:"etape_huissier,omitempty"`
	EtapeCamel      string       `json:"etapeHuissier,omitempty"`
	BailiffName     string       `json:"huissier,omitempty"`
	Departement     Departement  `json:"departement"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func (d Dossier) MarshalJSON() ([]byte, error) {
	return json.Marshal(dossierJSON{
		ID:              d.ID,
		Reference:       d.Reference,
		MontantCreance:  d.MontantCreance,
		MontantRecupere: d.MontantRecupere,
		DateCloture:     d.DateCloture,
		Statut:          d.Statut,
		EtapeHuissier:   string(d.EffectiveStage()),
		BailiffName:     d.BailiffName,
		Departement:     d.Departement,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	})
}

func (d *Dossier) UnmarshalJSON(data []byte) error {
	var raw dossierJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	// Normalize the stage at the boundary: snake_case wins when both keys
	// are present; core logic never sees the raw spellings again.
	rawStage := raw.EtapeHuissier
	if rawStage == "" {
		rawStage = raw.EtapeCamel
	}
	stage, err := ParseStage(rawStage)
	if err != nil {
		return err
	}

	d.ID = raw.ID
	d.Reference = raw.Reference
	d.MontantCreance = raw.MontantCreance
	d.MontantRecupere = raw.MontantRecupere
	d.DateCloture = raw.DateCloture
	d.Statut = raw.Statut
	d.Stage = stage
	d.BailiffName = raw.BailiffName
	d.Departement = raw.Departement
	d.CreatedAt = raw.CreatedAt
	d.UpdatedAt = raw.UpdatedAt
	return nil
}
