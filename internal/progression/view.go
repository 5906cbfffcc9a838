package progression

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	actionmodels "recouvro/internal/action/models"
	audiencemodels "recouvro/internal/audience/models"
	documentmodels "recouvro/internal/document/models"
	dossiermodels "recouvro/internal/dossier/models"
	id "recouvro/pkg/domain"
	dErrors "recouvro/pkg/domain-errors"
	"recouvro/pkg/platform/sentinel"
)

// DossierReader loads the dossier aggregate.
type DossierReader interface {
	FindByID(ctx context.Context, dossierID id.DossierID) (*dossiermodels.Dossier, error)
}

// DocumentReader loads the document collection.
type DocumentReader interface {
	ListByDossier(ctx context.Context, dossierID id.DossierID) ([]*documentmodels.LegalDocument, error)
}

// ActionReader loads the action collection.
type ActionReader interface {
	ListByDossier(ctx context.Context, dossierID id.DossierID) ([]*actionmodels.RecoveryAction, error)
}

// AudienceReader loads the audience collection.
type AudienceReader interface {
	ListByDossier(ctx context.Context, dossierID id.DossierID) ([]*audiencemodels.Audience, error)
}

// Loader assembles progression snapshots. The three collections load
// concurrently once the dossier itself is in hand.
type Loader struct {
	dossiers  DossierReader
	documents DocumentReader
	actions   ActionReader
	audiences AudienceReader
}

func NewLoader(dossiers DossierReader, documents DocumentReader, actions ActionReader, audiences AudienceReader) *Loader {
	return &Loader{dossiers: dossiers, documents: documents, actions: actions, audiences: audiences}
}

// Load builds a Snapshot for one dossier.
func (l *Loader) Load(ctx context.Context, dossierID id.DossierID) (*Snapshot, error) {
	dossier, err := l.dossiers.FindByID(ctx, dossierID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "dossier not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeCollaborator, "dossier store unavailable")
	}

	snap := &Snapshot{Dossier: dossier}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := l.documents.ListByDossier(gctx, dossierID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeCollaborator, "document store unavailable")
		}
		snap.Documents = docs
		return nil
	})
	g.Go(func() error {
		actions, err := l.actions.ListByDossier(gctx, dossierID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeCollaborator, "action store unavailable")
		}
		snap.Actions = actions
		return nil
	})
	g.Go(func() error {
		audiences, err := l.audiences.ListByDossier(gctx, dossierID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeCollaborator, "audience store unavailable")
		}
		snap.Audiences = audiences
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
