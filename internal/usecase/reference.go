package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/atlaserp/cashledger/internal/domain"
)

// ErrNoFinderRegistered is returned when no collaborator has registered
// a finder for a reference kind.
var ErrNoFinderRegistered = errors.New("no finder registered for reference kind")

// ReferenceFinder loads a collaborator's own record by id. The ledger
// never calls these on its write paths; resolution is strictly a
// read-side convenience for collaborators.
type ReferenceFinder func(ctx context.Context, id string) (any, error)

// ReferenceResolver maps reference kinds to collaborator finders. The
// kind set is closed; registration of an unknown kind is rejected.
type ReferenceResolver struct {
	mu      sync.RWMutex
	finders map[domain.ReferenceKind]ReferenceFinder
}

// NewReferenceResolver creates an empty resolver.
func NewReferenceResolver() *ReferenceResolver {
	return &ReferenceResolver{
		finders: make(map[domain.ReferenceKind]ReferenceFinder),
	}
}

// Register installs the finder for a kind, replacing any previous one.
func (r *ReferenceResolver) Register(kind domain.ReferenceKind, finder ReferenceFinder) error {
	if !kind.Valid() {
		return domain.ErrUnknownReferenceKind
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.finders[kind] = finder

	return nil
}

// Resolve loads the record a reference points at.
func (r *ReferenceResolver) Resolve(ctx context.Context, ref *domain.Reference) (any, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	finder, ok := r.finders[ref.Kind]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrNoFinderRegistered
	}

	return finder(ctx, ref.ID)
}
