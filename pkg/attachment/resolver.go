package attachment

import (
	"fmt"

	"go.uber.org/zap"
)

// Resolver rebinds existing attachments to the regions of a (possibly
// reloaded) atlas without reconstructing them. Shape fields, sequence mode
// and mesh geometry are kept.
type Resolver struct {
	finder RegionFinder
	log    *zap.Logger
}

// NewResolver creates a resolver backed by finder. log may be nil.
func NewResolver(finder RegionFinder, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{finder: finder, log: log}
}

// SetFinder swaps the backing atlas for subsequent resolves.
func (r *Resolver) SetFinder(finder RegionFinder) {
	r.finder = finder
}

// Resolve rebinds a's regions. On failure a keeps its previous binding and
// is marked unresolved.
func (r *Resolver) Resolve(a *Attachment) error {
	if err := bind(a, r.finder); err != nil {
		a.resolved = false
		return fmt.Errorf("resolving %s attachment %q: %w", a.Kind, a.Name, err)
	}
	return nil
}

// ResolveAll resolves every attachment, stopping at the first failure.
func (r *Resolver) ResolveAll(attachments []*Attachment) error {
	for _, a := range attachments {
		if err := r.Resolve(a); err != nil {
			return err
		}
	}
	r.log.Debug("attachments resolved", zap.Int("count", len(attachments)))
	return nil
}
