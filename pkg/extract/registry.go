package extract

import (
	"fmt"

	"github.com/panbanda/codesim/pkg/language"
)

// Registry selects a provider for a strategy, backend and language.
// The token strategy has one provider for every backend.
type Registry struct {
	token      Provider
	structural map[Backend]Provider
}

// NewRegistry creates a registry with the native providers and the given
// external provider. A nil external uses one with no commands configured.
func NewRegistry(external *External) *Registry {
	if external == nil {
		external = NewExternal()
	}
	return &Registry{
		token: NewToken(),
		structural: map[Backend]Provider{
			BackendNative:     NewStructure(),
			BackendExternal:   external,
			BackendTreeSitter: NewTreeSitter(),
		},
	}
}

// Register replaces the structural provider for a backend.
func (r *Registry) Register(b Backend, p Provider) {
	r.structural[b] = p
}

// Wrap replaces every provider with wrap(provider).
func (r *Registry) Wrap(wrap func(Provider) Provider) {
	r.token = wrap(r.token)
	for b, p := range r.structural {
		r.structural[b] = wrap(p)
	}
}

// Lookup returns the provider for the combination. Unsupported languages
// are reported with language.ErrUnsupported.
func (r *Registry) Lookup(s Strategy, b Backend, tag language.Tag) (Provider, error) {
	if !tag.Supported() {
		return nil, fmt.Errorf("no provider for %q: %w", tag, language.ErrUnsupported)
	}
	switch s {
	case StrategyToken:
		return r.token, nil
	case StrategyStructure:
		p, ok := r.structural[b]
		if !ok {
			return nil, fmt.Errorf("unknown backend %q", b)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", s)
	}
}
