package delivery

import (
	"context"

	"centavo/internal/core/apperror"
)

// Adapter is the capability set every courier integration must provide.
// An adapter only translates the normalized Order into its provider's wire
// call and parses the raw response; it never applies the status taxonomy.
type Adapter interface {
	// CreateOrder submits the order upstream and returns the provider's
	// reference. Calling it twice for the same logical order is a caller
	// bug; adapters do not deduplicate.
	CreateOrder(ctx context.Context, order Order) (*OrderRef, error)

	// GetStatus returns the provider's raw status string for an order.
	GetStatus(ctx context.Context, externalID string) (string, error)
}

// Registry resolves a company key to its adapter and applies the status
// taxonomy uniformly after every GetStatus call. The set of adapters is
// closed at construction time.
type Registry struct {
	adapters map[Provider]Adapter
}

// NewRegistry creates an empty registry. Adapters are registered once at
// process start; the registry is read-only afterwards and safe for
// concurrent use.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[Provider]Adapter)}
}

// Register binds an adapter to a provider key.
func (r *Registry) Register(p Provider, a Adapter) {
	r.adapters[p] = a
}

// resolve returns the adapter for a company key.
func (r *Registry) resolve(companyKey string) (Provider, Adapter, error) {
	p := Provider(companyKey)
	a, ok := r.adapters[p]
	if !ok {
		return "", nil, apperror.NewUnsupportedProvider(companyKey)
	}
	return p, a, nil
}

// Dispatch submits a normalized order through the selected provider.
// Upstream failures surface as UPSTREAM_ERROR and are not retried here;
// retry and backoff policy belongs to the caller.
func (r *Registry) Dispatch(ctx context.Context, companyKey string, order Order) (*OrderRef, error) {
	_, adapter, err := r.resolve(companyKey)
	if err != nil {
		return nil, err
	}
	return adapter.CreateOrder(ctx, order)
}

// PollStatus fetches the provider's raw status and maps it into the
// internal taxonomy.
func (r *Registry) PollStatus(ctx context.Context, companyKey, externalID string) (*StatusResult, error) {
	provider, adapter, err := r.resolve(companyKey)
	if err != nil {
		return nil, err
	}

	raw, err := adapter.GetStatus(ctx, externalID)
	if err != nil {
		return nil, err
	}

	return &StatusResult{
		ProviderStatus: raw,
		Internal:       MapProviderStatus(provider, raw),
	}, nil
}
