package service

import (
	"slices"

	domainauth "github.com/target/mmk-sso/internal/domain/auth"
	apperrors "github.com/target/mmk-sso/internal/errors"
	"github.com/target/mmk-sso/internal/ports"
)

// ProviderRegistry maps provider names to adapters. Providers whose
// configuration failed validation are kept with their error so requests for
// them surface a configuration error instead of "unknown provider".
type ProviderRegistry struct {
	adapters    map[domainauth.ProviderName]ports.ProviderAdapter
	unavailable map[domainauth.ProviderName]error
}

// NewProviderRegistry returns an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		adapters:    make(map[domainauth.ProviderName]ports.ProviderAdapter),
		unavailable: make(map[domainauth.ProviderName]error),
	}
}

// Register adds (or replaces) an adapter under its own name.
func (r *ProviderRegistry) Register(adapter ports.ProviderAdapter) {
	name := adapter.Name()
	r.adapters[name] = adapter
	delete(r.unavailable, name)
}

// MarkUnavailable records why a known provider cannot be used.
func (r *ProviderRegistry) MarkUnavailable(name domainauth.ProviderName, err error) {
	if err == nil {
		return
	}
	delete(r.adapters, name)
	r.unavailable[name] = apperrors.EnsureCode(err, apperrors.ErrCodeConfiguration)
}

// Lookup returns the adapter for name or a configuration error.
func (r *ProviderRegistry) Lookup(name domainauth.ProviderName) (ports.ProviderAdapter, error) {
	if adapter, ok := r.adapters[name]; ok {
		return adapter, nil
	}
	if err, ok := r.unavailable[name]; ok {
		return nil, err
	}
	return nil, apperrors.Configuration("unknown provider %q", string(name))
}

// Names lists the usable providers in sorted order.
func (r *ProviderRegistry) Names() []domainauth.ProviderName {
	names := make([]domainauth.ProviderName, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
