package services

import (
	"context"
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/vantagecrm/vantage-go/pkg/observability"
	"github.com/vantagecrm/vantage-go/pkg/transport"
)

// Default sizing for the read cache. Entries are decoded gateway payloads;
// a few hundred is plenty for an admin client.
const (
	DefaultCacheSize = 256
	DefaultCacheTTL  = 30 * time.Second
)

// Options tunes the registry. The zero value disables caching.
type Options struct {
	// CacheTTL enables the read-through cache for list/get endpoints when
	// positive. Mutations purge the cache.
	CacheTTL time.Duration

	// CacheSize caps cached entries; zero means DefaultCacheSize.
	CacheSize int

	Logger  *observability.Logger
	Metrics *observability.Metrics
}

// Registry hands out the per-domain service clients. All of them ride the
// one shared transport client and differ only in paths and payload types;
// none carries its own retry or auth behavior.
type Registry struct {
	client  *transport.Client
	cache   *lru.LRU[string, json.RawMessage]
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewRegistry creates the service registry over the shared client.
func NewRegistry(client *transport.Client, opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = observability.NewNopLogger()
	}
	r := &Registry{
		client:  client,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if opts.CacheTTL > 0 {
		size := opts.CacheSize
		if size <= 0 {
			size = DefaultCacheSize
		}
		r.cache = lru.NewLRU[string, json.RawMessage](size, nil, opts.CacheTTL)
	}
	return r
}

// getJSON fetches a read endpoint through the cache. The cache stores the
// raw envelope payload so every caller decodes a private copy.
func (r *Registry) getJSON(ctx context.Context, service, path string, out any) error {
	if r.cache != nil {
		if raw, ok := r.cache.Get(path); ok {
			if r.metrics != nil {
				r.metrics.CacheHitsTotal.WithLabelValues(service).Inc()
			}
			return json.Unmarshal(raw, out)
		}
		if r.metrics != nil {
			r.metrics.CacheMissesTotal.WithLabelValues(service).Inc()
		}
	}

	var raw json.RawMessage
	if err := r.client.Get(ctx, path, &raw); err != nil {
		return err
	}
	if r.cache != nil {
		r.cache.Add(path, raw)
	}
	return json.Unmarshal(raw, out)
}

// invalidate drops all cached reads. The LRU has no key patterns, so any
// mutation purges wholesale; the next read repopulates.
func (r *Registry) invalidate() {
	if r.cache != nil {
		r.cache.Purge()
	}
}

// Leads returns the sales-lead client.
func (r *Registry) Leads() *Leads { return &Leads{r} }

// Calls returns the call-log client.
func (r *Registry) Calls() *Calls { return &Calls{r} }

// Campaigns returns the marketing-campaign client.
func (r *Registry) Campaigns() *Campaigns { return &Campaigns{r} }

// HR returns the employee and payroll client.
func (r *Registry) HR() *HR { return &HR{r} }

// Notifications returns the notification client.
func (r *Registry) Notifications() *Notifications { return &Notifications{r} }

// Billing returns the invoice client.
func (r *Registry) Billing() *Billing { return &Billing{r} }

// Reporting returns the reporting client.
func (r *Registry) Reporting() *Reporting { return &Reporting{r} }

// Customers returns the customer-admin client.
func (r *Registry) Customers() *Customers { return &Customers{r} }
