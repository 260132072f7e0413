// Package discovery resolves backend service URLs, preferring a central
// discovery service and falling back to explicit overrides or compiled-in
// defaults. The resolved endpoint table is refreshed periodically and
// published by atomic swap: one writer, many readers, never a half-updated
// record.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"jarvismcp/internal/config"
	"jarvismcp/internal/domain"
)

const servicesPath = "/api/v0/services"

type discoveryResponse struct {
	Services []discoveredService `json:"services"`
}

type discoveredService struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RefreshObserver is notified after every refresh attempt. Implemented by
// the telemetry metrics; nil is allowed.
type RefreshObserver interface {
	ObserveDiscoveryRefresh(ok bool)
}

type Resolver struct {
	cfg      *config.Config
	logger   *zap.Logger
	client   *http.Client
	observer RefreshObserver

	table atomic.Pointer[domain.Table]
	state atomic.Pointer[domain.DiscoveryState]
}

func NewResolver(cfg *config.Config, logger *zap.Logger, observer RefreshObserver) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Resolver{
		cfg:      cfg,
		logger:   logger.Named("discovery"),
		client:   &http.Client{Timeout: cfg.DiscoveryTimeout},
		observer: observer,
	}

	table := r.fallbackTable(time.Now())
	r.table.Store(&table)
	r.state.Store(&domain.DiscoveryState{Mode: domain.DiscoveryModeFallback})
	return r
}

// Endpoint returns the current endpoint for a backend. Known services are
// always resolved; ok is false only for unknown names.
func (r *Resolver) Endpoint(service string) (domain.Endpoint, bool) {
	table := *r.table.Load()
	ep, ok := table[service]
	return ep, ok
}

// State returns the last published discovery state.
func (r *Resolver) State() domain.DiscoveryState {
	return *r.state.Load()
}

// Refresh runs one resolution cycle. A failed discovery query leaves the
// previous table untouched and records the error; it never propagates.
func (r *Resolver) Refresh(ctx context.Context) {
	if r.cfg.DiscoveryURL == "" {
		return
	}

	now := time.Now()
	discovered, err := r.fetch(ctx)
	if err != nil {
		failure := domain.E(domain.CodeDiscoveryFailed, "discovery.refresh", "", err)
		r.logger.Warn("discovery refresh failed, keeping previous endpoints", zap.Error(failure))
		prev := *r.state.Load()
		r.state.Store(&domain.DiscoveryState{
			Mode:        domain.DiscoveryModeFallback,
			LastSuccess: prev.LastSuccess,
			LastAttempt: now,
			LastError:   failure.Error(),
		})
		if r.observer != nil {
			r.observer.ObserveDiscoveryRefresh(false)
		}
		return
	}

	table := make(domain.Table, len(domain.KnownServices()))
	for _, service := range domain.KnownServices() {
		if raw, ok := discovered[service]; ok {
			table[service] = domain.Endpoint{
				Service:   service,
				BaseURL:   r.rewriteHost(service, raw),
				Source:    domain.SourceDiscovered,
				Refreshed: now,
			}
			continue
		}
		table[service] = r.fallbackEndpoint(service, now)
	}

	r.table.Store(&table)
	r.state.Store(&domain.DiscoveryState{
		Mode:        domain.DiscoveryModeDiscovered,
		LastSuccess: now,
		LastAttempt: now,
	})
	if r.observer != nil {
		r.observer.ObserveDiscoveryRefresh(true)
	}
	r.logger.Info("discovery refresh complete", zap.Int("services", len(discovered)))
}

// Run performs the initial resolution and then refreshes on a fixed
// schedule until ctx is cancelled. Without a discovery URL the resolver
// stays in fallback mode and no schedule is started.
func (r *Resolver) Run(ctx context.Context) error {
	if r.cfg.DiscoveryURL == "" {
		r.logger.Warn("no discovery URL configured, using override/default service URLs")
		return nil
	}

	r.Refresh(ctx)

	schedule := cron.New()
	_, err := schedule.AddFunc(fmt.Sprintf("@every %s", r.cfg.DiscoveryRefresh), func() {
		r.Refresh(context.Background())
	})
	if err != nil {
		return domain.E(domain.CodeConfiguration, "discovery.run", "invalid refresh schedule", err)
	}
	schedule.Start()

	<-ctx.Done()
	<-schedule.Stop().Done()
	return nil
}

func (r *Resolver) fetch(ctx context.Context) (map[string]string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, r.cfg.DiscoveryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, r.cfg.DiscoveryURL+servicesPath, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery service returned %d", resp.StatusCode)
	}

	var payload discoveryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode discovery response: %w", err)
	}

	discovered := make(map[string]string, len(payload.Services))
	for _, svc := range payload.Services {
		if svc.Name == "" || svc.URL == "" {
			continue
		}
		discovered[svc.Name] = svc.URL
	}
	return discovered, nil
}

// rewriteHost adapts discovered container hostnames for host-network
// deployments: a URL whose hostname equals the service name is pointed at
// localhost instead.
func (r *Resolver) rewriteHost(service, raw string) string {
	if r.cfg.DiscoveryNetwork != config.NetworkHost {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() != service {
		return raw
	}
	if port := u.Port(); port != "" {
		u.Host = "localhost:" + port
	} else {
		u.Host = "localhost"
	}
	return u.String()
}

func (r *Resolver) fallbackTable(now time.Time) domain.Table {
	table := make(domain.Table, len(domain.KnownServices()))
	for _, service := range domain.KnownServices() {
		table[service] = r.fallbackEndpoint(service, now)
	}
	return table
}

func (r *Resolver) fallbackEndpoint(service string, now time.Time) domain.Endpoint {
	if override, ok := r.cfg.ServiceOverrides[service]; ok {
		return domain.Endpoint{Service: service, BaseURL: override, Source: domain.SourceExplicit, Refreshed: now}
	}
	return domain.Endpoint{Service: service, BaseURL: domain.DefaultServiceURLs[service], Source: domain.SourceDefault, Refreshed: now}
}
