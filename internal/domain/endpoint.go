package domain

import "time"

// Source records how a backend URL was resolved.
type Source string

const (
	SourceExplicit   Source = "explicit"
	SourceDiscovered Source = "discovered"
	SourceDefault    Source = "default"
)

// Endpoint is the resolved network location of one backend service.
// Endpoints are immutable; the resolver swaps whole tables, never fields.
type Endpoint struct {
	Service   string
	BaseURL   string
	Source    Source
	Refreshed time.Time
}

// Table maps service name to its current endpoint. A table is built once
// per refresh cycle and must not be mutated after publication.
type Table map[string]Endpoint

// DiscoveryMode reports whether service URLs currently come from the
// discovery service or from override/default fallback.
type DiscoveryMode string

const (
	DiscoveryModeDiscovered DiscoveryMode = "discovered"
	DiscoveryModeFallback   DiscoveryMode = "fallback"
)

// DiscoveryState is the health-surface view of the resolver. Like Table it
// is published by atomic swap and read-only afterwards.
type DiscoveryState struct {
	Mode        DiscoveryMode
	LastSuccess time.Time
	LastAttempt time.Time
	LastError   string
}

// EndpointReader is the read side of the resolver. Service clients look up
// the current endpoint on every call so a refresh is observed without
// restart.
type EndpointReader interface {
	Endpoint(service string) (Endpoint, bool)
	State() DiscoveryState
}
