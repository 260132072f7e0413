package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"jarvismcp/internal/domain"
)

const (
	DefaultProbeTimeout = 5 * time.Second
	maxHealthBodyChars  = 500
)

// HealthChecker probes the per-service health endpoints. It keeps its own
// short-timeout HTTP client so a wedged backend cannot hold a tool call for
// the full backend timeout.
type HealthChecker struct {
	endpoints domain.EndpointReader
	http      *http.Client
}

func NewHealthChecker(endpoints domain.EndpointReader, httpClient *http.Client) *HealthChecker {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultProbeTimeout}
	}
	return &HealthChecker{endpoints: endpoints, http: httpClient}
}

type ProbeResult struct {
	Service string
	Known   bool
	Healthy bool
	Status  int
	Latency time.Duration
	Detail  string
}

// Probe checks one service and never returns an error: unreachable
// backends are reported in the result, not propagated.
func (h *HealthChecker) Probe(ctx context.Context, service string) ProbeResult {
	result := ProbeResult{Service: service}

	path, known := domain.HealthPaths[service]
	if !known {
		result.Detail = "unknown service"
		return result
	}
	result.Known = true

	ep, ok := h.endpoints.Endpoint(service)
	if !ok {
		result.Detail = "not configured"
		return result
	}

	start := time.Now()
	resp, err := h.get(ctx, ep.BaseURL+path)
	result.Latency = time.Since(start)
	if err != nil {
		result.Detail = classifyProbeError(err)
		return result
	}
	defer resp.Body.Close()

	result.Status = resp.StatusCode
	if resp.StatusCode == http.StatusOK {
		result.Healthy = true
		result.Detail = "OK"
	} else {
		result.Detail = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return result
}

// ProbeAll checks the given services, or every known service when the list
// is empty, preserving order.
func (h *HealthChecker) ProbeAll(ctx context.Context, services []string) []ProbeResult {
	if len(services) == 0 {
		for _, service := range domain.KnownServices() {
			if _, probeable := domain.HealthPaths[service]; probeable {
				services = append(services, service)
			}
		}
	}
	results := make([]ProbeResult, 0, len(services))
	for _, service := range services {
		results = append(results, h.Probe(ctx, service))
	}
	return results
}

type ServiceDetail struct {
	Service string
	URL     string
	Status  int
	Latency time.Duration
	Body    string
	Err     string
}

// Detail fetches one service's health endpoint including its response body
// for the detailed single-service view.
func (h *HealthChecker) Detail(ctx context.Context, service string) (ServiceDetail, error) {
	path, known := domain.HealthPaths[service]
	if !known {
		return ServiceDetail{}, domain.Errorf(domain.CodeInvalidArguments, "health.detail",
			"unknown service: %s (available: %s)", service, strings.Join(probeableServices(), ", "))
	}
	ep, ok := h.endpoints.Endpoint(service)
	if !ok {
		return ServiceDetail{}, domain.Errorf(domain.CodeBackendError, "health.detail", "no endpoint for %s", service)
	}

	detail := ServiceDetail{Service: service, URL: ep.BaseURL + path}

	start := time.Now()
	resp, err := h.get(ctx, detail.URL)
	detail.Latency = time.Since(start)
	if err != nil {
		detail.Err = classifyProbeError(err)
		return detail, nil
	}
	defer resp.Body.Close()

	detail.Status = resp.StatusCode
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxHealthBodyChars))
	if err == nil {
		detail.Body = strings.TrimSpace(string(raw))
	}
	return detail, nil
}

func (h *HealthChecker) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	return h.http.Do(req)
}

func classifyProbeError(err error) string {
	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout(), errors.Is(err, context.DeadlineExceeded):
		return "Timeout"
	case errors.Is(err, os.ErrDeadlineExceeded):
		return "Timeout"
	default:
		return "Connection refused"
	}
}

func probeableServices() []string {
	var names []string
	for _, service := range domain.KnownServices() {
		if _, ok := domain.HealthPaths[service]; ok {
			names = append(names, service)
		}
	}
	return names
}
