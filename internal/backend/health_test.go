package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvismcp/internal/domain"
)

func TestProbe_Healthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(server.Close)

	checker := NewHealthChecker(staticEndpoints{domain.ServiceAuth: server.URL}, nil)

	result := checker.Probe(context.Background(), domain.ServiceAuth)
	assert.True(t, result.Known)
	assert.True(t, result.Healthy)
	assert.Equal(t, http.StatusOK, result.Status)
	assert.Equal(t, "OK", result.Detail)
}

func TestProbe_Degraded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	checker := NewHealthChecker(staticEndpoints{domain.ServiceLogs: server.URL}, nil)

	result := checker.Probe(context.Background(), domain.ServiceLogs)
	assert.True(t, result.Known)
	assert.False(t, result.Healthy)
	assert.Equal(t, http.StatusServiceUnavailable, result.Status)
	assert.Equal(t, "HTTP 503", result.Detail)
}

func TestProbe_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	checker := NewHealthChecker(staticEndpoints{domain.ServiceLogs: server.URL}, nil)

	result := checker.Probe(context.Background(), domain.ServiceLogs)
	assert.False(t, result.Healthy)
	assert.Equal(t, "Connection refused", result.Detail)
}

func TestProbe_Timeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(slow.Close)

	checker := NewHealthChecker(staticEndpoints{domain.ServiceLogs: slow.URL},
		&http.Client{Timeout: 20 * time.Millisecond})

	result := checker.Probe(context.Background(), domain.ServiceLogs)
	assert.False(t, result.Healthy)
	assert.Equal(t, "Timeout", result.Detail)
}

func TestProbe_UnknownService(t *testing.T) {
	checker := NewHealthChecker(staticEndpoints{}, nil)

	result := checker.Probe(context.Background(), "jarvis-mystery")
	assert.False(t, result.Known)
	assert.Equal(t, "unknown service", result.Detail)
}

func TestProbeAll_DefaultsToKnownServices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(server.Close)

	endpoints := staticEndpoints{}
	for _, service := range domain.KnownServices() {
		endpoints[service] = server.URL
	}
	checker := NewHealthChecker(endpoints, nil)

	var probeable []string
	for _, service := range domain.KnownServices() {
		if _, ok := domain.HealthPaths[service]; ok {
			probeable = append(probeable, service)
		}
	}

	results := checker.ProbeAll(context.Background(), nil)
	require.Len(t, results, len(probeable))
	for i, result := range results {
		assert.Equal(t, probeable[i], result.Service)
		assert.True(t, result.Healthy, result.Service)
	}
}

func TestDetail_IncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy","llm":"up"}`))
	}))
	t.Cleanup(server.Close)

	checker := NewHealthChecker(staticEndpoints{domain.ServiceCommandCenter: server.URL}, nil)

	detail, err := checker.Detail(context.Background(), domain.ServiceCommandCenter)
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/api/v0/health", detail.URL)
	assert.Equal(t, http.StatusOK, detail.Status)
	assert.Equal(t, `{"status":"healthy","llm":"up"}`, detail.Body)
	assert.Empty(t, detail.Err)
}

func TestDetail_UnknownService(t *testing.T) {
	checker := NewHealthChecker(staticEndpoints{}, nil)

	_, err := checker.Detail(context.Background(), "jarvis-mystery")
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidArguments, domain.CodeFrom(err))
	assert.Contains(t, err.Error(), "available:")
}

func TestDetail_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	checker := NewHealthChecker(staticEndpoints{domain.ServiceAuth: server.URL}, nil)

	detail, err := checker.Detail(context.Background(), domain.ServiceAuth)
	require.NoError(t, err)
	assert.Equal(t, "Connection refused", detail.Err)
}
