package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvismcp/internal/domain"
)

// staticEndpoints is a fixed endpoint table for tests.
type staticEndpoints map[string]string

func (s staticEndpoints) Endpoint(service string) (domain.Endpoint, bool) {
	base, ok := s[service]
	return domain.Endpoint{Service: service, BaseURL: base, Source: domain.SourceExplicit}, ok
}

func (s staticEndpoints) State() domain.DiscoveryState {
	return domain.DiscoveryState{Mode: domain.DiscoveryModeFallback}
}

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/logs", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "mcp", r.Header.Get("X-Jarvis-App-Id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":7}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientOptions{
		Endpoints: staticEndpoints{domain.ServiceLogs: server.URL},
		Headers:   map[string]string{"X-Jarvis-App-Id": "mcp"},
	})

	var out struct {
		Value int `json:"value"`
	}
	params := url.Values{}
	params.Set("limit", "50")
	err := client.GetJSON(context.Background(), domain.ServiceLogs, "/api/v0/logs", params, &out)
	require.NoError(t, err)
	assert.Equal(t, 7, out.Value)
}

func TestClient_PostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientOptions{Endpoints: staticEndpoints{domain.ServiceCommandCenter: server.URL}})

	var out map[string]any
	err := client.PostJSON(context.Background(), domain.ServiceCommandCenter, "/api/v0/test", map[string]string{"a": "b"}, &out)
	require.NoError(t, err)
	assert.Equal(t, true, out["ok"])
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(ClientOptions{Endpoints: staticEndpoints{domain.ServiceLogs: server.URL}})

	err := client.GetJSON(context.Background(), domain.ServiceLogs, "/health", nil, nil)
	require.Error(t, err)
	assert.Equal(t, domain.CodeBackendUnavailable, domain.CodeFrom(err))
	assert.Contains(t, err.Error(), "unreachable")
}

func TestClient_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database on fire", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientOptions{Endpoints: staticEndpoints{domain.ServiceLogs: server.URL}})

	err := client.GetJSON(context.Background(), domain.ServiceLogs, "/health", nil, nil)
	require.Error(t, err)
	assert.Equal(t, domain.CodeBackendError, domain.CodeFrom(err))
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "database on fire")
}

func TestClient_ProtocolError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientOptions{Endpoints: staticEndpoints{domain.ServiceLogs: server.URL}})

	var out map[string]any
	err := client.GetJSON(context.Background(), domain.ServiceLogs, "/health", nil, &out)
	require.Error(t, err)
	assert.Equal(t, domain.CodeBackendProtocolError, domain.CodeFrom(err))
}

func TestClient_UnknownService(t *testing.T) {
	client := NewClient(ClientOptions{Endpoints: staticEndpoints{}})

	err := client.GetJSON(context.Background(), "jarvis-nonexistent", "/health", nil, nil)
	require.Error(t, err)
	assert.Equal(t, domain.CodeBackendError, domain.CodeFrom(err))
}

func TestClient_ContextTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(slow.Close)

	client := NewClient(ClientOptions{Endpoints: staticEndpoints{domain.ServiceLogs: slow.URL}})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := client.GetJSON(ctx, domain.ServiceLogs, "/health", nil, nil)
	require.Error(t, err)
	assert.Equal(t, domain.CodeBackendUnavailable, domain.CodeFrom(err))
}
