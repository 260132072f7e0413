package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jarvismcp/internal/domain"
)

const (
	logsPath         = "/api/v0/logs"
	logsServicesPath = "/api/v0/services"

	DefaultQueryLimit   = 50
	MaxQueryLimit       = 200
	DefaultTailLines    = 30
	MaxTailLines        = 100
	DefaultErrorsWindow = 30 * time.Minute
)

type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service"`
	Message   string `json:"message"`
	Context   string `json:"context,omitempty"`
}

// LogsClient talks to the jarvis-logs store.
type LogsClient struct {
	client *Client
	// now is replaceable in tests.
	now func() time.Time
}

func NewLogsClient(client *Client) *LogsClient {
	return &LogsClient{client: client, now: time.Now}
}

type LogQuery struct {
	Service string
	Level   string
	Search  string
	Since   time.Duration
	Limit   int
}

// Query returns recent log entries matching the filter.
func (l *LogsClient) Query(ctx context.Context, q LogQuery) ([]LogEntry, error) {
	params := url.Values{}
	if q.Service != "" {
		params.Set("service", q.Service)
	}
	if q.Level != "" {
		params.Set("level", q.Level)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Since > 0 {
		since := l.now().UTC().Add(-q.Since)
		params.Set("since", since.Format(time.RFC3339))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	if limit > MaxQueryLimit {
		limit = MaxQueryLimit
	}
	params.Set("limit", strconv.Itoa(limit))

	var entries []LogEntry
	if err := l.client.GetJSON(ctx, domain.ServiceLogs, logsPath, params, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Tail returns the most recent lines from one service.
func (l *LogsClient) Tail(ctx context.Context, service string, lines int) ([]LogEntry, error) {
	if lines <= 0 {
		lines = DefaultTailLines
	}
	if lines > MaxTailLines {
		lines = MaxTailLines
	}
	params := url.Values{}
	params.Set("service", service)
	params.Set("limit", strconv.Itoa(lines))

	var entries []LogEntry
	if err := l.client.GetJSON(ctx, domain.ServiceLogs, logsPath, params, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Errors returns ERROR-level entries across services within the window.
func (l *LogsClient) Errors(ctx context.Context, service string, window time.Duration) ([]LogEntry, error) {
	if window <= 0 {
		window = DefaultErrorsWindow
	}
	params := url.Values{}
	params.Set("level", "ERROR")
	params.Set("since", l.now().UTC().Add(-window).Format(time.RFC3339))
	params.Set("limit", "100")
	if service != "" {
		params.Set("service", service)
	}

	var entries []LogEntry
	if err := l.client.GetJSON(ctx, domain.ServiceLogs, logsPath, params, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Services lists every service that has shipped logs.
func (l *LogsClient) Services(ctx context.Context) ([]string, error) {
	var services []string
	if err := l.client.GetJSON(ctx, domain.ServiceLogs, logsServicesPath, nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// FormatEntries renders log entries one per line in the fleet's standard
// shape: [ts] [LEVEL] [service] message | context.
func FormatEntries(entries []LogEntry) string {
	if len(entries) == 0 {
		return "No logs found."
	}
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		ts := entry.Timestamp
		if len(ts) > 19 {
			ts = ts[:19]
		}
		line := fmt.Sprintf("[%s] [%s] [%s] %s", ts, orUnknown(entry.Level), orUnknown(entry.Service), entry.Message)
		if entry.Context != "" {
			line += " | " + entry.Context
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
