// Package dispatch routes protocol-level tool calls to registered handlers:
// lookup, argument validation, bounded execution, and failure isolation.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"jarvismcp/internal/domain"
	"jarvismcp/internal/registry"
	"jarvismcp/internal/telemetry"
)

const DefaultCallTimeout = 60 * time.Second

type Dispatcher struct {
	registry    *registry.Registry
	logger      *zap.Logger
	metrics     *telemetry.Metrics
	callTimeout time.Duration
}

func New(reg *registry.Registry, logger *zap.Logger, metrics *telemetry.Metrics) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		registry:    reg,
		logger:      logger.Named("dispatch"),
		metrics:     metrics,
		callTimeout: DefaultCallTimeout,
	}
}

// Call executes one tool call. Every outcome, including handler panics, is
// returned as a CallToolResult; the serving loop never sees an error.
func (d *Dispatcher) Call(ctx context.Context, name string, rawArgs json.RawMessage) *mcp.CallToolResult {
	callID := uuid.NewString()
	start := time.Now()
	logger := d.logger.With(zap.String("tool", name), zap.String("call_id", callID))

	result := d.call(ctx, logger, name, rawArgs)

	status := "success"
	if result.IsError {
		if structured, ok := result.StructuredContent.(failurePayload); ok {
			status = string(structured.Code)
		} else {
			status = string(domain.CodeBackendError)
		}
	}
	d.metrics.ObserveToolCall(name, status, time.Since(start))
	logger.Info("tool call finished",
		zap.String("status", status),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result
}

func (d *Dispatcher) call(ctx context.Context, logger *zap.Logger, name string, rawArgs json.RawMessage) *mcp.CallToolResult {
	entry, ok := d.registry.Lookup(name)
	if !ok {
		return failure(name, domain.Errorf(domain.CodeToolNotFound, "", "unknown tool: %s", name))
	}

	args := map[string]any{}
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &args); err != nil {
			return failure(name, domain.E(domain.CodeInvalidArguments, "", "arguments must be a JSON object", err))
		}
	}

	// Schema validation rejects missing required fields and wrong types;
	// unknown extra fields pass through for forward compatibility.
	if err := entry.Resolved.Validate(args); err != nil {
		return failure(name, domain.E(domain.CodeInvalidArguments, "", "", err))
	}

	timeout := entry.Timeout
	if timeout <= 0 {
		timeout = d.callTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := d.invoke(callCtx, logger, entry, args)
	if err != nil {
		return failure(name, err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// invoke runs the handler and converts panics into internal failures so a
// broken tool cannot take down the adapter.
func (d *Dispatcher) invoke(ctx context.Context, logger *zap.Logger, entry *registry.Entry, args map[string]any) (text string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("tool handler panicked",
				zap.Any("panic", recovered),
				zap.Stack("stack"),
			)
			err = domain.Errorf(domain.CodeBackendError, "dispatch.invoke", "internal failure in tool %s", entry.Name)
		}
	}()
	return entry.Handler(ctx, args)
}

type failurePayload struct {
	Code       domain.ErrorCode `json:"code"`
	Tool       string           `json:"tool"`
	Message    string           `json:"message"`
	Candidates []string         `json:"candidates,omitempty"`
}

func failure(tool string, err error) *mcp.CallToolResult {
	payload := failurePayload{
		Code:    domain.CodeFrom(err),
		Tool:    tool,
		Message: err.Error(),
	}
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		payload.Candidates = domainErr.Candidates
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: payload.Message},
		},
		StructuredContent: payload,
	}
}

// ToolHandler adapts the dispatcher to the MCP server callback for one
// tool. The returned handler never yields a protocol-level error.
func (d *Dispatcher) ToolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return d.Call(ctx, name, json.RawMessage(req.Params.Arguments)), nil
	}
}
