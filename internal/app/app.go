// Package app assembles the adapter: configuration, discovery, backend
// clients, the tool registry and dispatcher, and the HTTP surface that
// serves MCP, health, and metrics on one listener.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"jarvismcp/internal/backend"
	"jarvismcp/internal/config"
	"jarvismcp/internal/discovery"
	"jarvismcp/internal/dispatch"
	"jarvismcp/internal/dockerctl"
	"jarvismcp/internal/pgread"
	"jarvismcp/internal/registry"
	"jarvismcp/internal/telemetry"
	"jarvismcp/internal/tools"
)

const (
	serverName      = "jarvis-mcp"
	serverVersion   = "1.0.0"
	shutdownTimeout = 5 * time.Second
)

type App struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{logger: logger}
}

type ServeConfig struct {
	ConfigPath string
}

// Serve runs the adapter until ctx is cancelled.
func (a *App) Serve(ctx context.Context, serveCfg ServeConfig) error {
	cfg, err := config.Load(serveCfg.ConfigPath)
	if err != nil {
		return err
	}

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)
	resolver := discovery.NewResolver(cfg, a.logger, metrics)

	reg, err := a.buildRegistry(cfg, resolver, metrics)
	if err != nil {
		return err
	}

	dispatcher := dispatch.New(reg, a.logger, metrics)
	server := buildMCPServer(reg, dispatcher)

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true}))
	mux.Handle("/health", telemetry.HealthHandler(func() telemetry.HealthReport {
		return telemetry.HealthReport{
			Status:            "ok",
			EnabledToolGroups: reg.Groups(),
			Discovery:         telemetry.NewDiscoveryReport(resolver.State()),
		}
	}))
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := resolver.Run(ctx); err != nil {
			a.logger.Error("discovery loop exited", zap.Error(err))
		}
	}()

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: mux,
	}

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("jarvis-mcp listening",
			zap.String("addr", httpServer.Addr),
			zap.Strings("tool_groups", reg.Groups()),
			zap.Int("tools", reg.Len()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("mcp server failed to start: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("mcp server shutdown error", zap.Error(err))
			return err
		}
		a.logger.Info("mcp server stopped")
		return nil
	}
}

// ValidateConfig loads configuration and assembles the registry without
// serving, so a broken deployment fails in CI rather than at start.
func (a *App) ValidateConfig(_ context.Context, serveCfg ServeConfig) error {
	cfg, err := config.Load(serveCfg.ConfigPath)
	if err != nil {
		return err
	}

	metrics := telemetry.NewMetrics(nil)
	resolver := discovery.NewResolver(cfg, a.logger, metrics)
	reg, err := a.buildRegistry(cfg, resolver, metrics)
	if err != nil {
		return err
	}

	a.logger.Info("configuration valid",
		zap.String("addr", cfg.Addr()),
		zap.Strings("tool_groups", reg.Groups()),
		zap.Int("tools", reg.Len()))
	return nil
}

// buildRegistry constructs every tool group and enables the configured
// subset.
func (a *App) buildRegistry(cfg *config.Config, resolver *discovery.Resolver, metrics *telemetry.Metrics) (*registry.Registry, error) {
	client := backend.NewClient(backend.ClientOptions{
		Endpoints: resolver,
		HTTP:      &http.Client{Timeout: cfg.BackendTimeout},
		Headers:   cfg.AuthHeaders(),
		Metrics:   metrics,
		Logger:    a.logger,
	})

	checker := backend.NewHealthChecker(resolver, nil)
	store := pgread.NewStore(cfg.Postgres, a.logger)
	hasAuth := cfg.AppID != "" && cfg.AppKey != ""

	groups := []registry.Group{
		tools.Logs(backend.NewLogsClient(client)),
		tools.Debug(checker),
		tools.Health(checker),
		tools.Database(store),
		tools.Command(backend.NewCommandClient(client, hasAuth)),
		tools.Conversion(),
	}

	dockerGroup, err := a.buildDockerGroup(cfg)
	if err != nil {
		if groupEnabled(cfg.EnabledGroups, "docker") {
			return nil, err
		}
		a.logger.Warn("docker tools unavailable", zap.Error(err))
	} else {
		groups = append(groups, dockerGroup)
	}

	return registry.New(groups, cfg.EnabledGroups)
}

func groupEnabled(enabled []string, name string) bool {
	for _, g := range enabled {
		if g == name {
			return true
		}
	}
	return false
}

func (a *App) buildDockerGroup(cfg *config.Config) (registry.Group, error) {
	svc, err := dockerctl.NewService(cfg.Root, a.logger)
	if err != nil {
		return registry.Group{}, err
	}
	return tools.Docker(svc), nil
}

func buildMCPServer(reg *registry.Registry, dispatcher *dispatch.Dispatcher) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	for _, desc := range reg.List() {
		tool := &mcp.Tool{
			Name:        desc.Name,
			Description: desc.Description,
			InputSchema: desc.InputSchema,
		}
		server.AddTool(tool, dispatcher.ToolHandler(desc.Name))
	}
	return server
}
