// Package dockerctl manages the jarvis Docker containers and compose
// stacks. All operations are scoped to jarvis-related containers; partial
// name matches that remain ambiguous are refused rather than guessed.
package dockerctl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"go.uber.org/zap"

	"jarvismcp/internal/domain"
)

const (
	composeProjectLabel = "com.docker.compose.project"
	stopTimeoutSeconds  = 30

	DefaultLogLines = 100
	MaxLogLines     = 1000
)

// Infrastructure containers that belong to the fleet despite not carrying
// the jarvis name.
var knownInfraNames = map[string]struct{}{
	"loki":      {},
	"grafana":   {},
	"mosquitto": {},
	"minio":     {},
	"postgres":  {},
	"redis":     {},
}

// API is the slice of the Docker Engine client the service needs.
// *client.Client satisfies it; tests provide fakes.
type API interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRestart(ctx context.Context, containerID string, options container.StopOptions) error
}

type Service struct {
	api    API
	root   string
	logger *zap.Logger
}

// NewService connects to the local Docker daemon using the standard
// environment configuration.
func NewService(root string, logger *zap.Logger) (*Service, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, domain.E(domain.CodeBackendUnavailable, "dockerctl.new", "connect to docker daemon", err)
	}
	return NewServiceWithAPI(cli, root, logger), nil
}

func NewServiceWithAPI(api API, root string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, root: root, logger: logger.Named("dockerctl")}
}

type ContainerInfo struct {
	Name   string
	State  string
	Status string
	Image  string
	Ports  string
}

func containerName(summary container.Summary) string {
	if len(summary.Names) == 0 {
		return ""
	}
	return strings.TrimPrefix(summary.Names[0], "/")
}

// isJarvisContainer scopes operations to the fleet: the container name or
// compose project contains "jarvis", or the base name is known infra.
func isJarvisContainer(summary container.Summary) bool {
	name := strings.ToLower(containerName(summary))
	if strings.Contains(name, "jarvis") {
		return true
	}
	if project, ok := summary.Labels[composeProjectLabel]; ok && strings.Contains(strings.ToLower(project), "jarvis") {
		return true
	}
	base := name
	if idx := strings.LastIndex(name, "-"); idx >= 0 {
		base = name[idx+1:]
	}
	_, infra := knownInfraNames[base]
	return infra
}

func (s *Service) jarvisContainers(ctx context.Context, all bool) ([]container.Summary, error) {
	summaries, err := s.api.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return nil, domain.E(domain.CodeBackendUnavailable, "dockerctl.list", "docker daemon unreachable", err)
	}
	var scoped []container.Summary
	for _, summary := range summaries {
		if isJarvisContainer(summary) {
			scoped = append(scoped, summary)
		}
	}
	return scoped, nil
}

// find resolves a (possibly partial) container name to exactly one jarvis
// container. Exact matches win; an ambiguous substring match fails with
// the candidate list.
func (s *Service) find(ctx context.Context, name string) (container.Summary, error) {
	scoped, err := s.jarvisContainers(ctx, true)
	if err != nil {
		return container.Summary{}, err
	}

	search := strings.ToLower(name)
	var matches []container.Summary
	for _, summary := range scoped {
		candidate := strings.ToLower(containerName(summary))
		if candidate == search {
			return summary, nil
		}
		if strings.Contains(candidate, search) {
			matches = append(matches, summary)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		available := sortedNames(scoped)
		return container.Summary{}, domain.Errorf(domain.CodeInvalidArguments, "dockerctl.find",
			"no jarvis container matching %q (available: %s)", name, joinOrNone(available))
	default:
		candidates := sortedNames(matches)
		return container.Summary{}, &domain.Error{
			Code:       domain.CodeAmbiguousTarget,
			Op:         "dockerctl.find",
			Message:    fmt.Sprintf("ambiguous match for %q: %s; be more specific", name, strings.Join(candidates, ", ")),
			Candidates: candidates,
		}
	}
}

// List returns jarvis containers, running only unless all is set.
func (s *Service) List(ctx context.Context, all bool) ([]ContainerInfo, error) {
	scoped, err := s.jarvisContainers(ctx, all)
	if err != nil {
		return nil, err
	}

	sort.Slice(scoped, func(i, j int) bool {
		return containerName(scoped[i]) < containerName(scoped[j])
	})

	infos := make([]ContainerInfo, 0, len(scoped))
	for _, summary := range scoped {
		infos = append(infos, ContainerInfo{
			Name:   containerName(summary),
			State:  summary.State,
			Status: summary.Status,
			Image:  summary.Image,
			Ports:  formatPorts(summary.Ports),
		})
	}
	return infos, nil
}

// Logs returns recent log lines from one container, demultiplexing the
// engine's stream format when present.
func (s *Service) Logs(ctx context.Context, name string, lines int, since string) (string, error) {
	target, err := s.find(ctx, name)
	if err != nil {
		return "", err
	}

	if lines <= 0 {
		lines = DefaultLogLines
	}
	if lines > MaxLogLines {
		lines = MaxLogLines
	}

	reader, err := s.api.ContainerLogs(ctx, target.ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Timestamps: true,
		Tail:       strconv.Itoa(lines),
		Since:      since,
	})
	if err != nil {
		return "", domain.E(domain.CodeBackendError, "dockerctl.logs", "read container logs", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", domain.E(domain.CodeBackendError, "dockerctl.logs", "read container logs", err)
	}

	var out bytes.Buffer
	if _, err := stdcopy.StdCopy(&out, &out, bytes.NewReader(raw)); err != nil {
		// TTY containers emit a raw stream rather than the multiplexed one.
		return string(raw), nil
	}
	return out.String(), nil
}

// Restart restarts a container by (partial) name.
func (s *Service) Restart(ctx context.Context, name string) (string, error) {
	target, err := s.find(ctx, name)
	if err != nil {
		return "", err
	}
	timeout := stopTimeoutSeconds
	if err := s.api.ContainerRestart(ctx, target.ID, container.StopOptions{Timeout: &timeout}); err != nil {
		return "", domain.E(domain.CodeBackendError, "dockerctl.restart", "", err)
	}
	return fmt.Sprintf("Container '%s' restarted successfully.", containerName(target)), nil
}

// Stop stops a running container; stopping a stopped container is a no-op
// reported as such.
func (s *Service) Stop(ctx context.Context, name string) (string, error) {
	target, err := s.find(ctx, name)
	if err != nil {
		return "", err
	}
	if target.State != "running" {
		return fmt.Sprintf("Container '%s' is already %s.", containerName(target), target.State), nil
	}
	timeout := stopTimeoutSeconds
	if err := s.api.ContainerStop(ctx, target.ID, container.StopOptions{Timeout: &timeout}); err != nil {
		return "", domain.E(domain.CodeBackendError, "dockerctl.stop", "", err)
	}
	return fmt.Sprintf("Container '%s' stopped successfully.", containerName(target)), nil
}

// Start starts a stopped container.
func (s *Service) Start(ctx context.Context, name string) (string, error) {
	target, err := s.find(ctx, name)
	if err != nil {
		return "", err
	}
	if target.State == "running" {
		return fmt.Sprintf("Container '%s' is already running.", containerName(target)), nil
	}
	if err := s.api.ContainerStart(ctx, target.ID, container.StartOptions{}); err != nil {
		return "", domain.E(domain.CodeBackendError, "dockerctl.start", "", err)
	}
	return fmt.Sprintf("Container '%s' started successfully.", containerName(target)), nil
}

func formatPorts(ports []container.Port) string {
	if len(ports) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ports))
	for _, port := range ports {
		if port.PublicPort != 0 {
			parts = append(parts, fmt.Sprintf("%d->%d/%s", port.PublicPort, port.PrivatePort, port.Type))
		} else {
			parts = append(parts, fmt.Sprintf("%d/%s", port.PrivatePort, port.Type))
		}
	}
	return strings.Join(parts, ", ")
}

func sortedNames(summaries []container.Summary) []string {
	names := make([]string, 0, len(summaries))
	for _, summary := range summaries {
		names = append(names, containerName(summary))
	}
	sort.Strings(names)
	return names
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
