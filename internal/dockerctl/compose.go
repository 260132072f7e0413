package dockerctl

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"jarvismcp/internal/domain"
)

const composeTimeout = 120 * time.Second

var composeFilenames = []string{
	"docker-compose.yaml",
	"docker-compose.yml",
	"compose.yaml",
	"compose.yml",
}

// ComposeProject is a jarvis service directory that carries a compose file.
type ComposeProject struct {
	Name string
	Dir  string
	File string
}

// ComposeProjects scans the jarvis root for jarvis-*/ directories that
// contain a compose file.
func (s *Service) ComposeProjects() ([]ComposeProject, error) {
	if s.root == "" {
		return nil, domain.Errorf(domain.CodeConfiguration, "dockerctl.compose", "jarvis root directory is not configured")
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, domain.E(domain.CodeConfiguration, "dockerctl.compose", fmt.Sprintf("read jarvis root %s", s.root), err)
	}

	var projects []ComposeProject
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "jarvis-") {
			continue
		}
		dir := filepath.Join(s.root, entry.Name())
		for _, filename := range composeFilenames {
			if _, err := os.Stat(filepath.Join(dir, filename)); err == nil {
				projects = append(projects, ComposeProject{Name: entry.Name(), Dir: dir, File: filename})
				break
			}
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

// resolveProject accepts either the full directory name ("jarvis-auth") or
// the short service name ("auth").
func (s *Service) resolveProject(service string) (ComposeProject, error) {
	projects, err := s.ComposeProjects()
	if err != nil {
		return ComposeProject{}, err
	}
	for _, project := range projects {
		if project.Name == service || project.Name == "jarvis-"+service {
			return project, nil
		}
	}
	names := make([]string, 0, len(projects))
	for _, project := range projects {
		names = append(names, project.Name)
	}
	return ComposeProject{}, domain.Errorf(domain.CodeInvalidArguments, "dockerctl.compose",
		"no compose project for %q (available: %s)", service, joinOrNone(names))
}

func (s *Service) runCompose(ctx context.Context, project ComposeProject, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, composeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "docker", append([]string{"compose"}, args...)...)
	cmd.Dir = project.Dir
	out, err := cmd.CombinedOutput()
	s.logger.Debug("compose command finished",
		zap.String("project", project.Name),
		zap.Strings("args", args),
		zap.Error(err))

	if ctx.Err() == context.DeadlineExceeded {
		return "", domain.Errorf(domain.CodeBackendError, "dockerctl.compose",
			"docker compose %s timed out after %s in %s", strings.Join(args, " "), composeTimeout, project.Name)
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", domain.Errorf(domain.CodeBackendError, "dockerctl.compose",
				"docker compose %s failed (exit %d) in %s:\n%s",
				strings.Join(args, " "), exitErr.ExitCode(), project.Name, strings.TrimSpace(string(out)))
		}
		return "", domain.E(domain.CodeBackendError, "dockerctl.compose", "run docker compose", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ComposeUp brings a service's compose stack up in detached mode.
func (s *Service) ComposeUp(ctx context.Context, service string) (string, error) {
	project, err := s.resolveProject(service)
	if err != nil {
		return "", err
	}
	out, err := s.runCompose(ctx, project, "up", "-d")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Compose stack '%s' is up.\n%s", project.Name, out), nil
}

// ComposeDown tears a service's compose stack down.
func (s *Service) ComposeDown(ctx context.Context, service string) (string, error) {
	project, err := s.resolveProject(service)
	if err != nil {
		return "", err
	}
	out, err := s.runCompose(ctx, project, "down")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Compose stack '%s' is down.\n%s", project.Name, out), nil
}
