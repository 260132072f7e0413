package dockerctl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvismcp/internal/domain"
)

func composeRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	for name, file := range map[string]string{
		"jarvis-auth": "docker-compose.yaml",
		"jarvis-logs": "compose.yml",
	} {
		dir := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte("services: {}\n"), 0o644))
	}

	// Directories without compose files or without the jarvis- prefix are
	// ignored.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "jarvis-empty"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "unrelated"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "unrelated", "docker-compose.yaml"), []byte(""), 0o644))

	return root
}

func TestComposeProjects(t *testing.T) {
	svc := NewServiceWithAPI(&fakeAPI{}, composeRoot(t), nil)

	projects, err := svc.ComposeProjects()
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "jarvis-auth", projects[0].Name)
	assert.Equal(t, "docker-compose.yaml", projects[0].File)
	assert.Equal(t, "jarvis-logs", projects[1].Name)
	assert.Equal(t, "compose.yml", projects[1].File)
}

func TestComposeProjects_NoRoot(t *testing.T) {
	svc := NewServiceWithAPI(&fakeAPI{}, "", nil)

	_, err := svc.ComposeProjects()
	require.Error(t, err)
	assert.Equal(t, domain.CodeConfiguration, domain.CodeFrom(err))
}

func TestResolveProject_ShortAndFullNames(t *testing.T) {
	svc := NewServiceWithAPI(&fakeAPI{}, composeRoot(t), nil)

	short, err := svc.resolveProject("auth")
	require.NoError(t, err)
	assert.Equal(t, "jarvis-auth", short.Name)

	full, err := svc.resolveProject("jarvis-auth")
	require.NoError(t, err)
	assert.Equal(t, short.Dir, full.Dir)
}

func TestComposeUp_UnknownService(t *testing.T) {
	svc := NewServiceWithAPI(&fakeAPI{}, composeRoot(t), nil)

	_, err := svc.ComposeUp(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidArguments, domain.CodeFrom(err))
	assert.Contains(t, err.Error(), "jarvis-auth")
}
