package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadDockerignoreMissing(t *testing.T) {
	excludes, err := readDockerignore(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, excludes)
}

func TestReadDockerignore(t *testing.T) {
	dir := t.TempDir()
	content := "# build junk\n\nnode_modules\n*.log\n  dist/  \n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".dockerignore"), []byte(content), 0644))

	excludes, err := readDockerignore(dir)
	require.NoError(t, err)

	assert.Contains(t, excludes, "node_modules")
	assert.Contains(t, excludes, "*.log")
	assert.Contains(t, excludes, "dist/")
	assert.NotContains(t, excludes, "# build junk")
	assert.NotContains(t, excludes, "")

	// Dockerfile and the ignore file itself stay visible to the daemon.
	assert.Contains(t, excludes, "!Dockerfile")
	assert.Contains(t, excludes, "!.dockerignore")
}
