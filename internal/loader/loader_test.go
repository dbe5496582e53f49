package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFiltersBySuffix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.tf", `resource "aws_s3_bucket" "b" {}`)
	writeFile(t, dir, "modules/vpc/vpc.tf", `resource "aws_vpc" "v" {}`)
	writeFile(t, dir, "README.md", "# not terraform")

	docs, err := New(".tf", nil).Load(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.NotEmpty(t, d.ID)
		assert.Contains(t, d.Path, ".tf")
	}
}

func TestLoadSuffixMatchIsCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.tf", `resource "aws_vpc" "v" {}`)
	writeFile(t, dir, "LEGACY.TF", `resource "aws_vpc" "old" {}`)

	docs, err := New(".TF", nil).Load(dir)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestLoadAttachesSourcePath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "variables.tf", `variable "name" {}`)

	docs, err := New(".tf", nil).Load(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, path, docs[0].Path)
}

func TestLoadRedactsSecrets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "db.tf", `password = "SuperSecretPassword123!"`)

	docs, err := New(".tf", nil).Load(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, `password = "[REDACTED]"`, docs[0].Content)
}

func TestLoadSkipsGitDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".git/hooks/sample.tf", "should not load")
	writeFile(t, dir, "main.tf", `resource "aws_vpc" "v" {}`)

	docs, err := New(".tf", nil).Load(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, filepath.Join(dir, "main.tf"), docs[0].Path)
}

func TestLoadMissingDirectoryIsEmptyNotError(t *testing.T) {
	docs, err := New(".tf", nil).Load(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoadEmptyDirectoryIsEmpty(t *testing.T) {
	docs, err := New(".tf", nil).Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, docs)
}
