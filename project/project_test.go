package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadFromFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	writeFile(t, path, "privateJavadoc: true\nworkers: 3\n")

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.True(t, config.PrivateJavadoc)
	assert.Equal(t, 3, config.Workers)
	assert.Equal(t, FormatText, config.Format)
	assert.Equal(t, []string{"**/*.java"}, config.Include)
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "include: [\n"},
		{"unknown format", "format: html\n"},
		{"no workers", "workers: -2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			writeFile(t, path, tt.content)
			_, err := LoadFromFile(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMerge(t *testing.T) {
	config := DefaultConfig()
	config.Merge(&Config{Exclude: []string{"gen/**"}, Format: FormatJSON})

	assert.Equal(t, []string{"**/*.java"}, config.Include)
	assert.Equal(t, []string{"gen/**"}, config.Exclude)
	assert.Equal(t, FormatJSON, config.Format)
	assert.False(t, config.PrivateJavadoc)

	config.Merge(&Config{PrivateJavadoc: true, Workers: 8})
	assert.True(t, config.PrivateJavadoc)
	assert.Equal(t, 8, config.Workers)

	config.Merge(nil)
	assert.Equal(t, 8, config.Workers)
}

func TestLoadFromFindsParentConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), "exclude: [\"legacy/**\"]\n")
	nested := filepath.Join(root, "src", "main", "java")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	p, err := LoadFrom(nested)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(p.RootDir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, []string{"legacy/**"}, p.Config.Exclude)
	assert.Equal(t, "src/main/java/A.java", p.Rel(filepath.Join(p.RootDir, "src", "main", "java", "A.java")))
}

func TestLoadFromWithoutConfig(t *testing.T) {
	dir := t.TempDir()

	path, err := FindConfig(dir)
	require.NoError(t, err)
	if path != "" {
		t.Skipf("a %s above the temporary directory interferes: %s", ConfigFileName, path)
	}

	p, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Empty(t, p.ConfigFile)
	assert.Equal(t, DefaultConfig(), p.Config)
}

func TestLoadWithConfig(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, configFile, "format: json\n")

	p, err := LoadWithConfig(dir, configFile)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, p.Config.Format)
	assert.Equal(t, configFile, p.ConfigFile)
}

func TestLoadFromFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), "workers: 5\n")
	file := filepath.Join(root, "src", "A.java")
	writeFile(t, file, "class A {}")

	p, err := LoadFrom(file)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Config.Workers)

	_, err = LoadFrom(filepath.Join(root, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
