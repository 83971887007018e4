// Package project locates the root of a Java source tree and loads its
// .ncss.yaml configuration.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is looked up in the starting directory and its parents.
const ConfigFileName = ".ncss.yaml"

// Output formats understood by the report encoders.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config controls which files are analyzed and how.
type Config struct {
	// Include and Exclude are doublestar patterns matched against paths
	// relative to the project root.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	// PrivateJavadoc counts javadoc on package-private and private
	// declarations too.
	PrivateJavadoc bool `yaml:"privateJavadoc"`

	// Workers bounds the number of files parsed in parallel.
	Workers int    `yaml:"workers"`
	Format  string `yaml:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Include: []string{"**/*.java"},
		Exclude: []string{"**/target/**", "**/build/**", "**/.*/**"},
		Workers: runtime.NumCPU(),
		Format:  FormatText,
	}
}

func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}

// LoadFromFile reads a YAML configuration. Keys missing from the file
// keep their default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

// Merge copies the non-zero values of other into c. PrivateJavadoc can
// only be switched on this way.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if len(other.Include) > 0 {
		c.Include = slices.Clone(other.Include)
	}
	if len(other.Exclude) > 0 {
		c.Exclude = slices.Clone(other.Exclude)
	}
	if other.PrivateJavadoc {
		c.PrivateJavadoc = true
	}
	if other.Workers > 0 {
		c.Workers = other.Workers
	}
	if other.Format != "" {
		c.Format = other.Format
	}
}

// Project is a directory tree of Java sources together with its
// configuration.
type Project struct {
	RootDir string

	// ConfigFile is empty when no configuration file was found.
	ConfigFile string
	Config     *Config
}

// Load looks for a project around the current directory.
func Load() (*Project, error) {
	return LoadFrom(".")
}

// LoadFrom walks from dir up to the file system root looking for
// ConfigFileName. The directory holding it becomes the project root. When
// there is none, dir itself is the root and the defaults apply. A file
// stands for the directory containing it.
func LoadFrom(dir string) (*Project, error) {
	abs, err := resolveDir(dir)
	if err != nil {
		return nil, err
	}

	path, err := FindConfig(abs)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return &Project{RootDir: abs, Config: DefaultConfig()}, nil
	}

	config, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return &Project{
		RootDir:    filepath.Dir(path),
		ConfigFile: path,
		Config:     config,
	}, nil
}

// LoadWithConfig uses an explicitly named configuration file. The project
// root is dir, not the directory of the file.
func LoadWithConfig(dir, configFile string) (*Project, error) {
	abs, err := resolveDir(dir)
	if err != nil {
		return nil, err
	}
	config, err := LoadFromFile(configFile)
	if err != nil {
		return nil, err
	}
	return &Project{RootDir: abs, ConfigFile: configFile, Config: config}, nil
}

func resolveDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return filepath.Dir(abs), nil
	}
	return abs, nil
}

// FindConfig returns the path of the nearest ConfigFileName in dir or one
// of its parents, or "" if there is none.
func FindConfig(dir string) (string, error) {
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Rel returns path relative to the project root using forward slashes, the
// form include and exclude patterns are written in.
func (p *Project) Rel(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(p.RootDir, abs)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
