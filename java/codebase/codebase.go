// Package codebase keeps the metrics of every Java file below a root
// directory up to date and serves them to editors.
package codebase

import (
	"context"
	"errors"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/ncss/java/analyzer"
	"github.com/dhamidi/ncss/java/metrics"
	"github.com/dhamidi/ncss/java/parser"
)

type Codebase struct {
	mu      sync.RWMutex
	rootDir string
	filter  *analyzer.Filter
	options []parser.Option
	files   map[string]*FileInfo
	log     commonlog.Logger
}

// FileInfo is the latest parse of one file. Unit is partial when ParseErr
// is a syntax error.
type FileInfo struct {
	Path     string
	Content  []byte
	Unit     *metrics.Unit
	ParseErr error
}

// SyntaxError returns the parse error as a *parser.SyntaxError, or nil.
func (f *FileInfo) SyntaxError() *parser.SyntaxError {
	var serr *parser.SyntaxError
	if errors.As(f.ParseErr, &serr) {
		return serr
	}
	return nil
}

type Option func(*Codebase)

// WithFilter restricts ScanAll to the files selected by f.
func WithFilter(f *analyzer.Filter) Option {
	return func(c *Codebase) {
		c.filter = f
	}
}

// WithParserOptions passes opts to every parse.
func WithParserOptions(opts ...parser.Option) Option {
	return func(c *Codebase) {
		c.options = append(c.options, opts...)
	}
}

func New(rootDir string, opts ...Option) *Codebase {
	c := &Codebase{
		rootDir: rootDir,
		files:   make(map[string]*FileInfo),
		log:     commonlog.GetLogger("ncss.codebase"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

// Wants reports whether path is a Java file the codebase tracks.
func (c *Codebase) Wants(path string) bool {
	if filepath.Ext(path) != ".java" {
		return false
	}
	if c.filter == nil {
		return true
	}
	rel, err := filepath.Rel(c.rootDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	return c.filter.Match(filepath.ToSlash(rel))
}

func (c *Codebase) ScanAll() error {
	return filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != c.rootDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if c.Wants(path) {
			c.ScanFile(path)
		}
		return nil
	})
}

// ScanFile reads path from disk and updates it. The returned error is a
// read error; parse errors are kept in the FileInfo.
func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c.UpdateFile(path, content)
	return nil
}

// UpdateFile parses content as the new contents of path and returns the
// resulting file info.
func (c *Codebase) UpdateFile(path string, content []byte) *FileInfo {
	opts := append(slices.Clone(c.options), parser.WithFile(path))
	unit, err := parser.Parse(context.Background(), content, opts...)
	if err != nil {
		c.log.Debugf("%s", err)
	}

	info := &FileInfo{
		Path:     path,
		Content:  content,
		Unit:     unit,
		ParseErr: err,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = info
	return info
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Paths returns the tracked files in sorted order.
func (c *Codebase) Paths() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.files))
}

// Report merges the metrics of all tracked files.
func (c *Codebase) Report() *metrics.Report {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totals := metrics.NewTotals()
	for _, f := range c.files {
		if f.Unit != nil {
			totals.Add(f.Unit)
		}
		if f.ParseErr != nil {
			totals.Fail(f.Path, f.ParseErr)
		}
	}
	return totals.Report()
}

// FunctionAt returns the innermost function of path covering line.
func (c *Codebase) FunctionAt(path string, line int) *metrics.FunctionMetric {
	f := c.GetFile(path)
	if f == nil || f.Unit == nil {
		return nil
	}
	return f.Unit.FunctionAt(line)
}
