package codebase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/ncss/java/analyzer"
	"github.com/dhamidi/ncss/java/parser"
)

const counter = `package demo;

public class Counter {
    private int n;

    public void inc() {
        n++;
    }

    public int get(boolean reset) {
        if (reset) {
            n = 0;
        }
        return n;
    }
}
`

func TestUpdateAndRemoveFile(t *testing.T) {
	c := New("/src")

	info := c.UpdateFile("/src/demo/Counter.java", []byte(counter))
	require.NoError(t, info.ParseErr)
	assert.Nil(t, info.SyntaxError())
	assert.Same(t, info, c.GetFile("/src/demo/Counter.java"))

	c.UpdateFile("/src/demo/Broken.java", []byte("class Broken {"))
	assert.Equal(t, []string{"/src/demo/Broken.java", "/src/demo/Counter.java"}, c.Paths())

	report := c.Report()
	assert.Equal(t, 2, report.Files)
	require.Len(t, report.Packages, 1)
	assert.Equal(t, "demo", report.Packages[0].Name)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "/src/demo/Broken.java", report.Failures[0].File)

	c.RemoveFile("/src/demo/Broken.java")
	assert.Nil(t, c.GetFile("/src/demo/Broken.java"))
	assert.Empty(t, c.Report().Failures)
}

func TestFunctionAt(t *testing.T) {
	c := New("/src")
	c.UpdateFile("/src/Counter.java", []byte(counter))

	fn := c.FunctionAt("/src/Counter.java", 7)
	require.NotNil(t, fn)
	assert.Equal(t, "demo.Counter.inc()", fn.Name)

	fn = c.FunctionAt("/src/Counter.java", 12)
	require.NotNil(t, fn)
	assert.Equal(t, "demo.Counter.get(boolean)", fn.Name)

	assert.Nil(t, c.FunctionAt("/src/Counter.java", 4))
	assert.Nil(t, c.FunctionAt("/src/Missing.java", 1))
}

func TestParserOptions(t *testing.T) {
	src := []byte("public class P {\n    /** doc */\n    private void f() {}\n}\n")

	plain := New("/src").UpdateFile("/src/P.java", src)
	require.Len(t, plain.Unit.Functions, 1)
	assert.Zero(t, plain.Unit.Functions[0].Javadocs)

	private := New("/src", WithParserOptions(parser.WithPrivateJavadoc(true))).UpdateFile("/src/P.java", src)
	require.Len(t, private.Unit.Functions, 1)
	assert.Equal(t, 1, private.Unit.Functions[0].Javadocs)
}

func TestWantsAndScanAll(t *testing.T) {
	root := t.TempDir()
	for name, content := range map[string]string{
		"a/A.java":       "class A {}",
		"gen/G.java":     "class G {}",
		".hidden/H.java": "class H {}",
		"a/readme.md":    "",
	} {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	c := New(root, WithFilter(&analyzer.Filter{Root: root, Exclude: []string{"gen/**"}}))
	assert.True(t, c.Wants(filepath.Join(root, "a", "B.java")))
	assert.False(t, c.Wants(filepath.Join(root, "gen", "B.java")))
	assert.False(t, c.Wants(filepath.Join(root, "a", "readme.md")))

	require.NoError(t, c.ScanAll())
	assert.Equal(t, []string{filepath.Join(root, "a", "A.java")}, c.Paths())
}

func TestDiagnostics(t *testing.T) {
	c := New("/src")

	ok := c.UpdateFile("/src/Counter.java", []byte(counter))
	assert.Empty(t, diagnostics(ok))

	broken := c.UpdateFile("/src/Broken.java", []byte("class Broken {\n    int x = ;\n}\n"))
	diags := diagnostics(broken)
	require.Len(t, diags, 1)

	d := diags[0]
	serr := broken.SyntaxError()
	require.NotNil(t, serr)
	assert.Equal(t, protocol.UInteger(1), d.Range.Start.Line)
	assert.Equal(t, protocol.UInteger(serr.Pos.Column-1), d.Range.Start.Character)
	assert.Equal(t, d.Range.Start.Character+1, d.Range.End.Character)
	assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
	assert.True(t, strings.HasPrefix(d.Message, "syntax error:"), d.Message)
}

func TestCodeLenses(t *testing.T) {
	info := New("/src").UpdateFile("/src/Counter.java", []byte(counter))

	lenses := codeLenses(info.Unit)
	require.Len(t, lenses, 2)
	assert.Equal(t, protocol.UInteger(5), lenses[0].Range.Start.Line)
	assert.Equal(t, "NCSS 2 · CCN 1", lenses[0].Command.Title)
	assert.Equal(t, protocol.UInteger(9), lenses[1].Range.Start.Line)
	assert.Equal(t, "NCSS 4 · CCN 1", lenses[1].Command.Title)
}

func TestHover(t *testing.T) {
	info := New("/src").UpdateFile("/src/Counter.java", []byte(counter))
	fn := info.Unit.FunctionAt(11)
	require.NotNil(t, fn)

	h := hover(fn)
	content, ok := h.Contents.(protocol.MarkupContent)
	require.True(t, ok)
	assert.Equal(t, protocol.MarkupKindMarkdown, content.Kind)
	assert.Contains(t, content.Value, "**demo.Counter.get(boolean)**")
	assert.Contains(t, content.Value, "| 4 | 1 | 0 |")
	assert.Equal(t, protocol.UInteger(9), h.Range.Start.Line)
}

func TestURIToPath(t *testing.T) {
	path, err := uriToPath("file:///home/me/src/A%20B.java")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/home/me/src/A B.java"), path)

	path, err = uriToPath("/plain/path.java")
	require.NoError(t, err)
	assert.Equal(t, "/plain/path.java", path)
}

func TestFileWatcher(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Counter.java")
	require.NoError(t, os.WriteFile(path, []byte("class Counter {}"), 0o644))

	c := New(root)
	w, err := NewFileWatcher(c)
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)

	changes := make(chan Change, 16)
	w.OnChange = func(ch Change) { changes <- ch }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NotNil(t, c.GetFile(path), "initial scan")

	require.NoError(t, os.WriteFile(path, []byte(counter), 0o644))
	waitFor(t, changes, func(ch Change) bool {
		return ch.Path == path && ch.File != nil && len(ch.File.Unit.Functions) == 2
	})

	require.NoError(t, os.Remove(path))
	waitFor(t, changes, func(ch Change) bool {
		return ch.Path == path && ch.File == nil
	})
	assert.Nil(t, c.GetFile(path))
}

func TestFileWatcherNonPositiveDebounce(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Counter.java")
	require.NoError(t, os.WriteFile(path, []byte(counter), 0o644))

	w, err := NewFileWatcher(New(root))
	require.NoError(t, err)
	defer w.Stop()

	for _, d := range []time.Duration{0, -time.Second} {
		w.SetDebounce(d)
		assert.Equal(t, DefaultDebounce, w.debounce)
	}

	changes := make(chan Change, 16)
	w.OnChange = func(ch Change) { changes <- ch }

	events := make(chan fsnotify.Event)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.run(ctx, events, nil)

	events <- fsnotify.Event{Name: path, Op: fsnotify.Write}
	waitFor(t, changes, func(ch Change) bool {
		return ch.Path == path && ch.File != nil
	})
}

func TestFileWatcherWaitsForQuiet(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "Counter.java")
	require.NoError(t, os.WriteFile(path, []byte(counter), 0o644))

	w, err := NewFileWatcher(New(root))
	require.NoError(t, err)
	defer w.Stop()
	w.SetDebounce(200 * time.Millisecond)

	changes := make(chan Change, 16)
	w.OnChange = func(ch Change) { changes <- ch }

	events := make(chan fsnotify.Event)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.run(ctx, events, nil)

	// A burst longer than the debounce interval.
	for range 8 {
		events <- fsnotify.Event{Name: path, Op: fsnotify.Write}
		time.Sleep(50 * time.Millisecond)
	}
	assert.Empty(t, changes, "re-parsed while events were still arriving")

	waitFor(t, changes, func(ch Change) bool {
		return ch.Path == path && ch.File != nil
	})
	assert.Empty(t, changes, "one re-parse per burst")
}

func waitFor(t *testing.T, changes <-chan Change, match func(Change) bool) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ch := <-changes:
			if match(ch) {
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for change")
		}
	}
}
