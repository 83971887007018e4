package codebase

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/ncss/java/metrics"
	"github.com/dhamidi/ncss/java/parser"
)

const lsName = "ncss"

type LSPServer struct {
	codebase *Codebase
	options  []Option
	handler  protocol.Handler
	server   *server.Server
	version  string
}

func NewLSPServer(version string, opts ...Option) *LSPServer {
	ls := &LSPServer{
		version: version,
		options: opts,
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
		TextDocumentHover:     ls.textDocumentHover,
		TextDocumentCodeLens:  ls.textDocumentCodeLens,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.codebase = New(rootDir, ls.options...)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.CodeLensProvider = &protocol.CodeLensOptions{
		ResolveProvider: boolPtr(false),
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return ls.codebase.ScanAll()
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return ls.update(ctx, params.TextDocument.URI, []byte(params.TextDocument.Text))
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		return ls.update(ctx, params.TextDocument.URI, []byte(textChange.Text))
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		return ls.update(ctx, params.TextDocument.URI, []byte(*params.Text))
	}
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if err := ls.codebase.ScanFile(path); err != nil {
		return nil
	}
	ls.publish(ctx, params.TextDocument.URI, ls.codebase.GetFile(path))
	return nil
}

func (ls *LSPServer) update(ctx *glsp.Context, uri protocol.DocumentUri, content []byte) error {
	path, err := uriToPath(uri)
	if err != nil {
		return nil
	}
	ls.publish(ctx, uri, ls.codebase.UpdateFile(path, content))
	return nil
}

func (ls *LSPServer) publish(ctx *glsp.Context, uri protocol.DocumentUri, file *FileInfo) {
	if file == nil {
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics(file),
	})
}

func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	fn := ls.codebase.FunctionAt(path, int(params.Position.Line)+1)
	if fn == nil {
		return nil, nil
	}
	return hover(fn), nil
}

func (ls *LSPServer) textDocumentCodeLens(ctx *glsp.Context, params *protocol.CodeLensParams) ([]protocol.CodeLens, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	file := ls.codebase.GetFile(path)
	if file == nil || file.Unit == nil {
		return nil, nil
	}
	return codeLenses(file.Unit), nil
}

// diagnostics reports the syntax error of file, if any. A syntax error
// is reported on the unexpected token.
func diagnostics(file *FileInfo) []protocol.Diagnostic {
	diags := []protocol.Diagnostic{}
	serr := file.SyntaxError()
	if serr == nil {
		return diags
	}

	start := toPosition(serr.Pos)
	end := start
	if tok := serr.Token; tok != nil && tok.Kind != parser.TokenEOF {
		end = toPosition(tok.Span.End)
	}
	if end == start {
		end.Character++
	}

	severity := protocol.DiagnosticSeverityError
	source := lsName
	message := strings.TrimPrefix(serr.Error(), serr.Pos.String()+": ")
	return append(diags, protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	})
}

func hover(fn *metrics.FunctionMetric) *protocol.Hover {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n\n", fn.Name)
	fmt.Fprintf(&b, "| NCSS | CCN | Javadocs |\n|---|---|---|\n| %d | %d | %d |\n", fn.NCSS, fn.CCN, fn.Javadocs)
	if fn.LocalClasses > 0 || fn.LocalFunctions > 0 {
		fmt.Fprintf(&b, "\n%d local classes, %d local functions\n", fn.LocalClasses, fn.LocalFunctions)
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
		Range: &protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(max(fn.BeginLine-1, 0))},
			End:   protocol.Position{Line: protocol.UInteger(max(fn.EndLine, 0))},
		},
	}
}

// codeLenses puts one lens above the first line of every function.
func codeLenses(unit *metrics.Unit) []protocol.CodeLens {
	lenses := make([]protocol.CodeLens, 0, len(unit.Functions))
	for _, fn := range unit.Functions {
		line := protocol.UInteger(max(fn.BeginLine-1, 0))
		lenses = append(lenses, protocol.CodeLens{
			Range: protocol.Range{
				Start: protocol.Position{Line: line},
				End:   protocol.Position{Line: line},
			},
			Command: &protocol.Command{
				Title: fmt.Sprintf("NCSS %d · CCN %d", fn.NCSS, fn.CCN),
			},
		})
	}
	return lenses
}

// toPosition converts a 1-based parser position to a 0-based protocol
// position.
func toPosition(pos parser.Position) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(max(pos.Line-1, 0)),
		Character: protocol.UInteger(max(pos.Column-1, 0)),
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(kind protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &kind
}
