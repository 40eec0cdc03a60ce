// Package lsp implements a language server that publishes bill diagnostics
// to editors. Documents are validated in full on open, change and save.
package lsp

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/robinvdvleuten/billtext/ledger"
	"github.com/robinvdvleuten/billtext/loader"
	"github.com/robinvdvleuten/billtext/logger"
	"github.com/robinvdvleuten/billtext/parser"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "billtext"

type Server struct {
	ctx     context.Context
	loader  *loader.Loader
	version string
	handler protocol.Handler
	server  *server.Server

	mu   sync.Mutex
	docs map[protocol.DocumentUri]string
}

// New creates a language server. ctx carries the logger and is used for
// every validation run.
func New(ctx context.Context, ldr *loader.Loader, version string) *Server {
	s := &Server{
		ctx:     ctx,
		loader:  ldr,
		version: version,
		docs:    make(map[protocol.DocumentUri]string),
	}

	s.handler = protocol.Handler{
		Initialize:            s.initialize,
		Initialized:           s.initialized,
		Shutdown:              s.shutdown,
		SetTrace:              s.setTrace,
		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,
		TextDocumentDidSave:   s.textDocumentDidSave,
	}

	s.server = server.NewServer(&s.handler, lsName, false)

	return s
}

func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		s.update(ctx, params.TextDocument.URI, whole.Text)
	}
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.docs, params.TextDocument.URI)
	s.mu.Unlock()

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	text := ""
	if params.Text != nil {
		text = *params.Text
	} else {
		s.mu.Lock()
		text = s.docs[params.TextDocument.URI]
		s.mu.Unlock()
	}
	s.update(ctx, params.TextDocument.URI, text)
	return nil
}

func (s *Server) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	s.mu.Lock()
	s.docs[uri] = text
	s.mu.Unlock()

	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: s.validate(uri, text),
	})
}

func (s *Server) validate(uri protocol.DocumentUri, text string) []protocol.Diagnostic {
	filename := uriToPath(uri)
	source := []byte(text)

	file, err := s.loader.LoadBytes(s.ctx, filename, source)
	if err != nil {
		log := logger.FromContext(s.ctx)
		log.Debug().Err(err).Str("file", filename).Msg("bill failed to load")
		return Diagnostics(source, nil, err)
	}
	return Diagnostics(source, file.Result, nil)
}

// Diagnostics converts a processing outcome to LSP diagnostics. A hard
// failure becomes a single error; lines without a position map to the first
// line of the document.
func Diagnostics(source []byte, result *ledger.Result, err error) []protocol.Diagnostic {
	lines := strings.Split(string(source), "\n")
	diags := []protocol.Diagnostic{}

	if err != nil {
		line, message := 0, err.Error()
		var pe *parser.ParseError
		if errors.As(err, &pe) {
			line, message = pe.Pos.Line, pe.Message
		}
		return append(diags, diagnostic(lines, line, protocol.DiagnosticSeverityError, "", message))
	}

	for _, d := range result.Diagnostics {
		severity := protocol.DiagnosticSeverityError
		if !d.IsError() {
			severity = protocol.DiagnosticSeverityWarning
		}
		diags = append(diags, diagnostic(lines, d.Pos.Line, severity, string(d.Code), d.Message))
	}
	return diags
}

func diagnostic(lines []string, line int, severity protocol.DiagnosticSeverity, code, message string) protocol.Diagnostic {
	index := max(line-1, 0)
	width := 0
	if index < len(lines) {
		width = len(utf16.Encode([]rune(strings.TrimRight(lines[index], "\r"))))
	}

	source := lsName
	d := protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(index), Character: 0},
			End:   protocol.Position{Line: protocol.UInteger(index), Character: protocol.UInteger(width)},
		},
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
	if code != "" {
		d.Code = &protocol.IntegerOrString{Value: code}
	}
	return d
}

func uriToPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err == nil {
			return filepath.Clean(parsed.Path)
		}
	}
	return uri
}

func boolPtr(b bool) *bool {
	return &b
}
