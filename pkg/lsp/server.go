package lsp

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/fsnotify.v1"

	"github.com/walteh/gojust/pkg/complete"
	"github.com/walteh/gojust/pkg/config"
	"github.com/walteh/gojust/pkg/grammar"
	"github.com/walteh/gojust/pkg/highlight"
	"github.com/walteh/gojust/pkg/lint"
	"github.com/walteh/gojust/pkg/outline"
	"github.com/walteh/gojust/pkg/position"
	"github.com/walteh/gojust/pkg/syntax"
)

// Options configures a Server.
type Options struct {
	// Config supplies the checker and list commands; nil means defaults.
	Config *config.Config

	// Parser is the external justfile grammar. It may be nil: diagnostics
	// and completion still work, tree-driven features return nothing.
	Parser syntax.Parser

	// FS is used for filename completion and watcher reads; nil means the
	// OS filesystem.
	FS afero.Fs
}

// Server is the LSP server instance: the editor-facing surface over the
// classifier, outline builder, lint runner, and completion provider.
type Server struct {
	id         string
	documents  *DocumentManager
	runner     *lint.Runner
	provider   *complete.Provider
	classifier *highlight.Classifier
	parser     syntax.Parser
	fs         afero.Fs

	mu       sync.Mutex
	conn     *jsonrpc2.Conn
	watcher  *fsnotify.Watcher
	shutdown bool
}

// NewServer wires up a Server from options.
func NewServer(ctx context.Context, opts Options) *Server {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	s := &Server{
		id:         xid.New().String(),
		documents:  NewDocumentManager(),
		provider:   complete.NewProvider(fs, cfg.ListCommand),
		classifier: highlight.NewClassifier(grammar.Default()),
		parser:     opts.Parser,
		fs:         fs,
	}
	s.runner = lint.NewRunner(cfg.CheckCommand, s, s.documents)
	return s
}

// Serve speaks LSP over rwc until the client disconnects.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Str("id", s.id).Msg("starting LSP server")

	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(s.handle),
	)
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	<-conn.DisconnectNotify()

	s.runner.Close()
	s.mu.Lock()
	if s.watcher != nil {
		_ = s.watcher.Close()
		s.watcher = nil
	}
	s.mu.Unlock()
	logger.Info().Str("id", s.id).Msg("LSP server stopped")
	return nil
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
	switch req.Method {
	case "initialize":
		var params InitializeParams
		if req.Params != nil {
			if err := json.Unmarshal(*req.Params, &params); err != nil {
				return nil, errors.Errorf("unmarshaling initialize params: %w", err)
			}
		}
		s.startWatcher(ctx, rootDir(params))
		return &InitializeResult{
			Capabilities: ServerCapabilities{
				TextDocumentSync: TextDocumentSyncFull,
				CompletionProvider: &CompletionOptions{
					TriggerCharacters: []string{" ", "-"},
				},
				DocumentSymbolProvider: true,
				SemanticTokensProvider: &SemanticTokensOptions{
					Legend: SemanticTokensLegend{
						TokenTypes:     tokenTypeLegend,
						TokenModifiers: tokenModifierLegend,
					},
					Full: true,
				},
			},
		}, nil

	case "initialized":
		return nil, nil

	case "shutdown":
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		return nil, nil

	case "exit":
		return nil, conn.Close()

	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, errors.Errorf("unmarshaling didOpen params: %w", err)
		}
		s.documents.Store(params.TextDocument.URI, &Document{
			URI:        params.TextDocument.URI,
			LanguageID: params.TextDocument.LanguageID,
			Version:    params.TextDocument.Version,
			Content:    params.TextDocument.Text,
		})
		s.check(ctx, params.TextDocument.URI, params.TextDocument.Text)
		return nil, nil

	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, errors.Errorf("unmarshaling didChange params: %w", err)
		}
		doc, ok := s.documents.Get(params.TextDocument.URI)
		if !ok {
			return nil, errors.Errorf("document not found: %s", params.TextDocument.URI)
		}
		doc.Version = params.TextDocument.Version
		for _, change := range params.ContentChanges {
			if change.Range == nil {
				// Full sync is the only mode we advertise.
				doc.Content = change.Text
			}
		}
		s.documents.Store(params.TextDocument.URI, doc)
		s.check(ctx, params.TextDocument.URI, doc.Content)
		return nil, nil

	case "textDocument/didSave":
		var params DidSaveTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, errors.Errorf("unmarshaling didSave params: %w", err)
		}
		doc, ok := s.documents.Get(params.TextDocument.URI)
		if !ok {
			return nil, nil
		}
		if params.Text != nil {
			doc.Content = *params.Text
			s.documents.Store(params.TextDocument.URI, doc)
		}
		s.check(ctx, params.TextDocument.URI, doc.Content)
		return nil, nil

	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, errors.Errorf("unmarshaling didClose params: %w", err)
		}
		s.runner.Stop(normalizeURI(params.TextDocument.URI))
		s.documents.Delete(params.TextDocument.URI)
		s.publishDiagnostics(ctx, params.TextDocument.URI, nil)
		return nil, nil

	case "textDocument/completion":
		var params CompletionParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, errors.Errorf("unmarshaling completion params: %w", err)
		}
		return s.completion(ctx, params)

	case "textDocument/documentSymbol":
		var params DocumentSymbolParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, errors.Errorf("unmarshaling documentSymbol params: %w", err)
		}
		return s.documentSymbols(ctx, params.TextDocument.URI)

	case "textDocument/semanticTokens/full":
		var params SemanticTokensParams
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			return nil, errors.Errorf("unmarshaling semanticTokens params: %w", err)
		}
		return s.semanticTokens(ctx, params.TextDocument.URI)

	default:
		zerolog.Ctx(ctx).Debug().Str("method", req.Method).Msg("unhandled method")
		return nil, nil
	}
}

// check starts an asynchronous lint run for the buffer. A missing checker is
// a configuration problem and goes to the user as a blocking message; every
// other failure stays local.
func (s *Server) check(ctx context.Context, uri, content string) {
	_, err := s.runner.Start(ctx, normalizeURI(uri), content)
	if err == nil {
		return
	}
	if errors.Is(err, lint.ErrCheckerNotFound) {
		s.showMessage(ctx, MessageTypeError, err.Error())
		return
	}
	zerolog.Ctx(ctx).Error().Err(err).Str("uri", uri).Msg("starting check run")
}

// ReportDiagnostics implements lint.Sink: each batch replaces the buffer's
// published diagnostics wholesale.
func (s *Server) ReportDiagnostics(ctx context.Context, buffer string, records []lint.Record) {
	diagnostics := make([]Diagnostic, 0, len(records))
	for _, rec := range records {
		severity := DiagnosticSeverityError
		if rec.Severity == lint.SeverityWarning {
			severity = DiagnosticSeverityWarning
		}
		diagnostics = append(diagnostics, Diagnostic{
			Range: Range{
				Start: Position{Line: rec.StartLine - 1, Character: rec.StartCol - 1},
				End:   Position{Line: rec.EndLine - 1, Character: rec.EndCol - 1},
			},
			Severity: severity,
			Source:   "gojust",
			Message:  rec.Message,
		})
	}

	uri := buffer
	if doc, ok := s.documents.Get(buffer); ok {
		uri = doc.URI
	}
	s.publishDiagnostics(ctx, uri, diagnostics)
}

func (s *Server) publishDiagnostics(ctx context.Context, uri string, diagnostics []Diagnostic) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	if diagnostics == nil {
		diagnostics = []Diagnostic{}
	}
	err := conn.Notify(ctx, "textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("uri", uri).Msg("publishing diagnostics")
	}
}

func (s *Server) showMessage(ctx context.Context, messageType int, message string) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	_ = conn.Notify(ctx, "window/showMessage", &ShowMessageParams{
		Type:    messageType,
		Message: message,
	})
}

func (s *Server) completion(ctx context.Context, params CompletionParams) (*CompletionList, error) {
	doc, ok := s.documents.Get(params.TextDocument.URI)
	if !ok {
		return nil, errors.Errorf("document not found: %s", params.TextDocument.URI)
	}

	offset := position.OffsetFromPlace(position.Place{
		Line:      params.Position.Line + 1,
		Character: params.Position.Character + 1,
	}, doc.Content)
	previous, partial := completionContext(doc.Content, offset)
	dir := filepath.Dir(normalizeURI(params.TextDocument.URI))

	items := make([]CompletionItem, 0, 16)
	for _, candidate := range s.provider.Complete(ctx, dir, previous, partial) {
		kind := CompletionItemKindFunction
		switch candidate.Kind {
		case complete.KindFile:
			kind = CompletionItemKindFile
		case complete.KindFlag:
			kind = CompletionItemKindKeyword
		}
		items = append(items, CompletionItem{
			Label:  candidate.Label,
			Kind:   kind,
			Detail: candidate.Kind.String(),
		})
	}
	return &CompletionList{Items: items}, nil
}

// completionContext splits the current line's prefix into the word being
// typed and the word before it.
func completionContext(content string, offset int) (previous, partial string) {
	if offset > len(content) {
		offset = len(content)
	}
	prefix := content[:offset]
	if nl := strings.LastIndexByte(prefix, '\n'); nl >= 0 {
		prefix = prefix[nl+1:]
	}

	end := len(prefix)
	start := end
	for start > 0 && prefix[start-1] != ' ' && prefix[start-1] != '\t' {
		start--
	}
	partial = prefix[start:end]

	before := strings.Fields(prefix[:start])
	if len(before) > 0 {
		previous = before[len(before)-1]
	}
	return previous, partial
}

func (s *Server) documentSymbols(ctx context.Context, uri string) ([]DocumentSymbol, error) {
	doc, ok := s.documents.Get(uri)
	if !ok {
		return nil, errors.Errorf("document not found: %s", uri)
	}
	if s.parser == nil {
		return []DocumentSymbol{}, nil
	}

	root, err := s.parser.Parse(ctx, []byte(doc.Content))
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", uri, err)
	}

	symbols := make([]DocumentSymbol, 0, 16)
	for _, entry := range outline.Build(root) {
		kind := SymbolKindFunction
		switch entry.Kind {
		case outline.KindVariable:
			kind = SymbolKindVariable
		case outline.KindAlias:
			kind = SymbolKindConstant
		}
		r := spanRange(entry.Node.StartByte(), entry.Node.EndByte(), doc.Content)
		symbols = append(symbols, DocumentSymbol{
			Name:           entry.Name,
			Kind:           kind,
			Range:          r,
			SelectionRange: r,
		})
	}
	return symbols, nil
}

func (s *Server) semanticTokens(ctx context.Context, uri string) (*SemanticTokens, error) {
	doc, ok := s.documents.Get(uri)
	if !ok {
		return nil, errors.Errorf("document not found: %s", uri)
	}
	if s.parser == nil {
		return &SemanticTokens{Data: []uint32{}}, nil
	}

	root, err := s.parser.Parse(ctx, []byte(doc.Content))
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", uri, err)
	}

	spans := s.classifier.Classify(root)
	return &SemanticTokens{Data: encodeSemanticTokens(spans, doc.Content)}, nil
}

func spanRange(start, end uint32, content string) Range {
	startLine, startCol := position.NewBasicPosition("", int(start)).GetLineAndColumn(content)
	endLine, endCol := position.NewBasicPosition("", int(end)).GetLineAndColumn(content)
	return Range{
		Start: Position{Line: startLine, Character: startCol},
		End:   Position{Line: endLine, Character: endCol},
	}
}

func rootDir(params InitializeParams) string {
	if params.RootPath != "" {
		return params.RootPath
	}
	if params.RootURI != "" {
		return normalizeURI(params.RootURI)
	}
	return ""
}

// startWatcher watches the workspace root and re-checks an open justfile
// when it changes on disk underneath the editor.
func (s *Server) startWatcher(ctx context.Context, dir string) {
	if dir == "" {
		return
	}
	logger := zerolog.Ctx(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Debug().Err(err).Msg("workspace watcher unavailable")
		return
	}
	if err := watcher.Add(dir); err != nil {
		logger.Debug().Err(err).Str("dir", dir).Msg("cannot watch workspace root")
		_ = watcher.Close()
		return
	}

	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == 0 {
					continue
				}
				if !isJustfileName(filepath.Base(event.Name)) {
					continue
				}
				doc, open := s.documents.Get(event.Name)
				if !open {
					continue
				}
				logger.Debug().Str("path", event.Name).Msg("justfile changed on disk, re-checking")
				s.check(ctx, doc.URI, doc.Content)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Debug().Err(err).Msg("workspace watcher error")
			}
		}
	}()
}

func isJustfileName(name string) bool {
	lower := strings.ToLower(name)
	return lower == "justfile" || lower == ".justfile"
}
