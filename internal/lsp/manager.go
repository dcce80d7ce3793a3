// Package lsp talks to language servers over stdio and turns their
// completion answers into editor.CompletionPayload values.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/kobzarvs/qcore/internal/config"
	"github.com/kobzarvs/qcore/internal/editor"
	"github.com/kobzarvs/qcore/internal/logger"
)

const (
	requestTimeout  = 10 * time.Second
	shutdownTimeout = 500 * time.Millisecond
)

var errNotInitialized = errors.New("lsp: server not initialized")

type Event struct {
	Kind    string
	Message string
}

// CompletionRequest asks for candidates at a cursor position of one
// document version. Column is in UTF-16 code units.
type CompletionRequest struct {
	// URI is the editor's document URI, echoed in the payload.
	URI     string
	Path    string
	Version int
	Line    int
	Column  int
}

type Manager struct {
	langs       config.Languages
	servers     map[string]*server
	events      chan Event
	completions chan editor.CompletionPayload
	quit        chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
}

func NewManager(langs config.Languages) *Manager {
	return &Manager{
		langs:       langs,
		servers:     make(map[string]*server),
		events:      make(chan Event, 32),
		completions: make(chan editor.CompletionPayload, 4),
		quit:        make(chan struct{}),
	}
}

func (m *Manager) Start() error {
	return nil
}

// Stop shuts every server down and waits for in-flight requests.
func (m *Manager) Stop() error {
	m.mu.Lock()
	select {
	case <-m.quit:
		m.mu.Unlock()
		return nil
	default:
		close(m.quit)
	}
	servers := m.servers
	m.servers = make(map[string]*server)
	m.mu.Unlock()

	var err error
	for _, srv := range servers {
		err = multierr.Append(err, srv.stop())
	}
	m.wg.Wait()
	return err
}

// SetLanguages replaces the language table. Running servers are kept.
func (m *Manager) SetLanguages(langs config.Languages) {
	m.mu.Lock()
	m.langs = langs
	m.mu.Unlock()
}

func (m *Manager) Events() <-chan Event {
	return m.events
}

// Completions delivers answers to Complete.
func (m *Manager) Completions() <-chan editor.CompletionPayload {
	return m.completions
}

// Enabled reports whether path has a configured language server.
func (m *Manager) Enabled(path string) bool {
	_, _, _, ok := m.lookup(path)
	return ok
}

func (m *Manager) OpenFile(path string, version int, text string) {
	srv, lang := m.serverFor(path)
	if srv == nil {
		return
	}
	srv.didOpen(textDocumentItem{
		URI:        fileURI(path),
		LanguageID: lang,
		Version:    version,
		Text:       text,
	})
}

// ChangeFile sends the full new text of an open document.
func (m *Manager) ChangeFile(path string, version int, text string) {
	srv, _ := m.serverFor(path)
	if srv == nil {
		return
	}
	srv.didChange(fileURI(path), version, text)
}

func (m *Manager) CloseFile(path string) {
	srv, _ := m.serverFor(path)
	if srv == nil {
		return
	}
	srv.didClose(fileURI(path))
}

// Complete requests candidates in the background. The answer arrives on
// Completions tagged with req's URI, version and position; failures are
// logged and produce nothing.
func (m *Manager) Complete(req CompletionRequest) {
	srv, _ := m.serverFor(req.Path)
	if srv == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		go func() {
			select {
			case <-m.quit:
				cancel()
			case <-ctx.Done():
			}
		}()

		raw, err := srv.request(ctx, "textDocument/completion", TextDocumentPositionParams{
			TextDocument: TextDocumentIdentifier{URI: fileURI(req.Path)},
			Position:     Position{Line: req.Line, Character: req.Column},
		})
		if err != nil {
			logger.Debug("lsp: completion failed", "server", srv.name, "error", err)
			return
		}
		items, err := parseCompletion(raw)
		if err != nil {
			logger.Warn("lsp: bad completion response", "server", srv.name, "error", err)
			return
		}
		select {
		case m.completions <- editor.CompletionPayload{
			URI:     req.URI,
			Version: req.Version,
			Line:    req.Line,
			Column:  req.Column,
			Items:   items,
		}:
		case <-m.quit:
		}
	}()
}

func (m *Manager) lookup(path string) (name string, cfg config.LanguageServer, lang *config.Language, ok bool) {
	if path == "" {
		return "", cfg, nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	lang = m.langs.Match(path)
	if lang == nil || len(lang.LanguageServers) == 0 {
		return "", cfg, nil, false
	}
	name = lang.LanguageServers[0]
	cfg, ok = m.langs.LanguageServers[name]
	if !ok || cfg.Command == "" {
		return "", cfg, nil, false
	}
	return name, cfg, lang, true
}

func (m *Manager) serverFor(path string) (*server, string) {
	name, cfg, lang, ok := m.lookup(path)
	if !ok {
		return nil, ""
	}
	srv, err := m.getServer(name, cfg, findRoot(path, lang.Roots))
	if err != nil {
		logger.Error("lsp: start server", "server", name, "error", err)
		m.sendEvent("error", err.Error())
		return nil, ""
	}
	return srv, lang.Name
}

func (m *Manager) getServer(name string, cfg config.LanguageServer, root string) (*server, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-m.quit:
		return nil, errors.New("lsp: manager stopped")
	default:
	}
	if srv, ok := m.servers[name]; ok {
		select {
		case <-srv.done:
			delete(m.servers, name)
		default:
			return srv, nil
		}
	}
	if root == "" {
		root = "."
	}
	cmd := exec.Command(cfg.Command, cfg.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	srv := &server{
		name:     name,
		cmd:      cmd,
		stdin:    stdin,
		reader:   bufio.NewReader(stdout),
		rootURI:  fileURI(root),
		events:   m.events,
		docs:     make(map[string]int),
		initID:   -1,
		handlers: make(map[int]chan response),
		done:     make(chan struct{}),
	}
	m.servers[name] = srv
	go srv.readLoop()
	logger.Info("lsp: server started", "server", name, "root", root)
	if err := srv.initialize(); err != nil {
		return srv, err
	}
	return srv, nil
}

func (m *Manager) sendEvent(kind, msg string) {
	select {
	case m.events <- Event{Kind: kind, Message: msg}:
	default:
	}
}

type response struct {
	result json.RawMessage
	err    error
}

type server struct {
	name    string
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	reader  *bufio.Reader
	rootURI string
	events  chan Event
	done    chan struct{}

	writeMu sync.Mutex

	mu          sync.Mutex
	nextID      int
	initID      int
	initialized bool
	pendingOpen []textDocumentItem
	docs        map[string]int
	handlers    map[int]chan response
}

func (s *server) initialize() error {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.initID = id
	s.mu.Unlock()

	return s.send(rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  "initialize",
		Params: initializeParams{
			ProcessID:    os.Getpid(),
			RootURI:      s.rootURI,
			Capabilities: clientCapabilities,
			ClientInfo:   map[string]string{"name": "qcore"},
		},
	})
}

func (s *server) didOpen(doc textDocumentItem) {
	s.mu.Lock()
	if _, ok := s.docs[doc.URI]; ok {
		s.mu.Unlock()
		return
	}
	if !s.initialized {
		for _, p := range s.pendingOpen {
			if p.URI == doc.URI {
				s.mu.Unlock()
				return
			}
		}
		s.pendingOpen = append(s.pendingOpen, doc)
		s.mu.Unlock()
		return
	}
	s.docs[doc.URI] = doc.Version
	s.mu.Unlock()
	_ = s.sendNotification("textDocument/didOpen", didOpenParams{TextDocument: doc})
}

func (s *server) didChange(uri string, version int, text string) {
	s.mu.Lock()
	if !s.initialized {
		for i := range s.pendingOpen {
			if s.pendingOpen[i].URI == uri {
				s.pendingOpen[i].Version = version
				s.pendingOpen[i].Text = text
			}
		}
		s.mu.Unlock()
		return
	}
	if v, ok := s.docs[uri]; !ok || v >= version {
		s.mu.Unlock()
		return
	}
	s.docs[uri] = version
	s.mu.Unlock()
	_ = s.sendNotification("textDocument/didChange", didChangeParams{
		TextDocument:   VersionedTextDocumentIdentifier{URI: uri, Version: version},
		ContentChanges: []contentChange{{Text: text}},
	})
}

func (s *server) didClose(uri string) {
	s.mu.Lock()
	for i, p := range s.pendingOpen {
		if p.URI == uri {
			s.pendingOpen = append(s.pendingOpen[:i], s.pendingOpen[i+1:]...)
			break
		}
	}
	_, open := s.docs[uri]
	delete(s.docs, uri)
	s.mu.Unlock()
	if open {
		_ = s.sendNotification("textDocument/didClose", didCloseParams{
			TextDocument: TextDocumentIdentifier{URI: uri},
		})
	}
}

type envelope struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (s *server) readLoop() {
	defer s.fail(errors.New("lsp: server exited"))
	for {
		msg, err := readMessage(s.reader)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				s.sendEvent("error", err.Error())
			}
			return
		}
		var env envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			logger.Debug("lsp: malformed message", "server", s.name, "error", err)
			continue
		}
		switch {
		case env.Method != "" && len(env.ID) > 0:
			// Requests from the server get an empty success reply.
			_ = s.send(rpcResponse{JSONRPC: "2.0", ID: env.ID, Result: nil})
		case env.Method != "":
			s.handleNotification(env.Method, env.Params)
		default:
			var id int
			if err := json.Unmarshal(env.ID, &id); err == nil {
				s.handleResponse(id, env)
			}
		}
	}
}

func (s *server) handleNotification(method string, params json.RawMessage) {
	switch method {
	case "window/showMessage":
		var p showMessageParams
		if err := json.Unmarshal(params, &p); err == nil {
			s.sendEvent("message", p.Message)
		}
	case "window/logMessage":
		var p showMessageParams
		if err := json.Unmarshal(params, &p); err == nil {
			logger.Debug("lsp: log", "server", s.name, "message", p.Message)
		}
	}
}

func (s *server) handleResponse(id int, env envelope) {
	s.mu.Lock()
	if ch, ok := s.handlers[id]; ok {
		delete(s.handlers, id)
		s.mu.Unlock()
		if env.Error != nil {
			ch <- response{err: env.Error}
		} else {
			ch <- response{result: env.Result}
		}
		return
	}

	if id != s.initID || s.initialized {
		s.mu.Unlock()
		return
	}
	if env.Error != nil {
		s.mu.Unlock()
		s.sendEvent("error", env.Error.Error())
		return
	}
	s.initialized = true
	pending := s.pendingOpen
	s.pendingOpen = nil
	for _, doc := range pending {
		s.docs[doc.URI] = doc.Version
	}
	s.mu.Unlock()

	_ = s.sendNotification("initialized", map[string]any{})
	for _, doc := range pending {
		_ = s.sendNotification("textDocument/didOpen", didOpenParams{TextDocument: doc})
	}
}

// fail answers every waiting request with err and marks the server done.
func (s *server) fail(err error) {
	s.mu.Lock()
	handlers := s.handlers
	s.handlers = make(map[int]chan response)
	s.mu.Unlock()
	for _, ch := range handlers {
		ch <- response{err: err}
	}
	close(s.done)
}

func (s *server) sendNotification(method string, params any) error {
	return s.send(rpcNotification{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	})
}

func (s *server) send(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(payload))
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := io.WriteString(s.stdin, header); err != nil {
		return err
	}
	_, err = s.stdin.Write(payload)
	return err
}

// request sends a JSON-RPC request and waits for its response.
func (s *server) request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	s.mu.Lock()
	if !s.initialized && method != "shutdown" {
		s.mu.Unlock()
		return nil, errNotInitialized
	}
	s.nextID++
	id := s.nextID
	ch := make(chan response, 1)
	s.handlers[id] = ch
	s.mu.Unlock()

	forget := func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}
	if err := s.send(rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}); err != nil {
		forget()
		return nil, fmt.Errorf("%s: %w", method, err)
	}

	select {
	case resp := <-ch:
		if resp.err != nil {
			return nil, fmt.Errorf("%s: %w", method, resp.err)
		}
		return resp.result, nil
	case <-ctx.Done():
		forget()
		return nil, fmt.Errorf("%s: %w", method, ctx.Err())
	}
}

func (s *server) sendEvent(kind, msg string) {
	select {
	case s.events <- Event{Kind: kind, Message: msg}:
	default:
	}
}

// stop asks the server to shut down and kills it if it does not exit in
// time.
func (s *server) stop() error {
	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	select {
	case <-s.done:
		_ = s.cmd.Wait()
		return nil
	default:
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if _, err := s.request(ctx, "shutdown", nil); err == nil {
		_ = s.sendNotification("exit", nil)
	}
	_ = s.stdin.Close()

	select {
	case <-s.done:
	case <-ctx.Done():
		if err := s.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("lsp: kill %s: %w", s.name, err)
		}
		<-s.done
	}
	_ = s.cmd.Wait()
	return nil
}

func readMessage(r *bufio.Reader) ([]byte, error) {
	length := -1
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "content-length") {
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				length = n
			}
		}
	}
	if length < 0 {
		return nil, errors.New("lsp: missing content-length")
	}
	buf := make([]byte, length)
	_, err := io.ReadFull(r, buf)
	return buf, err
}

// findRoot walks up from path to the first directory containing one of
// markers, falling back to the file's directory.
func findRoot(path string, markers []string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Dir(path)
	}
	dir := filepath.Dir(abs)
	if len(markers) == 0 {
		return dir
	}
	for {
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return filepath.Dir(abs)
}

func fileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String()
}

// URIToPath converts a file:// URI to a filesystem path.
func URIToPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	if u.Scheme != "file" {
		return uri
	}
	return filepath.FromSlash(u.Path)
}
