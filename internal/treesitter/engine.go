// Package treesitter tokenizes documents in the background and reports
// highlight spans as editor.HighlightPayload values tagged with the
// document version they were computed for.
package treesitter

import (
	"context"
	"sort"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/toml"
	"github.com/smacker/go-tree-sitter/yaml"

	"github.com/kobzarvs/qcore/internal/editor"
	"github.com/kobzarvs/qcore/internal/logger"
)

// Request asks for spans of one document snapshot.
type Request struct {
	URI      string
	Language string
	Version  int
	Text     string
	// Edits lead from the previously parsed snapshot of URI to Text. Nil
	// requests a full parse.
	Edits []editor.Edit
}

type Engine struct {
	langs   map[string]*sitter.Language
	parsers map[string]*sitter.Parser
	queries map[string]*sitter.Query
	trees   map[string]*sitter.Tree
	// URIs whose last request was dropped; their next parse starts over.
	stale map[string]bool

	reqCh   chan Request
	results chan editor.HighlightPayload
	stopCh  chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	started bool
}

func New() *Engine {
	return &Engine{
		langs:   make(map[string]*sitter.Language),
		parsers: make(map[string]*sitter.Parser),
		queries: make(map[string]*sitter.Query),
		trees:   make(map[string]*sitter.Tree),
		stale:   make(map[string]bool),
		reqCh:   make(chan Request, 8),
		results: make(chan editor.HighlightPayload, 8),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start compiles the highlight queries and starts the parse loop.
func (e *Engine) Start() error {
	languages := []struct {
		name  string
		lang  *sitter.Language
		query string
	}{
		{"go", golang.GetLanguage(), goHighlightQuery},
		{"yaml", yaml.GetLanguage(), yamlHighlightQuery},
		{"toml", toml.GetLanguage(), tomlHighlightQuery},
		{"bash", bash.GetLanguage(), bashHighlightQuery},
	}

	e.mu.Lock()
	for _, l := range languages {
		query, err := sitter.NewQuery([]byte(l.query), l.lang)
		if err != nil {
			logger.Warn("treesitter: bad highlight query", "language", l.name, "error", err)
			continue
		}
		p := sitter.NewParser()
		p.SetLanguage(l.lang)
		e.langs[l.name] = l.lang
		e.parsers[l.name] = p
		e.queries[l.name] = query
	}
	e.started = true
	e.mu.Unlock()

	go e.loop()
	return nil
}

func (e *Engine) Stop() error {
	select {
	case <-e.stopCh:
		return nil
	default:
		close(e.stopCh)
	}
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if started {
		<-e.done
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for uri, t := range e.trees {
		t.Close()
		delete(e.trees, uri)
	}
	for _, q := range e.queries {
		q.Close()
	}
	for _, p := range e.parsers {
		p.Close()
	}
	return nil
}

// Supports reports whether language has a parser.
func (e *Engine) Supports(language string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.parsers[language]
	return ok
}

// Results delivers payloads in request order.
func (e *Engine) Results() <-chan editor.HighlightPayload {
	return e.results
}

// Parse queues req. When the queue is full the request is dropped and the
// document is fully reparsed on its next request.
func (e *Engine) Parse(req Request) {
	select {
	case e.reqCh <- req:
	default:
		e.mu.Lock()
		e.stale[req.URI] = true
		e.mu.Unlock()
		logger.Debug("treesitter: parse queue full", "uri", req.URI, "version", req.Version)
	}
}

// Forget drops the tree kept for uri.
func (e *Engine) Forget(uri string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.trees[uri]; ok {
		t.Close()
		delete(e.trees, uri)
	}
	delete(e.stale, uri)
}

func (e *Engine) loop() {
	defer close(e.done)
	for {
		select {
		case <-e.stopCh:
			return
		case req := <-e.reqCh:
			p, ok := e.Highlight(req)
			if !ok {
				continue
			}
			select {
			case e.results <- p:
			case <-e.stopCh:
				return
			}
		}
	}
}

// Highlight parses req synchronously and returns its spans. It reports
// false for a language without a parser.
func (e *Engine) Highlight(req Request) (editor.HighlightPayload, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	parser, ok := e.parsers[req.Language]
	if !ok {
		return editor.HighlightPayload{}, false
	}
	source := []byte(req.Text)

	prev := e.trees[req.URI]
	if prev != nil && (req.Edits == nil || e.stale[req.URI]) {
		prev.Close()
		prev = nil
	}
	delete(e.stale, req.URI)
	if prev != nil {
		for _, ed := range req.Edits {
			prev.Edit(editInput(ed))
		}
	}
	tree, err := parser.ParseCtx(context.Background(), prev, source)
	if prev != nil {
		prev.Close()
	}
	delete(e.trees, req.URI)
	if err != nil {
		logger.Warn("treesitter: parse failed", "uri", req.URI, "error", err)
		return editor.HighlightPayload{}, false
	}
	e.trees[req.URI] = tree

	return editor.HighlightPayload{
		URI:     req.URI,
		Version: req.Version,
		Length:  len(source),
		Spans:   querySpans(e.queries[req.Language], tree, source),
	}, true
}

func editInput(ed editor.Edit) sitter.EditInput {
	return sitter.EditInput{
		StartIndex:  uint32(ed.StartByte),
		OldEndIndex: uint32(ed.OldEndByte),
		NewEndIndex: uint32(ed.NewEndByte),
		StartPoint:  point(ed.StartPoint),
		OldEndPoint: point(ed.OldEndPoint),
		NewEndPoint: point(ed.NewEndPoint),
	}
}

func point(p editor.Point) sitter.Point {
	return sitter.Point{Row: uint32(p.Row), Column: uint32(p.Column)}
}

// querySpans runs query over the whole tree. When several patterns capture
// the same node, the earliest pattern wins.
func querySpans(query *sitter.Query, tree *sitter.Tree, source []byte) []editor.Span {
	if query == nil || tree == nil {
		return nil
	}
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, tree.RootNode())

	type key struct{ start, end uint32 }
	seen := make(map[key]bool)
	var spans []editor.Span
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, source)
		if match == nil {
			continue
		}
		for _, capture := range match.Captures {
			node := capture.Node
			k := key{node.StartByte(), node.EndByte()}
			if k.start >= k.end || seen[k] {
				continue
			}
			seen[k] = true
			spans = append(spans, editor.Span{
				Start: int(k.start),
				End:   int(k.end),
				Style: query.CaptureNameForId(capture.Index),
			})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	return spans
}
