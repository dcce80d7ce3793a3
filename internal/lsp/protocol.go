package lsp

import (
	"encoding/json"
	"fmt"

	"github.com/kobzarvs/qcore/internal/completion"
)

// Position is a zero-based line and UTF-16 character offset.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcNotification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result"`
}

// rpcError is an error object returned by the server.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("lsp: %s (%d)", e.Message, e.Code)
}

type initializeParams struct {
	ProcessID    int               `json:"processId"`
	RootURI      string            `json:"rootUri"`
	Capabilities map[string]any    `json:"capabilities"`
	ClientInfo   map[string]string `json:"clientInfo"`
}

type textDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type didOpenParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type contentChange struct {
	Text string `json:"text"`
}

type didChangeParams struct {
	TextDocument   VersionedTextDocumentIdentifier `json:"textDocument"`
	ContentChanges []contentChange                 `json:"contentChanges"`
}

type didCloseParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type showMessageParams struct {
	Type    int    `json:"type"`
	Message string `json:"message"`
}

type completionItem struct {
	Label  string `json:"label"`
	Kind   int    `json:"kind"`
	Detail string `json:"detail"`
}

type completionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []completionItem `json:"items"`
}

// clientCapabilities advertises full document sync and plain-text
// completion items.
var clientCapabilities = map[string]any{
	"general": map[string]any{
		"positionEncodings": []string{"utf-16"},
	},
	"textDocument": map[string]any{
		"synchronization": map[string]any{"dynamicRegistration": false},
		"completion": map[string]any{
			"completionItem": map[string]any{"snippetSupport": false},
			"contextSupport": false,
		},
	},
}

// parseCompletion accepts both a CompletionList and a bare item array.
func parseCompletion(raw json.RawMessage) ([]completion.Item, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var items []completionItem
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
	} else {
		var list completionList
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		items = list.Items
	}
	out := make([]completion.Item, 0, len(items))
	for _, it := range items {
		if it.Label == "" {
			continue
		}
		out = append(out, completion.Item{
			Label:  it.Label,
			Kind:   itemKind(it.Kind),
			Detail: it.Detail,
		})
	}
	return out, nil
}

// itemKind folds CompletionItemKind values into completion kinds.
func itemKind(k int) completion.Kind {
	switch k {
	case 2, 3, 4: // method, function, constructor
		return completion.KindFunction
	case 5, 6, 10, 12, 20, 21: // field, variable, property, value, enum member, constant
		return completion.KindVariable
	case 7, 8, 13, 22, 25: // class, interface, enum, struct, type parameter
		return completion.KindClass
	case 14:
		return completion.KindKeyword
	default:
		return completion.KindText
	}
}
