// Package clipboard provides the clipboards an editor can be wired to.
package clipboard

import (
	"sync"

	"github.com/atotto/clipboard"

	"github.com/kobzarvs/qcore/internal/logger"
)

// System is the OS clipboard. When the OS has no clipboard utility it keeps
// a process-local copy so copy and paste still work within qcore.
type System struct {
	fallback Memory
}

func NewSystem() *System {
	return &System{}
}

func (s *System) Read() (string, bool) {
	if clipboard.Unsupported {
		return s.fallback.Read()
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		logger.Warn("clipboard: read failed", "error", err)
		return s.fallback.Read()
	}
	return text, true
}

func (s *System) Write(text string) {
	s.fallback.Write(text)
	if clipboard.Unsupported {
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		logger.Warn("clipboard: write failed", "error", err)
	}
}

// Memory is an in-process clipboard. The zero value is empty and ready.
type Memory struct {
	mu   sync.Mutex
	text string
	set  bool
}

func (m *Memory) Read() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, m.set
}

func (m *Memory) Write(text string) {
	m.mu.Lock()
	m.text = text
	m.set = true
	m.mu.Unlock()
}
