package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/kobzarvs/qcore/internal/atomicwrite"
	"github.com/kobzarvs/qcore/internal/logger"
)

// MaxFiles bounds how many documents the session remembers.
const MaxFiles = 200

// FileState is the restorable view state of one document. Offsets are
// bytes and are snapped by the editor when restored.
type FileState struct {
	Anchor  int       `json:"anchor"`
	Head    int       `json:"head"`
	ScrollY int       `json:"scroll_y"`
	ScrollX int       `json:"scroll_x"`
	Grammar string    `json:"grammar,omitempty"`
	Seen    time.Time `json:"seen"`
}

type Session struct {
	Files      map[string]FileState `json:"files"`
	ActiveFile string               `json:"active_file,omitempty"`
	History    []string             `json:"prompt_history,omitempty"`
	LastSaved  time.Time            `json:"last_saved"`
}

// Manager keeps the session in memory and writes it out periodically.
type Manager struct {
	mu       sync.RWMutex
	session  Session
	path     string
	dirty    bool
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewManager loads the session from the state directory and starts
// autosaving every 15 seconds.
func NewManager() (*Manager, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return Open(path, 15*time.Second), nil
}

// Open loads the session at path. A non-positive interval disables
// autosave.
func Open(path string, interval time.Duration) *Manager {
	m := &Manager{
		session:  Session{Files: make(map[string]FileState)},
		path:     path,
		stopChan: make(chan struct{}),
	}
	m.load()
	if interval > 0 {
		go m.autosaveLoop(interval)
	}
	return m
}

// Path returns $XDG_STATE_HOME/qcore/session.json.
func Path() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "qcore", "session.json"), nil
}

func (m *Manager) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		logger.Warn("session: ignoring corrupt state", "path", m.path, "error", err)
		return
	}
	if s.Files == nil {
		s.Files = make(map[string]FileState)
	}
	m.session = s
}

// Save writes the session when it changed since the last save.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}
	m.prune()
	m.session.LastSaved = time.Now()
	data, err := json.MarshalIndent(m.session, "", "  ")
	if err != nil {
		return err
	}
	if err := atomicwrite.File(m.path, data, 0o644); err != nil {
		return err
	}
	m.dirty = false
	return nil
}

// prune drops the least recently seen files beyond MaxFiles.
func (m *Manager) prune() {
	if len(m.session.Files) <= MaxFiles {
		return
	}
	keys := make([]string, 0, len(m.session.Files))
	for k := range m.session.Files {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return m.session.Files[keys[i]].Seen.After(m.session.Files[keys[j]].Seen)
	})
	for _, k := range keys[MaxFiles:] {
		delete(m.session.Files, k)
	}
}

// FileState returns the saved state for a document URI.
func (m *Manager) FileState(uri string) (FileState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.session.Files[uri]
	return st, ok
}

// SetFileState records the state for a document URI and makes it active.
func (m *Manager) SetFileState(uri string, st FileState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st.Seen.IsZero() {
		st.Seen = time.Now()
	}
	m.session.Files[uri] = st
	m.session.ActiveFile = uri
	m.dirty = true
}

func (m *Manager) ActiveFile() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.ActiveFile
}

// PushHistory appends a prompt command, dropping an identical previous
// entry and keeping the newest 100.
func (m *Manager) PushHistory(cmd string) {
	if cmd == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.session.History
	if n := len(h); n > 0 && h[n-1] == cmd {
		return
	}
	h = append(h, cmd)
	if len(h) > 100 {
		h = h[len(h)-100:]
	}
	m.session.History = h
	m.dirty = true
}

// History returns prompt commands, oldest first.
func (m *Manager) History() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.session.History...)
}

func (m *Manager) autosaveLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.Save(); err != nil {
				logger.Warn("session: autosave failed", "error", err)
			}
		case <-m.stopChan:
			return
		}
	}
}

// Stop ends autosaving and writes the final state.
func (m *Manager) Stop() error {
	m.stopOnce.Do(func() { close(m.stopChan) })
	m.mu.Lock()
	m.dirty = true
	m.mu.Unlock()
	return m.Save()
}
