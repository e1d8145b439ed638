// Package session hosts one assistant per room.
//
// The Manager hands out Sessions keyed by room name. Each Session owns its
// Assistant, and with it the backend conversation identity, so rooms never
// share conversational state. A Session serializes its own turns.
package session

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/teslashibe/go-voicebridge/pkg/assistant"
	"github.com/teslashibe/go-voicebridge/pkg/chatbase"
	"github.com/teslashibe/go-voicebridge/pkg/tts"
)

// Factory builds the Assistant for a new room.
type Factory func(room string) *assistant.Assistant

// BackendFactory seeds each room's Assistant with the room name and shares
// backend between rooms.
func BackendFactory(backend assistant.Backend, logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return func(room string) *assistant.Assistant {
		return assistant.New(backend,
			assistant.WithSeed(room),
			assistant.WithLogger(logger.With("room", room)),
		)
	}
}

// Manager tracks live sessions.
type Manager struct {
	factory Factory
	voice   tts.Provider
	logger  *slog.Logger
	stats   *counters

	mu       sync.RWMutex
	sessions map[string]*Session

	hookMu sync.RWMutex
	onOpen func(room string)
	onEnd  func(room string)
	onTurn func(res Result)
}

// OnOpen sets the callback for new sessions.
func (m *Manager) OnOpen(callback func(room string)) {
	m.hookMu.Lock()
	m.onOpen = callback
	m.hookMu.Unlock()
}

// OnEnd sets the callback for ended sessions.
func (m *Manager) OnEnd(callback func(room string)) {
	m.hookMu.Lock()
	m.onEnd = callback
	m.hookMu.Unlock()
}

// OnTurn sets the callback run after every answered turn.
func (m *Manager) OnTurn(callback func(res Result)) {
	m.hookMu.Lock()
	m.onTurn = callback
	m.hookMu.Unlock()
}

// NewManager creates a Manager. A nil voice disables synthesis.
func NewManager(factory Factory, voice tts.Provider, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		factory:  factory,
		voice:    voice,
		logger:   logger.With("component", "session.manager"),
		stats:    newCounters(),
		sessions: make(map[string]*Session),
	}
}

// Open returns the session for room, creating it if needed. A blank room
// gets a generated name. created reports whether a new session was made.
func (m *Manager) Open(room string) (s *Session, created bool) {
	room = strings.TrimSpace(room)
	if room == "" {
		room = "room-" + uuid.NewString()
	}

	m.mu.RLock()
	s, ok := m.sessions[room]
	m.mu.RUnlock()
	if ok {
		return s, false
	}

	m.mu.Lock()
	if existing, ok := m.sessions[room]; ok {
		m.mu.Unlock()
		return existing, false
	}
	s = newSession(room, m.factory(room), m)
	m.sessions[room] = s
	m.mu.Unlock()

	m.stats.opened.Add(1)
	m.logger.Info("session opened", "room", room)

	m.hookMu.RLock()
	onOpen := m.onOpen
	m.hookMu.RUnlock()
	if onOpen != nil {
		onOpen(room)
	}
	return s, true
}

// Get returns the session for room.
func (m *Manager) Get(room string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[room]
	return s, ok
}

// End drops the session for room together with its conversation identity.
func (m *Manager) End(room string) bool {
	m.mu.Lock()
	s, ok := m.sessions[room]
	delete(m.sessions, room)
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.stats.ended.Add(1)
	info := s.Info()
	m.logger.Info("session ended", "room", room, "turns", info.Turns)

	m.hookMu.RLock()
	onEnd := m.onEnd
	m.hookMu.RUnlock()
	if onEnd != nil {
		onEnd(room)
	}
	return true
}

func (m *Manager) observe(res Result) {
	m.stats.observe(res)

	m.hookMu.RLock()
	onTurn := m.onTurn
	m.hookMu.RUnlock()
	if onTurn != nil {
		onTurn(res)
	}
}

// List returns snapshots of all sessions ordered by room.
func (m *Manager) List() []Info {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	infos := make([]Info, len(sessions))
	for i, s := range sessions {
		infos[i] = s.Info()
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Room < infos[j].Room })
	return infos
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CanSpeak reports whether replies can be voiced.
func (m *Manager) CanSpeak() bool {
	return m.voice != nil
}

// Stats returns aggregate counters across all sessions, live and ended.
func (m *Manager) Stats() Stats {
	st := Stats{
		Sessions:  m.Count(),
		Opened:    m.stats.opened.Load(),
		Ended:     m.stats.ended.Load(),
		Turns:     m.stats.turns.Load(),
		Greetings: m.stats.greetings.Load(),
		Voiced:    m.stats.voiced.Load(),
		Outcomes:  make(map[chatbase.Kind]uint64, len(chatbase.Kinds)),
	}
	for _, kind := range chatbase.Kinds {
		st.Outcomes[kind] = m.stats.outcomes[kind].Load()
	}
	return st
}

// Stats holds aggregate session counters.
type Stats struct {
	Sessions  int
	Opened    uint64
	Ended     uint64
	Turns     uint64
	Greetings uint64
	Voiced    uint64
	Outcomes  map[chatbase.Kind]uint64
}

type counters struct {
	opened    atomic.Uint64
	ended     atomic.Uint64
	turns     atomic.Uint64
	greetings atomic.Uint64
	voiced    atomic.Uint64

	// fixed at construction; only the values change
	outcomes map[chatbase.Kind]*atomic.Uint64
}

func newCounters() *counters {
	c := &counters{outcomes: make(map[chatbase.Kind]*atomic.Uint64, len(chatbase.Kinds))}
	for _, kind := range chatbase.Kinds {
		c.outcomes[kind] = new(atomic.Uint64)
	}
	return c
}

func (c *counters) observe(res Result) {
	c.turns.Add(1)
	if res.Greeted {
		c.greetings.Add(1)
	}
	if res.Audio != nil {
		c.voiced.Add(1)
	}
	if n, ok := c.outcomes[res.Kind]; ok {
		n.Add(1)
	}
}
