package commands

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mobile-next/windowthrottle/platform"
	"github.com/mobile-next/windowthrottle/throttle"
	"github.com/mobile-next/windowthrottle/types"
	"github.com/mobile-next/windowthrottle/utils"
)

// DefaultMaxSessions bounds the number of live sessions; the least recently
// used one is closed when the bound is exceeded.
const DefaultMaxSessions = 256

// Session is one remote window: a viewport fed by its client and the engine
// coalescing its raw events.
type Session struct {
	ID        string
	CreatedAt time.Time

	engine    *throttle.Engine
	viewport  *platform.Viewport
	loop      *platform.Loop
	closeOnce sync.Once
}

// Report applies measurements and raises a raw event for the session.
func (s *Session) Report(event string, m platform.Metrics) error {
	return s.viewport.Report(event, m)
}

func (s *Session) State() types.WindowState {
	return s.engine.State()
}

func (s *Session) IsActive(kind string) (bool, error) {
	return s.engine.IsActive(kind)
}

func (s *Session) Markers() []string {
	return s.viewport.Markers()
}

func (s *Session) Options() throttle.Options {
	return s.engine.Options()
}

// Subscribe registers fn for every name. The returned function removes all
// registrations.
func (s *Session) Subscribe(names []types.EventName, fn throttle.Listener) (func(), error) {
	var cancels []func()
	cancelAll := func() {
		for _, cancel := range cancels {
			cancel()
		}
	}

	for _, name := range names {
		cancel, err := s.engine.On(name, fn)
		if err != nil {
			cancelAll()
			return nil, err
		}
		cancels = append(cancels, cancel)
	}
	return cancelAll, nil
}

// Close stops the session's engine on the event loop, so no publish is in
// flight once it returns. It is safe to call more than once, but not from a
// listener.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if !s.loop.Do(s.engine.Close) {
			s.engine.Close()
		}
		utils.Verbose("session %s closed", s.ID)
	})
}

// SessionInfo is the summary returned by the sessions list.
type SessionInfo struct {
	SessionID string `json:"sessionId"`
	CreatedAt string `json:"createdAt"`
}

// StoreConfig configures a SessionStore.
type StoreConfig struct {
	MaxSessions   int
	FrameInterval time.Duration
	Defaults      throttle.Options
}

// SessionStore owns the event loop shared by all sessions and a bounded set
// of sessions keyed by ID.
type SessionStore struct {
	loop     *platform.Loop
	defaults throttle.Options
	sessions *lru.Cache[string, *Session]
}

func NewSessionStore(cfg StoreConfig) (*SessionStore, error) {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if err := cfg.Defaults.Validate(); err != nil {
		return nil, err
	}

	cache, err := lru.NewWithEvict(cfg.MaxSessions, func(id string, session *Session) {
		session.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}

	return &SessionStore{
		loop:     platform.NewLoop(cfg.FrameInterval),
		defaults: cfg.Defaults,
		sessions: cache,
	}, nil
}

// Create configures a new engine over a fresh viewport seeded with initial.
func (st *SessionStore) Create(params OptionsParams, initial platform.Metrics) (*Session, error) {
	viewport := platform.NewViewport(st.loop)
	viewport.Seed(initial)

	engine, err := throttle.Configure(throttle.Environment{
		Source:    viewport,
		Measurer:  viewport,
		Scheduler: st.loop,
		Marker:    viewport,
	}, params.Apply(st.defaults))
	if err != nil {
		if engine != nil {
			engine.Close()
		}
		return nil, err
	}

	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		engine:    engine,
		viewport:  viewport,
		loop:      st.loop,
	}
	if evicted := st.sessions.Add(session.ID, session); evicted {
		utils.Verbose("session limit reached, least recently used session closed")
	}
	utils.Verbose("session %s created", session.ID)
	return session, nil
}

// Get returns a live session and marks it as recently used.
func (st *SessionStore) Get(id string) (*Session, error) {
	session, ok := st.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	return session, nil
}

// Remove closes and forgets a session. It reports whether the session existed.
func (st *SessionStore) Remove(id string) bool {
	return st.sessions.Remove(id)
}

// List returns all live sessions, oldest first.
func (st *SessionStore) List() []SessionInfo {
	sessions := st.sessions.Values()
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	infos := make([]SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, SessionInfo{
			SessionID: session.ID,
			CreatedAt: session.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	return infos
}

// Len reports the number of live sessions.
func (st *SessionStore) Len() int {
	return st.sessions.Len()
}

// CloseAll closes every session and stops the event loop.
func (st *SessionStore) CloseAll() {
	st.sessions.Purge()
	st.loop.Stop()
}
