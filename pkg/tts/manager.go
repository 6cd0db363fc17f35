package tts

import (
	"context"
	"fmt"
	"sync"
)

// Manager ties the engines, the voice store, and the playback session
// together behind the API the CLI and the UI call. It owns engine
// selection; everything else is delegated.
type Manager struct {
	mu       sync.Mutex
	engines  []Engine
	byID     map[string]Engine
	selected string

	session *Session
	store   *VoiceStore
}

// NewManager assembles a manager over the given engines. Engine order is
// preserved and used as preference order when no engine is selected
// explicitly. The store may be nil when voice management is not needed,
// e.g. in tests that only use the online engine.
func NewManager(store *VoiceStore, engines ...Engine) *Manager {
	byID := make(map[string]Engine, len(engines))
	for _, e := range engines {
		byID[e.ID()] = e
	}
	return &Manager{
		engines: engines,
		byID:    byID,
		session: NewSession(),
		store:   store,
	}
}

// ListEngines reports every engine with its current readiness, in
// registration order.
func (m *Manager) ListEngines() []EngineInfo {
	m.mu.Lock()
	engines := m.engines
	m.mu.Unlock()

	infos := make([]EngineInfo, 0, len(engines))
	for _, e := range engines {
		infos = append(infos, EngineInfo{
			ID:          e.ID(),
			DisplayName: e.DisplayName(),
			Readiness:   e.CheckReady(),
		})
	}
	return infos
}

// SelectEngine pins playback to the engine with the given id. Selection is
// allowed regardless of readiness; an unready engine is rejected at play
// time with its readiness error. An empty id clears the selection.
func (m *Manager) SelectEngine(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "" {
		m.selected = ""
		return nil
	}
	if _, ok := m.byID[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEngine, id)
	}
	m.selected = id
	return nil
}

// SelectedEngine returns the id of the pinned engine, or "" when playback
// falls through to the first ready engine.
func (m *Manager) SelectedEngine() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// Engine returns the engine registered under id.
func (m *Manager) Engine(id string) (Engine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byID[id]
	return e, ok
}

// pick resolves which engine a play request should use: the pinned engine
// if one is set, otherwise the first engine reporting Ready, otherwise the
// first engine so the caller gets that engine's readiness error.
func (m *Manager) pick() (Engine, error) {
	m.mu.Lock()
	selected := m.selected
	engines := m.engines
	m.mu.Unlock()

	if selected != "" {
		return m.byID[selected], nil
	}
	for _, e := range engines {
		if e.CheckReady() == Ready {
			return e, nil
		}
	}
	if len(engines) > 0 {
		return engines[0], nil
	}
	return nil, ErrEngineUnavailable
}

// Play validates the inputs, checks the chosen engine's readiness, and
// starts an asynchronous playback run. The returned channel delivers
// exactly one Result. Invalid input is rejected before any engine is
// consulted, and an unready engine is rejected before it is invoked.
func (m *Manager) Play(ctx context.Context, text string, speed float64, language string) (<-chan Result, error) {
	req, err := NewRequest(text, speed, language)
	if err != nil {
		return nil, err
	}

	engine, err := m.pick()
	if err != nil {
		return nil, err
	}
	if err := engine.CheckReady().Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", engine.ID(), err)
	}

	return m.session.Start(ctx, engine, req)
}

// Stop interrupts the current playback, if any, and returns once the
// worker has exited.
func (m *Manager) Stop() {
	m.session.Stop()
}

// State reports the playback session state.
func (m *Manager) State() SessionState {
	return m.session.State()
}

// VoiceStore exposes the store backing the offline engine's voice assets.
// It returns nil when the manager was built without one.
func (m *Manager) VoiceStore() *VoiceStore {
	return m.store
}

// FetchVoiceAsset downloads the configured voice model and its config into
// the voice store, reporting progress through onProgress. It is safe to
// call while an engine reports AssetMissing; when it returns nil the
// offline engine's asset probe will pass.
func (m *Manager) FetchVoiceAsset(ctx context.Context, onProgress func(string)) error {
	if m.store == nil {
		return fmt.Errorf("no voice store configured")
	}
	return m.store.Download(ctx, onProgress)
}
