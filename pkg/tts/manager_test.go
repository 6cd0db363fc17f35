package tts

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

// scriptedEngine reports a fixed readiness and records invocations.
type scriptedEngine struct {
	id         string
	readiness  Readiness
	playErr    error
	playCalls  atomic.Int32
	readyCalls atomic.Int32
}

func (e *scriptedEngine) ID() string          { return e.id }
func (e *scriptedEngine) DisplayName() string { return e.id + " engine" }

func (e *scriptedEngine) CheckReady() Readiness {
	e.readyCalls.Add(1)
	return e.readiness
}

func (e *scriptedEngine) SynthesizeAndPlay(context.Context, Request) error {
	e.playCalls.Add(1)
	return e.playErr
}

func TestManagerValidatesBeforeTouchingEngines(t *testing.T) {
	e := &scriptedEngine{id: "a"}
	m := NewManager(nil, e)

	if _, err := m.Play(context.Background(), "  ", DefaultSpeed, ""); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Play(empty) error = %v, expected ErrEmptyText", err)
	}
	if _, err := m.Play(context.Background(), "hi", 9.0, ""); !errors.Is(err, ErrSpeedOutOfRange) {
		t.Errorf("Play(speed 9) error = %v, expected ErrSpeedOutOfRange", err)
	}

	if got := e.readyCalls.Load(); got != 0 {
		t.Errorf("CheckReady called %d times for invalid input, expected 0", got)
	}
	if got := e.playCalls.Load(); got != 0 {
		t.Errorf("engine invoked %d times for invalid input, expected 0", got)
	}
}

func TestManagerSelectEngine(t *testing.T) {
	a := &scriptedEngine{id: "a"}
	b := &scriptedEngine{id: "b"}
	m := NewManager(nil, a, b)

	if err := m.SelectEngine("b"); err != nil {
		t.Fatalf("SelectEngine failed: %v", err)
	}
	if got := m.SelectedEngine(); got != "b" {
		t.Errorf("SelectedEngine() = %q, expected %q", got, "b")
	}

	if err := m.SelectEngine("nope"); !errors.Is(err, ErrUnknownEngine) {
		t.Errorf("SelectEngine(nope) error = %v, expected ErrUnknownEngine", err)
	}
	if got := m.SelectedEngine(); got != "b" {
		t.Errorf("failed selection changed the selection to %q", got)
	}

	if err := m.SelectEngine(""); err != nil {
		t.Fatalf("clearing the selection failed: %v", err)
	}
	if got := m.SelectedEngine(); got != "" {
		t.Errorf("SelectedEngine() after clearing = %q, expected empty", got)
	}
}

func TestManagerFallsBackToFirstReadyEngine(t *testing.T) {
	a := &scriptedEngine{id: "a", readiness: NotInstalled}
	b := &scriptedEngine{id: "b", readiness: Ready}
	m := NewManager(nil, a, b)

	results, err := m.Play(context.Background(), "hello", DefaultSpeed, "")
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	res := <-results
	if res.Err != nil {
		t.Fatalf("Result.Err = %v, expected nil", res.Err)
	}
	if res.EngineID != "b" {
		t.Errorf("played on %q, expected fallback to %q", res.EngineID, "b")
	}
	if got := a.playCalls.Load(); got != 0 {
		t.Errorf("unready engine invoked %d times, expected 0", got)
	}
}

func TestManagerRejectsUnreadySelection(t *testing.T) {
	a := &scriptedEngine{id: "a", readiness: AssetMissing}
	m := NewManager(nil, a)
	if err := m.SelectEngine("a"); err != nil {
		t.Fatalf("SelectEngine failed: %v", err)
	}

	_, err := m.Play(context.Background(), "hello", DefaultSpeed, "")
	if !errors.Is(err, ErrAssetMissing) {
		t.Fatalf("Play error = %v, expected ErrAssetMissing", err)
	}
	if got := a.playCalls.Load(); got != 0 {
		t.Errorf("engine invoked %d times despite failing readiness, expected 0", got)
	}
}

func TestManagerWithoutEngines(t *testing.T) {
	m := NewManager(nil)
	if _, err := m.Play(context.Background(), "hello", DefaultSpeed, ""); !errors.Is(err, ErrEngineUnavailable) {
		t.Errorf("Play error = %v, expected ErrEngineUnavailable", err)
	}
}

func TestManagerListEngines(t *testing.T) {
	a := &scriptedEngine{id: "a", readiness: Ready}
	b := &scriptedEngine{id: "b", readiness: AssetMissing}
	m := NewManager(nil, a, b)

	infos := m.ListEngines()
	if len(infos) != 2 {
		t.Fatalf("ListEngines() returned %d engines, expected 2", len(infos))
	}
	if infos[0].ID != "a" || infos[1].ID != "b" {
		t.Errorf("engines listed out of registration order: %v", infos)
	}
	if infos[1].Readiness != AssetMissing {
		t.Errorf("Readiness = %v, expected %v", infos[1].Readiness, AssetMissing)
	}
	if infos[0].DisplayName != "a engine" {
		t.Errorf("DisplayName = %q, expected %q", infos[0].DisplayName, "a engine")
	}
}

func TestManagerStopInterruptsPlayback(t *testing.T) {
	e := newBlockingEngine("a")
	m := NewManager(nil, e)

	results, err := m.Play(context.Background(), "hello", DefaultSpeed, "")
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	<-e.started

	if got := m.State(); got != StateSpeaking {
		t.Errorf("State() = %v, expected %v", got, StateSpeaking)
	}

	m.Stop()
	res := <-results
	if !errors.Is(res.Err, ErrCancelled) {
		t.Errorf("Result.Err = %v, expected ErrCancelled", res.Err)
	}
	if got := m.State(); got != StateIdle {
		t.Errorf("State() after Stop = %v, expected %v", got, StateIdle)
	}
}

func TestManagerEngineLookup(t *testing.T) {
	a := &scriptedEngine{id: "a"}
	m := NewManager(nil, a)

	if got, ok := m.Engine("a"); !ok || got != Engine(a) {
		t.Errorf("Engine(a) = %v, %v, expected the registered engine", got, ok)
	}
	if _, ok := m.Engine("missing"); ok {
		t.Error("Engine(missing) reported ok")
	}
}

func TestManagerFetchVoiceAssetWithoutStore(t *testing.T) {
	m := NewManager(nil)
	if err := m.FetchVoiceAsset(context.Background(), nil); err == nil {
		t.Fatal("expected an error when no voice store is configured")
	}
}
