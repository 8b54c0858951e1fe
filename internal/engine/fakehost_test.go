package engine

import (
	"context"
	"sync"

	"github.com/briarwatch/survivalcore/internal/hostport"
)

// fakeHost is a minimal in-memory hostport.HostAdapter test double: every
// player is always "ready", activity inputs and effects are driven
// directly by the test, and ScheduleOnHostThread runs its closure
// synchronously (the spec never requires deferred execution, only that
// the engine never assumes it -- running inline is a legal, simpler
// execution order a real host is free to pick).
type fakeHost struct {
	mu sync.Mutex

	activity map[string]hostport.ActivityInputs
	effects  map[string][]hostport.ActiveEffect

	statMaxCalls   []statMaxCall
	removedMaxKeys []string
	speedCalls     []float64
	speedResets    int
	damageCalls    []damageCall
	staminaDrains  []float64
	healthRestores []float64
	chats          []chatCall
	scheduledCount int
}

type statMaxCall struct {
	stat   hostport.StatKind
	key    string
	mode   hostport.ModifierMode
	amount float64
}

type damageCall struct {
	amount float64
	cause  string
}

type chatCall struct {
	text     string
	colorTag string
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		activity: make(map[string]hostport.ActivityInputs),
		effects:  make(map[string][]hostport.ActiveEffect),
	}
}

func (f *fakeHost) setActivity(playerID string, in hostport.ActivityInputs) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activity[playerID] = in
}

func (f *fakeHost) setEffects(playerID string, effs []hostport.ActiveEffect) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.effects[playerID] = effs
}

func (f *fakeHost) ReadActivityInputs(ctx context.Context, playerID string) (hostport.ActivityInputs, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in := f.activity[playerID]
	return in, true, nil
}

func (f *fakeHost) ReadActiveEffects(ctx context.Context, playerID string) ([]hostport.ActiveEffect, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.effects[playerID], true, nil
}

func (f *fakeHost) ApplyStatMaxModifier(ctx context.Context, playerID string, stat hostport.StatKind, key string, mode hostport.ModifierMode, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statMaxCalls = append(f.statMaxCalls, statMaxCall{stat: stat, key: key, mode: mode, amount: amount})
	return nil
}

func (f *fakeHost) RemoveStatMaxModifier(ctx context.Context, playerID string, stat hostport.StatKind, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removedMaxKeys = append(f.removedMaxKeys, key)
	return nil
}

func (f *fakeHost) SetBaseSpeed(ctx context.Context, playerID string, multiplier float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speedCalls = append(f.speedCalls, multiplier)
	return nil
}

func (f *fakeHost) ResetBaseSpeed(ctx context.Context, playerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speedResets++
	return nil
}

func (f *fakeHost) ApplyDamage(ctx context.Context, playerID string, amount float64, cause string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.damageCalls = append(f.damageCalls, damageCall{amount: amount, cause: cause})
	return nil
}

func (f *fakeHost) RestoreHealthFraction(ctx context.Context, playerID string, fraction float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthRestores = append(f.healthRestores, fraction)
	return nil
}

func (f *fakeHost) DrainStamina(ctx context.Context, playerID string, amount float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staminaDrains = append(f.staminaDrains, amount)
	return nil
}

func (f *fakeHost) SendChat(ctx context.Context, playerID string, text string, colorTag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats = append(f.chats, chatCall{text: text, colorTag: colorTag})
	return nil
}

func (f *fakeHost) ScheduleOnHostThread(ctx context.Context, action hostport.HostAction) error {
	f.mu.Lock()
	f.scheduledCount++
	f.mu.Unlock()
	action.Run()
	return nil
}
