package simhost

import (
	"context"
	"sync"

	"github.com/briarwatch/survivalcore/internal/hostport"
	"github.com/briarwatch/survivalcore/internal/platform/logger"
)

// activityPayload/effectsPayload are the wire shapes a driver pushes in;
// they mirror hostport.ActivityInputs/ActiveEffect field-for-field so the
// JSON stays self-describing over the wire.
type activityPayload struct {
	IsSprinting bool `json:"is_sprinting"`
	IsSwimming  bool `json:"is_swimming"`
	IsWalking   bool `json:"is_walking"`
	IsJumping   bool `json:"is_jumping"`
}

func (p activityPayload) toInputs() hostport.ActivityInputs {
	return hostport.ActivityInputs{IsSprinting: p.IsSprinting, IsSwimming: p.IsSwimming, IsWalking: p.IsWalking, IsJumping: p.IsJumping}
}

type effectPayload struct {
	EffectID    string `json:"effect_id"`
	EffectIndex int    `json:"effect_index"`
	Variant     int    `json:"variant"`
	RemainingMs int64  `json:"remaining_ms"`
	InitialMs   int64  `json:"initial_ms"`
}

type effectsPayload struct {
	Effects []effectPayload `json:"effects"`
}

func (p effectsPayload) toEffects() []hostport.ActiveEffect {
	out := make([]hostport.ActiveEffect, 0, len(p.Effects))
	for _, e := range p.Effects {
		out = append(out, hostport.ActiveEffect{
			EffectID:    e.EffectID,
			EffectIndex: e.EffectIndex,
			Variant:     hostport.EffectVariant(e.Variant),
			RemainingMs: e.RemainingMs,
			InitialMs:   e.InitialMs,
		})
	}
	return out
}

// Host is a hostport.HostAdapter that treats a connected WebSocket driver
// as the game world: reads come from the last truth the driver pushed,
// writes are broadcast out for the driver to observe and assert on.
type Host struct {
	hub    *Hub
	logger *logger.Logger

	mu                sync.RWMutex
	activity          map[string]hostport.ActivityInputs
	effects           map[string][]hostport.ActiveEffect
	baseSpeedOriginal map[string]float64
}

// NewHost constructs a Host backed by hub.
func NewHost(hub *Hub, log *logger.Logger) *Host {
	return &Host{
		hub:               hub,
		logger:            log,
		activity:          make(map[string]hostport.ActivityInputs),
		effects:           make(map[string][]hostport.ActiveEffect),
		baseSpeedOriginal: make(map[string]float64),
	}
}

// SetActivityInputs records the latest driver-reported activity flags.
func (h *Host) SetActivityInputs(playerID string, inputs hostport.ActivityInputs) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.activity[playerID] = inputs
}

// SetActiveEffects records the latest driver-reported active effect list.
func (h *Host) SetActiveEffects(playerID string, effects []hostport.ActiveEffect) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.effects[playerID] = effects
}

func (h *Host) ReadActivityInputs(ctx context.Context, playerID string) (hostport.ActivityInputs, bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	inputs, ok := h.activity[playerID]
	return inputs, ok, nil
}

func (h *Host) ReadActiveEffects(ctx context.Context, playerID string) ([]hostport.ActiveEffect, bool, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	effects, ok := h.effects[playerID]
	return effects, ok, nil
}

func (h *Host) ApplyStatMaxModifier(ctx context.Context, playerID string, stat hostport.StatKind, key string, mode hostport.ModifierMode, amount float64) error {
	h.hub.Send(MsgModifierApplied, playerID, 0, map[string]any{
		"stat": stat, "key": key, "mode": mode, "amount": amount,
	})
	return nil
}

func (h *Host) RemoveStatMaxModifier(ctx context.Context, playerID string, stat hostport.StatKind, key string) error {
	h.hub.Send(MsgModifierRemoved, playerID, 0, map[string]any{"stat": stat, "key": key})
	return nil
}

func (h *Host) SetBaseSpeed(ctx context.Context, playerID string, multiplier float64) error {
	h.mu.Lock()
	if _, ok := h.baseSpeedOriginal[playerID]; !ok {
		h.baseSpeedOriginal[playerID] = 1.0
	}
	h.mu.Unlock()
	h.hub.Send(MsgSpeedSet, playerID, 0, map[string]any{"multiplier": multiplier})
	return nil
}

func (h *Host) ResetBaseSpeed(ctx context.Context, playerID string) error {
	h.hub.Send(MsgSpeedReset, playerID, 0, nil)
	return nil
}

func (h *Host) ApplyDamage(ctx context.Context, playerID string, amount float64, cause string) error {
	h.hub.Send(MsgDamageApplied, playerID, 0, map[string]any{"amount": amount, "cause": cause})
	return nil
}

func (h *Host) RestoreHealthFraction(ctx context.Context, playerID string, fraction float64) error {
	h.hub.Send(MsgHealthRestored, playerID, 0, map[string]any{"fraction": fraction})
	return nil
}

func (h *Host) DrainStamina(ctx context.Context, playerID string, amount float64) error {
	h.hub.Send(MsgStaminaDrained, playerID, 0, map[string]any{"amount": amount})
	return nil
}

func (h *Host) SendChat(ctx context.Context, playerID string, text string, colorTag string) error {
	h.logger.Chat(playerID, text, colorTag)
	h.hub.Send(MsgChat, playerID, 0, map[string]any{"text": text, "color": colorTag})
	return nil
}

// ScheduleOnHostThread runs action.Run on its own goroutine, simulating a
// host game loop thread that drains a work queue asynchronously -- the
// same "may run later" contract the engine's versioned callers depend on.
func (h *Host) ScheduleOnHostThread(ctx context.Context, action hostport.HostAction) error {
	go func() {
		if ctx.Err() != nil {
			return
		}
		action.Run()
	}()
	return nil
}
