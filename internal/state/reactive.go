// Package state implements the reactive event graph of spec §4.E: typed
// events feed reducer bindings on stores, watchers observe store changes.
// The whole graph is single-threaded — every Emit call must originate on
// the owning goroutine (normally the REPL's main loop); cross-thread
// updates go through the process-wide atomics in internal/term instead,
// per spec §5.
package state

// Phase is the observable high-level activity of the agent loop.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseStreaming      Phase = "streaming"
	PhaseExecutingTools Phase = "executing_tools"
	PhaseAwaitingPerm   Phase = "awaiting_permission"
)

// Permission is the gate between tool risk and execution (spec §4.C).
type Permission string

const (
	PermissionNone     Permission = "none"
	PermissionSafeOnly Permission = "safe_only"
	PermissionAll      Permission = "all"
)

// TokenUsage is the payload of a tokens_received event.
type TokenUsage struct {
	Prompt       uint64
	Completion   uint64
	Reasoning    uint64
	CacheRead    uint64
	CacheWrite   uint64
}

// TermSize is the payload of a terminal_resized event.
type TermSize struct {
	Rows, Cols uint16
}

// Store holds one typed value plus watchers notified every time a reducer
// writes it, whether or not the value changed.
type Store[T any] struct {
	value    T
	watchers []func(T)
}

// NewStore creates a store with an initial value.
func NewStore[T any](initial T) *Store[T] {
	return &Store[T]{value: initial}
}

// Get returns the current value.
func (s *Store[T]) Get() T { return s.value }

// Watch registers a side-effect run after the store settles.
func (s *Store[T]) Watch(fn func(T)) { s.watchers = append(s.watchers, fn) }

// set updates the value and fires this store's watchers at once; an Emit
// that writes several stores through set runs each store's watchers before
// the next store is written. Unexported: only Graph reducers may mutate a
// store.
func (s *Store[T]) set(v T) {
	s.value = v
	for _, w := range s.watchers {
		w(v)
	}
}

// Graph is the single-threaded event-dispatch engine. It owns every store
// used by the REPL driver and exposes one Emit* method per event in the
// table of spec §4.E.
type Graph struct {
	PromptTokens     *Store[uint64]
	CompletionTokens *Store[uint64]
	TotalTokens      *Store[uint64]
	Permission       *Store[Permission]
	TermRows         *Store[uint16]
	TermCols         *Store[uint16]
	Phase            *Store[Phase]
	Cancelled        *Store[bool]
}

// New builds a Graph with all stores at their zero/idle defaults.
func New() *Graph {
	return &Graph{
		PromptTokens:     NewStore[uint64](0),
		CompletionTokens: NewStore[uint64](0),
		TotalTokens:      NewStore[uint64](0),
		Permission:       NewStore(PermissionNone),
		TermRows:         NewStore[uint16](24),
		TermCols:         NewStore[uint16](80),
		Phase:            NewStore(PhaseIdle),
		Cancelled:        NewStore(false),
	}
}

// EmitTokensReceived runs the prompt/completion/total reducers and fires
// their watchers, in registration order (reducers, then derive, then
// watchers — spec §4.E table row 1).
func (g *Graph) EmitTokensReceived(u TokenUsage) {
	g.PromptTokens.value += u.Prompt
	g.CompletionTokens.value += u.Completion
	g.TotalTokens.value = g.PromptTokens.value + g.CompletionTokens.value
	for _, s := range []*Store[uint64]{g.PromptTokens, g.CompletionTokens, g.TotalTokens} {
		for _, w := range s.watchers {
			w(s.value)
		}
	}
}

// EmitPermissionGranted sets the permission store.
func (g *Graph) EmitPermissionGranted(p Permission) {
	g.Permission.set(p)
}

// EmitTerminalResized sets rows/cols and fires layout watchers.
func (g *Graph) EmitTerminalResized(sz TermSize) {
	g.TermRows.set(sz.Rows)
	g.TermCols.set(sz.Cols)
}

// EmitPhaseChanged sets the phase and clears cancelled when returning to
// idle, per spec §4.E.
func (g *Graph) EmitPhaseChanged(p Phase) {
	g.Phase.set(p)
	if p == PhaseIdle {
		g.Cancelled.set(false)
	}
}

// EmitCancelRequested sets the cancelled store.
func (g *Graph) EmitCancelRequested() {
	g.Cancelled.set(true)
}

// EmitUserMessageSent resets per-turn counters owned by the caller. The
// graph itself holds no per-turn state to reset; this exists so callers
// have one place to route the event per spec's table.
func (g *Graph) EmitUserMessageSent() {}
