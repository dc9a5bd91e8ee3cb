package core

import "time"

// Throttle windows between successive fetch attempts for one key.
const (
	// TreeThrottle gates reloads of entity collections.
	TreeThrottle = 800 * time.Millisecond
	// AutosaveDebounce is the quiet period before a scene edit commits.
	AutosaveDebounce = 800 * time.Millisecond
	// CreateDebounce is the quiet period for rapid create flows.
	CreateDebounce = 1000 * time.Millisecond
)

// Key identifies one gated fetch: an entity kind plus the parent scope
// its collection belongs to. Global kinds use an empty scope.
type Key struct {
	Kind  FetchKind
	Scope string
}

// Ledger tracks which fetches are in flight and when each scope last
// loaded successfully. At most one fetch per key may be outstanding;
// a key that began must always End, whatever the outcome, or the scope
// locks out permanently.
type Ledger struct {
	Now func() time.Time

	inProgress  map[Key]struct{}
	loadedFor   map[Key]time.Time
	lastAttempt map[FetchKind]time.Time
}

func NewLedger() *Ledger {
	return &Ledger{
		Now:         time.Now,
		inProgress:  map[Key]struct{}{},
		loadedFor:   map[Key]time.Time{},
		lastAttempt: map[FetchKind]time.Time{},
	}
}

// TryBeginGlobal gates kinds with a single shared collection
// (universes, boards, trash). The throttle runs against the last
// attempt, recorded at begin time, so a failing fetch cannot spin.
func (l *Ledger) TryBeginGlobal(kind FetchKind, throttle time.Duration) bool {
	key := Key{Kind: kind}
	if _, busy := l.inProgress[key]; busy {
		return false
	}
	now := l.Now()
	if last, ok := l.lastAttempt[kind]; ok && now.Sub(last) < throttle {
		return false
	}
	l.lastAttempt[kind] = now
	l.inProgress[key] = struct{}{}
	return true
}

// TryBeginScoped gates per-scope collections. The throttle runs
// against the scope's own last successful load.
func (l *Ledger) TryBeginScoped(key Key, throttle time.Duration) bool {
	if _, busy := l.inProgress[key]; busy {
		return false
	}
	if loaded, ok := l.loadedFor[key]; ok && l.Now().Sub(loaded) < throttle {
		return false
	}
	l.inProgress[key] = struct{}{}
	return true
}

// End releases the gate. Idempotent; must run on every terminal
// outcome, including responses discarded as stale.
func (l *Ledger) End(key Key) {
	delete(l.inProgress, key)
}

// MarkLoaded records a successful load for the scope.
func (l *Ledger) MarkLoaded(key Key) {
	l.loadedFor[key] = l.Now()
}

// LoadedFor reports whether (and when) the scope last loaded.
func (l *Ledger) LoadedFor(key Key) (time.Time, bool) {
	t, ok := l.loadedFor[key]
	return t, ok
}

// InProgress reports whether a fetch for key is outstanding.
func (l *Ledger) InProgress(key Key) bool {
	_, ok := l.inProgress[key]
	return ok
}

// InProgressCount is used by tests and diagnostics.
func (l *Ledger) InProgressCount() int {
	return len(l.inProgress)
}

// Invalidate clears the scope's loaded marker, drops any in-progress
// gate for it, and backdates the kind's last attempt past the throttle
// window. Bookkeeping only: the next orchestration pass refetches.
func (l *Ledger) Invalidate(key Key, throttle time.Duration) {
	delete(l.loadedFor, key)
	delete(l.inProgress, key)
	l.lastAttempt[key.Kind] = l.Now().Add(-(throttle + time.Millisecond))
}

// InvalidateKind expires every scope of one kind.
func (l *Ledger) InvalidateKind(kind FetchKind, throttle time.Duration) {
	for key := range l.loadedFor {
		if key.Kind == kind {
			delete(l.loadedFor, key)
		}
	}
	l.lastAttempt[kind] = l.Now().Add(-(throttle + time.Millisecond))
}

// InvalidateAll expires every loaded marker and attempt record without
// touching in-progress gates, so outstanding responses still release
// normally.
func (l *Ledger) InvalidateAll(throttle time.Duration) {
	past := l.Now().Add(-(throttle + time.Millisecond))
	for key := range l.loadedFor {
		delete(l.loadedFor, key)
	}
	for kind := range l.lastAttempt {
		l.lastAttempt[kind] = past
	}
}
