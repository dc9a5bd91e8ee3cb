package core

import (
	"testing"
	"time"
)

func newTestLedger(start time.Time) (*Ledger, *time.Time) {
	now := start
	l := NewLedger()
	l.Now = func() time.Time { return now }
	return l, &now
}

func TestLedger_TryBeginScoped_ExclusiveUntilEnd(t *testing.T) {
	t.Parallel()
	l, _ := newTestLedger(time.Unix(1000, 0))
	key := Key{Kind: FetchCreatures, Scope: "u1"}

	if !l.TryBeginScoped(key, TreeThrottle) {
		t.Fatalf("first begin refused")
	}
	if l.TryBeginScoped(key, TreeThrottle) {
		t.Fatalf("second begin succeeded without an intervening End")
	}
	l.End(key)
	if !l.TryBeginScoped(key, TreeThrottle) {
		t.Fatalf("begin refused after End")
	}
}

func TestLedger_End_IdempotentAndAlwaysReleases(t *testing.T) {
	t.Parallel()
	l, _ := newTestLedger(time.Unix(1000, 0))
	keys := []Key{
		{Kind: FetchCreatures, Scope: "a"},
		{Kind: FetchLocations, Scope: "a"},
		{Kind: FetchChapters, Scope: "n1"},
	}
	for _, k := range keys {
		if !l.TryBeginScoped(k, TreeThrottle) {
			t.Fatalf("begin %v refused", k)
		}
	}
	for _, k := range keys {
		l.End(k)
		l.End(k) // idempotent
	}
	if got := l.InProgressCount(); got != 0 {
		t.Fatalf("in-progress set not empty after ends: %d", got)
	}
}

func TestLedger_ScopedThrottle_RunsAgainstScopeLoadTime(t *testing.T) {
	t.Parallel()
	l, now := newTestLedger(time.Unix(1000, 0))
	key := Key{Kind: FetchScenes, Scope: "c1"}

	if !l.TryBeginScoped(key, TreeThrottle) {
		t.Fatalf("initial begin refused")
	}
	l.End(key)
	l.MarkLoaded(key)

	*now = now.Add(100 * time.Millisecond)
	if l.TryBeginScoped(key, TreeThrottle) {
		t.Fatalf("begin allowed inside throttle window")
	}
	*now = now.Add(TreeThrottle)
	if !l.TryBeginScoped(key, TreeThrottle) {
		t.Fatalf("begin refused after throttle elapsed")
	}
}

func TestLedger_GlobalThrottle_RecordedAtBegin(t *testing.T) {
	t.Parallel()
	l, now := newTestLedger(time.Unix(1000, 0))

	if !l.TryBeginGlobal(FetchUniverses, TreeThrottle) {
		t.Fatalf("initial begin refused")
	}
	l.End(Key{Kind: FetchUniverses})

	// The attempt is recorded at begin time, so even a failed fetch is
	// throttled.
	*now = now.Add(100 * time.Millisecond)
	if l.TryBeginGlobal(FetchUniverses, TreeThrottle) {
		t.Fatalf("begin allowed inside throttle window")
	}
	*now = now.Add(TreeThrottle)
	if !l.TryBeginGlobal(FetchUniverses, TreeThrottle) {
		t.Fatalf("begin refused after throttle elapsed")
	}
}

func TestLedger_Invalidate_ExpiresThrottleWithoutFetching(t *testing.T) {
	t.Parallel()
	l, _ := newTestLedger(time.Unix(1000, 0))
	key := Key{Kind: FetchCreatures, Scope: "u1"}

	if !l.TryBeginScoped(key, TreeThrottle) {
		t.Fatalf("begin refused")
	}
	l.End(key)
	l.MarkLoaded(key)

	// Freshly loaded: gated by throttle.
	if l.TryBeginScoped(key, TreeThrottle) {
		t.Fatalf("begin allowed immediately after load")
	}

	l.Invalidate(key, TreeThrottle)
	if _, ok := l.LoadedFor(key); ok {
		t.Fatalf("loaded marker survived invalidation")
	}
	if !l.TryBeginScoped(key, TreeThrottle) {
		t.Fatalf("begin refused after invalidation")
	}
}

func TestLedger_Invalidate_ClearsInProgress(t *testing.T) {
	t.Parallel()
	l, _ := newTestLedger(time.Unix(1000, 0))
	key := Key{Kind: FetchChapters, Scope: "n1"}

	if !l.TryBeginScoped(key, TreeThrottle) {
		t.Fatalf("begin refused")
	}
	l.Invalidate(key, TreeThrottle)
	if l.InProgress(key) {
		t.Fatalf("in-progress gate survived invalidation")
	}
}
