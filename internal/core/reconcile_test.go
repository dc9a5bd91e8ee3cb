package core

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"fabledesk/internal/model"
)

var errFake = errors.New("exec failed")

func testState() (*State, Deps, *time.Time) {
	now := time.Unix(1_700_000_000, 0)
	s := NewState()
	s.Ledger.Now = func() time.Time { return now }
	deps := Deps{Now: func() time.Time { return now }}
	return s, deps, &now
}

// drain applies a message and resolves no effects; callers inspect the
// state and returned effects directly.
func drain(s *State, deps Deps, msgs ...Msg) []Effect {
	var last []Effect
	for _, m := range msgs {
		last = Update(s, m, deps)
	}
	return last
}

func TestMerge_LocalWinsOnIDCollision(t *testing.T) {
	t.Parallel()
	s, deps, _ := testState()
	s.ActiveNovelID = "n1"
	s.Novels = []model.Novel{{ID: "n1", Title: "Saltglass"}}

	// Locally held chapters for the same scope: B edited, C created.
	s.ChaptersByNovel["n1"] = []model.Chapter{
		{ID: "B", NovelID: "n1", Title: "B local", Position: 2000},
		{ID: "C", NovelID: "n1", Title: "C local", Position: 3000},
	}

	drain(s, deps, ChaptersFetched{
		NovelID: "n1",
		Chapters: []model.Chapter{
			{ID: "A", NovelID: "n1", Title: "A fetched", Position: 1000},
			{ID: "B", NovelID: "n1", Title: "B stale", Position: 2000},
		},
	})

	got := s.ChaptersByNovel["n1"]
	want := []model.Chapter{
		{ID: "A", NovelID: "n1", Title: "A fetched", Position: 1000},
		{ID: "B", NovelID: "n1", Title: "B local", Position: 2000},
		{ID: "C", NovelID: "n1", Title: "C local", Position: 3000},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("merged chapters = %+v, want %+v", got, want)
	}
	if !reflect.DeepEqual(s.ActiveChapters, want) {
		t.Fatalf("active view not hydrated from merge: %+v", s.ActiveChapters)
	}
	if s.ActiveChapterID != "A" {
		t.Fatalf("expected default-selected first chapter, got %q", s.ActiveChapterID)
	}
}

func TestMerge_SortIsDeterministicAcrossFetches(t *testing.T) {
	t.Parallel()
	s, deps, _ := testState()
	s.ActiveNovelID = "n1"
	s.Novels = []model.Novel{{ID: "n1"}}

	fetched := []model.Chapter{
		{ID: "z", NovelID: "n1", Position: 1000},
		{ID: "a", NovelID: "n1", Position: 1000},
	}
	drain(s, deps, ChaptersFetched{NovelID: "n1", Chapters: fetched})
	first := append([]model.Chapter(nil), s.ChaptersByNovel["n1"]...)

	invalidateChapters(s, "n1")
	drain(s, deps, ChaptersFetched{NovelID: "n1", Chapters: []model.Chapter{fetched[1], fetched[0]}})
	if !reflect.DeepEqual(first, s.ChaptersByNovel["n1"]) {
		t.Fatalf("merge order changed across fetches: %+v vs %+v", first, s.ChaptersByNovel["n1"])
	}
	if first[0].ID != "a" {
		t.Fatalf("equal positions should tie-break by id, got %q first", first[0].ID)
	}
}

func TestSafeFallback_Idempotent(t *testing.T) {
	t.Parallel()
	s, _, _ := testState()
	s.Novels = []model.Novel{{ID: "n1"}, {ID: "n2"}}
	s.ChaptersByNovel["n1"] = []model.Chapter{{ID: "c1", NovelID: "n1"}}
	s.ScenesByChapter["c1"] = []model.Scene{{ID: "s1", ChapterID: "c1"}}
	s.ActiveNovelID = "gone"
	s.ActiveChapterID = "gone"
	s.ActiveSceneID = "gone"
	s.EditorBody = "unsaved"
	s.EditorDirty = true

	ensureForgeSafeFallback(s)
	once := *s
	onceChapters := append([]model.Chapter(nil), s.ActiveChapters...)
	onceScenes := append([]model.Scene(nil), s.ActiveScenes...)

	ensureForgeSafeFallback(s)
	if !reflect.DeepEqual(once.ActiveNovelID, s.ActiveNovelID) ||
		!reflect.DeepEqual(once.ActiveChapterID, s.ActiveChapterID) ||
		!reflect.DeepEqual(once.ActiveSceneID, s.ActiveSceneID) ||
		once.DebounceToken != s.DebounceToken ||
		!reflect.DeepEqual(onceChapters, s.ActiveChapters) ||
		!reflect.DeepEqual(onceScenes, s.ActiveScenes) {
		t.Fatalf("second repair changed state: %+v -> novel=%s chapter=%s scene=%s",
			once.ActiveNovelID, s.ActiveNovelID, s.ActiveChapterID, s.ActiveSceneID)
	}
}

func TestSafeFallback_RepairsDanglingChainAndHydratesViews(t *testing.T) {
	t.Parallel()
	s, _, _ := testState()
	s.Novels = []model.Novel{{ID: "n1"}}
	s.ChaptersByNovel["n1"] = []model.Chapter{{ID: "c1", NovelID: "n1"}, {ID: "c2", NovelID: "n1"}}
	s.ScenesByChapter["c1"] = []model.Scene{{ID: "s1", ChapterID: "c1", Body: "text"}}
	s.ActiveNovelID = "deleted-novel"

	ensureForgeSafeFallback(s)

	if s.ActiveNovelID != "n1" {
		t.Fatalf("novel not reset to first available: %q", s.ActiveNovelID)
	}
	if !s.ExpandedNovels["n1"] {
		t.Fatalf("repaired novel not expanded")
	}
	if len(s.ActiveChapters) != 2 {
		t.Fatalf("chapter view not hydrated from tree: %+v", s.ActiveChapters)
	}
	if s.ActiveChapterID != "c1" {
		t.Fatalf("chapter not defaulted to first: %q", s.ActiveChapterID)
	}
	if len(s.ActiveScenes) != 1 || s.ActiveSceneID != "s1" {
		t.Fatalf("scene chain not repaired: scenes=%+v selected=%q", s.ActiveScenes, s.ActiveSceneID)
	}
}

func TestSafeFallback_NoNovelsClearsEverything(t *testing.T) {
	t.Parallel()
	s, _, _ := testState()
	s.ActiveNovelID = "gone"
	s.ActiveChapterID = "gone"
	s.ActiveSceneID = "gone"
	s.EditorBody = "text"
	s.EditorDirty = true

	ensureForgeSafeFallback(s)

	if s.ActiveNovelID != "" || s.ActiveChapterID != "" || s.ActiveSceneID != "" {
		t.Fatalf("selections not cleared: %q %q %q", s.ActiveNovelID, s.ActiveChapterID, s.ActiveSceneID)
	}
	if s.EditorBody != "" || s.EditorDirty {
		t.Fatalf("editor buffer survived repair")
	}
}

func TestStaleResponse_DiscardedButGateReleased(t *testing.T) {
	t.Parallel()
	s, deps, _ := testState()
	s.Universes = []model.Universe{{ID: "A"}, {ID: "B"}}

	// Navigate to A's bestiary; orchestrator begins the creature fetch.
	effects := drain(s, deps, Navigate{Route: RouteBestiary, UniverseID: "A"})
	if !hasFetch(effects, FetchCreatures, "A") {
		t.Fatalf("expected creatures fetch for A, got %+v", effects)
	}

	// User navigates to B before A's response arrives.
	drain(s, deps, Navigate{Route: RouteBestiary, UniverseID: "B"})

	// A's response lands late.
	drain(s, deps, CreaturesFetched{
		UniverseID: "A",
		Creatures:  []model.Creature{{ID: "x", UniverseID: "A", Name: "Ash Wyrm"}},
	})

	if s.LoadedCreaturesUniverse == "A" {
		t.Fatalf("stale scope applied as loaded marker")
	}
	for _, c := range s.Creatures {
		if c.UniverseID == "A" {
			t.Fatalf("stale creature data applied: %+v", s.Creatures)
		}
	}
	if s.Ledger.InProgress(Key{Kind: FetchCreatures, Scope: "A"}) {
		t.Fatalf("gating key for stale fetch not released")
	}
}

func TestFetchError_ReleasesGateAndSkipsLoadedMarker(t *testing.T) {
	t.Parallel()
	s, deps, _ := testState()
	s.Universes = []model.Universe{{ID: "A"}}
	drain(s, deps, Navigate{Route: RouteBestiary, UniverseID: "A"})

	drain(s, deps, CreaturesFetched{UniverseID: "A", Err: errFake})

	key := Key{Kind: FetchCreatures, Scope: "A"}
	if s.Ledger.InProgress(key) {
		t.Fatalf("gate not released after error")
	}
	if _, ok := s.Ledger.LoadedFor(key); ok {
		t.Fatalf("failed fetch recorded as loaded")
	}
	if s.LoadedCreaturesUniverse == "A" {
		t.Fatalf("failed fetch set the loaded marker")
	}
	if len(s.Toasts) == 0 {
		t.Fatalf("fetch error for the active scope produced no toast")
	}
}

func hasFetch(effects []Effect, kind FetchKind, scope string) bool {
	for _, e := range effects {
		if f, ok := e.(FetchEffect); ok && f.Kind == kind && f.Scope == scope {
			return true
		}
	}
	return false
}
