package core

import (
	"testing"
	"time"

	"fabledesk/internal/model"
)

func loadedState() (*State, Deps, *time.Time) {
	s, deps, now := testState()
	s.Universes = []model.Universe{{ID: "u1"}, {ID: "u2"}}
	s.Boards = []model.Board{{ID: "b1"}}
	return s, deps, now
}

func TestFetch_UniversesLoadWheneverEmpty(t *testing.T) {
	t.Parallel()
	s, deps, _ := testState()
	s.Route = RouteTrash
	s.TrashLoaded = true

	effects := drain(s, deps, Tick{Now: deps.now()})
	if !hasFetch(effects, FetchUniverses, "") {
		t.Fatalf("empty universes not requested off the overview: %+v", effects)
	}
}

func TestFetch_BestiaryRequestsCreaturesAndLocations(t *testing.T) {
	t.Parallel()
	s, deps, _ := loadedState()

	effects := drain(s, deps, Navigate{Route: RouteBestiary, UniverseID: "u1"})

	if !hasFetch(effects, FetchCreatures, "u1") {
		t.Fatalf("bestiary did not request creatures: %+v", effects)
	}
	if !hasFetch(effects, FetchLocations, "u1") {
		t.Fatalf("bestiary did not request locations: %+v", effects)
	}
	if hasFetch(effects, FetchEras, "u1") {
		t.Fatalf("bestiary requested timeline data: %+v", effects)
	}
}

func TestFetch_TimelineRequestsErasEventsLocations(t *testing.T) {
	t.Parallel()
	s, deps, _ := loadedState()

	effects := drain(s, deps, Navigate{Route: RouteTimeline, UniverseID: "u1"})

	for _, kind := range []FetchKind{FetchEras, FetchEvents, FetchLocations} {
		if !hasFetch(effects, kind, "u1") {
			t.Fatalf("timeline missing %s fetch: %+v", kind, effects)
		}
	}
}

func TestFetch_ScopedSkipOnlyForExactScope(t *testing.T) {
	t.Parallel()
	s, deps, _ := loadedState()

	drain(s, deps, Navigate{Route: RouteBestiary, UniverseID: "u1"})
	drain(s, deps, CreaturesFetched{UniverseID: "u1", Creatures: []model.Creature{{ID: "c1", UniverseID: "u1"}}})
	drain(s, deps, LocationsFetched{UniverseID: "u1"})

	// Same scope, freshly loaded: nothing to do.
	effects := drain(s, deps, Tick{Now: deps.now()})
	if hasFetch(effects, FetchCreatures, "u1") {
		t.Fatalf("creatures refetched despite matching loaded marker")
	}

	// Different universe: loaded marker no longer matches, refetch.
	effects = drain(s, deps, Navigate{Route: RouteBestiary, UniverseID: "u2"})
	if !hasFetch(effects, FetchCreatures, "u2") {
		t.Fatalf("scope change did not force a refetch: %+v", effects)
	}
}

func TestFetch_ForgeWalksTheTree(t *testing.T) {
	t.Parallel()
	s, deps, _ := loadedState()

	effects := drain(s, deps, Navigate{Route: RouteForge, UniverseID: "u1"})
	if !hasFetch(effects, FetchNovels, "u1") {
		t.Fatalf("forge did not request novels: %+v", effects)
	}
	if hasFetch(effects, FetchChapters, "") || hasFetch(effects, FetchScenes, "") {
		t.Fatalf("tree fetches issued without a selection: %+v", effects)
	}

	effects = drain(s, deps, NovelsFetched{
		UniverseID: "u1",
		Novels:     []model.Novel{{ID: "n1", Title: "Saltglass"}},
	})
	if !hasFetch(effects, FetchChapters, "n1") {
		t.Fatalf("default novel selection did not request chapters: %+v", effects)
	}

	effects = drain(s, deps, ChaptersFetched{
		NovelID:  "n1",
		Chapters: []model.Chapter{{ID: "ch1", NovelID: "n1", Position: 1000}},
	})
	if !hasFetch(effects, FetchScenes, "ch1") {
		t.Fatalf("default chapter selection did not request scenes: %+v", effects)
	}

	// A second pass issues nothing: the tree markers live in the ledger.
	drain(s, deps, ScenesFetched{ChapterID: "ch1"})
	effects = drain(s, deps, Tick{Now: deps.now()})
	for _, e := range effects {
		if _, ok := e.(FetchEffect); ok {
			t.Fatalf("fully loaded forge still fetching: %+v", effects)
		}
	}
}

func TestFetch_BoardDataOnlyForActiveBoard(t *testing.T) {
	t.Parallel()
	s, deps, _ := loadedState()

	effects := drain(s, deps, Navigate{Route: RoutePmBoard, BoardID: "b1"})
	if !hasFetch(effects, FetchBoardData, "b1") {
		t.Fatalf("board screen did not request board data: %+v", effects)
	}

	drain(s, deps, BoardDataFetched{BoardID: "b1", Data: model.BoardData{
		Board: model.Board{ID: "b1"},
		Cards: map[string][]model.Card{},
	}})
	effects = drain(s, deps, Tick{Now: deps.now()})
	if hasFetch(effects, FetchBoardData, "b1") {
		t.Fatalf("board data refetched despite loaded marker")
	}
}

func TestFetch_TrashLoadsOnce(t *testing.T) {
	t.Parallel()
	s, deps, _ := loadedState()

	effects := drain(s, deps, Navigate{Route: RouteTrash})
	if !hasFetch(effects, FetchTrash, "") {
		t.Fatalf("trash screen did not request entries: %+v", effects)
	}

	drain(s, deps, TrashFetched{Entries: []model.TrashEntry{}})
	effects = drain(s, deps, Tick{Now: deps.now()})
	if hasFetch(effects, FetchTrash, "") {
		t.Fatalf("trash refetched while TrashLoaded is set")
	}
}

func TestFetch_ScopeFlipFlopThrottled(t *testing.T) {
	t.Parallel()
	s, deps, now := loadedState()

	drain(s, deps, Navigate{Route: RouteAtlas, UniverseID: "u1"})
	drain(s, deps, LocationsFetched{UniverseID: "u1"})
	drain(s, deps, Navigate{Route: RouteAtlas, UniverseID: "u2"})
	drain(s, deps, LocationsFetched{UniverseID: "u2"})

	// Bouncing straight back: u1 loaded moments ago, so the throttle
	// holds even though the marker now names u2.
	effects := drain(s, deps, Navigate{Route: RouteAtlas, UniverseID: "u1"})
	if hasFetch(effects, FetchLocations, "u1") {
		t.Fatalf("flip-flop refetched inside the throttle window")
	}

	*now = now.Add(TreeThrottle + time.Millisecond)
	effects = drain(s, deps, Tick{Now: deps.now()})
	if !hasFetch(effects, FetchLocations, "u1") {
		t.Fatalf("stale scope never refetched after the throttle: %+v", effects)
	}
}
