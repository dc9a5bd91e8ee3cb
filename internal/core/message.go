package core

import (
	"time"

	"fabledesk/internal/model"
)

// Msg is a processed event: user intent, a fetch response, or a write
// completion. All state mutation happens inside Update in response to
// exactly one Msg at a time.
type Msg interface{ isMsg() }

// Navigate switches screens and (optionally) the active scope ids.
type Navigate struct {
	Route      Route
	UniverseID string
	BoardID    string
}

// Enqueue appends a mutating command to the write queue.
type Enqueue struct{ Command Command }

// ConfirmDelete is the accepted delete dialog for any entity kind. The
// update turns it into a MoveToTrash command plus optimistic removal.
type ConfirmDelete struct {
	TargetType string
	TargetID   string
}

// ToggleNovel expands/collapses a novel in the forge tree and makes it
// the active one.
type ToggleNovel struct{ ID string }

// ToggleChapter expands/collapses a chapter and makes it active.
type ToggleChapter struct{ ID string }

// SelectScene opens a scene in the editor.
type SelectScene struct{ ID string }

// EditSceneBody is a keystroke-level edit to the open scene.
type EditSceneBody struct{ Body string }

// DebounceElapsed fires when an autosave delay runs out. Token decides
// whether this save is still the latest.
type DebounceElapsed struct{ Token uint64 }

// DropCard is a completed drag of a card onto a column slot.
type DropCard struct {
	CardID     string
	ToColumnID string
	Index      int
}

// CommandDone is the write queue's completion signal for the inflight
// command.
type CommandDone struct{ Err error }

// Tick drives toast expiry.
type Tick struct{ Now time.Time }

// Fetch responses. Every handler releases the ledger key first, then
// checks scope relevance before applying anything.

type UniversesFetched struct {
	Universes []model.Universe
	Err       error
}

type BoardsFetched struct {
	Boards []model.Board
	Err    error
}

type CreaturesFetched struct {
	UniverseID string
	Creatures  []model.Creature
	Err        error
}

type LocationsFetched struct {
	UniverseID string
	Locations  []model.Location
	Err        error
}

type ErasFetched struct {
	UniverseID string
	Eras       []model.TimelineEra
	Err        error
}

type EventsFetched struct {
	UniverseID string
	Events     []model.TimelineEvent
	Err        error
}

type SnapshotsFetched struct {
	UniverseID string
	Snapshots  []model.UniverseSnapshot
	Err        error
}

type NovelsFetched struct {
	UniverseID string
	Novels     []model.Novel
	Err        error
}

type ChaptersFetched struct {
	NovelID  string
	Chapters []model.Chapter
	Err      error
}

type ScenesFetched struct {
	ChapterID string
	Scenes    []model.Scene
	Err       error
}

type BoardDataFetched struct {
	BoardID string
	Data    model.BoardData
	Err     error
}

type TrashFetched struct {
	Entries []model.TrashEntry
	Err     error
}

func (Navigate) isMsg()         {}
func (Enqueue) isMsg()          {}
func (ConfirmDelete) isMsg()    {}
func (ToggleNovel) isMsg()      {}
func (ToggleChapter) isMsg()    {}
func (SelectScene) isMsg()      {}
func (EditSceneBody) isMsg()    {}
func (DebounceElapsed) isMsg()  {}
func (DropCard) isMsg()         {}
func (CommandDone) isMsg()      {}
func (Tick) isMsg()             {}
func (UniversesFetched) isMsg() {}
func (BoardsFetched) isMsg()    {}
func (CreaturesFetched) isMsg() {}
func (LocationsFetched) isMsg() {}
func (ErasFetched) isMsg()      {}
func (EventsFetched) isMsg()    {}
func (SnapshotsFetched) isMsg() {}
func (NovelsFetched) isMsg()    {}
func (ChaptersFetched) isMsg()  {}
func (ScenesFetched) isMsg()    {}
func (BoardDataFetched) isMsg() {}
func (TrashFetched) isMsg()     {}

// Effect is deferred work the update function schedules instead of
// performing. The runner resolves each effect and feeds the outcome
// back in as a Msg, so tests can resolve effects synchronously.
type Effect interface{ isEffect() }

// FetchEffect asks the runner to load one (kind, scope) collection.
type FetchEffect struct {
	Kind  FetchKind
	Scope string
}

// RunCommandEffect asks the runner to execute the inflight command.
type RunCommandEffect struct{ Command Command }

// DebounceEffect asks the runner to deliver DebounceElapsed{Token}
// after Delay.
type DebounceEffect struct {
	Token uint64
	Delay time.Duration
}

// AuditEffect is a best-effort audit append after a successful write.
// Runner failures are logged, never surfaced.
type AuditEffect struct {
	Action     string
	EntityType string
	EntityID   string
}

func (FetchEffect) isEffect()      {}
func (RunCommandEffect) isEffect() {}
func (DebounceEffect) isEffect()   {}
func (AuditEffect) isEffect()      {}

// FetchKind doubles as the ledger's kind component.
type FetchKind string

const (
	FetchUniverses FetchKind = "universes"
	FetchBoards    FetchKind = "boards"
	FetchCreatures FetchKind = "creatures"
	FetchLocations FetchKind = "locations"
	FetchEras      FetchKind = "eras"
	FetchEvents    FetchKind = "events"
	FetchSnapshots FetchKind = "snapshots"
	FetchNovels    FetchKind = "novels"
	FetchChapters  FetchKind = "chapters"
	FetchScenes    FetchKind = "scenes"
	FetchBoardData FetchKind = "board_data"
	FetchTrash     FetchKind = "trash"
)
