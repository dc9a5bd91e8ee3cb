package core

import (
	"time"

	"fabledesk/internal/model"
)

const (
	maxToasts = 10
	toastTTL  = 4 * time.Second
)

type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastError
)

type Toast struct {
	Message   string
	Level     ToastLevel
	ExpiresAt time.Time
}

// Logger is the slice of the file logger the core needs.
type Logger interface {
	Printf(format string, args ...any)
}

// Deps are the collaborators Update needs beyond the state itself.
type Deps struct {
	Now func() time.Time
	Log Logger
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) logf(format string, args ...any) {
	if d.Log != nil {
		d.Log.Printf(format, args...)
	}
}

// State is the single owned aggregate every handler mutates. Nothing
// here is shared across goroutines: effects run elsewhere and re-enter
// through Update as messages.
type State struct {
	Route            Route
	ActiveUniverseID string
	ActiveBoardID    string
	ActiveNovelID    string
	ActiveChapterID  string
	ActiveSceneID    string

	// Global collections.
	Universes []model.Universe
	Boards    []model.Board

	// Universe-scoped collections, valid only for the Loaded* scope
	// recorded next to them.
	Creatures []model.Creature
	Locations []model.Location
	Eras      []model.TimelineEra
	Events    []model.TimelineEvent
	Snapshots []model.UniverseSnapshot
	Novels    []model.Novel

	LoadedCreaturesUniverse string
	LoadedLocationsUniverse string
	LoadedErasUniverse      string
	LoadedEventsUniverse    string
	LoadedSnapshotsUniverse string
	LoadedNovelsUniverse    string

	// Tree caches: authoritative client-side buckets independent of
	// which branch is displayed. The active view lists below are
	// derived from these and always lose to them on merge.
	ChaptersByNovel map[string][]model.Chapter
	ScenesByChapter map[string][]model.Scene

	ActiveChapters []model.Chapter
	ActiveScenes   []model.Scene

	ExpandedNovels   map[string]bool
	ExpandedChapters map[string]bool

	// Kanban.
	Board         model.BoardData
	LoadedBoardID string

	// Trash.
	TrashEntries []model.TrashEntry
	TrashLoaded  bool

	// Scene editor with debounced autosave.
	EditorBody    string
	EditorDirty   bool
	DebounceToken uint64
	LastEditAt    time.Time

	// Write queue: strict FIFO, one inflight at a time.
	Queue    []Command
	Inflight *Command

	Toasts []Toast

	Ledger *Ledger
}

func NewState() *State {
	return &State{
		Route:            RouteOverview,
		ChaptersByNovel:  map[string][]model.Chapter{},
		ScenesByChapter:  map[string][]model.Scene{},
		ExpandedNovels:   map[string]bool{},
		ExpandedChapters: map[string]bool{},
		Ledger:           NewLedger(),
	}
}

// ShowToast appends a transient notification, pruning expired toasts
// first and the oldest one when the cap is hit.
func (s *State) ShowToast(deps Deps, message string, level ToastLevel) {
	now := deps.now()
	s.pruneToasts(now)
	if len(s.Toasts) >= maxToasts {
		s.Toasts = s.Toasts[1:]
	}
	s.Toasts = append(s.Toasts, Toast{
		Message:   message,
		Level:     level,
		ExpiresAt: now.Add(toastTTL),
	})
}

func (s *State) pruneToasts(now time.Time) {
	kept := s.Toasts[:0]
	for _, t := range s.Toasts {
		if t.ExpiresAt.After(now) {
			kept = append(kept, t)
		}
	}
	s.Toasts = kept
}

func (s *State) findNovel(id string) (model.Novel, bool) {
	for _, n := range s.Novels {
		if n.ID == id {
			return n, true
		}
	}
	return model.Novel{}, false
}

func (s *State) findCard(id string) (model.Card, string, bool) {
	for colID, cards := range s.Board.Cards {
		for _, c := range cards {
			if c.ID == id {
				return c, colID, true
			}
		}
	}
	return model.Card{}, "", false
}

// findChapter looks tree-first, then in the active view.
func (s *State) findChapter(id string) (model.Chapter, bool) {
	for _, bucket := range s.ChaptersByNovel {
		for _, c := range bucket {
			if c.ID == id {
				return c, true
			}
		}
	}
	for _, c := range s.ActiveChapters {
		if c.ID == id {
			return c, true
		}
	}
	return model.Chapter{}, false
}

func (s *State) findScene(id string) (model.Scene, bool) {
	for _, bucket := range s.ScenesByChapter {
		for _, sc := range bucket {
			if sc.ID == id {
				return sc, true
			}
		}
	}
	for _, sc := range s.ActiveScenes {
		if sc.ID == id {
			return sc, true
		}
	}
	return model.Scene{}, false
}
