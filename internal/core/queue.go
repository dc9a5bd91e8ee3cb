package core

import (
	"errors"

	"fabledesk/internal/model"
)

// pumpQueue moves the next queued command into the inflight slot and
// schedules its execution. Strict FIFO, at most one inflight; the next
// command only starts after CommandDone for the previous one.
func pumpQueue(s *State) []Effect {
	if s.Inflight != nil || len(s.Queue) == 0 {
		return nil
	}
	c := s.Queue[0]
	s.Queue = append([]Command(nil), s.Queue[1:]...)
	s.Inflight = &c
	return []Effect{RunCommandEffect{Command: c}}
}

// capabilityDisabled matches the store's gate error without importing
// the store package.
type capabilityDisabled interface {
	CapabilityDisabled() string
}

func handleCommandDone(s *State, deps Deps, m CommandDone) []Effect {
	if s.Inflight == nil {
		deps.logf("command completion with no inflight command")
		return nil
	}
	c := *s.Inflight
	s.Inflight = nil

	if m.Err != nil {
		var gate capabilityDisabled
		if errors.As(m.Err, &gate) {
			s.ShowToast(deps, "That feature is disabled in this project ("+gate.CapabilityDisabled()+")", ToastError)
		} else {
			s.ShowToast(deps, "Operation failed: "+m.Err.Error(), ToastError)
		}
		deps.logf("command %s failed: %v", c.Kind, m.Err)
		return nil
	}

	invalidateAfterSuccess(s, deps, c)
	if msg := c.successToast(); msg != "" {
		s.ShowToast(deps, msg, ToastSuccess)
	}

	if action, entityType, entityID, ok := c.auditTarget(); ok {
		return []Effect{AuditEffect{Action: action, EntityType: entityType, EntityID: entityID}}
	}
	return nil
}

// invalidateAfterSuccess expires exactly the caches a command touched.
// Kinds without a dedicated case fall through to the legacy global
// invalidate, a degrade-gracefully path that clears far more than
// necessary; new command kinds get their own case instead of leaning
// on it.
func invalidateAfterSuccess(s *State, deps Deps, c Command) {
	switch c.Kind {
	case CmdCreateUniverse:
		s.Universes = nil
		s.Ledger.InvalidateKind(FetchUniverses, TreeThrottle)

	case CmdCreateBoard:
		s.Boards = nil
		s.Ledger.InvalidateKind(FetchBoards, TreeThrottle)

	case CmdSaveCreature, CmdArchiveCreature:
		invalidateCreatures(s, universeScopeOf(c, s))
	case CmdSaveLocation:
		invalidateLocations(s, universeScopeOf(c, s))
	case CmdSaveEra:
		invalidateEras(s, universeScopeOf(c, s))
	case CmdSaveEvent:
		invalidateEvents(s, universeScopeOf(c, s))

	case CmdSnapshotCreate, CmdSnapshotDelete:
		invalidateSnapshots(s, universeScopeOf(c, s))
	case CmdSnapshotRestore:
		scope := universeScopeOf(c, s)
		invalidateCreatures(s, scope)
		invalidateLocations(s, scope)
		invalidateEras(s, scope)
		invalidateEvents(s, scope)
		invalidateSnapshots(s, scope)

	case CmdCreateNovel, CmdUpdateNovel:
		invalidateNovels(s, universeScopeOf(c, s))

	case CmdCreateChapter, CmdUpdateChapter, CmdReorderChapter:
		invalidateChapters(s, chapterScopeOf(c, s))
	case CmdCreateScene, CmdUpdateScene, CmdReorderScene:
		invalidateScenes(s, sceneScopeOf(c, s))

	case CmdSaveCard, CmdMoveCard, CmdRebalanceColumn, CmdDeleteCard:
		invalidateBoardData(s, boardScopeOf(c, s))

	case CmdMoveToTrash:
		invalidateAfterTrash(s, c)
	case CmdRestoreFromTrash:
		invalidateAfterRestore(s)
	case CmdPermanentDelete, CmdEmptyTrash, CmdCleanupOldTrash:
		s.TrashLoaded = false
		s.Ledger.Invalidate(Key{Kind: FetchTrash}, TreeThrottle)

	default:
		deps.logf("no targeted invalidation for %s; using legacy global invalidate", c.Kind)
		legacyGlobalInvalidate(s)
	}
}

func universeScopeOf(c Command, s *State) string {
	switch {
	case c.UniverseID != "":
		return c.UniverseID
	case c.Creature != nil:
		return c.Creature.UniverseID
	case c.Location != nil:
		return c.Location.UniverseID
	case c.Era != nil:
		return c.Era.UniverseID
	case c.Event != nil:
		return c.Event.UniverseID
	case c.Novel != nil && c.Novel.UniverseID != nil:
		return *c.Novel.UniverseID
	default:
		return s.ActiveUniverseID
	}
}

func chapterScopeOf(c Command, s *State) string {
	switch {
	case c.NovelID != "":
		return c.NovelID
	case c.Chapter != nil:
		return c.Chapter.NovelID
	default:
		return s.ActiveNovelID
	}
}

func sceneScopeOf(c Command, s *State) string {
	switch {
	case c.ChapterID != "":
		return c.ChapterID
	case c.Scene != nil:
		return c.Scene.ChapterID
	default:
		return s.ActiveChapterID
	}
}

func boardScopeOf(c Command, s *State) string {
	if c.BoardID != "" {
		return c.BoardID
	}
	return s.ActiveBoardID
}

func invalidateCreatures(s *State, universeID string) {
	s.LoadedCreaturesUniverse = ""
	s.Ledger.Invalidate(Key{Kind: FetchCreatures, Scope: universeID}, TreeThrottle)
}

func invalidateLocations(s *State, universeID string) {
	s.LoadedLocationsUniverse = ""
	s.Ledger.Invalidate(Key{Kind: FetchLocations, Scope: universeID}, TreeThrottle)
}

func invalidateEras(s *State, universeID string) {
	s.LoadedErasUniverse = ""
	s.Ledger.Invalidate(Key{Kind: FetchEras, Scope: universeID}, TreeThrottle)
}

func invalidateEvents(s *State, universeID string) {
	s.LoadedEventsUniverse = ""
	s.Ledger.Invalidate(Key{Kind: FetchEvents, Scope: universeID}, TreeThrottle)
}

func invalidateSnapshots(s *State, universeID string) {
	s.LoadedSnapshotsUniverse = ""
	s.Ledger.Invalidate(Key{Kind: FetchSnapshots, Scope: universeID}, TreeThrottle)
}

func invalidateNovels(s *State, universeID string) {
	s.LoadedNovelsUniverse = ""
	s.Ledger.Invalidate(Key{Kind: FetchNovels, Scope: universeID}, TreeThrottle)
}

func invalidateChapters(s *State, novelID string) {
	if novelID == "" {
		return
	}
	s.Ledger.Invalidate(Key{Kind: FetchChapters, Scope: novelID}, TreeThrottle)
}

func invalidateScenes(s *State, chapterID string) {
	if chapterID == "" {
		return
	}
	s.Ledger.Invalidate(Key{Kind: FetchScenes, Scope: chapterID}, TreeThrottle)
}

func invalidateBoardData(s *State, boardID string) {
	s.LoadedBoardID = ""
	if boardID != "" {
		s.Ledger.Invalidate(Key{Kind: FetchBoardData, Scope: boardID}, TreeThrottle)
	}
}

func invalidateAfterTrash(s *State, c Command) {
	s.TrashLoaded = false
	s.Ledger.Invalidate(Key{Kind: FetchTrash}, TreeThrottle)

	switch c.TargetType {
	case "universe":
		handleDeletedUniverse(s, c.TargetID)
	case "board":
		handleDeletedBoard(s, c.TargetID)
	case "novel":
		invalidateNovels(s, c.ParentID)
		invalidateChapters(s, c.TargetID)
		ensureForgeSafeFallback(s)
	case "chapter":
		invalidateChapters(s, c.ParentID)
		invalidateScenes(s, c.TargetID)
		ensureForgeSafeFallback(s)
	case "scene":
		invalidateScenes(s, c.ParentID)
		ensureForgeSafeFallback(s)
	case "creature":
		invalidateCreatures(s, c.ParentID)
	case "location":
		invalidateLocations(s, c.ParentID)
	case "era":
		invalidateEras(s, c.ParentID)
	case "event":
		invalidateEvents(s, c.ParentID)
	case "card":
		invalidateBoardData(s, s.ActiveBoardID)
	}
}

// handleDeletedUniverse escapes any route that was scoped to the
// deleted universe and clears everything loaded under its scope.
func handleDeletedUniverse(s *State, universeID string) {
	kept := s.Universes[:0]
	for _, u := range s.Universes {
		if u.ID != universeID {
			kept = append(kept, u)
		}
	}
	s.Universes = kept

	if s.ActiveUniverseID != universeID {
		return
	}
	if s.Route.UniverseScoped() {
		s.Route = RouteOverview
	}
	s.ActiveUniverseID = ""
	clearUniverseScopedViews(s)
	s.LoadedCreaturesUniverse = ""
	s.LoadedLocationsUniverse = ""
	s.LoadedErasUniverse = ""
	s.LoadedEventsUniverse = ""
	s.LoadedSnapshotsUniverse = ""
	s.LoadedNovelsUniverse = ""
	s.ChaptersByNovel = map[string][]model.Chapter{}
	s.ScenesByChapter = map[string][]model.Scene{}
	s.ExpandedNovels = map[string]bool{}
	s.ExpandedChapters = map[string]bool{}
}

func handleDeletedBoard(s *State, boardID string) {
	kept := s.Boards[:0]
	for _, b := range s.Boards {
		if b.ID != boardID {
			kept = append(kept, b)
		}
	}
	s.Boards = kept

	if s.ActiveBoardID != boardID {
		return
	}
	if s.Route == RoutePmBoard {
		s.Route = RoutePmList
	}
	s.ActiveBoardID = ""
	s.LoadedBoardID = ""
	s.Board = model.BoardData{}
}

// invalidateAfterRestore is deliberately broad: a restored entity can
// reappear anywhere in the hierarchy, so every loaded marker expires
// and the next orchestration pass reloads what the current route needs.
func invalidateAfterRestore(s *State) {
	s.TrashLoaded = false
	legacyGlobalInvalidate(s)
}

// legacyGlobalInvalidate clears every cache marker. It exists for
// command kinds without targeted invalidation and for restore, where
// the touched scope is unknowable from the command alone.
func legacyGlobalInvalidate(s *State) {
	s.Universes = nil
	s.Boards = nil
	s.LoadedCreaturesUniverse = ""
	s.LoadedLocationsUniverse = ""
	s.LoadedErasUniverse = ""
	s.LoadedEventsUniverse = ""
	s.LoadedSnapshotsUniverse = ""
	s.LoadedNovelsUniverse = ""
	s.LoadedBoardID = ""
	s.TrashLoaded = false
	s.Ledger.InvalidateAll(TreeThrottle)
}
