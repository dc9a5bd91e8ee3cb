package core

import (
	"sort"

	"fabledesk/internal/model"
)

// Fetch response handlers. The discipline is identical everywhere:
// release the gating key first, then decide whether the response is
// still relevant to the current scope, and only then apply it. A stale
// response is discarded, never partially applied.

func handleUniversesFetched(s *State, deps Deps, m UniversesFetched) {
	key := Key{Kind: FetchUniverses}
	s.Ledger.End(key)
	if m.Err != nil {
		s.ShowToast(deps, "Failed to load universes: "+m.Err.Error(), ToastError)
		return
	}
	s.Universes = m.Universes
	s.Ledger.MarkLoaded(key)
}

func handleBoardsFetched(s *State, deps Deps, m BoardsFetched) {
	key := Key{Kind: FetchBoards}
	s.Ledger.End(key)
	if m.Err != nil {
		s.ShowToast(deps, "Failed to load boards: "+m.Err.Error(), ToastError)
		return
	}
	s.Boards = m.Boards
	s.Ledger.MarkLoaded(key)
}

func handleCreaturesFetched(s *State, deps Deps, m CreaturesFetched) {
	key := Key{Kind: FetchCreatures, Scope: m.UniverseID}
	s.Ledger.End(key)
	relevant := m.UniverseID == s.ActiveUniverseID
	if m.Err != nil {
		if relevant {
			s.ShowToast(deps, "Failed to load creatures: "+m.Err.Error(), ToastError)
		} else {
			deps.logf("ignoring failed creatures fetch for stale scope %s", m.UniverseID)
		}
		return
	}
	if !relevant {
		deps.logf("discarding creatures for stale scope %s (active %s)", m.UniverseID, s.ActiveUniverseID)
		return
	}
	s.Creatures = m.Creatures
	s.LoadedCreaturesUniverse = m.UniverseID
	s.Ledger.MarkLoaded(key)
}

func handleLocationsFetched(s *State, deps Deps, m LocationsFetched) {
	key := Key{Kind: FetchLocations, Scope: m.UniverseID}
	s.Ledger.End(key)
	relevant := m.UniverseID == s.ActiveUniverseID
	if m.Err != nil {
		if relevant {
			s.ShowToast(deps, "Failed to load locations: "+m.Err.Error(), ToastError)
		} else {
			deps.logf("ignoring failed locations fetch for stale scope %s", m.UniverseID)
		}
		return
	}
	if !relevant {
		deps.logf("discarding locations for stale scope %s (active %s)", m.UniverseID, s.ActiveUniverseID)
		return
	}
	s.Locations = m.Locations
	s.LoadedLocationsUniverse = m.UniverseID
	s.Ledger.MarkLoaded(key)
}

func handleErasFetched(s *State, deps Deps, m ErasFetched) {
	key := Key{Kind: FetchEras, Scope: m.UniverseID}
	s.Ledger.End(key)
	relevant := m.UniverseID == s.ActiveUniverseID
	if m.Err != nil {
		if relevant {
			s.ShowToast(deps, "Failed to load eras: "+m.Err.Error(), ToastError)
		}
		return
	}
	if !relevant {
		deps.logf("discarding eras for stale scope %s", m.UniverseID)
		return
	}
	s.Eras = m.Eras
	s.LoadedErasUniverse = m.UniverseID
	s.Ledger.MarkLoaded(key)
}

func handleEventsFetched(s *State, deps Deps, m EventsFetched) {
	key := Key{Kind: FetchEvents, Scope: m.UniverseID}
	s.Ledger.End(key)
	relevant := m.UniverseID == s.ActiveUniverseID
	if m.Err != nil {
		if relevant {
			s.ShowToast(deps, "Failed to load events: "+m.Err.Error(), ToastError)
		}
		return
	}
	if !relevant {
		deps.logf("discarding events for stale scope %s", m.UniverseID)
		return
	}
	s.Events = m.Events
	s.LoadedEventsUniverse = m.UniverseID
	s.Ledger.MarkLoaded(key)
}

func handleSnapshotsFetched(s *State, deps Deps, m SnapshotsFetched) {
	key := Key{Kind: FetchSnapshots, Scope: m.UniverseID}
	s.Ledger.End(key)
	relevant := m.UniverseID == s.ActiveUniverseID
	if m.Err != nil {
		if relevant {
			s.ShowToast(deps, "Failed to load snapshots: "+m.Err.Error(), ToastError)
		}
		return
	}
	if !relevant {
		deps.logf("discarding snapshots for stale scope %s", m.UniverseID)
		return
	}
	s.Snapshots = m.Snapshots
	s.LoadedSnapshotsUniverse = m.UniverseID
	s.Ledger.MarkLoaded(key)
}

func handleNovelsFetched(s *State, deps Deps, m NovelsFetched) {
	key := Key{Kind: FetchNovels, Scope: m.UniverseID}
	s.Ledger.End(key)
	relevant := m.UniverseID == s.ActiveUniverseID
	if m.Err != nil {
		if relevant {
			s.ShowToast(deps, "Failed to load novels: "+m.Err.Error(), ToastError)
		}
		return
	}
	if !relevant {
		deps.logf("discarding novels for stale scope %s", m.UniverseID)
		return
	}
	s.Novels = m.Novels
	s.LoadedNovelsUniverse = m.UniverseID
	s.Ledger.MarkLoaded(key)
	ensureForgeSafeFallback(s)
}

// handleChaptersFetched merges into the tree cache local-wins: the DB
// rows go in first, then any chapters already held for the same novel
// overlay them, so in-flight local edits survive a stale response.
func handleChaptersFetched(s *State, deps Deps, m ChaptersFetched) {
	key := Key{Kind: FetchChapters, Scope: m.NovelID}
	s.Ledger.End(key)
	if m.Err != nil {
		if m.NovelID == s.ActiveNovelID {
			s.ShowToast(deps, "Failed to load chapters: "+m.Err.Error(), ToastError)
		}
		return
	}
	merged := mergeByID(m.Chapters, s.ChaptersByNovel[m.NovelID],
		func(c model.Chapter) string { return c.ID },
		func(a, b model.Chapter) bool {
			if a.Position != b.Position {
				return a.Position < b.Position
			}
			return a.ID < b.ID
		})
	s.ChaptersByNovel[m.NovelID] = merged
	s.Ledger.MarkLoaded(key)

	if m.NovelID == s.ActiveNovelID {
		s.ActiveChapters = append([]model.Chapter(nil), merged...)
		s.ExpandedNovels[m.NovelID] = true
		if s.ActiveChapterID == "" && len(merged) > 0 {
			s.ActiveChapterID = merged[0].ID
			s.ActiveScenes = nil
			s.ActiveSceneID = ""
			clearEditor(s)
		}
	}
	ensureForgeSafeFallback(s)
}

func handleScenesFetched(s *State, deps Deps, m ScenesFetched) {
	key := Key{Kind: FetchScenes, Scope: m.ChapterID}
	s.Ledger.End(key)
	if m.Err != nil {
		if m.ChapterID == s.ActiveChapterID {
			s.ShowToast(deps, "Failed to load scenes: "+m.Err.Error(), ToastError)
		}
		return
	}
	merged := mergeByID(m.Scenes, s.ScenesByChapter[m.ChapterID],
		func(sc model.Scene) string { return sc.ID },
		func(a, b model.Scene) bool {
			if a.Position != b.Position {
				return a.Position < b.Position
			}
			return a.ID < b.ID
		})
	s.ScenesByChapter[m.ChapterID] = merged
	s.Ledger.MarkLoaded(key)

	if m.ChapterID == s.ActiveChapterID {
		s.ActiveScenes = append([]model.Scene(nil), merged...)
		s.ExpandedChapters[m.ChapterID] = true
		if s.ActiveSceneID == "" && len(merged) > 0 {
			s.ActiveSceneID = merged[0].ID
			s.EditorBody = merged[0].Body
			s.EditorDirty = false
			s.DebounceToken++
		}
	}
	ensureForgeSafeFallback(s)
}

func handleBoardDataFetched(s *State, deps Deps, m BoardDataFetched) {
	key := Key{Kind: FetchBoardData, Scope: m.BoardID}
	s.Ledger.End(key)
	relevant := m.BoardID == s.ActiveBoardID
	if m.Err != nil {
		if relevant {
			s.ShowToast(deps, "Failed to load board: "+m.Err.Error(), ToastError)
		}
		return
	}
	if !relevant {
		deps.logf("discarding board data for stale scope %s", m.BoardID)
		return
	}
	s.Board = m.Data
	s.LoadedBoardID = m.BoardID
	s.Ledger.MarkLoaded(key)
}

func handleTrashFetched(s *State, deps Deps, m TrashFetched) {
	key := Key{Kind: FetchTrash}
	s.Ledger.End(key)
	if m.Err != nil {
		s.ShowToast(deps, "Failed to load trash: "+m.Err.Error(), ToastError)
		return
	}
	s.TrashEntries = m.Entries
	s.TrashLoaded = true
	s.Ledger.MarkLoaded(key)
}

// mergeByID builds the reconciled collection: fetched entities first,
// locally held entities for the same scope overlaid on top ("local
// wins" on id collision), sorted deterministically so repeated fetches
// never reshuffle the view.
func mergeByID[T any](fetched, local []T, id func(T) string, less func(a, b T) bool) []T {
	m := make(map[string]T, len(fetched)+len(local))
	for _, e := range fetched {
		m[id(e)] = e
	}
	for _, e := range local {
		m[id(e)] = e
	}
	out := make([]T, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// ensureForgeSafeFallback repairs the novel -> chapter -> scene
// selection chain after any mutation that can remove entities. It is
// idempotent, and after it runs no selection pointer references an
// entity that does not exist.
func ensureForgeSafeFallback(s *State) {
	// Novel level.
	if _, ok := s.findNovel(s.ActiveNovelID); !ok {
		if len(s.Novels) > 0 {
			s.ActiveNovelID = s.Novels[0].ID
		} else {
			s.ActiveNovelID = ""
		}
		s.ActiveChapters = nil
		s.ActiveChapterID = ""
		s.ActiveScenes = nil
		s.ActiveSceneID = ""
		clearEditor(s)
	}
	if s.ActiveNovelID == "" {
		return
	}
	s.ExpandedNovels[s.ActiveNovelID] = true
	if len(s.ActiveChapters) == 0 {
		if bucket, ok := s.ChaptersByNovel[s.ActiveNovelID]; ok && len(bucket) > 0 {
			s.ActiveChapters = append([]model.Chapter(nil), bucket...)
		}
	}

	// Chapter level.
	if !chapterInList(s.ActiveChapters, s.ActiveChapterID) {
		if len(s.ActiveChapters) > 0 {
			s.ActiveChapterID = s.ActiveChapters[0].ID
		} else {
			s.ActiveChapterID = ""
		}
		s.ActiveScenes = nil
		s.ActiveSceneID = ""
		clearEditor(s)
	}
	if s.ActiveChapterID == "" {
		return
	}
	if len(s.ActiveScenes) == 0 {
		if bucket, ok := s.ScenesByChapter[s.ActiveChapterID]; ok && len(bucket) > 0 {
			s.ActiveScenes = append([]model.Scene(nil), bucket...)
		}
	}

	// Scene level.
	if !sceneInList(s.ActiveScenes, s.ActiveSceneID) {
		if len(s.ActiveScenes) > 0 {
			s.ActiveSceneID = s.ActiveScenes[0].ID
		} else {
			s.ActiveSceneID = ""
		}
		clearEditor(s)
	}
}

func chapterInList(list []model.Chapter, id string) bool {
	if id == "" {
		return false
	}
	for _, c := range list {
		if c.ID == id {
			return true
		}
	}
	return false
}

func sceneInList(list []model.Scene, id string) bool {
	if id == "" {
		return false
	}
	for _, sc := range list {
		if sc.ID == id {
			return true
		}
	}
	return false
}
