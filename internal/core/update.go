package core

import "fabledesk/internal/model"

// Update is the single dispatch point: it applies one message to the
// state, then runs the post-event tasks (queue pump, fetch
// orchestration, toast expiry) and returns the effects to schedule.
func Update(s *State, msg Msg, deps Deps) []Effect {
	var effects []Effect

	switch m := msg.(type) {
	case Navigate:
		handleNavigate(s, deps, m)
	case Enqueue:
		s.Queue = append(s.Queue, m.Command)
	case ConfirmDelete:
		handleConfirmDelete(s, deps, m)
	case ToggleNovel:
		handleToggleNovel(s, deps, m)
	case ToggleChapter:
		handleToggleChapter(s, deps, m)
	case SelectScene:
		handleSelectScene(s, deps, m)
	case EditSceneBody:
		effects = append(effects, handleEditSceneBody(s, deps, m)...)
	case DebounceElapsed:
		handleDebounceElapsed(s, deps, m)
	case DropCard:
		handleDropCard(s, deps, m)
	case CommandDone:
		effects = append(effects, handleCommandDone(s, deps, m)...)
	case Tick:
		s.pruneToasts(m.Now)

	case UniversesFetched:
		handleUniversesFetched(s, deps, m)
	case BoardsFetched:
		handleBoardsFetched(s, deps, m)
	case CreaturesFetched:
		handleCreaturesFetched(s, deps, m)
	case LocationsFetched:
		handleLocationsFetched(s, deps, m)
	case ErasFetched:
		handleErasFetched(s, deps, m)
	case EventsFetched:
		handleEventsFetched(s, deps, m)
	case SnapshotsFetched:
		handleSnapshotsFetched(s, deps, m)
	case NovelsFetched:
		handleNovelsFetched(s, deps, m)
	case ChaptersFetched:
		handleChaptersFetched(s, deps, m)
	case ScenesFetched:
		handleScenesFetched(s, deps, m)
	case BoardDataFetched:
		handleBoardDataFetched(s, deps, m)
	case TrashFetched:
		handleTrashFetched(s, deps, m)
	}

	effects = append(effects, pumpQueue(s)...)
	effects = append(effects, orchestrateFetches(s)...)
	s.pruneToasts(deps.now())
	return effects
}

func handleNavigate(s *State, deps Deps, m Navigate) {
	autoSaveBeforeSwitch(s)

	if m.UniverseID != "" && m.UniverseID != s.ActiveUniverseID {
		s.ActiveUniverseID = m.UniverseID
		clearUniverseScopedViews(s)
	}
	if m.BoardID != "" && m.BoardID != s.ActiveBoardID {
		s.ActiveBoardID = m.BoardID
	}
	s.Route = m.Route
}

// clearUniverseScopedViews empties the displayed collections when the
// active universe changes. The Loaded* markers keep their old scope so
// the orchestrator sees them as stale and refetches.
func clearUniverseScopedViews(s *State) {
	s.Creatures = nil
	s.Locations = nil
	s.Eras = nil
	s.Events = nil
	s.Snapshots = nil
	s.Novels = nil
	s.ActiveChapters = nil
	s.ActiveScenes = nil
	s.ActiveNovelID = ""
	s.ActiveChapterID = ""
	s.ActiveSceneID = ""
	clearEditor(s)
}

func handleToggleNovel(s *State, deps Deps, m ToggleNovel) {
	autoSaveBeforeSwitch(s)
	if s.ActiveNovelID == m.ID && s.ExpandedNovels[m.ID] {
		s.ExpandedNovels[m.ID] = false
		return
	}
	s.ExpandedNovels[m.ID] = true
	if s.ActiveNovelID != m.ID {
		s.ActiveNovelID = m.ID
		s.ActiveChapters = append([]model.Chapter(nil), s.ChaptersByNovel[m.ID]...)
		s.ActiveChapterID = ""
		s.ActiveScenes = nil
		s.ActiveSceneID = ""
		clearEditor(s)
	}
}

func handleToggleChapter(s *State, deps Deps, m ToggleChapter) {
	autoSaveBeforeSwitch(s)
	if s.ActiveChapterID == m.ID && s.ExpandedChapters[m.ID] {
		s.ExpandedChapters[m.ID] = false
		return
	}
	s.ExpandedChapters[m.ID] = true
	if s.ActiveChapterID != m.ID {
		s.ActiveChapterID = m.ID
		s.ActiveScenes = append([]model.Scene(nil), s.ScenesByChapter[m.ID]...)
		s.ActiveSceneID = ""
		clearEditor(s)
	}
}

func handleSelectScene(s *State, deps Deps, m SelectScene) {
	autoSaveBeforeSwitch(s)
	sc, ok := s.findScene(m.ID)
	if !ok {
		return
	}
	s.ActiveSceneID = sc.ID
	s.EditorBody = sc.Body
	s.EditorDirty = false
	// Bumping the token cancels any autosave scheduled for the
	// previously open scene.
	s.DebounceToken++
}

// clearEditor empties the editor buffer. The token bump (which cancels
// a pending autosave) only happens when an unsaved edit exists, which
// keeps the safe-fallback repair idempotent.
func clearEditor(s *State) {
	if s.EditorDirty {
		s.DebounceToken++
	}
	s.EditorBody = ""
	s.EditorDirty = false
}
