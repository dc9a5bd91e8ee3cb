package core

// Debounced autosave for the scene editor. Every edit bumps the token
// and schedules a delayed DebounceElapsed carrying it; when the delay
// fires, the save commits only if the token is still the latest and
// the quiet period really elapsed. Superseded tokens are no-ops, which
// is the whole cancellation mechanism.

func handleEditSceneBody(s *State, deps Deps, m EditSceneBody) []Effect {
	if s.ActiveSceneID == "" {
		return nil
	}
	s.EditorBody = m.Body
	s.EditorDirty = true
	s.LastEditAt = deps.now()
	s.DebounceToken++
	// Keep the in-memory scene current so merges and word counts see
	// the edit before it persists.
	patchActiveSceneBody(s, m.Body)
	return []Effect{DebounceEffect{Token: s.DebounceToken, Delay: AutosaveDebounce}}
}

func handleDebounceElapsed(s *State, deps Deps, m DebounceElapsed) {
	if m.Token != s.DebounceToken {
		return
	}
	if !s.EditorDirty || s.ActiveSceneID == "" {
		return
	}
	if deps.now().Sub(s.LastEditAt) < AutosaveDebounce {
		return
	}
	flushEditor(s)
}

// autoSaveBeforeSwitch commits a dirty editor synchronously into the
// queue before selection moves elsewhere, so no keystrokes are lost to
// a debounce that never fires.
func autoSaveBeforeSwitch(s *State) {
	if !s.EditorDirty || s.ActiveSceneID == "" {
		return
	}
	flushEditor(s)
	// Cancel the pending debounce; its work is already queued.
	s.DebounceToken++
}

func flushEditor(s *State) {
	sc, ok := s.findScene(s.ActiveSceneID)
	if !ok {
		s.EditorDirty = false
		return
	}
	sc.Body = s.EditorBody
	s.Queue = append(s.Queue, Command{
		Kind:      CmdUpdateScene,
		ChapterID: sc.ChapterID,
		Scene:     &sc,
	})
	s.EditorDirty = false
}

func patchActiveSceneBody(s *State, body string) {
	for i := range s.ActiveScenes {
		if s.ActiveScenes[i].ID == s.ActiveSceneID {
			s.ActiveScenes[i].Body = body
			chID := s.ActiveScenes[i].ChapterID
			bucket := s.ScenesByChapter[chID]
			for j := range bucket {
				if bucket[j].ID == s.ActiveSceneID {
					bucket[j].Body = body
				}
			}
			return
		}
	}
}
