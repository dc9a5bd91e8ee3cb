package core

import (
	"encoding/json"
	"fmt"

	"fabledesk/internal/model"
)

// handleConfirmDelete turns an accepted delete dialog into a
// MoveToTrash command. The entity is looked up tree-first so the
// command carries a payload copy and parent linkage even if the fetch
// that produced the view has since been invalidated, and the UI is
// cleaned up optimistically before the write lands.
func handleConfirmDelete(s *State, deps Deps, m ConfirmDelete) {
	c, ok := buildTrashCommand(s, m.TargetType, m.TargetID)
	if !ok {
		deps.logf("delete confirmed for unknown %s %s", m.TargetType, m.TargetID)
		return
	}
	removeOptimistically(s, m.TargetType, m.TargetID)
	ensureForgeSafeFallback(s)
	s.Queue = append(s.Queue, c)
}

func buildTrashCommand(s *State, targetType, targetID string) (Command, bool) {
	c := Command{
		Kind:       CmdMoveToTrash,
		TargetType: targetType,
		TargetID:   targetID,
	}
	switch targetType {
	case "scene":
		sc, ok := s.findScene(targetID)
		if !ok {
			return c, false
		}
		c.ParentType, c.ParentID = "chapter", sc.ChapterID
		c.DisplayName = sc.Title
		c.DisplayInfo = fmt.Sprintf("%d words", sc.WordCount)
		c.PayloadJSON = marshalPayload(sc)
	case "chapter":
		ch, ok := s.findChapter(targetID)
		if !ok {
			return c, false
		}
		c.ParentType, c.ParentID = "novel", ch.NovelID
		c.DisplayName = ch.Title
		c.PayloadJSON = marshalPayload(ch)
	case "novel":
		n, ok := s.findNovel(targetID)
		if !ok {
			return c, false
		}
		if n.UniverseID != nil {
			c.ParentType, c.ParentID = "universe", *n.UniverseID
		}
		c.DisplayName = n.Title
		c.PayloadJSON = marshalPayload(n)
	case "creature":
		for _, cr := range s.Creatures {
			if cr.ID == targetID {
				c.ParentType, c.ParentID = "universe", cr.UniverseID
				c.DisplayName = cr.Name
				c.DisplayInfo = cr.Kind
				c.PayloadJSON = marshalPayload(cr)
				return c, true
			}
		}
		return c, false
	case "location":
		for _, l := range s.Locations {
			if l.ID == targetID {
				c.ParentType, c.ParentID = "universe", l.UniverseID
				c.DisplayName = l.Name
				c.DisplayInfo = l.Kind
				c.PayloadJSON = marshalPayload(l)
				return c, true
			}
		}
		return c, false
	case "era":
		for _, e := range s.Eras {
			if e.ID == targetID {
				c.ParentType, c.ParentID = "universe", e.UniverseID
				c.DisplayName = e.Name
				c.PayloadJSON = marshalPayload(e)
				return c, true
			}
		}
		return c, false
	case "event":
		for _, e := range s.Events {
			if e.ID == targetID {
				c.ParentType, c.ParentID = "universe", e.UniverseID
				c.DisplayName = e.Title
				c.DisplayInfo = e.DisplayDate
				c.PayloadJSON = marshalPayload(e)
				return c, true
			}
		}
		return c, false
	case "card":
		card, colID, ok := s.findCard(targetID)
		if !ok {
			return c, false
		}
		c.ParentType, c.ParentID = "column", colID
		c.DisplayName = card.Title
		c.PayloadJSON = marshalPayload(card)
	case "board":
		for _, b := range s.Boards {
			if b.ID == targetID {
				c.DisplayName = b.Name
				c.PayloadJSON = marshalPayload(b)
				return c, true
			}
		}
		return c, false
	case "universe":
		for _, u := range s.Universes {
			if u.ID == targetID {
				c.DisplayName = u.Name
				c.PayloadJSON = marshalPayload(u)
				return c, true
			}
		}
		return c, false
	default:
		return c, false
	}
	return c, true
}

func marshalPayload(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// removeOptimistically drops the entity from the views and tree caches
// so the UI reflects the delete before the queue commits it.
func removeOptimistically(s *State, targetType, targetID string) {
	switch targetType {
	case "scene":
		s.ActiveScenes = filterScenes(s.ActiveScenes, targetID)
		for chID, bucket := range s.ScenesByChapter {
			s.ScenesByChapter[chID] = filterScenes(bucket, targetID)
		}
	case "chapter":
		s.ActiveChapters = filterChapters(s.ActiveChapters, targetID)
		for nID, bucket := range s.ChaptersByNovel {
			s.ChaptersByNovel[nID] = filterChapters(bucket, targetID)
		}
		delete(s.ScenesByChapter, targetID)
		delete(s.ExpandedChapters, targetID)
	case "novel":
		kept := s.Novels[:0]
		for _, n := range s.Novels {
			if n.ID != targetID {
				kept = append(kept, n)
			}
		}
		s.Novels = kept
		for _, ch := range s.ChaptersByNovel[targetID] {
			delete(s.ScenesByChapter, ch.ID)
			delete(s.ExpandedChapters, ch.ID)
		}
		delete(s.ChaptersByNovel, targetID)
		delete(s.ExpandedNovels, targetID)
	case "creature":
		kept := s.Creatures[:0]
		for _, cr := range s.Creatures {
			if cr.ID != targetID {
				kept = append(kept, cr)
			}
		}
		s.Creatures = kept
	case "location":
		kept := s.Locations[:0]
		for _, l := range s.Locations {
			if l.ID != targetID {
				kept = append(kept, l)
			}
		}
		s.Locations = kept
	case "era":
		kept := s.Eras[:0]
		for _, e := range s.Eras {
			if e.ID != targetID {
				kept = append(kept, e)
			}
		}
		s.Eras = kept
	case "event":
		kept := s.Events[:0]
		for _, e := range s.Events {
			if e.ID != targetID {
				kept = append(kept, e)
			}
		}
		s.Events = kept
	case "card":
		if _, colID, ok := s.findCard(targetID); ok {
			cards := s.Board.Cards[colID]
			kept := cards[:0]
			for _, card := range cards {
				if card.ID != targetID {
					kept = append(kept, card)
				}
			}
			s.Board.Cards[colID] = kept
		}
	}
	// Boards and universes are not removed optimistically: the queue's
	// post-success invalidation escapes the route and reloads the list.
}

func filterScenes(list []model.Scene, dropID string) []model.Scene {
	kept := list[:0]
	for _, sc := range list {
		if sc.ID != dropID {
			kept = append(kept, sc)
		}
	}
	return kept
}

func filterChapters(list []model.Chapter, dropID string) []model.Chapter {
	kept := list[:0]
	for _, c := range list {
		if c.ID != dropID {
			kept = append(kept, c)
		}
	}
	return kept
}
