package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"fabledesk/internal/model"
)

func seedNovelTree(t *testing.T, s *Store) (model.Universe, model.Novel, []model.Chapter, []model.Scene) {
	t.Helper()
	ctx := context.Background()

	u, err := s.CreateUniverse(ctx, "Aether", "")
	if err != nil {
		t.Fatalf("create universe: %v", err)
	}
	n, err := s.CreateNovel(ctx, model.Novel{UniverseID: &u.ID, Title: "Saltglass"})
	if err != nil {
		t.Fatalf("create novel: %v", err)
	}
	ch1, _ := s.CreateChapter(ctx, model.Chapter{NovelID: n.ID, Title: "Landfall"})
	ch2, _ := s.CreateChapter(ctx, model.Chapter{NovelID: n.ID, Title: "The Locked Tide"})
	sc1, _ := s.CreateScene(ctx, model.Scene{ChapterID: ch1.ID, Title: "The pier", Body: "Grey water."})
	sc2, _ := s.CreateScene(ctx, model.Scene{ChapterID: ch2.ID, Title: "The bell", Body: "It rang twice."})
	return u, n, []model.Chapter{ch1, ch2}, []model.Scene{sc1, sc2}
}

func TestTrash_NovelCascadeRoundTrip(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)
	u, n, chapters, _ := seedNovelTree(t, s)

	trashID, err := s.MoveToTrashAndDelete(ctx, TrashRequest{
		TargetType:  "novel",
		TargetID:    n.ID,
		ParentType:  "universe",
		ParentID:    u.ID,
		DisplayName: n.Title,
	})
	if err != nil {
		t.Fatalf("move to trash: %v", err)
	}

	if novels, _ := s.ListNovels(ctx, u.ID); len(novels) != 0 {
		t.Fatalf("live novel rows survived: %+v", novels)
	}
	for _, ch := range chapters {
		if scenes, _ := s.ListScenes(ctx, ch.ID); len(scenes) != 0 {
			t.Fatalf("live scene rows survived under %s", ch.Title)
		}
	}

	entries, err := s.ListTrash(ctx)
	if err != nil {
		t.Fatalf("list trash: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != trashID || entries[0].DisplayName != "Saltglass" {
		t.Fatalf("trash entries = %+v", entries)
	}

	if err := s.RestoreFromTrash(ctx, trashID); err != nil {
		t.Fatalf("restore: %v", err)
	}

	novels, _ := s.ListNovels(ctx, u.ID)
	if len(novels) != 1 || novels[0].ID != n.ID {
		t.Fatalf("novel not restored: %+v", novels)
	}
	restoredChapters, _ := s.ListChapters(ctx, n.ID)
	if len(restoredChapters) != 2 {
		t.Fatalf("chapters not restored: %+v", restoredChapters)
	}
	for _, ch := range chapters {
		scenes, _ := s.ListScenes(ctx, ch.ID)
		if len(scenes) != 1 {
			t.Fatalf("scenes not restored under %s: %+v", ch.Title, scenes)
		}
	}
	if entries, _ := s.ListTrash(ctx); len(entries) != 0 {
		t.Fatalf("entry not consumed on restore: %+v", entries)
	}
}

func TestTrash_RestoreFailsClosedWhenParentMissing(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)
	u, n, chapters, _ := seedNovelTree(t, s)

	chTrashID, err := s.MoveToTrashAndDelete(ctx, TrashRequest{
		TargetType: "chapter",
		TargetID:   chapters[0].ID,
		ParentType: "novel",
		ParentID:   n.ID,
	})
	if err != nil {
		t.Fatalf("trash chapter: %v", err)
	}
	if _, err := s.MoveToTrashAndDelete(ctx, TrashRequest{
		TargetType: "novel",
		TargetID:   n.ID,
		ParentType: "universe",
		ParentID:   u.ID,
	}); err != nil {
		t.Fatalf("trash novel: %v", err)
	}

	err = s.RestoreFromTrash(ctx, chTrashID)
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "novel" {
		t.Fatalf("expected missing-parent error, got %v", err)
	}

	// The failed restore keeps the entry so the user can restore the
	// novel first and retry.
	entries, _ := s.ListTrash(ctx)
	found := false
	for _, e := range entries {
		if e.ID == chTrashID {
			found = true
		}
	}
	if !found {
		t.Fatalf("failed restore consumed the entry: %+v", entries)
	}
	if chs, _ := s.ListChapters(ctx, n.ID); len(chs) != 0 {
		t.Fatalf("failed restore left partial rows: %+v", chs)
	}
}

func TestTrash_ClientPayloadUsedWhenRowAlreadyGone(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)
	_, _, chapters, scenes := seedNovelTree(t, s)

	// Simulate the optimistic-delete race: the live row is gone before
	// the trash request lands, but the request carries a payload copy.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM scenes WHERE id = ?`, scenes[0].ID); err != nil {
		t.Fatalf("delete row: %v", err)
	}

	trashID, err := s.MoveToTrashAndDelete(ctx, TrashRequest{
		TargetType:  "scene",
		TargetID:    scenes[0].ID,
		ParentType:  "chapter",
		ParentID:    chapters[0].ID,
		PayloadJSON: mustJSON(scenes[0]),
	})
	if err != nil {
		t.Fatalf("move to trash: %v", err)
	}

	if err := s.RestoreFromTrash(ctx, trashID); err != nil {
		t.Fatalf("restore from client payload: %v", err)
	}
	restored, _ := s.ListScenes(ctx, chapters[0].ID)
	if len(restored) != 1 || restored[0].Body != scenes[0].Body {
		t.Fatalf("restored scene = %+v", restored)
	}
}

func TestTrash_MissingRowWithoutPayloadFails(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	_, err := s.MoveToTrashAndDelete(ctx, TrashRequest{
		TargetType: "creature",
		TargetID:   "ghost",
	})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if entries, _ := s.ListTrash(ctx); len(entries) != 0 {
		t.Fatalf("failed trash left an entry: %+v", entries)
	}
}

func TestTrash_CleanupRemovesOnlyExpiredEntries(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)
	_, _, chapters, scenes := seedNovelTree(t, s)

	base := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time { return base }
	oldID, err := s.MoveToTrashAndDelete(ctx, TrashRequest{
		TargetType: "scene", TargetID: scenes[0].ID,
		ParentType: "chapter", ParentID: chapters[0].ID,
	})
	if err != nil {
		t.Fatalf("trash old: %v", err)
	}

	s.now = func() time.Time { return base.Add(10 * 24 * time.Hour) }
	freshID, err := s.MoveToTrashAndDelete(ctx, TrashRequest{
		TargetType: "scene", TargetID: scenes[1].ID,
		ParentType: "chapter", ParentID: chapters[1].ID,
	})
	if err != nil {
		t.Fatalf("trash fresh: %v", err)
	}

	// Day 15: the first entry is past the default retention, the second
	// is not.
	s.now = func() time.Time { return base.Add(15 * 24 * time.Hour) }
	removed, err := s.CleanupOldTrash(ctx, 0)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}

	entries, _ := s.ListTrash(ctx)
	if len(entries) != 1 || entries[0].ID != freshID {
		t.Fatalf("surviving entries = %+v (old=%s)", entries, oldID)
	}
}

func TestTrash_PermanentDeleteConsumesEntry(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)
	_, _, chapters, scenes := seedNovelTree(t, s)

	trashID, err := s.MoveToTrashAndDelete(ctx, TrashRequest{
		TargetType: "scene", TargetID: scenes[0].ID,
		ParentType: "chapter", ParentID: chapters[0].ID,
	})
	if err != nil {
		t.Fatalf("trash: %v", err)
	}

	if err := s.PermanentDelete(ctx, trashID); err != nil {
		t.Fatalf("permanent delete: %v", err)
	}
	if err := s.RestoreFromTrash(ctx, trashID); err == nil {
		t.Fatalf("restore succeeded after permanent delete")
	}
	if entries, _ := s.ListTrash(ctx); len(entries) != 0 {
		t.Fatalf("entries = %+v", entries)
	}
}
