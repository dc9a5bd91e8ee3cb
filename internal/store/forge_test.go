package store

import (
	"errors"
	"testing"
	"time"

	"fabledesk/internal/model"
)

func TestCreateChapter_PositionsStepBy1000(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	n, err := s.CreateNovel(ctx, model.Novel{Title: "Saltglass"})
	if err != nil {
		t.Fatalf("create novel: %v", err)
	}

	first, err := s.CreateChapter(ctx, model.Chapter{NovelID: n.ID, Title: "Landfall"})
	if err != nil {
		t.Fatalf("create chapter: %v", err)
	}
	second, err := s.CreateChapter(ctx, model.Chapter{NovelID: n.ID, Title: "The Locked Tide"})
	if err != nil {
		t.Fatalf("create chapter: %v", err)
	}

	if first.Position != 1000 || second.Position != 2000 {
		t.Fatalf("positions = %d, %d", first.Position, second.Position)
	}

	list, err := s.ListChapters(ctx, n.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("chapter order = %+v", list)
	}
}

func TestScene_WordCountTracksBody(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	n, _ := s.CreateNovel(ctx, model.Novel{Title: "Saltglass"})
	ch, _ := s.CreateChapter(ctx, model.Chapter{NovelID: n.ID, Title: "Landfall"})

	sc, err := s.CreateScene(ctx, model.Scene{
		ChapterID: ch.ID,
		Title:     "The pier",
		Body:      "Three gulls over grey water.",
	})
	if err != nil {
		t.Fatalf("create scene: %v", err)
	}
	if sc.WordCount != 5 {
		t.Fatalf("create word count = %d", sc.WordCount)
	}

	sc.Body = "Three gulls\nover   grey water, then none."
	if err := s.UpdateScene(ctx, sc); err != nil {
		t.Fatalf("update scene: %v", err)
	}
	list, err := s.ListScenes(ctx, ch.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].WordCount != 7 {
		t.Fatalf("stored word count = %+v", list)
	}
}

func TestUpdateNovel_PreservesCreatedAt(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	created := time.Unix(1_700_000_000, 0).UTC()
	s.now = func() time.Time { return created }

	n, err := s.CreateNovel(ctx, model.Novel{Title: "Saltglass"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	later := created.Add(48 * time.Hour)
	s.now = func() time.Time { return later }
	n.Synopsis = "A harbor town bargains with its own tide."
	if err := s.UpdateNovel(ctx, n); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, err := s.ListNovels(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("novels = %+v", list)
	}
	got := list[0]
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt rewritten to %v", got.CreatedAt)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Fatalf("UpdatedAt = %v, want %v", got.UpdatedAt, later)
	}
	if got.Synopsis == "" {
		t.Fatalf("update dropped the synopsis")
	}
}

func TestReorderScene_ChangesListOrder(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	n, _ := s.CreateNovel(ctx, model.Novel{Title: "Saltglass"})
	ch, _ := s.CreateChapter(ctx, model.Chapter{NovelID: n.ID, Title: "Landfall"})
	a, _ := s.CreateScene(ctx, model.Scene{ChapterID: ch.ID, Title: "A"})
	b, _ := s.CreateScene(ctx, model.Scene{ChapterID: ch.ID, Title: "B"})

	// Move B in front of A.
	if err := s.ReorderScene(ctx, b.ID, a.Position/2); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	list, err := s.ListScenes(ctx, ch.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != b.ID {
		t.Fatalf("order after reorder = %+v", list)
	}
}

func TestUpdateScene_UnknownIDIsNotFound(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	err := s.UpdateScene(ctx, model.Scene{ID: "nope", Title: "ghost"})
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "scene" {
		t.Fatalf("expected scene not-found, got %v", err)
	}
}
