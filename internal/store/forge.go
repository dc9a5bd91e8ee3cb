package store

import (
	"context"
	"strings"

	"fabledesk/internal/model"
)

func (s *Store) ListNovels(ctx context.Context, universeID string) ([]model.Novel, error) {
	return readJSONRows[model.Novel](ctx, s.db,
		`SELECT json FROM novels WHERE universe_id = ? ORDER BY title, id`,
		universeID)
}

func (s *Store) CreateNovel(ctx context.Context, n model.Novel) (model.Novel, error) {
	if err := s.requireCapability(ctx, CapForge); err != nil {
		return model.Novel{}, err
	}
	if strings.TrimSpace(n.Title) == "" {
		return model.Novel{}, &ValidationError{Field: "title"}
	}
	if n.ID == "" {
		n.ID = s.newID()
	}
	now := s.now()
	n.CreatedAt = now
	n.UpdatedAt = now
	return n, s.putNovel(ctx, n)
}

func (s *Store) UpdateNovel(ctx context.Context, n model.Novel) error {
	if err := s.requireCapability(ctx, CapForge); err != nil {
		return err
	}
	prev, err := readJSONRow[model.Novel](ctx, s.db, "novel", n.ID,
		`SELECT json FROM novels WHERE id = ?`, n.ID)
	if err != nil {
		return err
	}
	n.CreatedAt = prev.CreatedAt
	n.UpdatedAt = s.now()
	return s.putNovel(ctx, n)
}

func (s *Store) putNovel(ctx context.Context, n model.Novel) error {
	universeID := ""
	if n.UniverseID != nil {
		universeID = *n.UniverseID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO novels (id, universe_id, title, json, updated_at_unixms)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			universe_id = excluded.universe_id,
			title = excluded.title,
			json = excluded.json,
			updated_at_unixms = excluded.updated_at_unixms`,
		n.ID, universeID, n.Title, mustJSON(n), s.now().UnixMilli())
	return err
}

func (s *Store) ListChapters(ctx context.Context, novelID string) ([]model.Chapter, error) {
	return readJSONRows[model.Chapter](ctx, s.db,
		`SELECT json FROM chapters WHERE novel_id = ? ORDER BY position, id`,
		novelID)
}

func (s *Store) CreateChapter(ctx context.Context, c model.Chapter) (model.Chapter, error) {
	if err := s.requireCapability(ctx, CapForge); err != nil {
		return model.Chapter{}, err
	}
	if strings.TrimSpace(c.Title) == "" {
		return model.Chapter{}, &ValidationError{Field: "title"}
	}
	if c.ID == "" {
		c.ID = s.newID()
	}
	if c.Position == 0 {
		pos, err := s.nextPosition(ctx, `SELECT COALESCE(MAX(position), 0) FROM chapters WHERE novel_id = ?`, c.NovelID)
		if err != nil {
			return model.Chapter{}, err
		}
		c.Position = pos
	}
	now := s.now()
	c.CreatedAt = now
	c.UpdatedAt = now
	return c, s.putChapter(ctx, c)
}

func (s *Store) UpdateChapter(ctx context.Context, c model.Chapter) error {
	if err := s.requireCapability(ctx, CapForge); err != nil {
		return err
	}
	prev, err := readJSONRow[model.Chapter](ctx, s.db, "chapter", c.ID,
		`SELECT json FROM chapters WHERE id = ?`, c.ID)
	if err != nil {
		return err
	}
	c.CreatedAt = prev.CreatedAt
	c.UpdatedAt = s.now()
	return s.putChapter(ctx, c)
}

// ReorderChapter moves a chapter to a new position value; ordering is
// resolved by the position column on read.
func (s *Store) ReorderChapter(ctx context.Context, id string, position int64) error {
	if err := s.requireCapability(ctx, CapForge); err != nil {
		return err
	}
	c, err := readJSONRow[model.Chapter](ctx, s.db, "chapter", id,
		`SELECT json FROM chapters WHERE id = ?`, id)
	if err != nil {
		return err
	}
	c.Position = position
	c.UpdatedAt = s.now()
	return s.putChapter(ctx, c)
}

func (s *Store) putChapter(ctx context.Context, c model.Chapter) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chapters (id, novel_id, position, json, updated_at_unixms)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			novel_id = excluded.novel_id,
			position = excluded.position,
			json = excluded.json,
			updated_at_unixms = excluded.updated_at_unixms`,
		c.ID, c.NovelID, c.Position, mustJSON(c), s.now().UnixMilli())
	return err
}

func (s *Store) ListScenes(ctx context.Context, chapterID string) ([]model.Scene, error) {
	return readJSONRows[model.Scene](ctx, s.db,
		`SELECT json FROM scenes WHERE chapter_id = ? ORDER BY position, id`,
		chapterID)
}

func (s *Store) CreateScene(ctx context.Context, sc model.Scene) (model.Scene, error) {
	if err := s.requireCapability(ctx, CapForge); err != nil {
		return model.Scene{}, err
	}
	if strings.TrimSpace(sc.Title) == "" {
		return model.Scene{}, &ValidationError{Field: "title"}
	}
	if sc.ID == "" {
		sc.ID = s.newID()
	}
	if sc.Position == 0 {
		pos, err := s.nextPosition(ctx, `SELECT COALESCE(MAX(position), 0) FROM scenes WHERE chapter_id = ?`, sc.ChapterID)
		if err != nil {
			return model.Scene{}, err
		}
		sc.Position = pos
	}
	sc.WordCount = CountWords(sc.Body)
	now := s.now()
	sc.CreatedAt = now
	sc.UpdatedAt = now
	return sc, s.putScene(ctx, sc)
}

func (s *Store) UpdateScene(ctx context.Context, sc model.Scene) error {
	if err := s.requireCapability(ctx, CapForge); err != nil {
		return err
	}
	prev, err := readJSONRow[model.Scene](ctx, s.db, "scene", sc.ID,
		`SELECT json FROM scenes WHERE id = ?`, sc.ID)
	if err != nil {
		return err
	}
	sc.CreatedAt = prev.CreatedAt
	sc.WordCount = CountWords(sc.Body)
	sc.UpdatedAt = s.now()
	return s.putScene(ctx, sc)
}

func (s *Store) ReorderScene(ctx context.Context, id string, position int64) error {
	if err := s.requireCapability(ctx, CapForge); err != nil {
		return err
	}
	sc, err := readJSONRow[model.Scene](ctx, s.db, "scene", id,
		`SELECT json FROM scenes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	sc.Position = position
	sc.UpdatedAt = s.now()
	return s.putScene(ctx, sc)
}

func (s *Store) putScene(ctx context.Context, sc model.Scene) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scenes (id, chapter_id, position, json, updated_at_unixms)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			chapter_id = excluded.chapter_id,
			position = excluded.position,
			json = excluded.json,
			updated_at_unixms = excluded.updated_at_unixms`,
		sc.ID, sc.ChapterID, sc.Position, mustJSON(sc), s.now().UnixMilli())
	return err
}

func (s *Store) nextPosition(ctx context.Context, query string, arg string) (int64, error) {
	var max int64
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&max); err != nil {
		return 0, err
	}
	return max + 1000, nil
}

// CountWords is the word count shown next to scenes and summed per
// novel. Whitespace-delimited tokens.
func CountWords(body string) int {
	return len(strings.Fields(body))
}
