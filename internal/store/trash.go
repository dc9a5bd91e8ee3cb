package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fabledesk/internal/model"
)

// DefaultTrashRetentionDays bounds how long soft-deleted entries are
// kept before CleanupOldTrash removes them.
const DefaultTrashRetentionDays = 14

// TrashRequest describes a two-phase delete. PayloadJSON is the
// caller's serialized copy of the target; it is used only when the
// live row is already gone (optimistic UI deletes race the queue),
// otherwise the payload is captured from the database inside the
// delete transaction so cascades are never missed.
type TrashRequest struct {
	TargetType  string
	TargetID    string
	ParentType  string
	ParentID    string
	DisplayName string
	DisplayInfo string
	PayloadJSON string
}

// Cascade payload shapes. Single-entity kinds store the bare entity.
type universePayload struct {
	Universe  model.Universe        `json:"universe"`
	Creatures []model.Creature      `json:"creatures,omitempty"`
	Locations []model.Location      `json:"locations,omitempty"`
	Eras      []model.TimelineEra   `json:"eras,omitempty"`
	Events    []model.TimelineEvent `json:"events,omitempty"`
	Novels    []model.Novel         `json:"novels,omitempty"`
	Chapters  []model.Chapter       `json:"chapters,omitempty"`
	Scenes    []model.Scene         `json:"scenes,omitempty"`
}

type novelPayload struct {
	Novel    model.Novel     `json:"novel"`
	Chapters []model.Chapter `json:"chapters,omitempty"`
	Scenes   []model.Scene   `json:"scenes,omitempty"`
}

type chapterPayload struct {
	Chapter model.Chapter `json:"chapter"`
	Scenes  []model.Scene `json:"scenes,omitempty"`
}

type boardPayload struct {
	Board   model.Board         `json:"board"`
	Columns []model.BoardColumn `json:"columns,omitempty"`
	Cards   []model.Card        `json:"cards,omitempty"`
}

func (s *Store) ListTrash(ctx context.Context) ([]model.TrashEntry, error) {
	return readJSONRows[model.TrashEntry](ctx, s.db,
		`SELECT json FROM trash_entries ORDER BY deleted_at_unixms DESC, id`)
}

// MoveToTrashAndDelete inserts a trash entry, writes an audit row, and
// deletes the live rows (including descendants) in one transaction.
func (s *Store) MoveToTrashAndDelete(ctx context.Context, req TrashRequest) (string, error) {
	if err := s.requireCapability(ctx, CapTrash); err != nil {
		return "", err
	}
	entry := model.TrashEntry{
		ID:          s.newID(),
		DeletedAt:   s.now(),
		TargetType:  req.TargetType,
		TargetID:    req.TargetID,
		ParentType:  req.ParentType,
		ParentID:    req.ParentID,
		DisplayName: req.DisplayName,
		DisplayInfo: req.DisplayInfo,
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		payload, err := s.capturePayload(ctx, tx, req)
		if err != nil {
			return err
		}
		entry.PayloadJSON = payload
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO trash_entries (id, deleted_at_unixms, target_type, target_id, json)
			 VALUES (?, ?, ?, ?, ?)`,
			entry.ID, entry.DeletedAt.UnixMilli(), entry.TargetType, entry.TargetID,
			mustJSON(entry)); err != nil {
			return err
		}
		if err := s.deleteLiveRows(ctx, tx, req.TargetType, req.TargetID); err != nil {
			return err
		}
		return s.insertAudit(ctx, tx, "move_to_trash", req.TargetType, req.TargetID,
			fmt.Sprintf(`{"trashId":%q}`, entry.ID))
	})
	if err != nil {
		return "", err
	}
	return entry.ID, nil
}

func (s *Store) capturePayload(ctx context.Context, tx *sql.Tx, req TrashRequest) (string, error) {
	live, err := s.capturePayloadFromRows(ctx, tx, req.TargetType, req.TargetID)
	if err == nil {
		return live, nil
	}
	var nf *NotFoundError
	if errors.As(err, &nf) && req.PayloadJSON != "" {
		return req.PayloadJSON, nil
	}
	return "", err
}

func (s *Store) capturePayloadFromRows(ctx context.Context, tx *sql.Tx, targetType, targetID string) (string, error) {
	one := func(table string) (string, error) {
		var js string
		err := tx.QueryRowContext(ctx,
			`SELECT json FROM `+table+` WHERE id = ?`, targetID).Scan(&js)
		if err == sql.ErrNoRows {
			return "", &NotFoundError{Kind: targetType, ID: targetID}
		}
		return js, err
	}
	many := func(out any, query string, args ...any) error {
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		var raw []json.RawMessage
		for rows.Next() {
			var js string
			if err := rows.Scan(&js); err != nil {
				return err
			}
			raw = append(raw, json.RawMessage(js))
		}
		if err := rows.Err(); err != nil {
			return err
		}
		blob, _ := json.Marshal(raw)
		return json.Unmarshal(blob, out)
	}

	switch targetType {
	case "creature":
		return one("creatures")
	case "location":
		return one("locations")
	case "era":
		return one("timeline_eras")
	case "event":
		return one("timeline_events")
	case "scene":
		return one("scenes")
	case "card":
		return one("cards")
	case "chapter":
		js, err := one("chapters")
		if err != nil {
			return "", err
		}
		var p chapterPayload
		if err := json.Unmarshal([]byte(js), &p.Chapter); err != nil {
			return "", err
		}
		if err := many(&p.Scenes,
			`SELECT json FROM scenes WHERE chapter_id = ? ORDER BY position, id`, targetID); err != nil {
			return "", err
		}
		return mustJSON(p), nil
	case "novel":
		js, err := one("novels")
		if err != nil {
			return "", err
		}
		var p novelPayload
		if err := json.Unmarshal([]byte(js), &p.Novel); err != nil {
			return "", err
		}
		if err := many(&p.Chapters,
			`SELECT json FROM chapters WHERE novel_id = ? ORDER BY position, id`, targetID); err != nil {
			return "", err
		}
		if err := many(&p.Scenes,
			`SELECT json FROM scenes WHERE chapter_id IN (SELECT id FROM chapters WHERE novel_id = ?) ORDER BY position, id`, targetID); err != nil {
			return "", err
		}
		return mustJSON(p), nil
	case "board":
		js, err := one("boards")
		if err != nil {
			return "", err
		}
		var p boardPayload
		if err := json.Unmarshal([]byte(js), &p.Board); err != nil {
			return "", err
		}
		if err := many(&p.Columns,
			`SELECT json FROM board_columns WHERE board_id = ? ORDER BY position, id`, targetID); err != nil {
			return "", err
		}
		if err := many(&p.Cards,
			`SELECT json FROM cards WHERE column_id IN (SELECT id FROM board_columns WHERE board_id = ?) ORDER BY position, id`, targetID); err != nil {
			return "", err
		}
		return mustJSON(p), nil
	case "universe":
		js, err := one("universes")
		if err != nil {
			return "", err
		}
		var p universePayload
		if err := json.Unmarshal([]byte(js), &p.Universe); err != nil {
			return "", err
		}
		steps := []struct {
			out   any
			query string
		}{
			{&p.Creatures, `SELECT json FROM creatures WHERE universe_id = ? ORDER BY name, id`},
			{&p.Locations, `SELECT json FROM locations WHERE universe_id = ? ORDER BY name, id`},
			{&p.Eras, `SELECT json FROM timeline_eras WHERE universe_id = ? ORDER BY start_year, id`},
			{&p.Events, `SELECT json FROM timeline_events WHERE universe_id = ? ORDER BY year, id`},
			{&p.Novels, `SELECT json FROM novels WHERE universe_id = ? ORDER BY title, id`},
			{&p.Chapters, `SELECT json FROM chapters WHERE novel_id IN (SELECT id FROM novels WHERE universe_id = ?) ORDER BY position, id`},
			{&p.Scenes, `SELECT json FROM scenes WHERE chapter_id IN (SELECT id FROM chapters WHERE novel_id IN (SELECT id FROM novels WHERE universe_id = ?)) ORDER BY position, id`},
		}
		for _, st := range steps {
			if err := many(st.out, st.query, targetID); err != nil {
				return "", err
			}
		}
		return mustJSON(p), nil
	default:
		return "", fmt.Errorf("trash: unsupported target type %q", targetType)
	}
}

func (s *Store) deleteLiveRows(ctx context.Context, tx *sql.Tx, targetType, targetID string) error {
	exec := func(query string, args ...any) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	}
	switch targetType {
	case "creature":
		return exec(`DELETE FROM creatures WHERE id = ?`, targetID)
	case "location":
		return exec(`DELETE FROM locations WHERE id = ?`, targetID)
	case "era":
		return exec(`DELETE FROM timeline_eras WHERE id = ?`, targetID)
	case "event":
		return exec(`DELETE FROM timeline_events WHERE id = ?`, targetID)
	case "scene":
		return exec(`DELETE FROM scenes WHERE id = ?`, targetID)
	case "card":
		return exec(`DELETE FROM cards WHERE id = ?`, targetID)
	case "chapter":
		if err := exec(`DELETE FROM scenes WHERE chapter_id = ?`, targetID); err != nil {
			return err
		}
		return exec(`DELETE FROM chapters WHERE id = ?`, targetID)
	case "novel":
		if err := exec(`DELETE FROM scenes WHERE chapter_id IN (SELECT id FROM chapters WHERE novel_id = ?)`, targetID); err != nil {
			return err
		}
		if err := exec(`DELETE FROM chapters WHERE novel_id = ?`, targetID); err != nil {
			return err
		}
		return exec(`DELETE FROM novels WHERE id = ?`, targetID)
	case "board":
		if err := exec(`DELETE FROM cards WHERE column_id IN (SELECT id FROM board_columns WHERE board_id = ?)`, targetID); err != nil {
			return err
		}
		if err := exec(`DELETE FROM board_columns WHERE board_id = ?`, targetID); err != nil {
			return err
		}
		return exec(`DELETE FROM boards WHERE id = ?`, targetID)
	case "universe":
		steps := []string{
			`DELETE FROM creatures WHERE universe_id = ?`,
			`DELETE FROM locations WHERE universe_id = ?`,
			`DELETE FROM timeline_eras WHERE universe_id = ?`,
			`DELETE FROM timeline_events WHERE universe_id = ?`,
			`DELETE FROM scenes WHERE chapter_id IN (SELECT id FROM chapters WHERE novel_id IN (SELECT id FROM novels WHERE universe_id = ?))`,
			`DELETE FROM chapters WHERE novel_id IN (SELECT id FROM novels WHERE universe_id = ?)`,
			`DELETE FROM novels WHERE universe_id = ?`,
			`DELETE FROM snapshots WHERE universe_id = ?`,
			`DELETE FROM universes WHERE id = ?`,
		}
		for _, q := range steps {
			if err := exec(q, targetID); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("trash: unsupported target type %q", targetType)
	}
}

// RestoreFromTrash re-inserts the payload after validating that the
// recorded parent still exists. On any failure the entry is retained
// so the user can retry; on success the entry is consumed and an audit
// row written, all in one transaction.
func (s *Store) RestoreFromTrash(ctx context.Context, trashID string) error {
	if err := s.requireCapability(ctx, CapTrash); err != nil {
		return err
	}
	entry, err := readJSONRow[model.TrashEntry](ctx, s.db, "trash entry", trashID,
		`SELECT json FROM trash_entries WHERE id = ?`, trashID)
	if err != nil {
		return err
	}
	if err := s.requireCapability(ctx, capabilityForTarget(entry.TargetType)); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.ensureParentExists(ctx, tx, entry.ParentType, entry.ParentID); err != nil {
			return err
		}
		if err := s.restorePayload(ctx, tx, entry); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM trash_entries WHERE id = ?`, trashID); err != nil {
			return err
		}
		return s.insertAudit(ctx, tx, "restore_from_trash", entry.TargetType, entry.TargetID,
			fmt.Sprintf(`{"trashId":%q}`, trashID))
	})
}

func capabilityForTarget(targetType string) string {
	switch targetType {
	case "novel", "chapter", "scene":
		return CapForge
	case "board", "card":
		return CapBoards
	default:
		return CapWorldbuilding
	}
}

func (s *Store) ensureParentExists(ctx context.Context, tx *sql.Tx, parentType, parentID string) error {
	if parentType == "" || parentID == "" {
		return nil
	}
	tables := map[string]string{
		"universe": "universes",
		"novel":    "novels",
		"chapter":  "chapters",
		"board":    "boards",
		"column":   "board_columns",
	}
	table, ok := tables[parentType]
	if !ok {
		return fmt.Errorf("trash: unknown parent type %q", parentType)
	}
	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM `+table+` WHERE id = ?`, parentID).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return &NotFoundError{Kind: parentType, ID: parentID}
	}
	return nil
}

func (s *Store) restorePayload(ctx context.Context, tx *sql.Tx, entry model.TrashEntry) error {
	now := s.now().UnixMilli()
	raw := []byte(entry.PayloadJSON)

	insertScene := func(sc model.Scene) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO scenes (id, chapter_id, position, json, updated_at_unixms) VALUES (?, ?, ?, ?, ?)`,
			sc.ID, sc.ChapterID, sc.Position, mustJSON(sc), now)
		return err
	}
	insertChapter := func(c model.Chapter) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO chapters (id, novel_id, position, json, updated_at_unixms) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.NovelID, c.Position, mustJSON(c), now)
		return err
	}
	insertNovel := func(n model.Novel) error {
		universeID := ""
		if n.UniverseID != nil {
			universeID = *n.UniverseID
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO novels (id, universe_id, title, json, updated_at_unixms) VALUES (?, ?, ?, ?, ?)`,
			n.ID, universeID, n.Title, mustJSON(n), now)
		return err
	}

	switch entry.TargetType {
	case "creature":
		var c model.Creature
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO creatures (id, universe_id, name, archived, json, updated_at_unixms) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.UniverseID, c.Name, boolToInt(c.Archived), mustJSON(c), now)
		return err
	case "location":
		var l model.Location
		if err := json.Unmarshal(raw, &l); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO locations (id, universe_id, name, json, updated_at_unixms) VALUES (?, ?, ?, ?, ?)`,
			l.ID, l.UniverseID, l.Name, mustJSON(l), now)
		return err
	case "era":
		var e model.TimelineEra
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO timeline_eras (id, universe_id, start_year, json, updated_at_unixms) VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.UniverseID, e.StartYear, mustJSON(e), now)
		return err
	case "event":
		var e model.TimelineEvent
		if err := json.Unmarshal(raw, &e); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO timeline_events (id, universe_id, year, json, updated_at_unixms) VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.UniverseID, e.Year, mustJSON(e), now)
		return err
	case "card":
		var c model.Card
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cards (id, column_id, position, json, updated_at_unixms) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.ColumnID, c.Position, mustJSON(c), now)
		return err
	case "scene":
		var sc model.Scene
		if err := json.Unmarshal(raw, &sc); err != nil {
			return err
		}
		return insertScene(sc)
	case "chapter":
		var p chapterPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		if err := insertChapter(p.Chapter); err != nil {
			return err
		}
		for _, sc := range p.Scenes {
			if err := insertScene(sc); err != nil {
				return err
			}
		}
		return nil
	case "novel":
		var p novelPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		if err := insertNovel(p.Novel); err != nil {
			return err
		}
		for _, c := range p.Chapters {
			if err := insertChapter(c); err != nil {
				return err
			}
		}
		for _, sc := range p.Scenes {
			if err := insertScene(sc); err != nil {
				return err
			}
		}
		return nil
	case "board":
		var p boardPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO boards (id, name, json, updated_at_unixms) VALUES (?, ?, ?, ?)`,
			p.Board.ID, p.Board.Name, mustJSON(p.Board), now); err != nil {
			return err
		}
		for _, col := range p.Columns {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO board_columns (id, board_id, position, json, updated_at_unixms) VALUES (?, ?, ?, ?, ?)`,
				col.ID, col.BoardID, col.Position, mustJSON(col), now); err != nil {
				return err
			}
		}
		for _, c := range p.Cards {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cards (id, column_id, position, json, updated_at_unixms) VALUES (?, ?, ?, ?, ?)`,
				c.ID, c.ColumnID, c.Position, mustJSON(c), now); err != nil {
				return err
			}
		}
		return nil
	case "universe":
		var p universePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO universes (id, name, archived, json, updated_at_unixms) VALUES (?, ?, ?, ?, ?)`,
			p.Universe.ID, p.Universe.Name, boolToInt(p.Universe.Archived), mustJSON(p.Universe), now); err != nil {
			return err
		}
		for _, c := range p.Creatures {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO creatures (id, universe_id, name, archived, json, updated_at_unixms) VALUES (?, ?, ?, ?, ?, ?)`,
				c.ID, c.UniverseID, c.Name, boolToInt(c.Archived), mustJSON(c), now); err != nil {
				return err
			}
		}
		for _, l := range p.Locations {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO locations (id, universe_id, name, json, updated_at_unixms) VALUES (?, ?, ?, ?, ?)`,
				l.ID, l.UniverseID, l.Name, mustJSON(l), now); err != nil {
				return err
			}
		}
		for _, e := range p.Eras {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO timeline_eras (id, universe_id, start_year, json, updated_at_unixms) VALUES (?, ?, ?, ?, ?)`,
				e.ID, e.UniverseID, e.StartYear, mustJSON(e), now); err != nil {
				return err
			}
		}
		for _, e := range p.Events {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO timeline_events (id, universe_id, year, json, updated_at_unixms) VALUES (?, ?, ?, ?, ?)`,
				e.ID, e.UniverseID, e.Year, mustJSON(e), now); err != nil {
				return err
			}
		}
		for _, n := range p.Novels {
			if err := insertNovel(n); err != nil {
				return err
			}
		}
		for _, c := range p.Chapters {
			if err := insertChapter(c); err != nil {
				return err
			}
		}
		for _, sc := range p.Scenes {
			if err := insertScene(sc); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("trash: unsupported target type %q", entry.TargetType)
	}
}

// PermanentDelete consumes a trash entry without restoring it.
func (s *Store) PermanentDelete(ctx context.Context, trashID string) error {
	if err := s.requireCapability(ctx, CapTrash); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM trash_entries WHERE id = ?`, trashID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return &NotFoundError{Kind: "trash entry", ID: trashID}
		}
		return s.insertAudit(ctx, tx, "permanent_delete", "trash_entry", trashID, "")
	})
}

func (s *Store) EmptyTrash(ctx context.Context) error {
	if err := s.requireCapability(ctx, CapTrash); err != nil {
		return err
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM trash_entries`); err != nil {
			return err
		}
		return s.insertAudit(ctx, tx, "empty_trash", "trash", "", "")
	})
}

// CleanupOldTrash removes entries older than retentionDays (<=0 uses
// the default) and returns how many were removed.
func (s *Store) CleanupOldTrash(ctx context.Context, retentionDays int) (int64, error) {
	if err := s.requireCapability(ctx, CapTrash); err != nil {
		return 0, err
	}
	if retentionDays <= 0 {
		retentionDays = DefaultTrashRetentionDays
	}
	cutoff := s.now().Add(-time.Duration(retentionDays) * 24 * time.Hour).UnixMilli()
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM trash_entries WHERE deleted_at_unixms < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
