package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"fabledesk/internal/model"
)

// snapshotPayload captures a universe's worldbuilding rows. Forge data
// is deliberately outside snapshot scope.
type snapshotPayload struct {
	Creatures []model.Creature      `json:"creatures,omitempty"`
	Locations []model.Location      `json:"locations,omitempty"`
	Eras      []model.TimelineEra   `json:"eras,omitempty"`
	Events    []model.TimelineEvent `json:"events,omitempty"`
}

func (s *Store) ListSnapshots(ctx context.Context, universeID string) ([]model.UniverseSnapshot, error) {
	return readJSONRows[model.UniverseSnapshot](ctx, s.db,
		`SELECT json FROM snapshots WHERE universe_id = ? ORDER BY created_at_unixms DESC, id`,
		universeID)
}

func (s *Store) SnapshotCreate(ctx context.Context, universeID, name string) (model.UniverseSnapshot, error) {
	if err := s.requireCapability(ctx, CapSnapshots); err != nil {
		return model.UniverseSnapshot{}, err
	}
	if _, err := s.GetUniverse(ctx, universeID); err != nil {
		return model.UniverseSnapshot{}, err
	}
	var p snapshotPayload
	var err error
	// Not ListCreatures: that is the view query and hides archived
	// rows, but restore wipes the whole table before re-inserting the
	// payload, so the payload must carry the whole bestiary.
	p.Creatures, err = readJSONRows[model.Creature](ctx, s.db,
		`SELECT json FROM creatures WHERE universe_id = ? ORDER BY name, id`,
		universeID)
	if err != nil {
		return model.UniverseSnapshot{}, err
	}
	if p.Locations, err = s.ListLocations(ctx, universeID); err != nil {
		return model.UniverseSnapshot{}, err
	}
	if p.Eras, err = s.ListEras(ctx, universeID); err != nil {
		return model.UniverseSnapshot{}, err
	}
	if p.Events, err = s.ListEvents(ctx, universeID); err != nil {
		return model.UniverseSnapshot{}, err
	}
	snap := model.UniverseSnapshot{
		ID:          s.newID(),
		UniverseID:  universeID,
		Name:        name,
		CreatedAt:   s.now(),
		PayloadJSON: mustJSON(p),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, universe_id, created_at_unixms, json) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.UniverseID, snap.CreatedAt.UnixMilli(), mustJSON(snap))
	return snap, err
}

func (s *Store) SnapshotDelete(ctx context.Context, snapshotID string) error {
	if err := s.requireCapability(ctx, CapSnapshots); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, snapshotID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &NotFoundError{Kind: "snapshot", ID: snapshotID}
	}
	return nil
}

// SnapshotRestore replaces the universe's worldbuilding rows with the
// snapshot's contents in one transaction.
func (s *Store) SnapshotRestore(ctx context.Context, snapshotID string) error {
	if err := s.requireCapability(ctx, CapSnapshots); err != nil {
		return err
	}
	snap, err := readJSONRow[model.UniverseSnapshot](ctx, s.db, "snapshot", snapshotID,
		`SELECT json FROM snapshots WHERE id = ?`, snapshotID)
	if err != nil {
		return err
	}
	if _, err := s.GetUniverse(ctx, snap.UniverseID); err != nil {
		return err
	}
	var p snapshotPayload
	if err := json.Unmarshal([]byte(snap.PayloadJSON), &p); err != nil {
		return err
	}
	now := s.now().UnixMilli()
	return s.inTx(ctx, func(tx *sql.Tx) error {
		wipes := []string{
			`DELETE FROM creatures WHERE universe_id = ?`,
			`DELETE FROM locations WHERE universe_id = ?`,
			`DELETE FROM timeline_eras WHERE universe_id = ?`,
			`DELETE FROM timeline_events WHERE universe_id = ?`,
		}
		for _, q := range wipes {
			if _, err := tx.ExecContext(ctx, q, snap.UniverseID); err != nil {
				return err
			}
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
		return s.insertAudit(ctx, tx, "snapshot_restore", "universe", snap.UniverseID, "")
	})
}
