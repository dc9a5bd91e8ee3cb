package store

import (
	"context"
	"strings"

	"fabledesk/internal/model"
)

func (s *Store) ListUniverses(ctx context.Context) ([]model.Universe, error) {
	return readJSONRows[model.Universe](ctx, s.db,
		`SELECT json FROM universes WHERE archived = 0 ORDER BY name, id`)
}

func (s *Store) GetUniverse(ctx context.Context, id string) (model.Universe, error) {
	return readJSONRow[model.Universe](ctx, s.db, "universe", id,
		`SELECT json FROM universes WHERE id = ?`, id)
}

func (s *Store) CreateUniverse(ctx context.Context, name, description string) (model.Universe, error) {
	if err := s.requireCapability(ctx, CapWorldbuilding); err != nil {
		return model.Universe{}, err
	}
	if strings.TrimSpace(name) == "" {
		return model.Universe{}, &ValidationError{Field: "name"}
	}
	u := model.Universe{ID: s.newID(), Name: name, Description: description}
	err := s.putUniverse(ctx, u)
	return u, err
}

func (s *Store) UpdateUniverse(ctx context.Context, u model.Universe) error {
	if err := s.requireCapability(ctx, CapWorldbuilding); err != nil {
		return err
	}
	if _, err := s.GetUniverse(ctx, u.ID); err != nil {
		return err
	}
	return s.putUniverse(ctx, u)
}

func (s *Store) putUniverse(ctx context.Context, u model.Universe) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO universes (id, name, archived, json, updated_at_unixms)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			archived = excluded.archived,
			json = excluded.json,
			updated_at_unixms = excluded.updated_at_unixms`,
		u.ID, u.Name, boolToInt(u.Archived), mustJSON(u), s.now().UnixMilli())
	return err
}

func (s *Store) ListCreatures(ctx context.Context, universeID string) ([]model.Creature, error) {
	return readJSONRows[model.Creature](ctx, s.db,
		`SELECT json FROM creatures WHERE universe_id = ? AND archived = 0 ORDER BY name, id`,
		universeID)
}

// SaveCreature upserts; an empty ID means create.
func (s *Store) SaveCreature(ctx context.Context, c model.Creature) (model.Creature, error) {
	if err := s.requireCapability(ctx, CapWorldbuilding); err != nil {
		return model.Creature{}, err
	}
	if strings.TrimSpace(c.Name) == "" {
		return model.Creature{}, &ValidationError{Field: "name"}
	}
	if c.ID == "" {
		c.ID = s.newID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO creatures (id, universe_id, name, archived, json, updated_at_unixms)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			universe_id = excluded.universe_id,
			name = excluded.name,
			archived = excluded.archived,
			json = excluded.json,
			updated_at_unixms = excluded.updated_at_unixms`,
		c.ID, c.UniverseID, c.Name, boolToInt(c.Archived), mustJSON(c), s.now().UnixMilli())
	return c, err
}

func (s *Store) ArchiveCreature(ctx context.Context, id string) error {
	if err := s.requireCapability(ctx, CapWorldbuilding); err != nil {
		return err
	}
	c, err := readJSONRow[model.Creature](ctx, s.db, "creature", id,
		`SELECT json FROM creatures WHERE id = ?`, id)
	if err != nil {
		return err
	}
	c.Archived = true
	_, err = s.SaveCreature(ctx, c)
	return err
}

func (s *Store) ListLocations(ctx context.Context, universeID string) ([]model.Location, error) {
	return readJSONRows[model.Location](ctx, s.db,
		`SELECT json FROM locations WHERE universe_id = ? ORDER BY name, id`,
		universeID)
}

func (s *Store) SaveLocation(ctx context.Context, l model.Location) (model.Location, error) {
	if err := s.requireCapability(ctx, CapWorldbuilding); err != nil {
		return model.Location{}, err
	}
	if strings.TrimSpace(l.Name) == "" {
		return model.Location{}, &ValidationError{Field: "name"}
	}
	if l.ID == "" {
		l.ID = s.newID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (id, universe_id, name, json, updated_at_unixms)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			universe_id = excluded.universe_id,
			name = excluded.name,
			json = excluded.json,
			updated_at_unixms = excluded.updated_at_unixms`,
		l.ID, l.UniverseID, l.Name, mustJSON(l), s.now().UnixMilli())
	return l, err
}

func (s *Store) ListEras(ctx context.Context, universeID string) ([]model.TimelineEra, error) {
	return readJSONRows[model.TimelineEra](ctx, s.db,
		`SELECT json FROM timeline_eras WHERE universe_id = ? ORDER BY start_year, id`,
		universeID)
}

func (s *Store) SaveEra(ctx context.Context, e model.TimelineEra) (model.TimelineEra, error) {
	if err := s.requireCapability(ctx, CapWorldbuilding); err != nil {
		return model.TimelineEra{}, err
	}
	if strings.TrimSpace(e.Name) == "" {
		return model.TimelineEra{}, &ValidationError{Field: "name"}
	}
	if e.ID == "" {
		e.ID = s.newID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO timeline_eras (id, universe_id, start_year, json, updated_at_unixms)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			universe_id = excluded.universe_id,
			start_year = excluded.start_year,
			json = excluded.json,
			updated_at_unixms = excluded.updated_at_unixms`,
		e.ID, e.UniverseID, e.StartYear, mustJSON(e), s.now().UnixMilli())
	return e, err
}

func (s *Store) ListEvents(ctx context.Context, universeID string) ([]model.TimelineEvent, error) {
	return readJSONRows[model.TimelineEvent](ctx, s.db,
		`SELECT json FROM timeline_events WHERE universe_id = ? ORDER BY year, id`,
		universeID)
}

func (s *Store) SaveEvent(ctx context.Context, e model.TimelineEvent) (model.TimelineEvent, error) {
	if err := s.requireCapability(ctx, CapWorldbuilding); err != nil {
		return model.TimelineEvent{}, err
	}
	if strings.TrimSpace(e.Title) == "" {
		return model.TimelineEvent{}, &ValidationError{Field: "title"}
	}
	if e.ID == "" {
		e.ID = s.newID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO timeline_events (id, universe_id, year, json, updated_at_unixms)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			universe_id = excluded.universe_id,
			year = excluded.year,
			json = excluded.json,
			updated_at_unixms = excluded.updated_at_unixms`,
		e.ID, e.UniverseID, e.Year, mustJSON(e), s.now().UnixMilli())
	return e, err
}
