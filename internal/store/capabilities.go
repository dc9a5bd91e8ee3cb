package store

import (
	"context"
	"database/sql"
	"encoding/json"
)

// Canonical capability names. Per-project feature gates live as a JSON
// map in app_meta under "capabilities". Absence of the row, the key,
// or a parse failure all read as disabled.
const (
	CapWorldbuilding = "worldbuilding"
	CapForge         = "forge"
	CapBoards        = "boards"
	CapTrash         = "trash"
	CapSnapshots     = "snapshots"
)

const capabilitiesKey = "capabilities"

// capabilityAliases maps the names older project files used onto the
// canonical set.
var capabilityAliases = map[string]string{
	"novel":     CapForge,
	"novels":    CapForge,
	"chapters":  CapForge,
	"scenes":    CapForge,
	"pm":        CapBoards,
	"kanban":    CapBoards,
	"universes": CapWorldbuilding,
	"bestiary":  CapWorldbuilding,
	"locations": CapWorldbuilding,
	"timeline":  CapWorldbuilding,
}

func DefaultCapabilities() map[string]bool {
	return map[string]bool{
		CapWorldbuilding: true,
		CapForge:         true,
		CapBoards:        true,
		CapTrash:         true,
		CapSnapshots:     true,
	}
}

func (s *Store) Capabilities(ctx context.Context) (map[string]bool, error) {
	var js string
	err := s.db.QueryRowContext(ctx,
		`SELECT v FROM app_meta WHERE k = ?`, capabilitiesKey).Scan(&js)
	if err == sql.ErrNoRows {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, err
	}
	caps := map[string]bool{}
	if err := json.Unmarshal([]byte(js), &caps); err != nil {
		// Fail closed on a corrupt gate map rather than guessing.
		s.log.Printf("capabilities: unreadable meta row: %v", err)
		return map[string]bool{}, nil
	}
	return caps, nil
}

func (s *Store) SetCapabilities(ctx context.Context, caps map[string]bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO app_meta (k, v) VALUES (?, ?)
		 ON CONFLICT(k) DO UPDATE SET v = excluded.v`,
		capabilitiesKey, mustJSON(caps))
	return err
}

// IsEnabled resolves aliases and reads the gate map fail-closed.
func (s *Store) IsEnabled(ctx context.Context, name string) (bool, error) {
	if canonical, ok := capabilityAliases[name]; ok {
		name = canonical
	}
	caps, err := s.Capabilities(ctx)
	if err != nil {
		return false, err
	}
	return caps[name], nil
}

func (s *Store) requireCapability(ctx context.Context, name string) error {
	ok, err := s.IsEnabled(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return &CapabilityDisabledError{Name: name}
	}
	return nil
}
