package store

import (
	"errors"
	"testing"

	"fabledesk/internal/model"
)

func TestSnapshot_RestoreRewindsWorldbuilding(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	u, err := s.CreateUniverse(ctx, "Aether", "")
	if err != nil {
		t.Fatalf("create universe: %v", err)
	}
	if _, err := s.SaveCreature(ctx, model.Creature{UniverseID: u.ID, Name: "Mire Wyrm", Danger: 4}); err != nil {
		t.Fatalf("save creature: %v", err)
	}
	if _, err := s.SaveLocation(ctx, model.Location{UniverseID: u.ID, Name: "The Shallows"}); err != nil {
		t.Fatalf("save location: %v", err)
	}

	snap, err := s.SnapshotCreate(ctx, u.ID, "before the purge")
	if err != nil {
		t.Fatalf("snapshot create: %v", err)
	}

	// Diverge: add a creature and drop the location.
	if _, err := s.SaveCreature(ctx, model.Creature{UniverseID: u.ID, Name: "Ash Heron"}); err != nil {
		t.Fatalf("save creature: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM locations WHERE universe_id = ?`, u.ID); err != nil {
		t.Fatalf("drop locations: %v", err)
	}

	if err := s.SnapshotRestore(ctx, snap.ID); err != nil {
		t.Fatalf("snapshot restore: %v", err)
	}

	creatures, _ := s.ListCreatures(ctx, u.ID)
	if len(creatures) != 1 || creatures[0].Name != "Mire Wyrm" {
		t.Fatalf("creatures after restore = %+v", creatures)
	}
	locations, _ := s.ListLocations(ctx, u.ID)
	if len(locations) != 1 || locations[0].Name != "The Shallows" {
		t.Fatalf("locations after restore = %+v", locations)
	}

	// Snapshots survive their own restore.
	snaps, _ := s.ListSnapshots(ctx, u.ID)
	if len(snaps) != 1 {
		t.Fatalf("snapshots = %+v", snaps)
	}
}

func TestSnapshot_RoundTripKeepsArchivedCreatures(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	u, err := s.CreateUniverse(ctx, "Aether", "")
	if err != nil {
		t.Fatalf("create universe: %v", err)
	}
	c, err := s.SaveCreature(ctx, model.Creature{UniverseID: u.ID, Name: "Mire Wyrm"})
	if err != nil {
		t.Fatalf("save creature: %v", err)
	}
	if err := s.ArchiveCreature(ctx, c.ID); err != nil {
		t.Fatalf("archive creature: %v", err)
	}

	snap, err := s.SnapshotCreate(ctx, u.ID, "with the wyrm shelved")
	if err != nil {
		t.Fatalf("snapshot create: %v", err)
	}
	if err := s.SnapshotRestore(ctx, snap.ID); err != nil {
		t.Fatalf("snapshot restore: %v", err)
	}

	// The row must survive with its archived flag, even though the
	// bestiary view hides it.
	var count, archived int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(archived), 0) FROM creatures WHERE id = ?`, c.ID,
	).Scan(&count, &archived); err != nil {
		t.Fatalf("count creature row: %v", err)
	}
	if count != 1 {
		t.Fatalf("archived creature destroyed by round-trip (rows = %d)", count)
	}
	if archived != 1 {
		t.Fatalf("creature came back unarchived")
	}
	if visible, _ := s.ListCreatures(ctx, u.ID); len(visible) != 0 {
		t.Fatalf("archived creature leaked into the bestiary view: %+v", visible)
	}
}

func TestSnapshot_LeavesForgeAlone(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	u, _ := s.CreateUniverse(ctx, "Aether", "")
	snap, err := s.SnapshotCreate(ctx, u.ID, "empty world")
	if err != nil {
		t.Fatalf("snapshot create: %v", err)
	}

	n, err := s.CreateNovel(ctx, model.Novel{UniverseID: &u.ID, Title: "Saltglass"})
	if err != nil {
		t.Fatalf("create novel: %v", err)
	}

	if err := s.SnapshotRestore(ctx, snap.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	novels, _ := s.ListNovels(ctx, u.ID)
	if len(novels) != 1 || novels[0].ID != n.ID {
		t.Fatalf("restore touched forge rows: %+v", novels)
	}
}

func TestSnapshot_DeleteUnknown(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	err := s.SnapshotDelete(ctx, "ghost")
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "snapshot" {
		t.Fatalf("expected snapshot not-found, got %v", err)
	}
}

func TestSnapshot_RequiresCapability(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	u, _ := s.CreateUniverse(ctx, "Aether", "")
	caps := DefaultCapabilities()
	caps[CapSnapshots] = false
	if err := s.SetCapabilities(ctx, caps); err != nil {
		t.Fatalf("set capabilities: %v", err)
	}

	_, err := s.SnapshotCreate(ctx, u.ID, "blocked")
	var gate *CapabilityDisabledError
	if !errors.As(err, &gate) || gate.Name != CapSnapshots {
		t.Fatalf("expected snapshots gate, got %v", err)
	}
}
