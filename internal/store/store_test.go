package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, filepath.Join(t.TempDir(), "project.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, ctx
}

func TestOpen_FreshProjectHasEverythingEnabled(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	for _, cap := range []string{CapWorldbuilding, CapForge, CapBoards, CapTrash, CapSnapshots} {
		ok, err := s.IsEnabled(ctx, cap)
		if err != nil {
			t.Fatalf("IsEnabled(%s): %v", cap, err)
		}
		if !ok {
			t.Fatalf("fresh project has %s disabled", cap)
		}
	}
}

func TestOpen_DoesNotOverwriteExistingCapabilities(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "project.db")

	s, err := Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.SetCapabilities(ctx, map[string]bool{CapWorldbuilding: false}); err != nil {
		t.Fatalf("set capabilities: %v", err)
	}
	s.Close()

	s, err = Open(ctx, path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	ok, err := s.IsEnabled(ctx, CapWorldbuilding)
	if err != nil {
		t.Fatalf("IsEnabled: %v", err)
	}
	if ok {
		t.Fatalf("reopen reset an explicit gate map")
	}
}

func TestCapabilities_FailClosed(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)
	if err := s.SetCapabilities(ctx, map[string]bool{}); err != nil {
		t.Fatalf("set capabilities: %v", err)
	}

	_, err := s.CreateUniverse(ctx, "Aether", "")
	var gate *CapabilityDisabledError
	if !errors.As(err, &gate) {
		t.Fatalf("expected CapabilityDisabledError, got %v", err)
	}
	if gate.Name != CapWorldbuilding {
		t.Fatalf("gate names %q", gate.Name)
	}
	if want := "Capability 'worldbuilding' is disabled in this project"; err.Error() != want {
		t.Fatalf("message = %q, want %q", err.Error(), want)
	}

	// Unknown names are disabled, not errors.
	ok, err := s.IsEnabled(ctx, "telepathy")
	if err != nil || ok {
		t.Fatalf("unknown capability: ok=%v err=%v", ok, err)
	}
}

func TestCapabilities_LegacyAliasesResolve(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)
	if err := s.SetCapabilities(ctx, map[string]bool{CapForge: true}); err != nil {
		t.Fatalf("set capabilities: %v", err)
	}

	for alias, want := range map[string]bool{
		"novels":   true,
		"chapters": true,
		"kanban":   false,
		"bestiary": false,
	} {
		ok, err := s.IsEnabled(ctx, alias)
		if err != nil {
			t.Fatalf("IsEnabled(%s): %v", alias, err)
		}
		if ok != want {
			t.Fatalf("alias %s resolved to %v, want %v", alias, ok, want)
		}
	}
}

func TestCreateUniverse_RejectsBlankName(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	_, err := s.CreateUniverse(ctx, "   ", "desc")
	var v *ValidationError
	if !errors.As(err, &v) || v.Field != "name" {
		t.Fatalf("expected name validation error, got %v", err)
	}
}

func TestUniverse_ListExcludesArchived(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	u, err := s.CreateUniverse(ctx, "Aether", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateUniverse(ctx, "Brightwater", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	u.Archived = true
	if err := s.UpdateUniverse(ctx, u); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, err := s.ListUniverses(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Brightwater" {
		t.Fatalf("list = %+v", list)
	}

	// Archived rows stay readable by id.
	got, err := s.GetUniverse(ctx, u.ID)
	if err != nil || !got.Archived {
		t.Fatalf("archived universe lookup: %+v, %v", got, err)
	}
}

func TestAudit_AppendAndListNewestFirst(t *testing.T) {
	t.Parallel()
	s, ctx := openTestStore(t)

	base := time.Unix(1_700_000_000, 0)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for _, action := range []string{"create", "save", "archive"} {
		if err := s.AppendAudit(ctx, action, "creature", "c1", ""); err != nil {
			t.Fatalf("append %s: %v", action, err)
		}
	}

	entries, err := s.ListAudit(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("limit ignored: %d entries", len(entries))
	}
	if entries[0].Action != "archive" || entries[1].Action != "save" {
		t.Fatalf("ordering = %s, %s", entries[0].Action, entries[1].Action)
	}
}
