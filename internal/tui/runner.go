package tui

import (
	"context"
	"fmt"
	"time"

	"fabledesk/internal/core"
	"fabledesk/internal/logging"
	"fabledesk/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// coreMsg wraps an engine message so bubbletea routes it back through
// the single dispatch point.
type coreMsg struct{ msg core.Msg }

// toastTickMsg drives toast expiry once a second while any are shown.
type toastTickMsg struct{ at time.Time }

// effectCmds converts the engine's effects into bubbletea commands.
// Fetches and writes run on the program's goroutine pool and re-enter
// Update as coreMsg; audit appends are fire-and-forget.
func effectCmds(st *store.Store, log *logging.Logger, effects []core.Effect) []tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(effects))
	for _, e := range effects {
		switch ef := e.(type) {
		case core.FetchEffect:
			cmds = append(cmds, fetchCmd(st, ef))
		case core.RunCommandEffect:
			cmds = append(cmds, runCommandCmd(st, ef.Command))
		case core.DebounceEffect:
			token := ef.Token
			cmds = append(cmds, tea.Tick(ef.Delay, func(time.Time) tea.Msg {
				return coreMsg{core.DebounceElapsed{Token: token}}
			}))
		case core.AuditEffect:
			cmds = append(cmds, auditCmd(st, log, ef))
		}
	}
	return cmds
}

func fetchCmd(st *store.Store, ef core.FetchEffect) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		switch ef.Kind {
		case core.FetchUniverses:
			us, err := st.ListUniverses(ctx)
			return coreMsg{core.UniversesFetched{Universes: us, Err: err}}
		case core.FetchBoards:
			bs, err := st.ListBoards(ctx)
			return coreMsg{core.BoardsFetched{Boards: bs, Err: err}}
		case core.FetchCreatures:
			cs, err := st.ListCreatures(ctx, ef.Scope)
			return coreMsg{core.CreaturesFetched{UniverseID: ef.Scope, Creatures: cs, Err: err}}
		case core.FetchLocations:
			ls, err := st.ListLocations(ctx, ef.Scope)
			return coreMsg{core.LocationsFetched{UniverseID: ef.Scope, Locations: ls, Err: err}}
		case core.FetchEras:
			es, err := st.ListEras(ctx, ef.Scope)
			return coreMsg{core.ErasFetched{UniverseID: ef.Scope, Eras: es, Err: err}}
		case core.FetchEvents:
			es, err := st.ListEvents(ctx, ef.Scope)
			return coreMsg{core.EventsFetched{UniverseID: ef.Scope, Events: es, Err: err}}
		case core.FetchSnapshots:
			ss, err := st.ListSnapshots(ctx, ef.Scope)
			return coreMsg{core.SnapshotsFetched{UniverseID: ef.Scope, Snapshots: ss, Err: err}}
		case core.FetchNovels:
			ns, err := st.ListNovels(ctx, ef.Scope)
			return coreMsg{core.NovelsFetched{UniverseID: ef.Scope, Novels: ns, Err: err}}
		case core.FetchChapters:
			chs, err := st.ListChapters(ctx, ef.Scope)
			return coreMsg{core.ChaptersFetched{NovelID: ef.Scope, Chapters: chs, Err: err}}
		case core.FetchScenes:
			scs, err := st.ListScenes(ctx, ef.Scope)
			return coreMsg{core.ScenesFetched{ChapterID: ef.Scope, Scenes: scs, Err: err}}
		case core.FetchBoardData:
			data, err := st.GetBoardData(ctx, ef.Scope)
			return coreMsg{core.BoardDataFetched{BoardID: ef.Scope, Data: data, Err: err}}
		case core.FetchTrash:
			ts, err := st.ListTrash(ctx)
			return coreMsg{core.TrashFetched{Entries: ts, Err: err}}
		default:
			return coreMsg{core.Tick{Now: time.Now()}}
		}
	}
}

func runCommandCmd(st *store.Store, c core.Command) tea.Cmd {
	return func() tea.Msg {
		return coreMsg{core.CommandDone{Err: runCommand(context.Background(), st, c)}}
	}
}

// runCommand executes one queued mutation against the store. The
// engine serializes these, so each call owns the database while it
// runs.
func runCommand(ctx context.Context, st *store.Store, c core.Command) error {
	switch c.Kind {
	case core.CmdCreateUniverse:
		_, err := st.CreateUniverse(ctx, c.Name, c.Description)
		return err
	case core.CmdInjectDemoData:
		return st.InjectDemoData(ctx)
	case core.CmdResetDemoDataScoped:
		return st.ResetDemoDataScoped(ctx, c.UniverseID)

	case core.CmdSaveCreature:
		_, err := st.SaveCreature(ctx, *c.Creature)
		return err
	case core.CmdArchiveCreature:
		return st.ArchiveCreature(ctx, c.TargetID)
	case core.CmdSaveLocation:
		_, err := st.SaveLocation(ctx, *c.Location)
		return err
	case core.CmdSaveEra:
		_, err := st.SaveEra(ctx, *c.Era)
		return err
	case core.CmdSaveEvent:
		_, err := st.SaveEvent(ctx, *c.Event)
		return err

	case core.CmdSnapshotCreate:
		_, err := st.SnapshotCreate(ctx, c.UniverseID, c.SnapshotName)
		return err
	case core.CmdSnapshotDelete:
		return st.SnapshotDelete(ctx, c.SnapshotID)
	case core.CmdSnapshotRestore:
		return st.SnapshotRestore(ctx, c.SnapshotID)

	case core.CmdCreateBoard:
		_, err := st.CreateBoard(ctx, c.Name, "kanban")
		return err
	case core.CmdSaveCard:
		_, err := st.SaveCard(ctx, *c.Card)
		return err
	case core.CmdMoveCard:
		return st.MoveCard(ctx, c.TargetID, c.ColumnID, c.Position)
	case core.CmdRebalanceColumn:
		return st.RebalanceColumn(ctx, c.ColumnID)
	case core.CmdDeleteCard:
		return st.DeleteCard(ctx, c.TargetID)

	case core.CmdCreateNovel:
		_, err := st.CreateNovel(ctx, *c.Novel)
		return err
	case core.CmdUpdateNovel:
		return st.UpdateNovel(ctx, *c.Novel)
	case core.CmdCreateChapter:
		_, err := st.CreateChapter(ctx, *c.Chapter)
		return err
	case core.CmdUpdateChapter:
		return st.UpdateChapter(ctx, *c.Chapter)
	case core.CmdReorderChapter:
		return st.ReorderChapter(ctx, c.TargetID, c.Position)
	case core.CmdCreateScene:
		_, err := st.CreateScene(ctx, *c.Scene)
		return err
	case core.CmdUpdateScene:
		return st.UpdateScene(ctx, *c.Scene)
	case core.CmdReorderScene:
		return st.ReorderScene(ctx, c.TargetID, c.Position)

	case core.CmdMoveToTrash:
		_, err := st.MoveToTrashAndDelete(ctx, store.TrashRequest{
			TargetType:  c.TargetType,
			TargetID:    c.TargetID,
			ParentType:  c.ParentType,
			ParentID:    c.ParentID,
			DisplayName: c.DisplayName,
			DisplayInfo: c.DisplayInfo,
			PayloadJSON: c.PayloadJSON,
		})
		return err
	case core.CmdRestoreFromTrash:
		return st.RestoreFromTrash(ctx, c.TargetID)
	case core.CmdPermanentDelete:
		return st.PermanentDelete(ctx, c.TargetID)
	case core.CmdEmptyTrash:
		return st.EmptyTrash(ctx)
	case core.CmdCleanupOldTrash:
		_, err := st.CleanupOldTrash(ctx, c.RetentionDays)
		return err

	default:
		return fmt.Errorf("unknown command kind %q", c.Kind)
	}
}

func auditCmd(st *store.Store, log *logging.Logger, ef core.AuditEffect) tea.Cmd {
	return func() tea.Msg {
		// Best effort: the mutation already committed, an audit miss is
		// not worth a toast. It still goes to the project log.
		if err := st.AppendAudit(context.Background(), ef.Action, ef.EntityType, ef.EntityID, ""); err != nil {
			log.Printf("audit append %s %s/%s: %v", ef.Action, ef.EntityType, ef.EntityID, err)
		}
		return nil
	}
}
