package core

import (
	"fabledesk/internal/model"
)

// CommandKind tags the write queue's vocabulary.
type CommandKind string

const (
	CmdCreateUniverse      CommandKind = "create_universe"
	CmdInjectDemoData      CommandKind = "inject_demo_data"
	CmdResetDemoDataScoped CommandKind = "reset_demo_data_scoped"
	CmdSnapshotCreate      CommandKind = "snapshot_create"
	CmdSnapshotDelete      CommandKind = "snapshot_delete"
	CmdSnapshotRestore     CommandKind = "snapshot_restore"
	CmdCreateBoard         CommandKind = "create_board"
	CmdSaveCreature        CommandKind = "save_creature"
	CmdArchiveCreature     CommandKind = "archive_creature"
	CmdSaveLocation        CommandKind = "save_location"
	CmdSaveEvent           CommandKind = "save_event"
	CmdSaveEra             CommandKind = "save_era"
	CmdSaveCard            CommandKind = "save_card"
	CmdMoveCard            CommandKind = "move_card"
	CmdRebalanceColumn     CommandKind = "rebalance_column"
	CmdDeleteCard          CommandKind = "delete_card"
	CmdCreateNovel         CommandKind = "create_novel"
	CmdUpdateNovel         CommandKind = "update_novel"
	CmdCreateChapter       CommandKind = "create_chapter"
	CmdUpdateChapter       CommandKind = "update_chapter"
	CmdReorderChapter      CommandKind = "reorder_chapter"
	CmdCreateScene         CommandKind = "create_scene"
	CmdUpdateScene         CommandKind = "update_scene"
	CmdReorderScene        CommandKind = "reorder_scene"
	CmdMoveToTrash         CommandKind = "move_to_trash"
	CmdRestoreFromTrash    CommandKind = "restore_from_trash"
	CmdPermanentDelete     CommandKind = "permanent_delete"
	CmdEmptyTrash          CommandKind = "empty_trash"
	CmdCleanupOldTrash     CommandKind = "cleanup_old_trash"
)

// Command is one queued mutation. Kind selects which payload fields
// are meaningful; unused fields stay zero. The struct is cloned into
// the inflight slot before execution so the UI can render what is
// currently being written.
type Command struct {
	Kind CommandKind

	UniverseID string
	BoardID    string
	ColumnID   string
	NovelID    string
	ChapterID  string

	Name        string
	Description string

	Creature *model.Creature
	Location *model.Location
	Era      *model.TimelineEra
	Event    *model.TimelineEvent
	Card     *model.Card
	Novel    *model.Novel
	Chapter  *model.Chapter
	Scene    *model.Scene

	// Trash fields.
	TargetType  string
	TargetID    string
	ParentType  string
	ParentID    string
	DisplayName string
	DisplayInfo string
	PayloadJSON string

	Position      int64
	RetentionDays int
	SnapshotID    string
	SnapshotName  string
}

// successToast returns the confirmation shown after a user-initiated
// mutation lands, or "" for silent kinds (autosaves, reorders).
func (c Command) successToast() string {
	switch c.Kind {
	case CmdCreateUniverse:
		return "Universe created"
	case CmdCreateBoard:
		return "Board created"
	case CmdCreateNovel:
		return "Novel created"
	case CmdCreateChapter:
		return "Chapter created"
	case CmdCreateScene:
		return "Scene created"
	case CmdMoveToTrash:
		if c.DisplayName != "" {
			return "Moved to trash: " + c.DisplayName
		}
		return "Moved to trash"
	case CmdRestoreFromTrash:
		return "Restored from trash"
	case CmdPermanentDelete:
		return "Deleted permanently"
	case CmdEmptyTrash:
		return "Trash emptied"
	case CmdInjectDemoData, CmdResetDemoDataScoped:
		return "Demo data ready"
	case CmdSnapshotCreate:
		return "Snapshot created"
	case CmdSnapshotRestore:
		return "Snapshot restored"
	default:
		return ""
	}
}

// auditTarget maps a successful command to the audit row appended after
// it. Trash and snapshot-restore commands audit inside the store's own
// transaction, so they return ok=false here.
func (c Command) auditTarget() (action, entityType, entityID string, ok bool) {
	switch c.Kind {
	case CmdMoveToTrash, CmdRestoreFromTrash, CmdPermanentDelete, CmdEmptyTrash,
		CmdCleanupOldTrash, CmdSnapshotRestore:
		return "", "", "", false
	case CmdCreateUniverse:
		return "create", "universe", "", true
	case CmdCreateBoard:
		return "create", "board", "", true
	case CmdSaveCreature:
		return "save", "creature", idOf(c.Creature != nil, func() string { return c.Creature.ID }), true
	case CmdArchiveCreature:
		return "archive", "creature", c.TargetID, true
	case CmdSaveLocation:
		return "save", "location", idOf(c.Location != nil, func() string { return c.Location.ID }), true
	case CmdSaveEra:
		return "save", "era", idOf(c.Era != nil, func() string { return c.Era.ID }), true
	case CmdSaveEvent:
		return "save", "event", idOf(c.Event != nil, func() string { return c.Event.ID }), true
	case CmdSaveCard, CmdMoveCard, CmdDeleteCard:
		id := c.TargetID
		if c.Card != nil {
			id = c.Card.ID
		}
		return string(c.Kind), "card", id, true
	case CmdRebalanceColumn:
		return "rebalance", "column", c.ColumnID, true
	case CmdCreateNovel, CmdUpdateNovel:
		return string(c.Kind), "novel", idOf(c.Novel != nil, func() string { return c.Novel.ID }), true
	case CmdCreateChapter, CmdUpdateChapter:
		return string(c.Kind), "chapter", idOf(c.Chapter != nil, func() string { return c.Chapter.ID }), true
	case CmdReorderChapter:
		return "reorder", "chapter", c.TargetID, true
	case CmdCreateScene, CmdUpdateScene:
		return string(c.Kind), "scene", idOf(c.Scene != nil, func() string { return c.Scene.ID }), true
	case CmdReorderScene:
		return "reorder", "scene", c.TargetID, true
	case CmdSnapshotCreate:
		return "create", "snapshot", c.UniverseID, true
	case CmdSnapshotDelete:
		return "delete", "snapshot", c.SnapshotID, true
	case CmdInjectDemoData, CmdResetDemoDataScoped:
		return string(c.Kind), "universe", c.UniverseID, true
	default:
		return "", "", "", false
	}
}

func idOf(ok bool, get func() string) string {
	if !ok {
		return ""
	}
	return get()
}
