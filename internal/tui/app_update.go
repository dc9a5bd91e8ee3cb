package tui

import (
	"strings"

	"fabledesk/internal/core"
	"fabledesk/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.editor.SetWidth(max(20, msg.Width-sidebarWidth-6))
		m.editor.SetHeight(max(4, msg.Height-8))
		m.input.Width = max(20, msg.Width/2)
		return m, nil

	case toastTickMsg:
		m.toastTicking = false
		return m, m.dispatch(core.Tick{Now: msg.at})

	case coreMsg:
		return m, m.dispatch(msg.msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Non-key messages (cursor blinks and the like) still belong to
	// whichever widget has focus.
	if m.modal == modalInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	if m.editorFocused {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != modalNone {
		return m.handleModalKey(msg)
	}
	if m.editorFocused {
		return m.handleEditorKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "1":
		return m, m.dispatch(core.Navigate{Route: core.RouteOverview})
	case "2":
		return m, m.navigateScoped(core.RouteUniverseDetail)
	case "3":
		return m, m.navigateScoped(core.RouteBestiary)
	case "4":
		return m, m.navigateScoped(core.RouteAtlas)
	case "5":
		return m, m.navigateScoped(core.RouteTimeline)
	case "6":
		return m, m.navigateScoped(core.RouteForge)
	case "7":
		return m, m.dispatch(core.Navigate{Route: core.RoutePmList})
	case "8":
		return m, m.dispatch(core.Navigate{Route: core.RouteTrash})
	}

	switch m.state.Route {
	case core.RouteOverview:
		return m.handleOverviewKey(msg)
	case core.RouteUniverseDetail:
		return m.handleUniverseDetailKey(msg)
	case core.RouteBestiary, core.RouteAtlas, core.RouteTimeline:
		return m.handleWorldListKey(msg)
	case core.RouteForge:
		return m.handleForgeKey(msg)
	case core.RoutePmList:
		return m.handlePmListKey(msg)
	case core.RoutePmBoard:
		return m.handleBoardKey(msg)
	case core.RouteTrash:
		return m.handleTrashKey(msg)
	}
	return m, nil
}

// navigateScoped enters a universe-scoped route, falling back to the
// highlighted universe when none is active yet.
func (m *appModel) navigateScoped(r core.Route) tea.Cmd {
	id := m.state.ActiveUniverseID
	if id == "" && m.universeIdx < len(m.state.Universes) {
		id = m.state.Universes[m.universeIdx].ID
	}
	if id == "" {
		m.state.ShowToast(m.deps, "Pick a universe first", core.ToastInfo)
		return m.armToastTick()
	}
	return m.dispatch(core.Navigate{Route: r, UniverseID: id})
}

func (m *appModel) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalConfirm:
		switch msg.String() {
		case "y", "enter":
			confirm := m.confirmMsg
			m.closeModal()
			return m, m.dispatch(confirm)
		case "n", "esc":
			m.closeModal()
		}
		return m, nil
	case modalInput:
		switch msg.String() {
		case "enter":
			value := strings.TrimSpace(m.input.Value())
			submit := m.modalSubmit
			m.closeModal()
			if value == "" || submit == nil {
				return m, nil
			}
			return m, m.dispatch(submit(value))
		case "esc":
			m.closeModal()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *appModel) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.editorFocused = false
		m.editor.Blur()
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	dispatch := m.dispatch(core.EditSceneBody{Body: m.editor.Value()})
	return m, tea.Batch(cmd, dispatch)
}

func (m *appModel) handleOverviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.universeIdx = clamp(m.universeIdx+1, len(m.state.Universes))
	case "k", "up":
		m.universeIdx = clamp(m.universeIdx-1, len(m.state.Universes))
	case "enter":
		if m.universeIdx < len(m.state.Universes) {
			u := m.state.Universes[m.universeIdx]
			return m, m.dispatch(core.Navigate{Route: core.RouteUniverseDetail, UniverseID: u.ID})
		}
	case "n":
		m.openInput("New universe", "name", func(v string) core.Msg {
			return core.Enqueue{Command: core.Command{Kind: core.CmdCreateUniverse, Name: v}}
		})
	case "D":
		if m.universeIdx < len(m.state.Universes) {
			u := m.state.Universes[m.universeIdx]
			m.openConfirm("Move universe \""+u.Name+"\" to trash?",
				core.ConfirmDelete{TargetType: "universe", TargetID: u.ID})
		}
	case "!":
		return m, m.dispatch(core.Enqueue{Command: core.Command{Kind: core.CmdInjectDemoData}})
	}
	return m, nil
}

func (m *appModel) handleUniverseDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.state
	switch msg.String() {
	case "j", "down":
		m.listIdx = clamp(m.listIdx+1, len(s.Snapshots))
	case "k", "up":
		m.listIdx = clamp(m.listIdx-1, len(s.Snapshots))
	case "s":
		uid := s.ActiveUniverseID
		m.openInput("New snapshot", "label", func(v string) core.Msg {
			return core.Enqueue{Command: core.Command{
				Kind: core.CmdSnapshotCreate, UniverseID: uid, SnapshotName: v,
			}}
		})
	case "r":
		if m.listIdx < len(s.Snapshots) {
			snap := s.Snapshots[m.listIdx]
			m.openConfirm("Restore worldbuilding from \""+snap.Name+"\"? Current creatures, locations and timeline will be replaced.",
				core.Enqueue{Command: core.Command{
					Kind: core.CmdSnapshotRestore, UniverseID: snap.UniverseID, SnapshotID: snap.ID,
				}})
		}
	case "x":
		if m.listIdx < len(s.Snapshots) {
			snap := s.Snapshots[m.listIdx]
			m.openConfirm("Delete snapshot \""+snap.Name+"\"?",
				core.Enqueue{Command: core.Command{Kind: core.CmdSnapshotDelete, SnapshotID: snap.ID}})
		}
	}
	return m, nil
}

// handleWorldListKey covers the three flat worldbuilding routes. They
// share movement and delete; creation differs per route.
func (m *appModel) handleWorldListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.state
	switch msg.String() {
	case "j", "down":
		m.listIdx = clamp(m.listIdx+1, m.routeListLen())
	case "k", "up":
		m.listIdx = clamp(m.listIdx-1, m.routeListLen())
	case "n":
		uid := s.ActiveUniverseID
		switch s.Route {
		case core.RouteBestiary:
			m.openInput("New creature", "name", func(v string) core.Msg {
				return core.Enqueue{Command: core.Command{
					Kind:     core.CmdSaveCreature,
					Creature: &model.Creature{UniverseID: uid, Name: v},
				}}
			})
		case core.RouteAtlas:
			m.openInput("New location", "name", func(v string) core.Msg {
				return core.Enqueue{Command: core.Command{
					Kind:     core.CmdSaveLocation,
					Location: &model.Location{UniverseID: uid, Name: v},
				}}
			})
		case core.RouteTimeline:
			m.openInput("New event", "title", func(v string) core.Msg {
				return core.Enqueue{Command: core.Command{
					Kind:  core.CmdSaveEvent,
					Event: &model.TimelineEvent{UniverseID: uid, Title: v},
				}}
			})
		}
	case "e":
		if s.Route == core.RouteTimeline {
			uid := s.ActiveUniverseID
			m.openInput("New era", "name", func(v string) core.Msg {
				return core.Enqueue{Command: core.Command{
					Kind: core.CmdSaveEra,
					Era:  &model.TimelineEra{UniverseID: uid, Name: v},
				}}
			})
		}
	case "a":
		if s.Route == core.RouteBestiary && m.listIdx < len(s.Creatures) {
			cr := s.Creatures[m.listIdx]
			return m, m.dispatch(core.Enqueue{Command: core.Command{
				Kind: core.CmdArchiveCreature, TargetID: cr.ID, UniverseID: cr.UniverseID,
			}})
		}
	case "d":
		if tt, id, name, ok := m.worldSelection(); ok {
			m.openConfirm("Move "+tt+" \""+name+"\" to trash?",
				core.ConfirmDelete{TargetType: tt, TargetID: id})
		}
	}
	return m, nil
}

func (m *appModel) worldSelection() (targetType, id, name string, ok bool) {
	s := m.state
	switch s.Route {
	case core.RouteBestiary:
		if m.listIdx < len(s.Creatures) {
			cr := s.Creatures[m.listIdx]
			return "creature", cr.ID, cr.Name, true
		}
	case core.RouteAtlas:
		if m.listIdx < len(s.Locations) {
			l := s.Locations[m.listIdx]
			return "location", l.ID, l.Name, true
		}
	case core.RouteTimeline:
		if m.listIdx < len(s.Events) {
			ev := s.Events[m.listIdx]
			return "event", ev.ID, ev.Title, true
		}
	}
	return "", "", "", false
}

func (m *appModel) handleForgeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.state
	rows := m.forgeRows()
	switch msg.String() {
	case "j", "down":
		m.treeIdx = clamp(m.treeIdx+1, len(rows))
	case "k", "up":
		m.treeIdx = clamp(m.treeIdx-1, len(rows))
	case "enter", " ":
		if m.treeIdx >= len(rows) {
			return m, nil
		}
		switch row := rows[m.treeIdx]; row.kind {
		case "novel":
			return m, m.dispatch(core.ToggleNovel{ID: row.id})
		case "chapter":
			return m, m.dispatch(core.ToggleChapter{ID: row.id})
		case "scene":
			return m, m.dispatch(core.SelectScene{ID: row.id})
		}
	case "i":
		if s.ActiveSceneID != "" {
			m.editorFocused = true
			return m, m.editor.Focus()
		}
	case "n":
		uid := s.ActiveUniverseID
		m.openInput("New novel", "title", func(v string) core.Msg {
			n := &model.Novel{Title: v}
			if uid != "" {
				n.UniverseID = &uid
			}
			return core.Enqueue{Command: core.Command{Kind: core.CmdCreateNovel, Novel: n}}
		})
	case "c":
		if s.ActiveNovelID == "" {
			return m, nil
		}
		nid := s.ActiveNovelID
		m.openInput("New chapter", "title", func(v string) core.Msg {
			return core.Enqueue{Command: core.Command{
				Kind:    core.CmdCreateChapter,
				Chapter: &model.Chapter{NovelID: nid, Title: v},
			}}
		})
	case "s":
		if s.ActiveChapterID == "" {
			return m, nil
		}
		cid := s.ActiveChapterID
		m.openInput("New scene", "title", func(v string) core.Msg {
			return core.Enqueue{Command: core.Command{
				Kind:  core.CmdCreateScene,
				Scene: &model.Scene{ChapterID: cid, Title: v},
			}}
		})
	case "r":
		if m.treeIdx < len(rows) {
			row := rows[m.treeIdx]
			m.openRename("Rename "+row.kind, row.title, func(v string) core.Msg {
				return m.renameTreeMsg(row.kind, row.id, v)
			})
		}
	case "d":
		if m.treeIdx < len(rows) {
			row := rows[m.treeIdx]
			m.openConfirm("Move "+row.kind+" \""+row.title+"\" to trash?",
				core.ConfirmDelete{TargetType: row.kind, TargetID: row.id})
		}
	}
	return m, nil
}

// renameTreeMsg builds the update command for a retitled tree node.
// The entity is looked up at commit time, not when the dialog opened,
// so a fetch landing mid-rename cannot resurrect stale fields.
func (m *appModel) renameTreeMsg(kind, id, title string) core.Msg {
	s := m.state
	switch kind {
	case "novel":
		for _, n := range s.Novels {
			if n.ID == id {
				n.Title = title
				return core.Enqueue{Command: core.Command{Kind: core.CmdUpdateNovel, Novel: &n}}
			}
		}
	case "chapter":
		for _, bucket := range s.ChaptersByNovel {
			for _, ch := range bucket {
				if ch.ID == id {
					ch.Title = title
					return core.Enqueue{Command: core.Command{Kind: core.CmdUpdateChapter, Chapter: &ch}}
				}
			}
		}
	case "scene":
		for _, bucket := range s.ScenesByChapter {
			for _, sc := range bucket {
				if sc.ID == id {
					sc.Title = title
					return core.Enqueue{Command: core.Command{Kind: core.CmdUpdateScene, Scene: &sc}}
				}
			}
		}
	}
	return core.Tick{Now: m.deps.Now()}
}

func (m *appModel) handlePmListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.state
	switch msg.String() {
	case "j", "down":
		m.boardIdx = clamp(m.boardIdx+1, len(s.Boards))
	case "k", "up":
		m.boardIdx = clamp(m.boardIdx-1, len(s.Boards))
	case "enter":
		if m.boardIdx < len(s.Boards) {
			b := s.Boards[m.boardIdx]
			return m, m.dispatch(core.Navigate{Route: core.RoutePmBoard, BoardID: b.ID})
		}
	case "n":
		m.openInput("New board", "name", func(v string) core.Msg {
			return core.Enqueue{Command: core.Command{Kind: core.CmdCreateBoard, Name: v}}
		})
	case "D":
		if m.boardIdx < len(s.Boards) {
			b := s.Boards[m.boardIdx]
			m.openConfirm("Move board \""+b.Name+"\" to trash?",
				core.ConfirmDelete{TargetType: "board", TargetID: b.ID})
		}
	}
	return m, nil
}

func (m *appModel) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.state
	cols := s.Board.Columns
	switch msg.String() {
	case "h", "left":
		m.colIdx = clamp(m.colIdx-1, len(cols))
		m.cardIdx = clamp(m.cardIdx, m.cardCount())
	case "l", "right":
		m.colIdx = clamp(m.colIdx+1, len(cols))
		m.cardIdx = clamp(m.cardIdx, m.cardCount())
	case "j", "down":
		m.cardIdx = clamp(m.cardIdx+1, m.cardCount())
	case "k", "up":
		m.cardIdx = clamp(m.cardIdx-1, m.cardCount())
	case "J":
		// Drop indexes are relative to the column with the moved card
		// already taken out, so "one slot down" is cardIdx+1.
		if card, ok := m.selectedCard(); ok && m.cardIdx < m.cardCount()-1 {
			cmd := m.dispatch(core.DropCard{
				CardID: card.ID, ToColumnID: cols[m.colIdx].ID, Index: m.cardIdx + 1,
			})
			m.cardIdx++
			return m, cmd
		}
	case "K":
		if card, ok := m.selectedCard(); ok && m.cardIdx > 0 {
			cmd := m.dispatch(core.DropCard{
				CardID: card.ID, ToColumnID: cols[m.colIdx].ID, Index: m.cardIdx - 1,
			})
			m.cardIdx--
			return m, cmd
		}
	case "H":
		if card, ok := m.selectedCard(); ok && m.colIdx > 0 {
			dest := cols[m.colIdx-1]
			m.colIdx--
			return m, m.dispatch(core.DropCard{
				CardID: card.ID, ToColumnID: dest.ID, Index: m.cardIdx,
			})
		}
	case "L":
		if card, ok := m.selectedCard(); ok && m.colIdx < len(cols)-1 {
			dest := cols[m.colIdx+1]
			m.colIdx++
			return m, m.dispatch(core.DropCard{
				CardID: card.ID, ToColumnID: dest.ID, Index: m.cardIdx,
			})
		}
	case "n":
		if m.colIdx < len(cols) {
			colID := cols[m.colIdx].ID
			m.openInput("New card", "title", func(v string) core.Msg {
				return core.Enqueue{Command: core.Command{
					Kind: core.CmdSaveCard,
					Card: &model.Card{ColumnID: colID, Title: v},
				}}
			})
		}
	case "d":
		if card, ok := m.selectedCard(); ok {
			m.openConfirm("Move card \""+card.Title+"\" to trash?",
				core.ConfirmDelete{TargetType: "card", TargetID: card.ID})
		}
	case "esc", "backspace":
		return m, m.dispatch(core.Navigate{Route: core.RoutePmList})
	}
	return m, nil
}

func (m *appModel) cardCount() int {
	cols := m.state.Board.Columns
	if m.colIdx >= len(cols) {
		return 0
	}
	return len(m.state.Board.Cards[cols[m.colIdx].ID])
}

func (m *appModel) selectedCard() (model.Card, bool) {
	cols := m.state.Board.Columns
	if m.colIdx >= len(cols) {
		return model.Card{}, false
	}
	cards := m.state.Board.Cards[cols[m.colIdx].ID]
	if m.cardIdx >= len(cards) {
		return model.Card{}, false
	}
	return cards[m.cardIdx], true
}

func (m *appModel) handleTrashKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.state
	switch msg.String() {
	case "j", "down":
		m.trashIdx = clamp(m.trashIdx+1, len(s.TrashEntries))
	case "k", "up":
		m.trashIdx = clamp(m.trashIdx-1, len(s.TrashEntries))
	case "r", "enter":
		if m.trashIdx < len(s.TrashEntries) {
			e := s.TrashEntries[m.trashIdx]
			return m, m.dispatch(core.Enqueue{Command: core.Command{
				Kind: core.CmdRestoreFromTrash, TargetID: e.ID, DisplayName: e.DisplayName,
			}})
		}
	case "x":
		if m.trashIdx < len(s.TrashEntries) {
			e := s.TrashEntries[m.trashIdx]
			m.openConfirm("Permanently delete \""+e.DisplayName+"\"? This cannot be undone.",
				core.Enqueue{Command: core.Command{Kind: core.CmdPermanentDelete, TargetID: e.ID}})
		}
	case "E":
		if len(s.TrashEntries) > 0 {
			m.openConfirm("Empty the trash? Every entry is deleted for good.",
				core.Enqueue{Command: core.Command{Kind: core.CmdEmptyTrash}})
		}
	}
	return m, nil
}
