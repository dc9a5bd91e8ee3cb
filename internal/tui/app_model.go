package tui

import (
	"time"

	"fabledesk/internal/core"
	"fabledesk/internal/logging"
	"fabledesk/internal/store"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalInput
	modalConfirm
)

// appModel owns the engine state plus everything presentation-side:
// cursors, the scene editor widget, and the modal layer. All mutation
// flows through dispatch; the widgets never touch the store directly.
type appModel struct {
	st    *store.Store
	log   *logging.Logger
	state *core.State
	deps  core.Deps

	width  int
	height int

	// Route-local cursors. The engine owns what is loaded; these only
	// track what is highlighted.
	universeIdx int
	listIdx     int
	boardIdx    int
	colIdx      int
	cardIdx     int
	trashIdx    int
	treeIdx     int

	editor        textarea.Model
	editorFocused bool
	lastSceneID   string

	modal        modalKind
	modalTitle   string
	modalSubmit  func(value string) core.Msg
	confirmLabel string
	confirmMsg   core.Msg
	input        textinput.Model

	toastTicking bool
}

func newAppModel(st *store.Store, log *logging.Logger) *appModel {
	ed := textarea.New()
	ed.Placeholder = "Select a scene to start writing."
	ed.ShowLineNumbers = false

	in := textinput.New()
	in.CharLimit = 200

	return &appModel{
		st:     st,
		log:    log,
		state:  core.NewState(),
		deps:   core.Deps{Now: time.Now, Log: log},
		editor: ed,
		input:  in,
	}
}

func (m *appModel) Init() tea.Cmd {
	applyColorProfilePreference()
	// A no-op message kicks off the first orchestration pass.
	return m.dispatch(core.Tick{Now: time.Now()})
}

// dispatch routes one engine message through Update and schedules the
// resulting effects.
func (m *appModel) dispatch(msg core.Msg) tea.Cmd {
	effects := core.Update(m.state, msg, m.deps)
	cmds := effectCmds(m.st, m.log, effects)
	if c := m.armToastTick(); c != nil {
		cmds = append(cmds, c)
	}
	m.syncEditor()
	m.clampCursors()
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// syncEditor pushes the engine's editor buffer into the textarea when
// selection moved; keystrokes flow the other way.
func (m *appModel) syncEditor() {
	if m.state.ActiveSceneID == m.lastSceneID {
		return
	}
	m.lastSceneID = m.state.ActiveSceneID
	m.editor.SetValue(m.state.EditorBody)
	if m.state.ActiveSceneID == "" {
		m.editorFocused = false
		m.editor.Blur()
	}
}

func (m *appModel) armToastTick() tea.Cmd {
	if m.toastTicking || len(m.state.Toasts) == 0 {
		return nil
	}
	m.toastTicking = true
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return toastTickMsg{at: t}
	})
}

// clampCursors keeps every route-local cursor inside its collection
// after fetches and invalidations reshuffle the lists.
func (m *appModel) clampCursors() {
	m.universeIdx = clamp(m.universeIdx, len(m.state.Universes))
	m.boardIdx = clamp(m.boardIdx, len(m.state.Boards))
	m.trashIdx = clamp(m.trashIdx, len(m.state.TrashEntries))
	m.listIdx = clamp(m.listIdx, m.routeListLen())
	m.colIdx = clamp(m.colIdx, len(m.state.Board.Columns))
	if m.colIdx < len(m.state.Board.Columns) {
		col := m.state.Board.Columns[m.colIdx]
		m.cardIdx = clamp(m.cardIdx, len(m.state.Board.Cards[col.ID]))
	} else {
		m.cardIdx = 0
	}
	m.treeIdx = clamp(m.treeIdx, len(m.forgeRows()))
}

func (m *appModel) routeListLen() int {
	switch m.state.Route {
	case core.RouteBestiary:
		return len(m.state.Creatures)
	case core.RouteAtlas:
		return len(m.state.Locations)
	case core.RouteTimeline:
		return len(m.state.Events)
	case core.RouteUniverseDetail:
		return len(m.state.Snapshots)
	default:
		return 0
	}
}

func clamp(i, n int) int {
	if n == 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	if i < 0 {
		return 0
	}
	return i
}

func (m *appModel) openInput(title, placeholder string, submit func(value string) core.Msg) {
	m.modal = modalInput
	m.modalTitle = title
	m.modalSubmit = submit
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
}

// openRename is openInput seeded with the current value; Enter commits
// the buffer, Esc throws it away.
func (m *appModel) openRename(title, current string, submit func(value string) core.Msg) {
	m.openInput(title, "", submit)
	m.input.SetValue(current)
	m.input.CursorEnd()
}

func (m *appModel) openConfirm(label string, msg core.Msg) {
	m.modal = modalConfirm
	m.confirmLabel = label
	m.confirmMsg = msg
}

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.modalSubmit = nil
	m.confirmMsg = nil
	m.input.Blur()
}

// forgeRow is one visible line of the novel tree.
type forgeRow struct {
	kind  string // "novel", "chapter", "scene"
	id    string
	title string
	depth int
	words int
}

// forgeRows flattens the novel tree honoring the expansion state, the
// same order the sidebar draws it. Word counts roll up from whatever
// scenes have been fetched so far.
func (m *appModel) forgeRows() []forgeRow {
	s := m.state
	var rows []forgeRow
	for _, n := range s.Novels {
		rows = append(rows, forgeRow{kind: "novel", id: n.ID, title: n.Title, words: m.novelWords(n.ID)})
		if !s.ExpandedNovels[n.ID] {
			continue
		}
		for _, ch := range s.ChaptersByNovel[n.ID] {
			rows = append(rows, forgeRow{kind: "chapter", id: ch.ID, title: ch.Title, depth: 1, words: m.chapterWords(ch.ID)})
			if !s.ExpandedChapters[ch.ID] {
				continue
			}
			for _, sc := range s.ScenesByChapter[ch.ID] {
				rows = append(rows, forgeRow{kind: "scene", id: sc.ID, title: sc.Title, depth: 2, words: sc.WordCount})
			}
		}
	}
	return rows
}

func (m *appModel) chapterWords(chapterID string) int {
	total := 0
	for _, sc := range m.state.ScenesByChapter[chapterID] {
		total += sc.WordCount
	}
	return total
}

func (m *appModel) novelWords(novelID string) int {
	total := 0
	for _, ch := range m.state.ChaptersByNovel[novelID] {
		total += m.chapterWords(ch.ID)
	}
	return total
}
