package tui

import (
	"fmt"
	"strings"

	"fabledesk/internal/core"
	"fabledesk/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const sidebarWidth = 30

func (m *appModel) View() string {
	if m.width == 0 {
		return "loading..."
	}

	header := m.viewHeader()
	body := m.viewBody()
	status := m.viewStatus()
	toasts := m.viewToasts()

	parts := []string{header, body}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, status)
	out := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.modal != modalNone {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.viewModal())
	}
	return out
}

func (m *appModel) viewHeader() string {
	tabs := []struct {
		key   string
		route core.Route
	}{
		{"1", core.RouteOverview},
		{"2", core.RouteUniverseDetail},
		{"3", core.RouteBestiary},
		{"4", core.RouteAtlas},
		{"5", core.RouteTimeline},
		{"6", core.RouteForge},
		{"7", core.RoutePmList},
		{"8", core.RouteTrash},
	}
	var b strings.Builder
	for _, t := range tabs {
		active := m.state.Route == t.route ||
			(t.route == core.RoutePmList && m.state.Route == core.RoutePmBoard)
		b.WriteString(styleTab(active).Render(t.key + " " + t.route.String()))
	}
	title := b.String()
	if u, ok := m.activeUniverse(); ok && m.state.Route.UniverseScoped() {
		title += styleMuted().Render("  " + u.Name)
	}
	return ansi.Truncate(title, m.width, "…")
}

func (m *appModel) activeUniverse() (model.Universe, bool) {
	for _, u := range m.state.Universes {
		if u.ID == m.state.ActiveUniverseID {
			return u, true
		}
	}
	return model.Universe{}, false
}

func (m *appModel) bodyHeight() int {
	return max(3, m.height-4)
}

func (m *appModel) viewBody() string {
	switch m.state.Route {
	case core.RouteOverview:
		return m.viewOverview()
	case core.RouteUniverseDetail:
		return m.viewUniverseDetail()
	case core.RouteBestiary:
		return m.viewBestiary()
	case core.RouteAtlas:
		return m.viewAtlas()
	case core.RouteTimeline:
		return m.viewTimeline()
	case core.RouteForge:
		return m.viewForge()
	case core.RoutePmList:
		return m.viewPmList()
	case core.RoutePmBoard:
		return m.viewBoard()
	case core.RouteTrash:
		return m.viewTrash()
	}
	return ""
}

// listPane renders a cursor list inside the body, padded to height so
// the status bar stays anchored.
func (m *appModel) listPane(title string, rows []string, selected int, hint string) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n\n")
	if len(rows) == 0 {
		b.WriteString(styleMuted().Render("  (empty)"))
		b.WriteString("\n")
	}
	for i, row := range rows {
		line := "  " + row
		if i == selected {
			line = styleSelected().Render("> " + row)
		}
		b.WriteString(ansi.Truncate(line, m.width-2, "…"))
		b.WriteString("\n")
	}
	if hint != "" {
		b.WriteString("\n")
		b.WriteString(styleMuted().Render(hint))
	}
	return lipgloss.NewStyle().Height(m.bodyHeight()).Padding(0, 1).Render(b.String())
}

func (m *appModel) viewOverview() string {
	rows := make([]string, 0, len(m.state.Universes))
	for _, u := range m.state.Universes {
		row := u.Name
		if u.Description != "" {
			row += styleMuted().Render("  " + u.Description)
		}
		rows = append(rows, row)
	}
	return m.listPane("Universes", rows, m.universeIdx,
		"enter open · n new · D trash · ! demo data")
}

func (m *appModel) viewUniverseDetail() string {
	rows := make([]string, 0, len(m.state.Snapshots))
	for _, sn := range m.state.Snapshots {
		rows = append(rows, fmt.Sprintf("%s  %s", sn.Name,
			styleMuted().Render(sn.CreatedAt.Format("2006-01-02 15:04"))))
	}
	title := "Snapshots"
	if u, ok := m.activeUniverse(); ok {
		title = u.Name + " · snapshots"
	}
	return m.listPane(title, rows, m.listIdx,
		"s snapshot now · r restore · x delete")
}

func (m *appModel) viewBestiary() string {
	rows := make([]string, 0, len(m.state.Creatures))
	for _, c := range m.state.Creatures {
		row := c.Name
		if c.Kind != "" {
			row += styleMuted().Render("  " + c.Kind)
		}
		if c.Danger > 0 {
			row += styleMuted().Render("  " + strings.Repeat("!", min(c.Danger, 5)))
		}
		rows = append(rows, row)
	}
	return m.listPane("Bestiary", rows, m.listIdx, "n new · a archive · d trash")
}

func (m *appModel) viewAtlas() string {
	rows := make([]string, 0, len(m.state.Locations))
	for _, l := range m.state.Locations {
		row := l.Name
		if l.Kind != "" {
			row += styleMuted().Render("  " + l.Kind)
		}
		rows = append(rows, row)
	}
	return m.listPane("Atlas", rows, m.listIdx, "n new · d trash")
}

func (m *appModel) viewTimeline() string {
	rows := make([]string, 0, len(m.state.Events))
	for _, ev := range m.state.Events {
		when := ev.DisplayDate
		if when == "" {
			when = fmt.Sprintf("year %d", ev.Year)
		}
		rows = append(rows, fmt.Sprintf("%s  %s", styleMuted().Render(when), ev.Title))
	}
	title := "Timeline"
	if len(m.state.Eras) > 0 {
		names := make([]string, 0, len(m.state.Eras))
		for _, e := range m.state.Eras {
			names = append(names, e.Name)
		}
		title += styleMuted().Render("  [" + strings.Join(names, " / ") + "]")
	}
	return m.listPane(title, rows, m.listIdx, "n new event · e new era · d trash")
}

func (m *appModel) viewForge() string {
	rows := m.forgeRows()
	var tree strings.Builder
	tree.WriteString(lipgloss.NewStyle().Bold(true).Render("Forge"))
	tree.WriteString("\n\n")
	if len(rows) == 0 {
		tree.WriteString(styleMuted().Render("  no novels yet, press n"))
		tree.WriteString("\n")
	}
	for i, row := range rows {
		marker := "  "
		switch row.kind {
		case "novel":
			marker = "▸ "
			if m.state.ExpandedNovels[row.id] {
				marker = "▾ "
			}
		case "chapter":
			marker = "▸ "
			if m.state.ExpandedChapters[row.id] {
				marker = "▾ "
			}
		case "scene":
			marker = "· "
			if row.id == m.state.ActiveSceneID {
				marker = "✎ "
			}
		}
		line := strings.Repeat("  ", row.depth) + marker + row.title
		if row.words > 0 {
			line += styleMuted().Render(fmt.Sprintf(" %dw", row.words))
		}
		if i == m.treeIdx {
			line = styleSelected().Render(line)
		}
		tree.WriteString(ansi.Truncate(line, sidebarWidth-2, "…"))
		tree.WriteString("\n")
	}
	tree.WriteString("\n")
	tree.WriteString(styleMuted().Render("n novel · c chapter · s scene\ni write · r rename · d trash"))

	sidebar := lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(m.bodyHeight()).
		Padding(0, 1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(colorBorder).
		Render(tree.String())

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, m.viewScenePane())
}

func (m *appModel) viewScenePane() string {
	width := max(20, m.width-sidebarWidth-4)
	var b strings.Builder
	if m.state.ActiveSceneID == "" {
		b.WriteString(styleMuted().Render("Select a scene on the left."))
	} else if m.editorFocused {
		b.WriteString(m.editor.View())
		if m.state.EditorDirty {
			b.WriteString("\n")
			b.WriteString(styleMuted().Render("unsaved, autosave pending"))
		}
	} else {
		b.WriteString(renderMarkdown(m.state.EditorBody, width))
		b.WriteString("\n\n")
		hint := "i to edit"
		if wc := countWords(m.state.EditorBody); wc > 0 {
			hint = fmt.Sprintf("%d words · %s", wc, hint)
		}
		b.WriteString(styleMuted().Render(hint))
	}
	return lipgloss.NewStyle().Height(m.bodyHeight()).Padding(0, 1).Width(width).Render(b.String())
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

func (m *appModel) viewPmList() string {
	rows := make([]string, 0, len(m.state.Boards))
	for _, b := range m.state.Boards {
		rows = append(rows, b.Name)
	}
	return m.listPane("Boards", rows, m.boardIdx, "enter open · n new · D trash")
}

func (m *appModel) viewBoard() string {
	cols := m.state.Board.Columns
	if len(cols) == 0 {
		return m.listPane(m.state.Board.Board.Name, nil, 0, "esc back")
	}
	colWidth := max(16, (m.width-2)/len(cols)-2)

	rendered := make([]string, 0, len(cols))
	for ci, col := range cols {
		var b strings.Builder
		title := col.Name
		if ci == m.colIdx {
			title = lipgloss.NewStyle().Bold(true).Render(title)
		} else {
			title = styleMuted().Render(title)
		}
		b.WriteString(title)
		b.WriteString("\n")
		for i, card := range m.state.Board.Cards[col.ID] {
			line := card.Title
			if ci == m.colIdx && i == m.cardIdx {
				line = styleSelected().Render(line)
			}
			b.WriteString(ansi.Truncate(line, colWidth-2, "…"))
			b.WriteString("\n")
		}
		rendered = append(rendered, lipgloss.NewStyle().
			Width(colWidth).
			Height(m.bodyHeight()-1).
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Render(b.String()))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	hint := styleMuted().Render("hjkl move cursor · HJKL move card · n new · d trash · esc back")
	return lipgloss.JoinVertical(lipgloss.Left, board, hint)
}

func (m *appModel) viewTrash() string {
	rows := make([]string, 0, len(m.state.TrashEntries))
	for _, e := range m.state.TrashEntries {
		row := fmt.Sprintf("%s %s", styleMuted().Render("["+e.TargetType+"]"), e.DisplayName)
		if e.DisplayInfo != "" {
			row += styleMuted().Render("  " + e.DisplayInfo)
		}
		row += styleMuted().Render("  deleted " + e.DeletedAt.Format("Jan 2"))
		rows = append(rows, row)
	}
	return m.listPane("Trash", rows, m.trashIdx, "r restore · x delete forever · E empty")
}

func (m *appModel) viewStatus() string {
	var parts []string
	if m.state.Inflight != nil {
		parts = append(parts, lipgloss.NewStyle().Foreground(colorQueueBusy).
			Render(fmt.Sprintf("saving %s", m.state.Inflight.Kind)))
	}
	if n := len(m.state.Queue); n > 0 {
		parts = append(parts, styleMuted().Render(fmt.Sprintf("%d queued", n)))
	}
	if m.state.EditorDirty {
		parts = append(parts, styleMuted().Render("draft*"))
	}
	parts = append(parts, styleMuted().Render("q quit"))
	return ansi.Truncate(strings.Join(parts, "  "), m.width, "…")
}

func (m *appModel) viewToasts() string {
	if len(m.state.Toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.state.Toasts))
	for _, t := range m.state.Toasts {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(toastColor(t.Level)).
			Render("• "+t.Message))
	}
	return strings.Join(lines, "\n")
}

func (m *appModel) viewModal() string {
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(1, 2)
	switch m.modal {
	case modalInput:
		return box.Render(lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(m.modalTitle),
			"",
			m.input.View(),
			"",
			styleMuted().Render("enter confirm · esc cancel"),
		))
	case modalConfirm:
		return box.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.confirmLabel,
			"",
			styleMuted().Render("y confirm · n cancel"),
		))
	}
	return ""
}
