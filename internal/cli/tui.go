package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harmonyhq/linework/pkg/sketch"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// LayerListModel - Interactive layer selection
// =============================================================================

// layerEntry pairs a layer with its polyline count for display.
type layerEntry struct {
	Layer sketch.Layer
	Lines int
}

// LayerListModel is the bubbletea model for interactive layer selection.
type LayerListModel struct {
	Entries  []layerEntry
	Cursor   int
	Selected *sketch.Layer
}

// NewLayerListModel creates a layer list model for the given scene.
func NewLayerListModel(scene *sketch.Scene) LayerListModel {
	entries := make([]layerEntry, len(scene.Layers))
	for i, l := range scene.Layers {
		entries[i] = layerEntry{Layer: l, Lines: len(scene.LayerPolylines(l.ID))}
	}
	return LayerListModel{Entries: entries}
}

func (m LayerListModel) Init() tea.Cmd {
	return nil
}

func (m LayerListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
			}
		case "enter":
			if len(m.Entries) == 0 || m.Entries[m.Cursor].Lines == 0 {
				return m, nil
			}
			m.Selected = &m.Entries[m.Cursor].Layer
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m LayerListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Layer"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("arrows: navigate  enter: select  q: quit"))
	b.WriteString("\n\n")

	for i, e := range m.Entries {
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}

		name := e.Layer.Name
		if name == "" {
			name = e.Layer.ID
		}

		count := fmt.Sprintf("%d lines", e.Lines)
		if e.Lines == 1 {
			count = "1 line"
		}
		line := fmt.Sprintf("%s%-25s  %s", cursor, name, listDimStyle.Render(count))

		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else if e.Lines == 0 {
			b.WriteString(listDimStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}

// pickLayer runs the interactive layer picker and returns the chosen layer ID.
func pickLayer(scene *sketch.Scene) (string, error) {
	if len(scene.Layers) == 0 {
		return "", fmt.Errorf("scene has no layers; pass --layer explicitly")
	}
	p := tea.NewProgram(NewLayerListModel(scene))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("run layer picker: %w", err)
	}
	m, ok := final.(LayerListModel)
	if !ok || m.Selected == nil {
		return "", fmt.Errorf("no layer selected")
	}
	return m.Selected.ID, nil
}
