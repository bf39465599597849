package components

import (
	"github.com/allbin/sercom"
	"github.com/allbin/sercom/internal/tui/colors"
	"github.com/allbin/sercom/internal/tui/keys"
	"github.com/allbin/sercom/internal/tui/styles"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
)

const (
	columnKeyPath = "path"
	columnKeyName = "name"
)

// Picker lets the user choose one of the enumerated serial devices
type Picker struct {
	table  table.Model
	keys   keys.PickerKeys
	choice string
}

func NewPicker(entries []sercom.PortEntry) *Picker {
	columns := []table.Column{
		table.NewColumn(columnKeyPath, "Path", 20),
		table.NewColumn(columnKeyName, "Name", 36),
	}

	rows := make([]table.Row, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, table.NewRow(table.RowData{
			columnKeyPath: entry.Path,
			columnKeyName: entry.Name,
		}))
	}

	t := table.New(columns).
		WithRows(rows).
		Focused(true).
		WithPageSize(10).
		WithBaseStyle(lipgloss.NewStyle().
			BorderForeground(colors.Surface1).
			Foreground(colors.Text))

	return &Picker{
		table: t,
		keys:  keys.NewPickerKeys(),
	}
}

// Choice returns the selected device path, or "" if the picker was cancelled
func (p *Picker) Choice() string {
	return p.choice
}

func (p *Picker) Init() tea.Cmd {
	return nil
}

func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Select):
			if row := p.table.HighlightedRow(); row.Data != nil {
				p.choice, _ = row.Data[columnKeyPath].(string)
			}
			return p, tea.Quit
		case key.Matches(msg, p.keys.Quit):
			return p, tea.Quit
		}
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return p, cmd
}

func (p *Picker) View() string {
	title := styles.TitleStyle.Render("Select a serial device")
	hint := styles.HintStyle.Render("enter: connect  q/esc: cancel")
	return lipgloss.JoinVertical(lipgloss.Left, title, p.table.View(), hint)
}
