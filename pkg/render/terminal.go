package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("241"))
	messageStyle = lipgloss.NewStyle().Italic(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func headerLabel(c Column) string {
	switch c.Sort {
	case "asc":
		return c.Label + " ▲"
	case "desc":
		return c.Label + " ▼"
	}
	return c.Label
}

// Terminal writes the model as a table followed by the stats line.
func Terminal(w io.Writer, model *DisplayModel) error {
	for _, warning := range model.Warnings {
		if _, err := fmt.Fprintln(w, warnStyle.Render("! "+warning)); err != nil {
			return err
		}
	}
	if model.Failed || model.Loading || model.Empty {
		_, err := fmt.Fprintln(w, messageStyle.Render(model.Message))
		return err
	}

	headers := make([]string, len(model.Columns))
	for i, c := range model.Columns {
		headers[i] = headerLabel(c)
	}
	rows := make([][]string, len(model.Rows))
	for i, r := range model.Rows {
		cells := make([]string, len(r.Cells))
		for j, c := range r.Cells {
			cells[j] = c.Text
		}
		rows[i] = cells
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(model.Rows) && col < len(model.Rows[row].Cells) && model.Rows[row].Cells[col].Placeholder {
				return mutedStyle
			}
			return cellStyle
		})
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "総数: %d名  X保有: %d名\n", model.Stats.Total, model.Stats.WithHandle)
	return err
}
