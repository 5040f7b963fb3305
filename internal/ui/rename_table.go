package ui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
)

// RenameRow is one line of a rename listing.
type RenameRow struct {
	OldPath string
	NewPath string
	Status  string // "", SymbolSuccess or SymbolError
	Note    string // error text for failed rows
}

// RenameTable lists renames as "old → new", grouped by directory.
type RenameTable struct {
	display *DisplayContext
	rows    []RenameRow
}

// NewRenameTable creates an empty table sized for display.
func NewRenameTable(display *DisplayContext) *RenameTable {
	return &RenameTable{display: display}
}

// AddRow adds a row to the table.
func (t *RenameTable) AddRow(row RenameRow) {
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *RenameTable) Len() int {
	return len(t.rows)
}

// nameWidth splits the available width between the old and new name
// columns.
func (t *RenameTable) nameWidth(numWidth, statusWidth int) int {
	const leftMargin, padding, arrow = 2, 2, 1
	avail := t.display.AvailableWidth(leftMargin) - numWidth - statusWidth - arrow - 4*padding
	w := avail / 2
	if w < 12 {
		w = 12
	}
	return w
}

// Render generates the table output. A muted directory line precedes each
// run of rows that share a directory.
func (t *RenameTable) Render() string {
	if len(t.rows) == 0 {
		return ""
	}

	numWidth := len(fmt.Sprintf("%d", len(t.rows)))
	if numWidth < 2 {
		numWidth = 2
	}
	statusWidth := 0
	for _, r := range t.rows {
		if r.Status != "" {
			statusWidth = 1
			break
		}
	}
	nameWidth := t.nameWidth(numWidth, statusWidth)

	var (
		cells   [][]string
		headers = map[int]bool{}
		lastDir string
	)
	for i, r := range t.rows {
		dir := filepath.Dir(r.OldPath)
		if dir != lastDir {
			headers[len(cells)] = true
			cells = append(cells, []string{"", "", dir, "", ""})
			lastDir = dir
		}
		newName := filepath.Base(r.NewPath)
		if r.Note != "" {
			newName += "  " + r.Note
		}
		cells = append(cells, []string{
			fmt.Sprintf("%*d", numWidth, i+1),
			r.Status,
			runewidth.Truncate(filepath.Base(r.OldPath), nameWidth, "…"),
			SymbolArrow,
			runewidth.Truncate(newName, nameWidth, "…"),
		})
	}

	tbl := table.New().
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderRow(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row >= 0 && headers[row] {
				if col == 2 {
					return AccentBold
				}
				return lipgloss.NewStyle()
			}
			style := lipgloss.NewStyle().PaddingRight(2)
			switch col {
			case 0:
				return style.Inherit(Muted).Align(lipgloss.Right)
			case 2, 3:
				return style.Inherit(Muted)
			case 4:
				return lipgloss.NewStyle()
			}
			return style
		}).
		Rows(cells...)

	return tbl.Render()
}
