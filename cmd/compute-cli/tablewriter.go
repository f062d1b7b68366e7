package main

import (
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
)

// VisualTable renders a borderless, left aligned table.
type VisualTable struct {
	Header []string
	Data   [][]string

	// cellColor is keyed by row, then column.
	cellColor map[int]map[int]tablewriter.Colors
}

func NewVisualTable(header []string, data [][]string) *VisualTable {
	return &VisualTable{
		Header:    header,
		Data:      data,
		cellColor: make(map[int]map[int]tablewriter.Colors),
	}
}

func (v *VisualTable) SetCellColor(row, column int, colors tablewriter.Colors) *VisualTable {
	if v.cellColor[row] == nil {
		v.cellColor[row] = make(map[int]tablewriter.Colors)
	}
	v.cellColor[row][column] = colors
	return v
}

func (v *VisualTable) Generate() {
	v.Render(os.Stdout)
}

func (v *VisualTable) Render(out io.Writer) {
	table := tablewriter.NewWriter(out)
	for i, row := range v.Data {
		colored, ok := v.cellColor[i]
		if !ok {
			table.Append(row)
			continue
		}
		colors := make([]tablewriter.Colors, len(row))
		for column := range row {
			colors[column] = colored[column]
		}
		table.Rich(row, colors)
	}

	table.SetHeader(v.Header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	table.Render()
}

// statusColor colors a job status cell by its provider status code.
func statusColor(status int) tablewriter.Colors {
	switch {
	case status >= 70:
		return tablewriter.Colors{tablewriter.Bold, tablewriter.FgGreenColor}
	case status > 0:
		return tablewriter.Colors{tablewriter.Bold, tablewriter.FgYellowColor}
	default:
		return tablewriter.Colors{tablewriter.Bold, tablewriter.FgRedColor}
	}
}
