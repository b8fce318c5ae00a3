package layout

import (
	"fmt"

	"github.com/ByLCY/papyrus-docs/document"
	"github.com/ByLCY/papyrus-docs/theme"
)

// columnWidths 把列宽提示换算成毫米；总宽超出 avail 时等比缩小，没有提示时平均分配。
func columnWidths(style document.TableStyle, columns int, avail float64) ([]float64, error) {
	widths := make([]float64, columns)
	if len(style.ColumnWidths) == 0 {
		for i := range widths {
			widths[i] = avail / float64(columns)
		}
		return widths, nil
	}
	if len(style.ColumnWidths) != columns {
		return nil, fmt.Errorf("%w: 列宽数量 %d 与列数 %d 不一致", document.ErrInvalidArgument, len(style.ColumnWidths), columns)
	}
	total := 0.0
	for i, l := range style.ColumnWidths {
		w := l.ToMM()
		if w <= 0 {
			return nil, fmt.Errorf("%w: 第 %d 列宽度必须大于 0", document.ErrInvalidArgument, i+1)
		}
		widths[i] = w
		total += w
	}
	if total > avail {
		scale := avail / total
		for i := range widths {
			widths[i] *= scale
		}
	}
	return widths, nil
}

// placeTable 排入表格。表头与第一行正文不分离，跨页时在新页重复表头。
func (ctx *flowContext) placeTable(t document.Table) error {
	columns := t.Columns()
	if columns == 0 {
		return fmt.Errorf("%w: 表格没有行", document.ErrInvalidArgument)
	}
	colors, err := ctx.theme.TableColors(t.Style)
	if err != nil {
		return err
	}
	widths, err := columnWidths(t.Style, columns, ctx.width)
	if err != nil {
		return err
	}
	tableWidth := 0.0
	for _, w := range widths {
		tableWidth += w
	}
	tableX := ctx.baseX + (ctx.width-tableWidth)/2

	var header *TableRow
	bodies := t.Rows
	if t.HasHeader() {
		row, err := ctx.buildTableRow(t.Rows[0], widths, tableX, true, 0, colors)
		if err != nil {
			return err
		}
		header = &row
		bodies = t.Rows[1:]
	}
	rows := make([]TableRow, 0, len(bodies))
	for i, cells := range bodies {
		row, err := ctx.buildTableRow(cells, widths, tableX, false, i, colors)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	if !ctx.atTop() {
		ctx.cursorY += tableGap
	}
	first := 0.0
	if header != nil {
		first += header.Height
	}
	if len(rows) > 0 {
		first += rows[0].Height
	}
	ctx.ensureSpace(first)

	part := 0
	frag := ctx.newTableFragment(part, tableX, tableWidth, widths, t.Style.Grid)
	startFragment := func() {
		if header != nil {
			h := *header
			h.Repeated = part > 0
			ctx.appendRow(&frag, h)
		}
	}
	startFragment()
	bodyInFrag := 0
	for _, row := range rows {
		if ctx.cursorY+row.Height > ctx.collector.maxContentY() && bodyInFrag > 0 {
			ctx.acc().appendTable(frag)
			ctx.pageBreak()
			part++
			frag = ctx.newTableFragment(part, tableX, tableWidth, widths, t.Style.Grid)
			startFragment()
			bodyInFrag = 0
		}
		ctx.appendRow(&frag, row)
		bodyInFrag++
	}
	ctx.acc().appendTable(frag)
	ctx.cursorY += tableGap
	return nil
}

func (ctx *flowContext) newTableFragment(part int, x, width float64, widths []float64, grid bool) TableBox {
	return TableBox{
		Block:        ctx.block,
		Part:         part,
		X:            x,
		Y:            ctx.cursorY,
		Width:        width,
		ColumnWidths: widths,
		BorderColor:  ctx.theme.BorderColor,
		BorderWidth:  ctx.theme.BorderWidth.ToMM(),
		Grid:         grid,
	}
}

// appendRow 把以 0 为顶部的行平移到当前游标处。
func (ctx *flowContext) appendRow(frag *TableBox, row TableRow) {
	y := ctx.cursorY
	row.Y = y
	cells := make([]TableCell, len(row.Cells))
	for i, c := range row.Cells {
		c.Text.Y += y
		cells[i] = c
	}
	row.Cells = cells
	frag.Rows = append(frag.Rows, row)
	ctx.cursorY += row.Height
}

func (ctx *flowContext) buildTableRow(cells []string, widths []float64, baseX float64, header bool, bodyIdx int, colors theme.TableColors) (TableRow, error) {
	row := TableRow{IsHeader: header}
	pad := ctx.theme.CellPadding.ToMM()
	x := baseX
	maxHeight := 0.0
	for col, content := range cells {
		style := ctx.theme.CellStyle(colors, header, col)
		fill := colors.CellFill(header, bodyIdx, col)
		cellWidth := widths[col] - 2*pad
		if cellWidth <= 0 {
			cellWidth = widths[col]
		}
		tb, height, err := ctx.compose(content, style, x+pad, cellWidth)
		if err != nil {
			return row, err
		}
		tb.Y = pad
		row.Cells = append(row.Cells, TableCell{Text: tb, Fill: fill})
		if height > maxHeight {
			maxHeight = height
		}
		x += widths[col]
	}
	row.Height = maxHeight + 2*pad
	return row, nil
}
