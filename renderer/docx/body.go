package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/gomutex/godocx/docx"
	"github.com/gomutex/godocx/wml/ctypes"
	"github.com/gomutex/godocx/wml/stypes"

	"github.com/ByLCY/papyrus-docs/document"
	"github.com/ByLCY/papyrus-docs/theme"
)

// 单元格段落的上下间距（twips）
const cellPadding = 40

func (r *Renderer) writeBlock(rd *docx.RootDoc, blk document.Block) error {
	switch v := blk.(type) {
	case document.Heading:
		style := r.theme.Heading(v.Level)
		props := paragraphProps(style)
		props.Style = ctypes.NewParagraphStyle(fmt.Sprintf("Heading%d", v.Level))
		props.KeepNext = &ctypes.OnOff{}
		r.addParagraph(rd, props, r.run(v.Text, style))
	case document.Paragraph:
		style := r.theme.Paragraph(v.Style)
		r.addParagraph(rd, paragraphProps(style), r.run(v.Text, style))
	case document.Table:
		return r.writeTable(rd, v)
	case document.ImagePlaceholder:
		marker, caption := r.theme.Placeholder, r.theme.Caption
		r.addParagraph(rd, paragraphProps(marker), r.run(v.Marker(), marker))
		r.addParagraph(rd, paragraphProps(caption), r.run(v.Caption, caption))
	case document.PageBreak:
		rd.AddPageBreak()
	case document.Spacer:
		r.addParagraph(rd, &ctypes.ParagraphProp{Spacing: spacing(0, twips(v.Size), 1)}, nil)
	default:
		return fmt.Errorf("未知的块类型 %T", blk)
	}
	return nil
}

// addParagraph 在正文末尾追加一个段落；run 为 nil 时是空段落。
func (r *Renderer) addParagraph(rd *docx.RootDoc, props *ctypes.ParagraphProp, run *ctypes.Run) {
	ct := rd.AddEmptyParagraph().GetCT()
	ct.Property = props
	if run != nil {
		ct.Children = append(ct.Children, ctypes.ParagraphChild{Run: run})
	}
}

func paragraphProps(style theme.TextStyle) *ctypes.ParagraphProp {
	props := &ctypes.ParagraphProp{
		Spacing: spacing(twips(style.SpaceBefore), twips(style.SpaceAfter), style.LineHeight.Ratio(style.Size)),
	}
	if style.Background != nil {
		props.Shading = ctypes.NewShading().SetFill(style.Background.Hex())
	}
	if !style.Indent.IsZero() {
		left := style.Indent.ToTwips()
		props.Indent = &ctypes.Indent{Left: &left}
	}
	if jc, ok := justification(style.Align); ok {
		props.Justification = ctypes.NewGenSingleStrVal(jc)
	}
	return props
}

func spacing(before, after uint64, ratio float64) *ctypes.Spacing {
	line := lineSpacing(ratio)
	rule := stypes.LineSpacingRuleAuto
	return &ctypes.Spacing{Before: &before, After: &after, Line: &line, LineRule: &rule}
}

// twips 把长度换算成 twips，负值按 0 处理。
func twips(l document.Length) uint64 {
	return uint64(max(l.ToTwips(), 0))
}

func justification(a document.Align) (stypes.Justification, bool) {
	switch a {
	case document.AlignCenter:
		return stypes.JustificationCenter, true
	case document.AlignRight:
		return stypes.JustificationRight, true
	case document.AlignJustify:
		return stypes.JustificationBoth, true
	default:
		return "", false
	}
}

// run 把文本写成一个 run，\n 变为 w:br。
func (r *Renderer) run(text string, style theme.TextStyle) *ctypes.Run {
	font := r.sans
	if style.Font == theme.Mono {
		font = r.mono
	}
	props := &ctypes.RunProperty{
		Fonts: &ctypes.RunFonts{Ascii: font, HAnsi: font, CS: font},
		Color: ctypes.NewColor(style.Color.Hex()),
	}
	if style.Bold {
		props.Bold = &ctypes.OnOff{}
	}
	if style.Italic {
		props.Italic = &ctypes.OnOff{}
	}
	if !style.Size.IsZero() {
		size := uint64(halfPoints(style.Size))
		props.Size = ctypes.NewFontSize(size)
		props.SizeCs = &ctypes.FontSizeCS{Value: size}
	}
	run := &ctypes.Run{Property: props}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			run.Children = append(run.Children, ctypes.RunChild{Break: &ctypes.Break{}})
		}
		if line == "" {
			continue
		}
		run.Children = append(run.Children, ctypes.RunChild{Text: ctypes.TextFromString(line)})
	}
	return run
}

// contentWidthTwips 返回版心宽度（twips）。
func (r *Renderer) contentWidthTwips() int {
	th := r.theme
	return th.PageWidth.ToTwips() - th.Margins.Left.ToTwips() - th.Margins.Right.ToTwips()
}

// columnTwips 把列宽提示换算成 twips；超出版心时等比缩小，没有提示时平均分配。
func (r *Renderer) columnTwips(t document.Table) []int {
	cols := t.Columns()
	avail := r.contentWidthTwips()
	widths := make([]int, cols)
	if len(t.Style.ColumnWidths) != cols {
		for i := range widths {
			widths[i] = avail / cols
		}
		return widths
	}
	total := 0
	for i, l := range t.Style.ColumnWidths {
		widths[i] = max(l.ToTwips(), 0)
		total += widths[i]
	}
	if total > avail && total > 0 {
		for i := range widths {
			widths[i] = widths[i] * avail / total
		}
	}
	return widths
}

func (r *Renderer) writeTable(rd *docx.RootDoc, t document.Table) error {
	cols := t.Columns()
	if cols == 0 {
		return fmt.Errorf("%w: 表格没有行", document.ErrInvalidArgument)
	}
	colors, err := r.theme.TableColors(t.Style)
	if err != nil {
		return err
	}
	widths := r.columnTwips(t)
	total := 0
	for _, w := range widths {
		total += w
	}

	tbl := ctypes.DefaultTable()
	tbl.TableProp.Width = ctypes.NewTableWidth(total, stypes.TableWidthDxa)
	tbl.TableProp.Layout = ctypes.NewTableLayout(stypes.TableLayoutFixed)
	if total < r.contentWidthTwips() {
		tbl.TableProp.Justification = ctypes.NewGenSingleStrVal(stypes.JustificationCenter)
	}
	if t.Style.Grid {
		tbl.TableProp.Style = ctypes.NewCTString("TableGrid")
		tbl.TableProp.Borders = tableBorders(r.theme.BorderColor)
	}
	for _, w := range widths {
		width := uint64(w)
		tbl.Grid.Col = append(tbl.Grid.Col, ctypes.Column{Width: &width})
	}

	bodyIdx := 0
	for i, cells := range t.Rows {
		header := i == 0 && t.HasHeader()
		row := ctypes.DefaultRow()
		if header {
			// 跨页时重复表头
			row.Property = &ctypes.RowProperty{Header: &ctypes.OnOff{}}
		}
		for col, text := range cells {
			style := r.theme.CellStyle(colors, header, col)
			cell := ctypes.DefaultCell()
			cell.Property = &ctypes.CellProperty{Width: ctypes.NewTableWidth(widths[col], stypes.TableWidthDxa)}
			if fill := colors.CellFill(header, bodyIdx, col); fill != nil {
				cell.Property.Shading = ctypes.NewShading().SetFill(fill.Hex())
			}
			para := &ctypes.Paragraph{
				Property: &ctypes.ParagraphProp{Spacing: spacing(cellPadding, cellPadding, 1)},
				Children: []ctypes.ParagraphChild{{Run: r.run(text, style)}},
			}
			cell.Contents = append(cell.Contents, ctypes.TCBlockContent{Paragraph: para})
			row.Contents = append(row.Contents, ctypes.TRCellContent{Cell: cell})
		}
		tbl.RowContents = append(tbl.RowContents, ctypes.RowContent{Row: row})
		if !header {
			bodyIdx++
		}
	}
	if err := attachTable(rd, tbl); err != nil {
		return err
	}
	// Word 要求表格之后至少跟一个段落，否则相邻表格会被合并
	r.addParagraph(rd, &ctypes.ParagraphProp{Spacing: spacing(0, 120, 1)}, nil)
	return nil
}

// attachTable 把 ctypes.Table 追加到正文。
// docx.Table 的包装类型只暴露 Style/Indent，行属性、单元格属性与 tblGrid 都设置不到，
// 所以先序列化，再交给 docx.Body 自带的解码器还原成 *docx.Table。
func attachTable(rd *docx.RootDoc, tbl *ctypes.Table) error {
	data, err := xml.Marshal(tbl)
	if err != nil {
		return fmt.Errorf("序列化表格失败: %w", err)
	}
	var frag bytes.Buffer
	fmt.Fprintf(&frag, `<w:body xmlns:w="%s">`, nsW)
	frag.Write(data)
	frag.WriteString(`</w:body>`)

	body := docx.NewBody(rd)
	if err := xml.Unmarshal(frag.Bytes(), body); err != nil {
		return fmt.Errorf("还原表格失败: %w", err)
	}
	rd.Document.Body.Children = append(rd.Document.Body.Children, body.Children...)
	return nil
}

func tableBorders(c document.Color) *ctypes.TableBorders {
	side := func() *ctypes.Border {
		color, space := c.Hex(), "0"
		return &ctypes.Border{Val: stypes.BorderStyleSingle, Color: &color, Space: &space}
	}
	return &ctypes.TableBorders{
		Top:     side(),
		Left:    side(),
		Bottom:  side(),
		Right:   side(),
		InsideH: side(),
		InsideV: side(),
	}
}

// section 生成唯一的 w:sectPr：纸张尺寸与四边边距。
func (r *Renderer) section() *ctypes.SectionProp {
	th := r.theme
	width, height := uint64(th.PageWidth.ToTwips()), uint64(th.PageHeight.ToTwips())
	top, right := th.Margins.Top.ToTwips(), th.Margins.Right.ToTwips()
	bottom, left := th.Margins.Bottom.ToTwips(), th.Margins.Left.ToTwips()
	header, footer, gutter := 720, 720, 0
	return &ctypes.SectionProp{
		PageSize: &ctypes.PageSize{Width: &width, Height: &height},
		PageMargin: &ctypes.PageMargin{
			Top:    &top,
			Right:  &right,
			Bottom: &bottom,
			Left:   &left,
			Header: &header,
			Footer: &footer,
			Gutter: &gutter,
		},
	}
}
