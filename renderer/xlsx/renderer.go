// Package xlsx 是生成器的工作簿后端：把文档中的表格与标题大纲写成 .xlsx。
//
// 每个表格块占一个工作表，另有一个 Outline 工作表列出标题层级与图片占位符。
// 段落正文不导出。
package xlsx

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ByLCY/papyrus-docs/document"
	"github.com/ByLCY/papyrus-docs/renderer"
	"github.com/ByLCY/papyrus-docs/theme"
)

const (
	backendName  = "xlsx"
	outlineSheet = "Outline"
	// Excel 工作表名上限
	maxSheetName = 31
	// 列宽单位约为一个字符宽度，1 字符 ≈ 1.9mm
	mmPerChar   = 1.9
	minColWidth = 8.0
	maxColWidth = 60.0
)

// Options configures the workbook renderer.
type Options struct {
	Theme  theme.Theme // 零值时使用 theme.Default()
	Now    func() time.Time
	Logger *slog.Logger
}

// Renderer writes documents as .xlsx workbooks.
type Renderer struct {
	theme  theme.Theme
	now    func() time.Time
	logger *slog.Logger
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ renderer.Named    = (*Renderer)(nil)
)

func NewRenderer(opts Options) *Renderer {
	r := &Renderer{theme: opts.Theme, now: opts.Now, logger: opts.Logger}
	if r.theme.PageWidth.IsZero() {
		r.theme = theme.Default()
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Name implements renderer.Named.
func (r *Renderer) Name() string { return backendName }

// Render builds the workbook in memory.
func (r *Renderer) Render(doc *document.Document) ([]byte, error) {
	if doc == nil {
		return nil, document.NewRenderError(backendName, -1, fmt.Errorf("%w: 文档为空", document.ErrInvalidArgument))
	}
	f := excelize.NewFile()
	defer f.Close()

	// 新建工作簿自带 Sheet1，直接改名作为大纲页
	if err := f.SetSheetName(f.GetSheetName(0), outlineSheet); err != nil {
		return nil, document.NewRenderError(backendName, -1, err)
	}
	w := &workbook{file: f, theme: r.theme, styles: map[string]int{}}
	if err := w.writeOutlineHeader(); err != nil {
		return nil, document.NewRenderError(backendName, -1, err)
	}

	heading := ""
	tables := 0
	for i, blk := range doc.Blocks() {
		var err error
		switch v := blk.(type) {
		case document.Heading:
			heading = v.Text
			err = w.appendOutline("heading", strconv.Itoa(v.Level), v.Text)
		case document.ImagePlaceholder:
			err = w.appendOutline("placeholder", "", v.Marker()+" "+v.Caption)
		case document.Table:
			tables++
			err = w.writeTable(sheetName(tables, heading), v)
		}
		if err != nil {
			return nil, document.NewRenderError(backendName, i, err)
		}
	}

	meta := doc.Meta()
	stamp := r.now().UTC().Format(time.RFC3339)
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:          meta.Title,
		Subject:        meta.Subject,
		Creator:        meta.Author,
		Keywords:       strings.Join(meta.Keywords, ", "),
		LastModifiedBy: meta.Creator,
		Created:        stamp,
		Modified:       stamp,
	}); err != nil {
		return nil, document.NewRenderError(backendName, -1, err)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, document.NewRenderError(backendName, -1, fmt.Errorf("写出工作簿失败: %w", err))
	}
	r.logger.Debug("XLSX 渲染完成", "tables", tables, "bytes", buf.Len())
	return buf.Bytes(), nil
}

type workbook struct {
	file       *excelize.File
	theme      theme.Theme
	styles     map[string]int
	outlineRow int
}

func (w *workbook) writeOutlineHeader() error {
	w.outlineRow = 1
	if err := w.file.SetSheetRow(outlineSheet, "A1", &[]any{"Tip", "Nivel", "Text"}); err != nil {
		return err
	}
	colors, err := w.theme.TableColors(document.TableStyle{})
	if err != nil {
		return err
	}
	style, err := w.style(colors.HeaderText, &colors.Header, true)
	if err != nil {
		return err
	}
	if err := w.file.SetCellStyle(outlineSheet, "A1", "C1", style); err != nil {
		return err
	}
	if err := w.file.SetColWidth(outlineSheet, "A", "B", 12); err != nil {
		return err
	}
	return w.file.SetColWidth(outlineSheet, "C", "C", maxColWidth)
}

func (w *workbook) appendOutline(kind, level, text string) error {
	w.outlineRow++
	cell, err := excelize.CoordinatesToCellName(1, w.outlineRow)
	if err != nil {
		return err
	}
	return w.file.SetSheetRow(outlineSheet, cell, &[]any{kind, level, text})
}

func (w *workbook) writeTable(sheet string, t document.Table) error {
	columns := t.Columns()
	if columns == 0 {
		return fmt.Errorf("%w: 表格没有行", document.ErrInvalidArgument)
	}
	colors, err := w.theme.TableColors(t.Style)
	if err != nil {
		return err
	}
	if _, err := w.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("创建工作表 %q 失败: %w", sheet, err)
	}

	bodyIdx := 0
	for i, row := range t.Rows {
		header := i == 0 && t.HasHeader()
		values := make([]any, len(row))
		for col, text := range row {
			values[col] = text
		}
		start, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := w.file.SetSheetRow(sheet, start, &values); err != nil {
			return err
		}
		for col := range row {
			textStyle := w.theme.CellStyle(colors, header, col)
			style, err := w.style(textStyle.Color, colors.CellFill(header, bodyIdx, col), textStyle.Bold)
			if err != nil {
				return err
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+1)
			if err != nil {
				return err
			}
			if err := w.file.SetCellStyle(sheet, cell, cell, style); err != nil {
				return err
			}
		}
		if !header {
			bodyIdx++
		}
	}

	for col, width := range columnWidths(t) {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := w.file.SetColWidth(sheet, name, name, width); err != nil {
			return err
		}
	}
	if t.HasHeader() {
		// 冻结表头
		return w.file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}
	return nil
}

// style 按 (文字颜色, 底色, 粗体) 缓存样式 ID。
func (w *workbook) style(text document.Color, fill *document.Color, bold bool) (int, error) {
	key := text.Hex() + "/" + strconv.FormatBool(bold)
	if fill != nil {
		key += "/" + fill.Hex()
	}
	if id, ok := w.styles[key]; ok {
		return id, nil
	}
	border := w.theme.BorderColor.Hex()
	s := &excelize.Style{
		Font:      &excelize.Font{Bold: bold, Color: text.Hex()},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Border: []excelize.Border{
			{Type: "left", Color: border, Style: 1},
			{Type: "top", Color: border, Style: 1},
			{Type: "right", Color: border, Style: 1},
			{Type: "bottom", Color: border, Style: 1},
		},
	}
	if fill != nil {
		s.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill.Hex()}}
	}
	id, err := w.file.NewStyle(s)
	if err != nil {
		return 0, fmt.Errorf("创建单元格样式失败: %w", err)
	}
	w.styles[key] = id
	return id, nil
}

// columnWidths 使用列宽提示；没有提示时按最长单元格估算。
func columnWidths(t document.Table) []float64 {
	columns := t.Columns()
	widths := make([]float64, columns)
	if len(t.Style.ColumnWidths) == columns {
		for i, l := range t.Style.ColumnWidths {
			widths[i] = clampWidth(l.ToMM() / mmPerChar)
		}
		return widths
	}
	for _, row := range t.Rows {
		for col, text := range row {
			longest := 0
			for _, line := range strings.Split(text, "\n") {
				longest = max(longest, utf8.RuneCountInString(line))
			}
			widths[col] = max(widths[col], float64(longest)+2)
		}
	}
	for i := range widths {
		widths[i] = clampWidth(widths[i])
	}
	return widths
}

func clampWidth(w float64) float64 {
	return min(max(w, minColWidth), maxColWidth)
}

// sheetName 生成 "T<n> <标题>"，去掉 Excel 不允许的字符并截断到 31 个字符。
func sheetName(n int, heading string) string {
	name := "T" + strconv.Itoa(n)
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']', '\'', '\n', '\t':
			return ' '
		}
		return r
	}, heading)
	clean = strings.Join(strings.Fields(clean), " ")
	if clean != "" {
		name += " " + clean
	}
	if utf8.RuneCountInString(name) > maxSheetName {
		runes := []rune(name)
		name = strings.TrimSpace(string(runes[:maxSheetName]))
	}
	return name
}
