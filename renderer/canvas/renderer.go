package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/papyrus-docs/document"
	"github.com/ByLCY/papyrus-docs/fonts"
	"github.com/ByLCY/papyrus-docs/layout"
	"github.com/ByLCY/papyrus-docs/renderer"
	"github.com/ByLCY/papyrus-docs/theme"
)

const (
	backendName      = "pdf"
	tableBorderWidth = 0.2
)

// Renderer draws documents as PDF via github.com/tdewolff/canvas.
type Renderer struct {
	theme    theme.Theme
	resolved fonts.Resolved
	now      func() time.Time
	decorate layout.PageFunc
	debug    layout.DebugOptions
	debugOut string
	logger   *slog.Logger

	fontMu       sync.Mutex
	fontFamilies map[string]*fontFamilyEntry
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ renderer.Named    = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	loaded map[canvas.FontStyle]bool
}

// Options configures the canvas renderer.
type Options struct {
	Theme    theme.Theme   // 零值时使用 theme.Default()
	Fonts    fonts.FontSet // 零值时使用 fonts.DefaultSet()
	Now      func() time.Time
	Decorate layout.PageFunc // 为空时按文档元信息生成页眉页脚
	Logger   *slog.Logger

	// 调试：DebugJSON 非空时把布局结果写到该路径
	Debug     layout.DebugOptions
	DebugJSON string
}

// NewRenderer resolves fonts once and returns a ready renderer.
// When no Unicode font is found and fallback is disabled, it returns *document.MissingDependencyError.
func NewRenderer(opts Options) (*Renderer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	th := opts.Theme
	if th.PageWidth.IsZero() {
		th = theme.Default()
	}
	set := opts.Fonts
	if len(set.SearchDirs) == 0 && len(set.Sans.Files) == 0 {
		disable := set.DisableFallback
		set = fonts.DefaultSet()
		set.DisableFallback = disable
	}
	if set.Logger == nil {
		set.Logger = logger
	}
	resolved, err := set.Resolve()
	if err != nil {
		if errors.Is(err, fonts.ErrNotFound) {
			return nil, &document.MissingDependencyError{
				Resource: set.Sans.Name,
				Hint:     "安装 DejaVu 字体（例如 apt install fonts-dejavu-core），或将 DejaVuSans.ttf 放到当前目录",
				Err:      err,
			}
		}
		return nil, document.NewRenderError(backendName, -1, err)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Renderer{
		theme:        th,
		resolved:     resolved,
		now:          now,
		decorate:     opts.Decorate,
		debug:        opts.Debug,
		debugOut:     opts.DebugJSON,
		logger:       logger,
		fontFamilies: map[string]*fontFamilyEntry{},
	}, nil
}

// Name implements renderer.Named.
func (r *Renderer) Name() string { return backendName }

// Degraded reports whether the built-in Go fonts replaced the Unicode font family.
func (r *Renderer) Degraded() bool { return r.resolved.Degraded }

// FontFamily returns the resolved sans family name.
func (r *Renderer) FontFamily() string { return r.resolved.Sans.Name }

// Render lays out doc and renders it into a PDF byte slice.
func (r *Renderer) Render(doc *document.Document) ([]byte, error) {
	if doc == nil {
		return nil, document.NewRenderError(backendName, -1, fmt.Errorf("%w: 文档为空", document.ErrInvalidArgument))
	}
	decorate := r.decorate
	if decorate == nil {
		decorate = layout.RunningDecorations(doc.Meta())
	}
	result, err := layout.Build(doc, layout.BuildOptions{
		Typesetter: r,
		Theme:      r.theme,
		Decorate:   decorate,
		Year:       r.now().Year(),
		Backend:    backendName,
		Debug:      r.debug,
	})
	if err != nil {
		return nil, err
	}
	if r.debugOut != "" {
		if err := layout.WriteDebugJSON(result, r.debugOut); err != nil {
			r.logger.Warn("写入布局调试 JSON 失败", "path", r.debugOut, "err", err)
		}
	}
	return r.RenderLayout(result)
}

// RenderLayout renders an already computed layout result.
func (r *Renderer) RenderLayout(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, document.NewRenderError(backendName, -1, fmt.Errorf("渲染结果为空"))
	}
	if len(result.Pages) == 0 {
		return nil, document.NewRenderError(backendName, -1, fmt.Errorf("缺少可渲染的页面"))
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, result.Pages[0].Width, result.Pages[0].Height, nil)
	r.applyMeta(writer, result.Meta)
	for i, page := range result.Pages {
		if i > 0 {
			writer.NewPage(page.Width, page.Height)
		}
		c := canvas.New(page.Width, page.Height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page, result.Resources); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, document.NewRenderError(backendName, -1, fmt.Errorf("写入 PDF 失败: %w", err))
	}
	r.logger.Debug("PDF 渲染完成", "pages", len(result.Pages), "bytes", buf.Len(), "degraded", r.resolved.Degraded)
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// LayoutLines 实现 layout.Typesetter 接口，使用贪心换行算法。
// 约定：fontSize/lineHeight 入参均为毫米（mm）。渲染器内部与字体系统交互使用 pt，并在边界做 mm↔pt 换算。
func (r *Renderer) LayoutLines(content string, width float64, font layout.FontResource, fontSize, lineHeight float64, wrap string) ([]layout.TextLine, error) {
	// 将字号从 mm 转为 pt 以创建字体面
	sizePt := toPt(fontSize)
	face, err := r.fontFace(font, sizePt, layout.Color{R: 30, G: 30, B: 30})
	if err != nil {
		return nil, err
	}

	// 在贪心换行中，所有宽度比较与累计均使用 mm
	if wrap == "" {
		wrap = theme.WrapAnywhere
	}
	lines := greedyWrapTokens(content, width, face, wrap)
	textMetrics := face.Metrics()
	textHeight := textMetrics.LineHeight
	if textHeight <= 0 {
		textHeight = lineHeight
	}
	leading := math.Max(lineHeight-textHeight, 0)
	if len(lines) == 0 {
		lines = []layout.TextLine{{
			Content: "",
			Width:   0,
			Height:  textHeight,
			Hard:    true,
		}}
	}
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = textHeight
		}
		if i == 0 {
			lines[i].GapBefore = 0
		} else {
			lines[i].GapBefore = leading
		}
	}
	return lines, nil
}

func (r *Renderer) drawPage(ctx *canvas.Context, page layout.Page, resources layout.ResourceSet) error {
	// 先绘制页眉
	r.drawLines(ctx, page.Header.Lines)
	for _, tb := range page.Header.Texts {
		if err := r.drawTextBox(ctx, tb, resolveFontResource(tb.Font, resources.Fonts)); err != nil {
			return document.NewRenderError(backendName, tb.Block, err)
		}
	}

	// 背景形状（代码段底色等）在主体内容之前绘制
	r.drawLines(ctx, page.Lines)
	r.drawRects(ctx, page.Rects)

	for _, tb := range page.Texts {
		if err := r.drawTextBox(ctx, tb, resolveFontResource(tb.Font, resources.Fonts)); err != nil {
			return document.NewRenderError(backendName, tb.Block, err)
		}
	}
	if err := r.drawTables(ctx, page.Tables, resources.Fonts); err != nil {
		return err
	}

	r.drawLines(ctx, page.Footer.Lines)
	for _, tb := range page.Footer.Texts {
		if err := r.drawTextBox(ctx, tb, resolveFontResource(tb.Font, resources.Fonts)); err != nil {
			return document.NewRenderError(backendName, tb.Block, err)
		}
	}
	return nil
}

func (r *Renderer) drawTextBox(ctx *canvas.Context, tb layout.TextBox, fontRes layout.FontResource) error {
	// TextBox 的坐标/字号/行高均为 mm；创建字体面需要 pt，这里做一次 mm→pt。
	face, err := r.fontFace(fontRes, toPt(tb.FontSize), tb.Color)
	if err != nil {
		return err
	}

	lines := tb.Lines
	if len(lines) == 0 {
		lines = []layout.TextLine{
			{
				Content: tb.Content,
				Width:   tb.Width,
				Height:  tb.LineHeight,
				Hard:    true,
			},
		}
	}

	// 处理水平对齐：left（默认）/center/right/justify。
	align := strings.ToLower(tb.Align)
	var textAlign canvas.TextAlign
	var anchorX float64
	switch align {
	case "center":
		textAlign = canvas.Center
		anchorX = tb.X + tb.Width/2
	case "right", "end":
		textAlign = canvas.Right
		anchorX = tb.X + tb.Width
	default:
		textAlign = canvas.Left
		anchorX = tb.X
	}

	metrics := face.Metrics()
	cursorY := tb.Y
	for _, line := range lines {
		cursorY += line.GapBefore

		lineHeight := line.Height
		if lineHeight <= 0 {
			if tb.FontSize > 0 {
				lineHeight = tb.FontSize
			} else {
				lineHeight = tb.LineHeight
			}
		}

		// 基线位置：以行顶部（cursorY，mm）加上字体上升部（Ascent）
		baseline := cursorY + metrics.Ascent
		if align == "justify" && !line.Hard {
			drawJustified(ctx, face, line.Content, tb.X, baseline, tb.Width)
		} else {
			ctx.DrawText(anchorX, baseline, canvas.NewTextLine(face, line.Content, textAlign))
		}
		cursorY += lineHeight
	}
	return nil
}

// drawJustified 把词间空白平均拉伸到整行宽度；只有一个词时按左对齐绘制。
func drawJustified(ctx *canvas.Context, face *canvas.FontFace, content string, x, baseline, width float64) {
	words := strings.Fields(content)
	if len(words) < 2 {
		ctx.DrawText(x, baseline, canvas.NewTextLine(face, content, canvas.Left))
		return
	}
	total := 0.0
	widths := make([]float64, len(words))
	for i, w := range words {
		widths[i] = face.TextWidth(w)
		total += widths[i]
	}
	gap := (width - total) / float64(len(words)-1)
	if gap < face.TextWidth(" ") {
		ctx.DrawText(x, baseline, canvas.NewTextLine(face, content, canvas.Left))
		return
	}
	cursor := x
	for i, w := range words {
		ctx.DrawText(cursor, baseline, canvas.NewTextLine(face, w, canvas.Left))
		cursor += widths[i] + gap
	}
}

func (r *Renderer) drawTables(ctx *canvas.Context, tables []layout.TableBox, fontRes map[string]layout.FontResource) error {
	for _, table := range tables {
		if len(table.ColumnWidths) == 0 {
			continue
		}
		border := table.BorderWidth
		if border <= 0 {
			border = tableBorderWidth
		}
		for _, row := range table.Rows {
			x := table.X
			for idx, cell := range row.Cells {
				colIdx := idx
				if colIdx >= len(table.ColumnWidths) {
					colIdx = len(table.ColumnWidths) - 1
				}
				colWidth := table.ColumnWidths[colIdx]
				if cell.Fill != nil {
					ctx.SetFillColor(colorFromLayout(*cell.Fill))
					ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
					ctx.DrawPath(x, row.Y, canvas.Rectangle(colWidth, row.Height))
				}
				if table.Grid {
					ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
					ctx.SetStrokeColor(colorFromLayout(table.BorderColor))
					ctx.SetStrokeWidth(border)
					ctx.DrawPath(x, row.Y, canvas.Rectangle(colWidth, row.Height))
				}

				if err := r.drawTextBox(ctx, cell.Text, resolveFontResource(cell.Text.Font, fontRes)); err != nil {
					return document.NewRenderError(backendName, table.Block, err)
				}
				x += colWidth
			}
			if !table.Grid {
				// 无网格时只在行底画一条细线
				y := row.Y + row.Height
				r.drawLines(ctx, []layout.Line{{X1: table.X, Y1: y, X2: table.X + table.Width, Y2: y, Color: table.BorderColor, Width: border}})
			}
		}
	}
	return nil
}

// drawLines 绘制直线列表（毫米单位）
func (r *Renderer) drawLines(ctx *canvas.Context, lines []layout.Line) {
	for _, ln := range lines {
		w := ln.Width
		if w <= 0 {
			w = tableBorderWidth
		}
		ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		ctx.SetStrokeColor(colorFromLayout(ln.Color))
		ctx.SetStrokeWidth(w)
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(ln.X2-ln.X1, ln.Y2-ln.Y1)
		ctx.DrawPath(ln.X1, ln.Y1, p)
	}
}

// drawRects 绘制矩形
func (r *Renderer) drawRects(ctx *canvas.Context, rects []layout.Rect) {
	for _, rc := range rects {
		w := rc.StrokeWidth
		if w <= 0 {
			w = tableBorderWidth
		}
		if rc.FillColor != nil {
			ctx.SetFillColor(colorFromLayout(*rc.FillColor))
		} else {
			ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
		}
		if rc.StrokeColor != nil {
			ctx.SetStrokeColor(colorFromLayout(*rc.StrokeColor))
			ctx.SetStrokeWidth(w)
		} else {
			ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
		}
		ctx.DrawPath(rc.X, rc.Y, canvas.Rectangle(rc.Width, rc.Height))
	}
}

func (r *Renderer) fontFace(font layout.FontResource, size float64, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(size, colorFromLayout(col), style, canvas.FontNormal), nil
}

// ensureFontFamily 为 sans/mono 各建一个 canvas 家族，并按需加载各样式的字体数据。
func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	role := font.Family
	if role == "" {
		role = string(theme.Sans)
	}
	source := r.resolved.Sans
	if role == string(theme.Mono) {
		source = r.resolved.Mono
	}
	fontsStyle := parseFontStyle(font.Style)
	style := canvasStyle(fontsStyle)

	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	entry, ok := r.fontFamilies[role]
	if !ok {
		entry = &fontFamilyEntry{family: canvas.NewFontFamily(source.Name), loaded: map[canvas.FontStyle]bool{}}
		r.fontFamilies[role] = entry
	}
	if entry.loaded[style] {
		return entry.family, style, nil
	}
	data := source.Face(fontsStyle)
	if len(data) == 0 {
		return nil, canvas.FontRegular, &document.MissingDependencyError{
			Resource: fmt.Sprintf("%s %s", source.Name, fontsStyle),
			Hint:     "检查字体文件是否完整",
		}
	}
	if err := entry.family.LoadFont(data, 0, style); err != nil {
		return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s %s 失败: %w", source.Name, fontsStyle, err)
	}
	entry.loaded[style] = true
	return entry.family, style, nil
}

func resolveFontResource(name string, known map[string]layout.FontResource) layout.FontResource {
	if font, ok := known[name]; ok {
		return font
	}
	if font, ok := known[string(theme.Sans)]; ok {
		return font
	}
	return layout.FontResource{Name: name, Family: string(theme.Sans), Style: "regular"}
}

func parseFontStyle(style string) fonts.Style {
	s := strings.ToLower(style)
	bold := strings.Contains(s, "bold")
	italic := strings.Contains(s, "italic") || strings.Contains(s, "oblique")
	switch {
	case bold && italic:
		return fonts.BoldItalic
	case bold:
		return fonts.Bold
	case italic:
		return fonts.Italic
	default:
		return fonts.Regular
	}
}

func canvasStyle(s fonts.Style) canvas.FontStyle {
	switch s {
	case fonts.Bold:
		return canvas.FontBold
	case fonts.Italic:
		return canvas.FontRegular | canvas.FontItalic
	case fonts.BoldItalic:
		return canvas.FontBold | canvas.FontItalic
	default:
		return canvas.FontRegular
	}
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * document.MmToPt }

func greedyWrapTokens(content string, width float64, face *canvas.FontFace, wrap string) []layout.TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	// nowrap：仅按显式换行划分，不基于宽度折行
	if wrap == theme.WrapNone {
		parts := strings.Split(content, "\n")
		lines := make([]layout.TextLine, 0, len(parts))
		for _, p := range parts {
			w := face.TextWidth(p)
			lines = append(lines, layout.TextLine{Content: p, Width: w, Hard: true})
		}
		return lines
	}

	// break-word：忽略空白机会，纯按宽度切分（但仍然尊重显式换行）
	if wrap == theme.WrapBreakWord {
		var lines []layout.TextLine
		var builder strings.Builder
		current := 0.0
		emit := func(force bool) {
			if builder.Len() == 0 {
				if force {
					lines = append(lines, layout.TextLine{Content: "", Width: 0, Hard: true})
				}
				return
			}
			str := builder.String()
			lines = append(lines, layout.TextLine{Content: str, Width: current, Hard: force})
			builder.Reset()
			current = 0
		}
		for _, r := range content {
			if r == '\r' {
				continue
			}
			if r == '\n' {
				emit(true)
				continue
			}
			s := string(r)
			cw := face.TextWidth(s)
			if current > 0 && current+cw > limit {
				emit(false)
			}
			builder.WriteString(s)
			current += cw
			if current > limit {
				emit(false)
			}
		}
		emit(true)
		return lines
	}

	// 默认（anywhere/normal 等）：优先在空白处分割，超过限制时在词内拆分
	tokens := tokenizeContent(content)
	var lines []layout.TextLine
	var builder strings.Builder
	currentWidth := 0.0

	emit := func(force bool) {
		if builder.Len() == 0 {
			if force {
				lines = append(lines, layout.TextLine{Content: "", Width: 0, Hard: true})
			}
			return
		}
		// 行尾空白不计入宽度，两端对齐时也不参与拉伸
		lineStr := strings.TrimRightFunc(builder.String(), unicode.IsSpace)
		lineWidth := currentWidth
		if len(lineStr) != builder.Len() {
			lineWidth = face.TextWidth(lineStr)
		}
		lines = append(lines, layout.TextLine{
			Content: lineStr,
			Width:   lineWidth,
			Hard:    force,
		})
		builder.Reset()
		currentWidth = 0
	}

	appendToken := func(token string) {
		builder.WriteString(token)
		currentWidth += face.TextWidth(token)
	}

	for _, token := range tokens {
		if token == "\n" {
			emit(true)
			continue
		}
		// 折行后的行首空白直接丢弃
		if builder.Len() == 0 && len(lines) > 0 && !lines[len(lines)-1].Hard && strings.TrimSpace(token) == "" {
			continue
		}

		tokenWidth := face.TextWidth(token)
		if currentWidth > 0 && currentWidth+tokenWidth > limit {
			emit(false)
			if strings.TrimSpace(token) == "" {
				continue
			}
		}
		if tokenWidth <= limit {
			appendToken(token)
			if currentWidth > limit {
				emit(false)
			}
			continue
		}

		for _, chunk := range splitTokenByWidth(token, limit, face) {
			chunkWidth := face.TextWidth(chunk)
			if currentWidth > 0 && currentWidth+chunkWidth > limit {
				emit(false)
			}
			appendToken(chunk)
			if currentWidth > limit {
				emit(false)
			}
		}
	}

	emit(true)
	return lines
}

func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, face *canvas.FontFace) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var builder strings.Builder
	for _, r := range token {
		builder.WriteRune(r)
		if face.TextWidth(builder.String()) > limit && builder.Len() > 1 {
			runes := []rune(builder.String())
			parts = append(parts, string(runes[:len(runes)-1]))
			builder.Reset()
			builder.WriteRune(r)
		}
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}
