package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/ByLCY/papyrus-docs/document"
	"github.com/ByLCY/papyrus-docs/theme"
)

const (
	framePadding  = 2.0 // 代码段底色与文字之间的距离（mm）
	keepWithNext  = 12  // 标题后至少保留的正文高度（mm）
	headerRuleGap = 2.0 // 页眉文字与分隔线的距离（mm）
	tableGap      = 3.0 // 表格上下的留白（mm）
)

// Build 将文档块依次排入页面，返回可直接绘制的布局结果。
func Build(doc *document.Document, opts BuildOptions) (*Result, error) {
	backend := opts.Backend
	if backend == "" {
		backend = "layout"
	}
	if doc == nil {
		return nil, document.NewRenderError(backend, -1, fmt.Errorf("%w: 文档为空", document.ErrInvalidArgument))
	}
	if opts.Typesetter == nil {
		return nil, document.NewRenderError(backend, -1, fmt.Errorf("layout: 缺少排版后端 Typesetter"))
	}
	th := opts.Theme
	if th.PageWidth.IsZero() || th.PageHeight.IsZero() {
		th = theme.Default()
	}

	width := th.PageWidth.ToMM()
	height := th.PageHeight.ToMM()
	margin := Margin{
		Top:    th.Margins.Top.ToMM(),
		Right:  th.Margins.Right.ToMM(),
		Bottom: th.Margins.Bottom.ToMM(),
		Left:   th.Margins.Left.ToMM(),
	}
	if width-margin.Left-margin.Right <= 0 || height-margin.Top-margin.Bottom <= 0 {
		return nil, document.NewRenderError(backend, -1, fmt.Errorf("页面 %.1fx%.1fmm 放不下边距", width, height))
	}

	collector := newPageCollector(width, height, margin)
	fonts := map[string]FontResource{}
	root := &flowContext{
		baseX:      margin.Left,
		width:      width - margin.Left - margin.Right,
		cursorY:    collector.contentTop(),
		typesetter: opts.Typesetter,
		theme:      th,
		debug:      opts.Debug,
		collector:  collector,
		fonts:      fonts,
	}

	for i, blk := range doc.Blocks() {
		root.block = i
		if err := root.place(blk); err != nil {
			return nil, document.NewRenderError(backend, i, err)
		}
	}

	pages := collector.pages()
	if opts.Decorate != nil {
		for i := range pages {
			info := PageInfo{
				Number: i + 1,
				Total:  len(pages),
				Year:   opts.Year,
				Width:  width,
				Height: height,
				Margin: margin,
			}
			if err := root.decorate(&pages[i], info, opts.Decorate(info)); err != nil {
				return nil, document.NewRenderError(backend, -1, err)
			}
		}
	}

	meta := doc.Meta()
	return &Result{
		Pages:     pages,
		Resources: ResourceSet{Fonts: fonts},
		Meta: DocumentMeta{
			Title:    meta.Title,
			Author:   meta.Author,
			Subject:  meta.Subject,
			Creator:  meta.Creator,
			Keywords: meta.Keywords,
		},
	}, nil
}

// place 按块类型分派。
func (ctx *flowContext) place(blk document.Block) error {
	switch b := blk.(type) {
	case document.Heading:
		return ctx.placeHeading(b)
	case document.Paragraph:
		return ctx.placeText(b.Text, ctx.theme.Paragraph(b.Style))
	case document.Table:
		return ctx.placeTable(b)
	case document.ImagePlaceholder:
		return ctx.placePlaceholder(b)
	case document.PageBreak:
		// 当前页还没有内容时不再追加空白页
		if !ctx.acc().empty() {
			ctx.pageBreak()
		}
		return nil
	case document.Spacer:
		// 负值按 0 处理；超出版心时停在底部，由下一个块触发换页，避免文末多出空白页
		ctx.cursorY = min(ctx.cursorY+max(b.Size.ToMM(), 0), ctx.collector.maxContentY())
		return nil
	default:
		return fmt.Errorf("未知的块类型 %T", blk)
	}
}

func (ctx *flowContext) placeHeading(h document.Heading) error {
	style := ctx.theme.Heading(h.Level)
	tb, height, err := ctx.compose(h.Text, style, ctx.baseX, ctx.width)
	if err != nil {
		return err
	}
	ctx.spaceBefore(style)
	// 标题不单独留在页底
	ctx.ensureSpace(height + keepWithNext)
	tb.Y = ctx.cursorY
	ctx.acc().appendText(tb)
	ctx.cursorY += height + style.SpaceAfter.ToMM()
	return nil
}

func (ctx *flowContext) placePlaceholder(p document.ImagePlaceholder) error {
	markerStyle := ctx.theme.Placeholder
	captionStyle := ctx.theme.Caption
	mx := ctx.baseX + markerStyle.Indent.ToMM()
	marker, mh, err := ctx.compose(p.Marker(), markerStyle, mx, ctx.width-markerStyle.Indent.ToMM())
	if err != nil {
		return err
	}
	cx := ctx.baseX + captionStyle.Indent.ToMM()
	caption, ch, err := ctx.compose(p.Caption, captionStyle, cx, ctx.width-captionStyle.Indent.ToMM())
	if err != nil {
		return err
	}
	ctx.spaceBefore(markerStyle)
	gap := markerStyle.SpaceAfter.ToMM()
	ctx.ensureSpace(mh + gap + ch)
	marker.Y = ctx.cursorY
	ctx.acc().appendText(marker)
	ctx.cursorY += mh + gap
	caption.Y = ctx.cursorY
	ctx.acc().appendText(caption)
	ctx.cursorY += ch + captionStyle.SpaceAfter.ToMM()
	return nil
}

// placeText 排入一段文字，放不下时按行拆到后续页面。
func (ctx *flowContext) placeText(content string, style theme.TextStyle) error {
	indent := style.Indent.ToMM()
	pad := 0.0
	if style.Background != nil || style.Border != nil {
		pad = framePadding
	}
	x := ctx.baseX + indent + pad
	w := ctx.width - indent - 2*pad
	if w <= 0 {
		return fmt.Errorf("段落缩进 %.1fmm 超出内容宽度", indent)
	}
	tb, _, err := ctx.compose(content, style, x, w)
	if err != nil {
		return err
	}
	ctx.spaceBefore(style)

	lines := tb.Lines
	for len(lines) > 0 {
		avail := ctx.collector.maxContentY() - ctx.cursorY - 2*pad
		n, h := fitLines(lines, avail)
		if n == 0 {
			if ctx.atTop() {
				// 单行高于整页时强制放置，避免死循环
				n, h = 1, lines[0].Height
			} else {
				ctx.pageBreak()
				continue
			}
		}
		chunk := tb
		chunk.Lines = append([]TextLine(nil), lines[:n]...)
		chunk.Lines[0].GapBefore = 0
		chunk.Height = h
		chunk.Y = ctx.cursorY + pad
		if pad > 0 {
			ctx.acc().rects = append(ctx.acc().rects, Rect{
				X:           ctx.baseX + indent,
				Y:           ctx.cursorY,
				Width:       ctx.width - indent,
				Height:      h + 2*pad,
				FillColor:   style.Background,
				StrokeColor: style.Border,
				StrokeWidth: ctx.theme.BorderWidth.ToMM(),
			})
		}
		ctx.acc().appendText(chunk)
		ctx.cursorY += h + 2*pad
		lines = lines[n:]
		if len(lines) > 0 {
			ctx.pageBreak()
		}
	}
	ctx.cursorY += style.SpaceAfter.ToMM()
	return nil
}

// fitLines 返回在 avail 高度内可以放下的行数及其总高度（忽略首行的 GapBefore）。
func fitLines(lines []TextLine, avail float64) (int, float64) {
	total := 0.0
	for i, ln := range lines {
		h := ln.Height
		if i > 0 {
			h += ln.GapBefore
		}
		if total+h > avail+1e-6 {
			return i, total
		}
		total += h
	}
	return len(lines), total
}

func (ctx *flowContext) spaceBefore(style theme.TextStyle) {
	if ctx.atTop() {
		return
	}
	ctx.cursorY += style.SpaceBefore.ToMM()
}

// compose 生成一个 Y 为 0 的文本框，调用方负责定位。
func (ctx *flowContext) compose(content string, style theme.TextStyle, x, width float64) (TextBox, float64, error) {
	font := fontResourceFor(style)
	ctx.fonts[font.Name] = font
	tb, height, err := composeTextBox(content, style, font, x, 0, width, ctx.typesetter, ctx.debug)
	if err != nil {
		return TextBox{}, 0, err
	}
	tb.Block = ctx.block
	return tb, height, nil
}

func fontResourceFor(style theme.TextStyle) FontResource {
	family := string(style.Font)
	if family == "" {
		family = string(theme.Sans)
	}
	name := style.FontKey()
	variant := "regular"
	if i := strings.IndexByte(name, '-'); i >= 0 {
		variant = name[i+1:]
	}
	return FontResource{Name: name, Family: family, Style: variant}
}

func composeTextBox(content string, style theme.TextStyle, font FontResource, x, y, width float64, ts Typesetter, debug DebugOptions) (TextBox, float64, error) {
	fontSize := style.Size.ToMM()
	if fontSize <= 0 { // 默认 12pt
		fontSize = 12 * document.PtToMm
	}
	lineHeight := style.LineHeight.Resolve(document.Mm(fontSize), document.UnitMM)

	wrap := style.Wrap
	if wrap == "" {
		wrap = theme.WrapAnywhere
	}
	lines, err := layoutLines(content, width, font, fontSize, lineHeight, ts, wrap)
	if err != nil {
		return TextBox{}, 0, err
	}

	totalHeight := 0.0
	defaultLeading := math.Max(lineHeight-fontSize, 0)
	for i := range lines {
		if lines[i].Height <= 0 {
			lines[i].Height = fontSize
		}
		if i == 0 {
			lines[i].GapBefore = 0
		} else if lines[i].GapBefore <= 0 {
			lines[i].GapBefore = defaultLeading
		}
		totalHeight += lines[i].GapBefore + lines[i].Height
	}

	tb := TextBox{
		Content:    content,
		X:          x,
		Y:          y,
		Width:      width,
		LineHeight: lineHeight,
		Font:       font.Name,
		FontSize:   fontSize,
		Color:      style.Color,
		Lines:      lines,
		Height:     totalHeight,
		Wrap:       wrap,
	}
	if style.Align != "" && style.Align != document.AlignLeft {
		tb.Align = string(style.Align)
	}
	if debug.RawUnits {
		size := style.Size
		if size.IsZero() {
			size = document.Pt(12)
		}
		sizeRaw := RawLengthJSON{Value: size.Value, Unit: size.Unit.String()}
		var lhRaw RawLineHeightJSON
		switch style.LineHeight.Kind {
		case document.LineHeightAbsolute:
			lhRaw = RawLineHeightJSON{Kind: "absolute", Value: style.LineHeight.Len.Value, Unit: style.LineHeight.Len.Unit.String()}
		default:
			f := style.LineHeight.Factor
			if f <= 0 {
				f = 1.4
			}
			lhRaw = RawLineHeightJSON{Kind: "factor", Factor: f}
		}
		tb.Debug = &TextBoxDebug{RawUnits: &RawUnits{FontSize: &sizeRaw, LineHeight: &lhRaw}}
	}
	return tb, totalHeight, nil
}

func layoutLines(content string, width float64, font FontResource, fontSize, lineHeight float64, ts Typesetter, wrap string) ([]TextLine, error) {
	lines, err := ts.LayoutLines(content, width, font, fontSize, lineHeight, wrap)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		height := fontSize
		if height <= 0 {
			height = lineHeight
		}
		lines = []TextLine{{Content: "", Width: 0, Height: height, Hard: true}}
	}
	lines[0].GapBefore = 0
	return lines, nil
}

// decorate 把 PageFunc 返回的页眉页脚文字排到页面上。
func (ctx *flowContext) decorate(page *Page, info PageInfo, dec Decoration) error {
	th := ctx.theme
	contentWidth := info.Width - info.Margin.Left - info.Margin.Right
	ctx.block = -1

	headerTop := th.RunningHeaderOffset.ToMM() - th.RunningHeader.Size.ToMM()
	bottom := headerTop
	for _, c := range dec.Header {
		tb, h, err := ctx.compose(c.Text, th.RunningHeader, info.Margin.Left, contentWidth)
		if err != nil {
			return err
		}
		tb.Y = headerTop
		tb.Align = captionAlign(c.Align)
		page.Header.Texts = append(page.Header.Texts, tb)
		if headerTop+h > bottom {
			bottom = headerTop + h
		}
	}
	if dec.Rule && len(dec.Header) > 0 {
		y := bottom + headerRuleGap
		page.Header.Lines = append(page.Header.Lines, Line{
			X1: info.Margin.Left, Y1: y,
			X2: info.Width - info.Margin.Right, Y2: y,
			Color: th.BorderColor,
			Width: th.BorderWidth.ToMM(),
		})
	}

	footerTop := info.Height - th.RunningFooterOffset.ToMM() - th.RunningFooter.Size.ToMM()
	for _, c := range dec.Footer {
		tb, _, err := ctx.compose(c.Text, th.RunningFooter, info.Margin.Left, contentWidth)
		if err != nil {
			return err
		}
		tb.Y = footerTop
		tb.Align = captionAlign(c.Align)
		page.Footer.Texts = append(page.Footer.Texts, tb)
	}
	return nil
}

func captionAlign(a document.Align) string {
	switch a {
	case document.AlignCenter, document.AlignRight:
		return string(a)
	default:
		return ""
	}
}

type pageAccumulator struct {
	texts  []TextBox
	tables []TableBox
	lines  []Line
	rects  []Rect
}

func (p *pageAccumulator) appendText(tb TextBox) {
	p.texts = append(p.texts, tb)
}

func (p *pageAccumulator) appendTable(t TableBox) {
	p.tables = append(p.tables, t)
}

func (p *pageAccumulator) empty() bool {
	return len(p.texts) == 0 && len(p.tables) == 0 && len(p.rects) == 0 && len(p.lines) == 0
}

type pageCollector struct {
	width   float64
	height  float64
	margin  Margin
	accs    []*pageAccumulator
	current int
}

func newPageCollector(width, height float64, margin Margin) *pageCollector {
	pc := &pageCollector{
		width:  width,
		height: height,
		margin: margin,
	}
	pc.newPage()
	return pc
}

func (pc *pageCollector) newPage() *pageAccumulator {
	acc := &pageAccumulator{}
	pc.accs = append(pc.accs, acc)
	pc.current = len(pc.accs) - 1
	return acc
}

func (pc *pageCollector) curr() *pageAccumulator {
	if len(pc.accs) == 0 {
		return pc.newPage()
	}
	return pc.accs[pc.current]
}

func (pc *pageCollector) maxContentY() float64 {
	return pc.contentBottom()
}

func (pc *pageCollector) contentTop() float64 {
	return pc.margin.Top
}

func (pc *pageCollector) contentBottom() float64 {
	return pc.height - pc.margin.Bottom
}

func (pc *pageCollector) pages() []Page {
	out := make([]Page, len(pc.accs))
	for i, acc := range pc.accs {
		out[i] = Page{
			Number: i + 1,
			Width:  pc.width,
			Height: pc.height,
			Margin: pc.margin,
			Texts:  acc.texts,
			Tables: acc.tables,
			Lines:  acc.lines,
			Rects:  acc.rects,
		}
	}
	return out
}

type flowContext struct {
	baseX      float64
	width      float64
	cursorY    float64
	block      int
	typesetter Typesetter
	theme      theme.Theme
	debug      DebugOptions
	collector  *pageCollector
	fonts      map[string]FontResource
}

func (ctx *flowContext) ensureSpace(height float64) {
	if ctx.cursorY+height <= ctx.collector.maxContentY() {
		return
	}
	if ctx.atTop() {
		return
	}
	ctx.pageBreak()
}

func (ctx *flowContext) atTop() bool {
	return ctx.cursorY <= ctx.collector.contentTop()+1e-6 && ctx.acc().empty()
}

func (ctx *flowContext) pageBreak() {
	ctx.collector.newPage()
	ctx.cursorY = ctx.collector.contentTop()
}

func (ctx *flowContext) acc() *pageAccumulator {
	return ctx.collector.curr()
}
