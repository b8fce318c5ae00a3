// Package theme 定义渲染后端使用的样式常量：调色板、文本样式、纸张与边距。
// 所有数值都是字面常量，不读取外部配置。
package theme

import "github.com/ByLCY/papyrus-docs/document"

// FontRole 选择字体家族。
type FontRole string

const (
	Sans FontRole = "sans"
	Mono FontRole = "mono"
)

// 分页后端的折行策略，对应 layout.TextBox.Wrap。
const (
	WrapAnywhere  = "anywhere"   // 优先在空白处折行，超长单词再按字符切分
	WrapBreakWord = "break-word" // 只按宽度切分，适合代码
	WrapNone      = "nowrap"     // 只在显式换行处分行
)

// TextStyle 描述一类文本的字体、字号、行高、颜色与段前段后距离。
type TextStyle struct {
	Font        FontRole
	Bold        bool
	Italic      bool
	Size        document.Length
	LineHeight  document.LineHeightSpec
	Color       document.Color
	Align       document.Align
	SpaceBefore document.Length
	SpaceAfter  document.Length
	Indent      document.Length
	Background  *document.Color
	Border      *document.Color
	Wrap        string // 为空时按 WrapAnywhere 处理
}

// FontKey 返回布局结果中引用字体资源的名字，例如 "sans-bold"。
func (s TextStyle) FontKey() string {
	role := s.Font
	if role == "" {
		role = Sans
	}
	switch {
	case s.Bold && s.Italic:
		return string(role) + "-bolditalic"
	case s.Bold:
		return string(role) + "-bold"
	case s.Italic:
		return string(role) + "-italic"
	default:
		return string(role)
	}
}

// Margins 以任意单位保存四边边距。
type Margins struct {
	Top, Right, Bottom, Left document.Length
}

// Theme 汇总一个后端需要的全部样式常量。
type Theme struct {
	PageWidth  document.Length
	PageHeight document.Length
	Margins    Margins

	Headings    [3]TextStyle
	Paragraphs  map[document.ParagraphKind]TextStyle
	Placeholder TextStyle
	Caption     TextStyle
	TableHeader TextStyle
	TableCell   TextStyle

	// 分页后端的页眉页脚
	RunningHeader       TextStyle
	RunningFooter       TextStyle
	RunningHeaderOffset document.Length // 页眉基线距页面顶部
	RunningFooterOffset document.Length // 页脚基线距页面底部

	ZebraColor  document.Color
	BorderColor document.Color
	CellPadding document.Length
	BorderWidth document.Length
}

// 调色板
var (
	Purple    = document.MustColor("#512BD4")
	Teal      = document.MustColor("#4ECDC4")
	Sky       = document.MustColor("#45B7D1")
	Ink       = document.MustColor("#333333")
	Coral     = document.MustColor("#FF6B6B")
	Gray      = document.MustColor("#808080")
	Zebra     = document.MustColor("#F9F9F9")
	Rule      = document.MustColor("#CCCCCC")
	CodePaper = document.MustColor("#F5F5F5")
	White     = document.MustColor("#FFFFFF")
	Black     = document.MustColor("#000000")
)

// Default 返回分页（PDF）后端的主题：A4，左右 0.75in，上下 1in。
func Default() Theme {
	codeBg := CodePaper
	codeBorder := Rule
	body := TextStyle{Font: Sans, Size: document.Pt(9), LineHeight: document.LeadingOf(document.Pt(13)), Color: Ink, Align: document.AlignJustify, SpaceAfter: document.Pt(10)}
	return Theme{
		PageWidth:  document.Mm(210),
		PageHeight: document.Mm(297),
		Margins:    Margins{Top: document.In(1), Right: document.In(0.75), Bottom: document.In(1), Left: document.In(0.75)},
		Headings: [3]TextStyle{
			{Font: Sans, Bold: true, Size: document.Pt(15), LineHeight: document.LeadingOf(document.Pt(18)), Color: Purple, SpaceBefore: document.Pt(14), SpaceAfter: document.Pt(14)},
			{Font: Sans, Bold: true, Size: document.Pt(12), LineHeight: document.LeadingOf(document.Pt(14)), Color: Teal, SpaceBefore: document.Pt(12), SpaceAfter: document.Pt(10)},
			{Font: Sans, Bold: true, Size: document.Pt(10), LineHeight: document.LeadingOf(document.Pt(12)), Color: Sky, SpaceBefore: document.Pt(8), SpaceAfter: document.Pt(8)},
		},
		Paragraphs: map[document.ParagraphKind]TextStyle{
			document.ParagraphBody:     body,
			document.ParagraphTitle:    {Font: Sans, Bold: true, Size: document.Pt(26), LineHeight: document.LeadingOf(document.Pt(32)), Color: Purple, Align: document.AlignCenter, SpaceBefore: document.Pt(6), SpaceAfter: document.Pt(14)},
			document.ParagraphSubtitle: {Font: Sans, Size: document.Pt(12), LineHeight: document.LeadingOf(document.Pt(16)), Color: Teal, Align: document.AlignCenter, SpaceBefore: document.Pt(4), SpaceAfter: document.Pt(8)},
			document.ParagraphBullet:   {Font: Sans, Size: document.Pt(9), LineHeight: document.LeadingOf(document.Pt(13)), Color: Ink, Indent: document.In(0.25), SpaceAfter: document.Pt(4)},
			document.ParagraphCode:     {Font: Mono, Size: document.Pt(7), LineHeight: document.LeadingOf(document.Pt(10)), Color: Black, Indent: document.Pt(15), SpaceBefore: document.Pt(10), SpaceAfter: document.Pt(10), Background: &codeBg, Border: &codeBorder, Wrap: WrapBreakWord},
			document.ParagraphMuted:    {Font: Sans, Size: document.Pt(9), LineHeight: document.Leading(1.3), Color: Gray, Align: document.AlignCenter, SpaceAfter: document.Pt(4)},
		},
		Placeholder: TextStyle{Font: Sans, Italic: true, Size: document.Pt(10), LineHeight: document.Leading(1.2), Color: Coral, Indent: document.In(0.5), SpaceBefore: document.Pt(6), SpaceAfter: document.Pt(2)},
		Caption:     TextStyle{Font: Sans, Italic: true, Size: document.Pt(9), LineHeight: document.Leading(1.2), Color: Gray, Indent: document.In(0.5), SpaceAfter: document.Pt(6)},
		TableHeader: TextStyle{Font: Sans, Bold: true, Size: document.Pt(9), LineHeight: document.Leading(1.25), Color: White},
		TableCell:   TextStyle{Font: Sans, Size: document.Pt(8), LineHeight: document.Leading(1.25), Color: Ink},

		RunningHeader:       TextStyle{Font: Sans, Bold: true, Size: document.Pt(10), LineHeight: document.Leading(1.2), Color: Ink, Wrap: WrapNone},
		RunningFooter:       TextStyle{Font: Sans, Size: document.Pt(8), LineHeight: document.Leading(1.2), Color: Ink, Wrap: WrapNone},
		RunningHeaderOffset: document.In(0.5),
		RunningFooterOffset: document.In(0.5),

		ZebraColor:  Zebra,
		BorderColor: Rule,
		CellPadding: document.Pt(5),
		BorderWidth: document.Pt(0.5),
	}
}

// Flowing 返回流式（DOCX）后端的主题：四边 0.75in，标题与正文字号更大。
func Flowing() Theme {
	t := Default()
	t.Margins = Margins{Top: document.In(0.75), Right: document.In(0.75), Bottom: document.In(0.75), Left: document.In(0.75)}
	t.Headings[0].Size = document.Pt(16)
	t.Headings[1].Size = document.Pt(13)
	t.Headings[2].Size = document.Pt(11)
	paragraphs := make(map[document.ParagraphKind]TextStyle, len(t.Paragraphs))
	for k, v := range t.Paragraphs {
		paragraphs[k] = v
	}
	body := paragraphs[document.ParagraphBody]
	body.Size = document.Pt(11)
	body.LineHeight = document.Leading(1.15)
	body.Align = document.AlignLeft
	paragraphs[document.ParagraphBody] = body
	bullet := paragraphs[document.ParagraphBullet]
	bullet.Size = document.Pt(10)
	bullet.LineHeight = document.Leading(1.15)
	paragraphs[document.ParagraphBullet] = bullet
	title := paragraphs[document.ParagraphTitle]
	title.Size = document.Pt(36)
	title.LineHeight = document.Leading(1.1)
	paragraphs[document.ParagraphTitle] = title
	code := paragraphs[document.ParagraphCode]
	code.Size = document.Pt(9)
	code.LineHeight = document.Leading(1)
	paragraphs[document.ParagraphCode] = code
	t.Paragraphs = paragraphs
	t.TableHeader.Size = document.Pt(10)
	t.TableCell.Size = document.Pt(10)
	return t
}

// Heading returns the style for level 1..3; out-of-range levels are clamped.
func (t Theme) Heading(level int) TextStyle {
	if level < 1 {
		level = 1
	}
	if level > len(t.Headings) {
		level = len(t.Headings)
	}
	return t.Headings[level-1]
}

// Paragraph returns the style for a paragraph kind, falling back to body text.
// A non-empty alignment on the block overrides the theme default for that kind.
func (t Theme) Paragraph(style document.ParagraphStyle) TextStyle {
	s, ok := t.Paragraphs[style.Kind]
	if !ok {
		s = t.Paragraphs[document.ParagraphBody]
	}
	if style.Align != "" {
		s.Align = style.Align
	}
	return s
}
