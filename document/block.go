package document

// 该文件定义文档块（Block）及其样式描述，构建器与各渲染后端共用。

// Kind identifies the concrete block variant.
type Kind int

const (
	KindHeading Kind = iota + 1
	KindParagraph
	KindTable
	KindImagePlaceholder
	KindPageBreak
	KindSpacer
)

func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindTable:
		return "table"
	case KindImagePlaceholder:
		return "image-placeholder"
	case KindPageBreak:
		return "page-break"
	case KindSpacer:
		return "spacer"
	default:
		return "unknown"
	}
}

// Block is one semantic unit of content. The set of implementations is closed.
type Block interface {
	Kind() Kind
	isBlock()
}

// Heading 的 Text 由调用方给出完整文本（包括章节编号）。
type Heading struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Align 为段落水平对齐方式。
type Align string

const (
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
	AlignJustify Align = "justify"
)

// ParagraphKind selects the text style tier the theme applies to a paragraph.
type ParagraphKind string

const (
	ParagraphBody     ParagraphKind = "body"
	ParagraphTitle    ParagraphKind = "title"
	ParagraphSubtitle ParagraphKind = "subtitle"
	ParagraphBullet   ParagraphKind = "bullet"
	ParagraphCode     ParagraphKind = "code"
	ParagraphMuted    ParagraphKind = "muted"
)

// ParagraphStyle 的零值表示左对齐的正文段落。
type ParagraphStyle struct {
	Align Align         `json:"align,omitempty"`
	Kind  ParagraphKind `json:"kind,omitempty"`
}

// Paragraph 的文本不做任何解析，换行由调用方预先写入。
type Paragraph struct {
	Text  string         `json:"text"`
	Style ParagraphStyle `json:"style"`
}

// TableStyle 是可复用的表格样式值。颜色以十六进制字符串保存，在渲染时解析。
type TableStyle struct {
	HeaderColor      string   `json:"headerColor,omitempty"`      // 表头背景色，例如 #512BD4
	HeaderText       string   `json:"headerText,omitempty"`       // 表头文字颜色，默认白色
	FirstColumnColor string   `json:"firstColumnColor,omitempty"` // 首列背景色（用于键值表）
	Zebra            bool     `json:"zebra,omitempty"`            // 正文行交替底色
	ZebraColor       string   `json:"zebraColor,omitempty"`       // 交替底色，为空时使用主题默认值
	Grid             bool     `json:"grid,omitempty"`             // 绘制单元格网格线
	ColumnWidths     []Length `json:"columnWidths,omitempty"`     // 列宽提示，为空时平均分配
	BodiesOnly       bool     `json:"bodiesOnly,omitempty"`       // 为 true 时第一行不作为表头
}

// Table 的所有行单元格数一致。
type Table struct {
	Rows  [][]string `json:"rows"`
	Style TableStyle `json:"style"`
}

// Columns returns the shared cell count of every row.
func (t Table) Columns() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0])
}

// HasHeader reports whether the first row is rendered as a header row.
func (t Table) HasHeader() bool { return !t.Style.BodiesOnly }

// ImagePlaceholder 以文本形式渲染，供后期人工替换为真实图片。
type ImagePlaceholder struct {
	Label   string `json:"label"`
	Caption string `json:"caption"`
}

// Marker returns the searchable marker string emitted for the placeholder.
func (p ImagePlaceholder) Marker() string { return "[INSERT IMAGE: " + p.Label + "]" }

type PageBreak struct{}

// Spacer 仅为建议值，后端可以近似处理。
type Spacer struct {
	Size Length `json:"size"`
}

func (Heading) Kind() Kind          { return KindHeading }
func (Paragraph) Kind() Kind        { return KindParagraph }
func (Table) Kind() Kind            { return KindTable }
func (ImagePlaceholder) Kind() Kind { return KindImagePlaceholder }
func (PageBreak) Kind() Kind        { return KindPageBreak }
func (Spacer) Kind() Kind           { return KindSpacer }

func (Heading) isBlock()          {}
func (Paragraph) isBlock()        {}
func (Table) isBlock()            {}
func (ImagePlaceholder) isBlock() {}
func (PageBreak) isBlock()        {}
func (Spacer) isBlock()           {}
