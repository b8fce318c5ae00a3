package layout

import "github.com/ByLCY/papyrus-docs/document"

// 该文件定义布局结果与资源描述，供布局计算、渲染与调试 JSON 共用。
// 所有坐标与尺寸均以毫米为单位，原点在页面左上角。

// Result 保存布局后的页面与资源信息。
type Result struct {
	Pages     []Page       `json:"pages"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// ResourceSet 记录布局中实际用到的字体。
type ResourceSet struct {
	Fonts map[string]FontResource `json:"fonts"`
}

// FontResource 描述一个字体引用。Family 为 sans 或 mono，Style 为 regular/bold/italic/bolditalic。
type FontResource struct {
	Name   string `json:"name"`
	Family string `json:"family"`
	Style  string `json:"style"`
}

// Color 采用 0-255 的 RGB 数值。
type Color = document.Color

// Page 记录页面尺寸、边距与最终可以直接渲染的元素。
type Page struct {
	Number int        `json:"number"`
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Margin Margin     `json:"margin"`
	Texts  []TextBox  `json:"texts"`
	Tables []TableBox `json:"tables"`
	Lines  []Line     `json:"lines,omitempty"`
	Rects  []Rect     `json:"rects,omitempty"`
	// 页眉与页脚由 PageFunc 按页生成
	Header HeaderFooter `json:"header"`
	Footer HeaderFooter `json:"footer"`
}

// HeaderFooter 描述页眉/页脚区域的元素集合（页面坐标）。
type HeaderFooter struct {
	Texts []TextBox `json:"texts"`
	Lines []Line    `json:"lines,omitempty"`
}

// Margin 以毫米为单位。
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// TextBox 表示一个已经排好坐标的文本块。
type TextBox struct {
	Block      int           `json:"block"` // 来源块序号，页眉页脚为 -1
	Content    string        `json:"content"`
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	Width      float64       `json:"width"`
	LineHeight float64       `json:"lineHeight"`
	Font       string        `json:"font"`
	FontSize   float64       `json:"fontSize"`
	Color      Color         `json:"color"`
	Lines      []TextLine    `json:"lines"`
	Height     float64       `json:"height"`
	Align      string        `json:"align,omitempty"` // left/center/right/justify（默认 left）
	Wrap       string        `json:"wrap,omitempty"`  // 折行策略：anywhere(默认)/break-word/nowrap
	Debug      *TextBoxDebug `json:"debug,omitempty"`
}

// TextLine 表示排版后的一行文本内容及其宽高。
// Hard 为 true 表示该行在显式换行或段落结尾处结束，两端对齐时不拉伸。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
	Hard      bool    `json:"hard,omitempty"`
}

// TextBoxDebug holds optional debug info displayed only when enabled by BuildOptions.
type TextBoxDebug struct {
	RawUnits *RawUnits `json:"rawUnits,omitempty"`
}

// RawUnits describes original author-specified units for key fields.
type RawUnits struct {
	FontSize   *RawLengthJSON     `json:"fontSize,omitempty"`
	LineHeight *RawLineHeightJSON `json:"lineHeight,omitempty"`
}

// RawLengthJSON is a JSON-friendly representation of document.Length.
type RawLengthJSON struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// RawLineHeightJSON is a JSON-friendly representation of document.LineHeightSpec.
type RawLineHeightJSON struct {
	Kind   string  `json:"kind"` // "factor" | "absolute"
	Factor float64 `json:"factor,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Unit   string  `json:"unit,omitempty"`
}

// TableBox 是一个表格在某一页上的片段。跨页的表格会拆成多个片段，Part 从 0 开始。
type TableBox struct {
	Block        int        `json:"block"`
	Part         int        `json:"part"`
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	Width        float64    `json:"width"`
	ColumnWidths []float64  `json:"columnWidths"`
	Rows         []TableRow `json:"rows"`
	BorderColor  Color      `json:"borderColor"`
	BorderWidth  float64    `json:"borderWidth"`
	Grid         bool       `json:"grid"`
}

// TableRow 记录每一行的高度与单元格。Repeated 表示跨页后重复绘制的表头。
type TableRow struct {
	Y        float64     `json:"y"`
	Height   float64     `json:"height"`
	IsHeader bool        `json:"isHeader"`
	Repeated bool        `json:"repeated,omitempty"`
	Cells    []TableCell `json:"cells"`
}

// TableCell 复用 TextBox 作为单元格内容，Fill 为空表示不填充背景。
type TableCell struct {
	Text TextBox `json:"text"`
	Fill *Color  `json:"fill,omitempty"`
}

// Line 表示一条线段。
type Line struct {
	X1    float64 `json:"x1"`
	Y1    float64 `json:"y1"`
	X2    float64 `json:"x2"`
	Y2    float64 `json:"y2"`
	Color Color   `json:"color"`
	Width float64 `json:"width"` // 线宽（mm），<=0 时由渲染器给默认值
}

// Rect 表示一个矩形（不包含圆角）。
type Rect struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	StrokeColor *Color  `json:"strokeColor,omitempty"` // 为空表示不描边
	StrokeWidth float64 `json:"strokeWidth"`           // mm
	FillColor   *Color  `json:"fillColor,omitempty"`   // 为空表示不填充
}

// DocumentMeta 保存 PDF 元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
