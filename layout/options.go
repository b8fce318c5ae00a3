package layout

import (
	"github.com/ByLCY/papyrus-docs/document"
	"github.com/ByLCY/papyrus-docs/theme"
)

// BuildOptions 配置布局阶段所需的依赖，例如排版后端与主题。
type BuildOptions struct {
	Typesetter Typesetter
	Theme      theme.Theme // 零值时使用 theme.Default()
	Decorate   PageFunc    // 为空时不生成页眉页脚
	Year       int         // 传给 PageFunc 的年份
	Backend    string      // 写入 RenderError 的后端名，默认 "layout"
	Debug      DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	RawUnits bool // 在调试 JSON 中输出 debug.rawUnits 影子字段
}

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
// fontSize、lineHeight 与 width 均为毫米。
type Typesetter interface {
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}

// PageInfo 是传给 PageFunc 的单页信息。Number 从 1 开始。
type PageInfo struct {
	Number int
	Total  int
	Year   int
	Width  float64
	Height float64
	Margin Margin
}

// Caption 是页眉或页脚中的一段文字。
type Caption struct {
	Text  string
	Align document.Align
}

// Decoration 为单页的页眉与页脚内容。
type Decoration struct {
	Header []Caption
	Footer []Caption
	Rule   bool // 在页眉下方画一条分隔线
}

// PageFunc 在分页完成后对每一页调用一次。
type PageFunc func(PageInfo) Decoration
