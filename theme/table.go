package theme

import (
	"fmt"

	"github.com/ByLCY/papyrus-docs/document"
)

// TableColors 是解析后的表格配色。
type TableColors struct {
	Header      document.Color
	HeaderText  document.Color
	FirstColumn *document.Color
	Zebra       *document.Color
}

// TableColors 解析 TableStyle 中的十六进制颜色，未设置的取主题默认值。
// 颜色非法时返回 document.ErrInvalidArgument。
func (t Theme) TableColors(style document.TableStyle) (TableColors, error) {
	colors := TableColors{Header: Purple, HeaderText: t.TableHeader.Color}
	parse := func(name, value string) (document.Color, error) {
		c, err := document.ParseColor(value)
		if err != nil {
			return document.Color{}, fmt.Errorf("%w: 表格%s: %v", document.ErrInvalidArgument, name, err)
		}
		return c, nil
	}
	var err error
	if style.HeaderColor != "" {
		if colors.Header, err = parse("表头颜色", style.HeaderColor); err != nil {
			return colors, err
		}
	}
	if style.HeaderText != "" {
		if colors.HeaderText, err = parse("表头文字颜色", style.HeaderText); err != nil {
			return colors, err
		}
	}
	if style.FirstColumnColor != "" {
		c, err := parse("首列颜色", style.FirstColumnColor)
		if err != nil {
			return colors, err
		}
		colors.FirstColumn = &c
	}
	if style.Zebra {
		c := t.ZebraColor
		if style.ZebraColor != "" {
			if c, err = parse("交替底色", style.ZebraColor); err != nil {
				return colors, err
			}
		}
		colors.Zebra = &c
	}
	return colors, nil
}

// CellFill 返回单元格底色，nil 表示不填充。body 是正文行序号（从 0 开始），
// 首列底色优先于交替底色。
func (c TableColors) CellFill(header bool, body, col int) *document.Color {
	var fill document.Color
	switch {
	case header:
		fill = c.Header
	case col == 0 && c.FirstColumn != nil:
		fill = *c.FirstColumn
	case c.Zebra != nil && body%2 == 0:
		fill = *c.Zebra
	default:
		return nil
	}
	return &fill
}

// CellStyle 返回单元格文字样式：表头使用表头颜色，带首列底色的表格首列加粗。
func (t Theme) CellStyle(c TableColors, header bool, col int) TextStyle {
	if header {
		s := t.TableHeader
		s.Color = c.HeaderText
		return s
	}
	s := t.TableCell
	if col == 0 && c.FirstColumn != nil {
		s.Bold = true
	}
	return s
}
