// Package content 保存内置的 Spending Tracker 文档脚本，并把脚本回放到 document.Builder。
package content

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/ByLCY/papyrus-docs/binding"
	"github.com/ByLCY/papyrus-docs/document"
	"github.com/ByLCY/papyrus-docs/dsl"
)

//go:embed spending_tracker.papyrus
var spendingTracker string

// Name 是内置脚本在错误信息中使用的文件名。
const Name = "spending_tracker.papyrus"

// Load 解析内置脚本并构建文档。vars 用于展开正文中的 ${date} 等占位符。
func Load(vars binding.Vars) (*document.Document, error) {
	return LoadString(Name, spendingTracker, vars)
}

// LoadString 解析任意 docscript 文本并构建文档。
func LoadString(name, src string, vars binding.Vars) (*document.Document, error) {
	script, err := dsl.ParseString(name, src)
	if err != nil {
		return nil, fmt.Errorf("解析文档脚本失败: %w", err)
	}
	b := document.NewBuilder()
	if err := Replay(script, b, vars); err != nil {
		return nil, err
	}
	return b.Build()
}

// Replay 按顺序把脚本语句追加到 b；任一语句失败即返回，错误带有语句位置。
func Replay(script *dsl.Script, b *document.Builder, vars binding.Vars) error {
	if script == nil {
		return fmt.Errorf("%w: 文档脚本为空", document.ErrInvalidArgument)
	}
	var meta document.Meta
	hasMeta := false
	for _, st := range script.Statements {
		var err error
		switch {
		case st.Meta != nil:
			err = applyMeta(&meta, st.Meta, vars)
			hasMeta = true
		case st.Heading != nil:
			err = b.AddHeading(binding.Expand(st.Heading.Text, vars), st.Heading.Level)
		case st.Paragraph != nil:
			var style document.ParagraphStyle
			style, err = paragraphStyle(st.Paragraph.Options)
			if err == nil {
				err = b.AddParagraph(binding.Expand(st.Paragraph.Text(), vars), style)
			}
		case st.Table != nil:
			err = addTable(b, st.Table, vars)
		case st.Image != nil:
			err = b.AddImagePlaceholder(
				binding.Expand(st.Image.Label, vars),
				binding.Expand(st.Image.Caption, vars),
			)
		case st.PageBreak != nil:
			err = b.AddPageBreak()
		case st.Spacer != nil:
			var size document.Length
			size, err = document.ParseLength(st.Spacer.Size)
			if err == nil {
				err = b.AddSpacer(size)
			}
		}
		if err != nil {
			return fmt.Errorf("%s: %s: %w", st.Pos, st.Kind(), err)
		}
	}
	if hasMeta {
		return b.SetMeta(meta)
	}
	return nil
}

func applyMeta(meta *document.Meta, m *dsl.Meta, vars binding.Vars) error {
	values := m.Values
	first := values[0]
	switch strings.ToLower(m.Key) {
	case "title":
		meta.Title = binding.Expand(first, vars)
	case "subject":
		meta.Subject = binding.Expand(first, vars)
	case "author":
		meta.Author = first
	case "creator":
		meta.Creator = first
	case "keywords":
		meta.Keywords = append(meta.Keywords, values...)
	// 页眉页脚模板在渲染时按页展开，这里保持原样
	case "header":
		meta.Header = first
	case "footer-left":
		meta.FooterLeft = first
	case "footer-right":
		meta.FooterRight = first
	default:
		return fmt.Errorf("%w: 未知的 meta 键 %q", document.ErrInvalidArgument, m.Key)
	}
	return nil
}

var (
	paragraphKinds = map[string]document.ParagraphKind{
		"body":     document.ParagraphBody,
		"title":    document.ParagraphTitle,
		"subtitle": document.ParagraphSubtitle,
		"bullet":   document.ParagraphBullet,
		"code":     document.ParagraphCode,
		"muted":    document.ParagraphMuted,
	}
	paragraphAligns = map[string]document.Align{
		"left":    document.AlignLeft,
		"center":  document.AlignCenter,
		"right":   document.AlignRight,
		"justify": document.AlignJustify,
	}
)

func paragraphStyle(options []string) (document.ParagraphStyle, error) {
	var style document.ParagraphStyle
	for _, opt := range options {
		key := strings.ToLower(opt)
		if kind, ok := paragraphKinds[key]; ok {
			style.Kind = kind
			continue
		}
		if align, ok := paragraphAligns[key]; ok {
			style.Align = align
			continue
		}
		return style, fmt.Errorf("%w: 未知的段落选项 %q", document.ErrInvalidArgument, opt)
	}
	return style, nil
}

func addTable(b *document.Builder, t *dsl.Table, vars binding.Vars) error {
	style, err := tableStyle(t.Options)
	if err != nil {
		return err
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = binding.Expand(cell, vars)
		}
		rows[i] = cells
	}
	return b.AddTable(rows, style)
}

func tableStyle(options []*dsl.Option) (document.TableStyle, error) {
	var style document.TableStyle
	for _, opt := range options {
		arity := func(n int) error {
			if len(opt.Values) != n {
				return fmt.Errorf("%w: 表格选项 %s 需要 %d 个参数，实际 %d", document.ErrInvalidArgument, opt.Name, n, len(opt.Values))
			}
			return nil
		}
		switch strings.ToLower(opt.Name) {
		case "header":
			if err := arity(1); err != nil {
				return style, err
			}
			style.HeaderColor = opt.Values[0]
		case "headertext":
			if err := arity(1); err != nil {
				return style, err
			}
			style.HeaderText = opt.Values[0]
		case "firstcol":
			if err := arity(1); err != nil {
				return style, err
			}
			style.FirstColumnColor = opt.Values[0]
		case "zebra":
			style.Zebra = true
			if len(opt.Values) > 1 {
				return style, arity(1)
			}
			if len(opt.Values) == 1 {
				style.ZebraColor = opt.Values[0]
			}
		case "grid":
			if err := arity(0); err != nil {
				return style, err
			}
			style.Grid = true
		case "bodies":
			if err := arity(0); err != nil {
				return style, err
			}
			style.BodiesOnly = true
		case "widths":
			for _, v := range opt.Values {
				l, err := document.ParseLength(v)
				if err != nil {
					return style, fmt.Errorf("%w: %v", document.ErrInvalidArgument, err)
				}
				style.ColumnWidths = append(style.ColumnWidths, l)
			}
		default:
			return style, fmt.Errorf("%w: 未知的表格选项 %q", document.ErrInvalidArgument, opt.Name)
		}
	}
	return style, nil
}
