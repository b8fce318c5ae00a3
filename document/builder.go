package document

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Builder accumulates blocks in insertion order. It is single-use: after Build
// every further call fails with ErrInvalidState.
type Builder struct {
	blocks []Block
	meta   Meta
	built  bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// SetMeta replaces the document metadata.
func (b *Builder) SetMeta(meta Meta) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	meta.Title = normalize(meta.Title)
	meta.Subject = normalize(meta.Subject)
	meta.Header = normalize(meta.Header)
	meta.FooterLeft = normalize(meta.FooterLeft)
	meta.FooterRight = normalize(meta.FooterRight)
	meta.Keywords = append([]string(nil), meta.Keywords...)
	b.meta = meta
	return nil
}

// AddHeading appends a heading of level 1, 2 or 3. Whitespace-only text counts as empty.
func (b *Builder) AddHeading(text string, level int) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: 标题文本为空", ErrInvalidArgument)
	}
	if level < 1 || level > 3 {
		return fmt.Errorf("%w: 标题级别 %d 超出 1..3", ErrInvalidArgument, level)
	}
	b.blocks = append(b.blocks, Heading{Text: normalize(text), Level: level})
	return nil
}

// AddParagraph appends a paragraph. Empty text renders as a blank line.
// An empty Align keeps the theme's alignment for the paragraph kind.
func (b *Builder) AddParagraph(text string, style ...ParagraphStyle) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	p := Paragraph{Text: normalize(text)}
	if len(style) > 0 {
		p.Style = style[0]
	}
	if p.Style.Kind == "" {
		p.Style.Kind = ParagraphBody
	}
	b.blocks = append(b.blocks, p)
	return nil
}

// AddTable appends a table. rows must be non-empty and rectangular.
func (b *Builder) AddTable(rows [][]string, style TableStyle) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: 表格至少需要一行", ErrInvalidArgument)
	}
	cols := len(rows[0])
	if cols == 0 {
		return fmt.Errorf("%w: 表格第 1 行没有单元格", ErrInvalidArgument)
	}
	copied := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) != cols {
			return fmt.Errorf("%w: 表格第 %d 行有 %d 个单元格，期望 %d", ErrInvalidArgument, i+1, len(row), cols)
		}
		copied[i] = make([]string, cols)
		for j, cell := range row {
			copied[i][j] = normalize(cell)
		}
	}
	if n := len(style.ColumnWidths); n > 0 && n != cols {
		return fmt.Errorf("%w: 列宽提示有 %d 项，表格有 %d 列", ErrInvalidArgument, n, cols)
	}
	for i, w := range style.ColumnWidths {
		if w.ToMM() <= 0 {
			return fmt.Errorf("%w: 第 %d 列宽度 %s 必须为正数", ErrInvalidArgument, i+1, w)
		}
	}
	style.ColumnWidths = append([]Length(nil), style.ColumnWidths...)
	b.blocks = append(b.blocks, Table{Rows: copied, Style: style})
	return nil
}

// AddImagePlaceholder appends a textual stand-in for an image. Both label and
// caption are required so every placeholder carries a searchable marker.
func (b *Builder) AddImagePlaceholder(label, caption string) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	if strings.TrimSpace(label) == "" {
		return fmt.Errorf("%w: 图片占位符缺少 label", ErrInvalidArgument)
	}
	if strings.TrimSpace(caption) == "" {
		return fmt.Errorf("%w: 图片占位符缺少 caption", ErrInvalidArgument)
	}
	b.blocks = append(b.blocks, ImagePlaceholder{Label: normalize(label), Caption: normalize(caption)})
	return nil
}

// AddPageBreak appends a forced page break.
func (b *Builder) AddPageBreak() error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	b.blocks = append(b.blocks, PageBreak{})
	return nil
}

// AddSpacer appends advisory vertical whitespace. Backends treat a negative size as zero.
func (b *Builder) AddSpacer(size Length) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	b.blocks = append(b.blocks, Spacer{Size: size})
	return nil
}

// Build finishes the builder and returns the immutable document.
func (b *Builder) Build() (*Document, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	b.built = true
	doc := &Document{blocks: b.blocks, meta: b.meta}
	b.blocks = nil
	return doc, nil
}

func (b *Builder) checkOpen() error {
	if b.built {
		return fmt.Errorf("%w: 构建器已调用 Build", ErrInvalidState)
	}
	return nil
}

// normalize 统一为 NFC，避免分解形式的变音符号在字体中找不到字形。
func normalize(s string) string {
	return norm.NFC.String(s)
}
