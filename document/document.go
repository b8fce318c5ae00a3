// Package document 提供文档块模型与只追加的构建器。
//
// 构建器按调用顺序收集块，Build 之后得到不可变的 Document，交给任意一个渲染后端处理。
package document

// Meta 保存文档级元信息以及分页后端使用的页眉页脚模板。
// 模板中可以使用 ${page}、${pages} 与 ${year} 占位符。
type Meta struct {
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Subject     string   `json:"subject"`
	Creator     string   `json:"creator"`
	Keywords    []string `json:"keywords"`
	Header      string   `json:"header,omitempty"`
	FooterLeft  string   `json:"footerLeft,omitempty"`
	FooterRight string   `json:"footerRight,omitempty"`
}

// Document is an ordered, immutable sequence of blocks.
type Document struct {
	blocks []Block
	meta   Meta
}

// Len returns the number of blocks.
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.blocks)
}

// Blocks returns a copy of the block sequence in rendering order.
func (d *Document) Blocks() []Block {
	if d == nil {
		return nil
	}
	out := make([]Block, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = cloneBlock(b)
	}
	return out
}

// Meta returns the document metadata.
func (d *Document) Meta() Meta {
	if d == nil {
		return Meta{}
	}
	m := d.meta
	m.Keywords = append([]string(nil), d.meta.Keywords...)
	return m
}

// Placeholders returns every image placeholder in order.
func (d *Document) Placeholders() []ImagePlaceholder {
	var out []ImagePlaceholder
	for _, b := range d.Blocks() {
		if p, ok := b.(ImagePlaceholder); ok {
			out = append(out, p)
		}
	}
	return out
}

func cloneBlock(b Block) Block {
	t, ok := b.(Table)
	if !ok {
		return b
	}
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]string(nil), row...)
	}
	t.Rows = rows
	t.Style.ColumnWidths = append([]Length(nil), t.Style.ColumnWidths...)
	return t
}
