// Package dsl 解析 docscript：一种逐行描述文档块的小型脚本。
//
//	doc spending-tracker v1 {
//	  meta title "Spending Tracker"
//	  heading 1 "1. INTRODUCERE"
//	  paragraph justify { "primul rând" "continuare" }
//	  table header #512BD4 zebra grid widths 40mm 120mm {
//	    row "Cheie" "Valoare"
//	  }
//	  image "IMG1" "Ecranul principal"
//	  spacer 6pt
//	  pagebreak
//	}
package dsl

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})`},
		{Name: "Length", Pattern: `\d+(?:\.\d+)?(?:pt|mm|cm|in)`},
		{Name: "Int", Pattern: `\d+`},
		{Name: "String", Pattern: `"(?:\\.|[^"\\\n])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[{};]`},
	})

	scriptParser = participle.MustBuild[Script](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment"),
		participle.Unquote("String"),
	)
)

// Script is the root AST node of a docscript file.
type Script struct {
	Pos        lexer.Position `parser:"" json:"-"`
	Name       string         `parser:"Newline* 'doc' @Ident"`
	Version    string         `parser:"@Ident"`
	Statements []*Statement   `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}' Newline*"`
}

// Statement is exactly one of the block-producing commands.
type Statement struct {
	Pos       lexer.Position `parser:"" json:"-"`
	Meta      *Meta          `parser:"  @@"`
	Heading   *Heading       `parser:"| @@"`
	Paragraph *Paragraph     `parser:"| @@"`
	Table     *Table         `parser:"| @@"`
	Image     *Image         `parser:"| @@"`
	PageBreak *PageBreak     `parser:"| @@"`
	Spacer    *Spacer        `parser:"| @@"`
}

// Kind returns the command keyword of the statement.
func (s *Statement) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Heading != nil:
		return "heading"
	case s.Paragraph != nil:
		return "paragraph"
	case s.Table != nil:
		return "table"
	case s.Image != nil:
		return "image"
	case s.PageBreak != nil:
		return "pagebreak"
	case s.Spacer != nil:
		return "spacer"
	default:
		return "unknown"
	}
}

// Meta 为文档元信息赋值；keywords 可以给出多个字符串。
type Meta struct {
	Key    string   `parser:"'meta' @Ident"`
	Values []string `parser:"@String+"`
}

// Heading 的级别为 1..3，越界由加载阶段报错。
type Heading struct {
	Level int    `parser:"'heading' @Int"`
	Text  string `parser:"@String"`
}

// Paragraph 的多段字符串会直接拼接，换行需写成 \n。
type Paragraph struct {
	Options []string `parser:"'paragraph' @Ident*"`
	Parts   []string `parser:"( @String | '{' Newline* ( @String Newline* )* '}' )"`
}

// Text joins all string parts.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, part := range p.Parts {
		b.WriteString(part)
	}
	return b.String()
}

// Table 由选项与若干 row 组成。
type Table struct {
	Options []*Option `parser:"'table' @@*"`
	Rows    []*Row    `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Option 是表格选项，如 header #512BD4、zebra、widths 40mm 60mm。
type Option struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Name   string         `parser:"@Ident"`
	Values []string       `parser:"( @Color | @Length | @Int )*"`
}

// Row 为表格的一行单元格。
type Row struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Cells []string       `parser:"'row' @String+"`
}

// Image 对应图片占位符：label 与 caption。
type Image struct {
	Label   string `parser:"'image' @String"`
	Caption string `parser:"@String"`
}

// PageBreak 强制分页。
type PageBreak struct {
	Keyword string `parser:"@'pagebreak'"`
}

// Spacer 插入建议的垂直空白。
type Spacer struct {
	Size string `parser:"'spacer' @Length"`
}

// ParseString parses docscript from a string; name is used in error positions.
func ParseString(name, input string) (*Script, error) {
	return scriptParser.ParseString(name, input)
}
