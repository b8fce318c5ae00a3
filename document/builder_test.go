package document

import (
	"errors"
	"testing"
)

func TestAddTableRejectsEmptyAndRagged(t *testing.T) {
	b := NewBuilder()
	if err := b.AddTable(nil, TableStyle{}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty table: want ErrInvalidArgument, got %v", err)
	}
	err := b.AddTable([][]string{{"a", "b"}, {"c"}}, TableStyle{})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("ragged table: want ErrInvalidArgument, got %v", err)
	}
	err = b.AddTable([][]string{{"a", "b"}}, TableStyle{ColumnWidths: []Length{In(1)}})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("width hint mismatch: want ErrInvalidArgument, got %v", err)
	}
	for _, bad := range []Length{Mm(0), Mm(-10), {}} {
		err = b.AddTable([][]string{{"a", "b"}}, TableStyle{ColumnWidths: []Length{Mm(20), bad}})
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("width %v: want ErrInvalidArgument, got %v", bad, err)
		}
	}
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if doc.Len() != 0 {
		t.Fatalf("rejected tables must not be appended, got %d blocks", doc.Len())
	}
}

func TestAddHeadingValidation(t *testing.T) {
	b := NewBuilder()
	if err := b.AddHeading("", 1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty heading: want ErrInvalidArgument, got %v", err)
	}
	if err := b.AddHeading(" \t ", 1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("blank heading: want ErrInvalidArgument, got %v", err)
	}
	if err := b.AddHeading("Valid", 4); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("level 4: want ErrInvalidArgument, got %v", err)
	}
	if err := b.AddHeading("Valid", 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("level 0: want ErrInvalidArgument, got %v", err)
	}
	for level := 1; level <= 3; level++ {
		if err := b.AddHeading("Valid", level); err != nil {
			t.Fatalf("level %d: unexpected error %v", level, err)
		}
	}
}

func TestAddImagePlaceholderRequiresLabelAndCaption(t *testing.T) {
	b := NewBuilder()
	if err := b.AddImagePlaceholder("", "caption"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty label: want ErrInvalidArgument, got %v", err)
	}
	if err := b.AddImagePlaceholder("IMG1", " "); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("blank caption: want ErrInvalidArgument, got %v", err)
	}
	if err := b.AddImagePlaceholder("IMG1", "caption"); err != nil {
		t.Fatalf("valid placeholder: %v", err)
	}
}

func TestEmptyParagraphIsAccepted(t *testing.T) {
	b := NewBuilder()
	if err := b.AddParagraph(""); err != nil {
		t.Fatalf("empty paragraph: %v", err)
	}
	doc, _ := b.Build()
	p, ok := doc.Blocks()[0].(Paragraph)
	if !ok {
		t.Fatalf("expected paragraph, got %T", doc.Blocks()[0])
	}
	// 对齐方式留空，由主题按段落类型决定
	if p.Style.Align != "" || p.Style.Kind != ParagraphBody {
		t.Fatalf("default style not applied: %+v", p.Style)
	}
}

func TestExplicitAlignIsKept(t *testing.T) {
	b := NewBuilder()
	if err := b.AddParagraph("TITLU", ParagraphStyle{Kind: ParagraphTitle, Align: AlignLeft}); err != nil {
		t.Fatalf("AddParagraph: %v", err)
	}
	doc, _ := b.Build()
	if p := doc.Blocks()[0].(Paragraph); p.Style.Align != AlignLeft || p.Style.Kind != ParagraphTitle {
		t.Fatalf("explicit style changed: %+v", p.Style)
	}
}

func TestSpacerAcceptsAnySize(t *testing.T) {
	b := NewBuilder()
	for _, size := range []Length{Mm(5), {}, Mm(-3)} {
		if err := b.AddSpacer(size); err != nil {
			t.Fatalf("AddSpacer(%v): %v", size, err)
		}
	}
	doc, _ := b.Build()
	if doc.Len() != 3 {
		t.Fatalf("spacers = %d, want 3", doc.Len())
	}
}

func TestAppendAfterBuildFailsAndDocumentIsUnchanged(t *testing.T) {
	b := NewBuilder()
	if err := b.AddHeading("TITLE", 1); err != nil {
		t.Fatal(err)
	}
	if err := b.AddTable([][]string{{"H1", "H2"}, {"a", "b"}}, TableStyle{Grid: true}); err != nil {
		t.Fatal(err)
	}
	doc, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}

	checks := []error{
		b.AddHeading("late", 1),
		b.AddParagraph("late"),
		b.AddTable([][]string{{"x"}}, TableStyle{}),
		b.AddImagePlaceholder("IMG", "late"),
		b.AddPageBreak(),
		b.AddSpacer(Mm(5)),
		b.SetMeta(Meta{Title: "late"}),
	}
	for i, err := range checks {
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("call %d after Build: want ErrInvalidState, got %v", i, err)
		}
	}
	if _, err := b.Build(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second Build: want ErrInvalidState, got %v", err)
	}
	if doc.Len() != 2 {
		t.Fatalf("built document changed: %d blocks", doc.Len())
	}

	// 修改返回的副本不影响文档本身
	blocks := doc.Blocks()
	blocks[1].(Table).Rows[0][0] = "mutated"
	if got := doc.Blocks()[1].(Table).Rows[0][0]; got != "H1" {
		t.Fatalf("document mutated through Blocks(): %q", got)
	}
}

func TestTableInputIsCopied(t *testing.T) {
	rows := [][]string{{"H1", "H2"}, {"a", "b"}}
	b := NewBuilder()
	if err := b.AddTable(rows, TableStyle{}); err != nil {
		t.Fatal(err)
	}
	rows[1][0] = "changed"
	doc, _ := b.Build()
	if got := doc.Blocks()[0].(Table).Rows[1][0]; got != "a" {
		t.Fatalf("caller mutation leaked into builder: %q", got)
	}
}

func TestTextIsNormalizedToNFC(t *testing.T) {
	b := NewBuilder()
	// "ș" 的分解形式：s + U+0326 COMBINING COMMA BELOW
	if err := b.AddHeading("Prezentare s\u0326i", 2); err != nil {
		t.Fatal(err)
	}
	doc, _ := b.Build()
	if got := doc.Blocks()[0].(Heading).Text; got != "Prezentare \u0219i" {
		t.Fatalf("heading not normalized: %q", got)
	}
}

func TestPlaceholdersInOrder(t *testing.T) {
	b := NewBuilder()
	_ = b.AddImagePlaceholder("A", "first")
	_ = b.AddParagraph("between")
	_ = b.AddImagePlaceholder("B", "second")
	doc, _ := b.Build()
	ph := doc.Placeholders()
	if len(ph) != 2 || ph[0].Label != "A" || ph[1].Label != "B" {
		t.Fatalf("unexpected placeholders: %+v", ph)
	}
	if ph[0].Marker() != "[INSERT IMAGE: A]" {
		t.Fatalf("unexpected marker: %q", ph[0].Marker())
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#512BD4")
	if err != nil {
		t.Fatal(err)
	}
	if c != RGB(81, 43, 212) {
		t.Fatalf("unexpected color: %+v", c)
	}
	if c.Hex() != "512BD4" {
		t.Fatalf("unexpected hex: %s", c.Hex())
	}
	if short, _ := ParseColor("#fff"); short != RGB(255, 255, 255) {
		t.Fatalf("#fff parsed as %+v", short)
	}
	if _, err := ParseColor("#zzzzzz"); err == nil {
		t.Fatalf("expected error for invalid color")
	}
}

func TestRenderErrorMatching(t *testing.T) {
	cause := errors.New("boom")
	err := NewRenderError("pdf", 3, cause)
	if !errors.Is(err, ErrRender) || !errors.Is(err, cause) {
		t.Fatalf("render error must match ErrRender and its cause: %v", err)
	}
	var re *RenderError
	if !errors.As(err, &re) || re.Block != 3 {
		t.Fatalf("expected block index 3, got %+v", re)
	}
	md := &MissingDependencyError{Resource: "font", Hint: "install"}
	if got := NewRenderError("pdf", 1, md); got != error(md) {
		t.Fatalf("missing dependency must pass through unchanged")
	}
	if errors.Is(md, ErrRender) {
		t.Fatalf("missing dependency must be distinct from ErrRender")
	}
}
