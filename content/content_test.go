package content

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ByLCY/papyrus-docs/binding"
	"github.com/ByLCY/papyrus-docs/document"
)

func TestLoadEmbeddedScript(t *testing.T) {
	now := time.Date(2025, 10, 20, 14, 30, 0, 0, time.UTC)
	doc, err := Load(binding.TimeVars(now))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Len() == 0 {
		t.Fatalf("document is empty")
	}

	meta := doc.Meta()
	if meta.Title == "" || meta.FooterLeft != "Pagina ${page}" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
	if meta.FooterRight != "© 2025 - ${year}" {
		t.Fatalf("footer template must stay unexpanded: %q", meta.FooterRight)
	}

	var headings, tables, breaks int
	var sawDate bool
	for _, b := range doc.Blocks() {
		switch v := b.(type) {
		case document.Heading:
			if v.Level == 1 {
				headings++
			}
		case document.Table:
			tables++
			for _, row := range v.Rows {
				for _, cell := range row {
					if cell == "2025-10-20" {
						sawDate = true
					}
				}
			}
		case document.PageBreak:
			breaks++
		}
	}
	// CUPRINS 加上 10 个章节
	if headings != 11 {
		t.Fatalf("level-1 headings = %d, want 11", headings)
	}
	if tables < 8 || breaks < 10 {
		t.Fatalf("unexpected structure: tables=%d breaks=%d", tables, breaks)
	}
	if !sawDate {
		t.Fatalf("${date} was not expanded in the info table")
	}
	if n := len(doc.Placeholders()); n != 13 {
		t.Fatalf("placeholders = %d, want 13", n)
	}
}

func TestLoadStringTableOptions(t *testing.T) {
	src := `doc t v1 {
  table header #FF6B6B headertext #333333 zebra #FFF5F5 grid widths 1in 2in {
    row "A" "B"
    row "a" "b"
  }
  table bodies firstcol #F0F0F0 { row "k" "v" }
}`
	doc, err := LoadString("t.papyrus", src, nil)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	first := doc.Blocks()[0].(document.Table)
	s := first.Style
	if s.HeaderColor != "#FF6B6B" || s.HeaderText != "#333333" || !s.Zebra || s.ZebraColor != "#FFF5F5" || !s.Grid {
		t.Fatalf("unexpected style: %+v", s)
	}
	if len(s.ColumnWidths) != 2 || s.ColumnWidths[1] != document.In(2) {
		t.Fatalf("unexpected widths: %+v", s.ColumnWidths)
	}
	second := doc.Blocks()[1].(document.Table)
	if second.HasHeader() || second.Style.FirstColumnColor != "#F0F0F0" {
		t.Fatalf("unexpected second table style: %+v", second.Style)
	}
}

func TestLoadStringReportsBuilderErrorsWithPosition(t *testing.T) {
	src := "doc t v1 {\n  heading 4 \"too deep\"\n}"
	_, err := LoadString("bad.papyrus", src, nil)
	if !errors.Is(err, document.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad.papyrus:2") {
		t.Fatalf("error must carry the statement position: %v", err)
	}
}

func TestLoadStringRejectsRaggedTable(t *testing.T) {
	src := `doc t v1 { table { row "a" "b"; row "c" } }`
	if _, err := LoadString("", src, nil); !errors.Is(err, document.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestUnknownParagraphOption(t *testing.T) {
	src := `doc t v1 { paragraph shouting "x" }`
	if _, err := LoadString("", src, nil); !errors.Is(err, document.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}
