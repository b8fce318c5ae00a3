package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/papyrus-docs/dsl"
)

const sampleScript = `
doc spending-tracker v1 {
  // 元信息
  meta title "Spending Tracker"
  meta keywords "maui" "sqlite"

  heading 1 "1. INTRODUCERE"
  paragraph justify {
    "Aplicația urmărește "
    "cheltuielile zilnice."
  }
  paragraph bullet "• primul punct"

  table header #512BD4 zebra grid widths 40mm 120mm {
    row "Cheie" "Valoare"
    row "Platformă" ".NET MAUI"
  }

  image "IMG1" "Ecranul principal"
  spacer 6pt; pagebreak
}
`

func TestParseScript(t *testing.T) {
	script, err := dsl.ParseString("sample.papyrus", sampleScript)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if script.Name != "spending-tracker" || script.Version != "v1" {
		t.Fatalf("unexpected header: %s %s", script.Name, script.Version)
	}

	kinds := make([]string, 0, len(script.Statements))
	for _, st := range script.Statements {
		kinds = append(kinds, st.Kind())
	}
	want := "meta meta heading paragraph paragraph table image spacer pagebreak"
	if got := strings.Join(kinds, " "); got != want {
		t.Fatalf("statement kinds = %q, want %q", got, want)
	}

	meta := script.Statements[1].Meta
	if meta.Key != "keywords" || len(meta.Values) != 2 || meta.Values[1] != "sqlite" {
		t.Fatalf("unexpected meta: %+v", meta)
	}

	h := script.Statements[2].Heading
	if h.Level != 1 || h.Text != "1. INTRODUCERE" {
		t.Fatalf("unexpected heading: %+v", h)
	}

	p := script.Statements[3].Paragraph
	if len(p.Options) != 1 || p.Options[0] != "justify" {
		t.Fatalf("unexpected paragraph options: %v", p.Options)
	}
	if p.Text() != "Aplicația urmărește cheltuielile zilnice." {
		t.Fatalf("unexpected paragraph text: %q", p.Text())
	}
	if got := script.Statements[4].Paragraph.Text(); got != "• primul punct" {
		t.Fatalf("inline paragraph text: %q", got)
	}

	table := script.Statements[5].Table
	if len(table.Rows) != 2 || len(table.Rows[1].Cells) != 2 {
		t.Fatalf("unexpected rows: %+v", table.Rows)
	}
	if table.Rows[1].Cells[1] != ".NET MAUI" {
		t.Fatalf("unexpected cell: %q", table.Rows[1].Cells[1])
	}
	opts := map[string][]string{}
	for _, o := range table.Options {
		opts[o.Name] = o.Values
	}
	if v := opts["header"]; len(v) != 1 || v[0] != "#512BD4" {
		t.Fatalf("header option: %v", v)
	}
	if v, ok := opts["zebra"]; !ok || len(v) != 0 {
		t.Fatalf("zebra option: %v", v)
	}
	if v := opts["widths"]; len(v) != 2 || v[0] != "40mm" || v[1] != "120mm" {
		t.Fatalf("widths option: %v", v)
	}

	img := script.Statements[6].Image
	if img.Label != "IMG1" || img.Caption != "Ecranul principal" {
		t.Fatalf("unexpected image: %+v", img)
	}
	if script.Statements[7].Spacer.Size != "6pt" {
		t.Fatalf("unexpected spacer: %+v", script.Statements[7].Spacer)
	}
}

func TestParseEscapes(t *testing.T) {
	script, err := dsl.ParseString("", `doc d v1 { paragraph code "a\n\tb \"q\"" }`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := script.Statements[0].Paragraph.Text(); got != "a\n\tb \"q\"" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestParseErrorHasPosition(t *testing.T) {
	_, err := dsl.ParseString("bad.papyrus", "doc d v1 {\n  heading \"missing level\"\n}")
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), "bad.papyrus:2") {
		t.Fatalf("error must carry file and line: %v", err)
	}
}
