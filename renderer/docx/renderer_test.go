package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ByLCY/papyrus-docs/document"
	"github.com/ByLCY/papyrus-docs/fonts"
)

func quietFonts(t *testing.T) fonts.FontSet {
	t.Helper()
	return fonts.FontSet{
		Sans:       fonts.Candidates{Name: "Missing Sans", Files: map[fonts.Style]string{fonts.Regular: "missing-sans.ttf"}},
		Mono:       fonts.Candidates{Name: "Missing Mono", Files: map[fonts.Style]string{fonts.Regular: "missing-mono.ttf"}},
		SearchDirs: []string{t.TempDir()},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(Options{
		Fonts:  quietFonts(t),
		Now:    func() time.Time { return time.Date(2025, 10, 20, 9, 30, 0, 0, time.UTC) },
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func scenarioDoc(t *testing.T) *document.Document {
	t.Helper()
	b := document.NewBuilder()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("构建文档失败: %v", err)
		}
	}
	must(b.SetMeta(document.Meta{Title: "SPENDING TRACKER", Author: "Echipa", Keywords: []string{"MAUI", "SQLite"}}))
	must(b.AddHeading("TITLE", 1))
	must(b.AddParagraph("body text"))
	must(b.AddTable([][]string{{"H1", "H2"}, {"a", "b"}}, document.TableStyle{Zebra: true, Grid: true}))
	must(b.AddPageBreak())
	must(b.AddImagePlaceholder("IMG1", "caption"))
	doc, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return doc
}

func readPart(t *testing.T, data []byte, name string) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("输出不是合法的 zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("打开 %s 失败: %v", name, err)
		}
		defer rc.Close()
		part, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("读取 %s 失败: %v", name, err)
		}
		return part
	}
	t.Fatalf("缺少部件 %s", name)
	return nil
}

// 只解析测试关心的结构：表格、行、单元格。
type docXML struct {
	Body struct {
		Tables []struct {
			Rows []struct {
				Cells []struct{} `xml:"tc"`
			} `xml:"tr"`
		} `xml:"tbl"`
	} `xml:"body"`
}

// plainText 拼接所有 w:t 的文本。
func plainText(t *testing.T, data []byte) string {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(data))
	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("document.xml 不是合法的 XML: %v", err)
		}
		switch v := tok.(type) {
		case xml.StartElement:
			inText = v.Name.Local == "t"
		case xml.EndElement:
			if v.Name.Local == "t" {
				inText = false
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(v)
			}
		}
	}
	return b.String()
}

// attrsOf 返回第一个本地名为 local 的元素的属性（按本地名索引）。
func attrsOf(t *testing.T, data []byte, local string) map[string]string {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			t.Fatalf("缺少元素 %s", local)
		}
		if err != nil {
			t.Fatalf("document.xml 不是合法的 XML: %v", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != local {
			continue
		}
		attrs := map[string]string{}
		for _, a := range start.Attr {
			attrs[a.Name.Local] = a.Value
		}
		return attrs
	}
}

func TestRenderScenarioContainsPlaceholder(t *testing.T) {
	r := newTestRenderer(t)
	data, err := r.Render(scenarioDoc(t))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/styles.xml", "word/_rels/document.xml.rels", "docProps/app.xml"} {
		readPart(t, data, name)
	}
	body := readPart(t, data, "word/document.xml")
	text := plainText(t, body)
	if !strings.Contains(text, "IMG1") || !strings.Contains(text, "[INSERT IMAGE: IMG1]") {
		t.Fatalf("提取的文本中缺少占位符标记:\n%s", text)
	}
	if !bytes.Contains(body, []byte(`w:type="page"`)) {
		t.Fatalf("缺少显式分页符")
	}
	if pg := attrsOf(t, body, "pgSz"); pg["w"] != "11906" || pg["h"] != "16838" {
		t.Fatalf("纸张尺寸应为 A4，实际 %v", pg)
	}
	mar := attrsOf(t, body, "pgMar")
	for _, side := range []string{"top", "right", "bottom", "left"} {
		if mar[side] != "1080" {
			t.Fatalf("边距应为四边 0.75in，实际 %v", mar)
		}
	}
	if !bytes.Contains(body, []byte(`w:ascii="Calibri"`)) {
		t.Fatalf("降级时应写入 Calibri")
	}
	if style := attrsOf(t, body, "pStyle"); style["val"] != "Heading1" {
		t.Fatalf("标题段落样式 = %v", style)
	}
}

func TestTableStructureRoundTrip(t *testing.T) {
	rows := [][]string{
		{"Câmp", "Tip", "Descriere"},
		{"Id", "int", "cheie primară"},
		{"Amount", "decimal", "suma"},
		{"Date", "DateTime", "data & ora"},
	}
	b := document.NewBuilder()
	if err := b.AddTable(rows, document.TableStyle{HeaderColor: "#4ECDC4", FirstColumnColor: "#F0F0F0"}); err != nil {
		t.Fatalf("AddTable: %v", err)
	}
	doc, _ := b.Build()
	data, err := newTestRenderer(t).Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	body := readPart(t, data, "word/document.xml")
	var parsed docXML
	if err := xml.Unmarshal(body, &parsed); err != nil {
		t.Fatalf("解析 document.xml 失败: %v", err)
	}
	if len(parsed.Body.Tables) != 1 {
		t.Fatalf("表格数 = %d", len(parsed.Body.Tables))
	}
	got := parsed.Body.Tables[0].Rows
	if len(got) != len(rows) {
		t.Fatalf("行数 = %d，期望 %d", len(got), len(rows))
	}
	for i, row := range got {
		if len(row.Cells) != len(rows[i]) {
			t.Fatalf("第 %d 行单元格数 = %d，期望 %d", i, len(row.Cells), len(rows[i]))
		}
	}
	if !bytes.Contains(body, []byte(`w:fill="4ECDC4"`)) || !bytes.Contains(body, []byte(`w:fill="F0F0F0"`)) {
		t.Fatalf("单元格底色缺失")
	}
	if !strings.Contains(plainText(t, body), "data & ora") {
		t.Fatalf("特殊字符应被正确转义并还原")
	}
	if _, ok := attrsOf(t, body, "tblHeader")["val"]; ok {
		t.Fatalf("表头行标记不应带 w:val")
	}
	if n := bytes.Count(body, []byte("<w:gridCol ")); n != 3 {
		t.Fatalf("tblGrid 列数 = %d，期望 3", n)
	}
	if w := attrsOf(t, body, "tcW"); w["type"] != "dxa" || w["w"] == "" || w["w"] == "0" {
		t.Fatalf("单元格宽度 = %v", w)
	}
}

func TestBodiesOnlyTableHasNoHeaderRow(t *testing.T) {
	b := document.NewBuilder()
	_ = b.AddTable([][]string{{"a", "b"}, {"c", "d"}}, document.TableStyle{BodiesOnly: true, ColumnWidths: []document.Length{document.Mm(30), document.Mm(40)}})
	doc, _ := b.Build()
	data, err := newTestRenderer(t).Render(doc)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	body := readPart(t, data, "word/document.xml")
	if bytes.Contains(body, []byte("tblHeader")) {
		t.Fatalf("没有表头的表格不应重复表头")
	}
	// 列宽提示换算成 twips：30mm ≈ 1701
	if col := attrsOf(t, body, "gridCol"); col["w"] != "1701" {
		t.Fatalf("第一列宽度 = %v", col)
	}
	if jc := attrsOf(t, body, "jc"); jc["val"] != "center" {
		t.Fatalf("窄表格应居中，实际 %v", jc)
	}
}

func TestTwipsClampsNegative(t *testing.T) {
	if got := twips(document.Mm(-5)); got != 0 {
		t.Fatalf("twips(-5mm) = %d，期望 0", got)
	}
	if got := twips(document.Pt(12)); got != 240 {
		t.Fatalf("twips(12pt) = %d，期望 240", got)
	}
}

func TestCorePropertiesCarryMeta(t *testing.T) {
	data, err := newTestRenderer(t).Render(scenarioDoc(t))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	core := string(readPart(t, data, "docProps/core.xml"))
	for _, want := range []string{"<dc:title>SPENDING TRACKER</dc:title>", "<dc:creator>Echipa</dc:creator>", "<cp:keywords>MAUI, SQLite</cp:keywords>", "2025-10-20T09:30:00Z"} {
		if !strings.Contains(core, want) {
			t.Fatalf("core.xml 缺少 %q:\n%s", want, core)
		}
	}
}

func TestInvalidColorReportsBlock(t *testing.T) {
	b := document.NewBuilder()
	_ = b.AddHeading("A", 1)
	_ = b.AddTable([][]string{{"x"}}, document.TableStyle{Zebra: true, ZebraColor: "pink"})
	doc, _ := b.Build()
	_, err := newTestRenderer(t).Render(doc)
	var re *document.RenderError
	if !errors.As(err, &re) || re.Backend != "docx" || re.Block != 1 {
		t.Fatalf("期望第 1 块的 RenderError，实际 %v", err)
	}
}

func TestMissingFontWithoutFallback(t *testing.T) {
	set := quietFonts(t)
	set.DisableFallback = true
	_, err := NewRenderer(Options{Fonts: set})
	if !errors.Is(err, document.ErrMissingDependency) {
		t.Fatalf("期望 MissingDependency，实际 %v", err)
	}
}
