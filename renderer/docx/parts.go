package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/ByLCY/papyrus-docs/document"
)

// XML namespaces used in DOCX files
const (
	nsW       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsCP      = "http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
	nsDC      = "http://purl.org/dc/elements/1.1/"
	nsDCTerms = "http://purl.org/dc/terms/"
	nsXSI     = "http://www.w3.org/2001/XMLSchema-instance"
)

// corePart 是模板中核心属性部件的路径，渲染时整体替换。
const corePart = "docProps/core.xml"

// coreXML 生成核心属性。godocx 只能读取 core.xml（LoadDocProps），写出时原样沿用模板；
// 而 dc/cp/dcterms 前缀 encoding/xml 无法按指定前缀输出，这里直接拼接。
func coreXML(meta document.Meta, now time.Time) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, `<cp:coreProperties xmlns:cp="%s" xmlns:dc="%s" xmlns:dcterms="%s" xmlns:xsi="%s">`, nsCP, nsDC, nsDCTerms, nsXSI)
	element := func(name, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "<%s>%s</%s>", name, escape(value), name)
	}
	element("dc:title", meta.Title)
	element("dc:subject", meta.Subject)
	element("dc:creator", meta.Author)
	element("cp:keywords", strings.Join(meta.Keywords, ", "))
	element("cp:lastModifiedBy", meta.Creator)
	stamp := now.Format(time.RFC3339)
	fmt.Fprintf(&b, `<dcterms:created xsi:type="dcterms:W3CDTF">%s</dcterms:created>`, stamp)
	fmt.Fprintf(&b, `<dcterms:modified xsi:type="dcterms:W3CDTF">%s</dcterms:modified>`, stamp)
	b.WriteString(`</cp:coreProperties>`)
	return b.Bytes()
}

// halfPoints 把字号换算成 w:sz 使用的半磅单位。
func halfPoints(l document.Length) int {
	return int(l.ToPT()*2 + 0.5)
}

// lineSpacing 把行高倍数换算成 w:line（240 为单倍行距）。
func lineSpacing(ratio float64) int {
	if ratio <= 0 {
		ratio = 1
	}
	return int(ratio*240 + 0.5)
}

func escape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return ""
	}
	return b.String()
}
