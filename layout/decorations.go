package layout

import (
	"github.com/ByLCY/papyrus-docs/binding"
	"github.com/ByLCY/papyrus-docs/document"
)

// RunningDecorations 根据文档元信息中的模板生成页眉页脚：
// 页眉居左并带分隔线，页脚左右各一段。模板中的 ${page}、${pages}、${year} 按页展开。
func RunningDecorations(meta document.Meta) PageFunc {
	return func(info PageInfo) Decoration {
		vars := binding.PageVars(info.Number, info.Total)
		if info.Year > 0 {
			vars["year"] = info.Year
		}
		var dec Decoration
		if meta.Header != "" {
			dec.Header = append(dec.Header, Caption{Text: binding.Expand(meta.Header, vars), Align: document.AlignLeft})
			dec.Rule = true
		}
		if meta.FooterLeft != "" {
			dec.Footer = append(dec.Footer, Caption{Text: binding.Expand(meta.FooterLeft, vars), Align: document.AlignLeft})
		}
		if meta.FooterRight != "" {
			dec.Footer = append(dec.Footer, Caption{Text: binding.Expand(meta.FooterRight, vars), Align: document.AlignRight})
		}
		return dec
	}
}
