// generate-docx 把内置的 Spending Tracker 文档输出为可编辑的 DOCX。
package main

import (
	"os"

	"github.com/ByLCY/papyrus-docs/generate"
	"github.com/ByLCY/papyrus-docs/renderer"
	"github.com/ByLCY/papyrus-docs/renderer/docx"
)

func main() {
	os.Exit(generate.Main("docx", func(env generate.Env) (renderer.Renderer, error) {
		return docx.NewRenderer(docx.Options{Logger: env.Logger, Now: env.Now})
	}))
}
