// generate-pdf 把内置的 Spending Tracker 文档渲染为分页 PDF，输出到当前目录。
package main

import (
	"os"

	"github.com/ByLCY/papyrus-docs/generate"
	"github.com/ByLCY/papyrus-docs/renderer"
	canvasrenderer "github.com/ByLCY/papyrus-docs/renderer/canvas"
)

func main() {
	os.Exit(generate.Main("pdf", func(env generate.Env) (renderer.Renderer, error) {
		return canvasrenderer.NewRenderer(canvasrenderer.Options{Logger: env.Logger, Now: env.Now})
	}))
}
