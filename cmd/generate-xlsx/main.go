// generate-xlsx 把文档中的全部表格导出为 Excel 工作簿。
package main

import (
	"os"

	"github.com/ByLCY/papyrus-docs/generate"
	"github.com/ByLCY/papyrus-docs/renderer"
	"github.com/ByLCY/papyrus-docs/renderer/xlsx"
)

func main() {
	os.Exit(generate.Main("xlsx", func(env generate.Env) (renderer.Renderer, error) {
		return xlsx.NewRenderer(xlsx.Options{Logger: env.Logger, Now: env.Now}), nil
	}))
}
