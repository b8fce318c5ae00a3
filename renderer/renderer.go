package renderer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ByLCY/papyrus-docs/document"
)

// Renderer 将文档输出为某种二进制格式，例如 PDF 或 DOCX。
// Render 返回完整的文件内容；失败时返回 *document.RenderError 或 *document.MissingDependencyError。
type Renderer interface {
	Render(doc *document.Document) ([]byte, error)
}

// Named 是可选接口，用于在错误信息中标注后端名称。
type Named interface {
	Name() string
}

// Name returns the backend name of r, or "renderer" when r does not report one.
func Name(r Renderer) string {
	if n, ok := r.(Named); ok {
		return n.Name()
	}
	return "renderer"
}

// WriteFile 渲染 doc 并写入 path，返回写入的字节数。
// 先写入同目录下的临时文件再重命名，失败时不会在 path 留下残缺文件；已存在的文件会被覆盖。
func WriteFile(r Renderer, doc *document.Document, path string) (int64, error) {
	backend := Name(r)
	if r == nil {
		return 0, document.NewRenderError(backend, -1, fmt.Errorf("%w: renderer 不能为空", document.ErrInvalidArgument))
	}
	data, err := r.Render(doc)
	if err != nil {
		return 0, document.NewRenderError(backend, -1, err)
	}
	if len(data) == 0 {
		return 0, document.NewRenderError(backend, -1, fmt.Errorf("渲染结果为空"))
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, document.NewRenderError(backend, -1, fmt.Errorf("创建输出目录失败: %w", err))
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, document.NewRenderError(backend, -1, fmt.Errorf("创建临时文件失败: %w", err))
	}
	tmpName := tmp.Name()
	cleanup := func(cause error) (int64, error) {
		tmp.Close()
		os.Remove(tmpName)
		return 0, document.NewRenderError(backend, -1, cause)
	}
	n, err := tmp.Write(data)
	if err != nil {
		return cleanup(fmt.Errorf("写入 %s 失败: %w", path, err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("同步 %s 失败: %w", path, err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, document.NewRenderError(backend, -1, fmt.Errorf("关闭临时文件失败: %w", err))
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return 0, document.NewRenderError(backend, -1, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return 0, document.NewRenderError(backend, -1, fmt.Errorf("重命名到 %s 失败: %w", path, err))
	}
	slog.Debug("已写入文件", "backend", backend, "path", path, "bytes", n)
	return int64(n), nil
}
