// Package generate 串联内置文档内容、渲染后端与原子写文件，供 cmd/ 下的入口程序复用。
package generate

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ByLCY/papyrus-docs/binding"
	"github.com/ByLCY/papyrus-docs/content"
	"github.com/ByLCY/papyrus-docs/document"
	"github.com/ByLCY/papyrus-docs/renderer"
)

// BaseName 是输出文件名（不含扩展名），始终写入当前工作目录。
const BaseName = "SPENDING_TRACKER_DOCUMENTATION"

// Env 是创建渲染器时可用的公共依赖。
type Env struct {
	Logger *slog.Logger
	Now    func() time.Time
}

// Factory 创建一个渲染后端。
type Factory func(env Env) (renderer.Renderer, error)

// Config 描述一次生成。
type Config struct {
	Output      string
	NewRenderer Factory
	Now         func() time.Time
	Logger      *slog.Logger
	Stdout      io.Writer
	Stderr      io.Writer
}

// Summary 是成功生成后的结果。
type Summary struct {
	Path         string
	Backend      string
	Size         int64
	GeneratedAt  time.Time
	Placeholders []document.ImagePlaceholder
	Degraded     bool
	Font         string
}

// degradable 由需要字体的后端实现。
type degradable interface {
	Degraded() bool
	FontFamily() string
}

// Generate 构建内置文档并写入 cfg.Output。
func Generate(cfg Config) (Summary, error) {
	if cfg.NewRenderer == nil {
		return Summary{}, fmt.Errorf("%w: 未指定渲染后端", document.ErrInvalidArgument)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stamp := now()

	doc, err := content.Load(binding.TimeVars(stamp))
	if err != nil {
		return Summary{}, fmt.Errorf("构建文档失败: %w", err)
	}
	r, err := cfg.NewRenderer(Env{Logger: logger, Now: func() time.Time { return stamp }})
	if err != nil {
		return Summary{}, err
	}
	backend := renderer.Name(r)
	logger.Info("开始渲染", "backend", backend, "blocks", doc.Len(), "output", cfg.Output)

	size, err := renderer.WriteFile(r, doc, cfg.Output)
	if err != nil {
		return Summary{}, err
	}
	s := Summary{
		Path:         cfg.Output,
		Backend:      backend,
		Size:         size,
		GeneratedAt:  stamp,
		Placeholders: doc.Placeholders(),
	}
	if d, ok := r.(degradable); ok {
		s.Degraded = d.Degraded()
		s.Font = d.FontFamily()
	}
	logger.Info("渲染完成", "backend", backend, "bytes", size)
	return s, nil
}

// Execute 执行生成并输出摘要，返回进程退出码。
func Execute(cfg Config) int {
	stdout, stderr := cfg.Stdout, cfg.Stderr
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	s, err := Generate(cfg)
	if err != nil {
		Describe(stderr, err)
		return 1
	}
	PrintSummary(stdout, s)
	return 0
}

// Main 是 cmd/ 入口的公共实现：日志写 stderr，输出 BaseName.<ext>。
func Main(ext string, factory Factory) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)
	return Execute(Config{
		Output:      BaseName + "." + ext,
		NewRenderer: factory,
		Logger:      logger,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	})
}

// PrintSummary 打印输出文件、大小、时间以及需要手动替换的图片占位符。
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintf(w, "已生成 %s：%s\n", s.Backend, s.Path)
	fmt.Fprintf(w, "  大小: %s\n", humanSize(s.Size))
	fmt.Fprintf(w, "  时间: %s\n", s.GeneratedAt.Format("2006-01-02 15:04:05"))
	if s.Degraded {
		fmt.Fprintf(w, "  警告: 未找到 Unicode 字体，已使用 %s，部分罗马尼亚语字符可能无法正确显示\n", s.Font)
	}
	if len(s.Placeholders) == 0 {
		return
	}
	fmt.Fprintf(w, "  需要手动替换的图片占位符 (%d):\n", len(s.Placeholders))
	for _, p := range s.Placeholders {
		fmt.Fprintf(w, "    - %s\n", p.Label)
	}
}

// Describe 区分缺少依赖与一般失败，写出可操作的错误说明。
func Describe(w io.Writer, err error) {
	var missing *document.MissingDependencyError
	if errors.As(err, &missing) {
		fmt.Fprintf(w, "生成失败：缺少依赖 %s\n", missing.Resource)
		if missing.Hint != "" {
			fmt.Fprintf(w, "  解决方法: %s\n", missing.Hint)
		}
		if missing.Err != nil {
			fmt.Fprintf(w, "  详情: %v\n", missing.Err)
		}
		return
	}
	var re *document.RenderError
	if errors.As(err, &re) && re.Block >= 0 {
		fmt.Fprintf(w, "生成失败：%s 后端在第 %d 个块出错: %v\n", re.Backend, re.Block, re.Err)
		return
	}
	fmt.Fprintf(w, "生成失败: %v\n", err)
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
