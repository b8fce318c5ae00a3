// Package docx 把文档输出为 Office Open XML 文字处理包（.docx）。
//
// 输出是流式文档：不计算分页，只写入显式的分页符，由阅读器重新排版。
// 包结构与正文由 github.com/gomutex/godocx 生成；整个包在内存中组装完成后一次性返回，
// 配合 renderer.WriteFile 可以保证原子写入。
package docx

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gomutex/godocx"

	"github.com/ByLCY/papyrus-docs/document"
	"github.com/ByLCY/papyrus-docs/fonts"
	"github.com/ByLCY/papyrus-docs/renderer"
	"github.com/ByLCY/papyrus-docs/theme"
)

const backendName = "docx"

// 降级时写入 w:rFonts 的字体名：Go 字体在 Word 中并不存在，改用办公套件普遍自带的字体。
const (
	fallbackSans = "Calibri"
	fallbackMono = "Courier New"
)

// Options configures the flowing renderer.
type Options struct {
	Theme  theme.Theme   // 零值时使用 theme.Flowing()
	Fonts  fonts.FontSet // 零值时使用 fonts.DefaultSet()
	Now    func() time.Time
	Logger *slog.Logger
}

// Renderer writes documents as .docx packages.
type Renderer struct {
	theme    theme.Theme
	sans     string
	mono     string
	degraded bool
	now      func() time.Time
	logger   *slog.Logger
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ renderer.Named    = (*Renderer)(nil)
)

// NewRenderer resolves the font family names once. The font data itself is not embedded;
// only the family name ends up in the package.
func NewRenderer(opts Options) (*Renderer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	th := opts.Theme
	if th.PageWidth.IsZero() {
		th = theme.Flowing()
	}
	set := opts.Fonts
	if len(set.SearchDirs) == 0 && len(set.Sans.Files) == 0 {
		disable := set.DisableFallback
		set = fonts.DefaultSet()
		set.DisableFallback = disable
	}
	if set.Logger == nil {
		set.Logger = logger
	}
	resolved, err := set.Resolve()
	if err != nil {
		if errors.Is(err, fonts.ErrNotFound) {
			return nil, &document.MissingDependencyError{
				Resource: set.Sans.Name,
				Hint:     "安装 DejaVu 字体（例如 apt install fonts-dejavu-core）",
				Err:      err,
			}
		}
		return nil, document.NewRenderError(backendName, -1, err)
	}
	r := &Renderer{
		theme:    th,
		sans:     resolved.Sans.Name,
		mono:     resolved.Mono.Name,
		degraded: resolved.Degraded,
		now:      opts.Now,
		logger:   logger,
	}
	if resolved.Degraded {
		r.sans = fallbackSans
	}
	if resolved.Mono.Name == fonts.GoMono().Name {
		r.mono = fallbackMono
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r, nil
}

// Name implements renderer.Named.
func (r *Renderer) Name() string { return backendName }

// Degraded reports whether no Unicode font was found at construction time.
func (r *Renderer) Degraded() bool { return r.degraded }

// FontFamily returns the family name written into run properties.
func (r *Renderer) FontFamily() string { return r.sans }

// Render assembles the whole package in memory.
func (r *Renderer) Render(doc *document.Document) ([]byte, error) {
	if doc == nil {
		return nil, document.NewRenderError(backendName, -1, fmt.Errorf("%w: 文档为空", document.ErrInvalidArgument))
	}
	// 每次渲染都从 godocx 内置模板解包一份新文档，模板自带 styles、theme、settings 等部件
	rd, err := godocx.NewDocument()
	if err != nil {
		return nil, document.NewRenderError(backendName, -1, fmt.Errorf("加载 DOCX 模板失败: %w", err))
	}
	for i, blk := range doc.Blocks() {
		if err := r.writeBlock(rd, blk); err != nil {
			return nil, document.NewRenderError(backendName, i, err)
		}
	}
	rd.Document.Body.SectPr = r.section()
	rd.FileMap.Store(corePart, coreXML(doc.Meta(), r.now().UTC()))

	var buf bytes.Buffer
	if err := rd.Write(&buf); err != nil {
		return nil, document.NewRenderError(backendName, -1, fmt.Errorf("写出 DOCX 失败: %w", err))
	}
	r.logger.Debug("DOCX 渲染完成", "blocks", doc.Len(), "bytes", buf.Len(), "font", r.sans)
	return buf.Bytes(), nil
}
