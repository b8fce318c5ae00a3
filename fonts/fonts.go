// Package fonts 负责查找覆盖拉丁扩展字符的 TrueType 字体。
//
// 首选系统中的 DejaVu 字体；找不到时回退到 golang.org/x/image 内置的 Go 字体，
// 并记录一条警告日志。
package fonts

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// ErrNotFound 表示候选目录中没有可用字体且禁止回退。
var ErrNotFound = errors.New("fonts: 未找到可用字体")

// Style 是字体文件对应的字重/斜体组合。
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
)

func (s Style) String() string {
	switch s {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bolditalic"
	default:
		return "regular"
	}
}

// Candidates 列出一个家族各样式的候选文件名。
type Candidates struct {
	Name  string
	Files map[Style]string
}

// FontSet 描述字体查找策略。
type FontSet struct {
	Sans            Candidates
	Mono            Candidates
	SearchDirs      []string
	DisableFallback bool
	Logger          *slog.Logger
}

// DefaultSet 返回 DejaVu 候选及常见的系统字体目录。
func DefaultSet() FontSet {
	return FontSet{
		Sans: Candidates{
			Name: "DejaVu Sans",
			Files: map[Style]string{
				Regular:    "DejaVuSans.ttf",
				Bold:       "DejaVuSans-Bold.ttf",
				Italic:     "DejaVuSans-Oblique.ttf",
				BoldItalic: "DejaVuSans-BoldOblique.ttf",
			},
		},
		Mono: Candidates{
			Name: "DejaVu Sans Mono",
			Files: map[Style]string{
				Regular: "DejaVuSansMono.ttf",
				Bold:    "DejaVuSansMono-Bold.ttf",
			},
		},
		SearchDirs: []string{
			".",
			"/usr/share/fonts/truetype/dejavu",
			"/usr/share/fonts/dejavu",
			"/usr/share/fonts/TTF",
			"/usr/local/share/fonts",
			"/Library/Fonts",
			`C:\Windows\Fonts`,
		},
	}
}

// Family 保存一个家族各样式的字体数据。缺失的样式由 Regular 补齐。
type Family struct {
	Name  string
	Faces map[Style][]byte
}

// Face 返回指定样式的数据；没有时返回 Regular。
func (f Family) Face(style Style) []byte {
	if data, ok := f.Faces[style]; ok && len(data) > 0 {
		return data
	}
	return f.Faces[Regular]
}

// Resolved 是 Resolve 的结果。Degraded 为 true 表示使用了内置回退字体。
type Resolved struct {
	Sans     Family
	Mono     Family
	Degraded bool
}

// Resolve 在 SearchDirs 中查找候选字体。
func (s FontSet) Resolve() (Resolved, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var out Resolved
	sans, sansOK := s.lookup(s.Sans)
	mono, monoOK := s.lookup(s.Mono)

	if !sansOK {
		if s.DisableFallback {
			return Resolved{}, fmt.Errorf("%w: %s（目录 %v）", ErrNotFound, s.Sans.Name, s.SearchDirs)
		}
		logger.Warn("未找到 Unicode 字体，改用内置 Go 字体", "family", s.Sans.Name)
		sans = GoSans()
		out.Degraded = true
	}
	if !monoOK {
		// 等宽字体只用于代码段，缺失时不视为致命错误
		if sansOK {
			logger.Warn("未找到等宽字体，改用内置 Go Mono", "family", s.Mono.Name)
		}
		mono = GoMono()
	}
	out.Sans = sans
	out.Mono = mono
	return out, nil
}

func (s FontSet) lookup(c Candidates) (Family, bool) {
	regular, ok := c.Files[Regular]
	if !ok {
		return Family{}, false
	}
	for _, dir := range s.SearchDirs {
		data, err := os.ReadFile(filepath.Join(dir, regular))
		if err != nil || len(data) == 0 {
			continue
		}
		fam := Family{Name: c.Name, Faces: map[Style][]byte{Regular: data}}
		for style, file := range c.Files {
			if style == Regular {
				continue
			}
			if extra, err := os.ReadFile(filepath.Join(dir, file)); err == nil && len(extra) > 0 {
				fam.Faces[style] = extra
			}
		}
		return fam, true
	}
	return Family{}, false
}

// GoSans 返回内置的 Go 无衬线字体家族。
func GoSans() Family {
	return Family{
		Name: "Go",
		Faces: map[Style][]byte{
			Regular:    goregular.TTF,
			Bold:       gobold.TTF,
			Italic:     goitalic.TTF,
			BoldItalic: gobolditalic.TTF,
		},
	}
}

// GoMono 返回内置的 Go Mono 字体家族。
func GoMono() Family {
	return Family{
		Name: "Go Mono",
		Faces: map[Style][]byte{
			Regular: gomono.TTF,
			Bold:    gomonobold.TTF,
		},
	}
}
