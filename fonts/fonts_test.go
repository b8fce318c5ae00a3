package fonts

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

func quietSet(dirs ...string) FontSet {
	s := DefaultSet()
	s.SearchDirs = dirs
	s.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return s
}

func TestResolveFallsBackToGoFonts(t *testing.T) {
	res, err := quietSet(t.TempDir()).Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.Degraded {
		t.Fatalf("expected degraded result when no font is installed")
	}
	if !bytes.Equal(res.Sans.Face(Regular), goregular.TTF) {
		t.Fatalf("sans regular must be Go Regular")
	}
	if !bytes.Equal(res.Sans.Face(Bold), gobold.TTF) {
		t.Fatalf("sans bold must be Go Bold")
	}
	if res.Mono.Name != "Go Mono" {
		t.Fatalf("mono = %s", res.Mono.Name)
	}
}

func TestResolveWithoutFallbackFails(t *testing.T) {
	s := quietSet(t.TempDir())
	s.DisableFallback = true
	_, err := s.Resolve()
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestResolveFindsCandidateInSearchDir(t *testing.T) {
	dir := t.TempDir()
	// 用 Go 字体数据冒充 DejaVu 文件，只验证查找逻辑
	if err := os.WriteFile(filepath.Join(dir, "DejaVuSans.ttf"), goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "DejaVuSans-Bold.ttf"), gobold.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := quietSet(filepath.Join(dir, "missing"), dir).Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Degraded || res.Sans.Name != "DejaVu Sans" {
		t.Fatalf("expected DejaVu Sans, got %+v degraded=%v", res.Sans.Name, res.Degraded)
	}
	// 斜体缺失时由 Regular 补齐
	if !bytes.Equal(res.Sans.Face(Italic), goregular.TTF) {
		t.Fatalf("missing italic must fall back to regular")
	}
	if !bytes.Equal(res.Sans.Face(Bold), gobold.TTF) {
		t.Fatalf("bold face not loaded")
	}
}
