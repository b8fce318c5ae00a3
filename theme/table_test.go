package theme

import (
	"errors"
	"testing"

	"github.com/ByLCY/papyrus-docs/document"
)

func TestTableColorsDefaults(t *testing.T) {
	th := Default()
	c, err := th.TableColors(document.TableStyle{})
	if err != nil {
		t.Fatalf("TableColors: %v", err)
	}
	if c.Header != Purple || c.HeaderText != White {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.FirstColumn != nil || c.Zebra != nil {
		t.Fatalf("no optional fills expected: %+v", c)
	}
	if fill := c.CellFill(false, 0, 0); fill != nil {
		t.Fatalf("plain body cell must not be filled, got %v", fill)
	}
}

func TestTableColorsOverrides(t *testing.T) {
	th := Default()
	c, err := th.TableColors(document.TableStyle{
		HeaderColor:      "#4ECDC4",
		HeaderText:       "000",
		FirstColumnColor: "#F0F0F0",
		Zebra:            true,
		ZebraColor:       "#FFF5F5",
	})
	if err != nil {
		t.Fatalf("TableColors: %v", err)
	}
	if c.Header.Hex() != "4ECDC4" || c.HeaderText.Hex() != "000000" {
		t.Fatalf("header colors = %s/%s", c.Header.Hex(), c.HeaderText.Hex())
	}
	if c.Zebra == nil || c.Zebra.Hex() != "FFF5F5" {
		t.Fatalf("zebra = %v", c.Zebra)
	}
	// 未指定 ZebraColor 时回退到主题默认值
	plain, _ := th.TableColors(document.TableStyle{Zebra: true})
	if plain.Zebra == nil || *plain.Zebra != th.ZebraColor {
		t.Fatalf("zebra default = %v, want %v", plain.Zebra, th.ZebraColor)
	}
}

func TestTableColorsRejectsMalformed(t *testing.T) {
	th := Default()
	for _, style := range []document.TableStyle{
		{HeaderColor: "purple"},
		{HeaderText: "#12"},
		{FirstColumnColor: "#GGGGGG"},
		{Zebra: true, ZebraColor: "x"},
	} {
		if _, err := th.TableColors(style); !errors.Is(err, document.ErrInvalidArgument) {
			t.Fatalf("style %+v: expected ErrInvalidArgument, got %v", style, err)
		}
	}
	// 未开启交替底色时不解析 ZebraColor
	if _, err := th.TableColors(document.TableStyle{ZebraColor: "x"}); err != nil {
		t.Fatalf("unused zebra color must be ignored: %v", err)
	}
}

func TestCellFillPriority(t *testing.T) {
	th := Default()
	c, err := th.TableColors(document.TableStyle{FirstColumnColor: "#F0F0F0", Zebra: true, ZebraColor: "#FFF5F5"})
	if err != nil {
		t.Fatalf("TableColors: %v", err)
	}
	cases := []struct {
		header    bool
		body, col int
		want      string
	}{
		{true, 0, 0, "512BD4"},
		{true, 0, 1, "512BD4"},
		{false, 0, 0, "F0F0F0"},
		{false, 1, 0, "F0F0F0"},
		{false, 0, 1, "FFF5F5"},
		{false, 1, 1, ""},
		{false, 2, 1, "FFF5F5"},
	}
	for _, tc := range cases {
		fill := c.CellFill(tc.header, tc.body, tc.col)
		got := ""
		if fill != nil {
			got = fill.Hex()
		}
		if got != tc.want {
			t.Fatalf("CellFill(%v, %d, %d) = %q, want %q", tc.header, tc.body, tc.col, got, tc.want)
		}
	}
}

func TestCellStyle(t *testing.T) {
	th := Default()
	c, _ := th.TableColors(document.TableStyle{HeaderText: "#111111", FirstColumnColor: "#F0F0F0"})
	h := th.CellStyle(c, true, 0)
	if !h.Bold || h.Color.Hex() != "111111" || h.Size != th.TableHeader.Size {
		t.Fatalf("header style = %+v", h)
	}
	if s := th.CellStyle(c, false, 0); !s.Bold {
		t.Fatalf("first column must be bold when shaded")
	}
	if s := th.CellStyle(c, false, 1); s.Bold || s.Size != th.TableCell.Size {
		t.Fatalf("body cell style = %+v", s)
	}
}
