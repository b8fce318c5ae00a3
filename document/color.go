package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGB is a shorthand constructor.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// ParseColor 解析 #RGB、#RRGGBB 或 #RRGGBBAA（忽略透明度）形式的颜色，前导 # 可省略。
func ParseColor(value string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(v) {
	case 3:
		v = strings.Repeat(v[0:1], 2) + strings.Repeat(v[1:2], 2) + strings.Repeat(v[2:3], 2)
	case 6:
	case 8:
		v = v[:6]
	default:
		return Color{}, fmt.Errorf("颜色值 %q 无法解析", value)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %q 无法解析: %w", value, err)
	}
	return Color{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

// MustColor is like ParseColor but panics on malformed input. Only for literal palettes.
func MustColor(value string) Color {
	c, err := ParseColor(value)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns the color as upper-case RRGGBB without the leading '#'.
func (c Color) Hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}
