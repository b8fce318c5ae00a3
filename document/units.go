package document

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for length and line-height.

// Unit represents the original unit of a length value as written by the author.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// String returns the short suffix used in docscript ("mm", "pt", ...).
func (u Unit) String() string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Mm, Cm, In 与 Pt 是常用的构造函数。
func Mm(v float64) Length { return Length{Value: v, Unit: UnitMM} }
func Cm(v float64) Length { return Length{Value: v, Unit: UnitCM} }
func In(v float64) Length { return Length{Value: v, Unit: UnitIN} }
func Pt(v float64) Length { return Length{Value: v, Unit: UnitPT} }

func (l Length) IsZero() bool { return l.Value == 0 }

// To converts this length to target unit. Supported targets: UnitMM, UnitPT.
// Unit-less values are treated as millimeters.
func (l Length) To(target Unit) float64 {
	var mm float64
	switch l.Unit {
	case UnitCM:
		mm = l.Value * 10
	case UnitIN:
		mm = l.Value * 25.4
	case UnitPT:
		if target == UnitPT {
			return l.Value
		}
		mm = l.Value * PtToMm
	default:
		mm = l.Value
	}
	if target == UnitPT {
		return mm * MmToPt
	}
	return mm
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }

// ToTwips 返回 1/20 pt 的整数值，OOXML 中的边距与宽度都以 twip 计。
func (l Length) ToTwips() int { return int(l.ToPT()*20 + 0.5) }

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// ParseLength parses a length string such as "12pt", "0.75in" or "20mm", preserving its unit.
// A bare number is accepted as millimeters.
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("长度值为空")
	}
	unit := UnitMM
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec preserves author intent: either a factor (e.g., 1.15x) or an absolute length (e.g., 13pt).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// Leading returns a factor-based line height.
func Leading(factor float64) LineHeightSpec {
	return LineHeightSpec{Kind: LineHeightFactor, Factor: factor}
}

// LeadingOf returns an absolute line height.
func LeadingOf(l Length) LineHeightSpec {
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}
}

// Resolve computes the absolute line height in target unit using the given fontSize.
func (s LineHeightSpec) Resolve(fontSize Length, target Unit) float64 {
	switch s.Kind {
	case LineHeightFactor:
		if s.Factor <= 0 {
			return fontSize.To(target) * 1.4
		}
		return fontSize.To(target) * s.Factor
	case LineHeightAbsolute:
		return s.Len.To(target)
	default:
		return fontSize.To(target) * 1.4
	}
}

// Ratio 返回行高与字号的比值，供流式文档的行距设置使用。
func (s LineHeightSpec) Ratio(fontSize Length) float64 {
	size := fontSize.ToPT()
	if size <= 0 {
		return 1
	}
	return s.Resolve(fontSize, UnitPT) / size
}
