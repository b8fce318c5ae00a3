// Package binding 展开文本中的 ${name} 占位符，用于正文变量与页眉页脚模板。
package binding

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Vars 是占位符取值表，键即占位符名称。
type Vars map[string]any

// TimeVars 返回 date、datetime 与 year 三个与生成时间相关的变量。
func TimeVars(now time.Time) Vars {
	return Vars{
		"date":     now.Format("2006-01-02"),
		"datetime": now.Format("2006-01-02 15:04"),
		"year":     now.Year(),
	}
}

// PageVars 返回页眉页脚模板使用的 page 与 pages。
func PageVars(page, pages int) Vars {
	return Vars{"page": page, "pages": pages}
}

// Expand 将 text 中的 ${name} 替换为 vars 中的值，找不到的占位符原样保留。
func Expand(text string, vars Vars) string {
	if len(vars) == 0 || !strings.Contains(text, "${") {
		return text
	}
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-1])
		if val, ok := resolvePath(vars, name); ok {
			return format(val)
		}
		return match
	})
}

func format(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case time.Time:
		return v.Format("2006-01-02")
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func resolvePath(vars Vars, name string) (any, bool) {
	val, ok := vars[name]
	return val, ok
}
