// Package tplengine 实现 {{name}} 形式的轻量占位符模板
package tplengine

import (
	"regexp"
)

var placeholderRegexp = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// ExtractVariables 扫描模板中全部 {{name}} 占位符，
// 按首次出现顺序返回去重后的变量名
func ExtractVariables(template string) []string {
	matches := placeholderRegexp.FindAllStringSubmatch(template, -1)
	names := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Render 用 data 中存在的键替换对应占位符。
// 缺失的键原样保留，包括双花括号——这是有意的回退策略，不要改成替换为空串
func Render(template string, data map[string]string) string {
	if data == nil {
		return template
	}
	return placeholderRegexp.ReplaceAllStringFunc(template, func(placeholder string) string {
		name := placeholderRegexp.FindStringSubmatch(placeholder)[1]
		// 空串视同缺失，同样原样保留
		if v, ok := data[name]; ok && v != "" {
			return v
		}
		return placeholder
	})
}
