package utils

import (
	"encoding/json"
	"strings"
)

// ExtractFirstJSONObject 从文本中提取第一个完整的JSON对象。
// 模型返回的内容可能带有说明文字或```json代码块。单次扫描按括号配对切出候选对象，
// 候选不是合法JSON时从它的结尾继续向后找。
func ExtractFirstJSONObject(text string) (json.RawMessage, bool) {
	start, depth := -1, 0
	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if start < 0 {
			if c == '{' {
				start, depth = i, 1
				inString, escaped = false, false
			}
			continue
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				candidate := text[start : i+1]
				if json.Valid([]byte(candidate)) {
					return json.RawMessage(candidate), true
				}
				start = -1
			}
		}
	}
	return nil, false
}

// NormalizeItemName 规范化食材名称：去掉首尾空白，合并连续空白，过滤控制字符
func NormalizeItemName(name string) string {
	var result strings.Builder
	lastSpace := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '　':
			if !lastSpace {
				result.WriteRune(' ')
			}
			lastSpace = true
			continue
		case r < 32 || r == 0x7f:
			continue
		}
		lastSpace = false
		result.WriteRune(r)
	}
	return result.String()
}

// Preview 截取文本前n个字符用于日志，避免日志过长
func Preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
