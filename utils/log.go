package utils

import (
	"strings"
	"unicode"
)

const maxLoggedUsername = 50

// SanitizeLogMessage 去掉用户输入中的控制字符，换行与制表符替换为空格，防止伪造日志行
func SanitizeLogMessage(msg string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case unicode.IsControl(r), !unicode.IsPrint(r) && !unicode.IsSpace(r):
			return -1
		}
		return r
	}, msg)
}

// SanitizeLogUsername 截断过长的用户名后再清理
func SanitizeLogUsername(username string) string {
	if runes := []rune(username); len(runes) > maxLoggedUsername {
		username = string(runes[:maxLoggedUsername]) + "..."
	}
	return SanitizeLogMessage(username)
}
