// Package quiz 实现测验的选题、选项打乱、计时与计分规则，服务端与客户端共用。
package quiz

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeText 去除首尾空白、合并连续空白并做 NFC 规范化
func NormalizeText(s string) string {
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	return norm.NFC.String(s)
}

// SameSubject 科目名按规范化后大小写不敏感比较
func SameSubject(a, b string) bool {
	return FoldKey(a) == FoldKey(b)
}

// FoldKey 用于大小写不敏感去重的键；Caser 有状态，不能跨 goroutine 共用
func FoldKey(s string) string {
	return cases.Fold().String(NormalizeText(s))
}
