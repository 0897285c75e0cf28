package processors

import (
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"
)

// JoinText 清洗并拼接解析出的文档内容，空文档直接跳过
func JoinText(docs []*schema.Document) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if content := CleanText(doc.Content); content != "" {
			parts = append(parts, content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// CleanText 移除 Null 字节和无效的 UTF-8 字符 (常见 PDF 解析错误)
func CleanText(content string) string {
	content = strings.ReplaceAll(content, "\x00", "")

	if !utf8.ValidString(content) {
		v := make([]rune, 0, len(content))
		for i, r := range content {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(content[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		content = string(v)
	}

	return strings.TrimSpace(content)
}

// Truncate keeps at most max characters (runes, not bytes).
func Truncate(content string, max int) string {
	if max <= 0 || utf8.RuneCountInString(content) <= max {
		return content
	}
	runes := []rune(content)
	return string(runes[:max])
}
