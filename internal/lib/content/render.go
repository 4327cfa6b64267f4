// Package content превращает markdown статей в безопасный HTML.
package content

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer конвертирует markdown в HTML и вычищает из результата все,
// что не входит в политику UGC (скрипты, обработчики событий, javascript: ссылки).
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRenderer создает Renderer с поддержкой GFM таблиц, зачеркиваний и автоссылок.
func NewRenderer() *Renderer {
	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM, extension.Typographer)),
		policy: bluemonday.UGCPolicy(),
	}
}

// Render возвращает очищенный HTML для markdown-текста.
func (r *Renderer) Render(markdown string) (string, error) {
	const op = "content.Render"
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return r.policy.Sanitize(buf.String()), nil
}

// Excerpt возвращает первые limit символов текста без разметки.
func (r *Renderer) Excerpt(markdown string, limit int) string {
	html, err := r.Render(markdown)
	if err != nil {
		return ""
	}
	text := strings.Join(strings.Fields(bluemonday.StrictPolicy().Sanitize(html)), " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
