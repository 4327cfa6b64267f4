// Package web хранит HTML-шаблоны страниц, встроенные в бинарник.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

//go:embed templates/*.html
var files embed.FS

// Templates набор разобранных шаблонов страниц.
type Templates struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"cost": models.FormatCost,
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// Load разбирает все шаблоны. Каждая страница собирается вместе с layout.html.
func Load() (*Templates, error) {
	const op = "web.Load"

	t := &Templates{pages: make(map[string]*template.Template)}
	for _, page := range []string{"home.html", "diagnose.html"} {
		tpl, err := template.New(page).Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, page, err)
		}
		t.pages[page] = tpl
	}
	return t, nil
}

// MustLoad как Load, но паникует при ошибке.
func MustLoad() *Templates {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// Render исполняет страницу в буфер и пишет ответ только при успехе.
func (t *Templates) Render(w http.ResponseWriter, status int, page string, data any) error {
	const op = "web.Render"

	tpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("%s: unknown page %q", op, page)
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
