package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"time"
)

const layoutFile = "layout.html"

var funcMap = template.FuncMap{
	"FormatPrice": FormatPrice,
	"FormatDate":  FormatDate,
}

// FormatPrice renders a price with thousands separators, e.g. 89700 -> "89,700.00".
func FormatPrice(p float64) string {
	s := strconv.FormatFloat(p, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")

	neg := strings.HasPrefix(whole, "-")
	whole = strings.TrimPrefix(whole, "-")

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := b.String() + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// FormatDate formats a time.Time as e.g. "January 2, 2006".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("January 2, 2006")
}

// Templates holds one parsed template set per page, each combined with the layout.
type Templates struct {
	pages map[string]*template.Template
}

// LoadTemplates parses every *.html file in fsys except the layout as a page.
func LoadTemplates(fsys fs.FS) (*Templates, error) {
	if _, err := fs.Stat(fsys, layoutFile); err != nil {
		return nil, fmt.Errorf("layout template: %w", err)
	}

	files, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, fmt.Errorf("error globbing templates: %w", err)
	}

	t := &Templates{pages: make(map[string]*template.Template)}
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		// The layout goes first so page definitions override its default blocks.
		tmpl, err := template.New(path.Base(file)).Funcs(funcMap).ParseFS(fsys, layoutFile, file)
		if err != nil {
			return nil, fmt.Errorf("error parsing page template %s: %w", file, err)
		}
		t.pages[file] = tmpl
	}
	return t, nil
}

// Render executes page name into a buffer, so a failing template never
// leaves a half-written response.
func (t *Templates) Render(name string, data any) ([]byte, error) {
	tmpl, ok := t.pages[name]
	if !ok {
		return nil, fmt.Errorf("template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("error executing template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
