// Package web renders the portal screens.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/mbolis/branch-portal/model"
)

//go:embed templates/*.html
var templates embed.FS

type Renderer struct {
	t *template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{}
	t, err := template.New("portal").
		Funcs(template.FuncMap{
			"control": r.control,
			"date":    displayDate,
		}).
		ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r.t = t
	return r, nil
}

// Render executes the page template name and writes it with status. Nothing
// is written if the template fails.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// control renders the input of a question through the template of its
// control kind, "control-text", "control-radio" and so on.
func (r *Renderer) control(f Field) (template.HTML, error) {
	var name string
	switch c := f.Question.Control.(type) {
	case model.Text:
		name = "control-text"
	case model.Dropdown:
		name = "control-dropdown"
	case model.Radio:
		name = "control-radio"
	case model.Checkbox:
		name = "control-checkbox"
	default:
		return "", fmt.Errorf("question %s: no template for control %T", f.Question.ID, c)
	}

	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, name, f); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// displayDate shortens a record timestamp to its day.
func displayDate(timestamp string) string {
	if len(timestamp) >= len("2006-01-02") {
		return timestamp[:len("2006-01-02")]
	}
	return timestamp
}
