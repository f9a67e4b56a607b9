package handler

import (
	"embed"
	"errors"
	"html/template"
	"io"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pages = []string{
	"index.html",
	"group.html",
	"profile.html",
	"follow.html",
	"post-view.html",
	"post-edit.html",
	"user-login.html",
	"user-signup.html",
	"error.html",
}

type TemplateRegistry struct {
	templates map[string]*template.Template
}

func NewTemplateRegistry() *TemplateRegistry {
	t := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t[name] = template.Must(template.ParseFS(templatesFS, "templates/base.html", "templates/"+name))
	}
	return &TemplateRegistry{templates: t}
}

func (t *TemplateRegistry) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tmpl, ok := t.templates[name]
	if !ok {
		return errors.New("template not found: " + name)
	}
	return tmpl.ExecuteTemplate(w, "base.html", data)
}

var sanitizerStrict = bluemonday.StrictPolicy()

func mdToHTML(md string) []byte {
	// create markdown parser with extensions
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	// create HTML renderer with extensions
	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	opts := html.RendererOptions{Flags: htmlFlags}
	renderer := html.NewRenderer(opts)

	return markdown.Render(doc, renderer)
}

func safeMd(content string) template.HTML {
	return template.HTML(bluemonday.UGCPolicy().SanitizeBytes(mdToHTML(content))) // nolint:gosec
}
