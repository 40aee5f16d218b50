package templates

import (
	"embed"
	"html/template"
	"net/url"
)

//go:embed *.html
var FS embed.FS

// ParseTemplates parses HTML templates from the embedded filesystem.
func ParseTemplates(files ...string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"userPath": func(name string) string {
			return "/users/" + url.PathEscape(name)
		},
	}

	return template.New("").Funcs(funcMap).ParseFS(FS, files...)
}
