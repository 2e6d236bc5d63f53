// Package views holds the HTML pages, embedded into the binary.
package views

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Load parses every page. Each page is addressed by its file name, e.g. "login.html".
func Load() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}
