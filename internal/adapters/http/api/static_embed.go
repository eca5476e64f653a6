package api

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageTemplate renders the dashboard page.
var pageTemplate = template.Must(
	template.New("dashboard.html").ParseFS(templateFS, "templates/dashboard.html"),
)
