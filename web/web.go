package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*
var templateFS embed.FS

// Templates The page templates, named after their file
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*"))
}

// Static The template directory as a file system for static serving
func Static() http.FileSystem {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
