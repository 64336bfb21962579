package main

import (
	"html/template"
	"io/fs"
	"path/filepath"

	"github.com/0xrinful/LibraryCatalog/internal/data"
	"github.com/0xrinful/LibraryCatalog/ui"
)

type templateData struct {
	CurrentYear int
	FlashInfo   string
	FlashError  string
	Books       []*data.Book
	Users       []*data.User
}

var functions = template.FuncMap{
	"yesno": yesno,
}

func yesno(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func newTemplateCache() (map[string]*template.Template, error) {
	cache := map[string]*template.Template{}

	pages, err := fs.Glob(ui.Files, "html/pages/*.html")
	if err != nil {
		return nil, err
	}

	for _, page := range pages {
		name := filepath.Base(page)

		patterns := []string{
			"html/base.html",
			"html/partials/*.html",
			page,
		}

		ts, err := template.New(name).Funcs(functions).ParseFS(ui.Files, patterns...)
		if err != nil {
			return nil, err
		}

		cache[name] = ts
	}

	return cache, nil
}
