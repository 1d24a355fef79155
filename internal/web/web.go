// Package web embeds the browser front end: the snake game shell and the Last.fm statistics page.
//
// The page talks to the JSON API only; nothing here is rendered server-side.
//
// Routes
//
//	GET /          → index.html
//	GET /static/…  → scripts and styles
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed static
var assets embed.FS

// Index serves the application shell.
func Index() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := assets.ReadFile("static/index.html")
		if err != nil {
			http.Error(w, "index not found", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(page)
	})
}

// Static serves embedded assets under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

// Frontend serves the shell and its assets from one handler.
type Frontend struct {
	index  http.Handler
	static http.Handler
}

// NewFrontend returns the handler for [Frontend.Routes].
func NewFrontend() *Frontend {
	return &Frontend{index: Index(), static: Static()}
}

// Routes returns the ServeMux patterns the front end answers.
func (f *Frontend) Routes() []string {
	return []string{"/{$}", "/static/"}
}

func (f *Frontend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/static/") {
		f.static.ServeHTTP(w, r)
		return
	}
	f.index.ServeHTTP(w, r)
}
