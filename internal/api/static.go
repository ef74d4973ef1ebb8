package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// StaticHandler serves the built frontend from dir. Unknown paths return
// index.html so client-side routes resolve.
func StaticHandler(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clean := path.Clean("/" + r.URL.Path)
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean)))
		if err != nil || (info.IsDir() && clean != "/") {
			http.ServeFile(w, r, index)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}
