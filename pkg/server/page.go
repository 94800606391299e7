package server

import (
	"crypto/sha256"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/vortex-oo/clouddrop/pkg/widget"
)

//go:embed templates/page.html
var pageFS embed.FS

//go:embed assets/client.js
var clientJS []byte

var pageTemplate = template.Must(template.Must(widget.Templates.Clone()).ParseFS(pageFS, "templates/page.html"))

var clientETag = func() string {
	sum := sha256.Sum256(clientJS)
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:8]))
}()

type pageData struct {
	Widget widget.View
	Year   int
}

// servePage renders the page shell with a fresh widget. The live session
// created by the client replaces it on connect.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	initial := widget.New(widget.Config{
		Client: s.uploader,
		Accept: s.config.Intake.Accept,
		Logger: s.logger,
	})
	view := initial.View()
	initial.Close()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.ExecuteTemplate(w, "page", pageData{Widget: view, Year: time.Now().Year()}); err != nil {
		s.logger.Error("page render failed", "error", err)
	}
}

func serveClientScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", clientETag)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")

	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, clientETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Write(clientJS)
}
