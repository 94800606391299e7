package widget

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/vortex-oo/clouddrop/pkg/uploader"
)

// Upload button labels.
const (
	LabelSelectFirst = "Select a file first"
	LabelUpload      = "Upload File"
	LabelUploading   = "Uploading..."
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates holds the widget template. Page templates can include it with
// {{template "widget" .}}.
var Templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// View is the data the widget template renders.
type View struct {
	DragActive     bool
	FileName       string
	HasFile        bool
	Uploading      bool
	UploadLabel    string
	UploadDisabled bool
	ResultURL      string
	Copied         bool
	CopyLabel      string
	Accept         string
}

// View returns the current render data.
func (w *Widget) View() View {
	st := w.ctrl.State()
	v := View{
		DragActive: w.zone.DragActive(),
		Uploading:  st.Phase == uploader.Uploading,
		ResultURL:  w.ctrl.ResultURL(),
		Copied:     w.panel.Copied(),
		CopyLabel:  w.panel.Label(),
		Accept:     w.zone.Accept().Attr(),
	}
	if f := w.zone.Selected(); f != nil {
		v.HasFile = true
		v.FileName = f.Name
	}

	switch {
	case v.Uploading:
		v.UploadLabel = LabelUploading
	case v.HasFile:
		v.UploadLabel = LabelUpload
	default:
		v.UploadLabel = LabelSelectFirst
	}
	v.UploadDisabled = !v.HasFile || v.Uploading
	return v
}

// Render writes the widget HTML to out.
func (w *Widget) Render(out io.Writer) error {
	return Templates.ExecuteTemplate(out, "widget", w.View())
}

// HTML returns the widget HTML.
func (w *Widget) HTML() (template.HTML, error) {
	var buf bytes.Buffer
	if err := w.Render(&buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
