package dropzone

import (
	"bytes"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is how many leading bytes are read for content detection.
const sniffLen = 3072

// Accept maps MIME types to the file extensions accepted for them.
// A key may use a wildcard subtype ("image/*").
type Accept map[string][]string

// DefaultAccept allows images, PDF and Word documents.
var DefaultAccept = Accept{
	"image/*":            {".png", ".jpg", ".jpeg", ".gif"},
	"application/pdf":    {".pdf"},
	"application/msword": {".doc", ".docx"},
}

// Allows reports whether a file with the given name and content type passes
// the allow-list. Either a MIME match or an extension match is sufficient.
func (a Accept) Allows(name, contentType string) bool {
	if len(a) == 0 {
		return true
	}

	mt := baseType(contentType)
	ext := strings.ToLower(filepath.Ext(name))

	for pattern, exts := range a {
		if matchType(pattern, mt) {
			return true
		}
		if ext == "" {
			continue
		}
		for _, e := range exts {
			if strings.EqualFold(e, ext) {
				return true
			}
		}
	}
	return false
}

// Attr renders the allow-list as the value of an <input type="file"> accept
// attribute: MIME keys first, then extensions, each group sorted.
func (a Accept) Attr() string {
	var types, exts []string
	seen := make(map[string]bool)
	for pattern, list := range a {
		types = append(types, pattern)
		for _, e := range list {
			if !seen[e] {
				seen[e] = true
				exts = append(exts, e)
			}
		}
	}
	sort.Strings(types)
	sort.Strings(exts)
	return strings.Join(append(types, exts...), ",")
}

func matchType(pattern, mt string) bool {
	if mt == "" {
		return false
	}
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		return strings.HasPrefix(mt, prefix+"/")
	}
	return strings.EqualFold(pattern, mt)
}

func baseType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// Detect sniffs the content type from the leading bytes of r. It returns
// the detected type and a reader that yields the complete original stream.
func Detect(r io.Reader, name string) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	head = head[:n]

	contentType := Normalize(mimetype.Detect(head).String(), name)
	return contentType, io.MultiReader(bytes.NewReader(head), r), nil
}

// Normalize strips parameters from a detected type and falls back to the
// extension when detection was inconclusive.
func Normalize(contentType, name string) string {
	mt := baseType(contentType)
	if mt != "" && mt != "application/octet-stream" {
		return mt
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}
