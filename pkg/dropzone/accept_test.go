package dropzone

import (
	"io"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func TestAccept_Allows(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		contentType string
		want        bool
	}{
		{"png by type", "photo.png", "image/png", true},
		{"jpeg wildcard", "photo.jpeg", "image/jpeg", true},
		{"webp matches image wildcard", "photo.webp", "image/webp", true},
		{"gif by extension only", "anim.GIF", "application/octet-stream", true},
		{"pdf", "report.pdf", "application/pdf", true},
		{"doc", "letter.doc", "application/msword", true},
		{"docx via extension", "letter.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", true},
		{"type with params", "scan.pdf", "application/pdf; charset=binary", true},
		{"text rejected", "notes.txt", "text/plain", false},
		{"zip rejected", "archive.zip", "application/zip", false},
		{"no extension unknown type", "README", "application/octet-stream", false},
		{"empty type empty ext", "blob", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultAccept.Allows(tt.file, tt.contentType); got != tt.want {
				t.Errorf("Allows(%q, %q) = %v, want %v", tt.file, tt.contentType, got, tt.want)
			}
		})
	}
}

func TestAccept_EmptyAllowsEverything(t *testing.T) {
	if !(Accept{}).Allows("notes.txt", "text/plain") {
		t.Error("empty Accept should allow everything")
	}
}

func TestAccept_Attr(t *testing.T) {
	got := DefaultAccept.Attr()
	want := "application/msword,application/pdf,image/*,.doc,.docx,.gif,.jpeg,.jpg,.pdf,.png"
	if got != want {
		t.Errorf("Attr() = %q, want %q", got, want)
	}
}

func TestDetect(t *testing.T) {
	body := append(append([]byte{}, pngHeader...), []byte(strings.Repeat("x", 5000))...)

	contentType, r, err := Detect(strings.NewReader(string(body)), "upload.bin")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if contentType != "image/png" {
		t.Errorf("contentType = %q, want image/png", contentType)
	}

	all, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(all) != string(body) {
		t.Error("Detect should return a reader over the complete stream")
	}
}

func TestDetect_ShortInput(t *testing.T) {
	contentType, r, err := Detect(strings.NewReader("%PDF-1.4\n"), "a.pdf")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if contentType != "application/pdf" {
		t.Errorf("contentType = %q, want application/pdf", contentType)
	}
	all, _ := io.ReadAll(r)
	if string(all) != "%PDF-1.4\n" {
		t.Errorf("stream = %q", all)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, name, want string
	}{
		{"text/plain; charset=utf-8", "a.txt", "text/plain"},
		{"application/octet-stream", "a.JPG", "image/jpeg"},
		{"", "letter.doc", "application/msword"},
		{"application/octet-stream", "blob", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in, tt.name); got != tt.want {
			t.Errorf("Normalize(%q, %q) = %q, want %q", tt.in, tt.name, got, tt.want)
		}
	}
}
