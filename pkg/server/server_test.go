package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vortex-oo/clouddrop/pkg/dropzone"
	"github.com/vortex-oo/clouddrop/pkg/server"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type message struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	HTML    string `json:"html"`
	Level   string `json:"level"`
	Message string `json:"message"`
	ID      string `json:"id"`
	Text    string `json:"text"`
}

// gatedUploader blocks each upload until the test releases it.
type gatedUploader struct {
	release chan string
}

func (u *gatedUploader) Upload(ctx context.Context, f *dropzone.File) (string, error) {
	rc, err := f.Open(ctx)
	if err != nil {
		return "", err
	}
	rc.Close()
	select {
	case url := <-u.release:
		return url, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type testServer struct {
	srv  *server.Server
	http *httptest.Server
	up   *gatedUploader
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := dropzone.NewDiskStore(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	up := &gatedUploader{release: make(chan string, 1)}
	cfg := server.DefaultConfig()
	cfg.Uploader = up
	cfg.Registry = prometheus.NewRegistry()
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	srv := server.New(cfg, store)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Sessions().Shutdown()
		ts.Close()
	})
	return &testServer{srv: srv, http: ts, up: up}
}

func (ts *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// next reads messages until one satisfies match.
func next(t *testing.T, conn *websocket.Conn, match func(message) bool) message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if match(msg) {
			return msg
		}
	}
}

func renderContaining(s string) func(message) bool {
	return func(m message) bool {
		return m.Type == "render" && strings.Contains(m.HTML, s)
	}
}

func (ts *testServer) drop(t *testing.T, session, name string, content []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	w.Close()

	resp, err := http.Post(ts.http.URL+"/sessions/"+session+"/files", w.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	return resp
}

func hello(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	msg := next(t, conn, func(m message) bool { return m.Type == "hello" })
	if msg.Session == "" {
		t.Fatal("hello without session id")
	}
	next(t, conn, renderContaining("Select a file first"))
	return msg.Session
}

func TestServer_Page(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.http.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	for _, want := range []string{"CloudDrop", "Select a file first", "/assets/client.js", "clouddrop-root", "All rights reserved"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestServer_ClientScript(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.http.URL + "/assets/client.js")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	etag := resp.Header.Get("ETag")

	req, _ := http.NewRequest(http.MethodGet, ts.http.URL+"/assets/client.js", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotModified {
		t.Errorf("conditional status = %d, want 304", resp.StatusCode)
	}
}

func TestServer_UploadWithoutFileAlerts(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t)
	hello(t, conn)

	conn.WriteJSON(map[string]string{"type": "upload"})

	msg := next(t, conn, func(m message) bool { return m.Type == "alert" })
	if msg.Level != "warning" || msg.Message != "Please upload a file!" {
		t.Errorf("alert = %+v", msg)
	}
}

func TestServer_DropUploadCopy(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t)
	session := hello(t, conn)

	resp := ts.drop(t, session, "photo.png", pngBytes)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("drop status = %d", resp.StatusCode)
	}
	next(t, conn, renderContaining("photo.png"))

	conn.WriteJSON(map[string]string{"type": "upload"})
	next(t, conn, renderContaining("Uploading..."))

	ts.up.release <- "https://cdn.example/photo.png"
	next(t, conn, renderContaining("View Uploaded File"))

	conn.WriteJSON(map[string]string{"type": "copy"})
	clip := next(t, conn, func(m message) bool { return m.Type == "clipboard" })
	if clip.Text != "https://cdn.example/photo.png" || clip.ID == "" {
		t.Fatalf("clipboard request = %+v", clip)
	}
	conn.WriteJSON(map[string]any{"type": "clipboard-result", "id": clip.ID, "ok": true})
	next(t, conn, renderContaining("Copied!"))
}

func TestServer_ClipboardDenied(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t)
	session := hello(t, conn)

	ts.drop(t, session, "photo.png", pngBytes)
	conn.WriteJSON(map[string]string{"type": "upload"})
	ts.up.release <- "https://cdn.example/photo.png"
	next(t, conn, renderContaining("Copy Link"))

	conn.WriteJSON(map[string]string{"type": "copy"})
	clip := next(t, conn, func(m message) bool { return m.Type == "clipboard" })
	conn.WriteJSON(map[string]any{"type": "clipboard-result", "id": clip.ID, "ok": false, "error": "NotAllowedError"})

	// A drag event forces a render; the label must still read "Copy Link"
	// and no alert may have been raised.
	conn.WriteJSON(map[string]string{"type": "dragenter"})
	msg := next(t, conn, func(m message) bool {
		return m.Type == "alert" || (m.Type == "render" && strings.Contains(m.HTML, "cd-dropzone--active"))
	})
	if msg.Type == "alert" {
		t.Fatalf("clipboard failure raised alert %+v", msg)
	}
	if strings.Contains(msg.HTML, "Copied!") {
		t.Error("flag raised after a denied copy")
	}
}

func TestServer_DropRejected(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t)
	session := hello(t, conn)

	resp := ts.drop(t, session, "notes.txt", []byte("plain text"))
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", resp.StatusCode)
	}
}

func TestServer_DropUnknownSession(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.drop(t, "missing", "photo.png", pngBytes)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_SessionRemovedOnDisconnect(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t)
	session := hello(t, conn)

	if ts.srv.Sessions().Count() != 1 {
		t.Fatalf("sessions = %d, want 1", ts.srv.Sessions().Count())
	}
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for ts.srv.Sessions().Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if ts.srv.Sessions().Count() != 0 {
		t.Fatal("session not removed after disconnect")
	}
	if resp := ts.drop(t, session, "photo.png", pngBytes); resp.StatusCode != http.StatusNotFound {
		t.Errorf("drop to closed session status = %d, want 404", resp.StatusCode)
	}
}

func TestServer_HealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t)
	hello(t, conn)

	resp, err := http.Get(ts.http.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	var health struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if health.Status != "ok" || health.Sessions != 1 {
		t.Errorf("health = %+v", health)
	}

	resp, err = http.Get(ts.http.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "clouddrop_active_sessions 1") {
		t.Errorf("metrics missing active session gauge:\n%s", body)
	}
}

func TestServer_RejectsForeignOrigin(t *testing.T) {
	ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/live"

	header := http.Header{}
	header.Set("Origin", "https://evil.example")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}
}
