package uploader_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vortex-oo/clouddrop/internal/errors"
	"github.com/vortex-oo/clouddrop/pkg/dropzone"
	"github.com/vortex-oo/clouddrop/pkg/uploader"
)

func TestClient_Upload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{"plain", "photo.png"},
		{"narrow no-break space", "Screenshot 2024-01-01 at 10.00.00\u202fAM.png"},
		{"quote", `say "cheese".png`},
		{"accented", "résumé.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotName, gotType, gotBody string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/api/upload" {
					t.Errorf("request = %s %s", r.Method, r.URL.Path)
				}
				file, header, err := r.FormFile("file")
				if err != nil {
					t.Errorf("FormFile: %v", err)
					http.Error(w, "bad", http.StatusBadRequest)
					return
				}
				defer file.Close()
				data, _ := io.ReadAll(file)
				gotName, gotType, gotBody = header.Filename, header.Header.Get("Content-Type"), string(data)

				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]string{"url": "https://cdn.example/x"})
			}))
			defer srv.Close()

			client := uploader.NewClient(srv.URL + "/api/")
			url, err := client.Upload(context.Background(), dropzone.FromBytes(tt.filename, "image/png", []byte("png-bytes")))
			if err != nil {
				t.Fatalf("Upload: %v", err)
			}
			if url != "https://cdn.example/x" {
				t.Errorf("url = %q", url)
			}
			if gotName != tt.filename || gotType != "image/png" || gotBody != "png-bytes" {
				t.Errorf("server saw name=%q type=%q body=%q", gotName, gotType, gotBody)
			}
		})
	}
}

func TestClient_Endpoint(t *testing.T) {
	if got := uploader.NewClient(uploader.DefaultBaseURL).Endpoint(); got != "https://clouddrop-backend.vercel.app/api/upload" {
		t.Errorf("Endpoint() = %q", got)
	}
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		wantCode string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "storage down", http.StatusInternalServerError)
			},
			wantCode: "E002",
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>ok</html>"))
			},
			wantCode: "E002",
		},
		{
			name: "missing url",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"message":"stored"}`))
			},
			wantCode: "E004",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := uploader.NewClient(srv.URL).Upload(context.Background(), dropzone.FromBytes("a.pdf", "application/pdf", []byte("%PDF")))
			if got := errors.Code(err); got != tt.wantCode {
				t.Fatalf("error = %v, code %q, want %q", err, got, tt.wantCode)
			}
		})
	}
}

func TestClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := uploader.NewClient(srv.URL).Upload(context.Background(), dropzone.FromBytes("a.gif", "image/gif", []byte("GIF89a")))
	var statusErr *uploader.StatusError
	if !stderrors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("error = %v, want StatusError 502", err)
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := uploader.NewClient(base).Upload(context.Background(), dropzone.FromBytes("a.png", "image/png", []byte("x")))
	if !stderrors.Is(err, errors.New("E002")) {
		t.Fatalf("error = %v, want E002", err)
	}
}

func TestClient_Metrics(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Write([]byte(`{"url":"https://cdn.example/y"}`))
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	client := uploader.NewClient(srv.URL, uploader.WithMetrics(uploader.NewMetrics(reg)))
	file := dropzone.FromBytes("a.png", "image/png", []byte("12345"))

	client.Upload(context.Background(), file)
	status = http.StatusInternalServerError
	client.Upload(context.Background(), file)

	count, err := testutil.GatherAndCount(reg, "clouddrop_uploads_total")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("uploads_total series = %d, want 2", count)
	}
	if n, _ := testutil.GatherAndCount(reg, "clouddrop_upload_bytes_total"); n != 1 {
		t.Errorf("upload_bytes_total series = %d, want 1", n)
	}
}

// namedProvider records the names tracers are requested under.
type namedProvider struct {
	embedded.TracerProvider
	names []string
}

func (p *namedProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	p.names = append(p.names, name)
	return noop.NewTracerProvider().Tracer(name, opts...)
}

func TestClient_WithTracerName(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)
	tp := &namedProvider{}
	otel.SetTracerProvider(tp)

	uploader.NewClient(uploader.DefaultBaseURL, uploader.WithTracerName("photos-app"))

	if n := len(tp.names); n == 0 || tp.names[n-1] != "photos-app" {
		t.Errorf("tracer names = %v, want last to be photos-app", tp.names)
	}
}
