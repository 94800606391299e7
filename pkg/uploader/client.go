package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vortex-oo/clouddrop/internal/errors"
	"github.com/vortex-oo/clouddrop/pkg/dropzone"
)

// DefaultBaseURL is the CloudDrop API the widget uploads to.
const DefaultBaseURL = "https://clouddrop-backend.vercel.app/api"

// FieldName is the multipart field carrying the file.
const FieldName = "file"

const defaultTracerName = "clouddrop/uploader"

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upload endpoint returned %d", e.StatusCode)
	}
	return fmt.Sprintf("upload endpoint returned %d: %s", e.StatusCode, e.Body)
}

// Client posts files to the upload endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
	metrics *Metrics
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithMetrics records upload outcomes in m.
func WithMetrics(m *Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracerName sets the OpenTelemetry tracer name.
func WithTracerName(name string) ClientOption {
	return func(c *Client) {
		c.tracer = otel.Tracer(name)
	}
}

// NewClient creates a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		tracer:  otel.Tracer(defaultTracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL files are posted to.
func (c *Client) Endpoint() string {
	return c.baseURL + "/upload"
}

// Upload sends f and returns the public URL from the response.
//
// Transport failures and non-2xx statuses are wrapped in E002; a success
// response without a url is E004.
func (c *Client) Upload(ctx context.Context, f *dropzone.File) (string, error) {
	ctx, span := c.tracer.Start(ctx, "clouddrop.upload",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("clouddrop.file_name", f.Name),
			attribute.Int64("clouddrop.file_size", f.Size),
			attribute.String("http.url", c.Endpoint()),
		),
	)
	defer span.End()

	start := time.Now()
	url, status, err := c.do(ctx, f)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.observe(outcome(ctx, err), time.Since(start), 0)
		return "", err
	}
	span.SetStatus(codes.Ok, "")
	c.metrics.observe(statusSuccess, time.Since(start), f.Size)
	return url, nil
}

func (c *Client) do(ctx context.Context, f *dropzone.File) (string, int, error) {
	body, contentType, err := encode(ctx, f)
	if err != nil {
		return "", 0, errors.New("E002").Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), body)
	if err != nil {
		return "", 0, errors.New("E002").Wrap(err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, errors.New("E002").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", resp.StatusCode, errors.New("E002").Wrap(&StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		})
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", resp.StatusCode, errors.New("E002").Wrap(fmt.Errorf("decode response: %w", err))
	}
	if payload.URL == "" {
		return "", resp.StatusCode, errors.New("E004")
	}
	return payload.URL, resp.StatusCode, nil
}

// quoteEscaper matches mime/multipart's quoting of Content-Disposition params.
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encode builds the multipart body with a single file part.
func encode(ctx context.Context, f *dropzone.File) (*bytes.Buffer, string, error) {
	src, err := f.Open(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(FieldName), quoteEscaper.Replace(f.Name)))
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

func outcome(ctx context.Context, err error) string {
	if ctx.Err() != nil {
		return statusCanceled
	}
	return statusError
}
