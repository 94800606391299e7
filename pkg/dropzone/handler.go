package dropzone

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/vortex-oo/clouddrop/internal/errors"
)

// Target receives accepted files. Implementations deliver the file to a
// Zone, typically on the owning session's event loop.
type Target interface {
	Drop(ctx context.Context, files ...*File) (*File, error)
}

// Resolver finds the Target for an intake request.
// It should return an error matching errors.New("E060") for unknown sessions.
type Resolver func(r *http.Request) (Target, error)

// HandlerConfig holds configuration for the intake handler.
type HandlerConfig struct {
	// MaxFileSize is the maximum allowed request body in bytes.
	// Default: 10MB.
	MaxFileSize int64

	// Accept is the allow-list checked against the sniffed type.
	// Default: DefaultAccept.
	Accept Accept

	// Logger is used for diagnostics. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultHandlerConfig returns a HandlerConfig with sensible defaults.
func DefaultHandlerConfig() *HandlerConfig {
	return &HandlerConfig{
		MaxFileSize: 10 * 1024 * 1024,
		Accept:      DefaultAccept,
	}
}

// Accepted is the JSON body returned for an accepted file.
type Accepted struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// Handler returns an http.Handler that stages a dropped file and delivers it
// to the Target resolved for the request.
//
// The handler expects a multipart form with one or more "file" parts; the
// first part that passes the allow-list is kept.
func Handler(store Store, resolve Resolver, config *HandlerConfig) http.Handler {
	if config == nil {
		config = DefaultHandlerConfig()
	}
	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = 10 * 1024 * 1024
	}
	accept := config.Accept
	if accept == nil {
		accept = DefaultAccept
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "", "Method not allowed")
			return
		}

		target, err := resolve(r)
		if err != nil {
			if stderrors.Is(err, errors.New("E060")) {
				writeError(w, http.StatusNotFound, "E060", "Session not found")
				return
			}
			logger.Error("resolve drop target", "error", err)
			writeError(w, http.StatusInternalServerError, "", "Drop failed")
			return
		}

		// Limit the body before parsing; the multipart overhead counts too.
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+64*1024)

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if stderrors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
				writeError(w, http.StatusRequestEntityTooLarge, "E041", "File too large")
				return
			}
			writeError(w, http.StatusBadRequest, "", "Failed to parse form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		headers := r.MultipartForm.File["file"]
		if len(headers) == 0 {
			writeError(w, http.StatusBadRequest, "", "No file provided")
			return
		}

		file, err := stageFirstAccepted(r.Context(), store, accept, maxSize, headers, logger)
		if err != nil {
			switch {
			case stderrors.Is(err, ErrTooLarge):
				writeError(w, http.StatusRequestEntityTooLarge, "E041", "File too large")
			case stderrors.Is(err, ErrRejected):
				writeError(w, http.StatusUnsupportedMediaType, "E040", "File type not accepted")
			default:
				logger.Error("stage dropped file", "error", err)
				writeError(w, http.StatusInternalServerError, "", "Drop failed")
			}
			return
		}

		if _, err := target.Drop(r.Context(), file); err != nil {
			if rerr := file.Release(); rerr != nil {
				logger.Warn("release undelivered file", "id", file.ID, "error", rerr)
			}
			switch {
			case stderrors.Is(err, ErrRejected):
				writeError(w, http.StatusUnsupportedMediaType, "E040", "File type not accepted")
			case stderrors.Is(err, errors.New("E060")), stderrors.Is(err, errors.New("E061")):
				writeError(w, http.StatusNotFound, "E060", "Session not found")
			default:
				logger.Error("deliver dropped file", "error", err)
				writeError(w, http.StatusInternalServerError, "", "Drop failed")
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Accepted{
			ID:          file.ID,
			Name:        file.Name,
			ContentType: file.ContentType,
			Size:        file.Size,
		})
	})
}

// stageFirstAccepted sniffs each part in order and stages the first one that
// passes the allow-list.
func stageFirstAccepted(ctx context.Context, store Store, accept Accept, maxSize int64, headers []*multipart.FileHeader, logger *slog.Logger) (*File, error) {
	for _, header := range headers {
		if header.Size > maxSize {
			return nil, ErrTooLarge
		}

		part, err := header.Open()
		if err != nil {
			return nil, err
		}

		contentType, body, err := Detect(part, header.Filename)
		if err != nil {
			part.Close()
			return nil, err
		}
		if !accept.Allows(header.Filename, contentType) {
			part.Close()
			logger.Debug("drop rejected", "name", header.Filename, "content_type", contentType)
			continue
		}

		file, err := store.Save(ctx, header.Filename, contentType, body)
		part.Close()
		if err != nil {
			return nil, err
		}
		return file, nil
	}
	return nil, ErrRejected
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}
