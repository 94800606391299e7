package dropzone

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DiskStore stages files on the local filesystem.
type DiskStore struct {
	dir     string
	maxSize int64

	mu    sync.RWMutex
	files map[string]*diskMeta
}

type diskMeta struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewDiskStore creates a new DiskStore.
//
// Parameters:
//   - dir: Directory to stage files in
//   - maxSize: Maximum file size in bytes (0 = no limit)
func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &DiskStore{
		dir:     dir,
		maxSize: maxSize,
		files:   make(map[string]*diskMeta),
	}, nil
}

// Save stages the file on disk.
func (s *DiskStore) Save(_ context.Context, name, contentType string, r io.Reader) (*File, error) {
	id := uuid.NewString()
	path := s.dataPath(id)

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := r
	if s.maxSize > 0 {
		reader = io.LimitReader(r, s.maxSize+1) // +1 to detect overflow
	}

	written, err := io.Copy(f, reader)
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	if s.maxSize > 0 && written > s.maxSize {
		os.Remove(path)
		return nil, ErrTooLarge
	}

	meta := &diskMeta{
		Filename:    name,
		ContentType: contentType,
		Size:        written,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.files[id] = meta
	s.mu.Unlock()

	if err := s.saveMeta(id, meta); err != nil {
		os.Remove(path)
		s.mu.Lock()
		delete(s.files, id)
		s.mu.Unlock()
		return nil, err
	}

	return stagedFile(s, id, name, contentType, written), nil
}

// Open opens a staged file for reading.
func (s *DiskStore) Open(_ context.Context, id string) (io.ReadCloser, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	f, err := os.Open(s.dataPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Remove deletes a staged file and its metadata.
func (s *DiskStore) Remove(_ context.Context, id string) error {
	if !validID(id) {
		return nil
	}
	s.mu.Lock()
	delete(s.files, id)
	s.mu.Unlock()

	if err := os.Remove(s.dataPath(id)); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(s.metaPath(id)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Stat returns the metadata of a staged file, reading the sidecar when the
// file was staged by an earlier process.
func (s *DiskStore) Stat(id string) (*File, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	meta, ok := s.files[id]
	s.mu.RUnlock()

	if !ok {
		var err error
		meta, err = s.loadMeta(id)
		if err != nil {
			return nil, ErrNotFound
		}
	}
	return stagedFile(s, id, meta.Filename, meta.ContentType, meta.Size), nil
}

// Cleanup removes staged files older than maxAge.
func (s *DiskStore) Cleanup(_ context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, meta := range s.files {
		if meta.CreatedAt.Before(cutoff) {
			delete(s.files, id)
			os.Remove(s.dataPath(id))
			os.Remove(s.metaPath(id))
		}
	}

	// Also scan directory for files left by earlier processes
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(s.dir, entry.Name()))
		}
	}

	return nil
}

// Dir returns the staging directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) dataPath(id string) string {
	return filepath.Join(s.dir, id)
}

func (s *DiskStore) metaPath(id string) string {
	return filepath.Join(s.dir, id+".meta")
}

func (s *DiskStore) saveMeta(id string, meta *diskMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return os.WriteFile(s.metaPath(id), data, 0644)
}

func (s *DiskStore) loadMeta(id string) (*diskMeta, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		return nil, err
	}
	var meta diskMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// validID rejects IDs that could escape the staging directory.
func validID(id string) bool {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
