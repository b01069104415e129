package zstream

import (
	"bytes"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// normalizePath normalizes a path for consistent storage and lookup. It
// cleans the path and strips leading slashes so absolute and relative
// spellings land on the same entry.
func normalizePath(name string) string {
	name = filepath.Clean(name)
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, string(filepath.Separator))
	if name == "" || name == "." {
		name = "."
	}
	return name
}

// memFS is a simple in-memory FileSystem, primarily for tests and for
// running pipelines without touching disk.
type memFS struct {
	files map[string]*memFile
	mu    sync.RWMutex
}

// NewMemFS creates a new in-memory filesystem.
func NewMemFS() FileSystem {
	return &memFS{files: make(map[string]*memFile)}
}

type memFile struct {
	name    string
	data    *bytes.Buffer
	modTime time.Time
	pos     int64
	closed  bool
	mu      sync.Mutex
}

func (mfs *memFS) Open(name string) (File, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	name = normalizePath(name)
	mf, exists := mfs.files[name]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	// Fresh handle over the shared buffer so readers start at offset 0.
	return &memFile{
		name:    mf.name,
		data:    mf.data,
		modTime: mf.modTime,
	}, nil
}

func (mfs *memFS) Create(name string) (File, error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = normalizePath(name)
	mf, exists := mfs.files[name]
	if !exists {
		mf = &memFile{name: name, data: new(bytes.Buffer)}
		mfs.files[name] = mf
	}
	mf.data.Reset()
	mf.modTime = time.Now()

	return &memFile{
		name:    mf.name,
		data:    mf.data,
		modTime: mf.modTime,
	}, nil
}

func (mfs *memFS) Stat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	name = normalizePath(name)
	mf, exists := mfs.files[name]
	if !exists {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}

	return &memFileInfo{
		name:    filepath.Base(mf.name),
		size:    int64(mf.data.Len()),
		modTime: mf.modTime,
	}, nil
}

func (mfs *memFS) Remove(name string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = normalizePath(name)
	if _, exists := mfs.files[name]; !exists {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(mfs.files, name)
	return nil
}

func (mf *memFile) Read(p []byte) (n int, err error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if mf.closed {
		return 0, fs.ErrClosed
	}
	if mf.pos >= int64(mf.data.Len()) {
		return 0, io.EOF
	}

	n = copy(p, mf.data.Bytes()[mf.pos:])
	mf.pos += int64(n)
	return n, nil
}

func (mf *memFile) Write(p []byte) (n int, err error) {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	if mf.closed {
		return 0, fs.ErrClosed
	}
	n, err = mf.data.Write(p)
	mf.modTime = time.Now()
	return n, err
}

func (mf *memFile) Close() error {
	mf.mu.Lock()
	defer mf.mu.Unlock()

	mf.closed = true
	return nil
}

func (mf *memFile) Sync() error { return nil }

type memFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (fi *memFileInfo) Name() string       { return fi.name }
func (fi *memFileInfo) Size() int64        { return fi.size }
func (fi *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (fi *memFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *memFileInfo) IsDir() bool        { return false }
func (fi *memFileInfo) Sys() interface{}   { return nil }
