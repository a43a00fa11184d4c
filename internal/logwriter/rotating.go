package logwriter

import (
	"fmt"
	"os"
	"sync"
)

// RotatingWriter implements io.Writer with size-based rotation: when a
// write would push the file past maxSize, the file is shifted to .1
// (and .1 to .2, up to maxFiles) and a fresh one is opened.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int
	current  *os.File
	written  int64
	mu       sync.Mutex
}

// New opens path for appending. maxSize is in bytes, maxFiles is the
// number of rotated files to keep; zero or negative values fall back to
// 1MB and 3.
func New(path string, maxSize int64, maxFiles int) (*RotatingWriter, error) {
	if maxSize <= 0 {
		maxSize = 1048576
	}
	if maxFiles <= 0 {
		maxFiles = 3
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &RotatingWriter{
		path:     path,
		maxSize:  maxSize,
		maxFiles: maxFiles,
		current:  f,
		written:  info.Size(),
	}, nil
}

// Write appends p, rotating first if it would exceed maxSize. A single
// write larger than maxSize still lands in one file.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil {
		return 0, fmt.Errorf("writer is closed")
	}
	if w.written+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.current.Write(p)
	w.written += int64(n)
	return n, err
}

// rotate shifts files one slot up, dropping the oldest, and reopens the
// base path empty.
func (w *RotatingWriter) rotate() error {
	w.current.Close()

	for i := w.maxFiles; i >= 1; i-- {
		src := fmt.Sprintf("%s.%d", w.path, i)
		if i == w.maxFiles {
			os.Remove(src)
		} else {
			os.Rename(src, fmt.Sprintf("%s.%d", w.path, i+1))
		}
	}
	os.Rename(w.path, w.path+".1")

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	w.current = f
	w.written = 0
	return nil
}

// Close closes the underlying file. Further writes fail.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		return nil
	}
	err := w.current.Close()
	w.current = nil
	return err
}
