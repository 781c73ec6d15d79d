// Package vfs is the read-only file layer: a mount table of io/fs
// filesystems behind absolute slash-separated paths. Mounts are permanent;
// there is no unmount and no write path.
package vfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"sort"
	"strings"
	"sync"
)

var (
	ErrNotMounted   = errors.New("vfs: no filesystem mounted for path")
	ErrBadPath      = errors.New("vfs: path must be absolute and clean")
	ErrMountTaken   = errors.New("vfs: mount point already in use")
	ErrNotSupported = errors.New("vfs: operation not supported by the backing filesystem")
)

// Mount is one entry of the mount table.
type Mount struct {
	point string
	fsys  fs.FS
}

// Point returns the absolute mount point, e.g. "/data".
func (m Mount) Point() string { return m.point }

var (
	mu     sync.Mutex
	mounts []Mount
)

// MountFS makes fsys available under point. Points are absolute, without a
// trailing slash ("/" itself is allowed), and cannot be taken twice.
func MountFS(point string, fsys fs.FS) error {
	if fsys == nil {
		return fmt.Errorf("vfs: mount %q: nil filesystem", point)
	}
	if !strings.HasPrefix(point, "/") || (point != "/" && strings.HasSuffix(point, "/")) {
		return fmt.Errorf("vfs: mount %q: %w", point, ErrBadPath)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, m := range mounts {
		if m.point == point {
			return fmt.Errorf("vfs: mount %q: %w", point, ErrMountTaken)
		}
	}
	mounts = append(mounts, Mount{point: point, fsys: fsys})
	// Longest point first, so resolution can take the first prefix match.
	sort.Slice(mounts, func(i, j int) bool {
		return len(mounts[i].point) > len(mounts[j].point)
	})
	return nil
}

// AllMounts yields the mount table entries, longest mount point first. The
// table only ever grows, so the sequence is restartable.
func AllMounts() iter.Seq[Mount] {
	return func(yield func(Mount) bool) {
		mu.Lock()
		snapshot := make([]Mount, len(mounts))
		copy(snapshot, mounts)
		mu.Unlock()
		for _, m := range snapshot {
			if !yield(m) {
				return
			}
		}
	}
}

// resolve finds the mount owning path and the path relative to it, in
// io/fs notation.
func resolve(path string) (Mount, string, error) {
	if !strings.HasPrefix(path, "/") {
		return Mount{}, "", fmt.Errorf("vfs: %q: %w", path, ErrBadPath)
	}

	mu.Lock()
	defer mu.Unlock()
	for _, m := range mounts {
		var rel string
		switch {
		case m.point == "/":
			rel = strings.TrimPrefix(path, "/")
		case path == m.point:
			rel = ""
		case strings.HasPrefix(path, m.point+"/"):
			rel = path[len(m.point)+1:]
		default:
			continue
		}
		if rel == "" {
			rel = "."
		}
		if !fs.ValidPath(rel) {
			return Mount{}, "", fmt.Errorf("vfs: %q: %w", path, ErrBadPath)
		}
		return m, rel, nil
	}
	return Mount{}, "", fmt.Errorf("vfs: %q: %w", path, ErrNotMounted)
}

// File is an open read-only file.
type File struct {
	f    fs.File
	path string
}

// Open opens the file at an absolute path.
func Open(path string) (*File, error) {
	m, rel, err := resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := m.fsys.Open(rel)
	if err != nil {
		return nil, fmt.Errorf("vfs: open %q: %w", path, err)
	}
	return &File{f: f, path: path}, nil
}

func (f *File) Read(p []byte) (int, error) { return f.f.Read(p) }

// Seek repositions the read offset. Filesystems that cannot seek answer
// ErrNotSupported.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	s, ok := f.f.(io.Seeker)
	if !ok {
		return 0, fmt.Errorf("vfs: seek %q: %w", f.path, ErrNotSupported)
	}
	return s.Seek(offset, whence)
}

func (f *File) Stat() (fs.FileInfo, error) { return f.f.Stat() }

func (f *File) Close() error { return f.f.Close() }

// Dir is a read directory snapshot.
type Dir struct {
	path    string
	entries []fs.DirEntry
}

// OpenDir reads the directory at an absolute path.
func OpenDir(path string) (*Dir, error) {
	m, rel, err := resolve(path)
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(m.fsys, rel)
	if err != nil {
		return nil, fmt.Errorf("vfs: readdir %q: %w", path, err)
	}
	return &Dir{path: path, entries: entries}, nil
}

// Entries yields the directory's entries in the backing filesystem's order.
func (d *Dir) Entries() iter.Seq[fs.DirEntry] {
	return func(yield func(fs.DirEntry) bool) {
		for _, e := range d.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Len returns the number of entries.
func (d *Dir) Len() int { return len(d.entries) }
