// services/storage/store.go
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"camdevice-go/errcode"
	"camdevice-go/types"
)

const (
	photoDir = "photos"
	videoDir = "videos"
)

// Store is the media store backed by the external block device (the SD card
// mount on real hardware, any directory on the host). Photo and video
// counters resume from the highest existing file number so names never
// collide across reboots.
type Store struct {
	mu       sync.Mutex
	root     string
	photoSeq uint32
	videoSeq uint32
}

// Open mounts the store under root, creating the photo and video directories
// and scanning them for the next free file numbers.
func Open(root string) (*Store, error) {
	s := &Store{root: root}
	for _, dir := range []string{photoDir, videoDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, &errcode.E{C: errcode.StorageUnavailable, Op: "storage.Open", Err: err}
		}
	}
	s.photoSeq = nextSeq(filepath.Join(root, photoDir), "IMG_%04d.jpg")
	s.videoSeq = nextSeq(filepath.Join(root, videoDir), "VID_%04d.mjpeg")
	return s, nil
}

// nextSeq scans dir for names matching pattern and returns highest+1.
func nextSeq(dir, pattern string) uint32 {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	var next uint32
	for _, e := range entries {
		var n uint32
		if _, err := fmt.Sscanf(e.Name(), pattern, &n); err == nil && n >= next {
			next = n + 1
		}
	}
	return next
}

// SavePhoto writes one JPEG under an auto-incremented name and returns the
// store-relative path. A partial write is reported, not retried.
func (s *Store) SavePhoto(data []byte) (string, error) {
	s.mu.Lock()
	name := fmt.Sprintf("IMG_%04d.jpg", s.photoSeq)
	s.photoSeq++
	s.mu.Unlock()

	rel := photoDir + "/" + name
	if err := os.WriteFile(filepath.Join(s.root, photoDir, name), data, 0o644); err != nil {
		return rel, &errcode.E{C: errcode.StorageWrite, Op: "storage.SavePhoto", Msg: rel, Err: err}
	}
	return rel, nil
}

// CreateVideo opens a new recording destination under an auto-incremented
// name. The caller owns the writer and must close it.
func (s *Store) CreateVideo() (io.WriteCloser, string, error) {
	s.mu.Lock()
	name := fmt.Sprintf("VID_%04d.mjpeg", s.videoSeq)
	s.videoSeq++
	s.mu.Unlock()

	rel := videoDir + "/" + name
	f, err := os.Create(filepath.Join(s.root, videoDir, name))
	if err != nil {
		return nil, rel, &errcode.E{C: errcode.StorageWrite, Op: "storage.CreateVideo", Msg: rel, Err: err}
	}
	return f, rel, nil
}

// List enumerates stored files. typeFilter is "photo", "video" or "" for all.
func (s *Store) List(typeFilter string) ([]types.FileInfo, error) {
	var out []types.FileInfo
	if typeFilter == "" || typeFilter == "photo" {
		if err := s.listDir(photoDir, "photo", &out); err != nil {
			return nil, err
		}
	}
	if typeFilter == "" || typeFilter == "video" {
		if err := s.listDir(videoDir, "video", &out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) listDir(dir, kind string, out *[]types.FileInfo) error {
	entries, err := os.ReadDir(filepath.Join(s.root, dir))
	if err != nil {
		return &errcode.E{C: errcode.StorageUnavailable, Op: "storage.List", Err: err}
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		*out = append(*out, types.FileInfo{
			Name: e.Name(),
			Path: dir + "/" + e.Name(),
			Size: info.Size(),
			Type: kind,
		})
	}
	return nil
}

// resolve validates a store-relative path and maps it onto the filesystem.
// Paths escaping the store root are rejected.
func (s *Store) resolve(rel string) (string, error) {
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || strings.Contains(rel, "..") {
		return "", errcode.InvalidParams
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if !strings.HasPrefix(clean, photoDir+string(os.PathSeparator)) &&
		!strings.HasPrefix(clean, videoDir+string(os.PathSeparator)) {
		return "", errcode.InvalidParams
	}
	return filepath.Join(s.root, clean), nil
}

// OpenFile opens a stored file for reading.
func (s *Store) OpenFile(rel string) (io.ReadCloser, int64, error) {
	path, err := s.resolve(rel)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, errcode.NotFound
		}
		return nil, 0, &errcode.E{C: errcode.Error, Op: "storage.OpenFile", Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, &errcode.E{C: errcode.Error, Op: "storage.OpenFile", Err: err}
	}
	return f, info.Size(), nil
}

// Delete removes a stored file.
func (s *Store) Delete(rel string) error {
	path, err := s.resolve(rel)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errcode.NotFound
	}
	if err := os.Remove(path); err != nil {
		return &errcode.E{C: errcode.Error, Op: "storage.Delete", Err: err}
	}
	return nil
}

// Status summarises the store for the status endpoint and the bus.
func (s *Store) Status() types.StorageStatus {
	s.mu.Lock()
	nextPhoto, nextVideo := s.photoSeq, s.videoSeq
	s.mu.Unlock()

	st := types.StorageStatus{
		Available: true,
		NextPhoto: nextPhoto,
		NextVideo: nextVideo,
	}
	files, err := s.List("")
	if err != nil {
		return types.StorageStatus{Available: false, Error: errcode.Of(err).Error()}
	}
	for _, f := range files {
		st.UsedBytes += f.Size
		switch f.Type {
		case "photo":
			st.Photos++
		case "video":
			st.Videos++
		}
	}
	return st
}
