package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryObject struct {
	data    []byte
	version Version
}

// MemoryStore is an in-memory BlobStore with the same conditional-write
// semantics as the GCS backend. Used by tests and for local development
// (STORAGE_PROVIDER=memory).
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]memoryObject
	nextVer Version
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject), nextVer: 1}
}

func (s *MemoryStore) Read(ctx context.Context, path string) ([]byte, Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, ok := s.objects[path]
	if !ok {
		return nil, 0, ErrNotFound
	}
	cp := make([]byte, len(obj.data))
	copy(cp, obj.data)
	return cp, obj.version, nil
}

func (s *MemoryStore) Write(ctx context.Context, path string, data []byte, version Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, exists := s.objects[path]
	if version == 0 {
		if exists {
			return ErrConflict
		}
	} else if !exists || obj.version != version {
		return ErrConflict
	}
	s.put(path, data)
	return nil
}

func (s *MemoryStore) WriteNew(ctx context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(path, data)
	return nil
}

func (s *MemoryStore) put(path string, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[path] = memoryObject{data: cp, version: s.nextVer}
	s.nextVer++
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[path]; !ok {
		return ErrNotFound
	}
	delete(s.objects, path)
	return nil
}

func (s *MemoryStore) ListDirs(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	p := withSlash(prefix)
	for path := range s.objects {
		if !strings.HasPrefix(path, p) {
			continue
		}
		rest := strings.TrimPrefix(path, p)
		if i := strings.Index(rest, "/"); i > 0 {
			seen[rest[:i]] = true
		}
	}

	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs, nil
}

func (s *MemoryStore) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var files []string
	p := withSlash(prefix)
	for path := range s.objects {
		if !strings.HasPrefix(path, p) {
			continue
		}
		rest := strings.TrimPrefix(path, p)
		if rest != "" && !strings.Contains(rest, "/") {
			files = append(files, rest)
		}
	}
	sort.Strings(files)
	return files, nil
}
