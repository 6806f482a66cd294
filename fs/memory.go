package fs

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"bitbucket.org/smartystreets/swapper/contracts"
)

// InMemoryFileSystem implements every file system contract without touching
// the disk. Paths can be locked for a number of operations to reproduce the
// sharing violations of files held open by a running program.
type InMemoryFileSystem struct {
	lock        sync.Mutex
	files       map[string]*file
	directories map[string]struct{}
	locks       map[string]int
}

func NewInMemoryFileSystem() *InMemoryFileSystem {
	return &InMemoryFileSystem{
		files:       make(map[string]*file),
		directories: make(map[string]struct{}),
		locks:       make(map[string]int),
	}
}

var ErrLocked = errors.New("file is in use by another process")

// Lock makes the next `times` mutations of path fail with ErrLocked.
func (this *InMemoryFileSystem) Lock(path string, times int) {
	this.lock.Lock()
	defer this.lock.Unlock()
	this.locks[clean(path)] = times
}

func (this *InMemoryFileSystem) locked(operation, path string) error {
	if this.locks[path] <= 0 {
		return nil
	}
	this.locks[path]--
	return &os.PathError{Op: operation, Path: path, Err: ErrLocked}
}

func (this *InMemoryFileSystem) WriteFile(path string, content []byte) {
	this.lock.Lock()
	defer this.lock.Unlock()
	this.write(clean(path), content)
}

func (this *InMemoryFileSystem) write(path string, content []byte) *file {
	this.makeDirectories(filepath.Dir(path))
	created := &file{path: path, contents: content, mod: InMemoryModTime}
	this.files[path] = created
	return created
}

func (this *InMemoryFileSystem) ReadFile(path string) ([]byte, error) {
	this.lock.Lock()
	defer this.lock.Unlock()
	target, found := this.files[clean(path)]
	if !found {
		return nil, notExist("read", path)
	}
	return append([]byte(nil), target.contents...), nil
}

func (this *InMemoryFileSystem) Open(path string) (io.ReadCloser, error) {
	content, err := this.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (this *InMemoryFileSystem) Create(path string) (io.WriteCloser, error) {
	this.lock.Lock()
	defer this.lock.Unlock()
	path = clean(path)
	if err := this.locked("create", path); err != nil {
		return nil, err
	}
	return this.write(path, nil), nil
}

func (this *InMemoryFileSystem) Stat(path string) (contracts.FileInfo, error) {
	this.lock.Lock()
	defer this.lock.Unlock()
	path = clean(path)
	if target, found := this.files[path]; found {
		return target, nil
	}
	if _, found := this.directories[path]; found {
		return &file{path: path, mode: os.ModeDir | 0755, mod: InMemoryModTime}, nil
	}
	return nil, notExist("stat", path)
}

// Listing returns every file beneath root, sorted by path.
func (this *InMemoryFileSystem) Listing(root string) (files []contracts.FileInfo, err error) {
	this.lock.Lock()
	defer this.lock.Unlock()
	root = clean(root)
	if _, found := this.directories[root]; !found {
		return nil, notExist("lstat", root)
	}
	for path, target := range this.files {
		if within(root, path) {
			files = append(files, target)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path() < files[j].Path() })
	return files, nil
}

func (this *InMemoryFileSystem) MkdirAll(path string) error {
	this.lock.Lock()
	defer this.lock.Unlock()
	this.makeDirectories(clean(path))
	return nil
}

func (this *InMemoryFileSystem) makeDirectories(path string) {
	for {
		this.directories[path] = struct{}{}
		parent := filepath.Dir(path)
		if parent == path {
			return
		}
		path = parent
	}
}

func (this *InMemoryFileSystem) Delete(path string) error {
	this.lock.Lock()
	defer this.lock.Unlock()
	path = clean(path)
	if _, found := this.files[path]; !found {
		return notExist("remove", path)
	}
	if err := this.locked("remove", path); err != nil {
		return err
	}
	delete(this.files, path)
	return nil
}

func (this *InMemoryFileSystem) DeleteAll(path string) error {
	this.lock.Lock()
	defer this.lock.Unlock()
	path = clean(path)
	if err := this.locked("removeall", path); err != nil {
		return err
	}
	for name := range this.files {
		if name == path || within(path, name) {
			delete(this.files, name)
		}
	}
	for name := range this.directories {
		if name == path || within(path, name) {
			delete(this.directories, name)
		}
	}
	return nil
}

func (this *InMemoryFileSystem) Rename(source, target string) error {
	this.lock.Lock()
	defer this.lock.Unlock()
	source, target = clean(source), clean(target)
	moving, found := this.files[source]
	if !found {
		return notExist("rename", source)
	}
	if err := this.locked("rename", target); err != nil {
		return err
	}
	delete(this.files, source)
	moving.path = target
	this.files[target] = moving
	return nil
}

func clean(path string) string {
	return filepath.Clean(path)
}

func within(root, path string) bool {
	return strings.HasPrefix(path, strings.TrimSuffix(root, string(filepath.Separator))+string(filepath.Separator))
}

func notExist(operation, path string) error {
	return &os.PathError{Op: operation, Path: path, Err: os.ErrNotExist}
}

/////////////////////////////////////////////////

var InMemoryModTime = time.Now()

type file struct {
	path     string
	contents []byte
	mod      time.Time
	mode     os.FileMode
}

func (this *file) Path() string       { return this.path }
func (this *file) Size() int64        { return int64(len(this.contents)) }
func (this *file) ModTime() time.Time { return this.mod }
func (this *file) Mode() os.FileMode  { return this.mode }

func (this *file) Write(p []byte) (n int, err error) {
	this.contents = append(this.contents, p...)
	return len(p), nil
}

func (this *file) Close() error {
	return nil
}
