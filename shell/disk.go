package shell

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"bitbucket.org/smartystreets/swapper/contracts"
)

type DiskFileSystem struct{}

func NewDiskFileSystem() *DiskFileSystem {
	return &DiskFileSystem{}
}

// Listing walks root recursively and returns its regular files.
func (this *DiskFileSystem) Listing(root string) (listing []contracts.FileInfo, err error) {
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		listing = append(listing, newFileInfo(path, info))
		return nil
	})
	return listing, err
}

func (this *DiskFileSystem) Stat(path string) (contracts.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return newFileInfo(path, info), nil
}

func (this *DiskFileSystem) Open(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

// Create truncates (or creates) path, creating missing parent directories.
func (this *DiskFileSystem) Create(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func (this *DiskFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (this *DiskFileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func (this *DiskFileSystem) Delete(path string) error {
	return os.Remove(path)
}

func (this *DiskFileSystem) DeleteAll(path string) error {
	return os.RemoveAll(path)
}

func (this *DiskFileSystem) Rename(source, target string) error {
	return os.Rename(source, target)
}

////////////////////////////////////////

type FileInfo struct {
	path string
	size int64
	mod  time.Time
	mode os.FileMode
}

func newFileInfo(path string, info os.FileInfo) FileInfo {
	return FileInfo{path: path, size: info.Size(), mod: info.ModTime(), mode: info.Mode()}
}

func (this FileInfo) Path() string       { return this.path }
func (this FileInfo) Size() int64        { return this.size }
func (this FileInfo) ModTime() time.Time { return this.mod }
func (this FileInfo) Mode() os.FileMode  { return this.mode }
