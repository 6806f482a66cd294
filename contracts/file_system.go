package contracts

import (
	"io"
	"os"
	"time"
)

type PathLister interface {
	Listing(root string) ([]FileInfo, error)
}

type FileOpener interface {
	Open(path string) (io.ReadCloser, error)
}

type FileCreator interface {
	Create(path string) (io.WriteCloser, error)
}

type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

type Deleter interface {
	Delete(path string) error
}

type TreeDeleter interface {
	DeleteAll(path string) error
}

type DirectoryMaker interface {
	MkdirAll(path string) error
}

type Renamer interface {
	Rename(source, target string) error
}

type FileChecker interface {
	Stat(path string) (FileInfo, error)
}

type FileInfo interface {
	Path() string
	Size() int64
	ModTime() time.Time
	Mode() os.FileMode
}

type Environment interface {
	LookupEnv(key string) (value string, set bool)
}
