package archive

import (
	"fmt"

	"github.com/mholt/archiver"
	"github.com/smartystreets/logging"
)

// Extractor unpacks archives on disk. The format is chosen by the source
// file's extension, falling back to zip for unrecognized names.
type Extractor struct {
	logger *logging.Logger
}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (this *Extractor) Extract(source, destination string) error {
	unarchiver := this.unarchiver(source)
	if err := unarchiver.Unarchive(source, destination); err != nil {
		return fmt.Errorf("extract %s: %w", source, err)
	}
	return nil
}

// unarchiver returns a fresh, overwriting instance of the detected format.
func (this *Extractor) unarchiver(source string) archiver.Unarchiver {
	format, err := archiver.ByExtension(source)
	if err != nil {
		this.logger.Printf("[INFO] unrecognized archive extension for %s, assuming zip", source)
	}
	switch format.(type) {
	case *archiver.Tar:
		return newTar()
	case *archiver.TarGz:
		return &archiver.TarGz{Tar: newTar()}
	case *archiver.TarBz2:
		return &archiver.TarBz2{Tar: newTar()}
	case *archiver.TarXz:
		return &archiver.TarXz{Tar: newTar()}
	case *archiver.Rar:
		return &archiver.Rar{OverwriteExisting: true, MkdirAll: true}
	default:
		return &archiver.Zip{OverwriteExisting: true, MkdirAll: true}
	}
}

func newTar() *archiver.Tar {
	return &archiver.Tar{OverwriteExisting: true, MkdirAll: true}
}
