package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/smartystreets/logging"

	"bitbucket.org/smartystreets/swapper/contracts"
)

// Stager turns a verified download into the files that will be installed.
type Stager struct {
	logger      *logging.Logger
	fileSystem  stagerFileSystem
	extractor   contracts.Extractor
	installRoot string
	stagingRoot string
}

type stagerFileSystem interface {
	contracts.PathLister
	contracts.DirectoryMaker
}

func NewStager(fileSystem stagerFileSystem, extractor contracts.Extractor, installRoot, stagingRoot string) *Stager {
	return &Stager{
		fileSystem:  fileSystem,
		extractor:   extractor,
		installRoot: installRoot,
		stagingRoot: stagingRoot,
	}
}

// Stage maps the download to its install targets. Archive entries are
// flattened to their base names beneath the artifact's save path.
func (this *Stager) Stage(item contracts.Artifact, downloadPath string) ([]contracts.StagedFile, error) {
	directory, err := resolveWithin(this.installRoot, item.SavePath)
	if err != nil {
		return nil, &contracts.StagingError{Name: item.DisplayName(), Err: err}
	}
	if !item.IsArchive {
		name := item.FileName()
		if name == "" {
			return nil, &contracts.StagingError{Name: item.DisplayName(), Err: errNoFileName}
		}
		return []contracts.StagedFile{{Source: downloadPath, Target: filepath.Join(directory, name)}}, nil
	}

	entries, err := this.extract(item, downloadPath)
	if err != nil {
		return nil, &contracts.StagingError{Name: item.DisplayName(), Err: err}
	}
	staged := make([]contracts.StagedFile, 0, len(entries))
	for _, entry := range entries {
		if item.ExtractName != "" && !strings.EqualFold(filepath.Base(entry.Path()), item.ExtractName) {
			continue
		}
		staged = append(staged, contracts.StagedFile{
			Source: entry.Path(),
			Target: filepath.Join(directory, filepath.Base(entry.Path())),
		})
	}
	if len(staged) == 0 && item.ExtractName != "" {
		return nil, &contracts.StagingError{Name: item.DisplayName(), Err: fmt.Errorf("%w: %s", errEntryNotFound, item.ExtractName)}
	}
	if len(staged) == 0 {
		return nil, &contracts.StagingError{Name: item.DisplayName(), Err: errEmptyArchive}
	}
	return staged, nil
}

func (this *Stager) extract(item contracts.Artifact, downloadPath string) ([]contracts.FileInfo, error) {
	if item.ArchivePassword != "" {
		this.logger.Printf("[WARN] %s declares an archive password; extracting without one", item.DisplayName())
	}
	destination := filepath.Join(this.stagingRoot, "extract_"+shortID())
	if err := this.fileSystem.MkdirAll(destination); err != nil {
		return nil, err
	}
	if err := this.extractor.Extract(downloadPath, destination); err != nil {
		return nil, err
	}
	return this.fileSystem.Listing(destination)
}

// resolveWithin joins relative onto root, refusing results outside root.
func resolveWithin(root, relative string) (string, error) {
	target := filepath.Join(root, relative)
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", errEscapesRoot, relative)
	}
	return target, nil
}

var (
	errEscapesRoot   = errors.New("path escapes the install root")
	errNoFileName    = errors.New("no file name could be derived")
	errEntryNotFound = errors.New("archive has no entry named")
	errEmptyArchive  = errors.New("archive is empty")
)
